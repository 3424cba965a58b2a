package queue

import "strings"

// Priority bands. Higher is served sooner; FIFO within a band.
const (
	PriorityDefault = 1
	PriorityAssist  = 5
	PriorityVIP     = 10
)

// EffectivePriority applies the routing overrides: a service whose name
// contains "VIP" (case-insensitive) forces the VIP band no matter what the
// caller asked for; otherwise the caller-supplied base priority is clamped
// to the assist band so a kiosk cannot claim VIP on its own.
func EffectivePriority(serviceName string, requested int) int {
	if strings.Contains(strings.ToUpper(serviceName), "VIP") {
		return PriorityVIP
	}
	if requested >= PriorityAssist {
		return PriorityAssist
	}
	return PriorityDefault
}

// CounterCanServe reports whether a counter with the given service
// assignments may display or call a token for serviceID. A token without a
// service is visible to every counter.
func CounterCanServe(assigned []int64, serviceID int64) bool {
	if serviceID == 0 {
		return true
	}
	for _, id := range assigned {
		if id == serviceID {
			return true
		}
	}
	return false
}
