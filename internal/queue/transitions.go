package queue

import "errors"

// Token lifecycle statuses.
const (
	StatusWaiting   = "WAITING"
	StatusServing   = "SERVING"
	StatusCompleted = "COMPLETED"
	StatusSkipped   = "SKIPPED"
)

// ErrInvalidTransition is returned when a status update names a transition
// outside the lifecycle. The stored token must be left untouched.
var ErrInvalidTransition = errors.New("invalid token status transition")

// transitionMap is keyed by target status; values are the statuses a token
// may come from. COMPLETED and SKIPPED are terminal.
var transitionMap = map[string][]string{
	StatusServing:   {StatusWaiting},
	StatusCompleted: {StatusServing},
	StatusSkipped:   {StatusWaiting},
}

func CanTransition(from, to string) bool {
	allowed, ok := transitionMap[to]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == from {
			return true
		}
	}
	return false
}

// CheckTransition is the error-returning form used by mutation paths.
func CheckTransition(from, to string) error {
	if !CanTransition(from, to) {
		return ErrInvalidTransition
	}
	return nil
}
