package queue

import "testing"

func TestEffectivePriority(t *testing.T) {
	cases := []struct {
		service   string
		requested int
		want      int
	}{
		{"General", 1, PriorityDefault},
		{"General", 5, PriorityAssist},
		{"General", 0, PriorityDefault},
		{"General", 99, PriorityAssist},
		{"VIP Lane", 1, PriorityVIP},
		{"VIP Lane", 5, PriorityVIP},
		{"VIP Lane", 0, PriorityVIP},
		{"vip lounge", 1, PriorityVIP},
		{"Services for VIPs", 2, PriorityVIP},
		{"Pharmacy", 3, PriorityDefault},
	}

	for _, tt := range cases {
		if got := EffectivePriority(tt.service, tt.requested); got != tt.want {
			t.Fatalf("EffectivePriority(%q, %d)=%d, want %d", tt.service, tt.requested, got, tt.want)
		}
	}
}

func TestCounterCanServe(t *testing.T) {
	assigned := []int64{1, 3}

	cases := []struct {
		serviceID int64
		want      bool
	}{
		{1, true},
		{3, true},
		{2, false},
		{0, true}, // token without a service is visible everywhere
	}

	for _, tt := range cases {
		if got := CounterCanServe(assigned, tt.serviceID); got != tt.want {
			t.Fatalf("CounterCanServe(%v, %d)=%v, want %v", assigned, tt.serviceID, got, tt.want)
		}
	}

	if !CounterCanServe(nil, 0) {
		t.Fatal("serviceless token must be visible to a counter with no assignments")
	}
	if CounterCanServe(nil, 5) {
		t.Fatal("counter with no assignments must not see service 5")
	}
}
