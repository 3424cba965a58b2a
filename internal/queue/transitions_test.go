package queue

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from  string
		to    string
		valid bool
	}{
		{StatusWaiting, StatusServing, true},
		{StatusWaiting, StatusSkipped, true},
		{StatusServing, StatusCompleted, true},
		{StatusServing, StatusServing, false},
		{StatusCompleted, StatusServing, false},
		{StatusWaiting, StatusCompleted, false},
		{StatusSkipped, StatusWaiting, false},
		{StatusSkipped, StatusServing, false},
		{StatusCompleted, StatusCompleted, false},
		{StatusServing, StatusSkipped, false},
		{StatusWaiting, "HELD", false},
		{"", StatusServing, false},
	}

	for _, tt := range cases {
		if got := CanTransition(tt.from, tt.to); got != tt.valid {
			t.Fatalf("CanTransition(%q, %q)=%v, want %v", tt.from, tt.to, got, tt.valid)
		}
	}
}

func TestCheckTransition(t *testing.T) {
	if err := CheckTransition(StatusWaiting, StatusServing); err != nil {
		t.Fatalf("waiting->serving should be allowed, got %v", err)
	}
	if err := CheckTransition(StatusCompleted, StatusServing); err != ErrInvalidTransition {
		t.Fatalf("completed->serving: want ErrInvalidTransition, got %v", err)
	}
}
