package queue

import (
	"testing"
	"time"
)

func TestEstimateWait(t *testing.T) {
	cases := []struct {
		name     string
		samples  []time.Duration
		queueLen int
		counters int
		want     int
	}{
		{
			// No history: default 5 min average. (4*300000)/2/60000 = 10.
			name:     "default average",
			samples:  nil,
			queueLen: 4,
			counters: 2,
			want:     10,
		},
		{
			// Zero counters falls back to divisor 1, never divides by zero.
			name:     "no available counters",
			samples:  nil,
			queueLen: 2,
			counters: 0,
			want:     10,
		},
		{
			name:     "empty queue",
			samples:  nil,
			queueLen: 0,
			counters: 3,
			want:     0,
		},
		{
			name:     "observed average",
			samples:  []time.Duration{2 * time.Minute, 4 * time.Minute},
			queueLen: 3,
			counters: 1,
			want:     9,
		},
		{
			name:     "rounds up to whole minutes",
			samples:  []time.Duration{90 * time.Second},
			queueLen: 1,
			counters: 1,
			want:     2,
		},
		{
			name:     "split across counters",
			samples:  []time.Duration{6 * time.Minute},
			queueLen: 4,
			counters: 4,
			want:     6,
		},
	}

	for _, tt := range cases {
		if got := EstimateWait(tt.samples, tt.queueLen, tt.counters); got != tt.want {
			t.Fatalf("%s: EstimateWait=%d, want %d", tt.name, got, tt.want)
		}
	}
}
