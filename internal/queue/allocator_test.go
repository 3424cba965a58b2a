package queue

import (
	"fmt"
	"testing"
	"time"
)

func TestNumberFor(t *testing.T) {
	cases := []struct {
		startNumber int
		seq         int64
		want        int
	}{
		{100, 1, 100},
		{100, 2, 101},
		{100, 4, 103},
		{1, 1, 1},
		{500, 250, 749},
	}

	for _, tt := range cases {
		if got := NumberFor(tt.startNumber, tt.seq); got != tt.want {
			t.Fatalf("NumberFor(%d, %d)=%d, want %d", tt.startNumber, tt.seq, got, tt.want)
		}
	}
}

// A burst of N reservations must produce exactly [start, start+N-1] with no
// duplicate and no gap. Redis INCR returns 1..N in some interleaving; the
// mapping must preserve that.
func TestNumberForBurstIsGapless(t *testing.T) {
	const start = 100
	const n = 50

	seen := make(map[int]bool, n)
	for seq := int64(1); seq <= n; seq++ {
		num := NumberFor(start, seq)
		if seen[num] {
			t.Fatalf("duplicate number %d", num)
		}
		seen[num] = true
	}

	for num := start; num < start+n; num++ {
		if !seen[num] {
			t.Fatalf("gap: number %d never issued", num)
		}
	}
}

func TestFormatDisplayID(t *testing.T) {
	// Fourth ticket of the day with prefix A and startNumber 100.
	if got := FormatDisplayID("A", NumberFor(100, 4)); got != "A-103" {
		t.Fatalf("got %q, want A-103", got)
	}
	if got := FormatDisplayID("P", 100); got != "P-100" {
		t.Fatalf("got %q, want P-100", got)
	}
}

func TestDayKeyScopesByServiceAndLocalDate(t *testing.T) {
	day1 := time.Date(2026, 3, 14, 23, 59, 0, 0, time.Local)
	day2 := time.Date(2026, 3, 15, 0, 1, 0, 0, time.Local)

	if dayKey(7, day1) == dayKey(7, day2) {
		t.Fatal("keys for different days must differ")
	}
	if dayKey(7, day1) == dayKey(8, day1) {
		t.Fatal("keys for different services must differ")
	}

	want := fmt.Sprintf("seq:service:7:%s", day1.Format("2006-01-02"))
	if got := dayKey(7, day1); got != want {
		t.Fatalf("dayKey=%q, want %q", got, want)
	}
}
