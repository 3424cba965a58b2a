package queue

import (
	"context"
	"database/sql"
	"math"
	"time"
)

// DefaultServiceDuration is assumed when a service has no completed
// tokens to average over yet.
const DefaultServiceDuration = 5 * time.Minute

// sampleSize is how many recent completions feed the rolling average.
const sampleSize = 10

// Estimator computes a live wait estimate for a service from the rolling
// average service time, current queue depth and available serving
// capacity. It recomputes on every call; nothing is cached, so the answer
// is consistent with whatever state exists at read time.
type Estimator struct {
	db *sql.DB
}

func NewEstimator(db *sql.DB) *Estimator {
	return &Estimator{db: db}
}

// ForService returns the estimated wait in whole minutes.
func (e *Estimator) ForService(ctx context.Context, serviceID int64) (int, error) {
	samples, err := e.recentDurations(ctx, serviceID)
	if err != nil {
		return 0, err
	}

	var queueLen int
	err = e.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM tokens
		WHERE service_id = ? AND status = ?
	`, serviceID, StatusWaiting).Scan(&queueLen)
	if err != nil {
		return 0, err
	}

	var activeCounters int
	err = e.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM counters c
		JOIN counter_services cs ON cs.counter_id = c.id
		WHERE c.is_available = 1 AND cs.service_id = ?
	`, serviceID).Scan(&activeCounters)
	if err != nil {
		return 0, err
	}

	return EstimateWait(samples, queueLen, activeCounters), nil
}

func (e *Estimator) recentDurations(ctx context.Context, serviceID int64) ([]time.Duration, error) {
	rows, err := e.db.QueryContext(ctx, `
		SELECT started_at, completed_at
		FROM tokens
		WHERE service_id = ?
		  AND status = ?
		  AND started_at IS NOT NULL
		  AND completed_at IS NOT NULL
		ORDER BY updated_at DESC
		LIMIT ?
	`, serviceID, StatusCompleted, sampleSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []time.Duration
	for rows.Next() {
		var started, completed time.Time
		if err := rows.Scan(&started, &completed); err != nil {
			return nil, err
		}
		samples = append(samples, completed.Sub(started))
	}
	return samples, rows.Err()
}

// EstimateWait is the pure queueing approximation:
// ceil(queueLen * avgServiceDuration / activeCounters), in whole minutes.
// With no samples the average falls back to DefaultServiceDuration, and
// zero available counters is treated as one to avoid dividing by zero.
func EstimateWait(samples []time.Duration, queueLen, activeCounters int) int {
	avgMs := float64(DefaultServiceDuration.Milliseconds())
	if len(samples) > 0 {
		var total time.Duration
		for _, d := range samples {
			total += d
		}
		avgMs = float64(total.Milliseconds()) / float64(len(samples))
	}

	if activeCounters < 1 {
		activeCounters = 1
	}

	waitMs := float64(queueLen) * avgMs / float64(activeCounters)
	return int(math.Ceil(waitMs / 60000))
}
