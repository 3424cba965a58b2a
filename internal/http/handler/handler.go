package handler

import (
	"database/sql"
	"time"

	"backend-qms/internal/notify"
	"backend-qms/internal/queue"
	"backend-qms/internal/realtime"

	"github.com/go-playground/validator/v10"
)

// Handler carries every dependency the routes need. The broadcaster is an
// interface so tests can pass realtime.Nop instead of a live hub.
type Handler struct {
	DB    *sql.DB
	Alloc *queue.Allocator
	Est   *queue.Estimator
	Hub   realtime.Broadcaster
	SMS   *notify.SMSSender
}

func New(db *sql.DB, alloc *queue.Allocator, est *queue.Estimator, hub realtime.Broadcaster, sms *notify.SMSSender) *Handler {
	return &Handler{
		DB:    db,
		Alloc: alloc,
		Est:   est,
		Hub:   hub,
		SMS:   sms,
	}
}

var validate = validator.New()

// todayStart is local midnight. Every "today" query in the system uses
// this same definition; the allocator keys its counters by the same local
// date, so numbering and analytics agree on day boundaries.
func todayStart() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
