package handler

import (
	"log"
	"time"

	"backend-qms/internal/models"
	"backend-qms/internal/queue"

	"github.com/gofiber/fiber/v2"
)

type serviceStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// GetAnalytics returns today's headline numbers for the admin dashboard.
func (h *Handler) GetAnalytics(c *fiber.Ctx) error {
	start := todayStart()

	var totalToday, servingNow, completedToday, waiting, skipped int

	counts := []struct {
		dest  *int
		query string
		args  []interface{}
	}{
		{&totalToday, "SELECT COUNT(*) FROM tokens WHERE created_at >= ?", []interface{}{start}},
		{&servingNow, "SELECT COUNT(*) FROM tokens WHERE status = ?", []interface{}{queue.StatusServing}},
		{&completedToday, "SELECT COUNT(*) FROM tokens WHERE status = ? AND created_at >= ?", []interface{}{queue.StatusCompleted, start}},
		{&waiting, "SELECT COUNT(*) FROM tokens WHERE status = ?", []interface{}{queue.StatusWaiting}},
		{&skipped, "SELECT COUNT(*) FROM tokens WHERE status = ?", []interface{}{queue.StatusSkipped}},
	}

	for _, q := range counts {
		if err := h.DB.QueryRow(q.query, q.args...).Scan(q.dest); err != nil {
			log.Printf("[analytics] count: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Failed to compute analytics",
			})
		}
	}

	rows, err := h.DB.Query(`
		SELECT s.name, COUNT(t.id)
		FROM services s
		LEFT JOIN tokens t ON t.service_id = s.id AND t.created_at >= ?
		GROUP BY s.id, s.name
		ORDER BY s.name ASC
	`, start)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to compute service breakdown",
		})
	}
	defer rows.Close()

	stats := []serviceStat{}
	for rows.Next() {
		var s serviceStat
		if err := rows.Scan(&s.Name, &s.Count); err != nil {
			continue
		}
		stats = append(stats, s)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_today":     totalToday,
			"serving_now":     servingNow,
			"completed_today": completedToday,
			"waiting":         waiting,
			"skipped":         skipped,
			"service_stats":   stats,
		},
	})
}

// GetReports lists historical tokens with optional date, service and
// status filters, newest first, capped at 1000 rows.
func (h *Handler) GetReports(c *fiber.Ctx) error {
	query := `
		SELECT t.id, t.number, t.display_id, t.type, t.phone, t.status,
		       t.priority, t.service_id, t.counter_id, t.started_at,
		       t.completed_at, t.created_at, t.updated_at,
		       s.name, co.name
		FROM tokens t
		LEFT JOIN services s ON s.id = t.service_id
		LEFT JOIN counters co ON co.id = t.counter_id
		WHERE 1=1
	`
	args := []interface{}{}

	if startDate := c.Query("start_date"); startDate != "" {
		start, err := time.ParseInLocation("2006-01-02", startDate, time.Local)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "start_date must be YYYY-MM-DD",
			})
		}
		query += " AND t.created_at >= ?"
		args = append(args, start)
	}

	if endDate := c.Query("end_date"); endDate != "" {
		end, err := time.ParseInLocation("2006-01-02", endDate, time.Local)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "end_date must be YYYY-MM-DD",
			})
		}
		query += " AND t.created_at < ?"
		args = append(args, end.Add(24*time.Hour))
	}

	if serviceID := c.QueryInt("service_id", 0); serviceID > 0 {
		query += " AND t.service_id = ?"
		args = append(args, serviceID)
	}

	if status := c.Query("status"); status != "" {
		query += " AND t.status = ?"
		args = append(args, status)
	}

	query += " ORDER BY t.created_at DESC LIMIT 1000"

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to load report",
		})
	}
	defer rows.Close()

	tokens := []models.Token{}
	for rows.Next() {
		token, err := scanTokenRow(rows)
		if err != nil {
			log.Printf("[analytics] scan: %v", err)
			continue
		}
		tokens = append(tokens, token)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    tokens,
	})
}
