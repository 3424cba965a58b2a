package handler

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"backend-qms/internal/models"
	"backend-qms/internal/queue"
	"backend-qms/internal/realtime"

	"github.com/gofiber/fiber/v2"
)

// CreateToken is the kiosk submission endpoint. The display number comes
// from the atomic allocator, so concurrent submissions against the same
// service can never collide.
func (h *Handler) CreateToken(c *fiber.Ctx) error {
	var req models.CreateTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	tokenType := req.Type
	if tokenType == "" {
		tokenType = models.TokenTypePrint
	}

	// Creation against an unknown service must fail, never default.
	var (
		serviceName   string
		prefix        string
		startNumber   int
		serviceActive bool
	)
	err := h.DB.QueryRow(
		"SELECT name, prefix, start_number, is_active FROM services WHERE id = ?",
		req.ServiceID,
	).Scan(&serviceName, &prefix, &startNumber, &serviceActive)

	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Service not found",
		})
	}

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to validate service",
		})
	}

	if !serviceActive {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   fmt.Sprintf("Service %s is not accepting tickets", serviceName),
		})
	}

	basePriority := queue.PriorityDefault
	if req.PriorityAssistance {
		basePriority = queue.PriorityAssist
	}
	priority := queue.EffectivePriority(serviceName, basePriority)

	number, displayID, err := h.Alloc.Reserve(c.Context(), req.ServiceID, startNumber, prefix)
	if err != nil {
		log.Printf("[token] reserve number: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to allocate a queue number",
		})
	}

	result, err := h.DB.Exec(`
		INSERT INTO tokens
		(number, display_id, type, phone, status, priority, service_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
	`, number, displayID, tokenType, req.Phone, queue.StatusWaiting, priority, req.ServiceID)

	if err != nil {
		log.Printf("[token] insert: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to create token",
		})
	}

	tokenID, _ := result.LastInsertId()

	token, err := h.fetchToken(tokenID)
	if err != nil {
		log.Printf("[token] fetch created token: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to load created token",
		})
	}

	// SMS delivery is fire-and-forget: a dead Twilio endpoint must not
	// fail the submission that already committed.
	if tokenType == models.TokenTypeSMS && req.Phone != nil && *req.Phone != "" {
		go h.SMS.SendTokenSMS(context.Background(), displayID, serviceName, *req.Phone)
	}

	h.Hub.Publish(realtime.EventQueueUpdated, nil)

	wait, err := h.Est.ForService(c.Context(), req.ServiceID)
	if err != nil {
		log.Printf("[token] wait estimate: %v", err)
		wait = 0
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Token created",
		"data": fiber.Map{
			"token":        token,
			"service_name": serviceName,
			"wait_minutes": wait,
		},
	})
}

// GetTokens returns the queue view. Default ordering is the canonical
// pending order: priority band first, FIFO within a band. A counter_id
// filter narrows the list to services that counter is assigned to.
func (h *Handler) GetTokens(c *fiber.Ctx) error {
	status := c.Query("status")
	serviceID := c.QueryInt("service_id", 0)
	counterID := c.QueryInt("counter_id", 0)

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

	if status != "" {
		query += " AND t.status = ?"
		args = append(args, status)
	}
	if serviceID > 0 {
		query += " AND t.service_id = ?"
		args = append(args, serviceID)
	}

	query += " ORDER BY t.priority DESC, t.created_at ASC"

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to load tokens",
		})
	}
	defer rows.Close()

	tokens := []models.Token{}
	for rows.Next() {
		token, err := scanTokenRow(rows)
		if err != nil {
			log.Printf("[token] scan: %v", err)
			continue
		}
		tokens = append(tokens, token)
	}

	if counterID > 0 {
		assigned, err := h.assignedServiceIDs(int64(counterID))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Failed to load counter assignments",
			})
		}

		eligible := tokens[:0]
		for _, t := range tokens {
			if queue.CounterCanServe(assigned, t.ServiceID) {
				eligible = append(eligible, t)
			}
		}
		tokens = eligible
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    tokens,
	})
}

// UpdateTokenStatus applies a lifecycle transition. Anything outside the
// state machine is rejected with the current status and no partial write.
func (h *Handler) UpdateTokenStatus(c *fiber.Ctx) error {
	tokenID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid token id",
		})
	}

	var req models.UpdateTokenStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	var currentStatus string
	var tokenServiceID int64
	err = h.DB.QueryRow("SELECT status, service_id FROM tokens WHERE id = ?", tokenID).
		Scan(&currentStatus, &tokenServiceID)

	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Token not found",
		})
	}

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to load token",
		})
	}

	if err := queue.CheckTransition(currentStatus, req.Status); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   fmt.Sprintf("Cannot change status from %s to %s", currentStatus, req.Status),
		})
	}

	var execErr error
	var result sql.Result

	switch req.Status {
	case queue.StatusServing:
		if req.CounterID == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "counter_id is required when calling a token",
			})
		}
		if handled, err := h.checkCounterMayCall(c, *req.CounterID, tokenServiceID); handled {
			return err
		}

		// Status guard in the WHERE clause closes the gap between the
		// read above and this write: a racing second call finds zero
		// affected rows instead of re-serving the token.
		result, execErr = h.DB.Exec(`
			UPDATE tokens
			SET status = ?, counter_id = ?, started_at = NOW(), updated_at = NOW()
			WHERE id = ? AND status = ?
		`, queue.StatusServing, *req.CounterID, tokenID, queue.StatusWaiting)

	case queue.StatusCompleted:
		result, execErr = h.DB.Exec(`
			UPDATE tokens
			SET status = ?, completed_at = NOW(), updated_at = NOW()
			WHERE id = ? AND status = ?
		`, queue.StatusCompleted, tokenID, queue.StatusServing)

	case queue.StatusSkipped:
		result, execErr = h.DB.Exec(`
			UPDATE tokens
			SET status = ?, updated_at = NOW()
			WHERE id = ? AND status = ?
		`, queue.StatusSkipped, tokenID, queue.StatusWaiting)
	}

	if execErr != nil {
		log.Printf("[token] update status: %v", execErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to update token status",
		})
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "Token status changed concurrently, please retry",
		})
	}

	token, err := h.fetchToken(int64(tokenID))
	if err != nil {
		log.Printf("[token] fetch updated token: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to load updated token",
		})
	}

	h.Hub.Publish(realtime.EventQueueUpdated, nil)
	if req.Status == queue.StatusServing {
		h.Hub.Publish(realtime.EventTokenCalled, token)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Token %s is now %s", token.DisplayID, token.Status),
		"data":    token,
	})
}

// checkCounterMayCall validates the calling counter: it must exist, be
// assigned the token's service, and have no other token in service.
// When handled is true the error response has already been written and
// the returned error is what the route should return.
func (h *Handler) checkCounterMayCall(c *fiber.Ctx, counterID, serviceID int64) (handled bool, _ error) {
	var exists int
	err := h.DB.QueryRow("SELECT 1 FROM counters WHERE id = ?", counterID).Scan(&exists)
	if err == sql.ErrNoRows {
		return true, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Counter not found",
		})
	}
	if err != nil {
		return true, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to validate counter",
		})
	}

	assigned, err := h.assignedServiceIDs(counterID)
	if err != nil {
		return true, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to load counter assignments",
		})
	}
	if !queue.CounterCanServe(assigned, serviceID) {
		return true, c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "Counter is not assigned to this service",
		})
	}

	// One token in service per counter at a time.
	var inService string
	err = h.DB.QueryRow(
		"SELECT display_id FROM tokens WHERE counter_id = ? AND status = ? LIMIT 1",
		counterID, queue.StatusServing,
	).Scan(&inService)
	if err == nil {
		return true, c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   fmt.Sprintf("Counter is already serving token %s", inService),
		})
	}
	if err != sql.ErrNoRows {
		return true, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to validate counter state",
		})
	}

	return false, nil
}

func (h *Handler) assignedServiceIDs(counterID int64) ([]int64, error) {
	rows, err := h.DB.Query(
		"SELECT service_id FROM counter_services WHERE counter_id = ?",
		counterID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (h *Handler) fetchToken(id int64) (models.Token, error) {
	row := h.DB.QueryRow(`
		SELECT t.id, t.number, t.display_id, t.type, t.phone, t.status,
		       t.priority, t.service_id, t.counter_id, t.started_at,
		       t.completed_at, t.created_at, t.updated_at,
		       s.name, co.name
		FROM tokens t
		LEFT JOIN services s ON s.id = t.service_id
		LEFT JOIN counters co ON co.id = t.counter_id
		WHERE t.id = ?
	`, id)

	return scanTokenScanner(row)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTokenScanner(row rowScanner) (models.Token, error) {
	var (
		t           models.Token
		phone       sql.NullString
		counterID   sql.NullInt64
		startedAt   sql.NullTime
		completedAt sql.NullTime
		serviceName sql.NullString
		counterName sql.NullString
	)

	err := row.Scan(
		&t.ID, &t.Number, &t.DisplayID, &t.Type, &phone, &t.Status,
		&t.Priority, &t.ServiceID, &counterID, &startedAt,
		&completedAt, &t.CreatedAt, &t.UpdatedAt,
		&serviceName, &counterName,
	)
	if err != nil {
		return t, err
	}

	if phone.Valid {
		t.Phone = &phone.String
	}
	if counterID.Valid {
		t.CounterID = &counterID.Int64
	}
	if startedAt.Valid {
		v := startedAt.Time
		t.StartedAt = &v
	}
	if completedAt.Valid {
		v := completedAt.Time
		t.CompletedAt = &v
	}
	if serviceName.Valid {
		t.ServiceName = &serviceName.String
	}
	if counterName.Valid {
		t.CounterName = &counterName.String
	}
	return t, nil
}

func scanTokenRow(rows *sql.Rows) (models.Token, error) {
	return scanTokenScanner(rows)
}
