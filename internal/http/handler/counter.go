package handler

import (
	"database/sql"
	"log"

	"backend-qms/internal/models"
	"backend-qms/internal/realtime"

	"github.com/gofiber/fiber/v2"
)

// GetCounters returns every counter with its service assignments.
func (h *Handler) GetCounters(c *fiber.Ctx) error {
	rows, err := h.DB.Query(`
		SELECT id, name, is_available, created_at, updated_at
		FROM counters
		ORDER BY name ASC
	`)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to load counters",
		})
	}
	defer rows.Close()

	counters := []models.CounterWithServices{}
	for rows.Next() {
		var counter models.Counter
		if err := rows.Scan(&counter.ID, &counter.Name, &counter.IsAvailable,
			&counter.CreatedAt, &counter.UpdatedAt); err != nil {
			log.Printf("[counter] scan: %v", err)
			continue
		}
		counters = append(counters, models.CounterWithServices{Counter: counter})
	}
	rows.Close()

	for i := range counters {
		services, err := h.counterServices(counters[i].ID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Failed to load counter services",
			})
		}
		counters[i].Services = services
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    counters,
	})
}

func (h *Handler) CreateCounter(c *fiber.Ctx) error {
	var req models.CreateCounterRequest
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

	result, err := h.DB.Exec(`
		INSERT INTO counters (name, is_available, created_at, updated_at)
		VALUES (?, 1, NOW(), NOW())
	`, req.Name)

	if err != nil {
		if isDuplicateEntry(err) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"error":   "A counter with that name already exists",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to create counter",
		})
	}

	id, _ := result.LastInsertId()
	h.Hub.Publish(realtime.EventConfigUpdated, nil)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Counter created",
		"data":    fiber.Map{"id": id},
	})
}

func (h *Handler) UpdateCounter(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid counter id",
		})
	}

	var req models.UpdateCounterRequest
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

	query := "UPDATE counters SET updated_at = NOW()"
	args := []interface{}{}

	if req.Name != "" {
		query += ", name = ?"
		args = append(args, req.Name)
	}
	if req.IsAvailable != nil {
		query += ", is_available = ?"
		args = append(args, *req.IsAvailable)
	}

	query += " WHERE id = ?"
	args = append(args, id)

	result, err := h.DB.Exec(query, args...)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to update counter",
		})
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Counter not found",
		})
	}

	h.Hub.Publish(realtime.EventConfigUpdated, nil)
	// Availability feeds the wait estimate, so observers should re-pull.
	h.Hub.Publish(realtime.EventQueueUpdated, nil)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Counter updated",
	})
}

// AssignService adds a service to the counter's eligibility set.
func (h *Handler) AssignService(c *fiber.Ctx) error {
	counterID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid counter id",
		})
	}

	var req models.AssignServiceRequest
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

	var exists int
	err = h.DB.QueryRow("SELECT 1 FROM counters WHERE id = ?", counterID).Scan(&exists)
	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Counter not found",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to validate counter",
		})
	}

	var active bool
	err = h.DB.QueryRow("SELECT is_active FROM services WHERE id = ?", req.ServiceID).Scan(&active)
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
	if !active {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Cannot assign a deactivated service",
		})
	}

	_, err = h.DB.Exec(`
		INSERT IGNORE INTO counter_services (counter_id, service_id)
		VALUES (?, ?)
	`, counterID, req.ServiceID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to assign service",
		})
	}

	h.Hub.Publish(realtime.EventConfigUpdated, nil)
	h.Hub.Publish(realtime.EventQueueUpdated, nil)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Service assigned to counter",
	})
}

func (h *Handler) counterServices(counterID int64) ([]models.Service, error) {
	rows, err := h.DB.Query(`
		SELECT s.id, s.name, s.prefix, s.start_number, s.description,
		       s.is_active, s.created_at, s.updated_at
		FROM services s
		JOIN counter_services cs ON cs.service_id = s.id
		WHERE cs.counter_id = ?
		ORDER BY s.name ASC
	`, counterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	services := []models.Service{}
	for rows.Next() {
		service, err := scanServiceRow(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, service)
	}
	return services, rows.Err()
}
