package handler

import (
	"database/sql"
	"errors"
	"log"

	"backend-qms/internal/models"
	"backend-qms/internal/realtime"

	"github.com/go-sql-driver/mysql"
	"github.com/gofiber/fiber/v2"
)

// GetKioskServices is the public kiosk view: active services only, each
// enriched with the live wait estimate.
func (h *Handler) GetKioskServices(c *fiber.Ctx) error {
	rows, err := h.DB.Query(`
		SELECT id, name, prefix, start_number, description, is_active, created_at, updated_at
		FROM services
		WHERE is_active = 1
		ORDER BY name ASC
	`)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to load services",
		})
	}
	defer rows.Close()

	services := []models.ServiceWithWait{}
	for rows.Next() {
		service, err := scanServiceRow(rows)
		if err != nil {
			log.Printf("[service] scan: %v", err)
			continue
		}

		wait, err := h.Est.ForService(c.Context(), service.ID)
		if err != nil {
			// The estimate is advisory; a failed scan must not hide
			// the service from the kiosk.
			log.Printf("[service] wait estimate for %d: %v", service.ID, err)
			wait = 0
		}
		services = append(services, models.ServiceWithWait{Service: service, WaitMinutes: wait})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    services,
	})
}

// GetAllServices - admin view, optional is_active filter.
func (h *Handler) GetAllServices(c *fiber.Ctx) error {
	isActive := c.Query("is_active")

	query := `
		SELECT id, name, prefix, start_number, description, is_active, created_at, updated_at
		FROM services
		WHERE 1=1
	`
	args := []interface{}{}

	if isActive != "" {
		query += " AND is_active = ?"
		args = append(args, isActive == "true" || isActive == "1")
	}

	query += " ORDER BY name ASC"

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to load services",
		})
	}
	defer rows.Close()

	services := []models.Service{}
	for rows.Next() {
		service, err := scanServiceRow(rows)
		if err != nil {
			continue
		}
		services = append(services, service)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    services,
	})
}

func (h *Handler) CreateService(c *fiber.Ctx) error {
	var req models.CreateServiceRequest
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

	startNumber := req.StartNumber
	if startNumber == 0 {
		startNumber = 100
	}

	result, err := h.DB.Exec(`
		INSERT INTO services (name, prefix, start_number, description, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, NOW(), NOW())
	`, req.Name, req.Prefix, startNumber, req.Description)

	if err != nil {
		if isDuplicateEntry(err) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"error":   "A service with that name already exists",
			})
		}
		log.Printf("[service] insert: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to create service",
		})
	}

	id, _ := result.LastInsertId()
	h.Hub.Publish(realtime.EventConfigUpdated, nil)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Service created",
		"data":    fiber.Map{"id": id},
	})
}

func (h *Handler) UpdateService(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid service id",
		})
	}

	var req models.UpdateServiceRequest
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

	query := "UPDATE services SET updated_at = NOW()"
	args := []interface{}{}

	if req.Name != "" {
		query += ", name = ?"
		args = append(args, req.Name)
	}
	if req.Prefix != "" {
		query += ", prefix = ?"
		args = append(args, req.Prefix)
	}
	if req.StartNumber != nil {
		query += ", start_number = ?"
		args = append(args, *req.StartNumber)
	}

	query += " WHERE id = ?"
	args = append(args, id)

	result, err := h.DB.Exec(query, args...)
	if err != nil {
		if isDuplicateEntry(err) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"error":   "A service with that name already exists",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to update service",
		})
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Service not found",
		})
	}

	h.Hub.Publish(realtime.EventConfigUpdated, nil)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Service updated",
	})
}

// DeleteService is a soft deactivation. The row stays so historical
// tokens keep their service reference; the service just disappears from
// kiosk and assignment views.
func (h *Handler) DeleteService(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid service id",
		})
	}

	result, err := h.DB.Exec(
		"UPDATE services SET is_active = 0, updated_at = NOW() WHERE id = ?",
		id,
	)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to deactivate service",
		})
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Service not found",
		})
	}

	h.Hub.Publish(realtime.EventConfigUpdated, nil)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Service deactivated",
	})
}

func scanServiceRow(rows *sql.Rows) (models.Service, error) {
	var (
		s           models.Service
		description sql.NullString
	)
	err := rows.Scan(
		&s.ID, &s.Name, &s.Prefix, &s.StartNumber,
		&description, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return s, err
	}
	if description.Valid {
		s.Description = &description.String
	}
	return s, nil
}

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
