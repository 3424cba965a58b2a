package handler

import (
	"backend-qms/internal/models"
	"backend-qms/internal/realtime"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetSettings(c *fiber.Ctx) error {
	rows, err := h.DB.Query("SELECT `key`, `value` FROM settings ORDER BY `key` ASC")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to load settings",
		})
	}
	defer rows.Close()

	settings := []models.Setting{}
	for rows.Next() {
		var s models.Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			continue
		}
		settings = append(settings, s)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    settings,
	})
}

func (h *Handler) UpdateSetting(c *fiber.Ctx) error {
	var req models.UpdateSettingRequest
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

	_, err := h.DB.Exec(
		"INSERT INTO settings (`key`, `value`) VALUES (?, ?) ON DUPLICATE KEY UPDATE `value` = VALUES(`value`)",
		req.Key, req.Value,
	)

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to save setting",
		})
	}

	h.Hub.Publish(realtime.EventConfigUpdated, nil)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Setting saved",
	})
}
