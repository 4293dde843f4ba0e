package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"go-stationery-inventory/internal/apperror"
)

func parseUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}

// respondError translates a service error into the HTTP response. Internal
// errors are logged and masked.
func respondError(c *fiber.Ctx, err error) error {
	status := apperror.HTTPStatus(err)
	if status == 500 {
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
