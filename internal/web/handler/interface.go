// Package handler holds what the web handlers share.
package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/settingskit/settingskit/internal/config"
	"github.com/settingskit/settingskit/settings"
	"github.com/settingskit/settingskit/store"
)

// Service is the interface for a web handler service.
type Service interface {
	Init(app *fiber.App, cfg *config.Config, s *store.Store, registry *settings.Registry) error
}

// Error is the JSON body of a failed request.
type Error struct {
	Error string `json:"error"`
}

// SendError writes status with an Error body.
func SendError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(Error{Error: msg})
}

// ErrorHandler renders handler errors as an Error body. Errors other than
// *fiber.Error are reported as 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return SendError(c, fe.Code, fe.Message)
	}

	log.Error().Err(err).Str("path", c.Path()).Msg("request failed")

	return SendError(c, fiber.StatusInternalServerError, "internal server error")
}
