package handler

import (
	"go-credit-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

// respondError maps the service error taxonomy onto HTTP status codes
func respondError(c *fiber.Ctx, err error) error {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return c.Status(400).JSON(fiber.Map{"error": ve.Error(), "field": ve.Field})
	}

	var nf *service.NotFoundError
	if errors.As(err, &nf) {
		return c.Status(404).JSON(fiber.Map{"error": nf.Error()})
	}

	log.WithError(err).WithField("path", c.Path()).Error("request failed")
	return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
}

func parseID(c *fiber.Ctx) (uint, bool) {
	id, err := cast.ToUintE(c.Params("id"))
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
