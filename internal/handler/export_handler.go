package handler

import (
	"bytes"
	"fmt"

	"go-credit-inventory/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ExportHandler struct{}

func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// ExportAll returns every record of the profile as one JSON document
func (h *ExportHandler) ExportAll(c *fiber.Ctx) error {
	profile := middleware.CurrentProfile(c)
	bundle, err := middleware.CurrentStore(c).Export.Bundle(profile)
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s-export.json"`, profile.Username))
	return c.JSON(bundle)
}

func (h *ExportHandler) ExportProductsCSV(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := middleware.CurrentStore(c).Export.ProductsCSV(&buf); err != nil {
		return respondError(c, err)
	}
	return sendCSV(c, fmt.Sprintf("%s-products.csv", middleware.CurrentProfile(c).Username), buf.Bytes())
}

func (h *ExportHandler) ExportCreditsCSV(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := middleware.CurrentStore(c).Export.CreditsCSV(&buf); err != nil {
		return respondError(c, err)
	}
	return sendCSV(c, fmt.Sprintf("%s-credits.csv", middleware.CurrentProfile(c).Username), buf.Bytes())
}

func sendCSV(c *fiber.Ctx, filename string, body []byte) error {
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(body)
}
