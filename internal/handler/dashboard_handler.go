package handler

import (
	"go-credit-inventory/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cast"
)

type DashboardHandler struct{}

func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// GetPaymentActivity returns daily payment totals for charts
// Query params: days (default 30)
func (h *DashboardHandler) GetPaymentActivity(c *fiber.Ctx) error {
	days, err := cast.ToIntE(c.Query("days", "30"))
	if err != nil || days <= 0 || days > 366 {
		days = 30
	}

	data, err := middleware.CurrentStore(c).Dashboard.GetPaymentActivity(days)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

// GetDashboardStats returns overview statistics
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := middleware.CurrentStore(c).Dashboard.GetDashboardStats()
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(stats)
}
