package handler

import (
	"go-credit-inventory/internal/middleware"
	"go-credit-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreditHandler serves the credit ledger of the session's profile
type CreditHandler struct{}

func NewCreditHandler() *CreditHandler {
	return &CreditHandler{}
}

// GetCredits lists transactions newest first, optionally filtered by q
func (h *CreditHandler) GetCredits(c *fiber.Ctx) error {
	entries, err := middleware.CurrentStore(c).Ledger.SearchTransactions(c.Query("q"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entries)
}

func (h *CreditHandler) CreateCredit(c *fiber.Ctx) error {
	var req service.CreditSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	result, err := middleware.CurrentStore(c).Ledger.CreateCreditSale(&req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Credit sale recorded", "data": result})
}

func (h *CreditHandler) GetCredit(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	entry, err := middleware.CurrentStore(c).Ledger.GetTransaction(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entry)
}

func (h *CreditHandler) GetPayments(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	payments, err := middleware.CurrentStore(c).Ledger.Payments(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(payments)
}

func (h *CreditHandler) AddPayment(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	var req service.PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	result, err := middleware.CurrentStore(c).Ledger.AddPayment(id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Payment recorded", "data": result})
}

func (h *CreditHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := middleware.CurrentStore(c).Ledger.Summary()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}
