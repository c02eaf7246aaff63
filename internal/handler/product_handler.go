package handler

import (
	"go-credit-inventory/internal/middleware"
	"go-credit-inventory/internal/model"
	"go-credit-inventory/internal/repository"
	"go-credit-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler serves the catalog of the session's profile
type ProductHandler struct{}

func NewProductHandler() *ProductHandler {
	return &ProductHandler{}
}

// GetProducts lists the catalog. Query params: status, category, q (all optional)
func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	filter := repository.ProductFilter{
		Category: c.Query("category"),
		Search:   c.Query("q"),
	}
	if status := c.Query("status"); status != "" {
		st := model.ProductStatus(status)
		filter.Status = &st
	}

	products, err := middleware.CurrentStore(c).Catalog.ListProducts(filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	rate := middleware.CurrentProfile(c).CurrencyRate
	product, err := middleware.CurrentStore(c).Catalog.AddProduct(&req, rate)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}

// GetProduct returns the product with its profit analysis
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	detail, err := middleware.CurrentStore(c).Catalog.ProductDetail(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(detail)
}

func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req service.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	rate := middleware.CurrentProfile(c).CurrencyRate
	updated, err := middleware.CurrentStore(c).Catalog.UpdateProduct(id, &req, rate)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	if err := middleware.CurrentStore(c).Catalog.DeleteProduct(id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// ConvertCurrency previews the secondary-currency amount with the profile rate.
// converted is null when amount is empty or not a number.
func (h *ProductHandler) ConvertCurrency(c *fiber.Ctx) error {
	rate := middleware.CurrentProfile(c).CurrencyRate
	converted, ok := service.ConvertCurrency(c.Query("amount"), rate)

	var value interface{}
	if ok {
		value = converted.StringFixed(2)
	}
	return c.JSON(fiber.Map{
		"amount":    c.Query("amount"),
		"rate":      rate,
		"converted": value,
	})
}
