package handler

import (
	"go-credit-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ProfileHandler struct {
	service service.ProfileService
}

func NewProfileHandler(s service.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: s}
}

func (h *ProfileHandler) CreateProfile(c *fiber.Ctx) error {
	var req service.CreateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	profile, err := h.service.Create(&req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Profile created", "data": profile})
}

func (h *ProfileHandler) GetProfiles(c *fiber.Ctx) error {
	profiles, err := h.service.List()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profiles)
}

func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	profile, err := h.service.Get(c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": profile, "display_name": profile.DisplayName()})
}

func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	var req service.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	profile, err := h.service.Update(c.Params("username"), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Profile updated", "data": profile})
}

func (h *ProfileHandler) DeleteProfile(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Params("username")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Profile deleted"})
}

// OpenSession selects a profile and returns the token for the protected routes
func (h *ProfileHandler) OpenSession(c *fiber.Ctx) error {
	session, err := h.service.OpenSession(c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(session)
}
