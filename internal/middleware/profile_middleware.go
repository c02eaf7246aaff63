package middleware

import (
	"strings"

	"go-credit-inventory/internal/model"
	"go-credit-inventory/internal/service"
	"go-credit-inventory/internal/store"
	"go-credit-inventory/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	LocalProfile = "profile"
	LocalStore   = "store"
)

// sessionToken reads "Authorization: Bearer <token>", falling back to the
// token query parameter that browsers use for websocket upgrades.
func sessionToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Query("token"), true
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	return parts[1], true
}

// RequireProfile resolves the session token to a profile and its store and
// puts both in the request locals.
func RequireProfile(issuer *jwt.Issuer, profiles service.ProfileService, stores *store.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := sessionToken(c)
		if !ok {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		claims, err := issuer.ValidateToken(token)
		if err != nil {
			if errors.Is(err, jwt.ErrMissingToken) {
				return c.Status(401).JSON(fiber.Map{"error": "Select a profile first"})
			}
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired session"})
		}

		// the registry row is read on every request so rate changes apply immediately
		profile, err := profiles.Get(claims.Username)
		if err != nil {
			var nf *service.NotFoundError
			if errors.As(err, &nf) {
				return c.Status(401).JSON(fiber.Map{"error": "Profile no longer exists"})
			}
			log.WithError(err).Error("load session profile")
			return c.Status(500).JSON(fiber.Map{"error": "Failed to load profile"})
		}

		st, err := stores.Open(profile.Username)
		if err != nil {
			log.WithError(err).WithField("profile", profile.Username).Error("open profile store")
			return c.Status(500).JSON(fiber.Map{"error": "Failed to open profile data"})
		}

		c.Locals(LocalProfile, profile)
		c.Locals(LocalStore, st)
		return c.Next()
	}
}

// CurrentProfile returns the profile set by RequireProfile
func CurrentProfile(c *fiber.Ctx) *model.Profile {
	profile, _ := c.Locals(LocalProfile).(*model.Profile)
	return profile
}

// CurrentStore returns the store set by RequireProfile
func CurrentStore(c *fiber.Ctx) *store.Store {
	st, _ := c.Locals(LocalStore).(*store.Store)
	return st
}
