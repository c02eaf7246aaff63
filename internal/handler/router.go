package handler

import (
	"go-credit-inventory/internal/middleware"
	"go-credit-inventory/internal/service"
	"go-credit-inventory/internal/store"
	"go-credit-inventory/internal/ws"
	"go-credit-inventory/pkg/jwt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Dependencies struct {
	Profiles service.ProfileService
	Stores   *store.Manager
	Issuer   *jwt.Issuer
	Hub      *ws.Hub // nil disables the websocket route
}

// NewApp builds the fiber app with every route of the API
func NewApp(deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Credit Inventory v1.0",
	})

	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	profileHandler := NewProfileHandler(deps.Profiles)
	productHandler := NewProductHandler()
	creditHandler := NewCreditHandler()
	dashHandler := NewDashboardHandler()
	exportHandler := NewExportHandler()

	api := app.Group("/api/v1")

	// ============ PROFILE SELECTION ============
	profiles := api.Group("/profiles")
	profiles.Get("/", profileHandler.GetProfiles)
	profiles.Post("/", profileHandler.CreateProfile)
	profiles.Get("/:username", profileHandler.GetProfile)
	profiles.Put("/:username", profileHandler.UpdateProfile)
	profiles.Delete("/:username", profileHandler.DeleteProfile)
	profiles.Post("/:username/session", profileHandler.OpenSession)

	// ============ PROFILE SCOPED ROUTES ============
	requireProfile := middleware.RequireProfile(deps.Issuer, deps.Profiles, deps.Stores)
	scoped := api.Group("", requireProfile)

	scoped.Get("/products", productHandler.GetProducts)
	scoped.Post("/products", productHandler.CreateProduct)
	scoped.Get("/products/:id", productHandler.GetProduct)
	scoped.Put("/products/:id", productHandler.UpdateProduct)
	scoped.Delete("/products/:id", productHandler.DeleteProduct)
	scoped.Get("/currency/convert", productHandler.ConvertCurrency)

	scoped.Get("/credits", creditHandler.GetCredits)
	scoped.Post("/credits", creditHandler.CreateCredit)
	scoped.Get("/credits/summary", creditHandler.GetSummary)
	scoped.Get("/credits/:id", creditHandler.GetCredit)
	scoped.Get("/credits/:id/payments", creditHandler.GetPayments)
	scoped.Post("/credits/:id/payments", creditHandler.AddPayment)

	scoped.Get("/dashboard/stats", dashHandler.GetDashboardStats)
	scoped.Get("/dashboard/payments", dashHandler.GetPaymentActivity)

	scoped.Get("/export", exportHandler.ExportAll)
	scoped.Get("/export/products.csv", exportHandler.ExportProductsCSV)
	scoped.Get("/export/credits.csv", exportHandler.ExportCreditsCSV)

	if deps.Hub != nil {
		registerWebsocket(app, deps.Hub, requireProfile)
	}

	return app
}

// registerWebsocket streams the change events of the session's profile
func registerWebsocket(app *fiber.App, hub *ws.Hub, requireProfile fiber.Handler) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	}, requireProfile, func(c *fiber.Ctx) error {
		c.Locals("ws_profile", middleware.CurrentProfile(c).Username)
		return c.Next()
	})

	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		profile, _ := c.Locals("ws_profile").(string)
		if !hub.Subscribe(c, profile) {
			return
		}
		defer hub.Unsubscribe(c)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))
}
