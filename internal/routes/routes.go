package routes

import (
	"time"

	"github.com/agrimarket/backend/internal/apperr"
	"github.com/agrimarket/backend/internal/apps"
	"github.com/agrimarket/backend/internal/config"
	"github.com/agrimarket/backend/internal/handlers"
	"github.com/agrimarket/backend/internal/middleware"
	"github.com/agrimarket/backend/internal/services"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

// NewApp builds the fiber app with the global middleware chain.
func NewApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "agrimarket",
		BodyLimit:    16 * 1024 * 1024,
		ErrorHandler: apperr.Handler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	if cfg.StorageBackend == "local" || cfg.StorageBackend == "" {
		app.Static(cfg.MediaURLPrefix, cfg.MediaDir, fiber.Static{
			Browse: false,
			MaxAge: 3600,
		})
	}
	return app
}

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authService *services.AuthService,
	modules []apps.Module,
) {
	authHandler := handlers.NewAuthHandler(authService)
	healthHandler := handlers.NewHealthHandler(db, len(modules))
	authenticated := middleware.Authenticated(cfg, authService)

	// Auth: stricter per-IP limit.
	auth := app.Group("/auth", rateLimit(cfg.RateLimitAuth))
	auth.Post("/register/farmer", authHandler.RegisterFarmer)
	auth.Post("/register/company", authHandler.RegisterCompany)
	auth.Post("/token", authHandler.Token)

	app.Get("/users/me", append(authenticated, authHandler.Me)...)

	api := app.Group("/api", rateLimit(cfg.RateLimitAPI))

	// Public routes first: the authenticated group below is mounted on the
	// same prefix and would otherwise run for them too. It also runs for
	// unknown /api paths, so those answer 401 before 404.
	api.Get("/health", healthHandler.Check)

	protected := api.Group("", authenticated...)
	for _, m := range modules {
		m.RegisterRoutes(protected, db, cfg)
	}
}

func rateLimit(max int) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests")
		},
	})
}
