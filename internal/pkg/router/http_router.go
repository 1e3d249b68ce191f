package router

import (
	"github.com/gofiber/fiber/v2"
	gothfiber "github.com/shareed2k/goth_fiber"

	"github.com/evergreengarden/portal/app/controllers"
	"github.com/evergreengarden/portal/internal/pkg/middleware"
	"github.com/evergreengarden/portal/internal/pkg/oauth"
	"github.com/evergreengarden/portal/internal/pkg/session"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// init oauth providers
	oauth.Setup()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	h.registerPublicRoutes(app)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	app.Get("/", controllers.HandleStart)
	app.Get("/health", controllers.HandleHealth)

	// Social OAuth
	app.Get("/auth/:provider", gothfiber.BeginAuthHandler)
	app.Get("/auth/:provider/callback", controllers.HandleOAuthCallback)
	app.Post("/oauth/logout", middleware.RequireAuth, controllers.HandleOAuthLogout)
}
