package http

import (
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"github.com/fetullahyldz/qr.menux.com-sub001/internal/api/http/handlers"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/auth"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Metrics  *handlers.MetricsHandler
	Auth     *handlers.AuthHandler
	Content  *handlers.ContentHandler
	Menu     *handlers.MenuHandler
	Cart     *handlers.CartHandler
	Pages    *handlers.PagesHandler
	Sessions *auth.SessionMiddleware
	Guard    auth.Guard
	// StaticDir holds the built browser app; empty disables static serving.
	StaticDir string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Metrics.Snapshot)

	app.Use(cfg.Sessions.Handle)

	requireAdmin := auth.Require(cfg.Guard, domain.RoleAdmin)
	requireStaff := auth.Require(cfg.Guard, domain.RoleAdmin, domain.RoleWaiter)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Get("/me", auth.RequireAnyRole(cfg.Guard), cfg.Auth.Me)

	api := app.Group("/api")
	api.Get("/settings", cfg.Content.Settings)
	api.Get("/banners", cfg.Content.Banners)
	api.Get("/social-media", cfg.Content.SocialMedia)
	api.Get("/categories", cfg.Menu.Categories)
	api.Get("/products", cfg.Menu.Products)
	api.Get("/tables/:number", cfg.Menu.Table)
	api.Post("/waiter-calls", cfg.Menu.CallWaiter)
	api.Post("/feedback", cfg.Menu.Feedback)

	api.Get("/cart", cfg.Cart.Get)
	api.Post("/cart/items", cfg.Cart.AddItem)
	api.Put("/cart/items/:productId", cfg.Cart.SetQuantity)
	api.Delete("/cart/items/:productId", cfg.Cart.RemoveItem)
	api.Delete("/cart", cfg.Cart.Clear)
	api.Post("/cart/checkout", cfg.Cart.Checkout)

	admin := app.Group("/admin/api")
	admin.Get("/orders", requireStaff, cfg.Menu.Orders)
	admin.Put("/orders/:id/status", requireStaff, cfg.Menu.UpdateOrderStatus)

	admin.Get("/settings", requireAdmin, cfg.Content.AdminSettings)
	admin.Get("/settings/:key", requireAdmin, cfg.Content.AdminSetting)
	admin.Put("/settings/:key", requireAdmin, cfg.Content.UpdateSetting)
	admin.Post("/settings/:key/upload", requireAdmin, cfg.Content.UploadSetting)

	admin.Get("/banners", requireAdmin, cfg.Content.AdminBanners)
	admin.Post("/banners", requireAdmin, cfg.Content.CreateBanner)
	admin.Post("/banners/upload", requireAdmin, cfg.Content.UploadBannerImage)
	admin.Put("/banners/:id", requireAdmin, cfg.Content.UpdateBanner)
	admin.Delete("/banners/:id", requireAdmin, cfg.Content.DeleteBanner)

	admin.Get("/social-media", requireAdmin, cfg.Content.AdminSocialMedia)
	admin.Post("/social-media", requireAdmin, cfg.Content.CreateSocialMedia)
	admin.Put("/social-media/:id", requireAdmin, cfg.Content.UpdateSocialMedia)
	admin.Delete("/social-media/:id", requireAdmin, cfg.Content.DeleteSocialMedia)

	admin.Post("/categories", requireAdmin, cfg.Menu.CreateCategory)
	admin.Put("/categories/:id", requireAdmin, cfg.Menu.UpdateCategory)
	admin.Delete("/categories/:id", requireAdmin, cfg.Menu.DeleteCategory)
	admin.Post("/products", requireAdmin, cfg.Menu.CreateProduct)
	admin.Put("/products/:id", requireAdmin, cfg.Menu.UpdateProduct)
	admin.Delete("/products/:id", requireAdmin, cfg.Menu.DeleteProduct)
	admin.Get("/tables", requireAdmin, cfg.Menu.Tables)
	admin.Post("/tables", requireAdmin, cfg.Menu.CreateTable)
	admin.Put("/tables/:id", requireAdmin, cfg.Menu.UpdateTable)
	admin.Delete("/tables/:id", requireAdmin, cfg.Menu.DeleteTable)

	admin.Post("/cache/invalidate", requireAdmin, cfg.Content.Invalidate)

	app.Get("/admin/orders", requireStaff, cfg.Pages.Admin)
	app.Get("/admin", requireAdmin, cfg.Pages.Admin)
	app.Get("/admin/*", requireAdmin, cfg.Pages.Admin)

	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
		app.Get("/*", func(c *fiber.Ctx) error {
			return c.SendFile(filepath.Join(cfg.StaticDir, "index.html"))
		})
	}
}
