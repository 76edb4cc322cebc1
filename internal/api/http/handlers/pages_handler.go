package handlers

import (
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"github.com/fetullahyldz/qr.menux.com-sub001/internal/auth"
)

// PagesHandler serves guarded admin page entry points.
type PagesHandler struct {
	staticDir string
}

// NewPagesHandler constructs handler. With an empty staticDir the pages
// answer with a JSON description instead of the app shell.
func NewPagesHandler(staticDir string) *PagesHandler {
	return &PagesHandler{staticDir: staticDir}
}

// Admin handles GET /admin and GET /admin/*.
func (h *PagesHandler) Admin(c *fiber.Ctx) error {
	if h.staticDir != "" {
		return c.SendFile(filepath.Join(h.staticDir, "index.html"))
	}
	page := fiber.Map{"page": c.Path()}
	if client, ok := auth.ClientFromContext(c); ok {
		page["user"] = client.User()
	}
	return writeOK(c, page)
}
