package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fetullahyldz/qr.menux.com-sub001/internal/apiclient"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/config"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/storage"
)

const (
	clientKey  = "auth_client"
	visitorKey = "visitor_id"
	storeKey   = "visitor_store"
)

// SessionMiddleware identifies the visitor by cookie and attaches an auth
// client restored from that visitor's storage namespace.
type SessionMiddleware struct {
	api    *apiclient.Client
	store  storage.Store
	cfg    config.SessionConfig
	logger *zap.Logger
}

// NewSessionMiddleware constructs middleware. api is cloned per request so
// every visitor carries its own auth header.
func NewSessionMiddleware(api *apiclient.Client, store storage.Store, cfg config.SessionConfig, logger *zap.Logger) *SessionMiddleware {
	if cfg.CookieName == "" {
		cfg.CookieName = "qrm_sid"
	}
	return &SessionMiddleware{api: api, store: store, cfg: cfg, logger: logger}
}

// Handle resolves the visitor and restores its session.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	visitorID := c.Cookies(m.cfg.CookieName)
	if _, err := uuid.Parse(visitorID); err != nil {
		visitorID = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     m.cfg.CookieName,
			Value:    visitorID,
			Path:     "/",
			Domain:   m.cfg.CookieDomain,
			Expires:  time.Now().Add(m.cfg.MaxAge()),
			Secure:   m.cfg.CookieSecure,
			HTTPOnly: true,
			SameSite: m.cfg.CookieSameSite,
		})
	}

	scoped := VisitorStore(m.store, visitorID)
	client := NewClient(c.UserContext(), m.api.Clone(), scoped, WithLogger(m.logger))

	c.Locals(visitorKey, visitorID)
	c.Locals(storeKey, scoped)
	c.Locals(clientKey, client)
	return c.Next()
}

// VisitorStore scopes store to a single visitor.
func VisitorStore(store storage.Store, visitorID string) storage.Store {
	return storage.WithPrefix(store, "visitor:"+visitorID+":")
}

// ClientFromContext retrieves the visitor's auth client.
func ClientFromContext(c *fiber.Ctx) (*Client, bool) {
	client, ok := c.Locals(clientKey).(*Client)
	return client, ok
}

// StoreFromContext retrieves the visitor's storage namespace.
func StoreFromContext(c *fiber.Ctx) (storage.Store, bool) {
	store, ok := c.Locals(storeKey).(storage.Store)
	return store, ok
}

// VisitorFromContext retrieves the visitor id.
func VisitorFromContext(c *fiber.Ctx) string {
	id, _ := c.Locals(visitorKey).(string)
	return id
}
