package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fetullahyldz/qr.menux.com-sub001/internal/apiclient"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/config"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/domain"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/storage"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/testutil"
	apperrors "github.com/fetullahyldz/qr.menux.com-sub001/pkg/util"
)

const testVisitor = "6f1c2a52-8d0c-4d5e-9a53-6f2b9f0d7f11"

func newGuardedApp(t *testing.T, store storage.Store, cfg config.GuardConfig) *fiber.App {
	t.Helper()
	api := apiclient.New(testutil.NewBackend(t).Config(), zap.NewNop())
	sessions := NewSessionMiddleware(api, store, config.SessionConfig{CookieName: "qrm_sid"}, zap.NewNop())
	guard := NewGuard(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"code": de.Code, "details": de.Details})
		},
	})
	app.Use(sessions.Handle)
	app.Get("/admin", Require(guard, domain.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendString("dashboard")
	})
	app.Get("/account", RequireAnyRole(guard), func(c *fiber.Ctx) error {
		return c.SendString("account")
	})
	return app
}

func seedSession(t *testing.T, store storage.Store, role domain.Role) {
	t.Helper()
	scoped := VisitorStore(store, testVisitor)
	require.NoError(t, scoped.Set(context.Background(), storage.KeyToken, "abc"))
	require.NoError(t, storage.SetJSON(context.Background(), scoped, storage.KeyUser, domain.User{ID: 1, Role: role}))
}

func guardedRequest(path, accept string, withCookie bool) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if withCookie {
		req.AddCookie(&http.Cookie{Name: "qrm_sid", Value: testVisitor})
	}
	return req
}

func TestRequireRedirectsAnonymousToLogin(t *testing.T) {
	app := newGuardedApp(t, storage.NewMemoryStore(), config.GuardConfig{})

	resp, err := app.Test(guardedRequest("/admin", "text/html", false))
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?from=%2Fadmin", resp.Header.Get("Location"))
	assert.NotEmpty(t, resp.Header.Get("Set-Cookie"))
}

func TestRequireReportsLoginToAPICallers(t *testing.T) {
	app := newGuardedApp(t, storage.NewMemoryStore(), config.GuardConfig{})

	resp, err := app.Test(guardedRequest("/admin", "application/json", false))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "LOGIN_REQUIRED", body.Code)
	assert.Equal(t, "/login?from=%2Fadmin", body.Details["redirect"])
}

func TestRequireRendersForAllowedRole(t *testing.T) {
	store := storage.NewMemoryStore()
	seedSession(t, store, domain.RoleAdmin)
	app := newGuardedApp(t, store, config.GuardConfig{})

	resp, err := app.Test(guardedRequest("/admin", "text/html", true))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireSendsOtherRolesHome(t *testing.T) {
	store := storage.NewMemoryStore()
	seedSession(t, store, "editor")
	app := newGuardedApp(t, store, config.GuardConfig{})

	resp, err := app.Test(guardedRequest("/admin", "text/html", true))
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp, err = app.Test(guardedRequest("/admin", "application/json", true))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(guardedRequest("/account", "text/html", true))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireExplicitDeny(t *testing.T) {
	store := storage.NewMemoryStore()
	seedSession(t, store, "editor")
	app := newGuardedApp(t, store, config.GuardConfig{ExplicitDeny: true})

	resp, err := app.Test(guardedRequest("/admin", "text/html", true))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRequireReevaluatesEveryRequest(t *testing.T) {
	store := storage.NewMemoryStore()
	seedSession(t, store, domain.RoleAdmin)
	app := newGuardedApp(t, store, config.GuardConfig{})

	resp, err := app.Test(guardedRequest("/admin", "text/html", true))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, VisitorStore(store, testVisitor).Delete(context.Background(), storage.KeyToken, storage.KeyUser))

	resp, err = app.Test(guardedRequest("/admin", "text/html", true))
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}
