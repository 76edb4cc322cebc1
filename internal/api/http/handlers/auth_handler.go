package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fetullahyldz/qr.menux.com-sub001/internal/api/dto"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/auth"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/domain"
)

// AuthHandler exposes the visitor session endpoints.
type AuthHandler struct{}

// NewAuthHandler constructs handler.
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	client, err := sessionClient(c)
	if err != nil {
		return err
	}

	if _, err := client.Login(c.UserContext(), domain.Credentials{Username: req.Username, Password: req.Password}); err != nil {
		return err
	}
	return writeOK(c, session(client, client.User()))
}

// Logout handles POST /auth/logout. It never calls the backend.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	client, err := sessionClient(c)
	if err != nil {
		return err
	}
	client.Logout(c.UserContext())
	return writeOK(c, dto.SessionResponse{Authenticated: false})
}

// Me handles GET /auth/me, refreshing the user from the backend.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	client, err := sessionClient(c)
	if err != nil {
		return err
	}
	return writeOK(c, session(client, client.CurrentUser(c.UserContext())))
}

func session(client *auth.Client, user *domain.User) dto.SessionResponse {
	resp := dto.SessionResponse{Authenticated: client.IsAuthenticated(), User: user}
	if exp, found := auth.TokenExpiry(client.Token()); found {
		resp.ExpiresAt = &exp
	}
	return resp
}
