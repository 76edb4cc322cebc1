// Package apiclient is the wrapper every resource client uses to reach the
// restaurant REST backend.
package apiclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fetullahyldz/qr.menux.com-sub001/internal/config"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/domain"
)

// API is the surface resource clients depend on.
type API interface {
	Get(ctx context.Context, path string) (*Response, error)
	Post(ctx context.Context, path string, body any) (*Response, error)
	Put(ctx context.Context, path string, body any) (*Response, error)
	Delete(ctx context.Context, path string) (*Response, error)
	Upload(ctx context.Context, path, field string, file domain.File) (*Response, error)
}

// Client issues authenticated JSON calls over fiber's fasthttp agent.
type Client struct {
	baseURL string
	timeout time.Duration
	logger  *zap.Logger

	mu    sync.RWMutex
	token string
}

var _ API = (*Client)(nil)

// New builds a client for the configured backend.
func New(cfg config.BackendConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout(),
		logger:  logger,
	}
}

// Clone returns a client with the same backend settings and its own auth header.
func (c *Client) Clone() *Client {
	return &Client{baseURL: c.baseURL, timeout: c.timeout, logger: c.logger, token: c.Token()}
}

// SetToken installs the bearer token sent on every call. An empty token
// removes the header.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the installed bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type tokenKey struct{}

// WithToken overrides the bearer token for calls made with the returned context.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the token installed by WithToken, if any.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok && token != ""
}

func (c *Client) tokenFor(ctx context.Context) string {
	if token, ok := TokenFromContext(ctx); ok {
		return token
	}
	return c.Token()
}

func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, fiber.MethodGet, path, nil)
}

func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, fiber.MethodPost, path, jsonBody(body))
}

func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, fiber.MethodPut, path, jsonBody(body))
}

func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, fiber.MethodDelete, path, nil)
}

// Upload posts file as multipart/form-data under field.
func (c *Client) Upload(ctx context.Context, path, field string, file domain.File) (*Response, error) {
	if len(file.Content) == 0 {
		return nil, errors.New("upload: empty file")
	}
	name := file.Name
	if name == "" {
		name = "upload"
	}
	return c.do(ctx, fiber.MethodPost, path, func(a *fiber.Agent) {
		a.FileData(&fiber.FormFile{Fieldname: field, Name: name, Content: file.Content})
		a.MultipartForm(nil)
	})
}

func jsonBody(body any) func(*fiber.Agent) {
	if body == nil {
		return nil
	}
	return func(a *fiber.Agent) {
		a.JSON(body)
	}
}

func (c *Client) do(ctx context.Context, method, path string, prepare func(*fiber.Agent)) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); timeout <= 0 || remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}

	agent := fiber.AcquireAgent()
	req := agent.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	agent.Timeout(timeout)
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if token := c.tokenFor(ctx); token != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	if prepare != nil {
		prepare(agent)
	}

	start := time.Now()
	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		err := errors.Join(errs...)
		c.logger.Debug("backend call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w: %w", method, path, ErrUnavailable, err)
	}

	c.logger.Debug("backend call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("duration", time.Since(start)))

	resp, err := parseResponse(status, body)
	if err != nil {
		return resp, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}
