package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fetullahyldz/qr.menux.com-sub001/internal/apiclient"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/domain"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/storage"
)

var (
	// ErrInvalidCredentials is returned when the backend refuses a login or
	// answers in a shape that carries no session.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMissingCredentials is returned before any call when a field is blank.
	ErrMissingCredentials = errors.New("username and password are required")
)

// Backend is the part of the HTTP wrapper the auth client needs.
type Backend interface {
	Get(ctx context.Context, path string) (*apiclient.Response, error)
	Post(ctx context.Context, path string, body any) (*apiclient.Response, error)
	SetToken(token string)
}

// Client owns one visitor's session. State is derived from durable storage
// at construction and never verified against the backend there.
type Client struct {
	api    Backend
	store  storage.Store
	logger *zap.Logger
	now    func() time.Time

	mu            sync.RWMutex
	token         string
	user          *domain.User
	authenticated bool
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock replaces time.Now, used for JWT expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient restores the session persisted in store.
func NewClient(ctx context.Context, api Backend, store storage.Store, opts ...Option) *Client {
	c := &Client{
		api:    api,
		store:  store,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.restore(ctx)
	return c
}

func (c *Client) restore(ctx context.Context) {
	token, hasToken, err := c.store.Get(ctx, storage.KeyToken)
	if err != nil {
		c.logger.Warn("read stored token", zap.Error(err))
		return
	}
	rawUser, hasUser, err := c.store.Get(ctx, storage.KeyUser)
	if err != nil {
		c.logger.Warn("read stored user", zap.Error(err))
		return
	}
	if !hasToken && !hasUser {
		return
	}

	var user domain.User
	valid := hasToken && hasUser && strings.TrimSpace(token) != ""
	if valid {
		if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
			c.logger.Debug("discarding unparsable stored user", zap.Error(err))
			valid = false
		}
	}
	if valid && tokenExpired(token, c.now()) {
		c.logger.Debug("discarding expired stored token")
		valid = false
	}
	if !valid {
		if err := c.store.Delete(ctx, storage.KeyToken, storage.KeyUser); err != nil {
			c.logger.Warn("clear invalid session", zap.Error(err))
		}
		return
	}

	c.token = token
	c.user = &user
	c.authenticated = true
	c.api.SetToken(token)
}

type loginSession struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type loginReply struct {
	loginSession
	Data *loginSession `json:"data"`
}

// decodeLogin accepts the session at top level or nested under data.
func decodeLogin(raw []byte) (loginSession, string, bool) {
	var reply loginReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return loginSession{}, "", false
	}
	if reply.Token != "" && reply.User != nil {
		return reply.loginSession, "flat", true
	}
	if reply.Data != nil && reply.Data.Token != "" && reply.Data.User != nil {
		return *reply.Data, "nested", true
	}
	return loginSession{}, "", false
}

// Login exchanges credentials for a session and persists it.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	if strings.TrimSpace(creds.Username) == "" || creds.Password == "" {
		return nil, ErrMissingCredentials
	}

	resp, err := c.api.Post(ctx, "/auth/login", creds)
	if err != nil {
		if apiclient.IsRejected(err) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		return nil, err
	}

	session, shape, ok := decodeLogin(resp.Raw)
	if !ok {
		return nil, ErrInvalidCredentials
	}
	c.logger.Debug("login succeeded", zap.String("shape", shape), zap.String("username", session.User.Username))

	c.api.SetToken(session.Token)
	if err := c.store.Set(ctx, storage.KeyToken, session.Token); err != nil {
		c.logger.Warn("persist token", zap.Error(err))
	}
	if err := storage.SetJSON(ctx, c.store, storage.KeyUser, session.User); err != nil {
		c.logger.Warn("persist user", zap.Error(err))
	}

	c.mu.Lock()
	c.token = session.Token
	c.user = session.User
	c.authenticated = true
	c.mu.Unlock()

	user := *session.User
	return &user, nil
}

// Logout forgets the session locally. The backend is not called.
func (c *Client) Logout(ctx context.Context) {
	c.api.SetToken("")
	if err := c.store.Delete(ctx, storage.KeyToken, storage.KeyUser); err != nil {
		c.logger.Warn("clear session", zap.Error(err))
	}

	c.mu.Lock()
	c.token = ""
	c.user = nil
	c.authenticated = false
	c.mu.Unlock()
}

// IsAuthenticated reports the in-memory session state.
func (c *Client) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authenticated
}

// User returns a copy of the session user, or nil.
func (c *Client) User() *domain.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return nil
	}
	user := *c.user
	return &user
}

// Role returns the session user's role, or "" when anonymous.
func (c *Client) Role() domain.Role {
	if u := c.User(); u != nil {
		return u.Role
	}
	return ""
}

// Token returns the session bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// CurrentUser refreshes the user record from /auth/me. Any failure returns
// the last known user instead of an error.
func (c *Client) CurrentUser(ctx context.Context) *domain.User {
	if c.Token() == "" {
		return c.User()
	}

	resp, err := c.api.Get(ctx, "/auth/me")
	if err != nil {
		c.logger.Warn("refresh current user", zap.Error(err))
		return c.User()
	}

	user, err := decodeUser(resp)
	if err != nil {
		c.logger.Warn("decode current user", zap.Error(err))
		return c.User()
	}

	if err := storage.SetJSON(ctx, c.store, storage.KeyUser, user); err != nil {
		c.logger.Warn("persist user", zap.Error(err))
	}
	c.mu.Lock()
	c.user = user
	c.mu.Unlock()

	out := *user
	return &out
}

// decodeUser accepts the user as data itself or as data.user.
func decodeUser(resp *apiclient.Response) (*domain.User, error) {
	var wrapped struct {
		User *domain.User `json:"user"`
	}
	if err := resp.DecodeData(&wrapped); err == nil && wrapped.User != nil {
		return wrapped.User, nil
	}
	var user domain.User
	if err := resp.DecodeData(&user); err != nil {
		return nil, err
	}
	if user.ID == 0 && user.Username == "" {
		return nil, errors.New("response carries no user")
	}
	return &user, nil
}
