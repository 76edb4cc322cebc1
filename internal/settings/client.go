// Package settings is the read-through cache over restaurant settings,
// banners and social media links.
package settings

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/fetullahyldz/qr.menux.com-sub001/internal/apiclient"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/domain"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/events"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/storage"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/validation"
)

const (
	// DefaultTTL is how long a fetched resource is served without a refetch.
	DefaultTTL = 5 * time.Minute
	// DefaultFallbackTTL bounds how long an upload fallback stays mirrored.
	DefaultFallbackTTL = 24 * time.Hour
)

// Resource names one cached resource family.
type Resource string

const (
	ResourceSettings    Resource = "settings"
	ResourceBanners     Resource = "banners"
	ResourceSocialMedia Resource = "social_media"
)

// Resources lists every cached resource family.
func Resources() []Resource {
	return []Resource{ResourceSettings, ResourceBanners, ResourceSocialMedia}
}

// ParseResource maps an external name to a Resource.
func ParseResource(name string) (Resource, bool) {
	switch name {
	case "settings":
		return ResourceSettings, true
	case "banners":
		return ResourceBanners, true
	case "social_media", "social-media":
		return ResourceSocialMedia, true
	}
	return "", false
}

// CacheObserver receives one call per cache lookup.
type CacheObserver interface {
	RecordCache(resource string, hit bool)
}

// ListOptions tunes banner and social media reads.
type ListOptions struct {
	ForceRefresh bool
	ActiveOnly   bool
}

// Client caches reads for ttl and clears a resource after each successful
// write to it. Reads never fail; they degrade to the last cached value or
// to an empty one. Reads made with a token from apiclient.WithToken are
// cached apart from anonymous ones, since the backend may answer them with
// non-public settings.
type Client struct {
	api         apiclient.API
	ttl         time.Duration
	fallbackTTL time.Duration
	now         func() time.Time
	logger      *zap.Logger
	observer    CacheObserver
	dispatcher  events.Dispatcher
	mirror      storage.Store

	public contentCache
	staff  contentCache
}

// contentCache holds one entry per resource for a single auth scope.
type contentCache struct {
	settings    entry[domain.SiteSettings]
	banners     entry[[]domain.Banner]
	socialMedia entry[[]domain.SocialMedia]
}

func (c *Client) cacheFor(ctx context.Context) *contentCache {
	if _, ok := apiclient.TokenFromContext(ctx); ok {
		return &c.staff
	}
	return &c.public
}

// Option configures a Client.
type Option func(*Client)

func WithTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithObserver(observer CacheObserver) Option {
	return func(c *Client) { c.observer = observer }
}

func WithDispatcher(dispatcher events.Dispatcher) Option {
	return func(c *Client) { c.dispatcher = dispatcher }
}

// WithMirror sets the store that receives data URLs produced by the upload
// fallback. Each one is as large as the uploaded file, so entries expire
// after the fallback TTL on stores that implement storage.Expirer.
func WithMirror(store storage.Store) Option {
	return func(c *Client) { c.mirror = store }
}

// WithFallbackTTL sets how long mirrored upload fallbacks are kept.
func WithFallbackTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl > 0 {
			c.fallbackTTL = ttl
		}
	}
}

// NewClient builds a settings client over api.
func NewClient(api apiclient.API, opts ...Option) *Client {
	c := &Client{api: api, ttl: DefaultTTL, fallbackTTL: DefaultFallbackTTL, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// GetSettings returns the settings mapping. The result is a copy.
func (c *Client) GetSettings(ctx context.Context, force bool) domain.SiteSettings {
	s := read(ctx, c, ResourceSettings, &c.cacheFor(ctx).settings, force, c.fetchSettings)
	if s == nil {
		return domain.SiteSettings{}
	}
	return s.Clone()
}

// GetSetting reads a single setting from the backend, falling back to the
// cached mapping.
func (c *Client) GetSetting(ctx context.Context, key string) (string, bool) {
	if key == "" {
		return "", false
	}
	resp, err := c.api.Get(ctx, "/settings/"+url.PathEscape(key))
	if err == nil {
		if v, ok := decodeSettingValue(payload(resp)); ok {
			return v, true
		}
	} else if !apiclient.IsNotFound(err) {
		c.logger.Warn("setting fetch failed, using cached settings",
			zap.String("key", key), zap.Error(err))
	}
	return c.GetSettings(ctx, false).Get(key)
}

// UpdateSetting writes one setting.
func (c *Client) UpdateSetting(ctx context.Context, key string, update domain.SettingUpdate) error {
	if key == "" {
		return validation.Field("key", "This field is required")
	}
	if _, err := c.api.Put(ctx, "/settings/"+url.PathEscape(key), update); err != nil {
		return fmt.Errorf("update setting %s: %w", key, err)
	}
	c.invalidate(ctx, ResourceSettings, "update")
	return nil
}

// GetBanners returns banners ordered by display_order.
func (c *Client) GetBanners(ctx context.Context, opts ListOptions) []domain.Banner {
	all := read(ctx, c, ResourceBanners, &c.cacheFor(ctx).banners, opts.ForceRefresh, c.fetchBanners)
	out := make([]domain.Banner, 0, len(all))
	for _, b := range all {
		if opts.ActiveOnly && !bool(b.IsActive) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func (c *Client) CreateBanner(ctx context.Context, in domain.BannerInput) (domain.Banner, error) {
	if err := validation.Struct(in); err != nil {
		return domain.Banner{}, err
	}
	resp, err := c.api.Post(ctx, "/banners", in)
	if err != nil {
		return domain.Banner{}, fmt.Errorf("create banner: %w", err)
	}
	c.invalidate(ctx, ResourceBanners, "create")
	return decodeBanner(resp, 0, in), nil
}

func (c *Client) UpdateBanner(ctx context.Context, id int64, in domain.BannerInput) (domain.Banner, error) {
	if err := validation.Struct(in); err != nil {
		return domain.Banner{}, err
	}
	resp, err := c.api.Put(ctx, fmt.Sprintf("/banners/%d", id), in)
	if err != nil {
		return domain.Banner{}, fmt.Errorf("update banner %d: %w", id, err)
	}
	c.invalidate(ctx, ResourceBanners, "update")
	return decodeBanner(resp, id, in), nil
}

func (c *Client) DeleteBanner(ctx context.Context, id int64) error {
	if _, err := c.api.Delete(ctx, fmt.Sprintf("/banners/%d", id)); err != nil {
		return fmt.Errorf("delete banner %d: %w", id, err)
	}
	c.invalidate(ctx, ResourceBanners, "delete")
	return nil
}

// GetSocialMedia returns social media links ordered by display_order.
func (c *Client) GetSocialMedia(ctx context.Context, opts ListOptions) []domain.SocialMedia {
	all := read(ctx, c, ResourceSocialMedia, &c.cacheFor(ctx).socialMedia, opts.ForceRefresh, c.fetchSocialMedia)
	out := make([]domain.SocialMedia, 0, len(all))
	for _, s := range all {
		if opts.ActiveOnly && !bool(s.IsActive) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func (c *Client) CreateSocialMedia(ctx context.Context, in domain.SocialMediaInput) (domain.SocialMedia, error) {
	if err := validation.Struct(in); err != nil {
		return domain.SocialMedia{}, err
	}
	resp, err := c.api.Post(ctx, "/social-media", in)
	if err != nil {
		return domain.SocialMedia{}, fmt.Errorf("create social media: %w", err)
	}
	c.invalidate(ctx, ResourceSocialMedia, "create")
	return decodeSocialMedia(resp, 0, in), nil
}

func (c *Client) UpdateSocialMedia(ctx context.Context, id int64, in domain.SocialMediaInput) (domain.SocialMedia, error) {
	if err := validation.Struct(in); err != nil {
		return domain.SocialMedia{}, err
	}
	resp, err := c.api.Put(ctx, fmt.Sprintf("/social-media/%d", id), in)
	if err != nil {
		return domain.SocialMedia{}, fmt.Errorf("update social media %d: %w", id, err)
	}
	c.invalidate(ctx, ResourceSocialMedia, "update")
	return decodeSocialMedia(resp, id, in), nil
}

func (c *Client) DeleteSocialMedia(ctx context.Context, id int64) error {
	if _, err := c.api.Delete(ctx, fmt.Sprintf("/social-media/%d", id)); err != nil {
		return fmt.Errorf("delete social media %d: %w", id, err)
	}
	c.invalidate(ctx, ResourceSocialMedia, "delete")
	return nil
}

// Invalidate clears the cache entry for r so the next read refetches.
func (c *Client) Invalidate(ctx context.Context, r Resource) {
	c.invalidate(ctx, r, "manual")
}

func (c *Client) invalidate(ctx context.Context, r Resource, reason string) {
	switch r {
	case ResourceSettings:
		c.public.settings.clear()
		c.staff.settings.clear()
	case ResourceBanners:
		c.public.banners.clear()
		c.staff.banners.clear()
	case ResourceSocialMedia:
		c.public.socialMedia.clear()
		c.staff.socialMedia.clear()
	default:
		return
	}
	c.logger.Debug("cache invalidated", zap.String("resource", string(r)), zap.String("reason", reason))
	if c.dispatcher != nil {
		payload := events.ContentInvalidatedPayload{Resource: string(r), Reason: reason}
		if err := c.dispatcher.Publish(ctx, events.NewEvent(events.EventContentInvalidated, "", payload)); err != nil {
			c.logger.Warn("invalidation event handler failed", zap.Error(err))
		}
	}
}

// read serves entry while fresh, otherwise fetches and replaces it. A failed
// fetch falls back to the last cached value, then to the zero value.
func read[T any](ctx context.Context, c *Client, r Resource, e *entry[T], force bool, fetch func(context.Context) (T, error)) T {
	if !force {
		if v, ok := e.fresh(c.now(), c.ttl); ok {
			c.record(r, true)
			return v
		}
	}
	c.record(r, false)

	gen := e.begin()
	v, err := fetch(ctx)
	if err != nil {
		last, ok := e.last()
		c.logger.Warn("content fetch failed",
			zap.String("resource", string(r)),
			zap.Bool("stale_fallback", ok),
			zap.Error(err))
		return last
	}
	e.store(v, c.now(), gen)
	return v
}

func (c *Client) record(r Resource, hit bool) {
	if c.observer != nil {
		c.observer.RecordCache(string(r), hit)
	}
}

func (c *Client) fetchSettings(ctx context.Context) (domain.SiteSettings, error) {
	resp, err := c.api.Get(ctx, "/settings")
	if err != nil {
		return nil, err
	}
	return decodeSettings(payload(resp))
}

func (c *Client) fetchBanners(ctx context.Context) ([]domain.Banner, error) {
	resp, err := c.api.Get(ctx, "/banners")
	if err != nil {
		return nil, err
	}
	list, err := decodeList[domain.Banner](payload(resp), "banners", "items")
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].DisplayOrder < list[j].DisplayOrder })
	return list, nil
}

func (c *Client) fetchSocialMedia(ctx context.Context) ([]domain.SocialMedia, error) {
	resp, err := c.api.Get(ctx, "/social-media")
	if err != nil {
		return nil, err
	}
	list, err := decodeList[domain.SocialMedia](payload(resp), "social_media", "socialMedia", "items")
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].DisplayOrder < list[j].DisplayOrder })
	return list, nil
}

// decodeBanner reads the echoed banner, or rebuilds it from the input when
// the backend only acknowledged the write.
func decodeBanner(resp *apiclient.Response, id int64, in domain.BannerInput) domain.Banner {
	var b domain.Banner
	if err := resp.DecodeData(&b); err == nil && b.ID != 0 {
		return b
	}
	return domain.Banner{
		ID:           id,
		Title:        in.Title,
		Subtitle:     in.Subtitle,
		ImageURL:     in.ImageURL,
		ButtonText:   in.ButtonText,
		ButtonLink:   in.ButtonLink,
		DisplayOrder: in.DisplayOrder,
		IsActive:     domain.Flag(in.IsActive),
	}
}

func decodeSocialMedia(resp *apiclient.Response, id int64, in domain.SocialMediaInput) domain.SocialMedia {
	var s domain.SocialMedia
	if err := resp.DecodeData(&s); err == nil && s.ID != 0 {
		return s
	}
	return domain.SocialMedia{
		ID:           id,
		Platform:     in.Platform,
		URL:          in.URL,
		Icon:         in.Icon,
		DisplayOrder: in.DisplayOrder,
		IsActive:     domain.Flag(in.IsActive),
	}
}
