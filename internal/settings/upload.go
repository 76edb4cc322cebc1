package settings

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/fetullahyldz/qr.menux.com-sub001/internal/domain"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/storage"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/validation"
)

// Multipart field names expected by the upload endpoints.
const (
	settingsUploadField = "file"
	bannerUploadField   = "image"
)

var errNoUploadURL = errors.New("upload reply carries no file url")

// UploadFile stores file as the value of setting key. When the backend
// cannot take the file the result is a data URL with Fallback set. Only an
// empty key or file is an error.
func (c *Client) UploadFile(ctx context.Context, key string, file domain.File) (domain.UploadResult, error) {
	if key == "" {
		return domain.UploadResult{}, validation.Field("key", "This field is required")
	}
	if len(file.Content) == 0 {
		return domain.UploadResult{}, validation.Field(settingsUploadField, "This field is required")
	}

	u, err := c.upload(ctx, "/settings/upload/"+url.PathEscape(key), settingsUploadField, file)
	if err != nil {
		c.logger.Warn("setting upload failed, using data url", zap.String("key", key), zap.Error(err))
		return c.fallback(ctx, key, file), nil
	}
	c.invalidate(ctx, ResourceSettings, "upload")
	return domain.UploadResult{Key: key, Value: u, ImageURL: u}, nil
}

// UploadBannerImage stores a banner image and returns its URL, or a data URL
// with Fallback set when the backend cannot take it.
func (c *Client) UploadBannerImage(ctx context.Context, file domain.File) (domain.UploadResult, error) {
	if len(file.Content) == 0 {
		return domain.UploadResult{}, validation.Field(bannerUploadField, "This field is required")
	}

	u, err := c.upload(ctx, "/banners/upload", bannerUploadField, file)
	if err != nil {
		c.logger.Warn("banner upload failed, using data url", zap.Error(err))
		return c.fallback(ctx, "", file), nil
	}
	return domain.UploadResult{Value: u, ImageURL: u}, nil
}

func (c *Client) upload(ctx context.Context, path, field string, file domain.File) (string, error) {
	resp, err := c.api.Upload(ctx, path, field, file)
	if err != nil {
		return "", err
	}
	u := uploadURL(resp.Raw)
	if u == "" {
		return "", errNoUploadURL
	}
	return u, nil
}

// fallback encodes file as a data URL and mirrors it under image_<unix-millis>.
func (c *Client) fallback(ctx context.Context, key string, file domain.File) domain.UploadResult {
	u := DataURL(file)
	if c.mirror != nil {
		mirrorKey := storage.ImageKeyPrefix + strconv.FormatInt(c.now().UnixMilli(), 10)
		if err := storage.SetWithTTL(ctx, c.mirror, mirrorKey, u, c.fallbackTTL); err != nil {
			c.logger.Warn("upload fallback mirror failed", zap.String("key", mirrorKey), zap.Error(err))
		}
	}
	return domain.UploadResult{Key: key, Value: u, ImageURL: u, Fallback: true}
}

// DataURL renders file as a self-contained data: URL.
func DataURL(file domain.File) string {
	mime := file.ContentType
	if mime == "" {
		mime, _, _ = strings.Cut(http.DetectContentType(file.Content), ";")
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(file.Content)
}
