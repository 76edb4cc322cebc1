package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fetullahyldz/qr.menux.com-sub001/internal/api/dto"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/domain"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/settings"
	apperrors "github.com/fetullahyldz/qr.menux.com-sub001/pkg/util"
)

// ContentHandler serves settings, banners and social media through the
// content cache.
type ContentHandler struct {
	content *settings.Client
}

// NewContentHandler constructs handler.
func NewContentHandler(content *settings.Client) *ContentHandler {
	return &ContentHandler{content: content}
}

// Settings handles GET /api/settings.
func (h *ContentHandler) Settings(c *fiber.Ctx) error {
	return writeOK(c, h.content.GetSettings(c.UserContext(), false))
}

// Banners handles GET /api/banners. Only active banners are public.
func (h *ContentHandler) Banners(c *fiber.Ctx) error {
	return writeOK(c, h.content.GetBanners(c.UserContext(), settings.ListOptions{ActiveOnly: true}))
}

// SocialMedia handles GET /api/social-media.
func (h *ContentHandler) SocialMedia(c *fiber.Ctx) error {
	return writeOK(c, h.content.GetSocialMedia(c.UserContext(), settings.ListOptions{ActiveOnly: true}))
}

// AdminSettings handles GET /admin/api/settings, always reading through.
func (h *ContentHandler) AdminSettings(c *fiber.Ctx) error {
	return writeOK(c, h.content.GetSettings(backendContext(c), true))
}

// AdminSetting handles GET /admin/api/settings/:key.
func (h *ContentHandler) AdminSetting(c *fiber.Ctx) error {
	key := c.Params("key")
	value, found := h.content.GetSetting(backendContext(c), key)
	if !found {
		return apperrors.NewNotFound("setting", map[string]any{"key": key})
	}
	return writeOK(c, fiber.Map{"key": key, "value": value})
}

// UpdateSetting handles PUT /admin/api/settings/:key.
func (h *ContentHandler) UpdateSetting(c *fiber.Ctx) error {
	var req dto.SettingUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	key := c.Params("key")
	if err := h.content.UpdateSetting(backendContext(c), key, req.ToDomain()); err != nil {
		return err
	}
	return writeOK(c, fiber.Map{"key": key, "value": req.Value})
}

// UploadSetting handles POST /admin/api/settings/:key/upload.
func (h *ContentHandler) UploadSetting(c *fiber.Ctx) error {
	file, err := formFile(c, "file")
	if err != nil {
		return err
	}
	result, err := h.content.UploadFile(backendContext(c), c.Params("key"), file)
	if err != nil {
		return err
	}
	return writeOK(c, result)
}

// AdminBanners handles GET /admin/api/banners, inactive banners included.
func (h *ContentHandler) AdminBanners(c *fiber.Ctx) error {
	opts := settings.ListOptions{ForceRefresh: c.QueryBool("refresh")}
	return writeOK(c, h.content.GetBanners(backendContext(c), opts))
}

func (h *ContentHandler) CreateBanner(c *fiber.Ctx) error {
	var in domain.BannerInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	banner, err := h.content.CreateBanner(backendContext(c), in)
	if err != nil {
		return err
	}
	return writeCreated(c, banner)
}

func (h *ContentHandler) UpdateBanner(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var in domain.BannerInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	banner, err := h.content.UpdateBanner(backendContext(c), id, in)
	if err != nil {
		return err
	}
	return writeOK(c, banner)
}

func (h *ContentHandler) DeleteBanner(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.content.DeleteBanner(backendContext(c), id); err != nil {
		return err
	}
	return writeOK(c, fiber.Map{"id": id})
}

// UploadBannerImage handles POST /admin/api/banners/upload.
func (h *ContentHandler) UploadBannerImage(c *fiber.Ctx) error {
	file, err := formFile(c, "image")
	if err != nil {
		return err
	}
	result, err := h.content.UploadBannerImage(backendContext(c), file)
	if err != nil {
		return err
	}
	return writeOK(c, result)
}

// AdminSocialMedia handles GET /admin/api/social-media.
func (h *ContentHandler) AdminSocialMedia(c *fiber.Ctx) error {
	opts := settings.ListOptions{ForceRefresh: c.QueryBool("refresh")}
	return writeOK(c, h.content.GetSocialMedia(backendContext(c), opts))
}

func (h *ContentHandler) CreateSocialMedia(c *fiber.Ctx) error {
	var in domain.SocialMediaInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	link, err := h.content.CreateSocialMedia(backendContext(c), in)
	if err != nil {
		return err
	}
	return writeCreated(c, link)
}

func (h *ContentHandler) UpdateSocialMedia(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var in domain.SocialMediaInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	link, err := h.content.UpdateSocialMedia(backendContext(c), id, in)
	if err != nil {
		return err
	}
	return writeOK(c, link)
}

func (h *ContentHandler) DeleteSocialMedia(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.content.DeleteSocialMedia(backendContext(c), id); err != nil {
		return err
	}
	return writeOK(c, fiber.Map{"id": id})
}

// Invalidate handles POST /admin/api/cache/invalidate.
func (h *ContentHandler) Invalidate(c *fiber.Ctx) error {
	var req dto.InvalidateRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	}

	targets := settings.Resources()
	if len(req.Resources) > 0 {
		targets = make([]settings.Resource, 0, len(req.Resources))
		for _, name := range req.Resources {
			r, found := settings.ParseResource(name)
			if !found {
				return apperrors.NewValidationError("unknown resource", map[string]any{"resources": name})
			}
			targets = append(targets, r)
		}
	}
	for _, r := range targets {
		h.content.Invalidate(c.UserContext(), r)
	}
	return writeOK(c, fiber.Map{"invalidated": targets})
}
