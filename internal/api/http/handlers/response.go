package handlers

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/fetullahyldz/qr.menux.com-sub001/internal/apiclient"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/auth"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/domain"
	apperrors "github.com/fetullahyldz/qr.menux.com-sub001/pkg/util"
)

func writeOK(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"success": true, "data": data})
}

func writeCreated(c *fiber.Ctx, data any) error {
	return c.Status(http.StatusCreated).JSON(fiber.Map{"success": true, "data": data})
}

func idParam(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid "+name, map[string]any{name: c.Params(name)})
	}
	return id, nil
}

func sessionClient(c *fiber.Ctx) (*auth.Client, error) {
	client, ok := auth.ClientFromContext(c)
	if !ok {
		return nil, apperrors.NewInternalError(nil)
	}
	return client, nil
}

// backendContext carries the visitor's token to shared clients.
func backendContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if client, ok := auth.ClientFromContext(c); ok {
		if token := client.Token(); token != "" {
			ctx = apiclient.WithToken(ctx, token)
		}
	}
	return ctx
}

// formFile reads a multipart upload into memory.
func formFile(c *fiber.Ctx, field string) (domain.File, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return domain.File{}, apperrors.NewValidationError("file required", map[string]any{field: "This field is required"})
	}
	f, err := header.Open()
	if err != nil {
		return domain.File{}, apperrors.NewInternalError(err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return domain.File{}, apperrors.NewInternalError(err)
	}
	return domain.File{
		Name:        header.Filename,
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Content:     content,
	}, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}
