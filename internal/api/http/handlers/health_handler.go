package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fetullahyldz/qr.menux.com-sub001/internal/apiclient"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/storage"
)

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	store       storage.Store
	backend     apiclient.API
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, store storage.Store, backend apiclient.API) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, store: store, backend: backend}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports readiness of the visitor storage and the restaurant backend.
// A backend that answers with a rejection still counts as reachable.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true

	if err := h.pingStore(ctx); err != nil {
		depStatus["storage"] = err.Error()
		ready = false
	} else {
		depStatus["storage"] = "ok"
	}

	if _, err := h.backend.Get(ctx, "/settings"); err != nil && !apiclient.IsRejected(err) {
		depStatus["backend"] = err.Error()
		ready = false
	} else {
		depStatus["backend"] = "ok"
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"success": false,
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "one or more dependencies unavailable",
			"details": depStatus,
		},
	})
}

func (h *HealthHandler) pingStore(ctx context.Context) error {
	if pinger, ok := h.store.(storage.Pinger); ok {
		return pinger.Ping(ctx)
	}
	_, _, err := h.store.Get(ctx, "health")
	return err
}
