package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fetullahyldz/qr.menux.com-sub001/internal/api/dto"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/apiclient"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/auth"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/cart"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/domain"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/events"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/menu"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/validation"
	apperrors "github.com/fetullahyldz/qr.menux.com-sub001/pkg/util"
)

// CartHandler manages the visitor cart and checkout.
type CartHandler struct {
	menu       *menu.Client
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewCartHandler constructs handler.
func NewCartHandler(client *menu.Client, dispatcher events.Dispatcher, logger *zap.Logger) *CartHandler {
	return &CartHandler{menu: client, dispatcher: dispatcher, logger: logger}
}

func (h *CartHandler) cart(c *fiber.Ctx) (*cart.Cart, error) {
	store, ok := auth.StoreFromContext(c)
	if !ok {
		return nil, apperrors.NewInternalError(nil)
	}
	return cart.New(store, auth.VisitorFromContext(c), h.dispatcher, h.logger), nil
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(c *fiber.Ctx) error {
	crt, err := h.cart(c)
	if err != nil {
		return err
	}
	sum, err := crt.Summary(c.UserContext())
	if err != nil {
		return err
	}
	return writeOK(c, sum)
}

// AddItem handles POST /api/cart/items. The line is priced from the
// backend product so a diner cannot choose what they pay.
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var req dto.AddCartItemRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.ProductID <= 0 {
		return validation.Field("productId", "Must be greater than 0")
	}
	crt, err := h.cart(c)
	if err != nil {
		return err
	}
	product, err := h.menu.GetProduct(backendContext(c), req.ProductID)
	if err != nil {
		if apiclient.IsNotFound(err) {
			return apperrors.NewNotFound("product", map[string]any{"productId": req.ProductID})
		}
		return err
	}
	sum, err := crt.Add(c.UserContext(), domain.CartItem{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Name:      product.Name,
		Price:     product.Price,
		ImageURL:  product.ImageURL,
		Notes:     req.Notes,
	})
	if err != nil {
		return err
	}
	return writeOK(c, sum)
}

// SetQuantity handles PUT /api/cart/items/:productId.
func (h *CartHandler) SetQuantity(c *fiber.Ctx) error {
	id, err := idParam(c, "productId")
	if err != nil {
		return err
	}
	var req dto.CartQuantityRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	crt, err := h.cart(c)
	if err != nil {
		return err
	}
	sum, err := crt.SetQuantity(c.UserContext(), id, req.Quantity)
	if err != nil {
		return err
	}
	return writeOK(c, sum)
}

// RemoveItem handles DELETE /api/cart/items/:productId.
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	id, err := idParam(c, "productId")
	if err != nil {
		return err
	}
	crt, err := h.cart(c)
	if err != nil {
		return err
	}
	sum, err := crt.Remove(c.UserContext(), id)
	if err != nil {
		return err
	}
	return writeOK(c, sum)
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	crt, err := h.cart(c)
	if err != nil {
		return err
	}
	if err := crt.Clear(c.UserContext()); err != nil {
		return err
	}
	return writeOK(c, cart.Summary{Items: []domain.CartItem{}})
}

// Checkout handles POST /api/cart/checkout. The cart is cleared only after
// the backend accepted the order.
func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	var req dto.CheckoutRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	crt, err := h.cart(c)
	if err != nil {
		return err
	}
	ctx := backendContext(c)

	items, err := crt.Items(ctx)
	if err != nil {
		return err
	}
	order, err := h.menu.CreateOrder(ctx, req.TableNumber, req.Notes, items)
	if err != nil {
		return err
	}
	if err := crt.Clear(ctx); err != nil {
		h.logger.Warn("cart not cleared after checkout",
			zap.String("visitor_id", auth.VisitorFromContext(c)),
			zap.Int64("order_id", order.ID),
			zap.Error(err))
	}

	if h.dispatcher != nil {
		payload := events.OrderPlacedPayload{
			OrderID:     order.ID,
			TableNumber: order.TableNumber,
			ItemCount:   len(order.Items),
			Total:       order.Total,
		}
		if err := h.dispatcher.Publish(ctx, events.NewEvent(events.EventOrderPlaced, auth.VisitorFromContext(c), payload)); err != nil {
			h.logger.Warn("order event handler failed", zap.Int64("order_id", order.ID), zap.Error(err))
		}
	}
	return writeCreated(c, order)
}
