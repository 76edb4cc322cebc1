// Package cart keeps a visitor's cart in durable storage.
package cart

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fetullahyldz/qr.menux.com-sub001/internal/domain"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/events"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/storage"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/validation"
)

// Summary is the cart with its derived totals.
type Summary struct {
	Items []domain.CartItem `json:"items"`
	Count int               `json:"count"`
	Total decimal.Decimal   `json:"total"`
}

// Cart reads and writes the cart key of one visitor's store. Every mutation
// publishes cartUpdated.
type Cart struct {
	store      storage.Store
	visitorID  string
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// New returns the cart stored in store for visitorID.
func New(store storage.Store, visitorID string, dispatcher events.Dispatcher, logger *zap.Logger) *Cart {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cart{store: store, visitorID: visitorID, dispatcher: dispatcher, logger: logger}
}

// Items returns the stored lines. An unreadable cart is reported empty.
func (c *Cart) Items(ctx context.Context) ([]domain.CartItem, error) {
	raw, found, err := c.store.Get(ctx, storage.KeyCart)
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}
	if !found {
		return []domain.CartItem{}, nil
	}
	var items []domain.CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		c.logger.Warn("discarding unreadable cart",
			zap.String("visitor_id", c.visitorID),
			zap.Int("bytes", len(raw)),
			zap.Error(err))
		return []domain.CartItem{}, nil
	}

	out := make([]domain.CartItem, 0, len(items))
	for _, it := range items {
		if it.ProductID > 0 && it.Quantity > 0 {
			out = append(out, it)
		}
	}
	return out, nil
}

// Summary returns the items with count and total.
func (c *Cart) Summary(ctx context.Context) (Summary, error) {
	items, err := c.Items(ctx)
	if err != nil {
		return Summary{}, err
	}
	return summarize(items), nil
}

// Add puts item in the cart, merging quantity with an existing line for the
// same product. A zero quantity adds one.
func (c *Cart) Add(ctx context.Context, item domain.CartItem) (Summary, error) {
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	if err := checkItem(item); err != nil {
		return Summary{}, err
	}

	items, err := c.Items(ctx)
	if err != nil {
		return Summary{}, err
	}
	merged := false
	for i := range items {
		if items[i].ProductID == item.ProductID {
			items[i].Quantity += item.Quantity
			if item.Notes != "" {
				items[i].Notes = item.Notes
			}
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, item)
	}
	return c.save(ctx, items)
}

// SetQuantity replaces the quantity of a line; zero or less removes it.
func (c *Cart) SetQuantity(ctx context.Context, productID int64, quantity int) (Summary, error) {
	items, err := c.Items(ctx)
	if err != nil {
		return Summary{}, err
	}
	out := items[:0]
	for _, it := range items {
		if it.ProductID == productID {
			if quantity <= 0 {
				continue
			}
			it.Quantity = quantity
		}
		out = append(out, it)
	}
	return c.save(ctx, out)
}

// Remove drops the line for productID.
func (c *Cart) Remove(ctx context.Context, productID int64) (Summary, error) {
	return c.SetQuantity(ctx, productID, 0)
}

// Clear empties the cart.
func (c *Cart) Clear(ctx context.Context) error {
	if err := c.store.Delete(ctx, storage.KeyCart); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	c.publish(ctx, Summary{Items: []domain.CartItem{}, Total: decimal.Zero})
	return nil
}

func (c *Cart) save(ctx context.Context, items []domain.CartItem) (Summary, error) {
	if err := storage.SetJSON(ctx, c.store, storage.KeyCart, items); err != nil {
		return Summary{}, fmt.Errorf("save cart: %w", err)
	}
	sum := summarize(items)
	c.publish(ctx, sum)
	return sum, nil
}

func (c *Cart) publish(ctx context.Context, sum Summary) {
	if c.dispatcher == nil {
		return
	}
	payload := events.CartUpdatedPayload{Count: sum.Count, Total: sum.Total}
	if err := c.dispatcher.Publish(ctx, events.NewEvent(events.EventCartUpdated, c.visitorID, payload)); err != nil {
		c.logger.Warn("cartUpdated handler failed", zap.Error(err))
	}
}

func summarize(items []domain.CartItem) Summary {
	sum := Summary{Items: items, Total: decimal.Zero}
	if sum.Items == nil {
		sum.Items = []domain.CartItem{}
	}
	for _, it := range items {
		sum.Count += it.Quantity
		sum.Total = sum.Total.Add(it.LineTotal())
	}
	return sum
}

func checkItem(item domain.CartItem) error {
	switch {
	case item.ProductID <= 0:
		return validation.Field("productId", "Must be greater than 0")
	case item.Quantity < 0:
		return validation.Field("quantity", "Must be greater than or equal to 1")
	case item.Price.IsNegative():
		return validation.Field("price", "Must not be negative")
	}
	return nil
}
