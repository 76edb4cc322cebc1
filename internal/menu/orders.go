package menu

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/fetullahyldz/qr.menux.com-sub001/internal/domain"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/validation"
)

var (
	ErrTableNotFound = errors.New("table not found")
	ErrEmptyCart     = errors.New("cart is empty")
)

var orderStatuses = map[domain.OrderStatus]bool{
	domain.OrderStatusPending:   true,
	domain.OrderStatusPreparing: true,
	domain.OrderStatusServed:    true,
	domain.OrderStatusCompleted: true,
	domain.OrderStatusCancelled: true,
}

// OrderFromCart builds the order payload for the cart lines.
func OrderFromCart(tableNumber, notes string, items []domain.CartItem) domain.OrderInput {
	in := domain.OrderInput{TableNumber: tableNumber, Notes: notes, Items: make([]domain.OrderItem, 0, len(items))}
	for _, it := range items {
		in.Items = append(in.Items, domain.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.Price,
			Notes:     it.Notes,
		})
	}
	return in
}

// CreateOrder places an order for the cart lines.
func (c *Client) CreateOrder(ctx context.Context, tableNumber, notes string, items []domain.CartItem) (domain.Order, error) {
	if len(items) == 0 {
		return domain.Order{}, ErrEmptyCart
	}
	in := OrderFromCart(tableNumber, notes, items)
	if err := validation.Struct(in); err != nil {
		return domain.Order{}, err
	}
	order, err := send[domain.Order](ctx, c.logger, c.api.Post, "/orders", in)
	if err != nil {
		return domain.Order{}, err
	}
	if order.TableNumber == "" {
		order.TableNumber = in.TableNumber
	}
	if len(order.Items) == 0 {
		order.Items = in.Items
	}
	if order.Total.IsZero() {
		for _, it := range in.Items {
			order.Total = order.Total.Add(it.UnitPrice.Mul(decimalFromInt(it.Quantity)))
		}
	}
	return order, nil
}

// ListOrders returns orders, filtered by status when one is given.
func (c *Client) ListOrders(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	path := "/orders"
	if status != "" {
		if !orderStatuses[status] {
			return nil, validation.Field("status", "Unknown order status")
		}
		path += "?" + url.Values{"status": {string(status)}}.Encode()
	}
	list, err := getList[domain.Order](ctx, c.api, path, "orders")
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return list, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	if !orderStatuses[status] {
		return validation.Field("status", "Unknown order status")
	}
	if _, err := c.api.Put(ctx, fmt.Sprintf("/orders/%d/status", id), map[string]string{"status": string(status)}); err != nil {
		return fmt.Errorf("update order %d: %w", id, err)
	}
	return nil
}

// CallWaiter asks staff to come to a table.
func (c *Client) CallWaiter(ctx context.Context, call domain.WaiterCall) error {
	if err := validation.Struct(call); err != nil {
		return err
	}
	if _, err := c.api.Post(ctx, "/waiter-calls", call); err != nil {
		return fmt.Errorf("call waiter: %w", err)
	}
	return nil
}

func (c *Client) SubmitFeedback(ctx context.Context, fb domain.Feedback) error {
	if err := validation.Struct(fb); err != nil {
		return err
	}
	if _, err := c.api.Post(ctx, "/feedback", fb); err != nil {
		return fmt.Errorf("submit feedback: %w", err)
	}
	return nil
}
