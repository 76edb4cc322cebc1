package domain

import "github.com/shopspring/decimal"

// Category groups products on the menu.
type Category struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	DisplayOrder int    `json:"display_order"`
	IsActive     Flag   `json:"is_active"`
}

// CategoryInput is the create/update payload for a category.
type CategoryInput struct {
	Name         string `json:"name" validate:"required,max=100"`
	Description  string `json:"description,omitempty" validate:"max=500"`
	ImageURL     string `json:"image_url,omitempty"`
	DisplayOrder int    `json:"display_order" validate:"gte=0"`
	IsActive     bool   `json:"is_active"`
}

// Product is a menu item.
type Product struct {
	ID          int64           `json:"id"`
	CategoryID  int64           `json:"category_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url,omitempty"`
	IsAvailable Flag            `json:"is_available"`
}

// ProductInput is the create/update payload for a product.
type ProductInput struct {
	CategoryID  int64           `json:"category_id" validate:"required,gt=0"`
	Name        string          `json:"name" validate:"required,max=150"`
	Description string          `json:"description,omitempty" validate:"max=1000"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url,omitempty"`
	IsAvailable bool            `json:"is_available"`
}

// Table is a physical table carrying a QR code.
type Table struct {
	ID       int64  `json:"id"`
	Number   string `json:"table_number"`
	Capacity int    `json:"capacity"`
	QRCode   string `json:"qr_code,omitempty"`
	IsActive Flag   `json:"is_active"`
}

// TableInput is the create/update payload for a table.
type TableInput struct {
	Number   string `json:"table_number" validate:"required,tablenumber"`
	Capacity int    `json:"capacity" validate:"gte=1,lte=50"`
	IsActive bool   `json:"is_active"`
}

// OrderStatus tracks an order through the kitchen.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusServed    OrderStatus = "served"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderItem is one line of an order.
type OrderItem struct {
	ProductID int64           `json:"product_id" validate:"gt=0"`
	Name      string          `json:"name,omitempty"`
	Quantity  int             `json:"quantity" validate:"gte=1"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Notes     string          `json:"notes,omitempty" validate:"max=200"`
}

// Order is a table order as listed in the admin panel.
type Order struct {
	ID          int64           `json:"id"`
	TableNumber string          `json:"table_number"`
	Status      OrderStatus     `json:"status"`
	Items       []OrderItem     `json:"items"`
	Total       decimal.Decimal `json:"total"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   string          `json:"created_at,omitempty"`
}

// OrderInput is the POST /orders payload built from a cart.
type OrderInput struct {
	TableNumber string      `json:"table_number" validate:"required,tablenumber"`
	Items       []OrderItem `json:"items" validate:"required,min=1,dive"`
	Notes       string      `json:"notes,omitempty" validate:"max=500"`
}

// WaiterCall asks staff to come to a table.
type WaiterCall struct {
	TableNumber string `json:"table_number" validate:"required,tablenumber"`
	Reason      string `json:"reason,omitempty" validate:"max=200"`
}

// Feedback is a diner rating with an optional comment.
type Feedback struct {
	TableNumber string `json:"table_number,omitempty" validate:"omitempty,tablenumber"`
	Name        string `json:"name,omitempty" validate:"max=100"`
	Rating      int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment     string `json:"comment,omitempty" validate:"max=1000"`
}
