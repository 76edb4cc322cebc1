package dto

// AddCartItemRequest payload for POST /api/cart/items. Name and price are
// read from the backend product, never from the request.
type AddCartItemRequest struct {
	ProductID int64  `json:"productId"`
	Quantity  int    `json:"quantity"`
	Notes     string `json:"notes"`
}

// CartQuantityRequest payload for PUT /api/cart/items/:productId.
type CartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CheckoutRequest payload for POST /api/cart/checkout.
type CheckoutRequest struct {
	TableNumber string `json:"table_number"`
	Notes       string `json:"notes"`
}

// OrderStatusRequest payload for PUT /admin/orders/:id/status.
type OrderStatusRequest struct {
	Status string `json:"status"`
}
