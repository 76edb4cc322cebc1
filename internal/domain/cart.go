package domain

import "github.com/shopspring/decimal"

// CartItem is one product line in a visitor's cart.
type CartItem struct {
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	Name      string          `json:"name,omitempty"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"image_url,omitempty"`
	Notes     string          `json:"notes,omitempty"`
}

// LineTotal is price times quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
