package domain

import "errors"

var (
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrInvalidQuantity  = errors.New("quantity must not be zero")
	ErrDuplicateRequest = errors.New("duplicate request")
)

// CartItem is one line of a user's cart. UnitPrice is captured when the line
// is first created and does not follow later catalog price changes.
type CartItem struct {
	ID          int64  `json:"id"`
	Owner       string `json:"-"`
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	UnitPrice   int64  `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
}

// Subtotal is UnitPrice times Quantity.
func (c CartItem) Subtotal() int64 {
	return c.UnitPrice * int64(c.Quantity)
}
