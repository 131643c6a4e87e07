package domain

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("invalid product")
)

// Product is a catalog entry. Price is expressed in minor currency units.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       int64   `json:"price"`
	Unit        string  `json:"unit"`
	Stock       int     `json:"stock"`
	Rating      float64 `json:"rating"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"imageUrl,omitempty"`
}
