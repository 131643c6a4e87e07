package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type registerRequest struct {
	Username string   `json:"username" example:"a@b.com"`
	Password string   `json:"password" example:"pw123456"`
	FullName string   `json:"fullName" example:"A B"`
	Roles    []string `json:"roles,omitempty"`
}

type registerResponse struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

type loginRequest struct {
	Username string `json:"username" example:"a@b.com"`
	Password string `json:"password" example:"pw123456"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	Type      string    `json:"type"`
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Roles     []string  `json:"roles"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// --- Products ---

type productRequest struct {
	Name        string  `json:"name"        validate:"required,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	Price       int64   `json:"price"       validate:"gte=0"`
	Unit        string  `json:"unit"        validate:"max=32"`
	Stock       int     `json:"stock"       validate:"gte=0"`
	Rating      float64 `json:"rating"      validate:"gte=0,max=5"`
	Category    string  `json:"category"    validate:"max=64"`
	ImageURL    string  `json:"imageUrl"    validate:"omitempty,url"`
}

// --- Cart ---

type addToCartRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity"  validate:"ne=0"`
}

type cartTotalResponse struct {
	Total int64 `json:"total"`
}
