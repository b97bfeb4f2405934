package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Detail string `json:"detail"`
}

// --- Auth ---

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// loginRequest follows the OAuth2 password grant form: username carries the email.
type loginRequest struct {
	Username string `form:"username" json:"username" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// --- Transactions ---

// Amount and currency are pointers so that a missing field is distinguishable
// from a zero value; range and format rules are enforced by the domain.
type createTransactionRequest struct {
	Amount      *float64 `json:"amount"      validate:"required"`
	Currency    *string  `json:"currency"    validate:"required"`
	Description *string  `json:"description"`
}

// updateTransactionRequest is a partial update: omitted or null fields are kept.
type updateTransactionRequest struct {
	Amount      *float64 `json:"amount"`
	Currency    *string  `json:"currency"`
	Description *string  `json:"description"`
}

type transactionResponse struct {
	ID          int64     `json:"id"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	Description *string   `json:"description"`
	OwnerID     int64     `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}
