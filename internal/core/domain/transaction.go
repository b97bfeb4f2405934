package domain

import (
	"math"
	"regexp"
	"time"
	"unicode/utf8"
)

// MaxDescriptionLength is measured in characters on the raw input, before markup is stripped.
const MaxDescriptionLength = 280

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Transaction is a single money movement recorded by its owner.
type Transaction struct {
	ID          int64     `json:"id"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	Description *string   `json:"description"`
	OwnerID     int64     `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// TransactionPatch carries a partial update. Nil fields are left unchanged.
type TransactionPatch struct {
	Amount      *float64
	Currency    *string
	Description *string
}

// Empty reports whether the patch changes nothing.
func (p TransactionPatch) Empty() bool {
	return p.Amount == nil && p.Currency == nil && p.Description == nil
}

// ValidateTransaction checks the fields of a new transaction.
func ValidateTransaction(amount float64, currency string, description *string) error {
	ve := &ValidationError{}
	checkAmount(ve, amount)
	checkCurrency(ve, currency)
	if description != nil {
		checkDescription(ve, *description)
	}
	return ve.orNil()
}

// ValidatePatch checks only the fields present in p.
func ValidatePatch(p TransactionPatch) error {
	ve := &ValidationError{}
	if p.Amount != nil {
		checkAmount(ve, *p.Amount)
	}
	if p.Currency != nil {
		checkCurrency(ve, *p.Currency)
	}
	if p.Description != nil {
		checkDescription(ve, *p.Description)
	}
	return ve.orNil()
}

func checkAmount(ve *ValidationError, amount float64) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		ve.add("amount", "must be greater than 0")
	}
}

func checkCurrency(ve *ValidationError, currency string) {
	if !currencyPattern.MatchString(currency) {
		ve.add("currency", "must be a 3-letter uppercase code")
	}
}

func checkDescription(ve *ValidationError, description string) {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		ve.add("description", "must be at most 280 characters")
	}
}
