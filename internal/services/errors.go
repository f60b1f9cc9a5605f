package services

import "errors"

// Sentinel errors for the invoice lifecycle. Handlers match these with
// errors.Is and map each to a distinct HTTP response; wrapped variants carry
// extra detail (e.g. which product id was missing).
var (
	ErrClientNotFound   = errors.New("client not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrInvoiceNotFound  = errors.New("invoice not found")
	ErrInvalidDateRange = errors.New("due date must be on or after issue date")
	ErrInvalidQuantity  = errors.New("quantity must be greater than zero")
	ErrInvalidTax       = errors.New("tax must not be negative")
	ErrEmptyItemList    = errors.New("invoice must have at least one item")
)
