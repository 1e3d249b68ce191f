package models

import "errors"

var (
	// ErrInvalidTransition is returned when a status change is not listed in
	// the entity's transition table.
	ErrInvalidTransition = errors.New("status transition not allowed")

	// ErrNonPositiveAmount is returned for zero or negative payment amounts.
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")
)
