package errors

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrInvalidState    = errors.New("invalid order state")
	ErrNoRateAvailable = errors.New("no exchange rate available")
)
