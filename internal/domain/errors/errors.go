package errors

import "errors"

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrOutOfStock         = errors.New("out of stock")
	ErrInvalidState       = errors.New("invalid order state")
	ErrInvalidSignature   = errors.New("invalid notification signature")
	ErrPaymentProvider    = errors.New("payment provider error")
	ErrValidation         = errors.New("validation error")
)
