package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"already exists", ErrAlreadyExists},
		{"not found", ErrNotFound},
		{"invalid credentials", ErrInvalidCredentials},
		{"out of stock", ErrOutOfStock},
		{"invalid state", ErrInvalidState},
		{"invalid signature", ErrInvalidSignature},
		{"payment provider", ErrPaymentProvider},
		{"validation", ErrValidation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("%w: context", tc.err)
			if !stdErrors.Is(wrapped, tc.err) {
				t.Fatalf("expected wrapped error to match sentinel: %v", tc.err)
			}
		})
	}
}

func TestSentinelErrorsAreDistinct(t *testing.T) {
	all := []error{
		ErrAlreadyExists, ErrNotFound, ErrInvalidCredentials, ErrOutOfStock,
		ErrInvalidState, ErrInvalidSignature, ErrPaymentProvider, ErrValidation,
	}
	for i, a := range all {
		for j, b := range all {
			if i != j && stdErrors.Is(a, b) {
				t.Fatalf("expected %v and %v to be distinct", a, b)
			}
		}
	}
}
