package usecase

import (
	"fmt"
	"strings"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100

	maxShippingAddressLen = 1024
)

// NormalizePage clamps paging parameters into the accepted range.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func offsetFor(page, limit int) int {
	return (page - 1) * limit
}

// ValidateProductIDs requires a non-empty list of distinct, non-blank identifiers.
func ValidateProductIDs(ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one product is required", domainErrors.ErrValidation)
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%w: blank product id", domainErrors.ErrValidation)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: product %s listed more than once", domainErrors.ErrValidation, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// NormalizeShippingAddress trims the address and rejects blank or oversized values.
func NormalizeShippingAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", fmt.Errorf("%w: shipping address is required", domainErrors.ErrValidation)
	}
	if len(address) > maxShippingAddressLen {
		return "", fmt.Errorf("%w: shipping address is too long", domainErrors.ErrValidation)
	}
	return address, nil
}
