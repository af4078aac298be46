package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// ProductUseCase manages the catalog consulted by checkout.
type ProductUseCase struct {
	products repository.ProductRepository
	newID    func() string
}

// NewProductUseCase constructs ProductUseCase.
func NewProductUseCase(products repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{products: products, newID: uuid.NewString}
}

// Create adds a product to the catalog.
func (u *ProductUseCase) Create(ctx context.Context, p model.Product) (*model.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	if p.Name == "" {
		return nil, fmt.Errorf("%w: product name is required", domainErrors.ErrValidation)
	}
	if err := validatePrice(p.Price); err != nil {
		return nil, err
	}
	if p.StockQuantity < 0 {
		return nil, fmt.Errorf("%w: stock quantity must not be negative", domainErrors.ErrValidation)
	}
	now := time.Now().UTC()
	p.ID = u.newID()
	p.Price = p.Price.Round(2)
	p.CreatedAt = now
	p.UpdatedAt = now
	return u.products.Create(ctx, &p)
}

// Get returns a single catalog entry.
func (u *ProductUseCase) Get(ctx context.Context, id string) (*model.Product, error) {
	return u.products.GetByID(ctx, id)
}

// List returns one page of products matching the filter.
func (u *ProductUseCase) List(ctx context.Context, filter model.ProductFilter) (*model.ProductPage, error) {
	filter.Page, filter.Limit = NormalizePage(filter.Page, filter.Limit)
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Search = strings.TrimSpace(filter.Search)
	products, total, err := u.products.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []model.Product{}
	}
	return &model.ProductPage{Products: products, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// Update changes catalog fields. Existing orders keep their price snapshot.
func (u *ProductUseCase) Update(ctx context.Context, id string, patch model.ProductPatch) (*model.Product, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: product name is required", domainErrors.ErrValidation)
		}
		patch.Name = &name
	}
	if patch.Price != nil {
		if err := validatePrice(*patch.Price); err != nil {
			return nil, err
		}
		rounded := patch.Price.Round(2)
		patch.Price = &rounded
	}
	if patch.StockQuantity != nil && *patch.StockQuantity < 0 {
		return nil, fmt.Errorf("%w: stock quantity must not be negative", domainErrors.ErrValidation)
	}
	return u.products.Update(ctx, id, patch)
}

// Delete removes a product from the catalog.
func (u *ProductUseCase) Delete(ctx context.Context, id string) error {
	return u.products.Delete(ctx, id)
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", domainErrors.ErrValidation)
	}
	return nil
}
