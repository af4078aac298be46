package test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	Users map[string]*model.User
	ByID  map[int64]*model.User
	Next  int64
	Err   error
	mu    sync.Mutex
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		Users: make(map[string]*model.User),
		ByID:  make(map[int64]*model.User),
		Next:  1,
	}
}

// Create registers user unless already exists or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, login, passwordHash string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Users == nil {
		s.Users = make(map[string]*model.User)
	}
	if s.ByID == nil {
		s.ByID = make(map[int64]*model.User)
	}
	if _, exists := s.Users[login]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	user := &model.User{ID: s.Next, Login: login, PasswordHash: passwordHash}
	s.Next++
	s.Users[login] = user
	s.ByID[user.ID] = user
	return user, nil
}

// GetByLogin fetches user by login or returns not found.
func (s *UserRepositoryStub) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[login]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// ProductStoreStub is an in-memory catalog and inventory ledger. Every
// mutation happens under one lock, so reservations are linearizable.
type ProductStoreStub struct {
	mu       sync.Mutex
	products map[string]model.Product

	ReserveErr error
	ReleaseErr error
	Reserves   []string
	Releases   []string
}

// NewProductStoreStub seeds the store with given products.
func NewProductStoreStub(products ...model.Product) *ProductStoreStub {
	s := &ProductStoreStub{products: make(map[string]model.Product)}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

// Stock returns current stock of product or -1 when missing.
func (s *ProductStoreStub) Stock(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return -1
	}
	return p.StockQuantity
}

// Create stores product.
func (s *ProductStoreStub) Create(ctx context.Context, p *model.Product) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.products == nil {
		s.products = make(map[string]model.Product)
	}
	if _, exists := s.products[p.ID]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	s.products[p.ID] = *p
	out := *p
	return &out, nil
}

// GetByID returns a copy of the stored product.
func (s *ProductStoreStub) GetByID(ctx context.Context, id string) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &p, nil
}

// List filters by category and name substring, ordered by name.
func (s *ProductStoreStub) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	total := len(matched)
	start := (filter.Page - 1) * filter.Limit
	if start < 0 || filter.Limit <= 0 || start >= total {
		return []model.Product{}, total, nil
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// Update applies patch fields.
func (s *ProductStoreStub) Update(ctx context.Context, id string, patch model.ProductPatch) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.StockQuantity != nil {
		p.StockQuantity = *patch.StockQuantity
	}
	p.UpdatedAt = time.Now().UTC()
	s.products[id] = p
	return &p, nil
}

// Delete removes the product.
func (s *ProductStoreStub) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return domainErrors.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

// Reserve decrements stock when enough is available.
func (s *ProductStoreStub) Reserve(ctx context.Context, productID string, quantity int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReserveErr != nil {
		return 0, s.ReserveErr
	}
	p, ok := s.products[productID]
	if !ok {
		return 0, domainErrors.ErrNotFound
	}
	if p.StockQuantity < quantity {
		return p.StockQuantity, domainErrors.ErrOutOfStock
	}
	p.StockQuantity -= quantity
	s.products[productID] = p
	s.Reserves = append(s.Reserves, productID)
	return p.StockQuantity, nil
}

// Release increments stock.
func (s *ProductStoreStub) Release(ctx context.Context, productID string, quantity int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReleaseErr != nil {
		return 0, s.ReleaseErr
	}
	p, ok := s.products[productID]
	if !ok {
		return 0, domainErrors.ErrNotFound
	}
	p.StockQuantity += quantity
	s.products[productID] = p
	s.Releases = append(s.Releases, productID)
	return p.StockQuantity, nil
}

// OrderStoreStub is an in-memory order store with compare-and-swap status transitions.
type OrderStoreStub struct {
	mu      sync.Mutex
	orders  map[string]model.Order
	checked map[string]time.Time

	CreateErr      error
	GetErr         error
	SetRefErr      error
	TransitionErr  error
	AwaitingOrders []model.Order
	Transitions    int
}

// NewOrderStoreStub seeds the store with given orders.
func NewOrderStoreStub(orders ...model.Order) *OrderStoreStub {
	s := &OrderStoreStub{orders: make(map[string]model.Order)}
	for _, o := range orders {
		s.orders[o.ID] = o
	}
	return s
}

// Count returns number of stored orders.
func (s *OrderStoreStub) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// Snapshot returns a copy of stored order.
func (s *OrderStoreStub) Snapshot(id string) (model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	return o, ok
}

// Create stores order.
func (s *OrderStoreStub) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	if s.orders == nil {
		s.orders = make(map[string]model.Order)
	}
	if _, exists := s.orders[order.ID]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	s.orders[order.ID] = *order
	out := *order
	return &out, nil
}

// GetByID returns order regardless of owner.
func (s *OrderStoreStub) GetByID(ctx context.Context, id string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	o, ok := s.orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &o, nil
}

// GetForUser returns order only to its owner.
func (s *OrderStoreStub) GetForUser(ctx context.Context, id string, userID int64) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	o, ok := s.orders[id]
	if !ok || o.UserID != userID {
		return nil, domainErrors.ErrNotFound
	}
	return &o, nil
}

// ListByUser returns owner orders newest first.
func (s *OrderStoreStub) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]model.Order, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	owned := make([]model.Order, 0)
	for _, o := range s.orders {
		if o.UserID == userID {
			owned = append(owned, o)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].CreatedAt.After(owned[j].CreatedAt) })
	total := len(owned)
	if offset >= total {
		return []model.Order{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return owned[offset:end], total, nil
}

// UpdateShippingAddress edits address of owner's open order.
func (s *OrderStoreStub) UpdateShippingAddress(ctx context.Context, id string, userID int64, address string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.UserID != userID {
		return nil, domainErrors.ErrNotFound
	}
	if !o.Status.AllowsShippingEdit() {
		return nil, domainErrors.ErrInvalidState
	}
	o.ShippingAddress = address
	o.UpdatedAt = time.Now().UTC()
	s.orders[id] = o
	return &o, nil
}

// SetPaymentReference stores reference on pending order.
func (s *OrderStoreStub) SetPaymentReference(ctx context.Context, id string, reference string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SetRefErr != nil {
		return nil, s.SetRefErr
	}
	o, ok := s.orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if o.Status != model.OrderStatusPending {
		return nil, domainErrors.ErrInvalidState
	}
	ref := reference
	o.PaymentReference = &ref
	o.UpdatedAt = time.Now().UTC()
	s.orders[id] = o
	return &o, nil
}

// TransitionStatus applies change only when current status equals from.
func (s *OrderStoreStub) TransitionStatus(ctx context.Context, id string, from, to model.OrderStatus) (*model.Order, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.TransitionErr != nil {
		return nil, false, s.TransitionErr
	}
	o, ok := s.orders[id]
	if !ok {
		return nil, false, domainErrors.ErrNotFound
	}
	if o.Status != from {
		return &o, false, nil
	}
	o.Status = to
	o.UpdatedAt = time.Now().UTC()
	s.orders[id] = o
	s.Transitions++
	return &o, true, nil
}

// ClaimAwaitingPayment returns configured orders or claims due pending ones
// with a reference, least recently checked first.
func (s *OrderStoreStub) ClaimAwaitingPayment(ctx context.Context, claimedAt, staleBefore time.Time, limit int) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.AwaitingOrders != nil {
		return s.AwaitingOrders, nil
	}
	if s.checked == nil {
		s.checked = make(map[string]time.Time)
	}
	due := make([]model.Order, 0)
	for _, o := range s.orders {
		if o.Status != model.OrderStatusPending || o.PaymentReference == nil || !o.UpdatedAt.Before(staleBefore) {
			continue
		}
		if at, ok := s.checked[o.ID]; ok && !at.Before(staleBefore) {
			continue
		}
		due = append(due, o)
	}
	sort.Slice(due, func(i, j int) bool {
		ci, cj := s.checked[due[i].ID], s.checked[due[j].ID]
		if !ci.Equal(cj) {
			return ci.Before(cj)
		}
		if !due[i].UpdatedAt.Equal(due[j].UpdatedAt) {
			return due[i].UpdatedAt.Before(due[j].UpdatedAt)
		}
		return due[i].ID < due[j].ID
	})
	if len(due) > limit {
		due = due[:limit]
	}
	for _, o := range due {
		s.checked[o.ID] = claimedAt
	}
	return due, nil
}
