package test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

// PaymentProviderStub fakes the external payment provider.
type PaymentProviderStub struct {
	CreateFn  func(context.Context, model.PaymentIntentRequest) (*model.PaymentIntent, error)
	OutcomeFn func(context.Context, string) (model.PaymentEventKind, error)

	mu       sync.Mutex
	Requests []model.PaymentIntentRequest
	seq      int64
}

// CreateIntent records request and returns sequential references.
func (s *PaymentProviderStub) CreateIntent(ctx context.Context, req model.PaymentIntentRequest) (*model.PaymentIntent, error) {
	s.mu.Lock()
	s.Requests = append(s.Requests, req)
	s.mu.Unlock()
	if s.CreateFn != nil {
		return s.CreateFn(ctx, req)
	}
	n := atomic.AddInt64(&s.seq, 1)
	return &model.PaymentIntent{
		Reference:    fmt.Sprintf("pi_%d", n),
		ClientHandle: fmt.Sprintf("pi_%d_secret", n),
	}, nil
}

// IntentOutcome returns configured outcome or open intent.
func (s *PaymentProviderStub) IntentOutcome(ctx context.Context, reference string) (model.PaymentEventKind, error) {
	if s.OutcomeFn != nil {
		return s.OutcomeFn(ctx, reference)
	}
	return "", nil
}

// VerifierStub treats the signature "valid" as authentic and returns Notification.
type VerifierStub struct {
	Notification *model.PaymentNotification
	Err          error
}

// VerifyAndParse checks the fixed signature.
func (s VerifierStub) VerifyAndParse(payload []byte, signature string) (*model.PaymentNotification, error) {
	if signature != "valid" {
		return nil, domainErrors.ErrInvalidSignature
	}
	if s.Err != nil {
		return nil, s.Err
	}
	n := *s.Notification
	return &n, nil
}

// DeduperStub remembers event ids in memory.
type DeduperStub struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	SeenErr error
	MarkErr error
}

// Seen reports whether id was marked.
func (s *DeduperStub) Seen(ctx context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SeenErr != nil {
		return false, s.SeenErr
	}
	_, ok := s.seen[eventID]
	return ok, nil
}

// Mark stores id.
func (s *DeduperStub) Mark(ctx context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.MarkErr != nil {
		return s.MarkErr
	}
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	s.seen[eventID] = struct{}{}
	return nil
}

// PublisherStub collects published events.
type PublisherStub struct {
	mu     sync.Mutex
	Events []model.OrderEvent
	Err    error
}

// Publish records event.
func (s *PublisherStub) Publish(ctx context.Context, event model.OrderEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Events = append(s.Events, event)
	return nil
}

// Types returns published event types in order.
func (s *PublisherStub) Types() []model.OrderEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.OrderEventType, 0, len(s.Events))
	for _, e := range s.Events {
		out = append(out, e.Type)
	}
	return out
}
