package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/polkiloo/storefront/internal/adapter/payment"
	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
	testhelpers "github.com/polkiloo/storefront/internal/test"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestPaymentHandlerCreateIntent(t *testing.T) {
	var gotUser int64
	facade := testhelpers.PaymentFacadeStub{IntentFn: func(_ context.Context, userID int64, orderID string) (*model.PaymentHandle, error) {
		gotUser = userID
		return &model.PaymentHandle{ClientHandle: "pi_1_secret", OrderID: orderID}, nil
	}}

	resp := performRequest(t, http.MethodPost, "/intent", NewPaymentHandler(facade, discardLogger()).CreateIntent, withUser(9), []byte(`{"order_id":"o-1"}`), jsonHeaders)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if gotUser != 9 {
		t.Fatalf("expected caller id 9, got %d", gotUser)
	}
	var decoded dto.CreateIntentResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if decoded.ClientSecret != "pi_1_secret" || decoded.OrderID != "o-1" {
		t.Fatalf("unexpected response %+v", decoded)
	}
}

func TestPaymentHandlerCreateIntentFailures(t *testing.T) {
	fail := func(err error) testhelpers.PaymentFacadeStub {
		return testhelpers.PaymentFacadeStub{IntentFn: func(context.Context, int64, string) (*model.PaymentHandle, error) {
			return nil, err
		}}
	}
	body := []byte(`{"order_id":"o-1"}`)

	tests := []struct {
		name   string
		facade testhelpers.PaymentFacadeStub
		body   []byte
		status int
	}{
		{name: "bad json", body: []byte("x"), status: http.StatusBadRequest},
		{name: "missing order", facade: fail(domainErrors.ErrNotFound), body: body, status: http.StatusNotFound},
		{name: "not pending", facade: fail(domainErrors.ErrInvalidState), body: body, status: http.StatusConflict},
		{name: "provider down", facade: fail(fmt.Errorf("%w: %w", domainErrors.ErrPaymentProvider, errors.New("timeout"))), body: body, status: http.StatusBadGateway},
		{name: "empty id", facade: fail(domainErrors.ErrValidation), body: []byte(`{}`), status: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := performRequest(t, http.MethodPost, "/intent", NewPaymentHandler(tt.facade, discardLogger()).CreateIntent, withUser(1), tt.body, jsonHeaders)
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestPaymentHandlerWebhookPassesRawBodyAndSignature(t *testing.T) {
	payload := `{"id":"evt_1","type":"payment_intent.succeeded"}`
	var gotPayload, gotSignature string
	facade := testhelpers.PaymentFacadeStub{NotificationFn: func(_ context.Context, body []byte, signature string) error {
		gotPayload, gotSignature = string(body), signature
		return nil
	}}

	resp := performRequest(t, http.MethodPost, "/webhook", NewPaymentHandler(facade, discardLogger()).Webhook, nil, []byte(payload), map[string]string{payment.SignatureHeader: "t=1,v1=ab"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if gotPayload != payload || gotSignature != "t=1,v1=ab" {
		t.Fatalf("unexpected facade input %q %q", gotPayload, gotSignature)
	}
}

func TestPaymentHandlerWebhookRejectsOversizedBody(t *testing.T) {
	called := false
	facade := testhelpers.PaymentFacadeStub{NotificationFn: func(context.Context, []byte, string) error {
		called = true
		return nil
	}}
	handler := NewPaymentHandler(facade, discardLogger()).Webhook

	oversized := []byte(`{"id":"evt_1","pad":"` + strings.Repeat("x", maxNotificationSize) + `"}`)
	resp := performRequest(t, http.MethodPost, "/webhook", handler, nil, oversized, nil)
	if resp.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d", resp.Code)
	}
	if called {
		t.Fatal("truncated notification reached the facade")
	}

	exact := []byte(strings.Repeat(" ", maxNotificationSize-2) + "{}")
	resp = performRequest(t, http.MethodPost, "/webhook", handler, nil, exact, nil)
	if resp.Code != http.StatusOK || !called {
		t.Fatalf("expected body at the limit to be accepted, got %d", resp.Code)
	}
}

func TestPaymentHandlerWebhookStatuses(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "applied", status: http.StatusOK},
		{name: "forged", err: fmt.Errorf("%w: signature mismatch", domainErrors.ErrInvalidSignature), status: http.StatusBadRequest},
		{name: "storage failure acknowledged", err: errors.New("db down"), status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facade := testhelpers.PaymentFacadeStub{NotificationFn: func(context.Context, []byte, string) error {
				return tt.err
			}}
			resp := performRequest(t, http.MethodPost, "/webhook", NewPaymentHandler(facade, discardLogger()).Webhook, nil, []byte("{}"), nil)
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}
