package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
	testhelpers "github.com/polkiloo/storefront/internal/test"
)

func performRoute(t *testing.T, method, route, target string, handler gin.HandlerFunc, userID int64, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.Handle(method, route, withUser(userID), handler)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestOrderHandlerCreate(t *testing.T) {
	var gotUser int64
	var gotIDs []string
	facade := testhelpers.OrderFacadeStub{CreateFn: func(_ context.Context, userID int64, ids []string, address string) (*model.Order, error) {
		gotUser, gotIDs = userID, ids
		return &model.Order{
			ID:              "o-1",
			UserID:          userID,
			Items:           []model.OrderItem{{ProductID: "p-1", UnitPrice: decimal.RequireFromString("10.50")}},
			TotalPrice:      decimal.RequireFromString("10.50"),
			Status:          model.OrderStatusPending,
			ShippingAddress: address,
		}, nil
	}}

	body := []byte(`{"product_ids":["p-1"],"shipping_address":"1 Main St"}`)
	resp := performRequest(t, http.MethodPost, "/orders", NewOrderHandler(facade).Create, withUser(5), body, jsonHeaders)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", resp.Code)
	}
	if gotUser != 5 || len(gotIDs) != 1 || gotIDs[0] != "p-1" {
		t.Fatalf("unexpected facade call user=%d ids=%v", gotUser, gotIDs)
	}

	var decoded dto.OrderResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if decoded.ID != "o-1" || decoded.Status != "pending" || !decoded.TotalPrice.Equal(decimal.RequireFromString("10.5")) {
		t.Fatalf("unexpected response %+v", decoded)
	}
	if len(decoded.Items) != 1 || decoded.Items[0].ProductID != "p-1" {
		t.Fatalf("unexpected items %+v", decoded.Items)
	}
}

func TestOrderHandlerCreateFailures(t *testing.T) {
	fail := func(err error) testhelpers.OrderFacadeStub {
		return testhelpers.OrderFacadeStub{CreateFn: func(context.Context, int64, []string, string) (*model.Order, error) {
			return nil, err
		}}
	}
	body := []byte(`{"product_ids":["p-1"],"shipping_address":"x"}`)

	tests := []struct {
		name   string
		facade testhelpers.OrderFacadeStub
		body   []byte
		status int
	}{
		{name: "bad json", body: []byte("nope"), status: http.StatusBadRequest},
		{name: "unknown product", facade: fail(domainErrors.ErrNotFound), body: body, status: http.StatusNotFound},
		{name: "out of stock", facade: fail(domainErrors.ErrOutOfStock), body: body, status: http.StatusConflict},
		{name: "validation", facade: fail(domainErrors.ErrValidation), body: body, status: http.StatusUnprocessableEntity},
		{name: "internal", facade: fail(errors.New("boom")), body: body, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := performRequest(t, http.MethodPost, "/orders", NewOrderHandler(tt.facade).Create, withUser(1), tt.body, jsonHeaders)
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestOrderHandlerGet(t *testing.T) {
	facade := testhelpers.OrderFacadeStub{GetFn: func(_ context.Context, userID int64, orderID string) (*model.Order, error) {
		if userID != 3 {
			return nil, domainErrors.ErrNotFound
		}
		return &model.Order{ID: orderID, UserID: userID, Status: model.OrderStatusProcessing}, nil
	}}
	handler := NewOrderHandler(facade)

	resp := performRoute(t, http.MethodGet, "/orders/:id", "/orders/o-7", handler.Get, 3, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var decoded dto.OrderResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if decoded.ID != "o-7" || decoded.Status != "processing" {
		t.Fatalf("unexpected response %+v", decoded)
	}

	resp = performRoute(t, http.MethodGet, "/orders/:id", "/orders/o-7", handler.Get, 4, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected foreign order to be 404, got %d", resp.Code)
	}
}

func TestOrderHandlerList(t *testing.T) {
	var gotPage, gotLimit int
	facade := testhelpers.OrderFacadeStub{ListFn: func(_ context.Context, userID int64, page, limit int) (*model.OrderPage, error) {
		gotPage, gotLimit = page, limit
		return &model.OrderPage{Orders: []model.Order{{ID: "a"}, {ID: "b"}}, Total: 12, Page: 2, Limit: 2}, nil
	}}

	resp := performRoute(t, http.MethodGet, "/orders", "/orders?page=2&limit=2", NewOrderHandler(facade).List, 1, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if gotPage != 2 || gotLimit != 2 {
		t.Fatalf("unexpected pagination page=%d limit=%d", gotPage, gotLimit)
	}
	var decoded dto.OrderListResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if decoded.Total != 12 || len(decoded.Orders) != 2 {
		t.Fatalf("unexpected response %+v", decoded)
	}
}

func TestOrderHandlerListMalformedPaginationFallsBack(t *testing.T) {
	var gotPage, gotLimit int
	facade := testhelpers.OrderFacadeStub{ListFn: func(_ context.Context, _ int64, page, limit int) (*model.OrderPage, error) {
		gotPage, gotLimit = page, limit
		return &model.OrderPage{Page: 1, Limit: 10}, nil
	}}

	resp := performRoute(t, http.MethodGet, "/orders", "/orders?page=abc&limit=", NewOrderHandler(facade).List, 1, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if gotPage != 0 || gotLimit != 0 {
		t.Fatalf("expected zero values for defaults, got page=%d limit=%d", gotPage, gotLimit)
	}
	var decoded dto.OrderListResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if decoded.Orders == nil {
		t.Fatal("expected empty orders array rather than null")
	}
}

func TestOrderHandlerUpdate(t *testing.T) {
	var got model.OrderPatch
	facade := testhelpers.OrderFacadeStub{UpdateFn: func(_ context.Context, userID int64, orderID string, patch model.OrderPatch) (*model.Order, error) {
		got = patch
		order := &model.Order{ID: orderID, Status: model.OrderStatusPending}
		if patch.Cancel {
			order.Status = model.OrderStatusCancelled
		}
		if patch.ShippingAddress != nil {
			order.ShippingAddress = *patch.ShippingAddress
		}
		return order, nil
	}}
	handler := NewOrderHandler(facade)

	resp := performRoute(t, http.MethodPatch, "/orders/:id", "/orders/o-1", handler.Update, 1, []byte(`{"shipping_address":"2 Side St"}`))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if got.Cancel || got.ShippingAddress == nil || *got.ShippingAddress != "2 Side St" {
		t.Fatalf("unexpected patch %+v", got)
	}

	resp = performRoute(t, http.MethodPatch, "/orders/:id", "/orders/o-1", handler.Update, 1, []byte(`{"status":"cancelled"}`))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if !got.Cancel {
		t.Fatal("expected explicit cancel")
	}
	var decoded dto.OrderResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if decoded.Status != "cancelled" {
		t.Fatalf("unexpected status %q", decoded.Status)
	}
}

func TestOrderHandlerUpdateRejectsStatusChanges(t *testing.T) {
	called := false
	facade := testhelpers.OrderFacadeStub{UpdateFn: func(context.Context, int64, string, model.OrderPatch) (*model.Order, error) {
		called = true
		return &model.Order{}, nil
	}}
	handler := NewOrderHandler(facade)

	for _, body := range []string{`{"status":"processing"}`, `{"status":"delivered"}`, `{"status":""}`} {
		resp := performRoute(t, http.MethodPatch, "/orders/:id", "/orders/o-1", handler.Update, 1, []byte(body))
		if resp.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422 for %s, got %d", body, resp.Code)
		}
	}
	if called {
		t.Fatal("facade must not be called for status changes")
	}

	resp := performRoute(t, http.MethodPatch, "/orders/:id", "/orders/o-1", handler.Update, 1, []byte("{"))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", resp.Code)
	}
}

func TestOrderHandlerUpdateFailures(t *testing.T) {
	facade := testhelpers.OrderFacadeStub{UpdateFn: func(context.Context, int64, string, model.OrderPatch) (*model.Order, error) {
		return nil, domainErrors.ErrInvalidState
	}}

	resp := performRoute(t, http.MethodPatch, "/orders/:id", "/orders/o-1", NewOrderHandler(facade).Update, 1, []byte(`{"shipping_address":"x"}`))
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", resp.Code)
	}
}

func TestOrderHandlerCancel(t *testing.T) {
	handler := NewOrderHandler(testhelpers.OrderFacadeStub{})
	resp := performRoute(t, http.MethodDelete, "/orders/:id", "/orders/o-9", handler.Cancel, 1, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var decoded dto.OrderResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if decoded.ID != "o-9" || decoded.Status != "cancelled" {
		t.Fatalf("unexpected response %+v", decoded)
	}

	handler = NewOrderHandler(testhelpers.OrderFacadeStub{CancelFn: func(context.Context, int64, string) (*model.Order, error) {
		return nil, domainErrors.ErrInvalidState
	}})
	resp = performRoute(t, http.MethodDelete, "/orders/:id", "/orders/o-9", handler.Cancel, 1, nil)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", resp.Code)
	}
}
