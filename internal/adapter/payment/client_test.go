package payment

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNewHTTPClientValidatesURL(t *testing.T) {
	if _, err := NewHTTPClient("://bad-url", "", testLogger()); err == nil {
		t.Fatal("expected error for invalid url")
	}
	if _, err := NewHTTPClient("/relative", "", testLogger()); err == nil {
		t.Fatal("expected error for relative url")
	}
}

func TestCreateIntentSendsAmountAndMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/base/v1/payment_intents" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test" {
			t.Errorf("unexpected authorization header %q", got)
		}
		if got := r.Header.Get("Idempotency-Key"); got != "attempt-o-1" {
			t.Errorf("unexpected idempotency key %q", got)
		}
		var body intentRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Amount != 1234 || body.Currency != "usd" || body.Metadata["order_id"] != "o-1" {
			t.Errorf("unexpected body %+v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"pi_1","client_secret":"pi_1_secret","status":"requires_payment_method"}`))
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL+"/base", "sk_test", testLogger())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	intent, err := client.CreateIntent(context.Background(), model.PaymentIntentRequest{AmountMinor: 1234, Currency: "usd", OrderID: "o-1", IdempotencyKey: "attempt-o-1"})
	if err != nil {
		t.Fatalf("create intent returned error: %v", err)
	}
	if intent.Reference != "pi_1" || intent.ClientHandle != "pi_1_secret" {
		t.Fatalf("unexpected intent %+v", intent)
	}
}

func TestCreateIntentRejectsMissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"client_secret":"x"}`))
	}))
	defer srv.Close()

	client, _ := NewHTTPClient(srv.URL, "", testLogger())
	if _, err := client.CreateIntent(context.Background(), model.PaymentIntentRequest{AmountMinor: 1}); err == nil {
		t.Fatal("expected error for intent without id")
	}
}

func TestCreateIntentHonoursContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client, _ := NewHTTPClient(srv.URL, "", testLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := client.CreateIntent(ctx, model.PaymentIntentRequest{AmountMinor: 1}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestIntentOutcomeMapsStatuses(t *testing.T) {
	cases := []struct {
		name string
		body string
		want model.PaymentEventKind
	}{
		{"succeeded", `{"id":"pi_1","status":"succeeded"}`, model.PaymentEventSucceeded},
		{"canceled", `{"id":"pi_1","status":"canceled"}`, model.PaymentEventFailed},
		{"declined", `{"id":"pi_1","status":"requires_payment_method","last_payment_error":{"code":"card_declined"}}`, model.PaymentEventFailed},
		{"awaiting method", `{"id":"pi_1","status":"requires_payment_method"}`, ""},
		{"processing", `{"id":"pi_1","status":"processing"}`, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet || r.URL.Path != "/v1/payment_intents/pi_1" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			client, _ := NewHTTPClient(srv.URL, "", testLogger())
			got, err := client.IntentOutcome(context.Background(), "pi_1")
			if err != nil {
				t.Fatalf("intent outcome returned error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestProviderHandlesSpecialStatuses(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		header     http.Header
	}{
		{name: "not found", statusCode: http.StatusNotFound},
		{name: "too many requests", statusCode: http.StatusTooManyRequests, header: http.Header{"Retry-After": []string{"5"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for key, values := range tt.header {
					for _, v := range values {
						w.Header().Add(key, v)
					}
				}
				w.WriteHeader(tt.statusCode)
			}))
			defer srv.Close()

			client, err := NewHTTPClient(srv.URL, "", testLogger())
			if err != nil {
				t.Fatalf("failed to create client: %v", err)
			}

			_, err = client.IntentOutcome(context.Background(), "pi_1")
			if tt.statusCode == http.StatusTooManyRequests {
				var tm TooManyRequestsError
				if !errors.As(err, &tm) {
					t.Fatalf("expected TooManyRequestsError, got %v", err)
				}
				if tm.RetryAfter != 5*time.Second {
					t.Fatalf("expected retry after 5s, got %v", tm.RetryAfter)
				}
			} else if !errors.Is(err, ErrIntentNotFound) {
				t.Fatalf("expected ErrIntentNotFound, got %v", err)
			}
		})
	}
}

func TestProviderLogsErrorResponses(t *testing.T) {
	called := make(chan struct{}, 1)
	handler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.LevelKey && a.Value.Any() == slog.LevelError {
			select {
			case called <- struct{}{}:
			default:
			}
		}
		return a
	}})
	logger := slog.New(handler)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewHTTPClient(srv.URL, "", logger)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	if _, err := client.CreateIntent(context.Background(), model.PaymentIntentRequest{AmountMinor: 1}); err == nil {
		t.Fatal("expected error from server")
	}

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("expected error log to be written")
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Now()
	httpTime := now.Add(2 * time.Second).UTC().Format(http.TimeFormat)

	cases := []struct {
		name   string
		header string
		want   time.Duration
	}{
		{name: "empty", header: "", want: 5 * time.Second},
		{name: "seconds", header: "7", want: 7 * time.Second},
		{name: "http date", header: httpTime, want: 2 * time.Second},
		{name: "fallback", header: "bad", want: 5 * time.Second},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := parseRetryAfter(tc.header)
			if tc.header == httpTime {
				if got <= 0 || got > 3*time.Second {
					t.Fatalf("unexpected retry duration %v", got)
				}
			} else if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
