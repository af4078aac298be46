package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// ErrIntentNotFound indicates the provider does not know the reference.
var ErrIntentNotFound = errors.New("payment intent not found")

// TooManyRequestsError represents rate limiting signal from the payment provider.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// Client exposes operations of the payment provider API.
type Client interface {
	CreateIntent(ctx context.Context, req model.PaymentIntentRequest) (*model.PaymentIntent, error)
	IntentOutcome(ctx context.Context, reference string) (model.PaymentEventKind, error)
}

// HTTPClient implements Client via the provider's REST API.
type HTTPClient struct {
	baseURL    *url.URL
	secretKey  string
	httpClient *http.Client
	logger     *slog.Logger
}

type intentRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Metadata map[string]string `json:"metadata"`
}

// intentResponse mirrors the provider's payment intent object.
type intentResponse struct {
	ID               string            `json:"id"`
	ClientSecret     string            `json:"client_secret"`
	Status           string            `json:"status"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	LastPaymentError *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"last_payment_error,omitempty"`
}

// NewHTTPClient creates provider client. The caller bounds each call with its context.
func NewHTTPClient(baseURL, secretKey string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse payment provider url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("payment provider url must be absolute")
	}
	return &HTTPClient{
		baseURL:   parsed,
		secretKey: secretKey,
		logger:    logger,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// CreateIntent asks the provider to reserve the amount for the order.
func (c *HTTPClient) CreateIntent(ctx context.Context, req model.PaymentIntentRequest) (*model.PaymentIntent, error) {
	body, err := json.Marshal(intentRequest{
		Amount:   req.AmountMinor,
		Currency: req.Currency,
		Metadata: map[string]string{metadataOrderID: req.OrderID},
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/v1/payment_intents"), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.IdempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)
	}

	data, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}
	if data.ID == "" {
		return nil, fmt.Errorf("payment provider returned intent without id")
	}
	return &model.PaymentIntent{Reference: data.ID, ClientHandle: data.ClientSecret}, nil
}

// IntentOutcome reads the intent and maps its status to a terminal event kind.
func (c *HTTPClient) IntentOutcome(ctx context.Context, reference string) (model.PaymentEventKind, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/v1/payment_intents", reference), nil)
	if err != nil {
		return "", err
	}
	data, err := c.do(httpReq)
	if err != nil {
		return "", err
	}
	return outcomeOf(data), nil
}

func outcomeOf(data *intentResponse) model.PaymentEventKind {
	switch data.Status {
	case "succeeded":
		return model.PaymentEventSucceeded
	case "canceled":
		return model.PaymentEventFailed
	case "requires_payment_method":
		if data.LastPaymentError != nil {
			return model.PaymentEventFailed
		}
	}
	return ""
}

func (c *HTTPClient) endpoint(parts ...string) string {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(append([]string{endpoint.Path}, parts...)...)
	return endpoint.String()
}

func (c *HTTPClient) do(req *http.Request) (*intentResponse, error) {
	req.Header.Set("Accept", "application/json")
	if c.secretKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.secretKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		var data intentResponse
		if err := json.Unmarshal(body, &data); err != nil {
			return nil, fmt.Errorf("decode payment intent: %w", err)
		}
		return &data, nil
	case http.StatusNotFound:
		return nil, ErrIntentNotFound
	case http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, TooManyRequestsError{RetryAfter: retryAfter}
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("payment provider request failed",
			slog.String("method", req.Method),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)),
		)
		return nil, fmt.Errorf("payment provider error: %s", resp.Status)
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}
