package payment

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/polkiloo/storefront/internal/config"
)

func TestNewClientUsesConfig(t *testing.T) {
	cfg := &config.Config{PaymentProviderAddress: "http://example.com", PaymentSecretKey: "sk_test"}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	client, err := newClient(clientParams{Config: cfg, Logger: logger})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client == nil {
		t.Fatal("expected client instance")
	}
	if client.(*HTTPClient).secretKey != "sk_test" {
		t.Fatal("expected secret key to be configured")
	}
}

func TestNewClientRejectsRelativeURL(t *testing.T) {
	cfg := &config.Config{PaymentProviderAddress: "/relative"}
	if _, err := newClient(clientParams{Config: cfg, Logger: slog.New(slog.NewJSONHandler(io.Discard, nil))}); err == nil {
		t.Fatal("expected error for relative url")
	}
}

func TestNewVerifierUsesConfig(t *testing.T) {
	v := newVerifier(&config.Config{WebhookSecret: "whsec", WebhookTolerance: time.Minute})
	if string(v.secret) != "whsec" || v.tolerance != time.Minute {
		t.Fatalf("unexpected verifier %+v", v)
	}
}
