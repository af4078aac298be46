package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

// SignatureHeader is the request header carrying the notification proof.
const SignatureHeader = "Stripe-Signature"

const (
	metadataOrderID       = "order_id"
	legacyMetadataOrderID = "orderId"
)

// SignatureVerifier authenticates provider notifications signed as
// "t=<unix>,v1=<hex hmac-sha256 of t.payload>".
type SignatureVerifier struct {
	secret    []byte
	tolerance time.Duration
	now       func() time.Time
}

// NewSignatureVerifier constructs verifier. Zero tolerance disables the timestamp check.
func NewSignatureVerifier(secret string, tolerance time.Duration) *SignatureVerifier {
	return &SignatureVerifier{secret: []byte(secret), tolerance: tolerance, now: time.Now}
}

type notificationEnvelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string            `json:"id"`
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// VerifyAndParse checks the signature and decodes the notification.
// Authenticity failures wrap ErrInvalidSignature.
func (v *SignatureVerifier) VerifyAndParse(payload []byte, signature string) (*model.PaymentNotification, error) {
	if err := v.verify(payload, signature); err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrInvalidSignature, err)
	}

	var env notificationEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("decode notification: %w", err)
	}
	orderID := env.Data.Object.Metadata[metadataOrderID]
	if orderID == "" {
		orderID = env.Data.Object.Metadata[legacyMetadataOrderID]
	}
	return &model.PaymentNotification{
		EventID:   env.ID,
		Kind:      model.PaymentEventKind(env.Type),
		Reference: env.Data.Object.ID,
		OrderID:   orderID,
	}, nil
}

func (v *SignatureVerifier) verify(payload []byte, header string) error {
	if len(v.secret) == 0 {
		return fmt.Errorf("webhook secret is not configured")
	}
	if header == "" {
		return fmt.Errorf("missing signature")
	}

	var (
		timestamp  int64
		haveTime   bool
		signatures [][]byte
	)
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("malformed timestamp")
			}
			timestamp, haveTime = ts, true
		case "v1":
			sig, err := hex.DecodeString(value)
			if err != nil {
				continue
			}
			signatures = append(signatures, sig)
		}
	}
	if !haveTime || len(signatures) == 0 {
		return fmt.Errorf("malformed signature header")
	}

	if v.tolerance > 0 {
		age := v.now().Sub(time.Unix(timestamp, 0))
		if age < 0 {
			age = -age
		}
		if age > v.tolerance {
			return fmt.Errorf("timestamp outside tolerance")
		}
	}

	expected := computeSignature(v.secret, timestamp, payload)
	for _, sig := range signatures {
		if hmac.Equal(expected, sig) {
			return nil
		}
	}
	return fmt.Errorf("signature mismatch")
}

// Sign produces the signature header the provider attaches to payload.
func Sign(secret string, payload []byte, at time.Time) string {
	ts := at.Unix()
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(computeSignature([]byte(secret), ts, payload)))
}

func computeSignature(secret []byte, timestamp int64, payload []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return mac.Sum(nil)
}
