package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidToken = errors.New("invalid auth token")

const (
	defaultTokenTTL = 24 * time.Hour
	claimSeparator  = "|"
)

var tokenEncoding = base64.RawURLEncoding

// HMACStrategy signs "<issuer>|<user id>|<expiry>" claims with HMAC-SHA256.
// Tokens are URL safe so they survive cookies and headers unchanged.
type HMACStrategy struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewHMACStrategy builds HMACStrategy with provided secret and options.
func NewHMACStrategy(secret string, opts Options) *HMACStrategy {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &HMACStrategy{secret: []byte(secret), ttl: ttl, issuer: opts.Issuer, now: time.Now}
}

// IssueToken generates a signed session token for the user.
func (s *HMACStrategy) IssueToken(userID int64) (string, error) {
	if userID <= 0 {
		return "", fmt.Errorf("issue token: invalid user id %d", userID)
	}
	claims := strings.Join([]string{
		s.issuer,
		strconv.FormatInt(userID, 10),
		strconv.FormatInt(s.now().Add(s.ttl).Unix(), 10),
	}, claimSeparator)
	return tokenEncoding.EncodeToString([]byte(claims)) + "." + tokenEncoding.EncodeToString(s.sign([]byte(claims))), nil
}

// ParseToken validates token and returns the user ID it was issued for.
func (s *HMACStrategy) ParseToken(token string) (int64, error) {
	encClaims, encSig, ok := strings.Cut(token, ".")
	if !ok {
		return 0, fmt.Errorf("%w: malformed", ErrInvalidToken)
	}
	claims, err := tokenEncoding.DecodeString(encClaims)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed claims", ErrInvalidToken)
	}
	sig, err := tokenEncoding.DecodeString(encSig)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed signature", ErrInvalidToken)
	}
	if !hmac.Equal(s.sign(claims), sig) {
		return 0, fmt.Errorf("%w: signature mismatch", ErrInvalidToken)
	}

	parts := strings.Split(string(claims), claimSeparator)
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: unexpected claims", ErrInvalidToken)
	}
	if parts[0] != s.issuer {
		return 0, fmt.Errorf("%w: foreign issuer", ErrInvalidToken)
	}
	userID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	expires, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad expiry", ErrInvalidToken)
	}
	if !s.now().Before(time.Unix(expires, 0)) {
		return 0, fmt.Errorf("%w: expired", ErrInvalidToken)
	}

	return userID, nil
}

func (s *HMACStrategy) Name() string {
	return "hmac-sha256"
}

func (s *HMACStrategy) sign(claims []byte) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(claims)
	return mac.Sum(nil)
}
