package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestNewBcryptHasherCost(t *testing.T) {
	cases := map[string]struct {
		in   int
		want int
	}{
		"zero":      {0, bcrypt.DefaultCost},
		"too low":   {bcrypt.MinCost - 1, bcrypt.DefaultCost},
		"too high":  {bcrypt.MaxCost + 1, bcrypt.DefaultCost},
		"in range":  {bcrypt.MinCost, bcrypt.MinCost},
		"above def": {bcrypt.DefaultCost + 2, bcrypt.DefaultCost + 2},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := NewBcryptHasher(tc.in).cost; got != tc.want {
				t.Fatalf("expected cost %d, got %d", tc.want, got)
			}
		})
	}
}

func TestBcryptHasherHashAndCompare(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "correct horse" {
		t.Fatal("expected password to be hashed")
	}
	if err := hasher.Compare(hash, "correct horse"); err != nil {
		t.Fatalf("compare: %v", err)
	}
	if err := hasher.Compare(hash, "wrong"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
}

func TestBcryptHasherCompareCorruptHash(t *testing.T) {
	err := NewBcryptHasher(bcrypt.MinCost).Compare("not-a-bcrypt-hash", "pw")
	if err == nil || errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected corrupt hash error, got %v", err)
	}
}

func TestBcryptHasherRejectsLongPasswords(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)
	if _, err := hasher.Hash(strings.Repeat("a", MaxPasswordBytes)); err != nil {
		t.Fatalf("expected %d bytes to be accepted, got %v", MaxPasswordBytes, err)
	}
	if _, err := hasher.Hash(strings.Repeat("a", MaxPasswordBytes+1)); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
}
