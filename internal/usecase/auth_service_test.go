package usecase

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestAuthLoginAndVerify(t *testing.T) {
	s, err := NewAuthService("admin", "s3cret", "jwt-secret")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	tok, err := s.Login("admin", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	sub, err := s.Verify(tok)
	if err != nil || sub != "admin" {
		t.Fatalf("verify: %q %v", sub, err)
	}
	if _, err := s.Login("admin", "nope"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
	if _, err := s.Login("root", "s3cret"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
}

func TestAuthAcceptsBcryptHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	s, err := NewAuthService("admin", string(hash), "jwt-secret")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := s.Login("admin", "s3cret"); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestAuthRejectsForeignAndExpiredTokens(t *testing.T) {
	s, _ := NewAuthService("admin", "s3cret", "jwt-secret")
	other, _ := NewAuthService("admin", "s3cret", "other-secret")
	tok, _ := other.Login("admin", "s3cret")
	if _, err := s.Verify(tok); err == nil {
		t.Fatalf("token signed with another secret must fail")
	}
	s.TokenTTL = -time.Minute
	expired, _ := s.Login("admin", "s3cret")
	if _, err := s.Verify(expired); err == nil {
		t.Fatalf("expired token must fail")
	}
	if _, err := s.Verify("garbage"); err == nil {
		t.Fatalf("garbage must fail")
	}
}

func TestAuthRequiresSecret(t *testing.T) {
	if _, err := NewAuthService("admin", "x", " "); err == nil {
		t.Fatalf("expected error without secret")
	}
}
