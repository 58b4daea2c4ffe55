package service

import (
	"errors"
	"testing"
	"time"

	"github.com/lifeflow/blood-bank/internal/core/domain"
)

const testSecret = "test-secret"

func TestSessionService_IssueVerifyRoundTrip(t *testing.T) {
	svc := NewSessionService(testSecret, 0)

	token, err := svc.Issue("555")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected a non-empty token")
	}

	phone, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if phone != "555" {
		t.Errorf("expected phone 555, got %q", phone)
	}
}

func TestSessionService_VerifyRejectsTamperedToken(t *testing.T) {
	svc := NewSessionService(testSecret, 0)

	token, err := svc.Issue("555")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := svc.Verify(tampered); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for tampered token, got %v", err)
	}
}

func TestSessionService_VerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewSessionService(testSecret, 0)
	verifier := NewSessionService("another-secret", 0)

	token, err := issuer.Issue("555")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := verifier.Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken across secrets, got %v", err)
	}
}

func TestSessionService_VerifyRejectsExpiredToken(t *testing.T) {
	svc := &SessionService{secret: []byte(testSecret), tokenTTL: -time.Minute}

	token, err := svc.Issue("555")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := svc.Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestSessionService_VerifyRejectsGarbage(t *testing.T) {
	svc := NewSessionService(testSecret, 0)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := svc.Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
			t.Errorf("token %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}
