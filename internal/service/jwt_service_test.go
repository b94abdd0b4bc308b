package service

import (
	"errors"
	"testing"
	"time"
)

func TestJWTGenerateAndParse(t *testing.T) {
	svc := NewJWTService("secret", 15*time.Minute, time.Hour)

	pair, err := svc.GeneratePair("user-1", "tenant-1", "admin", "ana@fund.vc")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", pair)
	}

	claims, err := svc.ParseAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("expected valid access token, got %v", err)
	}
	if claims.UserID != "user-1" || claims.TenantID != "tenant-1" || claims.Role != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestJWTRefreshTokenRejectedAsAccess(t *testing.T) {
	svc := NewJWTService("secret", 15*time.Minute, time.Hour)
	pair, err := svc.GeneratePair("user-1", "tenant-1", "", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := svc.ParseAccessToken(pair.RefreshToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid for refresh token, got %v", err)
	}
}

func TestJWTRefreshRotatesAndRevokes(t *testing.T) {
	svc := NewJWTService("secret", 15*time.Minute, time.Hour)
	pair, err := svc.GeneratePair("user-1", "tenant-1", "member", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	next, err := svc.RefreshPair(pair.RefreshToken)
	if err != nil {
		t.Fatalf("expected refresh to work, got %v", err)
	}
	if next.AccessToken == "" {
		t.Fatalf("expected new access token")
	}

	// El refresh usado queda revocado.
	if _, err := svc.RefreshPair(pair.RefreshToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected reused refresh token to fail, got %v", err)
	}
}

func TestJWTWrongSecretRejected(t *testing.T) {
	issuer := NewJWTService("secret-a", 15*time.Minute, time.Hour)
	verifier := NewJWTService("secret-b", 15*time.Minute, time.Hour)

	pair, err := issuer.GeneratePair("user-1", "tenant-1", "", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := verifier.ParseAccessToken(pair.AccessToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid with wrong secret, got %v", err)
	}
}

func TestJWTExpiredAccessToken(t *testing.T) {
	svc := NewJWTService("secret", time.Minute, time.Hour)
	// Token firmado con fecha en el pasado para forzar la expiracion.
	expired, err := svc.signToken("user-1", "tenant-1", "", "", time.Now().UTC().Add(-2*time.Hour), time.Minute, "access", "")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.ParseAccessToken(expired); !errors.Is(err, ErrJWTExpired) {
		t.Fatalf("expected ErrJWTExpired, got %v", err)
	}
}

func TestJWTEmptySecretRefusesToSign(t *testing.T) {
	svc := NewJWTService("", 15*time.Minute, time.Hour)
	if _, err := svc.GeneratePair("user-1", "tenant-1", "", ""); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid with empty secret, got %v", err)
	}
}
