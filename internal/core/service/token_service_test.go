package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sirpyerre/transactions-api/internal/core/domain"
)

func TestJWTTokenService_RoundTrip(t *testing.T) {
	svc := NewJWTTokenService(testSecret, time.Hour)

	token, err := svc.Issue(&domain.User{ID: 7, Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	id, err := svc.Resolve(token)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id.UserID != 7 || id.Role != domain.RoleUser {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestJWTTokenService_ClaimsShape(t *testing.T) {
	svc := NewJWTTokenService(testSecret, time.Hour)
	token, _ := svc.Issue(&domain.User{ID: 3, Role: domain.RoleAdmin})

	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(testSecret), nil
	}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims["sub"] != "3" {
		t.Errorf("expected sub=3, got %v", claims["sub"])
	}
	if claims["role"] != domain.RoleAdmin {
		t.Errorf("expected role=admin, got %v", claims["role"])
	}
	if _, ok := claims["exp"]; !ok {
		t.Errorf("expected exp claim")
	}
}

func TestJWTTokenService_RoleFixedAtIssuance(t *testing.T) {
	svc := NewJWTTokenService(testSecret, time.Hour)
	user := &domain.User{ID: 9, Role: domain.RoleUser}
	token, _ := svc.Issue(user)

	user.Role = domain.RoleAdmin

	for i := 0; i < 2; i++ {
		id, err := svc.Resolve(token)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if id.Role != domain.RoleUser || id.UserID != 9 {
			t.Fatalf("identity must reflect issuance, got %+v", id)
		}
	}
}

func TestJWTTokenService_Expired(t *testing.T) {
	svc := NewJWTTokenService(testSecret, time.Minute)
	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }
	token, _ := svc.Issue(&domain.User{ID: 1, Role: domain.RoleUser})

	svc.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	if _, err := svc.Resolve(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTTokenService_Rejects(t *testing.T) {
	svc := NewJWTTokenService(testSecret, time.Hour)

	sign := func(method jwt.SigningMethod, key any, claims jwt.Claims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	cases := map[string]string{
		"malformed":     "not-a-token",
		"empty":         "",
		"wrong secret":  sign(jwt.SigningMethodHS256, []byte("other-secret"), sessionClaims{Role: "user", RegisteredClaims: jwt.RegisteredClaims{Subject: "1", ExpiresAt: exp}}),
		"wrong alg":     sign(jwt.SigningMethodHS512, []byte(testSecret), sessionClaims{Role: "user", RegisteredClaims: jwt.RegisteredClaims{Subject: "1", ExpiresAt: exp}}),
		"no exp":        sign(jwt.SigningMethodHS256, []byte(testSecret), sessionClaims{Role: "user", RegisteredClaims: jwt.RegisteredClaims{Subject: "1"}}),
		"bad subject":   sign(jwt.SigningMethodHS256, []byte(testSecret), sessionClaims{Role: "user", RegisteredClaims: jwt.RegisteredClaims{Subject: "alice", ExpiresAt: exp}}),
		"no subject":    sign(jwt.SigningMethodHS256, []byte(testSecret), sessionClaims{Role: "user", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}}),
		"unknown role":  sign(jwt.SigningMethodHS256, []byte(testSecret), sessionClaims{Role: "root", RegisteredClaims: jwt.RegisteredClaims{Subject: "1", ExpiresAt: exp}}),
		"unsigned none": sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, sessionClaims{Role: "admin", RegisteredClaims: jwt.RegisteredClaims{Subject: "1", ExpiresAt: exp}}),
	}

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Resolve(token); !errors.Is(err, domain.ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
