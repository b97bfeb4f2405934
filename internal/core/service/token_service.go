package service

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sirpyerre/transactions-api/internal/core/domain"
	"github.com/sirpyerre/transactions-api/internal/core/ports"
)

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTTokenService issues HS256 session tokens carrying the user ID as subject
// and the role at issuance time. Tokens are never stored server-side.
type JWTTokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

var _ ports.TokenService = (*JWTTokenService)(nil)

func NewJWTTokenService(secret string, ttl time.Duration) *JWTTokenService {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &JWTTokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *JWTTokenService) Issue(user *domain.User) (string, error) {
	if user == nil {
		return "", errors.New("issue token: nil user")
	}
	now := s.now()
	claims := sessionClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Resolve verifies the token and returns the identity it was issued for.
// Every failure collapses to domain.ErrInvalidToken.
func (s *JWTTokenService) Resolve(token string) (ports.Identity, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return ports.Identity{}, domain.ErrInvalidToken
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return ports.Identity{}, domain.ErrInvalidToken
	}
	if !domain.ValidRole(claims.Role) {
		return ports.Identity{}, domain.ErrInvalidToken
	}

	return ports.Identity{UserID: id, Role: claims.Role}, nil
}
