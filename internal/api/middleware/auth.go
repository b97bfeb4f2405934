package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/transactions-api/internal/api/metrics"
	"github.com/sirpyerre/transactions-api/internal/core/domain"
	"github.com/sirpyerre/transactions-api/internal/core/ports"
)

// ContextUser is the context key under which Auth stores the acting *domain.User.
const ContextUser = "user"

// UserLookup loads the account a token was issued for.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Auth resolves the bearer token into the acting user and injects it into
// the context. Identity comes only from the verified token, never from
// anything else the client sends.
func Auth(tokens ports.TokenService, users UserLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				metrics.TokenRejectionsTotal.WithLabelValues("missing").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				metrics.TokenRejectionsTotal.WithLabelValues("invalid").Inc()
				return domain.ErrInvalidToken
			}

			identity, err := tokens.Resolve(strings.TrimSpace(parts[1]))
			if err != nil {
				metrics.TokenRejectionsTotal.WithLabelValues("invalid").Inc()
				return domain.ErrInvalidToken
			}

			user, err := users.GetByID(c.Request().Context(), identity.UserID)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					metrics.TokenRejectionsTotal.WithLabelValues("unknown_user").Inc()
					return domain.ErrInvalidToken
				}
				return fmt.Errorf("auth: load user %d: %w", identity.UserID, err)
			}

			c.Set(ContextUser, user)

			return next(c)
		}
	}
}
