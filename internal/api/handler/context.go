package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/transactions-api/internal/api/middleware"
	"github.com/sirpyerre/transactions-api/internal/core/domain"
)

// currentUser returns the actor injected by the Auth middleware. Its absence
// means the route was mounted without auth, which is reported as 401.
func currentUser(c echo.Context) (*domain.User, error) {
	user, _ := c.Get(middleware.ContextUser).(*domain.User)
	if user == nil {
		return nil, domain.ErrInvalidToken
	}
	return user, nil
}
