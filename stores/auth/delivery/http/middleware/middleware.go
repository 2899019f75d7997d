package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/deserthomes/goapi/base/ctx"
	"github.com/deserthomes/goapi/base/delivery"
	"github.com/deserthomes/goapi/domain"
	"github.com/deserthomes/goapi/domain/user"
)

type AuthMiddleware struct {
	auth domain.AuthUsecase
	user user.Usecase
}

func New(auth domain.AuthUsecase, user user.Usecase) *AuthMiddleware {
	return &AuthMiddleware{
		auth: auth,
		user: user,
	}
}

func (m *AuthMiddleware) Auth() echo.MiddlewareFunc {
	return middleware.KeyAuth(m.validateAuthToken)
}

func (m *AuthMiddleware) OptionalAuth() echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		Skipper: func(c echo.Context) bool {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			return len(auth) == 0
		},
		Validator: m.validateAuthToken,
	})
}

func (m *AuthMiddleware) IsAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := c.Get("role").(user.Role)
			if role != user.RoleAdmin {
				return delivery.MakeJsonResp(c, http.StatusMethodNotAllowed, "require admin privilege")
			}
			return next(c)
		}
	}
}

func (m *AuthMiddleware) validateAuthToken(key string, c echo.Context) (bool, error) {
	ctx := c.Get("ctx").(ctx.Ctx)

	claims, err := m.auth.ParseToken(ctx, key)
	if err != nil {
		ctx.WithField("err", err).Error("auth.ParseToken failed")
		return false, err
	}

	// role and name come from the stored record so a stale token
	// cannot keep privileges after a role change
	u, err := m.user.Get(ctx, claims.UserId)
	if err != nil {
		ctx.WithField("err", err).Error("user.Get failed")
		return false, err
	}

	c.Set("userId", u.Id)
	c.Set("email", u.Email)
	c.Set("role", u.Role)
	c.Set("name", u.Name)
	return true, nil
}
