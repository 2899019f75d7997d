package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deserthomes/goapi/base/ctx"
	"github.com/deserthomes/goapi/base/delivery"
	"github.com/deserthomes/goapi/domain"
)

type authHandler struct {
	auth domain.AuthUsecase
}

func New(e *echo.Echo, auth domain.AuthUsecase) {
	handler := &authHandler{auth}
	g := e.Group("/auth")
	g.POST("/login", handler.login)
}

func (h *authHandler) login(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Email    domain.Email `json:"email" validate:"required,email"`
		Password string       `json:"password" validate:"required"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidJsonFormat)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	tkn, err := h.auth.Login(ctx, p.Email, p.Password)
	switch err {
	case nil:
	case domain.ErrInvalidCredential:
		return delivery.MakeJsonResp(c, http.StatusUnauthorized, err)
	default:
		ctx.WithField("err", err).Error("auth.Login failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}

	res := struct {
		Token string `json:"token"`
	}{
		Token: tkn,
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, res)
}
