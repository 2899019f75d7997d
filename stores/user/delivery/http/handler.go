package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deserthomes/goapi/base/ctx"
	"github.com/deserthomes/goapi/base/delivery"
	"github.com/deserthomes/goapi/domain"
	"github.com/deserthomes/goapi/domain/user"
	authMiddleware "github.com/deserthomes/goapi/stores/auth/delivery/http/middleware"
)

type handler struct {
	user user.Usecase
}

func New(e *echo.Echo, user user.Usecase, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{user}

	g := e.Group("/users")
	g.POST("/signup", h.signup)
	g.GET("/me", h.me, authMiddleware.Auth())
	g.PATCH("/me", h.update, authMiddleware.Auth())
}

func (h *handler) signup(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &user.SignupPayload{}
	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidJsonFormat)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	res, err := h.user.Signup(ctx, *p)
	switch err {
	case nil:
	case domain.ErrConflict:
		return delivery.MakeJsonResp(c, http.StatusConflict, err)
	default:
		ctx.WithField("err", err).Error("user.Signup failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, res)
}

func (h *handler) me(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	userId := c.Get("userId").(domain.UserId)

	res, err := h.user.Get(ctx, userId)
	if err == domain.ErrNotFound {
		return delivery.MakeJsonResp(c, http.StatusNotFound, err)
	} else if err != nil {
		ctx.WithField("err", err).Error("user.Get failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	userId := c.Get("userId").(domain.UserId)

	type params struct {
		Name *string `json:"name"`
	}
	p := &params{}
	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidJsonFormat)
	}

	// role changes are not self-service
	res, err := h.user.Update(ctx, userId, user.Patchable{Name: p.Name})
	if err != nil {
		ctx.WithField("err", err).Error("user.Update failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}
