package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deserthomes/goapi/base/ctx"
	"github.com/deserthomes/goapi/base/delivery"
	"github.com/deserthomes/goapi/domain"
	"github.com/deserthomes/goapi/domain/auction"
	"github.com/deserthomes/goapi/domain/bid"
	authMiddleware "github.com/deserthomes/goapi/stores/auth/delivery/http/middleware"
)

type handler struct {
	bid bid.Usecase
}

func New(e *echo.Echo, bid bid.Usecase, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{bid}

	e.GET("/properties/:id/bids", h.findAll)
	e.POST("/properties/:id/bids", h.place, authMiddleware.Auth())
	e.GET("/users/me/bids", h.findMine, authMiddleware.Auth())
}

func (h *handler) findAll(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	propertyId := domain.PropertyId(c.Param("id"))
	if propertyId.IsEmpty() {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	res, err := h.bid.FindAll(ctx, bid.WithPropertyId(propertyId))
	if err != nil {
		ctx.WithField("err", err).Error("bid.FindAll failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) place(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	userId := c.Get("userId").(domain.UserId)
	name := c.Get("name").(string)

	propertyId := domain.PropertyId(c.Param("id"))
	if propertyId.IsEmpty() {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	type payload struct {
		Amount int64 `json:"amount" validate:"required,gt=0"`
	}
	p := &payload{}
	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidJsonFormat)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	res, err := h.bid.Place(ctx, userId, name, propertyId, p.Amount)
	switch err {
	case nil:
	case auction.ErrAuctionEnded, auction.ErrBidTooLow, auction.ErrBelowIncrement:
		return delivery.MakeJsonResp(c, http.StatusUnprocessableEntity, err)
	default:
		ctx.WithField("err", err).Error("bid.Place failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, res)
}

func (h *handler) findMine(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	userId := c.Get("userId").(domain.UserId)

	res, err := h.bid.FindAll(ctx, bid.WithUserId(userId))
	if err != nil {
		ctx.WithField("err", err).Error("bid.FindAll failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}
