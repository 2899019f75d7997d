package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deserthomes/goapi/base/ctx"
	"github.com/deserthomes/goapi/base/delivery"
	"github.com/deserthomes/goapi/domain"
	"github.com/deserthomes/goapi/domain/analysis"
)

type handler struct {
	analysis analysis.Usecase
}

func New(e *echo.Echo, analysis analysis.Usecase) {
	h := &handler{analysis}

	e.GET("/properties/:id/analysis", h.analyze)
	e.GET("/properties/:id/bid-recommendation", h.recommendBid)
}

func (h *handler) analyze(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	propertyId := domain.PropertyId(c.Param("id"))
	if propertyId.IsEmpty() {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	res, err := h.analysis.Analyze(ctx, propertyId)
	if err == domain.ErrNotFound {
		return delivery.MakeJsonResp(c, http.StatusNotFound, err)
	} else if err != nil {
		ctx.WithField("err", err).Error("analysis.Analyze failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) recommendBid(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	propertyId := domain.PropertyId(c.Param("id"))
	if propertyId.IsEmpty() {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	type params struct {
		CurrentBid int64 `query:"currentBid" validate:"gte=0"`
	}
	p := &params{}
	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	res, err := h.analysis.RecommendBid(ctx, propertyId, p.CurrentBid)
	if err == domain.ErrNotFound {
		return delivery.MakeJsonResp(c, http.StatusNotFound, err)
	} else if err != nil {
		ctx.WithField("err", err).Error("analysis.RecommendBid failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}
