package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/viney-shih/goroutines"

	"github.com/deserthomes/goapi/base/ctx"
	"github.com/deserthomes/goapi/base/delivery"
	"github.com/deserthomes/goapi/domain"
	"github.com/deserthomes/goapi/domain/property"
	"github.com/deserthomes/goapi/domain/user"
	authMiddleware "github.com/deserthomes/goapi/stores/auth/delivery/http/middleware"
)

type handler struct {
	property property.Usecase
}

func New(e *echo.Echo, property property.Usecase, authMiddleware *authMiddleware.AuthMiddleware, cacheMiddleware echo.MiddlewareFunc) {
	h := &handler{property}

	g := e.Group("/properties")

	g.GET("", h.findAll, cacheMiddleware)
	g.GET("/:id", h.get)
	g.GET("/slug/:slug", h.getBySlug, cacheMiddleware)

	g.POST("", h.create, authMiddleware.Auth())
	g.PATCH("/:id", h.update, authMiddleware.Auth())
	g.DELETE("/:id", h.remove, authMiddleware.Auth())

	g.POST("/:id/approve", h.approve, authMiddleware.Auth(), authMiddleware.IsAdmin())
	g.POST("/:id/reject", h.reject, authMiddleware.Auth(), authMiddleware.IsAdmin())
	g.POST("/:id/auction", h.startAuction, authMiddleware.Auth(), authMiddleware.IsAdmin())
}

type findAllParams struct {
	Status       *property.Status       `query:"status"`
	City         *string                `query:"city"`
	PropertyType *property.PropertyType `query:"propertyType"`
	PriceGTE     *int64                 `query:"priceGTE"`
	PriceLTE     *int64                 `query:"priceLTE"`
	Offset       int32                  `query:"offset"`
	Limit        int32                  `query:"limit"`
	Sort         *string                `query:"sort"`
}

func (h *handler) findAll(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	p := &findAllParams{}
	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	opts := []property.FindAllOptionsFunc{}
	if p.Status != nil {
		if !p.Status.IsValid() {
			return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
		}
		opts = append(opts, property.WithStatus(*p.Status))
	}
	if p.City != nil {
		opts = append(opts, property.WithCity(*p.City))
	}
	if p.PropertyType != nil {
		if !p.PropertyType.IsValid() {
			return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
		}
		opts = append(opts, property.WithPropertyType(*p.PropertyType))
	}
	if p.PriceGTE != nil {
		opts = append(opts, property.WithPriceGTE(*p.PriceGTE))
	}
	if p.PriceLTE != nil {
		opts = append(opts, property.WithPriceLTE(*p.PriceLTE))
	}
	if p.Limit > 0 {
		opts = append(opts, property.WithPagination(p.Offset, p.Limit))
	}
	if p.Sort != nil {
		opts = append(opts, property.WithSort(*p.Sort))
	}

	// items and total count come from separate queries, fetch them in parallel
	b := goroutines.NewBatch(2, goroutines.WithBatchSize(2))
	defer b.Close()
	b.Queue(func() (interface{}, error) {
		return h.property.FindAll(ctx, opts...)
	})
	b.Queue(func() (interface{}, error) {
		return h.property.Count(ctx, opts...)
	})
	b.QueueComplete()

	var items []*property.ListingInfo
	var count int
	for ret := range b.Results() {
		if err := ret.Error(); err != nil {
			ctx.WithField("err", err).Error("property.FindAll failed")
			return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
		}
		switch v := ret.Value().(type) {
		case []*property.ListingInfo:
			items = v
		case int:
			count = v
		}
	}

	return delivery.MakeJsonResp(c, http.StatusOK, struct {
		Items []*property.ListingInfo `json:"items"`
		Count int                     `json:"count"`
	}{items, count})
}

func (h *handler) get(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	id := domain.PropertyId(c.Param("id"))
	if id.IsEmpty() {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	res, err := h.property.Get(ctx, id)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) getBySlug(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	res, err := h.property.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	userId := c.Get("userId").(domain.UserId)

	p := property.CreatePayload{}
	if err := c.Bind(&p); err != nil {
		ctx.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidJsonFormat)
	}
	if err := c.Validate(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}
	if !p.PropertyType.IsValid() {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	res, err := h.property.Create(ctx, userId, p)
	if err != nil {
		ctx.WithField("err", err).Error("property.Create failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, res)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	userId := c.Get("userId").(domain.UserId)
	role := c.Get("role").(user.Role)

	id := domain.PropertyId(c.Param("id"))
	if id.IsEmpty() {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	current, err := h.property.Get(ctx, id)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	if current.CreatedBy != userId && role != user.RoleAdmin {
		return delivery.MakeJsonResp(c, http.StatusForbidden, domain.ErrInvalidCredential)
	}

	p := property.Patchable{}
	if err := c.Bind(&p); err != nil {
		ctx.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidJsonFormat)
	}
	// status moves only through the approval and auction flows
	p.Status = nil
	p.ApprovedBy = nil
	p.ApprovedAt = nil
	p.RejectionReason = nil

	res, err := h.property.Update(ctx, id, p)
	if err != nil {
		ctx.WithField("err", err).Error("property.Update failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) remove(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	userId := c.Get("userId").(domain.UserId)
	role := c.Get("role").(user.Role)

	id := domain.PropertyId(c.Param("id"))
	if id.IsEmpty() {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	current, err := h.property.Get(ctx, id)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	if current.CreatedBy != userId && role != user.RoleAdmin {
		return delivery.MakeJsonResp(c, http.StatusForbidden, domain.ErrInvalidCredential)
	}

	if err := h.property.Delete(ctx, id); err != nil {
		ctx.WithField("err", err).Error("property.Delete failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

func (h *handler) approve(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	userId := c.Get("userId").(domain.UserId)

	id := domain.PropertyId(c.Param("id"))
	if id.IsEmpty() {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	res, err := h.property.Approve(ctx, id, userId)
	if err == domain.ErrInvalidStatus {
		return delivery.MakeJsonResp(c, http.StatusConflict, err)
	} else if err != nil {
		ctx.WithField("err", err).Error("property.Approve failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) startAuction(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	id := domain.PropertyId(c.Param("id"))
	if id.IsEmpty() {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	p := property.StartAuctionPayload{}
	if err := c.Bind(&p); err != nil {
		ctx.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidJsonFormat)
	}
	if err := c.Validate(&p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	res, err := h.property.StartAuction(ctx, id, p)
	switch err {
	case nil:
	case domain.ErrInvalidStatus, domain.ErrConflict:
		return delivery.MakeJsonResp(c, http.StatusConflict, err)
	default:
		ctx.WithField("err", err).Error("property.StartAuction failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) reject(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	userId := c.Get("userId").(domain.UserId)

	id := domain.PropertyId(c.Param("id"))
	if id.IsEmpty() {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	type payload struct {
		Reason string `json:"reason"`
	}
	p := &payload{}
	if err := c.Bind(p); err != nil {
		ctx.WithField("err", err).Error("c.Bind failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidJsonFormat)
	}

	res, err := h.property.Reject(ctx, id, userId, p.Reason)
	if err == domain.ErrInvalidStatus {
		return delivery.MakeJsonResp(c, http.StatusConflict, err)
	} else if err != nil {
		ctx.WithField("err", err).Error("property.Reject failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}
