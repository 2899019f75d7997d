package usecase

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/deserthomes/goapi/base/ctx"
	"github.com/deserthomes/goapi/base/log"
	"github.com/deserthomes/goapi/base/ptr"
	"github.com/deserthomes/goapi/domain"
	"github.com/deserthomes/goapi/domain/auction"
	"github.com/deserthomes/goapi/domain/property"
)

var (
	slugStrip    = regexp.MustCompile(`[^a-z0-9]+`)
	slugTrimDash = regexp.MustCompile(`(^-+|-+$)`)
	timeNow      = time.Now
)

type propertyUseCaseImpl struct {
	repo property.Repo
	hub  auction.Hub
}

func NewPropertyUseCase(repo property.Repo, hub auction.Hub) property.Usecase {
	return &propertyUseCaseImpl{
		repo: repo,
		hub:  hub,
	}
}

// slugify turns "428 Desert Bloom Way, Phoenix" into
// "428-desert-bloom-way-phoenix"
func slugify(parts ...string) string {
	joined := strings.ToLower(strings.Join(parts, " "))
	joined = slugStrip.ReplaceAllString(joined, "-")
	return slugTrimDash.ReplaceAllString(joined, "")
}

func (im *propertyUseCaseImpl) Create(ctx ctx.Ctx, createdBy domain.UserId, payload property.CreatePayload) (*property.Property, error) {
	now := timeNow()
	id := domain.PropertyId(uuid.New().String())

	// suffix keeps slugs unique when two listings share an address
	slug := slugify(payload.Address, payload.City) + "-" + string(id)[:8]

	value := &property.Property{
		Id:           id,
		Slug:         slug,
		Address:      payload.Address,
		City:         payload.City,
		State:        payload.State,
		Zip:          payload.Zip,
		Price:        payload.Price,
		Arv:          payload.Arv,
		Bedrooms:     payload.Bedrooms,
		Bathrooms:    payload.Bathrooms,
		Sqft:         payload.Sqft,
		LotSize:      payload.LotSize,
		YearBuilt:    payload.YearBuilt,
		Images:       payload.Images,
		Status:       property.StatusPending,
		AuctionDate:  payload.AuctionDate,
		Description:  payload.Description,
		Features:     payload.Features,
		PropertyType: payload.PropertyType,
		CreatedBy:    createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := im.repo.Create(ctx, value); err != nil {
		ctx.WithFields(log.Fields{
			"err":  err,
			"slug": slug,
		}).Error("repo.Create failed")
		return nil, err
	}

	return value, nil
}

func (im *propertyUseCaseImpl) FindAll(ctx ctx.Ctx, opts ...property.FindAllOptionsFunc) ([]*property.ListingInfo, error) {
	properties, err := im.repo.FindAll(ctx, opts...)
	if err != nil {
		ctx.WithField("err", err).Error("repo.FindAll failed")
		return nil, err
	}

	res := make([]*property.ListingInfo, 0, len(properties))
	for _, p := range properties {
		info := &property.ListingInfo{Property: *p}
		if st := im.hub.Snapshot(ctx, p.Id); st != nil {
			info.LiveBid = ptr.Int64(st.CurrentBid)
			info.LiveBidders = ptr.Int(st.Bidders)
		}
		res = append(res, info)
	}
	return res, nil
}

func (im *propertyUseCaseImpl) Count(ctx ctx.Ctx, opts ...property.FindAllOptionsFunc) (int, error) {
	return im.repo.Count(ctx, opts...)
}

func (im *propertyUseCaseImpl) Get(ctx ctx.Ctx, id domain.PropertyId) (*property.Property, error) {
	return im.repo.FindOne(ctx, property.Id{Id: id})
}

func (im *propertyUseCaseImpl) GetBySlug(ctx ctx.Ctx, slug string) (*property.Property, error) {
	return im.repo.FindOneBySlug(ctx, slug)
}

func (im *propertyUseCaseImpl) Update(ctx ctx.Ctx, id domain.PropertyId, patchable property.Patchable) (*property.Property, error) {
	patchable.UpdatedAt = ptr.Time(timeNow())
	if err := im.repo.Update(ctx, property.Id{Id: id}, patchable); err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("repo.Update failed")
		return nil, err
	}
	return im.repo.FindOne(ctx, property.Id{Id: id})
}

func (im *propertyUseCaseImpl) Delete(ctx ctx.Ctx, id domain.PropertyId) error {
	return im.repo.Delete(ctx, property.Id{Id: id})
}

func (im *propertyUseCaseImpl) Approve(ctx ctx.Ctx, id domain.PropertyId, approvedBy domain.UserId) (*property.Property, error) {
	p, err := im.repo.FindOne(ctx, property.Id{Id: id})
	if err != nil {
		return nil, err
	}
	if p.Status != property.StatusPending {
		ctx.WithFields(log.Fields{
			"id":     id,
			"status": p.Status,
		}).Warn("approving non-pending property")
		return nil, domain.ErrInvalidStatus
	}

	now := timeNow()
	patchable := property.Patchable{
		Status:     statusPtr(property.StatusAvailable),
		ApprovedBy: &approvedBy,
		ApprovedAt: &now,
		UpdatedAt:  &now,
	}
	if err := im.repo.Update(ctx, property.Id{Id: id}, patchable); err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("repo.Update failed")
		return nil, err
	}
	return im.repo.FindOne(ctx, property.Id{Id: id})
}

func (im *propertyUseCaseImpl) Reject(ctx ctx.Ctx, id domain.PropertyId, rejectedBy domain.UserId, reason string) (*property.Property, error) {
	p, err := im.repo.FindOne(ctx, property.Id{Id: id})
	if err != nil {
		return nil, err
	}
	if p.Status != property.StatusPending {
		ctx.WithFields(log.Fields{
			"id":     id,
			"status": p.Status,
		}).Warn("rejecting non-pending property")
		return nil, domain.ErrInvalidStatus
	}

	now := timeNow()
	patchable := property.Patchable{
		Status:          statusPtr(property.StatusRejected),
		ApprovedBy:      &rejectedBy,
		RejectionReason: &reason,
		UpdatedAt:       &now,
	}
	if err := im.repo.Update(ctx, property.Id{Id: id}, patchable); err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("repo.Update failed")
		return nil, err
	}
	return im.repo.FindOne(ctx, property.Id{Id: id})
}

func (im *propertyUseCaseImpl) StartAuction(ctx ctx.Ctx, id domain.PropertyId, payload property.StartAuctionPayload) (*property.Property, error) {
	p, err := im.repo.FindOne(ctx, property.Id{Id: id})
	if err != nil {
		return nil, err
	}
	if p.Status != property.StatusAvailable {
		ctx.WithFields(log.Fields{
			"id":     id,
			"status": p.Status,
		}).Warn("starting auction on non-available property")
		return nil, domain.ErrInvalidStatus
	}

	if err := im.hub.Open(ctx, &auction.State{
		PropertyId:    id,
		CurrentBid:    payload.StartingBid,
		MinIncrement:  payload.MinIncrement,
		TimeRemaining: payload.Duration,
		Status:        auction.StatusActive,
	}); err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("hub.Open failed")
		return nil, err
	}

	now := timeNow()
	patchable := property.Patchable{
		Status:      statusPtr(property.StatusAuction),
		AuctionDate: &now,
		UpdatedAt:   &now,
	}
	if err := im.repo.Update(ctx, property.Id{Id: id}, patchable); err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("repo.Update failed")
		return nil, err
	}
	return im.repo.FindOne(ctx, property.Id{Id: id})
}

func statusPtr(s property.Status) *property.Status {
	return &s
}
