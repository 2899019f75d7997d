package property

import (
	"time"

	"github.com/deserthomes/goapi/base/ctx"
	"github.com/deserthomes/goapi/domain"
)

type Status string

const (
	// StatusPending is the state of every newly submitted listing until an
	// admin reviews it
	StatusPending Status = "pending"
	// StatusAvailable is an approved listing visible on the marketplace
	StatusAvailable Status = "available"
	StatusRejected  Status = "rejected"
	StatusSold      Status = "sold"
	// StatusAuction is an approved listing currently in a live auction
	StatusAuction Status = "auction"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAvailable, StatusRejected, StatusSold, StatusAuction:
		return true
	}
	return false
}

type PropertyType string

const (
	TypeSingleFamily PropertyType = "single-family"
	TypeCondo        PropertyType = "condo"
	TypeTownhouse    PropertyType = "townhouse"
	TypeMultiFamily  PropertyType = "multi-family"
)

func (t PropertyType) IsValid() bool {
	switch t {
	case TypeSingleFamily, TypeCondo, TypeTownhouse, TypeMultiFamily:
		return true
	}
	return false
}

// Property is one listing. Price and Arv are whole dollars.
type Property struct {
	Id           domain.PropertyId `json:"id" bson:"id"`
	Slug         string            `json:"slug" bson:"slug"`
	Address      string            `json:"address" bson:"address"`
	City         string            `json:"city" bson:"city"`
	State        string            `json:"state" bson:"state"`
	Zip          string            `json:"zip" bson:"zip"`
	Price        int64             `json:"price" bson:"price"`
	Arv          int64             `json:"arv" bson:"arv"`
	Bedrooms     int               `json:"bedrooms" bson:"bedrooms"`
	Bathrooms    float64           `json:"bathrooms" bson:"bathrooms"`
	Sqft         int               `json:"sqft" bson:"sqft"`
	LotSize      string            `json:"lotSize" bson:"lotSize"`
	YearBuilt    int               `json:"yearBuilt" bson:"yearBuilt"`
	Images       []string          `json:"images" bson:"images"`
	Status       Status            `json:"status" bson:"status"`
	AuctionDate  *time.Time        `json:"auctionDate,omitempty" bson:"auctionDate,omitempty"`
	Description  string            `json:"description" bson:"description"`
	Features     []string          `json:"features" bson:"features"`
	PropertyType PropertyType      `json:"propertyType" bson:"propertyType"`
	CreatedBy    domain.UserId     `json:"createdBy" bson:"createdBy"`

	ApprovedBy      domain.UserId `json:"approvedBy,omitempty" bson:"approvedBy,omitempty"`
	ApprovedAt      *time.Time    `json:"approvedAt,omitempty" bson:"approvedAt,omitempty"`
	RejectionReason string        `json:"rejectionReason,omitempty" bson:"rejectionReason,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (p *Property) ToId() Id {
	return Id{Id: p.Id}
}

// Id is the selector struct for one property
type Id struct {
	Id domain.PropertyId `json:"id" bson:"id"`
}

type Patchable struct {
	Price           *int64        `json:"price" bson:"price,omitempty"`
	Arv             *int64        `json:"arv" bson:"arv,omitempty"`
	Bedrooms        *int          `json:"bedrooms" bson:"bedrooms,omitempty"`
	Bathrooms       *float64      `json:"bathrooms" bson:"bathrooms,omitempty"`
	Sqft            *int          `json:"sqft" bson:"sqft,omitempty"`
	LotSize         *string       `json:"lotSize" bson:"lotSize,omitempty"`
	YearBuilt       *int          `json:"yearBuilt" bson:"yearBuilt,omitempty"`
	Images          *[]string     `json:"images" bson:"images,omitempty"`
	Status          *Status       `json:"status" bson:"status,omitempty"`
	AuctionDate     *time.Time    `json:"auctionDate" bson:"auctionDate,omitempty"`
	Description     *string       `json:"description" bson:"description,omitempty"`
	Features        *[]string     `json:"features" bson:"features,omitempty"`
	ApprovedBy      *domain.UserId `json:"approvedBy" bson:"approvedBy,omitempty"`
	ApprovedAt      *time.Time    `json:"approvedAt" bson:"approvedAt,omitempty"`
	RejectionReason *string       `json:"rejectionReason" bson:"rejectionReason,omitempty"`
	UpdatedAt       *time.Time    `json:"updatedAt" bson:"updatedAt,omitempty"`
}

type FindAllOptions struct {
	Status       *Status
	City         *string
	PropertyType *PropertyType
	PriceGTE     *int64
	PriceLTE     *int64
	CreatedBy    *domain.UserId
	Offset       *int32
	Limit        *int32
	Sort         *string
}

type FindAllOptionsFunc func(*FindAllOptions) error

func GetFindAllOptions(opts ...FindAllOptionsFunc) (FindAllOptions, error) {
	res := FindAllOptions{}
	for _, opt := range opts {
		if err := opt(&res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func WithStatus(status Status) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Status = &status
		return nil
	}
}

func WithCity(city string) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.City = &city
		return nil
	}
}

func WithPropertyType(propertyType PropertyType) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.PropertyType = &propertyType
		return nil
	}
}

func WithPriceGTE(price int64) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.PriceGTE = &price
		return nil
	}
}

func WithPriceLTE(price int64) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.PriceLTE = &price
		return nil
	}
}

func WithCreatedBy(userId domain.UserId) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.CreatedBy = &userId
		return nil
	}
}

func WithPagination(offset, limit int32) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Offset = &offset
		options.Limit = &limit
		return nil
	}
}

func WithSort(sort string) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.Sort = &sort
		return nil
	}
}

type Repo interface {
	FindAll(c ctx.Ctx, opts ...FindAllOptionsFunc) ([]*Property, error)
	Count(c ctx.Ctx, opts ...FindAllOptionsFunc) (int, error)
	FindOne(c ctx.Ctx, id Id) (*Property, error)
	FindOneBySlug(c ctx.Ctx, slug string) (*Property, error)
	Create(c ctx.Ctx, value *Property) error
	Update(c ctx.Ctx, id Id, patchable Patchable) error
	Delete(c ctx.Ctx, id Id) error
}

// CreatePayload is what a seller submits. Approval fields are never accepted
// from the outside.
type CreatePayload struct {
	Address      string       `json:"address" validate:"required"`
	City         string       `json:"city" validate:"required"`
	State        string       `json:"state" validate:"required"`
	Zip          string       `json:"zip" validate:"required"`
	Price        int64        `json:"price" validate:"required,gt=0"`
	Arv          int64        `json:"arv" validate:"required,gt=0"`
	Bedrooms     int          `json:"bedrooms" validate:"gte=0"`
	Bathrooms    float64      `json:"bathrooms" validate:"gte=0"`
	Sqft         int          `json:"sqft" validate:"gte=0"`
	LotSize      string       `json:"lotSize"`
	YearBuilt    int          `json:"yearBuilt"`
	Images       []string     `json:"images"`
	AuctionDate  *time.Time   `json:"auctionDate"`
	Description  string       `json:"description"`
	Features     []string     `json:"features"`
	PropertyType PropertyType `json:"propertyType" validate:"required"`
}

// StartAuctionPayload opens a live auction for an approved listing. Duration
// is in seconds.
type StartAuctionPayload struct {
	StartingBid  int64 `json:"startingBid" validate:"required,gt=0"`
	MinIncrement int64 `json:"minIncrement" validate:"required,gt=0"`
	Duration     int64 `json:"duration" validate:"required,gt=0"`
}

// ListingInfo is a Property plus its live auction snapshot when one is
// running
type ListingInfo struct {
	Property
	LiveBid     *int64 `json:"liveBid,omitempty"`
	LiveBidders *int   `json:"liveBidders,omitempty"`
}

type Usecase interface {
	Create(c ctx.Ctx, createdBy domain.UserId, payload CreatePayload) (*Property, error)
	FindAll(c ctx.Ctx, opts ...FindAllOptionsFunc) ([]*ListingInfo, error)
	Count(c ctx.Ctx, opts ...FindAllOptionsFunc) (int, error)
	Get(c ctx.Ctx, id domain.PropertyId) (*Property, error)
	GetBySlug(c ctx.Ctx, slug string) (*Property, error)
	Update(c ctx.Ctx, id domain.PropertyId, patchable Patchable) (*Property, error)
	Delete(c ctx.Ctx, id domain.PropertyId) error
	Approve(c ctx.Ctx, id domain.PropertyId, approvedBy domain.UserId) (*Property, error)
	Reject(c ctx.Ctx, id domain.PropertyId, rejectedBy domain.UserId, reason string) (*Property, error)
	StartAuction(c ctx.Ctx, id domain.PropertyId, payload StartAuctionPayload) (*Property, error)
}
