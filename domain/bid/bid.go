package bid

import (
	"time"

	"github.com/deserthomes/goapi/base/ctx"
	"github.com/deserthomes/goapi/domain"
)

// Bid is one persisted bid on a property auction
type Bid struct {
	Id         string            `json:"id" bson:"id"`
	PropertyId domain.PropertyId `json:"propertyId" bson:"propertyId"`
	UserId     domain.UserId     `json:"userId" bson:"userId"`
	Bidder     string            `json:"bidder" bson:"bidder"`
	Amount     int64             `json:"amount" bson:"amount"`
	IsWinning  bool              `json:"isWinning" bson:"isWinning"`
	CreatedAt  time.Time         `json:"createdAt" bson:"createdAt"`
}

type Id struct {
	Id string `json:"id" bson:"id"`
}

type Patchable struct {
	IsWinning *bool `json:"isWinning" bson:"isWinning,omitempty"`
}

type FindAllOptions struct {
	PropertyId *domain.PropertyId
	UserId     *domain.UserId
	IsWinning  *bool
	Offset     *int32
	Limit      *int32
	Sort       *string
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

func WithPropertyId(id domain.PropertyId) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.PropertyId = &id
		return nil
	}
}

func WithUserId(id domain.UserId) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.UserId = &id
		return nil
	}
}

func WithIsWinning(isWinning bool) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.IsWinning = &isWinning
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
	FindAll(c ctx.Ctx, opts ...FindAllOptionsFunc) ([]*Bid, error)
	Count(c ctx.Ctx, opts ...FindAllOptionsFunc) (int, error)
	FindOne(c ctx.Ctx, id Id) (*Bid, error)
	Create(c ctx.Ctx, value *Bid) error
	Update(c ctx.Ctx, id Id, patchable Patchable) error
	// UpdateAll patches every bid matching the options
	UpdateAll(c ctx.Ctx, patchable Patchable, opts ...FindAllOptionsFunc) error
}

type Usecase interface {
	FindAll(c ctx.Ctx, opts ...FindAllOptionsFunc) ([]*Bid, error)
	Count(c ctx.Ctx, opts ...FindAllOptionsFunc) (int, error)
	// Place validates the amount against the property's live auction state,
	// persists the bid and marks it winning
	Place(c ctx.Ctx, userId domain.UserId, bidder string, propertyId domain.PropertyId, amount int64) (*Bid, error)
}
