package usecase

import (
	"time"

	"github.com/google/uuid"

	"github.com/deserthomes/goapi/base/ctx"
	"github.com/deserthomes/goapi/base/log"
	"github.com/deserthomes/goapi/base/ptr"
	"github.com/deserthomes/goapi/domain"
	"github.com/deserthomes/goapi/domain/auction"
	"github.com/deserthomes/goapi/domain/bid"
)

var timeNow = time.Now

type bidUseCaseImpl struct {
	repo bid.Repo
	hub  auction.Hub
}

func NewBidUseCase(repo bid.Repo, hub auction.Hub) bid.Usecase {
	return &bidUseCaseImpl{
		repo: repo,
		hub:  hub,
	}
}

func (im *bidUseCaseImpl) FindAll(ctx ctx.Ctx, opts ...bid.FindAllOptionsFunc) ([]*bid.Bid, error) {
	return im.repo.FindAll(ctx, opts...)
}

func (im *bidUseCaseImpl) Count(ctx ctx.Ctx, opts ...bid.FindAllOptionsFunc) (int, error) {
	return im.repo.Count(ctx, opts...)
}

// Place routes the bid through the property's live room, then records it.
// The room is authoritative, so persistence only happens after the room
// accepts the amount.
func (im *bidUseCaseImpl) Place(ctx ctx.Ctx, userId domain.UserId, bidder string, propertyId domain.PropertyId, amount int64) (*bid.Bid, error) {
	_, err := im.hub.PlaceBid(ctx, auction.PlaceBidPayload{
		PropertyId: propertyId,
		Amount:     amount,
		Bidder:     bidder,
	})
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"propertyId": propertyId,
			"amount":     amount,
		}).Warn("hub.PlaceBid rejected")
		return nil, err
	}

	// the new bid supersedes every previous winner for the property
	if err := im.repo.UpdateAll(ctx,
		bid.Patchable{IsWinning: ptr.Bool(false)},
		bid.WithPropertyId(propertyId),
		bid.WithIsWinning(true),
	); err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"propertyId": propertyId,
		}).Error("repo.UpdateAll failed")
		return nil, err
	}

	value := &bid.Bid{
		Id:         uuid.New().String(),
		PropertyId: propertyId,
		UserId:     userId,
		Bidder:     bidder,
		Amount:     amount,
		IsWinning:  true,
		CreatedAt:  timeNow(),
	}
	if err := im.repo.Create(ctx, value); err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"propertyId": propertyId,
		}).Error("repo.Create failed")
		return nil, err
	}

	return value, nil
}
