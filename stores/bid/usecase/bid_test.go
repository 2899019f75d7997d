package usecase

import (
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	bCtx "github.com/deserthomes/goapi/base/ctx"
	"github.com/deserthomes/goapi/domain"
	"github.com/deserthomes/goapi/domain/auction"
	"github.com/deserthomes/goapi/domain/bid"
	mBid "github.com/deserthomes/goapi/domain/bid/mocks"
)

// scriptedHub accepts or rejects every bid
type scriptedHub struct {
	err   error
	state *auction.State
}

func (h *scriptedHub) Open(c bCtx.Ctx, initial *auction.State) error { return nil }

func (h *scriptedHub) Snapshot(c bCtx.Ctx, propertyId domain.PropertyId) *auction.State {
	return h.state
}

func (h *scriptedHub) Subscribe(c bCtx.Ctx, propertyId domain.PropertyId) (*auction.Subscription, error) {
	return nil, auction.ErrNoAuction
}

func (h *scriptedHub) PlaceBid(c bCtx.Ctx, payload auction.PlaceBidPayload) (*auction.State, error) {
	if h.err != nil {
		return nil, h.err
	}
	return h.state, nil
}

func (h *scriptedHub) Shutdown(c bCtx.Ctx) {}

type bidUseCaseSuite struct {
	suite.Suite
	ctx  bCtx.Ctx
	repo *mBid.Repo
	hub  *scriptedHub
	uc   bid.Usecase
}

func TestBidUseCaseSuite(t *testing.T) {
	suite.Run(t, new(bidUseCaseSuite))
}

func (s *bidUseCaseSuite) SetupTest() {
	s.ctx = bCtx.Background()
	s.repo = &mBid.Repo{}
	s.hub = &scriptedHub{state: &auction.State{PropertyId: "prop-1", CurrentBid: 101000}}
	s.uc = NewBidUseCase(s.repo, s.hub)
}

func (s *bidUseCaseSuite) TestPlacePersistsWinningBid() {
	s.repo.On("UpdateAll", mock.Anything, mock.MatchedBy(func(p bid.Patchable) bool {
		return p.IsWinning != nil && !*p.IsWinning
	}), mock.Anything, mock.Anything).Return(nil)
	s.repo.On("Create", mock.Anything, mock.MatchedBy(func(b *bid.Bid) bool {
		return b.PropertyId == "prop-1" && b.Amount == 101000 && b.IsWinning && b.Bidder == "Dana"
	})).Return(nil)

	res, err := s.uc.Place(s.ctx, "user-1", "Dana", "prop-1", 101000)
	s.NoError(err)
	s.True(res.IsWinning)
	s.NotEmpty(res.Id)
	s.repo.AssertExpectations(s.T())
}

func (s *bidUseCaseSuite) TestPlaceRejectedByRoomIsNotPersisted() {
	s.hub.err = auction.ErrBidTooLow

	_, err := s.uc.Place(s.ctx, "user-1", "Dana", "prop-1", 90000)
	s.Equal(auction.ErrBidTooLow, err)
	s.repo.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
}

func (s *bidUseCaseSuite) TestPlaceOnEndedAuction() {
	s.hub.err = auction.ErrAuctionEnded

	_, err := s.uc.Place(s.ctx, "user-1", "Dana", "prop-1", 200000)
	s.Equal(auction.ErrAuctionEnded, err)
}
