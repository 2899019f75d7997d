package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	bCtx "github.com/deserthomes/goapi/base/ctx"
	"github.com/deserthomes/goapi/domain"
	"github.com/deserthomes/goapi/domain/auction"
)

type hubSuite struct {
	suite.Suite
	ctx bCtx.Ctx
	hub auction.Hub
}

func TestHubSuite(t *testing.T) {
	suite.Run(t, new(hubSuite))
}

func (s *hubSuite) SetupTest() {
	s.ctx = bCtx.Background()
	s.hub = NewHub()
}

func (s *hubSuite) TearDownTest() {
	s.hub.Shutdown(s.ctx)
}

func (s *hubSuite) liveState(propertyId domain.PropertyId) *auction.State {
	return &auction.State{
		PropertyId:    propertyId,
		CurrentBid:    100000,
		MinIncrement:  1000,
		TimeRemaining: 3600,
		Status:        auction.StatusActive,
	}
}

func (s *hubSuite) TestOpenRejectsDuplicates() {
	s.NoError(s.hub.Open(s.ctx, s.liveState("prop-1")))
	s.Equal(domain.ErrConflict, s.hub.Open(s.ctx, s.liveState("prop-1")))
}

func (s *hubSuite) TestOpenRejectsEndedState() {
	ended := s.liveState("prop-1")
	ended.TimeRemaining = 0
	s.Equal(auction.ErrAuctionEnded, s.hub.Open(s.ctx, ended))
}

func (s *hubSuite) TestSnapshotUnknownRoom() {
	s.Nil(s.hub.Snapshot(s.ctx, "ghost"))
}

func (s *hubSuite) TestPlaceBidUpdatesState() {
	s.NoError(s.hub.Open(s.ctx, s.liveState("prop-1")))

	res, err := s.hub.PlaceBid(s.ctx, auction.PlaceBidPayload{
		PropertyId: "prop-1",
		Amount:     101000,
		Bidder:     "Dana",
	})
	s.NoError(err)
	s.Equal(int64(101000), res.CurrentBid)
	s.Equal("Dana", res.CurrentBidder)
	s.Equal(1, res.Bidders)
	s.Require().Len(res.BidHistory, 1)
	s.True(res.BidHistory[0].IsWinning)
	s.Equal("Dana", res.BidHistory[0].Bidder)
}

func (s *hubSuite) TestPlaceBidEnforcesIncrement() {
	s.NoError(s.hub.Open(s.ctx, s.liveState("prop-1")))

	_, err := s.hub.PlaceBid(s.ctx, auction.PlaceBidPayload{PropertyId: "prop-1", Amount: 100000, Bidder: "Dana"})
	s.Equal(auction.ErrBidTooLow, err)

	_, err = s.hub.PlaceBid(s.ctx, auction.PlaceBidPayload{PropertyId: "prop-1", Amount: 100500, Bidder: "Dana"})
	s.Equal(auction.ErrBelowIncrement, err)

	_, err = s.hub.PlaceBid(s.ctx, auction.PlaceBidPayload{PropertyId: "ghost", Amount: 200000, Bidder: "Dana"})
	s.Equal(auction.ErrNoAuction, err)
}

func (s *hubSuite) TestBiddersCountsUniqueNames() {
	s.NoError(s.hub.Open(s.ctx, s.liveState("prop-1")))

	_, err := s.hub.PlaceBid(s.ctx, auction.PlaceBidPayload{PropertyId: "prop-1", Amount: 101000, Bidder: "Dana"})
	s.NoError(err)
	_, err = s.hub.PlaceBid(s.ctx, auction.PlaceBidPayload{PropertyId: "prop-1", Amount: 102000, Bidder: "Miguel"})
	s.NoError(err)
	res, err := s.hub.PlaceBid(s.ctx, auction.PlaceBidPayload{PropertyId: "prop-1", Amount: 103000, Bidder: "Dana"})
	s.NoError(err)
	s.Equal(2, res.Bidders)
}

func (s *hubSuite) TestSubscribeDeliversSnapshots() {
	s.NoError(s.hub.Open(s.ctx, s.liveState("prop-1")))

	sub, err := s.hub.Subscribe(s.ctx, "prop-1")
	s.Require().NoError(err)
	defer sub.Close()

	// the current state arrives immediately
	select {
	case snap := <-sub.Updates:
		s.Equal(int64(100000), snap.CurrentBid)
	case <-time.After(time.Second):
		s.FailNow("no initial snapshot")
	}

	_, err = s.hub.PlaceBid(s.ctx, auction.PlaceBidPayload{PropertyId: "prop-1", Amount: 101000, Bidder: "Dana"})
	s.Require().NoError(err)

	select {
	case snap := <-sub.Updates:
		s.Equal(int64(101000), snap.CurrentBid)
	case <-time.After(time.Second):
		s.FailNow("no bid snapshot")
	}
}

func (s *hubSuite) TestRoomEndsWhenClockRunsOut() {
	st := s.liveState("prop-1")
	st.TimeRemaining = 1
	s.NoError(s.hub.Open(s.ctx, st))

	sub, err := s.hub.Subscribe(s.ctx, "prop-1")
	s.Require().NoError(err)
	defer sub.Close()

	// drain until the channel closes, the final snapshot must be ended
	var last *auction.State
	deadline := time.After(3 * time.Second)
	for {
		select {
		case snap, ok := <-sub.Updates:
			if !ok {
				s.Require().NotNil(last)
				s.Equal(auction.StatusEnded, last.Status)
				s.Nil(s.hub.Snapshot(s.ctx, "prop-1"))

				_, err := s.hub.PlaceBid(s.ctx, auction.PlaceBidPayload{PropertyId: "prop-1", Amount: 200000, Bidder: "Dana"})
				s.Equal(auction.ErrNoAuction, err)
				return
			}
			last = snap
		case <-deadline:
			s.FailNow("room never ended")
		}
	}
}

func (s *hubSuite) TestShutdownClosesSubscribers() {
	s.NoError(s.hub.Open(s.ctx, s.liveState("prop-1")))

	sub, err := s.hub.Subscribe(s.ctx, "prop-1")
	s.Require().NoError(err)

	s.hub.Shutdown(s.ctx)

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-sub.Updates:
			if !ok {
				return
			}
		case <-deadline:
			s.FailNow("subscription never closed")
		}
	}
}
