package usecase

import (
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	bCtx "github.com/deserthomes/goapi/base/ctx"
	"github.com/deserthomes/goapi/domain"
	"github.com/deserthomes/goapi/domain/auction"
	"github.com/deserthomes/goapi/domain/property"
	mProperty "github.com/deserthomes/goapi/domain/property/mocks"
)

// stubHub serves canned snapshots for listings under auction
type stubHub struct {
	snapshots map[domain.PropertyId]*auction.State
	opened    []*auction.State
	openErr   error
}

func (h *stubHub) Open(c bCtx.Ctx, initial *auction.State) error {
	if h.openErr != nil {
		return h.openErr
	}
	h.opened = append(h.opened, initial)
	return nil
}

func (h *stubHub) Snapshot(c bCtx.Ctx, propertyId domain.PropertyId) *auction.State {
	return h.snapshots[propertyId]
}

func (h *stubHub) Subscribe(c bCtx.Ctx, propertyId domain.PropertyId) (*auction.Subscription, error) {
	return nil, auction.ErrNoAuction
}

func (h *stubHub) PlaceBid(c bCtx.Ctx, payload auction.PlaceBidPayload) (*auction.State, error) {
	return nil, auction.ErrNoAuction
}

func (h *stubHub) Shutdown(c bCtx.Ctx) {}

type propertyUseCaseSuite struct {
	suite.Suite
	ctx  bCtx.Ctx
	repo *mProperty.Repo
	hub  *stubHub
	uc   property.Usecase
}

func TestPropertyUseCaseSuite(t *testing.T) {
	suite.Run(t, new(propertyUseCaseSuite))
}

func (s *propertyUseCaseSuite) SetupTest() {
	s.ctx = bCtx.Background()
	s.repo = &mProperty.Repo{}
	s.hub = &stubHub{snapshots: map[domain.PropertyId]*auction.State{}}
	s.uc = NewPropertyUseCase(s.repo, s.hub)
}

func (s *propertyUseCaseSuite) TestCreateStartsPending() {
	s.repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	res, err := s.uc.Create(s.ctx, "user-1", property.CreatePayload{
		Address:      "428 Desert Bloom Way",
		City:         "Phoenix",
		State:        "AZ",
		Zip:          "85004",
		Price:        150000,
		Arv:          250000,
		PropertyType: property.TypeSingleFamily,
	})
	s.NoError(err)
	s.Equal(property.StatusPending, res.Status)
	s.Equal(domain.UserId("user-1"), res.CreatedBy)
	s.Regexp(`^428-desert-bloom-way-phoenix-[0-9a-f]{8}$`, res.Slug)
	s.NotEmpty(res.Id)
}

func (s *propertyUseCaseSuite) TestApprove() {
	id := domain.PropertyId("prop-1")
	pending := &property.Property{Id: id, Status: property.StatusPending}
	approved := &property.Property{Id: id, Status: property.StatusAvailable}

	s.repo.On("FindOne", mock.Anything, property.Id{Id: id}).Return(pending, nil).Once()
	s.repo.On("Update", mock.Anything, property.Id{Id: id}, mock.MatchedBy(func(p property.Patchable) bool {
		return p.Status != nil && *p.Status == property.StatusAvailable && p.ApprovedAt != nil
	})).Return(nil)
	s.repo.On("FindOne", mock.Anything, property.Id{Id: id}).Return(approved, nil).Once()

	res, err := s.uc.Approve(s.ctx, id, "admin-1")
	s.NoError(err)
	s.Equal(property.StatusAvailable, res.Status)
}

func (s *propertyUseCaseSuite) TestApproveNonPendingRejected() {
	id := domain.PropertyId("prop-1")
	sold := &property.Property{Id: id, Status: property.StatusSold}

	s.repo.On("FindOne", mock.Anything, property.Id{Id: id}).Return(sold, nil)

	_, err := s.uc.Approve(s.ctx, id, "admin-1")
	s.Equal(domain.ErrInvalidStatus, err)
}

func (s *propertyUseCaseSuite) TestRejectRecordsReason() {
	id := domain.PropertyId("prop-1")
	pending := &property.Property{Id: id, Status: property.StatusPending}
	rejected := &property.Property{Id: id, Status: property.StatusRejected, RejectionReason: "incomplete photos"}

	s.repo.On("FindOne", mock.Anything, property.Id{Id: id}).Return(pending, nil).Once()
	s.repo.On("Update", mock.Anything, property.Id{Id: id}, mock.MatchedBy(func(p property.Patchable) bool {
		return p.Status != nil && *p.Status == property.StatusRejected &&
			p.RejectionReason != nil && *p.RejectionReason == "incomplete photos"
	})).Return(nil)
	s.repo.On("FindOne", mock.Anything, property.Id{Id: id}).Return(rejected, nil).Once()

	res, err := s.uc.Reject(s.ctx, id, "admin-1", "incomplete photos")
	s.NoError(err)
	s.Equal(property.StatusRejected, res.Status)
}

func (s *propertyUseCaseSuite) TestStartAuctionOpensRoom() {
	id := domain.PropertyId("prop-1")
	available := &property.Property{Id: id, Status: property.StatusAvailable}
	auctioning := &property.Property{Id: id, Status: property.StatusAuction}

	s.repo.On("FindOne", mock.Anything, property.Id{Id: id}).Return(available, nil).Once()
	s.repo.On("Update", mock.Anything, property.Id{Id: id}, mock.MatchedBy(func(p property.Patchable) bool {
		return p.Status != nil && *p.Status == property.StatusAuction && p.AuctionDate != nil
	})).Return(nil)
	s.repo.On("FindOne", mock.Anything, property.Id{Id: id}).Return(auctioning, nil).Once()

	res, err := s.uc.StartAuction(s.ctx, id, property.StartAuctionPayload{
		StartingBid:  100000,
		MinIncrement: 1000,
		Duration:     3600,
	})
	s.NoError(err)
	s.Equal(property.StatusAuction, res.Status)
	s.Require().Len(s.hub.opened, 1)
	s.Equal(int64(100000), s.hub.opened[0].CurrentBid)
	s.Equal(int64(3600), s.hub.opened[0].TimeRemaining)
}

func (s *propertyUseCaseSuite) TestStartAuctionRequiresAvailable() {
	id := domain.PropertyId("prop-1")
	pending := &property.Property{Id: id, Status: property.StatusPending}

	s.repo.On("FindOne", mock.Anything, property.Id{Id: id}).Return(pending, nil)

	_, err := s.uc.StartAuction(s.ctx, id, property.StartAuctionPayload{
		StartingBid:  100000,
		MinIncrement: 1000,
		Duration:     3600,
	})
	s.Equal(domain.ErrInvalidStatus, err)
	s.Empty(s.hub.opened)
}

func (s *propertyUseCaseSuite) TestFindAllJoinsLiveState() {
	live := &property.Property{Id: "prop-1", Status: property.StatusAuction}
	idle := &property.Property{Id: "prop-2", Status: property.StatusAvailable}

	s.repo.On("FindAll", mock.Anything).Return([]*property.Property{live, idle}, nil)
	s.hub.snapshots["prop-1"] = &auction.State{
		PropertyId: "prop-1",
		CurrentBid: 123000,
		Bidders:    7,
		Status:     auction.StatusActive,
	}

	res, err := s.uc.FindAll(s.ctx)
	s.NoError(err)
	s.Len(res, 2)
	s.NotNil(res[0].LiveBid)
	s.Equal(int64(123000), *res[0].LiveBid)
	s.Equal(7, *res[0].LiveBidders)
	s.Nil(res[1].LiveBid)
}
