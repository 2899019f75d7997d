package usecase

import (
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	bCtx "github.com/deserthomes/goapi/base/ctx"
	"github.com/deserthomes/goapi/domain"
	"github.com/deserthomes/goapi/domain/analysis"
	mAnalysis "github.com/deserthomes/goapi/domain/analysis/mocks"
	"github.com/deserthomes/goapi/domain/auction"
	"github.com/deserthomes/goapi/domain/property"
	mProperty "github.com/deserthomes/goapi/domain/property/mocks"
)

type snapshotHub struct {
	state *auction.State
}

func (h *snapshotHub) Open(c bCtx.Ctx, initial *auction.State) error { return nil }

func (h *snapshotHub) Snapshot(c bCtx.Ctx, propertyId domain.PropertyId) *auction.State {
	return h.state
}

func (h *snapshotHub) Subscribe(c bCtx.Ctx, propertyId domain.PropertyId) (*auction.Subscription, error) {
	return nil, auction.ErrNoAuction
}

func (h *snapshotHub) PlaceBid(c bCtx.Ctx, payload auction.PlaceBidPayload) (*auction.State, error) {
	return h.state, nil
}

func (h *snapshotHub) Shutdown(c bCtx.Ctx) {}

type analysisUseCaseSuite struct {
	suite.Suite
	ctx     bCtx.Ctx
	repo    *mProperty.Repo
	advisor *mAnalysis.Advisor
	hub     *snapshotHub
	uc      analysis.Usecase
}

func TestAnalysisUseCaseSuite(t *testing.T) {
	suite.Run(t, new(analysisUseCaseSuite))
}

func (s *analysisUseCaseSuite) SetupTest() {
	s.ctx = bCtx.Background()
	s.repo = &mProperty.Repo{}
	s.advisor = &mAnalysis.Advisor{}
	s.hub = &snapshotHub{}
	s.uc = NewAnalysisUseCase(s.repo, s.advisor, s.hub, nil)
}

func (s *analysisUseCaseSuite) listing() *property.Property {
	return &property.Property{
		Id:        "prop-1",
		Address:   "428 Desert Bloom Way",
		City:      "Phoenix",
		State:     "AZ",
		Price:     150000,
		Arv:       220000,
		Sqft:      1600,
		YearBuilt: 1995,
	}
}

func (s *analysisUseCaseSuite) TestAnalyzeCachesAdvisorResult() {
	s.repo.On("FindOne", mock.Anything, property.Id{Id: "prop-1"}).Return(s.listing(), nil)
	s.advisor.On("AnalyzeProperty", mock.Anything, mock.MatchedBy(func(f analysis.PropertyFacts) bool {
		return f.Arv == 220000 && f.Sqft == 1600
	})).Return(&analysis.MarketAnalysis{Summary: "solid flip", Confidence: 80}, nil).Once()

	first, err := s.uc.Analyze(s.ctx, "prop-1")
	s.NoError(err)
	s.Equal("solid flip", first.Summary)

	// second call is served from cache, so the single advisor expectation holds
	second, err := s.uc.Analyze(s.ctx, "prop-1")
	s.NoError(err)
	s.Equal(first, second)
	s.advisor.AssertExpectations(s.T())
}

func (s *analysisUseCaseSuite) TestAnalyzeUnknownProperty() {
	s.repo.On("FindOne", mock.Anything, property.Id{Id: "ghost"}).Return(nil, domain.ErrNotFound)

	_, err := s.uc.Analyze(s.ctx, "ghost")
	s.Equal(domain.ErrNotFound, err)
	s.advisor.AssertNotCalled(s.T(), "AnalyzeProperty", mock.Anything, mock.Anything)
}

func (s *analysisUseCaseSuite) TestRecommendBidPrefersLiveBid() {
	s.hub.state = &auction.State{PropertyId: "prop-1", CurrentBid: 175000, TimeRemaining: 60}

	s.repo.On("FindOne", mock.Anything, property.Id{Id: "prop-1"}).Return(s.listing(), nil)
	s.advisor.On("RecommendBid", mock.Anything, mock.Anything, int64(175000)).
		Return(&analysis.BidRecommendation{RecommendedBid: 165000, MaxBid: 176000, Confidence: 70}, nil)

	res, err := s.uc.RecommendBid(s.ctx, "prop-1", 150000)
	s.NoError(err)
	s.Equal(int64(176000), res.MaxBid)
	s.advisor.AssertExpectations(s.T())
}
