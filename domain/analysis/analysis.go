package analysis

import (
	"github.com/deserthomes/goapi/base/ctx"
	"github.com/deserthomes/goapi/domain"
)

// PropertyFacts is the subset of a listing the advisor reasons about
type PropertyFacts struct {
	Address      string  `json:"address"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	Price        int64   `json:"price"`
	Arv          int64   `json:"arv"`
	Bedrooms     int     `json:"bedrooms"`
	Bathrooms    float64 `json:"bathrooms"`
	Sqft         int     `json:"sqft"`
	YearBuilt    int     `json:"yearBuilt"`
	PropertyType string  `json:"propertyType"`
}

// MarketAnalysis is the advisor's take on a single listing. Confidence is a
// percentage in [0, 100].
type MarketAnalysis struct {
	Summary          string `json:"summary"`
	RepairEstimate   int64  `json:"repairEstimate"`
	TimeOnMarketDays int    `json:"timeOnMarketDays"`
	PotentialSavings int64  `json:"potentialSavings"`
	MarketTrend      string `json:"marketTrend"`
	InvestmentRating string `json:"investmentRating"`
	RiskLevel        string `json:"riskLevel"`
	Confidence       int    `json:"confidence"`
	// Degraded marks a heuristic fallback produced without the model
	Degraded bool `json:"degraded,omitempty"`
}

type BidRecommendation struct {
	RecommendedBid int64  `json:"recommendedBid"`
	MaxBid         int64  `json:"maxBid"`
	Rationale      string `json:"rationale"`
	Confidence     int    `json:"confidence"`
	Degraded       bool   `json:"degraded,omitempty"`
}

// Advisor produces analyses, falling back to deterministic heuristics when
// the upstream model is unavailable
type Advisor interface {
	AnalyzeProperty(c ctx.Ctx, facts PropertyFacts) (*MarketAnalysis, error)
	RecommendBid(c ctx.Ctx, facts PropertyFacts, currentBid int64) (*BidRecommendation, error)
}

type Usecase interface {
	Analyze(c ctx.Ctx, propertyId domain.PropertyId) (*MarketAnalysis, error)
	RecommendBid(c ctx.Ctx, propertyId domain.PropertyId, currentBid int64) (*BidRecommendation, error)
}
