package advisor

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	bCtx "github.com/deserthomes/goapi/base/ctx"
	"github.com/deserthomes/goapi/domain/analysis"
)

func facts() analysis.PropertyFacts {
	return analysis.PropertyFacts{
		Address:      "428 Desert Bloom Way",
		City:         "Phoenix",
		State:        "AZ",
		Price:        150000,
		Arv:          250000,
		Bedrooms:     3,
		Bathrooms:    2,
		Sqft:         1600,
		YearBuilt:    1995,
		PropertyType: "single-family",
	}
}

func Test_HeuristicAnalysis(t *testing.T) {
	req := require.New(t)
	res := HeuristicAnalysis(facts())

	// pre-2000 build gets the heavier repair rate
	req.Equal(int64(1600*25), res.RepairEstimate)
	req.Equal(int64(100000), res.PotentialSavings)
	// 40% savings * 1.2 = 48, clamped up to 60
	req.Equal(60, res.Confidence)
	req.Equal("Rising", res.MarketTrend)
	req.Equal("Excellent", res.InvestmentRating)
	req.Equal("Low", res.RiskLevel)
	req.True(res.Degraded)

	f := facts()
	f.YearBuilt = 2015
	res = HeuristicAnalysis(f)
	req.Equal(int64(1600*15), res.RepairEstimate)

	// a thin margin on an old build is the worst grade on every scale
	f = facts()
	f.Price = 240000
	f.YearBuilt = 1962
	res = HeuristicAnalysis(f)
	req.Equal("Declining", res.MarketTrend)
	req.Equal("Poor", res.InvestmentRating)
	req.Equal("High", res.RiskLevel)
}

func Test_HeuristicAnalysisConfidenceClamp(t *testing.T) {
	req := require.New(t)

	f := facts()
	f.Price = 40000 // 84% savings * 1.2 = 100.8, clamped to 95
	res := HeuristicAnalysis(f)
	req.Equal(95, res.Confidence)
}

func Test_HeuristicRecommendation(t *testing.T) {
	req := require.New(t)

	res := HeuristicRecommendation(facts(), 100000)
	req.Equal(int64(105000), res.RecommendedBid)
	req.Equal(int64(200000), res.MaxBid)
	req.Equal(70, res.Confidence)
	req.True(res.Degraded)

	// ceiling at 75% of arv
	res = HeuristicRecommendation(facts(), 190000)
	req.Equal(int64(187500), res.RecommendedBid)
}

func Test_AnalyzePropertyDegradesWithoutKey(t *testing.T) {
	req := require.New(t)
	c := NewClient(&ClientCfg{
		HttpClient: http.Client{},
		Timeout:    time.Second,
	})
	ctx := bCtx.Background()

	res, err := c.AnalyzeProperty(ctx, facts())
	req.NoError(err)
	req.True(res.Degraded)
}

func Test_AnalyzePropertyParsesCompletion(t *testing.T) {
	req := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal("/chat/completions", r.URL.Path)
		req.Equal("Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"summary\":\"solid flip candidate\",\"repairEstimate\":30000,\"timeOnMarketDays\":50,\"confidence\":82}"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(&ClientCfg{
		HttpClient: http.Client{},
		Timeout:    5 * time.Second,
		ApiUrl:     srv.URL,
		ApiKey:     "test-key",
	})
	ctx := bCtx.Background()

	res, err := c.AnalyzeProperty(ctx, facts())
	req.NoError(err)
	req.False(res.Degraded)
	req.Equal("solid flip candidate", res.Summary)
	req.Equal(int64(30000), res.RepairEstimate)
	req.Equal(82, res.Confidence)
	req.Equal(int64(100000), res.PotentialSavings)
	// grading scales are deterministic even with a model answer
	req.Equal("Rising", res.MarketTrend)
	req.Equal("Low", res.RiskLevel)
}

func Test_RecommendBidFallsBackOnServerError(t *testing.T) {
	req := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(&ClientCfg{
		HttpClient: http.Client{},
		Timeout:    5 * time.Second,
		ApiUrl:     srv.URL,
		ApiKey:     "test-key",
	})
	ctx := bCtx.Background()

	res, err := c.RecommendBid(ctx, facts(), 100000)
	req.NoError(err)
	req.True(res.Degraded)
	req.Equal(int64(105000), res.RecommendedBid)
}
