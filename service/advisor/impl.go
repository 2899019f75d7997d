package advisor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"math"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	bCtx "github.com/deserthomes/goapi/base/ctx"
	"github.com/deserthomes/goapi/base/log"
	"github.com/deserthomes/goapi/domain/analysis"
)

const defaultApi = "https://api.groq.com/openai/v1"

func NewClient(cfg *ClientCfg) Client {
	apiUrl := cfg.ApiUrl
	if apiUrl == "" {
		apiUrl = defaultApi
	}
	return &client{
		client:  cfg.HttpClient,
		timeout: cfg.Timeout,
		apiUrl:  apiUrl,
		apiKey:  cfg.ApiKey,
	}
}

type client struct {
	client  http.Client
	timeout time.Duration
	apiUrl  string
	apiKey  string
}

func (c *client) AnalyzeProperty(ctx bCtx.Ctx, facts analysis.PropertyFacts) (*analysis.MarketAnalysis, error) {
	prompt := fmt.Sprintf(
		`Analyze this real estate investment. Respond with JSON only, shaped as {"summary": string, "repairEstimate": number, "timeOnMarketDays": number, "confidence": number}.
Property: %s, %s, %s. Asking price $%d, after-repair value $%d, %d bd / %.1f ba, %d sqft, built %d, type %s.`,
		facts.Address, facts.City, facts.State,
		facts.Price, facts.Arv,
		facts.Bedrooms, facts.Bathrooms, facts.Sqft, facts.YearBuilt, facts.PropertyType,
	)

	content, err := c.complete(ctx, prompt)
	if err != nil {
		ctx.WithField("err", err).Warn("completion failed, using heuristic analysis")
		return HeuristicAnalysis(facts), nil
	}

	res := &analysis.MarketAnalysis{}
	if err := json.Unmarshal([]byte(content), res); err != nil {
		ctx.WithFields(log.Fields{
			"err":     err,
			"content": content,
		}).Warn("model returned malformed analysis, using heuristic")
		return HeuristicAnalysis(facts), nil
	}

	fallback := HeuristicAnalysis(facts)
	if res.Summary == "" {
		res.Summary = fallback.Summary
	}
	if len(res.Summary) > maxSummaryLen {
		res.Summary = res.Summary[:maxSummaryLen]
	}
	if res.RepairEstimate <= 0 {
		res.RepairEstimate = fallback.RepairEstimate
	}
	if res.TimeOnMarketDays <= 0 {
		res.TimeOnMarketDays = fallback.TimeOnMarketDays
	}
	if res.Confidence <= 0 {
		res.Confidence = fallback.Confidence
	}
	res.Confidence = clampConfidence(res.Confidence)
	res.PotentialSavings = facts.Arv - facts.Price
	// the trend, rating, and risk scales stay deterministic regardless of
	// what the model answers
	res.MarketTrend = fallback.MarketTrend
	res.InvestmentRating = fallback.InvestmentRating
	res.RiskLevel = fallback.RiskLevel
	return res, nil
}

func (c *client) RecommendBid(ctx bCtx.Ctx, facts analysis.PropertyFacts, currentBid int64) (*analysis.BidRecommendation, error) {
	prompt := fmt.Sprintf(
		`Recommend a bid for a live property auction. Respond with JSON only, shaped as {"rationale": string, "confidence": number}.
Current bid $%d, asking price $%d, after-repair value $%d, %d sqft, built %d.`,
		currentBid, facts.Price, facts.Arv, facts.Sqft, facts.YearBuilt,
	)

	res := HeuristicRecommendation(facts, currentBid)

	content, err := c.complete(ctx, prompt)
	if err != nil {
		ctx.WithField("err", err).Warn("completion failed, using heuristic recommendation")
		return res, nil
	}

	parsed := &analysis.BidRecommendation{}
	if err := json.Unmarshal([]byte(content), parsed); err != nil {
		ctx.WithFields(log.Fields{
			"err":     err,
			"content": content,
		}).Warn("model returned malformed recommendation, using heuristic")
		return res, nil
	}

	// the model only contributes narrative, the numbers stay deterministic
	if parsed.Rationale != "" {
		res.Rationale = parsed.Rationale
		res.Degraded = false
	}
	if parsed.Confidence > 0 {
		res.Confidence = clampConfidence(parsed.Confidence)
	}
	return res, nil
}

// complete runs one chat completion, retrying once on the fallback model
func (c *client) complete(ctx bCtx.Ctx, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingApiKey
	}
	content, err := c.completeWith(ctx, ModelPrimary, prompt)
	if err == nil {
		return content, nil
	}
	ctx.WithFields(log.Fields{
		"err":   err,
		"model": ModelPrimary,
	}).Warn("primary model failed, retrying with fallback")
	return c.completeWith(ctx, ModelFallback, prompt)
}

func (c *client) completeWith(ctx bCtx.Ctx, model, prompt string) (string, error) {
	ctx, cancel := bCtx.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Temperature:    0.3,
		MaxTokens:      1024,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/chat/completions", c.apiUrl)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		ctx.WithFields(log.Fields{
			"url": url,
			"err": err,
		}).Error("NewRequestWithContext failed")
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		ctx.WithFields(log.Fields{
			"url": url,
			"err": err,
		}).Error("client.Do failed")
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		ctx.WithFields(log.Fields{
			"url":        url,
			"statusCode": resp.StatusCode,
		}).Error("resp.StatusCode != 200")
		return "", ErrStatusCodeNotOk
	}
	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		ctx.WithField("err", err).Error("failed to read body")
		return "", err
	}

	parsed := &chatResponse{}
	if err := json.Unmarshal(data, parsed); err != nil {
		ctx.WithField("err", err).Error("json.Unmarshal failed")
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", ErrNoChoices
	}
	return parsed.Choices[0].Message.Content, nil
}

const (
	defaultAnalysisConfidence       = 75
	defaultRecommendationConfidence = 70
	maxBidArvRatio                  = "0.8"
	recommendedBidArvRatio          = "0.75"
	bidStep                         = 5000
	maxSummaryLen                   = 300
)

// marketTrend grades the listing's discount against its after-repair value
func marketTrend(savingsPct float64) string {
	switch {
	case savingsPct > 25:
		return "Rising"
	case savingsPct > 15:
		return "Stable"
	default:
		return "Declining"
	}
}

func investmentRating(savingsPct float64) string {
	switch {
	case savingsPct > 30:
		return "Excellent"
	case savingsPct > 20:
		return "Good"
	case savingsPct > 10:
		return "Fair"
	default:
		return "Poor"
	}
}

// riskLevel leans on construction age, older builds carry more unknowns
func riskLevel(yearBuilt int) string {
	switch {
	case yearBuilt > 1990:
		return "Low"
	case yearBuilt > 1970:
		return "Medium"
	default:
		return "High"
	}
}

func clampConfidence(v int) int {
	if v < 60 {
		return 60
	}
	if v > 95 {
		return 95
	}
	return v
}

// HeuristicAnalysis is the deterministic estimate used when the model cannot
// serve. Repair cost assumes heavier work for pre-2000 construction.
func HeuristicAnalysis(facts analysis.PropertyFacts) *analysis.MarketAnalysis {
	perSqft := int64(15)
	if facts.YearBuilt > 0 && facts.YearBuilt < 2000 {
		perSqft = 25
	}
	repair := int64(facts.Sqft) * perSqft

	timeOnMarket := 45
	if facts.YearBuilt > 0 {
		age := time.Now().Year() - facts.YearBuilt
		if age > 0 {
			timeOnMarket = 45 + int(math.Round(float64(age)*0.5))
		}
	}

	confidence := defaultAnalysisConfidence
	savings := facts.Arv - facts.Price
	savingsPct := float64(0)
	if facts.Arv > 0 {
		savingsPct = float64(savings) / float64(facts.Arv) * 100
		confidence = clampConfidence(int(math.Round(savingsPct * 1.2)))
	}

	return &analysis.MarketAnalysis{
		Summary: fmt.Sprintf(
			"Listed at $%d against an after-repair value of $%d, a potential margin of $%d before repairs.",
			facts.Price, facts.Arv, savings,
		),
		RepairEstimate:   repair,
		TimeOnMarketDays: timeOnMarket,
		PotentialSavings: savings,
		MarketTrend:      marketTrend(savingsPct),
		InvestmentRating: investmentRating(savingsPct),
		RiskLevel:        riskLevel(facts.YearBuilt),
		Confidence:       confidence,
		Degraded:         true,
	}
}

// HeuristicRecommendation caps the bid at a fixed share of the ARV and steps
// from the current bid otherwise
func HeuristicRecommendation(facts analysis.PropertyFacts, currentBid int64) *analysis.BidRecommendation {
	arv := decimal.NewFromInt(facts.Arv)
	maxBid := arv.Mul(decimal.RequireFromString(maxBidArvRatio)).IntPart()
	ceiling := arv.Mul(decimal.RequireFromString(recommendedBidArvRatio)).IntPart()

	recommended := currentBid + bidStep
	if recommended > ceiling {
		recommended = ceiling
	}

	return &analysis.BidRecommendation{
		RecommendedBid: recommended,
		MaxBid:         maxBid,
		Rationale: fmt.Sprintf(
			"Next increment is $%d. Staying under 75%% of the $%d after-repair value keeps the margin intact.",
			recommended, facts.Arv,
		),
		Confidence: defaultRecommendationConfidence,
		Degraded:   true,
	}
}
