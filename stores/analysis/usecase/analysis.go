package usecase

import (
	"strconv"
	"time"

	"github.com/deserthomes/goapi/base/ctx"
	"github.com/deserthomes/goapi/base/log"
	"github.com/deserthomes/goapi/domain"
	"github.com/deserthomes/goapi/domain/analysis"
	"github.com/deserthomes/goapi/domain/auction"
	"github.com/deserthomes/goapi/domain/keys"
	"github.com/deserthomes/goapi/domain/property"
	"github.com/deserthomes/goapi/service/cache"
	"github.com/deserthomes/goapi/service/cache/provider"
	"github.com/deserthomes/goapi/service/cache/provider/primitive"
)

const (
	analysisCacheTtl = 15 * time.Minute
	cacheSizeMb      = 8
)

type impl struct {
	property            property.Repo
	advisor             analysis.Advisor
	hub                 auction.Hub
	analysisCache       cache.Service
	recommendationCache cache.Service
}

// NewAnalysisUseCase wires the advisor behind a cache. Pass a nil provider to
// use an in-process cache.
func NewAnalysisUseCase(propertyRepo property.Repo, advisor analysis.Advisor, hub auction.Hub, cacheProvider provider.Provider) analysis.Usecase {
	if cacheProvider == nil {
		cacheProvider = primitive.NewPrimitive("analysis", cacheSizeMb)
	}
	return &impl{
		property: propertyRepo,
		advisor:  advisor,
		hub:      hub,
		analysisCache: cache.New(cache.ServiceConfig{
			Ttl:   analysisCacheTtl,
			Pfx:   keys.PfxAnalysis,
			Cache: cacheProvider,
		}),
		recommendationCache: cache.New(cache.ServiceConfig{
			Ttl:   analysisCacheTtl,
			Pfx:   keys.PfxBidRecommendation,
			Cache: cacheProvider,
		}),
	}
}

func (im *impl) Analyze(ctx ctx.Ctx, propertyId domain.PropertyId) (*analysis.MarketAnalysis, error) {
	facts, err := im.facts(ctx, propertyId)
	if err != nil {
		return nil, err
	}

	res := &analysis.MarketAnalysis{}
	key := keys.MD5(string(propertyId))
	err = im.analysisCache.GetByFunc(ctx, key, res, func() (interface{}, error) {
		return im.advisor.AnalyzeProperty(ctx, *facts)
	})
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"propertyId": propertyId,
		}).Error("advisor.AnalyzeProperty failed")
		return nil, err
	}

	return res, nil
}

func (im *impl) RecommendBid(ctx ctx.Ctx, propertyId domain.PropertyId, currentBid int64) (*analysis.BidRecommendation, error) {
	facts, err := im.facts(ctx, propertyId)
	if err != nil {
		return nil, err
	}

	// a live room is more current than whatever the caller saw
	if s := im.hub.Snapshot(ctx, propertyId); s != nil && s.CurrentBid > currentBid {
		currentBid = s.CurrentBid
	}

	// recommendations track the live bid, so the cache key includes it
	res := &analysis.BidRecommendation{}
	key := keys.RedisKey(keys.MD5(string(propertyId)), strconv.FormatInt(currentBid, 10))
	err = im.recommendationCache.GetByFunc(ctx, key, res, func() (interface{}, error) {
		return im.advisor.RecommendBid(ctx, *facts, currentBid)
	})
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"propertyId": propertyId,
		}).Error("advisor.RecommendBid failed")
		return nil, err
	}

	return res, nil
}

func (im *impl) facts(ctx ctx.Ctx, propertyId domain.PropertyId) (*analysis.PropertyFacts, error) {
	p, err := im.property.FindOne(ctx, property.Id{Id: propertyId})
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":        err,
			"propertyId": propertyId,
		}).Error("property.FindOne failed")
		return nil, err
	}

	return &analysis.PropertyFacts{
		Address:      p.Address,
		City:         p.City,
		State:        p.State,
		Price:        p.Price,
		Arv:          p.Arv,
		Bedrooms:     p.Bedrooms,
		Bathrooms:    p.Bathrooms,
		Sqft:         p.Sqft,
		YearBuilt:    p.YearBuilt,
		PropertyType: string(p.PropertyType),
	}, nil
}
