package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/viper"

	"github.com/deserthomes/goapi/base/ctx"
	"github.com/deserthomes/goapi/base/database/mongoclient"
	"github.com/deserthomes/goapi/base/database/redisclient"
	"github.com/deserthomes/goapi/base/log"
	"github.com/deserthomes/goapi/base/metrics"
	bValidator "github.com/deserthomes/goapi/base/validator"
	mmiddleware "github.com/deserthomes/goapi/middleware"
	"github.com/deserthomes/goapi/service/advisor"
	redisProvider "github.com/deserthomes/goapi/service/cache/provider/redis"
	"github.com/deserthomes/goapi/service/query"
	"github.com/deserthomes/goapi/service/redis"
	analysis_delivery "github.com/deserthomes/goapi/stores/analysis/delivery/http"
	analysis_usecase "github.com/deserthomes/goapi/stores/analysis/usecase"
	auction_ws "github.com/deserthomes/goapi/stores/auction/delivery/ws"
	auction_usecase "github.com/deserthomes/goapi/stores/auction/usecase"
	auth_delivery "github.com/deserthomes/goapi/stores/auth/delivery/http"
	auth_middleware "github.com/deserthomes/goapi/stores/auth/delivery/http/middleware"
	auth_usecase "github.com/deserthomes/goapi/stores/auth/usecase"
	bid_delivery "github.com/deserthomes/goapi/stores/bid/delivery/http"
	bid_repository "github.com/deserthomes/goapi/stores/bid/repository"
	bid_usecase "github.com/deserthomes/goapi/stores/bid/usecase"
	hc_delivery "github.com/deserthomes/goapi/stores/healthcheck/delivery/http"
	hc_repo "github.com/deserthomes/goapi/stores/healthcheck/repository"
	hc_usecase "github.com/deserthomes/goapi/stores/healthcheck/usecase"
	property_delivery "github.com/deserthomes/goapi/stores/property/delivery/http"
	property_repository "github.com/deserthomes/goapi/stores/property/repository"
	property_usecase "github.com/deserthomes/goapi/stores/property/usecase"
	user_delivery "github.com/deserthomes/goapi/stores/user/delivery/http"
	user_repository "github.com/deserthomes/goapi/stores/user/repository"
	user_usecase "github.com/deserthomes/goapi/stores/user/usecase"
)

func init() {
	viper.SetConfigType("yaml")
	viper.SetConfigFile(`infra/configs/config.yaml`)
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}

	if viper.GetBool(`debug`) {
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

func main() {
	// init echo
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware()
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Use(middleware.CORS())
	e.Validator = bValidator.NewCustomValidator(validator.New())

	context := ctx.Background()

	// init mongo client
	context.Info("init mongo")
	uri := viper.GetString("mongo.uri")
	authDBName := viper.GetString("mongo.authDBName")
	dbName := viper.GetString("mongo.dbName")
	enableSSL := viper.GetBool("mongo.enableSSL")
	checkIndex := viper.GetBool("mongo.checkIndex")
	mongoClient := mongoclient.MustConnectMongoClient(uri, authDBName, dbName, enableSSL, true, 2)
	q := query.New(mongoClient, checkIndex)

	// init Redis service
	context.Info("init redis cache")
	redisCacheName := viper.GetString("redis_cache.name")
	redisCacheURI := viper.GetString("redis_cache.uri")
	redisCachePwd := viper.GetString("redis_cache.password")
	redisCachePoolMultiplier := viper.GetFloat64("redis_cache.poolMultiplier")
	redisCachePool := redisclient.MustConnectRedis(redisCacheURI, redisCachePwd, redisclient.RedisParam{
		PoolMultiplier: redisCachePoolMultiplier,
		Retry:          true,
	})
	redisCache := redis.New(redisCacheName, metrics.New(redisCacheName), &redis.Pools{
		Src: redisCachePool,
	})

	mmiddleware.SetupCache(redisCache)

	advisorClient := advisor.NewClient(&advisor.ClientCfg{
		HttpClient: http.Client{},
		Timeout:    viper.GetDuration("advisor.timeout"),
		ApiUrl:     viper.GetString("advisor.apiUrl"),
		ApiKey:     viper.GetString("advisor.apiKey"),
	})

	// the hub owns every live auction room
	hub := auction_usecase.NewHub()

	// construct repository, usecase and delivery
	hcRepo := hc_repo.New(mongoClient, redisCache)
	propertyRepo := property_repository.NewPropertyRepo(q)
	bidRepo := bid_repository.NewBidRepo(q)
	userRepo := user_repository.NewUserRepo(q)

	hc := hc_usecase.New(hcRepo)
	user := user_usecase.NewUserUseCase(userRepo)
	auth := auth_usecase.New(viper.GetString("auth.jwtSecret"), user)
	property := property_usecase.NewPropertyUseCase(propertyRepo, hub)
	bid := bid_usecase.NewBidUseCase(bidRepo, hub)
	analysis := analysis_usecase.NewAnalysisUseCase(propertyRepo, advisorClient, hub, redisProvider.NewRedis(redisCache))

	authMiddleware := auth_middleware.New(auth, user)
	listingCacheTtl := viper.GetDuration("http.listingCacheTtl")

	hc_delivery.New(e, hc)
	auth_delivery.New(e, auth)
	user_delivery.New(e, user, authMiddleware)
	property_delivery.New(e, property, authMiddleware, mmiddleware.CacheHttp(listingCacheTtl))
	bid_delivery.New(e, bid, authMiddleware)
	analysis_delivery.New(e, analysis)
	auction_ws.New(e, hub, bid)

	go func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	// Use a buffered channel to avoid missing signals as recommended for signal.Notify
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")

	hub.Shutdown(context)

	ctx, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
}
