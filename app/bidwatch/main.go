package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	bCtx "github.com/deserthomes/goapi/base/ctx"
	"github.com/deserthomes/goapi/base/log"
	"github.com/deserthomes/goapi/domain"
	domainAuction "github.com/deserthomes/goapi/domain/auction"
	"github.com/deserthomes/goapi/service/auction"
)

// bidwatch follows one live auction feed from the terminal, reconnecting
// through drops and queueing bids placed while offline.
func main() {
	pflag.String("feed", "ws://localhost:9090/ws/auctions", "auction feed base url")
	pflag.String("property", "", "property id to follow")
	pflag.String("bidder", "", "display name used for bids")
	pflag.Int64("arv", 0, "after-repair value, enables the high-risk warning")
	pflag.Int64("bid", 0, "place one bid at this amount after connecting")
	pflag.Parse()
	viper.BindPFlags(pflag.CommandLine)

	propertyId := viper.GetString("property")
	if propertyId == "" {
		fmt.Fprintln(os.Stderr, "bidwatch: --property is required")
		os.Exit(1)
	}

	ctx := bCtx.Background()
	feedUrl := fmt.Sprintf("%s/%s", viper.GetString("feed"), propertyId)

	sess := auction.NewSession(auction.SessionCfg{
		Dialer:     auction.NewDialer(),
		FeedUrl:    feedUrl,
		PropertyId: domain.PropertyId(propertyId),
		Bidder:     viper.GetString("bidder"),
		Arv:        viper.GetInt64("arv"),
		OnUpdate: func(s *domainAuction.State) {
			ctx.WithFields(log.Fields{
				"currentBid":    s.CurrentBid,
				"currentBidder": s.CurrentBidder,
				"bidders":       s.Bidders,
				"timeRemaining": s.TimeRemaining,
				"status":        s.Status,
			}).Info("auction update")
		},
		OnConnState: func(st domainAuction.ConnState) {
			ctx.WithField("state", st.String()).Info("connection state")
		},
	})

	if err := sess.Connect(ctx); err != nil {
		ctx.WithField("err", err).Error("sess.Connect failed")
		os.Exit(1)
	}

	if amount := viper.GetInt64("bid"); amount > 0 {
		check, err := sess.PlaceBid(ctx, amount)
		if err != nil {
			ctx.WithField("err", err).Error("sess.PlaceBid failed")
		} else if check != nil && check.HighRisk {
			ctx.WithField("warning", check.Warning).Warn("bid accepted with warning")
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	ctx.WithField("signal", sig).Info("received signal")

	sess.Close()
}
