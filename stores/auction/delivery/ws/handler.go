package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	bCtx "github.com/deserthomes/goapi/base/ctx"
	"github.com/deserthomes/goapi/base/delivery"
	"github.com/deserthomes/goapi/base/goroutine"
	"github.com/deserthomes/goapi/domain"
	"github.com/deserthomes/goapi/domain/auction"
	"github.com/deserthomes/goapi/domain/bid"
)

const writeTimeout = 10 * time.Second

type handler struct {
	hub      auction.Hub
	bid      bid.Usecase
	upgrader websocket.Upgrader
}

func New(e *echo.Echo, hub auction.Hub, bid bid.Usecase) {
	h := &handler{
		hub: hub,
		bid: bid,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	e.GET("/ws/auctions/:id", h.serve)
}

// client serializes writes shared by the broadcast loop and pong replies
type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (cl *client) write(msg *auction.Message) error {
	cl.writeMu.Lock()
	defer cl.writeMu.Unlock()
	cl.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return cl.conn.WriteJSON(msg)
}

func (h *handler) serve(c echo.Context) error {
	ctx := c.Get("ctx").(bCtx.Ctx)

	propertyId := domain.PropertyId(c.Param("id"))
	if propertyId.IsEmpty() {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	sub, err := h.hub.Subscribe(ctx, propertyId)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusNotFound, auction.ErrNoAuction)
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		sub.Close()
		ctx.WithField("err", err).Error("upgrader.Upgrade failed")
		return err
	}

	cl := &client{conn: conn}
	done := make(chan struct{})

	goroutine.RecoverableGo(func() {
		h.writeLoop(ctx, cl, sub, propertyId, done)
	})

	h.readLoop(ctx, cl, propertyId)

	close(done)
	sub.Close()
	conn.Close()
	return nil
}

// writeLoop pushes room snapshots to the client until the room or the
// connection goes away
func (h *handler) writeLoop(ctx bCtx.Ctx, cl *client, sub *auction.Subscription, propertyId domain.PropertyId, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case snap, ok := <-sub.Updates:
			if !ok {
				// room ended, the last snapshot already carried the final state
				cl.conn.Close()
				return
			}
			if err := cl.write(&auction.Message{
				Type:       auction.MsgTypeAuctionUpdate,
				PropertyId: propertyId,
				State:      snap,
			}); err != nil {
				cl.conn.Close()
				return
			}
		}
	}
}

func (h *handler) readLoop(ctx bCtx.Ctx, cl *client, propertyId domain.PropertyId) {
	for {
		msg := &auction.Message{}
		if err := cl.conn.ReadJSON(msg); err != nil {
			return
		}

		switch msg.Type {
		case auction.MsgTypePing:
			if err := cl.write(&auction.Message{Type: auction.MsgTypePong}); err != nil {
				return
			}
		case auction.MsgTypePlaceBid:
			h.handleBid(ctx, cl, propertyId, msg.Bid)
		}
	}
}

func (h *handler) handleBid(ctx bCtx.Ctx, cl *client, propertyId domain.PropertyId, payload *auction.PlaceBidPayload) {
	if payload == nil || payload.Bidder == "" || payload.Amount <= 0 {
		cl.write(&auction.Message{Type: auction.MsgTypeError, Error: domain.ErrBadParamInput.Error()})
		return
	}

	// feed bids are anonymous, they carry only the display name
	_, err := h.bid.Place(ctx, "", payload.Bidder, propertyId, payload.Amount)
	switch err {
	case nil:
		// accepted bids reach the client through the broadcast loop
	case auction.ErrAuctionEnded, auction.ErrBidTooLow, auction.ErrBelowIncrement:
		cl.write(&auction.Message{Type: auction.MsgTypeError, Error: err.Error()})
	default:
		ctx.WithField("err", err).Error("bid.Place failed")
		cl.write(&auction.Message{Type: auction.MsgTypeError, Error: "internal error"})
	}
}
