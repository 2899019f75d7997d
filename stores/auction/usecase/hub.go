package usecase

import (
	"sync"
	"time"

	"github.com/google/uuid"

	bCtx "github.com/deserthomes/goapi/base/ctx"
	"github.com/deserthomes/goapi/base/goroutine"
	"github.com/deserthomes/goapi/base/log"
	"github.com/deserthomes/goapi/domain"
	"github.com/deserthomes/goapi/domain/auction"
)

const (
	tickInterval = time.Second
	// subscriberBuffer bounds each subscriber channel. A slow consumer skips
	// intermediate snapshots rather than stalling the room.
	subscriberBuffer = 8
)

var timeNow = time.Now

// room owns the authoritative state of one live auction
type room struct {
	mu      sync.Mutex
	state   *auction.State
	subs    map[int]chan *auction.State
	nextSub int
	bidders map[string]struct{}
	stop    chan struct{}
	ended   bool
}

type hubImpl struct {
	mu     sync.RWMutex
	rooms  map[domain.PropertyId]*room
	closed bool
}

func NewHub() auction.Hub {
	return &hubImpl{rooms: map[domain.PropertyId]*room{}}
}

func (im *hubImpl) Open(ctx bCtx.Ctx, initial *auction.State) error {
	if initial == nil || initial.Ended() {
		return auction.ErrAuctionEnded
	}

	s := initial.Clone()
	auction.Normalize(s)

	im.mu.Lock()
	defer im.mu.Unlock()
	if im.closed {
		return auction.ErrAuctionEnded
	}
	if _, ok := im.rooms[s.PropertyId]; ok {
		return domain.ErrConflict
	}

	r := &room{
		state:   s,
		subs:    map[int]chan *auction.State{},
		bidders: map[string]struct{}{},
		stop:    make(chan struct{}),
	}
	for _, b := range s.BidHistory {
		r.bidders[b.Bidder] = struct{}{}
	}
	im.rooms[s.PropertyId] = r

	ctx.WithFields(log.Fields{
		"propertyId":    s.PropertyId,
		"timeRemaining": s.TimeRemaining,
	}).Info("auction room opened")

	goroutine.RecoverableGo(func() {
		im.run(r, s.PropertyId)
	})
	return nil
}

func (im *hubImpl) Snapshot(ctx bCtx.Ctx, propertyId domain.PropertyId) *auction.State {
	r := im.room(propertyId)
	if r == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ended {
		return nil
	}
	return r.state.Clone()
}

func (im *hubImpl) Subscribe(ctx bCtx.Ctx, propertyId domain.PropertyId) (*auction.Subscription, error) {
	r := im.room(propertyId)
	if r == nil {
		return nil, auction.ErrNoAuction
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ended {
		return nil, auction.ErrNoAuction
	}

	id := r.nextSub
	r.nextSub++
	ch := make(chan *auction.State, subscriberBuffer)
	r.subs[id] = ch

	// new subscribers see the current state right away
	ch <- r.state.Clone()

	cancel := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if sub, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(sub)
		}
	}
	return auction.NewSubscription(ch, cancel), nil
}

func (im *hubImpl) PlaceBid(ctx bCtx.Ctx, payload auction.PlaceBidPayload) (*auction.State, error) {
	r := im.room(payload.PropertyId)
	if r == nil {
		return nil, auction.ErrNoAuction
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// high-risk advice is a client concern, the room only enforces hard rules
	if _, err := auction.ValidateBid(r.state, payload.Amount, 0); err != nil {
		return nil, err
	}

	r.state.CurrentBid = payload.Amount
	r.state.CurrentBidder = payload.Bidder
	r.bidders[payload.Bidder] = struct{}{}
	r.state.Bidders = len(r.bidders)
	r.state.BidHistory = append([]auction.BidRecord{{
		Id:        uuid.New().String(),
		Bidder:    payload.Bidder,
		Amount:    payload.Amount,
		Timestamp: timeNow(),
		IsWinning: true,
	}}, r.state.BidHistory...)
	auction.Normalize(r.state)

	ctx.WithFields(log.Fields{
		"propertyId": payload.PropertyId,
		"bidder":     payload.Bidder,
		"amount":     payload.Amount,
	}).Info("bid accepted")

	snap := r.state.Clone()
	r.broadcastLocked(snap)
	return snap, nil
}

func (im *hubImpl) Shutdown(ctx bCtx.Ctx) {
	im.mu.Lock()
	rooms := im.rooms
	im.rooms = map[domain.PropertyId]*room{}
	im.closed = true
	im.mu.Unlock()

	for propertyId, r := range rooms {
		r.close()
		ctx.WithField("propertyId", propertyId).Info("auction room closed")
	}
}

func (im *hubImpl) room(propertyId domain.PropertyId) *room {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.rooms[propertyId]
}

func (im *hubImpl) remove(propertyId domain.PropertyId) {
	im.mu.Lock()
	defer im.mu.Unlock()
	delete(im.rooms, propertyId)
}

// run drives the room clock until the auction ends or the hub shuts down
func (im *hubImpl) run(r *room, propertyId domain.PropertyId) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			if r.tick() {
				im.remove(propertyId)
				return
			}
		}
	}
}

// tick advances the clock one second and reports whether the auction ended
func (r *room) tick() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ended {
		return true
	}
	if r.state.Status == auction.StatusPaused {
		return false
	}

	r.state.TimeRemaining--
	auction.Normalize(r.state)
	r.broadcastLocked(r.state.Clone())

	if r.state.Ended() {
		r.endLocked()
		return true
	}
	return false
}

func (r *room) broadcastLocked(snap *auction.State) {
	for _, ch := range r.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

func (r *room) endLocked() {
	r.ended = true
	for id, ch := range r.subs {
		delete(r.subs, id)
		close(ch)
	}
}

func (r *room) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.ended {
		close(r.stop)
		r.endLocked()
	}
}
