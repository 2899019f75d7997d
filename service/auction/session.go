package auction

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/deserthomes/goapi/base/backoff"
	bCtx "github.com/deserthomes/goapi/base/ctx"
	"github.com/deserthomes/goapi/base/goroutine"
	"github.com/deserthomes/goapi/base/log"
	"github.com/deserthomes/goapi/domain"
	"github.com/deserthomes/goapi/domain/auction"
)

var (
	// ErrSessionClosed is returned by every operation after Close
	ErrSessionClosed = errors.New("session closed")
)

const (
	// DefaultMaxAttempts is how many automatic redials a session makes
	// before giving up
	DefaultMaxAttempts = 5

	// DefaultPingInterval keeps intermediaries from reaping idle connections
	DefaultPingInterval = 30 * time.Second

	backoffStart = time.Second
	backoffLimit = 30 * time.Second

	// optimisticBidder labels bids applied locally while offline
	optimisticBidder = "You"
)

// retryStrategy doubles starting from 2x so the first redial waits 2s, then
// 4s, 8s, 16s, 30s (capped)
type retryStrategy struct{}

func (retryStrategy) GetBackoffDuration(count int, start, last time.Duration) time.Duration {
	if count > 30 {
		return backoffLimit
	}
	return start * time.Duration(int64(1)<<uint(count+1))
}

// SessionCfg configures one live auction session
type SessionCfg struct {
	Dialer     Dialer
	FeedUrl    string
	PropertyId domain.PropertyId
	Bidder     string

	// Arv enables the high-risk bid warning when positive
	Arv int64

	// MaxAttempts defaults to DefaultMaxAttempts, PingInterval to
	// DefaultPingInterval
	MaxAttempts  int
	PingInterval time.Duration

	// OnUpdate receives a snapshot after every accepted state change.
	// OnConnState receives lifecycle transitions. Neither may call back
	// into the session.
	OnUpdate    func(*auction.State)
	OnConnState func(auction.ConnState)
}

// Session maintains a resilient connection to one property's auction feed.
// It redials with bounded exponential backoff after drops, keeps the last
// known auction state, and applies bids optimistically while offline.
type Session struct {
	dialer       Dialer
	feedUrl      string
	propertyId   domain.PropertyId
	bidder       string
	arv          int64
	maxAttempts  int
	pingInterval time.Duration
	onUpdate     func(*auction.State)
	onConnState  func(auction.ConnState)

	mu             sync.Mutex
	state          *auction.State
	connState      auction.ConnState
	lastError      string
	transport      Transport
	generation     int
	bo             *backoff.Backoff
	reconnectTimer *time.Timer
	pingStop       chan struct{}
	pending        []auction.PlaceBidPayload
	closed         bool
}

func NewSession(cfg SessionCfg) *Session {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	pingInterval := cfg.PingInterval
	if pingInterval <= 0 {
		pingInterval = DefaultPingInterval
	}
	return &Session{
		dialer:       cfg.Dialer,
		feedUrl:      cfg.FeedUrl,
		propertyId:   cfg.PropertyId,
		bidder:       cfg.Bidder,
		arv:          cfg.Arv,
		maxAttempts:  maxAttempts,
		pingInterval: pingInterval,
		onUpdate:     cfg.OnUpdate,
		onConnState:  cfg.OnConnState,
		connState:    auction.ConnDisconnected,
		bo:           backoff.New(retryStrategy{}, backoffStart, backoffLimit),
	}
}

// Connect opens the feed connection. Calling it while already connected or
// mid-connect is a no-op.
func (s *Session) Connect(c bCtx.Ctx) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.connState == auction.ConnConnected || s.connState == auction.ConnConnecting {
		s.mu.Unlock()
		return nil
	}
	if s.reconnectTimer != nil {
		s.reconnectTimer.Stop()
		s.reconnectTimer = nil
	}
	s.connState = auction.ConnConnecting
	s.mu.Unlock()
	s.notifyConnState(auction.ConnConnecting)

	return s.dial(c)
}

// Reconnect discards the retry budget and forces a fresh connection. It is
// the only way back after the session gives up.
func (s *Session) Reconnect(c bCtx.Ctx) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.generation++
	if s.reconnectTimer != nil {
		s.reconnectTimer.Stop()
		s.reconnectTimer = nil
	}
	if s.pingStop != nil {
		close(s.pingStop)
		s.pingStop = nil
	}
	if s.transport != nil {
		s.transport.Close()
		s.transport = nil
	}
	s.bo.Reset()
	s.lastError = ""
	s.connState = auction.ConnConnecting
	s.mu.Unlock()
	s.notifyConnState(auction.ConnConnecting)

	return s.dial(c)
}

func (s *Session) dial(c bCtx.Ctx) error {
	t, err := s.dialer.Dial(c, s.feedUrl)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		if t != nil {
			t.Close()
		}
		return ErrSessionClosed
	}
	if err != nil {
		c.WithFields(log.Fields{
			"err":        err,
			"propertyId": s.propertyId,
		}).Warn("auction feed dial failed")
		s.lastError = err.Error()
		next := s.scheduleRetryLocked(c)
		s.mu.Unlock()
		s.notifyConnState(next)
		return err
	}

	s.generation++
	gen := s.generation
	s.transport = t
	s.bo.Reset()
	s.lastError = ""
	s.connState = auction.ConnConnected
	pending := s.pending
	s.pending = nil
	stop := make(chan struct{})
	s.pingStop = stop
	s.mu.Unlock()
	s.notifyConnState(auction.ConnConnected)

	// bids accepted optimistically while offline go out first
	for _, p := range pending {
		payload := p
		if err := t.WriteMessage(&auction.Message{
			Type:       auction.MsgTypePlaceBid,
			PropertyId: payload.PropertyId,
			Bid:        &payload,
		}); err != nil {
			c.WithFields(log.Fields{
				"err":        err,
				"propertyId": payload.PropertyId,
				"amount":     payload.Amount,
			}).Warn("resending pending bid failed")
			s.mu.Lock()
			s.pending = append(s.pending, payload)
			s.mu.Unlock()
		}
	}

	goroutine.RecoverableGo(func() { s.readLoop(c, gen, t) })
	goroutine.RecoverableGo(func() { s.pingLoop(c, t, stop) })

	return nil
}

func (s *Session) readLoop(c bCtx.Ctx, gen int, t Transport) {
	for {
		msg, err := t.ReadMessage()
		if errors.Is(err, ErrMalformedMessage) {
			// the connection is fine, drop the frame and keep the last
			// valid state
			c.WithFields(log.Fields{
				"err":        err,
				"propertyId": s.propertyId,
			}).Warn("dropping malformed feed message")
			continue
		}
		if err != nil {
			s.handleClosed(c, gen, err)
			return
		}
		s.handleMessage(c, msg)
	}
}

func (s *Session) handleClosed(c bCtx.Ctx, gen int, cause error) {
	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		return
	}
	c.WithFields(log.Fields{
		"err":        cause,
		"propertyId": s.propertyId,
		"attempts":   s.bo.Count(),
	}).Warn("auction feed connection lost")

	if s.transport != nil {
		s.transport.Close()
		s.transport = nil
	}
	if s.pingStop != nil {
		close(s.pingStop)
		s.pingStop = nil
	}
	if cause != nil {
		s.lastError = cause.Error()
	}
	next := s.scheduleRetryLocked(c)
	s.mu.Unlock()
	s.notifyConnState(next)
}

// scheduleRetryLocked arms the next redial or gives up once the budget is
// spent. Caller holds s.mu and must publish the returned state after
// unlocking.
func (s *Session) scheduleRetryLocked(c bCtx.Ctx) auction.ConnState {
	if s.bo.Count() >= s.maxAttempts {
		c.WithFields(log.Fields{
			"propertyId": s.propertyId,
			"attempts":   s.bo.Count(),
		}).Error("auction feed retry budget exhausted")
		s.lastError = "unable to connect"
		s.connState = auction.ConnGaveUp
		return s.connState
	}

	delay := s.bo.Advance()
	s.connState = auction.ConnReconnecting
	c.WithFields(log.Fields{
		"propertyId": s.propertyId,
		"attempt":    s.bo.Count(),
		"delay":      delay.String(),
	}).Info("scheduling auction feed redial")

	s.reconnectTimer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		if s.closed || s.connState != auction.ConnReconnecting {
			s.mu.Unlock()
			return
		}
		s.connState = auction.ConnConnecting
		s.mu.Unlock()
		s.notifyConnState(auction.ConnConnecting)
		s.dial(c)
	})
	return s.connState
}

func (s *Session) pingLoop(c bCtx.Ctx, t Transport, stop chan struct{}) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := t.WriteMessage(&auction.Message{Type: auction.MsgTypePing}); err != nil {
				c.WithField("err", err).Warn("auction feed ping failed")
				return
			}
		}
	}
}

func (s *Session) handleMessage(c bCtx.Ctx, msg *auction.Message) {
	switch msg.Type {
	case auction.MsgTypeAuctionUpdate:
		if msg.State == nil || msg.PropertyId != s.propertyId {
			return
		}
		incoming := msg.State.Clone()
		auction.Normalize(incoming)

		s.mu.Lock()
		if s.state != nil && s.state.Ended() {
			// ended is final, a stale update cannot revive the auction
			s.mu.Unlock()
			return
		}
		s.state = incoming
		snapshot := incoming.Clone()
		s.mu.Unlock()

		if s.onUpdate != nil {
			s.onUpdate(snapshot)
		}
	case auction.MsgTypePong:
	case auction.MsgTypeError:
		c.WithFields(log.Fields{
			"propertyId": s.propertyId,
			"error":      msg.Error,
		}).Warn("auction feed reported error")
	default:
		c.WithField("type", msg.Type).Debug("ignoring unknown feed message")
	}
}

// PlaceBid validates amount against the latest known state and submits it.
// While disconnected the bid is applied locally and queued for resend, so
// the user sees their bid immediately.
func (s *Session) PlaceBid(c bCtx.Ctx, amount int64) (*auction.BidCheck, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}

	check, err := auction.ValidateBid(s.state, amount, s.arv)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	payload := auction.PlaceBidPayload{
		PropertyId: s.propertyId,
		Amount:     amount,
		Bidder:     s.bidder,
	}

	if s.connState == auction.ConnConnected && s.transport != nil {
		t := s.transport
		s.mu.Unlock()
		if err := t.WriteMessage(&auction.Message{
			Type:       auction.MsgTypePlaceBid,
			PropertyId: payload.PropertyId,
			Bid:        &payload,
		}); err != nil {
			c.WithFields(log.Fields{
				"err":        err,
				"propertyId": payload.PropertyId,
				"amount":     amount,
			}).Error("sending bid failed")
			return nil, err
		}
		return check, nil
	}

	// offline path
	s.applyLocalBidLocked(amount)
	s.pending = append(s.pending, payload)
	snapshot := s.state.Clone()
	s.mu.Unlock()

	if s.onUpdate != nil {
		s.onUpdate(snapshot)
	}
	return check, nil
}

func (s *Session) applyLocalBidLocked(amount int64) {
	record := auction.BidRecord{
		Id:        uuid.New().String(),
		Bidder:    optimisticBidder,
		Amount:    amount,
		Timestamp: time.Now(),
		IsWinning: true,
	}
	s.state.CurrentBid = amount
	s.state.CurrentBidder = optimisticBidder
	s.state.BidHistory = append([]auction.BidRecord{record}, s.state.BidHistory...)
	auction.Normalize(s.state)
}

// State returns a snapshot of the last known auction state, or nil before
// the first update
func (s *Session) State() *auction.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Session) ConnState() auction.ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connState
}

// ConnectionState reports connectivity, the retry count, and the last
// failure, so callers can keep them visible to the user at all times
func (s *Session) ConnectionState() auction.ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return auction.ConnectionState{
		Connected:    s.connState == auction.ConnConnected,
		Reconnecting: s.connState == auction.ConnReconnecting,
		Attempts:     s.bo.Count(),
		LastError:    s.lastError,
	}
}

// NextMinimumBid is the smallest amount the validator would accept right now
func (s *Session) NextMinimumBid() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return 0
	}
	return s.state.CurrentBid + s.state.MinIncrement
}

// Close tears the session down. It is terminal.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.generation++
	if s.reconnectTimer != nil {
		s.reconnectTimer.Stop()
		s.reconnectTimer = nil
	}
	if s.pingStop != nil {
		close(s.pingStop)
		s.pingStop = nil
	}
	t := s.transport
	s.transport = nil
	s.connState = auction.ConnDisconnected
	s.mu.Unlock()
	s.notifyConnState(auction.ConnDisconnected)

	if t != nil {
		return t.Close()
	}
	return nil
}

func (s *Session) notifyConnState(st auction.ConnState) {
	if s.onConnState != nil {
		s.onConnState(st)
	}
}
