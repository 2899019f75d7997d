package auction

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/deserthomes/goapi/base/backoff"
	bCtx "github.com/deserthomes/goapi/base/ctx"
	"github.com/deserthomes/goapi/domain"
	"github.com/deserthomes/goapi/domain/auction"
)

var errConnClosed = errors.New("connection closed")

type readResult struct {
	msg *auction.Message
	err error
}

type fakeTransport struct {
	in     chan readResult
	closed chan struct{}
	once   sync.Once

	mu     sync.Mutex
	writes []*auction.Message
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		in:     make(chan readResult, 16),
		closed: make(chan struct{}),
	}
}

func (t *fakeTransport) ReadMessage() (*auction.Message, error) {
	select {
	case r := <-t.in:
		return r.msg, r.err
	case <-t.closed:
		return nil, errConnClosed
	}
}

func (t *fakeTransport) WriteMessage(msg *auction.Message) error {
	select {
	case <-t.closed:
		return errConnClosed
	default:
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.writes = append(t.writes, msg)
	return nil
}

func (t *fakeTransport) Close() error {
	t.once.Do(func() { close(t.closed) })
	return nil
}

func (t *fakeTransport) push(msg *auction.Message) {
	t.in <- readResult{msg: msg}
}

func (t *fakeTransport) pushErr(err error) {
	t.in <- readResult{err: err}
}

func (t *fakeTransport) sentOfType(msgType string) []*auction.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	var res []*auction.Message
	for _, m := range t.writes {
		if m.Type == msgType {
			res = append(res, m)
		}
	}
	return res
}

type fakeDialer struct {
	mu         sync.Mutex
	fail       bool
	dials      int
	transports []*fakeTransport
}

func (d *fakeDialer) Dial(c bCtx.Ctx, url string) (Transport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	if d.fail {
		return nil, errors.New("dial refused")
	}
	t := newFakeTransport()
	d.transports = append(d.transports, t)
	return t, nil
}

func (d *fakeDialer) setFail(fail bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fail = fail
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

func (d *fakeDialer) transport(i int) *fakeTransport {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i < 0 {
		i += len(d.transports)
	}
	if i < 0 || i >= len(d.transports) {
		return nil
	}
	return d.transports[i]
}

type sessionSuite struct {
	suite.Suite
	ctx    bCtx.Ctx
	dialer *fakeDialer

	stateMu sync.Mutex
	states  []auction.ConnState
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(sessionSuite))
}

func (s *sessionSuite) SetupTest() {
	s.ctx = bCtx.Background()
	s.dialer = &fakeDialer{}
	s.states = nil
}

func (s *sessionSuite) newSession(cfg SessionCfg) *Session {
	if cfg.Dialer == nil {
		cfg.Dialer = s.dialer
	}
	if cfg.FeedUrl == "" {
		cfg.FeedUrl = "ws://feed.test/auctions"
	}
	if cfg.PropertyId == "" {
		cfg.PropertyId = "prop-1"
	}
	if cfg.Bidder == "" {
		cfg.Bidder = "Dana"
	}
	if cfg.OnConnState == nil {
		cfg.OnConnState = s.recordConnState
	}
	sess := NewSession(cfg)
	// millisecond schedule so redial tests finish quickly
	sess.bo = backoff.New(retryStrategy{}, time.Millisecond, 30*time.Millisecond)
	return sess
}

func (s *sessionSuite) recordConnState(st auction.ConnState) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.states = append(s.states, st)
}

func (s *sessionSuite) lastConnStates() []auction.ConnState {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	res := make([]auction.ConnState, len(s.states))
	copy(res, s.states)
	return res
}

func liveUpdate(currentBid int64, timeRemaining int64) *auction.Message {
	return &auction.Message{
		Type:       auction.MsgTypeAuctionUpdate,
		PropertyId: "prop-1",
		State: &auction.State{
			PropertyId:    "prop-1",
			CurrentBid:    currentBid,
			MinIncrement:  1000,
			Bidders:       4,
			TimeRemaining: timeRemaining,
			Status:        auction.StatusActive,
		},
	}
}

func (s *sessionSuite) TestConnectAndReceiveUpdate() {
	sess := s.newSession(SessionCfg{})
	defer sess.Close()

	s.NoError(sess.Connect(s.ctx))
	s.Equal(auction.ConnConnected, sess.ConnState())

	s.dialer.transport(0).push(liveUpdate(100000, 600))

	s.Eventually(func() bool {
		st := sess.State()
		return st != nil && st.CurrentBid == 100000
	}, time.Second, 5*time.Millisecond)
}

func (s *sessionSuite) TestConnectIsIdempotent() {
	sess := s.newSession(SessionCfg{})
	defer sess.Close()

	s.NoError(sess.Connect(s.ctx))
	s.NoError(sess.Connect(s.ctx))
	s.Equal(1, s.dialer.dialCount())
}

func (s *sessionSuite) TestZeroClockForcesEnded() {
	sess := s.newSession(SessionCfg{})
	defer sess.Close()

	s.NoError(sess.Connect(s.ctx))
	s.dialer.transport(0).push(liveUpdate(100000, 0))

	s.Eventually(func() bool {
		st := sess.State()
		return st != nil && st.Status == auction.StatusEnded
	}, time.Second, 5*time.Millisecond)
}

func (s *sessionSuite) TestEndedIsAbsorbing() {
	sess := s.newSession(SessionCfg{})
	defer sess.Close()

	s.NoError(sess.Connect(s.ctx))
	t := s.dialer.transport(0)
	t.push(liveUpdate(100000, 0))

	s.Eventually(func() bool {
		st := sess.State()
		return st != nil && st.Status == auction.StatusEnded
	}, time.Second, 5*time.Millisecond)

	// a live update arriving late must not revive the auction
	t.push(liveUpdate(110000, 300))
	time.Sleep(50 * time.Millisecond)

	st := sess.State()
	s.Equal(auction.StatusEnded, st.Status)
	s.Equal(int64(100000), st.CurrentBid)
}

func (s *sessionSuite) TestHistoryNormalizedOnUpdate() {
	sess := s.newSession(SessionCfg{})
	defer sess.Close()

	s.NoError(sess.Connect(s.ctx))

	msg := liveUpdate(115000, 600)
	base := time.Now()
	for i := 0; i < 14; i++ {
		msg.State.BidHistory = append(msg.State.BidHistory, auction.BidRecord{
			Id:        "b",
			Bidder:    "someone",
			Amount:    int64(100000 + i*1000),
			Timestamp: base.Add(time.Duration(i) * time.Second),
			IsWinning: true, // deliberately corrupt, every entry claims to win
		})
	}
	s.dialer.transport(0).push(msg)

	s.Eventually(func() bool {
		st := sess.State()
		return st != nil && len(st.BidHistory) == auction.HistoryLimit
	}, time.Second, 5*time.Millisecond)

	st := sess.State()
	winners := 0
	for _, r := range st.BidHistory {
		if r.IsWinning {
			winners++
		}
	}
	s.Equal(1, winners)
}

func (s *sessionSuite) TestPlaceBidValidation() {
	sess := s.newSession(SessionCfg{Arv: 200000})
	defer sess.Close()

	s.NoError(sess.Connect(s.ctx))

	// no state yet, treated as not biddable
	_, err := sess.PlaceBid(s.ctx, 101000)
	s.Equal(auction.ErrAuctionEnded, err)

	s.dialer.transport(0).push(liveUpdate(100000, 600))
	s.Eventually(func() bool { return sess.State() != nil }, time.Second, 5*time.Millisecond)

	_, err = sess.PlaceBid(s.ctx, 99000)
	s.Equal(auction.ErrBidTooLow, err)

	_, err = sess.PlaceBid(s.ctx, 100500)
	s.Equal(auction.ErrBelowIncrement, err)

	check, err := sess.PlaceBid(s.ctx, 101000)
	s.NoError(err)
	s.False(check.HighRisk)

	check, err = sess.PlaceBid(s.ctx, 185000)
	s.NoError(err)
	s.True(check.HighRisk)

	sent := s.dialer.transport(0).sentOfType(auction.MsgTypePlaceBid)
	s.Len(sent, 2)
	s.Equal(int64(101000), sent[0].Bid.Amount)
	s.Equal("Dana", sent[0].Bid.Bidder)
}

func (s *sessionSuite) TestOfflineBidAppliedOptimistically() {
	sess := s.newSession(SessionCfg{})
	defer sess.Close()

	s.NoError(sess.Connect(s.ctx))
	t0 := s.dialer.transport(0)
	t0.push(liveUpdate(100000, 600))
	s.Eventually(func() bool { return sess.State() != nil }, time.Second, 5*time.Millisecond)

	// drop the connection and keep redials failing
	s.dialer.setFail(true)
	t0.Close()
	s.Eventually(func() bool {
		return sess.ConnState() == auction.ConnReconnecting
	}, time.Second, time.Millisecond)

	check, err := sess.PlaceBid(s.ctx, 101000)
	s.NoError(err)
	s.NotNil(check)

	st := sess.State()
	s.Equal(int64(101000), st.CurrentBid)
	s.Equal(optimisticBidder, st.CurrentBidder)
	s.Equal(optimisticBidder, st.BidHistory[0].Bidder)
	s.True(st.BidHistory[0].IsWinning)

	// once a dial succeeds the queued bid goes out
	s.dialer.setFail(false)
	s.Eventually(func() bool {
		return sess.ConnState() == auction.ConnConnected
	}, time.Second, time.Millisecond)

	t1 := s.dialer.transport(-1)
	s.Eventually(func() bool {
		return len(t1.sentOfType(auction.MsgTypePlaceBid)) == 1
	}, time.Second, time.Millisecond)
	s.Equal(int64(101000), t1.sentOfType(auction.MsgTypePlaceBid)[0].Bid.Amount)
}

func (s *sessionSuite) TestGivesUpAfterRetryBudget() {
	s.dialer.setFail(true)
	sess := s.newSession(SessionCfg{})
	defer sess.Close()

	s.Error(sess.Connect(s.ctx))

	s.Eventually(func() bool {
		return sess.ConnState() == auction.ConnGaveUp
	}, 2*time.Second, time.Millisecond)

	// initial dial plus five scheduled redials
	s.Equal(DefaultMaxAttempts+1, s.dialer.dialCount())

	// no further dials once given up
	dials := s.dialer.dialCount()
	time.Sleep(100 * time.Millisecond)
	s.Equal(dials, s.dialer.dialCount())
}

func (s *sessionSuite) TestReconnectRevivesAfterGiveUp() {
	s.dialer.setFail(true)
	sess := s.newSession(SessionCfg{})
	defer sess.Close()

	s.Error(sess.Connect(s.ctx))
	s.Eventually(func() bool {
		return sess.ConnState() == auction.ConnGaveUp
	}, 2*time.Second, time.Millisecond)

	s.dialer.setFail(false)
	s.NoError(sess.Reconnect(s.ctx))
	s.Equal(auction.ConnConnected, sess.ConnState())
}

func (s *sessionSuite) TestMalformedMessageDropped() {
	sess := s.newSession(SessionCfg{})
	defer sess.Close()

	s.NoError(sess.Connect(s.ctx))
	t := s.dialer.transport(0)
	t.push(liveUpdate(100000, 600))
	s.Eventually(func() bool { return sess.State() != nil }, time.Second, 5*time.Millisecond)

	t.pushErr(ErrMalformedMessage)
	t.push(liveUpdate(101000, 590))

	// the bad frame is skipped, the connection and prior state survive
	s.Eventually(func() bool {
		return sess.State().CurrentBid == 101000
	}, time.Second, 5*time.Millisecond)
	s.Equal(auction.ConnConnected, sess.ConnState())
	s.Equal(1, s.dialer.dialCount())
}

func (s *sessionSuite) TestConnectionStateAlwaysReadable() {
	s.dialer.setFail(true)
	sess := s.newSession(SessionCfg{})
	defer sess.Close()

	s.Error(sess.Connect(s.ctx))
	s.Eventually(func() bool {
		return sess.ConnState() == auction.ConnGaveUp
	}, 2*time.Second, time.Millisecond)

	cs := sess.ConnectionState()
	s.False(cs.Connected)
	s.False(cs.Reconnecting)
	s.Equal(DefaultMaxAttempts, cs.Attempts)
	s.Equal("unable to connect", cs.LastError)

	s.dialer.setFail(false)
	s.NoError(sess.Reconnect(s.ctx))

	cs = sess.ConnectionState()
	s.True(cs.Connected)
	s.Equal(0, cs.Attempts)
	s.Empty(cs.LastError)
}

func (s *sessionSuite) TestPingKeepsFlowing() {
	sess := s.newSession(SessionCfg{PingInterval: 5 * time.Millisecond})
	defer sess.Close()

	s.NoError(sess.Connect(s.ctx))
	t := s.dialer.transport(0)

	s.Eventually(func() bool {
		return len(t.sentOfType(auction.MsgTypePing)) >= 2
	}, time.Second, time.Millisecond)
}

func (s *sessionSuite) TestCloseStopsEverything() {
	sess := s.newSession(SessionCfg{})

	s.NoError(sess.Connect(s.ctx))
	s.NoError(sess.Close())
	s.Equal(auction.ConnDisconnected, sess.ConnState())

	s.Equal(ErrSessionClosed, sess.Connect(s.ctx))
	_, err := sess.PlaceBid(s.ctx, 1)
	s.Equal(ErrSessionClosed, err)
}

func (s *sessionSuite) TestUpdatesForOtherPropertiesIgnored() {
	sess := s.newSession(SessionCfg{})
	defer sess.Close()

	s.NoError(sess.Connect(s.ctx))

	other := liveUpdate(500000, 600)
	other.PropertyId = "prop-2"
	other.State.PropertyId = "prop-2"
	s.dialer.transport(0).push(other)
	s.dialer.transport(0).push(liveUpdate(100000, 600))

	s.Eventually(func() bool { return sess.State() != nil }, time.Second, 5*time.Millisecond)
	s.Equal(domain.PropertyId("prop-1"), sess.State().PropertyId)
	s.Equal(int64(100000), sess.State().CurrentBid)
}
