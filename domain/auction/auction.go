package auction

import (
	"errors"
	"sort"
	"time"

	"github.com/deserthomes/goapi/domain"
)

var (
	// ErrAuctionEnded rejects any bid once the auction is over
	ErrAuctionEnded = errors.New("auction has ended")
	// ErrBidTooLow rejects bids at or below the current bid
	ErrBidTooLow = errors.New("bid must be higher than current bid")
	// ErrBelowIncrement rejects bids that beat the current bid but not by the
	// minimum increment
	ErrBelowIncrement = errors.New("bid is below minimum increment")
	// ErrNotConnected is returned by transports when no session is open
	ErrNotConnected = errors.New("not connected to auction feed")
)

// HistoryLimit bounds the bid history carried in auction state
const HistoryLimit = 10

type Status string

const (
	StatusActive Status = "active"
	// StatusPaused freezes the clock and is reversible, the feed may resume
	// the auction
	StatusPaused Status = "paused"
	// StatusEnded is absorbing. Once a state reaches it no update may revive
	// the auction.
	StatusEnded Status = "ended"
)

// BidRecord is one entry of an auction's bid history
type BidRecord struct {
	Id        string    `json:"id"`
	Bidder    string    `json:"bidder"`
	Amount    int64     `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
	IsWinning bool      `json:"isWinning"`
}

// State is a live auction snapshot. BidHistory is newest first and holds at
// most HistoryLimit entries.
type State struct {
	PropertyId    domain.PropertyId `json:"propertyId"`
	CurrentBid    int64             `json:"currentBid"`
	CurrentBidder string            `json:"currentBidder,omitempty"`
	MinIncrement  int64             `json:"minIncrement"`
	Bidders       int               `json:"bidders"`
	TimeRemaining int64             `json:"timeRemaining"`
	Status        Status            `json:"status"`
	BidHistory    []BidRecord       `json:"bidHistory"`
}

func (s *State) Ended() bool {
	return s.Status == StatusEnded || s.TimeRemaining <= 0
}

// Clone deep-copies a state so callers can hand snapshots across goroutines
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := *s
	c.BidHistory = make([]BidRecord, len(s.BidHistory))
	copy(c.BidHistory, s.BidHistory)
	return &c
}

// BidCheck carries the advisory outcome of a successful validation. HighRisk
// is set when the amount eats most of the property's after-repair value; the
// bid is still allowed.
type BidCheck struct {
	HighRisk bool
	Warning  string
}

// highRiskArvRatio flags bids at or above this share of the ARV
const highRiskArvRatio = 0.9

// ValidateBid checks amount against the auction state. Arv of zero disables
// the high-risk check.
func ValidateBid(s *State, amount int64, arv int64) (*BidCheck, error) {
	if s == nil || s.Ended() {
		return nil, ErrAuctionEnded
	}
	if amount <= s.CurrentBid {
		return nil, ErrBidTooLow
	}
	if amount < s.CurrentBid+s.MinIncrement {
		return nil, ErrBelowIncrement
	}
	check := &BidCheck{}
	if arv > 0 && float64(amount) >= highRiskArvRatio*float64(arv) {
		check.HighRisk = true
		check.Warning = "bid exceeds 90% of after-repair value"
	}
	return check, nil
}

// Normalize repairs an incoming state so session invariants hold: ended is
// forced when the clock hits zero, history is trimmed to HistoryLimit newest
// first, and exactly one entry is winning (the highest amount) whenever the
// history is non-empty.
func Normalize(s *State) {
	if s == nil {
		return
	}
	if s.Status == "" {
		s.Status = StatusActive
	}
	if s.TimeRemaining <= 0 {
		s.TimeRemaining = 0
		s.Status = StatusEnded
	}
	sort.SliceStable(s.BidHistory, func(i, j int) bool {
		return s.BidHistory[i].Timestamp.After(s.BidHistory[j].Timestamp)
	})
	if len(s.BidHistory) > HistoryLimit {
		s.BidHistory = s.BidHistory[:HistoryLimit]
	}
	if len(s.BidHistory) == 0 {
		return
	}
	winner := 0
	for i := range s.BidHistory {
		s.BidHistory[i].IsWinning = false
		if s.BidHistory[i].Amount > s.BidHistory[winner].Amount {
			winner = i
		}
	}
	s.BidHistory[winner].IsWinning = true
}

// wire message types shared by the feed server and the session client
const (
	MsgTypeAuctionUpdate = "auction_update"
	MsgTypePlaceBid      = "place_bid"
	MsgTypePing          = "ping"
	MsgTypePong          = "pong"
	MsgTypeError         = "error"
)

// Message is the envelope on the auction websocket. Exactly one payload
// field is set depending on Type.
type Message struct {
	Type       string            `json:"type"`
	PropertyId domain.PropertyId `json:"propertyId,omitempty"`
	State      *State            `json:"state,omitempty"`
	Bid        *PlaceBidPayload  `json:"bid,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// PlaceBidPayload is the client to server bid submission
type PlaceBidPayload struct {
	PropertyId domain.PropertyId `json:"propertyId"`
	Amount     int64             `json:"amount"`
	Bidder     string            `json:"bidder"`
}

// ConnectionState is a point-in-time view of a session's connectivity,
// derived at read time and never persisted
type ConnectionState struct {
	Connected    bool   `json:"connected"`
	Reconnecting bool   `json:"reconnecting"`
	Attempts     int    `json:"attempts"`
	LastError    string `json:"lastError,omitempty"`
}

// ConnState describes where a session is in its connect/retry lifecycle
type ConnState int32

const (
	ConnDisconnected ConnState = iota
	ConnConnecting
	ConnConnected
	ConnReconnecting
	// ConnGaveUp means the retry budget is exhausted and only an explicit
	// Reconnect can revive the session
	ConnGaveUp
)

func (s ConnState) String() string {
	switch s {
	case ConnDisconnected:
		return "disconnected"
	case ConnConnecting:
		return "connecting"
	case ConnConnected:
		return "connected"
	case ConnReconnecting:
		return "reconnecting"
	case ConnGaveUp:
		return "gaveUp"
	}
	return "unknown"
}
