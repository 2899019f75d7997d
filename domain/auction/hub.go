package auction

import (
	"github.com/deserthomes/goapi/base/ctx"
	"github.com/deserthomes/goapi/domain"
)

var (
	// ErrNoAuction is returned when no live room exists for the property
	ErrNoAuction = ErrAuctionEnded
)

// Subscription delivers state snapshots for one room until closed
type Subscription struct {
	Updates <-chan *State
	cancel  func()
}

func NewSubscription(updates <-chan *State, cancel func()) *Subscription {
	return &Subscription{Updates: updates, cancel: cancel}
}

func (s *Subscription) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Hub runs the authoritative auction rooms. Each room owns its state; all
// mutation goes through the hub so every subscriber sees the same sequence
// of snapshots.
type Hub interface {
	// Open starts a room with the given initial state. Opening an already
	// open room returns domain.ErrConflict.
	Open(c ctx.Ctx, initial *State) error

	// Snapshot returns the room's current state, or nil when no live room
	// exists for the property
	Snapshot(c ctx.Ctx, propertyId domain.PropertyId) *State

	// Subscribe attaches to a room's update stream
	Subscribe(c ctx.Ctx, propertyId domain.PropertyId) (*Subscription, error)

	// PlaceBid validates and applies a bid to the room, broadcasting the
	// resulting state
	PlaceBid(c ctx.Ctx, payload PlaceBidPayload) (*State, error)

	// Shutdown closes every room
	Shutdown(c ctx.Ctx)
}
