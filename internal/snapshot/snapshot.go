// Package snapshot builds MBP-10 depth snapshots from a book.Book and
// the triggering event's metadata. The projector is pure: two snapshots
// taken from the same book state yield bitwise-identical top-of-book
// fields.
package snapshot

import (
	"mbobook/internal/book"
	"mbobook/internal/event"
	"mbobook/internal/price"
)

// Level mirrors book.LevelView in the output record's vocabulary.
type Level struct {
	Price price.Ticks
	Size  uint64
	Count uint32
}

// Snapshot is one MBP-10 output row: the attributed action/side from the
// Event Processor, the triggering event's pass-through fields, and the
// book's top-10 bid/ask levels.
type Snapshot struct {
	TsEvent int64
	TsRecv  int64

	Action event.Action
	Side   event.Side

	EventPrice     price.Ticks
	EventSize      uint64
	EventOrderID   uint64
	EventFlags     uint8
	EventTsInDelta int32
	Sequence       uint64

	Bids [10]Level
	Asks [10]Level
}

// Projector builds Snapshot values from the current book state.
type Projector struct{}

// NewProjector creates a Projector. It carries no state of its own.
func NewProjector() *Projector {
	return &Projector{}
}

// Build produces a Snapshot for event e, using the attributed action and
// side from the Event Processor's outcome rather than e's own — the two
// differ exactly when e closes a Trade→Fill→Cancel composite.
func (p *Projector) Build(e event.Event, b *book.Book, attributedAction event.Action, attributedSide event.Side) Snapshot {
	top := b.Top10()

	snap := Snapshot{
		TsEvent:        e.TsEvent,
		TsRecv:         e.TsEvent,
		Action:         attributedAction,
		Side:           attributedSide,
		EventPrice:     e.Price,
		EventSize:      e.Size,
		EventOrderID:   e.OrderID,
		EventFlags:     e.Flags,
		EventTsInDelta: e.TsInDelta,
		Sequence:       e.Sequence,
	}

	for i := 0; i < 10; i++ {
		snap.Bids[i] = Level{Price: top.Bids[i].Price, Size: top.Bids[i].Size, Count: top.Bids[i].Count}
		snap.Asks[i] = Level{Price: top.Asks[i].Price, Size: top.Asks[i].Size, Count: top.Asks[i].Count}
	}

	return snap
}
