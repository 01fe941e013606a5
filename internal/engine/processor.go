// Package engine implements the event-driven state machine that
// interprets an MBO event stream against a book.Book: Add/Cancel/Trade
// /Fill/Reset semantics, and the Trade→Fill→Cancel composite-event latch
// that collapses a venue's three-step trade encoding into one
// snapshot attributed to the passive side.
package engine

import (
	"mbobook/internal/book"
	"mbobook/internal/event"
	"mbobook/internal/price"
	"mbobook/pkg/logger"
)

// phase is the Processor's Trade→Fill→Cancel latch state.
type phase uint8

const (
	phaseIdle phase = iota
	phaseExpectingFill
)

// Outcome tells the caller (internal/controller) whether to emit a
// snapshot for the event just processed, and which action/side to
// attribute it to — which may differ from the triggering event's own
// action/side when a T→F→C triple collapses onto its closing Cancel.
type Outcome struct {
	ShouldEmit bool
	Action     event.Action
	Side       event.Side
}

// Processor owns the Book and the Trade→Fill→Cancel latch. It is not
// safe for concurrent use; the pipeline is single-threaded by design.
type Processor struct {
	book *book.Book
	log  *logger.Logger

	phase             phase
	pendingTradeSide  event.Side
	pendingFillSide   event.Side
	pendingTradePrice price.Ticks
	pendingTradeSize  uint64
	sawFillSinceTrade bool
}

// New creates a Processor over the given Book.
func New(b *book.Book, log *logger.Logger) *Processor {
	return &Processor{book: b, log: log}
}

// Book exposes the underlying book for snapshot projection.
func (p *Processor) Book() *book.Book {
	return p.book
}

// Process applies one MBO event to the book and reports whether — and
// how — it should be reflected in an emitted snapshot.
func (p *Processor) Process(e event.Event) Outcome {
	switch e.Action {
	case event.ActionReset:
		return p.processReset()
	case event.ActionAdd:
		return p.processAdd(e)
	case event.ActionCancel:
		return p.processCancel(e)
	case event.ActionTrade:
		return p.processTrade(e)
	case event.ActionFill:
		return p.processFill(e)
	default:
		p.log.Warn("unknown event action, ignoring",
			logger.NewField("action", string(rune(e.Action))),
			logger.NewField("sequence", e.Sequence),
		)
		return Outcome{}
	}
}

func (p *Processor) processReset() Outcome {
	p.book.Clear()
	return Outcome{ShouldEmit: true, Action: event.ActionReset, Side: event.SideNone}
}

func (p *Processor) processAdd(e event.Event) Outcome {
	p.phase = phaseIdle
	p.sawFillSinceTrade = false

	if e.OrderID == 0 {
		return Outcome{ShouldEmit: true, Action: event.ActionAdd, Side: e.Side}
	}

	if _, live := p.book.OrderSide(e.OrderID); live {
		p.log.Warn("duplicate add, order id already live",
			logger.NewField("order_id", e.OrderID),
			logger.NewField("sequence", e.Sequence),
		)
		return Outcome{}
	}

	side, ok := e.Side.Book()
	if !ok {
		p.log.Warn("add with no side, ignoring",
			logger.NewField("order_id", e.OrderID),
			logger.NewField("sequence", e.Sequence),
		)
		return Outcome{}
	}

	_ = p.book.AddOrder(e.OrderID, e.Price, e.Size, side)
	return Outcome{ShouldEmit: true, Action: event.ActionAdd, Side: e.Side}
}

func (p *Processor) processCancel(e event.Event) Outcome {
	if p.phase == phaseExpectingFill && p.sawFillSinceTrade {
		// The Fill is taken to report the passive (resting) side that was
		// hit, so the collapsed snapshot is attributed to the Fill's side.
		return p.closeTradeTriple()
	}

	// Idle, or a stray Cancel arriving mid-triple with no Fill observed
	// yet — treat as an ordinary cancel against the book.
	side, live := p.book.OrderSide(e.OrderID)
	if !live {
		return Outcome{ShouldEmit: true, Action: event.ActionCancel, Side: event.SideNone}
	}

	p.book.CancelOrder(e.OrderID, e.Size)

	attributedSide := event.SideAsk
	if side == book.Bid {
		attributedSide = event.SideBid
	}
	return Outcome{ShouldEmit: true, Action: event.ActionCancel, Side: attributedSide}
}

// closeTradeTriple applies the latched fill and returns the single
// attributed snapshot for a Trade→Fill→Cancel composite.
func (p *Processor) closeTradeTriple() Outcome {
	oppositeSide, _ := p.pendingTradeSide.Opposite().Book()
	p.book.FillLevel(oppositeSide, p.pendingTradePrice, p.pendingTradeSize)

	attributedSide := p.pendingFillSide
	if attributedSide == 0 {
		attributedSide = event.SideNone
	}

	p.phase = phaseIdle
	p.pendingTradeSide = 0
	p.pendingFillSide = 0
	p.pendingTradePrice = 0
	p.pendingTradeSize = 0
	p.sawFillSinceTrade = false

	return Outcome{ShouldEmit: true, Action: event.ActionTrade, Side: attributedSide}
}

func (p *Processor) processTrade(e event.Event) Outcome {
	if e.Side == event.SideNone {
		return Outcome{ShouldEmit: true, Action: event.ActionTrade, Side: event.SideNone}
	}

	p.phase = phaseExpectingFill
	p.pendingTradeSide = e.Side
	p.pendingTradePrice = e.Price
	p.pendingTradeSize = e.Size
	p.sawFillSinceTrade = false

	return Outcome{ShouldEmit: false, Action: event.ActionTrade, Side: e.Side}
}

func (p *Processor) processFill(e event.Event) Outcome {
	if p.phase != phaseExpectingFill {
		p.log.Warn("unexpected fill with no pending trade, ignoring",
			logger.NewField("sequence", e.Sequence),
		)
		return Outcome{}
	}

	p.pendingFillSide = e.Side
	p.sawFillSinceTrade = true

	return Outcome{ShouldEmit: false, Action: event.ActionFill, Side: e.Side}
}

// FillTradeDirect applies a standalone Trade (one with no matching
// Trade→Fill→Cancel triple) directly against the book, per the
// Emission Controller's top-of-book diffing policy (standalone trades
// always emit, regardless of depth impact).
func (p *Processor) FillTradeDirect(e event.Event) {
	side, ok := e.Side.Opposite().Book()
	if !ok {
		return
	}
	p.book.FillLevel(side, e.Price, e.Size)
}
