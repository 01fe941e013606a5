// Package controller implements the Emission Controller: the piece that
// decides, event by event, whether the processor's outcome turns into an
// emitted snapshot. It pre-scans for Trade→Fill→Cancel composites so the
// two inner legs never emit, suppresses the very first Reset, filters
// cancels against orders the book never actually holds, and diffs
// top-of-book state around standalone Add/Cancel events so no-op
// snapshots never reach the sink.
package controller

import (
	"mbobook/internal/engine"
	"mbobook/internal/event"
	"mbobook/internal/snapshot"
	"mbobook/pkg/logger"
)

// Sink receives every emitted snapshot, in event order. internal/mbpwriter
// is the only production implementation; the Controller has no file-I/O
// dependency of its own.
type Sink interface {
	Write(snapshot.Snapshot) error
}

// role marks an event's position within a pre-scanned Trade→Fill→Cancel
// composite, or tripleNone if it belongs to no composite.
type role uint8

const (
	tripleNone role = iota
	tripleTrade
	tripleFill
	tripleCancel
)

// Stats summarizes one Run for end-of-run CLI reporting.
type Stats struct {
	EventsRead       int
	SnapshotsEmitted int
	TriplesCollapsed int
	OrphanCancels    int
	SuppressedAdds   int
}

// Controller wires a Processor and a Projector together and owns the
// bookkeeping the bare state machine does not: the failed-cancel set and
// the initial-Reset flag.
type Controller struct {
	processor *engine.Processor
	projector *snapshot.Projector
	log       *logger.Logger

	failedCancels map[uint64]struct{}
	sawFirstEvent bool
}

// New creates a Controller over an already-constructed Processor and
// Projector.
func New(p *engine.Processor, proj *snapshot.Projector, log *logger.Logger) *Controller {
	return &Controller{
		processor:     p,
		projector:     proj,
		log:           log,
		failedCancels: make(map[uint64]struct{}),
	}
}

// Run walks events in order, applying each to the Processor and writing a
// snapshot to sink whenever emission policy calls for one.
func (c *Controller) Run(events []event.Event, sink Sink) (Stats, error) {
	var stats Stats
	roles := prescanTriples(events)

	for i := 0; i < len(events); i++ {
		e := events[i]
		stats.EventsRead++
		isFirstEvent := !c.sawFirstEvent
		c.sawFirstEvent = true

		switch roles[i] {
		case tripleTrade:
			c.processor.Process(e)
			c.processor.Process(events[i+1])
			outcome := c.processor.Process(events[i+2])
			stats.EventsRead += 2
			stats.TriplesCollapsed++
			if outcome.ShouldEmit {
				if err := c.write(sink, events[i+2], outcome); err != nil {
					return stats, err
				}
				stats.SnapshotsEmitted++
			}
			i += 2
			continue
		case tripleFill, tripleCancel:
			// Consumed as part of the tripleTrade branch above; a
			// well-formed prescan never visits these independently.
			continue
		}

		switch e.Action {
		case event.ActionReset:
			outcome := c.processor.Process(e)
			if isFirstEvent {
				continue
			}
			if outcome.ShouldEmit {
				if err := c.write(sink, e, outcome); err != nil {
					return stats, err
				}
				stats.SnapshotsEmitted++
			}

		case event.ActionAdd:
			if _, failed := c.failedCancels[e.OrderID]; failed && e.OrderID != 0 {
				delete(c.failedCancels, e.OrderID)
				stats.SuppressedAdds++
				continue
			}
			emitted, err := c.diffAndEmit(sink, e)
			if err != nil {
				return stats, err
			}
			if emitted {
				stats.SnapshotsEmitted++
			}

		case event.ActionCancel:
			if _, live := c.processor.Book().OrderSide(e.OrderID); !live && e.OrderID != 0 {
				c.failedCancels[e.OrderID] = struct{}{}
				stats.OrphanCancels++
				continue
			}
			emitted, err := c.diffAndEmit(sink, e)
			if err != nil {
				return stats, err
			}
			if emitted {
				stats.SnapshotsEmitted++
			}

		case event.ActionTrade:
			if e.Side == event.SideNone {
				outcome := c.processor.Process(e)
				if err := c.write(sink, e, outcome); err != nil {
					return stats, err
				}
				stats.SnapshotsEmitted++
				continue
			}
			c.processor.FillTradeDirect(e)
			if err := c.write(sink, e, engine.Outcome{ShouldEmit: true, Action: event.ActionTrade, Side: e.Side}); err != nil {
				return stats, err
			}
			stats.SnapshotsEmitted++

		case event.ActionFill:
			// A Fill outside a pre-scanned triple is malformed input; feed
			// it to the Processor for logging, but it never emits on its
			// own.
			c.processor.Process(e)

		default:
			c.log.Warn("unrecognized event action in controller",
				logger.NewField("sequence", e.Sequence),
			)
		}
	}

	return stats, nil
}

// diffAndEmit applies e to the Processor, emitting only if the outcome
// calls for it and the top-of-book actually changed — this is what keeps
// a cancel deep in the book, or an add that doesn't crack the top 10,
// from producing a no-op snapshot.
func (c *Controller) diffAndEmit(sink Sink, e event.Event) (bool, error) {
	before := c.processor.Book().Top10()
	outcome := c.processor.Process(e)
	after := c.processor.Book().Top10()

	if !outcome.ShouldEmit || before == after {
		return false, nil
	}
	if err := c.write(sink, e, outcome); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Controller) write(sink Sink, e event.Event, outcome engine.Outcome) error {
	snap := c.projector.Build(e, c.processor.Book(), outcome.Action, outcome.Side)
	return sink.Write(snap)
}

// prescanTriples marks every run of three consecutive events that forms a
// Trade→Fill→Cancel composite: a Trade immediately followed by a Fill at
// the same price and size, immediately followed by a Cancel of the order
// the Fill named. Matches never overlap, since a match consumes all three
// positions before scanning resumes.
func prescanTriples(events []event.Event) []role {
	roles := make([]role, len(events))

	for i := 0; i+2 < len(events); i++ {
		t, f, c := events[i], events[i+1], events[i+2]
		if t.Action != event.ActionTrade || f.Action != event.ActionFill || c.Action != event.ActionCancel {
			continue
		}
		if f.Price != t.Price || f.Size != t.Size {
			continue
		}
		if c.OrderID != f.OrderID {
			continue
		}
		roles[i], roles[i+1], roles[i+2] = tripleTrade, tripleFill, tripleCancel
		i += 2
	}

	return roles
}
