package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mbobook/internal/book"
	"mbobook/internal/event"
	"mbobook/internal/price"
	"mbobook/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(logger.WithOutputPaths([]string{"stdout"}))
	require.NoError(t, err)
	return log
}

func px(f float64) price.Ticks {
	return price.FromFloat(f)
}

func TestProcessReset(t *testing.T) {
	p := New(book.New(), testLogger(t))
	require.NoError(t, p.Book().AddOrder(1, px(100), 10, book.Bid))

	outcome := p.Process(event.Event{Action: event.ActionReset})

	assert.True(t, outcome.ShouldEmit)
	assert.Equal(t, event.ActionReset, outcome.Action)
	assert.Equal(t, event.SideNone, outcome.Side)
	assert.Equal(t, 0, p.Book().OrderCount())
}

func TestProcessAdd(t *testing.T) {
	t.Run("order_id zero does not mutate but still emits", func(t *testing.T) {
		p := New(book.New(), testLogger(t))
		outcome := p.Process(event.Event{Action: event.ActionAdd, Side: event.SideBid, OrderID: 0, Price: px(1), Size: 1})

		assert.True(t, outcome.ShouldEmit)
		assert.Equal(t, 0, p.Book().OrderCount())
	})

	t.Run("duplicate add is skipped with no emission", func(t *testing.T) {
		p := New(book.New(), testLogger(t))
		e := event.Event{Action: event.ActionAdd, Side: event.SideBid, OrderID: 1, Price: px(100), Size: 10}
		p.Process(e)

		outcome := p.Process(e)

		assert.False(t, outcome.ShouldEmit)
	})

	t.Run("normal add mutates the book", func(t *testing.T) {
		p := New(book.New(), testLogger(t))
		outcome := p.Process(event.Event{Action: event.ActionAdd, Side: event.SideAsk, OrderID: 1, Price: px(100.75), Size: 75})

		assert.True(t, outcome.ShouldEmit)
		assert.Equal(t, event.SideAsk, outcome.Side)
		assert.Equal(t, px(100.75), p.Book().BestAsk())
	})
}

func TestProcessCancelIdle(t *testing.T) {
	t.Run("unknown order id reports side None for orphan-cancel filtering", func(t *testing.T) {
		p := New(book.New(), testLogger(t))
		outcome := p.Process(event.Event{Action: event.ActionCancel, OrderID: 9999, Size: 100})

		assert.True(t, outcome.ShouldEmit)
		assert.Equal(t, event.SideNone, outcome.Side)
	})

	t.Run("known order cancels and attributes its resting side", func(t *testing.T) {
		p := New(book.New(), testLogger(t))
		p.Process(event.Event{Action: event.ActionAdd, Side: event.SideBid, OrderID: 1, Price: px(100), Size: 10})

		outcome := p.Process(event.Event{Action: event.ActionCancel, OrderID: 1, Size: 0})

		assert.True(t, outcome.ShouldEmit)
		assert.Equal(t, event.SideBid, outcome.Side)
	})
}

func TestTradeFillCancelTriple(t *testing.T) {
	p := New(book.New(), testLogger(t))
	require.NoError(t, p.Book().AddOrder(2001, px(100.75), 75, book.Ask))

	tOutcome := p.Process(event.Event{Action: event.ActionTrade, Side: event.SideBid, Price: px(100.75), Size: 30, OrderID: 0})
	assert.False(t, tOutcome.ShouldEmit)

	fOutcome := p.Process(event.Event{Action: event.ActionFill, Side: event.SideAsk, Price: px(100.75), Size: 30, OrderID: 2001})
	assert.False(t, fOutcome.ShouldEmit)

	cOutcome := p.Process(event.Event{Action: event.ActionCancel, Side: event.SideAsk, Price: px(100.75), Size: 30, OrderID: 2001})

	require.True(t, cOutcome.ShouldEmit)
	assert.Equal(t, event.ActionTrade, cOutcome.Action)
	assert.Equal(t, event.SideAsk, cOutcome.Side) // attributed from the Fill's side

	top := p.Book().Top10()
	assert.Equal(t, px(100.75), top.Asks[0].Price)
	assert.Equal(t, uint64(45), top.Asks[0].Size)
	assert.Equal(t, uint32(1), top.Asks[0].Count)
}

func TestFillWithoutPendingTradeIsIgnored(t *testing.T) {
	p := New(book.New(), testLogger(t))
	outcome := p.Process(event.Event{Action: event.ActionFill, Side: event.SideAsk})

	assert.False(t, outcome.ShouldEmit)
}

func TestTradeWithSideNoneDoesNotMutate(t *testing.T) {
	p := New(book.New(), testLogger(t))
	outcome := p.Process(event.Event{Action: event.ActionTrade, Side: event.SideNone})

	assert.True(t, outcome.ShouldEmit)
	assert.Equal(t, event.SideNone, outcome.Side)
	assert.Equal(t, 0, p.Book().OrderCount())
}

func TestFillTradeDirect(t *testing.T) {
	p := New(book.New(), testLogger(t))
	require.NoError(t, p.Book().AddOrder(1, px(100.75), 75, book.Ask))

	p.FillTradeDirect(event.Event{Side: event.SideBid, Price: px(100.75), Size: 30})

	top := p.Book().Top10()
	assert.Equal(t, uint64(45), top.Asks[0].Size)
}
