package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mbobook/internal/book"
	"mbobook/internal/event"
	"mbobook/internal/price"
)

func px(f float64) price.Ticks {
	return price.FromFloat(f)
}

func TestBuildCarriesEventPassthroughs(t *testing.T) {
	b := book.New()
	require.NoError(t, b.AddOrder(1001, px(100.50), 1000, book.Bid))

	e := event.Event{
		TsEvent:   123456789,
		Price:     px(100.50),
		Size:      1000,
		OrderID:   1001,
		Flags:     3,
		TsInDelta: -42,
		Sequence:  7,
	}

	proj := NewProjector()
	snap := proj.Build(e, b, event.ActionAdd, event.SideBid)

	assert.Equal(t, e.TsEvent, snap.TsEvent)
	assert.Equal(t, e.TsEvent, snap.TsRecv)
	assert.Equal(t, event.ActionAdd, snap.Action)
	assert.Equal(t, event.SideBid, snap.Side)
	assert.Equal(t, e.Price, snap.EventPrice)
	assert.Equal(t, e.Size, snap.EventSize)
	assert.Equal(t, e.OrderID, snap.EventOrderID)
	assert.Equal(t, e.Flags, snap.EventFlags)
	assert.Equal(t, e.TsInDelta, snap.EventTsInDelta)
	assert.Equal(t, e.Sequence, snap.Sequence)

	assert.Equal(t, px(100.50), snap.Bids[0].Price)
	assert.Equal(t, uint64(1000), snap.Bids[0].Size)
	assert.Equal(t, uint32(1), snap.Bids[0].Count)
}

func TestBuildIsPure(t *testing.T) {
	b := book.New()
	require.NoError(t, b.AddOrder(1, px(50), 5, book.Ask))

	proj := NewProjector()
	first := proj.Build(event.Event{}, b, event.ActionAdd, event.SideAsk)
	second := proj.Build(event.Event{}, b, event.ActionAdd, event.SideAsk)

	assert.Equal(t, first.Bids, second.Bids)
	assert.Equal(t, first.Asks, second.Asks)
}

func TestBuildZeroPadsEmptyLevels(t *testing.T) {
	b := book.New()
	proj := NewProjector()

	snap := proj.Build(event.Event{}, b, event.ActionReset, event.SideNone)

	for i := 0; i < 10; i++ {
		assert.Equal(t, price.Ticks(0), snap.Bids[i].Price)
		assert.Equal(t, price.Ticks(0), snap.Asks[i].Price)
	}
}
