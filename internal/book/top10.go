package book

import (
	"github.com/google/btree"

	"mbobook/internal/price"
)

// LevelView is a read-only snapshot of one price level, used by Top10.
type LevelView struct {
	Price price.Ticks
	Size  uint64
	Count uint32
}

// Top10 captures the ten best bid and ask levels, zero-padded below the
// number of live levels. It is a plain value: two Top10 taken from the
// same book compare equal with ==.
type Top10 struct {
	Bids [10]LevelView
	Asks [10]LevelView
}

// Top10 reads the best ten levels of each side in price-priority order:
// bids highest-first, asks lowest-first.
func (b *Book) Top10() Top10 {
	var out Top10

	i := 0
	b.bids.Descend(func(item btree.Item) bool {
		if i >= 10 {
			return false
		}
		l := item.(*Level)
		out.Bids[i] = LevelView{Price: l.Price, Size: l.TotalSize, Count: l.OrderCount}
		i++
		return true
	})

	i = 0
	b.asks.Ascend(func(item btree.Item) bool {
		if i >= 10 {
			return false
		}
		l := item.(*Level)
		out.Asks[i] = LevelView{Price: l.Price, Size: l.TotalSize, Count: l.OrderCount}
		i++
		return true
	})

	return out
}
