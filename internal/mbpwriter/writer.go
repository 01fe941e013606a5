// Package mbpwriter serializes snapshot.Snapshot rows to the MBP-10 CSV
// format: a fixed 76-column header, one row per emitted snapshot, ISO
// 8601 UTC timestamps, and the zero-price-renders-blank convention this
// system's output has always used.
package mbpwriter

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"mbobook/internal/snapshot"
	bookerrors "mbobook/pkg/errors"
	"mbobook/pkg/logger"
)

// Header is the exact, fixed column order of an MBP-10 output row.
var Header = buildHeader()

func buildHeader() []string {
	cols := []string{
		"", "ts_recv", "ts_event", "rtype", "publisher_id", "instrument_id",
		"action", "side", "depth", "price", "size", "flags", "ts_in_delta", "sequence",
	}
	for i := 0; i < 10; i++ {
		suffix := pad2(i)
		cols = append(cols,
			"bid_px_"+suffix, "bid_sz_"+suffix, "bid_ct_"+suffix,
			"ask_px_"+suffix, "ask_sz_"+suffix, "ask_ct_"+suffix,
		)
	}
	return append(cols, "symbol", "order_id")
}

func pad2(i int) string {
	if i < 10 {
		return "0" + strconv.Itoa(i)
	}
	return strconv.Itoa(i)
}

// Identity carries the venue constants stamped onto every row: rtype is
// fixed at 10 (MBP-10) by the output schema, the rest come from
// pkg/config so a different data source can override them.
type Identity struct {
	PublisherID  uint16
	InstrumentID uint32
	Symbol       string
}

// Writer writes a stream of snapshots as MBP-10 CSV rows to an
// underlying io.Writer, assigning each row its zero-based index in
// emission order.
type Writer struct {
	csv      *csv.Writer
	identity Identity
	log      *logger.Logger
	rowIndex uint64
}

// NewWriter creates a Writer over w and immediately writes the header
// row.
func NewWriter(w io.Writer, identity Identity, log *logger.Logger) (*Writer, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return nil, bookerrors.NewTracerWithCode(bookerrors.CodeOutputWrite, "writing header row").Wrap(err)
	}
	return &Writer{csv: cw, identity: identity, log: log}, nil
}

// Write appends one snapshot as the next output row.
func (w *Writer) Write(s snapshot.Snapshot) error {
	row := make([]string, 0, len(Header))

	tsStr := formatTimestamp(s.TsEvent)
	row = append(row,
		strconv.FormatUint(w.rowIndex, 10),
		formatTimestamp(s.TsRecv),
		tsStr,
		"10",
		strconv.FormatUint(uint64(w.identity.PublisherID), 10),
		strconv.FormatUint(uint64(w.identity.InstrumentID), 10),
		string(s.Action),
		string(s.Side),
		"0",
		s.EventPrice.String(),
		strconv.FormatUint(s.EventSize, 10),
		strconv.FormatUint(uint64(s.EventFlags), 10),
		strconv.FormatInt(int64(s.EventTsInDelta), 10),
		strconv.FormatUint(s.Sequence, 10),
	)

	for i := 0; i < 10; i++ {
		bid, ask := s.Bids[i], s.Asks[i]
		row = append(row,
			bid.Price.String(), strconv.FormatUint(bid.Size, 10), strconv.FormatUint(uint64(bid.Count), 10),
			ask.Price.String(), strconv.FormatUint(ask.Size, 10), strconv.FormatUint(uint64(ask.Count), 10),
		)
	}

	// The trailing order_id column is a fixed venue quirk: it is always
	// emitted as 0, independent of the snapshot's carried-through
	// EventOrderID.
	row = append(row, w.identity.Symbol, "0")

	if err := w.csv.Write(row); err != nil {
		w.log.Error(bookerrors.NewTracerWithCode(bookerrors.CodeOutputWrite, "writing snapshot row").Wrap(err),
			logger.NewField("row_index", w.rowIndex),
		)
		return bookerrors.NewTracerWithCode(bookerrors.CodeOutputWrite, "writing snapshot row").Wrap(err)
	}

	w.rowIndex++
	return nil
}

// Flush pushes any buffered rows to the underlying writer. Callers must
// call Flush before relying on the output file being complete.
func (w *Writer) Flush() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return bookerrors.NewTracerWithCode(bookerrors.CodeOutputWrite, "flushing output").Wrap(err)
	}
	return nil
}

// RowsWritten reports how many snapshot rows have been written so far.
func (w *Writer) RowsWritten() uint64 {
	return w.rowIndex
}

// formatTimestamp renders nanoseconds-since-epoch as the output
// schema's ISO 8601 form: YYYY-MM-DDTHH:MM:SS.nnnnnnnnnZ.
func formatTimestamp(ns int64) string {
	t := time.Unix(0, ns).UTC()
	return t.Format("2006-01-02T15:04:05.") + padNanos(t.Nanosecond()) + "Z"
}

func padNanos(n int) string {
	s := strconv.Itoa(n)
	for len(s) < 9 {
		s = "0" + s
	}
	return s
}
