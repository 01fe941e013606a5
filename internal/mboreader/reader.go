// Package mboreader turns an MBO input CSV into an ordered slice of
// event.Event values. It is the one place malformed rows are dropped
// before they ever reach the core (internal/book, internal/engine,
// internal/controller) — nothing downstream needs to defend itself
// against a bad row.
package mboreader

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"mbobook/internal/event"
	"mbobook/internal/price"
	bookerrors "mbobook/pkg/errors"
	"mbobook/pkg/logger"
)

// expected input columns, looked up by name so a reordering upstream
// doesn't break parsing. Not every column must be present: an input
// missing ts_in_delta or flags simply leaves those fields zero.
const (
	colTsEvent   = "ts_event"
	colAction    = "action"
	colSide      = "side"
	colPrice     = "price"
	colSize      = "size"
	colOrderID   = "order_id"
	colFlags     = "flags"
	colTsInDelta = "ts_in_delta"
	colSequence  = "sequence"
)

// Reader parses one MBO CSV file into event.Event records, logging and
// dropping any row it cannot make sense of.
type Reader struct {
	log *logger.Logger
}

// NewReader creates a Reader that logs through log.
func NewReader(log *logger.Logger) *Reader {
	return &Reader{log: log}
}

// ReadAll reads every row from r, returning the events that parsed
// successfully in source order. A failure to open or read the stream
// itself (as opposed to a single malformed row) is returned as a fatal
// error carrying bookerrors.CodeInputRead.
func (rd *Reader) ReadAll(r io.Reader) ([]event.Event, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, bookerrors.NewTracerWithCode(bookerrors.CodeInputRead, "reading header row").Wrap(err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	events := make([]event.Event, 0, 1024)
	rowNum := 1 // header was row 1; data rows are numbered from 2

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, bookerrors.NewTracerWithCode(bookerrors.CodeInputRead, "reading input row").Wrap(err)
		}
		rowNum++

		e, ok := rd.parseRecord(columns, record, rowNum)
		if !ok {
			continue
		}
		events = append(events, e)
	}

	rd.log.Info("parsed mbo input",
		logger.NewField("rows_read", rowNum-1),
		logger.NewField("events_parsed", len(events)),
	)

	return events, nil
}

func (rd *Reader) parseRecord(columns map[string]int, record []string, rowNum int) (event.Event, bool) {
	field := func(name string) (string, bool) {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return "", false
		}
		return strings.TrimSpace(record[idx]), true
	}

	drop := func(reason string) (event.Event, bool) {
		rd.log.Warn("dropping malformed mbo row",
			logger.NewField("row", rowNum),
			logger.NewField("reason", reason),
		)
		return event.Event{}, false
	}

	tsRaw, ok := field(colTsEvent)
	if !ok {
		return drop("missing ts_event")
	}
	ts, err := parseTimestamp(tsRaw)
	if err != nil {
		return drop("unparseable ts_event")
	}

	actionRaw, ok := field(colAction)
	if !ok || len(actionRaw) != 1 {
		return drop("missing or invalid action")
	}

	sideRaw, _ := field(colSide)
	var side event.Side
	switch sideRaw {
	case "B":
		side = event.SideBid
	case "A":
		side = event.SideAsk
	case "N", "":
		side = event.SideNone
	default:
		return drop("invalid side")
	}

	priceRaw, _ := field(colPrice)
	var px price.Ticks
	if priceRaw != "" {
		px, err = price.ParseFloat(priceRaw)
		if err != nil {
			return drop("unparseable price")
		}
	}

	size, err := parseUint(field, colSize)
	if err != nil {
		return drop("unparseable size")
	}
	orderID, err := parseUint(field, colOrderID)
	if err != nil {
		return drop("unparseable order_id")
	}
	flags, err := parseUint(field, colFlags)
	if err != nil {
		return drop("unparseable flags")
	}
	tsInDelta, err := parseInt(field, colTsInDelta)
	if err != nil {
		return drop("unparseable ts_in_delta")
	}
	sequence, err := parseUint(field, colSequence)
	if err != nil {
		return drop("unparseable sequence")
	}

	return event.Event{
		TsEvent:   ts,
		Action:    event.Action(actionRaw[0]),
		Side:      side,
		Price:     px,
		Size:      size,
		OrderID:   orderID,
		Flags:     uint8(flags),
		TsInDelta: int32(tsInDelta),
		Sequence:  sequence,
	}, true
}

func parseUint(field func(string) (string, bool), name string) (uint64, error) {
	raw, ok := field(name)
	if !ok || raw == "" {
		return 0, nil
	}
	return strconv.ParseUint(raw, 10, 64)
}

func parseInt(field func(string) (string, bool), name string) (int64, error) {
	raw, ok := field(name)
	if !ok || raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

// parseTimestamp accepts either raw nanoseconds-since-epoch or the ISO
// 8601 form this system's writer emits (YYYY-MM-DDTHH:MM:SS.nnnnnnnnnZ),
// so its own output can round-trip as input to another run.
func parseTimestamp(raw string) (int64, error) {
	if ns, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return ns, nil
	}
	t, err := time.Parse("2006-01-02T15:04:05.999999999Z", raw)
	if err != nil {
		return 0, fmt.Errorf("mboreader: unparseable timestamp %q: %w", raw, err)
	}
	return t.UnixNano(), nil
}
