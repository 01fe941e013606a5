// Command mbobook reconstructs a limit order book from an MBO input CSV
// and emits MBP-10 depth snapshots. Usage: mbobook <mbo_input_file.csv>.
package main

import (
	"fmt"
	"os"
	"time"

	"mbobook/internal/book"
	"mbobook/internal/controller"
	"mbobook/internal/engine"
	"mbobook/internal/mboreader"
	"mbobook/internal/mbpwriter"
	"mbobook/internal/snapshot"
	"mbobook/pkg/config"
	bookerrors "mbobook/pkg/errors"
	"mbobook/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <mbo_input_file.csv>\n", os.Args[0])
		return 1
	}
	inputPath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading configuration: %v\n", err)
		return 1
	}

	log, err := logger.NewLogger(
		logger.WithLoggingLevel(logger.Level(cfg.App.LogLevel)),
		logger.WithOutputPaths([]string{"stdout"}),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initializing logger: %v\n", err)
		return 1
	}
	defer log.Sync() //nolint:errcheck

	log.Info("starting order book reconstruction",
		logger.NewField("input", inputPath),
		logger.NewField("output", cfg.Output.Path),
	)

	inputFile, err := os.Open(inputPath)
	if err != nil {
		log.Error(bookerrors.NewTracerWithCode(bookerrors.CodeInputRead, "opening input file").Wrap(err))
		return 1
	}
	defer inputFile.Close()

	parseStart := time.Now()
	reader := mboreader.NewReader(log)
	events, err := reader.ReadAll(inputFile)
	if err != nil {
		log.Error(err)
		return 1
	}
	if len(events) == 0 {
		log.Error(bookerrors.NewTracerWithCode(bookerrors.CodeInputRead, "no events parsed from input"))
		return 1
	}
	log.Info("parsed mbo events",
		logger.NewField("count", len(events)),
		logger.NewField("elapsed_ms", time.Since(parseStart).Milliseconds()),
	)

	outputFile, err := os.Create(cfg.Output.Path)
	if err != nil {
		log.Error(bookerrors.NewTracerWithCode(bookerrors.CodeOutputWrite, "creating output file").Wrap(err))
		return 1
	}
	defer outputFile.Close()

	identity := mbpwriter.Identity{
		PublisherID:  cfg.Venue.PublisherID,
		InstrumentID: cfg.Venue.InstrumentID,
		Symbol:       cfg.Venue.Symbol,
	}
	writer, err := mbpwriter.NewWriter(outputFile, identity, log)
	if err != nil {
		log.Error(err)
		return 1
	}

	b := book.New()
	processor := engine.New(b, log)
	projector := snapshot.NewProjector()
	ctl := controller.New(processor, projector, log)

	processStart := time.Now()
	stats, err := ctl.Run(events, writer)
	if err != nil {
		log.Error(err)
		return 1
	}
	if err := writer.Flush(); err != nil {
		log.Error(err)
		return 1
	}
	log.Info("processed mbo events",
		logger.NewField("events_read", stats.EventsRead),
		logger.NewField("snapshots_emitted", stats.SnapshotsEmitted),
		logger.NewField("triples_collapsed", stats.TriplesCollapsed),
		logger.NewField("orphan_cancels", stats.OrphanCancels),
		logger.NewField("suppressed_adds", stats.SuppressedAdds),
		logger.NewField("elapsed_ms", time.Since(processStart).Milliseconds()),
	)

	log.Info("order book summary",
		logger.NewField("bid_levels", b.BidLevelCount()),
		logger.NewField("ask_levels", b.AskLevelCount()),
		logger.NewField("active_orders", b.OrderCount()),
	)

	return 0
}
