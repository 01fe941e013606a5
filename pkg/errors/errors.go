// Package errors provides the fatal-error wrapper used at the CLI's I/O
// boundary: the core book/engine/controller packages never return this
// type, they only log and skip (see pkg/logger and internal/controller).
package errors

// Code identifies the class of a fatal error raised at the process
// boundary (reading input, writing output).
type Code string

const (
	// CodeInputRead marks a failure opening or reading the MBO input file.
	// A single malformed row is not this: the reader logs and drops it.
	CodeInputRead Code = "input_read_error"
	// CodeOutputWrite marks a failure opening, writing, or flushing the MBP-10 output file.
	CodeOutputWrite Code = "output_write_error"
)
