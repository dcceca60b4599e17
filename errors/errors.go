// Package errors provides error handling for pxdgen.
//
// This package re-exports github.com/cockroachdb/errors so that every package
// in the module wraps, annotates and inspects errors the same way:
//
//	if err := ir.LoadFile(path); err != nil {
//	    return errors.Wrapf(err, "failed to load IR from %s", path)
//	}
//
//	return errors.WithHint(err, "run `pxdgen generate` to refresh the file")
//
// The generator core never returns errors for structurally valid input; the
// sentinels below belong to the I/O edges (IR decoding, manifests, check mode).
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint      = crdb.WithHint
	WithHintf     = crdb.WithHintf
	WithDetail    = crdb.WithDetail
	WithDetailf   = crdb.WithDetailf
	GetAllHints   = crdb.GetAllHints
	GetAllDetails = crdb.GetAllDetails
	FlattenHints  = crdb.FlattenHints
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Sentinel errors. Wrap them with errors.Wrap to add context while keeping
// errors.Is working.
var (
	// ErrInvalidIR indicates a header IR document is structurally malformed
	ErrInvalidIR = New("invalid header IR")

	// ErrUnknownKind indicates a declaration or type kind the decoder does not know
	ErrUnknownKind = New("unknown IR kind")

	// ErrUnsupportedVersion indicates the IR was written by an incompatible producer
	ErrUnsupportedVersion = New("unsupported IR version")

	// ErrOutOfDate indicates generated files on disk differ from fresh output
	ErrOutOfDate = New("generated files are out of date")

	// ErrNoTargets indicates nothing was given to generate
	ErrNoTargets = New("no targets")

	// ErrCacheMiss indicates the output cache has no entry for a key
	ErrCacheMiss = New("cache miss")
)

// IsInvalidIRError checks if an error is or wraps ErrInvalidIR or ErrUnknownKind
func IsInvalidIRError(err error) bool {
	return err != nil && IsAny(err, ErrInvalidIR, ErrUnknownKind)
}

// IsOutOfDateError checks if an error is or wraps ErrOutOfDate
func IsOutOfDateError(err error) bool {
	return err != nil && Is(err, ErrOutOfDate)
}

// IsCacheMiss checks if an error is or wraps ErrCacheMiss
func IsCacheMiss(err error) bool {
	return err != nil && Is(err, ErrCacheMiss)
}

// NewInvalidIRError creates an invalid-IR error with a formatted message
func NewInvalidIRError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidIR, Newf(format, args...).Error())
}
