// Package errors provides error handling for factstore.
//
// It re-exports github.com/cockroachdb/errors so every package wraps and
// inspects errors the same way:
//
//	if err := txn.Commit(); err != nil {
//	    return errors.Wrap(err, "commit batch")
//	}
//
//	if errors.Is(err, tripleterm.ErrUnclosedTripleTerm) {
//	    // report to the caller
//	}
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
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Mark tags err so that errors.Is(result, reference) holds without changing
// the message.
var Mark = crdb.Mark

// Common sentinel errors shared across packages.
var (
	// ErrNotFound indicates the requested key or resource does not exist
	ErrNotFound = New("not found")

	// ErrReadOnly indicates a write through a read-only transaction
	ErrReadOnly = New("transaction is read-only")

	// ErrClosed indicates use of a store or iterator after Close
	ErrClosed = New("closed")
)
