package token

import "errors"

// Operation errors. Classification matters to callers: validation and
// configuration failures mean the ledger was never contacted; a confirmation
// timeout is an unknown outcome, not a rejection; a revert is a rejection.
var (
	// ErrValidation is returned when caller input is malformed. Never
	// retried; the ledger is not contacted.
	ErrValidation = errors.New("validation failed")

	// ErrMintEntryPointNotFound is returned when every candidate mint
	// entry point rejected the submission. The last underlying cause is
	// attached.
	ErrMintEntryPointNotFound = errors.New("no usable mint entry point")

	// ErrConfirmationTimeout is returned when a write was accepted but no
	// receipt was observed within the polling attempt limit. The write may
	// still confirm later; this is an unknown outcome, not a rejection.
	ErrConfirmationTimeout = errors.New("confirmation not observed within attempt limit")

	// ErrTransactionReverted is returned when the ledger confirmed the
	// write with a rejection status.
	ErrTransactionReverted = errors.New("transaction reverted")

	// ErrTokenNotFound is returned for point queries on identifiers that
	// do not exist or have been burned.
	ErrTokenNotFound = errors.New("token not found")
)
