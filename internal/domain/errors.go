package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEventNotFound  = errors.New("event not found")
	ErrTicketNotFound = errors.New("ticket not found")

	ErrInvalidName     = errors.New("event name is empty or too long")
	ErrInvalidVenue    = errors.New("event venue is too long")
	ErrInvalidCapacity = errors.New("total tickets must be positive")
	ErrInvalidPrice    = errors.New("price must not be negative")
	ErrInvalidRoyalty  = errors.New("royalty exceeds 10000 basis points")

	// Sold out is a terminal business condition, never retried.
	ErrSoldOut = errors.New("all tickets for this event are sold out")

	ErrTicketLimitReached = errors.New("ticket limit per buyer reached for this event")

	ErrNotOwner          = errors.New("caller does not own this ticket")
	ErrNotListed         = errors.New("ticket is not listed for resale")
	ErrPriceMismatch     = errors.New("offered price does not match ask price")
	ErrHoldingPeriod     = errors.New("ticket cannot be resold before the holding period ends")
	ErrInsufficientFunds = errors.New("insufficient escrow balance")
)

// MintError wraps a ledger rejection of token issuance. It is distinct from
// ErrSoldOut because it happens after a slot has already been claimed.
type MintError struct {
	Reason string
	Err    error
}

func (e *MintError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mint failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("mint failed: %s", e.Reason)
}

func (e *MintError) Unwrap() error {
	return e.Err
}

// PartialFailureError is surfaced when a slot was consumed but no ticket was
// minted. The slot is not rolled back; the reconciler owns resolution.
type PartialFailureError struct {
	EventID string
	Ordinal uint32
	Reason  string
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("slot %d claimed on event %s but no ticket was minted: %s",
		e.Ordinal, e.EventID, e.Reason)
}
