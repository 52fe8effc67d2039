package domain

import "time"

type PurchaseState string

const (
	PurchaseStateRequested        PurchaseState = "requested"
	PurchaseStateReserved         PurchaseState = "reserved"
	PurchaseStateMinted           PurchaseState = "minted"
	PurchaseStateReservedUnminted PurchaseState = "reserved_unminted"
	PurchaseStateRejected         PurchaseState = "rejected"
)

// IsTerminal reports whether a purchase attempt has run to completion.
// reserved_unminted is terminal for the request but leaves a PendingMint
// behind for the reconciler.
func (s PurchaseState) IsTerminal() bool {
	return s == PurchaseStateMinted ||
		s == PurchaseStateReservedUnminted ||
		s == PurchaseStateRejected
}

// PendingMint records a slot that was claimed but never produced a token.
// The reconciler retries these; the (EventID, Ordinal) pair makes the retry
// idempotent because the token identity is derived from it.
type PendingMint struct {
	EventID  string    `json:"event_id"`
	Buyer    string    `json:"buyer"`
	Ordinal  uint32    `json:"ordinal"`
	Reason   string    `json:"reason"`
	FailedAt time.Time `json:"failed_at"`
	Attempts int       `json:"attempts"`
}
