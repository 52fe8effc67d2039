package http

import (
	"errors"
	"net/http"

	"github.com/vogiaan1904/ticketbottle-ledger/internal/domain"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Ordinal uint32 `json:"ordinal,omitempty"`
}

// mapError translates domain errors to an HTTP status and payload.
// PartialFailure is the one case that is not a clean terminal state: the
// payload carries the consumed ordinal so an operator can chase it.
func mapError(err error) (int, errorResponse) {
	var partial *domain.PartialFailureError
	if errors.As(err, &partial) {
		return http.StatusInternalServerError, errorResponse{
			Code:    "PARTIAL_FAILURE",
			Message: partial.Error(),
			Ordinal: partial.Ordinal,
		}
	}

	switch {
	case errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrInvalidVenue),
		errors.Is(err, domain.ErrInvalidCapacity),
		errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrInvalidRoyalty):
		return http.StatusBadRequest, errorResponse{Code: "INVALID_ARGUMENT", Message: err.Error()}

	case errors.Is(err, domain.ErrEventNotFound),
		errors.Is(err, domain.ErrTicketNotFound):
		return http.StatusNotFound, errorResponse{Code: "NOT_FOUND", Message: err.Error()}

	case errors.Is(err, domain.ErrSoldOut):
		return http.StatusConflict, errorResponse{Code: "SOLD_OUT", Message: err.Error()}

	case errors.Is(err, domain.ErrTicketLimitReached):
		return http.StatusConflict, errorResponse{Code: "TICKET_LIMIT_REACHED", Message: err.Error()}

	case errors.Is(err, domain.ErrNotOwner):
		return http.StatusForbidden, errorResponse{Code: "NOT_OWNER", Message: err.Error()}

	case errors.Is(err, domain.ErrNotListed):
		return http.StatusConflict, errorResponse{Code: "NOT_LISTED", Message: err.Error()}

	case errors.Is(err, domain.ErrPriceMismatch):
		return http.StatusConflict, errorResponse{Code: "PRICE_MISMATCH", Message: err.Error()}

	case errors.Is(err, domain.ErrHoldingPeriod):
		return http.StatusConflict, errorResponse{Code: "HOLDING_PERIOD", Message: err.Error()}

	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusPaymentRequired, errorResponse{Code: "INSUFFICIENT_FUNDS", Message: err.Error()}

	default:
		return http.StatusInternalServerError, errorResponse{Code: "INTERNAL", Message: "internal server error"}
	}
}
