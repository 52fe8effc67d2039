package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/vogiaan1904/ticketbottle-ledger/internal/auth"
	"github.com/vogiaan1904/ticketbottle-ledger/internal/service"
	"github.com/vogiaan1904/ticketbottle-ledger/pkg/logger"
)

type Handler struct {
	events    service.EventService
	issuance  service.IssuanceService
	resale    service.ResaleService
	wallets   service.WalletService
	signer    *auth.Signer
	logger    logger.Logger
	validator *validator.Validate
}

func NewHandler(
	events service.EventService,
	issuance service.IssuanceService,
	resale service.ResaleService,
	wallets service.WalletService,
	signer *auth.Signer,
	logger logger.Logger,
) *Handler {
	return &Handler{
		events:    events,
		issuance:  issuance,
		resale:    resale,
		wallets:   wallets,
		signer:    signer,
		logger:    logger,
		validator: validator.New(),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(logger.HTTPLogger(h.logger))

	r.Get("/healthz", h.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/events/{eventID}", h.GetEvent)
		r.Get("/tickets/{ticketID}", h.GetTicket)

		r.Group(func(r chi.Router) {
			r.Use(RequireActor(h.signer))

			r.Post("/events", h.CreateEvent)
			r.Post("/events/{eventID}/purchase", h.PurchaseTicket)
			r.Post("/tickets/{ticketID}/listing", h.ListForResale)
			r.Delete("/tickets/{ticketID}/listing", h.CancelListing)
			r.Post("/tickets/{ticketID}/buy", h.BuyResale)
			r.Post("/wallet/deposit", h.Deposit)
			r.Get("/wallet", h.WalletBalance)
		})
	})

	return r
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "ledger-service",
	})
}

type createEventRequest struct {
	Name         string    `json:"name" validate:"required"`
	Venue        string    `json:"venue"`
	Description  string    `json:"description"`
	StartsAt     time.Time `json:"starts_at"`
	TotalTickets uint32    `json:"total_tickets" validate:"required"`
	TicketPrice  int64     `json:"ticket_price" validate:"gte=0"`
	RoyaltyBps   int       `json:"royalty_bps" validate:"gte=0,lte=10000"`
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondBadRequest(w, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.respondBadRequest(w, err.Error())
		return
	}

	e, err := h.events.CreateEvent(r.Context(), service.CreateEventInput{
		Name:         req.Name,
		Organizer:    Actor(r.Context()),
		Venue:        req.Venue,
		Description:  req.Description,
		StartsAt:     req.StartsAt,
		TotalTickets: req.TotalTickets,
		TicketPrice:  req.TicketPrice,
		RoyaltyBps:   req.RoyaltyBps,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, e)
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eID := chi.URLParam(r, "eventID")

	e, err := h.events.GetEvent(r.Context(), eID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, e)
}

func (h *Handler) PurchaseTicket(w http.ResponseWriter, r *http.Request) {
	eID := chi.URLParam(r, "eventID")

	t, err := h.issuance.PurchaseTicket(r.Context(), eID, Actor(r.Context()))
	if err != nil {
		h.respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, t)
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	tID := chi.URLParam(r, "ticketID")

	t, err := h.resale.GetTicket(r.Context(), tID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, t)
}

type listForResaleRequest struct {
	AskPrice int64 `json:"ask_price" validate:"gte=0"`
}

func (h *Handler) ListForResale(w http.ResponseWriter, r *http.Request) {
	tID := chi.URLParam(r, "ticketID")

	var req listForResaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondBadRequest(w, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.respondBadRequest(w, err.Error())
		return
	}

	if err := h.resale.ListForResale(r.Context(), service.ListForResaleInput{
		TicketID: tID,
		Seller:   Actor(r.Context()),
		AskPrice: req.AskPrice,
	}); err != nil {
		h.respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"ticket_id": tID,
		"ask_price": req.AskPrice,
	})
}

func (h *Handler) CancelListing(w http.ResponseWriter, r *http.Request) {
	tID := chi.URLParam(r, "ticketID")

	if err := h.resale.CancelListing(r.Context(), tID, Actor(r.Context())); err != nil {
		h.respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"ticket_id": tID,
	})
}

type buyResaleRequest struct {
	OfferedPrice int64 `json:"offered_price" validate:"gte=0"`
}

func (h *Handler) BuyResale(w http.ResponseWriter, r *http.Request) {
	tID := chi.URLParam(r, "ticketID")

	var req buyResaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondBadRequest(w, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.respondBadRequest(w, err.Error())
		return
	}

	receipt, err := h.resale.BuyResale(r.Context(), service.BuyResaleInput{
		TicketID:     tID,
		Buyer:        Actor(r.Context()),
		OfferedPrice: req.OfferedPrice,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, receipt)
}

type depositRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondBadRequest(w, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.respondBadRequest(w, err.Error())
		return
	}

	balance, err := h.wallets.Deposit(r.Context(), Actor(r.Context()), req.Amount)
	if err != nil {
		h.respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"account": Actor(r.Context()),
		"balance": balance,
	})
}

func (h *Handler) WalletBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.wallets.Balance(r.Context(), Actor(r.Context()))
	if err != nil {
		h.respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"account": Actor(r.Context()),
		"balance": balance,
	})
}

// Helper functions

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	status, resp := mapError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", "error", err)
	}
	respondJSON(w, status, resp)
}

func (h *Handler) respondBadRequest(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusBadRequest, errorResponse{
		Code:    "INVALID_ARGUMENT",
		Message: message,
	})
}

func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}
