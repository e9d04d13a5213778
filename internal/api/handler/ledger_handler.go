package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/notifyhub/ms-notification-kafka/internal/domain"
	"github.com/notifyhub/ms-notification-kafka/internal/service"
)

// LedgerHandler exposes the dispatch ledger read endpoints.
type LedgerHandler struct {
	svc *service.DispatchService
}

func NewLedgerHandler(svc *service.DispatchService) *LedgerHandler {
	return &LedgerHandler{svc: svc}
}

// List handles GET /api/ms-notification-kafka/dispatches
//
// @Summary  List publish attempts with filtering and pagination
// @Tags     dispatches
// @Produce  json
// @Param    destination  query     string  false  "Filter by destination label"
// @Param    outcome      query     string  false  "Filter by outcome (queued, failed)"
// @Param    page         query     int     false  "Page number (default 1)"
// @Param    limit        query     int     false  "Items per page (default 20, max 100)"
// @Success  200          {object}  map[string]any
// @Router   /api/ms-notification-kafka/dispatches [get]
func (h *LedgerHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := parseDispatchFilter(r)
	dispatches, total, err := h.svc.ListDispatches(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list dispatches")
		return
	}
	if dispatches == nil {
		dispatches = []*domain.Dispatch{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"data":  dispatches,
		"total": total,
		"page":  filter.Page,
		"limit": filter.Limit,
	})
}

// GetByKey handles GET /api/ms-notification-kafka/dispatches/{key}
//
// @Summary  Get a publish attempt by message key
// @Tags     dispatches
// @Produce  json
// @Param    key  path      string  true  "Message key"
// @Success  200  {object}  domain.Dispatch
// @Failure  404  {object}  map[string]string
// @Router   /api/ms-notification-kafka/dispatches/{key} [get]
func (h *LedgerHandler) GetByKey(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.GetDispatch(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func parseDispatchFilter(r *http.Request) domain.DispatchFilter {
	q := r.URL.Query()
	filter := domain.DispatchFilter{Page: 1, Limit: 20}

	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		filter.Page = p
	}
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 && l <= 100 {
		filter.Limit = l
	}
	if d := domain.Destination(q.Get("destination")); d.IsValid() {
		filter.Destination = &d
	}
	if o := domain.Outcome(q.Get("outcome")); o.IsValid() {
		filter.Outcome = &o
	}
	return filter
}
