package handler

import (
	"net/http"

	"github.com/notifyhub/ms-notification-kafka/internal/service"
)

// StatusHandler serves the static gateway status snapshot.
type StatusHandler struct {
	svc *service.DispatchService
}

func NewStatusHandler(svc *service.DispatchService) *StatusHandler {
	return &StatusHandler{svc: svc}
}

// Status handles GET /api/ms-notification-kafka/status
//
// @Summary  Gateway status snapshot
// @Tags     system
// @Produce  json
// @Success  200  {object}  domain.StatusSnapshot
// @Router   /api/ms-notification-kafka/status [get]
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.Status())
}
