package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apimw "github.com/notifyhub/ms-notification-kafka/internal/api/middleware"
	"github.com/notifyhub/ms-notification-kafka/internal/domain"
	"github.com/notifyhub/ms-notification-kafka/internal/service"
)

const (
	msgSimpleQueued  = "Message queued successfully"
	msgCreatedQueued = "Notification created event queued successfully"
	msgUpdatedQueued = "Notification updated event queued successfully"
	msgDeletedQueued = "Notification deleted event queued successfully"

	errSimple  = "Failed to queue message"
	errCreated = "Failed to queue notification created event"
	errUpdated = "Failed to queue notification updated event"
	errDeleted = "Failed to queue notification deleted event"
)

// DispatchHandler handles the publish endpoints.
type DispatchHandler struct {
	svc    *service.DispatchService
	logger *zap.Logger
}

func NewDispatchHandler(svc *service.DispatchService, logger *zap.Logger) *DispatchHandler {
	return &DispatchHandler{svc: svc, logger: logger}
}

// PublishSimple handles POST /api/ms-notification-kafka/publish/simple
//
// @Summary  Publish a plain text message to notification.test
// @Tags     publish
// @Produce  json
// @Param    message  query     string  true  "Message text"
// @Success  200      {object}  map[string]string
// @Failure  500      {object}  map[string]string
// @Router   /api/ms-notification-kafka/publish/simple [post]
func (h *DispatchHandler) PublishSimple(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("message") {
		respondError(w, http.StatusBadRequest, domain.ErrMissingMessage.Error())
		return
	}
	message := q.Get("message")

	receipt, err := h.svc.PublishSimple(r.Context(), message)
	if err != nil {
		h.logFailure(r, "error queueing simple message", domain.DestinationTest, err)
		publishError(w, errSimple, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message":    msgSimpleQueued,
		"messageKey": receipt.MessageKey,
		"payload":    receipt.Payload,
	})
}

// PublishCreated handles POST /api/ms-notification-kafka/publish/notification-created
//
// @Summary  Publish a notification created event
// @Tags     publish
// @Accept   json
// @Produce  json
// @Param    body  body      object  true  "Notification event"
// @Success  200   {object}  map[string]string
// @Failure  500   {object}  map[string]string
// @Router   /api/ms-notification-kafka/publish/notification-created [post]
func (h *DispatchHandler) PublishCreated(w http.ResponseWriter, r *http.Request) {
	ev, ok := decodeEvent(w, r)
	if !ok {
		return
	}

	receipt, err := h.svc.PublishCreated(r.Context(), ev)
	if err != nil {
		h.logFailure(r, "error queueing notification created event", domain.DestinationCreated, err)
		publishError(w, errCreated, err)
		return
	}
	respondJSON(w, http.StatusOK, eventResponse(msgCreatedQueued, receipt))
}

// PublishUpdated handles POST /api/ms-notification-kafka/publish/notification-updated
//
// @Summary  Publish a notification updated event
// @Tags     publish
// @Accept   json
// @Produce  json
// @Param    body  body      object  true  "Notification event"
// @Success  200   {object}  map[string]string
// @Failure  500   {object}  map[string]string
// @Router   /api/ms-notification-kafka/publish/notification-updated [post]
func (h *DispatchHandler) PublishUpdated(w http.ResponseWriter, r *http.Request) {
	ev, ok := decodeEvent(w, r)
	if !ok {
		return
	}

	receipt, err := h.svc.PublishUpdated(r.Context(), ev)
	if err != nil {
		h.logFailure(r, "error queueing notification updated event", domain.DestinationUpdated, err)
		publishError(w, errUpdated, err)
		return
	}
	respondJSON(w, http.StatusOK, eventResponse(msgUpdatedQueued, receipt))
}

// PublishDeleted handles DELETE /api/ms-notification-kafka/publish/notification-deleted/{id}
//
// @Summary  Publish a notification deleted event
// @Tags     publish
// @Produce  json
// @Param    id   path      string  true  "Notification ID (integer or UUID)"
// @Success  200  {object}  map[string]string
// @Failure  400  {object}  map[string]string
// @Failure  500  {object}  map[string]string
// @Router   /api/ms-notification-kafka/publish/notification-deleted/{id} [delete]
func (h *DispatchHandler) PublishDeleted(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseNotificationID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	receipt, err := h.svc.PublishDeleted(r.Context(), id)
	if err != nil {
		h.logFailure(r, "error queueing notification deleted event", domain.DestinationDeleted, err)
		publishError(w, errDeleted, err)
		return
	}
	respondJSON(w, http.StatusOK, eventResponse(msgDeletedQueued, receipt))
}

func decodeEvent(w http.ResponseWriter, r *http.Request) (domain.NotificationEvent, bool) {
	var ev domain.NotificationEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return ev, false
	}
	return ev, true
}

func eventResponse(msg string, receipt *domain.Receipt) map[string]string {
	return map[string]string{
		"message":        msg,
		"messageKey":     receipt.MessageKey,
		"notificationId": receipt.NotificationID.String(),
	}
}

func (h *DispatchHandler) logFailure(r *http.Request, msg string, dest domain.Destination, err error) {
	h.logger.Error(msg,
		zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
		zap.String("destination", string(dest)),
		zap.String("reason", service.FailureReason(err)),
		zap.Error(err),
	)
}
