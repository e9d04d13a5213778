package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/notifyhub/ms-notification-kafka/internal/stream"
)

// StreamHandler attaches server-push (SSE) listeners to the hub.
type StreamHandler struct {
	hub       *stream.Hub
	heartbeat time.Duration
	logger    *zap.Logger
}

func NewStreamHandler(hub *stream.Hub, heartbeat time.Duration, logger *zap.Logger) *StreamHandler {
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}
	return &StreamHandler{hub: hub, heartbeat: heartbeat, logger: logger}
}

// Stream handles GET /api/ms-notification-kafka/stream
//
// @Summary  Server-sent events for every successful dispatch
// @Tags     stream
// @Produce  text/event-stream
// @Success  200
// @Failure  503  {object}  map[string]string
// @Router   /api/ms-notification-kafka/stream [get]
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	l := h.hub.Subscribe()
	if l == nil {
		respondError(w, http.StatusServiceUnavailable, "server is shutting down")
		return
	}
	defer h.hub.Unsubscribe(l)

	// The server write timeout would otherwise cut long-lived streams.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case ev, ok := <-l.Events():
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				h.logger.Warn("encode stream event", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Destination, data)
			flusher.Flush()
		}
	}
}
