package api

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/progress"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Progress streams pipeline events for ?job_id= until the job finishes or the client leaves.
func (h *Handlers) Progress(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("job_id")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "job_id is required")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(r.Context(), "WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	events, unsubscribe := h.deps.Broker.Subscribe(jobID)
	defer unsubscribe()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// the client only ever closes; reading notices that
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.logger.Debug(ctx, "Progress subscriber attached for job %s", jobID)
	h.sendEvent(ctx, conn, progress.Event{JobID: jobID, Stage: "subscribe", Status: "ready"})

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if !h.sendEvent(ctx, conn, e) || e.Final() {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
		}
	}
}

func (h *Handlers) sendEvent(ctx context.Context, conn *websocket.Conn, e progress.Event) bool {
	if err := conn.WriteJSON(e); err != nil {
		h.logger.Debug(ctx, "WebSocket write failed: %v", err)
		return false
	}
	return true
}
