package sse

import (
	"fmt"
	"net/http"
	"time"

	"github.com/kbukum/stagekit/logger"
)

// KeepAliveInterval is the period of the comment lines that keep idle
// streams open through proxies.
const KeepAliveInterval = 30 * time.Second

// ServeSSE streams the hub's events to one client until the request ends or
// the hub stops.
func ServeSSE(hub *Hub, w http.ResponseWriter, r *http.Request, clientID string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// Streams outlive the server's WriteTimeout.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		hub.log.Debug("Could not disable write deadline", logger.Fields("client_id", clientID, logger.FieldError, err.Error()))
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	client := NewClient(clientID)
	if !hub.Register(client) {
		http.Error(w, "stream closed", http.StatusServiceUnavailable)
		return
	}
	defer hub.Unregister(client)

	writeEvent(w, Event{Name: EventConnected, Data: fmt.Appendf(nil, `{"client_id":%q}`, clientID)})
	flusher.Flush()

	keepAlive := time.NewTicker(KeepAliveInterval)
	defer keepAlive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-client.Events():
			if !ok {
				return
			}
			writeEvent(w, e)
			flusher.Flush()
		case <-keepAlive.C:
			_, _ = fmt.Fprintf(w, ": keepalive %d\n\n", time.Now().Unix())
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, e Event) {
	_, _ = fmt.Fprintf(w, "event: %s\n", e.Name)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", e.Data)
}
