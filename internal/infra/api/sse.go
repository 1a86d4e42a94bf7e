package api

import (
	"fmt"
	"net/http"
	"time"
)

// heartbeatInterval keeps intermediaries from reaping idle SSE connections.
const heartbeatInterval = 25 * time.Second

// events streams relay notifications to the authenticated client over SSE.
// Delivery is at most once; a client that reconnects re-fetches state rather
// than asking for a replay.
func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	id, _ := identityFrom(r.Context())

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch, detach := s.hub.Attach(id.UserID)
	defer detach()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case ev := <-ch:
			fmt.Fprintf(w, "event: %s\n", ev.Subject)
			if len(ev.Data) > 0 {
				fmt.Fprintf(w, "data: %s\n", ev.Data)
			} else {
				fmt.Fprint(w, "data: {}\n")
			}
			fmt.Fprint(w, "\n")
			flusher.Flush()
		}
	}
}
