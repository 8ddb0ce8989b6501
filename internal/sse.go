package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// keepAlivePaddingSize is the size of the comment record sent on idle
// ticks. The padding forces buffering proxies (nginx, Cloudflare) to flush
// the connection instead of sitting on a near-empty chunk.
const keepAlivePaddingSize = 2048

// StreamEvents writes the event sequence as a text/event-stream response.
// Each event becomes one `data: <json>` record; keep-alive markers become
// anonymous comment records carrying only padding. The response is flushed
// after every record so progress reaches the client as it happens.
func StreamEvents(w http.ResponseWriter, r *http.Request, events <-chan ProgressEvent) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	flush := func() {
		if flusher != nil {
			flusher.Flush()
		}
	}
	flush()

	padding := strings.Repeat(" ", keepAlivePaddingSize)

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.KeepAlive {
				fmt.Fprintf(w, ": %s\n\n", padding)
				flush()
				continue
			}
			data, err := json.Marshal(ev)
			if err != nil {
				// Should not happen for our own event types; fail the
				// stream with a terminal error record instead of hanging.
				data = []byte(fmt.Sprintf(`{"error":%q}`, err.Error()))
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flush()
		case <-r.Context().Done():
			return
		}
	}
}
