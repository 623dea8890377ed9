package v1

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const (
	watchEventName    = "repos"
	watchKeepAlive    = 30 * time.Second
	sseContentType    = "text/event-stream"
	sseKeepAliveFrame = ": keep-alive\n\n"
)

// watchRepos handles GET /v1/repos/watch as a Server-Sent Events stream.
// Every event carries the full repository list; the first one is sent immediately.
func (routes *Routes) watchRepos(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// streams outlive the server write timeout
	_ = rc.SetWriteDeadline(time.Time{})

	ctx := r.Context()
	updates := routes.service.Subscribe(ctx)

	w.Header().Set("Content-Type", sseContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		slog.WarnContext(ctx, "Streaming not supported by response writer", "error", err)
		return
	}

	keepAlive := time.NewTicker(watchKeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, sseKeepAliveFrame); err != nil {
				return
			}
		case repos, ok := <-updates:
			if !ok {
				return
			}
			data, err := json.Marshal(repos)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to encode repository snapshot", "error", err)
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", watchEventName, data); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
