package assistant

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/vigil-labs/vigil/pkg/handlers"
	"github.com/vigil-labs/vigil/pkg/routes"
)

// ErrInvalidTurn is returned when the request body cannot be decoded.
var ErrInvalidTurn = errors.New("invalid turn request")

// Handler exposes the streaming endpoint over server-sent events.
type Handler struct {
	proxy  *Proxy
	logger *slog.Logger
}

// NewHandler creates a Handler for the given proxy.
func NewHandler(proxy *Proxy, logger *slog.Logger) *Handler {
	return &Handler{
		proxy:  proxy,
		logger: logger.With("handler", "assistant"),
	}
}

// Routes returns the route group definition for assistant endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/assistant",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/stream", Handler: h.Stream},
		},
	}
}

// Stream opens one streaming session. The request context is the session's
// cancellation signal: when the client disconnects, upstream consumption
// stops and nothing more is written.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	var turn TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&turn); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidTurn)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError,
			errors.New("streaming not supported by transport"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	emit := func(ev Event) error {
		payload, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	h.proxy.Run(r.Context(), turn, emit)
}
