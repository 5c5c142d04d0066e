// Package assistant implements the streaming event proxy: one client call
// becomes an ordered sequence of typed push events ending in exactly one
// terminal event, with conversation continuity carried by an opaque token the
// client round-trips between turns.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vigil-labs/vigil/internal/documents"
	"github.com/vigil-labs/vigil/pkg/inference"
	"github.com/vigil-labs/vigil/pkg/search"
)

const assistantInstructions = `You are a regulatory compliance assistant for bank examination response teams. Answer questions about examination findings, remediation planning, and regulatory expectations. When search results are provided, ground your answer in them and cite the sources by title.`

// searchResultLimit caps how many results a policy-triggered search feeds
// into the turn.
const searchResultLimit = 5

// TurnRequest is the client's input for one streaming turn.
// PreviousResponseID, when present, is forwarded to the inference service
// unmodified; the proxy keeps no conversation memory of its own.
type TurnRequest struct {
	Message            string `json:"message"`
	PreviousResponseID string `json:"previous_response_id,omitempty"`
}

// Proxy relays inference-service output to clients as typed events.
type Proxy struct {
	client inference.Client
	search search.Tool
	docs   documents.System
	logger *slog.Logger
}

// NewProxy creates a Proxy. search may be nil when the tool is not
// configured; docs receives best-effort transcript persistence.
func NewProxy(
	client inference.Client,
	searchTool search.Tool,
	docs documents.System,
	logger *slog.Logger,
) *Proxy {
	return &Proxy{
		client: client,
		search: searchTool,
		docs:   docs,
		logger: logger.With("system", "assistant"),
	}
}

// Run executes one streaming turn, delivering every event through emit in
// production order. The single goroutine running this method is the only
// writer for the session. When ctx is cancelled (client disconnect), upstream
// consumption stops and no terminal event is flushed.
func (p *Proxy) Run(ctx context.Context, turn TurnRequest, emit EmitFunc) {
	s := newSession(emit)
	logger := p.logger.With("session", s.id)

	if strings.TrimSpace(turn.Message) == "" {
		s.send(Event{Type: EventError, Content: "message is required"})
		return
	}

	if err := s.status("Processing request"); err != nil {
		return
	}

	input := turn.Message
	if p.search != nil && wantsSearch(turn.Message) {
		augmented, err := p.runSearchTool(ctx, s, turn.Message)
		if err != nil {
			return
		}
		input = augmented
	}

	if err := s.status("Generating response"); err != nil {
		return
	}

	responseID, model, content, err := p.relay(ctx, s, turn, input)
	if err != nil {
		if ctx.Err() != nil {
			logger.Info("session cancelled by client")
			return
		}
		s.send(Event{Type: EventError, Content: err.Error()})
		return
	}
	if ctx.Err() != nil {
		logger.Info("session cancelled by client")
		return
	}

	if artifacts := detectArtifacts(content); len(artifacts) > 0 {
		if err := s.send(Event{Type: EventArtifacts, Data: artifacts}); err != nil {
			return
		}
	}

	p.persistTranscript(s, turn.Message, content)

	s.send(Event{
		Type: EventDone,
		Metadata: map[string]any{
			"response_id": responseID,
			"model":       model,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		},
	})

	logger.Info("session completed", "events", s.seq, "response_id", responseID)
}

// runSearchTool emits the tool_call/tool_result pair around one search
// invocation. A tool failure is reported inside the tool_result payload and
// the session continues with the unaugmented message.
func (p *Proxy) runSearchTool(ctx context.Context, s *session, message string) (string, error) {
	call := ToolCallPayload{Tool: "web_search", Query: message}
	if err := s.send(Event{Type: EventToolCall, Data: call}); err != nil {
		return "", err
	}

	results, err := p.search.Search(ctx, message, searchResultLimit)
	if err != nil {
		p.logger.Warn("search tool failed", "session", s.id, "error", err)
		if err := s.send(Event{Type: EventToolResult, Data: ToolResultPayload{
			Tool:  "web_search",
			Error: err.Error(),
		}}); err != nil {
			return "", err
		}
		return message, nil
	}

	if err := s.send(Event{Type: EventToolResult, Data: ToolResultPayload{
		Tool:    "web_search",
		Results: results,
	}}); err != nil {
		return "", err
	}

	return augmentWithResults(message, results), nil
}

// relay drains the inference stream, forwarding reasoning and content deltas
// as they arrive. Returns the continuation token, model, and accumulated
// answer text.
func (p *Proxy) relay(ctx context.Context, s *session, turn TurnRequest, input string) (string, string, string, error) {
	stream, err := p.client.Stream(ctx, inference.Request{
		Input:              input,
		Instructions:       assistantInstructions,
		PreviousResponseID: turn.PreviousResponseID,
		Store:              true,
	})
	if err != nil {
		return "", "", "", err
	}
	defer stream.Close()

	var (
		responseID string
		model      string
		content    strings.Builder
	)

	for stream.Next() {
		if ctx.Err() != nil {
			return "", "", "", ctx.Err()
		}

		ev := stream.Current()
		switch ev.Kind {
		case inference.KindCreated:
			responseID = ev.ResponseID
		case inference.KindReasoningDelta:
			if err := s.send(Event{Type: EventReasoning, Content: ev.Delta}); err != nil {
				return "", "", "", err
			}
		case inference.KindContentDelta:
			content.WriteString(ev.Delta)
			if err := s.send(Event{Type: EventContent, Content: ev.Delta}); err != nil {
				return "", "", "", err
			}
		case inference.KindCompleted:
			responseID = ev.ResponseID
			model = ev.Model
		case inference.KindFailed:
			return "", "", "", fmt.Errorf("inference failed: %s", ev.Message)
		}
	}
	if err := stream.Err(); err != nil {
		return "", "", "", err
	}

	return responseID, model, content.String(), nil
}

// persistTranscript stores the turn as a transcript-kind unit through the
// document system. Persistence is best effort; a failure never disturbs the
// event stream.
func (p *Proxy) persistTranscript(s *session, message, answer string) {
	if p.docs == nil || answer == "" {
		return
	}

	transcript := fmt.Sprintf("# Assistant Turn\n\n## User\n\n%s\n\n## Assistant\n\n%s\n", message, answer)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	_, err := p.docs.Create(ctx, documents.CreateCommand{
		Data:        []byte(transcript),
		Filename:    fmt.Sprintf("transcript-%s.md", s.id),
		ContentType: "text/markdown",
		Kind:        documents.KindTranscript,
	})
	if err != nil {
		p.logger.Warn("transcript persistence failed", "session", s.id, "error", err)
	}
}

func augmentWithResults(message string, results []search.Result) string {
	var sb strings.Builder
	sb.WriteString(message)
	sb.WriteString("\n\nSEARCH RESULTS:\n")
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. %s\n   %s\n   %s\n", i+1, r.Title, r.Link, r.Snippet)
	}
	return sb.String()
}
