// Package inference defines the boundary to the external language-model
// inference service: a provider-agnostic client for single-shot and streaming
// turns, with conversation continuity carried by opaque response identifiers.
package inference

import "context"

// Client is the contract every inference provider implements. Implementations
// are shared, read-only configuration; per-call tuning travels in the Request.
type Client interface {
	// Respond executes one non-streaming turn and returns the full result.
	Respond(ctx context.Context, req Request) (*Response, error)
	// Stream executes one turn and returns an event stream the caller must
	// drain and close. Consumption stops when ctx is cancelled.
	Stream(ctx context.Context, req Request) (Stream, error)
}

// Request carries one turn's input and tuning parameters. Nothing here is
// global state; callers construct a fresh Request per invocation.
type Request struct {
	Input              string
	Instructions       string
	PreviousResponseID string
	MaxOutputTokens    int64
	JSONObject         bool
	ReasoningEffort    string
	Verbosity          string
	Store              bool
}

// Response is the result of a non-streaming turn. ID is the continuation
// token for the next turn in the same conversation.
type Response struct {
	ID      string
	Model   string
	Content string
}

// Stream yields typed events for one streaming turn.
type Stream interface {
	Next() bool
	Current() Event
	Err() error
	Close() error
}

// EventKind discriminates stream events.
type EventKind string

// Stream event kinds in emission order: a created marker, any number of
// reasoning and content deltas, then exactly one completed or failed event.
const (
	KindCreated        EventKind = "created"
	KindReasoningDelta EventKind = "reasoning_delta"
	KindContentDelta   EventKind = "content_delta"
	KindCompleted      EventKind = "completed"
	KindFailed         EventKind = "failed"
)

// Event is a single item from a streaming turn. ResponseID is populated on
// created, completed, and failed events; Delta on delta events; Message
// carries the provider's failure detail on failed events. Model is set on
// completed events.
type Event struct {
	Kind       EventKind
	Delta      string
	ResponseID string
	Model      string
	Message    string
}
