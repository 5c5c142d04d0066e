package assistant

// EventType tags a server-push event within a streaming session.
type EventType string

const (
	EventStatus     EventType = "status"
	EventReasoning  EventType = "reasoning"
	EventToolCall   EventType = "tool_call"
	EventToolResult EventType = "tool_result"
	EventContent    EventType = "content"
	EventArtifacts  EventType = "artifacts"
	EventDone       EventType = "done"
	EventError      EventType = "error"
)

// Event is one typed message in a streaming session. Content carries text
// payloads; Data carries structured payloads. Done is true only on the
// session's single terminal event.
type Event struct {
	Type     EventType      `json:"type"`
	Seq      int            `json:"seq"`
	Content  string         `json:"content,omitempty"`
	Data     any            `json:"data,omitempty"`
	Done     bool           `json:"done"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Terminal reports whether the event ends its session.
func (e Event) Terminal() bool {
	return e.Type == EventDone || e.Type == EventError
}

// ToolCallPayload is the data payload of a tool_call event.
type ToolCallPayload struct {
	Tool  string `json:"tool"`
	Query string `json:"query"`
}

// ToolResultPayload is the data payload of a tool_result event. Error is set
// when the tool failed; the session continues either way.
type ToolResultPayload struct {
	Tool    string `json:"tool"`
	Results any    `json:"results,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Artifact describes a structured side-product the turn's answer implies.
type Artifact struct {
	Type  string `json:"type"`
	Title string `json:"title"`
}
