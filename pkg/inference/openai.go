package inference

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/packages/ssestream"
	"github.com/openai/openai-go/v2/responses"
	"github.com/openai/openai-go/v2/shared"
)

type openaiClient struct {
	api    openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAI creates a Client backed by the OpenAI Responses API.
// Continuation tokens are the provider's response IDs passed through
// unmodified; the client keeps no conversation state of its own.
func NewOpenAI(cfg *Config, logger *slog.Logger) Client {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &openaiClient{
		api:    openai.NewClient(opts...),
		model:  cfg.Model,
		logger: logger.With("system", "inference"),
	}
}

func (c *openaiClient) Respond(ctx context.Context, req Request) (*Response, error) {
	resp, err := c.api.Responses.New(ctx, c.params(req))
	if err != nil {
		return nil, c.mapError(err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, ErrNoContent
	}

	return &Response{
		ID:      resp.ID,
		Model:   string(resp.Model),
		Content: content,
	}, nil
}

func (c *openaiClient) Stream(ctx context.Context, req Request) (Stream, error) {
	s := c.api.Responses.NewStreaming(ctx, c.params(req))
	if err := s.Err(); err != nil {
		return nil, c.mapError(err)
	}
	return &openaiStream{stream: s}, nil
}

func (c *openaiClient) params(req Request) responses.ResponseNewParams {
	p := responses.ResponseNewParams{
		Model: shared.ResponsesModel(c.model),
		Input: responses.ResponseNewParamsInputUnion{OfString: openai.String(req.Input)},
	}

	if req.Instructions != "" {
		p.Instructions = openai.String(req.Instructions)
	}
	if req.MaxOutputTokens > 0 {
		p.MaxOutputTokens = openai.Int(req.MaxOutputTokens)
	}
	if req.PreviousResponseID != "" {
		p.PreviousResponseID = openai.String(req.PreviousResponseID)
	}
	if req.Store {
		p.Store = openai.Bool(true)
	}
	if req.JSONObject {
		p.Text.Format = responses.ResponseFormatTextConfigUnionParam{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	if req.Verbosity != "" {
		p.Text.Verbosity = responses.ResponseTextConfigVerbosity(req.Verbosity)
	}
	if req.ReasoningEffort != "" {
		p.Reasoning = shared.ReasoningParam{
			Effort:  shared.ReasoningEffort(req.ReasoningEffort),
			Summary: shared.ReasoningSummaryDetailed,
		}
	}

	return p
}

func (c *openaiClient) mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: provider returned %d: %v", ErrUnavailable, apiErr.StatusCode, err)
	}

	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// openaiStream adapts the provider's event union to the package's taxonomy,
// skipping event types the pipeline has no use for.
type openaiStream struct {
	stream  *ssestream.Stream[responses.ResponseStreamEventUnion]
	current Event
}

func (s *openaiStream) Next() bool {
	for s.stream.Next() {
		ev := s.stream.Current()

		switch ev.Type {
		case "response.created":
			s.current = Event{Kind: KindCreated, ResponseID: ev.Response.ID}
			return true
		case "response.output_text.delta":
			if ev.Delta == "" {
				continue
			}
			s.current = Event{Kind: KindContentDelta, Delta: ev.Delta}
			return true
		case "response.reasoning_text.delta", "response.reasoning_summary_text.delta":
			if ev.Delta == "" {
				continue
			}
			s.current = Event{Kind: KindReasoningDelta, Delta: ev.Delta}
			return true
		case "response.completed":
			s.current = Event{Kind: KindCompleted, ResponseID: ev.Response.ID, Model: string(ev.Response.Model)}
			return true
		case "response.failed", "response.incomplete":
			s.current = Event{
				Kind:       KindFailed,
				ResponseID: ev.Response.ID,
				Message:    ev.Response.Error.Message,
			}
			return true
		}
	}

	return false
}

func (s *openaiStream) Current() Event { return s.current }

func (s *openaiStream) Err() error {
	if err := s.stream.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *openaiStream) Close() error { return s.stream.Close() }
