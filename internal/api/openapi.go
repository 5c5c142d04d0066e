package api

import (
	"github.com/vigil-labs/vigil/internal/config"
	"github.com/vigil-labs/vigil/pkg/openapi"
)

// buildSpec describes the API surface for the served OpenAPI document.
func buildSpec(cfg *config.Config) *openapi.Spec {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	spec.Components.AddSchemas(map[string]*openapi.Schema{
		"Document": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":                {Type: "string", Format: "uuid"},
				"kind":              {Type: "string", Enum: []any{"document", "transcript"}},
				"filename":          {Type: "string"},
				"content_type":      {Type: "string"},
				"size_bytes":        {Type: "integer"},
				"page_count":        {Type: "integer"},
				"storage_key":       {Type: "string"},
				"processing_status": {Type: "string", Enum: []any{"pending", "processing", "completed", "failed"}},
				"error_message":     {Type: "string"},
				"analysis_result":   openapi.SchemaRef("AnalysisResult"),
				"created_at":        {Type: "string", Format: "date-time"},
				"updated_at":        {Type: "string", Format: "date-time"},
			},
		},
		"AnalysisResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"summary":            {Type: "string"},
				"findings":           {Type: "array", Items: openapi.SchemaRef("Finding")},
				"total_findings":     {Type: "integer"},
				"critical_deadlines": {Type: "array", Items: &openapi.Schema{Type: "string"}},
				"confidence":         {Type: "number", Minimum: float64Ptr(0), Maximum: float64Ptr(1)},
			},
		},
		"Finding": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":                {Type: "string"},
				"type":              {Type: "string", Enum: []any{"BSA/AML", "Lending", "Operations", "Capital", "Management", "IT", "Other"}},
				"severity":          {Type: "string", Enum: []any{"Matter Requiring Attention", "Deficiency", "Violation", "Recommendation"}},
				"description":       {Type: "string"},
				"extracted_text":    {Type: "string"},
				"response_required": {Type: "boolean"},
				"confidence":        {Type: "number", Minimum: float64Ptr(0), Maximum: float64Ptr(1)},
			},
		},
		"Requirement": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":                 {Type: "string", Format: "uuid"},
				"title":              {Type: "string"},
				"description":        {Type: "string"},
				"validation_results": openapi.SchemaRef("ValidationVerdict"),
				"last_validated_at":  {Type: "string", Format: "date-time"},
			},
		},
		"ValidationVerdict": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"status":     {Type: "string", Enum: []any{"satisfied", "partially_satisfied", "not_satisfied", "indeterminate"}},
				"rationale":  {Type: "string"},
				"gaps":       {Type: "array", Items: &openapi.Schema{Type: "string"}},
				"confidence": {Type: "number", Minimum: float64Ptr(0), Maximum: float64Ptr(1)},
			},
		},
		"TurnRequest": {
			Type:     "object",
			Required: []string{"message"},
			Properties: map[string]*openapi.Schema{
				"message":              {Type: "string"},
				"previous_response_id": {Type: "string", Description: "Continuation token from a prior turn's done event"},
			},
		},
		"StreamEvent": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"type":     {Type: "string", Enum: []any{"status", "reasoning", "tool_call", "tool_result", "content", "artifacts", "done", "error"}},
				"seq":      {Type: "integer"},
				"content":  {Type: "string"},
				"done":     {Type: "boolean"},
				"metadata": {Type: "object"},
			},
		},
	})

	spec.Paths["/documents"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List documents",
			Tags:    []string{"documents"},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Paginated documents", "Document"),
			},
		},
		Post: &openapi.Operation{
			Summary: "Upload a document",
			Tags:    []string{"documents"},
			Responses: map[int]*openapi.Response{
				201: openapi.ResponseJSON("Created document", "Document"),
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}

	spec.Paths["/documents/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Get a document",
			Tags:       []string{"documents"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Document id")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Document", "Document"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
		Delete: &openapi.Operation{
			Summary:    "Delete a document",
			Tags:       []string{"documents"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Document id")},
			Responses: map[int]*openapi.Response{
				204: {Description: "Deleted"},
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/documents/{id}/analyze"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:    "Submit a document for analysis",
			Tags:       []string{"documents"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Document id")},
			Responses: map[int]*openapi.Response{
				202: {Description: "Analysis accepted"},
				404: openapi.ResponseRef("NotFound"),
				409: openapi.ResponseRef("Conflict"),
			},
		},
	}

	spec.Paths["/documents/{id}/status"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Get processing status",
			Tags:       []string{"documents"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Document id")},
			Responses: map[int]*openapi.Response{
				200: {Description: "Status snapshot"},
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/requirements"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List requirements",
			Tags:    []string{"requirements"},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Paginated requirements", "Requirement"),
			},
		},
		Post: &openapi.Operation{
			Summary:     "Create a requirement",
			Tags:        []string{"requirements"},
			RequestBody: openapi.RequestBodyJSON("Requirement", true),
			Responses: map[int]*openapi.Response{
				201: openapi.ResponseJSON("Created requirement", "Requirement"),
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}

	spec.Paths["/requirements/{id}/validate"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:    "Validate linked evidence against a requirement",
			Tags:       []string{"requirements"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Requirement id")},
			Responses: map[int]*openapi.Response{
				202: {Description: "Validation accepted"},
				400: openapi.ResponseRef("BadRequest"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/requirements/{id}/evidence/{documentID}"] = &openapi.PathItem{
		Put: &openapi.Operation{
			Summary: "Link evidence to a requirement",
			Tags:    []string{"requirements"},
			Parameters: []*openapi.Parameter{
				openapi.PathParam("id", "Requirement id"),
				openapi.PathParam("documentID", "Document id"),
			},
			Responses: map[int]*openapi.Response{
				204: {Description: "Linked"},
				404: openapi.ResponseRef("NotFound"),
				409: openapi.ResponseRef("Conflict"),
			},
		},
		Delete: &openapi.Operation{
			Summary: "Unlink evidence from a requirement",
			Tags:    []string{"requirements"},
			Parameters: []*openapi.Parameter{
				openapi.PathParam("id", "Requirement id"),
				openapi.PathParam("documentID", "Document id"),
			},
			Responses: map[int]*openapi.Response{
				204: {Description: "Unlinked"},
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/assistant/stream"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Open a streaming assistant session",
			Description: "Server-sent events; each event is a StreamEvent JSON object. Exactly one done or error event ends the session.",
			Tags:        []string{"assistant"},
			RequestBody: openapi.RequestBodyJSON("TurnRequest", true),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Event stream", "StreamEvent"),
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}

	return spec
}

func float64Ptr(v float64) *float64 { return &v }
