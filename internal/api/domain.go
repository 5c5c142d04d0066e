package api

import (
	"github.com/vigil-labs/vigil/internal/analysis"
	"github.com/vigil-labs/vigil/internal/assistant"
	"github.com/vigil-labs/vigil/internal/documents"
	"github.com/vigil-labs/vigil/internal/requirements"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Documents    documents.System
	Requirements requirements.System
	Assistant    *assistant.Handler
}

// NewDomain creates all domain systems from the API runtime and binds their
// background work to the process lifecycle.
func NewDomain(runtime *Runtime) (*Domain, error) {
	analyzer := analysis.NewAnalyzer(runtime.Inference, runtime.Logger)

	docsSystem := documents.New(
		runtime.Database.Connection(),
		runtime.Storage,
		analyzer,
		runtime.AnalysisTimeout,
		runtime.Logger,
		runtime.Pagination,
	)
	if err := docsSystem.Start(runtime.Lifecycle); err != nil {
		return nil, err
	}

	reqsSystem := requirements.New(
		runtime.Database.Connection(),
		docsSystem,
		analyzer,
		runtime.AnalysisTimeout,
		runtime.Logger,
		runtime.Pagination,
	)
	if err := reqsSystem.Start(runtime.Lifecycle); err != nil {
		return nil, err
	}

	proxy := assistant.NewProxy(
		runtime.Inference,
		runtime.Search,
		docsSystem,
		runtime.Logger,
	)

	return &Domain{
		Documents:    docsSystem,
		Requirements: reqsSystem,
		Assistant:    assistant.NewHandler(proxy, runtime.Logger),
	}, nil
}
