package api

import (
	"net/http"

	"github.com/vigil-labs/vigil/internal/config"
	"github.com/vigil-labs/vigil/pkg/openapi"
	"github.com/vigil-labs/vigil/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) error {
	routes.Register(
		mux,
		domain.Documents.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Requirements.Handler().Routes(),
		domain.Assistant.Routes(),
	)

	spec, err := openapi.MarshalJSON(buildSpec(cfg))
	if err != nil {
		return err
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(spec))

	return nil
}
