package api

import (
	"net/http"

	"github.com/JaimeStill/proctor/internal/config"
	"github.com/JaimeStill/proctor/pkg/routes"
)

func groups(domain *Domain, cfg *config.Config) []routes.Group {
	return []routes.Group{
		domain.Monitor.Handler(cfg.API.MaxMessageSizeBytes()).Routes(),
		domain.Sessions.Handler().Routes(),
		domain.Reports.Handler().Routes(),
	}
}

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) (int, error) {
	gs := groups(domain, cfg)
	n := routes.Register(mux, gs...)

	spec, err := buildSpec(cfg, gs)
	if err != nil {
		return n, err
	}
	mux.HandleFunc("GET /openapi.json", spec)

	return n + 1, nil
}
