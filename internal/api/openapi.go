package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/proctor/internal/config"
	"github.com/JaimeStill/proctor/internal/monitor"
	"github.com/JaimeStill/proctor/internal/reports"
	"github.com/JaimeStill/proctor/internal/sessions"
	"github.com/JaimeStill/proctor/pkg/openapi"
	"github.com/JaimeStill/proctor/pkg/routes"
)

// buildSpec documents every route that carries an operation and returns a
// handler serving the serialized document.
func buildSpec(cfg *config.Config, groups []routes.Group) (http.HandlerFunc, error) {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	spec.Components.AddSchemas(monitor.Schemas())
	spec.Components.AddSchemas(sessions.Schemas())
	spec.Components.AddSchemas(reports.Schemas())

	for _, g := range groups {
		g.Walk(func(path string, r routes.Route) {
			if r.OpenAPI != nil {
				spec.AddOperation(r.Method, path, r.OpenAPI)
			}
		})
	}

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		return nil, fmt.Errorf("marshal openapi spec: %w", err)
	}
	return openapi.ServeSpec(data), nil
}
