package main

import (
	"encoding/json"
	"net/http"

	"github.com/JaimeStill/proctor/internal/api"
	"github.com/JaimeStill/proctor/internal/config"
	"github.com/JaimeStill/proctor/internal/infrastructure"
	"github.com/JaimeStill/proctor/pkg/module"
)

// Modules holds the prefixed modules mounted on the root router.
type Modules struct {
	API *module.Module
}

// NewModules builds every module from the shared infrastructure.
func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{API: apiModule}, nil
}

// Mount attaches every module to router.
func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

func buildRouter(infra *infrastructure.Infrastructure, version string) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{"status": "ok", "version": version})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !infra.Ready() {
			writeStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
			return
		}
		writeStatus(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	return router
}

func writeStatus(w http.ResponseWriter, status int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
