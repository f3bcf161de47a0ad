package main

import (
	"net/http"

	"github.com/pjecz/portal-notarias/internal/config"
	"github.com/pjecz/portal-notarias/internal/infrastructure"
	"github.com/pjecz/portal-notarias/internal/portal"
	"github.com/pjecz/portal-notarias/pkg/handlers"
)

type Modules struct {
	Site *portal.Site
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config, mux *http.ServeMux) (*Modules, error) {
	site, err := portal.New(cfg, infra, mux)
	if err != nil {
		return nil, err
	}

	return &Modules{Site: site}, nil
}

func (m *Modules) Handler() http.Handler {
	return m.Site.Handler()
}

func buildRouter(infra *infrastructure.Infrastructure) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() {
			handlers.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "starting"})
			return
		}
		if err := infra.Database.Ping(r.Context()); err != nil {
			handlers.RespondError(w, infra.Logger, http.StatusServiceUnavailable, err)
			return
		}
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	return mux
}
