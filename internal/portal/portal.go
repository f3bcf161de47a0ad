// Package portal assembles the notary portal site with all domain systems,
// page templates, and route registration.
package portal

import (
	"fmt"
	"net/http"

	"github.com/pjecz/portal-notarias/internal/config"
	"github.com/pjecz/portal-notarias/internal/edictos"
	"github.com/pjecz/portal-notarias/internal/infrastructure"
	"github.com/pjecz/portal-notarias/pkg/middleware"
	"github.com/pjecz/portal-notarias/pkg/web"
	"github.com/pjecz/portal-notarias/web/site"
)

// Site is the portal's HTTP surface: pages, DataTables endpoints, downloads,
// and static assets under the configured base path.
type Site struct {
	router     *web.Router
	middleware middleware.System
	domain     *Domain
}

// New creates the site with all domain handlers and middleware. Routes are
// registered on mux so the caller can add its own endpoints alongside.
func New(cfg *config.Config, infra *infrastructure.Infrastructure, mux *http.ServeMux) (*Site, error) {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(cfg, runtime)
	if err != nil {
		return nil, err
	}

	pages, err := site.NewTemplateSet(cfg.Web.BasePath, edictos.Views...)
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}

	static, err := site.Static(cfg.Web.BasePath + "/static/")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	router := web.NewRouter(mux)
	router.SetFallback(pages.ErrorHandler(site.ViewError, http.StatusNotFound))
	registerRoutes(router, domain, cfg, runtime, pages, static)

	mw := middleware.New()
	mw.Use(middleware.Logger(runtime.Logger))
	mw.Use(middleware.CORS(&cfg.Web.CORS))

	return &Site{
		router:     router,
		middleware: mw,
		domain:     domain,
	}, nil
}

// Domain returns the site's domain systems.
func (s *Site) Domain() *Domain {
	return s.domain
}

// Handler returns the router wrapped with the site's middleware stack.
func (s *Site) Handler() http.Handler {
	return s.middleware.Apply(s.router)
}
