package portal

import (
	"net/http"

	"github.com/pjecz/portal-notarias/internal/config"
	"github.com/pjecz/portal-notarias/internal/edictos"
	"github.com/pjecz/portal-notarias/pkg/routes"
	"github.com/pjecz/portal-notarias/pkg/web"
)

func registerRoutes(
	router *web.Router,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
	pages *web.TemplateSet,
	static http.Handler,
) {
	base := cfg.Web.BasePath

	h := edictos.NewHandler(edictos.HandlerDeps{
		System:            domain.Edictos,
		Autoridades:       domain.Autoridades,
		Pages:             pages,
		Flash:             runtime.Flash,
		Auth:              runtime.Auth,
		Logger:            runtime.Logger,
		Pagination:        runtime.Pagination,
		PublicDownloadURL: cfg.Edictos.PublicDownloadURL,
		MaxUploadSize:     cfg.Web.MaxUploadSizeBytes(),
	})

	routes.Register(router.Mux(), routes.Group{
		Prefix:   base,
		Children: []routes.Group{h.Routes()},
	})

	router.Handle("GET "+base+"/static/", static)
	router.Handle("GET "+base+"/{$}", http.RedirectHandler(base+"/edictos", http.StatusFound))
}
