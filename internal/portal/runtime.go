package portal

import (
	"github.com/pjecz/portal-notarias/internal/config"
	"github.com/pjecz/portal-notarias/internal/infrastructure"
	"github.com/pjecz/portal-notarias/pkg/pagination"
)

// Runtime extends Infrastructure with site-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
}

// NewRuntime creates a site runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	shared := *infra
	shared.Logger = infra.Logger.With("module", "portal")

	return &Runtime{
		Infrastructure: &shared,
		Pagination:     cfg.Web.Pagination,
	}
}
