package portal

import (
	"fmt"

	"github.com/pjecz/portal-notarias/internal/autoridades"
	"github.com/pjecz/portal-notarias/internal/bitacoras"
	"github.com/pjecz/portal-notarias/internal/config"
	"github.com/pjecz/portal-notarias/internal/edictos"
)

// Domain holds all domain systems that comprise the portal.
type Domain struct {
	Autoridades autoridades.System
	Bitacoras   bitacoras.System
	Edictos     edictos.System
}

// NewDomain creates all domain systems from the site runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) (*Domain, error) {
	db := runtime.Database.Connection()
	schema := cfg.Database.Schema

	autoridadesSystem := autoridades.New(db, schema, runtime.Logger)
	bitacorasSystem := bitacoras.New(db, schema, runtime.Logger)

	edictosSystem, err := edictos.New(edictos.Deps{
		Store:       edictos.NewStore(db, schema),
		Storage:     runtime.Storage,
		Autoridades: autoridadesSystem,
		Bitacoras:   bitacorasSystem,
		Config:      &cfg.Edictos,
		Pagination:  runtime.Pagination,
		Logger:      runtime.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("edictos: %w", err)
	}

	return &Domain{
		Autoridades: autoridadesSystem,
		Bitacoras:   bitacorasSystem,
		Edictos:     edictosSystem,
	}, nil
}
