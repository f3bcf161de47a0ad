package autoridades

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pjecz/portal-notarias/pkg/query"
	"github.com/pjecz/portal-notarias/pkg/repository"
)

type repo struct {
	db        *sql.DB
	logger    *slog.Logger
	autoridad *query.ProjectionMap
	distrito  *query.ProjectionMap
}

// New creates a read-only repository over the given schema.
func New(db *sql.DB, schema string, logger *slog.Logger) System {
	return &repo{
		db:        db,
		logger:    logger.With("system", "autoridades"),
		autoridad: autoridadProjection(schema),
		distrito:  distritoProjection(schema),
	}
}

func (r *repo) FindAutoridad(ctx context.Context, id int64) (*Autoridad, error) {
	q, args := query.NewBuilder(r.autoridad).BuildSingle("ID", id)

	a, err := repository.QueryOne(ctx, r.db, q, args, scanAutoridad)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, nil)
	}
	return &a, nil
}

func (r *repo) ListAutoridades(ctx context.Context, distritoID int64) ([]Autoridad, error) {
	activo := "A"
	jurisdiccional := true

	q, args := query.
		NewBuilder(r.autoridad, query.SortField{Field: "Clave"}).
		WhereEquals("DistritoID", &distritoID).
		WhereEquals("EsJurisdiccional", &jurisdiccional).
		WhereEquals("Estatus", &activo).
		Build()

	list, err := repository.QueryMany(ctx, r.db, q, args, scanAutoridad)
	if err != nil {
		return nil, fmt.Errorf("list autoridades: %w", err)
	}
	return list, nil
}

func (r *repo) FindDistrito(ctx context.Context, id int64) (*Distrito, error) {
	q, args := query.NewBuilder(r.distrito).BuildSingle("ID", id)

	d, err := repository.QueryOne(ctx, r.db, q, args, scanDistrito)
	if err != nil {
		return nil, repository.MapError(err, ErrDistritoNotFound, nil)
	}
	return &d, nil
}

func (r *repo) ListDistritos(ctx context.Context) ([]Distrito, error) {
	activo := "A"
	judicial := true

	q, args := query.
		NewBuilder(r.distrito, query.SortField{Field: "Nombre"}).
		WhereEquals("EsDistritoJudicial", &judicial).
		WhereEquals("Estatus", &activo).
		Build()

	list, err := repository.QueryMany(ctx, r.db, q, args, scanDistrito)
	if err != nil {
		return nil, fmt.Errorf("list distritos: %w", err)
	}
	return list, nil
}
