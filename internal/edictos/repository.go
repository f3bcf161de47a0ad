package edictos

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pjecz/portal-notarias/pkg/pagination"
	"github.com/pjecz/portal-notarias/pkg/query"
	"github.com/pjecz/portal-notarias/pkg/repository"
)

type store struct {
	db     *sql.DB
	schema string
	edicto *query.ProjectionMap
	acuse  *query.ProjectionMap
}

// NewStore creates the PostgreSQL Store over the given schema.
func NewStore(db *sql.DB, schema string) Store {
	return &store{
		db:     db,
		schema: schema,
		edicto: edictoProjection(schema),
		acuse:  acuseProjection(schema),
	}
}

func (s *store) Find(ctx context.Context, id int64) (*Edicto, error) {
	return s.find(ctx, s.db, id)
}

func (s *store) find(ctx context.Context, q repository.Querier, id int64) (*Edicto, error) {
	sqlText, args := query.NewBuilder(s.edicto).BuildSingle("ID", id)

	e, err := repository.QueryOne(ctx, q, sqlText, args, scanEdicto)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, nil)
	}
	return &e, nil
}

func (s *store) List(ctx context.Context, req pagination.Request, filters Filters, view View) ([]Edicto, int, error) {
	qb := filters.Apply(query.NewBuilder(s.edicto, defaultSort...), view)

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.QueryCount(ctx, s.db, countSQL, countArgs)
	if err != nil {
		return nil, 0, fmt.Errorf("count edictos: %w", err)
	}

	windowSQL, windowArgs := qb.BuildWindow(req.Start, req.Length)
	list, err := repository.QueryMany(ctx, s.db, windowSQL, windowArgs, scanEdicto)
	if err != nil {
		return nil, 0, fmt.Errorf("query edictos: %w", err)
	}
	return list, total, nil
}

func (s *store) ListAll(ctx context.Context, filters Filters, view View, limit int) ([]Edicto, error) {
	qb := filters.Apply(query.NewBuilder(s.edicto, defaultSort...), view)

	sqlText, args := qb.BuildWindow(0, limit)
	list, err := repository.QueryMany(ctx, s.db, sqlText, args, scanEdicto)
	if err != nil {
		return nil, fmt.Errorf("query edictos: %w", err)
	}
	return list, nil
}

func (s *store) Insert(ctx context.Context, cmd InsertCommand) (*Edicto, error) {
	insert := fmt.Sprintf(`
		INSERT INTO %s.edictos(autoridad_id, fecha, descripcion, expediente, numero_publicacion, acuse_num, estatus)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`, s.schema)

	return repository.WithTx(ctx, s.db, func(tx *sql.Tx) (*Edicto, error) {
		var id int64
		err := tx.QueryRowContext(ctx, insert,
			cmd.AutoridadID,
			cmd.Fecha,
			cmd.Descripcion,
			cmd.Expediente,
			cmd.NumeroPublicacion,
			cmd.AcuseNum,
			string(Pendiente),
		).Scan(&id)
		if repository.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: autoridad %d inexistente", ErrInvalidCommand, cmd.AutoridadID)
		}
		if err != nil {
			return nil, fmt.Errorf("insert edicto: %w", err)
		}

		if err := s.insertAcuses(ctx, tx, id, cmd.Acuses); err != nil {
			return nil, err
		}
		return s.find(ctx, tx, id)
	})
}

func (s *store) Finalize(ctx context.Context, id int64, archivo, url string, paginas *int) (*Edicto, error) {
	update := fmt.Sprintf(`
		UPDATE %s.edictos
		SET archivo = $2, url = $3, paginas = $4, estatus = $5, modificado = now()
		WHERE id = $1 AND estatus = $6`, s.schema)

	err := repository.ExecExpectOne(ctx, s.db, update, id, archivo, url, paginas, string(Activo), string(Pendiente))
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, nil)
	}
	return s.Find(ctx, id)
}

func (s *store) SetEstatus(ctx context.Context, id int64, estatus Estatus) (*Edicto, error) {
	update := fmt.Sprintf(`UPDATE %s.edictos SET estatus = $2, modificado = now() WHERE id = $1`, s.schema)

	if err := repository.ExecExpectOne(ctx, s.db, update, id, string(estatus)); err != nil {
		return nil, repository.MapError(err, ErrNotFound, nil)
	}
	return s.Find(ctx, id)
}

func (s *store) Update(ctx context.Context, cmd UpdateCommand) (*Edicto, error) {
	update := fmt.Sprintf(`
		UPDATE %s.edictos
		SET descripcion = $2, acuse_num = $3, modificado = now()
		WHERE id = $1`, s.schema)
	remove := fmt.Sprintf(`DELETE FROM %s.edictos_acuses WHERE edicto_id = $1`, s.schema)

	return repository.WithTx(ctx, s.db, func(tx *sql.Tx) (*Edicto, error) {
		if err := repository.ExecExpectOne(ctx, tx, update, cmd.ID, cmd.Descripcion, cmd.AcuseNum); err != nil {
			return nil, repository.MapError(err, ErrNotFound, nil)
		}
		if _, err := tx.ExecContext(ctx, remove, cmd.ID); err != nil {
			return nil, fmt.Errorf("delete acuses: %w", err)
		}
		if err := s.insertAcuses(ctx, tx, cmd.ID, cmd.Acuses); err != nil {
			return nil, err
		}
		return s.find(ctx, tx, cmd.ID)
	})
}

func (s *store) insertAcuses(ctx context.Context, tx *sql.Tx, edictoID int64, fechas []time.Time) error {
	insert := fmt.Sprintf(`INSERT INTO %s.edictos_acuses(edicto_id, fecha) VALUES ($1, $2)`, s.schema)
	for _, f := range fechas {
		if _, err := tx.ExecContext(ctx, insert, edictoID, f); err != nil {
			return fmt.Errorf("insert acuse: %w", err)
		}
	}
	return nil
}

func (s *store) Acuses(ctx context.Context, edictoID int64) ([]Acuse, error) {
	sqlText, args := query.
		NewBuilder(s.acuse, query.SortField{Field: "Fecha"}, query.SortField{Field: "ID"}).
		WhereEquals("EdictoID", edictoID).
		Build()

	list, err := repository.QueryMany(ctx, s.db, sqlText, args, scanAcuse)
	if err != nil {
		return nil, fmt.Errorf("query acuses: %w", err)
	}
	return list, nil
}

func (s *store) FindAcuse(ctx context.Context, edictoID, acuseID int64) (*Acuse, error) {
	sqlText, args := query.
		NewBuilder(s.acuse).
		WhereEquals("ID", acuseID).
		WhereEquals("EdictoID", edictoID).
		Build()

	a, err := repository.QueryOne(ctx, s.db, sqlText, args, scanAcuse)
	if err != nil {
		return nil, repository.MapError(err, ErrAcuseNotFound, nil)
	}
	return &a, nil
}
