package bitacoras

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pjecz/portal-notarias/pkg/repository"
)

type repo struct {
	db     *sql.DB
	insert string
	logger *slog.Logger
}

// New creates an audit writer over the given schema.
func New(db *sql.DB, schema string, logger *slog.Logger) System {
	return &repo{
		db: db,
		insert: fmt.Sprintf(`
		INSERT INTO %s.bitacoras(id, modulo, usuario_email, descripcion, url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, modulo, usuario_email, descripcion, url, creado`, schema),
		logger: logger.With("system", "bitacoras"),
	}
}

func (r *repo) Record(ctx context.Context, cmd RecordCommand) (*Bitacora, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	args := []any{uuid.New(), cmd.Modulo, cmd.UsuarioEmail, cmd.Descripcion, cmd.URL}
	b, err := repository.QueryOne(ctx, r.db, r.insert, args, scanBitacora)
	if err != nil {
		return nil, fmt.Errorf("record bitacora: %w", err)
	}

	r.logger.Info("bitacora recorded", "modulo", b.Modulo, "url", b.URL)
	return &b, nil
}

func scanBitacora(s repository.Scanner) (Bitacora, error) {
	var b Bitacora
	err := s.Scan(&b.ID, &b.Modulo, &b.UsuarioEmail, &b.Descripcion, &b.URL, &b.Creado)
	return b, err
}
