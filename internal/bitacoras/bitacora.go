// Package bitacoras appends audit entries describing user actions.
package bitacoras

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/pjecz/portal-notarias/pkg/safestring"
)

const maxDescripcion = 250

var validate = validator.New(validator.WithRequiredStructEnabled())

// Bitacora is one audit entry. URL points at the record the action touched.
type Bitacora struct {
	ID           uuid.UUID `json:"id"`
	Modulo       string    `json:"modulo"`
	UsuarioEmail string    `json:"usuario_email"`
	Descripcion  string    `json:"descripcion"`
	URL          string    `json:"url"`
	Creado       time.Time `json:"creado"`
}

// RecordCommand carries the fields of a new entry.
type RecordCommand struct {
	Modulo       string `validate:"required,max=64"`
	UsuarioEmail string `validate:"omitempty,email,max=256"`
	Descripcion  string `validate:"required"`
	URL          string `validate:"max=512"`
}

// Validate truncates the description and checks field limits.
func (c *RecordCommand) Validate() error {
	c.Descripcion = safestring.Message(c.Descripcion, maxDescripcion)
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}
	return nil
}

// System defines the audit writer.
type System interface {
	Record(ctx context.Context, cmd RecordCommand) (*Bitacora, error)
}
