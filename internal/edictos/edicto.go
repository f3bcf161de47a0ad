// Package edictos implements the legal notice domain: notices filed by notary
// offices and courts, their republication dates (acuses), and the workflows
// that create, edit, deactivate, list and serve them.
package edictos

import (
	"context"
	"io"
	"time"

	"github.com/pjecz/portal-notarias/internal/autoridades"
	"github.com/pjecz/portal-notarias/internal/bitacoras"
	"github.com/pjecz/portal-notarias/pkg/auth"
	"github.com/pjecz/portal-notarias/pkg/flash"
	"github.com/pjecz/portal-notarias/pkg/pagination"
)

// Modulo is the permission module and audit module name.
const Modulo = "EDICTOS"

// MaxAcuses is the number of publication date slots on the forms.
const MaxAcuses = 5

// Estatus is the lifecycle state of a notice.
type Estatus string

const (
	// Activo notices are published and have a stored file.
	Activo Estatus = "A"
	// Baja notices were deactivated or their upload failed.
	Baja Estatus = "B"
	// Pendiente notices are waiting for their upload to finish.
	Pendiente Estatus = "P"
)

// Edicto is a legal notice. Fecha and the acuse dates are calendar days
// stored as UTC midnight.
type Edicto struct {
	ID                   int64     `json:"id"`
	AutoridadID          int64     `json:"autoridad_id"`
	AutoridadClave       string    `json:"autoridad_clave"`
	AutoridadDescripcion string    `json:"autoridad_descripcion"`
	Fecha                time.Time `json:"fecha"`
	Descripcion          string    `json:"descripcion"`
	Expediente           string    `json:"expediente"`
	NumeroPublicacion    string    `json:"numero_publicacion"`
	Archivo              string    `json:"archivo"`
	URL                  string    `json:"url"`
	AcuseNum             int       `json:"acuse_num"`
	EdictoIDOriginal     int64     `json:"edicto_id_original"`
	Paginas              *int      `json:"paginas"`
	Estatus              Estatus   `json:"estatus"`
	Creado               time.Time `json:"creado"`
	Modificado           time.Time `json:"modificado"`
}

// EsOriginal reports whether the notice is not a republication of another.
func (e *Edicto) EsOriginal() bool {
	return e.EdictoIDOriginal == 0
}

// Acuse is an additional publication date of a notice.
type Acuse struct {
	ID       int64     `json:"id"`
	EdictoID int64     `json:"edicto_id"`
	Fecha    time.Time `json:"fecha"`
	Creado   time.Time `json:"creado"`
}

// View selects which listing a query serves.
type View int

const (
	ViewPublic View = iota
	ViewAdmin
)

// Upload is the file submitted with a new notice.
type Upload struct {
	Filename string
	Data     []byte
}

// File is an opened stored file.
type File struct {
	Name      string
	MediaType string
	Body      io.ReadCloser
}

// Outcome reports a completed workflow step. Messages are meant to be shown to
// the user. Committed is false when a new notice was kept inactive because
// its upload failed.
type Outcome struct {
	Edicto    *Edicto
	Bitacora  *bitacoras.Bitacora
	Messages  []flash.Message
	Committed bool
}

// Store persists notices and their acuses.
type Store interface {
	Find(ctx context.Context, id int64) (*Edicto, error)
	List(ctx context.Context, req pagination.Request, filters Filters, view View) ([]Edicto, int, error)
	ListAll(ctx context.Context, filters Filters, view View, limit int) ([]Edicto, error)
	// Insert stores a pending notice and its acuses in one transaction.
	Insert(ctx context.Context, cmd InsertCommand) (*Edicto, error)
	// Finalize marks a pending notice active with its stored file.
	Finalize(ctx context.Context, id int64, archivo, url string, paginas *int) (*Edicto, error)
	SetEstatus(ctx context.Context, id int64, estatus Estatus) (*Edicto, error)
	// Update replaces the description, acuse count and every acuse in one transaction.
	Update(ctx context.Context, cmd UpdateCommand) (*Edicto, error)
	Acuses(ctx context.Context, edictoID int64) ([]Acuse, error)
	FindAcuse(ctx context.Context, edictoID, acuseID int64) (*Acuse, error)
}

// InsertCommand carries a new pending notice.
type InsertCommand struct {
	AutoridadID       int64       `validate:"required,gt=0"`
	Fecha             time.Time   `validate:"required"`
	Descripcion       string      `validate:"required,max=256"`
	Expediente        string      `validate:"max=16"`
	NumeroPublicacion string      `validate:"max=16"`
	AcuseNum          int         `validate:"min=0,max=5"`
	Acuses            []time.Time `validate:"max=5"`
}

// UpdateCommand carries an edit of an existing notice.
type UpdateCommand struct {
	ID          int64       `validate:"required,gt=0"`
	Descripcion string      `validate:"required,max=256"`
	AcuseNum    int         `validate:"min=1,max=5"`
	Acuses      []time.Time `validate:"max=4"`
}

// System defines the notice workflows served by the Handler.
type System interface {
	Find(ctx context.Context, id int64) (*Edicto, error)
	List(ctx context.Context, req pagination.Request, filters Filters, view View) (pagination.Result[Edicto], error)
	Export(ctx context.Context, filters Filters) ([]Edicto, error)
	Acuses(ctx context.Context, edictoID int64) ([]Acuse, error)
	FindAcuse(ctx context.Context, edictoID, acuseID int64) (*Acuse, error)

	Create(ctx context.Context, p *auth.Principal, a *autoridades.Autoridad, policy Policy, form NewForm, upload Upload) (*Outcome, error)
	Edit(ctx context.Context, p *auth.Principal, id int64, form EditForm) (*Outcome, error)
	Deactivate(ctx context.Context, p *auth.Principal, id int64) (*Outcome, error)
	Recover(ctx context.Context, p *auth.Principal, id int64) (*Outcome, error)

	// Eligibility returns a *Refusal when a cannot file notices under policy.
	Eligibility(a *autoridades.Autoridad, policy Policy) error
	// CanEdit returns a *Refusal when p may not edit e.
	CanEdit(p *auth.Principal, e *Edicto) error
	Policies() Policies

	Download(ctx context.Context, rawURL string) (*File, error)
	OpenPDF(ctx context.Context, id int64) (io.ReadCloser, error)

	EncodeID(id int64) string
	DecodeID(s string) (int64, error)
	Today() time.Time
	// Now is the current instant in the configured location.
	Now() time.Time
	Location() *time.Location
}
