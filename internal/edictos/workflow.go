package edictos

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/pjecz/portal-notarias/internal/autoridades"
	"github.com/pjecz/portal-notarias/internal/bitacoras"
	"github.com/pjecz/portal-notarias/pkg/auth"
	"github.com/pjecz/portal-notarias/pkg/flash"
	"github.com/pjecz/portal-notarias/pkg/hashid"
	"github.com/pjecz/portal-notarias/pkg/pagination"
	"github.com/pjecz/portal-notarias/pkg/safestring"
	"github.com/pjecz/portal-notarias/pkg/storage"
)

// Deps are the collaborators of the notice workflows.
type Deps struct {
	Store       Store
	Storage     storage.System
	Autoridades autoridades.System
	Bitacoras   bitacoras.System
	Config      *Config
	Pagination  pagination.Config
	Logger      *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

type workflow struct {
	store       Store
	storage     storage.System
	autoridades autoridades.System
	bitacoras   bitacoras.System
	cfg         *Config
	pagination  pagination.Config
	logger      *slog.Logger
	now         func() time.Time
	ids         *hashid.Codec
	validate    *validator.Validate
	policies    Policies
}

// New creates the notice System.
func New(deps Deps) (System, error) {
	ids, err := hashid.New(deps.Config.HashidSalt, deps.Config.HashidMinLength)
	if err != nil {
		return nil, err
	}

	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &workflow{
		store:       deps.Store,
		storage:     deps.Storage,
		autoridades: deps.Autoridades,
		bitacoras:   deps.Bitacoras,
		cfg:         deps.Config,
		pagination:  deps.Pagination,
		logger:      deps.Logger.With("system", "edictos"),
		now:         now,
		ids:         ids,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		policies: Policies{
			Notaria:   NotariaPolicy(),
			Autoridad: AutoridadPolicy(deps.Config.AdminBackdateDays),
		},
	}, nil
}

func (w *workflow) Policies() Policies { return w.policies }

func (w *workflow) Location() *time.Location { return w.cfg.Location() }

func (w *workflow) Today() time.Time { return Today(w.cfg.Location(), w.now()) }

func (w *workflow) Now() time.Time { return w.now().In(w.cfg.Location()) }

func (w *workflow) EncodeID(id int64) string { return w.ids.Encode(id) }

func (w *workflow) Eligibility(a *autoridades.Autoridad, p Policy) error {
	return p.Check(a)
}

func (w *workflow) DecodeID(s string) (int64, error) {
	id, err := w.ids.Decode(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidID, err)
	}
	return id, nil
}

func (w *workflow) Find(ctx context.Context, id int64) (*Edicto, error) {
	return w.store.Find(ctx, id)
}

func (w *workflow) Acuses(ctx context.Context, edictoID int64) ([]Acuse, error) {
	return w.store.Acuses(ctx, edictoID)
}

func (w *workflow) FindAcuse(ctx context.Context, edictoID, acuseID int64) (*Acuse, error) {
	return w.store.FindAcuse(ctx, edictoID, acuseID)
}

func (w *workflow) List(ctx context.Context, req pagination.Request, filters Filters, view View) (pagination.Result[Edicto], error) {
	req.Normalize(w.pagination)

	filters, err := w.knownAutoridad(ctx, filters)
	if err != nil {
		return pagination.Result[Edicto]{}, err
	}

	list, total, err := w.store.List(ctx, req, filters, view)
	if err != nil {
		return pagination.Result[Edicto]{}, err
	}
	return pagination.NewResult(req, list, total), nil
}

func (w *workflow) Export(ctx context.Context, filters Filters) ([]Edicto, error) {
	filters, err := w.knownAutoridad(ctx, filters)
	if err != nil {
		return nil, err
	}
	return w.store.ListAll(ctx, filters, ViewAdmin, w.cfg.ExportLimit)
}

// knownAutoridad drops an autoridad filter naming an authority that does not exist.
func (w *workflow) knownAutoridad(ctx context.Context, f Filters) (Filters, error) {
	if f.AutoridadID == nil {
		return f, nil
	}
	_, err := w.autoridades.FindAutoridad(ctx, *f.AutoridadID)
	switch {
	case errors.Is(err, autoridades.ErrNotFound):
		f.AutoridadID = nil
	case err != nil:
		return f, err
	}
	return f, nil
}

// Create validates form under policy, stores the notice as pending, uploads
// the file and then commits the notice as active, or inactive when the upload
// fails. Validation failures return a *ValidationError and store nothing.
func (w *workflow) Create(
	ctx context.Context,
	p *auth.Principal,
	a *autoridades.Autoridad,
	policy Policy,
	form NewForm,
	upload Upload,
) (*Outcome, error) {
	if err := policy.Check(a); err != nil {
		return nil, err
	}

	now := w.now()
	today := Today(w.cfg.Location(), now)
	v := &ValidationError{}

	cmd := InsertCommand{AutoridadID: a.ID}

	if policy.AdminAssisted() {
		cmd.Fecha = adminFecha(form.Fecha, today, policy.BackdateDays, v)
	} else {
		cmd.Fecha = today
	}

	cmd.Descripcion = safestring.String(form.Descripcion, safestring.Options{
		MaxLen:   policy.DescripcionMaxLen,
		KeepEnie: policy.KeepEnie,
	})
	if cmd.Descripcion == "" {
		v.add(MsgDescripcion)
	}

	if policy.AdminAssisted() {
		cmd.Expediente, cmd.NumeroPublicacion = caseData(form, now.In(w.cfg.Location()), v)
	} else {
		cmd.NumeroPublicacion = "1"
		if dates := schedule(form, today, v); dates != nil {
			checkWindow(dates, today, w.cfg.ForwardDays, v)
			cmd.AcuseNum = len(dates)
			cmd.Acuses = acusesAfter(dates, today)
		}
	}

	placement := &storage.Placement{
		BaseDirectory:     a.DirectorioEdictos,
		UploadDate:        cmd.Fecha,
		AllowedExtensions: w.cfg.AllowedExtensions,
		MonthInWord:       true,
	}
	if err := placement.SetContentType(upload.Filename); err != nil {
		v.add(MsgTipoArchivo)
	}

	if v.failed() {
		return nil, v
	}
	if err := w.validate.Struct(cmd); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}

	e, err := w.store.Insert(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("insert edicto: %w", err)
	}

	if err := w.upload(ctx, placement, e, upload.Data); err != nil {
		return w.abandon(ctx, e, policy, err)
	}

	final, err := w.store.Finalize(ctx, e.ID, placement.Filename(), placement.URL(), w.pageCount(upload.Data))
	if err != nil {
		w.unwind(ctx, e, placement)
		return nil, fmt.Errorf("finalize edicto: %w", err)
	}
	e = final
	w.logger.Info("edicto created", "id", e.ID, "autoridad", a.Clave, "policy", policy.Name)

	pieces := []string{"Nuevo edicto"}
	if e.Expediente != "" {
		pieces = append(pieces, fmt.Sprintf("expediente %s,", e.Expediente))
	}
	if policy.AdminAssisted() && e.NumeroPublicacion != "" {
		pieces = append(pieces, fmt.Sprintf("número %s,", e.NumeroPublicacion))
	}
	pieces = append(pieces, fmt.Sprintf("fecha %s de %s", e.Fecha.Format(time.DateOnly), a.Clave))

	return w.done(ctx, p, e, strings.Join(pieces, " ")), nil
}

func (w *workflow) upload(ctx context.Context, placement *storage.Placement, e *Edicto, data []byte) error {
	if err := placement.SetFilename(w.ids.Encode(e.ID), e.Descripcion); err != nil {
		return err
	}
	return placement.Upload(ctx, w.storage, data)
}

// abandon marks a pending notice inactive after a failed upload.
func (w *workflow) abandon(ctx context.Context, e *Edicto, policy Policy, cause error) (*Outcome, error) {
	var msg flash.Message
	switch {
	case errors.Is(cause, storage.ErrNotAllowedExtension), errors.Is(cause, storage.ErrUnknownExtension):
		msg = flash.Message{Level: flash.Warning, Text: MsgTipoArchivo}
	case errors.Is(cause, storage.ErrNotConfigured):
		msg = flash.Message{Level: flash.Danger, Text: MsgAlmacenamiento}
	default:
		msg = flash.Message{Level: flash.Danger, Text: policy.UnexpectedUpload(cause)}
	}
	w.logger.Warn("edicto upload failed", "id", e.ID, "error", cause)

	e, err := w.store.SetEstatus(ctx, e.ID, Baja)
	if err != nil {
		return nil, fmt.Errorf("deactivate edicto after failed upload: %w", err)
	}
	return &Outcome{Edicto: e, Messages: []flash.Message{msg}}, nil
}

// unwind leaves a notice whose commit failed inactive and removes its
// uploaded file. Both steps are best effort.
func (w *workflow) unwind(ctx context.Context, e *Edicto, placement *storage.Placement) {
	if _, err := w.store.SetEstatus(ctx, e.ID, Baja); err != nil {
		w.logger.Error("deactivate edicto after failed commit", "id", e.ID, "error", err)
	}
	if err := w.storage.Delete(ctx, placement.Key()); err != nil {
		w.logger.Error("delete orphaned file", "id", e.ID, "key", placement.Key(), "error", err)
		return
	}
	w.logger.Warn("edicto commit failed, file removed", "id", e.ID, "key", placement.Key())
}

func (w *workflow) pageCount(data []byte) *int {
	n, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		w.logger.Warn("page count failed", "error", err)
		return nil
	}
	return &n
}

// CanEdit allows administrators always, and owners within the edit window.
func (w *workflow) CanEdit(p *auth.Principal, e *Edicto) error {
	return w.owned(p, e, MsgRegistrosAjenos, msgPlazo("editar", w.cfg.EditDays), w.cfg.EditDays)
}

func (w *workflow) owned(p *auth.Principal, e *Edicto, ajenos, plazo string, days int) error {
	if p.CanAdmin(Modulo) {
		return nil
	}
	if p == nil || p.AutoridadID != e.AutoridadID {
		return refuse(ErrForbidden, ajenos)
	}
	if e.Creado.Before(w.now().In(w.cfg.Location()).AddDate(0, 0, -days)) {
		return refuse(ErrExpired, plazo)
	}
	return nil
}

// Edit replaces the description and the republication dates of a notice.
// Its own date never changes.
func (w *workflow) Edit(ctx context.Context, p *auth.Principal, id int64, form EditForm) (*Outcome, error) {
	e, err := w.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	a, err := w.autoridades.FindAutoridad(ctx, e.AutoridadID)
	if err != nil {
		return nil, err
	}
	if err := w.policies.Notaria.Check(a); err != nil {
		return nil, err
	}
	if err := w.CanEdit(p, e); err != nil {
		return nil, err
	}

	v := &ValidationError{}
	cmd := UpdateCommand{ID: e.ID}

	cmd.Descripcion = safestring.String(form.Descripcion, safestring.Options{KeepEnie: true})
	if cmd.Descripcion == "" {
		v.add(MsgDescripcion)
	}

	if dates := republications(form, e.Fecha, v); dates != nil {
		checkWindow(dates, e.Fecha, w.cfg.ForwardDays, v)
		cmd.AcuseNum = len(dates)
		cmd.Acuses = acusesAfter(dates, e.Fecha)
	}

	if v.failed() {
		return nil, v
	}
	if err := w.validate.Struct(cmd); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}

	e, err = w.store.Update(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("update edicto: %w", err)
	}
	w.logger.Info("edicto edited", "id", e.ID)

	return w.done(ctx, p, e, "Editado Edicto "+e.Descripcion), nil
}

// Deactivate sets an active notice inactive.
func (w *workflow) Deactivate(ctx context.Context, p *auth.Principal, id int64) (*Outcome, error) {
	return w.transition(ctx, p, id, Activo, Baja, transitionText{
		wrongState: MsgYaEliminado,
		ajenos:     MsgEliminarAjenos,
		plazo:      msgPlazo("eliminar", w.cfg.DeleteDays),
		audit:      "Eliminado Edicto ",
	})
}

// Recover sets an inactive notice active again.
func (w *workflow) Recover(ctx context.Context, p *auth.Principal, id int64) (*Outcome, error) {
	return w.transition(ctx, p, id, Baja, Activo, transitionText{
		wrongState: MsgNoEliminado,
		ajenos:     MsgRecuperarAjenos,
		plazo:      msgPlazo("recuperar", w.cfg.DeleteDays),
		audit:      "Recuperado Edicto ",
	})
}

type transitionText struct {
	wrongState string
	ajenos     string
	plazo      string
	audit      string
}

func (w *workflow) transition(ctx context.Context, p *auth.Principal, id int64, from, to Estatus, txt transitionText) (*Outcome, error) {
	e, err := w.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Estatus != from {
		return nil, refuse(ErrInvalidState, txt.wrongState)
	}
	if err := w.owned(p, e, txt.ajenos, txt.plazo, w.cfg.DeleteDays); err != nil {
		return nil, err
	}

	e, err = w.store.SetEstatus(ctx, id, to)
	if err != nil {
		return nil, fmt.Errorf("set estatus: %w", err)
	}
	w.logger.Info("edicto estatus changed", "id", id, "estatus", to)

	return w.done(ctx, p, e, txt.audit+e.Descripcion), nil
}

// done writes the audit entry and builds the success outcome. A failed audit
// write is logged and does not undo the change.
func (w *workflow) done(ctx context.Context, p *auth.Principal, e *Edicto, descripcion string) *Outcome {
	cmd := bitacoras.RecordCommand{
		Modulo:      Modulo,
		Descripcion: descripcion,
		URL:         fmt.Sprintf("/edictos/%d", e.ID),
	}
	if p != nil {
		cmd.UsuarioEmail = p.Email
	}

	out := &Outcome{Edicto: e, Committed: true}

	b, err := w.bitacoras.Record(ctx, cmd)
	if err != nil {
		w.logger.Error("bitacora record failed", "id", e.ID, "error", err)
		out.Messages = []flash.Message{{Level: flash.Success, Text: safestring.Message(descripcion, 250)}}
		return out
	}

	out.Bitacora = b
	out.Messages = []flash.Message{{Level: flash.Success, Text: b.Descripcion}}
	return out
}

// Download opens the stored file a URL points to.
func (w *workflow) Download(ctx context.Context, rawURL string) (*File, error) {
	name, err := w.storage.BlobNameFromURL(rawURL)
	if err != nil {
		return nil, err
	}
	mediaType, err := storage.MediaTypeFromFilename(name)
	if err != nil {
		return nil, err
	}
	body, err := w.storage.Download(ctx, name)
	if err != nil {
		return nil, err
	}
	return &File{Name: name, MediaType: mediaType, Body: body}, nil
}

// OpenPDF opens the stored file of a notice. Any unlocatable file is ErrFileNotFound.
func (w *workflow) OpenPDF(ctx context.Context, id int64) (io.ReadCloser, error) {
	e, err := w.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	name, err := w.storage.BlobNameFromURL(e.URL)
	if err == nil {
		var body io.ReadCloser
		if body, err = w.storage.Download(ctx, name); err == nil {
			return body, nil
		}
	}
	if storage.IsMissing(err) {
		return nil, fmt.Errorf("%w: %w", ErrFileNotFound, err)
	}
	return nil, err
}
