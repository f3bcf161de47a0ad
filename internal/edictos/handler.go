package edictos

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/pjecz/portal-notarias/internal/autoridades"
	"github.com/pjecz/portal-notarias/pkg/auth"
	"github.com/pjecz/portal-notarias/pkg/flash"
	"github.com/pjecz/portal-notarias/pkg/formatting"
	"github.com/pjecz/portal-notarias/pkg/handlers"
	"github.com/pjecz/portal-notarias/pkg/pagination"
	"github.com/pjecz/portal-notarias/pkg/routes"
	"github.com/pjecz/portal-notarias/pkg/storage"
	"github.com/pjecz/portal-notarias/pkg/web"
)

// Page templates rendered by the Handler.
const (
	ViewList        = "edictos/list.html"
	ViewListAdmin   = "edictos/list_admin.html"
	ViewDistritos   = "edictos/list_distritos.html"
	ViewAutoridades = "edictos/list_autoridades.html"
	ViewDetail      = "edictos/detail.html"
	ViewNew         = "edictos/new.html"
	ViewNewAdmin    = "edictos/new_for_autoridad.html"
	ViewEdit        = "edictos/edit.html"
	ViewPrint       = "edictos/print.html"
	ViewError       = "error.html"
)

// Views are the page templates of the edictos pages.
var Views = []web.ViewDef{
	{Template: ViewList, Title: "Edictos"},
	{Template: ViewListAdmin, Title: "Edictos"},
	{Template: ViewDistritos, Title: "Edictos por distrito"},
	{Template: ViewAutoridades, Title: "Edictos por autoridad"},
	{Template: ViewDetail, Title: "Edicto"},
	{Template: ViewNew, Title: "Nuevo edicto"},
	{Template: ViewNewAdmin, Title: "Nuevo edicto"},
	{Template: ViewEdit, Title: "Editar edicto"},
	{Template: ViewPrint, Title: "Acuse de recibo"},
}

const (
	msgArchivoNoEncontrado = "No se encontró el archivo."
	msgArchivoError        = "Error al descargar el archivo."
	msgAutoridadNoExiste   = "El juzgado/autoridad no existe."
)

// HandlerDeps are the collaborators of the Handler.
type HandlerDeps struct {
	System            System
	Autoridades       autoridades.System
	Pages             *web.TemplateSet
	Flash             *flash.Store
	Auth              auth.Authenticator
	Logger            *slog.Logger
	Pagination        pagination.Config
	PublicDownloadURL string
	MaxUploadSize     int64
}

// Handler serves the edictos pages and JSON endpoints.
type Handler struct {
	sys               System
	autoridades       autoridades.System
	pages             *web.TemplateSet
	flash             *flash.Store
	auth              auth.Authenticator
	logger            *slog.Logger
	pagination        pagination.Config
	publicDownloadURL string
	maxUploadSize     int64
}

// NewHandler creates a Handler.
func NewHandler(d HandlerDeps) *Handler {
	return &Handler{
		sys:               d.System,
		autoridades:       d.Autoridades,
		pages:             d.Pages,
		flash:             d.Flash,
		auth:              d.Auth,
		logger:            d.Logger.With("handler", "edictos"),
		pagination:        d.Pagination,
		publicDownloadURL: d.PublicDownloadURL,
		maxUploadSize:     d.MaxUploadSize,
	}
}

// Routes returns the route group for the edictos pages.
func (h *Handler) Routes() routes.Group {
	ver := func(fn http.HandlerFunc) http.HandlerFunc { return auth.RequireFunc(h.auth, Modulo, auth.Ver, fn) }
	modificar := func(fn http.HandlerFunc) http.HandlerFunc { return auth.RequireFunc(h.auth, Modulo, auth.Modificar, fn) }
	crear := func(fn http.HandlerFunc) http.HandlerFunc { return auth.RequireFunc(h.auth, Modulo, auth.Crear, fn) }
	admin := func(fn http.HandlerFunc) http.HandlerFunc { return auth.RequireFunc(h.auth, Modulo, auth.Administrar, fn) }

	r := []routes.Route{
		routes.Get("", ver(h.List)),
		routes.Get("/distritos", ver(h.ListDistritos)),
		routes.Get("/distrito/{id}", ver(h.ListAutoridades)),
		routes.Get("/autoridad/{id}", ver(h.ListAutoridad)),
		routes.Get("/inactivos", admin(h.ListInactive)),
		routes.Get("/inactivos/autoridad/{id}", admin(h.ListAutoridadInactive)),
		routes.Get("/{id}", ver(h.Detail)),
		routes.Post("/eliminar/{id}", modificar(h.Deactivate)),
		routes.Post("/recuperar/{id}", modificar(h.Recover)),
		routes.Get("/descargar", admin(h.Download)),
		routes.Get("/ver_archivo_pdf/{id}", ver(h.ViewPDF)),
		routes.Get("/exportar", admin(h.Export)),
		routes.Get("/acuses/{hashed_id}", ver(h.Print)),
		routes.Get("/acuses/{hashed_id}/{acuse_id}", ver(h.Print)),
	}
	r = append(r, routes.GetPost("/datatable_json", ver(h.DataTable))...)
	r = append(r, routes.GetPost("/datatable_json_admin", ver(h.DataTableAdmin))...)
	r = append(r, routes.GetPost("/nuevo", crear(h.New))...)
	r = append(r, routes.GetPost("/nuevo/{autoridad_id}", admin(h.NewForAutoridad))...)
	r = append(r, routes.GetPost("/edicion/{id}", modificar(h.Edit))...)

	return routes.Group{Prefix: "/edictos", Routes: r}
}

type listPage struct {
	Autoridad *autoridades.Autoridad
	Filtros   string
	Estatus   Estatus
	DataURL   string
	Admin     bool
}

type distritosPage struct {
	Distritos []autoridades.Distrito
}

type autoridadesPage struct {
	Distrito    *autoridades.Distrito
	Autoridades []autoridades.Autoridad
}

type detailPage struct {
	Edicto      *Edicto
	Acuses      []Acuse
	HashedID    string
	PuedeEditar bool
	Admin       bool
}

type formValues struct {
	Descripcion       string
	AcuseNum          string
	Fechas            [MaxAcuses]string
	Fecha             string
	Expediente        string
	NumeroPublicacion string
}

type formPage struct {
	Autoridad *autoridades.Autoridad
	Edicto    *Edicto
	Form      formValues
	Today     string
	MaxAcuses int
}

type printPage struct {
	Edicto        *Edicto
	Dia           int
	Mes           string
	Anio          int
	FechaDelAcuse *time.Time
}

// List sends administrators to every active notice, notaries to their own,
// and anyone else to the district index.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p := auth.FromContext(r.Context())
	if p.CanAdmin(Modulo) {
		h.renderList(w, r, nil, Activo, "Todos los Edictos")
		return
	}

	if p != nil && p.AutoridadID != 0 {
		a, err := h.autoridades.FindAutoridad(r.Context(), p.AutoridadID)
		if err == nil && a.EsNotaria {
			h.renderList(w, r, a, Activo, "Edictos de "+a.Titulo())
			return
		}
		if err != nil && !errors.Is(err, autoridades.ErrNotFound) {
			h.fail(w, r, err)
			return
		}
	}

	http.Redirect(w, r, h.path("/edictos/distritos"), http.StatusSeeOther)
}

// ListInactive lists every inactive notice.
func (h *Handler) ListInactive(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, nil, Baja, "Edictos inactivos")
}

// ListAutoridad lists the active notices of one authority.
func (h *Handler) ListAutoridad(w http.ResponseWriter, r *http.Request) {
	h.listAutoridad(w, r, Activo, "Edictos de ")
}

// ListAutoridadInactive lists the inactive notices of one authority.
func (h *Handler) ListAutoridadInactive(w http.ResponseWriter, r *http.Request) {
	h.listAutoridad(w, r, Baja, "Edictos inactivos de ")
}

func (h *Handler) listAutoridad(w http.ResponseWriter, r *http.Request, estatus Estatus, prefix string) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	a, err := h.autoridades.FindAutoridad(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.renderList(w, r, a, estatus, prefix+a.Titulo())
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, a *autoridades.Autoridad, estatus Estatus, title string) {
	filtros := map[string]any{"estatus": estatus}
	if a != nil {
		filtros["autoridad_id"] = a.ID
	}
	encoded, _ := json.Marshal(filtros)

	admin := auth.FromContext(r.Context()).CanAdmin(Modulo)
	view, dataURL := ViewList, h.path("/edictos/datatable_json")
	if admin && (a != nil || estatus == Activo) {
		view, dataURL = ViewListAdmin, h.path("/edictos/datatable_json_admin")
	}

	h.render(w, r, http.StatusOK, view, title, listPage{
		Autoridad: a,
		Filtros:   string(encoded),
		Estatus:   estatus,
		DataURL:   dataURL,
		Admin:     admin,
	})
}

// ListDistritos lists the judicial districts.
func (h *Handler) ListDistritos(w http.ResponseWriter, r *http.Request) {
	list, err := h.autoridades.ListDistritos(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, ViewDistritos, "", distritosPage{Distritos: list})
}

// ListAutoridades lists the authorities of a district.
func (h *Handler) ListAutoridades(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	d, err := h.autoridades.FindDistrito(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	list, err := h.autoridades.ListAutoridades(r.Context(), d.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, ViewAutoridades, "Edictos de "+d.Nombre, autoridadesPage{Distrito: d, Autoridades: list})
}

// DataTable returns the public listing JSON.
func (h *Handler) DataTable(w http.ResponseWriter, r *http.Request) {
	res, ok := h.list(w, r, ViewPublic)
	if !ok {
		return
	}
	handlers.RespondJSON(w, http.StatusOK, pagination.Map(res, PublicRowMapper(h.pages.BasePath(), h.publicDownloadURL)))
}

// DataTableAdmin returns the admin listing JSON.
func (h *Handler) DataTableAdmin(w http.ResponseWriter, r *http.Request) {
	res, ok := h.list(w, r, ViewAdmin)
	if !ok {
		return
	}
	handlers.RespondJSON(w, http.StatusOK, pagination.Map(res, AdminRowMapper(h.pages.BasePath(), h.sys.Location())))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, view View) (pagination.Result[Edicto], bool) {
	if err := r.ParseForm(); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return pagination.Result[Edicto]{}, false
	}

	req := pagination.RequestFromValues(r.Form, h.pagination)
	filters := FiltersFromValues(r.Form, h.sys.Now())

	res, err := h.sys.List(r.Context(), req, filters, view)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return res, false
	}
	return res, true
}

// Detail shows one notice with its acuses.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	e, err := h.sys.Find(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	acuses, err := h.sys.Acuses(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	p := auth.FromContext(r.Context())
	h.render(w, r, http.StatusOK, ViewDetail, "Edicto "+e.Descripcion, detailPage{
		Edicto:      e,
		Acuses:      acuses,
		HashedID:    h.sys.EncodeID(e.ID),
		PuedeEditar: p.CanModify(Modulo) && h.sys.CanEdit(p, e) == nil,
		Admin:       p.CanAdmin(Modulo),
	})
}

// New serves the self-service creation form for the principal's notary office.
func (h *Handler) New(w http.ResponseWriter, r *http.Request) {
	p := auth.FromContext(r.Context())
	policy := h.sys.Policies().Notaria

	a, err := h.autoridades.FindAutoridad(r.Context(), p.AutoridadID)
	if err != nil {
		if errors.Is(err, autoridades.ErrNotFound) {
			h.redirect(w, r, h.path("/edictos"), flash.Message{Level: flash.Warning, Text: "La Notaria no existe."})
			return
		}
		h.fail(w, r, err)
		return
	}
	if err := h.sys.Eligibility(a, policy); err != nil {
		h.refused(w, r, err, h.path("/edictos"))
		return
	}

	today := h.sys.Today().Format(time.DateOnly)
	page := formPage{Autoridad: a, Today: today, MaxAcuses: MaxAcuses}

	if r.Method == http.MethodGet {
		page.Form.AcuseNum = "1"
		for i := range page.Form.Fechas {
			page.Form.Fechas[i] = today
		}
		h.render(w, r, http.StatusOK, ViewNew, "", page)
		return
	}

	form, upload, values, err := h.readNewForm(w, r)
	if err != nil {
		h.formError(w, r, err, ViewNew, page)
		return
	}
	page.Form = values

	h.create(w, r, p, a, policy, form, upload, ViewNew, page)
}

// NewForAutoridad serves the admin-assisted creation form for an authority.
func (h *Handler) NewForAutoridad(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "autoridad_id")
	if !ok {
		return
	}
	a, err := h.autoridades.FindAutoridad(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	policy := h.sys.Policies().Autoridad
	if err := h.sys.Eligibility(a, policy); err != nil {
		h.refused(w, r, err, h.path(fmt.Sprintf("/edictos/autoridad/%d", a.ID)))
		return
	}

	today := h.sys.Today().Format(time.DateOnly)
	page := formPage{Autoridad: a, Today: today, MaxAcuses: MaxAcuses}

	if r.Method == http.MethodGet {
		page.Form.Fecha = today
		h.render(w, r, http.StatusOK, ViewNewAdmin, "Nuevo edicto para "+a.Descripcion, page)
		return
	}

	form, upload, values, err := h.readNewForm(w, r)
	if err != nil {
		h.formError(w, r, err, ViewNewAdmin, page)
		return
	}
	page.Form = values

	h.create(w, r, auth.FromContext(r.Context()), a, policy, form, upload, ViewNewAdmin, page)
}

func (h *Handler) create(
	w http.ResponseWriter,
	r *http.Request,
	p *auth.Principal,
	a *autoridades.Autoridad,
	policy Policy,
	form NewForm,
	upload Upload,
	view string,
	page formPage,
) {
	out, err := h.sys.Create(r.Context(), p, a, policy, form, upload)
	if err != nil {
		var ve *ValidationError
		var rf *Refusal
		switch {
		case errors.As(err, &ve):
			h.render(w, r, http.StatusUnprocessableEntity, view, "", page, warnings(ve.Warnings)...)
		case errors.As(err, &rf):
			h.refused(w, r, err, h.path("/edictos"))
		default:
			h.fail(w, r, err)
		}
		return
	}

	if !out.Committed {
		h.render(w, r, http.StatusOK, view, "", page, out.Messages...)
		return
	}
	h.redirect(w, r, h.path(fmt.Sprintf("/edictos/%d", out.Edicto.ID)), out.Messages...)
}

// Edit serves the edit form of a notice.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	e, err := h.sys.Find(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	page := formPage{Edicto: e, Today: h.sys.Today().Format(time.DateOnly), MaxAcuses: MaxAcuses}

	if r.Method == http.MethodGet {
		a, err := h.autoridades.FindAutoridad(r.Context(), e.AutoridadID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if err := h.sys.Eligibility(a, h.sys.Policies().Notaria); err != nil {
			h.refused(w, r, err, h.path("/edictos"))
			return
		}
		if err := h.sys.CanEdit(auth.FromContext(r.Context()), e); err != nil {
			h.refused(w, r, err, h.refusalTarget(err, e.ID))
			return
		}

		acuses, err := h.sys.Acuses(r.Context(), e.ID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		page.Autoridad = a
		page.Form.Descripcion = e.Descripcion
		page.Form.Fechas[0] = e.Fecha.Format(time.DateOnly)
		for i, ac := range acuses {
			if i+1 >= MaxAcuses {
				break
			}
			page.Form.Fechas[i+1] = ac.Fecha.Format(time.DateOnly)
		}
		h.render(w, r, http.StatusOK, ViewEdit, "", page)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.fail(w, r, err)
		return
	}
	form := EditForm{Descripcion: r.PostForm.Get("descripcion")}
	page.Form.Descripcion = form.Descripcion
	page.Form.Fechas[0] = e.Fecha.Format(time.DateOnly)
	for i := 1; i < MaxAcuses; i++ {
		text := r.PostForm.Get(fmt.Sprintf("fecha_acuse_%d", i+1))
		form.Fechas[i] = Text(text)
		page.Form.Fechas[i] = text
	}

	out, err := h.sys.Edit(r.Context(), auth.FromContext(r.Context()), id, form)
	if err != nil {
		var ve *ValidationError
		var rf *Refusal
		switch {
		case errors.As(err, &ve):
			h.render(w, r, http.StatusUnprocessableEntity, ViewEdit, "", page, warnings(ve.Warnings)...)
		case errors.As(err, &rf):
			h.refused(w, r, err, h.refusalTarget(err, id))
		default:
			h.fail(w, r, err)
		}
		return
	}
	h.redirect(w, r, h.path(fmt.Sprintf("/edictos/%d", out.Edicto.ID)), out.Messages...)
}

// Deactivate sets a notice inactive.
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.sys.Deactivate)
}

// Recover sets an inactive notice active again.
func (h *Handler) Recover(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.sys.Recover)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, p *auth.Principal, id int64) (*Outcome, error)) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	detail := h.path(fmt.Sprintf("/edictos/%d", id))

	out, err := fn(r.Context(), auth.FromContext(r.Context()), id)
	if err != nil {
		var rf *Refusal
		if errors.As(err, &rf) {
			h.refused(w, r, err, detail)
			return
		}
		h.fail(w, r, err)
		return
	}
	h.redirect(w, r, detail, out.Messages...)
}

// Download streams the stored file a URL points to.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	f, err := h.sys.Download(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		text := msgArchivoError
		if storage.IsMissing(err) {
			text = msgArchivoNoEncontrado
		}
		h.logger.Warn("download failed", "error", err)
		h.redirect(w, r, h.path("/edictos"), flash.Message{Level: flash.Warning, Text: text})
		return
	}
	defer f.Body.Close()

	w.Header().Set("Content-Type", f.MediaType)
	if _, err := io.Copy(w, f.Body); err != nil {
		h.logger.Error("download copy failed", "name", f.Name, "error", err)
	}
}

// ViewPDF streams the stored file of a notice inline.
func (h *Handler) ViewPDF(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	body, err := h.sys.OpenPDF(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/pdf")
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Error("pdf copy failed", "id", id, "error", err)
	}
}

// Export writes the filtered admin listing as a spreadsheet.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	filters := FiltersFromValues(r.URL.Query(), h.sys.Now())

	list, err := h.sys.Export(r.Context(), filters)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, list, h.sys.Location()); err != nil {
		h.fail(w, r, err)
		return
	}

	name := fmt.Sprintf("edictos-%s.xlsx", h.sys.Today().Format(time.DateOnly))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	handlers.RespondBytes(w, http.StatusOK, mediaTypeXLSX, buf.Bytes())
}

const mediaTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Print renders the acknowledgement receipt of a notice, or of one of its
// republications when an acuse id is given.
func (h *Handler) Print(w http.ResponseWriter, r *http.Request) {
	id, err := h.sys.DecodeID(r.PathValue("hashed_id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	e, err := h.sys.Find(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	page := printPage{Edicto: e}
	creado := e.Creado.In(h.sys.Location())
	page.Dia, page.Mes, page.Anio = creado.Day(), storage.MonthName(creado.Month()), creado.Year()

	if raw := r.PathValue("acuse_id"); raw != "" {
		acuseID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.fail(w, r, ErrAcuseNotFound)
			return
		}
		ac, err := h.sys.FindAcuse(r.Context(), e.ID, acuseID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		page.FechaDelAcuse = &ac.Fecha
	}

	h.render(w, r, http.StatusOK, ViewPrint, "", page)
}

func (h *Handler) readNewForm(w http.ResponseWriter, r *http.Request) (NewForm, Upload, formValues, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return NewForm{}, Upload{}, formValues{}, &ValidationError{Warnings: []string{
				"El archivo excede el tamaño máximo de " + formatting.FormatBytes(tooLarge.Limit, 0) + ".",
			}}
		}
		return NewForm{}, Upload{}, formValues{}, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}

	values := formValues{
		Descripcion:       r.PostForm.Get("descripcion"),
		AcuseNum:          r.PostForm.Get("acuse_num"),
		Fecha:             r.PostForm.Get("fecha"),
		Expediente:        r.PostForm.Get("expediente"),
		NumeroPublicacion: r.PostForm.Get("numero_publicacion"),
	}
	form := NewForm{
		Descripcion:       values.Descripcion,
		AcuseNum:          values.AcuseNum,
		Fecha:             Text(values.Fecha),
		Expediente:        values.Expediente,
		NumeroPublicacion: values.NumeroPublicacion,
	}
	for i := range MaxAcuses {
		values.Fechas[i] = r.PostForm.Get(fmt.Sprintf("fecha_acuse_%d", i+1))
		form.Fechas[i] = Text(values.Fechas[i])
	}

	var upload Upload
	file, header, err := r.FormFile("archivo")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		return form, upload, values, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	default:
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return form, upload, values, fmt.Errorf("read upload: %w", err)
		}
		upload = Upload{Filename: header.Filename, Data: data}
	}

	return form, upload, values, nil
}

// formError re-renders a creation form whose request body was rejected.
func (h *Handler) formError(w http.ResponseWriter, r *http.Request, err error, view string, page formPage) {
	var ve *ValidationError
	if !errors.As(err, &ve) {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusRequestEntityTooLarge, view, "", page, warnings(ve.Warnings)...)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		h.fail(w, r, ErrInvalidID)
		return 0, false
	}
	return id, true
}

func (h *Handler) path(p string) string {
	return h.pages.BasePath() + p
}

// refusalTarget sends ownership refusals to the listing and expired windows
// back to the notice.
func (h *Handler) refusalTarget(err error, id int64) string {
	if errors.Is(err, ErrExpired) || errors.Is(err, ErrInvalidState) {
		return h.path(fmt.Sprintf("/edictos/%d", id))
	}
	return h.path("/edictos")
}

func (h *Handler) refused(w http.ResponseWriter, r *http.Request, err error, target string) {
	var rf *Refusal
	if !errors.As(err, &rf) {
		h.fail(w, r, err)
		return
	}
	h.redirect(w, r, target, flash.Message{Level: flash.Warning, Text: rf.Message})
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, target string, msgs ...flash.Message) {
	if len(msgs) > 0 {
		if err := h.flash.Add(w, r, msgs...); err != nil {
			h.logger.Error("flash add failed", "error", err)
		}
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, view, title string, data any, extra ...flash.Message) {
	vd := web.ViewData{
		Title:     title,
		Flashes:   append(h.flash.Pop(w, r), extra...),
		Principal: auth.FromContext(r.Context()),
		Data:      data,
	}
	if err := h.pages.Render(w, status, view, vd); err != nil {
		h.logger.Error("render failed", "view", view, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := MapHTTPStatus(err)
	if errors.Is(err, autoridades.ErrNotFound) || errors.Is(err, autoridades.ErrDistritoNotFound) {
		status = http.StatusNotFound
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "uri", r.RequestURI, "status", status, "error", err)
	} else {
		h.logger.Warn("request failed", "uri", r.RequestURI, "status", status, "error", err)
	}

	text := msgAutoridadNoExiste
	if !errors.Is(err, autoridades.ErrNotFound) {
		text = http.StatusText(status)
	}
	vd := web.ViewData{
		Title:     http.StatusText(status),
		Principal: auth.FromContext(r.Context()),
		Data:      text,
	}
	if rerr := h.pages.Render(w, status, ViewError, vd); rerr != nil {
		http.Error(w, text, status)
	}
}

func warnings(texts []string) []flash.Message {
	msgs := make([]flash.Message, len(texts))
	for i, t := range texts {
		msgs[i] = flash.Message{Level: flash.Warning, Text: t}
	}
	return msgs
}
