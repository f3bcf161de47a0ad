package edictos

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pjecz/portal-notarias/pkg/query"
	"github.com/pjecz/portal-notarias/pkg/repository"
	"github.com/pjecz/portal-notarias/pkg/safestring"
)

func edictoProjection(schema string) *query.ProjectionMap {
	return query.
		NewProjectionMap(schema, "edictos", "e").
		Project("id", "ID").
		Project("autoridad_id", "AutoridadID").
		Project("fecha", "Fecha").
		Project("descripcion", "Descripcion").
		Project("expediente", "Expediente").
		Project("numero_publicacion", "NumeroPublicacion").
		Project("archivo", "Archivo").
		Project("url", "URL").
		Project("acuse_num", "AcuseNum").
		Project("edicto_id_original", "EdictoIDOriginal").
		Project("paginas", "Paginas").
		Project("estatus", "Estatus").
		Project("creado", "Creado").
		Project("modificado", "Modificado").
		Join(schema, "autoridades", "a", "INNER JOIN", "a.id = e.autoridad_id").
		Project("clave", "AutoridadClave").
		Project("descripcion", "AutoridadDescripcion")
}

func acuseProjection(schema string) *query.ProjectionMap {
	return query.
		NewProjectionMap(schema, "edictos_acuses", "ea").
		Project("id", "ID").
		Project("edicto_id", "EdictoID").
		Project("fecha", "Fecha").
		Project("creado", "Creado")
}

var defaultSort = []query.SortField{
	{Field: "Fecha", Descending: true},
	{Field: "ID", Descending: true},
}

func scanEdicto(s repository.Scanner) (Edicto, error) {
	var e Edicto
	var estatus string
	err := s.Scan(
		&e.ID,
		&e.AutoridadID,
		&e.Fecha,
		&e.Descripcion,
		&e.Expediente,
		&e.NumeroPublicacion,
		&e.Archivo,
		&e.URL,
		&e.AcuseNum,
		&e.EdictoIDOriginal,
		&e.Paginas,
		&estatus,
		&e.Creado,
		&e.Modificado,
		&e.AutoridadClave,
		&e.AutoridadDescripcion,
	)
	e.Estatus = Estatus(estatus)
	return e, err
}

func scanAcuse(s repository.Scanner) (Acuse, error) {
	var a Acuse
	err := s.Scan(&a.ID, &a.EdictoID, &a.Fecha, &a.Creado)
	return a, err
}

// Filters narrows a listing. Nil fields are ignored.
type Filters struct {
	Estatus           Estatus
	AutoridadID       *int64
	FechaDesde        *time.Time
	FechaHasta        *time.Time
	Descripcion       *string
	NumeroPublicacion *string
	Expediente        *string
}

// Apply adds filter conditions to a query builder.
//
// The public view matches Descripcion as a literal substring. The admin view
// passes it as a LIKE pattern, so operators may type % and _ wildcards.
func (f Filters) Apply(b *query.Builder, view View) *query.Builder {
	estatus := f.Estatus
	if estatus != Baja {
		estatus = Activo
	}

	b.WhereEquals("Estatus", string(estatus)).
		WhereEquals("AutoridadID", f.AutoridadID).
		WhereGTE("Fecha", f.FechaDesde).
		WhereLTE("Fecha", f.FechaHasta).
		WhereSubstring("NumeroPublicacion", f.NumeroPublicacion).
		WhereEquals("Expediente", f.Expediente)

	if view == ViewAdmin {
		return b.WhereLike("Descripcion", f.Descripcion)
	}
	return b.WhereSubstring("Descripcion", f.Descripcion)
}

// FiltersFromValues reads listing filters from form or query values.
// Unparsable values are ignored, as is an expediente that does not normalize.
func FiltersFromValues(values url.Values, now time.Time) Filters {
	f := Filters{Estatus: Activo}

	if values.Get("estatus") == string(Baja) {
		f.Estatus = Baja
	}

	if v := values.Get("autoridad_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.AutoridadID = &id
		}
	}

	if v := values.Get("fecha_desde"); v != "" {
		if d, err := time.Parse(time.DateOnly, v); err == nil {
			f.FechaDesde = &d
		}
	}

	if v := values.Get("fecha_hasta"); v != "" {
		if d, err := time.Parse(time.DateOnly, v); err == nil {
			f.FechaHasta = &d
		}
	}

	if v := values.Get("descripcion"); v != "" {
		if s := safestring.String(v, safestring.Options{KeepEnie: true}); s != "" {
			f.Descripcion = &s
		}
	}

	if v := strings.TrimSpace(values.Get("numero_publicacion")); v != "" {
		f.NumeroPublicacion = &v
	}

	if v := values.Get("expediente"); v != "" {
		if s, err := safestring.Expediente(v, now); err == nil {
			f.Expediente = &s
		}
	}

	return f
}
