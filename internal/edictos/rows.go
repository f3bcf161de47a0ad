package edictos

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Detalle is the description cell of a listing row.
type Detalle struct {
	Descripcion string `json:"descripcion"`
	URL         string `json:"url,omitempty"`
}

// Archivo is the file cell of a listing row.
type Archivo struct {
	DescargarURL string `json:"descargar_url"`
}

// PublicRow is one row of the public listing.
type PublicRow struct {
	Fecha             string  `json:"fecha"`
	Detalle           Detalle `json:"detalle"`
	Expediente        string  `json:"expediente"`
	NumeroPublicacion string  `json:"numero_publicacion"`
	Archivo           Archivo `json:"archivo"`
}

// AdminRow is one row of the admin listing.
type AdminRow struct {
	Creado            string  `json:"creado"`
	Autoridad         string  `json:"autoridad"`
	Fecha             string  `json:"fecha"`
	Detalle           Detalle `json:"detalle"`
	Expediente        string  `json:"expediente"`
	NumeroPublicacion string  `json:"numero_publicacion"`
	Archivo           Archivo `json:"archivo"`
}

// PublicRowMapper builds public rows. Only original notices link to their detail
// page; the file link points at the public download site.
func PublicRowMapper(basePath, publicDownloadURL string) func(Edicto) PublicRow {
	return func(e Edicto) PublicRow {
		row := PublicRow{
			Fecha:             e.Fecha.Format(time.DateTime),
			Detalle:           Detalle{Descripcion: e.Descripcion},
			Expediente:        e.Expediente,
			NumeroPublicacion: e.NumeroPublicacion,
			Archivo:           Archivo{DescargarURL: publicDownloadURL + strconv.FormatInt(e.ID, 10)},
		}
		if e.EsOriginal() {
			row.Detalle.URL = detailURL(basePath, e.ID)
		}
		return row
	}
}

// AdminRowMapper builds admin rows, whose file link goes through the portal download.
func AdminRowMapper(basePath string, loc *time.Location) func(Edicto) AdminRow {
	return func(e Edicto) AdminRow {
		return AdminRow{
			Creado:            e.Creado.In(loc).Format(time.DateTime),
			Autoridad:         e.AutoridadClave,
			Fecha:             e.Fecha.Format(time.DateTime),
			Detalle:           Detalle{Descripcion: e.Descripcion, URL: detailURL(basePath, e.ID)},
			Expediente:        e.Expediente,
			NumeroPublicacion: e.NumeroPublicacion,
			Archivo:           Archivo{DescargarURL: basePath + "/edictos/descargar?url=" + url.QueryEscape(e.URL)},
		}
	}
}

func detailURL(basePath string, id int64) string {
	return fmt.Sprintf("%s/edictos/%d", basePath, id)
}
