// Package autoridades reads the authorities (courts and notary offices) and
// judicial districts that notices are filed under. The portal never writes
// this reference data.
package autoridades

import "context"

// Distrito is a judicial district.
type Distrito struct {
	ID                 int64  `json:"id"`
	Nombre             string `json:"nombre"`
	NombreCorto        string `json:"nombre_corto"`
	EsDistritoJudicial bool   `json:"es_distrito_judicial"`
	Estatus            string `json:"estatus"`
}

// Autoridad is a court or notary office.
type Autoridad struct {
	ID                int64    `json:"id"`
	DistritoID        int64    `json:"distrito_id"`
	Distrito          Distrito `json:"distrito"`
	Clave             string   `json:"clave"`
	Descripcion       string   `json:"descripcion"`
	DescripcionCorta  string   `json:"descripcion_corta"`
	EsJurisdiccional  bool     `json:"es_jurisdiccional"`
	EsNotaria         bool     `json:"es_notaria"`
	DirectorioEdictos string   `json:"directorio_edictos"`
	Estatus           string   `json:"estatus"`
}

// Activa reports whether the authority is active.
func (a *Autoridad) Activa() bool {
	return a.Estatus == "A"
}

// TieneDirectorio reports whether an upload directory is configured.
func (a *Autoridad) TieneDirectorio() bool {
	return a.DirectorioEdictos != ""
}

// Titulo is the heading used on listing pages.
func (a *Autoridad) Titulo() string {
	return a.Distrito.NombreCorto + ", " + a.DescripcionCorta
}

// System defines read access to authorities and districts.
type System interface {
	FindAutoridad(ctx context.Context, id int64) (*Autoridad, error)
	// ListAutoridades returns the active jurisdictional authorities of a district ordered by clave.
	ListAutoridades(ctx context.Context, distritoID int64) ([]Autoridad, error)
	FindDistrito(ctx context.Context, id int64) (*Distrito, error)
	// ListDistritos returns the active judicial districts ordered by nombre.
	ListDistritos(ctx context.Context) ([]Distrito, error)
}
