package autoridades

import (
	"github.com/pjecz/portal-notarias/pkg/query"
	"github.com/pjecz/portal-notarias/pkg/repository"
)

func autoridadProjection(schema string) *query.ProjectionMap {
	return query.
		NewProjectionMap(schema, "autoridades", "a").
		Project("id", "ID").
		Project("distrito_id", "DistritoID").
		Project("clave", "Clave").
		Project("descripcion", "Descripcion").
		Project("descripcion_corta", "DescripcionCorta").
		Project("es_jurisdiccional", "EsJurisdiccional").
		Project("es_notaria", "EsNotaria").
		Project("directorio_edictos", "DirectorioEdictos").
		Project("estatus", "Estatus").
		Join(schema, "distritos", "d", "INNER JOIN", "d.id = a.distrito_id").
		Project("nombre", "DistritoNombre").
		Project("nombre_corto", "DistritoNombreCorto").
		Project("es_distrito_judicial", "DistritoEsJudicial").
		Project("estatus", "DistritoEstatus")
}

func distritoProjection(schema string) *query.ProjectionMap {
	return query.
		NewProjectionMap(schema, "distritos", "d").
		Project("id", "ID").
		Project("nombre", "Nombre").
		Project("nombre_corto", "NombreCorto").
		Project("es_distrito_judicial", "EsDistritoJudicial").
		Project("estatus", "Estatus")
}

func scanAutoridad(s repository.Scanner) (Autoridad, error) {
	var a Autoridad
	var directorio *string
	err := s.Scan(
		&a.ID,
		&a.DistritoID,
		&a.Clave,
		&a.Descripcion,
		&a.DescripcionCorta,
		&a.EsJurisdiccional,
		&a.EsNotaria,
		&directorio,
		&a.Estatus,
		&a.Distrito.Nombre,
		&a.Distrito.NombreCorto,
		&a.Distrito.EsDistritoJudicial,
		&a.Distrito.Estatus,
	)
	if directorio != nil {
		a.DirectorioEdictos = *directorio
	}
	a.Distrito.ID = a.DistritoID
	return a, err
}

func scanDistrito(s repository.Scanner) (Distrito, error) {
	var d Distrito
	err := s.Scan(
		&d.ID,
		&d.Nombre,
		&d.NombreCorto,
		&d.EsDistritoJudicial,
		&d.Estatus,
	)
	return d, err
}
