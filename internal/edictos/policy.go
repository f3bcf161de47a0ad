package edictos

import (
	"fmt"

	"github.com/pjecz/portal-notarias/internal/autoridades"
)

// Rule is one eligibility precondition on the filing authority.
type Rule struct {
	Holds   func(a *autoridades.Autoridad) bool
	Message string
}

// Policy parametrizes notice creation.
//
// A self-service policy schedules up to five publication dates starting today
// and always files publication number "1". An admin-assisted policy takes a
// single date up to BackdateDays in the past and requires the case file and
// publication numbers.
type Policy struct {
	Name  string
	Rules []Rule

	// BackdateDays > 0 selects the admin-assisted form.
	BackdateDays      int
	DescripcionMaxLen int
	KeepEnie          bool
	// UnexpectedUpload builds the message shown when the store fails in an unrecognized way.
	UnexpectedUpload func(err error) string
}

// AdminAssisted reports whether the policy takes an explicit date and case data.
func (p Policy) AdminAssisted() bool {
	return p.BackdateDays > 0
}

// Policies are the two creation policies the portal serves.
type Policies struct {
	Notaria   Policy
	Autoridad Policy
}

func activa(a *autoridades.Autoridad) bool         { return a.Activa() }
func judicial(a *autoridades.Autoridad) bool       { return a.Distrito.EsDistritoJudicial }
func notaria(a *autoridades.Autoridad) bool        { return a.EsNotaria }
func jurisdiccional(a *autoridades.Autoridad) bool { return a.EsJurisdiccional }
func directorio(a *autoridades.Autoridad) bool     { return a.TieneDirectorio() }

// NotariaPolicy is the self-service policy for notary offices.
func NotariaPolicy() Policy {
	return Policy{
		Name: "notaria",
		Rules: []Rule{
			{activa, "La Notaria no es activa."},
			{judicial, "El Distrito no es jurisdiccional."},
			{notaria, "La Notarias no tiene en verdadero el boleano que lo define como notaria."},
			{directorio, "La Notaria no tiene directorio para edictos."},
		},
		DescripcionMaxLen: 64,
		KeepEnie:          true,
		UnexpectedUpload: func(err error) string {
			return fmt.Sprintf("Error inesperado: %v", err)
		},
	}
}

// AutoridadPolicy is the admin-assisted policy for courts.
func AutoridadPolicy(backdateDays int) Policy {
	return Policy{
		Name: "autoridad",
		Rules: []Rule{
			{activa, "El juzgado/autoridad no es activa."},
			{judicial, "El juzgado/autoridad no está en un distrito jurisdiccional."},
			{jurisdiccional, "El juzgado/autoridad no es jurisdiccional."},
			{directorio, "El juzgado/autoridad no tiene directorio para edictos."},
		},
		BackdateDays: backdateDays,
		UnexpectedUpload: func(error) string {
			return "Error desconocido al subir el archivo."
		},
	}
}

// Check returns a *Refusal naming the first rule a fails.
func (p Policy) Check(a *autoridades.Autoridad) error {
	for _, r := range p.Rules {
		if !r.Holds(a) {
			return refuse(ErrNotEligible, r.Message)
		}
	}
	return nil
}
