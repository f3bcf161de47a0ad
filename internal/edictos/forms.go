package edictos

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pjecz/portal-notarias/pkg/safestring"
)

const (
	MsgDescripcion        = "La descripción es incorrecta."
	MsgAcuseNumInvalido   = "Especificar una cantidad publicaciones válida."
	MsgAcuseNumRango      = "Especificar una cantidad de publicaciones entre 1 y 5."
	MsgFaltaFecha         = "Falta una de las fechas de publicación."
	MsgFechaPasada        = "La fecha de publicación no puede ser del pasado."
	MsgFechaFutura        = "Solo se permiten fechas de publicación hasta un mes en el futuro."
	MsgTipoArchivo        = "Tipo de archivo no permitido o desconocido."
	MsgExpediente         = "El expediente es incorrecto."
	MsgExpedienteVacio    = "El expediente es requerido."
	MsgNumeroPublicacion  = "El número de publicación es incorrecto."
	MsgNumeroPublicVacio  = "El número de publicación es requerido."
	MsgAlmacenamiento     = "Error al subir el archivo porque falla la configuración del almacenamiento."
	MsgRegistrosAjenos    = "No puede editar registros ajenos."
	MsgEliminarAjenos     = "No puede eliminar registros ajenos."
	MsgRecuperarAjenos    = "No puede recuperar registros ajenos."
	MsgYaEliminado        = "El edicto ya está eliminado."
	MsgNoEliminado        = "El edicto no está eliminado."
	MsgEdictoNoEncontrado = "El edicto no existe."
)

// NewForm is a submitted creation form. The self-service form uses AcuseNum and
// Fechas; the admin-assisted form uses Fecha, Expediente and NumeroPublicacion.
type NewForm struct {
	Descripcion       string
	AcuseNum          string
	Fechas            AcuseDates
	Fecha             *DateInput
	Expediente        string
	NumeroPublicacion string
}

// EditForm is a submitted edit form. The first slot of Fechas is ignored:
// the notice's own date never changes.
type EditForm struct {
	Descripcion string
	Fechas      AcuseDates
}

func msgFechaInvalida(slot int) string {
	return fmt.Sprintf("Fecha de publicación %d no válida.", slot)
}

func msgFechaAdmin(days int) string {
	return fmt.Sprintf("La fecha no debe ser del futuro ni anterior a %d días.", days)
}

func msgPlazo(verbo string, days int) string {
	unidad := "día"
	if days != 1 {
		unidad = "días"
	}
	return fmt.Sprintf("Ya no puede %s porque fue creado hace más de %d %s.", verbo, days, unidad)
}

// schedule resolves the self-service publication dates: n slots, empty slots
// meaning today, and n == 1 meaning only today.
func schedule(form NewForm, today time.Time, v *ValidationError) []time.Time {
	n, err := strconv.Atoi(strings.TrimSpace(form.AcuseNum))
	if err != nil {
		v.add(MsgAcuseNumInvalido)
		return nil
	}
	if n < 1 || n > MaxAcuses {
		v.add(MsgAcuseNumRango)
		return nil
	}
	if n == 1 {
		return []time.Time{today}
	}

	dates := make([]time.Time, 0, n)
	for i := range n {
		slot := form.Fechas[i]
		if slot.Empty() {
			dates = append(dates, today)
			continue
		}
		d, err := slot.Resolve()
		if err != nil {
			v.add(msgFechaInvalida(i + 1))
			return nil
		}
		dates = append(dates, d)
	}
	return dates
}

// republications resolves the edit slots after the first, skipping empty ones.
func republications(form EditForm, fecha time.Time, v *ValidationError) []time.Time {
	dates := []time.Time{fecha}
	for i := 1; i < MaxAcuses; i++ {
		slot := form.Fechas[i]
		if slot.Empty() {
			continue
		}
		d, err := slot.Resolve()
		if err != nil {
			v.add(msgFechaInvalida(i + 1))
			return nil
		}
		dates = append(dates, d)
	}
	return dates
}

// checkWindow requires every date within [from, from + forwardDays]. The
// first date missing or in the past stops the check; dates too far ahead
// are all reported, as one message.
func checkWindow(dates []time.Time, from time.Time, forwardDays int, v *ValidationError) {
	limit := from.AddDate(0, 0, forwardDays)
	for _, d := range dates {
		if d.IsZero() {
			v.add(MsgFaltaFecha)
			return
		}
		if d.Before(from) {
			v.add(MsgFechaPasada)
			return
		}
		if d.After(limit) {
			v.add(MsgFechaFutura)
		}
	}
}

// adminFecha resolves the admin-assisted date within [today - days, today].
func adminFecha(slot *DateInput, today time.Time, days int, v *ValidationError) time.Time {
	if slot.Empty() {
		v.add(msgFechaAdmin(days))
		return today
	}
	d, err := slot.Resolve()
	if err != nil || d.Before(today.AddDate(0, 0, -days)) || d.After(today) {
		v.add(msgFechaAdmin(days))
		return today
	}
	return d
}

// caseData normalizes the admin-assisted expediente and publication number,
// reporting emptiness and bad format with distinct messages.
func caseData(form NewForm, now time.Time, v *ValidationError) (string, string) {
	expediente, err := safestring.Expediente(form.Expediente, now)
	switch {
	case errors.Is(err, safestring.ErrEmpty):
		v.add(MsgExpedienteVacio)
	case err != nil:
		v.add(MsgExpediente)
	}

	numero, err := safestring.NumeroPublicacion(form.NumeroPublicacion, now)
	switch {
	case errors.Is(err, safestring.ErrEmpty):
		v.add(MsgNumeroPublicVacio)
	case err != nil:
		v.add(MsgNumeroPublicacion)
	}
	return expediente, numero
}

// acusesAfter keeps the dates that differ from fecha, in order.
func acusesAfter(dates []time.Time, fecha time.Time) []time.Time {
	out := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		if !d.Equal(fecha) {
			out = append(out, d)
		}
	}
	return out
}
