package edictos_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/pjecz/portal-notarias/internal/edictos"
	"github.com/pjecz/portal-notarias/pkg/flash"
	"github.com/pjecz/portal-notarias/pkg/pagination"
	"github.com/pjecz/portal-notarias/pkg/storage"
)

func TestCreateRejectsAcuseNumOutOfRange(t *testing.T) {
	tests := []struct {
		acuseNum string
		want     string
	}{
		{"0", edictos.MsgAcuseNumRango},
		{"6", edictos.MsgAcuseNumRango},
		{"-1", edictos.MsgAcuseNumRango},
		{"99", edictos.MsgAcuseNumRango},
		{"tres", edictos.MsgAcuseNumInvalido},
		{"", edictos.MsgAcuseNumInvalido},
	}

	for _, tt := range tests {
		t.Run(tt.acuseNum, func(t *testing.T) {
			h := newHarness(t)
			_, err := h.sys.Create(context.Background(), notario(notariaID), h.autoridad(notariaID), h.sys.Policies().Notaria,
				edictos.NewForm{Descripcion: "Edicto", AcuseNum: tt.acuseNum}, pdf)

			if got := warningsOf(t, err); !slices.Contains(got, tt.want) {
				t.Errorf("warnings = %v, want %q", got, tt.want)
			}
			if len(h.store.edictos) != 0 {
				t.Error("rejected form must not store a notice")
			}
			if len(h.blobs.keys()) != 0 {
				t.Error("rejected form must not upload")
			}
		})
	}
}

func TestCreateDateWindow(t *testing.T) {
	tests := []struct {
		name    string
		fechas  edictos.AcuseDates
		want    string
		wantErr bool
	}{
		{
			name:    "yesterday",
			fechas:  edictos.AcuseDates{edictos.Date(today), edictos.Date(dayOffset(-1))},
			want:    edictos.MsgFechaPasada,
			wantErr: true,
		},
		{
			name:    "typed past date",
			fechas:  edictos.AcuseDates{edictos.Text("2026-03-09"), edictos.Text("2026-03-12")},
			want:    edictos.MsgFechaPasada,
			wantErr: true,
		},
		{
			name:    "thirty one days ahead",
			fechas:  edictos.AcuseDates{edictos.Date(today), edictos.Date(dayOffset(31))},
			want:    edictos.MsgFechaFutura,
			wantErr: true,
		},
		{
			name:   "thirty days ahead",
			fechas: edictos.AcuseDates{edictos.Date(today), edictos.Date(dayOffset(30))},
		},
		{
			name:    "bad text",
			fechas:  edictos.AcuseDates{edictos.Date(today), edictos.Text("20260312")},
			want:    "Fecha de publicación 2 no válida.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			_, err := h.sys.Create(context.Background(), notario(notariaID), h.autoridad(notariaID), h.sys.Policies().Notaria,
				edictos.NewForm{Descripcion: "Edicto", AcuseNum: "2", Fechas: tt.fechas}, pdf)

			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Create() error = %v", err)
				}
				return
			}
			if got := warningsOf(t, err); !slices.Contains(got, tt.want) {
				t.Errorf("warnings = %v, want %q", got, tt.want)
			}
		})
	}
}

func TestCreateFutureWarningOnce(t *testing.T) {
	h := newHarness(t)
	_, err := h.sys.Create(context.Background(), notario(notariaID), h.autoridad(notariaID), h.sys.Policies().Notaria,
		edictos.NewForm{
			Descripcion: "Edicto",
			AcuseNum:    "3",
			Fechas:      edictos.AcuseDates{edictos.Date(today), edictos.Date(dayOffset(40)), edictos.Date(dayOffset(50))},
		}, pdf)

	got := warningsOf(t, err)
	if len(got) != 1 || got[0] != edictos.MsgFechaFutura {
		t.Errorf("warnings = %v, want one future warning", got)
	}
}

func TestCreateSinglePublicationIsToday(t *testing.T) {
	h := newHarness(t)

	out := h.createNotaria(t, edictos.NewForm{
		Descripcion: "Edicto de prueba",
		AcuseNum:    "1",
		Fechas:      edictos.AcuseDates{edictos.Date(dayOffset(5))},
	})

	e := out.Edicto
	if !e.Fecha.Equal(today) {
		t.Errorf("Fecha = %v, want %v", e.Fecha, today)
	}
	if e.AcuseNum != 1 {
		t.Errorf("AcuseNum = %d, want 1", e.AcuseNum)
	}
	acuses, _ := h.sys.Acuses(context.Background(), e.ID)
	if len(acuses) != 0 {
		t.Errorf("got %d acuses, want none", len(acuses))
	}
}

func TestCreateThreePublications(t *testing.T) {
	h := newHarness(t)

	out := h.createNotaria(t, edictos.NewForm{
		Descripcion: "Edicto de prueba",
		AcuseNum:    "3",
		Fechas:      edictos.AcuseDates{edictos.Date(today), edictos.Date(dayOffset(5)), edictos.Date(dayOffset(10))},
	})

	e := out.Edicto
	if !e.Fecha.Equal(today) || e.AcuseNum != 3 || e.NumeroPublicacion != "1" {
		t.Errorf("edicto = %+v", e)
	}

	acuses, err := h.sys.Acuses(context.Background(), e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(acuses) != 2 {
		t.Fatalf("got %d acuses, want 2", len(acuses))
	}
	if !acuses[0].Fecha.Equal(dayOffset(5)) || !acuses[1].Fecha.Equal(dayOffset(10)) {
		t.Errorf("acuses = %v, %v", acuses[0].Fecha, acuses[1].Fecha)
	}
}

func TestCreateEmptySlotsMeanToday(t *testing.T) {
	h := newHarness(t)

	out := h.createNotaria(t, edictos.NewForm{
		Descripcion: "Edicto",
		AcuseNum:    "3",
		Fechas:      edictos.AcuseDates{nil, edictos.Text("  "), edictos.Text("15-03-2026")},
	})

	acuses, _ := h.sys.Acuses(context.Background(), out.Edicto.ID)
	if len(acuses) != 1 || !acuses[0].Fecha.Equal(dayOffset(5)) {
		t.Errorf("acuses = %+v, want one on 2026-03-15", acuses)
	}
	if out.Edicto.AcuseNum != 3 {
		t.Errorf("AcuseNum = %d, want 3", out.Edicto.AcuseNum)
	}
}

func TestCreateAcceptsUnpaddedDates(t *testing.T) {
	h := newHarness(t)

	out := h.createNotaria(t, edictos.NewForm{
		Descripcion: "Edicto",
		AcuseNum:    "2",
		Fechas:      edictos.AcuseDates{nil, edictos.Text("2026-3-15")},
	})

	acuses, _ := h.sys.Acuses(context.Background(), out.Edicto.ID)
	if len(acuses) != 1 || !acuses[0].Fecha.Equal(dayOffset(5)) {
		t.Errorf("acuses = %+v, want one on 2026-03-15", acuses)
	}
}

func TestCreateCommitsUpload(t *testing.T) {
	h := newHarness(t)

	out := h.createNotaria(t, edictos.NewForm{Descripcion: "Edicto de prueba", AcuseNum: "1"})

	if !out.Committed {
		t.Fatal("Committed = false")
	}
	e := out.Edicto
	if e.Estatus != edictos.Activo {
		t.Errorf("Estatus = %q, want A", e.Estatus)
	}

	hashed := h.sys.EncodeID(e.ID)
	wantArchivo := "2026-03-10-EDICTO-DE-PRUEBA-" + hashed + ".pdf"
	if e.Archivo != wantArchivo {
		t.Errorf("Archivo = %q, want %q", e.Archivo, wantArchivo)
	}
	wantKey := "Saltillo/Notaria 5/2026/MARZO/" + wantArchivo
	if keys := h.blobs.keys(); len(keys) != 1 || keys[0] != wantKey {
		t.Errorf("keys = %v, want %q", keys, wantKey)
	}
	if e.URL != blobBase+wantKey {
		t.Errorf("URL = %q", e.URL)
	}

	rec := h.bitacoras.last()
	if rec.Descripcion != "Nuevo edicto fecha 2026-03-10 de SLT-NOT-5" {
		t.Errorf("bitacora = %q", rec.Descripcion)
	}
	if rec.URL != fmt.Sprintf("/edictos/%d", e.ID) || rec.UsuarioEmail != "notario@pjecz.gob.mx" {
		t.Errorf("bitacora = %+v", rec)
	}
	if len(out.Messages) != 1 || out.Messages[0].Level != flash.Success || out.Messages[0].Text != rec.Descripcion {
		t.Errorf("messages = %+v", out.Messages)
	}
}

func TestCreateDescription(t *testing.T) {
	h := newHarness(t)

	out := h.createNotaria(t, edictos.NewForm{Descripcion: "  Sucesión de  José Peña ", AcuseNum: "1"})
	if out.Edicto.Descripcion != "SUCESION DE JOSE PEÑA" {
		t.Errorf("Descripcion = %q", out.Edicto.Descripcion)
	}

	_, err := h.sys.Create(context.Background(), notario(notariaID), h.autoridad(notariaID), h.sys.Policies().Notaria,
		edictos.NewForm{Descripcion: "¡¿?!", AcuseNum: "1"}, pdf)
	if got := warningsOf(t, err); !slices.Contains(got, edictos.MsgDescripcion) {
		t.Errorf("warnings = %v", got)
	}
}

func TestCreateRejectsFileType(t *testing.T) {
	h := newHarness(t)

	_, err := h.sys.Create(context.Background(), notario(notariaID), h.autoridad(notariaID), h.sys.Policies().Notaria,
		edictos.NewForm{Descripcion: "Edicto", AcuseNum: "1"},
		edictos.Upload{Filename: "edicto.docx", Data: []byte("x")})

	if got := warningsOf(t, err); !slices.Contains(got, edictos.MsgTipoArchivo) {
		t.Errorf("warnings = %v", got)
	}
	if len(h.store.edictos) != 0 {
		t.Error("nothing should be stored")
	}
}

func TestCreateUploadFailureKeepsInactiveRecord(t *testing.T) {
	tests := []struct {
		name      string
		uploadErr error
		policy    func(edictos.Policies) edictos.Policy
		wantLevel flash.Level
		wantText  string
	}{
		{
			name:      "unknown extension",
			uploadErr: fmt.Errorf("upload: %w", storage.ErrUnknownExtension),
			policy:    func(p edictos.Policies) edictos.Policy { return p.Notaria },
			wantLevel: flash.Warning,
			wantText:  edictos.MsgTipoArchivo,
		},
		{
			name:      "not allowed extension",
			uploadErr: storage.ErrNotAllowedExtension,
			policy:    func(p edictos.Policies) edictos.Policy { return p.Notaria },
			wantLevel: flash.Warning,
			wantText:  edictos.MsgTipoArchivo,
		},
		{
			name:      "not configured",
			uploadErr: storage.ErrNotConfigured,
			policy:    func(p edictos.Policies) edictos.Policy { return p.Notaria },
			wantLevel: flash.Danger,
			wantText:  edictos.MsgAlmacenamiento,
		},
		{
			name:      "unexpected self-service",
			uploadErr: errors.New("connection reset"),
			policy:    func(p edictos.Policies) edictos.Policy { return p.Notaria },
			wantLevel: flash.Danger,
			wantText:  "Error inesperado: connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.blobs.uploadErr = tt.uploadErr

			out, err := h.sys.Create(context.Background(), notario(notariaID), h.autoridad(notariaID), tt.policy(h.sys.Policies()),
				edictos.NewForm{Descripcion: "Edicto", AcuseNum: "1"}, pdf)
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}

			if out.Committed {
				t.Error("Committed = true")
			}
			stored, err := h.store.Find(context.Background(), out.Edicto.ID)
			if err != nil {
				t.Fatal(err)
			}
			if stored.Estatus != edictos.Baja || stored.Archivo != "" || stored.URL != "" {
				t.Errorf("stored = %+v, want inactive without file", stored)
			}
			if len(out.Messages) != 1 || out.Messages[0].Level != tt.wantLevel || out.Messages[0].Text != tt.wantText {
				t.Errorf("messages = %+v", out.Messages)
			}
			if len(h.bitacoras.records) != 0 {
				t.Error("failed upload must not be audited")
			}
		})
	}
}

func TestCreateCommitFailureUnwinds(t *testing.T) {
	h := newHarness(t)
	h.store.finalizeErr = errors.New("connection lost")

	_, err := h.sys.Create(context.Background(), notario(notariaID), h.autoridad(notariaID), h.sys.Policies().Notaria,
		edictos.NewForm{Descripcion: "Edicto", AcuseNum: "1"}, pdf)
	if err == nil || !strings.Contains(err.Error(), "connection lost") {
		t.Fatalf("Create() error = %v, want commit failure", err)
	}

	stored, err := h.store.Find(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Estatus != edictos.Baja || stored.Archivo != "" || stored.URL != "" {
		t.Errorf("stored = %+v, want inactive without file", stored)
	}
	if keys := h.blobs.keys(); len(keys) != 0 {
		t.Errorf("blobs = %v, want uploaded file removed", keys)
	}
	if len(h.bitacoras.records) != 0 {
		t.Error("failed commit must not be audited")
	}
}

func TestCreateAdminUnexpectedUpload(t *testing.T) {
	h := newHarness(t)
	h.blobs.uploadErr = errors.New("boom")

	out, err := h.sys.Create(context.Background(), administrador(), h.autoridad(juzgadoID), h.sys.Policies().Autoridad,
		edictos.NewForm{
			Descripcion:       "Edicto",
			Fecha:             edictos.Date(today),
			Expediente:        "12/2025",
			NumeroPublicacion: "3/2026",
		}, pdf)
	if err != nil {
		t.Fatal(err)
	}
	if out.Messages[0].Text != "Error desconocido al subir el archivo." {
		t.Errorf("message = %q", out.Messages[0].Text)
	}
	if out.Edicto.Estatus != edictos.Baja {
		t.Errorf("Estatus = %q, want B", out.Edicto.Estatus)
	}
}

func TestCreateAdminAssisted(t *testing.T) {
	h := newHarness(t)

	out, err := h.sys.Create(context.Background(), administrador(), h.autoridad(juzgadoID), h.sys.Policies().Autoridad,
		edictos.NewForm{
			Descripcion:       "Juicio ordinario civil",
			Fecha:             edictos.Text("2026-02-28"),
			Expediente:        "123-2025",
			NumeroPublicacion: "45 2026",
		}, pdf)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	e := out.Edicto
	if !e.Fecha.Equal(dayOffset(-10)) || e.Expediente != "123/2025" || e.NumeroPublicacion != "45/2026" {
		t.Errorf("edicto = %+v", e)
	}
	if e.AcuseNum != 0 {
		t.Errorf("AcuseNum = %d, want 0", e.AcuseNum)
	}
	if !strings.HasPrefix(h.blobs.keys()[0], "Saltillo/Juzgado Primero Civil/2026/FEBRERO/2026-02-28-") {
		t.Errorf("key = %q", h.blobs.keys()[0])
	}

	want := "Nuevo edicto expediente 123/2025, número 45/2026, fecha 2026-02-28 de SLT-J1-CIV"
	if got := h.bitacoras.last().Descripcion; got != want {
		t.Errorf("bitacora = %q, want %q", got, want)
	}
}

func TestCreateAdminDateLimits(t *testing.T) {
	msg := "La fecha no debe ser del futuro ni anterior a 3650 días."

	tests := []struct {
		name  string
		fecha *edictos.DateInput
		ok    bool
	}{
		{"four thousand days ago", edictos.Date(dayOffset(-4000)), false},
		{"tomorrow", edictos.Date(dayOffset(1)), false},
		{"missing", nil, false},
		{"unreadable", edictos.Text("28/02/2026"), false},
		{"limit", edictos.Date(dayOffset(-3650)), true},
		{"today", edictos.Date(today), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			_, err := h.sys.Create(context.Background(), administrador(), h.autoridad(juzgadoID), h.sys.Policies().Autoridad,
				edictos.NewForm{
					Descripcion:       "Edicto",
					Fecha:             tt.fecha,
					Expediente:        "1/2010",
					NumeroPublicacion: "1/2010",
				}, pdf)

			if tt.ok {
				if err != nil {
					t.Fatalf("Create() error = %v", err)
				}
				return
			}
			if got := warningsOf(t, err); !slices.Contains(got, msg) {
				t.Errorf("warnings = %v, want %q", got, msg)
			}
		})
	}
}

func TestCreateAdminCaseData(t *testing.T) {
	tests := []struct {
		name       string
		expediente string
		numero     string
		want       []string
	}{
		{"both empty", "", "", []string{edictos.MsgExpedienteVacio, edictos.MsgNumeroPublicVacio}},
		{"bad expediente", "abc", "1/2026", []string{edictos.MsgExpediente}},
		{"future year", "1/2099", "1/2026", []string{edictos.MsgExpediente}},
		{"bad numero", "1/2026", "sin numero", []string{edictos.MsgNumeroPublicacion}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			_, err := h.sys.Create(context.Background(), administrador(), h.autoridad(juzgadoID), h.sys.Policies().Autoridad,
				edictos.NewForm{
					Descripcion:       "Edicto",
					Fecha:             edictos.Date(today),
					Expediente:        tt.expediente,
					NumeroPublicacion: tt.numero,
				}, pdf)

			got := warningsOf(t, err)
			if !slices.Equal(got, tt.want) {
				t.Errorf("warnings = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCreateEligibility(t *testing.T) {
	tests := []struct {
		name      string
		autoridad int64
		admin     bool
		want      string
	}{
		{"inactive notary", inactivaID, false, "La Notaria no es activa."},
		{"notary outside judicial district", fueraDistID, false, "El Distrito no es jurisdiccional."},
		{"court on self-service", juzgadoID, false, "La Notarias no tiene en verdadero el boleano que lo define como notaria."},
		{"notary on admin form", notariaID, true, "El juzgado/autoridad no es jurisdiccional."},
		{"court without directory", sinDirID, true, "El juzgado/autoridad no tiene directorio para edictos."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			policy := h.sys.Policies().Notaria
			if tt.admin {
				policy = h.sys.Policies().Autoridad
			}

			err := h.sys.Eligibility(h.autoridad(tt.autoridad), policy)
			var rf *edictos.Refusal
			if !errors.As(err, &rf) || !errors.Is(err, edictos.ErrNotEligible) {
				t.Fatalf("error = %v, want not-eligible refusal", err)
			}
			if rf.Message != tt.want {
				t.Errorf("message = %q, want %q", rf.Message, tt.want)
			}

			_, err = h.sys.Create(context.Background(), administrador(), h.autoridad(tt.autoridad), policy,
				edictos.NewForm{Descripcion: "Edicto", AcuseNum: "1"}, pdf)
			if !errors.Is(err, edictos.ErrNotEligible) {
				t.Errorf("Create() error = %v, want ErrNotEligible", err)
			}
		})
	}
}

func TestEditKeepsFecha(t *testing.T) {
	h := newHarness(t)
	created := h.createNotaria(t, edictos.NewForm{
		Descripcion: "Edicto",
		AcuseNum:    "2",
		Fechas:      edictos.AcuseDates{edictos.Date(today), edictos.Date(dayOffset(2))},
	})

	out, err := h.sys.Edit(context.Background(), notario(notariaID), created.Edicto.ID, edictos.EditForm{
		Descripcion: "Edicto corregido",
		Fechas: edictos.AcuseDates{
			edictos.Text("2020-01-01"),
			edictos.Date(dayOffset(3)),
			nil,
			edictos.Text("2026-03-20"),
		},
	})
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}

	e := out.Edicto
	if !e.Fecha.Equal(today) {
		t.Errorf("Fecha = %v, want unchanged %v", e.Fecha, today)
	}
	if e.Descripcion != "EDICTO CORREGIDO" || e.AcuseNum != 3 {
		t.Errorf("edicto = %+v", e)
	}

	acuses, _ := h.sys.Acuses(context.Background(), e.ID)
	if len(acuses) != 2 || !acuses[0].Fecha.Equal(dayOffset(3)) || !acuses[1].Fecha.Equal(dayOffset(10)) {
		t.Errorf("acuses = %+v", acuses)
	}
	if got := h.bitacoras.last().Descripcion; got != "Editado Edicto EDICTO CORREGIDO" {
		t.Errorf("bitacora = %q", got)
	}
}

func TestEditValidation(t *testing.T) {
	h := newHarness(t)
	created := h.createNotaria(t, edictos.NewForm{Descripcion: "Edicto", AcuseNum: "1"})

	_, err := h.sys.Edit(context.Background(), notario(notariaID), created.Edicto.ID, edictos.EditForm{
		Descripcion: "",
		Fechas:      edictos.AcuseDates{nil, edictos.Date(dayOffset(-2))},
	})
	got := warningsOf(t, err)
	if !slices.Equal(got, []string{edictos.MsgDescripcion, edictos.MsgFechaPasada}) {
		t.Errorf("warnings = %v", got)
	}
}

func TestEditOtherAuthorityRejected(t *testing.T) {
	h := newHarness(t)
	created := h.createNotaria(t, edictos.NewForm{Descripcion: "Edicto", AcuseNum: "1"})

	for _, advance := range []time.Duration{0, time.Hour, 48 * time.Hour} {
		h.clock.Advance(advance)
		_, err := h.sys.Edit(context.Background(), notario(otraID), created.Edicto.ID, edictos.EditForm{Descripcion: "Ajeno"})

		var rf *edictos.Refusal
		if !errors.As(err, &rf) || !errors.Is(err, edictos.ErrForbidden) {
			t.Fatalf("after %v: error = %v, want forbidden refusal", advance, err)
		}
		if rf.Message != edictos.MsgRegistrosAjenos {
			t.Errorf("message = %q", rf.Message)
		}
	}
}

func TestEditWindowExpires(t *testing.T) {
	h := newHarness(t)
	created := h.createNotaria(t, edictos.NewForm{Descripcion: "Edicto", AcuseNum: "1"})

	h.clock.Advance(23 * time.Hour)
	if err := h.sys.CanEdit(notario(notariaID), created.Edicto); err != nil {
		t.Fatalf("CanEdit() within window = %v", err)
	}

	h.clock.Advance(2 * time.Hour)
	_, err := h.sys.Edit(context.Background(), notario(notariaID), created.Edicto.ID, edictos.EditForm{Descripcion: "Tarde"})

	var rf *edictos.Refusal
	if !errors.As(err, &rf) || !errors.Is(err, edictos.ErrExpired) {
		t.Fatalf("error = %v, want expired refusal", err)
	}
	if rf.Message != "Ya no puede editar porque fue creado hace más de 1 día." {
		t.Errorf("message = %q", rf.Message)
	}

	if err := h.sys.CanEdit(administrador(), created.Edicto); err != nil {
		t.Errorf("administrators edit without window, got %v", err)
	}
}

func TestEditMissingNotice(t *testing.T) {
	h := newHarness(t)
	_, err := h.sys.Edit(context.Background(), administrador(), 404, edictos.EditForm{Descripcion: "x"})
	if !errors.Is(err, edictos.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestListRoundTrip(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	created := h.createNotaria(t, edictos.NewForm{Descripcion: "Edicto", AcuseNum: "1"})
	id := notariaID

	listed := func(estatus edictos.Estatus) []int64 {
		t.Helper()
		res, err := h.sys.List(ctx, pagination.Request{Draw: 3}, edictos.Filters{Estatus: estatus, AutoridadID: &id}, edictos.ViewPublic)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if res.Draw != 3 {
			t.Errorf("Draw = %d, want 3", res.Draw)
		}
		var ids []int64
		for _, e := range res.Data {
			ids = append(ids, e.ID)
		}
		return ids
	}

	if got := listed(edictos.Activo); !slices.Equal(got, []int64{created.Edicto.ID}) {
		t.Fatalf("active = %v", got)
	}

	out, err := h.sys.Deactivate(ctx, notario(notariaID), created.Edicto.ID)
	if err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}
	if out.Edicto.Estatus != edictos.Baja {
		t.Errorf("Estatus = %q", out.Edicto.Estatus)
	}
	if got := listed(edictos.Activo); len(got) != 0 {
		t.Errorf("active after deactivate = %v", got)
	}
	if got := listed(edictos.Baja); !slices.Equal(got, []int64{created.Edicto.ID}) {
		t.Errorf("inactive = %v", got)
	}
	if got := h.bitacoras.last().Descripcion; got != "Eliminado Edicto EDICTO" {
		t.Errorf("bitacora = %q", got)
	}

	if _, err := h.sys.Recover(ctx, notario(notariaID), created.Edicto.ID); err != nil {
		t.Fatalf("Recover() error = %v", err)
	}
	if got := listed(edictos.Activo); !slices.Equal(got, []int64{created.Edicto.ID}) {
		t.Errorf("active after recover = %v", got)
	}
}

func TestListDropsUnknownAutoridad(t *testing.T) {
	h := newHarness(t)
	h.createNotaria(t, edictos.NewForm{Descripcion: "Edicto", AcuseNum: "1"})

	missing := int64(999)
	res, err := h.sys.List(context.Background(), pagination.Request{}, edictos.Filters{AutoridadID: &missing}, edictos.ViewAdmin)
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalRecords != 1 || len(res.Data) != 1 {
		t.Errorf("result = %+v, want the filter ignored", res)
	}
}

func TestListWindow(t *testing.T) {
	h := newHarness(t)
	for i := range 12 {
		h.createNotaria(t, edictos.NewForm{Descripcion: fmt.Sprintf("Edicto %d", i), AcuseNum: "1"})
	}

	res, err := h.sys.List(context.Background(), pagination.Request{Start: 10, Length: 0}, edictos.Filters{}, edictos.ViewPublic)
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalRecords != 12 || len(res.Data) != 2 {
		t.Errorf("total = %d, rows = %d; want 12, 2", res.TotalRecords, len(res.Data))
	}
}

func TestTransitions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	created := h.createNotaria(t, edictos.NewForm{Descripcion: "Edicto", AcuseNum: "1"})
	id := created.Edicto.ID

	_, err := h.sys.Recover(ctx, notario(notariaID), id)
	if !errors.Is(err, edictos.ErrInvalidState) {
		t.Errorf("Recover() active error = %v, want ErrInvalidState", err)
	}

	_, err = h.sys.Deactivate(ctx, notario(otraID), id)
	var rf *edictos.Refusal
	if !errors.As(err, &rf) || rf.Message != edictos.MsgEliminarAjenos {
		t.Errorf("Deactivate() by other = %v", err)
	}

	if _, err := h.sys.Deactivate(ctx, notario(notariaID), id); err != nil {
		t.Fatal(err)
	}
	_, err = h.sys.Deactivate(ctx, notario(notariaID), id)
	if !errors.As(err, &rf) || rf.Message != edictos.MsgYaEliminado {
		t.Errorf("second Deactivate() = %v", err)
	}

	h.clock.Advance(72 * time.Hour)
	_, err = h.sys.Recover(ctx, notario(notariaID), id)
	if !errors.Is(err, edictos.ErrExpired) {
		t.Errorf("late Recover() = %v, want ErrExpired", err)
	}
	if _, err := h.sys.Recover(ctx, administrador(), id); err != nil {
		t.Errorf("admin Recover() = %v", err)
	}
}

func TestAuditFailureStillCommits(t *testing.T) {
	h := newHarness(t)
	h.bitacoras.err = errors.New("bitacoras caidas")

	out := h.createNotaria(t, edictos.NewForm{Descripcion: "Edicto", AcuseNum: "1"})
	if !out.Committed || out.Bitacora != nil {
		t.Errorf("outcome = %+v", out)
	}
	if len(out.Messages) != 1 || out.Messages[0].Level != flash.Success {
		t.Errorf("messages = %+v", out.Messages)
	}
}

func TestDownloadAndOpenPDF(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	created := h.createNotaria(t, edictos.NewForm{Descripcion: "Edicto", AcuseNum: "1"})

	f, err := h.sys.Download(ctx, created.Edicto.URL)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	data, _ := io.ReadAll(f.Body)
	f.Body.Close()
	if string(data) != string(pdf.Data) || f.MediaType != "application/pdf" {
		t.Errorf("file = %q %q", f.MediaType, data)
	}

	body, err := h.sys.OpenPDF(ctx, created.Edicto.ID)
	if err != nil {
		t.Fatalf("OpenPDF() error = %v", err)
	}
	body.Close()

	if _, err := h.sys.Download(ctx, "https://otro.example/x.pdf"); !storage.IsMissing(err) {
		t.Errorf("Download() foreign url = %v", err)
	}
}

func TestOpenPDFWithoutFile(t *testing.T) {
	h := newHarness(t)
	h.blobs.uploadErr = storage.ErrNotConfigured

	out, err := h.sys.Create(context.Background(), notario(notariaID), h.autoridad(notariaID), h.sys.Policies().Notaria,
		edictos.NewForm{Descripcion: "Edicto", AcuseNum: "1"}, pdf)
	if err != nil {
		t.Fatal(err)
	}

	_, err = h.sys.OpenPDF(context.Background(), out.Edicto.ID)
	if !errors.Is(err, edictos.ErrFileNotFound) {
		t.Errorf("OpenPDF() error = %v, want ErrFileNotFound", err)
	}
}

func TestHashedIDs(t *testing.T) {
	h := newHarness(t)

	s := h.sys.EncodeID(42)
	if len(s) < 8 {
		t.Errorf("EncodeID(42) = %q, want at least 8 chars", s)
	}
	id, err := h.sys.DecodeID(s)
	if err != nil || id != 42 {
		t.Errorf("DecodeID(%q) = %d, %v", s, id, err)
	}
	if _, err := h.sys.DecodeID("!!"); !errors.Is(err, edictos.ErrInvalidID) {
		t.Errorf("DecodeID(!!) error = %v", err)
	}
}

func TestExport(t *testing.T) {
	h := newHarness(t)
	h.createNotaria(t, edictos.NewForm{Descripcion: "Uno", AcuseNum: "1"})
	h.createNotaria(t, edictos.NewForm{Descripcion: "Dos", AcuseNum: "1"})

	list, err := h.sys.Export(context.Background(), edictos.Filters{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Errorf("got %d, want 2", len(list))
	}
}
