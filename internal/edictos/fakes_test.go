package edictos_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/pjecz/portal-notarias/internal/autoridades"
	"github.com/pjecz/portal-notarias/internal/bitacoras"
	"github.com/pjecz/portal-notarias/internal/edictos"
	"github.com/pjecz/portal-notarias/pkg/auth"
	"github.com/pjecz/portal-notarias/pkg/lifecycle"
	"github.com/pjecz/portal-notarias/pkg/pagination"
	"github.com/pjecz/portal-notarias/pkg/storage"
)

// memStore keeps notices in memory with the same state rules as the database store.
type memStore struct {
	mu          sync.Mutex
	finalizeErr error

	now     func() time.Time
	nextID  int64
	edictos map[int64]*edictos.Edicto
	acuses  map[int64][]edictos.Acuse
	claves  map[int64]string
}

func newMemStore(now func() time.Time) *memStore {
	return &memStore{
		now:     now,
		edictos: make(map[int64]*edictos.Edicto),
		acuses:  make(map[int64][]edictos.Acuse),
		claves:  make(map[int64]string),
	}
}

func (s *memStore) Find(_ context.Context, id int64) (*edictos.Edicto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.edictos[id]
	if !ok {
		return nil, edictos.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *memStore) match(e *edictos.Edicto, f edictos.Filters) bool {
	estatus := f.Estatus
	if estatus != edictos.Baja {
		estatus = edictos.Activo
	}
	if e.Estatus != estatus {
		return false
	}
	if f.AutoridadID != nil && e.AutoridadID != *f.AutoridadID {
		return false
	}
	if f.Expediente != nil && e.Expediente != *f.Expediente {
		return false
	}
	return true
}

func (s *memStore) filtered(f edictos.Filters) []edictos.Edicto {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []edictos.Edicto
	for _, e := range s.edictos {
		if s.match(e, f) {
			out = append(out, *e)
		}
	}
	slices.SortFunc(out, func(a, b edictos.Edicto) int {
		if c := b.Fecha.Compare(a.Fecha); c != 0 {
			return c
		}
		return int(b.ID - a.ID)
	})
	return out
}

func (s *memStore) List(_ context.Context, req pagination.Request, f edictos.Filters, _ edictos.View) ([]edictos.Edicto, int, error) {
	all := s.filtered(f)
	start := min(req.Start, len(all))
	end := min(start+req.Length, len(all))
	return all[start:end], len(all), nil
}

func (s *memStore) ListAll(_ context.Context, f edictos.Filters, _ edictos.View, limit int) ([]edictos.Edicto, error) {
	all := s.filtered(f)
	return all[:min(limit, len(all))], nil
}

func (s *memStore) Insert(_ context.Context, cmd edictos.InsertCommand) (*edictos.Edicto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	e := &edictos.Edicto{
		ID:                id,
		AutoridadID:       cmd.AutoridadID,
		AutoridadClave:    s.claves[cmd.AutoridadID],
		Fecha:             cmd.Fecha,
		Descripcion:       cmd.Descripcion,
		Expediente:        cmd.Expediente,
		NumeroPublicacion: cmd.NumeroPublicacion,
		AcuseNum:          cmd.AcuseNum,
		Estatus:           edictos.Pendiente,
		Creado:            s.now(),
		Modificado:        s.now(),
	}
	s.edictos[id] = e
	s.setAcuses(id, cmd.Acuses)
	cp := *e
	return &cp, nil
}

func (s *memStore) setAcuses(id int64, fechas []time.Time) {
	list := make([]edictos.Acuse, len(fechas))
	for i, f := range fechas {
		list[i] = edictos.Acuse{ID: id*100 + int64(i) + 1, EdictoID: id, Fecha: f, Creado: s.now()}
	}
	s.acuses[id] = list
}

func (s *memStore) Finalize(_ context.Context, id int64, archivo, url string, paginas *int) (*edictos.Edicto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalizeErr != nil {
		return nil, s.finalizeErr
	}
	e, ok := s.edictos[id]
	if !ok || e.Estatus != edictos.Pendiente {
		return nil, edictos.ErrNotFound
	}
	e.Archivo, e.URL, e.Paginas, e.Estatus = archivo, url, paginas, edictos.Activo
	cp := *e
	return &cp, nil
}

func (s *memStore) SetEstatus(_ context.Context, id int64, estatus edictos.Estatus) (*edictos.Edicto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.edictos[id]
	if !ok {
		return nil, edictos.ErrNotFound
	}
	e.Estatus = estatus
	cp := *e
	return &cp, nil
}

func (s *memStore) Update(_ context.Context, cmd edictos.UpdateCommand) (*edictos.Edicto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.edictos[cmd.ID]
	if !ok {
		return nil, edictos.ErrNotFound
	}
	e.Descripcion, e.AcuseNum = cmd.Descripcion, cmd.AcuseNum
	s.setAcuses(cmd.ID, cmd.Acuses)
	cp := *e
	return &cp, nil
}

func (s *memStore) Acuses(_ context.Context, edictoID int64) ([]edictos.Acuse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.acuses[edictoID]), nil
}

func (s *memStore) FindAcuse(_ context.Context, edictoID, acuseID int64) (*edictos.Acuse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.acuses[edictoID] {
		if a.ID == acuseID {
			return &a, nil
		}
	}
	return nil, edictos.ErrAcuseNotFound
}

// memBlobs is an in-memory blob store under the container "edictos".
type memBlobs struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	uploadErr error
}

const blobBase = "https://pjecz.blob.core.windows.net/edictos/"

func newMemBlobs() *memBlobs {
	return &memBlobs{blobs: make(map[string][]byte)}
}

func (m *memBlobs) Start(*lifecycle.Coordinator) error { return nil }

func (m *memBlobs) Upload(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = data
	return blobBase + key, nil
}

func (m *memBlobs) Download(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memBlobs) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[key]; !ok {
		return storage.ErrNotFound
	}
	delete(m.blobs, key)
	return nil
}

func (m *memBlobs) BlobNameFromURL(rawURL string) (string, error) {
	return storage.BlobNameFromURL(rawURL, "edictos")
}

func (m *memBlobs) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for k := range m.blobs {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

type stubAutoridades struct {
	autoridades map[int64]*autoridades.Autoridad
	distritos   map[int64]*autoridades.Distrito
}

func (s *stubAutoridades) FindAutoridad(_ context.Context, id int64) (*autoridades.Autoridad, error) {
	a, ok := s.autoridades[id]
	if !ok {
		return nil, autoridades.ErrNotFound
	}
	return a, nil
}

func (s *stubAutoridades) ListAutoridades(_ context.Context, distritoID int64) ([]autoridades.Autoridad, error) {
	var out []autoridades.Autoridad
	for _, a := range s.autoridades {
		if a.DistritoID == distritoID && a.EsJurisdiccional {
			out = append(out, *a)
		}
	}
	slices.SortFunc(out, func(a, b autoridades.Autoridad) int { return int(a.ID - b.ID) })
	return out, nil
}

func (s *stubAutoridades) FindDistrito(_ context.Context, id int64) (*autoridades.Distrito, error) {
	d, ok := s.distritos[id]
	if !ok {
		return nil, autoridades.ErrDistritoNotFound
	}
	return d, nil
}

func (s *stubAutoridades) ListDistritos(context.Context) ([]autoridades.Distrito, error) {
	var out []autoridades.Distrito
	for _, d := range s.distritos {
		out = append(out, *d)
	}
	return out, nil
}

type recordingBitacoras struct {
	mu      sync.Mutex
	records []bitacoras.RecordCommand
	err     error
}

func (b *recordingBitacoras) Record(_ context.Context, cmd bitacoras.RecordCommand) (*bitacoras.Bitacora, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = append(b.records, cmd)
	return &bitacoras.Bitacora{
		Modulo:       cmd.Modulo,
		UsuarioEmail: cmd.UsuarioEmail,
		Descripcion:  cmd.Descripcion,
		URL:          cmd.URL,
	}, nil
}

func (b *recordingBitacoras) last() bitacoras.RecordCommand {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.records) == 0 {
		return bitacoras.RecordCommand{}
	}
	return b.records[len(b.records)-1]
}

// Fixture ids.
const (
	notariaID   int64 = 5
	otraID      int64 = 6
	juzgadoID   int64 = 20
	sinDirID    int64 = 21
	distritoID  int64 = 1
	inactivaID  int64 = 7
	noJudicial  int64 = 2
	fueraDistID int64 = 8
)

var mexico = mustLocation("America/Mexico_City")

func mustLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// fixedNow is 2026-03-10 11:00 in Mexico City.
var fixedNow = time.Date(2026, 3, 10, 11, 0, 0, 0, mexico)

// today is the calendar day of fixedNow as stored.
var today = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type harness struct {
	sys       edictos.System
	store     *memStore
	blobs     *memBlobs
	auts      *stubAutoridades
	bitacoras *recordingBitacoras
	clock     *clock
	cfg       *edictos.Config
}

func fixtureAutoridades() *stubAutoridades {
	saltillo := autoridades.Distrito{ID: distritoID, Nombre: "DISTRITO JUDICIAL DE SALTILLO", NombreCorto: "Saltillo", EsDistritoJudicial: true, Estatus: "A"}
	oficinas := autoridades.Distrito{ID: noJudicial, Nombre: "OFICINAS CENTRALES", NombreCorto: "Oficinas", Estatus: "A"}

	return &stubAutoridades{
		distritos: map[int64]*autoridades.Distrito{
			distritoID: &saltillo,
			noJudicial: &oficinas,
		},
		autoridades: map[int64]*autoridades.Autoridad{
			notariaID: {
				ID: notariaID, DistritoID: distritoID, Distrito: saltillo,
				Clave: "SLT-NOT-5", Descripcion: "NOTARIA PUBLICA 5", DescripcionCorta: "NOTARIA 5",
				EsNotaria: true, DirectorioEdictos: "Saltillo/Notaria 5", Estatus: "A",
			},
			otraID: {
				ID: otraID, DistritoID: distritoID, Distrito: saltillo,
				Clave: "SLT-NOT-6", Descripcion: "NOTARIA PUBLICA 6", DescripcionCorta: "NOTARIA 6",
				EsNotaria: true, DirectorioEdictos: "Saltillo/Notaria 6", Estatus: "A",
			},
			inactivaID: {
				ID: inactivaID, DistritoID: distritoID, Distrito: saltillo,
				Clave: "SLT-NOT-7", DescripcionCorta: "NOTARIA 7",
				EsNotaria: true, DirectorioEdictos: "Saltillo/Notaria 7", Estatus: "B",
			},
			fueraDistID: {
				ID: fueraDistID, DistritoID: noJudicial, Distrito: oficinas,
				Clave: "OFC-NOT-8", DescripcionCorta: "NOTARIA 8",
				EsNotaria: true, DirectorioEdictos: "Oficinas/Notaria 8", Estatus: "A",
			},
			juzgadoID: {
				ID: juzgadoID, DistritoID: distritoID, Distrito: saltillo,
				Clave: "SLT-J1-CIV", Descripcion: "JUZGADO PRIMERO CIVIL", DescripcionCorta: "J1 CIVIL",
				EsJurisdiccional: true, DirectorioEdictos: "Saltillo/Juzgado Primero Civil", Estatus: "A",
			},
			sinDirID: {
				ID: sinDirID, DistritoID: distritoID, Distrito: saltillo,
				Clave: "SLT-J2-CIV", DescripcionCorta: "J2 CIVIL",
				EsJurisdiccional: true, Estatus: "A",
			},
		},
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg := &edictos.Config{HashidSalt: "pruebas"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	c := &clock{t: fixedNow}
	store := newMemStore(c.Now)
	auts := fixtureAutoridades()
	for id, a := range auts.autoridades {
		store.claves[id] = a.Clave
	}

	pcfg := pagination.Config{}
	if err := pcfg.Finalize(nil); err != nil {
		t.Fatal(err)
	}

	h := &harness{
		store:     store,
		blobs:     newMemBlobs(),
		auts:      auts,
		bitacoras: &recordingBitacoras{},
		clock:     c,
		cfg:       cfg,
	}

	sys, err := edictos.New(edictos.Deps{
		Store:       store,
		Storage:     h.blobs,
		Autoridades: auts,
		Bitacoras:   h.bitacoras,
		Config:      cfg,
		Pagination:  pcfg,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:         c.Now,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	h.sys = sys
	return h
}

func (h *harness) autoridad(id int64) *autoridades.Autoridad {
	return h.auts.autoridades[id]
}

func notario(autoridadID int64) *auth.Principal {
	return &auth.Principal{
		Email:       "notario@pjecz.gob.mx",
		AutoridadID: autoridadID,
		Permisos:    map[string]auth.Level{edictos.Modulo: auth.Crear},
	}
}

func administrador() *auth.Principal {
	return &auth.Principal{
		Email:    "admin@pjecz.gob.mx",
		Permisos: map[string]auth.Level{edictos.Modulo: auth.Administrar},
	}
}

var pdf = edictos.Upload{Filename: "edicto.pdf", Data: []byte("%PDF-1.4 prueba")}

func dayOffset(days int) time.Time {
	return today.AddDate(0, 0, days)
}

// createNotaria files a self-service notice for notariaID and fails the test on error.
func (h *harness) createNotaria(t *testing.T, form edictos.NewForm) *edictos.Outcome {
	t.Helper()
	out, err := h.sys.Create(context.Background(), notario(notariaID), h.autoridad(notariaID), h.sys.Policies().Notaria, form, pdf)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return out
}

func warningsOf(t *testing.T, err error) []string {
	t.Helper()
	var ve *edictos.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	return ve.Warnings
}
