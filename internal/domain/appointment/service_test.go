package appointment

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/salutdigital/portal/internal/platform/apperr"
	"github.com/salutdigital/portal/internal/platform/store"
)

// -- Test doubles --

// countingRepo wraps the store-backed repository and counts writes.
type countingRepo struct {
	Repository
	writes int
}

func (r *countingRepo) Create(ctx context.Context, a *Appointment) error {
	r.writes++
	return r.Repository.Create(ctx, a)
}

func (r *countingRepo) Update(ctx context.Context, id string, p store.Patch) error {
	r.writes++
	return r.Repository.Update(ctx, id, p)
}

func (r *countingRepo) Delete(ctx context.Context, id string) error {
	r.writes++
	return r.Repository.Delete(ctx, id)
}

type failingRepo struct{}

var errStoreDown = errors.New("connection refused")

func (failingRepo) Create(context.Context, *Appointment) error { return errStoreDown }
func (failingRepo) GetByID(context.Context, string) (*Appointment, error) {
	return nil, errStoreDown
}
func (failingRepo) Update(context.Context, string, store.Patch) error { return errStoreDown }
func (failingRepo) Delete(context.Context, string) error              { return errStoreDown }
func (failingRepo) ListByOwner(context.Context, string) ([]*Appointment, error) {
	return nil, errStoreDown
}
func (failingRepo) FindBySnapshot(context.Context, string, Snapshot) ([]*Appointment, error) {
	return nil, errStoreDown
}

var madrid = mustLoad("Europe/Madrid")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// fixedNow is 2024-06-15 12:00 in Madrid.
var fixedNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func newTestService() (*Service, *countingRepo, *store.Memory) {
	mem := store.NewMemory()
	repo := &countingRepo{Repository: NewStoreRepo(mem)}
	svc := NewService(repo, madrid)
	svc.now = func() time.Time { return fixedNow }
	return svc, repo, mem
}

func boolPtr(b bool) *bool { return &b }

func validFields() Fields {
	return Fields{
		Professional: "Dentista",
		InPerson:     boolPtr(false),
		Category:     "Consulta general",
		Date:         "2099-01-01",
		Time:         "10:00",
	}
}

func prescriptionFields() Fields {
	f := validFields()
	f.Professional = "Médico de cabecera"
	f.Category = "Receta médica"
	f.Subcategory = "Crónico"
	return f
}

func missingOf(t *testing.T, err error) []string {
	t.Helper()
	var inc *apperr.IncompleteSubmissionError
	if !errors.As(err, &inc) {
		t.Fatalf("expected IncompleteSubmissionError, got %v", err)
	}
	return inc.Missing
}

// -- Create --

func TestCreate_GeneralConsultation(t *testing.T) {
	svc, _, _ := newTestService()
	a, err := svc.Create(context.Background(), "u1", validFields())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.ID == "" {
		t.Error("expected generated id")
	}
	if a.UserID != "u1" {
		t.Errorf("expected owner u1, got %s", a.UserID)
	}
	if a.Subcategory != "" {
		t.Errorf("expected no subcategory, got %q", a.Subcategory)
	}
	if a.CreatedAt != "2024-06-15T10:00:00Z" {
		t.Errorf("unexpected createdAt %s", a.CreatedAt)
	}
}

func TestCreate_PrescriptionRequiresSubcategory(t *testing.T) {
	svc, repo, _ := newTestService()
	f := prescriptionFields()
	f.Subcategory = ""

	_, err := svc.Create(context.Background(), "u1", f)
	if !errors.Is(err, apperr.ErrIncompleteSubmission) {
		t.Fatalf("expected ErrIncompleteSubmission, got %v", err)
	}
	if got := missingOf(t, err); !reflect.DeepEqual(got, []string{"subcategoria"}) {
		t.Errorf("expected missing [subcategoria], got %v", got)
	}
	if repo.writes != 0 {
		t.Errorf("expected no store writes, got %d", repo.writes)
	}
}

func TestCreate_PrescriptionUnknownSubcategory(t *testing.T) {
	svc, _, _ := newTestService()
	f := prescriptionFields()
	f.Subcategory = "Urgente"
	if _, err := svc.Create(context.Background(), "u1", f); !errors.Is(err, apperr.ErrIncompleteSubmission) {
		t.Fatalf("expected ErrIncompleteSubmission, got %v", err)
	}
}

func TestCreate_CatalanLabels(t *testing.T) {
	svc, _, _ := newTestService()
	f := validFields()
	f.Professional = "Metge de capçalera"
	f.Category = "Recepta mèdica"
	f.Subcategory = "Crònic"
	a, err := svc.Create(context.Background(), "u1", f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Subcategory != "Crònic" {
		t.Errorf("expected label kept as given, got %q", a.Subcategory)
	}
}

func TestCreate_SubcategoryLanguageMustMatchCategory(t *testing.T) {
	svc, repo, _ := newTestService()
	for _, c := range []struct{ category, subcategory string }{
		{"Receta médica", "Crònic"},
		{"Recepta mèdica", "Otros"},
	} {
		f := prescriptionFields()
		f.Category = c.category
		f.Subcategory = c.subcategory
		_, err := svc.Create(context.Background(), "u1", f)
		if !errors.Is(err, apperr.ErrIncompleteSubmission) {
			t.Fatalf("%s + %s: expected ErrIncompleteSubmission, got %v", c.category, c.subcategory, err)
		}
		if got := missingOf(t, err); !reflect.DeepEqual(got, []string{"subcategoria"}) {
			t.Errorf("expected missing [subcategoria], got %v", got)
		}
	}
	if repo.writes != 0 {
		t.Errorf("expected no store writes, got %d", repo.writes)
	}
}

func TestCreate_Unauthenticated(t *testing.T) {
	svc, repo, _ := newTestService()
	if _, err := svc.Create(context.Background(), "", validFields()); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if repo.writes != 0 {
		t.Error("expected no store writes")
	}
}

func TestCreate_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Fields)
		want   []string
	}{
		{"professional", func(f *Fields) { f.Professional = "" }, []string{"profesional"}},
		{"unknown professional", func(f *Fields) { f.Professional = "Cirujano" }, []string{"profesional"}},
		{"modality", func(f *Fields) { f.InPerson = nil }, []string{"presencial"}},
		{"category", func(f *Fields) { f.Category = "" }, []string{"categoria"}},
		{"date", func(f *Fields) { f.Date = "" }, []string{"fecha"}},
		{"time", func(f *Fields) { f.Time = "" }, []string{"hora"}},
		{"malformed time", func(f *Fields) { f.Time = "9:5" }, []string{"hora"}},
		{"everything", func(f *Fields) { *f = Fields{} }, []string{"profesional", "presencial", "categoria", "fecha", "hora"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestService()
			f := validFields()
			tt.mutate(&f)

			_, err := svc.Create(context.Background(), "u1", f)
			if got := missingOf(t, err); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("missing = %v, want %v", got, tt.want)
			}
			if repo.writes != 0 {
				t.Errorf("expected no store writes, got %d", repo.writes)
			}
		})
	}
}

func TestCreate_DateRules(t *testing.T) {
	tests := []struct {
		name string
		date string
		ok   bool
	}{
		{"today", "2024-06-15", true},
		{"tomorrow", "2024-06-16", true},
		{"yesterday", "2024-06-14", false},
		{"long ago", "1999-12-31", false},
		{"malformed", "2099-1-1", false},
		{"not a date", "mañana", false},
		{"impossible", "2099-02-30", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestService()
			f := validFields()
			f.Date = tt.date
			_, err := svc.Create(context.Background(), "u1", f)
			if tt.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, apperr.ErrInvalidDate) {
				t.Fatalf("expected ErrInvalidDate, got %v", err)
			}
			if repo.writes != 0 {
				t.Errorf("expected no store writes, got %d", repo.writes)
			}
		})
	}
}

func TestCreate_TodayFollowsClinicTimeZone(t *testing.T) {
	svc, _, _ := newTestService()
	// 23:30 UTC on the 14th is already the 15th in Madrid
	svc.now = func() time.Time { return time.Date(2024, 6, 14, 23, 30, 0, 0, time.UTC) }

	f := validFields()
	f.Date = "2024-06-14"
	if _, err := svc.Create(context.Background(), "u1", f); !errors.Is(err, apperr.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	f.Date = "2024-06-15"
	if _, err := svc.Create(context.Background(), "u1", f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreate_SubcategoryDroppedForCategoryWithoutSubcategories(t *testing.T) {
	svc, _, mem := newTestService()
	f := validFields()
	f.Subcategory = "Crónico"

	a, err := svc.Create(context.Background(), "u1", f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Subcategory != "" {
		t.Errorf("expected subcategory dropped, got %q", a.Subcategory)
	}
	rec, err := mem.GetByID(context.Background(), store.Appointments, a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Data.Has("subcategoria") {
		t.Error("expected no subcategoria key in stored document")
	}
}

func TestCreate_ThenList_RoundTrip(t *testing.T) {
	svc, _, _ := newTestService()
	f := prescriptionFields()
	f.InPerson = boolPtr(true)
	f.Note = "Renovar receta de enalapril"

	created, err := svc.Create(context.Background(), "u1", f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Create(context.Background(), "u2", validFields()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	list, err := svc.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 appointment for u1, got %d", len(list))
	}
	got := list[0]
	if got.ID != created.ID || got.ID == "" {
		t.Errorf("unexpected id %q", got.ID)
	}
	if got.Professional != f.Professional || got.InPerson != *f.InPerson || got.Category != f.Category ||
		got.Subcategory != f.Subcategory || got.Note != f.Note || got.Date != f.Date || got.Time != f.Time {
		t.Errorf("stored fields differ from input: %+v", got)
	}
}

func TestCreate_PersistenceError(t *testing.T) {
	svc := NewService(failingRepo{}, madrid)
	svc.now = func() time.Time { return fixedNow }

	_, err := svc.Create(context.Background(), "u1", validFields())
	if !errors.Is(err, apperr.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if !errors.Is(err, errStoreDown) {
		t.Error("expected store error to stay in the chain")
	}
}

// -- List / Get --

func TestList_Unauthenticated(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.List(context.Background(), ""); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestList_PersistenceError(t *testing.T) {
	svc := NewService(failingRepo{}, madrid)
	if _, err := svc.List(context.Background(), "u1"); !errors.Is(err, apperr.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}

func TestGet_ForeignOwnerIsNotFound(t *testing.T) {
	svc, _, _ := newTestService()
	a, _ := svc.Create(context.Background(), "u1", validFields())

	if _, err := svc.Get(context.Background(), "u2", a.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	got, err := svc.Get(context.Background(), "u1", a.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != a.ID {
		t.Errorf("expected %s, got %s", a.ID, got.ID)
	}
}

// -- Modify --

func TestModify_ClearsStaleSubcategory(t *testing.T) {
	svc, _, mem := newTestService()
	ctx := context.Background()
	f := prescriptionFields()
	f.Note = "receta"
	a, err := svc.Create(ctx, "u1", f)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	upd := validFields()
	upd.Subcategory = "A demanda"
	got, err := svc.Modify(ctx, "u1", a.ID, upd)
	if err != nil {
		t.Fatalf("modify: %v", err)
	}
	if got.Subcategory != "" || got.Note != "" {
		t.Errorf("expected subcategory and note cleared, got %+v", got)
	}

	rec, err := mem.GetByID(ctx, store.Appointments, a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Data.Has("subcategoria") {
		t.Errorf("expected subcategoria removed, document is %v", rec.Data)
	}
	if rec.Data.Has("motivo") {
		t.Errorf("expected motivo removed, document is %v", rec.Data)
	}
	if rec.Data.String("userId") != "u1" || rec.Data.String("createdAt") != a.CreatedAt {
		t.Errorf("owner and creation time must be preserved, document is %v", rec.Data)
	}
	if rec.Data.String("categoria") != "Consulta general" || rec.Data.String("updatedAt") == "" {
		t.Errorf("unexpected document %v", rec.Data)
	}
}

func TestModify_OverwritesMutableFields(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	a, _ := svc.Create(ctx, "u1", validFields())

	upd := prescriptionFields()
	upd.InPerson = boolPtr(true)
	upd.Date = "2099-02-02"
	upd.Time = "08:30"
	got, err := svc.Modify(ctx, "u1", a.ID, upd)
	if err != nil {
		t.Fatalf("modify: %v", err)
	}
	if got.ID != a.ID || got.UserID != "u1" {
		t.Errorf("id and owner must not change: %+v", got)
	}

	list, _ := svc.List(ctx, "u1")
	if len(list) != 1 {
		t.Fatalf("expected 1 appointment, got %d", len(list))
	}
	stored := list[0]
	if stored.Professional != "Médico de cabecera" || !stored.InPerson || stored.Subcategory != "Crónico" ||
		stored.Date != "2099-02-02" || stored.Time != "08:30" {
		t.Errorf("unexpected stored appointment %+v", stored)
	}
}

func TestModify_NotFound(t *testing.T) {
	svc, repo, _ := newTestService()
	if _, err := svc.Modify(context.Background(), "u1", "missing", validFields()); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if repo.writes != 0 {
		t.Error("expected no store writes")
	}
}

func TestModify_ForeignOwner(t *testing.T) {
	svc, repo, _ := newTestService()
	a, _ := svc.Create(context.Background(), "u1", validFields())
	repo.writes = 0

	if _, err := svc.Modify(context.Background(), "u2", a.ID, validFields()); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if repo.writes != 0 {
		t.Error("expected no store writes")
	}
}

func TestModify_ValidationBeforeStore(t *testing.T) {
	svc := NewService(failingRepo{}, madrid)
	svc.now = func() time.Time { return fixedNow }

	f := validFields()
	f.Date = "2020-01-01"
	if _, err := svc.Modify(context.Background(), "u1", "a1", f); !errors.Is(err, apperr.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate before any store call, got %v", err)
	}
	f = prescriptionFields()
	f.Subcategory = ""
	if _, err := svc.Modify(context.Background(), "u1", "a1", f); !errors.Is(err, apperr.ErrIncompleteSubmission) {
		t.Fatalf("expected ErrIncompleteSubmission before any store call, got %v", err)
	}
}

func TestModify_Unauthenticated(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.Modify(context.Background(), "", "a1", validFields()); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

// -- Cancel --

func snapshotOf(a *Appointment) Snapshot {
	return Snapshot{Date: a.Date, Time: a.Time, Professional: a.Professional}
}

func TestCancel_Idempotent(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	a, _ := svc.Create(ctx, "u1", validFields())

	if err := svc.Cancel(ctx, "u1", a.ID, snapshotOf(a)); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	if list, _ := svc.List(ctx, "u1"); len(list) != 0 {
		t.Fatalf("expected appointment removed, got %d", len(list))
	}
	if err := svc.Cancel(ctx, "u1", a.ID, snapshotOf(a)); err != nil {
		t.Fatalf("second cancel should be a no-op, got %v", err)
	}
}

func TestCancel_PrefersMatchingID(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	first, _ := svc.Create(ctx, "u1", validFields())
	second, _ := svc.Create(ctx, "u1", validFields())

	if err := svc.Cancel(ctx, "u1", second.ID, snapshotOf(second)); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	list, _ := svc.List(ctx, "u1")
	if len(list) != 1 || list[0].ID != first.ID {
		t.Errorf("expected only %s to remain, got %+v", first.ID, list)
	}
}

func TestCancel_StaleIDFallsBackToSnapshot(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	a, _ := svc.Create(ctx, "u1", validFields())

	if err := svc.Cancel(ctx, "u1", "stale-client-id", snapshotOf(a)); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if list, _ := svc.List(ctx, "u1"); len(list) != 0 {
		t.Errorf("expected appointment removed via snapshot, got %d", len(list))
	}
}

func TestCancel_NeverTouchesOtherOwners(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	a, _ := svc.Create(ctx, "u1", validFields())
	repo.writes = 0

	if err := svc.Cancel(ctx, "u2", a.ID, snapshotOf(a)); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if repo.writes != 0 {
		t.Error("expected no delete")
	}
	if list, _ := svc.List(ctx, "u1"); len(list) != 1 {
		t.Error("expected u1's appointment to survive")
	}
}

func TestCancel_RequiresSnapshotAndCaller(t *testing.T) {
	svc, _, _ := newTestService()
	if err := svc.Cancel(context.Background(), "", "a1", Snapshot{}); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	err := svc.Cancel(context.Background(), "u1", "a1", Snapshot{Date: "2099-01-01"})
	if got := missingOf(t, err); !reflect.DeepEqual(got, []string{"hora", "profesional"}) {
		t.Errorf("unexpected missing %v", got)
	}
}

func TestCancel_PersistenceError(t *testing.T) {
	svc := NewService(failingRepo{}, madrid)
	err := svc.Cancel(context.Background(), "u1", "a1", Snapshot{Date: "2099-01-01", Time: "10:00", Professional: "Dentista"})
	if !errors.Is(err, apperr.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}
