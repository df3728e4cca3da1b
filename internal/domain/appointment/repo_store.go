package appointment

import (
	"context"
	"fmt"

	"github.com/salutdigital/portal/internal/platform/store"
)

type storeRepo struct {
	st store.Store
}

func NewStoreRepo(st store.Store) Repository {
	return &storeRepo{st: st}
}

func (r *storeRepo) Create(ctx context.Context, a *Appointment) error {
	id, err := r.st.Insert(ctx, store.Appointments, toDocument(a))
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	a.ID = id
	return nil
}

func (r *storeRepo) GetByID(ctx context.Context, id string) (*Appointment, error) {
	rec, err := r.st.GetByID(ctx, store.Appointments, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment %s: %w", id, err)
	}
	return fromRecord(rec), nil
}

func (r *storeRepo) Update(ctx context.Context, id string, patch store.Patch) error {
	if err := r.st.Update(ctx, store.Appointments, id, patch, store.Merge); err != nil {
		return fmt.Errorf("update appointment %s: %w", id, err)
	}
	return nil
}

func (r *storeRepo) Delete(ctx context.Context, id string) error {
	if err := r.st.Remove(ctx, store.Appointments, id); err != nil {
		return fmt.Errorf("delete appointment %s: %w", id, err)
	}
	return nil
}

func (r *storeRepo) ListByOwner(ctx context.Context, userID string) ([]*Appointment, error) {
	return r.query(ctx, store.Eq(keyUserID, userID))
}

func (r *storeRepo) FindBySnapshot(ctx context.Context, userID string, snap Snapshot) ([]*Appointment, error) {
	return r.query(ctx,
		store.Eq(keyUserID, userID),
		store.Eq(keyDate, snap.Date),
		store.Eq(keyTime, snap.Time),
		store.Eq(keyProfessional, snap.Professional),
	)
}

func (r *storeRepo) query(ctx context.Context, filters ...store.Filter) ([]*Appointment, error) {
	recs, err := r.st.Query(ctx, store.Appointments, filters...)
	if err != nil {
		return nil, fmt.Errorf("query appointments: %w", err)
	}
	out := make([]*Appointment, 0, len(recs))
	for _, rec := range recs {
		out = append(out, fromRecord(rec))
	}
	return out, nil
}

// toDocument leaves out empty optional fields so that an absent subcategory
// is stored as absent.
func toDocument(a *Appointment) store.Document {
	doc := store.Document{
		keyUserID:       a.UserID,
		keyProfessional: a.Professional,
		keyInPerson:     a.InPerson,
		keyCategory:     a.Category,
		keyDate:         a.Date,
		keyTime:         a.Time,
		keyCreatedAt:    a.CreatedAt,
	}
	if a.Subcategory != "" {
		doc[keySubcategory] = a.Subcategory
	}
	if a.Note != "" {
		doc[keyNote] = a.Note
	}
	if a.UpdatedAt != "" {
		doc[keyUpdatedAt] = a.UpdatedAt
	}
	return doc
}

func fromRecord(rec store.Record) *Appointment {
	d := rec.Data
	inPerson, _ := d.Bool(keyInPerson)
	return &Appointment{
		ID:           rec.ID,
		UserID:       d.String(keyUserID),
		Professional: d.String(keyProfessional),
		InPerson:     inPerson,
		Category:     d.String(keyCategory),
		Subcategory:  d.String(keySubcategory),
		Note:         d.String(keyNote),
		Date:         d.String(keyDate),
		Time:         d.String(keyTime),
		CreatedAt:    d.String(keyCreatedAt),
		UpdatedAt:    d.String(keyUpdatedAt),
	}
}
