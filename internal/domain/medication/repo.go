package medication

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/salutdigital/portal/internal/platform/store"
)

// Repository is the read side of the medications collection.
type Repository interface {
	ListByAppointment(ctx context.Context, appointmentID string) ([]*Medication, error)
	// ListByAppointments returns the medications of every given appointment,
	// keyed by appointment id. Appointments without medications are absent.
	ListByAppointments(ctx context.Context, appointmentIDs []string) (map[string][]*Medication, error)
}

type storeRepo struct {
	st          store.Store
	parallelism int
}

// NewStoreRepo reads medications from st. parallelism bounds how many
// batched queries run at once.
func NewStoreRepo(st store.Store, parallelism int) Repository {
	if parallelism < 1 {
		parallelism = 1
	}
	return &storeRepo{st: st, parallelism: parallelism}
}

func (r *storeRepo) ListByAppointment(ctx context.Context, appointmentID string) ([]*Medication, error) {
	recs, err := r.st.Query(ctx, store.Medications, store.Eq(keyAppointmentID, appointmentID))
	if err != nil {
		return nil, fmt.Errorf("query medications for %s: %w", appointmentID, err)
	}
	out := make([]*Medication, 0, len(recs))
	for _, rec := range recs {
		out = append(out, fromRecord(rec))
	}
	return out, nil
}

func (r *storeRepo) ListByAppointments(ctx context.Context, appointmentIDs []string) (map[string][]*Medication, error) {
	out := make(map[string][]*Medication)
	if len(appointmentIDs) == 0 {
		return out, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)
	for _, chunk := range chunks(appointmentIDs, store.MaxInValues) {
		values := make([]any, len(chunk))
		for i, id := range chunk {
			values[i] = id
		}
		g.Go(func() error {
			recs, err := r.st.Query(gctx, store.Medications, store.In(keyAppointmentID, values...))
			if err != nil {
				return fmt.Errorf("query medications batch: %w", err)
			}
			mu.Lock()
			defer mu.Unlock()
			for _, rec := range recs {
				m := fromRecord(rec)
				out[m.AppointmentID] = append(out[m.AppointmentID], m)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func chunks(ids []string, size int) [][]string {
	var out [][]string
	for size < len(ids) {
		ids, out = ids[size:], append(out, ids[:size])
	}
	return append(out, ids)
}

func fromRecord(rec store.Record) *Medication {
	return &Medication{
		ID:            rec.ID,
		AppointmentID: rec.Data.String(keyAppointmentID),
		Description:   rec.Data.String(keyDescription),
	}
}
