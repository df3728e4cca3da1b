package appointment

import (
	"context"

	"github.com/salutdigital/portal/internal/platform/store"
)

// Repository persists appointments. GetByID returns store.ErrNotFound for a
// missing id; any other error is a store failure.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id string) (*Appointment, error)
	Update(ctx context.Context, id string, patch store.Patch) error
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, userID string) ([]*Appointment, error)
	FindBySnapshot(ctx context.Context, userID string, snap Snapshot) ([]*Appointment, error)
}
