package profile

import (
	"context"
	"fmt"

	"github.com/salutdigital/portal/internal/platform/store"
)

// Repository stores profiles keyed by user id. Get returns store.ErrNotFound
// when the user has never saved one.
type Repository interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	Upsert(ctx context.Context, userID string, patch store.Patch) error
}

type storeRepo struct {
	st store.Store
}

func NewStoreRepo(st store.Store) Repository {
	return &storeRepo{st: st}
}

func (r *storeRepo) Get(ctx context.Context, userID string) (*Profile, error) {
	rec, err := r.st.GetByID(ctx, store.Users, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", userID, err)
	}
	d := rec.Data
	return &Profile{
		Name:        d.String(keyName),
		FamilyNames: d.String(keyFamilyNames),
		BirthDate:   d.String(keyBirthDate),
		HealthCard:  d.String(keyHealthCard),
		NationalID:  d.String(keyNationalID),
	}, nil
}

func (r *storeRepo) Upsert(ctx context.Context, userID string, patch store.Patch) error {
	if err := r.st.Update(ctx, store.Users, userID, patch, store.Merge); err != nil {
		return fmt.Errorf("upsert profile %s: %w", userID, err)
	}
	return nil
}
