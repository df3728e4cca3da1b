package profile

import (
	"context"
	"errors"
	"time"

	"github.com/salutdigital/portal/internal/domain/validation"
	"github.com/salutdigital/portal/internal/platform/apperr"
	"github.com/salutdigital/portal/internal/platform/i18n"
	"github.com/salutdigital/portal/internal/platform/store"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Get(ctx context.Context, callerID string) (*Profile, error) {
	if callerID == "" {
		return nil, apperr.ErrUnauthenticated
	}
	p, err := s.repo.Get(ctx, callerID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Persistence("get profile", err)
	}
	return p, nil
}

// Snapshot returns the caller's profile, or an empty one when none has been
// saved yet. Exports use it so a missing profile never blocks a download.
func (s *Service) Snapshot(ctx context.Context, userID string) (Profile, error) {
	p, err := s.repo.Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return Profile{}, nil
	}
	if err != nil {
		return Profile{}, apperr.Persistence("get profile", err)
	}
	return *p, nil
}

// Update validates every field at once and merges the result into the stored
// profile. Nothing is written unless all fields pass. An empty birth date
// leaves the stored one untouched.
func (s *Service) Update(ctx context.Context, callerID string, loc i18n.Locale, p Profile) (*Profile, error) {
	if callerID == "" {
		return nil, apperr.ErrUnauthenticated
	}
	errs := validation.ProfileErrors(loc, validation.ProfileFields{
		Name:        p.Name,
		FamilyNames: p.FamilyNames,
		HealthCard:  p.HealthCard,
		NationalID:  p.NationalID,
	})
	if len(errs) > 0 {
		return nil, &apperr.ValidationError{Fields: errs}
	}

	patch := store.Patch{
		keyName:        store.SetTo(p.Name),
		keyFamilyNames: store.SetTo(p.FamilyNames),
		keyHealthCard:  store.SetTo(p.HealthCard),
		keyNationalID:  store.SetTo(p.NationalID),
		keyUpdatedAt:   store.SetTo(s.now().UTC().Format(time.RFC3339)),
	}
	if p.BirthDate != "" {
		patch[keyBirthDate] = store.SetTo(p.BirthDate)
	}
	if err := s.repo.Upsert(ctx, callerID, patch); err != nil {
		return nil, apperr.Persistence("update profile", err)
	}

	saved, err := s.repo.Get(ctx, callerID)
	if err != nil {
		return nil, apperr.Persistence("reload profile", err)
	}
	return saved, nil
}
