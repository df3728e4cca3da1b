package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/salutdigital/portal/internal/platform/apperr"
	"github.com/salutdigital/portal/internal/platform/store"
)

type Service struct {
	repo Repository
	loc  *time.Location
	now  func() time.Time
}

// NewService builds the appointment service. loc is the clinic time zone
// that decides which calendar day "today" is.
func NewService(repo Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, loc: loc, now: time.Now}
}

// Create validates f and stores a new appointment owned by callerID.
func (s *Service) Create(ctx context.Context, callerID string, f Fields) (*Appointment, error) {
	if callerID == "" {
		return nil, apperr.ErrUnauthenticated
	}
	f, err := s.validate(f)
	if err != nil {
		return nil, err
	}

	a := &Appointment{
		UserID:       callerID,
		Professional: f.Professional,
		InPerson:     *f.InPerson,
		Category:     f.Category,
		Subcategory:  f.Subcategory,
		Note:         f.Note,
		Date:         f.Date,
		Time:         f.Time,
		CreatedAt:    s.now().UTC().Format(time.RFC3339),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, apperr.Persistence("create appointment", err)
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, callerID string) ([]*Appointment, error) {
	if callerID == "" {
		return nil, apperr.ErrUnauthenticated
	}
	list, err := s.repo.ListByOwner(ctx, callerID)
	if err != nil {
		return nil, apperr.Persistence("list appointments", err)
	}
	return list, nil
}

// Get returns one of the caller's appointments. Appointments owned by
// someone else are reported as not found.
func (s *Service) Get(ctx context.Context, callerID, id string) (*Appointment, error) {
	if callerID == "" {
		return nil, apperr.ErrUnauthenticated
	}
	return s.owned(ctx, callerID, id)
}

// Modify overwrites every mutable field of the caller's appointment. The
// subcategory and note are removed from the document rather than blanked
// when the new values leave them empty.
func (s *Service) Modify(ctx context.Context, callerID, id string, f Fields) (*Appointment, error) {
	if callerID == "" {
		return nil, apperr.ErrUnauthenticated
	}
	f, err := s.validate(f)
	if err != nil {
		return nil, err
	}

	a, err := s.owned(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	updatedAt := s.now().UTC().Format(time.RFC3339)
	patch := store.Patch{
		keyProfessional: store.SetTo(f.Professional),
		keyInPerson:     store.SetTo(*f.InPerson),
		keyCategory:     store.SetTo(f.Category),
		keySubcategory:  setOrClear(f.Subcategory),
		keyNote:         setOrClear(f.Note),
		keyDate:         store.SetTo(f.Date),
		keyTime:         store.SetTo(f.Time),
		keyUpdatedAt:    store.SetTo(updatedAt),
	}
	if err := s.repo.Update(ctx, a.ID, patch); err != nil {
		return nil, apperr.Persistence("modify appointment", err)
	}

	a.Professional = f.Professional
	a.InPerson = *f.InPerson
	a.Category = f.Category
	a.Subcategory = f.Subcategory
	a.Note = f.Note
	a.Date = f.Date
	a.Time = f.Time
	a.UpdatedAt = updatedAt
	return a, nil
}

// Cancel deletes the caller's appointment matching snap. The record is looked
// up again by its business key instead of trusting the client's id; the id
// only breaks ties between identical slots. Finding nothing is not an error,
// so repeating a cancellation is harmless.
func (s *Service) Cancel(ctx context.Context, callerID, id string, snap Snapshot) error {
	if callerID == "" {
		return apperr.ErrUnauthenticated
	}
	var missing []string
	if snap.Date == "" {
		missing = append(missing, keyDate)
	}
	if snap.Time == "" {
		missing = append(missing, keyTime)
	}
	if snap.Professional == "" {
		missing = append(missing, keyProfessional)
	}
	if len(missing) > 0 {
		return &apperr.IncompleteSubmissionError{Missing: missing}
	}

	matches, err := s.repo.FindBySnapshot(ctx, callerID, snap)
	if err != nil {
		return apperr.Persistence("find appointment to cancel", err)
	}
	if len(matches) == 0 {
		return nil
	}

	target := matches[0]
	for _, m := range matches {
		if m.ID == id {
			target = m
			break
		}
	}
	if err := s.repo.Delete(ctx, target.ID); err != nil {
		return apperr.Persistence("cancel appointment", err)
	}
	return nil
}

func (s *Service) owned(ctx context.Context, callerID, id string) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("appointment %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, apperr.Persistence("load appointment", err)
	}
	if a.UserID != callerID {
		return nil, fmt.Errorf("appointment %s: %w", id, apperr.ErrNotFound)
	}
	return a, nil
}

// validate applies the rule table and the date rule. It returns f with the
// subcategory dropped when the category has none.
func (s *Service) validate(f Fields) (Fields, error) {
	var missing []string
	if !isProfessional(f.Professional) {
		missing = append(missing, keyProfessional)
	}
	if f.InPerson == nil {
		missing = append(missing, keyInPerson)
	}
	rule, known := LookupReason(f.Category)
	if !known {
		missing = append(missing, keyCategory)
	} else if rule.RequiresSubcategory() && !rule.AllowsSubcategory(f.Subcategory) {
		missing = append(missing, keySubcategory)
	}
	if f.Date == "" {
		missing = append(missing, keyDate)
	}
	if !wellFormed(timeLayout, f.Time) {
		missing = append(missing, keyTime)
	}
	if len(missing) > 0 {
		return f, &apperr.IncompleteSubmissionError{Missing: missing}
	}

	if !wellFormed(dateLayout, f.Date) {
		return f, fmt.Errorf("fecha %q: %w", f.Date, apperr.ErrInvalidDate)
	}
	// both are YYYY-MM-DD, so string order is calendar order
	if today := s.now().In(s.loc).Format(dateLayout); f.Date < today {
		return f, fmt.Errorf("fecha %s is before %s: %w", f.Date, today, apperr.ErrInvalidDate)
	}

	if !rule.RequiresSubcategory() {
		f.Subcategory = ""
	}
	return f, nil
}

// wellFormed reports whether v is exactly layout-shaped, so "9:5" and
// "2099-1-1" are rejected rather than normalised.
func wellFormed(layout, v string) bool {
	t, err := time.Parse(layout, v)
	return err == nil && t.Format(layout) == v
}

func setOrClear(v string) store.Value {
	if v == "" {
		return store.Clear()
	}
	return store.SetTo(v)
}
