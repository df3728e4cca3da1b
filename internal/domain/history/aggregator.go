// Package history joins a patient's appointments with their medications and
// profile, and serves the result as JSON, PDF or XLSX.
package history

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/salutdigital/portal/internal/domain/appointment"
	"github.com/salutdigital/portal/internal/domain/medication"
	"github.com/salutdigital/portal/internal/domain/profile"
	"github.com/salutdigital/portal/internal/platform/apperr"
	"github.com/salutdigital/portal/internal/platform/store"
)

// Record is one appointment with the descriptions of its medications.
// Medications is empty, never nil, when none were prescribed.
type Record struct {
	Appointment *appointment.Appointment `json:"appointment"`
	Medications []string                 `json:"medications"`
}

// ProfileSource returns the owner's profile, or an empty one when none exists.
type ProfileSource interface {
	Snapshot(ctx context.Context, userID string) (profile.Profile, error)
}

type Options struct {
	// BatchMedications loads medications with one "in" query per chunk of
	// appointments instead of one query per appointment.
	BatchMedications bool
	// Parallelism bounds concurrent per-appointment medication queries.
	Parallelism int
}

type Aggregator struct {
	appointments appointment.Repository
	medications  medication.Repository
	profiles     ProfileSource
	opts         Options
}

func NewAggregator(appts appointment.Repository, meds medication.Repository, profiles ProfileSource, opts Options) *Aggregator {
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	return &Aggregator{appointments: appts, medications: meds, profiles: profiles, opts: opts}
}

// List returns every appointment owned by callerID with its medications.
func (a *Aggregator) List(ctx context.Context, callerID string) ([]Record, error) {
	if callerID == "" {
		return nil, apperr.ErrUnauthenticated
	}
	appts, err := a.appointments.ListByOwner(ctx, callerID)
	if err != nil {
		return nil, apperr.Persistence("list appointments", err)
	}

	var meds [][]string
	if a.opts.BatchMedications {
		meds, err = a.batchMedications(ctx, appts)
	} else {
		meds, err = a.eachMedications(ctx, appts)
	}
	if err != nil {
		return nil, apperr.Persistence("list medications", err)
	}

	out := make([]Record, len(appts))
	for i, ap := range appts {
		out[i] = Record{Appointment: ap, Medications: meds[i]}
	}
	return out, nil
}

// Profile returns the caller's export header data. It is independent of the
// appointments so an empty history still carries the saved profile.
func (a *Aggregator) Profile(ctx context.Context, callerID string) (profile.Profile, error) {
	if callerID == "" {
		return profile.Profile{}, apperr.ErrUnauthenticated
	}
	return a.profiles.Snapshot(ctx, callerID)
}

// Get returns a single record. An appointment owned by someone else is
// reported as not found.
func (a *Aggregator) Get(ctx context.Context, callerID, appointmentID string) (*Record, error) {
	if callerID == "" {
		return nil, apperr.ErrUnauthenticated
	}
	ap, err := a.appointments.GetByID(ctx, appointmentID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && ap.UserID != callerID) {
		return nil, fmt.Errorf("appointment %s: %w", appointmentID, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, apperr.Persistence("load appointment", err)
	}

	ms, err := a.medications.ListByAppointment(ctx, ap.ID)
	if err != nil {
		return nil, apperr.Persistence("list medications", err)
	}
	return &Record{Appointment: ap, Medications: descriptions(ms)}, nil
}

func (a *Aggregator) eachMedications(ctx context.Context, appts []*appointment.Appointment) ([][]string, error) {
	out := make([][]string, len(appts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Parallelism)
	for i, ap := range appts {
		g.Go(func() error {
			ms, err := a.medications.ListByAppointment(gctx, ap.ID)
			if err != nil {
				return err
			}
			out[i] = descriptions(ms)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Aggregator) batchMedications(ctx context.Context, appts []*appointment.Appointment) ([][]string, error) {
	ids := make([]string, len(appts))
	for i, ap := range appts {
		ids[i] = ap.ID
	}
	byAppt, err := a.medications.ListByAppointments(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([][]string, len(appts))
	for i, ap := range appts {
		out[i] = descriptions(byAppt[ap.ID])
	}
	return out, nil
}

func descriptions(ms []*medication.Medication) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Description)
	}
	return out
}
