package history

import (
	"github.com/salutdigital/portal/internal/domain/appointment"
	"github.com/salutdigital/portal/internal/domain/export"
	"github.com/salutdigital/portal/internal/domain/profile"
)

// Report converts the owner's profile and records into the exporter's input.
func Report(p profile.Profile, records ...Record) export.Report {
	r := export.Report{Header: export.Header{
		Name:        p.Name,
		FamilyNames: p.FamilyNames,
		BirthDate:   p.BirthDate,
		NationalID:  p.NationalID,
		HealthCard:  p.HealthCard,
	}}
	r.Rows = make([]export.Row, 0, len(records))
	for _, rec := range records {
		ap := rec.Appointment
		r.Rows = append(r.Rows, export.Row{
			Date:         ap.Date,
			Time:         ap.Time,
			Professional: ap.Professional,
			InPerson:     ap.InPerson,
			Reason:       reason(ap),
			Medications:  rec.Medications,
		})
	}
	return r
}

// reason prefers the patient's note and falls back to the category.
func reason(ap *appointment.Appointment) string {
	switch {
	case ap.Note != "":
		return ap.Note
	case ap.Subcategory != "":
		return ap.Category + " - " + ap.Subcategory
	default:
		return ap.Category
	}
}
