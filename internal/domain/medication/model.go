package medication

// Medication is one prescribed medication attached to an appointment. The
// clinical back office writes these; the portal only reads them.
type Medication struct {
	ID            string `json:"id"`
	AppointmentID string `json:"appointmentId"`
	Description   string `json:"medicacion"`
}

const (
	keyAppointmentID = "appointmentId"
	keyDescription   = "medicacion"
)
