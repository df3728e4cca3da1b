package appointment

// Appointment is one consultation request as stored and as returned by the
// API. JSON names follow the document keys in the appointments collection.
type Appointment struct {
	ID           string `json:"id"`
	UserID       string `json:"userId"`
	Professional string `json:"profesional"`
	InPerson     bool   `json:"presencial"`
	Category     string `json:"categoria"`
	Subcategory  string `json:"subcategoria,omitempty"`
	Note         string `json:"motivo,omitempty"`
	Date         string `json:"fecha"`
	Time         string `json:"hora"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
}

// Fields is the patient-editable part of an appointment. InPerson is a
// pointer so that an omitted modality is told apart from "remote".
type Fields struct {
	Professional string `json:"profesional"`
	InPerson     *bool  `json:"presencial"`
	Category     string `json:"categoria"`
	Subcategory  string `json:"subcategoria"`
	Note         string `json:"motivo"`
	Date         string `json:"fecha"`
	Time         string `json:"hora"`
}

// Snapshot is the business key a cancellation is matched on.
type Snapshot struct {
	Date         string `json:"fecha"`
	Time         string `json:"hora"`
	Professional string `json:"profesional"`
}

// Document keys.
const (
	keyUserID       = "userId"
	keyProfessional = "profesional"
	keyInPerson     = "presencial"
	keyCategory     = "categoria"
	keySubcategory  = "subcategoria"
	keyNote         = "motivo"
	keyDate         = "fecha"
	keyTime         = "hora"
	keyCreatedAt    = "createdAt"
	keyUpdatedAt    = "updatedAt"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)
