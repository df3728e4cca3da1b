// Package export renders medical-history reports as downloadable documents.
package export

// Header is the patient block printed above the table. Empty fields are
// replaced with a localized placeholder when rendered.
type Header struct {
	Name        string
	FamilyNames string
	BirthDate   string
	NationalID  string
	HealthCard  string
}

// Row is one appointment line. An empty Medications slice renders as the
// localized "not applicable" marker.
type Row struct {
	Date         string
	Time         string
	Professional string
	InPerson     bool
	Reason       string
	Medications  []string
}

type Report struct {
	Header Header
	Rows   []Row
}

// Artifact is a rendered document ready to be sent to the client.
type Artifact struct {
	Filename    string
	ContentType string
	Body        []byte
}

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)
