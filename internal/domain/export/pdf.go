package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog"

	"github.com/salutdigital/portal/internal/platform/i18n"
)

const (
	marginLeft   = 10.0
	marginTop    = 10.0
	logoWidth    = 40.0
	lineHeight   = 5.0
	headerHeight = 8.0
)

// Column widths in millimetres for an A4 portrait page: date, time,
// professional, reason, medication.
var pdfColumns = []float64{24, 16, 40, 50, 60}

// PDFExporter renders a report as an A4 document with the patient block,
// a medication-plan title and the appointment table.
type PDFExporter struct {
	logo     LogoFetcher
	logger   zerolog.Logger
	compress bool
}

// NewPDFExporter returns an exporter that decorates every page with the logo
// supplied by logo. A nil logo renders without one.
func NewPDFExporter(logo LogoFetcher, logger zerolog.Logger) *PDFExporter {
	return &PDFExporter{logo: logo, logger: logger, compress: true}
}

func (e *PDFExporter) Export(ctx context.Context, loc i18n.Locale, r Report) (*Artifact, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(e.compress)
	pdf.SetMargins(marginLeft, marginTop, marginLeft)
	pdf.SetAutoPageBreak(false, marginTop)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	t := func(key string) string { return tr(i18n.T(loc, key)) }

	pdf.AddPage()
	e.drawLogo(ctx, pdf)

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(marginLeft, 20, t(i18n.LabelInformation))
	pdf.SetFont("Helvetica", "", 12)
	missing := i18n.T(loc, i18n.PlaceholderMissing)
	y := 30.0
	for _, line := range []struct{ label, value string }{
		{i18n.LabelName, r.Header.Name},
		{i18n.LabelFamilyNames, r.Header.FamilyNames},
		{i18n.LabelBirthDate, r.Header.BirthDate},
		{i18n.LabelNationalID, r.Header.NationalID},
		{i18n.LabelHealthCard, r.Header.HealthCard},
	} {
		pdf.Text(marginLeft, y, fmt.Sprintf("%s: %s", t(line.label), tr(orPlaceholder(line.value, missing))))
		y += 8
	}

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(marginLeft, y+6, t(i18n.LabelMedicationPlan))
	pdf.SetY(y + 12)

	headers := []string{
		t(i18n.LabelDate), t(i18n.LabelTime), t(i18n.LabelProfessional),
		t(i18n.LabelReason), t(i18n.LabelMedication),
	}
	drawTableHeader(pdf, headers)
	pdf.SetFont("Helvetica", "", 10)
	notApplicable := i18n.T(loc, i18n.NotApplicable)
	for _, row := range r.Rows {
		cells := []string{
			tr(row.Date),
			tr(row.Time),
			tr(row.Professional),
			tr(row.Reason),
			tr(MedicationText(row.Medications, notApplicable)),
		}
		drawTableRow(pdf, headers, cells)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return &Artifact{
		Filename:    Filename(i18n.T(loc, i18n.FilenameMedication), "pdf"),
		ContentType: ContentTypePDF,
		Body:        buf.Bytes(),
	}, nil
}

// drawLogo places the logo in the top right corner. Any failure is logged
// and the document is rendered without it.
func (e *PDFExporter) drawLogo(ctx context.Context, pdf *fpdf.Fpdf) {
	if e.logo == nil {
		return
	}
	img, err := e.logo.Logo(ctx)
	if err != nil {
		e.logger.Warn().Err(err).Msg("logo unavailable, exporting without it")
		return
	}
	opts := fpdf.ImageOptions{ImageType: img.Type}
	pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(img.Data))
	if !pdf.Ok() {
		e.logger.Warn().Err(pdf.Error()).Msg("logo could not be decoded, exporting without it")
		pdf.ClearError()
		return
	}
	pageWidth, _ := pdf.GetPageSize()
	pdf.ImageOptions("logo", pageWidth-logoWidth-marginLeft, marginTop, logoWidth, 0, false, opts, 0, "")
}

// MedicationText joins medication descriptions for display, or returns
// notApplicable when there are none.
func MedicationText(meds []string, notApplicable string) string {
	if len(meds) == 0 {
		return notApplicable
	}
	return strings.Join(meds, ", ")
}

func orPlaceholder(v, placeholder string) string {
	if strings.TrimSpace(v) == "" {
		return placeholder
	}
	return v
}

func drawTableHeader(pdf *fpdf.Fpdf, headers []string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(22, 160, 133)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range headers {
		pdf.CellFormat(pdfColumns[i], headerHeight, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)
}

// drawTableRow writes one wrapped row, starting a new page with a repeated
// header when the row would cross the bottom margin.
func drawTableRow(pdf *fpdf.Fpdf, headers, cells []string) {
	lines := 1
	for i, c := range cells {
		if n := len(pdf.SplitLines([]byte(c), pdfColumns[i]-2)); n > lines {
			lines = n
		}
	}
	height := float64(lines)*lineHeight + 2

	_, pageHeight := pdf.GetPageSize()
	if pdf.GetY()+height > pageHeight-marginTop {
		pdf.AddPage()
		drawTableHeader(pdf, headers)
		pdf.SetFont("Helvetica", "", 10)
	}

	x, y := pdf.GetXY()
	for i, c := range cells {
		pdf.Rect(x, y, pdfColumns[i], height, "D")
		pdf.SetXY(x, y+1)
		pdf.MultiCell(pdfColumns[i], lineHeight, c, "", "L", false)
		x += pdfColumns[i]
	}
	pdf.SetXY(marginLeft, y+height)
}
