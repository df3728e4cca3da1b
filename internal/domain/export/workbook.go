package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/salutdigital/portal/internal/platform/i18n"
)

var workbookWidths = []float64{12, 8, 26, 14, 40, 40}

// WorkbookExporter renders a report as an XLSX file with one sheet for the
// appointments and one for the patient block.
type WorkbookExporter struct{}

func (WorkbookExporter) Export(loc i18n.Locale, r Report) (*Artifact, error) {
	f := excelize.NewFile()
	body, err := writeWorkbook(f, loc, r)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close workbook: %w", cerr)
	}
	if err != nil {
		return nil, err
	}
	return &Artifact{
		Filename:    Filename(i18n.T(loc, i18n.FilenameHistory), "xlsx"),
		ContentType: ContentTypeXLSX,
		Body:        body,
	}, nil
}

func writeWorkbook(f *excelize.File, loc i18n.Locale, r Report) ([]byte, error) {
	history := sheetName(i18n.T(loc, i18n.LabelHistory))
	info := sheetName(i18n.T(loc, i18n.LabelInformation))

	if err := f.SetSheetName("Sheet1", history); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(info); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"16A085"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	headers := []string{
		i18n.T(loc, i18n.LabelDate),
		i18n.T(loc, i18n.LabelTime),
		i18n.T(loc, i18n.LabelProfessional),
		i18n.T(loc, i18n.LabelModality),
		i18n.T(loc, i18n.LabelReason),
		i18n.T(loc, i18n.LabelMedication),
	}
	if err := f.SetSheetRow(history, "A1", &headers); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(history, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}
	for i, w := range workbookWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(history, col, col, w); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	notApplicable := i18n.T(loc, i18n.NotApplicable)
	for i, row := range r.Rows {
		modality := i18n.T(loc, i18n.LabelRemote)
		if row.InPerson {
			modality = i18n.T(loc, i18n.LabelInPerson)
		}
		values := []interface{}{
			row.Date, row.Time, row.Professional, modality, row.Reason,
			MedicationText(row.Medications, notApplicable),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(history, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := f.SetPanes(history, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	missing := i18n.T(loc, i18n.PlaceholderMissing)
	for i, line := range []struct{ label, value string }{
		{i18n.LabelName, r.Header.Name},
		{i18n.LabelFamilyNames, r.Header.FamilyNames},
		{i18n.LabelBirthDate, r.Header.BirthDate},
		{i18n.LabelNationalID, r.Header.NationalID},
		{i18n.LabelHealthCard, r.Header.HealthCard},
	} {
		values := []interface{}{i18n.T(loc, line.label), orPlaceholder(line.value, missing)}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(info, cell, &values); err != nil {
			return nil, fmt.Errorf("write profile: %w", err)
		}
	}
	if err := f.SetColWidth(info, "A", "B", 28); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetName trims a label to the 31 characters Excel allows.
func sheetName(s string) string {
	r := []rune(s)
	if len(r) > 31 {
		r = r[:31]
	}
	return string(r)
}
