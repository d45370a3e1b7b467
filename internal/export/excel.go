// Package export writes call results and ATS scores of a job post to an
// Excel workbook.
package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/amishk599/hirecall/internal/model"
)

const (
	CallsSheet  = "Call Results"
	ScoresSheet = "ATS Scores"
)

// Data is what one workbook covers.
type Data struct {
	Calls        []*model.Call
	Applications []*model.JobApplication
}

var (
	callHeader  = []any{"Candidate", "Status", "Duration (s)", "Fit Score", "Recommendation", "Office Preference", "Strengths", "Concerns", "Viewed", "Notes"}
	scoreHeader = []any{"Candidate", "Email", "Score", "Shortlisted", "Status", "Applied"}
)

// WriteFile saves the workbook at path, adding an .xlsx extension if missing.
func WriteFile(path string, d Data) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	f, err := build(d)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("saving workbook %s: %w", path, err)
	}
	return path, nil
}

// Write streams the workbook to w.
func Write(w io.Writer, d Data) error {
	f, err := build(d)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func build(d Data) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", CallsSheet); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(ScoresSheet); err != nil {
		f.Close()
		return nil, err
	}

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	names := make(map[string]string, len(d.Applications))
	for _, a := range d.Applications {
		names[a.ID] = a.CandidateName
	}

	rows := make([][]any, 0, len(d.Calls))
	for _, c := range d.Calls {
		rows = append(rows, callRow(c, names[c.JobApplicationID]))
	}
	if err := writeSheet(f, CallsSheet, header, callHeader, rows); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing %s: %w", CallsSheet, err)
	}

	rows = rows[:0]
	for _, a := range d.Applications {
		rows = append(rows, scoreRow(a))
	}
	if err := writeSheet(f, ScoresSheet, header, scoreHeader, rows); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing %s: %w", ScoresSheet, err)
	}
	return f, nil
}

func callRow(c *model.Call, fallbackName string) []any {
	row := []any{fallbackName, string(c.Status), c.Duration, "", "", "", "", "", yesNo(c.IsViewed), c.Notes}
	if r := c.SummaryReport; r != nil {
		if r.CandidateName != "" {
			row[0] = r.CandidateName
		}
		row[3] = r.Summary.FitScore
		row[4] = string(r.Summary.Recommendation)
		row[5] = string(r.Responses.OfficePreference)
		row[6] = strings.Join(r.Summary.Strengths, "; ")
		row[7] = strings.Join(r.Summary.Concerns, "; ")
	}
	return row
}

func scoreRow(a *model.JobApplication) []any {
	var score any = ""
	if a.ATSScore != nil {
		score = *a.ATSScore
	}
	return []any{a.CandidateName, a.CandidateEmail, score, yesNo(a.IsShortlisted), string(a.Status), a.CreatedAt.Format("2006-01-02")}
}

func writeSheet(f *excelize.File, sheet string, style int, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	return f.SetColWidth(sheet, "A", lastCol, 20)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
