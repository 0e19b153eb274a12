package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Tiliavir/punchclock/internal/model"
	"github.com/Tiliavir/punchclock/internal/timecalc"
)

// SheetName is the worksheet holding the timesheet.
const SheetName = "Time Sheet"

// ContentType is the MIME type of the workbook produced by Write.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	columnWidth  = 15
	headerFill   = "E0E0E0"
	notAvailable = "N/A"
)

// Header is the first row of every export.
var Header = []string{"Date", "In Time", "Start Break", "End Break", "Out Time", "Total Hours", "Break Duration"}

// FileName returns the download name for a timesheet produced on day t.
func FileName(t time.Time) string {
	return fmt.Sprintf("timesheet_%s.xlsx", timecalc.DateKey(t))
}

// Row renders one entry for the spreadsheet: unset punches are empty cells,
// durations use H:MM and a missing total reads "N/A".
func Row(e model.DailyEntry) []string {
	row := []string{e.Date}
	for _, f := range model.Fields {
		v := ""
		if p := e.Get(f); p != nil {
			v = *p
		}
		row = append(row, v)
	}

	total, brk := notAvailable, ""
	if d, err := timecalc.ComputeDurations(e); err == nil {
		if d.Worked != nil {
			total = timecalc.FormatHMM(*d.Worked)
		}
		if d.Break != nil {
			brk = timecalc.FormatHMM(*d.Break)
		}
	}
	return append(row, total, brk)
}

// Rows renders entries in order, without the header.
func Rows(entries []model.DailyEntry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, Row(e))
	}
	return rows
}

// Build lays out entries as an xlsx workbook with a bold, shaded header row.
// The caller owns the returned file and should Close it.
func Build(entries []model.DailyEntry) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(Header))
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetColWidth(SheetName, "A", lastCol, columnWidth); err != nil {
		f.Close()
		return nil, fmt.Errorf("setting column width: %w", err)
	}

	if err := setRow(f, 1, Header); err != nil {
		f.Close()
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating header style: %w", err)
	}
	if err := f.SetRowStyle(SheetName, 1, 1, style); err != nil {
		f.Close()
		return nil, fmt.Errorf("styling header: %w", err)
	}

	for i, row := range Rows(entries) {
		if err := setRow(f, i+2, row); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func setRow(f *excelize.File, n int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
		return fmt.Errorf("writing row %d: %w", n, err)
	}
	return nil
}

// Write streams the xlsx workbook for entries to w.
func Write(w io.Writer, entries []model.DailyEntry) error {
	f, err := Build(entries)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// WriteCSV writes the same table as the workbook in CSV form.
func WriteCSV(w io.Writer, entries []model.DailyEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	if err := cw.WriteAll(Rows(entries)); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

type jsonRecord struct {
	model.DailyEntry
	TotalHours    string `json:"totalHours"`
	BreakDuration string `json:"breakDuration"`
}

// WriteJSON writes entries with their computed durations as an indented
// JSON array.
func WriteJSON(w io.Writer, entries []model.DailyEntry) error {
	records := make([]jsonRecord, 0, len(entries))
	for _, e := range entries {
		row := Row(e)
		records = append(records, jsonRecord{
			DailyEntry:    e,
			TotalHours:    row[len(row)-2],
			BreakDuration: row[len(row)-1],
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}
