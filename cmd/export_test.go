package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/Tiliavir/punchclock/internal/export"
	"github.com/Tiliavir/punchclock/internal/model"
)

func sampleEntries() []model.DailyEntry {
	e := model.NewDailyEntry("2024-03-04")
	e.Set(model.FieldInTime, "09:00:00")
	e.Set(model.FieldStartBreak, "12:00:00")
	e.Set(model.FieldEndBreak, "12:30:00")
	e.Set(model.FieldOutTime, "17:30:00")
	open := model.NewDailyEntry("2024-03-05")
	open.Set(model.FieldInTime, "08:15:00")
	return []model.DailyEntry{e, open}
}

func TestWriteExportCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := writeExport(&buf, "csv", sampleEntries()); err != nil {
		t.Fatalf("writeExport: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if lines[0] != strings.Join(export.Header, ",") {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "2024-03-04,09:00:00,12:00:00,12:30:00,17:30:00,8:00,0:30" {
		t.Errorf("row = %q", lines[1])
	}
	if lines[2] != "2024-03-05,08:15:00,,,,N/A," {
		t.Errorf("open row = %q", lines[2])
	}
}

func TestWriteExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writeExport(&buf, "json", sampleEntries()); err != nil {
		t.Fatalf("writeExport: %v", err)
	}
	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0]["totalHours"] != "8:00" || got[0]["breakDuration"] != "0:30" {
		t.Errorf("record = %v", got[0])
	}
	if got[1]["outTime"] != nil {
		t.Errorf("outTime = %v, want null", got[1]["outTime"])
	}
}

func TestWriteExportXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := writeExport(&buf, "xlsx", sampleEntries()); err != nil {
		t.Fatalf("writeExport: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(export.SheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("got %d rows, want 3", len(rows))
	}
}

func TestWriteExportUnknownFormat(t *testing.T) {
	if err := writeExport(&bytes.Buffer{}, "md", nil); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestWorkbookBytes(t *testing.T) {
	body, err := workbookBytes(sampleEntries())
	if err != nil {
		t.Fatalf("workbookBytes: %v", err)
	}
	if len(body) == 0 {
		t.Fatal("empty workbook")
	}
	f, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(export.SheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("got %d rows, want 3", len(rows))
	}
}
