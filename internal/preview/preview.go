// Package preview shapes the store history for the browser: a summary of
// today plus the most recent entries, each with its computed durations.
package preview

import (
	"github.com/Tiliavir/punchclock/internal/model"
	"github.com/Tiliavir/punchclock/internal/timecalc"
)

const (
	// NotSet stands in for an unset punch in the preview table.
	NotSet = "Not set"
	// Placeholder is shown in the live summary when a duration is not available.
	Placeholder = "--"
	// NotAvailable is shown in the preview table when worked time cannot be computed.
	NotAvailable = "N/A"
)

// Row is an entry together with its rendered durations.
type Row struct {
	model.DailyEntry
	TotalHours string `json:"totalHours"`
	BreakTime  string `json:"breakTime"`
}

// Document is the preview payload.
type Document struct {
	Today        Row   `json:"today"`
	Recent       []Row `json:"recent"`
	TotalEntries int   `json:"totalEntries"`
}

// LegacyDocument is the older preview payload: the raw history.
type LegacyDocument struct {
	Entries []model.DailyEntry `json:"entries"`
}

// NewRow computes the durations of e. Total hours read "N/A" and break time
// "--" when they are not available.
func NewRow(e model.DailyEntry) Row {
	row := Row{DailyEntry: e, TotalHours: NotAvailable, BreakTime: Placeholder}
	d, err := timecalc.ComputeDurations(e)
	if err != nil {
		return row
	}
	if d.Worked != nil {
		row.TotalHours = timecalc.FormatHours(*d.Worked)
	}
	if d.Break != nil {
		row.BreakTime = timecalc.FormatBreakMinutes(*d.Break)
	}
	return row
}

// Build assembles the preview for today from the full history. Recent holds
// the last recentDays entries in storage order; recentDays <= 0 keeps them all.
func Build(entries []model.DailyEntry, today model.DailyEntry, recentDays int) Document {
	start := 0
	if recentDays > 0 && len(entries) > recentDays {
		start = len(entries) - recentDays
	}
	recent := make([]Row, 0, len(entries)-start)
	for _, e := range entries[start:] {
		recent = append(recent, NewRow(e))
	}
	return Document{
		Today:        NewRow(today),
		Recent:       recent,
		TotalEntries: len(entries),
	}
}

// Legacy wraps entries in the older {entries: [...]} shape.
func Legacy(entries []model.DailyEntry) LegacyDocument {
	if entries == nil {
		entries = []model.DailyEntry{}
	}
	return LegacyDocument{Entries: entries}
}

// Display returns the punch value, or "Not set" when it is absent or blank.
func Display(v *string) string {
	if v == nil || *v == "" {
		return NotSet
	}
	return *v
}
