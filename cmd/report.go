package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/punchclock/internal/model"
	"github.com/Tiliavir/punchclock/internal/timecalc"
)

var reportDate string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show worked time per day for one ISO week",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportDate, "date", "", "Any day of the week to report (YYYY-MM-DD, default: today)")
}

func runReport(cmd *cobra.Command, args []string) error {
	day := time.Now()
	if reportDate != "" {
		d, err := time.ParseInLocation(timecalc.DateLayout, reportDate, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --date value %q: %w", reportDate, err)
		}
		day = d
	}

	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	entries, err := e.store.ListEntries()
	if err != nil {
		return err
	}

	printReport(cmd.OutOrStdout(), day, entries)
	return nil
}

// printReport lists every day of the ISO week containing day with its worked
// and break time.
func printReport(out io.Writer, day time.Time, entries []model.DailyEntry) {
	monday, _ := timecalc.WeekRange(day)

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle("Week " + timecalc.ISOWeekLabel(day))
	t.AppendHeader(table.Row{"Date", "Day", "Worked", "Break"})

	var worked, breaks time.Duration
	for i := 0; i < 7; i++ {
		d := monday.AddDate(0, 0, i)
		entry, ok := findEntry(entries, timecalc.DateKey(d))
		w, b := "", ""
		if ok {
			durations, err := timecalc.ComputeDurations(entry)
			switch {
			case err != nil:
				w = "invalid"
			case durations.Worked != nil:
				worked += *durations.Worked
				w = timecalc.FormatDuration(*durations.Worked)
			default:
				w = "open"
			}
			if err == nil && durations.Break != nil {
				breaks += *durations.Break
				b = timecalc.FormatDuration(*durations.Break)
			}
		}
		t.AppendRow(table.Row{timecalc.DateKey(d), d.Weekday().String()[:3], w, b})
	}

	t.AppendFooter(table.Row{"", "Total", timecalc.FormatDuration(worked), timecalc.FormatDuration(breaks)})
	t.SetStyle(table.StyleRounded)
	t.Render()
}
