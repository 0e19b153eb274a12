package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/punchclock/internal/model"
	"github.com/Tiliavir/punchclock/internal/preview"
	"github.com/Tiliavir/punchclock/internal/timecalc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show today's punches and worked time",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	entries, err := e.store.ListEntries()
	if err != nil {
		return err
	}
	today, _ := findEntry(entries, timecalc.DateKey(time.Now()))
	printStatus(cmd.OutOrStdout(), today)
	return nil
}

// printStatus writes the live summary: decimal hours and break minutes,
// "--" when not available.
func printStatus(out io.Writer, entry model.DailyEntry) {
	fmt.Fprintf(out, "Today: %s\n", entry.Date)
	for _, f := range model.Fields {
		fmt.Fprintf(out, "  %-12s %s\n", f.Label()+":", preview.Display(entry.Get(f)))
	}

	hours, brk := preview.Placeholder, preview.Placeholder
	d, err := timecalc.ComputeDurations(entry)
	if err == nil && d.Worked != nil {
		hours = timecalc.FormatHours(*d.Worked)
	}
	if err == nil && d.Break != nil {
		brk = timecalc.FormatBreakMinutes(*d.Break)
	}
	fmt.Fprintf(out, "Total hours: %s\n", hours)
	fmt.Fprintf(out, "Break:       %s\n", brk)
	if err != nil {
		fmt.Fprintf(out, "Warning: %v\n", err)
	}
}
