package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/punchclock/internal/export"
	"github.com/Tiliavir/punchclock/internal/model"
	"github.com/Tiliavir/punchclock/internal/timecalc"
)

var listDays int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded days",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().IntVar(&listDays, "days", 0, "Show only the most recent N days (0 = all)")
}

func runList(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	entries, err := e.store.ListEntries()
	if err != nil {
		return err
	}
	if listDays > 0 && len(entries) > listDays {
		entries = entries[len(entries)-listDays:]
	}

	printList(cmd.OutOrStdout(), entries)
	return nil
}

// printList renders entries the way they appear in the spreadsheet, with the
// summed worked time in the footer.
func printList(out io.Writer, entries []model.DailyEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No entries found.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	header := table.Row{}
	for _, h := range export.Header {
		header = append(header, h)
	}
	t.AppendHeader(header)

	for _, r := range export.Rows(entries) {
		row := table.Row{}
		for _, v := range r {
			row = append(row, v)
		}
		t.AppendRow(row)
	}

	t.AppendFooter(table.Row{"", "", "", "", "Total", timecalc.FormatHMM(totalWorked(entries)), ""})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

// totalWorked sums worked time over entries, skipping days it cannot be
// computed for.
func totalWorked(entries []model.DailyEntry) time.Duration {
	var total time.Duration
	for _, e := range entries {
		d, err := timecalc.ComputeDurations(e)
		if err != nil || d.Worked == nil {
			continue
		}
		total += *d.Worked
	}
	return total
}
