package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/punchclock/internal/export"
	"github.com/Tiliavir/punchclock/internal/model"
)

var (
	exportFormat string
	exportOutput string
	exportUpload bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all recorded days",
	Long: `Export all recorded days as an Excel workbook (default), CSV or JSON.

Without --output, xlsx is written to timesheet_YYYY-MM-DD.xlsx in the current
directory while csv and json go to stdout. --upload additionally copies the
workbook to the configured OneDrive folder.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "xlsx", "Output format: xlsx, csv, json")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (\"-\" for stdout)")
	exportCmd.Flags().BoolVar(&exportUpload, "upload", false, "Upload the xlsx workbook to OneDrive")
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportUpload && exportFormat != "xlsx" {
		return fmt.Errorf("--upload requires --format xlsx")
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

	var buf bytes.Buffer
	if err := writeExport(&buf, exportFormat, entries); err != nil {
		return err
	}

	name := export.FileName(time.Now())
	out := exportOutput
	if out == "" && exportFormat == "xlsx" {
		out = name
	}
	if out == "" || out == "-" {
		if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
			return err
		}
	} else {
		if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d day(s) to %s\n", len(entries), out)
		name = filepath.Base(out)
	}

	if !exportUpload {
		return nil
	}
	item, err := uploadToOneDrive(cmd, e, name, buf.Bytes())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Uploaded %s (%d bytes) %s\n", item.Name, item.Size, item.WebURL)
	return nil
}

// writeExport renders entries in the requested format.
func writeExport(w io.Writer, format string, entries []model.DailyEntry) error {
	switch format {
	case "xlsx":
		return export.Write(w, entries)
	case "csv":
		return export.WriteCSV(w, entries)
	case "json":
		return export.WriteJSON(w, entries)
	default:
		return fmt.Errorf("unknown format %q (want xlsx, csv or json)", format)
	}
}
