package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/punchclock/internal/config"
	"github.com/Tiliavir/punchclock/internal/export"
	"github.com/Tiliavir/punchclock/internal/model"
	"github.com/Tiliavir/punchclock/internal/onedrive"
)

var onedriveFile string

var onedriveCmd = &cobra.Command{
	Use:   "onedrive",
	Short: "Copy timesheets to OneDrive",
}

var onedriveLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with the device code flow and store the token",
	Args:  cobra.NoArgs,
	RunE:  runOneDriveLogin,
}

var onedriveUploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload the current workbook (or --file) to the configured folder",
	Args:  cobra.NoArgs,
	RunE:  runOneDriveUpload,
}

func init() {
	onedriveUploadCmd.Flags().StringVar(&onedriveFile, "file", "", "Upload this file instead of a freshly built workbook")
	onedriveCmd.AddCommand(onedriveLoginCmd)
	onedriveCmd.AddCommand(onedriveUploadCmd)
}

func runOneDriveLogin(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	store, err := onedrive.DefaultTokenStore()
	if err != nil {
		return err
	}
	if _, err := onedrive.Authenticate(cmd.Context(), onedrive.OAuth2Config(cfg.OneDrive), store, cmd.ErrOrStderr()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Signed in to OneDrive.")
	return nil
}

func runOneDriveUpload(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	var (
		name string
		body []byte
	)
	if onedriveFile != "" {
		body, err = os.ReadFile(onedriveFile)
		if err != nil {
			return fmt.Errorf("reading %s: %w", onedriveFile, err)
		}
		name = filepath.Base(onedriveFile)
	} else {
		entries, err := e.store.ListEntries()
		if err != nil {
			return err
		}
		body, err = workbookBytes(entries)
		if err != nil {
			return err
		}
		name = export.FileName(time.Now())
	}

	item, err := uploadToOneDrive(cmd, e, name, body)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s (%d bytes)\n", item.Name, item.Size)
	if item.WebURL != "" {
		fmt.Fprintln(cmd.OutOrStdout(), item.WebURL)
	}
	return nil
}

// uploadToOneDrive authenticates (prompting if needed) and puts body into
// the configured folder.
func uploadToOneDrive(cmd *cobra.Command, e *env, name string, body []byte) (*onedrive.DriveItem, error) {
	ctx := cmd.Context()
	store, err := onedrive.DefaultTokenStore()
	if err != nil {
		return nil, err
	}
	oc := onedrive.OAuth2Config(e.cfg.OneDrive)
	tok, err := onedrive.Authenticate(ctx, oc, store, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	client := onedrive.NewClient(ctx, tok, oc, store)
	e.logger.Info("uploading to onedrive", "folder", e.cfg.OneDrive.Folder, "name", name)
	return client.Upload(ctx, e.cfg.OneDrive.Folder, name, uploadContentType(name), body)
}

// workbookBytes builds the xlsx workbook in memory.
func workbookBytes(entries []model.DailyEntry) ([]byte, error) {
	var buf bytes.Buffer
	if err := export.Write(&buf, entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func uploadContentType(name string) string {
	switch filepath.Ext(name) {
	case ".xlsx":
		return export.ContentType
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
