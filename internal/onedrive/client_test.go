package onedrive_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Tiliavir/punchclock/internal/onedrive"
)

func TestUpload(t *testing.T) {
	var gotPath, gotMethod, gotType string
	var gotBody []byte
	var gotLength int64
	var gotEncoding []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLength = r.ContentLength
		gotEncoding = r.TransferEncoding
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"item-1","name":"timesheet_2026-02-27.xlsx","size":4,"webUrl":"https://example.invalid/item-1"}`)
	}))
	defer srv.Close()

	c := onedrive.NewClientWithHTTP(srv.Client(), srv.URL+"/")
	item, err := c.Upload(context.Background(), "/Work/Timesheets/", "timesheet_2026-02-27.xlsx", "application/octet-stream", []byte("xlsx"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if gotMethod != http.MethodPut {
		t.Errorf("method = %s, want PUT", gotMethod)
	}
	if want := "/me/drive/root:/Work/Timesheets/timesheet_2026-02-27.xlsx:/content"; gotPath != want {
		t.Errorf("path = %q, want %q", gotPath, want)
	}
	if gotType != "application/octet-stream" {
		t.Errorf("content type = %q", gotType)
	}
	if gotLength != 4 || len(gotEncoding) != 0 {
		t.Errorf("content length = %d, transfer encoding = %v, want 4 and none", gotLength, gotEncoding)
	}
	if string(gotBody) != "xlsx" {
		t.Errorf("body = %q", gotBody)
	}
	if item.ID != "item-1" || item.WebURL != "https://example.invalid/item-1" {
		t.Errorf("item = %+v", item)
	}
}

func TestUploadErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":"accessDenied"}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	c := onedrive.NewClientWithHTTP(srv.Client(), srv.URL)
	_, err := c.Upload(context.Background(), "Timesheets", "t.xlsx", "application/octet-stream", []byte("x"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "403") || !strings.Contains(err.Error(), "accessDenied") {
		t.Errorf("error = %v", err)
	}
}
