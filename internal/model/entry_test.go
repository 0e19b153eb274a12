package model_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/Tiliavir/punchclock/internal/model"
)

func TestParseField(t *testing.T) {
	for _, f := range model.Fields {
		got, err := model.ParseField(string(f))
		if err != nil {
			t.Fatalf("ParseField(%q): %v", f, err)
		}
		if got != f {
			t.Errorf("ParseField(%q) = %q", f, got)
		}
	}

	for _, name := range []string{"", "date", "intime", "lunch"} {
		_, err := model.ParseField(name)
		var invalid *model.InvalidFieldError
		if !errors.As(err, &invalid) {
			t.Fatalf("ParseField(%q) error = %v, want InvalidFieldError", name, err)
		}
		if invalid.Name != name {
			t.Errorf("InvalidFieldError.Name = %q, want %q", invalid.Name, name)
		}
	}
}

func TestDailyEntrySetGet(t *testing.T) {
	e := model.NewDailyEntry("2026-02-27")
	for _, f := range model.Fields {
		if e.Get(f) != nil {
			t.Fatalf("new entry has %s set", f)
		}
	}
	e.Set(model.FieldStartBreak, "12:00:00")
	if v := e.Get(model.FieldStartBreak); v == nil || *v != "12:00:00" {
		t.Errorf("StartBreak = %v, want 12:00:00", v)
	}
	e.Set(model.FieldStartBreak, "12:05:00")
	if *e.StartBreak != "12:05:00" {
		t.Errorf("StartBreak after overwrite = %q", *e.StartBreak)
	}
}

func TestDailyEntryJSONNulls(t *testing.T) {
	e := model.NewDailyEntry("2026-02-27")
	e.Set(model.FieldInTime, "09:00:00")
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"date":"2026-02-27","inTime":"09:00:00","startBreak":null,"endBreak":null,"outTime":null}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}

func TestDocumentWithoutLastUpdated(t *testing.T) {
	var doc model.Document
	if err := json.Unmarshal([]byte(`{"entries":[{"date":"2026-02-27","inTime":null}]}`), &doc); err != nil {
		t.Fatal(err)
	}
	if doc.LastUpdated != nil {
		t.Errorf("LastUpdated = %v, want nil", doc.LastUpdated)
	}
	data, _ := json.Marshal(doc)
	if strings.Contains(string(data), "lastUpdated") {
		t.Errorf("lastUpdated should be omitted: %s", data)
	}
}
