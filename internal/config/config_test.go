package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileWritesTemplateOnFirstRun(t *testing.T) {
	base := t.TempDir()
	t.Setenv("PUNCHCLOCK_HOME", base)
	t.Setenv("PORT", "")
	path := filepath.Join(base, "config.json")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Addr = %q, want %q", cfg.Server.Addr, DefaultAddr)
	}
	if cfg.Storage.Path != filepath.Join(base, DefaultStoreFile) {
		t.Errorf("Storage.Path = %q", cfg.Storage.Path)
	}
	if cfg.Preview.RecentDays != DefaultRecentDays {
		t.Errorf("RecentDays = %d", cfg.Preview.RecentDays)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("template not written: %v", err)
	}
	// The template itself must parse to the same defaults.
	again, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile on template: %v", err)
	}
	if again != cfg {
		t.Errorf("template config = %+v, want %+v", again, cfg)
	}
}

func TestLoadFileJSONWithComments(t *testing.T) {
	base := t.TempDir()
	t.Setenv("PUNCHCLOCK_HOME", base)
	t.Setenv("PORT", "")
	path := filepath.Join(base, "config.json")
	content := `// my settings
{
  "server": {
    // local only
    "addr": "127.0.0.1:8080"
  },
  "preview": {"recent_days": 14}
}
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:8080" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Preview.RecentDays != 14 {
		t.Errorf("RecentDays = %d", cfg.Preview.RecentDays)
	}
	if cfg.OneDrive.Folder != DefaultFolder {
		t.Errorf("Folder default not applied: %q", cfg.OneDrive.Folder)
	}
}

func TestLoadFileYAML(t *testing.T) {
	base := t.TempDir()
	t.Setenv("PUNCHCLOCK_HOME", base)
	t.Setenv("PORT", "")
	path := filepath.Join(base, "config.yaml")
	content := "storage:\n  path: /tmp/elsewhere.json\nlog:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Storage.Path != "/tmp/elsewhere.json" {
		t.Errorf("Storage.Path = %q", cfg.Storage.Path)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestLoadFileMissingYAMLIsNotCreated(t *testing.T) {
	base := t.TempDir()
	t.Setenv("PUNCHCLOCK_HOME", base)
	path := filepath.Join(base, "config.yml")

	if _, err := LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("YAML config should not be generated, stat err = %v", err)
	}
}

func TestLoadFileInvalidJSON(t *testing.T) {
	base := t.TempDir()
	t.Setenv("PUNCHCLOCK_HOME", base)
	path := filepath.Join(base, "config.json")
	if err := os.WriteFile(path, []byte("{nope"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestPortOverride(t *testing.T) {
	base := t.TempDir()
	t.Setenv("PUNCHCLOCK_HOME", base)
	t.Setenv("PORT", "4000")

	cfg, err := LoadFile(filepath.Join(base, "config.json"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":4000" {
		t.Errorf("Addr = %q, want :4000", cfg.Server.Addr)
	}
}

func TestFilePathOverride(t *testing.T) {
	t.Setenv("PUNCHCLOCK_CONFIG", "/etc/punchclock.yaml")
	got, err := FilePath()
	if err != nil {
		t.Fatal(err)
	}
	if got != "/etc/punchclock.yaml" {
		t.Errorf("FilePath = %q", got)
	}
}

func TestStripLineComments(t *testing.T) {
	in := []byte("// a\n{\n  // b\n  \"x\": 1\n}")
	got := string(stripLineComments(in))
	want := "{\n  \"x\": 1\n}\n"
	if got != want {
		t.Errorf("stripLineComments = %q, want %q", got, want)
	}
}
