package config

import (
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/statebox/internal/errors"
	"github.com/vango-dev/statebox/pkg/state"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func code(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Server.Port != DefaultPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, DefaultPort)
	}
	if cfg.Server.Host != DefaultHost {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, DefaultHost)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Namespace != DefaultNamespace {
		t.Errorf("Metrics = %+v", cfg.Metrics)
	}
	if cfg.Snapshot.Backend != BackendNone {
		t.Errorf("Snapshot.Backend = %q, want none", cfg.Snapshot.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(dir)
	if code(err) != "E100" {
		t.Fatalf("missing config error = %v, want E100", err)
	}

	writeConfig(t, dir, `{
  "server": {"port": 8080},
  "tracing": {"enabled": true},
  "snapshot": {"backend": "s3", "bucket": "snaps", "pathStyle": true},
  "log": {"level": "debug", "format": "json"},
  "notifyMode": "unlocked",
  "states": {
    "count": 3,
    "user": {"name": "ada"}
  }
}
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.Server.Host != DefaultHost {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if !cfg.Tracing.Enabled || cfg.Tracing.TracerName != DefaultTracerName {
		t.Errorf("Tracing = %+v", cfg.Tracing)
	}
	if cfg.Snapshot.Bucket != "snaps" || !cfg.Snapshot.PathStyle {
		t.Errorf("Snapshot = %+v", cfg.Snapshot)
	}
	if cfg.Mode() != state.NotifyUnlocked {
		t.Errorf("Mode() = %v, want unlocked", cfg.Mode())
	}
	if level, _ := cfg.SlogLevel(); level != slog.LevelDebug {
		t.Errorf("SlogLevel() = %v, want debug", level)
	}
	if string(cfg.States["count"]) != "3" || string(cfg.States["user"]) != `{"name": "ada"}` {
		t.Errorf("States = %s / %s", cfg.States["count"], cfg.States["user"])
	}
	if cfg.Path() != filepath.Join(dir, ConfigFileName) {
		t.Errorf("Path() = %q", cfg.Path())
	}
}

func TestLoadSyntaxError(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "{\n  \"server\": {\n    \"port\": 80,\n  }\n}\n")

	_, err := LoadFile(path)
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Code != "E101" {
		t.Fatalf("error = %v, want E101", err)
	}
	if e.Location == nil || e.Location.File != path || e.Location.Line != 4 {
		t.Errorf("Location = %v, want line 4 of %s", e.Location, path)
	}
}

func TestLoadTypeError(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `{"server": {"port": "eighty"}}`)

	_, err := LoadFile(path)
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Code != "E102" {
		t.Fatalf("error = %v, want E102", err)
	}
	if e.Location == nil || e.Location.Line != 1 {
		t.Errorf("Location = %v", e.Location)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, false},
		{"negative watch buffer", func(c *Config) { c.Server.WatchBuffer = -1 }, false},
		{"memory backend", func(c *Config) { c.Snapshot.Backend = BackendMemory }, true},
		{"s3 without bucket", func(c *Config) { c.Snapshot.Backend = BackendS3 }, false},
		{"s3 with bucket", func(c *Config) {
			c.Snapshot.Backend = BackendS3
			c.Snapshot.Bucket = "b"
		}, true},
		{"unknown backend", func(c *Config) { c.Snapshot.Backend = "redis" }, false},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, false},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, false},
		{"bad notify mode", func(c *Config) { c.NotifyMode = "eventually" }, false},
		{"empty state name", func(c *Config) { c.States[" "] = []byte("1") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok && code(err) != "E102" {
				t.Errorf("Validate() = %v, want E102", err)
			}
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)

	cfg := New()
	cfg.Name = "demo"
	cfg.States["count"] = []byte("0")
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if loaded.Name != "demo" || string(loaded.States["count"]) != "0" {
		t.Errorf("reloaded = %+v", loaded)
	}

	loaded.Server.Port = 9000
	if err := loaded.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	again, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if again.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", again.Server.Port)
	}

	if code(New().Save()) != "E103" {
		t.Error("Save without a path should fail with E103")
	}
}

func TestAddress(t *testing.T) {
	cfg := New()
	if got := cfg.Address(); got != "localhost:7070" {
		t.Errorf("Address() = %q", got)
	}
	cfg.Server.Host = "::1"
	if got := cfg.Address(); got != "[::1]:7070" {
		t.Errorf("Address() = %q", got)
	}
}

func TestFindRoot(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "{}")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	found, err := FindRoot(nested)
	if err != nil {
		t.Fatalf("FindRoot: %v", err)
	}
	want, _ := filepath.Abs(root)
	if found != want {
		t.Errorf("FindRoot() = %q, want %q", found, want)
	}

	if _, err := FindRoot(t.TempDir()); code(err) != "E100" {
		t.Errorf("FindRoot without config = %v, want E100", err)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "statebox.yaml")
	content := `server:
  port: 9090
snapshot:
  backend: memory
notifyMode: unlocked
states:
  count: 2
  user:
    name: ada
    tags: [a, b]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if !Exists(dir) {
		t.Fatal("Exists() = false for statebox.yaml")
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}
	if cfg.Server.Port != 9090 || cfg.Snapshot.Backend != BackendMemory {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Mode() != state.NotifyUnlocked {
		t.Errorf("Mode() = %v", cfg.Mode())
	}
	if string(cfg.States["user"]) != `{"name":"ada","tags":["a","b"]}` {
		t.Errorf("user = %s", cfg.States["user"])
	}
}

func TestLoadPrefersJSON(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{"server": {"port": 1111}}`)
	if err := os.WriteFile(filepath.Join(dir, "statebox.yml"), []byte("server:\n  port: 2222\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 1111 {
		t.Errorf("Server.Port = %d, want the JSON file's 1111", cfg.Server.Port)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statebox.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); code(err) != "E101" {
		t.Errorf("LoadFile = %v, want E101", err)
	}

	if err := os.WriteFile(path, []byte("server:\n  port: high\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); code(err) != "E102" {
		t.Errorf("LoadFile = %v, want E102", err)
	}
}

func TestSaveYAMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statebox.yml")

	cfg := New()
	cfg.Tracing.Enabled = true
	cfg.States["list"] = []byte(`[1,2,3]`)
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
		t.Errorf("expected YAML output, got:\n%s", data)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !loaded.Tracing.Enabled || string(loaded.States["list"]) != "[1,2,3]" {
		t.Errorf("reloaded = %+v / %s", loaded.Tracing, loaded.States["list"])
	}
}
