package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/modelir/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigMissing(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg != defaultConfig() {
		t.Errorf("loadConfig() = %+v, want defaults", cfg)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
verbose = true
cache_dir = "/tmp/modelir-cache"
output_format = "json"
keep_unknown_dims = true
`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	want := Config{Verbose: true, CacheDir: "/tmp/modelir-cache", OutputFormat: "json", KeepUnknownDims: true}
	if cfg != want {
		t.Errorf("loadConfig() = %+v, want %+v", cfg, want)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", `verbose = `},
		{"unknown key", `colour = "red"`},
		{"bad format", `output_format = "yaml"`},
		{"wrong type", `verbose = "yes"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tt.body))
			if !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("loadConfig() error = %v, want %s", err, errors.ErrCodeInvalidFormat)
			}
		})
	}
}

func TestConfigPathXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/custom-config")

	path, err := configPath()
	if err != nil {
		t.Fatalf("configPath() error: %v", err)
	}
	want := filepath.Join("/tmp/custom-config", appName, "config.toml")
	if path != want {
		t.Errorf("configPath() = %q, want %q", path, want)
	}
}

func TestConfigCacheDirOverride(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	c.Config.CacheDir = "/srv/cache"

	dir, err := c.cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/srv/cache" {
		t.Errorf("cacheDir() = %q, want the configured directory", dir)
	}
}

func TestRootCommandAppliesConfig(t *testing.T) {
	doc, _ := writeModel(t)
	path := writeConfig(t, "verbose = true\nkeep_unknown_dims = true\n")

	var logs, out bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"inspect", doc, "--config", path})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("inspect: %v", err)
	}

	if !c.Config.KeepUnknownDims {
		t.Error("config should have been loaded")
	}
	if !strings.Contains(out.String(), "(-1, 4)") {
		t.Errorf("keep_unknown_dims should keep -1 dimensions:\n%s", out.String())
	}
	if !strings.Contains(logs.String(), "DEBU") {
		t.Error("verbose = true should enable debug logging")
	}
}
