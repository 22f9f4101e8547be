package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	planner "github.com/tidyplan/plannerd/internal"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plannerd.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  addr: \":9090\"\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	// Untouched sections keep their defaults.
	if cfg.Database.DSN != "plannerd.db" {
		t.Errorf("dsn = %q", cfg.Database.DSN)
	}
	if !cfg.Cache.Enabled || cfg.Cache.DefaultTTL != 5*time.Minute {
		t.Errorf("cache = %+v", cfg.Cache)
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("PLANNERD_TEST_DSN", "/data/planner.db")
	path := writeConfig(t, "database:\n  dsn: \"${PLANNERD_TEST_DSN}\"\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Database.DSN != "/data/planner.db" {
		t.Errorf("dsn = %q", cfg.Database.DSN)
	}
}

func TestLoadUnsetEnvLeftVerbatim(t *testing.T) {
	path := writeConfig(t, "database:\n  dsn: \"${PLANNERD_NO_SUCH_VAR}\"\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Database.DSN != "${PLANNERD_NO_SUCH_VAR}" {
		t.Errorf("dsn = %q, want the pattern preserved", cfg.Database.DSN)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestTTLFor(t *testing.T) {
	c := CacheConfig{
		Enabled:    true,
		DefaultTTL: 5 * time.Minute,
		ResourceTTL: map[string]time.Duration{
			"events": 30 * time.Second,
		},
	}
	if got := c.TTLFor(planner.ResourceEvents); got != 30*time.Second {
		t.Errorf("events ttl = %v", got)
	}
	if got := c.TTLFor(planner.ResourceTodos); got != 5*time.Minute {
		t.Errorf("todos ttl = %v", got)
	}

	c.Enabled = false
	if got := c.TTLFor(planner.ResourceTodos); got != 0 {
		t.Errorf("disabled ttl = %v, want 0", got)
	}
}
