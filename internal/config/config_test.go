package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tintcore/internal/journal"
	"tintcore/internal/pack"
	"tintcore/pkg/domain"
)

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadFileResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "tintcore.yaml", `
packs:
  - name: base
    root: packs/base
  - name: remote
    driver: s3
    bucket: overrides
    region: eu-west-1
journal:
  driver: sqlite
  dsn: /var/lib/tintcore/journal.db
log:
  level: debug
  json: true
watch:
  debounce: 1s
host:
  manifest: host.yaml
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Packs) != 2 || cfg.Packs[0].Root != filepath.Join(dir, "packs/base") || cfg.Packs[1].Driver != pack.DriverS3 {
		t.Fatalf("unexpected packs %+v", cfg.Packs)
	}
	if cfg.Journal.Driver != journal.SQLite || cfg.Watch.Debounce != time.Second || !cfg.Log.JSON {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Host.Manifest != filepath.Join(dir, "host.yaml") {
		t.Fatalf("manifest = %s", cfg.Host.Manifest)
	}
	if roots := cfg.FilesystemRoots(); len(roots) != 1 {
		t.Fatalf("fs roots = %v", roots)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TINTCORE_PACKS", "/a, /b,")
	t.Setenv("TINTCORE_JOURNAL_DRIVER", "Postgres")
	t.Setenv("TINTCORE_JOURNAL_DSN", "postgres://db/tint")
	t.Setenv("TINTCORE_METRICS_ADDR", ":9100")
	t.Setenv("TINTCORE_WATCH_DEBOUNCE", "50ms")
	t.Setenv("TINTCORE_LOG_JSON", "true")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Packs) != 2 || cfg.Packs[1].Root != "/b" {
		t.Fatalf("packs = %+v", cfg.Packs)
	}
	if cfg.Journal.Driver != journal.Postgres || cfg.Journal.DSN != "postgres://db/tint" {
		t.Fatalf("journal = %+v", cfg.Journal)
	}
	if cfg.Metrics.Addr != ":9100" || cfg.Watch.Debounce != 50*time.Millisecond || !cfg.Log.JSON {
		t.Fatalf("unexpected %+v", cfg)
	}
}

func TestEnvRejectsBadValues(t *testing.T) {
	t.Setenv("TINTCORE_WATCH_DEBOUNCE", "soon")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected duration error")
	}
}

func TestValidateCollectsProblems(t *testing.T) {
	cfg := Default()
	cfg.Packs = []pack.Source{{Driver: pack.DriverFilesystem}, {Driver: pack.DriverS3}, {Driver: "ftp"}}
	cfg.Journal.Driver = "mongo"
	cfg.Log.Level = "loud"
	cfg.Watch.Debounce = -time.Second
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"needs a root", "needs a bucket", `"ftp"`, `"mongo"`, `"loud"`, "negative debounce"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err, want)
		}
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestLoadManifest(t *testing.T) {
	path := write(t, t.TempDir(), "host.yaml", `
blocks: [stone, "mod:marble"]
dimensions: [overworld]
particles: [flame]
items: [bow]
`)
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("manifest: %v", err)
	}
	if len(m.Blocks) != 2 || m.Blocks[1] != domain.MustParseResourceID("mod:marble") || m.Items[0] != domain.MustParseResourceID("bow") {
		t.Fatalf("unexpected manifest %+v", m)
	}
	if _, err := LoadManifest(write(t, t.TempDir(), "bad.yaml", "blocks: [\"Bad Id\"]")); err == nil {
		t.Fatalf("expected invalid id error")
	}
	if m, err := LoadManifest(""); err != nil || len(m.Blocks) != 0 {
		t.Fatalf("empty path should yield empty manifest")
	}
}
