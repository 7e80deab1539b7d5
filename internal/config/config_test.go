package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"execmany/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "execmany", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWorkspace := filepath.Join(tempHome, ".local", "share", "execmany", "workspace")
	if cfg.Paths.WorkspaceDir != wantWorkspace {
		t.Fatalf("unexpected workspace dir: got %q want %q", cfg.Paths.WorkspaceDir, wantWorkspace)
	}
	if cfg.JobDatabasePath() != filepath.Join(tempHome, ".local", "share", "execmany", "state", "jobs.db") {
		t.Fatalf("unexpected job database path %q", cfg.JobDatabasePath())
	}
	if cfg.Execute.MaxConcurrentJobs != 4 {
		t.Fatalf("unexpected max concurrent jobs %d", cfg.Execute.MaxConcurrentJobs)
	}
	if cfg.PollInterval() != 500*time.Millisecond {
		t.Fatalf("unexpected poll interval %s", cfg.PollInterval())
	}
	if cfg.FFprobeBinary() != "ffprobe" {
		t.Fatalf("unexpected ffprobe binary %q", cfg.FFprobeBinary())
	}
	if cfg.CommandAllowed("ffmpeg") {
		t.Fatal("expected empty allow list to reject commands")
	}
}

func TestLoadCustomConfigFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(t.TempDir(), "execmany.toml")
	payload := map[string]any{
		"paths": map[string]any{
			"workspace_dir": "~/ws",
			"state_dir":     "~/state",
		},
		"execute": map[string]any{
			"allowed_commands":    []string{" ffmpeg ", "sox", "ffmpeg", ""},
			"max_concurrent_jobs": 2,
			"job_timeout_seconds": 30,
		},
		"workflow": map[string]any{
			"poll_interval_ms": 50,
		},
		"logging": map[string]any{
			"format": "JSON",
			"level":  "Debug",
		},
	}
	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected custom config to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.WorkspaceDir != filepath.Join(tempHome, "ws") {
		t.Fatalf("unexpected workspace dir %q", cfg.Paths.WorkspaceDir)
	}
	if got := strings.Join(cfg.Execute.AllowedCommands, ","); got != "ffmpeg,sox" {
		t.Fatalf("unexpected allowed commands %q", got)
	}
	if !cfg.CommandAllowed("sox") || cfg.CommandAllowed("rm") {
		t.Fatal("allow list not honoured")
	}
	if cfg.JobTimeout() != 30*time.Second {
		t.Fatalf("unexpected job timeout %s", cfg.JobTimeout())
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging %+v", cfg.Logging)
	}
}

func TestWildcardAllowsAnyCommand(t *testing.T) {
	cfg := config.Default()
	cfg.Execute.AllowedCommands = []string{config.AllowAnyCommand}
	if !cfg.CommandAllowed("anything") {
		t.Fatal("expected wildcard to allow any command")
	}
	if !cfg.AllowsAnyCommand() {
		t.Fatal("expected AllowsAnyCommand to report wildcard")
	}
	if cfg.CommandAllowed("  ") {
		t.Fatal("blank command must never be allowed")
	}
}

func TestEnvOverridesWorkspace(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	override := t.TempDir()
	t.Setenv("EXECMANY_WORKSPACE_DIR", override)

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.WorkspaceDir != override {
		t.Fatalf("expected env override %q, got %q", override, cfg.Paths.WorkspaceDir)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"negative concurrency", func(c *config.Config) { c.Execute.MaxConcurrentJobs = -1 }, "execute.max_concurrent_jobs"},
		{"command with args", func(c *config.Config) { c.Execute.AllowedCommands = []string{"ffmpeg -y"} }, "single executable"},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"negative poll", func(c *config.Config) { c.Workflow.PollIntervalMillis = -5 }, "workflow.poll_interval_ms"},
		{"missing workspace", func(c *config.Config) { c.Paths.WorkspaceDir = "" }, "paths.workspace_dir"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %q", tc.want, err.Error())
			}
		})
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[paths]\nlibrary_dir = \"/x\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if !cfg.CommandAllowed("ffmpeg") {
		t.Fatal("expected sample to allow ffmpeg")
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkspaceDir = filepath.Join(base, "ws")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.WorkspaceDir, cfg.Paths.StateDir, cfg.Paths.LogDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s", dir)
		}
	}
}
