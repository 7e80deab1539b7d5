package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// AllowAnyCommand in execute.allowed_commands lets the execution service run
// any binary on PATH.
const AllowAnyCommand = "*"

// Paths contains directory configuration.
type Paths struct {
	WorkspaceDir string `toml:"workspace_dir"`
	StateDir     string `toml:"state_dir"`
	LogDir       string `toml:"log_dir"`
}

// Execute contains configuration for the local execution service.
type Execute struct {
	AllowedCommands   []string `toml:"allowed_commands"`
	MaxConcurrentJobs int      `toml:"max_concurrent_jobs"`
	JobTimeoutSeconds int      `toml:"job_timeout_seconds"`
}

// Inspection contains configuration for the media inspection service.
type Inspection struct {
	FFprobeBinary string `toml:"ffprobe_binary"`
}

// Workflow contains configuration for the execute-many step itself.
type Workflow struct {
	PollIntervalMillis int `toml:"poll_interval_ms"`
	StagingMaxAgeHours int `toml:"staging_max_age_hours"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for execmany.
//
// Configuration sections by subsystem:
//   - Paths: workspace, job state and log directories
//   - Execute: allowed commands, concurrency and timeouts for execute jobs
//   - Inspection: ffprobe binary used by inspect jobs
//   - Workflow: barrier polling and staging retention
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Execute    Execute    `toml:"execute"`
	Inspection Inspection `toml:"inspection"`
	Workflow   Workflow   `toml:"workflow"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/execmany/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("execmany.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the workspace, state, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkspaceDir, c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// JobDatabasePath returns the location of the SQLite job store.
func (c *Config) JobDatabasePath() string {
	return filepath.Join(c.Paths.StateDir, "jobs.db")
}

// FFprobeBinary returns the ffprobe executable used by the inspection service.
func (c *Config) FFprobeBinary() string {
	if bin := strings.TrimSpace(c.Inspection.FFprobeBinary); bin != "" {
		return bin
	}
	return defaultFFprobeBinary
}

// CommandAllowed reports whether the execution service may launch command.
func (c *Config) CommandAllowed(command string) bool {
	command = strings.TrimSpace(command)
	if command == "" {
		return false
	}
	for _, allowed := range c.Execute.AllowedCommands {
		if allowed == AllowAnyCommand || allowed == command {
			return true
		}
	}
	return false
}

// AllowsAnyCommand reports whether the allow list contains the wildcard entry.
func (c *Config) AllowsAnyCommand() bool {
	return slices.Contains(c.Execute.AllowedCommands, AllowAnyCommand)
}

// JobTimeout returns the per-job execution timeout.
func (c *Config) JobTimeout() time.Duration {
	return time.Duration(c.Execute.JobTimeoutSeconds) * time.Second
}

// PollInterval returns the barrier polling cadence.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Workflow.PollIntervalMillis) * time.Millisecond
}

// StagingMaxAge returns how long staged job output may linger before cleanup.
func (c *Config) StagingMaxAge() time.Duration {
	return time.Duration(c.Workflow.StagingMaxAgeHours) * time.Hour
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
