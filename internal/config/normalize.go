package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeExecute()
	c.normalizeInspection()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("EXECMANY_WORKSPACE_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.WorkspaceDir = value
	}
	if strings.TrimSpace(c.Paths.WorkspaceDir) == "" {
		c.Paths.WorkspaceDir = defaultWorkspaceDir
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}

	var err error
	if c.Paths.WorkspaceDir, err = expandPath(c.Paths.WorkspaceDir); err != nil {
		return fmt.Errorf("paths.workspace_dir: %w", err)
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeExecute() {
	seen := make(map[string]struct{}, len(c.Execute.AllowedCommands))
	cleaned := make([]string, 0, len(c.Execute.AllowedCommands))
	for _, command := range c.Execute.AllowedCommands {
		command = strings.TrimSpace(command)
		if command == "" {
			continue
		}
		if _, ok := seen[command]; ok {
			continue
		}
		seen[command] = struct{}{}
		cleaned = append(cleaned, command)
	}
	c.Execute.AllowedCommands = cleaned
	if c.Execute.MaxConcurrentJobs == 0 {
		c.Execute.MaxConcurrentJobs = defaultMaxConcurrentJobs
	}
	if c.Execute.JobTimeoutSeconds == 0 {
		c.Execute.JobTimeoutSeconds = defaultJobTimeoutSeconds
	}
}

func (c *Config) normalizeInspection() {
	c.Inspection.FFprobeBinary = strings.TrimSpace(c.Inspection.FFprobeBinary)
	if c.Inspection.FFprobeBinary == "" {
		c.Inspection.FFprobeBinary = defaultFFprobeBinary
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.PollIntervalMillis == 0 {
		c.Workflow.PollIntervalMillis = defaultPollIntervalMS
	}
	if c.Workflow.StagingMaxAgeHours == 0 {
		c.Workflow.StagingMaxAgeHours = defaultStagingMaxAgeHrs
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
