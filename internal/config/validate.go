package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateExecute(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.WorkspaceDir) == "" {
		return errors.New("paths.workspace_dir must be set")
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateExecute() error {
	if c.Execute.MaxConcurrentJobs < 0 {
		return errors.New("execute.max_concurrent_jobs must be positive")
	}
	if c.Execute.JobTimeoutSeconds < 0 {
		return errors.New("execute.job_timeout_seconds must be positive")
	}
	for _, command := range c.Execute.AllowedCommands {
		if command == AllowAnyCommand {
			continue
		}
		if strings.ContainsAny(command, " \t") {
			return fmt.Errorf("execute.allowed_commands entry %q must be a single executable", command)
		}
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.PollIntervalMillis < 0 {
		return errors.New("workflow.poll_interval_ms must be positive")
	}
	if c.Workflow.StagingMaxAgeHours < 0 {
		return errors.New("workflow.staging_max_age_hours must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
