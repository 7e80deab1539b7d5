package config

const (
	defaultWorkspaceDir      = "~/.local/share/execmany/workspace"
	defaultStateDir          = "~/.local/share/execmany/state"
	defaultLogDir            = "~/.local/share/execmany/logs"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultMaxConcurrentJobs = 4
	defaultJobTimeoutSeconds = 3600
	defaultFFprobeBinary     = "ffprobe"
	defaultPollIntervalMS    = 500
	defaultStagingMaxAgeHrs  = 48
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkspaceDir: defaultWorkspaceDir,
			StateDir:     defaultStateDir,
			LogDir:       defaultLogDir,
		},
		Execute: Execute{
			AllowedCommands:   []string{},
			MaxConcurrentJobs: defaultMaxConcurrentJobs,
			JobTimeoutSeconds: defaultJobTimeoutSeconds,
		},
		Inspection: Inspection{
			FFprobeBinary: defaultFFprobeBinary,
		},
		Workflow: Workflow{
			PollIntervalMillis: defaultPollIntervalMS,
			StagingMaxAgeHours: defaultStagingMaxAgeHrs,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
