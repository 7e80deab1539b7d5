package preflight

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"execmany/internal/config"
	"execmany/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates ffprobe and every explicitly allowed command.
// A "*" allow-list entry cannot be checked and is skipped.
func CheckSystemDeps(_ context.Context, cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Required for track inspection",
		},
	}
	for _, command := range cfg.Execute.AllowedCommands {
		if command == config.AllowAnyCommand {
			continue
		}
		requirements = append(requirements, deps.Requirement{
			Name:        command,
			Command:     command,
			Description: "Allowed execute command",
			Optional:    true,
		})
	}
	return deps.CheckBinaries(requirements)
}
