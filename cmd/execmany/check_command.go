package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"execmany/internal/deps"
	"execmany/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify directories, job store and external binaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			directories := []preflight.Result{
				preflight.CheckDirectoryAccess("Workspace directory", cfg.Paths.WorkspaceDir),
				preflight.CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
				preflight.CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
				preflight.CheckJobStore(cmd.Context(), cfg),
			}
			binaries := preflight.CheckSystemDeps(cmd.Context(), cfg)

			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{
					"paths":        directories,
					"dependencies": binaries,
				})
			}

			lines := renderSectionHeader("Paths", colorize)
			for _, r := range directories {
				lines = append(lines, renderStatusLine(r.Name, checkKind(r.Passed, false), r.Detail, colorize))
			}
			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
			for _, status := range binaries {
				detail := status.Command
				if !status.Available {
					detail = status.Detail
				}
				if status.Description != "" {
					detail = fmt.Sprintf("%s (%s)", detail, status.Description)
				}
				lines = append(lines, renderStatusLine(status.Name, checkKind(status.Available, status.Optional), detail, colorize))
			}
			if cfg.AllowsAnyCommand() {
				lines = append(lines, renderStatusLine("Allowed commands", statusWarn, "any command may run (\"*\")", colorize))
			}
			fmt.Fprintln(out, strings.Join(lines, "\n"))

			failed := 0
			for _, r := range directories {
				if !r.Passed {
					failed++
				}
			}
			failed += len(deps.Missing(binaries))
			if failed > 0 {
				return errors.New("environment not ready")
			}
			return nil
		},
	}
}
