package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"execmany/internal/config"
	"execmany/internal/jobs"
	"execmany/internal/staging"
	"execmany/internal/workspace"
)

func newStagingCommand(ctx *commandContext) *cobra.Command {
	stagingCmd := &cobra.Command{
		Use:   "staging",
		Short: "Manage staged job output",
	}

	stagingCmd.AddCommand(newStagingListCommand(ctx))
	stagingCmd.AddCommand(newStagingCleanCommand(ctx))

	return stagingCmd
}

func collectionsDir(cfg *config.Config) (string, error) {
	ws, err := workspace.New(cfg.Paths.WorkspaceDir, nil)
	if err != nil {
		return "", err
	}
	return ws.CollectionsDir(), nil
}

func newStagingListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List staged files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dir, err := collectionsDir(cfg)
			if err != nil {
				return err
			}
			entries, err := staging.List(dir)
			if err != nil {
				return fmt.Errorf("list staged files: %w", err)
			}

			var totalSize int64
			for _, entry := range entries {
				totalSize += entry.Size
			}
			if ctx.JSONMode() {
				if entries == nil {
					entries = []staging.Entry{}
				}
				return writeJSON(cmd, map[string]any{
					"collections_dir":  dir,
					"files":            entries,
					"total_size_bytes": totalSize,
				})
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No staged files found")
				return nil
			}
			fmt.Fprintf(out, "Staging area: %s\n\n", dir)
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				job := "-"
				if entry.JobID > 0 {
					job = strconv.FormatInt(entry.JobID, 10)
				}
				rows = append(rows, []string{
					entry.Collection,
					entry.Name,
					job,
					formatAge(time.Since(entry.ModTime).Truncate(time.Minute)),
					formatBytes(entry.Size),
				})
			}
			fmt.Fprint(out, renderTable(
				[]string{"Collection", "File", "Job", "Age", "Size"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight},
			))
			fmt.Fprintf(out, "\nTotal: %d files, %s\n", len(entries), formatBytes(totalSize))
			return nil
		},
	}
}

func newStagingCleanCommand(ctx *commandContext) *cobra.Command {
	var maxAge time.Duration

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove stale staged files",
		Long: `Remove staged job output older than --max-age.

Files produced by jobs that are still queued or running are kept. The default
age comes from workflow.staging_max_age_hours.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, store *jobs.Store) error {
				age := maxAge
				if age <= 0 {
					age = cfg.StagingMaxAge()
				}
				active, err := store.List(cmd.Context(), jobs.StatusQueued, jobs.StatusRunning)
				if err != nil {
					return err
				}
				inFlight := make(map[int64]struct{}, len(active))
				for _, job := range active {
					inFlight[job.ID] = struct{}{}
				}
				dir, err := collectionsDir(cfg)
				if err != nil {
					return err
				}

				result := staging.CleanStale(cmd.Context(), dir, age, inFlight, logger)
				if ctx.JSONMode() {
					errs := make([]string, 0, len(result.Errors))
					for _, e := range result.Errors {
						errs = append(errs, fmt.Sprintf("%s: %v", e.Path, e.Error))
					}
					return writeJSON(cmd, map[string]any{"removed": len(result.Removed), "errors": errs})
				}
				return printStagingCleanResult(cmd, result)
			})
		},
	}

	cmd.Flags().DurationVar(&maxAge, "max-age", 0, "Remove files older than this (for example 12h)")
	return cmd
}

func printStagingCleanResult(cmd *cobra.Command, result staging.CleanResult) error {
	out := cmd.OutOrStdout()
	if len(result.Removed) == 0 && len(result.Errors) == 0 {
		fmt.Fprintln(out, "No stale staged files to clean")
		return nil
	}
	if len(result.Errors) > 0 {
		fmt.Fprintf(out, "Removed %d staged files, %d errors\n", len(result.Removed), len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  Error: %s: %v\n", e.Path, e.Error)
		}
		return nil
	}
	fmt.Fprintf(out, "Removed %d staged files\n", len(result.Removed))
	return nil
}
