package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"execmany/internal/config"
	"execmany/internal/execute"
	"execmany/internal/executemany"
	"execmany/internal/inspection"
	"execmany/internal/jobs"
	"execmany/internal/logging"
	"execmany/internal/mediapackage"
	"execmany/internal/preflight"
	"execmany/internal/textutil"
	"execmany/internal/workflow"
	"execmany/internal/workspace"
)

type runOptions struct {
	packagePath   string
	operationPath string
	outputPath    string
	workflowID    string
	skip          bool
	skipPreflight bool
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an execute-many operation on a mediapackage",
		Long: `Run an execute-many operation on a mediapackage.

The mediapackage is read from a JSON file and the operation from a TOML file
holding the operation id, template and [configuration] table. On success the
resulting mediapackage is written to --output (default: the input file) and a
summary is printed. On failure the mediapackage file is left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, ctx, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.packagePath, "package", "p", "", "Mediapackage JSON file")
	cmd.Flags().StringVarP(&opts.operationPath, "operation", "o", "", "Operation TOML file")
	cmd.Flags().StringVar(&opts.outputPath, "output", "", "Where to write the resulting mediapackage (default: overwrite --package)")
	cmd.Flags().StringVar(&opts.workflowID, "workflow-id", "", "Workflow instance identifier used in logs")
	cmd.Flags().BoolVar(&opts.skip, "skip", false, "Skip the operation and leave the mediapackage unchanged")
	cmd.Flags().BoolVar(&opts.skipPreflight, "skip-preflight", false, "Do not verify directories and binaries before running")
	_ = cmd.MarkFlagRequired("package")
	_ = cmd.MarkFlagRequired("operation")
	return cmd
}

func runOperation(cmd *cobra.Command, ctx *commandContext, opts runOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	pkg, err := mediapackage.Load(opts.packagePath)
	if err != nil {
		return err
	}
	op, err := workflow.LoadOperation(opts.operationPath)
	if err != nil {
		return err
	}
	if op.Template != "" && op.Template != executemany.Template {
		return fmt.Errorf("operation template %q is not %q", op.Template, executemany.Template)
	}

	if !opts.skipPreflight && !opts.skip {
		if failed := preflight.Failed(preflight.RunAll(cmd.Context(), cfg)); len(failed) > 0 {
			messages := make([]string, len(failed))
			for i, r := range failed {
				messages[i] = fmt.Sprintf("%s: %s", r.Name, r.Detail)
			}
			return fmt.Errorf("preflight failed (run `execmany check`): %s", strings.Join(messages, "; "))
		}
	}

	unlock, err := lockPackage(cfg, pkg.ID)
	if err != nil {
		return err
	}
	defer unlock()

	store, err := jobs.Open(cfg)
	if err != nil {
		return fmt.Errorf("open job store: %w", err)
	}
	defer store.Close()

	ws, err := workspace.New(cfg.Paths.WorkspaceDir, logger)
	if err != nil {
		return err
	}
	runner := jobs.NewRunner(store, cfg.Execute.MaxConcurrentJobs, logger)
	defer runner.Close()

	handler := executemany.NewHandler(executemany.Deps{
		Executor:     execute.NewService(cfg, runner, ws, logger),
		Inspector:    inspection.NewService(cfg, runner, ws, logger),
		Storage:      ws,
		Jobs:         store,
		Logger:       logger,
		PollInterval: cfg.PollInterval(),
	})

	workflowID := strings.TrimSpace(opts.workflowID)
	if workflowID == "" {
		workflowID = uuid.NewString()
	}
	result, err := workflow.Run(cmd.Context(), workflow.RunOptions{
		Logger:    logger,
		Handler:   handler,
		Instance:  &workflow.Instance{ID: workflowID, Package: pkg, Operation: op},
		Skip:      opts.skip,
		RequestID: uuid.NewString(),
	})
	if err != nil {
		return err
	}

	output := strings.TrimSpace(opts.outputPath)
	if output == "" {
		output = opts.packagePath
	}
	if err := mediapackage.Save(output, result.Package); err != nil {
		return err
	}
	logger.Debug("mediapackage written", logging.String("path", output))

	if ctx.JSONMode() {
		return writeJSON(cmd, map[string]any{
			"workflow_id":      workflowID,
			"action":           result.Action,
			"mediapackage":     output,
			"elements":         len(result.Package.Elements),
			"properties":       result.Properties,
			"time_in_queue_ms": result.TimeInQueue.Milliseconds(),
		})
	}
	printRunSummary(cmd, workflowID, output, pkg, result)
	return nil
}

func printRunSummary(cmd *cobra.Command, workflowID, output string, before *mediapackage.MediaPackage, result *workflow.Result) {
	out := cmd.OutOrStdout()
	added := len(result.Package.Elements) - len(before.Elements)
	fmt.Fprint(out, renderFieldTable("Execute many", [][2]string{
		{"Workflow", workflowID},
		{"Action", string(result.Action)},
		{"Mediapackage", output},
		{"Elements", fmt.Sprintf("%d (%+d)", len(result.Package.Elements), added)},
		{"Properties", strconv.Itoa(len(result.Properties))},
		{"Time in queue", formatQueueTime(result.TimeInQueue)},
	}))
	if len(result.Properties) == 0 {
		return
	}
	keys := make([]string, 0, len(result.Properties))
	for key := range result.Properties {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	rows := make([][]string, len(keys))
	for i, key := range keys {
		rows[i] = []string{key, result.Properties[key]}
	}
	fmt.Fprint(out, renderTable([]string{"Property", "Value"}, rows, nil))
}

// lockPackage prevents two runs from working on the same mediapackage.
func lockPackage(cfg *config.Config, mediaPackageID string) (func(), error) {
	dir := filepath.Join(cfg.Paths.StateDir, "locks")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	name := textutil.SanitizeFileName(mediaPackageID)
	if name == "" {
		return nil, errors.New("mediapackage has no usable identifier")
	}
	lock := flock.New(filepath.Join(dir, name+".lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock mediapackage %s: %w", mediaPackageID, err)
	}
	if !locked {
		return nil, fmt.Errorf("mediapackage %s is already being processed", mediaPackageID)
	}
	return func() { _ = lock.Unlock() }, nil
}
