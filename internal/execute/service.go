package execute

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"execmany/internal/config"
	"execmany/internal/jobs"
	"execmany/internal/logging"
	"execmany/internal/mediapackage"
	"execmany/internal/services"
	"execmany/internal/textutil"
	"execmany/internal/workspace"
)

// Collection is the staging collection receiving command output.
const Collection = "execute"

const (
	placeholderIn  = "#{in}"
	placeholderOut = "#{out}"
	placeholderID  = "#{id}"

	stderrTailBytes = 2048
)

// shlex reads a word starting with "#" as a comment, so placeholders are
// swapped for "#"-free tokens while params are split.
var (
	protectPlaceholders = strings.NewReplacer(
		placeholderIn, "\x1ain\x1a",
		placeholderOut, "\x1aout\x1a",
		placeholderID, "\x1aid\x1a",
	)
	restorePlaceholders = strings.NewReplacer(
		"\x1ain\x1a", placeholderIn,
		"\x1aout\x1a", placeholderOut,
		"\x1aid\x1a", placeholderID,
	)
)

// Request describes one command execution.
type Request struct {
	Command        string
	Params         string
	Element        *mediapackage.Element
	OutputFilename string
	ExpectedType   mediapackage.ElementType
	Load           float64
}

// Service submits execute jobs.
type Service struct {
	cfg       *config.Config
	submitter jobs.Submitter
	workspace *workspace.Workspace
	logger    *slog.Logger
}

// NewService wires the execution service.
func NewService(cfg *config.Config, submitter jobs.Submitter, ws *workspace.Workspace, logger *slog.Logger) *Service {
	return &Service{
		cfg:       cfg,
		submitter: submitter,
		workspace: ws,
		logger:    logging.NewComponentLogger(logger, "execute"),
	}
}

// Execute validates req and submits a job running it.
func (s *Service) Execute(ctx context.Context, req Request) (*jobs.Job, error) {
	command := strings.TrimSpace(req.Command)
	if command == "" {
		return nil, services.Wrap(services.ErrConfiguration, "execute", "submit", "command is empty", nil)
	}
	if !s.cfg.CommandAllowed(command) {
		return nil, services.Wrap(services.ErrConfiguration, "execute", "submit",
			fmt.Sprintf("command %q is not in execute.allowed_commands", command), nil)
	}
	if req.Element == nil {
		return nil, services.Wrap(services.ErrValidation, "execute", "submit", "input element is nil", nil)
	}
	params, err := splitParams(req.Params)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "execute", "submit", "split params", err)
	}
	outputName := ""
	if strings.TrimSpace(req.OutputFilename) != "" {
		outputName = textutil.SanitizeFileName(req.OutputFilename)
		if outputName == "" {
			return nil, services.Wrap(services.ErrConfiguration, "execute", "submit",
				fmt.Sprintf("output filename %q is not usable", req.OutputFilename), nil)
		}
	}
	expected := req.ExpectedType
	if expected == "" {
		expected = mediapackage.TypeAttachment
	}

	element := req.Element.Clone()
	spec := jobs.Spec{
		Type:      jobs.TypeExecute,
		Operation: command,
		Arguments: append([]string{element.ID}, params...),
		Load:      req.Load,
	}
	work := func(ctx context.Context, job *jobs.Job) (string, error) {
		return s.run(ctx, job, command, params, element, outputName, expected)
	}
	job, err := s.submitter.Submit(ctx, spec, work)
	if err != nil {
		return nil, services.Wrap(services.ErrExecution, "execute", "submit", command, err)
	}
	return job, nil
}

func (s *Service) run(ctx context.Context, job *jobs.Job, command string, params []string, element *mediapackage.Element, outputName string, expected mediapackage.ElementType) (string, error) {
	inPath := ""
	if strings.TrimSpace(element.URI) != "" {
		path, err := s.workspace.Get(ctx, element.URI)
		if err != nil {
			return "", err
		}
		inPath = path
	}

	outPath := ""
	if outputName != "" {
		outPath = s.workspace.CollectionPath(Collection, StagedName(job.ID, outputName))
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return "", fmt.Errorf("create output collection: %w", err)
		}
	}

	args, err := substitute(params, inPath, outPath, element.ID)
	if err != nil {
		return "", err
	}

	binary, err := exec.LookPath(command)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", command, err)
	}

	runCtx := ctx
	if timeout := s.cfg.JobTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, binary, args...)
	cmd.Stderr = &stderr
	cmd.Stdout = &stderr
	if outPath != "" {
		cmd.Dir = filepath.Dir(outPath)
	}

	s.logger.Debug("running command",
		logging.Int64(logging.FieldJobID, job.ID),
		logging.String(logging.FieldElementID, element.ID),
		logging.String("command", binary),
		logging.Any("args", args),
	)
	if err := cmd.Run(); err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%s timed out after %s", command, s.cfg.JobTimeout())
		}
		return "", fmt.Errorf("%s: %w: %s", command, err, tail(stderr.String()))
	}

	if outPath == "" {
		return "", nil
	}
	info, err := os.Stat(outPath)
	if err != nil {
		return "", fmt.Errorf("%s produced no output file %s: %w", command, filepath.Base(outPath), err)
	}

	result := &mediapackage.Element{
		Type: expected,
		URI:  workspace.ToURI(outPath),
		Size: info.Size(),
	}
	if expected == mediapackage.TypeTrack {
		result.Track = &mediapackage.TrackInfo{}
	}
	return mediapackage.MarshalElement(result)
}

// StagedName is the collection file name used for a job's output.
func StagedName(jobID int64, filename string) string {
	return strconv.FormatInt(jobID, 10) + "-" + filename
}

// splitParams splits a params string into arguments, keeping #{in}, #{out}
// and #{id} placeholders intact.
func splitParams(params string) ([]string, error) {
	args, err := shlex.Split(protectPlaceholders.Replace(params))
	if err != nil {
		return nil, err
	}
	for i, arg := range args {
		args[i] = restorePlaceholders.Replace(arg)
	}
	return args, nil
}

func substitute(params []string, inPath, outPath, elementID string) ([]string, error) {
	args := make([]string, len(params))
	for i, param := range params {
		if strings.Contains(param, placeholderIn) && inPath == "" {
			return nil, errors.New("params reference #{in} but the element has no file")
		}
		if strings.Contains(param, placeholderOut) && outPath == "" {
			return nil, errors.New("params reference #{out} but no output filename is configured")
		}
		arg := strings.ReplaceAll(param, placeholderIn, inPath)
		arg = strings.ReplaceAll(arg, placeholderOut, outPath)
		arg = strings.ReplaceAll(arg, placeholderID, elementID)
		args[i] = arg
	}
	return args, nil
}

func tail(output string) string {
	output = strings.TrimSpace(output)
	if len(output) <= stderrTailBytes {
		return output
	}
	return "..." + output[len(output)-stderrTailBytes:]
}
