package inspection

import (
	"context"
	"log/slog"
	"strings"

	"execmany/internal/config"
	"execmany/internal/jobs"
	"execmany/internal/logging"
	"execmany/internal/media/ffprobe"
	"execmany/internal/mediapackage"
	"execmany/internal/services"
	"execmany/internal/workspace"
)

// ProbeFunc inspects a local media file.
type ProbeFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Service submits inspect jobs.
type Service struct {
	binary    string
	submitter jobs.Submitter
	workspace *workspace.Workspace
	probe     ProbeFunc
	logger    *slog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithProbe replaces the ffprobe invocation.
func WithProbe(probe ProbeFunc) Option {
	return func(s *Service) {
		if probe != nil {
			s.probe = probe
		}
	}
}

// NewService wires the inspection service.
func NewService(cfg *config.Config, submitter jobs.Submitter, ws *workspace.Workspace, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		binary:    cfg.FFprobeBinary(),
		submitter: submitter,
		workspace: ws,
		probe:     ffprobe.Inspect,
		logger:    logging.NewComponentLogger(logger, "inspection"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Inspect submits a job inspecting the file at uri.
func (s *Service) Inspect(ctx context.Context, uri string) (*jobs.Job, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, services.Wrap(services.ErrInspection, "inspection", "submit", "element has no location", nil)
	}
	spec := jobs.Spec{
		Type:      jobs.TypeInspect,
		Operation: "inspect",
		Arguments: []string{uri},
	}
	job, err := s.submitter.Submit(ctx, spec, func(ctx context.Context, job *jobs.Job) (string, error) {
		return s.run(ctx, job, uri)
	})
	if err != nil {
		return nil, services.Wrap(services.ErrInspection, "inspection", "submit", uri, err)
	}
	return job, nil
}

func (s *Service) run(ctx context.Context, job *jobs.Job, uri string) (string, error) {
	path, err := s.workspace.Get(ctx, uri)
	if err != nil {
		return "", err
	}
	result, err := s.probe(ctx, s.binary, path)
	if err != nil {
		return "", err
	}

	track := &mediapackage.Element{
		Type:     mediapackage.TypeTrack,
		URI:      uri,
		MimeType: result.MimeType(),
		Size:     result.SizeBytes(),
		Track: &mediapackage.TrackInfo{
			HasAudio:        result.HasAudio(),
			HasVideo:        result.HasVideo(),
			HasSubtitle:     result.HasSubtitle(),
			DurationSeconds: result.DurationSeconds(),
		},
	}
	s.logger.Debug("media inspected",
		logging.Int64(logging.FieldJobID, job.ID),
		logging.String("path", path),
		logging.Bool("audio", track.Track.HasAudio),
		logging.Bool("video", track.Track.HasVideo),
		logging.Bool("subtitle", track.Track.HasSubtitle),
	)
	return mediapackage.MarshalElement(track)
}
