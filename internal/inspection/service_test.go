package inspection_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"execmany/internal/inspection"
	"execmany/internal/jobs"
	"execmany/internal/logging"
	"execmany/internal/media/ffprobe"
	"execmany/internal/mediapackage"
	"execmany/internal/services"
	"execmany/internal/testsupport"
	"execmany/internal/workspace"
)

func newService(t *testing.T, probe inspection.ProbeFunc) (*inspection.Service, *jobs.Store, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	runner := jobs.NewRunner(store, 1, logging.NewNop())
	t.Cleanup(runner.Close)
	ws, err := workspace.New(cfg.Paths.WorkspaceDir, logging.NewNop())
	if err != nil {
		t.Fatalf("workspace.New: %v", err)
	}
	path := filepath.Join(testsupport.BaseDir(cfg), "media", "out.mp4")
	testsupport.WriteFile(t, path, 64)
	return inspection.NewService(cfg, runner, ws, logging.NewNop(), inspection.WithProbe(probe)), store, workspace.ToURI(path)
}

func TestInspectProducesTrackPayload(t *testing.T) {
	var probedPath string
	svc, store, uri := newService(t, func(_ context.Context, binary, path string) (ffprobe.Result, error) {
		if binary != "ffprobe" {
			return ffprobe.Result{}, errors.New("unexpected binary " + binary)
		}
		probedPath = path
		return ffprobe.Result{
			Streams: []ffprobe.Stream{{CodecType: "audio"}, {CodecType: "video"}},
			Format:  ffprobe.Format{Duration: "12.5", Size: "64", FormatName: "mov,mp4,m4a"},
		}, nil
	})

	job, err := svc.Inspect(context.Background(), uri)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	done := testsupport.WaitForJob(t, store, job.ID)
	if done.Status != jobs.StatusSucceeded {
		t.Fatalf("expected success, got %+v", done)
	}
	track, err := mediapackage.ParseElement(done.Payload)
	if err != nil {
		t.Fatalf("ParseElement: %v", err)
	}
	if !track.IsTrack() || !track.Track.HasAudio || !track.Track.HasVideo || track.Track.HasSubtitle {
		t.Fatalf("unexpected track %+v", track.Track)
	}
	if track.URI != uri || track.MimeType != "video/mp4" || track.Size != 64 || track.Track.DurationSeconds != 12.5 {
		t.Fatalf("unexpected track metadata %+v", track)
	}
	if filepath.Base(probedPath) != "out.mp4" {
		t.Fatalf("probe saw %q", probedPath)
	}
}

func TestInspectFailsOnProbeError(t *testing.T) {
	svc, store, uri := newService(t, func(context.Context, string, string) (ffprobe.Result, error) {
		return ffprobe.Result{}, errors.New("invalid data found when processing input")
	})
	job, err := svc.Inspect(context.Background(), uri)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if done := testsupport.WaitForJob(t, store, job.ID); done.Status != jobs.StatusFailed {
		t.Fatalf("expected failure, got %+v", done)
	}
}

func TestInspectRequiresLocation(t *testing.T) {
	svc, _, _ := newService(t, nil)
	if _, err := svc.Inspect(context.Background(), " "); !errors.Is(err, services.ErrInspection) {
		t.Fatalf("expected inspection error, got %v", err)
	}
}
