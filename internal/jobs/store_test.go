package jobs_test

import (
	"context"
	"errors"
	"testing"

	"execmany/internal/jobs"
	"execmany/internal/testsupport"
)

func TestCreateAndGet(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	job, err := store.Create(ctx, jobs.Spec{
		Type:      jobs.TypeExecute,
		Operation: "ffmpeg",
		Arguments: []string{"-i", "#{in}", "#{out}"},
		Load:      0.5,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if job.ID == 0 || job.Status != jobs.StatusQueued {
		t.Fatalf("unexpected job %+v", job)
	}
	if job.Load != 0.5 || len(job.Arguments) != 3 || job.Arguments[1] != "#{in}" {
		t.Fatalf("spec not persisted: %+v", job)
	}
	if job.CreatedAt.IsZero() {
		t.Fatal("expected created_at")
	}

	missing, err := store.GetByID(ctx, job.ID+100)
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing job, got %v %v", missing, err)
	}
}

func TestCreateDefaultsLoad(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	job, err := store.Create(context.Background(), jobs.Spec{Type: jobs.TypeInspect})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if job.Load != 1.0 {
		t.Fatalf("expected default load 1.0, got %v", job.Load)
	}
	if _, err := store.Create(context.Background(), jobs.Spec{}); err == nil {
		t.Fatal("expected error without job type")
	}
}

func TestLifecycleTransitions(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	job, err := store.Create(ctx, jobs.Spec{Type: jobs.TypeExecute, Operation: "true"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.MarkSucceeded(ctx, job.ID, "x"); !errors.Is(err, jobs.ErrInvalidTransition) {
		t.Fatalf("queued job must not succeed directly, got %v", err)
	}

	running, err := store.MarkRunning(ctx, job.ID)
	if err != nil {
		t.Fatalf("MarkRunning: %v", err)
	}
	if running.Status != jobs.StatusRunning || running.StartedAt.IsZero() || running.QueueTime < 0 {
		t.Fatalf("unexpected running job %+v", running)
	}
	if _, err := store.MarkRunning(ctx, job.ID); !errors.Is(err, jobs.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}

	if err := store.MarkSucceeded(ctx, job.ID, `{"id":"a"}`); err != nil {
		t.Fatalf("MarkSucceeded: %v", err)
	}
	done, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if done.Status != jobs.StatusSucceeded || done.Payload != `{"id":"a"}` || done.CompletedAt.IsZero() {
		t.Fatalf("unexpected finished job %+v", done)
	}
	if !done.Status.Terminal() {
		t.Fatal("succeeded must be terminal")
	}
	if err := store.MarkFailed(ctx, job.ID, "late"); !errors.Is(err, jobs.ErrInvalidTransition) {
		t.Fatalf("terminal job must not fail, got %v", err)
	}
}

func TestMarkFailedFromQueued(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	job, err := store.Create(ctx, jobs.Spec{Type: jobs.TypeInspect})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.MarkFailed(ctx, job.ID, "no capacity"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	failed, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if failed.Status != jobs.StatusFailed || failed.ErrorMessage != "no capacity" {
		t.Fatalf("unexpected failed job %+v", failed)
	}
}

func TestListStatsAndClear(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	var ids []int64
	for range 3 {
		job, err := store.Create(ctx, jobs.Spec{Type: jobs.TypeExecute})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, job.ID)
	}
	if _, err := store.MarkRunning(ctx, ids[0]); err != nil {
		t.Fatalf("MarkRunning: %v", err)
	}
	if err := store.MarkSucceeded(ctx, ids[0], ""); err != nil {
		t.Fatalf("MarkSucceeded: %v", err)
	}
	if err := store.MarkFailed(ctx, ids[1], "boom"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}

	queued, err := store.List(ctx, jobs.StatusQueued)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(queued) != 1 || queued[0].ID != ids[2] {
		t.Fatalf("unexpected queued jobs %+v", queued)
	}
	all, err := store.List(ctx)
	if err != nil || len(all) != 3 {
		t.Fatalf("expected 3 jobs, got %d (%v)", len(all), err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats[jobs.StatusSucceeded] != 1 || stats[jobs.StatusFailed] != 1 || stats[jobs.StatusQueued] != 1 {
		t.Fatalf("unexpected stats %v", stats)
	}

	removed, err := store.Clear(ctx)
	if err != nil || removed != 2 {
		t.Fatalf("expected 2 cleared jobs, got %d (%v)", removed, err)
	}

	failed, err := store.FailInFlight(ctx, "process exited")
	if err != nil || failed != 1 {
		t.Fatalf("expected 1 in-flight job failed, got %d (%v)", failed, err)
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := jobs.ParseStatus(" Running "); !ok || status != jobs.StatusRunning {
		t.Fatalf("unexpected parse result %v %v", status, ok)
	}
	if _, ok := jobs.ParseStatus("pending"); ok {
		t.Fatal("expected unknown status to be rejected")
	}
}
