package executemany

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"execmany/internal/execute"
	"execmany/internal/jobs"
	"execmany/internal/mediapackage"
	"execmany/internal/testsupport"
	"execmany/internal/workflow"
	"execmany/internal/workspace"
)

// fakeJobs hands out jobs that report running for a number of polls before
// reaching their final state.
type fakeJobs struct {
	mu      sync.Mutex
	nextID  int64
	final   map[int64]jobs.Job
	pending map[int64]int
	polls   int
	readErr error
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{final: map[int64]jobs.Job{}, pending: map[int64]int{}}
}

func (f *fakeJobs) add(final jobs.Job, polls int) *jobs.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	final.ID = f.nextID
	f.final[final.ID] = final
	f.pending[final.ID] = polls
	queued := final
	queued.Status = jobs.StatusQueued
	queued.Payload = ""
	queued.QueueTime = 0
	return &queued
}

func (f *fakeJobs) GetByID(_ context.Context, id int64) (*jobs.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	if f.readErr != nil {
		return nil, f.readErr
	}
	final, ok := f.final[id]
	if !ok {
		return nil, nil
	}
	if f.pending[id] > 0 {
		f.pending[id]--
		running := final
		running.Status = jobs.StatusRunning
		running.Payload = ""
		return &running, nil
	}
	return &final, nil
}

type outcome struct {
	payload   string
	fail      string
	queueTime time.Duration
	polls     int
}

type fakeExecutor struct {
	jobs      *fakeJobs
	outcomes  map[string]outcome
	requests  []execute.Request
	submitErr error
	// failOn limits submitErr to one element id.
	failOn string
}

func (f *fakeExecutor) Execute(_ context.Context, req execute.Request) (*jobs.Job, error) {
	if f.submitErr != nil && (f.failOn == "" || f.failOn == req.Element.ID) {
		return nil, f.submitErr
	}
	f.requests = append(f.requests, req)
	o := f.outcomes[req.Element.ID]
	final := jobs.Job{
		Type:      jobs.TypeExecute,
		Operation: req.Command,
		Status:    jobs.StatusSucceeded,
		Payload:   o.payload,
		QueueTime: o.queueTime,
	}
	if o.fail != "" {
		final.Status = jobs.StatusFailed
		final.Payload = ""
		final.ErrorMessage = o.fail
	}
	return f.jobs.add(final, o.polls), nil
}

func (f *fakeExecutor) elementIDs() []string {
	ids := make([]string, len(f.requests))
	for i, req := range f.requests {
		ids[i] = req.Element.ID
	}
	return ids
}

type fakeInspector struct {
	jobs      *fakeJobs
	info      mediapackage.TrackInfo
	fail      string
	queueTime time.Duration
	polls     int
	uris      []string
}

func (f *fakeInspector) Inspect(_ context.Context, uri string) (*jobs.Job, error) {
	f.uris = append(f.uris, uri)
	info := f.info
	payload, err := mediapackage.MarshalElement(&mediapackage.Element{
		Type:     mediapackage.TypeTrack,
		URI:      uri,
		MimeType: "video/mp4",
		Track:    &info,
	})
	if err != nil {
		return nil, err
	}
	final := jobs.Job{Type: jobs.TypeInspect, Status: jobs.StatusSucceeded, Payload: payload, QueueTime: f.queueTime}
	if f.fail != "" {
		final.Status = jobs.StatusFailed
		final.Payload = ""
		final.ErrorMessage = f.fail
	}
	return f.jobs.add(final, f.polls), nil
}

type harness struct {
	ws        *workspace.Workspace
	jobs      *fakeJobs
	executor  *fakeExecutor
	inspector *fakeInspector
	handler   *Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ws, err := workspace.New(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("workspace.New: %v", err)
	}
	source := newFakeJobs()
	h := &harness{
		ws:        ws,
		jobs:      source,
		executor:  &fakeExecutor{jobs: source, outcomes: map[string]outcome{}},
		inspector: &fakeInspector{jobs: source},
	}
	h.handler = NewHandler(Deps{
		Executor:     h.executor,
		Inspector:    h.inspector,
		Storage:      ws,
		Jobs:         source,
		PollInterval: time.Millisecond,
	})
	return h
}

// stage writes content into the execute staging collection and returns its URI.
func (h *harness) stage(t *testing.T, name, content string) string {
	t.Helper()
	path := h.ws.CollectionPath(execute.Collection, name)
	testsupport.WriteText(t, path, content)
	return workspace.ToURI(path)
}

func (h *harness) start(t *testing.T, mp *mediapackage.MediaPackage, config map[string]string) (*workflow.Result, error) {
	t.Helper()
	inst := &workflow.Instance{
		ID:        "wf-1",
		Package:   mp,
		Operation: &workflow.Operation{ID: "op-1", Template: Template, Configuration: config},
	}
	return h.handler.Start(context.Background(), inst)
}

func payload(t *testing.T, element *mediapackage.Element) string {
	t.Helper()
	text, err := mediapackage.MarshalElement(element)
	if err != nil {
		t.Fatalf("MarshalElement: %v", err)
	}
	return text
}

func samplePackage() *mediapackage.MediaPackage {
	return &mediapackage.MediaPackage{
		ID:    "mp-1",
		Title: "Lecture",
		Elements: []*mediapackage.Element{
			{
				ID:     "t1",
				Type:   mediapackage.TypeTrack,
				Flavor: mediapackage.MustParseFlavor("presentation/mp4"),
				Tags:   []string{"archive", "draft"},
				Track:  &mediapackage.TrackInfo{HasAudio: true, HasVideo: true},
			},
			{
				ID:     "t2",
				Type:   mediapackage.TypeTrack,
				Flavor: mediapackage.MustParseFlavor("presenter/mp4"),
				Tags:   []string{"archive"},
				Track:  &mediapackage.TrackInfo{HasAudio: true},
			},
			{
				ID:     "c1",
				Type:   mediapackage.TypeCatalog,
				Flavor: mediapackage.MustParseFlavor("dublincore/episode"),
				Tags:   []string{"archive"},
			},
		},
	}
}

var errBoom = errors.New("boom")
