package draft

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type fakeAPI struct {
	mu         sync.Mutex
	gets       int
	creates    int
	updates    int
	lastUpdate map[string]any
	updateErr  error
	doc        map[string]any

	getEntered    chan struct{}
	getRelease    chan struct{}
	updateEntered chan struct{}
	updateRelease chan struct{}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		doc: map[string]any{
			"id":    "cv-1",
			"title": "My CV",
			"personalInfo": map[string]any{
				"fullName": "Ada Lovelace",
			},
		},
	}
}

func (f *fakeAPI) GetCV(ctx context.Context, id string) (map[string]any, error) {
	if f.getEntered != nil {
		f.getEntered <- struct{}{}
	}
	if f.getRelease != nil {
		<-f.getRelease
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	return copyDoc(f.doc), nil
}

func (f *fakeAPI) CreateCV(ctx context.Context, doc map[string]any) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	out := copyDoc(doc)
	out["id"] = "cv-1"
	return out, nil
}

func (f *fakeAPI) UpdateCV(ctx context.Context, id string, doc map[string]any) (map[string]any, error) {
	if f.updateEntered != nil {
		f.updateEntered <- struct{}{}
	}
	if f.updateRelease != nil {
		<-f.updateRelease
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.lastUpdate = copyDoc(doc)
	return copyDoc(doc), nil
}

func (f *fakeAPI) counts() (gets, creates, updates int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gets, f.creates, f.updates
}

func TestLoadAdoptsServerCopy(t *testing.T) {
	api := newFakeAPI()
	ctrl := NewController(api)

	if err := ctrl.Load(context.Background(), "cv-1"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	draft := ctrl.Draft()
	if draft["title"] != "My CV" {
		t.Fatalf("unexpected draft: %v", draft)
	}
	if ctrl.Dirty() {
		t.Fatalf("freshly loaded draft should not be dirty")
	}
}

func TestLoadWhileLoadingIsCoalesced(t *testing.T) {
	api := newFakeAPI()
	api.getEntered = make(chan struct{})
	api.getRelease = make(chan struct{})
	ctrl := NewController(api)

	done := make(chan error, 1)
	go func() { done <- ctrl.Load(context.Background(), "cv-1") }()
	<-api.getEntered

	if err := ctrl.Load(context.Background(), "cv-1"); !errors.Is(err, ErrLoadInFlight) {
		t.Fatalf("expected ErrLoadInFlight, got %v", err)
	}

	close(api.getRelease)
	if err := <-done; err != nil {
		t.Fatalf("first load: %v", err)
	}
	if gets, _, _ := api.counts(); gets != 1 {
		t.Fatalf("expected exactly one fetch, got %d", gets)
	}
}

func TestStaleLoadDoesNotClobberEdits(t *testing.T) {
	api := newFakeAPI()
	ctrl := NewController(api)
	if err := ctrl.Load(context.Background(), "cv-1"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	api.getEntered = make(chan struct{})
	api.getRelease = make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- ctrl.Load(context.Background(), "cv-1") }()
	<-api.getEntered

	if err := ctrl.MutateField("title", "Edited while loading"); err != nil {
		t.Fatalf("MutateField: %v", err)
	}
	close(api.getRelease)

	if err := <-done; !errors.Is(err, ErrStaleLoad) {
		t.Fatalf("expected ErrStaleLoad, got %v", err)
	}
	if got := ctrl.Draft()["title"]; got != "Edited while loading" {
		t.Fatalf("local edit was clobbered, title = %v", got)
	}
}

func TestSaveSkippedWhenNothingChanged(t *testing.T) {
	api := newFakeAPI()
	ctrl := NewController(api)
	if err := ctrl.Load(context.Background(), "cv-1"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := ctrl.Save(context.Background(), nil); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, _, updates := api.counts(); updates != 0 {
		t.Fatalf("unchanged draft should skip the network, got %d updates", updates)
	}
}

func TestSaveMergesPatchAndAdoptsResult(t *testing.T) {
	api := newFakeAPI()
	ctrl := NewController(api)
	if err := ctrl.Load(context.Background(), "cv-1"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	patch := map[string]any{"title": "Renamed"}
	if err := ctrl.Save(context.Background(), patch); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if api.lastUpdate["title"] != "Renamed" {
		t.Fatalf("patch not merged into payload: %v", api.lastUpdate)
	}
	if info, ok := api.lastUpdate["personalInfo"].(map[string]any); !ok || info["fullName"] != "Ada Lovelace" {
		t.Fatalf("untouched sections must survive the merge: %v", api.lastUpdate)
	}
	if ctrl.Dirty() {
		t.Fatalf("draft should be clean after a successful save")
	}
}

func TestSaveWhileSavingIsDropped(t *testing.T) {
	api := newFakeAPI()
	ctrl := NewController(api)
	if err := ctrl.Load(context.Background(), "cv-1"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	api.updateEntered = make(chan struct{})
	api.updateRelease = make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- ctrl.Save(context.Background(), map[string]any{"title": "First"}) }()
	<-api.updateEntered

	err := ctrl.Save(context.Background(), map[string]any{"title": "Second"})
	if !errors.Is(err, ErrSaveInFlight) {
		t.Fatalf("expected ErrSaveInFlight, got %v", err)
	}

	close(api.updateRelease)
	if err := <-done; err != nil {
		t.Fatalf("first save: %v", err)
	}
	if _, _, updates := api.counts(); updates != 1 {
		t.Fatalf("expected exactly one write, got %d", updates)
	}
}

func TestSaveFailureKeepsEditsPending(t *testing.T) {
	api := newFakeAPI()
	ctrl := NewController(api)
	if err := ctrl.Load(context.Background(), "cv-1"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	api.updateErr = errors.New("boom")
	if err := ctrl.MutateField("title", "Unsaved"); err != nil {
		t.Fatalf("MutateField: %v", err)
	}
	if err := ctrl.Save(context.Background(), nil); err == nil {
		t.Fatalf("expected save error")
	}
	if !ctrl.Dirty() {
		t.Fatalf("failed save must leave the draft dirty for retry")
	}
	if got := ctrl.Draft()["title"]; got != "Unsaved" {
		t.Fatalf("edits lost on failed save, title = %v", got)
	}
}

func TestMutateFieldPaths(t *testing.T) {
	api := newFakeAPI()
	api.doc["education"] = []any{
		map[string]any{"institution": "Somerville", "degree": ""},
	}
	ctrl := NewController(api)
	if err := ctrl.Load(context.Background(), "cv-1"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := ctrl.MutateField("personalInfo.fullName", "Grace Hopper"); err != nil {
		t.Fatalf("nested path: %v", err)
	}
	if err := ctrl.MutateField("education.0.degree", "BA Mathematics"); err != nil {
		t.Fatalf("indexed path: %v", err)
	}
	if err := ctrl.MutateField("education.5.degree", "nope"); err == nil {
		t.Fatalf("out-of-range index should fail")
	}

	draft := ctrl.Draft()
	info := draft["personalInfo"].(map[string]any)
	if info["fullName"] != "Grace Hopper" {
		t.Fatalf("nested set did not apply: %v", info)
	}
	entry := draft["education"].([]any)[0].(map[string]any)
	if entry["degree"] != "BA Mathematics" {
		t.Fatalf("indexed set did not apply: %v", entry)
	}
}

func TestMutateFieldWithoutDraft(t *testing.T) {
	ctrl := NewController(newFakeAPI())
	if err := ctrl.MutateField("title", "x"); !errors.Is(err, ErrNoDraft) {
		t.Fatalf("expected ErrNoDraft, got %v", err)
	}
}

func TestProgressTracksEdits(t *testing.T) {
	api := newFakeAPI()
	api.doc = map[string]any{
		"id": "cv-1",
		"personalInfo": map[string]any{
			"fullName": "", "title": "", "email": "",
		},
	}
	ctrl := NewController(api)
	if err := ctrl.Load(context.Background(), "cv-1"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	before := ctrl.Progress()
	if err := ctrl.MutateField("personalInfo.fullName", "Ada"); err != nil {
		t.Fatalf("MutateField: %v", err)
	}
	if after := ctrl.Progress(); after <= before {
		t.Fatalf("filling a field should raise progress, before=%d after=%d", before, after)
	}
}

func TestCreateAdoptsServerCopy(t *testing.T) {
	api := newFakeAPI()
	ctrl := NewController(api)

	err := ctrl.Create(context.Background(), map[string]any{"title": "Fresh"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	draft := ctrl.Draft()
	if draft["id"] != "cv-1" || draft["title"] != "Fresh" {
		t.Fatalf("unexpected draft after create: %v", draft)
	}
	if ctrl.Dirty() {
		t.Fatalf("freshly created draft should not be dirty")
	}
}
