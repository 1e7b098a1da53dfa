package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/dgallion1/docrank/internal/report"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob("test-1", "p", "j", nil)
	if job.Status != StatusQueued {
		t.Fatalf("expected queued, got %q", job.Status)
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusDecoding, "decoding"},
		{StatusRanking, "ranking"},
		{StatusPublishing, "publishing"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		snap := job.Snapshot()
		if snap.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, snap.Status)
		}
		if snap.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, snap.Phase)
		}
		if !snap.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_Fail(t *testing.T) {
	job := NewJob("test-fail", "p", "j", []Input{{Name: "a.txt"}})
	job.Fail("ranking", errors.New("model down"))

	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "ranking" {
		t.Errorf("expected failed/ranking, got %s/%s", snap.Status, snap.Phase)
	}
	if snap.Error != "model down" {
		t.Errorf("expected error %q, got %q", "model down", snap.Error)
	}
	if snap.Report != nil {
		t.Error("expected no report on failure")
	}
}

func TestJob_CompleteReleasesInputs(t *testing.T) {
	job := NewJob("test-done", "p", "j", []Input{{Name: "a.txt", Data: []byte("x")}})
	rep := &report.Report{}
	job.Complete(rep)

	if job.Inputs() != nil {
		t.Error("expected inputs to be released")
	}
	snap := job.Snapshot()
	if snap.Status != StatusCompleted || snap.Report != rep {
		t.Errorf("expected completed job with report, got %+v", snap)
	}
}

func TestJobStore_PutGetCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	fresh := NewJob("fresh", "p", "j", nil)
	stale := NewJob("stale", "p", "j", nil)
	stale.UpdatedAt = time.Now().Add(-time.Second)
	store.Put(fresh)
	store.Put(stale)

	if store.Get("fresh") != fresh {
		t.Fatal("expected to get the stored job back")
	}
	if store.Get("nope") != nil {
		t.Error("expected nil for unknown id")
	}

	store.Cleanup()
	if store.Get("stale") != nil {
		t.Error("expected stale job to be evicted")
	}
	if store.Get("fresh") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 job, got %d", store.Len())
	}
}
