package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/docrank/internal/pathstore"
	"github.com/dgallion1/docrank/internal/report"
)

// ReportKeyPrefix is where completed reports are published.
const ReportKeyPrefix = "docrank/reports/"

// Publisher stores completed reports outside the process.
type Publisher interface {
	PutNode(ctx context.Context, key string, req pathstore.NodeRequest) error
	GetNode(ctx context.Context, key string) (*pathstore.NodeResponse, error)
}

// Worker processes a single analysis job.
type Worker struct {
	analyzer  *Analyzer
	publisher Publisher
	log       *slog.Logger
}

func NewWorker(analyzer *Analyzer, publisher Publisher, log *slog.Logger) *Worker {
	return &Worker{analyzer: analyzer, publisher: publisher, log: log}
}

// Process runs the analysis for a job and records the outcome on it.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID)
	inputs := job.Inputs()
	start := time.Now()

	rep, err := w.analyzer.Run(ctx, Request{
		Documents: inputs,
		Persona:   job.Persona,
		Job:       job.Task,
		OnPhase: func(p Phase) {
			switch p {
			case PhaseDecoding:
				job.SetStatus(StatusDecoding, string(p))
			case PhaseRanking:
				job.SetStatus(StatusRanking, string(p))
			}
		},
	})
	if err != nil {
		phase := job.Snapshot().Phase
		log.Error("analysis failed", "phase", phase, "error", err)
		job.Fail(phase, err)
		return
	}
	log.Info("analysis complete",
		"documents", len(inputs),
		"sections", len(rep.Sections),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if w.publisher != nil {
		job.SetStatus(StatusPublishing, "publishing")
		if err := w.publish(ctx, job.ID, inputs, rep); err != nil {
			log.Warn("report publish failed", "error", err)
		}
	}
	job.Complete(rep)
}

func (w *Worker) publish(ctx context.Context, jobID string, inputs []Input, rep *report.Report) error {
	hashes := make(map[string]string, len(inputs))
	for _, in := range inputs {
		hashes[in.Name] = ContentHashHex(in.Data)
	}
	err := w.publisher.PutNode(ctx, ReportKeyPrefix+jobID, pathstore.NodeRequest{
		Value: map[string]any{
			"report":       rep,
			"input_hashes": hashes,
		},
		MemoryType: "episodic",
		Salience:   0.5,
		Source:     "docrank:" + jobID,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", jobID, err)
	}
	return nil
}
