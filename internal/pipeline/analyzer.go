package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dgallion1/docrank/internal/chunker"
	"github.com/dgallion1/docrank/internal/config"
	"github.com/dgallion1/docrank/internal/doctree"
	"github.com/dgallion1/docrank/internal/parser"
	"github.com/dgallion1/docrank/internal/rank"
	"github.com/dgallion1/docrank/internal/relevance"
	"github.com/dgallion1/docrank/internal/report"
	"github.com/dgallion1/docrank/internal/section"
)

// Phase names the stage a run is in.
type Phase string

const (
	PhaseDecoding Phase = "decoding"
	PhaseRanking  Phase = "ranking"
)

// Request is a single analysis: documents in discovery order plus the
// persona and job every score is conditioned on.
type Request struct {
	Documents []Input
	Persona   string
	Job       string

	// OnPhase, if set, is called as the run enters each phase.
	OnPhase func(Phase)
}

// AnalyzerConfig tunes a run.
type AnalyzerConfig struct {
	Concurrency int
	Split       chunker.SplitMode
	TopK        int
	Parser      parser.Options
}

// ConfigFromEnv derives analyzer settings from service configuration.
func ConfigFromEnv(cfg config.Config) (AnalyzerConfig, error) {
	split, err := chunker.ParseSplitMode(cfg.ParagraphSplit)
	if err != nil {
		return AnalyzerConfig{}, err
	}
	return AnalyzerConfig{
		Concurrency: cfg.MaxConcurrentScore,
		Split:       split,
		TopK:        cfg.TopK,
		Parser:      parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext},
	}, nil
}

// Analyzer runs the decode, section, rank and report stages end to end.
type Analyzer struct {
	scorer relevance.Scorer
	cfg    AnalyzerConfig
	log    *slog.Logger
	now    func() time.Time
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithClock overrides the clock used for the report timestamp.
func WithClock(now func() time.Time) AnalyzerOption {
	return func(a *Analyzer) { a.now = now }
}

func NewAnalyzer(scorer relevance.Scorer, cfg AnalyzerConfig, log *slog.Logger, opts ...AnalyzerOption) *Analyzer {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	a := &Analyzer{scorer: scorer, cfg: cfg, log: log, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run analyzes the request and returns the assembled report. Any decode or
// scoring failure aborts the run with no partial report.
func (a *Analyzer) Run(ctx context.Context, req Request) (*report.Report, error) {
	if len(req.Documents) == 0 {
		return nil, ErrNoInputDocuments
	}
	enter := func(p Phase) {
		if req.OnPhase != nil {
			req.OnPhase(p)
		}
	}

	enter(PhaseDecoding)
	names := make([]string, len(req.Documents))
	var pool []doctree.Section
	for i, in := range req.Documents {
		names[i] = in.Name
		sections, err := a.decode(ctx, in)
		if err != nil {
			return nil, err
		}
		pool = append(pool, sections...)
	}
	a.log.Info("documents decoded", "documents", len(names), "sections", len(pool))

	enter(PhaseRanking)
	engine := rank.NewEngine(a.scorer, rank.Config{
		Persona:     req.Persona,
		Job:         req.Job,
		Concurrency: a.cfg.Concurrency,
		Split:       a.cfg.Split,
	}, a.log)

	ranked, err := engine.Sections(ctx, pool)
	if err != nil {
		return nil, err
	}
	subs, err := engine.Subsections(ctx, ranked)
	if err != nil {
		return nil, err
	}

	return report.Assemble(report.Input{
		Documents:   names,
		Persona:     req.Persona,
		Job:         req.Job,
		Sections:    ranked,
		Subsections: subs,
		TopK:        a.cfg.TopK,
		Now:         a.now(),
	}), nil
}

func (a *Analyzer) decode(ctx context.Context, in Input) ([]doctree.Section, error) {
	p, err := parser.ForFile(in.Name, a.cfg.Parser)
	if err != nil {
		return nil, &DecodeError{Document: in.Name, Err: err}
	}
	doc, err := p.Parse(bytes.NewReader(in.Data), in.Name)
	if err != nil {
		return nil, &DecodeError{Document: in.Name, Err: err}
	}
	sections, err := section.Build(ctx, in.Name, doc)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &DecodeError{Document: in.Name, Err: err}
	}
	a.log.Debug("document sectioned", "document", in.Name, "pages", doc.PageCount(), "sections", len(sections))
	return sections, nil
}
