// Package rank scores sections and sub-sections and orders them by relevance.
package rank

import (
	"context"
	"log/slog"
	"slices"

	"github.com/dgallion1/docrank/internal/chunker"
	"github.com/dgallion1/docrank/internal/doctree"
	"github.com/dgallion1/docrank/internal/relevance"
	"github.com/dgallion1/docrank/internal/textnorm"
	"golang.org/x/sync/errgroup"
)

// Config controls ranking behavior.
type Config struct {
	Persona     string
	Job         string
	Concurrency int // Maximum scoring calls in flight; <= 1 scores sequentially.
	Split       chunker.SplitMode
}

// Engine ranks sections and sub-sections with one injected scorer.
type Engine struct {
	scorer relevance.Scorer
	cfg    Config
	log    *slog.Logger
}

func NewEngine(scorer relevance.Scorer, cfg Config, log *slog.Logger) *Engine {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Split == "" {
		cfg.Split = chunker.SplitNormalized
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Engine{scorer: scorer, cfg: cfg, log: log}
}

// Sections normalizes each section's body, scores it, and returns the
// sections sorted by relevance with 1-based ranks. Ties keep input order.
// The input slice is not modified.
func (e *Engine) Sections(ctx context.Context, sections []doctree.Section) ([]doctree.Section, error) {
	ranked := slices.Clone(sections)
	texts := make([]string, len(ranked))
	for i := range ranked {
		ranked[i].Text = textnorm.Normalize(ranked[i].Text)
		texts[i] = ranked[i].Text
	}

	scores, err := e.scoreAll(ctx, texts)
	if err != nil {
		return nil, err
	}
	for i := range ranked {
		ranked[i].Relevance = scores[i]
	}

	slices.SortStableFunc(ranked, func(a, b doctree.Section) int {
		return byRelevanceDesc(a.Relevance, b.Relevance)
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	e.log.Info("ranked sections", "count", len(ranked))
	return ranked, nil
}

// Subsections derives paragraphs from already-ranked sections, scores each
// untruncated paragraph, and returns them sorted by relevance. Ties keep
// derivation order: section rank order, then paragraph order.
func (e *Engine) Subsections(ctx context.Context, ranked []doctree.Section) ([]doctree.Subsection, error) {
	subs := chunker.Subsections(ranked, e.cfg.Split)
	texts := make([]string, len(subs))
	for i := range subs {
		texts[i] = subs[i].Paragraph
	}

	scores, err := e.scoreAll(ctx, texts)
	if err != nil {
		return nil, err
	}
	for i := range subs {
		subs[i].Relevance = scores[i]
	}

	slices.SortStableFunc(subs, func(a, b doctree.Subsection) int {
		return byRelevanceDesc(a.Relevance, b.Relevance)
	})

	e.log.Info("ranked sub-sections", "count", len(subs))
	return subs, nil
}

// scoreAll scores texts with bounded concurrency. Results are stored by
// input index, so completion order never affects the outcome. The first
// failure cancels the remaining calls and is returned.
func (e *Engine) scoreAll(ctx context.Context, texts []string) ([]float64, error) {
	scores := make([]float64, len(texts))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)

	for i, text := range texts {
		g.Go(func() error {
			s, err := e.scorer.Score(gCtx, text, e.cfg.Persona, e.cfg.Job)
			if err != nil {
				return err
			}
			scores[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}

func byRelevanceDesc(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}
