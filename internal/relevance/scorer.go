// Package relevance scores text against a reader persona and task.
package relevance

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"
)

// Scorer rates how relevant text is to a persona and job, in [0,1].
type Scorer interface {
	Score(ctx context.Context, text, persona, job string) (float64, error)
}

// Model returns the positive-class probability for a prompt.
type Model interface {
	Probability(ctx context.Context, p Prompt) (float64, error)
}

// ScoreError is returned when a text could not be scored.
type ScoreError struct {
	Err error
}

func (e *ScoreError) Error() string { return "score relevance: " + e.Err.Error() }

func (e *ScoreError) Unwrap() error { return e.Err }

// Adapter implements Scorer on top of a Model. It holds no cache, so the
// same text scored twice costs two model calls.
type Adapter struct {
	model      Model
	stats      *Stats
	log        *slog.Logger
	maxRetries int
	backoff    func(attempt int) time.Duration
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithStats records every model call into s.
func WithStats(s *Stats) Option {
	return func(a *Adapter) { a.stats = s }
}

// WithLogger sets the logger used for retry warnings.
func WithLogger(log *slog.Logger) Option {
	return func(a *Adapter) { a.log = log }
}

// WithMaxRetries sets how often a RetryableError is retried. Zero disables retries.
func WithMaxRetries(n int) Option {
	return func(a *Adapter) {
		if n >= 0 {
			a.maxRetries = n
		}
	}
}

func NewAdapter(model Model, opts ...Option) *Adapter {
	a := &Adapter{
		model:      model,
		log:        slog.New(slog.DiscardHandler),
		maxRetries: DefaultMaxRetries,
		backoff:    Backoff,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Score builds the prompt and asks the model. Transient failures are
// retried with backoff; anything else, or an out-of-range probability,
// comes back as a *ScoreError.
func (a *Adapter) Score(ctx context.Context, text, persona, job string) (float64, error) {
	prompt := BuildPrompt(persona, job, text)

	var p float64
	for attempt := 0; ; attempt++ {
		start := time.Now()
		var err error
		p, err = a.model.Probability(ctx, prompt)
		if a.stats != nil {
			a.stats.Record(time.Since(start), err)
		}
		if err == nil {
			break
		}
		if !IsRetryable(err) || attempt >= a.maxRetries {
			return 0, &ScoreError{Err: err}
		}
		a.log.Warn("retryable scoring error", "attempt", attempt, "error", err)
		select {
		case <-time.After(a.backoff(attempt)):
		case <-ctx.Done():
			return 0, &ScoreError{Err: ctx.Err()}
		}
	}

	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, &ScoreError{Err: fmt.Errorf("probability %v outside [0,1]", p)}
	}
	return p, nil
}

// ScorerFunc adapts a plain function to the Scorer interface.
type ScorerFunc func(ctx context.Context, text, persona, job string) (float64, error)

func (f ScorerFunc) Score(ctx context.Context, text, persona, job string) (float64, error) {
	return f(ctx, text, persona, job)
}
