package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/docrank/internal/chunker"
	"github.com/dgallion1/docrank/internal/relevance"
)

func benchmarkScorer() relevance.Scorer {
	return relevance.ScorerFunc(func(_ context.Context, text, _, _ string) (float64, error) {
		if strings.Contains(text, "benchmark") {
			return 1, nil
		}
		return 0, nil
	})
}

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func twoDocuments() []Input {
	body := strings.Repeat("the benchmark results show steady gains ", 8)[:300]
	a := "Intro\n" + body + "\nsecond paragraph of plain closing remarks that run past fifty characters\n"
	b := strings.Repeat("unrelated filler text about gardening and soil ", 13)[:600] + "\n"
	return []Input{
		{Name: "A.txt", Data: []byte(a)},
		{Name: "B.txt", Data: []byte(b)},
	}
}

func TestAnalyzer_EndToEnd(t *testing.T) {
	a := NewAnalyzer(benchmarkScorer(), AnalyzerConfig{Concurrency: 4}, nil, WithClock(fixedClock))

	var phases []Phase
	rep, err := a.Run(context.Background(), Request{
		Documents: twoDocuments(),
		Persona:   "Researcher",
		Job:       "Summarize benchmarks",
		OnPhase:   func(p Phase) { phases = append(phases, p) },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(phases) != 2 || phases[0] != PhaseDecoding || phases[1] != PhaseRanking {
		t.Errorf("expected decoding then ranking, got %v", phases)
	}
	if got := rep.Metadata.InputDocuments; len(got) != 2 || got[0] != "A.txt" || got[1] != "B.txt" {
		t.Errorf("expected documents in discovery order, got %v", got)
	}
	if rep.Metadata.ProcessingTimestamp != "2024-03-01T12:00:00.000000Z" {
		t.Errorf("unexpected timestamp %q", rep.Metadata.ProcessingTimestamp)
	}

	first := rep.Sections[0]
	if first.Document != "A.txt" || first.ImportanceRank != 1 {
		t.Errorf("expected A.txt ranked first, got %+v", first)
	}
	if first.SectionTitle != "Intro" || first.PageNumber != 1 {
		t.Errorf("expected Intro on page 1, got %+v", first)
	}

	if len(rep.Subsections) > 5 {
		t.Errorf("expected at most 5 sub-sections, got %d", len(rep.Subsections))
	}
	for _, s := range rep.Subsections {
		if len([]rune(s.RefinedText)) > chunker.RefinedTextMax {
			t.Errorf("refined text longer than %d: %d", chunker.RefinedTextMax, len(s.RefinedText))
		}
	}
	if rep.Subsections[0].Document != "A.txt" {
		t.Errorf("expected A.txt sub-section first, got %+v", rep.Subsections[0])
	}
}

func TestAnalyzer_Deterministic(t *testing.T) {
	run := func(conc int) string {
		a := NewAnalyzer(benchmarkScorer(), AnalyzerConfig{Concurrency: conc}, nil, WithClock(fixedClock))
		rep, err := a.Run(context.Background(), Request{Documents: twoDocuments(), Persona: "p", Job: "j"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var b strings.Builder
		for _, s := range rep.Sections {
			b.WriteString(s.Document + "|" + s.SectionTitle + ";")
		}
		return b.String()
	}
	if seq, par := run(1), run(8); seq != par {
		t.Errorf("expected identical ordering, got %q and %q", seq, par)
	}
}

func TestAnalyzer_NoDocuments(t *testing.T) {
	a := NewAnalyzer(benchmarkScorer(), AnalyzerConfig{}, nil)
	_, err := a.Run(context.Background(), Request{})
	if !errors.Is(err, ErrNoInputDocuments) {
		t.Fatalf("expected ErrNoInputDocuments, got %v", err)
	}
}

func TestAnalyzer_DecodeError(t *testing.T) {
	a := NewAnalyzer(benchmarkScorer(), AnalyzerConfig{}, nil)
	_, err := a.Run(context.Background(), Request{Documents: []Input{
		{Name: "ok.txt", Data: []byte("fine")},
		{Name: "broken.pdf", Data: []byte("not a pdf")},
	}})
	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if decErr.Document != "broken.pdf" {
		t.Errorf("expected broken.pdf, got %s", decErr.Document)
	}
}

func TestAnalyzer_ScoreErrorAborts(t *testing.T) {
	boom := &relevance.ScoreError{Err: errors.New("model down")}
	scorer := relevance.ScorerFunc(func(context.Context, string, string, string) (float64, error) {
		return 0, boom
	})
	a := NewAnalyzer(scorer, AnalyzerConfig{}, nil)
	rep, err := a.Run(context.Background(), Request{Documents: twoDocuments()})
	var scoreErr *relevance.ScoreError
	if !errors.As(err, &scoreErr) {
		t.Fatalf("expected ScoreError, got %v", err)
	}
	if rep != nil {
		t.Error("expected no partial report")
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.txt", "notes.png", "C.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.pdf"), 0o755); err != nil {
		t.Fatal(err)
	}

	inputs, err := Discover(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var names []string
	for _, in := range inputs {
		names = append(names, in.Name)
	}
	want := []string{"C.md", "a.txt", "b.pdf"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, names)
	}
}

func TestDiscover_Empty(t *testing.T) {
	_, err := Discover(t.TempDir())
	if !errors.Is(err, ErrNoInputDocuments) {
		t.Fatalf("expected ErrNoInputDocuments, got %v", err)
	}
	if _, err := Discover(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestLoadRequest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "req.yaml")
	body := "persona: Travel Planner\njob_to_be_done: Plan a trip\ninput_dir: ./docs\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	rf, err := LoadRequest(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rf.Persona != "Travel Planner" || rf.Job != "Plan a trip" || rf.InputDir != "./docs" {
		t.Errorf("unexpected request %+v", rf)
	}

	merged := rf.Merge(RequestFile{Persona: "Chef"})
	if merged.Persona != "Chef" || merged.Job != "Plan a trip" {
		t.Errorf("expected flag override of persona only, got %+v", merged)
	}
}
