package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docrank/internal/config"
	"github.com/dgallion1/docrank/internal/pipeline"
	"github.com/dgallion1/docrank/internal/report"
	"github.com/spf13/cobra"
)

const (
	defaultInputDir = "input"
	defaultPersona  = "PhD Researcher in Computational Biology"
	defaultJob      = "Prepare a comprehensive literature review focusing on methodologies, datasets, and performance benchmarks"
)

var (
	inputDir    string
	persona     string
	job         string
	requestFile string
	outFile     string
	pretty      bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze every document in a directory",
	Long: `Analyze reads every supported document in the input directory in filename
order and prints the ranked report as indented JSON.

Values from --request are used unless the matching flag is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := pipeline.RequestFile{Persona: defaultPersona, Job: defaultJob, InputDir: defaultInputDir}
		if requestFile != "" {
			rf, err := pipeline.LoadRequest(requestFile)
			if err != nil {
				return err
			}
			req = req.Merge(rf)
		}
		flags := pipeline.RequestFile{}
		if cmd.Flags().Changed("input") {
			flags.InputDir = inputDir
		}
		if cmd.Flags().Changed("persona") {
			flags.Persona = persona
		}
		if cmd.Flags().Changed("job") {
			flags.Job = job
		}
		req = req.Merge(flags)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		if outFile != "" {
			f, err := os.Create(outFile)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer f.Close()
			out = f
		}
		return runAnalyze(ctx, req, out, cmd.ErrOrStderr())
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&inputDir, "input", "i", defaultInputDir, "Directory of documents to analyze")
	analyzeCmd.Flags().StringVarP(&persona, "persona", "p", defaultPersona, "Reader persona")
	analyzeCmd.Flags().StringVarP(&job, "job", "j", defaultJob, "Job to be done")
	analyzeCmd.Flags().StringVarP(&requestFile, "request", "r", "", "YAML file with persona, job_to_be_done and input_dir")
	analyzeCmd.Flags().StringVarP(&outFile, "out", "o", "", "Write the JSON report to this file instead of stdout")
	analyzeCmd.Flags().BoolVar(&pretty, "pretty", false, "Also render a summary to stderr")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(ctx context.Context, req pipeline.RequestFile, out, errOut io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	log := slog.New(slog.NewJSONHandler(errOut, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	if err := os.MkdirAll(req.InputDir, 0o755); err != nil {
		return fmt.Errorf("create input dir: %w", err)
	}
	inputs, err := pipeline.Discover(req.InputDir)
	if err != nil {
		return err
	}

	scorer, closeScorer, err := pipeline.NewScorer(cfg, nil, log)
	if err != nil {
		return err
	}
	defer closeScorer()

	acfg, err := pipeline.ConfigFromEnv(cfg)
	if err != nil {
		return err
	}
	analyzer := pipeline.NewAnalyzer(scorer, acfg, log)

	start := time.Now()
	rep, err := analyzer.Run(ctx, pipeline.Request{
		Documents: inputs,
		Persona:   req.Persona,
		Job:       req.Job,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	log.Info("processing complete",
		"documents", len(inputs),
		"duration_s", fmt.Sprintf("%.2f", time.Since(start).Seconds()),
	)

	if pretty {
		report.Render(errOut, rep)
	}
	return nil
}
