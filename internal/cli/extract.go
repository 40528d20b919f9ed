package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pfrederiksen/activity-intake/internal/activity"
	"github.com/pfrederiksen/activity-intake/internal/calendar"
	"github.com/pfrederiksen/activity-intake/internal/feedback"
	"github.com/pfrederiksen/activity-intake/internal/logger"
	"github.com/pfrederiksen/activity-intake/internal/notifier"
	"github.com/pfrederiksen/activity-intake/internal/pipeline"
	"github.com/pfrederiksen/activity-intake/internal/storage"
	"github.com/spf13/cobra"
)

var (
	flagLLM         string
	flagCheckLinks  bool
	flagIDStrategy  string
	flagParallelism int
	flagPublish     bool
	flagDryRun      bool
	flagICS         string
)

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <url|file|text>...",
		Short: "Extract activity records from URLs, files or text",
		Long: `Extract structured activity records. Each argument is a URL, a path to
a .txt, .md, .pdf or image file, or literal announcement text. Several
arguments are processed in parallel.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runExtract,
	}

	cmd.Flags().StringVar(&flagLLM, "llm", "", "LLM provider[/model]: github, openai or none")
	cmd.Flags().BoolVar(&flagCheckLinks, "check-links", false, "Check that event links are reachable")
	cmd.Flags().StringVar(&flagIDStrategy, "id-strategy", "", "Event ID strategy: slug or hash")
	cmd.Flags().IntVar(&flagParallelism, "parallelism", 0, "Maximum concurrent inputs")
	cmd.Flags().BoolVar(&flagPublish, "publish", false, "Post the markdown report as a GitHub issue comment")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "With --publish, print the comment instead of posting it")
	cmd.Flags().StringVar(&flagICS, "ics", "", "Write the extracted timeline to this iCalendar file")

	return cmd
}

// runExtract is the extract command logic
func runExtract(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, overrides{
		llm:         flagLLM,
		checkLinks:  flagCheckLinks,
		idStrategy:  flagIDStrategy,
		parallelism: flagParallelism,
	})
	if err != nil {
		return err
	}

	p, err := a.pipeline()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()
	publishing := flagPublish || a.cfg.Notify.Enabled

	if len(args) == 1 {
		outcome, runErr := p.Run(ctx, args[0])
		if runErr != nil {
			if err := feedback.WriteFailure(out, a.format, runErr, a.opts); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			if publishing {
				if err := publish(ctx, a, cmd, feedback.FailureComment(runErr)); err != nil {
					a.log.Error("publishing failure report", nil, err)
				}
			}
			return runErr
		}

		doc := feedback.FromOutcome(outcome)
		if err := feedback.Write(out, a.format, doc, a.opts); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		if err := saveOutputs(a, []*activity.Record{outcome.Record}); err != nil {
			return err
		}
		if publishing {
			if err := publish(ctx, a, cmd, feedback.Comment(doc, time.Now())); err != nil {
				return err
			}
		}
		if !outcome.Validation.IsValid() {
			return &exitError{code: ExitValidationFailed}
		}
		return nil
	}

	results := p.RunBatch(ctx, args, a.cfg.Parallelism)
	if err := writeBatch(out, a.format, results, a.opts); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	var records []*activity.Record
	failed, invalid := 0, 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		records = append(records, r.Outcome.Record)
		if !r.Outcome.Validation.IsValid() {
			invalid++
		}
	}
	if err := saveOutputs(a, records); err != nil {
		return err
	}
	if publishing {
		if err := publish(ctx, a, cmd, batchComment(results)); err != nil {
			return err
		}
	}

	switch {
	case failed > 0:
		return fmt.Errorf("%d of %d inputs failed", failed, len(results))
	case invalid > 0:
		return &exitError{code: ExitValidationFailed}
	}
	return nil
}

// saveOutputs writes --output and --ics files when requested
func saveOutputs(a *app, records []*activity.Record) error {
	if len(records) == 0 {
		return nil
	}
	if flagOutput != "" {
		if err := storage.SaveRecords(flagOutput, records); err != nil {
			return err
		}
		a.log.Info("records saved", logger.Fields{"path": flagOutput, "records": len(records)})
	}
	if flagICS != "" {
		if len(records) > 1 {
			return fmt.Errorf("--ics needs a single input, got %d records", len(records))
		}
		ics, err := calendar.GenerateICS(records[0])
		if err != nil {
			return fmt.Errorf("generating calendar: %w", err)
		}
		if err := os.WriteFile(flagICS, []byte(ics), 0644); err != nil {
			return fmt.Errorf("writing calendar: %w", err)
		}
		a.log.Info("calendar saved", logger.Fields{"path": flagICS})
	}
	return nil
}

func newNotifier(ctx context.Context, a *app, cmd *cobra.Command) (notifier.Notifier, error) {
	nc := a.cfg.Notify
	target := ""
	if nc.Repo != "" && nc.Issue > 0 {
		target = fmt.Sprintf("%s#%d", nc.Repo, nc.Issue)
	}
	if flagDryRun {
		return notifier.NewDryRunNotifier(cmd.ErrOrStderr(), target), nil
	}
	gh, err := notifier.NewGitHubNotifier(ctx, notifier.GitHubConfig{
		APIURL:     nc.APIURL,
		Repo:       nc.Repo,
		Issue:      nc.Issue,
		Token:      nc.Token,
		MaxRetries: a.cfg.Source.MaxRetries,
	})
	if err != nil {
		return nil, err
	}
	return gh, nil
}

func publish(ctx context.Context, a *app, cmd *cobra.Command, report string) error {
	n, err := newNotifier(ctx, a, cmd)
	if err != nil {
		return fmt.Errorf("configuring notifier: %w", err)
	}
	if err := n.Notify(ctx, report); err != nil {
		return fmt.Errorf("publishing report: %w", err)
	}
	a.log.Info("report published", logger.Fields{"dry_run": flagDryRun})
	return nil
}

// batchComment joins the per-input comments into one report
func batchComment(results []pipeline.BatchResult) string {
	now := time.Now()
	parts := make([]string, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			parts = append(parts, feedback.FailureComment(r.Err))
			continue
		}
		parts = append(parts, feedback.Comment(feedback.FromOutcome(r.Outcome), now))
	}
	return strings.Join(parts, "\n\n---\n\n")
}
