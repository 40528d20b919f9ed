package cli

import (
	"context"
	"fmt"

	"github.com/pfrederiksen/activity-intake/internal/activity"
	"github.com/pfrederiksen/activity-intake/internal/feedback"
	"github.com/pfrederiksen/activity-intake/internal/storage"
	"github.com/spf13/cobra"
)

var (
	flagValidateLinks bool
	flagSort          string
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <records.yml>...",
		Short: "Validate activity records against the corpus",
		Long: `Validate records from YAML files (a sequence of records or a single
record) against the field rules and the corpus in --data-dir.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runValidate,
	}
	cmd.Flags().BoolVar(&flagValidateLinks, "check-links", false, "Check that event links are reachable")
	cmd.Flags().StringVar(&flagSort, "sort", "none", "Sort records: none, date, title or category")
	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	order, err := ParseSortOrder(flagSort)
	if err != nil {
		return err
	}
	a, err := newApp(cmd, overrides{checkLinks: flagValidateLinks})
	if err != nil {
		return err
	}

	type loaded struct {
		file string
		rec  *activity.Record
	}
	var all []loaded
	for _, path := range args {
		records, err := storage.LoadRecords(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		sortRecords(records, order)
		for _, r := range records {
			all = append(all, loaded{file: path, rec: r})
		}
	}
	if len(all) == 0 {
		return fmt.Errorf("no records found")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	v := a.validator()

	items := make([]outputItem, len(all))
	invalid := 0
	for i, l := range all {
		res := v.Validate(ctx, l.rec)
		if !res.IsValid() {
			invalid++
		}
		items[i] = outputItem{
			Input: fmt.Sprintf("%s: %s", l.file, l.rec.Title),
			Doc:   feedback.FromRecord(l.rec, res),
		}
	}

	out := cmd.OutOrStdout()
	if len(items) == 1 {
		err = feedback.Write(out, a.format, items[0].Doc, a.opts)
	} else {
		err = writeItems(out, a.format, items, a.opts)
	}
	if err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if invalid > 0 {
		return &exitError{code: ExitValidationFailed}
	}
	return nil
}
