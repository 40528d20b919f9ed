package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pfrederiksen/activity-intake/internal/calendar"
	"github.com/pfrederiksen/activity-intake/internal/storage"
	"github.com/spf13/cobra"
)

func newICSCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ics <records.yml>",
		Short: "Export record timelines as iCalendar",
		Long: `Export every timeline entry of the records in a YAML file as iCalendar
events. A single record is written to stdout or --output. Several records
need --output naming a directory; one <event-id>.ics file is written per
record.`,
		Args: cobra.ExactArgs(1),
		RunE: runICS,
	}
}

func runICS(cmd *cobra.Command, args []string) error {
	records, err := storage.LoadRecords(args[0])
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no records in %s", args[0])
	}

	if len(records) == 1 {
		ics, err := calendar.GenerateICS(records[0])
		if err != nil {
			return err
		}
		if flagOutput == "" {
			_, err = fmt.Fprint(cmd.OutOrStdout(), ics)
			return err
		}
		return os.WriteFile(flagOutput, []byte(ics), 0644)
	}

	if flagOutput == "" {
		return fmt.Errorf("%d records in %s: --output directory is required", len(records), args[0])
	}
	if err := os.MkdirAll(flagOutput, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	for i, rec := range records {
		ics, err := calendar.GenerateICS(rec)
		if err != nil {
			return fmt.Errorf("record %d (%s): %w", i+1, rec.Title, err)
		}
		name := fmt.Sprintf("record-%d", i+1)
		if ids := rec.EventIDs(); len(ids) > 0 && ids[0] != "" {
			name = ids[0]
		}
		path := filepath.Join(flagOutput, name+".ics")
		if err := os.WriteFile(path, []byte(ics), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", path)
	}
	return nil
}
