package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ilkoid/pixelbros-assets/pkg/journal"
)

func journalCmd(a *app) *cobra.Command {
	var (
		limit int
		runID string
	)

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show upload attempts that failed and were not retried successfully",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(false); err != nil {
				return err
			}
			if a.cfg.Journal.Path == "" {
				return fmt.Errorf("journal is disabled: set journal.path in config")
			}

			j, err := journal.Open(a.cfg.Journal.Path)
			if err != nil {
				return err
			}
			defer j.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			counts, err := j.Counts(ctx, runID)
			if err != nil {
				return err
			}
			fmt.Printf("Uploaded: %d, Existing: %d, Failed: %d\n\n",
				counts[journal.StatusUploaded], counts[journal.StatusExisting], counts[journal.StatusFailed])

			failures, err := j.RecentFailures(ctx, limit)
			if err != nil {
				return err
			}
			if len(failures) == 0 {
				fmt.Println("No outstanding failures.")
				return nil
			}
			for _, e := range failures {
				fmt.Printf("✗ %s (%s)\n    %s\n", e.Key, humanize.Time(e.CreatedAt), e.Error)
			}
			fmt.Printf("\n%d outstanding failures. Run `%s retry` to upload them.\n", len(failures), appName)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum failures to show")
	cmd.Flags().StringVar(&runID, "run", "", "Count only this run id")
	return cmd
}
