package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ilkoid/pixelbros-assets/pkg/classifier"
	"github.com/ilkoid/pixelbros-assets/pkg/journal"
	"github.com/ilkoid/pixelbros-assets/pkg/manifest"
	"github.com/ilkoid/pixelbros-assets/pkg/portfolio"
	"github.com/ilkoid/pixelbros-assets/pkg/s3storage"
	"github.com/ilkoid/pixelbros-assets/pkg/scanner"
	"github.com/ilkoid/pixelbros-assets/pkg/uploader"
	"github.com/ilkoid/pixelbros-assets/pkg/utils"
)

// session — всё, что нужно одной загрузке.
type session struct {
	ctx      context.Context
	store    *manifest.Store
	journal  *journal.Journal
	uploader *uploader.Uploader
	stop     func()
}

func (s *session) close() {
	if err := s.journal.Close(); err != nil {
		utils.Warn("Failed to close journal", "error", err)
	}
	s.stop()
}

func (a *app) openSession() (*session, error) {
	if err := a.load(true); err != nil {
		return nil, err
	}

	ctx, stop := utils.SetupGracefulShutdownWithContext()

	client, err := s3storage.New(a.cfg.S3)
	if err != nil {
		stop()
		return nil, fmt.Errorf("s3 init: %w", err)
	}
	store, err := manifest.Open(a.cfg.Assets.ManifestPath)
	if err != nil {
		stop()
		return nil, err
	}
	j, err := journal.Open(a.cfg.Journal.Path)
	if err != nil {
		stop()
		return nil, err
	}

	opts, err := uploader.OptionsFromConfig(a.cfg)
	if err != nil {
		_ = j.Close()
		stop()
		return nil, err
	}
	u, err := uploader.New(client, store, j, opts)
	if err != nil {
		_ = j.Close()
		stop()
		return nil, err
	}
	u.WithClassifier(classifier.New(a.cfg.FileRules))

	return &session{ctx: ctx, store: store, journal: j, uploader: u, stop: stop}, nil
}

func (a *app) scan(ctx context.Context) (*scanner.Result, error) {
	result, err := scanner.Scan(ctx, scanner.FromConfig(a.cfg.Assets, a.cfg.FileRules))
	if err != nil {
		return nil, err
	}
	utils.Info("Assets scanned",
		"root", a.cfg.Assets.Root,
		"found", len(result.Assets),
		"skipped", result.SkippedCount,
		"ignored", result.IgnoredCount)
	return result, nil
}

func uploadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload",
		Short: "Upload new assets in batches, skipping those already in the manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession()
			if err != nil {
				return err
			}
			defer s.close()

			result, err := a.scan(s.ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Scanned %s: %d files (%s)\n", a.cfg.Assets.Root, len(result.Assets), humanize.Bytes(uint64(result.TotalSize())))

			stats, runErr := s.uploader.Run(s.ctx, result.Assets)
			printSummary(stats, s.store)
			return runErr
		},
	}
}

func retryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "retry",
		Short: "Upload assets missing from the manifest one by one with multipart",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession()
			if err != nil {
				return err
			}
			defer s.close()

			result, err := a.scan(s.ctx)
			if err != nil {
				return err
			}

			stats, runErr := s.uploader.Retry(s.ctx, result.Assets)
			fmt.Printf("\nDone! Uploaded: %d, Failed: %d\n", stats.Uploaded, stats.Failed)
			fmt.Printf("Total in manifest: %d\n", s.store.Len())
			return runErr
		},
	}
}

func extraCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "extra",
		Short: "Upload files listed in extra_files under their fixed public ids",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession()
			if err != nil {
				return err
			}
			defer s.close()

			if len(a.cfg.ExtraFiles) == 0 {
				fmt.Println("No extra_files configured.")
				return nil
			}

			_, stats, err := s.uploader.Extra(s.ctx, a.cfg.ExtraFiles)
			fmt.Printf("\nUploaded: %d, Not found: %d, Failed: %d\n", stats.Uploaded, stats.Missing, stats.Failed)
			return err
		},
	}
}

func printSummary(stats uploader.Stats, store *manifest.Store) {
	fmt.Println("\n--- Summary ---")
	fmt.Printf("Uploaded: %d\n", stats.Uploaded)
	fmt.Printf("Skipped (cached): %d", stats.Skipped)
	if stats.Existing > 0 {
		fmt.Printf(" (%d already in storage)", stats.Existing)
	}
	fmt.Println()
	fmt.Printf("Failed: %d\n", stats.Failed)
	fmt.Printf("Manifest saved to: %s (%d entries)\n", store.Path(), store.Len())

	idx := portfolio.Build(store.Snapshot().Portfolio())
	fmt.Printf("Portfolio: %d projects", len(idx.Projects))
	if len(idx.Collisions) > 0 {
		fmt.Printf(", %d slug collisions (see: assets index)", len(idx.Collisions))
	}
	fmt.Println()
}
