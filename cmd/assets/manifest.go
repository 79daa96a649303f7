package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ilkoid/pixelbros-assets/pkg/classifier"
	"github.com/ilkoid/pixelbros-assets/pkg/config"
	"github.com/ilkoid/pixelbros-assets/pkg/manifest"
	"github.com/ilkoid/pixelbros-assets/pkg/portfolio"
	"github.com/ilkoid/pixelbros-assets/pkg/utils"
)

func manifestCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Inspect and merge asset manifests",
	}
	cmd.AddCommand(manifestMergeCmd(a), manifestShowCmd(a))
	return cmd
}

// manifest merge: remote записи побеждают, локальные файлы добавляются
// только для отсутствующих ключей.
func manifestMergeCmd(a *app) *cobra.Command {
	var (
		remotePath string
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge the remote manifest with locally scanned assets",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(false); err != nil {
				return err
			}
			if remotePath == "" {
				remotePath = a.cfg.Assets.ManifestPath
			}
			if outPath == "" {
				outPath = remotePath
			}

			remote, err := manifest.Load(remotePath)
			if err != nil {
				return err
			}
			result, err := a.scan(context.Background())
			if err != nil {
				return err
			}
			local := manifest.Local(result.Keys(), a.cfg.Assets.LocalBaseURL)

			merged := manifest.Merge(remote, local)
			if err := manifest.Save(outPath, merged); err != nil {
				return err
			}

			added := len(merged) - len(remote)
			utils.Info("Manifest merged", "remote", len(remote), "local", len(local), "added", added, "out", outPath)
			fmt.Printf("Remote: %d, Local: %d, Added: %d\n", len(remote), len(local), added)
			fmt.Printf("Manifest saved to: %s (%d entries)\n", outPath, len(merged))
			return nil
		},
	}

	cmd.Flags().StringVar(&remotePath, "remote", "", "Remote manifest (default: assets.manifest_path)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default: the remote manifest)")
	return cmd
}

func manifestShowCmd(a *app) *cobra.Command {
	var (
		prefix        string
		onlyPortfolio bool
		asJSON        bool
	)

	cmd := &cobra.Command{
		Use:   "show [key]",
		Short: "List manifest entries or print the URL of one key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(false); err != nil {
				return err
			}
			m, err := manifest.Load(a.cfg.Assets.ManifestPath)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				url := m.URL(args[0])
				if url == "" {
					return fmt.Errorf("key not found: %s", args[0])
				}
				fmt.Println(url)
				return nil
			}

			if onlyPortfolio {
				m = manifest.Manifest(m.Portfolio())
			}
			if prefix != "" {
				m = m.Filter(prefix)
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				enc.SetEscapeHTML(false)
				return enc.Encode(m)
			}

			keys := make([]string, 0, len(m))
			for k := range m {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Printf("%s -> %s\n", k, m[k])
			}
			fmt.Printf("\n%d entries\n", len(keys))
			return nil
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "Only keys with this prefix")
	cmd.Flags().BoolVar(&onlyPortfolio, "portfolio", false, "Only "+manifest.PortfolioPrefix+" keys")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func indexCmd(a *app) *cobra.Command {
	var (
		asJSON  bool
		outPath string
		records bool
	)

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the portfolio index from the manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(false); err != nil {
				return err
			}
			m, err := manifest.Load(a.cfg.Assets.ManifestPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			assets := m.Portfolio()
			if records {
				for _, r := range portfolio.Records(assets) {
					fmt.Fprintf(out, "%-6s %s -> %s\n", r.MediaType, r.RawPath, r.URL)
				}
				return nil
			}

			idx := portfolio.Build(assets)
			for _, c := range idx.Collisions {
				utils.Warn("Slug collision merged", "kind", c.Kind, "slug", c.Slug, "kept", c.Kept, "merged", c.Merged)
				fmt.Fprintf(cmd.ErrOrStderr(), "! %s %q: %q merged into %q\n", c.Kind, c.Slug, c.Merged, c.Kept)
			}

			if asJSON || outPath != "" {
				return writeIndex(out, idx, outPath)
			}

			for _, c := range idx.Categories {
				fmt.Fprintf(out, "%s (%s)\n", c.Name, c.ID)
				for _, p := range c.Projects {
					items := 0
					for _, g := range p.Groups {
						items += len(g.Items)
					}
					cover := "-"
					if p.HasCover() {
						cover = *p.CoverSrc
					}
					fmt.Fprintf(out, "  %-40s %3d items, %d groups, cover: %s\n", p.Slug, items, len(p.Groups), cover)
				}
			}
			fmt.Fprintf(out, "\n%d categories, %d projects, %d keys skipped\n", len(idx.Categories), len(idx.Projects), idx.Skipped)
			printResourceTypes(out, a.cfg.FileRules, m)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the index as JSON")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the JSON index to a file")
	cmd.Flags().BoolVar(&records, "records", false, "List portfolio assets with their media type instead of the index")
	return cmd
}

// printResourceTypes — сколько ключей манифеста ушло бы в каждый resource type.
func printResourceTypes(out io.Writer, rules []config.FileRule, m manifest.Manifest) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	byTag := classifier.New(rules).Process(keys)

	tags := make([]string, 0, len(byTag))
	for tag := range byTag {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		fmt.Fprintf(out, "  %-6s %d\n", tag, len(byTag[tag]))
	}
}

func writeIndex(out io.Writer, idx *portfolio.Index, outPath string) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}
	data = append(data, '\n')

	if outPath == "" {
		_, err = out.Write(data)
		return err
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	fmt.Fprintf(out, "Index saved to: %s\n", outPath)
	return nil
}
