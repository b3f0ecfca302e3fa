package main

import (
	"context"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/listenupapp/crate-server/internal/service"
)

func init() {
	cmdRoot.AddCommand(cmdImport(), cmdEnrich())
}

func cmdImport() *cobra.Command {
	return &cobra.Command{
		Use:          "import [dir]",
		Short:        "Import music files into the library",
		Long:         "Walks dir (or the configured music path), reads tags and upserts one track per file.",
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var dir string
			if len(args) > 0 {
				dir = args[0]
			}
			return run(cmd, func(ctx context.Context, i do.Injector) error {
				svc := do.MustInvoke[*service.LibraryService](i)
				report, err := svc.Import(ctx, dir)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				printStats(out, "Import",
					count("scanned", report.Scanned),
					count("imported", report.Imported),
					count("failed", report.Failed),
					elapsed("took", report.Duration),
				)
				if report.Failed > 0 {
					printWarning(out, "%s could not be read, see the log for details", plural(report.Failed, "file"))
				}
				return nil
			})
		},
	}
}

func cmdEnrich() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "enrich",
		Short:        "Fetch similar artists and tags from Last.fm",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			return run(cmd, func(ctx context.Context, i do.Injector) error {
				svc := do.MustInvoke[*service.EnrichService](i)
				report, err := svc.Run(ctx, service.EnrichRequest{Limit: limit})
				if report != nil {
					printStats(cmd.OutOrStdout(), "Enrichment",
						count("processed", report.Processed),
						count("enriched", report.Enriched),
						count("failed", report.Failed),
						count("similar links", report.SimilarLinked),
						count("tags stored", report.TagsStored),
					)
					if len(report.FailedArtists) > 0 {
						printWarning(cmd.OutOrStdout(), "failed: %s", joinQuoted(report.FailedArtists))
					}
				}
				return err
			})
		},
	}
	cmd.Flags().Int("limit", 0, "Artists to enrich, 0 for every stale artist")
	return cmd
}
