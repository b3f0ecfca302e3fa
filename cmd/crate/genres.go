package main

import (
	"context"
	"strings"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/listenupapp/crate-server/internal/service"
)

func init() {
	cmdRoot.AddCommand(cmdNormalizeGenres(), cmdSeedGroups())
}

func cmdNormalizeGenres() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "normalize-genres",
		Short:        "Map every raw genre in the library onto its canonical genre",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			return run(cmd, func(ctx context.Context, i do.Injector) error {
				svc := do.MustInvoke[*service.GenreService](i)
				nr, err := svc.Normalize(ctx, dryRun)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(nr.Clusters) > 0 {
					headerColor.Fprintln(out, "Clusters")
					for _, c := range nr.Clusters {
						valueColor.Fprintf(out, "  %s", c.Canonical)
						labelColor.Fprintf(out, " <- %s\n", strings.Join(c.Variants, ", "))
					}
				}

				title := "Normalization"
				if nr.DryRun {
					title += " (dry run)"
				}
				printStats(out, title,
					text("run", nr.ID),
					count("raw genres", nr.TotalGenres),
					count("aliases", nr.AliasMappings),
					count("already canonical", nr.IdentityMappings),
					count("new canonical", nr.CanonicalNew),
					count("clusters", nr.ClustersFound),
					count("aliases created", nr.AliasesCreated),
				)
				return nil
			})
		},
	}
	cmd.Flags().Bool("dry-run", false, "Report statistics without writing aliases")
	return cmd
}

func cmdSeedGroups() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "seed-groups",
		Short:        "Create or update genre groups from a TOML file or the built-in set",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			createMissing, _ := cmd.Flags().GetBool("create-missing")
			// --groups-file is picked up by the config loader.
			return run(cmd, func(ctx context.Context, i do.Injector) error {
				svc := do.MustInvoke[*service.GroupService](i)
				report, err := svc.Seed(ctx, service.SeedRequest{DryRun: dryRun, CreateMissing: createMissing})
				if err != nil {
					return err
				}

				source := svc.GroupsFile()
				if source == "" {
					source = "built-in groups"
				}
				title := "Genre groups"
				if report.DryRun {
					title += " (dry run)"
				}
				out := cmd.OutOrStdout()
				printStats(out, title,
					text("source", source),
					count("groups created", report.GroupsCreated),
					count("groups updated", report.GroupsUpdated),
					count("members linked", report.MembersLinked),
					count("genres created", report.GenresCreated),
					count("genres not found", len(report.GenresNotFound)),
				)
				for _, miss := range report.GenresNotFound {
					printWarning(out, "  %s: no genre %q", miss.Group, miss.Genre)
				}
				return nil
			})
		},
	}
	cmd.Flags().String("groups-file", "", "TOML file with genre groups (default: configured file or built-in set)")
	cmd.Flags().Bool("dry-run", false, "Report what would change without writing")
	cmd.Flags().Bool("create-missing", false, "Create genres that groups reference but no track uses")
	return cmd
}
