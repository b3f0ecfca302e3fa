package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/listenupapp/crate-server/internal/service"
)

func init() {
	cmdRoot.AddCommand(cmdSearch())
}

func cmdSearch() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "search <query>",
		Short:        "Full-text search over titles, artists, albums and genres",
		SilenceUsage: true,
		Args:         cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			genres, _ := cmd.Flags().GetStringArray("genre")
			reindex, _ := cmd.Flags().GetBool("reindex")

			return run(cmd, func(ctx context.Context, i do.Injector) error {
				svc := do.MustInvoke[*service.SearchService](i)
				out := cmd.OutOrStdout()

				if n, _ := svc.DocumentCount(); n == 0 || reindex {
					indexed, err := svc.Reindex(ctx)
					if err != nil {
						return err
					}
					labelColor.Fprintf(out, "indexed %s\n", plural(indexed, "track"))
				}

				result, err := svc.Search(ctx, service.SearchParams{
					Query:  strings.Join(args, " "),
					Genres: genres,
					Limit:  limit,
				})
				if err != nil {
					return err
				}

				headerColor.Fprintf(out, "%s for %q (%dms)\n", plural(int(result.Total), "match"), result.Query, result.TookMs)
				for _, hit := range result.Hits {
					valueColor.Fprint(out, hit.Title)
					if hit.Artist != "" {
						labelColor.Fprintf(out, " - %s", hit.Artist)
					}
					if hit.Album != "" {
						labelColor.Fprintf(out, " (%s)", hit.Album)
					}
					fmt.Fprintln(out)
				}
				return nil
			})
		},
	}
	cmd.Flags().Int("limit", 0, "Maximum hits (default 15)")
	cmd.Flags().StringArray("genre", nil, "Only tracks with this genre, any spelling (repeatable)")
	cmd.Flags().Bool("reindex", false, "Rebuild the search index first")
	return cmd
}
