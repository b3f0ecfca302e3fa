package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/listenupapp/crate-server/internal/domain"
	"github.com/listenupapp/crate-server/internal/playlist"
	"github.com/listenupapp/crate-server/internal/service"
)

func init() {
	cmdRoot.AddCommand(cmdPlaylist())
}

func cmdPlaylist() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "playlist",
		Short: "Compose a playlist from filters",
		Long: `Compose a playlist by intersecting filters. Genres and groups are ORed
together, as are artists and --similar-to. BPM applies only when both
bounds are given.`,
		Example: `  crate playlist --group rock --min-bpm 120 --max-bpm 140 --limit 30
  crate playlist --similar-to "Slowdive" --save "Dream" --m3u dream.m3u`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := filtersFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			name, _ := cmd.Flags().GetString("save")
			m3u, _ := cmd.Flags().GetString("m3u")

			return run(cmd, func(ctx context.Context, i do.Injector) error {
				svc := do.MustInvoke[*service.PlaylistService](i)
				out := cmd.OutOrStdout()

				preview, err := svc.Preview(ctx, f)
				if err != nil {
					return err
				}
				printTracks(out, preview.Tracks)

				if name != "" {
					p, err := svc.SavePreview(ctx, service.CreateRequest{Name: name, Filters: f}, preview)
					if err != nil {
						return err
					}
					printOK(out, "saved %q as %s (%s)", p.Name, p.ID, plural(p.TrackCount, "track"))
				}

				if m3u != "" {
					if err := writeM3UFile(m3u, preview.Tracks); err != nil {
						return err
					}
					printOK(out, "wrote %s", m3u)
				}
				return nil
			})
		},
	}

	fs := cmd.Flags()
	fs.String("title", "", "Substring of the track title")
	fs.StringArray("genre", nil, "Genre to match, any spelling (repeatable)")
	fs.StringArray("group", nil, "Genre group to match (repeatable)")
	fs.Int("min-bpm", 0, "Inclusive lower BPM bound")
	fs.Int("max-bpm", 0, "Inclusive upper BPM bound")
	fs.StringArray("artist", nil, "Artist to match (repeatable)")
	fs.String("similar-to", "", "Match tracks by artists similar to this one")
	fs.Int("limit", 0, "Maximum number of tracks, 0 for no limit")
	fs.Bool("no-shuffle", false, "Keep library order instead of shuffling")
	fs.String("save", "", "Save the playlist under this name")
	fs.String("m3u", "", "Write the playlist to this M3U file")
	return cmd
}

func filtersFromFlags(fs *pflag.FlagSet) (playlist.Filters, error) {
	var f playlist.Filters
	var err error
	if f.Title, err = fs.GetString("title"); err != nil {
		return f, err
	}
	if f.Genres, err = fs.GetStringArray("genre"); err != nil {
		return f, err
	}
	if f.GenreGroups, err = fs.GetStringArray("group"); err != nil {
		return f, err
	}
	if f.Artists, err = fs.GetStringArray("artist"); err != nil {
		return f, err
	}
	if f.SimilarTo, err = fs.GetString("similar-to"); err != nil {
		return f, err
	}
	if f.Limit, err = fs.GetInt("limit"); err != nil {
		return f, err
	}

	// Unset bounds stay nil.
	for name, dst := range map[string]**int{"min-bpm": &f.MinBPM, "max-bpm": &f.MaxBPM} {
		if !fs.Changed(name) {
			continue
		}
		v, err := fs.GetInt(name)
		if err != nil {
			return f, err
		}
		*dst = &v
	}

	if noShuffle, _ := fs.GetBool("no-shuffle"); noShuffle {
		shuffle := false
		f.Shuffle = &shuffle
	}
	return f, nil
}

func printTracks(w io.Writer, tracks []*domain.Track) {
	headerColor.Fprintln(w, plural(len(tracks), "track"))
	for i, t := range tracks {
		labelColor.Fprintf(w, "%4d  ", i+1)
		valueColor.Fprint(w, t.Title)
		if t.ArtistName != "" {
			labelColor.Fprintf(w, " - %s", t.ArtistName)
		}
		if t.HasBPM() {
			labelColor.Fprintf(w, " [%d bpm]", t.BPM)
		}
		fmt.Fprintln(w)
	}
}

func writeM3UFile(path string, tracks []*domain.Track) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := service.WriteM3U(f, tracks); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
