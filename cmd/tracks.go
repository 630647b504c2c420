package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"jucyaudio/repository"
)

var (
	tracksSearch []string
	tracksSort   string
	tracksDesc   bool
	tracksPage   int64
)

var tracksCmd = &cobra.Command{
	Use:   "tracks",
	Short: "List library tracks",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, _, err := initApp()
		if err != nil {
			return err
		}
		defer closeApp()

		queryArgs := &repository.QueryArgs{SearchTerms: tracksSearch}
		if tracksSort != "" {
			queryArgs.SortBy = []repository.SortColumn{{Column: tracksSort, Descending: tracksDesc}}
		}
		if tracksPage > 0 {
			queryArgs.Paged = true
			queryArgs.Offset = (tracksPage - 1) * repository.PageSize
		}

		tracks, err := store.Tracks.GetTracks(queryArgs)
		if err != nil {
			return err
		}
		total, err := store.Tracks.GetTotalTrackCount(queryArgs)
		if err != nil {
			return err
		}

		for _, t := range tracks {
			missing := " "
			if t.IsMissing {
				missing = "!"
			}
			fmt.Printf("%6d %s %-30s  %-25s  %-25s  %8s\n",
				t.ID, missing, clip(t.Title, 30), clip(t.ArtistName, 25), clip(t.AlbumTitle, 25),
				formatMs(t.DurationMs))
		}
		fmt.Printf("%d of %d tracks\n", len(tracks), total)
		return nil
	},
}

// clip shortens s to at most max characters, counting runes so multi-byte
// titles are not cut mid-character.
func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

func init() {
	tracksCmd.Flags().StringSliceVar(&tracksSearch, "search", nil, "search terms (ANDed across title/artist/album/path)")
	tracksCmd.Flags().StringVar(&tracksSort, "sort", "", "sort column (title, artist, album, duration, bpm, rating, ...)")
	tracksCmd.Flags().BoolVar(&tracksDesc, "desc", false, "sort descending")
	tracksCmd.Flags().Int64Var(&tracksPage, "page", 0, "page number (1-based); 0 lists everything")
	rootCmd.AddCommand(tracksCmd)
}
