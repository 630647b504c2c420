package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"jucyaudio/repository"
)

var mixesSearch []string

var mixesCmd = &cobra.Command{
	Use:   "mixes",
	Short: "List saved mixes",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, _, err := initApp()
		if err != nil {
			return err
		}
		defer closeApp()

		mixes, err := store.Mixes.GetMixes(&repository.QueryArgs{SearchTerms: mixesSearch})
		if err != nil {
			return err
		}

		for _, m := range mixes {
			created := time.UnixMilli(m.Timestamp).Format("2006-01-02 15:04")
			fmt.Printf("%6d  %-40s  %3d tracks  %8s  %s\n",
				m.ID, m.Name, m.TrackCount, formatMs(m.TotalLengthMs), created)
		}
		fmt.Printf("%d mixes\n", len(mixes))
		return nil
	},
}

// formatMs renders a millisecond duration as m:ss.
func formatMs(ms int64) string {
	secs := ms / 1000
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func init() {
	mixesCmd.Flags().StringSliceVar(&mixesSearch, "search", nil, "filter mixes by name")
	rootCmd.AddCommand(mixesCmd)
}
