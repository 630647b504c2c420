package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"jucyaudio/core/mix"
	"jucyaudio/model"
)

var (
	automixName      string
	automixTrackIDs  string
	automixCrossfade int64
)

var automixCmd = &cobra.Command{
	Use:   "automix",
	Short: "Create and save a mix with default crossfade timing",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, store, _, err := initApp()
		if err != nil {
			return err
		}
		defer closeApp()

		ids, err := parseTrackIDs(automixTrackIDs)
		if err != nil {
			return err
		}

		tracks := make([]*model.Track, 0, len(ids))
		for _, id := range ids {
			track, err := store.Tracks.GetTrackByID(id)
			if err != nil {
				return err
			}
			if track == nil {
				return fmt.Errorf("no track with id %d", id)
			}
			tracks = append(tracks, track)
		}

		crossfade := automixCrossfade
		if crossfade == 0 {
			crossfade = cfg.DefaultCrossfadeMs
		}

		mixInfo := &model.Mix{Name: automixName}
		planned, err := mix.CreateAndSaveAutoMix(store, tracks, mixInfo, crossfade)
		if err != nil {
			return err
		}

		fmt.Printf("Mix %q saved with id %d: %d tracks, %d ms total\n",
			mixInfo.Name, mixInfo.ID, len(planned), mixInfo.TotalLengthMs)
		return nil
	},
}

// parseTrackIDs parses the comma-separated --tracks flag.
func parseTrackIDs(raw string) ([]int64, error) {
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad track id %q", part)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("--tracks must name at least one track id")
	}
	return ids, nil
}

func init() {
	automixCmd.Flags().StringVar(&automixName, "name", "", "name of the new mix")
	automixCmd.Flags().StringVar(&automixTrackIDs, "tracks", "", "comma-separated track ids in play order")
	automixCmd.Flags().Int64Var(&automixCrossfade, "crossfade", 0, "crossfade duration in ms (default from config)")
	automixCmd.MarkFlagRequired("name")
	automixCmd.MarkFlagRequired("tracks")
	rootCmd.AddCommand(automixCmd)
}
