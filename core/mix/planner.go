package mix

import (
	"fmt"

	"jucyaudio/logger"
	"jucyaudio/model"
	"jucyaudio/repository"
)

// DefaultCrossfadeMs is the crossfade the planner applies when the caller
// passes no explicit duration.
const DefaultCrossfadeMs int64 = 5000

// PlanAutoMix lays out the given tracks in caller order with a fixed
// crossfade between neighbours. Tracks shorter than twice the crossfade
// cannot hold both fades and are skipped with a warning; the survivors are
// re-indexed from zero.
//
// The plan is deterministic: track i starts where track i-1 ends minus the
// crossfade, clamped to the timeline origin.
func PlanAutoMix(tracks []*model.Track, crossfadeMs int64) []model.MixTrack {
	if crossfadeMs <= 0 {
		crossfadeMs = DefaultCrossfadeMs
	}

	planned := make([]model.MixTrack, 0, len(tracks))
	var cumulativeEnd int64
	for _, track := range tracks {
		if track.DurationMs < 2*crossfadeMs {
			logger.Warn("Skipping track too short for crossfade",
				logger.Int64("trackId", track.ID),
				logger.Int64("durationMs", track.DurationMs),
				logger.Int64("crossfadeMs", crossfadeMs))
			continue
		}

		order := int64(len(planned))
		start := int64(0)
		if order > 0 {
			start = cumulativeEnd - crossfadeMs
			if start < 0 {
				start = 0
			}
		}

		planned = append(planned, model.MixTrack{
			TrackID:        track.ID,
			OrderInMix:     order,
			MixStartTimeMs: start,
			MixEndTimeMs:   start + track.DurationMs,
			CutoffTimeMs:   track.DurationMs,
			SilenceStartMs: 0,
			FadeInStartMs:  0,
			FadeInEndMs:    crossfadeMs,
			FadeOutStartMs: track.DurationMs - crossfadeMs,
			FadeOutEndMs:   track.DurationMs,
			VolumeStart:    model.VolumeNormalization,
			VolumeEnd:      model.VolumeNormalization,
			CrossfadeMs:    crossfadeMs,
		})
		cumulativeEnd = start + track.DurationMs
	}
	return planned
}

// CreateAndSaveAutoMix plans a mix over the given tracks and persists it via
// the mix manager in the same call. On failure the store is unchanged. The
// planned rows are returned for the caller.
func CreateAndSaveAutoMix(store *repository.Store, tracks []*model.Track, mixInfo *model.Mix, crossfadeMs int64) ([]model.MixTrack, error) {
	planned := PlanAutoMix(tracks, crossfadeMs)
	if len(planned) == 0 {
		return nil, fmt.Errorf("auto-mix %q: no track is long enough for a %d ms crossfade", mixInfo.Name, crossfadeMs)
	}

	if err := store.Mixes.CreateOrUpdateMix(mixInfo, planned); err != nil {
		return nil, fmt.Errorf("auto-mix %q: %w", mixInfo.Name, err)
	}

	logger.Info("Auto-mix saved",
		logger.Int64("mixId", mixInfo.ID),
		logger.String("name", mixInfo.Name),
		logger.Int("tracks", len(planned)),
		logger.Int64("totalLengthMs", mixInfo.TotalLengthMs))
	return planned, nil
}
