// Package mix holds the in-memory mix model, the gain envelope math and the
// auto-mix planner. A Model is a pure value object: mutations do not persist
// until the owner saves it through the mix manager.
package mix

import (
	"fmt"

	"jucyaudio/model"
	"jucyaudio/repository"
)

// Model is an in-memory snapshot of one mix: the header, the mix tracks
// ordered by order_in_mix, and the metadata of every participating track.
type Model struct {
	Info   model.Mix
	Tracks []model.MixTrack
	Meta   map[int64]*model.Track
}

// LoadModel materialises a mix from the store and validates its invariants.
func LoadModel(store *repository.Store, mixID int64) (*Model, error) {
	info, err := store.Mixes.GetMixByID(mixID)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, fmt.Errorf("mix %d not found", mixID)
	}

	tracks, err := store.Mixes.GetMixTracks(mixID)
	if err != nil {
		return nil, err
	}

	m := &Model{
		Info:   *info,
		Tracks: tracks,
		Meta:   make(map[int64]*model.Track, len(tracks)),
	}
	for _, mt := range tracks {
		if _, ok := m.Meta[mt.TrackID]; ok {
			continue
		}
		track, err := store.Tracks.GetTrackByID(mt.TrackID)
		if err != nil {
			return nil, err
		}
		if track == nil {
			return nil, fmt.Errorf("mix %d references missing track %d", mixID, mt.TrackID)
		}
		m.Meta[mt.TrackID] = track
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the load invariants: every mix track has metadata, start
// times are non-decreasing in order, and envelope points are strictly
// ascending. Overlapping contribution windows are expected and allowed.
func (m *Model) Validate() error {
	var prevStart int64
	for i, mt := range m.Tracks {
		if _, ok := m.Meta[mt.TrackID]; !ok {
			return fmt.Errorf("mix track %d references track %d with no metadata", i, mt.TrackID)
		}
		if i > 0 && mt.MixStartTimeMs < prevStart {
			return fmt.Errorf("mix track %d starts at %d ms, before its predecessor at %d ms",
				i, mt.MixStartTimeMs, prevStart)
		}
		prevStart = mt.MixStartTimeMs
		for j := 1; j < len(mt.Envelope); j++ {
			if mt.Envelope[j].TimeMs <= mt.Envelope[j-1].TimeMs {
				return fmt.Errorf("mix track %d envelope point %d is not strictly after point %d",
					i, j, j-1)
			}
		}
	}
	return nil
}

// TotalDurationMs is the output-timeline length of the mix: the last mix
// track's start plus its track duration.
func (m *Model) TotalDurationMs() int64 {
	if len(m.Tracks) == 0 {
		return 0
	}
	last := m.Tracks[len(m.Tracks)-1]
	return last.MixStartTimeMs + m.Meta[last.TrackID].DurationMs
}
