package model

// Mix is the persisted header of a named, ordered arrangement of tracks.
type Mix struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"` // unique, compared case-insensitively
	Timestamp     int64  `json:"timestamp"`
	TrackCount    int64  `json:"trackCount"`
	TotalLengthMs int64  `json:"totalLengthMs"`
}

// EnvelopePoint maps a time within a track to a gain. Time is milliseconds
// from the track's local zero; Volume is scaled by VolumeNormalization.
type EnvelopePoint struct {
	TimeMs int64  `json:"t"`
	Volume Volume `json:"v"`
}

// MixTrack is one entry of a mix: a track reference plus its placement and
// gain shape on the output timeline. Keyed by (MixID, TrackID).
//
// OrderInMix values of a mix form a contiguous sequence starting at 0, and
// MixStartTimeMs is non-decreasing in OrderInMix.
type MixTrack struct {
	MixID   int64 `json:"mixId"`
	TrackID int64 `json:"trackId"`

	OrderInMix     int64 `json:"orderInMix"`
	MixStartTimeMs int64 `json:"mixStartTimeMs"`
	MixEndTimeMs   int64 `json:"mixEndTimeMs"`
	CutoffTimeMs   int64 `json:"cutoffTimeMs"`
	SilenceStartMs int64 `json:"silenceStartMs"`

	// Legacy fade fields, used by the renderer when Envelope is empty.
	FadeInStartMs  int64  `json:"fadeInStartMs"`
	FadeInEndMs    int64  `json:"fadeInEndMs"`
	FadeOutStartMs int64  `json:"fadeOutStartMs"`
	FadeOutEndMs   int64  `json:"fadeOutEndMs"`
	VolumeStart    Volume `json:"volumeStart"`
	VolumeEnd      Volume `json:"volumeEnd"`
	CrossfadeMs    int64  `json:"crossfadeMs"`

	// Envelope points sorted by TimeMs strictly ascending. When non-empty
	// they replace the legacy fade fields entirely.
	Envelope []EnvelopePoint `json:"envelope,omitempty"`
}
