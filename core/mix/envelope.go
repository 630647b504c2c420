package mix

import (
	"math"

	"jucyaudio/model"
)

// EnvelopeGain evaluates the piecewise-linear envelope at tMs (milliseconds
// from the track's local zero) and returns a gain in [0, 1]. Before the first
// point the first point's volume holds; after the last point the last one
// holds. A single point acts as a constant gain.
func EnvelopeGain(points []model.EnvelopePoint, tMs float64) float64 {
	if len(points) == 0 {
		return 1
	}
	if tMs <= float64(points[0].TimeMs) {
		return points[0].Volume.Gain()
	}
	last := points[len(points)-1]
	if tMs >= float64(last.TimeMs) {
		return last.Volume.Gain()
	}

	// Find the bracketing pair (a, b) with a.time <= t < b.time.
	lo, hi := 0, len(points)-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if float64(points[mid].TimeMs) <= tMs {
			lo = mid
		} else {
			hi = mid
		}
	}
	a, b := points[lo], points[hi]
	frac := (tMs - float64(a.TimeMs)) / float64(b.TimeMs-a.TimeMs)
	v := float64(a.Volume) + (float64(b.Volume)-float64(a.Volume))*frac
	return clampGain(v / float64(model.VolumeNormalization))
}

// LegacyGain computes the gain of the legacy fade fields: equal-power fade in
// and out multiplied by a linear volume ramp from VolumeStart at t=0 to
// VolumeEnd at t=duration.
func LegacyGain(mt *model.MixTrack, trackDurationMs int64, tMs float64) float64 {
	var internal float64
	switch {
	case tMs < float64(mt.FadeInStartMs):
		internal = 0
	case tMs < float64(mt.FadeInEndMs):
		progress := (tMs - float64(mt.FadeInStartMs)) / float64(mt.FadeInEndMs-mt.FadeInStartMs)
		internal = math.Sin(progress * math.Pi / 2)
	case mt.FadeOutEndMs > mt.FadeOutStartMs && tMs >= float64(mt.FadeOutEndMs):
		internal = 0
	case mt.FadeOutEndMs > mt.FadeOutStartMs && tMs >= float64(mt.FadeOutStartMs):
		progress := (tMs - float64(mt.FadeOutStartMs)) / float64(mt.FadeOutEndMs-mt.FadeOutStartMs)
		internal = math.Cos(progress * math.Pi / 2)
	default:
		internal = 1
	}

	volume := mt.VolumeStart.Gain()
	if trackDurationMs > 0 {
		frac := tMs / float64(trackDurationMs)
		if frac < 0 {
			frac = 0
		}
		if frac > 1 {
			frac = 1
		}
		volume = mt.VolumeStart.Gain() + (mt.VolumeEnd.Gain()-mt.VolumeStart.Gain())*frac
	}

	return clampGain(internal * volume)
}

// GainAt returns the mix track's gain at tMs. Envelope points win over the
// legacy fade fields when present.
func GainAt(mt *model.MixTrack, trackDurationMs int64, tMs float64) float64 {
	if len(mt.Envelope) > 0 {
		return EnvelopeGain(mt.Envelope, tMs)
	}
	return LegacyGain(mt, trackDurationMs, tMs)
}

func clampGain(g float64) float64 {
	if g < 0 {
		return 0
	}
	if g > 1 {
		return 1
	}
	return g
}
