package render

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"jucyaudio/core/audio"
	"jucyaudio/core/mix"
	"jucyaudio/model"
)

// memSink accumulates rendered blocks in memory.
type memSink struct {
	initialised bool
	finished    bool
	sampleRate  int
	channels    int
	left        []float64
	right       []float64

	failInit  bool
	failWrite bool
}

func (s *memSink) Init(path string, sampleRate, channels int) error {
	if s.failInit {
		return fmt.Errorf("disk full")
	}
	s.initialised = true
	s.sampleRate = sampleRate
	s.channels = channels
	return nil
}

func (s *memSink) WriteBlock(left, right []float64, frames int) error {
	if s.failWrite {
		return fmt.Errorf("disk full")
	}
	s.left = append(s.left, left[:frames]...)
	s.right = append(s.right, right[:frames]...)
	return nil
}

func (s *memSink) Finish() error {
	s.finished = true
	return nil
}

// constantSource builds an opener that serves every path as durationMs of
// constant (l, r) samples.
func constantSource(durationMs int64, l, r float32) SourceOpener {
	return func(path string) (audio.Reader, error) {
		frames := audio.MsToFrames(durationMs)
		samples := make([]float32, frames*audio.Channels)
		for i := int64(0); i < frames; i++ {
			samples[2*i] = l
			samples[2*i+1] = r
		}
		return audio.NewMemoryReader(samples), nil
	}
}

// unityTrack places a track at startMs with no fades and full volume.
func unityTrack(trackID, startMs, durationMs int64) model.MixTrack {
	return model.MixTrack{
		TrackID:        trackID,
		MixStartTimeMs: startMs,
		MixEndTimeMs:   startMs + durationMs,
		CutoffTimeMs:   durationMs,
		VolumeStart:    model.VolumeNormalization,
		VolumeEnd:      model.VolumeNormalization,
	}
}

func singleTrackModel(durationMs int64) *mix.Model {
	return &mix.Model{
		Info:   model.Mix{ID: 1, Name: "render test"},
		Tracks: []model.MixTrack{unityTrack(1, 0, durationMs)},
		Meta: map[int64]*model.Track{
			1: {ID: 1, Filepath: "a.flac", DurationMs: durationMs},
		},
	}
}

func TestRunSingleTrackPassthrough(t *testing.T) {
	const durationMs = 100
	m := singleTrackModel(durationMs)
	out := &memSink{}

	var lastProgress float64
	r := NewRenderer(m, constantSource(durationMs, 0.5, 0.25), out, "out.wav", func(p float64, _ string) {
		lastProgress = p
	})
	if err := r.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if r.State() != StepFlushed {
		t.Errorf("final state = %s, want Flushed", r.State())
	}
	if !out.finished {
		t.Error("sink was never finished")
	}
	if out.sampleRate != audio.SampleRate || out.channels != audio.Channels {
		t.Errorf("sink initialised with %d Hz / %d ch", out.sampleRate, out.channels)
	}

	wantFrames := audio.MsToFrames(durationMs)
	if int64(len(out.left)) != wantFrames {
		t.Fatalf("rendered %d frames, want %d", len(out.left), wantFrames)
	}
	mid := wantFrames / 2
	if math.Abs(out.left[mid]-0.5) > 1e-6 || math.Abs(out.right[mid]-0.25) > 1e-6 {
		t.Errorf("mid frame = (%g, %g), want (0.5, 0.25)", out.left[mid], out.right[mid])
	}
	if lastProgress != 1.0 {
		t.Errorf("final progress = %g, want 1.0", lastProgress)
	}
}

func TestRunOverlapIsAdditive(t *testing.T) {
	// Two identical 100 ms tracks, the second starting at 50 ms. In the
	// overlap the samples sum.
	m := &mix.Model{
		Info: model.Mix{ID: 1, Name: "overlap"},
		Tracks: []model.MixTrack{
			unityTrack(1, 0, 100),
			unityTrack(2, 50, 100),
		},
		Meta: map[int64]*model.Track{
			1: {ID: 1, Filepath: "a.flac", DurationMs: 100},
			2: {ID: 2, Filepath: "b.flac", DurationMs: 100},
		},
	}
	out := &memSink{}
	r := NewRenderer(m, constantSource(100, 0.25, 0.25), out, "out.wav", nil)
	if err := r.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	total := audio.MsToFrames(150)
	if int64(len(out.left)) != total {
		t.Fatalf("rendered %d frames, want %d", len(out.left), total)
	}

	overlapStart := audio.MsToFrames(50)
	overlapEnd := audio.MsToFrames(100)
	checks := []struct {
		frame int64
		want  float64
	}{
		{overlapStart / 2, 0.25},             // only track 1
		{(overlapStart + overlapEnd) / 2, 0.5}, // both
		{(overlapEnd + total) / 2, 0.25},     // only track 2
	}
	for _, c := range checks {
		if math.Abs(out.left[c.frame]-c.want) > 1e-6 {
			t.Errorf("frame %d = %g, want %g", c.frame, out.left[c.frame], c.want)
		}
	}
}

func TestRunAppliesEnvelope(t *testing.T) {
	// A constant source under a triangle envelope: silence at the edges,
	// full gain in the middle.
	const durationMs = 100
	m := singleTrackModel(durationMs)
	m.Tracks[0].Envelope = []model.EnvelopePoint{
		{TimeMs: 0, Volume: 0},
		{TimeMs: 50, Volume: 1000},
		{TimeMs: 100, Volume: 0},
	}

	out := &memSink{}
	r := NewRenderer(m, constantSource(durationMs, 1, 1), out, "out.wav", nil)
	if err := r.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if math.Abs(out.left[0]) > 1e-6 {
		t.Errorf("first sample = %g, want 0", out.left[0])
	}
	mid := audio.MsToFrames(50)
	if math.Abs(out.left[mid]-1) > 1e-3 {
		t.Errorf("peak sample = %g, want 1", out.left[mid])
	}
	quarter := audio.MsToFrames(25)
	if math.Abs(out.left[quarter]-0.5) > 1e-3 {
		t.Errorf("quarter sample = %g, want 0.5", out.left[quarter])
	}
}

func TestRunFailsOnZeroDuration(t *testing.T) {
	m := &mix.Model{Info: model.Mix{ID: 1, Name: "empty"}}
	out := &memSink{}

	var lastStatus string
	var lastProgress float64
	r := NewRenderer(m, constantSource(100, 0, 0), out, "out.wav", func(p float64, s string) {
		lastProgress = p
		lastStatus = s
	})

	err := r.Run()
	if err == nil {
		t.Fatal("Run accepted an empty mix")
	}
	if r.State() != StepFailed {
		t.Errorf("state = %s, want Failed", r.State())
	}
	if !strings.Contains(err.Error(), "Operation 'ResolvingDuration' failed after") {
		t.Errorf("error = %q, missing failed-step prefix", err.Error())
	}
	if !strings.Contains(err.Error(), "(0 ms rendered)") {
		t.Errorf("error = %q, missing rendered amount", err.Error())
	}
	if lastProgress != 1.0 || !strings.HasPrefix(lastStatus, "Error: ") {
		t.Errorf("failure reported as (%g, %q)", lastProgress, lastStatus)
	}
	if out.initialised {
		t.Error("sink was initialised before the duration check")
	}
}

func TestRunFailsOnSinkInit(t *testing.T) {
	m := singleTrackModel(100)
	out := &memSink{failInit: true}
	r := NewRenderer(m, constantSource(100, 0, 0), out, "out.wav", nil)

	err := r.Run()
	if err == nil {
		t.Fatal("Run survived a sink init failure")
	}
	if !strings.Contains(err.Error(), "Operation 'SinkInit' failed") {
		t.Errorf("error = %q, want SinkInit step", err.Error())
	}
	if r.State() != StepFailed {
		t.Errorf("state = %s, want Failed", r.State())
	}
}

func TestRunFailsOnUnopenableSource(t *testing.T) {
	m := singleTrackModel(100)
	out := &memSink{}
	open := func(path string) (audio.Reader, error) {
		return nil, fmt.Errorf("no such file")
	}
	r := NewRenderer(m, open, out, "out.wav", nil)

	err := r.Run()
	if err == nil {
		t.Fatal("Run survived an unopenable source")
	}
	if !strings.Contains(err.Error(), "Operation 'SourcePrep' failed") {
		t.Errorf("error = %q, want SourcePrep step", err.Error())
	}
}

func TestRunProgressIsMonotonic(t *testing.T) {
	m := singleTrackModel(1000) // many blocks
	out := &memSink{}

	var reports []float64
	r := NewRenderer(m, constantSource(1000, 0.1, 0.1), out, "out.wav", func(p float64, _ string) {
		reports = append(reports, p)
	})
	if err := r.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(reports) < 2 {
		t.Fatalf("only %d progress reports", len(reports))
	}
	for i := 1; i < len(reports); i++ {
		if reports[i] < reports[i-1] {
			t.Fatalf("progress went backwards at report %d: %g -> %g", i, reports[i-1], reports[i])
		}
	}
	if reports[len(reports)-1] != 1.0 {
		t.Errorf("final progress = %g, want 1.0", reports[len(reports)-1])
	}
}
