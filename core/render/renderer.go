// Package render walks a mix's output timeline in fixed-size blocks, sums the
// active sources' contributions under their gain envelopes, and feeds the
// blocks to an output sink.
package render

import (
	"fmt"
	"time"

	"jucyaudio/core/audio"
	"jucyaudio/core/mix"
	"jucyaudio/core/sink"
	"jucyaudio/logger"
	"jucyaudio/model"
)

// Progress receives render progress in [0, 1] and a human-readable status.
// Callbacks run synchronously on the rendering goroutine and must not block.
type Progress func(progress float64, status string)

// SourceOpener opens a decoded sample reader for a source file.
type SourceOpener func(path string) (audio.Reader, error)

// Step names the renderer's state machine states.
type Step int

const (
	StepIdle Step = iota
	StepResolvingDuration
	StepResolvingOutputSize
	StepSinkInit
	StepSourcePrep
	StepMixing
	StepFlushed
	StepFailed
)

// String returns the step name used in failure messages.
func (s Step) String() string {
	switch s {
	case StepIdle:
		return "Idle"
	case StepResolvingDuration:
		return "ResolvingDuration"
	case StepResolvingOutputSize:
		return "ResolvingOutputSize"
	case StepSinkInit:
		return "SinkInit"
	case StepSourcePrep:
		return "SourcePrep"
	case StepMixing:
		return "Mixing"
	case StepFlushed:
		return "Flushed"
	default:
		return "Failed"
	}
}

// activeTrackSource pairs one mix track with its open reader and its
// contribution window in output frames. It owns the reader.
type activeTrackSource struct {
	reader     audio.Reader
	track      *model.Track
	mixTrack   *model.MixTrack
	startFrame int64
	endFrame   int64
}

// Renderer produces the stereo output stream of one mix. Not safe for use
// from more than one goroutine.
type Renderer struct {
	model      *mix.Model
	open       SourceOpener
	out        sink.Sink
	targetPath string
	progress   Progress

	state   Step
	started time.Time
}

// NewRenderer builds a renderer over a loaded mix model. The renderer
// exclusively owns the readers it opens and the sink for the duration of Run.
func NewRenderer(m *mix.Model, open SourceOpener, out sink.Sink, targetPath string, progress Progress) *Renderer {
	return &Renderer{
		model:      m,
		open:       open,
		out:        out,
		targetPath: targetPath,
		progress:   progress,
		state:      StepIdle,
	}
}

// State returns the renderer's current state.
func (r *Renderer) State() Step {
	return r.state
}

func (r *Renderer) report(progress float64, status string) {
	if r.progress != nil {
		r.progress(progress, status)
	}
}

// fail transitions to the terminal failure state and publishes the failed
// step with the elapsed wall time.
func (r *Renderer) fail(step Step, renderedMs int64, cause error) error {
	r.state = StepFailed
	elapsed := time.Since(r.started).Milliseconds()
	msg := fmt.Sprintf("Operation '%s' failed after %d ms (%d ms rendered).", step, elapsed, renderedMs)
	logger.Error("Render failed",
		logger.String("step", step.String()),
		logger.Int64("elapsedMs", elapsed),
		logger.ErrorField(cause))
	r.report(1.0, "Error: "+msg)
	return fmt.Errorf("%s: %w", msg, cause)
}

// Run renders the whole mix. Samples are produced strictly in ascending
// output-timeline order; the result is deterministic for a given mix and set
// of source files.
func (r *Renderer) Run() error {
	r.started = time.Now()

	r.state = StepResolvingDuration
	totalMs := r.model.TotalDurationMs()
	if totalMs <= 0 {
		return r.fail(StepResolvingDuration, 0, fmt.Errorf("total mix duration is zero or negative"))
	}

	r.state = StepResolvingOutputSize
	totalFrames := audio.MsToFrames(totalMs)

	r.state = StepSinkInit
	if err := r.out.Init(r.targetPath, audio.SampleRate, audio.Channels); err != nil {
		return r.fail(StepSinkInit, 0, err)
	}

	r.state = StepSourcePrep
	sources, err := r.prepareSources()
	if err != nil {
		return r.fail(StepSourcePrep, 0, err)
	}
	defer func() {
		for _, src := range sources {
			src.reader.Close()
		}
	}()

	r.state = StepMixing
	if err := r.mixLoop(sources, totalFrames); err != nil {
		return err
	}

	if err := r.out.Finish(); err != nil {
		return r.fail(StepMixing, audio.FramesToMs(totalFrames), err)
	}

	r.state = StepFlushed
	r.report(1.0, fmt.Sprintf("Mix rendered: %d frames (%d ms) to %s",
		totalFrames, totalMs, r.targetPath))
	logger.Info("Render finished",
		logger.String("target", r.targetPath),
		logger.Int64("frames", totalFrames),
		logger.Duration("elapsed", time.Since(r.started)))
	return nil
}

// prepareSources opens one reader per mix track. Any open failure aborts the
// render.
func (r *Renderer) prepareSources() ([]*activeTrackSource, error) {
	sources := make([]*activeTrackSource, 0, len(r.model.Tracks))
	for i := range r.model.Tracks {
		mt := &r.model.Tracks[i]
		track := r.model.Meta[mt.TrackID]
		reader, err := r.open(track.Filepath)
		if err != nil {
			for _, src := range sources {
				src.reader.Close()
			}
			return nil, fmt.Errorf("cannot open source %s: %w", track.Filepath, err)
		}
		start := audio.MsToFrames(mt.MixStartTimeMs)
		sources = append(sources, &activeTrackSource{
			reader:     reader,
			track:      track,
			mixTrack:   mt,
			startFrame: start,
			endFrame:   start + audio.MsToFrames(track.DurationMs),
		})
	}
	return sources, nil
}

// mixLoop walks the output timeline block by block.
func (r *Renderer) mixLoop(sources []*activeTrackSource, totalFrames int64) error {
	left := make([]float64, audio.ProcessingBlock)
	right := make([]float64, audio.ProcessingBlock)
	scratch := make([]float32, audio.ProcessingBlock*audio.Channels)

	var written int64
	for written < totalFrames {
		blockFrames := int64(audio.ProcessingBlock)
		if remain := totalFrames - written; remain < blockFrames {
			blockFrames = remain
		}

		for i := int64(0); i < blockFrames; i++ {
			left[i] = 0
			right[i] = 0
		}

		for _, src := range sources {
			r.mixSource(src, written, blockFrames, left, right, scratch)
		}

		if err := r.out.WriteBlock(left, right, int(blockFrames)); err != nil {
			return r.fail(StepMixing, audio.FramesToMs(written), err)
		}
		written += blockFrames
		r.report(float64(written)/float64(totalFrames),
			fmt.Sprintf("Mixing: %d ms of %d ms", audio.FramesToMs(written), audio.FramesToMs(totalFrames)))
	}
	return nil
}

// mixSource adds one source's contribution to the current block. The overlap
// of [startFrame, endFrame) with the block window selects the frames to read;
// the reader zero-fills anything past the end of the file.
func (r *Renderer) mixSource(src *activeTrackSource, blockStart, blockFrames int64, left, right []float64, scratch []float32) {
	readStart := blockStart
	if src.startFrame > readStart {
		readStart = src.startFrame
	}
	readEnd := blockStart + blockFrames
	if src.endFrame < readEnd {
		readEnd = src.endFrame
	}
	if readEnd <= readStart {
		return
	}

	n := readEnd - readStart
	src.reader.ReadAt(readStart-src.startFrame, scratch[:n*audio.Channels])

	durationMs := src.track.DurationMs
	for i := int64(0); i < n; i++ {
		t := readStart + i - src.startFrame // frames since the track's local zero
		tMs := float64(t) * 1000 / audio.SampleRate
		gain := mix.GainAt(src.mixTrack, durationMs, tMs)

		idx := readStart + i - blockStart
		left[idx] += float64(scratch[i*2]) * gain
		right[idx] += float64(scratch[i*2+1]) * gain
	}
}
