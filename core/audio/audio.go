// Package audio decodes library files into the canonical sample format the
// renderer mixes in. Decoding and probing go through ffmpeg/ffprobe
// subprocesses; the renderer only sees the Reader interface.
package audio

const (
	// SampleRate is the canonical output rate. Sources at other rates are
	// resampled on decode.
	SampleRate = 44100
	// Channels is the canonical channel count. Other layouts are up- or
	// down-mixed on decode.
	Channels = 2
	// ProcessingBlock is the number of output frames mixed per block.
	ProcessingBlock = 4096
)

// Reader serves decoded stereo frames at the canonical rate. Reads past the
// end of the source yield silence; implementations zero-fill dst beyond the
// frames they deliver.
type Reader interface {
	// TotalFrames is the decoded length of the source.
	TotalFrames() int64
	// ReadAt fills dst (interleaved stereo, len(dst)/2 frames) starting at
	// the given frame offset. It returns the number of real frames
	// delivered before zero-fill took over.
	ReadAt(frameOffset int64, dst []float32) int
	Close() error
}

// MsToFrames converts a millisecond position to output frames, rounding to
// nearest.
func MsToFrames(ms int64) int64 {
	return (ms*SampleRate + 500) / 1000
}

// FramesToMs converts an output frame count to milliseconds, rounding to
// nearest.
func FramesToMs(frames int64) int64 {
	return (frames*1000 + SampleRate/2) / SampleRate
}
