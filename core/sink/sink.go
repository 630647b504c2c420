// Package sink writes completed mix blocks to a target container: raw PCM in
// a RIFF/WAVE file, or constant-bitrate MP3 through an ffmpeg/libmp3lame
// subprocess.
package sink

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Sink consumes planar stereo blocks from the renderer and owns the target
// file for the duration of a render.
type Sink interface {
	// Init opens the target path, truncating any existing file, and
	// prepares the container for the given format.
	Init(path string, sampleRate, channels int) error
	// WriteBlock consumes frames samples from the planar left/right
	// buffers. Values outside [-1, 1] are saturated by the container
	// conversion.
	WriteBlock(left, right []float64, frames int) error
	// Finish flushes the encoder and completes the container trailer.
	Finish() error
}

// ForPath picks the sink variant by the target path's extension. Anything
// other than .wav or .mp3 is rejected.
func ForPath(path, ffmpegPath string) (Sink, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return NewWavSink(), nil
	case ".mp3":
		return NewMP3Sink(ffmpegPath), nil
	default:
		return nil, fmt.Errorf("unsupported output container %q (want .wav or .mp3)", filepath.Ext(path))
	}
}
