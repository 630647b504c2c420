package sink

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strconv"

	"jucyaudio/logger"
)

// Default ID3 front-matter written into every exported MP3. A richer tagging
// pass runs after encoding (see TagMP3).
const (
	DefaultArtist = "jucyaudio"
	DefaultAlbum  = "jucyaudio Mixes"
	DefaultYear   = "2025"
)

// MP3Sink encodes to MPEG-1 Layer III through an ffmpeg/libmp3lame
// subprocess: CBR 320 kbps, joint stereo, LAME quality 2. Interleaved
// 32-bit float frames go to the encoder's stdin; ffmpeg writes the ID3v2
// front-matter, the LAME Xing frame and the ID3v1 footer into the target.
type MP3Sink struct {
	ffmpegPath string
	path       string
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stderr     bytes.Buffer
	scratch    []byte
}

// NewMP3Sink creates an unopened MP3 sink using the given ffmpeg binary.
func NewMP3Sink(ffmpegPath string) *MP3Sink {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &MP3Sink{ffmpegPath: ffmpegPath}
}

// Init starts the encoder process writing to the target path.
func (m *MP3Sink) Init(path string, sampleRate, channels int) error {
	args := []string{
		"-y",
		"-f", "f32le",
		"-ar", strconv.Itoa(sampleRate),
		"-ac", strconv.Itoa(channels),
		"-i", "pipe:0",
		"-c:a", "libmp3lame",
		"-b:a", "320k",
		"-compression_level", "2",
		"-joint_stereo", "1",
		"-metadata", "artist=" + DefaultArtist,
		"-metadata", "album=" + DefaultAlbum,
		"-metadata", "date=" + DefaultYear,
		"-id3v2_version", "3",
		"-write_id3v1", "1",
		"-loglevel", "error",
		"-f", "mp3",
		path,
	}

	cmd := exec.Command(m.ffmpegPath, args...)
	cmd.Stderr = &m.stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("mp3 sink: stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("mp3 sink: cannot start encoder: %w", err)
	}

	m.cmd = cmd
	m.stdin = stdin
	m.path = path
	logger.Debug("MP3 encoder started", logger.String("path", path))
	return nil
}

// WriteBlock interleaves the planar block and feeds it to the encoder.
func (m *MP3Sink) WriteBlock(left, right []float64, frames int) error {
	if m.cmd == nil {
		return fmt.Errorf("mp3 sink: not initialised")
	}

	need := frames * 2 * 4
	if cap(m.scratch) < need {
		m.scratch = make([]byte, need)
	}
	buf := m.scratch[:need]
	for i := 0; i < frames; i++ {
		binary.LittleEndian.PutUint32(buf[i*8:], math.Float32bits(float32(left[i])))
		binary.LittleEndian.PutUint32(buf[i*8+4:], math.Float32bits(float32(right[i])))
	}

	n, err := m.stdin.Write(buf)
	if err != nil {
		return fmt.Errorf("mp3 sink: encoder write: %w\nFFmpeg Error: %s", err, m.stderr.String())
	}
	if n != need {
		return fmt.Errorf("mp3 sink: short write (%d of %d bytes)", n, need)
	}
	return nil
}

// Finish closes the encoder input and waits for the trailer to be written.
func (m *MP3Sink) Finish() error {
	if m.cmd == nil {
		return fmt.Errorf("mp3 sink: not initialised")
	}
	defer func() { m.cmd = nil }()

	if err := m.stdin.Close(); err != nil {
		return fmt.Errorf("mp3 sink: closing encoder input: %w", err)
	}
	if err := m.cmd.Wait(); err != nil {
		return fmt.Errorf("mp3 sink: encoder failed: %w\nFFmpeg Error: %s", err, m.stderr.String())
	}

	logger.Info("MP3 file written", logger.String("path", m.path))
	return nil
}
