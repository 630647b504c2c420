package audio

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"jucyaudio/logger"
)

// FFmpegDecoder decodes and probes audio files through ffmpeg/ffprobe
// subprocesses. ffprobe is derived from the ffmpeg path.
type FFmpegDecoder struct {
	ffmpegPath string
}

// NewFFmpegDecoder creates a decoder using the given ffmpeg binary.
func NewFFmpegDecoder(ffmpegPath string) *FFmpegDecoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpegDecoder{ffmpegPath: ffmpegPath}
}

// FFmpegPath returns the configured ffmpeg binary path.
func (d *FFmpegDecoder) FFmpegPath() string {
	return d.ffmpegPath
}

// Available reports whether the ffmpeg binary can be found.
func (d *FFmpegDecoder) Available() bool {
	_, err := exec.LookPath(d.ffmpegPath)
	return err == nil
}

// DecodeFile decodes the whole file to interleaved stereo float32 at the
// canonical rate. ffmpeg's swresample handles rate conversion and channel
// up-/down-mix.
func (d *FFmpegDecoder) DecodeFile(path string) (*MemoryReader, error) {
	args := []string{
		"-i", path,
		"-f", "f32le",
		"-acodec", "pcm_f32le",
		"-ar", strconv.Itoa(SampleRate),
		"-ac", strconv.Itoa(Channels),
		"-loglevel", "error",
		"pipe:1",
	}

	cmd := exec.Command(d.ffmpegPath, args...)
	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg decode %s: %w\nFFmpeg Error: %s", path, err, stderr.String())
	}

	raw := out.Bytes()
	if len(raw)%4 != 0 {
		raw = raw[:len(raw)-len(raw)%4]
	}

	samples := make([]float32, len(raw)/4)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4 : i*4+4]))
	}

	logger.Debug("Decoded source file",
		logger.String("path", path),
		logger.Int("frames", len(samples)/Channels))
	return NewMemoryReader(samples), nil
}

// ProbeResult carries the stream properties ffprobe reports for a file.
type ProbeResult struct {
	DurationMs int64
	SampleRate int64
	Channels   int64
	Bitrate    int64
	CodecName  string
}

// ffprobeOutput defines the structure for ffprobe JSON output.
type ffprobeOutput struct {
	Streams []struct {
		CodecName  string `json:"codec_name"`
		SampleRate string `json:"sample_rate"`
		Channels   int64  `json:"channels"`
		BitRate    string `json:"bit_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
		BitRate  string `json:"bit_rate"`
	} `json:"format"`
}

// Probe reads the first audio stream's properties with ffprobe.
func (d *FFmpegDecoder) Probe(path string) (*ProbeResult, error) {
	ffprobePath := strings.Replace(d.ffmpegPath, "ffmpeg", "ffprobe", 1)

	args := []string{
		"-v", "error",
		"-select_streams", "a:0",
		"-show_entries", "stream=codec_name,sample_rate,channels,bit_rate",
		"-show_entries", "format=duration,bit_rate",
		"-of", "json",
		path,
	}

	cmd := exec.Command(ffprobePath, args...)
	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe execution failed for %s: %w\nFFprobe Error: %s", path, err, stderr.String())
	}

	var probeData ffprobeOutput
	if err := json.Unmarshal(out.Bytes(), &probeData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ffprobe output for %s: %w", path, err)
	}
	if len(probeData.Streams) == 0 {
		return nil, fmt.Errorf("no audio streams found in %s", path)
	}

	stream := probeData.Streams[0]
	result := &ProbeResult{CodecName: stream.CodecName, Channels: stream.Channels}
	if v, err := strconv.ParseInt(stream.SampleRate, 10, 64); err == nil {
		result.SampleRate = v
	}
	if v, err := strconv.ParseInt(stream.BitRate, 10, 64); err == nil {
		result.Bitrate = v
	} else if v, err := strconv.ParseInt(probeData.Format.BitRate, 10, 64); err == nil {
		result.Bitrate = v
	}
	if probeData.Format.Duration != "" {
		seconds, err := strconv.ParseFloat(probeData.Format.Duration, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse duration %q for %s: %w", probeData.Format.Duration, path, err)
		}
		result.DurationMs = int64(seconds*1000 + 0.5)
	}
	return result, nil
}
