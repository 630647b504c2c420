package sink

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"jucyaudio/logger"
)

const wavHeaderSize = 44

// WavSink writes 16-bit little-endian PCM into a RIFF/WAVE container. The
// header is written as a placeholder on Init and patched with the final chunk
// sizes on Finish.
type WavSink struct {
	file       *os.File
	path       string
	sampleRate int
	channels   int
	dataBytes  uint32
	scratch    []byte
}

// NewWavSink creates an unopened WAV sink.
func NewWavSink() *WavSink {
	return &WavSink{}
}

// Init truncates the target path and writes the placeholder header.
func (w *WavSink) Init(path string, sampleRate, channels int) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wav sink: cannot create %s: %w", path, err)
	}
	w.file = file
	w.path = path
	w.sampleRate = sampleRate
	w.channels = channels
	w.dataBytes = 0

	header := make([]byte, wavHeaderSize)
	w.fillHeader(header)
	if _, err := w.file.Write(header); err != nil {
		w.file.Close()
		return fmt.Errorf("wav sink: header write: %w", err)
	}
	return nil
}

// fillHeader renders the RIFF header with the current data size.
func (w *WavSink) fillHeader(header []byte) {
	const bitsPerSample = 16
	byteRate := uint32(w.sampleRate * w.channels * bitsPerSample / 8)
	blockAlign := uint16(w.channels * bitsPerSample / 8)

	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36+w.dataBytes)
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16) // PCM fmt chunk size
	binary.LittleEndian.PutUint16(header[20:22], 1)  // PCM
	binary.LittleEndian.PutUint16(header[22:24], uint16(w.channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(w.sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], byteRate)
	binary.LittleEndian.PutUint16(header[32:34], blockAlign)
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], w.dataBytes)
}

// WriteBlock interleaves the planar block and appends it as saturated int16.
func (w *WavSink) WriteBlock(left, right []float64, frames int) error {
	if w.file == nil {
		return fmt.Errorf("wav sink: not initialised")
	}

	need := frames * w.channels * 2
	if cap(w.scratch) < need {
		w.scratch = make([]byte, need)
	}
	buf := w.scratch[:need]
	for i := 0; i < frames; i++ {
		binary.LittleEndian.PutUint16(buf[i*4:], uint16(saturate16(left[i])))
		binary.LittleEndian.PutUint16(buf[i*4+2:], uint16(saturate16(right[i])))
	}

	n, err := w.file.Write(buf)
	if err != nil {
		return fmt.Errorf("wav sink: data write: %w", err)
	}
	if n != need {
		return fmt.Errorf("wav sink: short write (%d of %d bytes)", n, need)
	}
	w.dataBytes += uint32(need)
	return nil
}

// Finish patches the RIFF and data chunk sizes and closes the file.
func (w *WavSink) Finish() error {
	if w.file == nil {
		return fmt.Errorf("wav sink: not initialised")
	}
	defer func() {
		w.file.Close()
		w.file = nil
	}()

	header := make([]byte, wavHeaderSize)
	w.fillHeader(header)
	if _, err := w.file.WriteAt(header, 0); err != nil {
		return fmt.Errorf("wav sink: header patch: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("wav sink: flush: %w", err)
	}

	logger.Info("WAV file written",
		logger.String("path", w.path),
		logger.Int64("dataBytes", int64(w.dataBytes)))
	return nil
}

// saturate16 converts a float sample in [-1, 1] to int16 with saturation.
func saturate16(x float64) int16 {
	scaled := math.Round(x * 32768)
	if scaled > 32767 {
		return 32767
	}
	if scaled < -32768 {
		return -32768
	}
	return int16(scaled)
}
