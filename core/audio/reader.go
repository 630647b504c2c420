package audio

// MemoryReader is a Reader over a fully decoded sample buffer. The ffmpeg
// decoder produces one per source; tests build them directly.
type MemoryReader struct {
	samples []float32 // interleaved stereo
}

// NewMemoryReader wraps interleaved stereo samples. A trailing half-frame is
// dropped.
func NewMemoryReader(samples []float32) *MemoryReader {
	if len(samples)%Channels != 0 {
		samples = samples[:len(samples)-len(samples)%Channels]
	}
	return &MemoryReader{samples: samples}
}

// TotalFrames is the decoded length of the source.
func (r *MemoryReader) TotalFrames() int64 {
	return int64(len(r.samples) / Channels)
}

// ReadAt fills dst starting at frameOffset and zero-fills whatever lies
// before frame zero or past the end of the source.
func (r *MemoryReader) ReadAt(frameOffset int64, dst []float32) int {
	for i := range dst {
		dst[i] = 0
	}
	frames := int64(len(dst) / Channels)
	if frames == 0 {
		return 0
	}

	total := r.TotalFrames()
	if frameOffset >= total || frameOffset+frames <= 0 {
		return 0
	}

	srcStart := frameOffset
	dstStart := int64(0)
	if srcStart < 0 {
		dstStart = -srcStart
		srcStart = 0
	}
	n := frames - dstStart
	if remain := total - srcStart; n > remain {
		n = remain
	}

	copy(dst[dstStart*Channels:(dstStart+n)*Channels],
		r.samples[srcStart*Channels:(srcStart+n)*Channels])
	return int(n)
}

// Close releases the sample buffer.
func (r *MemoryReader) Close() error {
	r.samples = nil
	return nil
}
