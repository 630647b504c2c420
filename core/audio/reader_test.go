package audio

import "testing"

// ramp builds n interleaved stereo frames where frame i carries (i, -i)
// scaled down so values stay in range.
func ramp(n int) []float32 {
	samples := make([]float32, n*Channels)
	for i := 0; i < n; i++ {
		samples[2*i] = float32(i) / 1000
		samples[2*i+1] = -float32(i) / 1000
	}
	return samples
}

func TestMemoryReaderTotalFrames(t *testing.T) {
	r := NewMemoryReader(ramp(10))
	if got := r.TotalFrames(); got != 10 {
		t.Errorf("TotalFrames = %d, want 10", got)
	}

	// A trailing half-frame is dropped.
	odd := NewMemoryReader(make([]float32, 7))
	if got := odd.TotalFrames(); got != 3 {
		t.Errorf("TotalFrames with odd buffer = %d, want 3", got)
	}
}

func TestMemoryReaderReadAt(t *testing.T) {
	r := NewMemoryReader(ramp(10))

	dst := make([]float32, 4*Channels)
	if n := r.ReadAt(2, dst); n != 4 {
		t.Fatalf("ReadAt(2) delivered %d frames, want 4", n)
	}
	for i := 0; i < 4; i++ {
		want := float32(i+2) / 1000
		if dst[2*i] != want || dst[2*i+1] != -want {
			t.Errorf("frame %d = (%g, %g), want (%g, %g)", i, dst[2*i], dst[2*i+1], want, -want)
		}
	}
}

func TestMemoryReaderReadAtPastEnd(t *testing.T) {
	r := NewMemoryReader(ramp(10))

	// Window [8, 12): two real frames, then silence.
	dst := make([]float32, 4*Channels)
	for i := range dst {
		dst[i] = 99
	}
	if n := r.ReadAt(8, dst); n != 2 {
		t.Fatalf("ReadAt(8) delivered %d frames, want 2", n)
	}
	if dst[0] != 8.0/1000 {
		t.Errorf("first frame = %g, want %g", dst[0], 8.0/1000)
	}
	for i := 2 * Channels; i < len(dst); i++ {
		if dst[i] != 0 {
			t.Fatalf("sample %d past end = %g, want 0", i, dst[i])
		}
	}

	// Fully past the end: nothing delivered, dst zeroed.
	for i := range dst {
		dst[i] = 99
	}
	if n := r.ReadAt(10, dst); n != 0 {
		t.Errorf("ReadAt(10) delivered %d frames, want 0", n)
	}
	for i, v := range dst {
		if v != 0 {
			t.Fatalf("sample %d = %g, want 0", i, v)
		}
	}
}

func TestMemoryReaderReadAtNegativeOffset(t *testing.T) {
	r := NewMemoryReader(ramp(10))

	// Window [-2, 2): two silent frames, then frames 0 and 1.
	dst := make([]float32, 4*Channels)
	if n := r.ReadAt(-2, dst); n != 2 {
		t.Fatalf("ReadAt(-2) delivered %d frames, want 2", n)
	}
	for i := 0; i < 2*Channels; i++ {
		if dst[i] != 0 {
			t.Fatalf("leading sample %d = %g, want 0", i, dst[i])
		}
	}
	if dst[2*Channels] != 0 || dst[3*Channels] != 1.0/1000 {
		t.Errorf("frames 0/1 not placed after the silent lead-in")
	}
}

func TestMsToFramesRounding(t *testing.T) {
	tests := []struct {
		ms   int64
		want int64
	}{
		{0, 0},
		{1000, 44100},
		{1, 44},      // 44.1 rounds down
		{10, 441},
		{5000, 220500},
		{55000, 2425500},
	}
	for _, tt := range tests {
		if got := MsToFrames(tt.ms); got != tt.want {
			t.Errorf("MsToFrames(%d) = %d, want %d", tt.ms, got, tt.want)
		}
	}
}

func TestFramesToMsRoundTrip(t *testing.T) {
	for _, ms := range []int64{0, 1, 999, 1000, 30000, 55000} {
		if got := FramesToMs(MsToFrames(ms)); got != ms {
			t.Errorf("FramesToMs(MsToFrames(%d)) = %d", ms, got)
		}
	}
}
