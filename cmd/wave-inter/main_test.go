package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/cwbudde/bwav"
)

func writeMono(t *testing.T, path string, format bwav.Format, samples []float32) {
	t.Helper()

	w, err := bwav.Create(path, format)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	fw, err := w.FrameWriter()
	if err != nil {
		t.Fatalf("frame writer: %v", err)
	}

	if err := fw.WriteFloat32(samples); err != nil {
		t.Fatalf("write frames: %v", err)
	}

	if err := fw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func readAll(t *testing.T, path string) (bwav.Format, []bwav.ChannelDescriptor, []float32) {
	t.Helper()

	rd, err := bwav.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}

	channels, err := rd.Channels()
	if err != nil {
		t.Fatalf("channels: %v", err)
	}

	fr, err := rd.FrameReader()
	if err != nil {
		t.Fatalf("frame reader: %v", err)
	}
	defer fr.Close()

	samples := make([]float32, fr.FrameLength()*uint64(fr.Format().ChannelCount))
	if _, err := fr.ReadFloat32(samples); err != nil {
		t.Fatalf("read: %v", err)
	}

	return fr.Format(), channels, samples
}

func TestRunCombinesBySpeaker(t *testing.T) {
	dir := t.TempDir()
	mono := bwav.NewPCMFormatMono(48000, 16)

	lfe := filepath.Join(dir, "take.Lfe.wav")
	left := filepath.Join(dir, "take.L.wav")
	right := filepath.Join(dir, "take.R.wav")

	writeMono(t, lfe, mono, []float32{0.25})
	writeMono(t, left, mono, []float32{0.5, -0.5})
	writeMono(t, right, mono, []float32{-0.25, 0.125})

	var out bytes.Buffer

	if err := run([]string{lfe, right, left}, &out); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	f, channels, samples := readAll(t, filepath.Join(dir, "take.wav"))

	want := bwav.ChannelMaskOf(bwav.FrontLeft, bwav.FrontRight, bwav.LowFrequency)
	if f.ChannelMask() != want || f.ValidBitsPerSample() != 16 {
		t.Fatalf("format=%s mask=%#x", f, f.ChannelMask())
	}

	if channels[2].Speaker != bwav.LowFrequency {
		t.Fatalf("third channel is %s", channels[2].Speaker)
	}

	// The LFE input is one frame short and padded with silence.
	expected := []float32{0.5, -0.25, 0.25, -0.5, 0.125, 0}
	if len(samples) != len(expected) {
		t.Fatalf("samples=%v", samples)
	}

	for i := range expected {
		if samples[i] != expected[i] {
			t.Fatalf("sample[%d]=%v, want %v (all %v)", i, samples[i], expected[i], samples)
		}
	}
}

func TestRunUnlabelledInputs(t *testing.T) {
	dir := t.TempDir()
	mono := bwav.NewFloatFormat(44100, 1)

	a := filepath.Join(dir, "a.wav")
	b := filepath.Join(dir, "b.wav")
	outPath := filepath.Join(dir, "mix.wav")

	writeMono(t, a, mono, []float32{0.1})
	writeMono(t, b, mono, []float32{0.2})

	if err := run([]string{"-o", outPath, a, b}, &bytes.Buffer{}); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	f, _, samples := readAll(t, outPath)

	if f.CommonFormat().Kind != bwav.KindIEEEFloatPCM || f.ChannelCount != 2 {
		t.Fatalf("format=%s", f)
	}

	if len(samples) != 2 || samples[0] != 0.1 || samples[1] != 0.2 {
		t.Fatalf("samples=%v", samples)
	}
}

func TestRunFormatMismatch(t *testing.T) {
	dir := t.TempDir()

	a := filepath.Join(dir, "x.L.wav")
	b := filepath.Join(dir, "x.R.wav")

	writeMono(t, a, bwav.NewPCMFormatMono(48000, 16), []float32{0})
	writeMono(t, b, bwav.NewPCMFormatMono(44100, 16), []float32{0})

	err := run([]string{a, b}, &bytes.Buffer{})
	if !errors.Is(err, errMismatch) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunRefusesToOverwriteInput(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "take.wav")
	writeMono(t, a, bwav.NewPCMFormatMono(48000, 16), []float32{0})

	if err := run([]string{a}, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error when the output is an input")
	}
}

func TestRunRequiresInput(t *testing.T) {
	err := run(nil, &bytes.Buffer{})
	if !errors.Is(err, errMissingInput) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSpeakerOf(t *testing.T) {
	tests := []struct {
		path string
		want bwav.ChannelMask
	}{
		{"dir/take.L.wav", bwav.FrontLeft},
		{"take.Rss.WAV", bwav.SideRight},
		{"take.wav", bwav.DirectOut},
		{"take.X.wav", bwav.DirectOut},
	}

	for _, tt := range tests {
		if got := speakerOf(tt.path, "."); got != tt.want {
			t.Fatalf("speakerOf(%q)=%s, want %s", tt.path, got, tt.want)
		}
	}
}
