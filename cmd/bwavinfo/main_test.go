package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/bwav"
)

func writeFixture(t *testing.T, tagged bool) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.wav")

	w, err := bwav.Create(path, bwav.NewPCMFormatStereo(48000, 24))
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}

	if tagged {
		bext := bwav.BroadcastExtension{Description: "field recording", Originator: "bwavinfo test", Version: 1}
		if err := w.WriteBroadcastExtension(bext); err != nil {
			t.Fatalf("write bext: %v", err)
		}

		if err := w.WriteInfo(bwav.Info{Artist: "artist", Title: "track title", TrackNbr: "42"}); err != nil {
			t.Fatalf("write info: %v", err)
		}

		if err := w.WriteSampler(bwav.Sampler{MIDIUnityNote: 60, Loops: []bwav.SampleLoop{{Start: 0, End: 3}}}); err != nil {
			t.Fatalf("write smpl: %v", err)
		}

		if err := w.WriteCues([]bwav.Cue{{Frame: 1, Label: "start"}}); err != nil {
			t.Fatalf("write cues: %v", err)
		}
	}

	fw, err := w.FrameWriter()
	if err != nil {
		t.Fatalf("frame writer: %v", err)
	}

	if err := fw.WriteInt24(make([]bwav.Int24, 8)); err != nil {
		t.Fatalf("write frames: %v", err)
	}

	if err := fw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	return path
}

func TestRunRequiresPath(t *testing.T) {
	var out bytes.Buffer

	err := run(nil, &out)
	if !errors.Is(err, errMissingPath) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunPrintsMetadata(t *testing.T) {
	var outBuf bytes.Buffer

	err := run([]string{writeFixture(t, true)}, &outBuf)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	out := outBuf.String()
	checks := []string{
		"Form: RIFF",
		"Format: integer PCM, 48000 Hz, 2 ch, 24 bit",
		"Frames: 4 (83.333µs)",
		"JUNK @20 (92 bytes)",
		"fmt  @120 (16 bytes)",
		"[0] FrontLeft",
		"[1] FrontRight",
		"Description: field recording",
		"Originator: bwavinfo test",
		"Version: 1",
		"Artist: artist",
		"Title: track title",
		"TrackNbr: 42",
		"Label:start",
		"MIDIUnityNote: 60",
		"loop [0]:",
	}

	for _, c := range checks {
		if !strings.Contains(out, c) {
			t.Fatalf("expected output to contain %q\nfull output:\n%s", c, out)
		}
	}

	if strings.Contains(out, "No metadata present") {
		t.Fatalf("tagged file reported as untagged:\n%s", out)
	}
}

func TestRunNoMetadata(t *testing.T) {
	var outBuf bytes.Buffer

	err := run([]string{writeFixture(t, false)}, &outBuf)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	out := outBuf.String()
	if !strings.Contains(out, "No metadata present") {
		t.Fatalf("expected 'No metadata present' in output, got:\n%s", out)
	}

	if !strings.Contains(out, "FLLR") {
		t.Fatalf("expected the filler chunk in the directory, got:\n%s", out)
	}
}

func TestRunInvalidPath(t *testing.T) {
	var outBuf bytes.Buffer

	err := run([]string{"/nonexistent/path.wav"}, &outBuf)
	if err == nil {
		t.Fatal("expected error for invalid path")
	}
}

func TestRunRejectsNonWave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not.wav")
	writeRaw(t, path, []byte("RIFX\x04\x00\x00\x00WAVE"))

	var outBuf bytes.Buffer

	err := run([]string{path}, &outBuf)
	if !errors.Is(err, bwav.ErrHeaderNotRecognized) {
		t.Fatalf("unexpected error: %v", err)
	}
}
