package bwav_test

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/cwbudde/bwav"
)

func ExampleWriter() {
	dir, err := os.MkdirTemp("", "bwav-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "tone.wav")

	w, err := bwav.Create(path, bwav.NewPCMFormatStereo(48000, 24))
	if err != nil {
		log.Fatal(err)
	}

	bext := bwav.BroadcastExtension{Description: "Example tone", Originator: "bwav"}
	if err := w.WriteBroadcastExtension(bext); err != nil {
		log.Fatal(err)
	}

	fw, err := w.FrameWriter()
	if err != nil {
		log.Fatal(err)
	}

	if err := fw.WriteInt24([]bwav.Int24{0, 0, 0x400000, -0x400000}); err != nil {
		log.Fatal(err)
	}

	if err := fw.Close(); err != nil {
		log.Fatal(err)
	}

	rd, err := bwav.Open(path)
	if err != nil {
		log.Fatal(err)
	}
	defer rd.Close()

	frames, err := rd.FrameLength()
	if err != nil {
		log.Fatal(err)
	}

	b, err := rd.BroadcastExtension()
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%s: %d frames, %q\n", filepath.Base(path), frames, b.Description)
	// Output: tone.wav: 2 frames, "Example tone"
}

func ExampleReader_Chunks() {
	var buf seekBuffer

	w, err := bwav.NewWriter(&buf, bwav.NewPCMFormatMono(44100, 16), bwav.WithDataAlignment(0))
	if err != nil {
		log.Fatal(err)
	}

	if err := w.WriteInfo(bwav.Info{Title: "Example"}); err != nil {
		log.Fatal(err)
	}

	fw, err := w.FrameWriter()
	if err != nil {
		log.Fatal(err)
	}

	if err := fw.WriteInt16([]int16{100, -100, 0}); err != nil {
		log.Fatal(err)
	}

	if err := fw.Close(); err != nil {
		log.Fatal(err)
	}

	rd, err := bwav.NewReader(bytes.NewReader(buf.data))
	if err != nil {
		log.Fatal(err)
	}

	chunks, err := rd.Chunks()
	if err != nil {
		log.Fatal(err)
	}

	for _, c := range chunks {
		fmt.Println(c)
	}

	// Output:
	// JUNK @20 (92 bytes)
	// fmt  @120 (16 bytes)
	// LIST @144 (20 bytes)
	// data @172 (6 bytes)
}

func ExampleFrameReader_ReadFloat32() {
	var buf seekBuffer

	w, err := bwav.NewWriter(&buf, bwav.NewPCMFormatMono(8000, 16))
	if err != nil {
		log.Fatal(err)
	}

	fw, err := w.FrameWriter()
	if err != nil {
		log.Fatal(err)
	}

	if err := fw.WriteInt16([]int16{16384, -32768, 0}); err != nil {
		log.Fatal(err)
	}

	if err := fw.Close(); err != nil {
		log.Fatal(err)
	}

	rd, err := bwav.NewReader(bytes.NewReader(buf.data))
	if err != nil {
		log.Fatal(err)
	}

	fr, err := rd.FrameReader()
	if err != nil {
		log.Fatal(err)
	}

	samples := make([]float32, 3)

	n, err := fr.ReadFloat32(samples)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(n, samples)
	// Output: 3 [0.5 -1 0]
}

// seekBuffer is a minimal in-memory io.WriteSeeker for the examples.
type seekBuffer struct {
	data []byte
	pos  int64
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	if end := b.pos + int64(len(p)); end > int64(len(b.data)) {
		b.data = append(b.data, make([]byte, end-int64(len(b.data)))...)
	}

	n := copy(b.data[b.pos:], p)
	b.pos += int64(n)

	return n, nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		b.pos = offset
	case io.SeekCurrent:
		b.pos += offset
	case io.SeekEnd:
		b.pos = int64(len(b.data)) + offset
	}

	return b.pos, nil
}
