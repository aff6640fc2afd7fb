package bwav

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
)

var errFrameWriterEnded = errors.New("frame writer already ended")

// FrameWriter streams interleaved audio frames into the data chunk of a
// Writer. The size fields are kept current after every write.
type FrameWriter struct {
	w     *Writer
	codec sampleCodec
	raw   []byte
	ended bool
}

// Format returns the format of the frames.
func (fw *FrameWriter) Format() Format {
	return fw.w.format
}

// FrameCount returns the number of frames written so far.
func (fw *FrameWriter) FrameCount() uint64 {
	return fw.w.format.FrameCount(fw.w.dataSize)
}

func (fw *FrameWriter) buffer(samples int) ([]byte, error) {
	if fw.ended {
		return nil, errFrameWriterEnded
	}

	channels := int(fw.w.format.ChannelCount)
	if samples%channels != 0 {
		return nil, fmt.Errorf("%w: %d samples for %d channels", ErrInvalidBufferSize, samples, channels)
	}

	n := samples * fw.codec.size()
	if cap(fw.raw) < n {
		fw.raw = make([]byte, n)
	}

	return fw.raw[:n], nil
}

func (fw *FrameWriter) writeRaw(raw []byte) error {
	if len(raw) == 0 {
		return nil
	}

	w := fw.w
	if _, err := w.w.Seek(int64(w.dataStart+w.dataSize), io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to end of data: %w", err)
	}

	if _, err := w.w.Write(raw); err != nil {
		return fmt.Errorf("failed to write audio frames: %w", err)
	}

	w.dataSize += uint64(len(raw))

	return w.updateFormSize(uint64(len(raw)))
}

// WriteFrames converts buf to the sample encoding of the file and appends it.
// buf must hold whole frames.
func WriteFrames[S Sample](fw *FrameWriter, buf []S) error {
	raw, err := fw.buffer(len(buf))
	if err != nil {
		return err
	}

	encodeSamples(fw.codec, buf, raw)

	return fw.writeRaw(raw)
}

// WriteInt8 appends frames of 8-bit signed samples.
func (fw *FrameWriter) WriteInt8(buf []int8) error {
	return WriteFrames(fw, buf)
}

// WriteInt16 appends frames of 16-bit samples.
func (fw *FrameWriter) WriteInt16(buf []int16) error {
	return WriteFrames(fw, buf)
}

// WriteInt24 appends frames of 24-bit samples.
func (fw *FrameWriter) WriteInt24(buf []Int24) error {
	return WriteFrames(fw, buf)
}

// WriteInt32 appends frames of 32-bit samples.
func (fw *FrameWriter) WriteInt32(buf []int32) error {
	return WriteFrames(fw, buf)
}

// WriteFloat32 appends frames of float samples in [-1, 1).
func (fw *FrameWriter) WriteFloat32(buf []float32) error {
	return WriteFrames(fw, buf)
}

// WriteIntBuffer appends buf.Data, signed integers at buf.SourceBitDepth.
// A zero SourceBitDepth means the container depth of the file.
func (fw *FrameWriter) WriteIntBuffer(buf *audio.IntBuffer) error {
	raw, err := fw.buffer(len(buf.Data))
	if err != nil {
		return err
	}

	bits := buf.SourceBitDepth
	if bits == 0 {
		bits = fw.codec.intBits()
	}

	width := fw.codec.size()

	for i, v := range buf.Data {
		if bits == fw.codec.intBits() {
			fw.codec.encodeInt(raw[i*width:], int64(v))
		} else {
			fw.codec.encode(raw[i*width:], normalizePCMInt(int64(v), bits))
		}
	}

	return fw.writeRaw(raw)
}

// WriteFloat32Buffer appends buf.Data.
func (fw *FrameWriter) WriteFloat32Buffer(buf *audio.Float32Buffer) error {
	return WriteFrames(fw, buf.Data)
}

// End finishes the data chunk, padding it to even length, and returns the
// Writer for further chunks.
func (fw *FrameWriter) End() (*Writer, error) {
	if fw.ended {
		return nil, errFrameWriterEnded
	}

	w := fw.w

	if w.dataSize%2 == 1 {
		if _, err := w.w.Seek(int64(w.dataStart+w.dataSize), io.SeekStart); err != nil {
			return nil, fmt.Errorf("failed to seek to end of data: %w", err)
		}

		if _, err := w.w.Write([]byte{0}); err != nil {
			return nil, fmt.Errorf("failed to pad data chunk: %w", err)
		}

		if err := w.updateFormSize(1); err != nil {
			return nil, err
		}
	}

	if err := w.patchSizes(); err != nil {
		return nil, err
	}

	fw.ended = true
	w.consumed = false

	return w, nil
}

// Close ends the data chunk and closes the Writer.
func (fw *FrameWriter) Close() error {
	w, err := fw.End()
	if err != nil {
		return err
	}

	return w.Close()
}
