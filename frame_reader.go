package bwav

import (
	"fmt"
	"io"

	"github.com/go-audio/audio"
)

// FrameReader reads interleaved audio frames from the data chunk. It owns
// the stream of the Reader it was created from.
type FrameReader struct {
	data   *ChunkReader
	closer io.Closer
	format Format
	codec  sampleCodec
	raw    []byte
}

func newFrameReader(data *ChunkReader, format Format, closer io.Closer) (*FrameReader, error) {
	codec, err := codecFor(format)
	if err != nil {
		return nil, err
	}

	return &FrameReader{
		data:   data,
		closer: closer,
		format: format,
		codec:  codec,
	}, nil
}

// Format returns the format of the frames.
func (fr *FrameReader) Format() Format {
	return fr.format
}

// FrameLength returns the number of whole frames in the data chunk.
func (fr *FrameReader) FrameLength() uint64 {
	return fr.format.FrameCount(fr.data.Len())
}

// Position returns the index of the next frame to be read.
func (fr *FrameReader) Position() uint64 {
	return fr.data.Position() / uint64(fr.format.BlockAlignment)
}

// Locate moves to the passed frame and returns it. Locating past the last
// frame is allowed, the next read returns no frames.
func (fr *FrameReader) Locate(frame uint64) (uint64, error) {
	pos, err := fr.data.Seek(int64(frame*uint64(fr.format.BlockAlignment)), io.SeekStart)
	if err != nil {
		return 0, fmt.Errorf("failed to locate frame %d: %w", frame, err)
	}

	return uint64(pos) / uint64(fr.format.BlockAlignment), nil
}

// readRaw reads the bytes of as many whole frames as samples holds and are
// left in the data chunk.
func (fr *FrameReader) readRaw(samples int) (int, []byte, error) {
	channels := int(fr.format.ChannelCount)
	if samples%channels != 0 {
		return 0, nil, fmt.Errorf("%w: %d samples for %d channels", ErrInvalidBufferSize, samples, channels)
	}

	blockAlign := uint64(fr.format.BlockAlignment)

	var left uint64
	if pos := fr.data.Position(); pos < fr.data.Len() {
		left = (fr.data.Len() - pos) / blockAlign
	}

	frames := min(uint64(samples/channels), left)
	if frames == 0 {
		return 0, nil, nil
	}

	n := int(frames * blockAlign)
	if cap(fr.raw) < n {
		fr.raw = make([]byte, n)
	}

	raw := fr.raw[:n]
	if _, err := io.ReadFull(fr.data, raw); err != nil {
		return 0, nil, fmt.Errorf("failed to read audio frames: %w", err)
	}

	return int(frames), raw, nil
}

// ReadFrames fills buf with whole interleaved frames converted to S and
// returns the number of frames read. At the end of the data it returns 0
// and no error.
func ReadFrames[S Sample](fr *FrameReader, buf []S) (int, error) {
	frames, raw, err := fr.readRaw(len(buf))
	if err != nil || frames == 0 {
		return 0, err
	}

	decodeSamples(fr.codec, raw, buf[:frames*int(fr.format.ChannelCount)])

	return frames, nil
}

// ReadInt8 reads frames as 8-bit signed samples.
func (fr *FrameReader) ReadInt8(buf []int8) (int, error) {
	return ReadFrames(fr, buf)
}

// ReadInt16 reads frames as 16-bit samples.
func (fr *FrameReader) ReadInt16(buf []int16) (int, error) {
	return ReadFrames(fr, buf)
}

// ReadInt24 reads frames as 24-bit samples.
func (fr *FrameReader) ReadInt24(buf []Int24) (int, error) {
	return ReadFrames(fr, buf)
}

// ReadInt32 reads frames as 32-bit samples.
func (fr *FrameReader) ReadInt32(buf []int32) (int, error) {
	return ReadFrames(fr, buf)
}

// ReadFloat32 reads frames as float samples in [-1, 1).
func (fr *FrameReader) ReadFloat32(buf []float32) (int, error) {
	return ReadFrames(fr, buf)
}

func (fr *FrameReader) audioFormat() *audio.Format {
	return &audio.Format{
		NumChannels: int(fr.format.ChannelCount),
		SampleRate:  int(fr.format.SampleRate),
	}
}

// ReadIntBuffer fills buf.Data with signed integer samples at the container
// depth of the file, 32 bits for float files, and returns the number of
// frames read. buf.Data is truncated to the samples read.
func (fr *FrameReader) ReadIntBuffer(buf *audio.IntBuffer) (int, error) {
	frames, raw, err := fr.readRaw(len(buf.Data))
	if err != nil {
		return 0, err
	}

	if buf.Format == nil {
		buf.Format = fr.audioFormat()
	}

	buf.SourceBitDepth = fr.codec.intBits()

	width := fr.codec.size()
	n := frames * int(fr.format.ChannelCount)

	for i := range n {
		buf.Data[i] = int(fr.codec.decodeInt(raw[i*width:]))
	}

	buf.Data = buf.Data[:n]

	return frames, nil
}

// ReadFloat32Buffer fills buf.Data with float samples and returns the number
// of frames read. buf.Data is truncated to the samples read.
func (fr *FrameReader) ReadFloat32Buffer(buf *audio.Float32Buffer) (int, error) {
	frames, raw, err := fr.readRaw(len(buf.Data))
	if err != nil {
		return 0, err
	}

	if buf.Format == nil {
		buf.Format = fr.audioFormat()
	}

	buf.SourceBitDepth = int(fr.format.ValidBitsPerSample())

	n := frames * int(fr.format.ChannelCount)
	decodeSamples(fr.codec, raw, buf.Data[:n])
	buf.Data = buf.Data[:n]

	return frames, nil
}

// Close closes the file the frames are read from, if the Reader opened it.
func (fr *FrameReader) Close() error {
	if fr.closer == nil {
		return nil
	}

	err := fr.closer.Close()
	fr.closer = nil

	return err
}
