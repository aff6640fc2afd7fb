package bwav

import (
	"fmt"
	"io"
)

// ChunkReader reads the content of a single chunk. Offsets are relative to
// the start of the chunk content and reads never cross its end.
type ChunkReader struct {
	r      io.ReadSeeker
	start  uint64
	length uint64
	pos    uint64
}

// NewChunkReader returns a ChunkReader over length bytes of r starting at the
// absolute offset start.
func NewChunkReader(r io.ReadSeeker, start, length uint64) *ChunkReader {
	return &ChunkReader{r: r, start: start, length: length}
}

// Len returns the length of the chunk content.
func (cr *ChunkReader) Len() uint64 {
	return cr.length
}

// Position returns the current offset within the chunk.
func (cr *ChunkReader) Position() uint64 {
	return cr.pos
}

// Read implements io.Reader. At or past the end of the chunk it returns 0 and
// io.EOF.
func (cr *ChunkReader) Read(p []byte) (int, error) {
	if cr.pos >= cr.length {
		return 0, io.EOF
	}

	if len(p) == 0 {
		return 0, nil
	}

	if _, err := cr.r.Seek(int64(cr.start+cr.pos), io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to seek chunk stream: %w", err)
	}

	if left := cr.length - cr.pos; uint64(len(p)) > left {
		p = p[:left]
	}

	n, err := cr.r.Read(p)
	cr.pos += uint64(n)

	if err == io.EOF && n > 0 {
		err = nil
	}

	return n, err
}

// Seek implements io.Seeker relative to the chunk content. Seeking past the
// end is allowed, seeking before the start returns ErrSeekBeforeStart.
func (cr *ChunkReader) Seek(offset int64, whence int) (int64, error) {
	var base int64

	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = int64(cr.pos)
	case io.SeekEnd:
		base = int64(cr.length)
	default:
		return int64(cr.pos), fmt.Errorf("%w: %d", errInvalidWhence, whence)
	}

	target := base + offset
	if target < 0 {
		return int64(cr.pos), fmt.Errorf("%w: offset %d", ErrSeekBeforeStart, target)
	}

	cr.pos = uint64(target)

	return target, nil
}
