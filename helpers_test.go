package bwav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// memFile is an in-memory io.ReadWriteSeeker. Writing past the end grows the
// buffer with zeroes.
type memFile struct {
	buf []byte
	pos int64
}

func (m *memFile) Read(p []byte) (int, error) {
	if m.pos >= int64(len(m.buf)) {
		return 0, io.EOF
	}

	n := copy(p, m.buf[m.pos:])
	m.pos += int64(n)

	return n, nil
}

func (m *memFile) Write(p []byte) (int, error) {
	if end := m.pos + int64(len(p)); end > int64(len(m.buf)) {
		m.buf = append(m.buf, make([]byte, end-int64(len(m.buf)))...)
	}

	n := copy(m.buf[m.pos:], p)
	m.pos += int64(n)

	return n, nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	var base int64

	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = m.pos
	case io.SeekEnd:
		base = int64(len(m.buf))
	default:
		return 0, errInvalidWhence
	}

	if base+offset < 0 {
		return 0, ErrSeekBeforeStart
	}

	m.pos = base + offset

	return m.pos, nil
}

func (m *memFile) Bytes() []byte {
	return m.buf
}

type testChunk struct {
	id   string
	size uint32
	data []byte
}

// chunk returns a test chunk whose size field matches its data.
func chunk(id string, data []byte) testChunk {
	return testChunk{id: id, size: uint32(len(data)), data: data}
}

// buildWave assembles a file of the passed form from chunks, padding odd
// chunks and computing the form size.
func buildWave(form string, chunks ...testChunk) []byte {
	body := []byte("WAVE")

	for _, c := range chunks {
		body = append(body, c.id...)
		body = binary.LittleEndian.AppendUint32(body, c.size)
		body = append(body, c.data...)

		if len(c.data)%2 == 1 {
			body = append(body, 0)
		}
	}

	out := []byte(form)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(body)))

	return append(out, body...)
}

// buildRF64 assembles an RF64 file with a ds64 chunk carrying the real form
// and data sizes plus table. pad adds trailing zero bytes to the ds64 content.
func buildRF64(form string, table map[string]uint64, pad int, chunks ...testChunk) []byte {
	var dataSize uint64

	for _, c := range chunks {
		if c.id == "data" {
			dataSize = uint64(len(c.data))
		}
	}

	ds64 := make([]byte, 28, 28+12*len(table)+pad)
	binary.LittleEndian.PutUint64(ds64[8:], dataSize)
	binary.LittleEndian.PutUint32(ds64[24:], uint32(len(table)))

	for id, size := range table {
		ds64 = append(ds64, id...)
		ds64 = binary.LittleEndian.AppendUint64(ds64, size)
	}

	ds64 = append(ds64, make([]byte, pad)...)

	all := append([]testChunk{chunk("ds64", ds64)}, chunks...)
	out := buildWave(form, all...)

	binary.LittleEndian.PutUint32(out[4:], sizeSentinel)
	binary.LittleEndian.PutUint64(out[20:], uint64(len(out)-8))

	return out
}

func pcmFmt(f Format) []byte {
	b, err := f.MarshalBinary()
	if err != nil {
		panic(err)
	}

	return b
}

var (
	errFileTooSmall         = errors.New("file too small")
	errInvalidRiffWaveHdr   = errors.New("invalid riff/wave header")
	errChunkExceedsFileSize = errors.New("chunk exceeds file size")
)

// parseWavChunks is an independent chunk walker used to check Writer output.
func parseWavChunks(data []byte) ([]testChunk, error) {
	if len(data) < 12 {
		return nil, errFileTooSmall
	}

	switch string(data[0:4]) {
	case "RIFF", "RF64", "BW64":
	default:
		return nil, errInvalidRiffWaveHdr
	}

	if string(data[8:12]) != "WAVE" {
		return nil, errInvalidRiffWaveHdr
	}

	chunks := make([]testChunk, 0)

	offset := 12
	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		offset += 8

		end := offset + int(size)
		if size == sizeSentinel {
			end = len(data)
		}

		if end > len(data) {
			return nil, fmt.Errorf("%w: %q", errChunkExceedsFileSize, id)
		}

		payload := append([]byte(nil), data[offset:end]...)
		chunks = append(chunks, testChunk{id: id, size: size, data: payload})

		offset = end
		if size%2 == 1 {
			offset++
		}
	}

	return chunks, nil
}

func chunkIDs(chunks []testChunk) []string {
	out := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		out = append(out, ch.id)
	}

	return out
}
