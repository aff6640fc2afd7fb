package bwav

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_Validation(t *testing.T) {
	f16 := pcmFmt(NewPCMFormatMono(48000, 16))

	minimal := buildWave("RIFF", chunk("fmt ", f16), chunk("data", make([]byte, 4)))
	broadcast := buildWave("RIFF",
		chunk("fmt ", f16),
		chunk("bext", make([]byte, bextFixedLen)),
		chunk("data", make([]byte, 4)),
	)
	prepared := buildWave("RIFF",
		chunk("JUNK", make([]byte, 28)),
		chunk("FLLR", make([]byte, 56)),
		chunk("fmt ", f16),
		chunk("data", make([]byte, 4)),
	)
	appended := buildWave("RIFF",
		chunk("JUNK", make([]byte, ds64ReservedLen)),
		chunk("fmt ", f16),
		chunk("data", make([]byte, 4)),
		chunk("bext", make([]byte, bextFixedLen)),
	)

	tests := []struct {
		name     string
		file     []byte
		validate func(*Reader) error
		wantErr  error
	}{
		{"minimal", minimal, (*Reader).ValidateMinimal, nil},
		{"minimal with bext", broadcast, (*Reader).ValidateMinimal, ErrNotMinimalWaveFile},
		{"broadcast", broadcast, (*Reader).ValidateBroadcastWave, nil},
		{"broadcast without bext", minimal, (*Reader).ValidateBroadcastWave, ErrChunkMissing},
		{"unaligned", minimal, (*Reader).ValidateDataChunkAlignment, ErrDataChunkNotAligned},
		{"no reservation", minimal, (*Reader).ValidatePreparedForAppend, ErrInsufficientDS64Reservation},
		// 28 + 8 + 56 merged filler bytes.
		{"merged reservation", prepared, (*Reader).ValidatePreparedForAppend, nil},
		{"data not last", appended, (*Reader).ValidatePreparedForAppend, ErrDataChunkNotPreparedForAppend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rd, err := NewReader(bytes.NewReader(tt.file))
			require.NoError(t, err)

			err = tt.validate(rd)
			if tt.wantErr == nil {
				require.NoError(t, err)

				return
			}

			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestReader_NotReadable(t *testing.T) {
	f16 := pcmFmt(NewPCMFormatMono(48000, 16))

	tests := []struct {
		name    string
		file    []byte
		wantErr error
	}{
		{"no data", buildWave("RIFF", chunk("fmt ", f16)), ErrChunkMissing},
		{"no fmt", buildWave("RIFF", chunk("data", make([]byte, 2))), ErrChunkMissing},
		{"fmt after data", buildWave("RIFF", chunk("data", make([]byte, 2)), chunk("fmt ", f16)), ErrFmtChunkAfterData},
		{"truncated fmt", buildWave("RIFF", chunk("fmt ", f16[:10]), chunk("data", nil)), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rd, err := NewReader(bytes.NewReader(tt.file))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)

			_, err = rd.Format()
			require.ErrorIs(t, err, ErrInvalidFormatChunk)
		})
	}
}

func TestReader_ChunkAccess(t *testing.T) {
	file := buildWave("RIFF",
		chunk("fmt ", pcmFmt(NewPCMFormatMono(48000, 16))),
		chunk("LIST", encodeListForm(FourCC{'e', 'x', 'p', 'l'}, nil)),
		chunk("LIST", encodeInfo(Info{Title: "second"})),
		chunk("iXML", []byte("<BWFXML/>")),
		chunk("data", make([]byte, 4)),
	)

	rd, err := NewReader(bytes.NewReader(file))
	require.NoError(t, err)

	info, err := rd.Info()
	require.NoError(t, err)
	assert.Equal(t, "second", info.Title)

	_, err = rd.ListForm(SigAdtl)
	require.ErrorIs(t, err, ErrChunkMissing)

	doc, err := rd.IXML()
	require.NoError(t, err)
	assert.Equal(t, "<BWFXML/>", string(doc))

	_, err = rd.AXML()
	require.ErrorIs(t, err, ErrChunkMissing)

	_, err = rd.ChunkExtent(SigList, 2)
	require.ErrorIs(t, err, ErrChunkMissing)
	assert.Contains(t, err.Error(), "index 2")

	second, err := rd.ChunkExtent(SigList, 1)
	require.NoError(t, err)

	first, err := rd.ChunkExtent(SigList, 0)
	require.NoError(t, err)
	assert.Less(t, first.Start, second.Start)

	cues, err := rd.CuePoints()
	require.NoError(t, err)
	assert.Nil(t, cues)

	chunks, err := rd.Chunks()
	require.NoError(t, err)
	require.Len(t, chunks, 5)

	chunks[0].Signature = SigJunk
	again, err := rd.Chunks()
	require.NoError(t, err)
	assert.Equal(t, SigFmt, again[0].Signature)
}

func TestFrameReader_EndOfDataAndLocate(t *testing.T) {
	mf := writeFrames(t, NewPCMFormatStereo(48000, 16), []int16{1, 2, 3, 4, 5, 6})

	rd, err := NewReader(bytes.NewReader(mf.Bytes()))
	require.NoError(t, err)

	fr, err := rd.FrameReader()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), fr.FrameLength())

	buf := make([]int16, 4)

	n, err := fr.ReadInt16(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []int16{1, 2, 3, 4}, buf)
	assert.Equal(t, uint64(2), fr.Position())

	n, err = fr.ReadInt16(buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []int16{5, 6}, buf[:2])

	n, err = fr.ReadInt16(buf)
	require.NoError(t, err)
	assert.Zero(t, n)

	at, err := fr.Locate(0)
	require.NoError(t, err)
	assert.Zero(t, at)

	n, err = fr.ReadInt16(buf[:2])
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []int16{1, 2}, buf[:2])

	_, err = fr.Locate(10)
	require.NoError(t, err)

	n, err = fr.ReadInt16(buf)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = fr.ReadInt16(make([]int16, 3))
	require.ErrorIs(t, err, ErrInvalidBufferSize)
}

func TestFrameReader_ConsumesReader(t *testing.T) {
	mf := writeFrames(t, NewPCMFormatMono(48000, 16), []int16{1})

	rd, err := NewReader(bytes.NewReader(mf.Bytes()))
	require.NoError(t, err)

	_, err = rd.FrameReader()
	require.NoError(t, err)

	_, err = rd.Chunks()
	require.ErrorIs(t, err, ErrConsumed)

	_, err = rd.FrameReader()
	require.ErrorIs(t, err, ErrConsumed)

	require.NoError(t, rd.Close())
}

func TestFrameReader_ConvertsDepth(t *testing.T) {
	mf := writeFrames(t, NewPCMFormatMono(48000, 24), []Int24{0x400000, -0x800000})

	floats := readFrames[float32](t, mf.Bytes())
	assert.Equal(t, []float32{0.5, -1}, floats)

	shorts := readFrames[int16](t, mf.Bytes())
	assert.Equal(t, []int16{0x4000, -0x8000}, shorts)
}

func TestFrameReader_Buffers(t *testing.T) {
	mf := writeFrames(t, NewPCMFormatStereo(44100, 24), []Int24{1, -1, 0x7FFFFF, -0x800000})

	rd, err := NewReader(bytes.NewReader(mf.Bytes()))
	require.NoError(t, err)

	fr, err := rd.FrameReader()
	require.NoError(t, err)

	buf := &audio.IntBuffer{Data: make([]int, 8)}
	n, err := fr.ReadIntBuffer(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []int{1, -1, 0x7FFFFF, -0x800000}, buf.Data)
	assert.Equal(t, 24, buf.SourceBitDepth)
	require.NotNil(t, buf.Format)
	assert.Equal(t, 2, buf.Format.NumChannels)
	assert.Equal(t, 44100, buf.Format.SampleRate)

	_, err = fr.Locate(1)
	require.NoError(t, err)

	fbuf := &audio.Float32Buffer{Data: make([]float32, 2)}
	n, err = fr.ReadFloat32Buffer(fbuf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []float32{float32(0x7FFFFF) / 0x800000, -1}, fbuf.Data)
}

func TestOpenAndCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "take.wav")

	w, err := Create(path, NewPCMFormatStereo(48000, 16))
	require.NoError(t, err)
	require.NoError(t, w.WriteBroadcastExtension(BroadcastExtension{Originator: "bwav"}))

	fw, err := w.FrameWriter()
	require.NoError(t, err)
	require.NoError(t, fw.WriteInt16([]int16{10, -10, 20, -20}))
	require.NoError(t, fw.Close())

	rd, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, rd.ValidateBroadcastWave())

	bext, err := rd.BroadcastExtension()
	require.NoError(t, err)
	assert.Equal(t, "bwav", bext.Originator)

	fr, err := rd.FrameReader()
	require.NoError(t, err)

	buf := make([]int16, 4)
	n, err := fr.ReadInt16(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []int16{10, -10, 20, -20}, buf)
	require.NoError(t, fr.Close())

	_, err = Open(filepath.Join(t.TempDir(), "missing.wav"))
	require.Error(t, err)
}

func TestChunkReader(t *testing.T) {
	r := bytes.NewReader([]byte("0123456789"))
	cr := NewChunkReader(r, 2, 5)

	assert.Equal(t, uint64(5), cr.Len())

	got, err := io.ReadAll(cr)
	require.NoError(t, err)
	assert.Equal(t, "23456", string(got))
	assert.Equal(t, uint64(5), cr.Position())

	n, err := cr.Read(make([]byte, 1))
	assert.Zero(t, n)
	assert.Equal(t, io.EOF, err)

	pos, err := cr.Seek(-2, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(3), pos)

	buf := make([]byte, 4)
	n, err = cr.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "56", string(buf[:n]))

	pos, err = cr.Seek(-1, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(4), pos)

	_, err = cr.Seek(-10, io.SeekCurrent)
	require.ErrorIs(t, err, ErrSeekBeforeStart)

	_, err = cr.Seek(0, 42)
	require.ErrorIs(t, err, errInvalidWhence)

	// Another reader moving the shared stream does not disturb the window.
	_, err = r.Seek(0, io.SeekStart)
	require.NoError(t, err)

	_, err = cr.Seek(0, io.SeekStart)
	require.NoError(t, err)

	n, err = cr.Read(buf[:2])
	require.NoError(t, err)
	assert.Equal(t, "23", string(buf[:n]))
}

func TestChunkReader_StreamShorterThanChunk(t *testing.T) {
	cr := NewChunkReader(bytes.NewReader([]byte("abc")), 1, 10)

	got, err := io.ReadAll(cr)
	require.NoError(t, err)
	assert.Equal(t, "bc", string(got))
}
