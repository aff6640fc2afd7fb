package bwav

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyChunks(t *testing.T) {
	src := &memFile{}

	w, err := NewWriter(src, NewPCMFormatStereo(48000, 16))
	require.NoError(t, err)
	require.NoError(t, w.WriteBroadcastExtension(BroadcastExtension{Description: "source"}))
	require.NoError(t, w.WriteIXML([]byte("<BWFXML/>")))
	require.NoError(t, w.WriteChunk(FourCC{'x', 't', 'r', 'a'}, []byte{7, 8, 9}))

	fw, err := w.FrameWriter()
	require.NoError(t, err)
	require.NoError(t, fw.WriteInt16([]int16{1, 2, 3, 4}))

	w, err = fw.End()
	require.NoError(t, err)
	require.NoError(t, w.WriteInfo(Info{Title: "tail"}))
	require.NoError(t, w.Close())

	rd, err := NewReader(bytes.NewReader(src.Bytes()))
	require.NoError(t, err)

	dst := &memFile{}

	out, err := NewWriter(dst, NewPCMFormatStereo(48000, 16))
	require.NoError(t, err)
	require.NoError(t, CopyChunks(out, rd, false, SigIXML))

	ofw, err := out.FrameWriter()
	require.NoError(t, err)
	require.NoError(t, ofw.WriteInt16([]int16{5, 6}))

	out, err = ofw.End()
	require.NoError(t, err)
	require.NoError(t, CopyChunks(out, rd, true))
	require.NoError(t, out.Close())

	chunks, err := parseWavChunks(dst.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"JUNK", "fmt ", "bext", "xtra", "FLLR", "data", "LIST"}, chunkIDs(chunks))
	assert.Equal(t, []byte{7, 8, 9}, chunks[3].data)

	copied, err := NewReader(bytes.NewReader(dst.Bytes()))
	require.NoError(t, err)

	info, err := copied.Info()
	require.NoError(t, err)
	assert.Equal(t, "tail", info.Title)

	bext, err := copied.BroadcastExtension()
	require.NoError(t, err)
	assert.Equal(t, "source", bext.Description)
}

func TestCopyChunksConsumedReader(t *testing.T) {
	mf := writeFrames(t, NewPCMFormatMono(48000, 16), []int16{1})

	rd, err := NewReader(bytes.NewReader(mf.Bytes()))
	require.NoError(t, err)

	_, err = rd.FrameReader()
	require.NoError(t, err)

	w, err := NewWriter(&memFile{}, NewPCMFormatMono(48000, 16))
	require.NoError(t, err)
	require.ErrorIs(t, CopyChunks(w, rd, false), ErrConsumed)
}
