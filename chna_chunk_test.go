package bwav

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChnaThroughWriter(t *testing.T) {
	entries := []ChnaEntry{
		{TrackIndex: 1, ADMAudioID: ADMAudioID{TrackUID: "ATU_00000001", ChannelFormatRef: "AT_00031001_01", PackRef: "AP_00031001"}},
		{TrackIndex: 2, ADMAudioID: ADMAudioID{TrackUID: "ATU_00000002", ChannelFormatRef: "AT_00031002_01", PackRef: "AP_00031001"}},
		{TrackIndex: 2, ADMAudioID: ADMAudioID{TrackUID: "ATU_00000003", ChannelFormatRef: "AT_00031002_02", PackRef: "AP_00031002"}},
		{TrackIndex: 9, ADMAudioID: ADMAudioID{TrackUID: "ATU_00000009"}},
	}

	mf := &memFile{}

	w, err := NewWriter(mf, NewPCMFormatStereo(48000, 24))
	require.NoError(t, err)
	require.NoError(t, w.WriteChna(entries))
	require.NoError(t, w.WriteAXML([]byte("<ebuCoreMain/>")))

	fw, err := w.FrameWriter()
	require.NoError(t, err)
	require.NoError(t, fw.WriteInt24([]Int24{0, 0}))
	require.NoError(t, fw.Close())

	rd, err := NewReader(bytes.NewReader(mf.Bytes()))
	require.NoError(t, err)

	got, err := rd.Chna()
	require.NoError(t, err)
	assert.Equal(t, entries, got)

	body, err := rd.ReadChunk(SigChna, 0)
	require.NoError(t, err)
	assert.Len(t, body, chnaHeaderLen+4*chnaEntryLen)
	assert.Equal(t, uint16(3), binary.LittleEndian.Uint16(body))

	channels, err := rd.Channels()
	require.NoError(t, err)
	require.Len(t, channels, 2)
	assert.Equal(t, FrontLeft, channels[0].Speaker)
	assert.Equal(t, []ADMAudioID{entries[0].ADMAudioID}, channels[0].ADMAudioIDs)
	assert.Equal(t, []ADMAudioID{entries[1].ADMAudioID, entries[2].ADMAudioID}, channels[1].ADMAudioIDs)

	doc, err := rd.AXML()
	require.NoError(t, err)
	assert.Equal(t, "<ebuCoreMain/>", string(doc))
}

func TestChannelsWithoutChna(t *testing.T) {
	mf := writeFrames(t, NewPCMFormatMultichannel(48000, 16, 0b111111), make([]int16, 6))

	rd, err := NewReader(bytes.NewReader(mf.Bytes()))
	require.NoError(t, err)

	channels, err := rd.Channels()
	require.NoError(t, err)
	require.Len(t, channels, 6)
	assert.Equal(t, LowFrequency, channels[3].Speaker)
	assert.Equal(t, uint16(3), channels[3].Index)
	assert.Nil(t, channels[3].ADMAudioIDs)
}

func TestDecodeChnaShort(t *testing.T) {
	_, err := decodeChna([]byte{1})
	require.ErrorIs(t, err, errShortChunk)

	_, err = decodeChna([]byte{1, 0, 1, 0})
	require.ErrorIs(t, err, errShortChunk)
}
