package bwav

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCuesThroughWriter(t *testing.T) {
	cues := []Cue{
		{Frame: 0, Label: "start"},
		{Frame: 4800, Length: 9600, Label: "chorus", Note: "needs a retake"},
		{Frame: 96000},
		{Frame: 100, Offset: 100},
	}

	mf := &memFile{}

	w, err := NewWriter(mf, NewPCMFormatMono(48000, 16))
	require.NoError(t, err)
	require.NoError(t, w.WriteCues(cues))

	fw, err := w.FrameWriter()
	require.NoError(t, err)
	require.NoError(t, fw.WriteInt16(make([]int16, 16)))
	require.NoError(t, fw.Close())

	rd, err := NewReader(bytes.NewReader(mf.Bytes()))
	require.NoError(t, err)

	got, err := rd.CuePoints()
	require.NoError(t, err)
	assert.Equal(t, cues, got)

	adtl, err := rd.ListForm(SigAdtl)
	require.NoError(t, err)

	_, members, err := collectListForm(adtl)
	require.NoError(t, err)

	ids := make([]FourCC, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}

	assert.Equal(t, []FourCC{SigLabl, SigLabl, SigNote, SigLtxt}, ids)
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(members[0].Data))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(members[1].Data))
}

func TestEncodeCuesWithoutText(t *testing.T) {
	cueBody, adtlBody := encodeCues([]Cue{{Frame: 1}, {Frame: 2}})
	assert.Nil(t, adtlBody)
	assert.Len(t, cueBody, 4+2*cueRecordLen)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(cueBody))
	assert.Equal(t, "data", string(cueBody[4+8:4+12]))

	cues, err := decodeCues(cueBody, nil)
	require.NoError(t, err)
	assert.Equal(t, []Cue{{Frame: 1}, {Frame: 2}}, cues)
}

func TestDecodeAdtlFirstTextWins(t *testing.T) {
	rgn := bytes.NewBuffer(nil)
	require.NoError(t, binary.Write(rgn, binary.LittleEndian, ltxtHeader{CuePointID: 7, FrameLength: 50, Purpose: SigRgn}))

	other := bytes.NewBuffer(nil)
	require.NoError(t, binary.Write(other, binary.LittleEndian, ltxtHeader{CuePointID: 7, FrameLength: 99, Purpose: FourCC{'t', 'x', 't', ' '}}))

	body := encodeListForm(SigAdtl, []listMember{
		{ID: SigLabl, Data: textMember(7, "first")},
		{ID: SigLabl, Data: textMember(7, "second")},
		{ID: SigLtxt, Data: other.Bytes()},
		{ID: SigLtxt, Data: rgn.Bytes()},
		{ID: SigNote, Data: []byte{1}},
	})

	texts, err := decodeAdtl(body)
	require.NoError(t, err)
	require.Contains(t, texts, uint32(7))
	assert.Equal(t, "first", texts[7].label)
	assert.Equal(t, uint32(50), texts[7].length)
	assert.False(t, texts[7].hasNote)
}

func TestDecodeCueRecordsShort(t *testing.T) {
	_, err := decodeCueRecords([]byte{1, 0})
	require.ErrorIs(t, err, errShortChunk)

	_, err = decodeCueRecords([]byte{2, 0, 0, 0})
	require.ErrorIs(t, err, errShortChunk)
}

func TestCueMissingAdtl(t *testing.T) {
	cueBody, _ := encodeCues([]Cue{{Frame: 10, Label: "lost"}})

	file := buildWave("RIFF",
		chunk("fmt ", pcmFmt(NewPCMFormatMono(48000, 16))),
		chunk("cue ", cueBody),
		chunk("data", make([]byte, 2)),
	)

	rd, err := NewReader(bytes.NewReader(file))
	require.NoError(t, err)

	cues, err := rd.CuePoints()
	require.NoError(t, err)
	assert.Equal(t, []Cue{{Frame: 10}}, cues)
}
