package bwav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/riff"
)

const (
	cueRecordLen  = 24
	ltxtHeaderLen = 20
)

// Cue is a marker in the audio data, joined from a cue chunk record and the
// adtl members that share its cue point id.
type Cue struct {
	// Frame is the position of the marker in frames.
	Frame uint32
	// Length is the length of a region in frames, zero for a plain marker.
	Length uint32
	Label  string
	Note   string
	// Offset is the frame offset field of the cue record. Some recorders
	// store the marker position here and leave Frame zero.
	Offset uint32
}

type cueRecord struct {
	CuePointID  uint32
	Frame       uint32
	ChunkID     [4]byte
	ChunkStart  uint32
	BlockStart  uint32
	FrameOffset uint32
}

type ltxtHeader struct {
	CuePointID  uint32
	FrameLength uint32
	Purpose     [4]byte
	Country     uint16
	Language    uint16
	Dialect     uint16
	CodePage    uint16
}

type adtlText struct {
	label, note string
	length      uint32
	hasLabel    bool
	hasNote     bool
	hasLength   bool
}

func decodeCueRecords(body []byte) ([]cueRecord, error) {
	if len(body) < 4 {
		return nil, fmt.Errorf("%w: cue chunk of %d bytes", errShortChunk, len(body))
	}

	count := binary.LittleEndian.Uint32(body)
	if uint64(count)*cueRecordLen > uint64(len(body)-4) {
		return nil, fmt.Errorf("%w: %d cue points in %d bytes", errShortChunk, count, len(body))
	}

	records := make([]cueRecord, count)
	if err := binary.Read(bytes.NewReader(body[4:]), binary.LittleEndian, records); err != nil {
		return nil, fmt.Errorf("failed to read cue points: %w", err)
	}

	return records, nil
}

// decodeAdtl collects the first label, note and region length of each cue
// point id in an adtl LIST body.
func decodeAdtl(body []byte) (map[uint32]*adtlText, error) {
	texts := map[uint32]*adtlText{}

	entry := func(id uint32) *adtlText {
		t, ok := texts[id]
		if !ok {
			t = &adtlText{}
			texts[id] = t
		}

		return t
	}

	_, err := walkListForm(body, func(ch *riff.Chunk) error {
		switch FourCC(ch.ID) {
		case SigLabl, SigNote:
			if ch.Size < 4 {
				return nil
			}

			var id uint32
			if err := ch.ReadLE(&id); err != nil {
				return err
			}

			text, err := io.ReadAll(ch)
			if err != nil {
				return err
			}

			t := entry(id)
			if FourCC(ch.ID) == SigLabl && !t.hasLabel {
				t.label, t.hasLabel = decodeText(text), true
			} else if FourCC(ch.ID) == SigNote && !t.hasNote {
				t.note, t.hasNote = decodeText(text), true
			}
		case SigLtxt:
			if ch.Size < ltxtHeaderLen {
				return nil
			}

			var hdr ltxtHeader
			if err := ch.ReadLE(&hdr); err != nil {
				return err
			}

			t := entry(hdr.CuePointID)
			if !t.hasLength && FourCC(hdr.Purpose) == SigRgn {
				t.length, t.hasLength = hdr.FrameLength, true
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return texts, nil
}

// decodeCues joins a cue chunk body with an optional adtl LIST body.
func decodeCues(cueBody, adtlBody []byte) ([]Cue, error) {
	records, err := decodeCueRecords(cueBody)
	if err != nil {
		return nil, err
	}

	texts := map[uint32]*adtlText{}
	if adtlBody != nil {
		if texts, err = decodeAdtl(adtlBody); err != nil {
			return nil, err
		}
	}

	cues := make([]Cue, 0, len(records))
	for _, rec := range records {
		cue := Cue{Frame: rec.Frame, Offset: rec.FrameOffset}

		if t, ok := texts[rec.CuePointID]; ok {
			cue.Label = t.label
			cue.Note = t.note
			cue.Length = t.length
		}

		cues = append(cues, cue)
	}

	return cues, nil
}

// encodeCues builds the cue chunk body and the adtl LIST body for cues.
// Cue point ids are assigned from 1 in slice order. The adtl body is nil when
// no cue carries a label, note or length.
func encodeCues(cues []Cue) ([]byte, []byte) {
	cueBuf := bytes.NewBuffer(nil)
	_ = binary.Write(cueBuf, binary.LittleEndian, uint32(len(cues)))

	var members []listMember

	for i, cue := range cues {
		id := uint32(i + 1)

		_ = binary.Write(cueBuf, binary.LittleEndian, cueRecord{
			CuePointID:  id,
			Frame:       cue.Frame,
			ChunkID:     SigData,
			FrameOffset: cue.Offset,
		})

		if cue.Label != "" {
			members = append(members, listMember{ID: SigLabl, Data: textMember(id, cue.Label)})
		}

		if cue.Note != "" {
			members = append(members, listMember{ID: SigNote, Data: textMember(id, cue.Note)})
		}

		if cue.Length != 0 {
			ltxt := bytes.NewBuffer(nil)
			_ = binary.Write(ltxt, binary.LittleEndian, ltxtHeader{
				CuePointID:  id,
				FrameLength: cue.Length,
				Purpose:     SigRgn,
			})
			members = append(members, listMember{ID: SigLtxt, Data: ltxt.Bytes()})
		}
	}

	if len(members) == 0 {
		return cueBuf.Bytes(), nil
	}

	return cueBuf.Bytes(), encodeListForm(SigAdtl, members)
}

func textMember(id uint32, text string) []byte {
	b := binary.LittleEndian.AppendUint32(nil, id)
	b = append(b, encodeText(text)...)

	return append(b, 0x00)
}
