package bwav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

const (
	bextDescriptionLen         = 256
	bextOriginatorLen          = 32
	bextOriginatorReferenceLen = 32
	bextOriginationDateLen     = 10
	bextOriginationTimeLen     = 8
	bextUMIDLen                = 64
	bextLoudnessLen            = 10
	bextReservedLen            = 180
	bextFixedLen               = 602

	bextDateLayout = "2006-01-02"
	bextTimeLayout = "15:04:05"
)

// BroadcastExtension is the content of a Broadcast-WAV bext chunk (EBU Tech
// 3285).
type BroadcastExtension struct {
	Description         string
	Originator          string
	OriginatorReference string
	OriginationDate     string
	OriginationTime     string
	// TimeReference is the sample count since midnight of the first sample.
	TimeReference uint64
	Version       uint16
	// UMID is the SMPTE 330M UMID, present from version 1.
	UMID []byte
	// Loudness is present from version 2.
	Loudness      *Loudness
	CodingHistory string
}

// Loudness holds the EBU R 128 values of a version 2 bext chunk.
type Loudness struct {
	IntegratedLoudness   float32
	LoudnessRange        float32
	MaxTruePeakLevel     float32
	MaxMomentaryLoudness float32
	MaxShortTermLoudness float32
}

// SetOrigination fills the origination date and time from t.
func (b *BroadcastExtension) SetOrigination(t time.Time) {
	b.OriginationDate = t.Format(bextDateLayout)
	b.OriginationTime = t.Format(bextTimeLayout)
}

// Origination parses the origination date and time in the passed location.
func (b *BroadcastExtension) Origination(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(bextDateLayout+" "+bextTimeLayout, b.OriginationDate+" "+b.OriginationTime, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse origination: %w", err)
	}

	return t, nil
}

// UnmarshalBinary decodes a bext chunk body. Short bodies written by old
// tools decode with the missing fields zeroed.
func (b *BroadcastExtension) UnmarshalBinary(buf []byte) error {
	offset := 0

	take := func(n int) []byte {
		out := make([]byte, n)
		if offset < len(buf) {
			end := min(offset+n, len(buf))
			copy(out, buf[offset:end])
		}

		offset += n

		return out
	}

	*b = BroadcastExtension{
		Description:         trimFixedText(take(bextDescriptionLen)),
		Originator:          trimFixedText(take(bextOriginatorLen)),
		OriginatorReference: trimFixedText(take(bextOriginatorReferenceLen)),
		OriginationDate:     trimFixedText(take(bextOriginationDateLen)),
		OriginationTime:     trimFixedText(take(bextOriginationTimeLen)),
	}

	b.TimeReference = binary.LittleEndian.Uint64(take(8))
	b.Version = binary.LittleEndian.Uint16(take(2))

	umid := take(bextUMIDLen)
	if b.Version >= 1 {
		b.UMID = umid
	}

	loudness := take(bextLoudnessLen)
	if b.Version >= 2 {
		field := func(i int) float32 {
			return float32(int16(binary.LittleEndian.Uint16(loudness[i*2:]))) / 100
		}

		b.Loudness = &Loudness{
			IntegratedLoudness:   field(0),
			LoudnessRange:        field(1),
			MaxTruePeakLevel:     field(2),
			MaxMomentaryLoudness: field(3),
			MaxShortTermLoudness: field(4),
		}
	}

	_ = take(bextReservedLen)

	if offset < len(buf) {
		b.CodingHistory = decodeText(bytes.TrimRight(buf[offset:], "\x00"))
	}

	return nil
}

// MarshalBinary encodes b as a bext chunk body. The version is raised to
// cover the UMID and loudness fields that are set.
func (b BroadcastExtension) MarshalBinary() ([]byte, error) {
	payload := bytes.NewBuffer(make([]byte, 0, bextFixedLen+len(b.CodingHistory)))

	payload.Write(encodeFixedText(b.Description, bextDescriptionLen))
	payload.Write(encodeFixedText(b.Originator, bextOriginatorLen))
	payload.Write(encodeFixedText(b.OriginatorReference, bextOriginatorReferenceLen))
	payload.Write(encodeFixedText(b.OriginationDate, bextOriginationDateLen))
	payload.Write(encodeFixedText(b.OriginationTime, bextOriginationTimeLen))

	version := b.Version
	if b.UMID != nil {
		version = max(version, 1)
	}

	if b.Loudness != nil {
		version = max(version, 2)
	}

	_ = binary.Write(payload, binary.LittleEndian, b.TimeReference)
	_ = binary.Write(payload, binary.LittleEndian, version)

	umid := make([]byte, bextUMIDLen)
	copy(umid, b.UMID)
	payload.Write(umid)

	loudness := make([]int16, bextLoudnessLen/2)
	if l := b.Loudness; l != nil {
		for i, v := range []float32{l.IntegratedLoudness, l.LoudnessRange, l.MaxTruePeakLevel, l.MaxMomentaryLoudness, l.MaxShortTermLoudness} {
			loudness[i] = int16(clampFloat64(math.Round(float64(v)*100), math.MinInt16, math.MaxInt16))
		}
	}

	_ = binary.Write(payload, binary.LittleEndian, loudness)

	payload.Write(make([]byte, bextReservedLen))
	payload.Write(encodeText(b.CodingHistory))

	return payload.Bytes(), nil
}
