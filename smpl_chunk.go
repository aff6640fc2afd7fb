package bwav

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// smpl chunk is documented here:
// https://sites.google.com/site/musicgapi/technical-documents/wav-file-format#smpl

const (
	smplHeaderLen = 36
	smplLoopLen   = 24
)

// LoopType is the playback mode of a sampler loop.
type LoopType uint32

const (
	LoopForward LoopType = iota
	LoopAlternating
	LoopBackward
)

// SampleLoop is one loop of a smpl chunk. Start and End are sample offsets,
// End inclusive.
type SampleLoop struct {
	CuePointID uint32
	Type       LoopType
	Start      uint32
	End        uint32
	// Fraction is the fine tuning of the loop end, in units of 1/2^32 sample.
	Fraction uint32
	// PlayCount is the number of times to play the loop, zero for infinite.
	PlayCount uint32
}

// Sampler is the content of a smpl chunk, the playback hints of sampler
// instruments.
type Sampler struct {
	Manufacturer uint32
	Product      uint32
	// SamplePeriod is the duration of one sample in nanoseconds.
	SamplePeriod  uint32
	MIDIUnityNote uint32
	// MIDIPitchFraction is the fine tuning above the unity note, in units of
	// 1/2^32 semitone.
	MIDIPitchFraction uint32
	SMPTEFormat       uint32
	SMPTEOffset       uint32
	Loops             []SampleLoop
	// SamplerData is the manufacturer specific trailer.
	SamplerData []byte
}

type smplHeader struct {
	Manufacturer      uint32
	Product           uint32
	SamplePeriod      uint32
	MIDIUnityNote     uint32
	MIDIPitchFraction uint32
	SMPTEFormat       uint32
	SMPTEOffset       uint32
	NumSampleLoops    uint32
	SamplerDataLen    uint32
}

// UnmarshalBinary decodes a smpl chunk body. A sampler data length running
// past the body is cut to what the body holds.
func (s *Sampler) UnmarshalBinary(buf []byte) error {
	var hdr smplHeader
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("%w: smpl chunk of %d bytes", errShortChunk, len(buf))
	}

	loopsEnd := smplHeaderLen + uint64(hdr.NumSampleLoops)*smplLoopLen
	if loopsEnd > uint64(len(buf)) {
		return fmt.Errorf("%w: %d sample loops in %d bytes", errShortChunk, hdr.NumSampleLoops, len(buf))
	}

	*s = Sampler{
		Manufacturer:      hdr.Manufacturer,
		Product:           hdr.Product,
		SamplePeriod:      hdr.SamplePeriod,
		MIDIUnityNote:     hdr.MIDIUnityNote,
		MIDIPitchFraction: hdr.MIDIPitchFraction,
		SMPTEFormat:       hdr.SMPTEFormat,
		SMPTEOffset:       hdr.SMPTEOffset,
	}

	if hdr.NumSampleLoops > 0 {
		s.Loops = make([]SampleLoop, hdr.NumSampleLoops)

		loops := bytes.NewReader(buf[smplHeaderLen:loopsEnd])
		if err := binary.Read(loops, binary.LittleEndian, s.Loops); err != nil {
			return fmt.Errorf("failed to read sample loops: %w", err)
		}
	}

	if trailer := buf[loopsEnd:]; len(trailer) > 0 && hdr.SamplerDataLen > 0 {
		n := min(uint64(hdr.SamplerDataLen), uint64(len(trailer)))
		s.SamplerData = append([]byte(nil), trailer[:n]...)
	}

	return nil
}

// MarshalBinary encodes s as a smpl chunk body.
func (s Sampler) MarshalBinary() ([]byte, error) {
	hdr := smplHeader{
		Manufacturer:      s.Manufacturer,
		Product:           s.Product,
		SamplePeriod:      s.SamplePeriod,
		MIDIUnityNote:     s.MIDIUnityNote,
		MIDIPitchFraction: s.MIDIPitchFraction,
		SMPTEFormat:       s.SMPTEFormat,
		SMPTEOffset:       s.SMPTEOffset,
		NumSampleLoops:    uint32(len(s.Loops)),
		SamplerDataLen:    uint32(len(s.SamplerData)),
	}

	buf := bytes.NewBuffer(make([]byte, 0, smplHeaderLen+len(s.Loops)*smplLoopLen+len(s.SamplerData)))

	if err := binary.Write(buf, binary.LittleEndian, hdr); err != nil {
		return nil, err
	}

	if err := binary.Write(buf, binary.LittleEndian, s.Loops); err != nil {
		return nil, err
	}

	buf.Write(s.SamplerData)

	return buf.Bytes(), nil
}
