package bwav

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

const (
	fmtBasicSize    = 16
	fmtExtendedSize = 40
	fmtCbSize       = 22
)

// Format is the content of a fmt chunk.
type Format struct {
	Tag            uint16
	ChannelCount   uint16
	SampleRate     uint32
	BytesPerSecond uint32
	BlockAlignment uint16
	// BitsPerSample is the container width of each sample.
	BitsPerSample uint16
	// Extended is set for WAVE_FORMAT_EXTENSIBLE formats.
	Extended *FormatExtended
}

// FormatExtended is the WAVE_FORMAT_EXTENSIBLE extension of a fmt chunk.
type FormatExtended struct {
	ValidBitsPerSample uint16
	ChannelMask        uint32
	TypeGUID           uuid.UUID
}

const (
	monoMask   = uint32(FrontCenter)
	stereoMask = uint32(FrontLeft | FrontRight)
)

func containerBits(bits uint16) uint16 {
	return (bits + 7) / 8 * 8
}

// defaultMask is the implicit layout of a channel count, the first count
// speaker positions.
func defaultMask(channels uint16) uint32 {
	switch channels {
	case 1:
		return monoMask
	case 2:
		return stereoMask
	}

	if channels >= speakerBitCount {
		return 1<<speakerBitCount - 1
	}

	return 1<<channels - 1
}

func newFormat(kind FormatKind, sampleRate uint32, bits uint16, channels uint16, mask uint32) Format {
	container := containerBits(bits)
	blockAlign := container / 8 * channels

	tag, guid := CommonFormat{Kind: kind}.Take()

	f := Format{
		Tag:            tag,
		ChannelCount:   channels,
		SampleRate:     sampleRate,
		BytesPerSecond: sampleRate * uint32(blockAlign),
		BlockAlignment: blockAlign,
		BitsPerSample:  container,
	}

	needsExtended := channels > 2 || bits != container || mask != defaultMask(channels) || tag == TagExtensible
	if needsExtended {
		f.Tag = TagExtensible
		f.Extended = &FormatExtended{
			ValidBitsPerSample: bits,
			ChannelMask:        mask,
			TypeGUID:           guid,
		}
	}

	return f
}

// NewPCMFormat returns an integer PCM format with the implicit speaker layout
// of the channel count.
func NewPCMFormat(sampleRate uint32, bits uint16, channels uint16) Format {
	return newFormat(KindIntegerPCM, sampleRate, bits, channels, defaultMask(channels))
}

// NewPCMFormatMono returns a single channel integer PCM format.
func NewPCMFormatMono(sampleRate uint32, bits uint16) Format {
	return NewPCMFormat(sampleRate, bits, 1)
}

// NewPCMFormatStereo returns a two channel integer PCM format.
func NewPCMFormatStereo(sampleRate uint32, bits uint16) Format {
	return NewPCMFormat(sampleRate, bits, 2)
}

// NewPCMFormatMultichannel returns an integer PCM format with one channel per
// speaker bit set in mask.
func NewPCMFormatMultichannel(sampleRate uint32, bits uint16, mask uint32) Format {
	return newFormat(KindIntegerPCM, sampleRate, bits, speakerCount(mask), mask)
}

// NewFloatFormat returns a 32-bit IEEE float format.
func NewFloatFormat(sampleRate uint32, channels uint16) Format {
	return newFormat(KindIEEEFloatPCM, sampleRate, 32, channels, defaultMask(channels))
}

// NewFloatFormatMultichannel returns a 32-bit IEEE float format with one
// channel per speaker bit set in mask.
func NewFloatFormatMultichannel(sampleRate uint32, mask uint32) Format {
	return newFormat(KindIEEEFloatPCM, sampleRate, 32, speakerCount(mask), mask)
}

func speakerCount(mask uint32) uint16 {
	var channels uint16

	for bit := range speakerBitCount {
		if mask&(1<<bit) != 0 {
			channels++
		}
	}

	return channels
}

// NewAmbisonicFormat returns an ambisonic B-format. A bit depth of 32 selects
// the float sub-format, anything else integer PCM. Ambisonic channels carry no
// speaker positions.
func NewAmbisonicFormat(sampleRate uint32, bits uint16, channels uint16) Format {
	kind := KindAmbisonicBIntegerPCM
	if bits == 32 {
		kind = KindAmbisonicBFloatPCM
	}

	return newFormat(kind, sampleRate, bits, channels, 0)
}

// CommonFormat resolves the codec of f.
func (f Format) CommonFormat() CommonFormat {
	if f.Extended != nil {
		return MakeCommonFormat(f.Tag, &f.Extended.TypeGUID)
	}

	return MakeCommonFormat(f.Tag, nil)
}

// ValidBitsPerSample returns the number of significant bits in each sample.
func (f Format) ValidBitsPerSample() uint16 {
	if f.Extended != nil && f.Extended.ValidBitsPerSample != 0 {
		return f.Extended.ValidBitsPerSample
	}

	return f.BitsPerSample
}

// ChannelMask returns the speaker mask, implicit for basic mono and stereo.
func (f Format) ChannelMask() uint32 {
	if f.Extended != nil {
		return f.Extended.ChannelMask
	}

	if f.ChannelCount <= 2 {
		return defaultMask(f.ChannelCount)
	}

	return 0
}

// Channels derives a descriptor for each channel from the channel mask.
func (f Format) Channels() []ChannelDescriptor {
	var speakers []ChannelMask

	switch {
	case f.ChannelCount == 1:
		speakers = []ChannelMask{FrontCenter}
	case f.ChannelCount == 2:
		speakers = []ChannelMask{FrontLeft, FrontRight}
	default:
		speakers = ChannelMasks(f.ChannelMask(), int(f.ChannelCount))
	}

	out := make([]ChannelDescriptor, len(speakers))
	for i, s := range speakers {
		out[i] = ChannelDescriptor{Index: uint16(i), Speaker: s}
	}

	return out
}

// BufferLen returns the number of samples in frames frames.
func (f Format) BufferLen(frames int) int {
	return frames * int(f.ChannelCount)
}

// FrameCount returns the number of whole frames in byteLen bytes of data.
func (f Format) FrameCount(byteLen uint64) uint64 {
	if f.BlockAlignment == 0 {
		return 0
	}

	return byteLen / uint64(f.BlockAlignment)
}

func (f Format) String() string {
	return fmt.Sprintf("%s, %d Hz, %d ch, %d bit", f.CommonFormat(), f.SampleRate, f.ChannelCount, f.ValidBitsPerSample())
}

// MarshalBinary encodes f as a fmt chunk body.
func (f Format) MarshalBinary() ([]byte, error) {
	size := fmtBasicSize
	if f.Extended != nil {
		size = fmtExtendedSize
	}

	b := make([]byte, size)
	binary.LittleEndian.PutUint16(b[0:], f.Tag)
	binary.LittleEndian.PutUint16(b[2:], f.ChannelCount)
	binary.LittleEndian.PutUint32(b[4:], f.SampleRate)
	binary.LittleEndian.PutUint32(b[8:], f.BytesPerSecond)
	binary.LittleEndian.PutUint16(b[12:], f.BlockAlignment)
	binary.LittleEndian.PutUint16(b[14:], f.BitsPerSample)

	if f.Extended != nil {
		binary.LittleEndian.PutUint16(b[16:], fmtCbSize)
		binary.LittleEndian.PutUint16(b[18:], f.Extended.ValidBitsPerSample)
		binary.LittleEndian.PutUint32(b[20:], f.Extended.ChannelMask)
		copy(b[24:], f.Extended.TypeGUID[:])
	}

	return b, nil
}

// UnmarshalBinary decodes a fmt chunk body. An extensible tag requires the
// full 22-byte extension.
func (f *Format) UnmarshalBinary(b []byte) error {
	if len(b) < fmtBasicSize {
		return fmt.Errorf("%w: %d bytes", ErrInvalidFormatChunk, len(b))
	}

	*f = Format{
		Tag:            binary.LittleEndian.Uint16(b[0:]),
		ChannelCount:   binary.LittleEndian.Uint16(b[2:]),
		SampleRate:     binary.LittleEndian.Uint32(b[4:]),
		BytesPerSecond: binary.LittleEndian.Uint32(b[8:]),
		BlockAlignment: binary.LittleEndian.Uint16(b[12:]),
		BitsPerSample:  binary.LittleEndian.Uint16(b[14:]),
	}

	if f.Tag != TagExtensible {
		return nil
	}

	if len(b) < fmtExtendedSize {
		return fmt.Errorf("%w: extensible format with %d bytes", ErrInvalidFormatChunk, len(b))
	}

	if cb := binary.LittleEndian.Uint16(b[16:]); cb < fmtCbSize {
		return fmt.Errorf("%w: extension size %d", ErrInvalidFormatChunk, cb)
	}

	ext := &FormatExtended{
		ValidBitsPerSample: binary.LittleEndian.Uint16(b[18:]),
		ChannelMask:        binary.LittleEndian.Uint32(b[20:]),
	}
	copy(ext.TypeGUID[:], b[24:40])
	f.Extended = ext

	return nil
}
