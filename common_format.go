package bwav

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

const (
	TagPCM        uint16 = 0x0001
	TagIEEEFloat  uint16 = 0x0003
	TagMPEG       uint16 = 0x0050
	TagExtensible uint16 = 0xFFFE
)

// Sub-format GUIDs are held in the byte order they have in a fmt chunk.
var (
	SubFormatPCM       = basicSubFormat(TagPCM)
	SubFormatIEEEFloat = basicSubFormat(TagIEEEFloat)
	SubFormatMPEG      = basicSubFormat(TagMPEG)

	SubFormatAmbisonicBPCM = uuid.UUID{
		0x01, 0x00, 0x00, 0x00, 0x21, 0x07, 0xd3, 0x11,
		0x86, 0x44, 0xc8, 0xc1, 0xca, 0x00, 0x00, 0x00,
	}
	SubFormatAmbisonicBFloat = uuid.UUID{
		0x03, 0x00, 0x00, 0x00, 0x21, 0x07, 0xd3, 0x11,
		0x86, 0x44, 0xc8, 0xc1, 0xca, 0x00, 0x00, 0x00,
	}
)

// basicSubFormat builds the KSDATAFORMAT GUID a basic format tag maps to,
// {XXXXXXXX-0000-0010-8000-00AA00389B71}.
func basicSubFormat(tag uint16) uuid.UUID {
	g := uuid.UUID{
		0, 0, 0, 0, 0x00, 0x00, 0x10, 0x00,
		0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71,
	}
	binary.LittleEndian.PutUint32(g[:4], uint32(tag))

	return g
}

// FormatKind names the codec a format tag and sub-format resolve to.
type FormatKind int

const (
	KindIntegerPCM FormatKind = iota + 1
	KindIEEEFloatPCM
	KindMPEG
	KindAmbisonicBIntegerPCM
	KindAmbisonicBFloatPCM
	KindUnknownBasic
	KindUnknownExtended
)

// CommonFormat is the resolved codec of a Format. Tag is set for
// KindUnknownBasic and GUID for KindUnknownExtended so unknown formats
// survive a round trip.
type CommonFormat struct {
	Kind FormatKind
	Tag  uint16
	GUID uuid.UUID
}

// MakeCommonFormat resolves a basic tag and, for extensible formats, its
// sub-format GUID.
func MakeCommonFormat(tag uint16, guid *uuid.UUID) CommonFormat {
	switch {
	case tag == TagPCM:
		return CommonFormat{Kind: KindIntegerPCM}
	case tag == TagIEEEFloat:
		return CommonFormat{Kind: KindIEEEFloatPCM}
	case tag == TagMPEG:
		return CommonFormat{Kind: KindMPEG}
	case tag == TagExtensible && guid != nil:
		switch *guid {
		case SubFormatPCM:
			return CommonFormat{Kind: KindIntegerPCM}
		case SubFormatIEEEFloat:
			return CommonFormat{Kind: KindIEEEFloatPCM}
		case SubFormatMPEG:
			return CommonFormat{Kind: KindMPEG}
		case SubFormatAmbisonicBPCM:
			return CommonFormat{Kind: KindAmbisonicBIntegerPCM}
		case SubFormatAmbisonicBFloat:
			return CommonFormat{Kind: KindAmbisonicBFloatPCM}
		default:
			return CommonFormat{Kind: KindUnknownExtended, GUID: *guid}
		}
	default:
		return CommonFormat{Kind: KindUnknownBasic, Tag: tag}
	}
}

// Take returns the format tag and sub-format GUID that encode c in an
// extensible fmt chunk.
func (c CommonFormat) Take() (uint16, uuid.UUID) {
	switch c.Kind {
	case KindIntegerPCM:
		return TagPCM, SubFormatPCM
	case KindIEEEFloatPCM:
		return TagIEEEFloat, SubFormatIEEEFloat
	case KindMPEG:
		return TagMPEG, SubFormatMPEG
	case KindAmbisonicBIntegerPCM:
		return TagExtensible, SubFormatAmbisonicBPCM
	case KindAmbisonicBFloatPCM:
		return TagExtensible, SubFormatAmbisonicBFloat
	case KindUnknownExtended:
		return TagExtensible, c.GUID
	default:
		return c.Tag, basicSubFormat(c.Tag)
	}
}

func (c CommonFormat) String() string {
	switch c.Kind {
	case KindIntegerPCM:
		return "integer PCM"
	case KindIEEEFloatPCM:
		return "IEEE float PCM"
	case KindMPEG:
		return "MPEG"
	case KindAmbisonicBIntegerPCM:
		return "ambisonic B-format integer PCM"
	case KindAmbisonicBFloatPCM:
		return "ambisonic B-format float PCM"
	case KindUnknownExtended:
		return fmt.Sprintf("unknown extended GUID %s", c.GUID)
	default:
		return fmt.Sprintf("unknown basic tag %d", c.Tag)
	}
}
