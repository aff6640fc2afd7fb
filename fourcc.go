package bwav

import (
	"fmt"
	"strconv"

	"github.com/go-audio/riff"
)

// FourCC is a four character code identifying a chunk or a form type.
type FourCC [4]byte

var (
	SigRIFF = FourCC(riff.RiffID)
	SigRF64 = FourCC{'R', 'F', '6', '4'}
	SigBW64 = FourCC{'B', 'W', '6', '4'}
	SigWAVE = FourCC(riff.WavFormatID)
	SigDS64 = FourCC{'d', 's', '6', '4'}
	SigFmt  = FourCC(riff.FmtID)
	SigData = FourCC(riff.DataFormatID)
	SigFact = FourCC{'f', 'a', 'c', 't'}

	SigBext = FourCC{'b', 'e', 'x', 't'}
	SigCart = FourCC{'c', 'a', 'r', 't'}
	SigIXML = FourCC{'i', 'X', 'M', 'L'}
	SigAXML = FourCC{'a', 'x', 'm', 'l'}
	SigChna = FourCC{'c', 'h', 'n', 'a'}
	SigSmpl = FourCC{'s', 'm', 'p', 'l'}

	SigJunk = FourCC{'J', 'U', 'N', 'K'}
	SigFllr = FourCC{'F', 'L', 'L', 'R'}

	SigList = FourCC{'L', 'I', 'S', 'T'}
	SigInfo = FourCC{'I', 'N', 'F', 'O'}
	SigCue  = FourCC{'c', 'u', 'e', ' '}
	SigAdtl = FourCC{'a', 'd', 't', 'l'}
	SigLabl = FourCC{'l', 'a', 'b', 'l'}
	SigNote = FourCC{'n', 'o', 't', 'e'}
	SigLtxt = FourCC{'l', 't', 'x', 't'}
	SigRgn  = FourCC{'r', 'g', 'n', ' '}
)

// ParseFourCC converts a four byte string into a FourCC.
func ParseFourCC(s string) (FourCC, error) {
	var f FourCC
	if len(s) != len(f) {
		return f, fmt.Errorf("fourcc %q must be exactly 4 bytes", s)
	}

	copy(f[:], s)

	return f, nil
}

func (f FourCC) String() string {
	for _, c := range f {
		if c < 0x20 || c > 0x7e {
			return fmt.Sprintf("0x%02x%02x%02x%02x", f[0], f[1], f[2], f[3])
		}
	}

	return string(f[:])
}

// GoString quotes the code so trailing spaces stay visible.
func (f FourCC) GoString() string {
	return "FourCC(" + strconv.Quote(f.String()) + ")"
}
