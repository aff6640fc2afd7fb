package bwav

import (
	"io"

	"github.com/go-audio/riff"
)

var (
	// See http://bwfmetaedit.sourceforge.net/listinfo.html
	markerIART    = FourCC{'I', 'A', 'R', 'T'}
	markerISFT    = FourCC{'I', 'S', 'F', 'T'}
	markerICRD    = FourCC{'I', 'C', 'R', 'D'}
	markerICOP    = FourCC{'I', 'C', 'O', 'P'}
	markerIARL    = FourCC{'I', 'A', 'R', 'L'}
	markerINAM    = FourCC{'I', 'N', 'A', 'M'}
	markerIENG    = FourCC{'I', 'E', 'N', 'G'}
	markerIGNR    = FourCC{'I', 'G', 'N', 'R'}
	markerIPRD    = FourCC{'I', 'P', 'R', 'D'}
	markerISRC    = FourCC{'I', 'S', 'R', 'C'}
	markerISBJ    = FourCC{'I', 'S', 'B', 'J'}
	markerICMT    = FourCC{'I', 'C', 'M', 'T'}
	markerITRK    = FourCC{'I', 'T', 'R', 'K'}
	markerITRKBug = FourCC{'i', 't', 'r', 'k'}
	markerITCH    = FourCC{'I', 'T', 'C', 'H'}
	markerIKEY    = FourCC{'I', 'K', 'E', 'Y'}
	markerIMED    = FourCC{'I', 'M', 'E', 'D'}
)

// Info holds the text fields of a LIST/INFO chunk.
type Info struct {
	Artist       string
	Comments     string
	Copyright    string
	CreationDate string
	Engineer     string
	Technician   string
	Genre        string
	Keywords     string
	Medium       string
	Title        string
	Product      string
	Subject      string
	Software     string
	Source       string
	Location     string
	TrackNbr     string
}

func (i *Info) fields() []struct {
	marker FourCC
	value  *string
} {
	return []struct {
		marker FourCC
		value  *string
	}{
		{markerIART, &i.Artist},
		{markerICMT, &i.Comments},
		{markerICOP, &i.Copyright},
		{markerICRD, &i.CreationDate},
		{markerIENG, &i.Engineer},
		{markerITCH, &i.Technician},
		{markerIGNR, &i.Genre},
		{markerIKEY, &i.Keywords},
		{markerIMED, &i.Medium},
		{markerINAM, &i.Title},
		{markerIPRD, &i.Product},
		{markerISBJ, &i.Subject},
		{markerISFT, &i.Software},
		{markerISRC, &i.Source},
		{markerIARL, &i.Location},
		{markerITRK, &i.TrackNbr},
	}
}

// IsZero reports whether no field is set.
func (i Info) IsZero() bool {
	return i == Info{}
}

// decodeInfo reads the members of a LIST body of form INFO. Unknown markers
// are ignored.
func decodeInfo(body []byte) (*Info, error) {
	info := &Info{}
	fields := info.fields()

	_, err := walkListForm(body, func(ch *riff.Chunk) error {
		id := FourCC(ch.ID)
		if id == markerITRKBug {
			id = markerITRK
		}

		for _, f := range fields {
			if f.marker != id {
				continue
			}

			text, err := io.ReadAll(ch)
			if err != nil {
				return err
			}

			*f.value = decodeText(text)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return info, nil
}

// encodeInfo builds a LIST body of form INFO holding the set fields.
func encodeInfo(info Info) []byte {
	var members []listMember

	for _, f := range info.fields() {
		if *f.value == "" {
			continue
		}

		members = append(members, listMember{ID: f.marker, Data: append(encodeText(*f.value), 0x00)})
	}

	return encodeListForm(SigInfo, members)
}
