package bwav

import (
	"bytes"
	"encoding/binary"
)

const (
	cartVersionLen            = 4
	cartTitleLen              = 64
	cartArtistLen             = 64
	cartCutIDLen              = 64
	cartClientIDLen           = 64
	cartCategoryLen           = 64
	cartClassificationLen     = 64
	cartOutCueLen             = 64
	cartStartDateLen          = 10
	cartStartTimeLen          = 8
	cartEndDateLen            = 10
	cartEndTimeLen            = 8
	cartProducerAppIDLen      = 64
	cartProducerAppVersionLen = 64
	cartUserDefLen            = 64
	cartPostTimerCount        = 8
	cartReservedLen           = 276
	cartURLLen                = 1024
	cartFixedLen              = 2048
)

// CartTimer is one post timer of a cart chunk, a usage code such as "SEC1"
// and a sample offset.
type CartTimer struct {
	Usage FourCC
	Value uint32
}

// Cart is the content of an AES46 cart chunk.
type Cart struct {
	Version            string
	Title              string
	Artist             string
	CutID              string
	ClientID           string
	Category           string
	Classification     string
	OutCue             string
	StartDate          string
	StartTime          string
	EndDate            string
	EndTime            string
	ProducerAppID      string
	ProducerAppVersion string
	UserDef            string
	LevelReference     int32
	PostTimer          [cartPostTimerCount]CartTimer
	URL                string
	TagText            string
}

// UnmarshalBinary decodes a cart chunk body.
func (c *Cart) UnmarshalBinary(buf []byte) error {
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

	readFixedString := func(n int) string {
		return trimFixedText(take(n))
	}

	*c = Cart{}
	c.Version = readFixedString(cartVersionLen)
	c.Title = readFixedString(cartTitleLen)
	c.Artist = readFixedString(cartArtistLen)
	c.CutID = readFixedString(cartCutIDLen)
	c.ClientID = readFixedString(cartClientIDLen)
	c.Category = readFixedString(cartCategoryLen)
	c.Classification = readFixedString(cartClassificationLen)
	c.OutCue = readFixedString(cartOutCueLen)
	c.StartDate = readFixedString(cartStartDateLen)
	c.StartTime = readFixedString(cartStartTimeLen)
	c.EndDate = readFixedString(cartEndDateLen)
	c.EndTime = readFixedString(cartEndTimeLen)
	c.ProducerAppID = readFixedString(cartProducerAppIDLen)
	c.ProducerAppVersion = readFixedString(cartProducerAppVersionLen)
	c.UserDef = readFixedString(cartUserDefLen)
	c.LevelReference = int32(binary.LittleEndian.Uint32(take(4)))

	for i := range c.PostTimer {
		copy(c.PostTimer[i].Usage[:], take(4))
		c.PostTimer[i].Value = binary.LittleEndian.Uint32(take(4))
	}

	_ = take(cartReservedLen)

	if offset < len(buf) {
		c.URL = decodeText(buf[offset:min(offset+cartURLLen, len(buf))])
		offset += cartURLLen
	}

	if offset < len(buf) {
		c.TagText = decodeText(bytes.TrimRight(buf[offset:], "\x00"))
	}

	return nil
}

// MarshalBinary encodes c as a cart chunk body.
func (c Cart) MarshalBinary() ([]byte, error) {
	payload := bytes.NewBuffer(make([]byte, 0, cartFixedLen+len(c.TagText)))

	for _, f := range []struct {
		value string
		size  int
	}{
		{c.Version, cartVersionLen},
		{c.Title, cartTitleLen},
		{c.Artist, cartArtistLen},
		{c.CutID, cartCutIDLen},
		{c.ClientID, cartClientIDLen},
		{c.Category, cartCategoryLen},
		{c.Classification, cartClassificationLen},
		{c.OutCue, cartOutCueLen},
		{c.StartDate, cartStartDateLen},
		{c.StartTime, cartStartTimeLen},
		{c.EndDate, cartEndDateLen},
		{c.EndTime, cartEndTimeLen},
		{c.ProducerAppID, cartProducerAppIDLen},
		{c.ProducerAppVersion, cartProducerAppVersionLen},
		{c.UserDef, cartUserDefLen},
	} {
		payload.Write(encodeFixedText(f.value, f.size))
	}

	_ = binary.Write(payload, binary.LittleEndian, c.LevelReference)

	for _, t := range c.PostTimer {
		payload.Write(t.Usage[:])
		_ = binary.Write(payload, binary.LittleEndian, t.Value)
	}

	payload.Write(make([]byte, cartReservedLen))
	payload.Write(encodeFixedText(c.URL, cartURLLen))

	if c.TagText != "" {
		payload.Write(encodeText(c.TagText))
	}

	return payload.Bytes(), nil
}
