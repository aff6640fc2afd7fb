package bwav

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	chnaHeaderLen   = 4
	chnaEntryLen    = 40
	chnaTrackUIDLen = 12
	chnaTrackRefLen = 14
	chnaPackRefLen  = 11
)

// ChnaEntry binds a track of the file, counted from 1, to ADM identifiers.
type ChnaEntry struct {
	TrackIndex uint16
	ADMAudioID
}

func decodeChna(body []byte) ([]ChnaEntry, error) {
	if len(body) < chnaHeaderLen {
		return nil, fmt.Errorf("%w: chna chunk of %d bytes", errShortChunk, len(body))
	}

	count := int(binary.LittleEndian.Uint16(body[2:]))
	if chnaHeaderLen+count*chnaEntryLen > len(body) {
		return nil, fmt.Errorf("%w: %d chna entries in %d bytes", errShortChunk, count, len(body))
	}

	entries := make([]ChnaEntry, 0, count)

	for i := range count {
		rec := body[chnaHeaderLen+i*chnaEntryLen:]
		at := 2

		field := func(n int) string {
			s := decodeText(rec[at : at+n])
			at += n

			return s
		}

		entries = append(entries, ChnaEntry{
			TrackIndex: binary.LittleEndian.Uint16(rec),
			ADMAudioID: ADMAudioID{
				TrackUID:         field(chnaTrackUIDLen),
				ChannelFormatRef: field(chnaTrackRefLen),
				PackRef:          field(chnaPackRefLen),
			},
		})
	}

	return entries, nil
}

func encodeChna(entries []ChnaEntry) []byte {
	tracks := map[uint16]struct{}{}
	for _, e := range entries {
		tracks[e.TrackIndex] = struct{}{}
	}

	buf := bytes.NewBuffer(nil)
	_ = binary.Write(buf, binary.LittleEndian, uint16(len(tracks)))
	_ = binary.Write(buf, binary.LittleEndian, uint16(len(entries)))

	for _, e := range entries {
		_ = binary.Write(buf, binary.LittleEndian, e.TrackIndex)
		buf.Write(encodeFixedText(e.TrackUID, chnaTrackUIDLen))
		buf.Write(encodeFixedText(e.ChannelFormatRef, chnaTrackRefLen))
		buf.Write(encodeFixedText(e.PackRef, chnaPackRefLen))
		buf.WriteByte(0)
	}

	return buf.Bytes()
}

// applyChna attaches the ADM ids of entries to the channels they name.
func applyChna(channels []ChannelDescriptor, entries []ChnaEntry) {
	for _, e := range entries {
		idx := int(e.TrackIndex) - 1
		if idx < 0 || idx >= len(channels) {
			continue
		}

		channels[idx].ADMAudioIDs = append(channels[idx].ADMAudioIDs, e.ADMAudioID)
	}
}
