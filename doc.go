// Package bwav reads and writes WAVE audio files, including Broadcast-WAV
// (bext) and the 64-bit RF64/BW64 forms used for files larger than 4 GiB.
//
// A Reader parses the chunk directory once when it is opened and then serves
// metadata (format, bext, cart, smpl, LIST/INFO, cue points, iXML, axml,
// chna) in any order by seeking to the chunk in question. Audio frames are
// read with a FrameReader, obtained from Reader.FrameReader, which takes over
// the underlying stream:
//
//	r, err := bwav.Open("take1.wav")
//	...
//	format, _ := r.Format()
//	fr, _ := r.FrameReader()
//	buf := make([]int16, 1024*int(format.ChannelCount))
//	n, _ := fr.ReadInt16(buf)
//
// A Writer appends chunks sequentially. It reserves room for a ds64 chunk up
// front and promotes the file to RF64 in place once the form grows past the
// 32-bit size limit, so callers never need to know the final length ahead of
// time.
//
// Supported sample encodings are integer PCM (8, 16, 24 and 32-bit) and IEEE
// float (32 and 64-bit).
package bwav
