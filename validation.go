package bwav

import (
	"fmt"
	"slices"
)

// ValidateReadable checks the file holds a fmt and a data chunk, the fmt
// chunk first.
func (rd *Reader) ValidateReadable() error {
	fmtChunk, err := rd.ChunkExtent(SigFmt, 0)
	if err != nil {
		return err
	}

	data, err := rd.ChunkExtent(SigData, 0)
	if err != nil {
		return err
	}

	if fmtChunk.Start > data.Start {
		return fmt.Errorf("%w: fmt at %d, data at %d", ErrFmtChunkAfterData, fmtChunk.Start, data.Start)
	}

	return nil
}

// ValidateMinimal checks the file is a plain RIFF holding nothing but a fmt
// and a data chunk.
func (rd *Reader) ValidateMinimal() error {
	if err := rd.ValidateReadable(); err != nil {
		return err
	}

	sigs := make([]FourCC, len(rd.chunks))
	for i, c := range rd.chunks {
		sigs[i] = c.Signature
	}

	if rd.form != SigRIFF || !slices.Equal(sigs, []FourCC{SigFmt, SigData}) {
		return fmt.Errorf("%w: %s form with chunks %v", ErrNotMinimalWaveFile, rd.form, sigs)
	}

	return nil
}

// ValidateBroadcastWave checks the file is readable and carries a bext chunk.
func (rd *Reader) ValidateBroadcastWave() error {
	if err := rd.ValidateReadable(); err != nil {
		return err
	}

	_, err := rd.ChunkExtent(SigBext, 0)

	return err
}

// ValidateDataChunkAlignment checks the audio data starts at 0x4000.
func (rd *Reader) ValidateDataChunkAlignment() error {
	if err := rd.ValidateReadable(); err != nil {
		return err
	}

	data, err := rd.ChunkExtent(SigData, 0)
	if err != nil {
		return err
	}

	if data.Start != defaultDataAlignment {
		return fmt.Errorf("%w: data starts at %#x", ErrDataChunkNotAligned, data.Start)
	}

	return nil
}

// ValidatePreparedForAppend checks audio can be appended in place: the file
// leads with JUNK or FLLR chunks large enough to be rewritten as ds64 and ends
// with the data chunk.
func (rd *Reader) ValidatePreparedForAppend() error {
	if err := rd.ValidateReadable(); err != nil {
		return err
	}

	var filler uint64

	for i, c := range rd.chunks {
		if c.Signature != SigJunk && c.Signature != SigFllr {
			break
		}

		// Chunks past the first can be merged headers and all.
		filler += c.Length
		if i > 0 {
			filler += chunkHeaderSize
		}
	}

	if filler < ds64ReservedLen {
		return fmt.Errorf("%w: expected %d bytes, found %d", ErrInsufficientDS64Reservation, ds64ReservedLen, filler)
	}

	if last := rd.chunks[len(rd.chunks)-1]; last.Signature != SigData {
		return fmt.Errorf("%w: last chunk is %s", ErrDataChunkNotPreparedForAppend, last.Signature)
	}

	return nil
}
