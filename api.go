package bwav

import "slices"

// structuralChunks are written by the Writer itself and never copied.
var structuralChunks = []FourCC{SigFmt, SigData, SigFact, SigJunk, SigFllr, SigDS64}

// CopyChunks appends every metadata chunk of rd to w in file order, leaving
// out the chunks the Writer manages and those listed in skip. Chunks that
// follow the data chunk in rd are copied when after is set, the others when
// it's not, so a caller can split them around the audio data.
func CopyChunks(w *Writer, rd *Reader, after bool, skip ...FourCC) error {
	chunks, err := rd.Chunks()
	if err != nil {
		return err
	}

	seen := map[FourCC]int{}
	pastData := false

	for _, c := range chunks {
		index := seen[c.Signature]
		seen[c.Signature]++

		if c.Signature == SigData {
			pastData = true

			continue
		}

		if pastData != after || slices.Contains(structuralChunks, c.Signature) || slices.Contains(skip, c.Signature) {
			continue
		}

		body, err := rd.ReadChunk(c.Signature, index)
		if err != nil {
			return err
		}

		if err := w.WriteChunk(c.Signature, body); err != nil {
			return err
		}
	}

	return nil
}
