package bwav

import "fmt"

// ChunkEntry locates one top-level chunk of a WAVE file.
type ChunkEntry struct {
	Signature FourCC
	// Start is the absolute offset of the chunk content, past its 8-byte header.
	Start uint64
	// Length is the content length, without the pad byte of odd-sized chunks.
	Length uint64
}

// End returns the absolute offset just past the content.
func (c ChunkEntry) End() uint64 {
	return c.Start + c.Length
}

func (c ChunkEntry) String() string {
	return fmt.Sprintf("%s @%d (%d bytes)", c.Signature, c.Start, c.Length)
}

// nthChunk returns the index-th entry with the passed signature.
func nthChunk(chunks []ChunkEntry, sig FourCC, index int) (ChunkEntry, bool) {
	for _, c := range chunks {
		if c.Signature != sig {
			continue
		}

		if index == 0 {
			return c, true
		}

		index--
	}

	return ChunkEntry{}, false
}

func cloneChunks(chunks []ChunkEntry) []ChunkEntry {
	if len(chunks) == 0 {
		return nil
	}

	return append([]ChunkEntry(nil), chunks...)
}
