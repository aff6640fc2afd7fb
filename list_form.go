package bwav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/riff"
)

// listMember is one sub-chunk of a LIST form.
type listMember struct {
	ID   FourCC
	Data []byte
}

// listFormType returns the form type of a LIST chunk body.
func listFormType(body []byte) (FourCC, bool) {
	var form FourCC
	if len(body) < len(form) {
		return form, false
	}

	copy(form[:], body)

	return form, true
}

// walkListForm calls fn with each member of a LIST chunk body. The member
// chunk is bounded to its declared size, whatever fn leaves unread is
// skipped.
func walkListForm(body []byte, fn func(ch *riff.Chunk) error) (FourCC, error) {
	form, ok := listFormType(body)
	if !ok {
		return form, fmt.Errorf("%w: LIST of %d bytes", errShortChunk, len(body))
	}

	r := bytes.NewReader(body[4:])
	parser := riff.New(r)

	// A trailing pad byte is shorter than a member header.
	for r.Len() >= chunkHeaderSize {
		at := r.Size() - int64(r.Len())

		id, size, err := parser.IDnSize()
		if err != nil {
			return form, fmt.Errorf("failed to read %s member header: %w", form, err)
		}

		if int64(size) > int64(r.Len()) {
			return form, fmt.Errorf("%w: %s member %s declares %d bytes, %d available",
				ErrChunkOutOfBounds, form, FourCC(id), size, r.Len())
		}

		ch := &riff.Chunk{
			ID:   id,
			Size: int(size),
			R:    io.LimitReader(r, int64(size)),
		}

		if err := fn(ch); err != nil {
			return form, fmt.Errorf("failed to decode %s member %s: %w", form, FourCC(id), err)
		}

		next := at + chunkHeaderSize + int64(padded(uint64(size)))
		if _, err := r.Seek(min(next, r.Size()), io.SeekStart); err != nil {
			return form, fmt.Errorf("failed to skip %s member %s: %w", form, FourCC(id), err)
		}
	}

	return form, nil
}

// collectListForm returns every member of a LIST chunk body.
func collectListForm(body []byte) (FourCC, []listMember, error) {
	var members []listMember

	form, err := walkListForm(body, func(ch *riff.Chunk) error {
		data, err := io.ReadAll(ch)
		if err != nil {
			return err
		}

		members = append(members, listMember{ID: FourCC(ch.ID), Data: data})

		return nil
	})

	return form, members, err
}

// encodeListForm builds a LIST chunk body of the passed form type.
func encodeListForm(form FourCC, members []listMember) []byte {
	buf := bytes.NewBuffer(nil)
	buf.Write(form[:])

	for _, m := range members {
		buf.Write(m.ID[:])
		_ = binary.Write(buf, binary.LittleEndian, uint32(len(m.Data)))
		buf.Write(m.Data)

		if len(m.Data)%2 == 1 {
			buf.WriteByte(0)
		}
	}

	return buf.Bytes()
}
