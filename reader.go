package bwav

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
)

// Reader gives random access to the chunks of a WAVE, Broadcast-WAV or
// RF64/BW64 file. The chunk directory is built once when the Reader is
// created.
type Reader struct {
	r        io.ReadSeeker
	closer   io.Closer
	log      logr.Logger
	form     FourCC
	chunks   []ChunkEntry
	consumed bool
}

// Open opens the file at path for reading.
func Open(path string, opts ...Option) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	rd, err := NewReader(f, opts...)
	if err != nil {
		f.Close()

		return nil, err
	}

	rd.closer = f

	return rd, nil
}

// NewReader parses the chunk directory of r and checks that it holds a fmt
// chunk ahead of a data chunk.
func NewReader(r io.ReadSeeker, opts ...Option) (*Reader, error) {
	cfg := newConfig(opts)

	p, err := NewParser(r, opts...)
	if err != nil {
		return nil, err
	}

	chunks, err := p.Chunks()
	if err != nil {
		return nil, fmt.Errorf("failed to parse chunk list: %w", err)
	}

	rd := &Reader{
		r:      r,
		log:    cfg.logger,
		form:   p.Form(),
		chunks: chunks,
	}

	if err := rd.ValidateReadable(); err != nil {
		return nil, err
	}

	return rd, nil
}

func (rd *Reader) check() error {
	if rd.consumed {
		return ErrConsumed
	}

	return nil
}

// Form returns RIFF, RF64 or BW64.
func (rd *Reader) Form() FourCC {
	return rd.form
}

// Chunks returns the chunk directory in file order.
func (rd *Reader) Chunks() ([]ChunkEntry, error) {
	if err := rd.check(); err != nil {
		return nil, err
	}

	return cloneChunks(rd.chunks), nil
}

// ChunkExtent locates the index-th chunk with the passed signature.
func (rd *Reader) ChunkExtent(sig FourCC, index int) (ChunkEntry, error) {
	if err := rd.check(); err != nil {
		return ChunkEntry{}, err
	}

	c, ok := nthChunk(rd.chunks, sig, index)
	if !ok {
		return ChunkEntry{}, fmt.Errorf("%w: %s index %d", ErrChunkMissing, sig, index)
	}

	return c, nil
}

// ChunkReader returns a reader over the content of the index-th chunk with
// the passed signature. It shares the stream of the Reader.
func (rd *Reader) ChunkReader(sig FourCC, index int) (*ChunkReader, error) {
	c, err := rd.ChunkExtent(sig, index)
	if err != nil {
		return nil, err
	}

	return NewChunkReader(rd.r, c.Start, c.Length), nil
}

// ReadChunk returns the content of the index-th chunk with the passed
// signature.
func (rd *Reader) ReadChunk(sig FourCC, index int) ([]byte, error) {
	cr, err := rd.ChunkReader(sig, index)
	if err != nil {
		return nil, err
	}

	body := make([]byte, cr.Len())
	if _, err := io.ReadFull(cr, body); err != nil {
		return nil, fmt.Errorf("failed to read %s chunk: %w", sig, err)
	}

	return body, nil
}

// ListForm returns the body of the first LIST chunk of the passed form type,
// form type included.
func (rd *Reader) ListForm(formType FourCC) ([]byte, error) {
	if err := rd.check(); err != nil {
		return nil, err
	}

	for i := 0; ; i++ {
		cr, err := rd.ChunkReader(SigList, i)
		if err != nil {
			break
		}

		var form FourCC
		if _, err := io.ReadFull(cr, form[:]); err != nil {
			continue
		}

		if form == formType {
			return rd.ReadChunk(SigList, i)
		}
	}

	return nil, fmt.Errorf("%w: LIST form %s", ErrChunkMissing, formType)
}

// Format decodes the fmt chunk.
func (rd *Reader) Format() (Format, error) {
	body, err := rd.ReadChunk(SigFmt, 0)
	if err != nil {
		return Format{}, err
	}

	var f Format
	if err := f.UnmarshalBinary(body); err != nil {
		return Format{}, err
	}

	return f, nil
}

// FrameLength returns the number of frames in the data chunk.
func (rd *Reader) FrameLength() (uint64, error) {
	f, err := rd.Format()
	if err != nil {
		return 0, err
	}

	data, err := rd.ChunkExtent(SigData, 0)
	if err != nil {
		return 0, err
	}

	return f.FrameCount(data.Length), nil
}

// BroadcastExtension decodes the bext chunk.
func (rd *Reader) BroadcastExtension() (*BroadcastExtension, error) {
	body, err := rd.ReadChunk(SigBext, 0)
	if err != nil {
		return nil, err
	}

	b := &BroadcastExtension{}
	if err := b.UnmarshalBinary(body); err != nil {
		return nil, err
	}

	return b, nil
}

// Cart decodes the cart chunk.
func (rd *Reader) Cart() (*Cart, error) {
	body, err := rd.ReadChunk(SigCart, 0)
	if err != nil {
		return nil, err
	}

	c := &Cart{}
	if err := c.UnmarshalBinary(body); err != nil {
		return nil, err
	}

	return c, nil
}

// Sampler decodes the smpl chunk.
func (rd *Reader) Sampler() (*Sampler, error) {
	body, err := rd.ReadChunk(SigSmpl, 0)
	if err != nil {
		return nil, err
	}

	s := &Sampler{}
	if err := s.UnmarshalBinary(body); err != nil {
		return nil, err
	}

	return s, nil
}

// Info decodes the LIST/INFO chunk.
func (rd *Reader) Info() (*Info, error) {
	body, err := rd.ListForm(SigInfo)
	if err != nil {
		return nil, err
	}

	return decodeInfo(body)
}

// CuePoints joins the cue chunk with the LIST/adtl chunk. A file without a
// cue chunk has no cue points.
func (rd *Reader) CuePoints() ([]Cue, error) {
	cueBody, err := rd.ReadChunk(SigCue, 0)
	if errors.Is(err, ErrChunkMissing) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	adtlBody, err := rd.ListForm(SigAdtl)
	if err != nil && !errors.Is(err, ErrChunkMissing) {
		return nil, err
	}

	return decodeCues(cueBody, adtlBody)
}

// Chna decodes the chna chunk.
func (rd *Reader) Chna() ([]ChnaEntry, error) {
	body, err := rd.ReadChunk(SigChna, 0)
	if err != nil {
		return nil, err
	}

	return decodeChna(body)
}

// Channels describes each channel from the channel mask, with the ADM ids of
// the chna chunk when the file has one.
func (rd *Reader) Channels() ([]ChannelDescriptor, error) {
	f, err := rd.Format()
	if err != nil {
		return nil, err
	}

	channels := f.Channels()

	entries, err := rd.Chna()
	switch {
	case errors.Is(err, ErrChunkMissing):
	case err != nil:
		return nil, err
	default:
		applyChna(channels, entries)
	}

	return channels, nil
}

// IXML returns the iXML document.
func (rd *Reader) IXML() ([]byte, error) {
	return rd.ReadChunk(SigIXML, 0)
}

// AXML returns the axml document.
func (rd *Reader) AXML() ([]byte, error) {
	return rd.ReadChunk(SigAXML, 0)
}

// FrameReader hands the stream to a FrameReader over the data chunk. The
// Reader returns ErrConsumed from then on and closing the file becomes the
// job of the FrameReader.
func (rd *Reader) FrameReader() (*FrameReader, error) {
	f, err := rd.Format()
	if err != nil {
		return nil, err
	}

	data, err := rd.ChunkExtent(SigData, 0)
	if err != nil {
		return nil, err
	}

	fr, err := newFrameReader(NewChunkReader(rd.r, data.Start, data.Length), f, rd.closer)
	if err != nil {
		return nil, err
	}

	rd.log.V(1).Info("frame reader", "format", f.String(), "frames", fr.FrameLength())

	rd.consumed = true
	rd.closer = nil

	return fr, nil
}

// Close closes the file if the Reader opened it and still owns it.
func (rd *Reader) Close() error {
	if rd.closer == nil {
		return nil
	}

	err := rd.closer.Close()
	rd.closer = nil

	return err
}
