package bwav

import (
	"encoding"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-logr/logr"
)

// Offsets of the fields patched in place.
const (
	formSizeOffset    = 4
	ds64HeaderOffset  = 12
	ds64FormOffset    = headerSize + chunkHeaderSize
	ds64DataOffset    = ds64FormOffset + 8
	ds64SamplesOffset = ds64DataOffset + 8
)

// Writer writes a WAVE file chunk by chunk. The header, a ds64 reservation
// and the fmt chunk are written on creation. Files that outgrow 32-bit sizes
// are promoted to RF64 (or BW64) in place.
type Writer struct {
	w      io.WriteSeeker
	closer io.Closer
	log    logr.Logger
	cfg    config
	format Format

	formSize  uint64
	factStart uint64
	dataStart uint64
	dataSize  uint64

	promoted    bool
	consumed    bool
	dataWritten bool
}

// Create creates the file at path and writes a WAVE header for format.
func Create(path string, format Format, opts ...Option) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	w, err := NewWriter(f, format, opts...)
	if err != nil {
		f.Close()

		return nil, err
	}

	w.closer = f

	return w, nil
}

// NewWriter writes a WAVE header for format to w.
func NewWriter(w io.WriteSeeker, format Format, opts ...Option) (*Writer, error) {
	cfg := newConfig(opts)

	wr := &Writer{
		w:      w,
		log:    cfg.logger,
		cfg:    cfg,
		format: format,
	}

	if err := wr.writeHeader(); err != nil {
		return nil, err
	}

	return wr, nil
}

// Format returns the format of the file.
func (w *Writer) Format() Format {
	return w.format
}

// addLE serializes and writes the passed value using little endian.
func (w *Writer) addLE(src any) error {
	if err := binary.Write(w.w, binary.LittleEndian, src); err != nil {
		return fmt.Errorf("failed to write little endian: %w", err)
	}

	return nil
}

// putLE writes src at the absolute offset at.
func (w *Writer) putLE(at uint64, src any) error {
	if _, err := w.w.Seek(int64(at), io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to offset %d: %w", at, err)
	}

	return w.addLE(src)
}

func (w *Writer) writeHeader() error {
	if _, err := w.w.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to start: %w", err)
	}

	if err := w.addLE(SigRIFF); err != nil {
		return err
	}

	if err := w.addLE(uint32(0)); err != nil {
		return err
	}

	if err := w.addLE(SigWAVE); err != nil {
		return err
	}

	if err := w.updateFormSize(4); err != nil {
		return err
	}

	if err := w.appendChunk(SigJunk, make([]byte, ds64ReservedLen)); err != nil {
		return fmt.Errorf("failed to reserve ds64 space: %w", err)
	}

	fmtBody, err := w.format.MarshalBinary()
	if err != nil {
		return err
	}

	if err := w.appendChunk(SigFmt, fmtBody); err != nil {
		return fmt.Errorf("failed to write format: %w", err)
	}

	if kind := w.format.CommonFormat().Kind; kind != KindIntegerPCM {
		start, err := w.appendChunkAt(SigFact, make([]byte, 4))
		if err != nil {
			return fmt.Errorf("failed to write fact chunk: %w", err)
		}

		w.factStart = start
	}

	return nil
}

func (w *Writer) check() error {
	if w.consumed {
		return ErrConsumed
	}

	return nil
}

// WriteChunk appends a chunk with the passed signature and content.
func (w *Writer) WriteChunk(sig FourCC, data []byte) error {
	if err := w.check(); err != nil {
		return err
	}

	return w.appendChunk(sig, data)
}

func (w *Writer) writeMarshaler(sig FourCC, m encoding.BinaryMarshaler) error {
	if err := w.check(); err != nil {
		return err
	}

	body, err := m.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to encode %s chunk: %w", sig, err)
	}

	return w.appendChunk(sig, body)
}

// WriteBroadcastExtension appends a bext chunk.
func (w *Writer) WriteBroadcastExtension(b BroadcastExtension) error {
	return w.writeMarshaler(SigBext, b)
}

// WriteCart appends a cart chunk.
func (w *Writer) WriteCart(c Cart) error {
	return w.writeMarshaler(SigCart, c)
}

// WriteSampler appends a smpl chunk.
func (w *Writer) WriteSampler(s Sampler) error {
	return w.writeMarshaler(SigSmpl, s)
}

// WriteInfo appends a LIST/INFO chunk holding the set fields of info.
func (w *Writer) WriteInfo(info Info) error {
	if err := w.check(); err != nil {
		return err
	}

	return w.appendChunk(SigList, encodeInfo(info))
}

// WriteCues appends a cue chunk and, when any cue has a label, a note or a
// length, a LIST/adtl chunk.
func (w *Writer) WriteCues(cues []Cue) error {
	if err := w.check(); err != nil {
		return err
	}

	cueBody, adtlBody := encodeCues(cues)
	if err := w.appendChunk(SigCue, cueBody); err != nil {
		return err
	}

	if adtlBody == nil {
		return nil
	}

	return w.appendChunk(SigList, adtlBody)
}

// WriteChna appends a chna chunk binding tracks to ADM metadata.
func (w *Writer) WriteChna(entries []ChnaEntry) error {
	if err := w.check(); err != nil {
		return err
	}

	return w.appendChunk(SigChna, encodeChna(entries))
}

// WriteIXML appends an iXML chunk.
func (w *Writer) WriteIXML(doc []byte) error {
	return w.WriteChunk(SigIXML, doc)
}

// WriteAXML appends an axml chunk.
func (w *Writer) WriteAXML(doc []byte) error {
	return w.WriteChunk(SigAXML, doc)
}

func (w *Writer) appendChunk(sig FourCC, data []byte) error {
	_, err := w.appendChunkAt(sig, data)

	return err
}

// appendChunkAt appends a chunk at the end of the stream and returns the
// absolute offset of its content.
func (w *Writer) appendChunkAt(sig FourCC, data []byte) (uint64, error) {
	if uint64(len(data)) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %s of %d bytes", ErrChunkTooLarge, sig, len(data))
	}

	end, err := w.w.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("failed to seek to end: %w", err)
	}

	if err := w.addLE(sig); err != nil {
		return 0, err
	}

	if err := w.addLE(uint32(len(data))); err != nil {
		return 0, err
	}

	if _, err := w.w.Write(data); err != nil {
		return 0, fmt.Errorf("failed to write %s chunk: %w", sig, err)
	}

	if len(data)%2 == 1 {
		if _, err := w.w.Write([]byte{0}); err != nil {
			return 0, fmt.Errorf("failed to pad %s chunk: %w", sig, err)
		}
	}

	w.log.V(1).Info("appended chunk", "signature", sig.String(), "length", len(data))

	if err := w.updateFormSize(chunkHeaderSize + padded(uint64(len(data)))); err != nil {
		return 0, err
	}

	return uint64(end) + chunkHeaderSize, nil
}

func (w *Writer) updateFormSize(added uint64) error {
	w.formSize += added

	return w.patchSizes()
}

// patchSizes brings every size field in line with the bytes written so far,
// promoting the file first when the form or the data outgrew 32 bits.
func (w *Writer) patchSizes() error {
	if !w.promoted && (w.formSize >= maxChunkSize || w.dataSize >= maxChunkSize) {
		if err := w.promote(); err != nil {
			return err
		}
	}

	samples := w.format.FrameCount(w.dataSize)

	if w.promoted {
		if err := w.putLE(ds64FormOffset, w.formSize); err != nil {
			return err
		}

		if err := w.putLE(ds64DataOffset, w.dataSize); err != nil {
			return err
		}

		return w.putLE(ds64SamplesOffset, samples)
	}

	if err := w.putLE(formSizeOffset, uint32(w.formSize)); err != nil {
		return err
	}

	if w.dataStart != 0 {
		if err := w.putLE(w.dataStart-4, uint32(w.dataSize)); err != nil {
			return err
		}
	}

	if w.factStart != 0 {
		return w.putLE(w.factStart, uint32(min(samples, math.MaxUint32)))
	}

	return nil
}

// promote turns the file into its 64-bit form: the reserved JUNK chunk
// becomes ds64 and the 32-bit sizes are set to the sentinel. It runs once.
func (w *Writer) promote() error {
	w.log.Info("promoting to 64-bit form", "form", w.cfg.longForm.String(), "formSize", w.formSize, "dataSize", w.dataSize)

	if err := w.putLE(0, w.cfg.longForm); err != nil {
		return err
	}

	if err := w.putLE(formSizeOffset, sizeSentinel); err != nil {
		return err
	}

	if err := w.putLE(ds64HeaderOffset, SigDS64); err != nil {
		return err
	}

	if w.dataStart != 0 {
		if err := w.putLE(w.dataStart-4, sizeSentinel); err != nil {
			return err
		}
	}

	if w.factStart != 0 {
		if err := w.putLE(w.factStart, sizeSentinel); err != nil {
			return err
		}
	}

	w.promoted = true

	return nil
}

// fillerLength returns the FLLR content length that makes the data content
// start on the alignment boundary, for a file currently length bytes long.
func fillerLength(length, alignment uint64) uint64 {
	return (alignment - (length+2*chunkHeaderSize)%alignment) % alignment
}

// FrameWriter opens the data chunk and hands the stream over to a
// FrameWriter. The Writer can be used again once FrameWriter.End returns it.
func (w *Writer) FrameWriter() (*FrameWriter, error) {
	if err := w.check(); err != nil {
		return nil, err
	}

	if w.dataWritten {
		return nil, ErrDataChunkWritten
	}

	codec, err := codecFor(w.format)
	if err != nil {
		return nil, err
	}

	if align := w.cfg.dataAlignment; align > 0 {
		filler := fillerLength(chunkHeaderSize+w.formSize, align)
		w.log.V(1).Info("aligning data", "filler", filler, "alignment", align)

		if err := w.appendChunk(SigFllr, make([]byte, filler)); err != nil {
			return nil, fmt.Errorf("failed to write filler: %w", err)
		}
	}

	end, err := w.w.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to seek to end: %w", err)
	}

	if err := w.addLE(SigData); err != nil {
		return nil, err
	}

	dataLen := uint32(0)
	if w.promoted {
		dataLen = sizeSentinel
	}

	if err := w.addLE(dataLen); err != nil {
		return nil, err
	}

	w.dataStart = uint64(end) + chunkHeaderSize
	w.dataWritten = true

	if err := w.updateFormSize(chunkHeaderSize); err != nil {
		return nil, err
	}

	w.consumed = true

	return &FrameWriter{w: w, codec: codec}, nil
}

// Close brings the size fields up to date and closes the file if the Writer
// created it.
func (w *Writer) Close() error {
	if err := w.check(); err != nil {
		return err
	}

	if err := w.patchSizes(); err != nil {
		return err
	}

	if _, err := w.w.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end of file: %w", err)
	}

	if f, ok := w.w.(*os.File); ok {
		if err := f.Sync(); err != nil {
			return fmt.Errorf("failed to sync: %w", err)
		}
	}

	if w.closer != nil {
		err := w.closer.Close()
		w.closer = nil

		return err
	}

	return nil
}
