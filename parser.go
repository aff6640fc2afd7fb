package bwav

import (
	"encoding/binary"
	"fmt"
	"io"
	"iter"
	"maps"

	"github.com/go-audio/riff"
	"github.com/go-logr/logr"
)

// RF64 is described in ITU-R BS.2088 and EBU Tech 3306. EBU files begin with
// RF64 while the ITU recommends BW64, both are recognized.

const (
	headerSize      = 12
	chunkHeaderSize = 8
	// form size, data size, sample count and table length.
	ds64FixedSize   = 28
	ds64EntrySize   = 12
	// ds64ReservedLen is the JUNK payload a Writer reserves for the ds64 chunk.
	ds64ReservedLen = 92
)

// EventKind identifies what a parser Event reports.
type EventKind int

const (
	EventStartParse EventKind = iota
	EventReadHeader
	EventReadRF64Header
	EventReadDS64
	EventBeginChunk
	EventFailed
	EventFinishParse
)

func (k EventKind) String() string {
	switch k {
	case EventStartParse:
		return "StartParse"
	case EventReadHeader:
		return "ReadHeader"
	case EventReadRF64Header:
		return "ReadRF64Header"
	case EventReadDS64:
		return "ReadDS64"
	case EventBeginChunk:
		return "BeginChunk"
	case EventFailed:
		return "Failed"
	case EventFinishParse:
		return "FinishParse"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is one step of a parse.
type Event struct {
	Kind EventKind
	// Signature is the form signature for header events.
	Signature FourCC
	// LengthField is the 32-bit form size of a RIFF header.
	LengthField uint32
	// FormSize and LongSizes are set on EventReadDS64.
	FormSize  uint64
	LongSizes map[FourCC]uint64
	// Chunk is set on EventBeginChunk.
	Chunk ChunkEntry
	// Err is set on EventFailed.
	Err error
}

type parserState int

const (
	stateNew parserState = iota
	stateReadyForHeader
	stateReadyForDS64
	stateReadyForChunk
	stateError
	stateComplete
)

// Parser walks the top-level chunk list of a WAVE stream without reading
// chunk payloads. It is a pull parser: each call to Next advances one step.
type Parser struct {
	r         io.ReadSeeker
	hdr       *riff.Parser
	log       logr.Logger
	state     parserState
	streamLen uint64
	at        uint64
	remaining uint64
	form      FourCC
	ds64      map[FourCC]uint64
}

// NewParser rewinds r and prepares a parse of its chunk list.
func NewParser(r io.ReadSeeker, opts ...Option) (*Parser, error) {
	cfg := newConfig(opts)

	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to measure stream: %w", err)
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to start of stream: %w", err)
	}

	return &Parser{
		r:         r,
		hdr:       riff.New(r),
		log:       cfg.logger,
		streamLen: uint64(end),
		ds64:      map[FourCC]uint64{},
	}, nil
}

// Form returns the container signature once the header was read.
func (p *Parser) Form() FourCC {
	return p.form
}

// LongSizes returns a copy of the ds64 size table.
func (p *Parser) LongSizes() map[FourCC]uint64 {
	return maps.Clone(p.ds64)
}

// Next returns the next parse event. ok is false once the parse is complete.
func (p *Parser) Next() (Event, bool) {
	ev, next, ok, err := p.step()
	if err != nil {
		ev, next, ok = Event{Kind: EventFailed, Err: err}, stateError, true
	}

	p.state = next
	if ok {
		p.logEvent(ev)
	}

	return ev, ok
}

// All yields every chunk in file order. A parse failure is yielded once as the
// last element.
func (p *Parser) All() iter.Seq2[ChunkEntry, error] {
	return func(yield func(ChunkEntry, error) bool) {
		for {
			ev, ok := p.Next()
			if !ok {
				return
			}

			switch ev.Kind {
			case EventBeginChunk:
				if !yield(ev.Chunk, nil) {
					return
				}
			case EventFailed:
				yield(ChunkEntry{}, ev.Err)

				return
			}
		}
	}
}

// Chunks runs the parse to completion and returns the chunk directory, or the
// first error encountered.
func (p *Parser) Chunks() ([]ChunkEntry, error) {
	var chunks []ChunkEntry

	for c, err := range p.All() {
		if err != nil {
			return nil, err
		}

		chunks = append(chunks, c)
	}

	return chunks, nil
}

func (p *Parser) step() (Event, parserState, bool, error) {
	switch p.state {
	case stateNew:
		return Event{Kind: EventStartParse}, stateReadyForHeader, true, nil
	case stateReadyForHeader:
		ev, next, err := p.parseHeader()
		return ev, next, true, err
	case stateReadyForDS64:
		ev, next, err := p.parseDS64()
		return ev, next, true, err
	case stateReadyForChunk:
		ev, next, err := p.enterChunk()
		return ev, next, true, err
	case stateError:
		return Event{Kind: EventFinishParse}, stateComplete, true, nil
	default:
		return Event{}, stateComplete, false, nil
	}
}

func (p *Parser) parseHeader() (Event, parserState, error) {
	id, size, err := p.hdr.IDnSize()
	if err != nil {
		return Event{}, stateError, fmt.Errorf("failed to read form header: %w", err)
	}

	var format FourCC
	if _, err := io.ReadFull(p.r, format[:]); err != nil {
		return Event{}, stateError, fmt.Errorf("failed to read form type: %w", err)
	}

	sig := FourCC(id)

	switch {
	case sig == SigRIFF && format == SigWAVE:
		p.form = sig
		p.at = headerSize
		p.remaining = 0

		if size > 4 {
			p.remaining = uint64(size) - 4
		}

		return Event{Kind: EventReadHeader, Signature: sig, LengthField: size}, stateReadyForChunk, nil
	case (sig == SigRF64 || sig == SigBW64) && size == sizeSentinel && format == SigWAVE:
		p.form = sig

		return Event{Kind: EventReadRF64Header, Signature: sig}, stateReadyForDS64, nil
	default:
		return Event{}, stateError, fmt.Errorf("%w: %s size %d type %s", ErrHeaderNotRecognized, sig, size, format)
	}
}

type ds64Fields struct {
	FormSize    uint64
	DataSize    uint64
	SampleCount uint64
	TableLength uint32
}

type ds64Entry struct {
	ID   [4]byte
	Size uint64
}

func (p *Parser) parseDS64() (Event, parserState, error) {
	id, size, err := p.hdr.IDnSize()
	if err != nil {
		return Event{}, stateError, fmt.Errorf("failed to read ds64 header: %w", err)
	}

	if FourCC(id) != SigDS64 {
		return Event{}, stateError, fmt.Errorf("%w: found %s", ErrMissingRequiredDS64, FourCC(id))
	}

	if size < ds64FixedSize {
		return Event{}, stateError, fmt.Errorf("%w: chunk of %d bytes", ErrInvalidDS64, size)
	}

	var fields ds64Fields
	if err := binary.Read(p.r, binary.LittleEndian, &fields); err != nil {
		return Event{}, stateError, fmt.Errorf("failed to read ds64 fields: %w", err)
	}

	consumed := uint64(ds64FixedSize) + uint64(fields.TableLength)*ds64EntrySize
	if consumed > uint64(size) {
		return Event{}, stateError, fmt.Errorf("%w: %d table entries don't fit %d bytes", ErrInvalidDS64, fields.TableLength, size)
	}

	for range fields.TableLength {
		var entry ds64Entry
		if err := binary.Read(p.r, binary.LittleEndian, &entry); err != nil {
			return Event{}, stateError, fmt.Errorf("failed to read ds64 table: %w", err)
		}

		p.ds64[FourCC(entry.ID)] = entry.Size
	}

	p.ds64[SigData] = fields.DataSize

	displacement := padded(uint64(size))

	// Pro Tools writes a ds64 longer than its content, the tail is zeroes.
	// Seeking to the declared end skips it.
	if _, err := p.r.Seek(int64(headerSize+chunkHeaderSize+displacement), io.SeekStart); err != nil {
		return Event{}, stateError, fmt.Errorf("failed to skip ds64 chunk: %w", err)
	}

	used := 4 + chunkHeaderSize + displacement
	if fields.FormSize < used {
		return Event{}, stateError, fmt.Errorf("%w: form size %d smaller than ds64 extent %d", ErrInvalidDS64, fields.FormSize, used)
	}

	p.at = headerSize + chunkHeaderSize + displacement
	p.remaining = fields.FormSize - used

	return Event{
		Kind:      EventReadDS64,
		FormSize:  fields.FormSize,
		LongSizes: maps.Clone(p.ds64),
	}, stateReadyForChunk, nil
}

func (p *Parser) enterChunk() (Event, parserState, error) {
	if p.remaining == 0 {
		return Event{Kind: EventFinishParse}, stateComplete, nil
	}

	id, size32, err := p.hdr.IDnSize()
	if err != nil {
		return Event{}, stateError, fmt.Errorf("failed to read chunk header at offset %d: %w", p.at, err)
	}

	sig := FourCC(id)
	size := uint64(size32)

	if long, ok := p.ds64[sig]; ok {
		size = long
	}

	start := p.at + chunkHeaderSize
	if start > p.streamLen || size > p.streamLen-start {
		return Event{}, stateError, fmt.Errorf("%w: %s at offset %d declares %d bytes, %d available",
			ErrChunkOutOfBounds, sig, start, size, p.streamLen-min(start, p.streamLen))
	}

	displacement := padded(size)
	if _, err := p.r.Seek(int64(displacement), io.SeekCurrent); err != nil {
		return Event{}, stateError, fmt.Errorf("failed to skip %s chunk: %w", sig, err)
	}

	advance := chunkHeaderSize + displacement
	p.at += advance

	if advance >= p.remaining {
		p.remaining = 0
	} else {
		p.remaining -= advance
	}

	return Event{
		Kind:      EventBeginChunk,
		Signature: sig,
		Chunk:     ChunkEntry{Signature: sig, Start: start, Length: size},
	}, stateReadyForChunk, nil
}

func (p *Parser) logEvent(ev Event) {
	switch ev.Kind {
	case EventBeginChunk:
		p.log.V(1).Info("chunk", "signature", ev.Chunk.Signature.String(), "start", ev.Chunk.Start, "length", ev.Chunk.Length)
	case EventReadDS64:
		p.log.V(1).Info("ds64", "formSize", ev.FormSize, "entries", len(ev.LongSizes))
	case EventFailed:
		p.log.V(1).Info("parse failed", "error", ev.Err.Error())
	default:
		p.log.V(2).Info("parse event", "kind", ev.Kind.String())
	}
}

// padded rounds a chunk size up to the even displacement RIFF requires.
func padded(n uint64) uint64 {
	return n + n%2
}
