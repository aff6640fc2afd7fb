package main

import (
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

// source is a decoded compressed stream handing out interleaved float
// samples. ReadSamples returns io.EOF once the stream is exhausted.
type source interface {
	SampleRate() int
	Channels() int
	ReadSamples(dst []float32) (int, error)
}

// mp3Reader is the part of gomp3.Decoder the mp3 source uses.
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

// mp3Source adapts go-mp3, which always decodes to 16-bit little-endian
// stereo.
type mp3Source struct {
	dec mp3Reader
	buf []byte
}

func newMP3Source(r io.Reader) (*mp3Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode mp3: %w", err)
	}

	return &mp3Source{dec: dec}, nil
}

func (s *mp3Source) SampleRate() int { return s.dec.SampleRate() }
func (s *mp3Source) Channels() int   { return 2 }

func (s *mp3Source) ReadSamples(dst []float32) (int, error) {
	if cap(s.buf) < 2*len(dst) {
		s.buf = make([]byte, 2*len(dst))
	}

	raw := s.buf[:2*len(dst)]

	n, err := io.ReadFull(s.dec, raw)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}

	samples := n / 2
	for i := range samples {
		v := int16(uint16(raw[2*i]) | uint16(raw[2*i+1])<<8)
		dst[i] = float32(v) / 32768
	}

	return samples, err
}

// vorbisReader is the part of oggvorbis.Reader the vorbis source uses.
type vorbisReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

type vorbisSource struct {
	dec vorbisReader
}

func newVorbisSource(r io.Reader) (*vorbisSource, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ogg vorbis: %w", err)
	}

	return &vorbisSource{dec: dec}, nil
}

func (s *vorbisSource) SampleRate() int { return s.dec.SampleRate() }
func (s *vorbisSource) Channels() int   { return s.dec.Channels() }

// ReadSamples reads interleaved samples, the unit oggvorbis counts in.
func (s *vorbisSource) ReadSamples(dst []float32) (int, error) {
	return s.dec.Read(dst)
}
