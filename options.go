package bwav

import "github.com/go-logr/logr"

const defaultDataAlignment = 0x4000

type config struct {
	logger        logr.Logger
	longForm      FourCC
	dataAlignment uint64
}

// Option configures a Parser, Reader or Writer.
type Option func(*config)

// WithLogger routes diagnostics to the passed logger. Chunk discovery is
// logged at verbosity 1.
func WithLogger(l logr.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithBW64 makes a Writer promote oversized files to BW64 instead of RF64.
func WithBW64() Option {
	return func(c *config) {
		c.longForm = SigBW64
	}
}

// WithDataAlignment sets the boundary the Writer aligns the start of the
// audio data to. Zero disables the filler chunk.
func WithDataAlignment(n uint64) Option {
	return func(c *config) {
		c.dataAlignment = n
	}
}

func newConfig(opts []Option) config {
	c := config{
		logger:        logr.Discard(),
		longForm:      SigRF64,
		dataAlignment: defaultDataAlignment,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}

	return c
}
