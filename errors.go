package bwav

import "errors"

var (
	// ErrHeaderNotRecognized is returned when the stream doesn't start with a
	// RIFF, RF64 or BW64 WAVE header.
	ErrHeaderNotRecognized = errors.New("header not recognized")
	// ErrMissingRequiredDS64 is returned when an RF64/BW64 file doesn't carry a
	// ds64 chunk right after its header.
	ErrMissingRequiredDS64 = errors.New("missing required ds64 chunk")
	// ErrInvalidDS64 is returned when the ds64 sizes are inconsistent with its
	// own extent.
	ErrInvalidDS64 = errors.New("invalid ds64 chunk")
	// ErrChunkMissing is returned when a requested chunk isn't in the file.
	ErrChunkMissing = errors.New("chunk missing")
	// ErrChunkOutOfBounds is returned when a chunk claims more bytes than the
	// stream holds.
	ErrChunkOutOfBounds = errors.New("chunk extends past end of stream")
	// ErrFmtChunkAfterData is returned when the fmt chunk follows the data chunk.
	ErrFmtChunkAfterData = errors.New("format chunk after data")
	// ErrInvalidFormatChunk is returned when the fmt chunk can't be decoded.
	ErrInvalidFormatChunk = errors.New("invalid format chunk")
	// ErrNotMinimalWaveFile is returned by ValidateMinimal.
	ErrNotMinimalWaveFile = errors.New("not a minimal wave file")
	// ErrDataChunkNotAligned is returned by ValidateDataChunkAlignment.
	ErrDataChunkNotAligned = errors.New("data chunk not aligned")
	// ErrInsufficientDS64Reservation is returned by ValidatePreparedForAppend
	// when the leading filler chunks can't be rewritten as a ds64 chunk.
	ErrInsufficientDS64Reservation = errors.New("insufficient ds64 reservation")
	// ErrDataChunkNotPreparedForAppend is returned by ValidatePreparedForAppend
	// when data isn't the last chunk of the file.
	ErrDataChunkNotPreparedForAppend = errors.New("data chunk not prepared for append")
	// ErrChunkTooLarge is returned when a metadata chunk doesn't fit a 32-bit
	// size field.
	ErrChunkTooLarge = errors.New("chunk too large")
	// ErrInvalidBufferSize is returned when a frame buffer length isn't a
	// multiple of the channel count.
	ErrInvalidBufferSize = errors.New("invalid buffer size")
	// ErrUnsupportedSampleFormat is returned when the sample encoding of a file
	// can't be read or written by the frame codec.
	ErrUnsupportedSampleFormat = errors.New("unsupported sample format")
	// ErrConsumed is returned when a Reader or Writer is used after handing its
	// stream over to a frame cursor.
	ErrConsumed = errors.New("stream handed over to frame cursor")
	// ErrDataChunkWritten is returned when a second data chunk is requested.
	ErrDataChunkWritten = errors.New("data chunk already written")
	// ErrSeekBeforeStart is returned when seeking before the start of a chunk.
	ErrSeekBeforeStart = errors.New("seek before beginning of chunk")

	errInvalidWhence = errors.New("invalid whence")
	errShortChunk    = errors.New("chunk too short")
)
