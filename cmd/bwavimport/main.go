// This tool imports an MP3 or Ogg Vorbis file as a Broadcast-WAV file. The
// decoded audio is written next to the source unless -o is set, with a bext
// chunk recording the coding history and the tags of the source as LIST/INFO.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cwbudde/bwav"
	"github.com/dhowden/tag"
	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
)

const readFrames = 4096

var (
	errMissingPath       = errors.New("missing path argument")
	errUnsupportedSource = errors.New("unsupported source file")
)

type settings struct {
	output      string
	bits        uint16
	float       bool
	description string
	originator  string
}

func main() {
	err := run(os.Args[1:], os.Stdout)
	if errors.Is(err, errMissingPath) {
		fmt.Println("Usage: bwavimport [-o output.wav] [-bits 24] [-float] INPUT.mp3|INPUT.ogg")
		os.Exit(1)
	}

	if err != nil {
		log.Fatal(err)
	}
}

func run(args []string, out io.Writer) error {
	flagSet := flag.NewFlagSet("bwavimport", flag.ContinueOnError)

	var s settings

	bits := flagSet.Uint("bits", 24, "bits per sample of integer output")
	flagSet.StringVar(&s.output, "o", "", "output file, the source with a .wav extension when empty")
	flagSet.BoolVar(&s.float, "float", false, "write 32-bit float samples")
	flagSet.StringVar(&s.description, "description", "", "bext description, the source file name when empty")
	flagSet.StringVar(&s.originator, "originator", "bwavimport", "bext originator")
	verbosity := flagSet.Int("v", 0, "log verbosity")

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if flagSet.NArg() < 1 {
		return errMissingPath
	}

	if *bits == 0 || *bits > 32 {
		return fmt.Errorf("invalid bit depth %d", *bits)
	}

	s.bits = uint16(*bits)

	path := flagSet.Arg(0)
	if s.output == "" {
		s.output = strings.TrimSuffix(path, filepath.Ext(path)) + ".wav"
	}

	if s.description == "" {
		s.description = filepath.Base(path)
	}

	stdr.SetVerbosity(*verbosity)
	logger := stdr.New(log.New(os.Stderr, "bwavimport: ", 0))

	frames, err := importFile(path, s, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Imported %d frames into %s\n", frames, s.output)

	return nil
}

func importFile(path string, s settings, logger logr.Logger) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info := readTags(f, logger)

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to rewind %s: %w", path, err)
	}

	src, algorithm, err := openSource(path, f)
	if err != nil {
		return 0, err
	}

	return writeBWF(src, algorithm, info, s, logger)
}

// openSource picks the decoder by file extension and returns it with the
// coding history algorithm of the source.
func openSource(path string, r io.Reader) (source, string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		src, err := newMP3Source(r)
		if err != nil {
			return nil, "", err
		}

		return src, "MPEG1L3", nil
	case ".ogg", ".oga":
		src, err := newVorbisSource(r)
		if err != nil {
			return nil, "", err
		}

		return src, "VORBIS", nil
	default:
		return nil, "", fmt.Errorf("%w: %q", errUnsupportedSource, ext)
	}
}

// readTags maps the ID3 or Vorbis comment tags of r to INFO fields. Files
// without tags give an empty Info.
func readTags(r io.ReadSeeker, logger logr.Logger) bwav.Info {
	m, err := tag.ReadFrom(r)
	if err != nil {
		if !errors.Is(err, tag.ErrNoTagsFound) {
			logger.V(1).Info("ignoring unreadable tags", "err", err)
		}

		return bwav.Info{}
	}

	return infoFromTags(m)
}

func infoFromTags(m tag.Metadata) bwav.Info {
	info := bwav.Info{
		Title:    m.Title(),
		Artist:   m.Artist(),
		Product:  m.Album(),
		Genre:    m.Genre(),
		Comments: m.Comment(),
		Source:   string(m.FileType()),
	}

	if year := m.Year(); year > 0 {
		info.CreationDate = strconv.Itoa(year)
	}

	if track, _ := m.Track(); track > 0 {
		info.TrackNbr = strconv.Itoa(track)
	}

	return info
}

func channelMode(channels int) string {
	switch channels {
	case 1:
		return "mono"
	case 2:
		return "stereo"
	default:
		return "multitrack"
	}
}

func (s settings) format(sampleRate uint32, channels uint16) bwav.Format {
	if s.float {
		return bwav.NewFloatFormat(sampleRate, channels)
	}

	return bwav.NewPCMFormat(sampleRate, s.bits, channels)
}

// codingHistory describes the decode of the source and the PCM written, one
// EBU R 98 line each.
func codingHistory(algorithm string, src source, f bwav.Format) string {
	mode := channelMode(src.Channels())

	return fmt.Sprintf("A=%s,F=%d,M=%s\r\nA=PCM,F=%d,W=%d,M=%s,T=bwavimport\r\n",
		algorithm, src.SampleRate(), mode, f.SampleRate, f.ValidBitsPerSample(), mode)
}

func writeBWF(src source, algorithm string, info bwav.Info, s settings, logger logr.Logger) (uint64, error) {
	if src.SampleRate() <= 0 || src.Channels() <= 0 {
		return 0, fmt.Errorf("%w: %d Hz, %d channels", errUnsupportedSource, src.SampleRate(), src.Channels())
	}

	format := s.format(uint32(src.SampleRate()), uint16(src.Channels()))

	w, err := bwav.Create(s.output, format, bwav.WithLogger(logger))
	if err != nil {
		return 0, err
	}

	bext := bwav.BroadcastExtension{
		Description:   s.description,
		Originator:    s.originator,
		Version:       1,
		CodingHistory: codingHistory(algorithm, src, format),
	}
	bext.SetOrigination(time.Now())

	if err := w.WriteBroadcastExtension(bext); err != nil {
		w.Close()

		return 0, err
	}

	if !info.IsZero() {
		if err := w.WriteInfo(info); err != nil {
			w.Close()

			return 0, err
		}
	}

	fw, err := w.FrameWriter()
	if err != nil {
		w.Close()

		return 0, err
	}

	if err := copySamples(fw, src); err != nil {
		fw.Close()

		return 0, err
	}

	frames := fw.FrameCount()

	if err := fw.Close(); err != nil {
		return 0, err
	}

	logger.V(1).Info("imported", "frames", frames, "output", s.output)

	return frames, nil
}

// copySamples writes the samples of src in whole frames. A trailing partial
// frame is dropped.
func copySamples(fw *bwav.FrameWriter, src source) error {
	channels := src.Channels()
	buf := make([]float32, readFrames*channels)
	pending := 0

	for {
		n, err := src.ReadSamples(buf[pending:])
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to decode: %w", err)
		}

		pending += n

		if whole := pending - pending%channels; whole > 0 {
			if werr := fw.WriteFloat32(buf[:whole]); werr != nil {
				return werr
			}

			pending = copy(buf, buf[whole:pending])
		}

		if errors.Is(err, io.EOF) || n == 0 {
			return nil
		}
	}
}
