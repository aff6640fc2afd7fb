// This tool extracts each channel of a polyphonic wave file as a new
// monaural wave file next to the source, named after the speaker position of
// the channel.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/bwav"
)

const framesPerRead = 4096

var errMissingInput = errors.New("missing input file")

var speakerSuffixes = map[bwav.ChannelMask]string{
	bwav.FrontLeft:          "L",
	bwav.FrontCenter:        "C",
	bwav.FrontRight:         "R",
	bwav.BackLeft:           "Ls",
	bwav.BackRight:          "Rs",
	bwav.BackCenter:         "S",
	bwav.TopCenter:          "Tc",
	bwav.LowFrequency:       "Lfe",
	bwav.SideLeft:           "Lss",
	bwav.SideRight:          "Rss",
	bwav.FrontLeftOfCenter:  "Lc",
	bwav.FrontRightOfCenter: "Rc",
	bwav.TopFrontLeft:       "Ltf",
	bwav.TopFrontCenter:     "Ctf",
	bwav.TopFrontRight:      "Rtf",
	bwav.TopBackLeft:        "Ltb",
	bwav.TopBackCenter:      "Ctb",
	bwav.TopBackRight:       "Rtb",
}

type settings struct {
	delimiter string
	numeric   bool
}

func main() {
	err := run(os.Args[1:], os.Stdout)
	if errors.Is(err, errMissingInput) {
		fmt.Println("Usage: wave-deinter [-n] [-d delim] INPUT...")
		os.Exit(1)
	}

	if err != nil {
		log.Fatal(err)
	}
}

func run(args []string, out io.Writer) error {
	flagSet := flag.NewFlagSet("wave-deinter", flag.ContinueOnError)

	var s settings

	flagSet.BoolVar(&s.numeric, "n", false, `Use numeric channel names "A01" "A02" etc.`)
	flagSet.StringVar(&s.delimiter, "d", ".", "Channel label delimiter")

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if flagSet.NArg() == 0 {
		return errMissingInput
	}

	for _, path := range flagSet.Args() {
		if err := deinterleave(path, s, out); err != nil {
			return fmt.Errorf("failed to split %s: %w", path, err)
		}
	}

	return nil
}

// nameSuffix names the output of the channel at the 1-based index.
func nameSuffix(s settings, index int, channel bwav.ChannelDescriptor) string {
	suffix, ok := speakerSuffixes[channel.Speaker]
	if s.numeric || !ok {
		return fmt.Sprintf("%sA%02d", s.delimiter, index)
	}

	return s.delimiter + suffix
}

func monoFormat(f bwav.Format) (bwav.Format, error) {
	switch f.CommonFormat().Kind {
	case bwav.KindIntegerPCM:
		return bwav.NewPCMFormatMono(f.SampleRate, f.ValidBitsPerSample()), nil
	case bwav.KindIEEEFloatPCM:
		return bwav.NewFloatFormat(f.SampleRate, 1), nil
	default:
		return bwav.Format{}, fmt.Errorf("%w: %s", bwav.ErrUnsupportedSampleFormat, f)
	}
}

func deinterleave(path string, s settings, out io.Writer) error {
	rd, err := bwav.Open(path)
	if err != nil {
		return err
	}

	channels, err := rd.Channels()
	if err != nil {
		rd.Close()

		return err
	}

	if len(channels) == 1 {
		rd.Close()
		fmt.Fprintln(out, "Input file is monaural, skipping", path)

		return nil
	}

	bext, err := rd.BroadcastExtension()
	if errors.Is(err, bwav.ErrChunkMissing) {
		bext, err = nil, nil
	}

	if err != nil {
		rd.Close()

		return err
	}

	fr, err := rd.FrameReader()
	if err != nil {
		rd.Close()

		return err
	}
	defer fr.Close()

	format, err := monoFormat(fr.Format())
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	writers := make([]*bwav.FrameWriter, len(channels))

	defer func() {
		for _, fw := range writers {
			if fw != nil {
				fw.Close()
			}
		}
	}()

	for i, c := range channels {
		outPath := filepath.Join(filepath.Dir(path), base+nameSuffix(s, i+1, c)+".wav")
		fmt.Fprintln(out, "Will create file", outPath)

		writers[i], err = createChannel(outPath, format, bext)
		if err != nil {
			return err
		}
	}

	if format.CommonFormat().Kind == bwav.KindIEEEFloatPCM {
		err = split[float32](fr, writers)
	} else {
		err = split[int32](fr, writers)
	}

	if err != nil {
		return err
	}

	for i, fw := range writers {
		writers[i] = nil

		if err := fw.Close(); err != nil {
			return err
		}
	}

	return nil
}

func createChannel(path string, format bwav.Format, bext *bwav.BroadcastExtension) (*bwav.FrameWriter, error) {
	w, err := bwav.Create(path, format)
	if err != nil {
		return nil, err
	}

	if bext != nil {
		if err := w.WriteBroadcastExtension(*bext); err != nil {
			w.Close()

			return nil, err
		}
	}

	return w.FrameWriter()
}

func split[S bwav.Sample](fr *bwav.FrameReader, writers []*bwav.FrameWriter) error {
	count := len(writers)
	in := make([]S, framesPerRead*count)
	out := make([]S, framesPerRead)

	for {
		n, err := bwav.ReadFrames(fr, in)
		if err != nil {
			return err
		}

		if n == 0 {
			return nil
		}

		for c, fw := range writers {
			for i := range n {
				out[i] = in[i*count+c]
			}

			if err := bwav.WriteFrames(fw, out[:n]); err != nil {
				return err
			}
		}
	}
}
