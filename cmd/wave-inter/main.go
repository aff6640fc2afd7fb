// This tool combines several monaural wave files into a single polyphonic
// wave file. Inputs named with a speaker suffix, such as take.L.wav and
// take.R.wav, are ordered and labelled by speaker position.
package main

import (
	"cmp"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cwbudde/bwav"
)

const framesPerRead = 4096

var (
	errMissingInput = errors.New("missing input files")
	errMismatch     = errors.New("inputs don't share a format")
)

var suffixSpeakers = map[string]bwav.ChannelMask{
	"L":   bwav.FrontLeft,
	"C":   bwav.FrontCenter,
	"R":   bwav.FrontRight,
	"Ls":  bwav.BackLeft,
	"Rs":  bwav.BackRight,
	"S":   bwav.BackCenter,
	"Tc":  bwav.TopCenter,
	"Lfe": bwav.LowFrequency,
	"Lss": bwav.SideLeft,
	"Rss": bwav.SideRight,
	"Lc":  bwav.FrontLeftOfCenter,
	"Rc":  bwav.FrontRightOfCenter,
	"Ltf": bwav.TopFrontLeft,
	"Ctf": bwav.TopFrontCenter,
	"Rtf": bwav.TopFrontRight,
	"Ltb": bwav.TopBackLeft,
	"Ctb": bwav.TopBackCenter,
	"Rtb": bwav.TopBackRight,
}

type input struct {
	path    string
	speaker bwav.ChannelMask
	fr      *bwav.FrameReader
}

func main() {
	err := run(os.Args[1:], os.Stdout)
	if errors.Is(err, errMissingInput) {
		fmt.Println("Usage: wave-inter [-o output] [-d delim] INPUT...")
		os.Exit(1)
	}

	if err != nil {
		log.Fatal(err)
	}
}

func run(args []string, out io.Writer) error {
	flagSet := flag.NewFlagSet("wave-inter", flag.ContinueOnError)

	output := flagSet.String("o", "", "Output file name, the first input minus its channel suffix when empty")
	delimiter := flagSet.String("d", ".", "Channel label delimiter")

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if flagSet.NArg() == 0 {
		return errMissingInput
	}

	inputs := make([]*input, flagSet.NArg())
	for i, path := range flagSet.Args() {
		inputs[i] = &input{path: path, speaker: speakerOf(path, *delimiter)}
	}

	outPath := *output
	if outPath == "" {
		outPath = defaultOutput(inputs[0].path, *delimiter)
	}

	for _, in := range inputs {
		if filepath.Clean(in.path) == filepath.Clean(outPath) {
			return fmt.Errorf("output %s would overwrite an input", outPath)
		}
	}

	mask, ok := speakerMask(inputs)
	if ok {
		slices.SortStableFunc(inputs, func(a, b *input) int {
			return cmp.Compare(a.speaker, b.speaker)
		})
	}

	defer func() {
		for _, in := range inputs {
			if in.fr != nil {
				in.fr.Close()
			}
		}
	}()

	format, err := openInputs(inputs, mask, ok)
	if err != nil {
		return err
	}

	if err := interleave(outPath, format, inputs); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}

	fmt.Fprintf(out, "Combined %d files into %s\n", len(inputs), outPath)

	return nil
}

func speakerOf(path, delimiter string) bwav.ChannelMask {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	i := strings.LastIndex(base, delimiter)
	if i < 0 || delimiter == "" {
		return bwav.DirectOut
	}

	return suffixSpeakers[base[i+len(delimiter):]]
}

func defaultOutput(path, delimiter string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	if i := strings.LastIndex(base, delimiter); i > 0 && delimiter != "" {
		base = base[:i]
	}

	return filepath.Join(filepath.Dir(path), base+".wav")
}

// speakerMask combines the speakers of the inputs. It fails when an input has
// no speaker or two inputs share one.
func speakerMask(inputs []*input) (uint32, bool) {
	var mask uint32

	for _, in := range inputs {
		if in.speaker == bwav.DirectOut || mask&uint32(in.speaker) != 0 {
			return 0, false
		}

		mask |= uint32(in.speaker)
	}

	return mask, true
}

func openInputs(inputs []*input, mask uint32, useMask bool) (bwav.Format, error) {
	var first bwav.Format

	for i, in := range inputs {
		rd, err := bwav.Open(in.path)
		if err != nil {
			return bwav.Format{}, err
		}

		in.fr, err = rd.FrameReader()
		if err != nil {
			rd.Close()

			return bwav.Format{}, err
		}

		f := in.fr.Format()
		if f.ChannelCount != 1 {
			return bwav.Format{}, fmt.Errorf("%s has %d channels, expected 1", in.path, f.ChannelCount)
		}

		if i == 0 {
			first = f

			continue
		}

		if f.SampleRate != first.SampleRate || f.ValidBitsPerSample() != first.ValidBitsPerSample() ||
			f.CommonFormat().Kind != first.CommonFormat().Kind {
			return bwav.Format{}, fmt.Errorf("%w: %s is %s, %s is %s", errMismatch, inputs[0].path, first, in.path, f)
		}
	}

	count := uint16(len(inputs))

	switch first.CommonFormat().Kind {
	case bwav.KindIntegerPCM:
		if useMask {
			return bwav.NewPCMFormatMultichannel(first.SampleRate, first.ValidBitsPerSample(), mask), nil
		}

		return bwav.NewPCMFormat(first.SampleRate, first.ValidBitsPerSample(), count), nil
	case bwav.KindIEEEFloatPCM:
		if useMask {
			return bwav.NewFloatFormatMultichannel(first.SampleRate, mask), nil
		}

		return bwav.NewFloatFormat(first.SampleRate, count), nil
	default:
		return bwav.Format{}, fmt.Errorf("%w: %s", bwav.ErrUnsupportedSampleFormat, first)
	}
}

func interleave(path string, format bwav.Format, inputs []*input) error {
	w, err := bwav.Create(path, format)
	if err != nil {
		return err
	}

	fw, err := w.FrameWriter()
	if err != nil {
		w.Close()

		return err
	}

	if format.CommonFormat().Kind == bwav.KindIEEEFloatPCM {
		err = merge[float32](fw, inputs)
	} else {
		err = merge[int32](fw, inputs)
	}

	if err != nil {
		fw.Close()

		return err
	}

	return fw.Close()
}

// merge interleaves the inputs until the longest one ends. Shorter inputs are
// padded with silence.
func merge[S bwav.Sample](fw *bwav.FrameWriter, inputs []*input) error {
	count := len(inputs)
	in := make([]S, framesPerRead)
	out := make([]S, framesPerRead*count)

	for {
		clear(out)

		longest := 0

		for c, src := range inputs {
			n, err := bwav.ReadFrames(src.fr, in)
			if err != nil {
				return err
			}

			for i := range n {
				out[i*count+c] = in[i]
			}

			longest = max(longest, n)
		}

		if longest == 0 {
			return nil
		}

		if err := bwav.WriteFrames(fw, out[:longest*count]); err != nil {
			return err
		}
	}
}
