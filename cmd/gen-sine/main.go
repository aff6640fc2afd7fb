// This tool generates a sine tone as a Broadcast-WAV file. Every flag can
// also be set from a BWAV_ prefixed environment variable or a config file.
package main

import (
	"fmt"
	"log"
	"math"
	"os"
	"strings"
	"time"

	"github.com/cwbudde/bwav"
	"github.com/go-logr/stdr"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const blockFrames = 4096

func main() {
	err := run(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
}

type settings struct {
	output     string
	frequency  float64
	length     float64
	amplitude  float64
	sampleRate uint32
	bits       uint16
	channels   uint16
	float      bool
	bw64       bool
}

func loadSettings(args []string) (settings, int, error) {
	flagSet := pflag.NewFlagSet("gen-sine", pflag.ContinueOnError)

	flagSet.StringP("output", "o", "output.wav", "filename to write to")
	flagSet.Float64P("frequency", "f", 440, "frequency in hertz to generate")
	flagSet.Float64P("length", "l", 5, "length in seconds of output file")
	flagSet.Float64("amplitude", 1, "peak amplitude, 1 is full scale")
	flagSet.Uint32("sample-rate", 48000, "sample rate in hertz")
	flagSet.Uint16("bits", 16, "bits per sample of integer output")
	flagSet.Uint16("channels", 1, "number of channels, each carrying the tone")
	flagSet.Bool("float", false, "write 32-bit float samples")
	flagSet.Bool("bw64", false, "use BW64 instead of RF64 for outputs past 4 GiB")
	flagSet.String("config", "", "config file with defaults for the flags above")
	flagSet.CountP("verbose", "v", "log verbosity, repeat for more")

	if err := flagSet.Parse(args); err != nil {
		return settings{}, 0, err
	}

	v := viper.New()
	v.SetEnvPrefix("BWAV")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flagSet); err != nil {
		return settings{}, 0, fmt.Errorf("failed to bind flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return settings{}, 0, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	s := settings{
		output:     v.GetString("output"),
		frequency:  v.GetFloat64("frequency"),
		length:     v.GetFloat64("length"),
		amplitude:  v.GetFloat64("amplitude"),
		sampleRate: uint32(v.GetUint("sample-rate")),
		bits:       uint16(v.GetUint("bits")),
		channels:   uint16(v.GetUint("channels")),
		float:      v.GetBool("float"),
		bw64:       v.GetBool("bw64"),
	}

	switch {
	case s.sampleRate == 0:
		return settings{}, 0, fmt.Errorf("invalid sample rate %d", s.sampleRate)
	case s.channels == 0:
		return settings{}, 0, fmt.Errorf("invalid channel count %d", s.channels)
	case s.length < 0:
		return settings{}, 0, fmt.Errorf("invalid length %f", s.length)
	}

	return s, v.GetInt("verbose"), nil
}

func (s settings) format() bwav.Format {
	if s.float {
		return bwav.NewFloatFormat(s.sampleRate, s.channels)
	}

	return bwav.NewPCMFormat(s.sampleRate, s.bits, s.channels)
}

func (s settings) codingHistory() string {
	mode := "mono"
	if s.channels == 2 {
		mode = "stereo"
	} else if s.channels > 2 {
		mode = "multitrack"
	}

	bits := s.bits
	if s.float {
		bits = 32
	}

	return fmt.Sprintf("A=PCM,F=%d,W=%d,M=%s,T=gen-sine %.2f Hz\r\n", s.sampleRate, bits, mode, s.frequency)
}

func run(args []string) error {
	s, verbosity, err := loadSettings(args)
	if err != nil {
		return err
	}

	stdr.SetVerbosity(verbosity)
	logger := stdr.New(log.New(os.Stderr, "gen-sine: ", log.LstdFlags))

	logger.Info("generating sine", "seconds", s.length, "hz", s.frequency, "output", s.output)

	opts := []bwav.Option{bwav.WithLogger(logger)}
	if s.bw64 {
		opts = append(opts, bwav.WithBW64())
	}

	w, err := bwav.Create(s.output, s.format(), opts...)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", s.output, err)
	}

	bext := bwav.BroadcastExtension{
		Description:   fmt.Sprintf("%.2f Hz sine", s.frequency),
		Originator:    "gen-sine",
		CodingHistory: s.codingHistory(),
	}
	bext.SetOrigination(time.Now())

	if err := w.WriteBroadcastExtension(bext); err != nil {
		w.Close()

		return err
	}

	fw, err := w.FrameWriter()
	if err != nil {
		w.Close()

		return err
	}

	numFrames := int(math.Round(float64(s.sampleRate) * s.length))
	channels := int(s.channels)
	block := make([]float32, blockFrames*channels)

	for start := 0; start < numFrames; start += blockFrames {
		frames := min(blockFrames, numFrames-start)

		for i := range frames {
			t := float64(start+i) / float64(s.sampleRate)
			v := float32(s.amplitude * math.Sin(t*s.frequency*2*math.Pi))

			for c := range channels {
				block[i*channels+c] = v
			}
		}

		if err := fw.WriteFloat32(block[:frames*channels]); err != nil {
			fw.Close()

			return err
		}
	}

	return fw.Close()
}
