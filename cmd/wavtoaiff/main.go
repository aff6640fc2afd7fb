// This tool converts a wav file into an identical aiff file and stores
// it in the same folder as the source.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/cwbudde/bwav"
	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
	"github.com/go-logr/stdr"
)

const bufferFrames = 65536

var errMissingPath = errors.New("missing -path flag")

func main() {
	err := run(os.Args[1:], os.Stdout)
	if errors.Is(err, errMissingPath) {
		fmt.Println("You must set the -path flag")
		os.Exit(1)
	}

	if err != nil {
		log.Fatal(err)
	}
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	usr, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("failed to get the user home directory: %w", err)
	}

	return filepath.Join(usr.HomeDir, path[2:]), nil
}

func run(args []string, out io.Writer) error {
	flagSet := flag.NewFlagSet("wavtoaiff", flag.ContinueOnError)

	pathFlag := flagSet.String("path", "", "The path to the wav file to convert to aiff")
	verbosity := flagSet.Int("v", 0, "log verbosity")

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if *pathFlag == "" {
		return errMissingPath
	}

	sourcePath, err := expandHome(*pathFlag)
	if err != nil {
		return err
	}

	stdr.SetVerbosity(*verbosity)
	logger := stdr.New(log.New(os.Stderr, "wavtoaiff: ", 0))

	rd, err := bwav.Open(sourcePath, bwav.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("invalid path %s: %w", sourcePath, err)
	}

	fr, err := rd.FrameReader()
	if err != nil {
		rd.Close()

		return err
	}
	defer fr.Close()

	outPath := sourcePath[:len(sourcePath)-len(filepath.Ext(sourcePath))] + ".aif"

	if err := convert(fr, outPath); err != nil {
		return err
	}

	fmt.Fprintf(out, "Wav file converted to %s\n", outPath)

	return nil
}

func convert(fr *bwav.FrameReader, outPath string) (err error) {
	f := fr.Format()
	samples := bufferFrames * int(f.ChannelCount)

	buf := &audio.IntBuffer{Data: make([]int, samples)}

	n, err := fr.ReadIntBuffer(buf)
	if err != nil {
		return err
	}

	outFile, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outPath, err)
	}

	defer func() {
		cerr := outFile.Close()
		if cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	// The depth of the integers ReadIntBuffer hands out is known after the
	// first read.
	encoder := aiff.NewEncoder(outFile, int(f.SampleRate), buf.SourceBitDepth, int(f.ChannelCount))

	for n > 0 {
		if err := encoder.Write(buf); err != nil {
			return fmt.Errorf("failed to write aiff frames: %w", err)
		}

		buf.Data = buf.Data[:samples]

		n, err = fr.ReadIntBuffer(buf)
		if err != nil {
			return err
		}
	}

	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to close aiff encoder: %w", err)
	}

	return nil
}
