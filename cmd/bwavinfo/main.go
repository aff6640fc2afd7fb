// This tool prints the chunk directory, format and metadata of a wav,
// Broadcast-WAV or RF64 file.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cwbudde/bwav"
	"github.com/go-logr/stdr"
)

const missingPathMessage = "You must pass the path of the file to inspect"

func main() {
	err := run(os.Args[1:], os.Stdout)
	if err == nil {
		return
	}

	if errors.Is(err, errMissingPath) {
		fmt.Println(missingPathMessage)
		os.Exit(1)
	}

	log.Fatal(err)
}

var errMissingPath = errors.New("missing path argument")

func run(args []string, out io.Writer) error {
	flagSet := flag.NewFlagSet("bwavinfo", flag.ContinueOnError)
	verbosity := flagSet.Int("v", 0, "log verbosity, 1 logs every chunk found")

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if flagSet.NArg() < 1 {
		return errMissingPath
	}

	stdr.SetVerbosity(*verbosity)
	logger := stdr.New(log.New(os.Stderr, "bwavinfo: ", 0))

	rd, err := bwav.Open(flagSet.Arg(0), bwav.WithLogger(logger))
	if err != nil {
		return err
	}
	defer rd.Close()

	if err := printFormat(out, rd); err != nil {
		return err
	}

	chunks, err := rd.Chunks()
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Chunks:")

	for _, c := range chunks {
		fmt.Fprintf(out, "\t%s\n", c)
	}

	if err := printChannels(out, rd); err != nil {
		return err
	}

	found, err := printMetadata(out, rd)
	if err != nil {
		return err
	}

	if !found {
		fmt.Fprintln(out, "No metadata present")
	}

	return nil
}

func printFormat(out io.Writer, rd *bwav.Reader) error {
	f, err := rd.Format()
	if err != nil {
		return err
	}

	frames, err := rd.FrameLength()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Form: %s\n", rd.Form())
	fmt.Fprintf(out, "Format: %s\n", f)
	fmt.Fprintf(out, "Frames: %d (%s)\n", frames, bwav.Duration(frames, f.SampleRate))

	return nil
}

func printChannels(out io.Writer, rd *bwav.Reader) error {
	channels, err := rd.Channels()
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Channels:")

	for _, c := range channels {
		fmt.Fprintf(out, "\t[%d] %s", c.Index, c.Speaker)

		for _, id := range c.ADMAudioIDs {
			fmt.Fprintf(out, " %s/%s/%s", id.TrackUID, id.ChannelFormatRef, id.PackRef)
		}

		fmt.Fprintln(out)
	}

	return nil
}

// printMetadata prints the bext, INFO, smpl and cue metadata and reports whether
// the file has any.
func printMetadata(out io.Writer, rd *bwav.Reader) (bool, error) {
	var found bool

	bext, err := rd.BroadcastExtension()
	switch {
	case errors.Is(err, bwav.ErrChunkMissing):
	case err != nil:
		return false, err
	default:
		found = true

		fmt.Fprintln(out, "Broadcast extension:")
		fmt.Fprintf(out, "\tDescription: %s\n", bext.Description)
		fmt.Fprintf(out, "\tOriginator: %s\n", bext.Originator)
		fmt.Fprintf(out, "\tOriginatorReference: %s\n", bext.OriginatorReference)
		fmt.Fprintf(out, "\tOrigination: %s %s\n", bext.OriginationDate, bext.OriginationTime)
		fmt.Fprintf(out, "\tTimeReference: %d\n", bext.TimeReference)
		fmt.Fprintf(out, "\tVersion: %d\n", bext.Version)

		if bext.Loudness != nil {
			fmt.Fprintf(out, "\tLoudness: %+v\n", *bext.Loudness)
		}

		if bext.CodingHistory != "" {
			fmt.Fprintf(out, "\tCodingHistory: %q\n", bext.CodingHistory)
		}
	}

	info, err := rd.Info()
	switch {
	case errors.Is(err, bwav.ErrChunkMissing):
	case err != nil:
		return false, err
	default:
		found = true

		fmt.Fprintln(out, "Info:")
		fmt.Fprintf(out, "\tArtist: %s\n", info.Artist)
		fmt.Fprintf(out, "\tTitle: %s\n", info.Title)
		fmt.Fprintf(out, "\tComments: %s\n", info.Comments)
		fmt.Fprintf(out, "\tCopyright: %s\n", info.Copyright)
		fmt.Fprintf(out, "\tCreationDate: %s\n", info.CreationDate)
		fmt.Fprintf(out, "\tEngineer: %s\n", info.Engineer)
		fmt.Fprintf(out, "\tTechnician: %s\n", info.Technician)
		fmt.Fprintf(out, "\tGenre: %s\n", info.Genre)
		fmt.Fprintf(out, "\tKeywords: %s\n", info.Keywords)
		fmt.Fprintf(out, "\tMedium: %s\n", info.Medium)
		fmt.Fprintf(out, "\tProduct: %s\n", info.Product)
		fmt.Fprintf(out, "\tSubject: %s\n", info.Subject)
		fmt.Fprintf(out, "\tSoftware: %s\n", info.Software)
		fmt.Fprintf(out, "\tSource: %s\n", info.Source)
		fmt.Fprintf(out, "\tLocation: %s\n", info.Location)
		fmt.Fprintf(out, "\tTrackNbr: %s\n", info.TrackNbr)
	}

	sampler, err := rd.Sampler()
	switch {
	case errors.Is(err, bwav.ErrChunkMissing):
	case err != nil:
		return false, err
	default:
		found = true

		fmt.Fprintln(out, "Sample Info:")
		fmt.Fprintf(out, "\tMIDIUnityNote: %d\n", sampler.MIDIUnityNote)
		fmt.Fprintf(out, "\tSamplePeriod: %d\n", sampler.SamplePeriod)

		for i, l := range sampler.Loops {
			fmt.Fprintf(out, "\tloop [%d]:\t%+v\n", i, l)
		}
	}

	cues, err := rd.CuePoints()
	if err != nil {
		return false, err
	}

	if len(cues) > 0 {
		found = true

		fmt.Fprintln(out, "Cue points:")
	}

	for i, c := range cues {
		fmt.Fprintf(out, "\tcue point [%d]:\t%+v\n", i, c)
	}

	return found, nil
}
