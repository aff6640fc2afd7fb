// This command line tool helps the user tag wav files by injecting metadata in
// the file in a safe way.
// All files are copied and stored in the wavtagger folder by the original files.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cwbudde/bwav"
	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
)

const copyBlockFrames = 8192

var errNothingToTag = errors.New("nothing to tag")

// tags are the metadata applied to every tagged file. Empty fields leave the
// value of the source file.
type tags struct {
	titleRegexp *regexp.Regexp

	title     string
	artist    string
	comments  string
	copyright string
	genre     string

	description string
	originator  string
}

func main() {
	err := run(os.Args[1:], os.Stdout)
	if errors.Is(err, errNothingToTag) {
		fmt.Println("You need to pass -file or -dir to indicate what file or folder content to tag.")
		os.Exit(1)
	}

	if err != nil {
		log.Fatal(err)
	}
}

func run(args []string, out io.Writer) error {
	flagSet := flag.NewFlagSet("wavtagger", flag.ContinueOnError)

	fileToTag := flagSet.String("file", "", "Path to the wave file to tag")
	dirToTag := flagSet.String("dir", "", "Directory containing all the wav files to tag")
	titleRegexp := flagSet.String("regexp", "", `submatch regexp to use to set the title dynamically by extracting it from the filename (ignoring the extension), example: 'my_files_\d\d_(.*)'`)
	verbosity := flagSet.Int("v", 0, "log verbosity")

	var t tags

	flagSet.StringVar(&t.title, "title", "", "File's title")
	flagSet.StringVar(&t.artist, "artist", "", "File's artist")
	flagSet.StringVar(&t.comments, "comments", "", "File's comments")
	flagSet.StringVar(&t.copyright, "copyright", "", "File's copyright")
	flagSet.StringVar(&t.genre, "genre", "", "File's genre")
	flagSet.StringVar(&t.description, "description", "", "Broadcast extension description")
	flagSet.StringVar(&t.originator, "originator", "", "Broadcast extension originator")

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if *fileToTag == "" && *dirToTag == "" {
		return errNothingToTag
	}

	if *titleRegexp != "" {
		re, err := regexp.Compile(*titleRegexp)
		if err != nil {
			return fmt.Errorf("invalid title regexp: %w", err)
		}

		t.titleRegexp = re
	}

	stdr.SetVerbosity(*verbosity)
	logger := stdr.New(log.New(os.Stderr, "wavtagger: ", 0))

	if *fileToTag != "" {
		outPath, err := tagFile(*fileToTag, t, logger)
		if err != nil {
			return fmt.Errorf("something went wrong when tagging %s: %w", *fileToTag, err)
		}

		fmt.Fprintln(out, "Tagged file available at", outPath)
	}

	if *dirToTag != "" {
		fileInfos, err := os.ReadDir(*dirToTag)
		if err != nil {
			return err
		}

		for _, fi := range fileInfos {
			if fi.IsDir() || !strings.HasPrefix(strings.ToLower(filepath.Ext(fi.Name())), ".wav") {
				continue
			}

			filePath := filepath.Join(*dirToTag, fi.Name())

			outPath, err := tagFile(filePath, t, logger)
			if err != nil {
				logger.Error(err, "tagging failed", "path", filePath)

				continue
			}

			fmt.Fprintln(out, "Tagged file available at", outPath)
		}
	}

	return nil
}

// apply merges t into the metadata read from the file at path.
func (t tags) apply(path string, info *bwav.Info, bext *bwav.BroadcastExtension) {
	if t.titleRegexp != nil {
		filename := filepath.Base(path)
		filename = filename[:len(filename)-len(filepath.Ext(path))]

		if matches := t.titleRegexp.FindStringSubmatch(filename); len(matches) > 1 {
			info.Title = matches[1]
		}
	}

	setIfNotEmpty(&info.Title, t.title)
	setIfNotEmpty(&info.Artist, t.artist)
	setIfNotEmpty(&info.Comments, t.comments)
	setIfNotEmpty(&info.Copyright, t.copyright)
	setIfNotEmpty(&info.Genre, t.genre)
	setIfNotEmpty(&bext.Description, t.description)
	setIfNotEmpty(&bext.Originator, t.originator)
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// readMetadata returns the INFO, bext and cue metadata of rd, zero values for
// the chunks the file doesn't have.
func readMetadata(rd *bwav.Reader) (*bwav.Info, *bwav.BroadcastExtension, []bwav.Cue, error) {
	info, err := rd.Info()
	if errors.Is(err, bwav.ErrChunkMissing) {
		info, err = &bwav.Info{}, nil
	}

	if err != nil {
		return nil, nil, nil, err
	}

	bext, err := rd.BroadcastExtension()
	if errors.Is(err, bwav.ErrChunkMissing) {
		bext, err = &bwav.BroadcastExtension{}, nil
	}

	if err != nil {
		return nil, nil, nil, err
	}

	cues, err := rd.CuePoints()
	if err != nil {
		return nil, nil, nil, err
	}

	return info, bext, cues, nil
}

// rewritten are the chunks tagFile writes itself rather than copying.
var rewritten = []bwav.FourCC{bwav.SigBext, bwav.SigList, bwav.SigCue}

func tagFile(path string, t tags, logger logr.Logger) (outPath string, err error) {
	rd, err := bwav.Open(path, bwav.WithLogger(logger))
	if err != nil {
		return "", err
	}
	defer rd.Close()

	info, bext, cues, err := readMetadata(rd)
	if err != nil {
		return "", fmt.Errorf("couldn't read metadata of %s: %w", path, err)
	}

	t.apply(path, info, bext)

	audioIn, err := bwav.Open(path)
	if err != nil {
		return "", err
	}

	fr, err := audioIn.FrameReader()
	if err != nil {
		audioIn.Close()

		return "", err
	}
	defer fr.Close()

	outputDir := filepath.Join(filepath.Dir(path), "wavtagger")
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	outPath = filepath.Join(outputDir, filepath.Base(path))

	w, err := bwav.Create(outPath, fr.Format(), bwav.WithLogger(logger))
	if err != nil {
		return "", fmt.Errorf("couldn't create %s: %w", outPath, err)
	}

	fw, err := writeTagged(w, rd, info, bext, cues)
	if err != nil {
		w.Close()

		return "", err
	}

	if err := copyFrames(fw, fr); err != nil {
		fw.Close()

		return "", fmt.Errorf("failed to copy audio of %s: %w", path, err)
	}

	w, err = fw.End()
	if err != nil {
		return "", err
	}

	if err := bwav.CopyChunks(w, rd, true, rewritten...); err != nil {
		w.Close()

		return "", err
	}

	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", outPath, err)
	}

	logger.V(1).Info("tagged", "source", path, "output", outPath)

	return outPath, nil
}

// writeTagged writes the metadata that precedes the audio data and returns
// the frame writer for it.
func writeTagged(w *bwav.Writer, rd *bwav.Reader, info *bwav.Info, bext *bwav.BroadcastExtension, cues []bwav.Cue) (*bwav.FrameWriter, error) {
	if err := w.WriteBroadcastExtension(*bext); err != nil {
		return nil, err
	}

	if err := bwav.CopyChunks(w, rd, false, rewritten...); err != nil {
		return nil, err
	}

	if !info.IsZero() {
		if err := w.WriteInfo(*info); err != nil {
			return nil, err
		}
	}

	if len(cues) > 0 {
		if err := w.WriteCues(cues); err != nil {
			return nil, err
		}
	}

	return w.FrameWriter()
}

// copyFrames copies every frame of fr to fw, through float32 for float files
// and int32 otherwise so integer samples up to 32 bits survive unchanged.
func copyFrames(fw *bwav.FrameWriter, fr *bwav.FrameReader) error {
	kind := fr.Format().CommonFormat().Kind
	if kind == bwav.KindIEEEFloatPCM || kind == bwav.KindAmbisonicBFloatPCM {
		return copyBlocks(fw, fr, make([]float32, copyBlockFrames*int(fr.Format().ChannelCount)))
	}

	return copyBlocks(fw, fr, make([]int32, copyBlockFrames*int(fr.Format().ChannelCount)))
}

func copyBlocks[S bwav.Sample](fw *bwav.FrameWriter, fr *bwav.FrameReader, buf []S) error {
	channels := int(fr.Format().ChannelCount)

	for {
		n, err := bwav.ReadFrames(fr, buf)
		if err != nil {
			return err
		}

		if n == 0 {
			return nil
		}

		if err := bwav.WriteFrames(fw, buf[:n*channels]); err != nil {
			return err
		}
	}
}
