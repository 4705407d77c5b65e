package corpus

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spokenlab/corpuskit/internal/textgrid"
)

// SpeakerPolicy controls how a speaker identity is derived for files whose
// transcripts carry no tier names.
//
//	""            the parent directory name
//	"4" (digits)  the first N characters of the file name
//	"prosodylab"  the second "_"-separated token of the file name
//	anything else the whole file name
type SpeakerPolicy string

const (
	// PolicyDirectory attributes utterances to the parent directory name.
	PolicyDirectory SpeakerPolicy = ""
	// PolicyProsodylab attributes utterances to the second underscore-
	// separated token of the file name.
	PolicyProsodylab SpeakerPolicy = "prosodylab"
)

// SpeakerName derives the speaker for a file name under this policy. dir is
// the directory holding the file's sound file, or its transcript when no
// sound file exists.
func (p SpeakerPolicy) SpeakerName(fileName, dir string) string {
	switch {
	case p == PolicyDirectory:
		return filepath.Base(dir)
	case p.characters() > 0:
		runes := []rune(fileName)
		n := p.characters()
		if n > len(runes) {
			n = len(runes)
		}
		return string(runes[:n])
	case p == PolicyProsodylab:
		parts := strings.Split(fileName, "_")
		if len(parts) > 1 {
			return parts[1]
		}
		return fileName
	default:
		return fileName
	}
}

func (p SpeakerPolicy) characters() int {
	n, err := strconv.Atoi(string(p))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// ParseOptions carries the collaborators for ParseFile. The zero value
// parses transcripts with whitespace tokenization and no audio probing.
type ParseOptions struct {
	// Policy decides speaker attribution for plain transcripts.
	Policy SpeakerPolicy
	// Sanitize tokenizes transcript text; nil splits on whitespace.
	Sanitize SanitizeFunc
	// Info probes sound files; required when a sound path is given.
	Info InfoFunc
	// Waveform loads normalized samples on demand.
	Waveform WaveformFunc
	// Stop is polled between annotation intervals; returning true abandons
	// the parse and keeps the utterances read so far.
	Stop func() bool
}

// ParseFile reads one corpus file pair into an object graph. name is the
// shared base name of the pair; wavPath or textPath may be empty, not both.
func ParseFile(name, wavPath, textPath, relativePath string, opts ParseOptions) (*File, error) {
	file, err := NewFile(wavPath, textPath, relativePath)
	if err != nil {
		return nil, err
	}
	file.SetInfoFunc(opts.Info)
	file.SetWaveformFunc(opts.Waveform)
	if wavPath != "" {
		if err := file.LoadInfo(); err != nil {
			return nil, err
		}
	}

	dir := filepath.Dir(wavPath)
	if wavPath == "" {
		dir = filepath.Dir(textPath)
	}

	// Tiered annotations name their own speakers; everything else needs the
	// root speaker decided up front.
	var root *Speaker
	if opts.Policy != PolicyDirectory || file.TextType() != "textgrid" {
		root = NewSpeaker(opts.Policy.SpeakerName(name, dir))
	}
	if err := file.loadText(root, opts); err != nil {
		return nil, err
	}
	return file, nil
}

func (f *File) loadText(root *Speaker, opts ParseOptions) error {
	switch f.TextType() {
	case "lab":
		return f.loadTranscript(root, opts)
	case "textgrid":
		return f.loadTextGrid(root, opts)
	default:
		// No transcript on disk: one empty utterance spanning the file.
		f.AddUtterance(NewUtterance(root, f, ""))
		return nil
	}
}

func (f *File) loadTranscript(root *Speaker, opts ParseOptions) error {
	data, err := os.ReadFile(f.TextPath)
	if err != nil {
		return &TextParseError{Path: f.TextPath, Err: err}
	}
	if !utf8.Valid(data) {
		return &TextParseError{Path: f.TextPath, Err: fmt.Errorf("invalid UTF-8")}
	}
	text := strings.ToLower(strings.TrimSpace(string(data)))
	words := tokenize(text, opts.Sanitize)
	f.AddUtterance(NewUtterance(root, f, strings.Join(words, " ")))
	return nil
}

func (f *File) loadTextGrid(root *Speaker, opts ParseOptions) error {
	doc, err := textgrid.Read(f.TextPath)
	if err != nil {
		return &TextGridParseError{Path: f.TextPath, Err: err}
	}
	if len(doc.Tiers) == 0 {
		return &TextGridParseError{Path: f.TextPath, Err: fmt.Errorf("number of tiers parsed was zero")}
	}
	if f.NumChannels() > 2 {
		return fmt.Errorf("%s has more than two channels", f.WavPath)
	}
	duration := f.Duration()
	for _, tier := range doc.Tiers {
		if strings.EqualFold(strings.TrimSpace(tier.Name), "notes") {
			continue
		}
		if !tier.IsInterval() {
			continue
		}
		speaker := root
		if speaker == nil {
			speaker = NewSpeaker(strings.TrimSpace(tier.Name))
			// The tier keeps its slot in the ordering even when every
			// interval tokenizes to nothing.
			f.registerSpeaker(speaker)
		}
		for _, iv := range tier.Intervals {
			if opts.Stop != nil && opts.Stop() {
				return nil
			}
			text := strings.ToLower(strings.TrimSpace(iv.Text))
			words := tokenize(text, opts.Sanitize)
			if len(words) == 0 {
				continue
			}
			begin := round4(iv.XMin)
			end := round4(iv.XMax)
			if duration > 0 && end > duration {
				end = duration
			}
			f.AddUtterance(NewSegment(speaker, f, begin, end, strings.Join(words, " ")))
		}
	}
	return nil
}

func tokenize(text string, sanitize SanitizeFunc) []string {
	if sanitize == nil {
		return strings.Fields(text)
	}
	return sanitize(text)
}

// round4 reproduces annotation boundary rounding to 4 decimal places.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
