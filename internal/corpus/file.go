package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File pairs a sound file with its transcript. Either path may be absent,
// never both.
type File struct {
	name string

	// WavPath is the sound file location, empty for transcript-only files.
	WavPath string
	// TextPath is the transcript location, empty for untranscribed audio.
	TextPath string
	// RelativePath is the file's directory relative to the corpus root, used
	// to mirror the source layout when writing annotations elsewhere.
	RelativePath string

	// Utterances in this file, keyed by utterance name.
	Utterances *Collection[*Utterance]

	// Aligned marks files whose utterances carry externally produced word
	// and phone labels; the writer skips raw intervals for them.
	Aligned bool

	speakerOrdering []*Speaker

	info     *SoundInfo
	infoFn   InfoFunc
	waveform []float64
	waveFn   WaveformFunc
}

// NewFile builds a file from its source paths. The file name is the base
// name of the sound file when present, of the transcript otherwise.
func NewFile(wavPath, textPath, relativePath string) (*File, error) {
	f := &File{
		WavPath:      wavPath,
		TextPath:     textPath,
		RelativePath: relativePath,
		Utterances:   NewCollection[*Utterance](),
	}
	switch {
	case wavPath != "":
		f.name = baseName(wavPath)
	case textPath != "":
		f.name = baseName(textPath)
	default:
		return nil, ErrMissingPath
	}
	return f, nil
}

// baseName strips the directory and extension from a path.
func baseName(path string) string {
	b := filepath.Base(path)
	return strings.TrimSuffix(b, filepath.Ext(b))
}

func (f *File) Name() string { return f.name }

// SetInfoFunc installs the audio prober used for lazy metadata loading.
func (f *File) SetInfoFunc(fn InfoFunc) { f.infoFn = fn }

// SetWaveformFunc installs the sample loader used for lazy waveform access.
func (f *File) SetWaveformFunc(fn WaveformFunc) { f.waveFn = fn }

// LoadInfo probes the sound file metadata once and caches it. Calling it
// again is a no-op until ReloadInfo.
func (f *File) LoadInfo() error {
	if f.info != nil {
		return nil
	}
	return f.ReloadInfo()
}

// ReloadInfo discards any cached metadata and probes the sound file again.
func (f *File) ReloadInfo() error {
	f.info = nil
	if f.WavPath == "" {
		return fmt.Errorf("%s: no sound file to probe", f.name)
	}
	if f.infoFn == nil {
		return fmt.Errorf("%s: no audio prober configured", f.name)
	}
	info, err := f.infoFn(f.WavPath)
	if err != nil {
		return err
	}
	f.info = info
	return nil
}

// Info returns the sound file metadata, probing on first use.
func (f *File) Info() (*SoundInfo, error) {
	if f.info == nil {
		if err := f.LoadInfo(); err != nil {
			return nil, err
		}
	}
	return f.info, nil
}

// Duration returns the sound file length in seconds. Transcript-only files
// and failed probes report zero.
func (f *File) Duration() float64 {
	if f.WavPath == "" {
		return 0
	}
	if f.info == nil && f.LoadInfo() != nil {
		return 0
	}
	return f.info.Duration
}

// NumChannels returns the sound file channel count, zero when unknown.
func (f *File) NumChannels() int {
	if f.WavPath == "" {
		return 0
	}
	if f.info == nil && f.LoadInfo() != nil {
		return 0
	}
	return f.info.NumChannels
}

// Waveform returns normalized samples, loading them on first use.
func (f *File) Waveform() ([]float64, error) {
	if f.waveform != nil {
		return f.waveform, nil
	}
	if f.WavPath == "" {
		return nil, fmt.Errorf("%s: no sound file to load", f.name)
	}
	if f.waveFn == nil {
		return nil, fmt.Errorf("%s: no waveform loader configured", f.name)
	}
	w, err := f.waveFn(f.WavPath)
	if err != nil {
		return nil, err
	}
	f.waveform = w
	return w, nil
}

// AddUtterance registers an utterance with this file and records its speaker
// in the tier ordering on first sight.
func (f *File) AddUtterance(u *Utterance) {
	u.File = f
	u.FileName = f.name
	f.Utterances.Add(u)
	f.registerSpeaker(u.Speaker)
}

// DeleteUtterance removes the utterance from this file's set.
func (f *File) DeleteUtterance(u *Utterance) {
	_ = f.Utterances.Remove(u.Name())
}

// SpeakerOrdering lists this file's speakers in order of first utterance.
// The annotation writer emits one tier per entry.
func (f *File) SpeakerOrdering() []*Speaker { return f.speakerOrdering }

func (f *File) registerSpeaker(s *Speaker) {
	if s == nil {
		return
	}
	for _, cur := range f.speakerOrdering {
		if cur.name == s.name {
			return
		}
	}
	f.speakerOrdering = append(f.speakerOrdering, s)
}

// replaceSpeaker updates the tier ordering after an utterance moved from old
// to repl. old keeps its slot while it still owns utterances here; once
// vacated, repl takes the slot over unless it is already listed.
func (f *File) replaceSpeaker(old, repl *Speaker) {
	oldIdx := -1
	replPresent := false
	for i, s := range f.speakerOrdering {
		if s == old {
			oldIdx = i
			continue
		}
		if repl != nil && s.name == repl.name {
			replPresent = true
		}
	}
	oldInUse := false
	if old != nil {
		for _, u := range f.Utterances.All() {
			if u.Speaker == old {
				oldInUse = true
				break
			}
		}
	}
	switch {
	case oldIdx < 0 || oldInUse:
		f.registerSpeaker(repl)
	case replPresent || repl == nil:
		f.speakerOrdering = append(f.speakerOrdering[:oldIdx], f.speakerOrdering[oldIdx+1:]...)
	default:
		f.speakerOrdering[oldIdx] = repl
	}
}

// TextType classifies the transcript: "lab" for plain text, "textgrid" for
// tiered annotations, "" when no transcript is on disk.
func (f *File) TextType() string {
	if f.TextPath == "" {
		return ""
	}
	if _, err := os.Stat(f.TextPath); err != nil {
		return ""
	}
	if strings.EqualFold(filepath.Ext(f.TextPath), ".textgrid") {
		return "textgrid"
	}
	return "lab"
}

// HasSoundFile reports whether the sound file exists on disk.
func (f *File) HasSoundFile() bool {
	if f.WavPath == "" {
		return false
	}
	_, err := os.Stat(f.WavPath)
	return err == nil
}

// HasTextFile reports whether the transcript exists on disk.
func (f *File) HasTextFile() bool { return f.TextType() != "" }

func (f *File) NumSpeakers() int { return len(f.speakerOrdering) }

func (f *File) NumUtterances() int { return f.Utterances.Len() }
