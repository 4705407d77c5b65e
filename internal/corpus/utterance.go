package corpus

import (
	"sort"
	"strconv"
	"strings"
)

// Interval is a labelled time span inside a sound file.
type Interval struct {
	Begin float64 `json:"begin"`
	End   float64 `json:"end"`
	Label string  `json:"label"`
}

// Utterance is a single speaker-attributed stretch of speech. Segments carry
// explicit boundaries; an utterance without boundaries spans its whole file.
type Utterance struct {
	Speaker *Speaker
	File    *File

	// SpeakerName and FileName are the denormalized identities that build
	// the utterance name and relink references after a record reload.
	SpeakerName string
	FileName    string

	Begin   *float64
	End     *float64
	Channel int

	// Text is the normalized transcript for this utterance.
	Text string
	// TranscriptionText is produced by external transcription tooling and
	// preferred over Text when writing annotations.
	TranscriptionText *string

	// Ignored marks utterances excluded from feature extraction.
	Ignored bool
	// Features is an opaque reference to this utterance's feature archive.
	Features      string
	FeatureLength int

	PhoneLabels []Interval
	WordLabels  []Interval

	oovs map[string]struct{}
}

// NewUtterance builds a whole-file utterance.
func NewUtterance(speaker *Speaker, file *File, text string) *Utterance {
	u := &Utterance{Speaker: speaker, File: file, Text: text}
	if speaker != nil {
		u.SpeakerName = speaker.name
	}
	if file != nil {
		u.FileName = file.name
	}
	return u
}

// NewSegment builds an utterance bounded to [begin, end] seconds.
func NewSegment(speaker *Speaker, file *File, begin, end float64, text string) *Utterance {
	u := NewUtterance(speaker, file, text)
	u.Begin = &begin
	u.End = &end
	return u
}

// Name derives the utterance identifier from its file, speaker and
// boundaries. Segments differing only in boundaries get distinct names.
func (u *Utterance) Name() string {
	base := sanitizeNameComponent(u.FileName)
	if u.SpeakerName != "" && !strings.HasPrefix(base, u.SpeakerName+"-") {
		base = u.SpeakerName + "-" + base
	}
	if u.IsSegment() {
		base = base + "-" + formatBoundary(*u.Begin) + "-" + formatBoundary(*u.End)
	}
	return sanitizeNameComponent(base)
}

// sanitizeNameComponent rewrites path-ish characters so utterance names stay
// single-token: spaces become "-space-", dots and underscores become "-". It
// runs once over the file name and once over the finished identifier, which
// also folds the decimal points of the boundary values.
func sanitizeNameComponent(s string) string {
	s = strings.ReplaceAll(s, " ", "-space-")
	s = strings.ReplaceAll(s, ".", "-")
	s = strings.ReplaceAll(s, "_", "-")
	return s
}

func formatBoundary(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// IsSegment reports whether explicit boundaries are set. An utterance with
// only one boundary is invalid and not a segment.
func (u *Utterance) IsSegment() bool { return u.Begin != nil && u.End != nil }

// Duration returns the utterance length in seconds, falling back to the
// file duration for utterances without boundaries.
func (u *Utterance) Duration() float64 {
	if u.IsSegment() {
		return *u.End - *u.Begin
	}
	if u.File != nil {
		return u.File.Duration()
	}
	return 0
}

// SetSpeaker reassigns the utterance to a new speaker. The utterance name
// embeds the speaker name, so the utterance is re-keyed in every collection
// holding it and the file's tier ordering is adjusted.
func (u *Utterance) SetSpeaker(s *Speaker) {
	old := u.Speaker
	if old == s {
		return
	}
	if old != nil {
		old.DeleteUtterance(u)
	}
	if u.File != nil {
		u.File.DeleteUtterance(u)
	}
	u.Speaker = s
	u.SpeakerName = ""
	if s != nil {
		s.AddUtterance(u)
	}
	if u.File != nil {
		u.File.Utterances.Add(u)
		u.File.replaceSpeaker(old, s)
	}
}

// OutputText returns the transcription text when present, the raw text
// otherwise. The annotation writer labels intervals with it.
func (u *Utterance) OutputText() string {
	if u.TranscriptionText != nil {
		return *u.TranscriptionText
	}
	return u.Text
}

// ResolveTokens expands the utterance text through a pronunciation
// dictionary. Known words expand to their lookup parts; unknown words are
// replaced by the dictionary's OOV marker and recorded on the utterance.
func (u *Utterance) ResolveTokens(d Dictionary) []string {
	if d == nil {
		return strings.Fields(u.Text)
	}
	var out []string
	for _, w := range strings.Fields(u.Text) {
		if !d.Check(w) {
			u.AddOOV(w)
			out = append(out, d.OOVWord())
			continue
		}
		out = append(out, d.Lookup(w)...)
	}
	return out
}

// AddOOV records an out-of-vocabulary word seen in this utterance.
func (u *Utterance) AddOOV(word string) {
	if u.oovs == nil {
		u.oovs = make(map[string]struct{})
	}
	u.oovs[word] = struct{}{}
}

// OOVs returns the recorded out-of-vocabulary words, sorted.
func (u *Utterance) OOVs() []string {
	if len(u.oovs) == 0 {
		return nil
	}
	out := make([]string, 0, len(u.oovs))
	for w := range u.oovs {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
