package corpus

import "strings"

// Speaker is a named talker owning a set of utterances. A speaker may exist
// before any utterance references it and survives with an empty set.
type Speaker struct {
	name string

	// Utterances spoken by this speaker, keyed by utterance name.
	Utterances *Collection[*Utterance]

	// CMVN is an opaque reference to this speaker's feature-normalization
	// stats archive, populated by external tooling.
	CMVN string

	dictionary     Dictionary
	dictionaryName string
	vocabulary     map[string]struct{}
	wordCounts     map[string]int
}

func NewSpeaker(name string) *Speaker {
	return &Speaker{
		name:       name,
		Utterances: NewCollection[*Utterance](),
		wordCounts: make(map[string]int),
	}
}

func (s *Speaker) Name() string { return s.name }

// AddUtterance registers the utterance under this speaker and points its
// back-reference here.
func (s *Speaker) AddUtterance(u *Utterance) {
	u.Speaker = s
	u.SpeakerName = s.name
	s.Utterances.Add(u)
}

// DeleteUtterance removes the utterance from this speaker's set.
func (s *Speaker) DeleteUtterance(u *Utterance) {
	_ = s.Utterances.Remove(u.Name())
}

// Merge moves every utterance of other onto s and empties other. Utterance
// names embed the speaker name, so each moved utterance is re-keyed in its
// file's collection as well.
func (s *Speaker) Merge(other *Speaker) {
	if other == nil || other == s {
		return
	}
	for _, u := range other.Utterances.All() {
		u.SetSpeaker(s)
	}
	other.Utterances = NewCollection[*Utterance]()
}

// SetDictionary attaches a pronunciation dictionary and snapshots the
// speaker's expanded vocabulary against it.
func (s *Speaker) SetDictionary(d Dictionary) {
	s.dictionary = d
	s.dictionaryName = ""
	s.vocabulary = nil
	if d != nil {
		s.dictionaryName = d.Name()
		s.vocabulary = s.WordSet()
	}
}

func (s *Speaker) Dictionary() Dictionary { return s.dictionary }

func (s *Speaker) DictionaryName() string { return s.dictionaryName }

// Vocabulary returns the word set snapshot taken when the dictionary was
// attached, nil if none is attached.
func (s *Speaker) Vocabulary() map[string]struct{} { return s.vocabulary }

// WordSet recomputes this speaker's vocabulary from its utterance texts.
// Word counts are replaced wholesale on every call, never merged with the
// previous table. With a dictionary attached each distinct token is expanded
// through Lookup, and the dictionary's special markers and clitics are
// always included.
func (s *Speaker) WordSet() map[string]struct{} {
	s.wordCounts = make(map[string]int)
	for _, u := range s.Utterances.All() {
		for _, w := range strings.Fields(u.Text) {
			s.wordCounts[w]++
		}
	}
	words := make(map[string]struct{})
	for w := range s.wordCounts {
		if s.dictionary == nil {
			words[w] = struct{}{}
			continue
		}
		for _, lw := range s.dictionary.Lookup(w) {
			words[lw] = struct{}{}
		}
	}
	if s.dictionary != nil {
		for _, w := range s.dictionary.Specials() {
			words[w] = struct{}{}
		}
		for _, w := range s.dictionary.Clitics() {
			words[w] = struct{}{}
		}
	}
	return words
}

// WordCounts returns the token frequency table from the last WordSet call.
func (s *Speaker) WordCounts() map[string]int { return s.wordCounts }

// Files returns the distinct files this speaker's utterances appear in, in
// first-appearance order.
func (s *Speaker) Files() []*File {
	var files []*File
	seen := make(map[string]struct{})
	for _, u := range s.Utterances.All() {
		if u.File == nil {
			continue
		}
		if _, ok := seen[u.File.Name()]; ok {
			continue
		}
		seen[u.File.Name()] = struct{}{}
		files = append(files, u.File)
	}
	return files
}

func (s *Speaker) NumUtterances() int { return s.Utterances.Len() }
