package corpus

// SanitizeFunc tokenizes raw transcript text into clean words. The parser
// treats it as opaque; nil falls back to whitespace splitting.
type SanitizeFunc func(text string) []string

// Dictionary is the pronunciation lexicon seam consumed during speaker
// vocabulary expansion and OOV tagging. Implementations live outside the
// model.
type Dictionary interface {
	Name() string

	// Lookup expands a written word into lexicon entries: the word itself
	// when known, its clitic split when every piece is known, or the word
	// unchanged when out of vocabulary.
	Lookup(word string) []string

	// Check reports whether the written word has a lexicon entry, directly
	// or via its clitic split.
	Check(word string) bool

	// Specials are marker words such as silence and noise tokens.
	Specials() []string

	// Clitics are lexicon entries that attach to neighbouring words.
	Clitics() []string

	// OOVWord is the marker standing in for out-of-vocabulary words.
	OOVWord() string
}

// SoundInfo describes a sound file as reported by an audio prober.
type SoundInfo struct {
	Duration    float64 `json:"duration"`
	SampleRate  int     `json:"sample_rate"`
	NumChannels int     `json:"num_channels"`
	BitDepth    int     `json:"bit_depth"`
	Format      string  `json:"format"`

	// SoxString is a conversion pipe for files that need resampling to
	// 16-bit PCM WAV before feature extraction, empty when none is needed.
	SoxString string `json:"sox_string,omitempty"`
}

// InfoFunc probes a sound file for its metadata.
type InfoFunc func(path string) (*SoundInfo, error)

// WaveformFunc loads normalized samples from a sound file.
type WaveformFunc func(path string) ([]float64, error)
