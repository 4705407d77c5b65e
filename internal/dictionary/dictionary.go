package dictionary

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Defaults for the marker words and split characters.
const (
	DefaultOOVWord     = "<unk>"
	DefaultSilenceWord = "!sil"

	defaultCliticMarkers   = "'"
	defaultCompoundMarkers = "-"
)

// Options tune how a lexicon file is interpreted.
type Options struct {
	// OOVWord stands in for out-of-vocabulary words, DefaultOOVWord when
	// empty.
	OOVWord string
	// SilenceWord is the silence marker, DefaultSilenceWord when empty.
	SilenceWord string
	// CliticMarkers are characters that attach clitics to their host word.
	CliticMarkers string
	// CompoundMarkers are characters joining compound words.
	CompoundMarkers string
}

// Pronunciation is one lexicon entry: a phone sequence with an optional
// probability.
type Pronunciation struct {
	Phones      []string
	Probability float64
}

// Dictionary is a pronunciation lexicon loaded from a file of
// "word [probability] phone..." lines. It implements corpus.Dictionary.
type Dictionary struct {
	name     string
	words    map[string][]Pronunciation
	phones   map[string]struct{}
	clitics  map[string]bool
	specials map[string]struct{}

	oovWord         string
	silenceWord     string
	cliticMarkers   string
	compoundMarkers string
}

// Load reads a lexicon file. The dictionary name is the file's base name.
func Load(path string, opts Options) (*Dictionary, error) {
	if opts.OOVWord == "" {
		opts.OOVWord = DefaultOOVWord
	}
	if opts.SilenceWord == "" {
		opts.SilenceWord = DefaultSilenceWord
	}
	if opts.CliticMarkers == "" {
		opts.CliticMarkers = defaultCliticMarkers
	}
	if opts.CompoundMarkers == "" {
		opts.CompoundMarkers = defaultCompoundMarkers
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d := &Dictionary{
		name:            strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		words:           make(map[string][]Pronunciation),
		phones:          make(map[string]struct{}),
		clitics:         make(map[string]bool),
		specials:        make(map[string]struct{}),
		oovWord:         opts.OOVWord,
		silenceWord:     opts.SilenceWord,
		cliticMarkers:   opts.CliticMarkers,
		compoundMarkers: opts.CompoundMarkers,
	}
	d.specials[d.oovWord] = struct{}{}
	d.specials[d.silenceWord] = struct{}{}

	scanner := bufio.NewScanner(f)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("%s:%d: entry needs a word and at least one phone", path, lineno)
		}
		word := strings.ToLower(fields[0])
		rest := fields[1:]
		pron := Pronunciation{Probability: 1}
		if len(rest) > 1 {
			if p, err := strconv.ParseFloat(rest[0], 64); err == nil && p > 0 && p <= 1 {
				pron.Probability = p
				rest = rest[1:]
			}
		}
		pron.Phones = rest
		for _, ph := range rest {
			d.phones[ph] = struct{}{}
		}
		d.words[word] = append(d.words[word], pron)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(d.words) == 0 {
		return nil, fmt.Errorf("%s: no entries", path)
	}

	for w := range d.words {
		for _, m := range d.cliticMarkers {
			marker := string(m)
			if strings.HasPrefix(w, marker) || strings.HasSuffix(w, marker) {
				d.clitics[w] = true
			}
		}
	}
	return d, nil
}

func (d *Dictionary) Name() string { return d.name }

func (d *Dictionary) OOVWord() string { return d.oovWord }

func (d *Dictionary) SilenceWord() string { return d.silenceWord }

// NumWords counts distinct written words in the lexicon.
func (d *Dictionary) NumWords() int { return len(d.words) }

// Pronunciations returns the entries for a written word.
func (d *Dictionary) Pronunciations(word string) []Pronunciation {
	return d.words[strings.ToLower(word)]
}

// Specials lists the marker words, sorted.
func (d *Dictionary) Specials() []string {
	out := make([]string, 0, len(d.specials))
	for w := range d.specials {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Clitics lists the lexicon entries carrying a clitic marker, sorted.
func (d *Dictionary) Clitics() []string {
	out := make([]string, 0, len(d.clitics))
	for w := range d.clitics {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Phones lists the phone inventory, sorted.
func (d *Dictionary) Phones() []string {
	out := make([]string, 0, len(d.phones))
	for p := range d.phones {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Lookup expands a written word: the word itself when known, its compound
// and clitic split when every piece is known, the word unchanged otherwise.
func (d *Dictionary) Lookup(word string) []string {
	word = strings.ToLower(word)
	if d.contains(word) {
		return []string{word}
	}
	parts := d.splitWord(word)
	if len(parts) > 1 && d.allKnown(parts) {
		return parts
	}
	return []string{word}
}

// Check reports whether the written word has a lexicon entry, directly or
// via its compound and clitic split.
func (d *Dictionary) Check(word string) bool {
	word = strings.ToLower(word)
	if d.contains(word) {
		return true
	}
	parts := d.splitWord(word)
	return len(parts) > 1 && d.allKnown(parts)
}

func (d *Dictionary) contains(word string) bool {
	if _, ok := d.words[word]; ok {
		return true
	}
	_, ok := d.specials[word]
	return ok
}

func (d *Dictionary) allKnown(parts []string) bool {
	for _, p := range parts {
		if !d.contains(p) {
			return false
		}
	}
	return true
}

// splitWord breaks a word on compound markers, then peels clitics off each
// piece.
func (d *Dictionary) splitWord(word string) []string {
	var out []string
	for _, piece := range strings.FieldsFunc(word, func(r rune) bool {
		return strings.ContainsRune(d.compoundMarkers, r)
	}) {
		out = append(out, d.splitClitics(piece)...)
	}
	return out
}

// splitClitics recursively detaches leading and trailing clitics. Clitic
// entries keep their marker, so "l'eau" becomes ["l'", "eau"] and "dog's"
// becomes ["dog", "'s"].
func (d *Dictionary) splitClitics(item string) []string {
	if d.contains(item) {
		return []string{item}
	}
	for _, m := range d.cliticMarkers {
		marker := string(m)
		idx := strings.Index(item, marker)
		if idx < 0 {
			continue
		}
		initial, final := item[:idx], item[idx+len(marker):]
		if initial != "" && d.clitics[initial+marker] {
			return append([]string{initial + marker}, d.splitClitics(final)...)
		}
		if final != "" && d.clitics[marker+final] {
			return append(d.splitClitics(initial), marker+final)
		}
	}
	return []string{item}
}
