package dictionary

import (
	"strings"

	"github.com/spokenlab/corpuskit/internal/corpus"
)

// DefaultPunctuation is the character set trimmed from word edges by the
// default sanitizer. Apostrophes and hyphens stay: they carry clitic and
// compound structure the dictionary needs.
const DefaultPunctuation = `、。।，@<>"(),.:;¿?¡!\&%#*~【】，…‥「」『』〝〟″⟨⟩♪・‹›«»～′$+=‘’`

// NewSanitizer returns a tokenizer that splits text on whitespace and trims
// the given characters from word edges. Words left empty are dropped.
func NewSanitizer(punctuation string) corpus.SanitizeFunc {
	return func(text string) []string {
		var words []string
		for _, w := range strings.Fields(text) {
			w = strings.Trim(w, punctuation)
			if w == "" {
				continue
			}
			words = append(words, w)
		}
		return words
	}
}

// Sanitize tokenizes with the default punctuation set.
var Sanitize = NewSanitizer(DefaultPunctuation)
