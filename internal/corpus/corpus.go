package corpus

import "strings"

// Corpus is the root aggregate: every speaker, file and utterance in one
// graph. It is single-threaded; callers sharing one across goroutines wrap
// it in their own lock.
type Corpus struct {
	Speakers   *Collection[*Speaker]
	Files      *Collection[*File]
	Utterances *Collection[*Utterance]
}

func NewCorpus() *Corpus {
	return &Corpus{
		Speakers:   NewCollection[*Speaker](),
		Files:      NewCollection[*File](),
		Utterances: NewCollection[*Utterance](),
	}
}

// AddFile merges a parsed file into the corpus. Speakers are unified by
// name: utterances arriving under an already-known speaker name are
// reassigned to the existing speaker object.
func (c *Corpus) AddFile(f *File) {
	c.Files.Add(f)
	for _, u := range f.Utterances.All() {
		if u.Speaker != nil {
			existing, err := c.Speakers.Get(u.Speaker.Name())
			switch {
			case err != nil:
				c.Speakers.Add(u.Speaker)
				u.Speaker.AddUtterance(u)
			case existing != u.Speaker:
				u.SetSpeaker(existing)
			default:
				existing.AddUtterance(u)
			}
		}
		c.Utterances.Add(u)
	}
}

// RemoveFile drops a file and its utterances. Speakers left with no
// utterances are pruned.
func (c *Corpus) RemoveFile(name string) error {
	f, err := c.Files.Get(name)
	if err != nil {
		return err
	}
	for _, u := range f.Utterances.All() {
		if u.Speaker != nil {
			u.Speaker.DeleteUtterance(u)
			if u.Speaker.Utterances.Empty() {
				_ = c.Speakers.Remove(u.Speaker.Name())
			}
		}
		_ = c.Utterances.Remove(u.Name())
	}
	return c.Files.Remove(name)
}

// MergeSpeakers folds every utterance of src into dst and drops src. The
// moved utterances are re-keyed under their new names.
func (c *Corpus) MergeSpeakers(dst, src string) error {
	target, err := c.Speakers.Get(dst)
	if err != nil {
		return err
	}
	source, err := c.Speakers.Get(src)
	if err != nil {
		return err
	}
	if target == source {
		return nil
	}
	moved := source.Utterances.All()
	for _, u := range moved {
		_ = c.Utterances.Remove(u.Name())
	}
	target.Merge(source)
	for _, u := range moved {
		c.Utterances.Add(u)
	}
	return c.Speakers.Remove(src)
}

// SetDictionary attaches a pronunciation dictionary to every speaker.
func (c *Corpus) SetDictionary(d Dictionary) {
	for _, s := range c.Speakers.All() {
		s.SetDictionary(d)
	}
}

// TagOOVs records, per utterance, the words the dictionary cannot expand.
func (c *Corpus) TagOOVs(d Dictionary) {
	if d == nil {
		return
	}
	for _, u := range c.Utterances.All() {
		for _, w := range strings.Fields(u.Text) {
			if !d.Check(w) {
				u.AddOOV(w)
			}
		}
	}
}

// WordCounts aggregates word frequencies across all speakers, recomputing
// each speaker's table first.
func (c *Corpus) WordCounts() map[string]int {
	counts := make(map[string]int)
	for _, s := range c.Speakers.All() {
		s.WordSet()
		for w, n := range s.WordCounts() {
			counts[w] += n
		}
	}
	return counts
}

// OOVCounts aggregates out-of-vocabulary words across all utterances.
func (c *Corpus) OOVCounts() map[string]int {
	counts := make(map[string]int)
	for _, u := range c.Utterances.All() {
		for _, w := range u.OOVs() {
			counts[w]++
		}
	}
	return counts
}

// Stats summarizes the corpus for reporting.
type Stats struct {
	Speakers      int     `json:"speakers"`
	Files         int     `json:"files"`
	Utterances    int     `json:"utterances"`
	Segments      int     `json:"segments"`
	Ignored       int     `json:"ignored"`
	TotalDuration float64 `json:"total_duration"`
}

// ComputeStats walks the graph once and tallies it.
func (c *Corpus) ComputeStats() Stats {
	st := Stats{
		Speakers: c.Speakers.Len(),
		Files:    c.Files.Len(),
	}
	for _, u := range c.Utterances.All() {
		st.Utterances++
		if u.IsSegment() {
			st.Segments++
		}
		if u.Ignored {
			st.Ignored++
		}
		st.TotalDuration += u.Duration()
	}
	return st
}
