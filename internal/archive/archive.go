// Package archive persists the corpus object graph as a versioned JSON
// snapshot so a restart can skip re-parsing the annotation tree. Snapshots
// carry record forms only: object references and lazily probed audio
// metadata are rebuilt on load.
package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spokenlab/corpuskit/internal/corpus"
)

// Version identifies the snapshot document layout.
const Version = 1

// Document is the on-disk snapshot form.
type Document struct {
	Version int       `json:"version"`
	SavedAt time.Time `json:"saved_at"`

	// Speakers holds corpus-level speaker records, so per-speaker state
	// such as CMVN references survives even for speakers the per-file
	// records would rebuild fresh.
	Speakers []corpus.SpeakerRecord `json:"speakers,omitempty"`
	Files    []corpus.FileRecord    `json:"files,omitempty"`
}

// Snapshot captures the corpus as a document ready for Save.
func Snapshot(c *corpus.Corpus) *Document {
	doc := &Document{Version: Version, SavedAt: time.Now().UTC()}
	for _, s := range c.Speakers.All() {
		doc.Speakers = append(doc.Speakers, s.Record())
	}
	for _, f := range c.Files.All() {
		doc.Files = append(doc.Files, f.Record())
	}
	return doc
}

// Save writes the snapshot atomically: the document lands in a temp file in
// the target directory and is renamed over the destination, so a crash never
// leaves a truncated snapshot behind.
func Save(path string, c *corpus.Corpus) error {
	data, err := json.MarshalIndent(Snapshot(c), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// Load reads a snapshot and rebuilds the corpus from it. Speakers are
// pre-seeded from the corpus-level records before the files merge in, so
// utterances relink to the carried speaker objects rather than fresh ones.
func Load(path string) (*corpus.Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	if doc.Version != Version {
		return nil, fmt.Errorf("snapshot %s: unsupported version %d", path, doc.Version)
	}

	c := corpus.NewCorpus()
	for _, sr := range doc.Speakers {
		c.Speakers.Add(corpus.SpeakerFromRecord(sr))
	}
	for _, fr := range doc.Files {
		c.AddFile(corpus.FileFromRecord(fr))
	}
	return c, nil
}
