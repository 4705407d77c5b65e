package ingest

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spokenlab/corpuskit/internal/audio"
)

// otherAudioExts are formats that need sox for probing and normalization.
var otherAudioExts = map[string]bool{
	".flac": true,
	".ogg":  true,
	".aiff": true,
	".mp3":  true,
}

// FileJob pairs one identifier's sound and transcript paths, ready for parsing.
type FileJob struct {
	Name         string
	WavPath      string
	TextPath     string
	RelativePath string
}

// Scanner walks a corpus tree and pairs sound files with their annotations.
type Scanner struct {
	root   string
	useSox bool
	log    zerolog.Logger
}

func NewScanner(root string, log zerolog.Logger) *Scanner {
	return &Scanner{
		root:   root,
		useSox: audio.CheckSox(),
		log:    log.With().Str("component", "scanner").Logger(),
	}
}

// Scan returns one job per identifier found under the corpus root. Pairing is
// by shared base name within a directory: .wav beats the other audio formats,
// .TextGrid beats .lab, .lab beats .txt. Other audio formats are only picked
// up when sox is installed. When the same identifier appears in more than one
// directory the first wins and later ones are skipped.
func (s *Scanner) Scan() ([]FileJob, error) {
	var dirs []string
	filesByDir := make(map[string][]string)

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.log.Warn().Err(err).Str("path", path).Msg("error walking directory")
			return nil // continue walking
		}
		if d.IsDir() {
			dirs = append(dirs, path)
			return nil
		}
		dir := filepath.Dir(path)
		filesByDir[dir] = append(filesByDir[dir], d.Name())
		return nil
	})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var jobs []FileJob
	for _, dir := range dirs {
		rel, err := filepath.Rel(s.root, dir)
		if err != nil {
			return nil, err
		}
		if rel == "." {
			rel = ""
		}
		for _, job := range pairDir(dir, rel, filesByDir[dir], s.useSox) {
			if seen[job.Name] {
				s.log.Warn().Str("name", job.Name).Str("dir", dir).Msg("duplicate file name skipped")
				continue
			}
			seen[job.Name] = true
			jobs = append(jobs, job)
		}
	}
	return jobs, nil
}

// ScanDir pairs the files of a single directory, non-recursively. The corpus
// watcher uses it to re-resolve one identifier's pair after a change.
func (s *Scanner) ScanDir(dir string) ([]FileJob, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}

	rel, err := filepath.Rel(s.root, dir)
	if err != nil {
		return nil, err
	}
	if rel == "." {
		rel = ""
	}
	return pairDir(dir, rel, names, s.useSox), nil
}

// Relevant reports whether a path's extension participates in pairing. Other
// audio formats only count when sox is installed.
func (s *Scanner) Relevant(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".wav", ".lab", ".txt", ".textgrid":
		return true
	}
	return otherAudioExts[ext] && s.useSox
}

// pairDir resolves one directory's entries into jobs, in first-seen order.
func pairDir(dir, rel string, names []string, useSox bool) []FileJob {
	ids, wavs, labs, grids, others := groupExts(names, useSox)

	var jobs []FileJob
	for _, id := range ids {
		wav := wavs[id]
		if wav == "" {
			wav = others[id]
		}
		text := grids[id]
		if text == "" {
			text = labs[id]
		}
		if wav == "" && text == "" {
			continue
		}

		job := FileJob{Name: id, RelativePath: rel}
		if wav != "" {
			job.WavPath = filepath.Join(dir, wav)
		}
		if text != "" {
			job.TextPath = filepath.Join(dir, text)
		}
		jobs = append(jobs, job)
	}
	return jobs
}

// groupExts buckets one directory's entries by extension. Identifiers keep
// first-seen order so corpus loads are deterministic.
func groupExts(names []string, useSox bool) (ids []string, wavs, labs, grids, others map[string]string) {
	wavs = make(map[string]string)
	labs = make(map[string]string)
	grids = make(map[string]string)
	others = make(map[string]string)
	known := make(map[string]bool)

	for _, full := range names {
		ext := strings.ToLower(filepath.Ext(full))
		stem := strings.TrimSuffix(full, filepath.Ext(full))

		switch {
		case ext == ".wav":
			wavs[stem] = full
		case ext == ".lab":
			labs[stem] = full
		case ext == ".txt":
			// .lab files outrank .txt files for the same identifier
			if _, ok := labs[stem]; ok {
				continue
			}
			labs[stem] = full
		case ext == ".textgrid":
			grids[stem] = full
		case otherAudioExts[ext] && useSox:
			others[stem] = full
		default:
			continue
		}
		if !known[stem] {
			known[stem] = true
			ids = append(ids, stem)
		}
	}
	return ids, wavs, labs, grids, others
}
