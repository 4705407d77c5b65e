package corpus

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spokenlab/corpuskit/internal/textgrid"
)

// Save writes the file's annotation back to disk. A lone whole-file
// utterance without alignment labels becomes a plain transcript; everything
// else becomes a tiered annotation with one interval tier per speaker, in
// speaker-ordering order.
func (f *File) Save(outputDir, backupDir string) error {
	utts := f.Utterances.All()
	if len(utts) == 1 {
		u := utts[0]
		if u.Begin == nil && len(u.PhoneLabels) == 0 {
			path, err := f.ConstructOutputPath(outputDir, backupDir, true)
			if err != nil {
				return err
			}
			return os.WriteFile(path, []byte(u.OutputText()), 0o644)
		}
	}

	path, err := f.ConstructOutputPath(outputDir, backupDir, false)
	if err != nil {
		return err
	}

	maxTime := f.Duration()
	doc := textgrid.NewDocument(0, maxTime)
	tiers := make(map[string]*textgrid.Tier)
	tierFor := func(name string) *textgrid.Tier {
		if t, ok := tiers[name]; ok {
			return t
		}
		t := doc.AddIntervalTier(name)
		tiers[name] = t
		return t
	}
	for _, s := range f.speakerOrdering {
		tierFor(s.Name())
	}
	if len(f.speakerOrdering) == 0 {
		tierFor("speech")
	}

	// Aligned files carry their intervals in word and phone labels; only
	// raw unaligned utterances are written back as plain intervals.
	if !f.Aligned {
		for _, u := range utts {
			tierName := "speech"
			if u.Speaker != nil {
				tierName = u.Speaker.Name()
			}
			begin, end := 0.0, maxTime
			if u.Begin != nil {
				begin = *u.Begin
			}
			if u.End != nil {
				end = *u.End
			}
			tierFor(tierName).AddInterval(begin, end, u.OutputText())
		}
	}
	return doc.Save(path)
}

// ConstructOutputPath decides where the annotation goes. With no output
// directory the source transcript is overwritten in place, or the path sits
// next to the audio for files that never had one. With an output directory
// the corpus-relative layout is mirrored under it, and an already existing
// target redirects to the equivalent path under backupDir when that is set.
func (f *File) ConstructOutputPath(outputDir, backupDir string, enforceLab bool) (string, error) {
	ext := ".TextGrid"
	if enforceLab {
		ext = ".lab"
	}
	if outputDir == "" {
		if f.TextPath != "" {
			return f.TextPath, nil
		}
		return strings.TrimSuffix(f.WavPath, filepath.Ext(f.WavPath)) + ext, nil
	}
	dir := outputDir
	if f.RelativePath != "" {
		dir = filepath.Join(outputDir, f.RelativePath)
	}
	path := filepath.Join(dir, f.name+ext)
	if backupDir != "" {
		if _, err := os.Stat(path); err == nil {
			rel, err := filepath.Rel(outputDir, path)
			if err != nil {
				return "", err
			}
			path = filepath.Join(backupDir, rel)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	return path, nil
}
