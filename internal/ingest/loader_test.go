package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/spokenlab/corpuskit/internal/corpus"
)

// writeText creates a file with content, making parent directories as needed.
func writeText(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
}

func fakeInfo(path string) (*corpus.SoundInfo, error) {
	return &corpus.SoundInfo{
		Duration:    2.5,
		SampleRate:  16000,
		NumChannels: 1,
		BitDepth:    16,
		Format:      "WAV",
	}, nil
}

type stubDict struct {
	words map[string]bool
}

func (d *stubDict) Name() string             { return "stub" }
func (d *stubDict) Lookup(word string) []string { return []string{word} }
func (d *stubDict) Check(word string) bool   { return d.words[word] }
func (d *stubDict) Specials() []string       { return nil }
func (d *stubDict) Clitics() []string        { return nil }
func (d *stubDict) OOVWord() string          { return "<unk>" }

func TestLoad(t *testing.T) {
	t.Run("parses_and_merges_in_job_order", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, filepath.Join(dir, "sp1", "a.wav"))
		writeText(t, filepath.Join(dir, "sp1", "a.lab"), []byte("Hello there"))
		writeText(t, filepath.Join(dir, "sp1", "b.lab"), []byte("goodbye now"))

		jobs, err := testScanner(dir, false).Scan()
		if err != nil {
			t.Fatalf("Scan: %v", err)
		}
		g, stats, err := Load(context.Background(), jobs, LoadOptions{
			Workers: 2,
			Info:    fakeInfo,
			Log:     zerolog.Nop(),
		})
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if stats.FilesLoaded != 2 || stats.FilesFailed != 0 {
			t.Fatalf("stats = %+v, want 2 loaded, 0 failed", stats)
		}
		if got := g.Files.Names(); !reflect.DeepEqual(got, []string{"a", "b"}) {
			t.Errorf("file order = %v, want [a b]", got)
		}
		if got := g.Speakers.Names(); !reflect.DeepEqual(got, []string{"sp1"}) {
			t.Errorf("speakers = %v, want [sp1]", got)
		}

		f, err := g.Files.Get("a")
		if err != nil {
			t.Fatalf("Get(a): %v", err)
		}
		if f.Duration() != 2.5 {
			t.Errorf("Duration = %v, want 2.5", f.Duration())
		}
		utts := f.Utterances.All()
		if len(utts) != 1 || utts[0].Text != "hello there" {
			t.Errorf("utterances = %+v, want one with lowercased text", utts)
		}
	})

	t.Run("failed_files_are_skipped_not_fatal", func(t *testing.T) {
		dir := t.TempDir()
		writeText(t, filepath.Join(dir, "good.lab"), []byte("fine"))
		writeText(t, filepath.Join(dir, "bad.lab"), []byte{0xff, 0xfe, 0x01})

		jobs, err := testScanner(dir, false).Scan()
		if err != nil {
			t.Fatalf("Scan: %v", err)
		}
		g, stats, err := Load(context.Background(), jobs, LoadOptions{Log: zerolog.Nop()})
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if stats.FilesLoaded != 1 {
			t.Errorf("FilesLoaded = %d, want 1", stats.FilesLoaded)
		}
		if stats.FilesFailed != 1 {
			t.Errorf("FilesFailed = %d, want 1", stats.FilesFailed)
		}
		if g.Files.Contains("bad") {
			t.Error("bad file made it into the corpus")
		}
		if !g.Files.Contains("good") {
			t.Error("good file missing from the corpus")
		}
	})

	t.Run("dictionary_tags_oovs_after_merge", func(t *testing.T) {
		dir := t.TempDir()
		writeText(t, filepath.Join(dir, "s", "x.lab"), []byte("hello stranger"))

		jobs, err := testScanner(dir, false).Scan()
		if err != nil {
			t.Fatalf("Scan: %v", err)
		}
		dict := &stubDict{words: map[string]bool{"hello": true}}
		g, _, err := Load(context.Background(), jobs, LoadOptions{
			Dictionary: dict,
			Log:        zerolog.Nop(),
		})
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		oovs := g.OOVCounts()
		if oovs["stranger"] != 1 {
			t.Errorf("OOVCounts[stranger] = %d, want 1", oovs["stranger"])
		}
		if _, ok := oovs["hello"]; ok {
			t.Error("in-vocabulary word counted as OOV")
		}
	})

	t.Run("empty_job_list", func(t *testing.T) {
		g, stats, err := Load(context.Background(), nil, LoadOptions{Log: zerolog.Nop()})
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if stats.FilesLoaded != 0 || stats.FilesFailed != 0 {
			t.Errorf("stats = %+v, want zeros", stats)
		}
		if !g.Files.Empty() {
			t.Error("corpus not empty")
		}
	})

	t.Run("cancelled_context_returns_error", func(t *testing.T) {
		dir := t.TempDir()
		for i := 0; i < 8; i++ {
			writeText(t, filepath.Join(dir, fmt.Sprintf("u%d.lab", i)), []byte("word"))
		}
		jobs, err := testScanner(dir, false).Scan()
		if err != nil {
			t.Fatalf("Scan: %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		g, _, err := Load(ctx, jobs, LoadOptions{Workers: 1, Log: zerolog.Nop()})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
		if g == nil {
			t.Fatal("partial corpus is nil")
		}
	})
}

func TestParseErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"textgrid", &corpus.TextGridParseError{Path: "x.TextGrid", Err: errors.New("bad tier")}, "textgrid"},
		{"transcript", &corpus.TextParseError{Path: "x.lab", Err: errors.New("invalid UTF-8")}, "transcript"},
		{"wrapped_transcript", fmt.Errorf("job: %w", &corpus.TextParseError{Path: "y.lab", Err: errors.New("gone")}), "transcript"},
		{"other", errors.New("three channels"), "other"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseErrorKind(tt.err); got != tt.want {
				t.Errorf("parseErrorKind(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
