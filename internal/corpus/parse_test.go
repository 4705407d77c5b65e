package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// stubInfo fabricates probe results so parse tests run without real audio.
func stubInfo(duration float64, channels int) InfoFunc {
	return func(string) (*SoundInfo, error) {
		return &SoundInfo{
			Duration:    duration,
			SampleRate:  16000,
			NumChannels: channels,
			BitDepth:    16,
			Format:      "WAV",
		}, nil
	}
}

func writeFileT(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func sessionGrid() string {
	var b strings.Builder
	b.WriteString("File type = \"ooTextFile\"\n")
	b.WriteString("Object class = \"TextGrid\"\n\n")
	b.WriteString("xmin = 0\nxmax = 10\ntiers? <exists>\nsize = 3\nitem []:\n")

	writeTier := func(name string, entries [][3]string) {
		b.WriteString("    item [1]:\n")
		b.WriteString("        class = \"IntervalTier\"\n")
		b.WriteString("        name = \"" + name + "\"\n")
		b.WriteString("        xmin = 0\n        xmax = 10\n")
		b.WriteString("        intervals: size = " + strconv.Itoa(len(entries)) + "\n")
		for i, e := range entries {
			b.WriteString("        intervals [" + strconv.Itoa(i+1) + "]:\n")
			b.WriteString("            xmin = " + e[0] + "\n")
			b.WriteString("            xmax = " + e[1] + "\n")
			b.WriteString("            text = \"" + e[2] + "\"\n")
		}
	}
	writeTier("Mary", [][3]string{
		{"0", "1.23456", "  Hello THERE  "},
		{"1.23456", "3", ""},
		{"3", "11.5", "over the end"},
	})
	writeTier("john", [][3]string{
		{"0", "2", "fine thanks"},
	})
	writeTier("Notes", [][3]string{
		{"0", "10", "recorded in room b"},
	})
	return b.String()
}

func TestSpeakerPolicy(t *testing.T) {
	cases := []struct {
		name     string
		policy   SpeakerPolicy
		fileName string
		dir      string
		want     string
	}{
		{"directory_default", PolicyDirectory, "utt1", "/corpus/spk7", "spk7"},
		{"prosodylab_second_token", PolicyProsodylab, "JOHN_utt1", "/corpus", "utt1"},
		{"prosodylab_without_underscore", PolicyProsodylab, "plain", "/corpus", "plain"},
		{"character_count", SpeakerPolicy("4"), "annaSession1", "/corpus", "anna"},
		{"character_count_longer_than_name", SpeakerPolicy("10"), "abc", "/corpus", "abc"},
		{"anything_else_whole_name", SpeakerPolicy("global"), "annaSession1", "/corpus", "annaSession1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.policy.SpeakerName(tc.fileName, tc.dir); got != tc.want {
				t.Errorf("SpeakerName = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseFilePlainTranscript(t *testing.T) {
	dir := t.TempDir()
	lab := filepath.Join(dir, "spk7", "utt1.lab")
	writeFileT(t, lab, "  Hello,  WORLD  \n")

	f, err := ParseFile("utt1", "", lab, "spk7", ParseOptions{})
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if f.NumUtterances() != 1 {
		t.Fatalf("got %d utterances, want 1", f.NumUtterances())
	}
	u := f.Utterances.All()[0]
	if u.Text != "hello, world" {
		t.Errorf("Text = %q", u.Text)
	}
	if u.IsSegment() {
		t.Error("plain transcript utterance should span the whole file")
	}
	if u.Speaker == nil || u.Speaker.Name() != "spk7" {
		t.Errorf("speaker = %v, want directory name spk7", u.SpeakerName)
	}

	t.Run("sanitizer_applies", func(t *testing.T) {
		sanitize := func(text string) []string {
			var words []string
			for _, w := range strings.Fields(text) {
				words = append(words, strings.Trim(w, ",.!"))
			}
			return words
		}
		f, err := ParseFile("utt1", "", lab, "spk7", ParseOptions{Sanitize: sanitize})
		if err != nil {
			t.Fatalf("ParseFile: %v", err)
		}
		if got := f.Utterances.All()[0].Text; got != "hello world" {
			t.Errorf("Text = %q", got)
		}
	})

	t.Run("invalid_utf8", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.lab")
		if err := os.WriteFile(bad, []byte{0xff, 0xfe, 0x20}, 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := ParseFile("bad", "", bad, "", ParseOptions{})
		var perr *TextParseError
		if !errors.As(err, &perr) {
			t.Fatalf("err = %v, want TextParseError", err)
		}
		if perr.Path != bad {
			t.Errorf("Path = %q", perr.Path)
		}
	})
}

func TestParseFileTextGrid(t *testing.T) {
	dir := t.TempDir()
	tg := filepath.Join(dir, "session.TextGrid")
	writeFileT(t, tg, sessionGrid())

	f, err := ParseFile("session", "", tg, "", ParseOptions{})
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}

	// Three labelled intervals in Mary + one in john; the blank interval and
	// the Notes tier contribute nothing.
	if f.NumUtterances() != 3 {
		t.Fatalf("got %d utterances, want 3", f.NumUtterances())
	}
	ordering := f.SpeakerOrdering()
	if len(ordering) != 2 || ordering[0].Name() != "Mary" || ordering[1].Name() != "john" {
		t.Fatalf("speaker ordering wrong (%d speakers)", len(ordering))
	}

	utts := f.Utterances.All()
	first := utts[0]
	if first.Text != "hello there" {
		t.Errorf("Text = %q, want lowercased trimmed tokens", first.Text)
	}
	if !first.IsSegment() || *first.Begin != 0 || *first.End != 1.2346 {
		t.Errorf("boundaries = %v..%v, want 0..1.2346", first.Begin, first.End)
	}

	t.Run("no_clamp_without_audio", func(t *testing.T) {
		last := utts[1]
		if *last.End != 11.5 {
			t.Errorf("End = %v, want unclamped 11.5", *last.End)
		}
	})

	t.Run("clamped_to_duration_with_audio", func(t *testing.T) {
		wav := filepath.Join(dir, "session.wav")
		writeFileT(t, wav, "fake")
		f, err := ParseFile("session", wav, tg, "", ParseOptions{Info: stubInfo(10, 1)})
		if err != nil {
			t.Fatalf("ParseFile: %v", err)
		}
		var maxEnd float64
		for _, u := range f.Utterances.All() {
			if *u.End > maxEnd {
				maxEnd = *u.End
			}
		}
		if maxEnd != 10 {
			t.Errorf("max End = %v, want clamped to 10", maxEnd)
		}
	})

	t.Run("more_than_two_channels", func(t *testing.T) {
		wav := filepath.Join(dir, "session.wav")
		writeFileT(t, wav, "fake")
		_, err := ParseFile("session", wav, tg, "", ParseOptions{Info: stubInfo(10, 4)})
		if err == nil || !strings.Contains(err.Error(), "channels") {
			t.Errorf("err = %v, want channel complaint", err)
		}
	})

	t.Run("root_speaker_overrides_tiers", func(t *testing.T) {
		f, err := ParseFile("session", "", tg, "", ParseOptions{Policy: SpeakerPolicy("4")})
		if err != nil {
			t.Fatalf("ParseFile: %v", err)
		}
		for _, u := range f.Utterances.All() {
			if u.SpeakerName != "sess" {
				t.Errorf("speaker = %q, want policy-derived sess", u.SpeakerName)
			}
		}
	})

	t.Run("stop_check_abandons", func(t *testing.T) {
		calls := 0
		stop := func() bool {
			calls++
			return calls > 1
		}
		f, err := ParseFile("session", "", tg, "", ParseOptions{Stop: stop})
		if err != nil {
			t.Fatalf("ParseFile: %v", err)
		}
		if f.NumUtterances() >= 3 {
			t.Errorf("got %d utterances, want an abandoned partial parse", f.NumUtterances())
		}
	})

	t.Run("empty_tier_keeps_ordering_slot", func(t *testing.T) {
		var b strings.Builder
		b.WriteString("File type = \"ooTextFile\"\n")
		b.WriteString("Object class = \"TextGrid\"\n\n")
		b.WriteString("xmin = 0\nxmax = 10\ntiers? <exists>\nsize = 2\nitem []:\n")
		b.WriteString("    item [1]:\n")
		b.WriteString("        class = \"IntervalTier\"\n")
		b.WriteString("        name = \"alice\"\n")
		b.WriteString("        xmin = 0\n        xmax = 10\n")
		b.WriteString("        intervals: size = 1\n")
		b.WriteString("        intervals [1]:\n")
		b.WriteString("            xmin = 0\n            xmax = 2\n")
		b.WriteString("            text = \"hello\"\n")
		b.WriteString("    item [2]:\n")
		b.WriteString("        class = \"IntervalTier\"\n")
		b.WriteString("        name = \"bob\"\n")
		b.WriteString("        xmin = 0\n        xmax = 10\n")
		b.WriteString("        intervals: size = 1\n")
		b.WriteString("        intervals [1]:\n")
		b.WriteString("            xmin = 0\n            xmax = 10\n")
		b.WriteString("            text = \"\"\n")
		grid := filepath.Join(dir, "sparse.TextGrid")
		writeFileT(t, grid, b.String())

		f, err := ParseFile("sparse", "", grid, "", ParseOptions{})
		if err != nil {
			t.Fatalf("ParseFile: %v", err)
		}
		if f.NumUtterances() != 1 {
			t.Fatalf("got %d utterances, want 1", f.NumUtterances())
		}
		ordering := f.SpeakerOrdering()
		if len(ordering) != 2 || ordering[0].Name() != "alice" || ordering[1].Name() != "bob" {
			names := make([]string, len(ordering))
			for i, s := range ordering {
				names[i] = s.Name()
			}
			t.Fatalf("speaker ordering = %v, want [alice bob]", names)
		}
	})

	t.Run("zero_tiers", func(t *testing.T) {
		empty := filepath.Join(dir, "empty.TextGrid")
		writeFileT(t, empty, "File type = \"ooTextFile\"\nObject class = \"TextGrid\"\n\nxmin = 0\nxmax = 1\ntiers? <absent>\n")
		_, err := ParseFile("empty", "", empty, "", ParseOptions{})
		var gerr *TextGridParseError
		if !errors.As(err, &gerr) {
			t.Fatalf("err = %v, want TextGridParseError", err)
		}
	})

	t.Run("malformed_grid", func(t *testing.T) {
		mangled := filepath.Join(dir, "mangled.TextGrid")
		writeFileT(t, mangled, "this is not a textgrid")
		_, err := ParseFile("mangled", "", mangled, "", ParseOptions{})
		var gerr *TextGridParseError
		if !errors.As(err, &gerr) {
			t.Fatalf("err = %v, want TextGridParseError", err)
		}
	})
}

func TestParseFileNoTranscript(t *testing.T) {
	dir := t.TempDir()
	wav := filepath.Join(dir, "room", "take.wav")
	writeFileT(t, wav, "fake")

	f, err := ParseFile("take", wav, "", "room", ParseOptions{Info: stubInfo(3, 1)})
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if f.NumUtterances() != 1 {
		t.Fatalf("got %d utterances, want 1", f.NumUtterances())
	}
	u := f.Utterances.All()[0]
	if u.Text != "" || u.IsSegment() {
		t.Errorf("utterance = %+v, want empty whole-file utterance", u)
	}
	if u.SpeakerName != "room" {
		t.Errorf("speaker = %q, want parent directory", u.SpeakerName)
	}
}

func TestParseFileMissingBothPaths(t *testing.T) {
	if _, err := ParseFile("x", "", "", "", ParseOptions{}); !errors.Is(err, ErrMissingPath) {
		t.Errorf("err = %v, want ErrMissingPath", err)
	}
}

func TestRound4(t *testing.T) {
	if got := round4(1.23456); got != 1.2346 {
		t.Errorf("round4(1.23456) = %v", got)
	}
	if got := round4(2); got != 2.0 {
		t.Errorf("round4(2) = %v", got)
	}
}
