package corpus

import (
	"errors"
	"reflect"
	"testing"
)

func segmentName(t *testing.T, fileName, speakerName string, begin, end float64) string {
	t.Helper()
	f := &File{name: fileName, Utterances: NewCollection[*Utterance]()}
	s := NewSpeaker(speakerName)
	return NewSegment(s, f, begin, end, "").Name()
}

func TestUtteranceName(t *testing.T) {
	t.Run("whole_file", func(t *testing.T) {
		f := &File{name: "recording_one", Utterances: NewCollection[*Utterance]()}
		u := NewUtterance(NewSpeaker("spk"), f, "hi")
		if got := u.Name(); got != "spk-recording-one" {
			t.Errorf("Name = %q", got)
		}
	})

	t.Run("speaker_prefix_not_doubled", func(t *testing.T) {
		f := &File{name: "anna-take2", Utterances: NewCollection[*Utterance]()}
		u := NewUtterance(NewSpeaker("anna"), f, "")
		if got := u.Name(); got != "anna-take2" {
			t.Errorf("Name = %q, prefix should not repeat", got)
		}
	})

	t.Run("segment_boundaries_fold_into_name", func(t *testing.T) {
		if got := segmentName(t, "file", "spk", 1.5, 2.75); got != "spk-file-1-5-2-75" {
			t.Errorf("Name = %q", got)
		}
	})

	t.Run("space_becomes_token", func(t *testing.T) {
		f := &File{name: "my take", Utterances: NewCollection[*Utterance]()}
		u := NewUtterance(NewSpeaker("spk"), f, "")
		if got := u.Name(); got != "spk-my-space-take" {
			t.Errorf("Name = %q", got)
		}
	})

	t.Run("underscored_speaker_sanitized_by_second_pass", func(t *testing.T) {
		f := &File{name: "take1", Utterances: NewCollection[*Utterance]()}
		u := NewUtterance(NewSpeaker("spk_a"), f, "")
		if got := u.Name(); got != "spk-a-take1" {
			t.Errorf("Name = %q", got)
		}
	})

	t.Run("distinct_boundaries_distinct_names", func(t *testing.T) {
		a := segmentName(t, "file", "spk", 0, 1)
		b := segmentName(t, "file", "spk", 0, 1.5)
		if a == b {
			t.Errorf("segments with different boundaries share name %q", a)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		a := segmentName(t, "f.wav moved", "s_1", 0.25, 3)
		b := segmentName(t, "f.wav moved", "s_1", 0.25, 3)
		if a != b {
			t.Errorf("names differ: %q vs %q", a, b)
		}
	})
}

func TestCompareName(t *testing.T) {
	alice := NewSpeaker("alice")
	bob := NewSpeaker("bob")

	t.Run("entity_vs_entity", func(t *testing.T) {
		if got, err := CompareName(alice, bob); err != nil || got >= 0 {
			t.Errorf("CompareName = %d, %v", got, err)
		}
		if got, err := CompareName(bob, alice); err != nil || got <= 0 {
			t.Errorf("CompareName = %d, %v", got, err)
		}
	})

	t.Run("entity_vs_string", func(t *testing.T) {
		if got, err := CompareName(alice, "alice"); err != nil || got != 0 {
			t.Errorf("CompareName = %d, %v", got, err)
		}
		same, err := SameName(alice, "alice")
		if err != nil || !same {
			t.Errorf("SameName = %v, %v", same, err)
		}
	})

	t.Run("cross_entity_kinds_compare_by_name", func(t *testing.T) {
		f := &File{name: "alice", Utterances: NewCollection[*Utterance]()}
		same, err := SameName(alice, f)
		if err != nil || !same {
			t.Errorf("SameName(speaker, file) = %v, %v", same, err)
		}
	})

	t.Run("type_mismatch", func(t *testing.T) {
		if _, err := CompareName(alice, 3); !errors.Is(err, ErrTypeMismatch) {
			t.Errorf("err = %v, want ErrTypeMismatch", err)
		}
		if _, err := SameName(alice, 3.5); !errors.Is(err, ErrTypeMismatch) {
			t.Errorf("err = %v, want ErrTypeMismatch", err)
		}
	})
}

func TestNameHash(t *testing.T) {
	a1 := NewSpeaker("alice")
	a2 := NewSpeaker("alice")
	if NameHash(a1) != NameHash(a2) {
		t.Error("same name should hash equal")
	}
	if NameHash(a1) == NameHash(NewSpeaker("bob")) {
		t.Error("alice and bob hashed equal")
	}
	f := &File{name: "alice", Utterances: NewCollection[*Utterance]()}
	if NameHash(a1) != NameHash(f) {
		t.Error("hash should depend on the name only, not the entity kind")
	}
}

func TestUtteranceDuration(t *testing.T) {
	f := &File{name: "f", Utterances: NewCollection[*Utterance]()}
	seg := NewSegment(nil, f, 1, 3.5, "")
	if got := seg.Duration(); got != 2.5 {
		t.Errorf("segment Duration = %v, want 2.5", got)
	}
	whole := NewUtterance(nil, f, "")
	if got := whole.Duration(); got != 0 {
		t.Errorf("whole-file Duration without audio = %v, want 0", got)
	}

	f.WavPath = "irrelevant.wav"
	f.SetInfoFunc(func(string) (*SoundInfo, error) {
		return &SoundInfo{Duration: 7.25}, nil
	})
	if got := whole.Duration(); got != 7.25 {
		t.Errorf("whole-file Duration = %v, want file duration 7.25", got)
	}
}

func TestUtteranceOutputText(t *testing.T) {
	u := NewUtterance(nil, nil, "raw words")
	if u.OutputText() != "raw words" {
		t.Errorf("OutputText = %q", u.OutputText())
	}
	tr := "polished words"
	u.TranscriptionText = &tr
	if u.OutputText() != "polished words" {
		t.Errorf("OutputText = %q, want transcription preferred", u.OutputText())
	}
}

func TestOOVs(t *testing.T) {
	u := NewUtterance(nil, nil, "")
	if u.OOVs() != nil {
		t.Errorf("OOVs = %v, want nil", u.OOVs())
	}
	u.AddOOV("zyx")
	u.AddOOV("abc")
	u.AddOOV("zyx")
	got := u.OOVs()
	if len(got) != 2 || got[0] != "abc" || got[1] != "zyx" {
		t.Errorf("OOVs = %v, want sorted distinct words", got)
	}
}

func TestResolveTokens(t *testing.T) {
	d := &fakeDict{
		known:  map[string]bool{"hello": true},
		expand: map[string][]string{"dog's": {"dog", "'s"}},
	}
	u := NewUtterance(nil, nil, "hello dog's zzyzx")

	got := u.ResolveTokens(d)
	want := []string{"hello", "dog", "'s", "<unk>"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ResolveTokens = %v, want %v", got, want)
	}
	if oovs := u.OOVs(); len(oovs) != 1 || oovs[0] != "zzyzx" {
		t.Errorf("OOVs = %v, want the unknown word recorded", oovs)
	}

	t.Run("nil_dictionary_splits_only", func(t *testing.T) {
		u := NewUtterance(nil, nil, "plain words")
		if got := u.ResolveTokens(nil); !reflect.DeepEqual(got, []string{"plain", "words"}) {
			t.Errorf("ResolveTokens = %v", got)
		}
	})
}
