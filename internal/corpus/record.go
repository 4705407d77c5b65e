package corpus

// Record types are the versioned persistence form of the object graph. They
// hold names instead of object references and drop every lazily derived
// cache, so a reload re-probes audio metadata on demand.

// SpeakerRecord captures the persistent fields of a Speaker.
type SpeakerRecord struct {
	Name       string `json:"name"`
	CMVN       string `json:"cmvn,omitempty"`
	Dictionary string `json:"dictionary,omitempty"`
}

// UtteranceRecord captures the persistent fields of an Utterance.
type UtteranceRecord struct {
	FileName          string     `json:"file_name"`
	SpeakerName       string     `json:"speaker_name,omitempty"`
	Begin             *float64   `json:"begin,omitempty"`
	End               *float64   `json:"end,omitempty"`
	Channel           int        `json:"channel,omitempty"`
	Text              string     `json:"text,omitempty"`
	TranscriptionText *string    `json:"transcription_text,omitempty"`
	Ignored           bool       `json:"ignored,omitempty"`
	Features          string     `json:"features,omitempty"`
	FeatureLength     int        `json:"feature_length,omitempty"`
	PhoneLabels       []Interval `json:"phone_labels,omitempty"`
	WordLabels        []Interval `json:"word_labels,omitempty"`
	OOVs              []string   `json:"oovs,omitempty"`
}

// FileRecord captures the persistent fields of a File along with its
// speakers and utterances.
type FileRecord struct {
	Name         string            `json:"name"`
	WavPath      string            `json:"wav_path,omitempty"`
	TextPath     string            `json:"text_path,omitempty"`
	RelativePath string            `json:"relative_path,omitempty"`
	Aligned      bool              `json:"aligned,omitempty"`
	Speakers     []SpeakerRecord   `json:"speakers,omitempty"`
	Utterances   []UtteranceRecord `json:"utterances,omitempty"`
}

func (s *Speaker) Record() SpeakerRecord {
	return SpeakerRecord{Name: s.name, CMVN: s.CMVN, Dictionary: s.dictionaryName}
}

// SpeakerFromRecord rebuilds a speaker. Dictionary objects are not restored,
// only the recorded name; reattach with SetDictionary.
func SpeakerFromRecord(r SpeakerRecord) *Speaker {
	s := NewSpeaker(r.Name)
	s.CMVN = r.CMVN
	s.dictionaryName = r.Dictionary
	return s
}

func (u *Utterance) Record() UtteranceRecord {
	return UtteranceRecord{
		FileName:          u.FileName,
		SpeakerName:       u.SpeakerName,
		Begin:             u.Begin,
		End:               u.End,
		Channel:           u.Channel,
		Text:              u.Text,
		TranscriptionText: u.TranscriptionText,
		Ignored:           u.Ignored,
		Features:          u.Features,
		FeatureLength:     u.FeatureLength,
		PhoneLabels:       u.PhoneLabels,
		WordLabels:        u.WordLabels,
		OOVs:              u.OOVs(),
	}
}

// UtteranceFromRecord rebuilds an utterance carrying names only; the object
// references are relinked by FileFromRecord or a corpus restore.
func UtteranceFromRecord(r UtteranceRecord) *Utterance {
	u := &Utterance{
		FileName:          r.FileName,
		SpeakerName:       r.SpeakerName,
		Begin:             r.Begin,
		End:               r.End,
		Channel:           r.Channel,
		Text:              r.Text,
		TranscriptionText: r.TranscriptionText,
		Ignored:           r.Ignored,
		Features:          r.Features,
		FeatureLength:     r.FeatureLength,
		PhoneLabels:       r.PhoneLabels,
		WordLabels:        r.WordLabels,
	}
	for _, w := range r.OOVs {
		u.AddOOV(w)
	}
	return u
}

func (f *File) Record() FileRecord {
	rec := FileRecord{
		Name:         f.name,
		WavPath:      f.WavPath,
		TextPath:     f.TextPath,
		RelativePath: f.RelativePath,
		Aligned:      f.Aligned,
	}
	for _, s := range f.speakerOrdering {
		rec.Speakers = append(rec.Speakers, s.Record())
	}
	for _, u := range f.Utterances.All() {
		rec.Utterances = append(rec.Utterances, u.Record())
	}
	return rec
}

// FileFromRecord rebuilds a file, its speakers and utterances, and relinks
// the references between them by name.
func FileFromRecord(r FileRecord) *File {
	f := &File{
		name:         r.Name,
		WavPath:      r.WavPath,
		TextPath:     r.TextPath,
		RelativePath: r.RelativePath,
		Aligned:      r.Aligned,
		Utterances:   NewCollection[*Utterance](),
	}
	speakers := make(map[string]*Speaker, len(r.Speakers))
	for _, sr := range r.Speakers {
		s := SpeakerFromRecord(sr)
		speakers[s.name] = s
		f.speakerOrdering = append(f.speakerOrdering, s)
	}
	for _, ur := range r.Utterances {
		u := UtteranceFromRecord(ur)
		u.File = f
		u.FileName = f.name
		if s, ok := speakers[ur.SpeakerName]; ok {
			u.Speaker = s
			s.Utterances.Add(u)
		}
		f.Utterances.Add(u)
	}
	return f
}
