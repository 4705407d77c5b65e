package api

// CorpusSource provides corpus state from the ingest service to the API layer.
// The service implements this interface — no circular imports since api owns
// the interface.
type CorpusSource interface {
	// CorpusStats returns aggregate counts over the loaded corpus.
	CorpusStats() CorpusStatsData

	// Speakers returns every speaker in collection order.
	Speakers() []SpeakerData

	// Speaker returns one speaker with its files and utterance names.
	Speaker(name string) (SpeakerDetail, bool)

	// Files returns every file in collection order.
	Files() []FileData

	// File returns one file with its speakers and utterances.
	File(name string) (FileDetail, bool)

	// Utterances returns utterances matching the filter, in collection order.
	Utterances(filter UtteranceFilter) []UtteranceData

	// Utterance returns one utterance by name.
	Utterance(name string) (UtteranceData, bool)

	// OOVReport returns out-of-vocabulary words by descending count.
	OOVReport() []WordCount

	// WordCounts returns corpus-wide word frequencies by descending count.
	WordCounts() []WordCount

	// WatcherStatus returns the corpus watcher status, or nil if not active.
	WatcherStatus() *WatcherStatusData

	// Subscribe returns a channel that receives SSE events matching the
	// filter, and a cancel function to unsubscribe.
	Subscribe(filter EventFilter) (<-chan SSEEvent, func())

	// ReplaySince returns buffered events since the given event ID (for
	// Last-Event-ID recovery).
	ReplaySince(lastEventID string, filter EventFilter) []SSEEvent
}

// CorpusStatsData summarizes the loaded corpus.
type CorpusStatsData struct {
	Speakers      int     `json:"speakers"`
	Files         int     `json:"files"`
	Utterances    int     `json:"utterances"`
	Segments      int     `json:"segments"`
	Ignored       int     `json:"ignored"`
	TotalDuration float64 `json:"total_duration"`
}

// SpeakerData is the list form of a speaker.
type SpeakerData struct {
	Name          string `json:"name"`
	NumUtterances int    `json:"num_utterances"`
	NumFiles      int    `json:"num_files"`
	Dictionary    string `json:"dictionary,omitempty"`
}

// SpeakerDetail is the single-speaker form, with member names attached.
type SpeakerDetail struct {
	SpeakerData
	Files      []string `json:"files,omitempty"`
	Utterances []string `json:"utterances,omitempty"`
}

// FileData is the list form of a corpus file.
type FileData struct {
	Name          string  `json:"name"`
	WavPath       string  `json:"wav_path,omitempty"`
	TextPath      string  `json:"text_path,omitempty"`
	RelativePath  string  `json:"relative_path,omitempty"`
	Aligned       bool    `json:"aligned"`
	Duration      float64 `json:"duration,omitempty"`
	SampleRate    int     `json:"sample_rate,omitempty"`
	NumChannels   int     `json:"num_channels,omitempty"`
	NumSpeakers   int     `json:"num_speakers"`
	NumUtterances int     `json:"num_utterances"`
}

// FileDetail is the single-file form, with tier ordering and utterances.
type FileDetail struct {
	FileData
	Speakers   []string        `json:"speakers,omitempty"`
	Utterances []UtteranceData `json:"utterances,omitempty"`
}

// UtteranceData is the wire form of an utterance.
type UtteranceData struct {
	Name              string   `json:"name"`
	FileName          string   `json:"file_name"`
	SpeakerName       string   `json:"speaker_name,omitempty"`
	Begin             *float64 `json:"begin,omitempty"`
	End               *float64 `json:"end,omitempty"`
	Duration          float64  `json:"duration,omitempty"`
	Channel           int      `json:"channel,omitempty"`
	Text              string   `json:"text,omitempty"`
	TranscriptionText *string  `json:"transcription_text,omitempty"`
	Ignored           bool     `json:"ignored,omitempty"`
	OOVs              []string `json:"oovs,omitempty"`
}

// UtteranceFilter narrows an utterance listing.
type UtteranceFilter struct {
	Speaker string
	File    string
}

// WordCount is one row of a word frequency report.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// WatcherStatusData represents the status of the corpus watcher.
type WatcherStatusData struct {
	Status       string `json:"status"` // "starting", "watching", "stopped"
	WatchDir     string `json:"watch_dir"`
	EventsSeen   int64  `json:"events_seen"`
	FilesUpdated int64  `json:"files_updated"`
	FilesRemoved int64  `json:"files_removed"`
}

// EventFilter specifies which events an SSE subscriber wants to receive.
type EventFilter struct {
	Types    []string
	Speakers []string
	Files    []string
}

// SSEEvent represents a server-sent event ready for transmission.
type SSEEvent struct {
	ID        string `json:"event_id"`
	Type      string `json:"event_type"`
	SubType   string `json:"sub_type,omitempty"`
	Timestamp string `json:"timestamp"`
	Speaker   string `json:"speaker,omitempty"`
	File      string `json:"file,omitempty"`
	Data      []byte `json:"-"` // pre-serialized JSON payload
}
