package api

import (
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

// mockSource implements CorpusSource for handler tests.
type mockSource struct {
	stats    CorpusStatsData
	speakers []SpeakerData
	details  map[string]SpeakerDetail
	files    []FileData
	fileDets map[string]FileDetail
	utts     []UtteranceData
	oovs     []WordCount
	words    []WordCount
	watcher  *WatcherStatusData
	replay   []SSEEvent
}

func (m *mockSource) CorpusStats() CorpusStatsData { return m.stats }
func (m *mockSource) Speakers() []SpeakerData      { return m.speakers }
func (m *mockSource) Speaker(name string) (SpeakerDetail, bool) {
	d, ok := m.details[name]
	return d, ok
}
func (m *mockSource) Files() []FileData { return m.files }
func (m *mockSource) File(name string) (FileDetail, bool) {
	d, ok := m.fileDets[name]
	return d, ok
}
func (m *mockSource) Utterances(filter UtteranceFilter) []UtteranceData {
	var out []UtteranceData
	for _, u := range m.utts {
		if filter.Speaker != "" && u.SpeakerName != filter.Speaker {
			continue
		}
		if filter.File != "" && u.FileName != filter.File {
			continue
		}
		out = append(out, u)
	}
	return out
}
func (m *mockSource) Utterance(name string) (UtteranceData, bool) {
	for _, u := range m.utts {
		if u.Name == name {
			return u, true
		}
	}
	return UtteranceData{}, false
}
func (m *mockSource) OOVReport() []WordCount            { return m.oovs }
func (m *mockSource) WordCounts() []WordCount           { return m.words }
func (m *mockSource) WatcherStatus() *WatcherStatusData { return m.watcher }
func (m *mockSource) Subscribe(EventFilter) (<-chan SSEEvent, func()) {
	return make(chan SSEEvent), func() {}
}
func (m *mockSource) ReplaySince(string, EventFilter) []SSEEvent { return m.replay }

func f64(v float64) *float64 { return &v }

// sampleSource builds a small two-file corpus fixture.
func sampleSource() *mockSource {
	speakers := []SpeakerData{
		{Name: "anna", NumUtterances: 2, NumFiles: 1},
		{Name: "ben", NumUtterances: 1, NumFiles: 1},
	}
	files := []FileData{
		{Name: "session1", WavPath: "/corpus/session1.wav", Aligned: false, Duration: 10, NumSpeakers: 1, NumUtterances: 2},
		{Name: "session2", TextPath: "/corpus/session2.TextGrid", Aligned: true, NumSpeakers: 1, NumUtterances: 1},
	}
	utts := []UtteranceData{
		{Name: "anna-session1-0-2", FileName: "session1", SpeakerName: "anna", Begin: f64(0), End: f64(2), Duration: 2, Text: "hello there"},
		{Name: "anna-session1-3-5", FileName: "session1", SpeakerName: "anna", Begin: f64(3), End: f64(5), Duration: 2, Text: "how are you", Ignored: true},
		{Name: "ben-session2-0-4", FileName: "session2", SpeakerName: "ben", Begin: f64(0), End: f64(4), Duration: 4, Text: "fine thanks"},
	}
	return &mockSource{
		stats:    CorpusStatsData{Speakers: 2, Files: 2, Utterances: 3, Segments: 3, TotalDuration: 14},
		speakers: speakers,
		details: map[string]SpeakerDetail{
			"anna": {SpeakerData: speakers[0], Files: []string{"session1"}, Utterances: []string{"anna-session1-0-2", "anna-session1-3-5"}},
			"ben":  {SpeakerData: speakers[1], Files: []string{"session2"}, Utterances: []string{"ben-session2-0-4"}},
		},
		files: files,
		fileDets: map[string]FileDetail{
			"session1": {FileData: files[0], Speakers: []string{"anna"}, Utterances: utts[:2]},
			"session2": {FileData: files[1], Speakers: []string{"ben"}, Utterances: utts[2:]},
		},
		utts:  utts,
		oovs:  []WordCount{{Word: "zzyzx", Count: 2}, {Word: "qwfp", Count: 1}},
		words: []WordCount{{Word: "hello", Count: 3}, {Word: "there", Count: 1}},
	}
}

// serveRoute mounts the handler's routes on a chi router and performs a GET.
func serveRoute(t *testing.T, h interface{ Routes(chi.Router) }, target string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	h.Routes(r)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", target, nil)
	r.ServeHTTP(rec, req)
	return rec
}
