package ingest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/spokenlab/corpuskit/internal/api"
	"github.com/spokenlab/corpuskit/internal/corpus"
	"github.com/spokenlab/corpuskit/internal/metrics"
)

// ServiceOptions configures a corpus service.
type ServiceOptions struct {
	// Root is the corpus directory tree to scan and watch.
	Root string
	// Workers is the parse pool size for the initial load.
	Workers int
	// Policy decides speaker attribution for plain transcripts.
	Policy corpus.SpeakerPolicy
	// Sanitize tokenizes transcript text; nil splits on whitespace.
	Sanitize corpus.SanitizeFunc
	// Info probes sound files.
	Info corpus.InfoFunc
	// Waveform loads normalized samples on demand.
	Waveform corpus.WaveformFunc
	// Dictionary, when set, is attached to speakers and drives OOV tagging.
	Dictionary corpus.Dictionary
	// WatchDebounce coalesces filesystem event bursts; zero means 500ms.
	WatchDebounce time.Duration
	// EventBufferSize is the SSE replay ring size; zero means 256.
	EventBufferSize int

	Log zerolog.Logger
}

// Service owns the loaded corpus and serves it to the HTTP API. It is the
// single writer: the loader populates it once, then the watcher swaps
// changed files in and out under the service lock. It implements
// api.CorpusSource.
type Service struct {
	ctx     context.Context
	cancel  context.CancelFunc
	opts    ServiceOptions
	log     zerolog.Logger
	scanner *Scanner
	bus     *EventBus
	watcher *Watcher

	mu sync.RWMutex
	c  *corpus.Corpus
}

// NewService builds a service around an empty corpus. Call Load or Restore
// before serving it.
func NewService(ctx context.Context, opts ServiceOptions) *Service {
	ringSize := opts.EventBufferSize
	if ringSize <= 0 {
		ringSize = 256
	}
	sctx, cancel := context.WithCancel(ctx)
	s := &Service{
		ctx:    sctx,
		cancel: cancel,
		opts:   opts,
		log:    opts.Log.With().Str("component", "service").Logger(),
		bus:    NewEventBus(ringSize),
		c:      corpus.NewCorpus(),
	}
	s.scanner = NewScanner(opts.Root, opts.Log)
	return s
}

// Load scans the corpus root and parses every pair on the worker pool,
// replacing the service's corpus with the result.
func (s *Service) Load(ctx context.Context) (LoadStats, error) {
	jobs, err := s.scanner.Scan()
	if err != nil {
		return LoadStats{}, err
	}
	c, stats, err := Load(ctx, jobs, LoadOptions{
		Workers:    s.opts.Workers,
		Policy:     s.opts.Policy,
		Sanitize:   s.opts.Sanitize,
		Info:       s.opts.Info,
		Waveform:   s.opts.Waveform,
		Dictionary: s.opts.Dictionary,
		Log:        s.opts.Log,
	})
	if err != nil {
		return stats, err
	}
	s.mu.Lock()
	s.c = c
	s.mu.Unlock()
	return stats, nil
}

// Restore swaps in a corpus rebuilt from a snapshot, reattaching the parse
// collaborators that records do not carry.
func (s *Service) Restore(c *corpus.Corpus) {
	for _, f := range c.Files.All() {
		f.SetInfoFunc(s.opts.Info)
		f.SetWaveformFunc(s.opts.Waveform)
	}
	if s.opts.Dictionary != nil {
		c.SetDictionary(s.opts.Dictionary)
	}
	s.mu.Lock()
	s.c = c
	s.mu.Unlock()
}

// Watch starts the filesystem watcher over the corpus root.
func (s *Service) Watch() error {
	s.watcher = newWatcher(s, s.scanner, s.opts.Root, s.opts.WatchDebounce)
	return s.watcher.Start()
}

// Stop shuts the watcher down and cancels the service context.
func (s *Service) Stop() {
	if s.watcher != nil {
		s.watcher.Stop()
	}
	s.cancel()
}

// View runs fn with the corpus under the read lock. fn must not retain the
// corpus or mutate it.
func (s *Service) View(fn func(c *corpus.Corpus)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.c)
}

// applyJob re-parses one pair and swaps it into the corpus, replacing any
// previous file of the same name. The watcher calls it after a change has
// settled.
func (s *Service) applyJob(job FileJob) error {
	file, err := corpus.ParseFile(job.Name, job.WavPath, job.TextPath, job.RelativePath, corpus.ParseOptions{
		Policy:   s.opts.Policy,
		Sanitize: s.opts.Sanitize,
		Info:     s.opts.Info,
		Waveform: s.opts.Waveform,
		Stop:     func() bool { return s.ctx.Err() != nil },
	})
	if err != nil {
		metrics.ParseErrorsTotal.WithLabelValues(parseErrorKind(err)).Inc()
		s.bus.Publish(EventData{
			Type:    "file",
			SubType: "parse_error",
			File:    job.Name,
			Payload: map[string]string{"file": job.Name, "error": err.Error()},
		})
		return err
	}
	// A stop signal mid-parse leaves the file partially populated; discard
	// it rather than swap a partial graph into the corpus.
	if err := s.ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.c.Files.Contains(job.Name) {
		_ = s.c.RemoveFile(job.Name)
	}
	s.c.AddFile(file)
	if s.opts.Dictionary != nil {
		for _, sp := range file.SpeakerOrdering() {
			cur, err := s.c.Speakers.Get(sp.Name())
			if err == nil && cur.Dictionary() == nil {
				cur.SetDictionary(s.opts.Dictionary)
			}
		}
		for _, u := range file.Utterances.All() {
			u.ResolveTokens(s.opts.Dictionary)
		}
	}
	data := s.fileData(file)
	s.mu.Unlock()

	metrics.FilesParsedTotal.Inc()
	s.bus.Publish(EventData{
		Type:    "file",
		SubType: "updated",
		File:    job.Name,
		Payload: data,
	})
	return nil
}

// removeFile drops a file whose sources vanished from disk. It reports
// whether the corpus actually held it.
func (s *Service) removeFile(name string) bool {
	s.mu.Lock()
	err := s.c.RemoveFile(name)
	s.mu.Unlock()
	if err != nil {
		return false
	}
	s.bus.Publish(EventData{
		Type:    "file",
		SubType: "removed",
		File:    name,
		Payload: map[string]string{"file": name},
	})
	return true
}

// --- api.CorpusSource ---

func (s *Service) CorpusStats() api.CorpusStatsData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.c.ComputeStats()
	return api.CorpusStatsData{
		Speakers:      st.Speakers,
		Files:         st.Files,
		Utterances:    st.Utterances,
		Segments:      st.Segments,
		Ignored:       st.Ignored,
		TotalDuration: st.TotalDuration,
	}
}

func (s *Service) Speakers() []api.SpeakerData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	speakers := s.c.Speakers.All()
	out := make([]api.SpeakerData, 0, len(speakers))
	for _, sp := range speakers {
		out = append(out, speakerData(sp))
	}
	return out
}

func (s *Service) Speaker(name string) (api.SpeakerDetail, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sp, err := s.c.Speakers.Get(name)
	if err != nil {
		return api.SpeakerDetail{}, false
	}
	detail := api.SpeakerDetail{SpeakerData: speakerData(sp)}
	for _, f := range sp.Files() {
		detail.Files = append(detail.Files, f.Name())
	}
	for _, u := range sp.Utterances.All() {
		detail.Utterances = append(detail.Utterances, u.Name())
	}
	return detail, true
}

func (s *Service) Files() []api.FileData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	files := s.c.Files.All()
	out := make([]api.FileData, 0, len(files))
	for _, f := range files {
		out = append(out, s.fileData(f))
	}
	return out
}

func (s *Service) File(name string) (api.FileDetail, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, err := s.c.Files.Get(name)
	if err != nil {
		return api.FileDetail{}, false
	}
	detail := api.FileDetail{FileData: s.fileData(f)}
	for _, sp := range f.SpeakerOrdering() {
		detail.Speakers = append(detail.Speakers, sp.Name())
	}
	for _, u := range f.Utterances.All() {
		detail.Utterances = append(detail.Utterances, utteranceData(u))
	}
	return detail, true
}

func (s *Service) Utterances(filter api.UtteranceFilter) []api.UtteranceData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []api.UtteranceData
	for _, u := range s.c.Utterances.All() {
		if filter.Speaker != "" && u.SpeakerName != filter.Speaker {
			continue
		}
		if filter.File != "" && u.FileName != filter.File {
			continue
		}
		out = append(out, utteranceData(u))
	}
	return out
}

func (s *Service) Utterance(name string) (api.UtteranceData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, err := s.c.Utterances.Get(name)
	if err != nil {
		return api.UtteranceData{}, false
	}
	return utteranceData(u), true
}

func (s *Service) OOVReport() []api.WordCount {
	s.mu.RLock()
	counts := s.c.OOVCounts()
	s.mu.RUnlock()
	return sortedCounts(counts)
}

func (s *Service) WordCounts() []api.WordCount {
	// Recomputes per-speaker frequency tables, so this takes the write lock.
	s.mu.Lock()
	counts := s.c.WordCounts()
	s.mu.Unlock()
	return sortedCounts(counts)
}

func (s *Service) WatcherStatus() *api.WatcherStatusData {
	if s.watcher == nil {
		return nil
	}
	return s.watcher.Status()
}

func (s *Service) Subscribe(filter api.EventFilter) (<-chan api.SSEEvent, func()) {
	return s.bus.Subscribe(filter)
}

func (s *Service) ReplaySince(lastEventID string, filter api.EventFilter) []api.SSEEvent {
	return s.bus.ReplaySince(lastEventID, filter)
}

// --- metrics.IngestStats ---

func (s *Service) SpeakerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.Speakers.Len()
}

func (s *Service) FileCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.Files.Len()
}

func (s *Service) UtteranceCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.Utterances.Len()
}

func (s *Service) SSESubscriberCount() int { return s.bus.SubscriberCount() }

// --- wire form conversions ---

func speakerData(sp *corpus.Speaker) api.SpeakerData {
	return api.SpeakerData{
		Name:          sp.Name(),
		NumUtterances: sp.NumUtterances(),
		NumFiles:      len(sp.Files()),
		Dictionary:    sp.DictionaryName(),
	}
}

func (s *Service) fileData(f *corpus.File) api.FileData {
	data := api.FileData{
		Name:          f.Name(),
		WavPath:       f.WavPath,
		TextPath:      f.TextPath,
		RelativePath:  f.RelativePath,
		Aligned:       f.Aligned,
		NumSpeakers:   f.NumSpeakers(),
		NumUtterances: f.NumUtterances(),
	}
	if info, err := f.Info(); err == nil {
		data.Duration = info.Duration
		data.SampleRate = info.SampleRate
		data.NumChannels = info.NumChannels
	}
	return data
}

func utteranceData(u *corpus.Utterance) api.UtteranceData {
	return api.UtteranceData{
		Name:              u.Name(),
		FileName:          u.FileName,
		SpeakerName:       u.SpeakerName,
		Begin:             u.Begin,
		End:               u.End,
		Duration:          u.Duration(),
		Channel:           u.Channel,
		Text:              u.Text,
		TranscriptionText: u.TranscriptionText,
		Ignored:           u.Ignored,
		OOVs:              u.OOVs(),
	}
}

// sortedCounts orders a frequency table by descending count, ties by word.
func sortedCounts(counts map[string]int) []api.WordCount {
	out := make([]api.WordCount, 0, len(counts))
	for w, n := range counts {
		out = append(out, api.WordCount{Word: w, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	return out
}
