package ingest

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/spokenlab/corpuskit/internal/corpus"
	"github.com/spokenlab/corpuskit/internal/metrics"
)

// LoadOptions configures a parallel corpus load.
type LoadOptions struct {
	// Workers is the parse pool size. Zero or negative means one worker
	// per CPU.
	Workers int
	// Policy decides speaker attribution for plain transcripts.
	Policy corpus.SpeakerPolicy
	// Sanitize tokenizes transcript text; nil splits on whitespace.
	Sanitize corpus.SanitizeFunc
	// Info probes sound files.
	Info corpus.InfoFunc
	// Waveform loads normalized samples on demand.
	Waveform corpus.WaveformFunc
	// Dictionary, when set, is attached to the corpus and used to tag
	// out-of-vocabulary words after the merge.
	Dictionary corpus.Dictionary

	Log zerolog.Logger
}

// LoadStats reports the outcome of a corpus load.
type LoadStats struct {
	FilesLoaded int
	FilesFailed int
	Elapsed     time.Duration
}

type parseResult struct {
	file *corpus.File
	err  error
}

// Load parses jobs on a worker pool and merges the results into a fresh
// corpus. Parsing is the expensive part and runs concurrently; the merge
// runs on the calling goroutine in job order, so two loads of the same
// directory tree produce identically ordered collections.
//
// Files that fail to parse are logged and skipped; they never abort the
// load. On cancellation the partial corpus is returned along with ctx.Err().
func Load(ctx context.Context, jobs []FileJob, opts LoadOptions) (*corpus.Corpus, LoadStats, error) {
	start := time.Now()

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	parseOpts := corpus.ParseOptions{
		Policy:   opts.Policy,
		Sanitize: opts.Sanitize,
		Info:     opts.Info,
		Waveform: opts.Waveform,
		Stop:     func() bool { return ctx.Err() != nil },
	}

	// Workers write disjoint slots, so the results slice needs no lock.
	results := make([]parseResult, len(jobs))
	work := make(chan int)
	var wg sync.WaitGroup
	var parsed atomic.Int64

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				job := jobs[i]
				file, err := corpus.ParseFile(job.Name, job.WavPath, job.TextPath, job.RelativePath, parseOpts)
				results[i] = parseResult{file: file, err: err}
				if n := parsed.Add(1); n%500 == 0 {
					opts.Log.Info().
						Int64("parsed", n).
						Int("total", len(jobs)).
						Msg("corpus load progress")
				}
			}
		}()
	}

feed:
	for i := range jobs {
		select {
		case <-ctx.Done():
			break feed
		case work <- i:
		}
	}
	close(work)
	wg.Wait()

	g := corpus.NewCorpus()
	var stats LoadStats
	for i, res := range results {
		if res.err != nil {
			stats.FilesFailed++
			metrics.ParseErrorsTotal.WithLabelValues(parseErrorKind(res.err)).Inc()
			opts.Log.Warn().
				Err(res.err).
				Str("file", jobs[i].Name).
				Msg("file failed to parse")
			continue
		}
		if res.file == nil {
			// Job never reached a worker before cancellation.
			continue
		}
		g.AddFile(res.file)
		stats.FilesLoaded++
		metrics.FilesParsedTotal.Inc()
	}

	if opts.Dictionary != nil {
		g.SetDictionary(opts.Dictionary)
		g.TagOOVs(opts.Dictionary)
	}

	stats.Elapsed = time.Since(start)
	if err := ctx.Err(); err != nil {
		return g, stats, err
	}
	return g, stats, nil
}

// parseErrorKind buckets a parse failure for metrics.
func parseErrorKind(err error) string {
	var gridErr *corpus.TextGridParseError
	if errors.As(err, &gridErr) {
		return "textgrid"
	}
	var textErr *corpus.TextParseError
	if errors.As(err, &textErr) {
		return "transcript"
	}
	return "other"
}
