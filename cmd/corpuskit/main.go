package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/spokenlab/corpuskit/internal/api"
	"github.com/spokenlab/corpuskit/internal/archive"
	"github.com/spokenlab/corpuskit/internal/audio"
	"github.com/spokenlab/corpuskit/internal/config"
	"github.com/spokenlab/corpuskit/internal/corpus"
	"github.com/spokenlab/corpuskit/internal/dictionary"
	"github.com/spokenlab/corpuskit/internal/ingest"
	"github.com/spokenlab/corpuskit/internal/metrics"
)

var version = "dev"

const usage = `usage: corpuskit <command> [flags]

commands:
  load     parse the corpus tree and report what it holds
  export   parse the corpus tree and write every annotation back out
  serve    parse the corpus tree and serve the inspection API
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command := os.Args[1]

	fs := flag.NewFlagSet(command, flag.ExitOnError)
	var ov config.Overrides
	fs.StringVar(&ov.EnvFile, "env", "", "path to .env file")
	fs.StringVar(&ov.CorpusDir, "corpus", "", "corpus directory tree")
	fs.StringVar(&ov.DictionaryPath, "dict", "", "pronunciation lexicon file")
	fs.StringVar(&ov.SpeakerPolicy, "policy", "", "speaker attribution policy")
	fs.IntVar(&ov.Workers, "workers", 0, "parse workers (0 = one per CPU)")
	fs.StringVar(&ov.OutputDir, "out", "", "annotation output directory")
	fs.StringVar(&ov.SnapshotPath, "snapshot", "", "corpus snapshot file")
	fs.StringVar(&ov.HTTPAddr, "addr", "", "http listen address")
	fs.StringVar(&ov.LogLevel, "log-level", "", "log level")
	fs.BoolVar(&ov.Watch, "watch", false, "watch the corpus tree for changes")

	switch command {
	case "load", "export", "serve":
		fs.Parse(os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load(ov)
	if err != nil {
		early := zerolog.New(os.Stderr).With().Timestamp().Logger()
		early.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)
	log.Info().Str("version", version).Str("command", command).Msg("corpuskit starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts, err := serviceOptions(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build collaborators")
	}

	switch command {
	case "load":
		err = runLoad(ctx, cfg, opts, log)
	case "export":
		err = runExport(ctx, cfg, opts, log)
	case "serve":
		err = runServe(ctx, cfg, opts, log)
	}
	if err != nil {
		log.Fatal().Err(err).Msg(command + " failed")
	}
	log.Info().Msg("corpuskit stopped")
}

// serviceOptions wires the default collaborators: WAV/soxi probing, PCM
// waveform loading, the punctuation sanitizer, and the lexicon when one is
// configured.
func serviceOptions(cfg *config.Config, log zerolog.Logger) (ingest.ServiceOptions, error) {
	opts := ingest.ServiceOptions{
		Root:          cfg.CorpusDir,
		Workers:       cfg.Workers,
		Policy:        corpus.SpeakerPolicy(cfg.SpeakerPolicy),
		Sanitize:      dictionary.Sanitize,
		Info:          audio.Probe,
		Waveform:      audio.LoadWaveform,
		WatchDebounce: cfg.WatchDebounce,
		Log:           log,
	}
	if cfg.DictionaryPath != "" {
		d, err := dictionary.Load(cfg.DictionaryPath, dictionary.Options{})
		if err != nil {
			return opts, err
		}
		log.Info().Str("dictionary", d.Name()).Int("words", d.NumWords()).Msg("lexicon loaded")
		opts.Dictionary = d
	}
	return opts, nil
}

func runLoad(ctx context.Context, cfg *config.Config, opts ingest.ServiceOptions, log zerolog.Logger) error {
	svc := ingest.NewService(ctx, opts)
	defer svc.Stop()

	stats, err := svc.Load(ctx)
	if err != nil {
		return err
	}
	logStats(svc, stats, log)

	if cfg.SnapshotPath != "" {
		var saveErr error
		svc.View(func(c *corpus.Corpus) {
			saveErr = archive.Save(cfg.SnapshotPath, c)
		})
		if saveErr != nil {
			return saveErr
		}
		log.Info().Str("path", cfg.SnapshotPath).Msg("snapshot written")
	}
	return nil
}

func runExport(ctx context.Context, cfg *config.Config, opts ingest.ServiceOptions, log zerolog.Logger) error {
	svc := ingest.NewService(ctx, opts)
	defer svc.Stop()

	stats, err := svc.Load(ctx)
	if err != nil {
		return err
	}
	logStats(svc, stats, log)

	written, failed := 0, 0
	svc.View(func(c *corpus.Corpus) {
		for _, f := range c.Files.All() {
			if err := f.Save(cfg.OutputDir, cfg.BackupOutputDir); err != nil {
				failed++
				log.Warn().Err(err).Str("file", f.Name()).Msg("annotation write failed")
				continue
			}
			written++
		}
	})
	log.Info().Int("written", written).Int("failed", failed).Msg("annotations exported")
	if failed > 0 {
		return fmt.Errorf("%d annotation files failed to write", failed)
	}
	return nil
}

func runServe(ctx context.Context, cfg *config.Config, opts ingest.ServiceOptions, log zerolog.Logger) error {
	startTime := time.Now()
	svc := ingest.NewService(ctx, opts)
	defer svc.Stop()

	// A usable snapshot skips the parse on startup; the watcher catches up
	// with any drift afterwards.
	restored := false
	if cfg.SnapshotPath != "" {
		if c, err := archive.Load(cfg.SnapshotPath); err == nil {
			svc.Restore(c)
			restored = true
			log.Info().Str("path", cfg.SnapshotPath).Msg("corpus restored from snapshot")
		} else if !os.IsNotExist(err) {
			log.Warn().Err(err).Msg("snapshot unusable, reparsing corpus")
		}
	}
	if !restored {
		stats, err := svc.Load(ctx)
		if err != nil {
			return err
		}
		logStats(svc, stats, log)
	}

	if cfg.Watch {
		if err := svc.Watch(); err != nil {
			return err
		}
	}

	prometheus.MustRegister(metrics.NewCollector(svc))

	httpLog := log.With().Str("component", "http").Logger()
	srv := api.NewServer(cfg, svc, version, startTime, httpLog)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown error")
	}

	if cfg.SnapshotPath != "" {
		var saveErr error
		svc.View(func(c *corpus.Corpus) {
			saveErr = archive.Save(cfg.SnapshotPath, c)
		})
		if saveErr != nil {
			log.Error().Err(saveErr).Msg("snapshot write failed")
		} else {
			log.Info().Str("path", cfg.SnapshotPath).Msg("snapshot written")
		}
	}
	return nil
}

func logStats(svc *ingest.Service, stats ingest.LoadStats, log zerolog.Logger) {
	cs := svc.CorpusStats()
	log.Info().
		Int("files", cs.Files).
		Int("failed", stats.FilesFailed).
		Int("speakers", cs.Speakers).
		Int("utterances", cs.Utterances).
		Int("segments", cs.Segments).
		Float64("total_duration", cs.TotalDuration).
		Dur("elapsed", stats.Elapsed).
		Msg("corpus loaded")
}
