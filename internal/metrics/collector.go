package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// IngestStats provides the metrics collector access to live corpus state.
type IngestStats interface {
	SpeakerCount() int
	FileCount() int
	UtteranceCount() int
	SSESubscriberCount() int
}

// Collector implements prometheus.Collector to read live gauges at scrape time.
type Collector struct {
	stats IngestStats

	// Descriptors for scrape-time gauges.
	speakers       *prometheus.Desc
	files          *prometheus.Desc
	utterances     *prometheus.Desc
	sseSubscribers *prometheus.Desc
}

// NewCollector creates a collector that reads live state at scrape time.
// stats may be nil if no corpus is loaded (metrics will report 0).
func NewCollector(stats IngestStats) *Collector {
	return &Collector{
		stats: stats,
		speakers: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "corpus_speakers"),
			"Current number of speakers in the corpus.",
			nil, nil,
		),
		files: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "corpus_files"),
			"Current number of files in the corpus.",
			nil, nil,
		),
		utterances: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "corpus_utterances"),
			"Current number of utterances in the corpus.",
			nil, nil,
		),
		sseSubscribers: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "sse_subscribers_active"),
			"Current number of SSE subscribers.",
			nil, nil,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.speakers
	ch <- c.files
	ch <- c.utterances
	ch <- c.sseSubscribers
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c.stats == nil {
		ch <- prometheus.MustNewConstMetric(c.speakers, prometheus.GaugeValue, 0)
		ch <- prometheus.MustNewConstMetric(c.files, prometheus.GaugeValue, 0)
		ch <- prometheus.MustNewConstMetric(c.utterances, prometheus.GaugeValue, 0)
		ch <- prometheus.MustNewConstMetric(c.sseSubscribers, prometheus.GaugeValue, 0)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.speakers, prometheus.GaugeValue, float64(c.stats.SpeakerCount()))
	ch <- prometheus.MustNewConstMetric(c.files, prometheus.GaugeValue, float64(c.stats.FileCount()))
	ch <- prometheus.MustNewConstMetric(c.utterances, prometheus.GaugeValue, float64(c.stats.UtteranceCount()))
	ch <- prometheus.MustNewConstMetric(c.sseSubscribers, prometheus.GaugeValue, float64(c.stats.SSESubscriberCount()))
}
