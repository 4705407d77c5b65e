package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type StatsHandler struct {
	source CorpusSource
}

func NewStatsHandler(source CorpusSource) *StatsHandler {
	return &StatsHandler{source: source}
}

// GetStats returns aggregate corpus statistics.
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.source.CorpusStats())
}

// GetWordCounts returns corpus-wide word frequencies, most frequent first.
func (h *StatsHandler) GetWordCounts(w http.ResponseWriter, r *http.Request) {
	p, err := ParsePagination(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	words := h.source.WordCounts()
	total := len(words)
	lo, hi := p.Slice(total)
	WriteJSON(w, http.StatusOK, map[string]any{
		"words":  words[lo:hi],
		"total":  total,
		"limit":  p.Limit,
		"offset": p.Offset,
	})
}

// GetOOVs returns out-of-vocabulary words, most frequent first.
func (h *StatsHandler) GetOOVs(w http.ResponseWriter, r *http.Request) {
	p, err := ParsePagination(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	oovs := h.source.OOVReport()
	total := len(oovs)
	lo, hi := p.Slice(total)
	WriteJSON(w, http.StatusOK, map[string]any{
		"oovs":   oovs[lo:hi],
		"total":  total,
		"limit":  p.Limit,
		"offset": p.Offset,
	})
}

// Routes registers stats routes on the given router.
func (h *StatsHandler) Routes(r chi.Router) {
	r.Get("/stats", h.GetStats)
	r.Get("/stats/words", h.GetWordCounts)
	r.Get("/oovs", h.GetOOVs)
}
