package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type UtterancesHandler struct {
	source CorpusSource
}

func NewUtterancesHandler(source CorpusSource) *UtterancesHandler {
	return &UtterancesHandler{source: source}
}

// ListUtterances returns utterances with optional speaker and file filters.
func (h *UtterancesHandler) ListUtterances(w http.ResponseWriter, r *http.Request) {
	p, err := ParsePagination(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var filter UtteranceFilter
	if v, ok := QueryString(r, "speaker"); ok {
		filter.Speaker = v
	}
	if v, ok := QueryString(r, "file"); ok {
		filter.File = v
	}

	utts := h.source.Utterances(filter)
	if ignored, ok := QueryBool(r, "ignored"); ok {
		filtered := utts[:0]
		for _, u := range utts {
			if u.Ignored == ignored {
				filtered = append(filtered, u)
			}
		}
		utts = filtered
	}

	total := len(utts)
	lo, hi := p.Slice(total)
	WriteJSON(w, http.StatusOK, map[string]any{
		"utterances": utts[lo:hi],
		"total":      total,
		"limit":      p.Limit,
		"offset":     p.Offset,
	})
}

// GetUtterance returns a single utterance by name.
func (h *UtterancesHandler) GetUtterance(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	utt, ok := h.source.Utterance(name)
	if !ok {
		WriteError(w, http.StatusNotFound, "utterance not found")
		return
	}
	WriteJSON(w, http.StatusOK, utt)
}

// Routes registers utterance routes on the given router.
func (h *UtterancesHandler) Routes(r chi.Router) {
	r.Get("/utterances", h.ListUtterances)
	r.Get("/utterances/{name}", h.GetUtterance)
}
