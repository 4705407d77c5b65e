package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type SpeakersHandler struct {
	source CorpusSource
}

func NewSpeakersHandler(source CorpusSource) *SpeakersHandler {
	return &SpeakersHandler{source: source}
}

// ListSpeakers returns all speakers, optionally filtered by a name substring.
func (h *SpeakersHandler) ListSpeakers(w http.ResponseWriter, r *http.Request) {
	p, err := ParsePagination(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	speakers := h.source.Speakers()
	if search, ok := QueryString(r, "search"); ok {
		search = strings.ToLower(search)
		filtered := speakers[:0]
		for _, s := range speakers {
			if strings.Contains(strings.ToLower(s.Name), search) {
				filtered = append(filtered, s)
			}
		}
		speakers = filtered
	}

	total := len(speakers)
	lo, hi := p.Slice(total)
	WriteJSON(w, http.StatusOK, map[string]any{
		"speakers": speakers[lo:hi],
		"total":    total,
		"limit":    p.Limit,
		"offset":   p.Offset,
	})
}

// GetSpeaker returns a single speaker by name.
func (h *SpeakersHandler) GetSpeaker(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	speaker, ok := h.source.Speaker(name)
	if !ok {
		WriteError(w, http.StatusNotFound, "speaker not found")
		return
	}
	WriteJSON(w, http.StatusOK, speaker)
}

// ListSpeakerUtterances returns the utterances attributed to one speaker.
func (h *SpeakersHandler) ListSpeakerUtterances(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, ok := h.source.Speaker(name); !ok {
		WriteError(w, http.StatusNotFound, "speaker not found")
		return
	}
	p, err := ParsePagination(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	utts := h.source.Utterances(UtteranceFilter{Speaker: name})
	total := len(utts)
	lo, hi := p.Slice(total)
	WriteJSON(w, http.StatusOK, map[string]any{
		"utterances": utts[lo:hi],
		"total":      total,
		"limit":      p.Limit,
		"offset":     p.Offset,
	})
}

// Routes registers speaker routes on the given router.
func (h *SpeakersHandler) Routes(r chi.Router) {
	r.Get("/speakers", h.ListSpeakers)
	r.Get("/speakers/{name}", h.GetSpeaker)
	r.Get("/speakers/{name}/utterances", h.ListSpeakerUtterances)
}
