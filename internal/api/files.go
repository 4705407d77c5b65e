package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type FilesHandler struct {
	source CorpusSource
}

func NewFilesHandler(source CorpusSource) *FilesHandler {
	return &FilesHandler{source: source}
}

// ListFiles returns all corpus files, optionally filtered by name substring
// or aligned state.
func (h *FilesHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	p, err := ParsePagination(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	files := h.source.Files()
	if search, ok := QueryString(r, "search"); ok {
		search = strings.ToLower(search)
		filtered := files[:0]
		for _, f := range files {
			if strings.Contains(strings.ToLower(f.Name), search) {
				filtered = append(filtered, f)
			}
		}
		files = filtered
	}
	if aligned, ok := QueryBool(r, "aligned"); ok {
		filtered := files[:0]
		for _, f := range files {
			if f.Aligned == aligned {
				filtered = append(filtered, f)
			}
		}
		files = filtered
	}

	total := len(files)
	lo, hi := p.Slice(total)
	WriteJSON(w, http.StatusOK, map[string]any{
		"files":  files[lo:hi],
		"total":  total,
		"limit":  p.Limit,
		"offset": p.Offset,
	})
}

// GetFile returns a single file with its speakers and utterances.
func (h *FilesHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	file, ok := h.source.File(name)
	if !ok {
		WriteError(w, http.StatusNotFound, "file not found")
		return
	}
	WriteJSON(w, http.StatusOK, file)
}

// Routes registers file routes on the given router.
func (h *FilesHandler) Routes(r chi.Router) {
	r.Get("/files", h.ListFiles)
	r.Get("/files/{name}", h.GetFile)
}
