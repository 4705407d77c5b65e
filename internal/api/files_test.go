package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// filesResponse matches the JSON shape returned by ListFiles.
type filesResponse struct {
	Files  []FileData `json:"files"`
	Total  int        `json:"total"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

func decodeFiles(t *testing.T, rec *httptest.ResponseRecorder) filesResponse {
	t.Helper()
	var resp filesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("JSON decode: %v", err)
	}
	return resp
}

func TestListFiles(t *testing.T) {
	h := NewFilesHandler(sampleSource())

	t.Run("returns_all_files", func(t *testing.T) {
		rec := serveRoute(t, h, "/files")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		resp := decodeFiles(t, rec)
		if resp.Total != 2 {
			t.Errorf("total = %d, want 2", resp.Total)
		}
	})

	t.Run("search_filters_by_substring", func(t *testing.T) {
		rec := serveRoute(t, h, "/files?search=session2")
		resp := decodeFiles(t, rec)
		if resp.Total != 1 {
			t.Fatalf("total = %d, want 1", resp.Total)
		}
		if resp.Files[0].Name != "session2" {
			t.Errorf("name = %q, want session2", resp.Files[0].Name)
		}
	})

	t.Run("aligned_filter", func(t *testing.T) {
		rec := serveRoute(t, h, "/files?aligned=true")
		resp := decodeFiles(t, rec)
		if resp.Total != 1 {
			t.Fatalf("total = %d, want 1", resp.Total)
		}
		if !resp.Files[0].Aligned {
			t.Error("expected aligned file")
		}

		rec = serveRoute(t, h, "/files?aligned=false")
		resp = decodeFiles(t, rec)
		if resp.Total != 1 {
			t.Errorf("total = %d, want 1", resp.Total)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		rec := serveRoute(t, h, "/files?limit=1")
		resp := decodeFiles(t, rec)
		if resp.Total != 2 {
			t.Errorf("total = %d, want 2", resp.Total)
		}
		if len(resp.Files) != 1 {
			t.Errorf("page len = %d, want 1", len(resp.Files))
		}
		if resp.Limit != 1 {
			t.Errorf("limit = %d, want 1", resp.Limit)
		}
	})
}

func TestGetFile(t *testing.T) {
	h := NewFilesHandler(sampleSource())

	t.Run("found", func(t *testing.T) {
		rec := serveRoute(t, h, "/files/session1")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		var resp FileDetail
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("JSON decode: %v", err)
		}
		if resp.Name != "session1" {
			t.Errorf("name = %q, want session1", resp.Name)
		}
		if len(resp.Speakers) != 1 || resp.Speakers[0] != "anna" {
			t.Errorf("speakers = %v, want [anna]", resp.Speakers)
		}
		if len(resp.Utterances) != 2 {
			t.Errorf("utterances len = %d, want 2", len(resp.Utterances))
		}
	})

	t.Run("not_found", func(t *testing.T) {
		rec := serveRoute(t, h, "/files/ghost")
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})
}
