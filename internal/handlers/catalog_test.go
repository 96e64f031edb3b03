package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/streamvault/backend/internal/models"
)

func TestCatalogHandlerCreateAndListSeries(t *testing.T) {
	store := newInMemoryCatalogStore()
	handler := CatalogHandler{Catalog: store}

	body, err := json.Marshal(createSeriesRequest{Title: "Night Shift", Genre: "drama", ReleaseYear: 2024})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/series", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Series(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d", http.StatusCreated, rec.Code)
	}

	var created seriesResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.ID == "" || created.Title != "Night Shift" {
		t.Fatalf("unexpected created series: %+v", created)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/series", nil)
	rec = httptest.NewRecorder()

	handler.Series(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	var listed []seriesResponse
	if err := json.NewDecoder(rec.Body).Decode(&listed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("expected the created series to be listed, got %+v", listed)
	}
}

func TestCatalogHandlerCreateSeriesRequiresTitle(t *testing.T) {
	handler := CatalogHandler{Catalog: newInMemoryCatalogStore()}

	body, err := json.Marshal(createSeriesRequest{Title: "   "})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/series", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Series(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestCatalogHandlerListSeriesPagination(t *testing.T) {
	store := newInMemoryCatalogStore()
	store.series["series-1"] = models.Series{ID: "series-1", Title: "First"}
	store.series["series-2"] = models.Series{ID: "series-2", Title: "Second"}
	store.series["series-3"] = models.Series{ID: "series-3", Title: "Third"}

	handler := CatalogHandler{Catalog: store}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/series?skip=1&limit=1", nil)
	rec := httptest.NewRecorder()

	handler.Series(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	var listed []seriesResponse
	if err := json.NewDecoder(rec.Body).Decode(&listed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != "series-2" {
		t.Fatalf("expected the second series only, got %+v", listed)
	}
}

func TestCatalogHandlerSeriesByIDNotFound(t *testing.T) {
	handler := CatalogHandler{Catalog: newInMemoryCatalogStore()}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/series/missing", nil)
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()

	handler.SeriesByID(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d got %d", http.StatusNotFound, rec.Code)
	}
}

func TestCatalogHandlerEpisodes(t *testing.T) {
	store := newInMemoryCatalogStore()
	store.series["series-1"] = models.Series{ID: "series-1", Title: "First"}
	store.episodes["ep-2"] = models.Episode{ID: "ep-2", SeriesID: "series-1", SeasonNumber: 1, EpisodeNumber: 2, Title: "Two"}
	store.episodes["ep-1"] = models.Episode{ID: "ep-1", SeriesID: "series-1", SeasonNumber: 1, EpisodeNumber: 1, Title: "One"}
	store.episodes["ep-other"] = models.Episode{ID: "ep-other", SeriesID: "series-9", EpisodeNumber: 1}

	handler := CatalogHandler{Catalog: store}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/series/series-1/episodes", nil)
	req.SetPathValue("id", "series-1")
	rec := httptest.NewRecorder()

	handler.Episodes(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	var listed []episodeResponse
	if err := json.NewDecoder(rec.Body).Decode(&listed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(listed) != 2 || listed[0].ID != "ep-1" || listed[1].ID != "ep-2" {
		t.Fatalf("expected the series episodes in order, got %+v", listed)
	}
}

func TestCatalogHandlerEpisodesUnknownSeries(t *testing.T) {
	handler := CatalogHandler{Catalog: newInMemoryCatalogStore()}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/series/missing/episodes", nil)
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()

	handler.Episodes(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d got %d", http.StatusNotFound, rec.Code)
	}
}
