package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rmedina/placepix/internal/storage"
)

// stubHistory serves canned audit events.
type stubHistory struct {
	events     []storage.AssignmentEvent
	successful int64
}

func (s *stubHistory) Record(ctx context.Context, ev *storage.AssignmentEvent) error { return nil }

func (s *stubHistory) List(ctx context.Context, limit int) ([]storage.AssignmentEvent, error) {
	if limit < len(s.events) {
		return s.events[:limit], nil
	}
	return s.events, nil
}

func (s *stubHistory) CountSuccessful(ctx context.Context) (int64, error) {
	return s.successful, nil
}

func historyRouter(repo storage.HistoryRepository) *gin.Engine {
	router := gin.New()
	router.GET("/history", NewRecordsHandler(nil, repo, zap.NewNop()).History)
	return router
}

func TestHistory_IncludesSuccessCount(t *testing.T) {
	repo := &stubHistory{
		events: []storage.AssignmentEvent{
			{City: "Rome", Country: "Italy", Provider: "pexels", ImageID: "9"},
			{City: "Paris", Country: "France", Provider: "pixabay", ImageID: "1", Success: true},
		},
		successful: 7,
	}
	router := historyRouter(repo)

	req := httptest.NewRequest("GET", "/history", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Count      int                       `json:"count"`
		Successful int64                     `json:"successful"`
		Events     []storage.AssignmentEvent `json:"events"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Count != 2 || len(body.Events) != 2 {
		t.Errorf("unexpected event count: %+v", body)
	}
	if body.Successful != 7 {
		t.Errorf("expected successful count 7, got %d", body.Successful)
	}
	if body.Events[0].City != "Rome" {
		t.Errorf("expected events in repository order, got %+v", body.Events[0])
	}
}

func TestHistory_InvalidLimit(t *testing.T) {
	router := historyRouter(&stubHistory{})

	for _, query := range []string{"limit=0", "limit=abc", "limit=9999"} {
		req := httptest.NewRequest("GET", "/history?"+query, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", query, w.Code)
		}
	}
}
