package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/XWAP06yg/viscose-uploader/pkg/uploader"
)

func TestGetStatus(t *testing.T) {
	best := 140.0
	router := GetRouter(func() uploader.Status {
		return uploader.Status{
			LastPass: time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC),
			Passes:   3,
			Updated:  true,
			Scenarios: map[string]uploader.ScenarioStatus{
				"Close Range": {BestScore: &best, Worksheet: "Bench", ScoreCell: "C2"},
			},
		}
	})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var got uploader.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	assert.Equal(t, 3, got.Passes)
	assert.True(t, got.Updated)
	entry := got.Scenarios["Close Range"]
	if entry.BestScore == nil || *entry.BestScore != 140 {
		t.Fatalf("scenario status = %+v", entry)
	}
}

func TestGetStatusUnknownRoute(t *testing.T) {
	router := GetRouter(func() uploader.Status { return uploader.Status{} })
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
