package api

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// getStatus serves the current personal bests and last-pass summary as
// JSON.
func getStatus(status StatusFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := json.Marshal(status())
		if err != nil {
			log.Errorf("Failed to encode status: %v", err)
			sendResponse(w, http.StatusInternalServerError, []byte(`{"error":"internal"}`))
			return
		}
		sendResponse(w, http.StatusOK, body)
	}
}

func sendResponse(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
