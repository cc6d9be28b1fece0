package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/analyzer"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/audio"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/minutes"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/store"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/transcriber"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

var (
	notFoundErrors = []error{store.ErrNotFound, transcriber.ErrTranscriptNotFound}
	conflictErrors = []error{store.ErrExists}

	clientErrors = []error{
		audio.ErrNotFound, audio.ErrUnsupportedFormat, audio.ErrFileTooLarge, audio.ErrEmptyFile,
		transcriber.ErrNotConfigured, transcriber.ErrFailed, transcriber.ErrNoSpeakerMatch,
		analyzer.ErrNotConfigured, analyzer.ErrFailed, analyzer.ErrEmptyTranscript, analyzer.ErrEmptyQuery,
		minutes.ErrInvalidTemplate, minutes.ErrUnknownFormat,
	}
)

// statusFor maps domain errors to 404, 409 or 400. Anything else is a 500.
func statusFor(err error) int {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return http.StatusNotFound
		}
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return http.StatusConflict
		}
	}
	for _, target := range clientErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// fail writes err with its mapped status, hiding details of unexpected errors.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(r.Context(), "Unexpected error in %s: %v", op, err)
		writeError(w, status, "Internal server error")
		return
	}
	h.logger.Warn(r.Context(), "%s failed: %v", op, err)
	writeError(w, status, err.Error())
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}
