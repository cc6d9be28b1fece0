package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// Router wires every endpoint onto a gorilla/mux router.
func (h *Handlers) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(h.recoverPanics, h.logRequests)

	router.HandleFunc("/health", h.Health).Methods("GET")
	router.HandleFunc("/api/health", h.Health).Methods("GET")
	router.HandleFunc("/api/upload", h.Upload).Methods("POST")
	router.HandleFunc("/api/transcribe", h.Transcribe).Methods("POST")
	router.HandleFunc("/api/analyze", h.Analyze).Methods("POST")
	router.HandleFunc("/api/generate-minutes", h.GenerateMinutes).Methods("POST")
	router.HandleFunc("/api/process-meeting", h.ProcessMeeting).Methods("POST")
	router.HandleFunc("/api/update-speakers", h.UpdateSpeakers).Methods("POST")
	router.HandleFunc("/api/custom-query", h.CustomQuery).Methods("POST")
	router.HandleFunc("/api/download/{filename}", h.Download).Methods("GET")
	router.HandleFunc("/api/meetings", h.ListMeetings).Methods("GET")
	router.HandleFunc("/api/meetings/{id}", h.GetMeeting).Methods("GET")
	router.HandleFunc("/api/ws", h.Progress).Methods("GET")

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Endpoint not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return router
}

func (h *Handlers) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.logger.Debug(r.Context(), "%s %s (%s)", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}

func (h *Handlers) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.logger.Error(r.Context(), "Panic serving %s: %v", r.URL.Path, rec)
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
