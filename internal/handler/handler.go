package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/deep020206/FUTURE-FS-01/internal/repository"
)

// Handler serves the root, test and health endpoints and owns CORS.
type Handler struct {
	db             repository.DB
	allowedOrigins map[string]struct{}
	now            func() time.Time
}

func New(db repository.DB, allowedOrigins []string) *Handler {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			origins[o] = struct{}{}
		}
	}
	return &Handler{db: db, allowedOrigins: origins, now: time.Now}
}

// CORS echoes the request Origin only when it is on the allow list.
func (h *Handler) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Origin")
		if origin := r.Header.Get("Origin"); origin != "" {
			if _, ok := h.allowedOrigins[origin]; ok {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Root handles GET /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("API is running..."))
}

type testResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Test handles GET /api/test.
func (h *Handler) Test(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, testResponse{
		Message:   "Backend is working!",
		Timestamp: h.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
