package middleware

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

type accessEntry struct {
	Timestamp  string `json:"ts"`
	RequestID  string `json:"request_id,omitempty"`
	Method     string `json:"method"`
	Path       string `json:"path"`
	Route      string `json:"route,omitempty"`
	Status     int    `json:"status"`
	Bytes      int    `json:"bytes"`
	DurationMS int64  `json:"duration_ms"`
	RemoteAddr string `json:"remote_addr,omitempty"`
	UserAgent  string `json:"user_agent,omitempty"`
}

func newAccessEntry(r *http.Request, rec *statusRecorder, start time.Time) accessEntry {
	return accessEntry{
		Timestamp:  start.UTC().Format(time.RFC3339Nano),
		RequestID:  GetRequestID(r.Context()),
		Method:     r.Method,
		Path:       r.URL.Path,
		Route:      routePattern(r),
		Status:     rec.Status(),
		Bytes:      rec.bytes,
		DurationMS: time.Since(start).Milliseconds(),
		RemoteAddr: clientIP(r),
		UserAgent:  r.UserAgent(),
	}
}

// AccessLog writes one JSON line per request through the standard logger.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		line, err := json.Marshal(newAccessEntry(r, rec, start))
		if err != nil {
			log.Printf("access log: %v", err)
			return
		}
		log.Print(string(line))
	})
}

// routePattern is the matched chi pattern such as /api/items/{id}. It is empty
// until the router has dispatched the request.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}

// clientIP prefers proxy headers, then the socket peer.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
