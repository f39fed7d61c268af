package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/chathub/internal"
	"github.com/frahmantamala/chathub/pkg/logger"
)

const (
	maxLoggedBody = 4 << 10
	filtered      = "[FILTERED]"
)

// redactor masks credentials in logged headers and JSON bodies. Model connections
// carry provider api keys and auth carries tokens, so both match here.
type redactor struct {
	keys []string
}

var defaultRedactor = redactor{keys: []string{
	"password", "token", "authorization", "secret", "api_key", "apikey",
	"session", "credential", "cookie",
}}

func (rd redactor) sensitive(name string) bool {
	lower := strings.ToLower(name)
	for _, k := range rd.keys {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func (rd redactor) headers(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		if rd.sensitive(name) {
			out[name] = filtered
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

func (rd redactor) body(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		// truncated or not JSON
		return "[UNPARSED BODY]"
	}
	out, err := json.Marshal(rd.value(doc))
	if err != nil {
		return "[UNMARSHALABLE BODY]"
	}
	return string(out)
}

func (rd redactor) value(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, item := range t {
			if rd.sensitive(k) {
				out[k] = filtered
				continue
			}
			out[k] = rd.value(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = rd.value(item)
		}
		return out
	default:
		return v
	}
}

// LoggingMiddleware logs each request and its response with credentials masked.
// Probe endpoints log at debug so they do not flood the output.
func LoggingMiddleware(base *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			log := logger.FromOr(r.Context(), base)
			quiet := isProbe(r.URL.Path)

			level := slog.LevelInfo
			if quiet {
				level = slog.LevelDebug
			}
			log.Log(r.Context(), level, "incoming request",
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
				"tenant_header", r.Header.Get(internal.TenantHeader),
				"headers", defaultRedactor.headers(r.Header),
				"body", requestBody(r),
			)

			rec := &responseRecorder{ResponseWriter: w, body: &bytes.Buffer{}}
			next.ServeHTTP(rec, r)

			status := rec.status()
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			case !quiet:
				level = slog.LevelInfo
			}
			log.Log(r.Context(), level, "response",
				"status_code", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"response_size", rec.size,
				"body", rec.loggedBody(),
			)
		})
	}
}

func isProbe(path string) bool {
	return strings.HasSuffix(path, "/health") || strings.HasSuffix(path, "/ping")
}

// requestBody reads a JSON body for logging and puts it back for the handler.
// Multipart uploads and other content types are not logged.
func requestBody(r *http.Request) string {
	if r.Body == nil || !isJSON(r.Header.Get("Content-Type")) {
		return ""
	}
	raw, err := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return ""
	}
	if len(raw) > maxLoggedBody {
		return "[BODY TOO LARGE]"
	}
	return defaultRedactor.body(raw)
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	size       int
	body       *bytes.Buffer
}

func (rw *responseRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseRecorder) Write(b []byte) (int, error) {
	if room := maxLoggedBody - rw.body.Len(); room > 0 {
		rw.body.Write(b[:min(room, len(b))])
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

func (rw *responseRecorder) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseRecorder) status() int {
	if rw.statusCode == 0 {
		return http.StatusOK
	}
	return rw.statusCode
}

// loggedBody skips attachments such as widget exports and knowledge downloads.
func (rw *responseRecorder) loggedBody() string {
	h := rw.Header()
	if !isJSON(h.Get("Content-Type")) || h.Get("Content-Disposition") != "" {
		return ""
	}
	return defaultRedactor.body(rw.body.Bytes())
}

func isJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "json")
}
