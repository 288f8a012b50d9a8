package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestMiddleware_LogsRequestWithID(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	var seen string
	h := Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := FromContext(r.Context())
		l.Info().Msg("inside")
		seen = w.Header().Get(RequestIDHeader)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("missing"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/about?x=1", nil))

	id := rec.Header().Get(RequestIDHeader)
	if id == "" || id != seen {
		t.Fatalf("request id not set: %q / %q", id, seen)
	}

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d:\n%s", len(lines), buf.String())
	}
	var inner, entry map[string]any
	if err := json.Unmarshal(lines[0], &inner); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := json.Unmarshal(lines[1], &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if inner["request_id"] != id {
		t.Fatalf("handler logger must carry the request id: %v", inner)
	}
	if entry["level"] != "warn" || entry["path"] != "/about?x=1" || entry["status"] != float64(404) || entry["bytes"] != float64(7) {
		t.Fatalf("unexpected request entry: %v", entry)
	}
}

func TestSetupWriter_Level(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.DebugLevel)

	var buf bytes.Buffer
	logger := SetupWriter(&buf, "warn", "json")
	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	if bytes.Contains(buf.Bytes(), []byte("hidden")) || !bytes.Contains(buf.Bytes(), []byte("shown")) {
		t.Fatalf("level not applied:\n%s", buf.String())
	}
}
