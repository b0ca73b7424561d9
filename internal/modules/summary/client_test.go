package summary

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) add(p string) {
	r.mu.Lock()
	r.paths = append(r.paths, p)
	r.mu.Unlock()
}

func geminiServer(t *testing.T, rec *recorder, handle func(model string, w http.ResponseWriter)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var body generateRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.True(t, strings.HasPrefix(body.Contents[0].Parts[0].Text, promptPrefix))
		assert.Equal(t, 256, body.GenerationConfig.MaxOutputTokens)

		model := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/models/"), ":generateContent")
		handle(model, w)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeText(w http.ResponseWriter, text string) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{"parts": []any{map[string]any{"text": text}}},
		}},
	})
}

func TestSummarize_FallsBackOn404(t *testing.T) {
	rec := &recorder{}
	srv := geminiServer(t, rec, func(model string, w http.ResponseWriter) {
		if model == "gemini-2.0-flash" {
			writeText(w, "  Seeker worries about career.  ")
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL})
	out, err := c.Summarize(context.Background(), "I want to change jobs")

	require.NoError(t, err)
	assert.Equal(t, "Seeker worries about career.", out)
	assert.Equal(t, []string{
		"/models/gemini-2.5-flash:generateContent",
		"/models/gemini-2.0-flash:generateContent",
	}, rec.paths)
}

func TestSummarize_StopsOnNon404Error(t *testing.T) {
	rec := &recorder{}
	srv := geminiServer(t, rec, func(_ string, w http.ResponseWriter) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL})
	_, err := c.Summarize(context.Background(), "text")

	assert.ErrorIs(t, err, ErrFailed)
	assert.Len(t, rec.paths, 1)
}

func TestSummarize_AllModelsMissing(t *testing.T) {
	rec := &recorder{}
	srv := geminiServer(t, rec, func(_ string, w http.ResponseWriter) {
		w.WriteHeader(http.StatusNotFound)
	})

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, Models: []string{"a", "b"}})
	_, err := c.Summarize(context.Background(), "text")

	assert.ErrorIs(t, err, ErrFailed)
	assert.Len(t, rec.paths, 2)
}

func TestSummarize_EmptyText(t *testing.T) {
	rec := &recorder{}
	srv := geminiServer(t, rec, func(_ string, w http.ResponseWriter) {
		writeText(w, "   ")
	})

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL})
	_, err := c.Summarize(context.Background(), "text")
	assert.ErrorIs(t, err, ErrFailed)
	assert.Len(t, rec.paths, len(DefaultModels))
}

func TestSummarize_FallsBackOnEmptyAnswer(t *testing.T) {
	rec := &recorder{}
	srv := geminiServer(t, rec, func(model string, w http.ResponseWriter) {
		if model == "b" {
			writeText(w, "Seeker asks about marriage timing.")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	})

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, Models: []string{"a", "b"}})
	out, err := c.Summarize(context.Background(), "When will I marry?")

	require.NoError(t, err)
	assert.Equal(t, "Seeker asks about marriage timing.", out)
	assert.Equal(t, []string{"/models/a:generateContent", "/models/b:generateContent"}, rec.paths)
}

func TestSummarize_Timeout(t *testing.T) {
	rec := &recorder{}
	srv := geminiServer(t, rec, func(_ string, w http.ResponseWriter) {
		time.Sleep(200 * time.Millisecond)
		writeText(w, "late")
	})

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, Timeout: 20 * time.Millisecond})
	_, err := c.Summarize(context.Background(), "text")
	assert.ErrorIs(t, err, ErrFailed)
}

func TestSummarize_NotConfigured(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:1"})
	assert.False(t, c.Enabled())

	_, err := c.Summarize(context.Background(), "text")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
