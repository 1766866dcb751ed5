package keywords

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestBlankDescriptionSkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c := New(srv.URL, "mistral")

	assert.Empty(t, c.Suggest(context.Background(), ""))
	assert.Empty(t, c.Suggest(context.Background(), "   \n\t"))
	assert.Equal(t, int32(0), calls.Load())
}

func TestSuggest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response": " web, api, golang"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "mistral")
	assert.Equal(t, []string{"web", "api", "golang"}, c.Suggest(context.Background(), "a web API written in Go"))
}

func TestSuggestFailureYieldsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, "mistral")
	assert.Empty(t, c.Suggest(context.Background(), "some description"))

	// Unreachable endpoint behaves the same way.
	c = New("http://127.0.0.1:1", "mistral")
	assert.Empty(t, c.Suggest(context.Background(), "some description"))
}

func TestParseKeywords(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"plain", "web, api, cli", []string{"web", "api", "cli"}},
		{"prefixed", "Sure! Keywords: web, api", []string{"web", "api"}},
		{"multi-word dropped", "web, command line tool, api", []string{"web", "api"}},
		{"dedupe case-insensitive", "Web, web, API", []string{"Web", "API"}},
		{"punctuation trimmed", `"web", 'api', cli.`, []string{"web", "api", "cli"}},
		{"garbage", "   ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseKeywords(tt.raw))
		})
	}
}
