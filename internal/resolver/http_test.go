package resolver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDirectMediaURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		w.Write([]byte("mp4 bytes"))
	}))
	defer server.Close()

	dir := t.TempDir()
	res := NewHTTPResolver(dir, "")

	result, err := res.Resolve(context.Background(), server.URL+"/media/My%20Holiday.mp4")
	require.NoError(t, err)

	assert.Equal(t, "My Holiday", result.Title)
	assert.Equal(t, filepath.Join(dir, "My Holiday.mp4"), result.LocalPath)

	data, err := os.ReadFile(result.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("mp4 bytes"), data)
}

func TestResolveVideoPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><head>
			<title>fallback title</title>
			<meta property="og:title" content="Concert: Night One"/>
			<meta property="og:video" content="/media/concert.mp4"/>
		</head><body></body></html>`)
	})
	mux.HandleFunc("/media/concert.mp4", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		w.Write([]byte("concert bytes"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	dir := t.TempDir()
	res := NewHTTPResolver(dir, "")

	result, err := res.Resolve(context.Background(), server.URL+"/watch")
	require.NoError(t, err)

	assert.Equal(t, "Concert: Night One", result.Title)
	// The ':' is stripped by sanitization in the on-disk name only.
	assert.Equal(t, filepath.Join(dir, "Concert Night One.mp4"), result.LocalPath)
	assert.FileExists(t, result.LocalPath)
}

func TestResolveVideoPageFallsBackToVideoTag(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><title>Tagged Video</title></head>
			<body><video src="/media/tagged.mp4"></video></body></html>`)
	})
	mux.HandleFunc("/media/tagged.mp4", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("tagged bytes"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	res := NewHTTPResolver(t.TempDir(), "")
	result, err := res.Resolve(context.Background(), server.URL+"/watch")
	require.NoError(t, err)
	assert.Equal(t, "Tagged Video", result.Title)
}

func TestResolveFailures(t *testing.T) {
	t.Run("http error status", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		res := NewHTTPResolver(t.TempDir(), "")
		_, err := res.Resolve(context.Background(), server.URL+"/gone.mp4")
		assert.ErrorIs(t, err, ErrResolution)
	})

	t.Run("unreachable host", func(t *testing.T) {
		res := NewHTTPResolver(t.TempDir(), "")
		_, err := res.Resolve(context.Background(), "http://127.0.0.1:1/video.mp4")
		assert.ErrorIs(t, err, ErrResolution)
	})

	t.Run("page without video source", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, `<html><head><title>No Video Here</title></head><body></body></html>`)
		}))
		defer server.Close()

		res := NewHTTPResolver(t.TempDir(), "")
		_, err := res.Resolve(context.Background(), server.URL)
		assert.ErrorIs(t, err, ErrResolution)
	})

	t.Run("empty media body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "video/mp4")
		}))
		defer server.Close()

		res := NewHTTPResolver(t.TempDir(), "")
		_, err := res.Resolve(context.Background(), server.URL+"/empty.mp4")
		assert.ErrorIs(t, err, ErrResolution)
	})
}

func TestTitleFromURL(t *testing.T) {
	testCases := []struct {
		url      string
		expected string
	}{
		{"https://example.com/media/clip.mp4", "clip"},
		{"https://example.com/media/clip", "clip"},
		{"https://example.com/", "video"},
		{"https://example.com", "video"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, titleFromURL(tc.url), tc.url)
	}
}
