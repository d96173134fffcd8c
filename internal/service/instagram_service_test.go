package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	config "github.com/maheshrc27/reelpost/configs"
	"github.com/maheshrc27/reelpost/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func instagramConfig(baseURL string) config.Config {
	return config.Config{
		PollInterval: time.Millisecond,
		PollTimeout:  time.Second,
		Instagram: config.Instagram{
			UserID:      "17841",
			AccessToken: "ig-token",
			GraphURL:    baseURL,
		},
	}
}

func TestInstagramService_Post(t *testing.T) {
	var polls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /17841/media", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "REELS", q.Get("media_type"))
		assert.Equal(t, "https://cdn.example.com/videos/a.mp4", q.Get("video_url"))
		assert.Equal(t, "Sunrise\n\n#sun #sky", q.Get("caption"))
		assert.Equal(t, "ig-token", q.Get("access_token"))
		w.Write([]byte(`{"id":"container-1"}`))
	})
	mux.HandleFunc("GET /container-1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "status_code", r.URL.Query().Get("fields"))
		if polls.Add(1) < 3 {
			w.Write([]byte(`{"status_code":"IN_PROGRESS","id":"container-1"}`))
			return
		}
		w.Write([]byte(`{"status_code":"FINISHED","id":"container-1"}`))
	})
	mux.HandleFunc("POST /17841/media_publish", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "container-1", r.URL.Query().Get("creation_id"))
		w.Write([]byte(`{"id":"media-99"}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	ig := NewInstagramService(instagramConfig(server.URL), server.Client(), discardLogger)
	out := ig.Post(context.Background(), "https://cdn.example.com/videos/a.mp4", "Sunrise", []string{"#sun", "sky"})

	require.True(t, out.Success, out.Error)
	assert.Equal(t, models.PlatformInstagram, out.Platform)
	assert.Equal(t, "media-99", out.NativeID)
	assert.Equal(t, int32(3), polls.Load())
}

func TestInstagramService_ContainerCreationFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Invalid video_url"}}`))
	}))
	defer server.Close()

	ig := NewInstagramService(instagramConfig(server.URL), server.Client(), discardLogger)
	out := ig.Post(context.Background(), "https://cdn.example.com/a.mp4", "c", nil)

	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "container creation failed")
	assert.Contains(t, out.Error, "Invalid video_url")
}

func TestInstagramService_ContainerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /17841/media", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"c2"}`))
	})
	mux.HandleFunc("GET /c2", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status_code":"ERROR","status":"Error: unsupported codec"}`))
	})
	mux.HandleFunc("POST /17841/media_publish", func(w http.ResponseWriter, r *http.Request) {
		t.Error("publish must not be called after a container error")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	ig := NewInstagramService(instagramConfig(server.URL), server.Client(), discardLogger)
	out := ig.Post(context.Background(), "https://cdn.example.com/a.mp4", "c", nil)

	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "container processing failed")
	assert.Contains(t, out.Error, "unsupported codec")
}

func TestInstagramService_TimeoutIsFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /17841/media", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"c3"}`))
	})
	mux.HandleFunc("GET /c3", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status_code":"IN_PROGRESS"}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := instagramConfig(server.URL)
	cfg.PollTimeout = 30 * time.Millisecond

	out := NewInstagramService(cfg, server.Client(), discardLogger).Post(context.Background(), "https://cdn.example.com/a.mp4", "c", nil)

	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "container processing timed out")
}

func TestInstagramService_NotConfigured(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected when credentials are missing")
	}))
	defer server.Close()

	cfg := instagramConfig(server.URL)
	cfg.Instagram.UserID = ""

	ig := NewInstagramService(cfg, server.Client(), discardLogger)
	assert.False(t, ig.Configured())

	out := ig.Post(context.Background(), "https://cdn.example.com/a.mp4", "c", nil)
	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "INSTAGRAM_USER_ID")
}
