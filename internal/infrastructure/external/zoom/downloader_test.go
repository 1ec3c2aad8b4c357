package zoom

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/johnquangdev/consult-review/internal/domain/entities"
	"github.com/johnquangdev/consult-review/pkg/config"
	"github.com/johnquangdev/consult-review/pkg/jobcontext"
)

var fastRetry = jobcontext.RetryPolicy{
	InitialInterval: time.Millisecond,
	MaxInterval:     2 * time.Millisecond,
	MaxElapsedTime:  time.Second,
}

func TestFetch_WritesArtifactWithBearerToken(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("WEBVTT\n\nhello"))
	}))
	defer ts.Close()

	dir := t.TempDir()
	d := NewDownloader(PayloadCredentials{}, dir, time.Second, fastRetry, nil)
	art, err := d.Fetch(context.Background(), entities.DownloadReference{
		URL:       ts.URL + "/rec/abc",
		AuthToken: "event-token",
		FileType:  entities.RecordingFileTypeTranscript,
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	defer os.Remove(art.Path)

	if gotAuth != "Bearer event-token" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if filepath.Dir(art.Path) != dir || filepath.Ext(art.Path) != ".vtt" {
		t.Fatalf("unexpected artifact path %s", art.Path)
	}
	data, _ := os.ReadFile(art.Path)
	if string(data) != "WEBVTT\n\nhello" || art.Size != int64(len(data)) {
		t.Fatalf("unexpected artifact content %q size %d", data, art.Size)
	}
}

func TestFetch_NotFoundIsPermanent(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer ts.Close()

	dir := t.TempDir()
	d := NewDownloader(PayloadCredentials{}, dir, time.Second, fastRetry, nil)
	_, err := d.Fetch(context.Background(), entities.DownloadReference{URL: ts.URL, AuthToken: "t", FileType: entities.RecordingFileTypeVTT})

	var statusErr *jobcontext.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 status error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("404 must not be retried, got %d calls", calls.Load())
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Fatalf("no scratch file should remain")
	}
}

func TestFetch_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("audio"))
	}))
	defer ts.Close()

	d := NewDownloader(PayloadCredentials{}, t.TempDir(), time.Second, fastRetry, nil)
	art, err := d.Fetch(context.Background(), entities.DownloadReference{URL: ts.URL + "/a.m4a", AuthToken: "t", FileType: entities.RecordingFileTypeM4A})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	os.Remove(art.Path)
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestFetch_MissingInputs(t *testing.T) {
	d := NewDownloader(PayloadCredentials{}, t.TempDir(), time.Second, fastRetry, nil)

	if _, err := d.Fetch(context.Background(), entities.DownloadReference{AuthToken: "t"}); !errors.Is(err, entities.ErrMissingDownloadURL) {
		t.Fatalf("expected missing URL error, got %v", err)
	}
	if _, err := d.Fetch(context.Background(), entities.DownloadReference{URL: "http://x"}); !errors.Is(err, entities.ErrMissingCredential) {
		t.Fatalf("expected missing credential error, got %v", err)
	}
}

func TestOAuthCredentials(t *testing.T) {
	var gotForm string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		gotForm = r.PostForm.Encode()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"s2s-token","token_type":"bearer","expires_in":3600}`))
	}))
	defer ts.Close()

	provider, err := NewCredentialProvider(config.ZoomConfig{
		AuthMode:     AuthModeOAuth,
		AccountID:    "acct",
		ClientID:     "id",
		ClientSecret: "secret",
		TokenURL:     ts.URL,
	})
	if err != nil {
		t.Fatalf("provider: %v", err)
	}

	tok, err := provider.Token(context.Background(), entities.DownloadReference{AuthToken: "ignored"})
	if err != nil || tok != "s2s-token" {
		t.Fatalf("token=%q err=%v", tok, err)
	}
	if !strings.Contains(gotForm, "grant_type=account_credentials") || !strings.Contains(gotForm, "account_id=acct") {
		t.Fatalf("unexpected token request %q", gotForm)
	}
}

func TestNewCredentialProvider_Unknown(t *testing.T) {
	if _, err := NewCredentialProvider(config.ZoomConfig{AuthMode: "magic"}); err == nil {
		t.Fatalf("expected error")
	}
}
