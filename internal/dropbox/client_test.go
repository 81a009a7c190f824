package dropbox

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damilare-ak/clinicnote/internal/common"
)

func newServerClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := common.DropboxConfig{Token: "test-token", Folder: "/transcripts", LongPollTimeout: 30 * time.Second}
	c := NewClient(cfg, srv.Client(), slog.New(slog.DiscardHandler))
	c.apiBase = srv.URL
	c.contentBase = srv.URL
	c.notifyBase = srv.URL
	return c
}

func TestGetNew_FiltersExtensionAndTime(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/2/files/list_folder", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"entries":[
			{".tag":"file","name":"old.txt","path_display":"/transcripts/old.txt","server_modified":"2024-01-01T00:00:00Z","size":10},
			{".tag":"file","name":"new.pdf","path_display":"/transcripts/new.pdf","server_modified":"2024-06-01T00:00:00Z","size":20},
			{".tag":"file","name":"image.png","path_display":"/transcripts/image.png","server_modified":"2024-06-01T00:00:00Z","size":30},
			{".tag":"folder","name":"archive","path_display":"/transcripts/archive"}
		]}`))
	})
	c := newServerClient(t, mux)

	since := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	entries, err := c.GetNew(context.Background(), since)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "new.pdf", entries[0].Name)
}

func TestListFolder_TransportErrorYieldsEmptyList(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/2/files/list_folder", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	})
	c := newServerClient(t, mux)

	entries := c.ListFolder(context.Background())

	assert.Empty(t, entries)
}

func TestDownload_StreamsToLocalPath(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/2/files/download", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Contains(t, r.Header.Get("Dropbox-API-Arg"), "/transcripts/a.txt")
		_, _ = w.Write([]byte("transcript body"))
	})
	c := newServerClient(t, mux)

	localPath := filepath.Join(t.TempDir(), "a.txt")
	err := c.Download(context.Background(), "/transcripts/a.txt", localPath)

	require.NoError(t, err)
	data, err := os.ReadFile(localPath)
	require.NoError(t, err)
	assert.Equal(t, "transcript body", string(data))
}

func TestLongPoll_ErrorInvalidatesCursor(t *testing.T) {
	cursorCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/2/files/list_folder/get_latest_cursor", func(w http.ResponseWriter, r *http.Request) {
		cursorCalls++
		_, _ = w.Write([]byte(`{"cursor":"cur-1"}`))
	})
	mux.HandleFunc("/2/files/list_folder/longpoll", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway timeout", http.StatusGatewayTimeout)
	})
	c := newServerClient(t, mux)

	_, err := c.LongPoll(context.Background())
	require.Error(t, err)

	// The failed poll must force a fresh cursor on the next call.
	_, _ = c.LongPoll(context.Background())
	assert.Equal(t, 2, cursorCalls)
}

func TestLongPoll_ReportsChanges(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/2/files/list_folder/get_latest_cursor", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"cursor":"cur-1"}`))
	})
	mux.HandleFunc("/2/files/list_folder/longpoll", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"changes":true}`))
	})
	c := newServerClient(t, mux)

	changed, err := c.LongPoll(context.Background())

	require.NoError(t, err)
	assert.True(t, changed)
}
