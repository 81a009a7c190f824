package openai

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damilare-ak/clinicnote/internal/common"
)

func newServerClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := common.ProviderConfig{APIKey: "test-key", BaseURL: srv.URL, Model: "gpt-4o-mini"}
	return NewClient(cfg, srv.Client(), slog.New(slog.DiscardHandler))
}

func TestComplete_ParsesChoice(t *testing.T) {
	var gotAuth string
	c := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  SUBJECTIVE\nnote  "}}]}`))
	})

	text, err := c.Complete(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, "SUBJECTIVE\nnote", text)
	assert.Equal(t, "Bearer test-key", gotAuth)
}

func TestComplete_Non2xxIsUnavailable(t *testing.T) {
	c := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	})

	_, err := c.Complete(context.Background(), "prompt")

	assert.ErrorIs(t, err, common.ErrProviderUnavailable)
}

func TestComplete_EmptyChoicesIsMalformed(t *testing.T) {
	c := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := c.Complete(context.Background(), "prompt")

	assert.ErrorIs(t, err, common.ErrProviderMalformed)
}

func TestComplete_GarbageBodyIsMalformed(t *testing.T) {
	c := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := c.Complete(context.Background(), "prompt")

	assert.ErrorIs(t, err, common.ErrProviderMalformed)
}
