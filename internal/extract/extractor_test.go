package extract

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damilare-ak/clinicnote/constants"
	"github.com/damilare-ak/clinicnote/internal/common"
)

func newTestExtractor() *Extractor {
	return NewExtractor(slog.New(slog.DiscardHandler))
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestExtract_UTF8Text(t *testing.T) {
	path := writeFile(t, "session.txt", []byte("Client: Jane Doe\nSession body."))

	res, err := newTestExtractor().Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "text-utf8", res.Method)
	assert.Equal(t, constants.TEXT, res.SourceType)
	assert.Equal(t, "Client: Jane Doe\nSession body.", res.Text)
	assert.Equal(t, 1, res.Pages)
}

func TestExtract_Latin1Fallback(t *testing.T) {
	// "café" in Latin-1: 0xE9 is not valid UTF-8.
	path := writeFile(t, "session.txt", []byte{'c', 'a', 'f', 0xE9})

	res, err := newTestExtractor().Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "text-latin1", res.Method)
	assert.Equal(t, "café", res.Text)
}

func TestExtract_UnknownExtensionUsesTextChain(t *testing.T) {
	path := writeFile(t, "session.transcript", []byte("plain body"))

	res, err := newTestExtractor().Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, constants.TEXT, res.SourceType)
	assert.Equal(t, "plain body", res.Text)
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := newTestExtractor().Extract(context.Background(), filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}

func TestExtract_CorruptPDFIsUnreadable(t *testing.T) {
	path := writeFile(t, "broken.pdf", []byte("this is not a pdf"))

	_, err := newTestExtractor().Extract(context.Background(), path)

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUnreadableDocument)
}
