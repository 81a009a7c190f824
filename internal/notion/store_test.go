package notion

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damilare-ak/clinicnote/internal/common"
	"github.com/damilare-ak/clinicnote/internal/format"
)

type fakeAPI struct {
	databases map[string]string // title -> id

	searchErr error
	createErr error
	pageErr   error
	appendErr error

	searchCalls int
	createCalls int
	pageCalls   int
	appendCalls int

	createdBatches [][]format.Block
	appended       [][]format.Block
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{databases: make(map[string]string)}
}

func (f *fakeAPI) SearchDatabase(ctx context.Context, title string) (string, error) {
	f.searchCalls++
	if f.searchErr != nil {
		return "", f.searchErr
	}
	return f.databases[title], nil
}

func (f *fakeAPI) CreateDatabase(ctx context.Context, title string) (string, error) {
	f.createCalls++
	if f.createErr != nil {
		return "", f.createErr
	}
	id := "db-" + title
	f.databases[title] = id
	return id, nil
}

func (f *fakeAPI) CreatePage(ctx context.Context, databaseID, title string, sessionDate time.Time, filename string, blocks []format.Block) (string, error) {
	f.pageCalls++
	if f.pageErr != nil {
		return "", f.pageErr
	}
	f.createdBatches = append(f.createdBatches, blocks)
	return "page-1", nil
}

func (f *fakeAPI) AppendBlocks(ctx context.Context, pageID string, blocks []format.Block) error {
	f.appendCalls++
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, blocks)
	return nil
}

func newTestStore(api API) *Store {
	return NewStore(api, DefaultChunkLimit, slog.New(slog.DiscardHandler))
}

func paragraphNote(text string) format.Note {
	return format.Note{
		Title:     "Test Note",
		Blocks:    []format.Block{{Type: format.BlockParagraph, Text: text}},
		PlainText: text,
	}
}

func TestAddEntry_CreatesCollectionOnce(t *testing.T) {
	api := newFakeAPI()
	store := newTestStore(api)

	_, err := store.AddEntry(context.Background(), "Jane Doe", "a.txt", paragraphNote("first"))
	require.NoError(t, err)
	_, err = store.AddEntry(context.Background(), "Jane Doe", "b.txt", paragraphNote("second"))
	require.NoError(t, err)

	assert.Equal(t, 1, api.createCalls, "second call must hit the cache")
	assert.Equal(t, 1, api.searchCalls, "cache hit skips the remote search")
	assert.Equal(t, 2, api.pageCalls)
}

func TestAddEntry_FindsExistingCollection(t *testing.T) {
	api := newFakeAPI()
	api.databases["Jane Doe Sessions"] = "db-existing"
	store := newTestStore(api)

	_, err := store.AddEntry(context.Background(), "Jane Doe", "a.txt", paragraphNote("text"))

	require.NoError(t, err)
	assert.Zero(t, api.createCalls, "existing collection must not be recreated")
}

func TestAddEntry_Chunking(t *testing.T) {
	api := newFakeAPI()
	store := newTestStore(api)

	// 4500 characters against a 2000 limit: one create carrying the first
	// 2000, then appends of 2000 and 500.
	note := paragraphNote(strings.Repeat("x", 4500))
	_, err := store.AddEntry(context.Background(), "Jane Doe", "a.txt", note)

	require.NoError(t, err)
	assert.Equal(t, 1, api.pageCalls)
	assert.Equal(t, 2, api.appendCalls)

	require.Len(t, api.createdBatches, 1)
	assert.Len(t, api.createdBatches[0][0].Text, 2000)
	require.Len(t, api.appended, 2)
	assert.Len(t, api.appended[0][0].Text, 2000)
	assert.Len(t, api.appended[1][0].Text, 500)
}

func TestAddEntry_BothFindAndCreateFailed(t *testing.T) {
	api := newFakeAPI()
	api.searchErr = errors.New("search down")
	api.createErr = errors.New("create down")
	store := newTestStore(api)

	_, err := store.AddEntry(context.Background(), "Jane Doe", "a.txt", paragraphNote("text"))

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
	assert.Contains(t, err.Error(), "search down")
	assert.Contains(t, err.Error(), "create down")
}

func TestAddEntry_AppendFailureIsNotFatal(t *testing.T) {
	api := newFakeAPI()
	api.appendErr = errors.New("append down")
	store := newTestStore(api)

	ref, err := store.AddEntry(context.Background(), "Jane Doe", "a.txt", paragraphNote(strings.Repeat("x", 4500)))

	require.NoError(t, err, "entry exists once the create succeeded")
	assert.Equal(t, "page-1", ref.PageID)
}

func TestAddEntry_UnknownClientPlaceholder(t *testing.T) {
	api := newFakeAPI()
	store := newTestStore(api)

	_, err := store.AddEntry(context.Background(), "", "a.txt", paragraphNote("text"))

	require.NoError(t, err)
	_, ok := api.databases["Unknown Client Sessions"]
	assert.True(t, ok)
}

func TestEntryDate_FromFilename(t *testing.T) {
	store := newTestStore(newFakeAPI())
	store.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }

	assert.Equal(t, "2024-03-15", store.entryDate("Jane Doe_2024-03-15.pdf").Format("2006-01-02"))
	assert.Equal(t, "2025-06-01", store.entryDate("nodate.txt").Format("2006-01-02"))
}

func TestChunkBlocks_KeepsSmallBlocksTogether(t *testing.T) {
	blocks := []format.Block{
		{Type: format.BlockHeading, Level: 2, Text: "SUBJECTIVE"},
		{Type: format.BlockParagraph, Text: "short paragraph"},
		{Type: format.BlockBullet, Text: "item"},
	}

	batches := chunkBlocks(splitOversized(blocks, 2000), 2000)

	require.Len(t, batches, 1)
	assert.Len(t, batches[0], 3)
}
