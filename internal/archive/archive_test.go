package archive

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/papertalk/internal/arxiv"
	"github.com/csheth/papertalk/internal/chat"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "transcripts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSaveAndLoad(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	paper := arxiv.Paper{ID: 1, Title: "Sparse Mixtures", Summary: "s", PaperID: "http://arxiv.org/abs/2301.00001v1"}
	messages := []chat.Message{chat.Greeting(paper), chat.Human("why?")}

	rec, err := store.Save(paper, messages)
	require.NoError(t, err)
	assert.Equal(t, "2301.00001v1", rec.Key)
	_, err = uuid.Parse(rec.ID)
	require.NoError(t, err)

	got, err := store.Load("2301.00001v1")
	require.NoError(t, err)
	assert.Equal(t, paper, got.Paper)
	assert.Equal(t, messages, got.Messages)
	assert.Equal(t, rec.ID, got.ID)
}

func TestSaveAgainKeepsIdentity(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	paper := arxiv.Paper{ID: 3, Title: "No URL"}
	first, err := store.Save(paper, []chat.Message{chat.Greeting(paper)})
	require.NoError(t, err)

	clock = clock.Add(time.Hour)
	second, err := store.Save(paper, []chat.Message{chat.Greeting(paper), chat.Human("more")})
	require.NoError(t, err)

	assert.Equal(t, "paper-3", second.Key)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.True(t, second.SavedAt.After(first.SavedAt))
	assert.Len(t, second.Messages, 2)
}

func TestLoadMissing(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	_, err := store.Load("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	_, err := store.Save(arxiv.Paper{ID: 1, Title: "Old"}, nil)
	require.NoError(t, err)
	clock = clock.Add(time.Minute)
	_, err = store.Save(arxiv.Paper{ID: 2, Title: "New"}, []chat.Message{chat.Human("x")})
	require.NoError(t, err)

	got, err := store.List()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "New", got[0].Title)
	assert.Equal(t, 1, got[0].Messages)
	assert.Equal(t, "paper-1", got[1].Key)
}

func TestReopenKeepsData(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "transcripts.db")
	store, err := Open(path)
	require.NoError(t, err)
	_, err = store.Save(arxiv.Paper{ID: 9, Title: "Kept"}, nil)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Load("paper-9")
	require.NoError(t, err)
	assert.Equal(t, "Kept", got.Paper.Title)
}
