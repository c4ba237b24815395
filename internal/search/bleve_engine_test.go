//go:build bleve

package search

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/newsdesk/internal/news"
	"github.com/pders01/newsdesk/internal/storage"
)

func TestBleveEngineIndexesAndSearches(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewStore(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.SaveArticles([]news.Article{
		{Title: "Hello World", Description: news.Ptr("greeting article"), URL: news.Ptr("https://example.com/1")},
		{Title: "Golang Tips", Description: news.Ptr("bleve and search"), URL: news.Ptr("https://example.com/2")},
	})
	require.NoError(t, err)

	idxPath := filepath.Join(dir, "index.bleve")
	eng, err := NewBleveEngine(store, idxPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })

	res, err := eng.Search("Golang", 10)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(res), 1)
	assert.Equal(t, "Golang Tips", res[0].Article.Title)

	res, err = eng.Search("bleve", 10)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(res), 1)

	n, err := eng.DocCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	fi, err := os.Stat(idxPath)
	require.NoError(t, err)
	require.True(t, fi.IsDir())
}

func TestBleveEngineOnArticlesSaved(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewStore(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	eng, err := NewBleveEngine(store, filepath.Join(dir, "index.bleve"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })

	var listener UpdateListener = eng
	saved, err := store.SaveArticles([]news.Article{
		{Title: "東京で大雨警報", URL: news.Ptr("https://example.com/rain")},
	})
	require.NoError(t, err)
	listener.OnArticlesSaved(saved)

	res, err := eng.Search("大雨", 10)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, saved[0].ID, res[0].Article.ID)
}
