package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/vntopic/pkg/vntopic/internalerr"
	"github.com/cognicore/vntopic/pkg/vntopic/store"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vntopic.db")
	st, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st, path
}

func TestSchemaCreationIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	for i := 0; i < 3; i++ {
		require.NoError(t, initSchema(ctx, db), "iteration %d", i)
	}

	var count int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count) // artifacts, articles
}

func TestArtifactsPersistAcrossReopen(t *testing.T) {
	ctx := context.Background()
	st, path := openTemp(t)

	runID := store.NewRunID()
	in := map[string][]float64{"topic0": {0.1, 0.2 + 0.1}}
	require.NoError(t, store.Save(ctx, st, store.NameModel, runID, in))
	require.NoError(t, st.Close())

	reopened, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	var out map[string][]float64
	env, err := store.Load(ctx, reopened, store.NameModel, &out)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Equal(t, runID, env.RunID)

	names, err := reopened.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{store.NameModel}, names)

	_, err = reopened.Get(ctx, store.NameMatrix)
	assert.ErrorIs(t, err, internalerr.ErrNotFound)
}

func TestArticleUpsert(t *testing.T) {
	ctx := context.Background()
	st, _ := openTemp(t)

	pub := time.Date(2024, 1, 21, 0, 0, 0, 0, time.UTC)
	require.NoError(t, st.UpsertArticle(ctx, store.Article{
		URL: "https://vnexpress.net/bong-da-1.html", Title: "Việt Nam thắng", PublishedAt: pub,
	}))
	require.NoError(t, st.UpsertArticle(ctx, store.Article{
		URL: "https://vnexpress.net/chung-khoan-2.html", Title: "VN-Index giảm",
	}))
	require.NoError(t, st.UpsertArticle(ctx, store.Article{
		URL: "https://vnexpress.net/bong-da-1.html", Title: "Việt Nam thắng đậm", Description: "Sapo", PublishedAt: pub,
	}))

	a, ok, err := st.GetArticleByURL(ctx, "https://vnexpress.net/bong-da-1.html")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Việt Nam thắng đậm", a.Title)
	assert.Equal(t, "Sapo", a.Description)
	assert.True(t, pub.Equal(a.PublishedAt))

	all, err := st.ListArticles(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, all[1].PublishedAt.IsZero())

	_, ok, err = st.GetArticleByURL(ctx, "https://vnexpress.net/missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
