package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fadilmartias/job-board/internal/model"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// fixedWebIndexes makes newWebIndex return ids in order for the duration of the test.
func fixedWebIndexes(t *testing.T, ids ...string) {
	t.Helper()
	orig := newWebIndex
	i := 0
	newWebIndex = func() string {
		id := ids[i%len(ids)]
		i++
		return id
	}
	t.Cleanup(func() { newWebIndex = orig })
}

func posting(category, title string) *model.JobPosting {
	return &model.JobPosting{
		Category:    category,
		Title:       title,
		Company:     "Acme",
		Description: "Build scalable backend systems",
		Document:    "<h1>" + title + "</h1>",
		Embedding:   pgvector.NewVector([]float32{0.1, 0.2, 0.3}),
	}
}

type storeFactory func(t *testing.T) JobStore

func storeFactories() map[string]storeFactory {
	factories := map[string]storeFactory{
		"file": func(t *testing.T) JobStore {
			s, err := NewFileJobStore(filepath.Join(t.TempDir(), "categories"))
			require.NoError(t, err)
			return s
		},
		"sqlite": func(t *testing.T) JobStore {
			s, err := OpenSQLiteJobStore(filepath.Join(t.TempDir(), "jobs.db"))
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
	if dsn := os.Getenv("TEST_DATABASE_DSN"); dsn != "" {
		factories["postgres"] = func(t *testing.T) JobStore {
			db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
			require.NoError(t, err)
			require.NoError(t, db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error)
			require.NoError(t, db.Migrator().DropTable(&model.JobPosting{}))
			require.NoError(t, db.AutoMigrate(&model.JobPosting{}))
			return NewJobRepository(db)
		}
	}
	return factories
}

func TestJobStoreRoundTrip(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)

			p := posting("engineering", "Software Engineer")
			require.NoError(t, store.Save(ctx, p))
			assert.True(t, validWebIndex(p.WebIndex), "web index %q", p.WebIndex)
			assert.False(t, p.CreatedAt.IsZero())

			listed, err := store.List(ctx, "engineering")
			require.NoError(t, err)
			require.Len(t, listed, 1)
			assert.Equal(t, p.WebIndex, listed[0].WebIndex)
			assert.Equal(t, "/categories/engineering/"+p.WebIndex, listed[0].URL())

			got, err := store.Get(ctx, "engineering", p.WebIndex)
			require.NoError(t, err)
			assert.Equal(t, p.Document, got.Document)
			assert.Equal(t, "engineering", got.Category)

			other, err := store.List(ctx, "sales")
			require.NoError(t, err)
			assert.Empty(t, other)
		})
	}
}

func TestJobStoreGetMissing(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			store := factory(t)

			_, err := store.Get(context.Background(), "engineering", "12345678")
			assert.True(t, errors.Is(err, ErrJobNotFound))
		})
	}
}

func TestJobStoreUnknownCategoryIsEmpty(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			store := factory(t)

			listed, err := store.List(context.Background(), "unknown-category")
			require.NoError(t, err)
			assert.NotNil(t, listed)
			assert.Empty(t, listed)

			latest, err := store.Latest(context.Background(), "unknown-category", 2)
			require.NoError(t, err)
			assert.Empty(t, latest)
		})
	}
}

func TestJobStoreRetriesCollisions(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)
			fixedWebIndexes(t, "11111111", "11111111", "22222222")

			first := posting("finance", "Accountant")
			require.NoError(t, store.Save(ctx, first))
			second := posting("finance", "Auditor")
			require.NoError(t, store.Save(ctx, second))

			assert.Equal(t, "11111111", first.WebIndex)
			assert.Equal(t, "22222222", second.WebIndex)

			got, err := store.Get(ctx, "finance", "11111111")
			require.NoError(t, err)
			assert.Equal(t, "<h1>Accountant</h1>", got.Document, "first document must not be overwritten")
		})
	}
}

func TestJobStoreSameIndexInOtherCategory(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)
			fixedWebIndexes(t, "33333333")

			require.NoError(t, store.Save(ctx, posting("sales", "Account Manager")))
			require.NoError(t, store.Save(ctx, posting("healthcare", "Nurse")))
		})
	}
}

func TestJobStoreGivesUpAfterMaxAttempts(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)
			fixedWebIndexes(t, "44444444")

			require.NoError(t, store.Save(ctx, posting("sales", "First")))
			err := store.Save(ctx, posting("sales", "Second"))
			assert.True(t, errors.Is(err, ErrWebIndexExhausted))
		})
	}
}

func TestFileJobStoreLatestByModTime(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "categories")
	store, err := NewFileJobStore(root)
	require.NoError(t, err)
	fixedWebIndexes(t, "10000001", "10000002", "10000003")

	for _, title := range []string{"old", "newest", "middle"} {
		require.NoError(t, store.Save(ctx, posting("sales", title)))
	}
	base := time.Now().Add(-time.Hour)
	mtimes := map[string]time.Time{
		"10000001": base,
		"10000002": base.Add(2 * time.Minute),
		"10000003": base.Add(time.Minute),
	}
	for id, mtime := range mtimes {
		require.NoError(t, os.Chtimes(filepath.Join(root, "sales", id+".html"), mtime, mtime))
	}

	latest, err := store.Latest(ctx, "sales", 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "10000002", latest[0].WebIndex)
	assert.Equal(t, "10000003", latest[1].WebIndex)
}

func TestSQLiteJobStoreLatestByCreation(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLiteJobStore(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	defer store.Close()

	var ids []string
	for _, title := range []string{"first", "second", "third"} {
		p := posting("engineering", title)
		require.NoError(t, store.Save(ctx, p))
		ids = append(ids, p.WebIndex)
	}

	latest, err := store.Latest(ctx, "engineering", 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, ids[2], latest[0].WebIndex)
	assert.Equal(t, ids[1], latest[1].WebIndex)

	got, err := store.Get(ctx, "engineering", ids[0])
	require.NoError(t, err)
	assert.Equal(t, "first", got.Title)
	assert.Equal(t, "Acme", got.Company)
}

func TestFileJobStoreRejectsTraversal(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileJobStore(filepath.Join(t.TempDir(), "categories"))
	require.NoError(t, err)

	err = store.Save(ctx, posting("../escape", "x"))
	assert.Error(t, err)

	_, err = store.Get(ctx, "..", "12345678")
	assert.True(t, errors.Is(err, ErrJobNotFound))

	_, err = store.Get(ctx, "sales", "../../etc/passwd")
	assert.True(t, errors.Is(err, ErrJobNotFound))
}

func TestFileJobStoreIgnoresForeignFiles(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "categories")
	store, err := NewFileJobStore(root)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sales", "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sales", "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sales", "12345678.html"), []byte("<p>job</p>"), 0o644))

	listed, err := store.List(ctx, "sales")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "12345678", listed[0].WebIndex)
}

func TestNewWebIndexRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		assert.True(t, validWebIndex(newWebIndex()))
	}
}

func TestJobPostingBeforeCreateAssignsID(t *testing.T) {
	p := posting("sales", "x")
	require.NoError(t, p.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, p.ID)

	id := p.ID
	require.NoError(t, p.BeforeCreate(nil))
	assert.Equal(t, id, p.ID)
}

func TestJobStoreLatestNegativeReturnsAll(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)
			for _, title := range []string{"a", "b", "c"} {
				require.NoError(t, store.Save(ctx, posting("healthcare", title)))
			}

			all, err := store.Latest(ctx, "healthcare", -1)
			require.NoError(t, err)
			assert.Len(t, all, 3)
		})
	}
}
