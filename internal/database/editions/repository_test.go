package editions

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/editions/internal/database"
	"github.com/mrlokans/editions/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := database.NewTestDatabase(filepath.Join(t.TempDir(), "editions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db.DB
}

func TestBeginEdition_CreatesRunningEdition(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	edition, err := repo.BeginEdition(ctx, "/inbox/editie-12")
	require.NoError(t, err)

	assert.NotZero(t, edition.ID)
	assert.Equal(t, entities.RunStatusRunning, edition.Status)
	assert.False(t, edition.StartedAt.IsZero())
	assert.Nil(t, edition.CompletedAt)

	found, err := repo.HasSourceDir(ctx, "/inbox/editie-12")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = repo.HasSourceDir(ctx, "/inbox/editie-13")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestBeginEdition_ReimportReplacesArticles(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	first, err := repo.BeginEdition(ctx, "/inbox/editie-12")
	require.NoError(t, err)

	article := entities.Article{
		EditionID: first.ID,
		Title:     "Oud artikel",
		Images:    []entities.ArticleImage{{Filename: "a.jpg", URL: "/media/a.jpg"}},
	}
	require.NoError(t, db.Create(&article).Error)
	require.NoError(t, db.Create(&entities.ArticleAuthor{ArticleID: article.ID, AuthorID: 7}).Error)

	other, err := repo.BeginEdition(ctx, "/inbox/editie-13")
	require.NoError(t, err)
	kept := entities.Article{EditionID: other.ID, Title: "Blijft"}
	require.NoError(t, db.Create(&kept).Error)

	first.Status = entities.RunStatusCompletedWithErrors
	first.Errors = `["kapot"]`
	first.ArticleCount = 1
	require.NoError(t, repo.FinishEdition(ctx, first))

	again, err := repo.BeginEdition(ctx, "/inbox/editie-12")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, entities.RunStatusRunning, again.Status)
	assert.Empty(t, again.Errors)
	assert.Zero(t, again.ArticleCount)
	assert.Nil(t, again.CompletedAt)

	var count int64
	db.Model(&entities.Article{}).Where("edition_id = ?", first.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&entities.ArticleImage{}).Count(&count)
	assert.Zero(t, count)
	db.Model(&entities.ArticleAuthor{}).Count(&count)
	assert.Zero(t, count)

	db.Model(&entities.Article{}).Where("edition_id = ?", other.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestFinishEdition(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	edition, err := repo.BeginEdition(ctx, "/inbox/editie-12")
	require.NoError(t, err)

	number := 12
	edition.Number = &number
	edition.Status = entities.RunStatusCompleted
	edition.ArticleCount = 9
	require.NoError(t, repo.FinishEdition(ctx, edition))

	stored, err := repo.GetEdition(ctx, edition.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.RunStatusCompleted, stored.Status)
	assert.Equal(t, 9, stored.ArticleCount)
	require.NotNil(t, stored.Number)
	assert.Equal(t, 12, *stored.Number)
	assert.NotNil(t, stored.CompletedAt)
}

func TestGetEdition_NotFound(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	_, err := repo.GetEdition(context.Background(), 99)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListEditions_NewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	older := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&entities.Edition{SourceDir: "/a", Date: &older}).Error)
	require.NoError(t, db.Create(&entities.Edition{SourceDir: "/b"}).Error)
	require.NoError(t, db.Create(&entities.Edition{SourceDir: "/c", Date: &newer}).Error)

	list, total, err := repo.ListEditions(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"/c", "/a", "/b"}, []string{list[0].SourceDir, list[1].SourceDir, list[2].SourceDir})

	page, _, err := repo.ListEditions(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "/a", page[0].SourceDir)
}
