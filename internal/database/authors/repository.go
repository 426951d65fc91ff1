// Package authors provides database operations for authors.
package authors

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/editions/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UpsertAuthor inserts an author or updates the existing one with the same
// name. An empty photoURL never clears a stored photo, so repeating the
// call is harmless.
func (r *Repository) UpsertAuthor(ctx context.Context, name, photoURL string) (*entities.Author, error) {
	db := r.db.WithContext(ctx)
	now := time.Now()

	author := entities.Author{Name: name, PhotoURL: photoURL, CreatedAt: now, UpdatedAt: now}
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"photo_url":  gorm.Expr("CASE WHEN excluded.photo_url = '' THEN authors.photo_url ELSE excluded.photo_url END"),
			"updated_at": now,
		}),
	}).Create(&author).Error
	if err != nil {
		return nil, err
	}

	// The insert may have hit the conflict path; read back the stored row
	var stored entities.Author
	if err := db.Where("name = ?", name).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// UpsertArticleAuthor links an article and an author once.
func (r *Repository) UpsertArticleAuthor(ctx context.Context, articleID, authorID uint) error {
	link := entities.ArticleAuthor{ArticleID: articleID, AuthorID: authorID, CreatedAt: time.Now()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
}

func (r *Repository) GetAuthorByID(ctx context.Context, id uint) (*entities.Author, error) {
	var author entities.Author
	err := r.db.WithContext(ctx).First(&author, id).Error
	if err != nil {
		return nil, err
	}
	return &author, nil
}

// ListAuthors returns all authors ordered by name.
func (r *Repository) ListAuthors(ctx context.Context) ([]entities.Author, error) {
	var list []entities.Author
	err := r.db.WithContext(ctx).Order("name ASC").Find(&list).Error
	return list, err
}
