// Package editions stores editions and the state of their extraction runs.
package editions

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/editions/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// BeginEdition returns the edition imported from sourceDir, creating it if
// needed, and clears the articles of any previous run so a re-import
// replaces them. The edition is marked running.
func (r *Repository) BeginEdition(ctx context.Context, sourceDir string) (*entities.Edition, error) {
	var edition entities.Edition
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("source_dir = ?", sourceDir).First(&edition).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			edition = entities.Edition{SourceDir: sourceDir}
		} else if err != nil {
			return err
		}

		edition.Status = entities.RunStatusRunning
		edition.StartedAt = time.Now()
		edition.CompletedAt = nil
		edition.Errors = ""
		edition.Warnings = ""
		edition.ArticleCount = 0
		edition.AuthorCount = 0
		if err := tx.Save(&edition).Error; err != nil {
			return err
		}

		return deleteArticles(tx, edition.ID)
	})
	if err != nil {
		return nil, err
	}
	return &edition, nil
}

func deleteArticles(tx *gorm.DB, editionID uint) error {
	articleIDs := func() *gorm.DB {
		return tx.Model(&entities.Article{}).Select("id").Where("edition_id = ?", editionID)
	}

	if err := tx.Where("article_id IN (?)", articleIDs()).Delete(&entities.ArticleImage{}).Error; err != nil {
		return err
	}
	if err := tx.Where("article_id IN (?)", articleIDs()).Delete(&entities.ArticleAuthor{}).Error; err != nil {
		return err
	}
	return tx.Where("edition_id = ?", editionID).Delete(&entities.Article{}).Error
}

// FinishEdition stores the outcome of a run.
func (r *Repository) FinishEdition(ctx context.Context, edition *entities.Edition) error {
	now := time.Now()
	edition.CompletedAt = &now
	return r.db.WithContext(ctx).Save(edition).Error
}

func (r *Repository) GetEdition(ctx context.Context, id uint) (*entities.Edition, error) {
	var edition entities.Edition
	err := r.db.WithContext(ctx).First(&edition, id).Error
	if err != nil {
		return nil, err
	}
	return &edition, nil
}

// ListEditions returns editions newest first.
func (r *Repository) ListEditions(ctx context.Context, limit, offset int) ([]entities.Edition, int64, error) {
	var editions []entities.Edition
	var total int64

	query := r.db.WithContext(ctx).Model(&entities.Edition{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	err := query.Order("date IS NULL, date DESC, id DESC").Limit(limit).Offset(offset).Find(&editions).Error
	return editions, total, err
}

// HasSourceDir reports whether an export directory was imported before.
func (r *Repository) HasSourceDir(ctx context.Context, sourceDir string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Edition{}).Where("source_dir = ?", sourceDir).Count(&count).Error
	return count > 0, err
}
