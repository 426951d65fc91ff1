// Package articles provides database operations for articles, their
// images and their author links.
package articles

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrlokans/editions/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SaveArticle creates an article together with its images.
func (r *Repository) SaveArticle(ctx context.Context, article *entities.Article) error {
	return r.db.WithContext(ctx).Create(article).Error
}

func orderedImages(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC, id ASC")
}

// GetArticleByID returns an article with its images in sort order.
func (r *Repository) GetArticleByID(ctx context.Context, id uint) (*entities.Article, error) {
	var article entities.Article
	err := r.db.WithContext(ctx).Preload("Images", orderedImages).First(&article, id).Error
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// GetArticlesForEdition returns an edition's articles in publication order.
func (r *Repository) GetArticlesForEdition(ctx context.Context, editionID uint) ([]entities.Article, error) {
	var list []entities.Article
	err := r.db.WithContext(ctx).
		Preload("Images", orderedImages).
		Where("edition_id = ?", editionID).
		Order("position ASC").
		Find(&list).Error
	return list, err
}

func (r *Repository) GetAuthorsForArticle(ctx context.Context, articleID uint) ([]entities.Author, error) {
	var list []entities.Author
	err := r.db.WithContext(ctx).
		Joins("JOIN article_authors ON article_authors.author_id = authors.id").
		Where("article_authors.article_id = ?", articleID).
		Order("article_authors.created_at ASC, authors.id ASC").
		Find(&list).Error
	return list, err
}

// GetArticlesForAuthor returns an author's articles, newest first.
func (r *Repository) GetArticlesForAuthor(ctx context.Context, authorID uint) ([]entities.Article, error) {
	var list []entities.Article
	err := r.db.WithContext(ctx).
		Joins("JOIN article_authors ON article_authors.article_id = articles.id").
		Where("article_authors.author_id = ?", authorID).
		Order("articles.edition_id DESC, articles.position ASC").
		Find(&list).Error
	return list, err
}
