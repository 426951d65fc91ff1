package services

import (
	"context"

	"github.com/mrlokans/editions/internal/entities"
)

// ArticleReader provides read-only access to articles and their authors.
type ArticleReader interface {
	GetArticleByID(ctx context.Context, id uint) (*entities.Article, error)
	GetAuthorsForArticle(ctx context.Context, articleID uint) ([]entities.Author, error)
}
