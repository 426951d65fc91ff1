package services

import (
	"context"
	"fmt"
	"log"

	"github.com/mrlokans/editions/internal/content"
	"github.com/mrlokans/editions/internal/entities"
)

// AuthorRef is an author as listed on an article.
type AuthorRef struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	PhotoURL string `json:"photoUrl"`
}

// ArticleDetail is the read model of one article with its body split into
// ordered content blocks.
type ArticleDetail struct {
	ID             uint                   `json:"id"`
	EditionID      uint                   `json:"editionId"`
	Position       int                    `json:"position"`
	Title          string                 `json:"title"`
	Chapeau        string                 `json:"chapeau,omitempty"`
	Excerpt        string                 `json:"excerpt,omitempty"`
	Category       string                 `json:"category,omitempty"`
	Lifespan       string                 `json:"lifespan,omitempty"`
	VerseReference string                 `json:"verseReference,omitempty"`
	IntroVerse     string                 `json:"introVerse,omitempty"`
	AuthorBio      string                 `json:"authorBio,omitempty"`
	PageStart      int                    `json:"pageStart"`
	PageEnd        int                    `json:"pageEnd"`
	ContentBlocks  []content.Block        `json:"contentBlocks"`
	FeaturedImage  *content.FeaturedImage `json:"featuredImage"`
	Authors        []AuthorRef            `json:"authors"`
}

// ArticleService assembles article detail responses.
type ArticleService struct {
	reader ArticleReader
}

func NewArticleService(reader ArticleReader) *ArticleService {
	return &ArticleService{reader: reader}
}

// GetArticleDetail loads an article and transforms its stored body. Lookup
// errors are returned unwrapped so callers can test for not-found.
func (s *ArticleService) GetArticleDetail(ctx context.Context, id uint) (*ArticleDetail, error) {
	article, err := s.reader.GetArticleByID(ctx, id)
	if err != nil {
		return nil, err
	}

	linked, err := s.reader.GetAuthorsForArticle(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load authors for article %d: %w", id, err)
	}

	images := toContentImages(article.Images)
	result := content.TransformToContentBlocks(article.Body, images)
	for _, w := range result.Warnings {
		log.Printf("[CONTENT] Article %d: %s", id, w)
	}

	blocks := result.Blocks
	if blocks == nil {
		blocks = []content.Block{}
	}

	refs := make([]AuthorRef, 0, len(linked))
	for _, a := range linked {
		refs = append(refs, AuthorRef{ID: a.ID, Name: a.Name, PhotoURL: a.PhotoURL})
	}

	return &ArticleDetail{
		ID:             article.ID,
		EditionID:      article.EditionID,
		Position:       article.Position,
		Title:          article.Title,
		Chapeau:        article.Chapeau,
		Excerpt:        article.Excerpt,
		Category:       article.Category,
		Lifespan:       article.Lifespan,
		VerseReference: article.VerseReference,
		IntroVerse:     article.IntroVerse,
		AuthorBio:      article.AuthorBio,
		PageStart:      article.PageStart,
		PageEnd:        article.PageEnd,
		ContentBlocks:  blocks,
		FeaturedImage:  content.SelectFeaturedImage(images),
		Authors:        refs,
	}, nil
}

func toContentImages(stored []entities.ArticleImage) []content.Image {
	images := make([]content.Image, 0, len(stored))
	for _, img := range stored {
		images = append(images, content.Image{
			URL:        img.URL,
			Caption:    img.Caption,
			IsFeatured: img.IsFeatured,
			SortOrder:  img.SortOrder,
		})
	}
	return images
}
