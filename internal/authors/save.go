package authors

import (
	"context"
	"fmt"
	"log"

	"github.com/mrlokans/editions/internal/entities"
)

// Store is the persistence the author step needs.
type Store interface {
	// UpsertAuthor creates the author or updates it by unique name. An
	// empty photoURL keeps the stored one.
	UpsertAuthor(ctx context.Context, name, photoURL string) (*entities.Author, error)
	UpsertArticleAuthor(ctx context.Context, articleID, authorID uint) error
}

type SaveOptions struct {
	// PhotoURL publishes an author's photo and returns its public URL.
	// Nil or an empty result leaves the photo unset.
	PhotoURL func(ExtractedAuthor) (string, error)
}

type SavedAuthor struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	PhotoURL string `json:"photoUrl,omitempty"`
}

type SaveResult struct {
	Saved          []SavedAuthor
	RelationsSaved int
	Errors         []string
	Warnings       []string
}

// SaveAuthors upserts every author and links it to its articles through
// titleToID. A failing author or relation is recorded and skipped.
func SaveAuthors(ctx context.Context, store Store, editionID uint, authors []ExtractedAuthor, titleToID map[string]uint, opts SaveOptions) SaveResult {
	var result SaveResult

	for _, a := range authors {
		photoURL := ""
		if opts.PhotoURL != nil && a.PhotoFilename != "" {
			url, err := opts.PhotoURL(a)
			if err != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("author %q: photo %s not published: %v", a.Name, a.PhotoFilename, err))
			} else {
				photoURL = url
			}
		}

		saved, err := store.UpsertAuthor(ctx, a.Name, photoURL)
		if err != nil {
			msg := fmt.Sprintf("author %q: failed to save: %v", a.Name, err)
			log.Printf("[EXTRACT] Edition %d: %s", editionID, msg)
			result.Errors = append(result.Errors, msg)
			continue
		}
		result.Saved = append(result.Saved, SavedAuthor{ID: saved.ID, Name: saved.Name, PhotoURL: saved.PhotoURL})

		for _, title := range a.ArticleTitles {
			articleID, ok := titleToID[title]
			if !ok {
				result.Warnings = append(result.Warnings, fmt.Sprintf("author %q: article %q not found, relation skipped", a.Name, title))
				continue
			}
			if err := store.UpsertArticleAuthor(ctx, articleID, saved.ID); err != nil {
				msg := fmt.Sprintf("author %q: failed to link article %q: %v", a.Name, title, err)
				log.Printf("[EXTRACT] Edition %d: %s", editionID, msg)
				result.Errors = append(result.Errors, msg)
				continue
			}
			result.RelationsSaved++
		}
	}

	log.Printf("[EXTRACT] Edition %d: saved %d/%d authors, %d relations (%d errors, %d warnings)",
		editionID, len(result.Saved), len(authors), result.RelationsSaved, len(result.Errors), len(result.Warnings))

	return result
}
