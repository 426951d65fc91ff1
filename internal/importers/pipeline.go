package importers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"

	"github.com/mrlokans/editions/internal/audit"
	"github.com/mrlokans/editions/internal/authors"
	"github.com/mrlokans/editions/internal/content"
	"github.com/mrlokans/editions/internal/entities"
	"github.com/mrlokans/editions/internal/segmenter"
)

// EditionStore creates editions and records their run status.
type EditionStore interface {
	// BeginEdition returns the edition for sourceDir with its previous
	// articles removed.
	BeginEdition(ctx context.Context, sourceDir string) (*entities.Edition, error)
	FinishEdition(ctx context.Context, edition *entities.Edition) error
}

type ArticleStore interface {
	SaveArticle(ctx context.Context, article *entities.Article) error
}

// MediaPublisher makes export images servable and returns their URL.
type MediaPublisher interface {
	Publish(editionID uint, sourcePath string) (string, error)
	InvalidateEdition(editionID uint) error
}

type AuditLogger interface {
	LogExtraction(rec audit.ExtractionRecord)
}

type ReportSaver interface {
	SaveJSON(data any) (string, error)
}

// Dependencies are the collaborators of a Pipeline. Media, Audit and
// Reports are optional.
type Dependencies struct {
	Editions EditionStore
	Articles ArticleStore
	Authors  authors.Store
	Media    MediaPublisher
	Audit    AuditLogger
	Reports  ReportSaver
}

// Pipeline extracts an export and persists the result.
type Pipeline struct {
	extractor *Extractor
	deps      Dependencies
}

func NewPipeline(extractor *Extractor, deps Dependencies) *Pipeline {
	return &Pipeline{extractor: extractor, deps: deps}
}

type SavedArticle struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	PageStart int    `json:"pageStart"`
	PageEnd   int    `json:"pageEnd"`
	Images    int    `json:"images"`
}

// RunResult is the outcome of one run.
type RunResult struct {
	EditionID  uint                  `json:"editionId"`
	SourceDir  string                `json:"sourceDir"`
	Status     entities.RunStatus    `json:"status"`
	Articles   []SavedArticle        `json:"articles"`
	Authors    []authors.SavedAuthor `json:"authors"`
	Errors     []string              `json:"errors"`
	Warnings   []string              `json:"warnings"`
	ReportFile string                `json:"reportFile,omitempty"`
}

// Run extracts the export at root and stores it. An error with a nil
// result means nothing was stored for this run.
func (p *Pipeline) Run(ctx context.Context, root string) (*RunResult, error) {
	ext, err := p.extractor.Extract(ctx, root)
	if err != nil {
		log.Printf("[EXTRACT] Run for %s aborted: %v", root, err)
		p.logAudit(audit.ExtractionRecord{SourceDir: root, Err: err})
		return nil, err
	}
	return p.Persist(ctx, ext)
}

// Persist stores an extraction. Articles and authors that fail to save
// are reported in the result and skipped.
func (p *Pipeline) Persist(ctx context.Context, ext *Extraction) (*RunResult, error) {
	root := ext.Export.Root

	edition, err := p.deps.Editions.BeginEdition(ctx, root)
	if err != nil {
		err = fmt.Errorf("failed to begin edition: %w", err)
		p.logAudit(audit.ExtractionRecord{SourceDir: root, Err: err})
		return nil, err
	}

	result := &RunResult{
		EditionID: edition.ID,
		SourceDir: root,
		Errors:    append([]string{}, ext.Errors...),
		Warnings:  []string{},
		Articles:  []SavedArticle{},
		Authors:   []authors.SavedAuthor{},
	}

	if p.deps.Media != nil {
		if err := p.deps.Media.InvalidateEdition(edition.ID); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("media: failed to clear previous images: %v", err))
		}
	}

	applyMetadata(edition, ext)

	titleToID := make(map[string]uint)
	for i, extracted := range ext.Segments.Articles {
		article, warnings := p.buildArticle(edition.ID, i, extracted, ext)
		result.Warnings = append(result.Warnings, warnings...)

		if err := p.deps.Articles.SaveArticle(ctx, article); err != nil {
			msg := fmt.Sprintf("article %q: failed to save: %v", extracted.Title, err)
			log.Printf("[EXTRACT] Edition %d: %s", edition.ID, msg)
			result.Errors = append(result.Errors, msg)
			continue
		}

		if _, dup := titleToID[extracted.Title]; dup {
			result.Warnings = append(result.Warnings, fmt.Sprintf("article %q: title repeats, authors link to the first one", extracted.Title))
		} else {
			titleToID[extracted.Title] = article.ID
		}

		result.Articles = append(result.Articles, SavedArticle{
			ID:        article.ID,
			Title:     article.Title,
			PageStart: article.PageStart,
			PageEnd:   article.PageEnd,
			Images:    len(article.Images),
		})
	}

	saved := authors.SaveAuthors(ctx, p.deps.Authors, edition.ID, ext.Authors, titleToID, authors.SaveOptions{
		PhotoURL: p.photoPublisher(edition.ID, root),
	})
	result.Authors = append(result.Authors, saved.Saved...)
	result.Errors = append(result.Errors, saved.Errors...)
	result.Warnings = append(result.Warnings, saved.Warnings...)

	result.Status = entities.RunStatusCompleted
	if len(result.Errors) > 0 {
		result.Status = entities.RunStatusCompletedWithErrors
	}

	edition.Status = result.Status
	edition.ArticleCount = len(result.Articles)
	edition.AuthorCount = len(result.Authors)
	edition.Errors = encodeMessages(result.Errors)
	edition.Warnings = encodeMessages(result.Warnings)
	if err := p.deps.Editions.FinishEdition(ctx, edition); err != nil {
		err = fmt.Errorf("failed to finish edition %d: %w", edition.ID, err)
		p.logAudit(audit.ExtractionRecord{EditionID: &edition.ID, SourceDir: root, Err: err})
		return result, err
	}

	auditStatus := entities.AuditStatusSuccess
	if result.Status == entities.RunStatusCompletedWithErrors {
		auditStatus = entities.AuditStatusPartial
	}
	p.logAudit(audit.ExtractionRecord{
		EditionID: &edition.ID,
		SourceDir: root,
		Status:    auditStatus,
		Articles:  len(result.Articles),
		Authors:   len(result.Authors),
		Errors:    len(result.Errors),
		Warnings:  len(result.Warnings),
	})

	if p.deps.Reports != nil {
		if name, err := p.deps.Reports.SaveJSON(result); err != nil {
			log.Printf("[EXTRACT] Edition %d: failed to save run report: %v", edition.ID, err)
		} else {
			result.ReportFile = name
		}
	}

	log.Printf("[EXTRACT] Edition %d (%s): %s, %d articles, %d authors, %d errors, %d warnings",
		edition.ID, root, result.Status, len(result.Articles), len(result.Authors), len(result.Errors), len(result.Warnings))

	return result, nil
}

// applyMetadata copies found metadata onto the edition. Missing values
// leave the stored ones untouched.
func applyMetadata(edition *entities.Edition, ext *Extraction) {
	md := ext.Export.Metadata
	if md.Number != nil {
		edition.Number = md.Number
	}
	if md.Date != nil {
		edition.Date = md.Date
	}
	if ext.Segments.Cover.Title != "" {
		edition.CoverTitle = ext.Segments.Cover.Title
	}
	if ext.Segments.Cover.Chapeau != "" {
		edition.CoverChapeau = ext.Segments.Cover.Chapeau
	}
}

func (p *Pipeline) buildArticle(editionID uint, position int, a segmenter.ExtractedArticle, ext *Extraction) (*entities.Article, []string) {
	article := &entities.Article{
		EditionID:      editionID,
		Position:       position,
		Title:          a.Title,
		Chapeau:        a.Chapeau,
		Body:           content.RenderBody(a.BodyParagraphs, a.Sidebars),
		Excerpt:        a.Excerpt,
		Category:       a.Category,
		Lifespan:       a.Lifespan,
		VerseReference: a.VerseReference,
		IntroVerse:     a.IntroVerse,
		AuthorBio:      a.AuthorBio,
		PageStart:      a.PageStart,
		PageEnd:        a.PageEnd,
	}

	var warnings []string
	featured := false
	for _, filename := range a.ReferencedImages {
		images := ext.Export.Images
		if images.IsDecorative(filename) {
			continue
		}
		rel, ok := images.Path(filename)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("article %q: image %s not found in export", a.Title, filename))
			continue
		}

		url := rel
		if p.deps.Media != nil {
			published, err := p.deps.Media.Publish(editionID, filepath.Join(ext.Export.Root, filepath.FromSlash(rel)))
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("article %q: image %s not published: %v", a.Title, filename, err))
				continue
			}
			url = published
		}

		blocksBefore := a.ImagePositions[filename]
		isFeatured := !featured && blocksBefore == 0
		featured = featured || isFeatured

		article.Images = append(article.Images, entities.ArticleImage{
			Filename:   filename,
			URL:        url,
			Caption:    a.Captions[filename],
			IsFeatured: isFeatured,
			SortOrder:  content.SortOrderFor(blocksBefore),
		})
	}

	return article, warnings
}

func (p *Pipeline) photoPublisher(editionID uint, root string) func(authors.ExtractedAuthor) (string, error) {
	if p.deps.Media == nil {
		return nil
	}
	return func(a authors.ExtractedAuthor) (string, error) {
		return p.deps.Media.Publish(editionID, filepath.Join(root, filepath.FromSlash(a.PhotoSourcePath)))
	}
}

func (p *Pipeline) logAudit(rec audit.ExtractionRecord) {
	if p.deps.Audit != nil {
		p.deps.Audit.LogExtraction(rec)
	}
}

func encodeMessages(msgs []string) string {
	if len(msgs) == 0 {
		return ""
	}
	data, err := json.Marshal(msgs)
	if err != nil {
		return ""
	}
	return string(data)
}
