package http

import (
	"context"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/editions/internal/entities"
	"github.com/mrlokans/editions/internal/importers"
	"github.com/mrlokans/editions/internal/scheduler"
	"github.com/mrlokans/editions/internal/services"
)

// This file consolidates the store interfaces used by HTTP controllers.
// Each controller depends only on the methods it calls.

// EditionReader provides read access to editions.
type EditionReader interface {
	ListEditions(ctx context.Context, limit, offset int) ([]entities.Edition, int64, error)
	GetEdition(ctx context.Context, id uint) (*entities.Edition, error)
}

// ArticleLister lists articles by edition or author.
type ArticleLister interface {
	GetArticlesForEdition(ctx context.Context, editionID uint) ([]entities.Article, error)
	GetArticlesForAuthor(ctx context.Context, authorID uint) ([]entities.Article, error)
}

// AuthorReader provides read access to authors.
type AuthorReader interface {
	ListAuthors(ctx context.Context) ([]entities.Author, error)
	GetAuthorByID(ctx context.Context, id uint) (*entities.Author, error)
}

// ArticleDetailGetter builds article detail responses.
type ArticleDetailGetter interface {
	GetArticleDetail(ctx context.Context, id uint) (*services.ArticleDetail, error)
}

// EditionImporter runs an extraction synchronously.
type EditionImporter interface {
	Run(ctx context.Context, root string) (*importers.RunResult, error)
}

// TaskQueue enqueues background tasks and reports their status.
type TaskQueue interface {
	Enqueue(task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// AuditReader reads the audit log.
type AuditReader interface {
	GetEvents(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error)
	GetEditionEvents(editionID uint) ([]entities.AuditEvent, error)
}

// InboxTrigger exposes the inbox scheduler.
type InboxTrigger interface {
	Scan(ctx context.Context) (*scheduler.ScanResult, error)
	IsRunning() bool
	IsScanning() bool
	NextRunTime() *time.Time
}

// SettingsReader reads stored settings.
type SettingsReader interface {
	GetValue(key, fallback string) string
}
