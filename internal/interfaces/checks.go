package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/editions/internal/audit"
	"github.com/mrlokans/editions/internal/authors"
	"github.com/mrlokans/editions/internal/database/articles"
	authorsdb "github.com/mrlokans/editions/internal/database/authors"
	"github.com/mrlokans/editions/internal/database/editions"
	"github.com/mrlokans/editions/internal/database/settings"
	"github.com/mrlokans/editions/internal/http"
	"github.com/mrlokans/editions/internal/importers"
	"github.com/mrlokans/editions/internal/media"
	"github.com/mrlokans/editions/internal/scheduler"
	"github.com/mrlokans/editions/internal/services"
	"github.com/mrlokans/editions/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ http.EditionReader = (*editions.Repository)(nil)
var _ http.ArticleLister = (*articles.Repository)(nil)
var _ http.AuthorReader = (*authorsdb.Repository)(nil)
var _ http.SettingsReader = (*settings.Repository)(nil)
var _ http.AuditReader = (*audit.Service)(nil)

var _ services.ArticleReader = (*articles.Repository)(nil)

// =============================================================================
// Extraction Pipeline
// =============================================================================

var _ importers.EditionStore = (*editions.Repository)(nil)
var _ importers.ArticleStore = (*articles.Repository)(nil)
var _ importers.MediaPublisher = (*media.Publisher)(nil)
var _ importers.AuditLogger = (*audit.Service)(nil)
var _ importers.ReportSaver = (*audit.ReportWriter)(nil)
var _ authors.Store = (*authorsdb.Repository)(nil)

var _ http.EditionImporter = (*importers.Pipeline)(nil)
var _ http.ArticleDetailGetter = (*services.ArticleService)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ http.TaskQueue = (*tasks.Client)(nil)
var _ tasks.EditionRunner = (*importers.Pipeline)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)

var _ http.InboxTrigger = (*scheduler.InboxScheduler)(nil)
var _ scheduler.SourceDirChecker = (*editions.Repository)(nil)
var _ scheduler.StatusRecorder = (*settings.Repository)(nil)
var _ scheduler.ScanAuditor = (*audit.Service)(nil)
