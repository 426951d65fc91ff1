// Package interfaces documents the core abstractions used throughout the application.
//
// Every consumer declares the narrow interface it needs next to the code that
// uses it; this package only collects the compile-time checks that the
// concrete types still satisfy them.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - EditionReader, ArticleLister, AuthorReader: read models for the API (internal/http/stores.go)
//   - ArticleReader: article and author lookups for detail views (internal/services/interfaces.go)
//   - SettingsReader: stored key/value settings (internal/http/stores.go)
//
// ## Extraction Pipeline Interfaces
//
//   - EditionStore, ArticleStore: persistence of one run (internal/importers/pipeline.go)
//   - authors.Store: author upserts and article links (internal/authors/save.go)
//   - MediaPublisher: copies export images to the served media dir (internal/importers/pipeline.go)
//   - AuditLogger, ReportSaver: run bookkeeping (internal/importers/pipeline.go)
//
// ## Background Work Interfaces
//
//   - TaskQueue: backlite task submission and status (internal/http/stores.go)
//   - EditionRunner, AuditEventCleaner: task processors (internal/tasks/)
//   - SourceDirChecker, StatusRecorder, ScanAuditor: inbox scanning (internal/scheduler/inbox.go)
//
// # Adding a New Style Role
//
//  1. Add the Role constant and its keywords in internal/styles/table.go.
//     More specific roles go before the generic ones they contain.
//
//  2. Teach the segmenter what the role means in internal/segmenter/.
//
//  3. If it produces a new content block, add the block type in
//     internal/content/.
//
// # Adding a New Database Domain
//
//  1. Create sub-package: internal/database/<domain>/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Register the entities in internal/database/database.go migrations
//
//  4. Add compile-time checks for the interfaces it serves
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
