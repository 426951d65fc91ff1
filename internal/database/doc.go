// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── editions/        # Editions and their extraction run state
//	├── articles/        # Articles, their images and author links
//	├── authors/         # Author upserts and listing
//	├── audit/           # Audit event log
//	└── settings/        # Application settings
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	// Initialize database connection
//	db, err := database.NewDatabase("./editions.db")
//
//	// Create domain-specific repositories
//	editionsRepo := editions.NewRepository(db.DB)
//	articlesRepo := articles.NewRepository(db.DB)
//	authorsRepo := authors.NewRepository(db.DB)
//
//	// Use repositories
//	edition, err := editionsRepo.GetEdition(ctx, 12)
//	list, err := articlesRepo.GetArticlesForEdition(ctx, edition.ID)
//
// # Interface Implementations
//
// Each sub-package implements specific interfaces:
//
//   - editions.Repository: implements importers.EditionStore and http.EditionStore
//   - articles.Repository: implements importers.ArticleStore and http.ArticleStore
//   - authors.Repository: implements authors.Store and http.AuthorStore
//   - audit.Repository: implements audit.Repository
//   - settings.Repository: implements scheduler.SettingsStore
//
// # Adding a New Domain
//
// To add a new domain:
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Implement the required interface
//  5. Add compile-time interface check in internal/interfaces/checks.go
package database
