package http

import (
	"github.com/mrlokans/editions/internal/database"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. Optional dependencies left nil disable
// their routes.
type RouterConfig struct {
	// Core dependencies
	Database       *database.Database
	Editions       EditionReader
	Articles       ArticleLister
	Authors        AuthorReader
	ArticleDetails ArticleDetailGetter

	// Imports run inline when TaskQueue is nil
	Importer  EditionImporter
	TaskQueue TaskQueue

	Audit AuditReader

	Inbox    InboxTrigger
	Settings SettingsReader

	// Published media
	MediaDir       string
	MediaURLPrefix string

	// Application info
	Version string
}
