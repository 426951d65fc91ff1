package entrypoint

import (
	"fmt"
	"log"

	"github.com/mrlokans/editions/internal/audit"
	"github.com/mrlokans/editions/internal/config"
	"github.com/mrlokans/editions/internal/database"
	auditdb "github.com/mrlokans/editions/internal/database/audit"
	"github.com/mrlokans/editions/internal/database/articles"
	authorsdb "github.com/mrlokans/editions/internal/database/authors"
	"github.com/mrlokans/editions/internal/database/editions"
	"github.com/mrlokans/editions/internal/database/settings"
	"github.com/mrlokans/editions/internal/importers"
	"github.com/mrlokans/editions/internal/media"
	"github.com/mrlokans/editions/internal/styles"
)

// App holds the long-lived collaborators shared by the server and the CLI.
type App struct {
	DB       *database.Database
	Editions *editions.Repository
	Articles *articles.Repository
	Authors  *authorsdb.Repository
	Settings *settings.Repository
	Audit    *audit.Service
	Media    *media.Publisher
	Pipeline *importers.Pipeline
}

// NewApp opens the database and wires the extraction pipeline.
func NewApp(cfg *config.Config) (*App, error) {
	table, err := LoadStyleTable(cfg.Extraction.StyleRolesPath)
	if err != nil {
		return nil, err
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	app := &App{
		DB:       db,
		Editions: editions.NewRepository(db.DB),
		Articles: articles.NewRepository(db.DB),
		Authors:  authorsdb.NewRepository(db.DB),
		Settings: settings.NewRepository(db.DB),
		Audit:    audit.NewService(auditdb.NewRepository(db.DB)),
	}

	deps := importers.Dependencies{
		Editions: app.Editions,
		Articles: app.Articles,
		Authors:  app.Authors,
		Audit:    app.Audit,
	}

	if cfg.Media.Dir != "" {
		publisher, err := media.NewPublisher(cfg.Media.Dir, cfg.Media.URLPrefix, cfg.Media.MaxWidth)
		if err != nil {
			db.Close()
			return nil, err
		}
		app.Media = publisher
		deps.Media = publisher
		log.Printf("[MEDIA] Publishing images to %s", publisher.MediaDir())
	}

	if cfg.Audit.ReportDir != "" {
		deps.Reports = audit.NewReportWriter(cfg.Audit.ReportDir)
	}

	app.Pipeline = importers.NewPipeline(importers.NewExtractor(cfg.Extraction.Workers, table), deps)
	return app, nil
}

// Close waits for pending audit writes and closes the database.
func (a *App) Close() error {
	a.Audit.Wait()
	return a.DB.Close()
}

// LoadStyleTable reads the role table at path, or returns the built-in
// table when path is empty.
func LoadStyleTable(path string) (styles.Table, error) {
	if path == "" {
		return styles.DefaultTable(), nil
	}
	table, err := styles.LoadTable(path)
	if err != nil {
		return styles.Table{}, fmt.Errorf("failed to load style roles from %s: %w", path, err)
	}
	log.Printf("[EXTRACT] Using style roles from %s", path)
	return table, nil
}
