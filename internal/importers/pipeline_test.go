package importers

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/editions/internal/audit"
	"github.com/mrlokans/editions/internal/database"
	"github.com/mrlokans/editions/internal/database/articles"
	authorsRepo "github.com/mrlokans/editions/internal/database/authors"
	"github.com/mrlokans/editions/internal/database/editions"
	"github.com/mrlokans/editions/internal/entities"
	"github.com/mrlokans/editions/internal/indesign"
	"github.com/mrlokans/editions/internal/media"
	"github.com/mrlokans/editions/internal/styles"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

const resources = "magazine-web-resources/image/"

func setupExport(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "magazine.html"),
		`<html><body><p class="Cover-titel">Hoop</p><p>Editie 12 · 14 maart 2025</p></body></html>`)
	writeFile(t, filepath.Join(root, "magazine-1.html"), `<html><body>
<p class="Titel">De stille kracht</p>
<p class="Chapeau">Over geduld en hoop</p>
<img src="`+resources+`kerk.jpg"/>
<p class="Onderschrift">De oude kerk</p>
<p class="Broodtekst">Eerste alinea.</p>
<p class="Broodtekst">Tweede alinea.</p>
<img src="`+resources+`bank.jpg"/>
<p class="Broodtekst">Derde alinea.</p>
<p class="Auteur">Door: Jan Jansen</p>
</body></html>`)
	writeFile(t, filepath.Join(root, "magazine-2.html"), `<html><body>
<p class="Titel">Tweede artikel</p>
<p class="Broodtekst">Tekst.</p>
<img src="`+resources+`logo.png"/>
<img src="`+resources+`weg.jpg"/>
<p class="Auteur">Jan Jansen en Piet de Vries</p>
</body></html>`)

	for _, name := range []string{"kerk.jpg", "bank.jpg", "logo.png", "auteurs/jansen.jpg"} {
		writeFile(t, filepath.Join(root, resources, name), "image bytes of "+name)
	}
	return root
}

func testExtractor() *Extractor {
	ext := NewExtractor(2, styles.DefaultTable())
	ext.Loader.Images.MinBytes = 0
	ext.Loader.Images.MinSide = 0
	return ext
}

type fakeEditions struct {
	begun    int
	finished []entities.Edition
	failOn   string
}

func (f *fakeEditions) BeginEdition(_ context.Context, sourceDir string) (*entities.Edition, error) {
	if f.failOn == "begin" {
		return nil, errors.New("database is locked")
	}
	f.begun++
	return &entities.Edition{ID: 1, SourceDir: sourceDir, Status: entities.RunStatusRunning}, nil
}

func (f *fakeEditions) FinishEdition(_ context.Context, edition *entities.Edition) error {
	f.finished = append(f.finished, *edition)
	return nil
}

type fakeArticles struct {
	saved     []entities.Article
	failTitle string
}

func (f *fakeArticles) SaveArticle(_ context.Context, article *entities.Article) error {
	if article.Title == f.failTitle {
		return errors.New("disk full")
	}
	article.ID = uint(len(f.saved) + 1)
	f.saved = append(f.saved, *article)
	return nil
}

type fakeAuthors struct {
	byName map[string]*entities.Author
	links  map[[2]uint]bool
}

func newFakeAuthors() *fakeAuthors {
	return &fakeAuthors{byName: make(map[string]*entities.Author), links: make(map[[2]uint]bool)}
}

func (f *fakeAuthors) UpsertAuthor(_ context.Context, name, photoURL string) (*entities.Author, error) {
	a, ok := f.byName[name]
	if !ok {
		a = &entities.Author{ID: uint(len(f.byName) + 1), Name: name}
		f.byName[name] = a
	}
	if photoURL != "" {
		a.PhotoURL = photoURL
	}
	copied := *a
	return &copied, nil
}

func (f *fakeAuthors) UpsertArticleAuthor(_ context.Context, articleID, authorID uint) error {
	f.links[[2]uint{articleID, authorID}] = true
	return nil
}

type fakeAudit struct {
	records []audit.ExtractionRecord
}

func (f *fakeAudit) LogExtraction(rec audit.ExtractionRecord) {
	f.records = append(f.records, rec)
}

func TestExtractor_Extract(t *testing.T) {
	root := setupExport(t)

	ext, err := testExtractor().Extract(context.Background(), root)
	require.NoError(t, err)

	assert.Empty(t, ext.Errors)
	require.Len(t, ext.Segments.Articles, 2)
	assert.Equal(t, "Hoop", ext.Segments.Cover.Title)
	require.NotNil(t, ext.Export.Metadata.Number)
	assert.Equal(t, 12, *ext.Export.Metadata.Number)

	first := ext.Segments.Articles[0]
	assert.Equal(t, "De stille kracht", first.Title)
	assert.Equal(t, "Over geduld en hoop", first.Chapeau)
	assert.Equal(t, []string{"kerk.jpg", "bank.jpg"}, first.ReferencedImages)
	assert.Equal(t, "De oude kerk", first.Captions["kerk.jpg"])

	require.Len(t, ext.Authors, 2)
	assert.Equal(t, "Jan Jansen", ext.Authors[0].Name)
	assert.Equal(t, []string{"De stille kracht", "Tweede artikel"}, ext.Authors[0].ArticleTitles)
	assert.Equal(t, "jansen.jpg", ext.Authors[0].PhotoFilename)
	assert.Equal(t, "Piet de Vries", ext.Authors[1].Name)
	assert.Empty(t, ext.Authors[1].PhotoFilename)

	role, ok := ext.Analysis.RoleOf("Titel")
	require.True(t, ok)
	assert.Equal(t, styles.RoleTitle, role)
}

func TestPipeline_Run(t *testing.T) {
	root := setupExport(t)
	publisher, err := media.NewPublisher(t.TempDir(), "/media", 0)
	require.NoError(t, err)

	eds := &fakeEditions{}
	arts := &fakeArticles{}
	auths := newFakeAuthors()
	auditLog := &fakeAudit{}
	pipeline := NewPipeline(testExtractor(), Dependencies{
		Editions: eds, Articles: arts, Authors: auths, Media: publisher, Audit: auditLog,
	})

	result, err := pipeline.Run(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, entities.RunStatusCompleted, result.Status)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "weg.jpg")

	t.Run("articles stored in order", func(t *testing.T) {
		require.Len(t, arts.saved, 2)
		assert.Equal(t, 0, arts.saved[0].Position)
		assert.Equal(t, 1, arts.saved[1].Position)
		assert.Equal(t, uint(1), arts.saved[0].EditionID)
		assert.Contains(t, arts.saved[0].Body, "<p>Eerste alinea.</p>")
	})

	t.Run("images published with featured and sort order", func(t *testing.T) {
		images := arts.saved[0].Images
		require.Len(t, images, 2)
		assert.Equal(t, entities.ArticleImage{
			Filename: "kerk.jpg", URL: "/media/edition-1/kerk.jpg", Caption: "De oude kerk", IsFeatured: true, SortOrder: 0,
		}, images[0])
		assert.Equal(t, "bank.jpg", images[1].Filename)
		assert.False(t, images[1].IsFeatured)
		assert.Equal(t, 1, images[1].SortOrder)

		assert.Empty(t, arts.saved[1].Images, "decorative and missing images are not stored")
	})

	t.Run("authors linked with photo", func(t *testing.T) {
		require.Len(t, result.Authors, 2)
		assert.Equal(t, "/media/edition-1/jansen.jpg", auths.byName["Jan Jansen"].PhotoURL)
		assert.Len(t, auths.links, 3)
	})

	t.Run("edition finished with metadata", func(t *testing.T) {
		require.Len(t, eds.finished, 1)
		edition := eds.finished[0]
		assert.Equal(t, entities.RunStatusCompleted, edition.Status)
		assert.Equal(t, "Hoop", edition.CoverTitle)
		require.NotNil(t, edition.Number)
		assert.Equal(t, 12, *edition.Number)
		require.NotNil(t, edition.Date)
		assert.Equal(t, "2025-03-14", edition.Date.Format("2006-01-02"))
		assert.Equal(t, 2, edition.ArticleCount)
		assert.Equal(t, 2, edition.AuthorCount)
		assert.Empty(t, edition.Errors)

		var warnings []string
		require.NoError(t, json.Unmarshal([]byte(edition.Warnings), &warnings))
		assert.Equal(t, result.Warnings, warnings)
	})

	t.Run("audited", func(t *testing.T) {
		require.Len(t, auditLog.records, 1)
		assert.Equal(t, entities.AuditStatusSuccess, auditLog.records[0].Status)
		assert.Equal(t, 2, auditLog.records[0].Articles)
	})
}

func TestPipeline_FailedArticleIsolated(t *testing.T) {
	root := setupExport(t)

	arts := &fakeArticles{failTitle: "Tweede artikel"}
	auths := newFakeAuthors()
	auditLog := &fakeAudit{}
	pipeline := NewPipeline(testExtractor(), Dependencies{
		Editions: &fakeEditions{}, Articles: arts, Authors: auths, Audit: auditLog,
	})

	result, err := pipeline.Run(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, entities.RunStatusCompletedWithErrors, result.Status)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Tweede artikel")
	require.Len(t, result.Articles, 1)
	assert.Equal(t, "De stille kracht", result.Articles[0].Title)

	// Both authors are saved, only the link to the stored article exists
	assert.Len(t, result.Authors, 2)
	assert.Len(t, auths.links, 1)
	assert.Equal(t, entities.AuditStatusPartial, auditLog.records[0].Status)

	t.Run("images keep export paths without publisher", func(t *testing.T) {
		assert.Equal(t, resources+"kerk.jpg", arts.saved[0].Images[0].URL)
	})
}

func TestPipeline_MissingRootIsFatal(t *testing.T) {
	eds := &fakeEditions{}
	auditLog := &fakeAudit{}
	pipeline := NewPipeline(testExtractor(), Dependencies{
		Editions: eds, Articles: &fakeArticles{}, Authors: newFakeAuthors(), Audit: auditLog,
	})

	result, err := pipeline.Run(context.Background(), filepath.Join(t.TempDir(), "weg"))

	require.Error(t, err)
	assert.ErrorIs(t, err, indesign.ErrExportRootMissing)
	assert.Nil(t, result)
	assert.Zero(t, eds.begun)
	require.Len(t, auditLog.records, 1)
	assert.Error(t, auditLog.records[0].Err)
}

func TestPipeline_BeginFailureIsFatal(t *testing.T) {
	root := setupExport(t)
	arts := &fakeArticles{}
	pipeline := NewPipeline(testExtractor(), Dependencies{
		Editions: &fakeEditions{failOn: "begin"}, Articles: arts, Authors: newFakeAuthors(),
	})

	_, err := pipeline.Run(context.Background(), root)

	assert.ErrorContains(t, err, "database is locked")
	assert.Empty(t, arts.saved)
}

func TestPipeline_ReimportWithDatabase(t *testing.T) {
	root := setupExport(t)
	db, err := database.NewTestDatabase(filepath.Join(t.TempDir(), "editions.db"))
	require.NoError(t, err)
	defer db.Close()

	editionsRepo := editions.NewRepository(db.DB)
	articlesRepo := articles.NewRepository(db.DB)
	pipeline := NewPipeline(testExtractor(), Dependencies{
		Editions: editionsRepo,
		Articles: articlesRepo,
		Authors:  authorsRepo.NewRepository(db.DB),
		Reports:  audit.NewReportWriter(t.TempDir()),
	})
	ctx := context.Background()

	first, err := pipeline.Run(ctx, root)
	require.NoError(t, err)
	assert.NotEmpty(t, first.ReportFile)

	second, err := pipeline.Run(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, first.EditionID, second.EditionID)

	stored, err := articlesRepo.GetArticlesForEdition(ctx, second.EditionID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "De stille kracht", stored[0].Title)
	assert.Len(t, stored[0].Images, 2)

	edition, err := editionsRepo.GetEdition(ctx, second.EditionID)
	require.NoError(t, err)
	assert.Equal(t, entities.RunStatusCompleted, edition.Status)
	assert.Equal(t, 2, edition.ArticleCount)

	auths, err := articlesRepo.GetAuthorsForArticle(ctx, stored[1].ID)
	require.NoError(t, err)
	assert.Len(t, auths, 2)

	var links int64
	db.DB.Model(&entities.ArticleAuthor{}).Count(&links)
	assert.Equal(t, int64(3), links)
}
