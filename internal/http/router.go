package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(SecurityHeadersMiddleware())

	if cfg.MediaDir != "" {
		prefix := cfg.MediaURLPrefix
		if prefix == "" {
			prefix = "/media"
		}
		router.Static(prefix, cfg.MediaDir)
	}

	// Health endpoints
	health := NewHealthController(cfg)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	api := router.Group("/api")

	if cfg.Editions != nil {
		editions := NewEditionsController(cfg.Editions, cfg.Articles)
		api.GET("/editions", editions.ListEditions)
		api.GET("/editions/:id", editions.GetEdition)
		if cfg.Articles != nil {
			api.GET("/editions/:id/articles", editions.GetEditionArticles)
		}
	}

	if cfg.ArticleDetails != nil {
		articles := NewArticlesController(cfg.ArticleDetails)
		api.GET("/articles/:id", articles.GetArticle)
	}

	if cfg.Authors != nil {
		authors := NewAuthorsController(cfg.Authors, cfg.Articles)
		api.GET("/authors", authors.ListAuthors)
		api.GET("/authors/:id", authors.GetAuthor)
		if cfg.Articles != nil {
			api.GET("/authors/:id/articles", authors.GetAuthorArticles)
		}
	}

	if cfg.Importer != nil || cfg.TaskQueue != nil {
		imports := NewImportController(cfg.Importer, cfg.TaskQueue)
		api.POST("/editions/import", imports.Import)
	}

	// Task management endpoints
	if cfg.TaskQueue != nil {
		tasksController := NewTasksController(cfg.TaskQueue)
		api.GET("/tasks/types", tasksController.ListTaskTypes)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
		api.POST("/tasks/:type/run", tasksController.RunTask)
	}

	if cfg.Audit != nil {
		auditController := NewAuditController(cfg.Audit)
		api.GET("/audit", auditController.GetAuditEvents)
		api.GET("/editions/:id/audit", auditController.GetEditionEvents)
	}

	if cfg.Inbox != nil {
		inbox := NewInboxController(cfg.Inbox, cfg.Settings)
		api.GET("/inbox", inbox.GetStatus)
		api.POST("/inbox/scan", inbox.Scan)
	}

	return router
}
