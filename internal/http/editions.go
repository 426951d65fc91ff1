package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/editions/internal/entities"
)

type EditionsController struct {
	editions EditionReader
	articles ArticleLister
}

func NewEditionsController(editions EditionReader, articles ArticleLister) *EditionsController {
	return &EditionsController{
		editions: editions,
		articles: articles,
	}
}

// ListEditions handles GET /api/editions
func (ec *EditionsController) ListEditions(c *gin.Context) {
	limit, offset := parsePagination(c, 20, 100)

	list, total, err := ec.editions.ListEditions(c.Request.Context(), limit, offset)
	if err != nil {
		respondInternalError(c, err, "list editions")
		return
	}
	if list == nil {
		list = []entities.Edition{}
	}

	c.JSON(http.StatusOK, newPaginatedResponse(list, total, limit, offset))
}

// GetEdition handles GET /api/editions/:id
func (ec *EditionsController) GetEdition(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	edition, err := ec.editions.GetEdition(c.Request.Context(), id)
	if err != nil {
		respondLookupError(c, err, "edition")
		return
	}

	c.JSON(http.StatusOK, edition)
}

// GetEditionArticles handles GET /api/editions/:id/articles
func (ec *EditionsController) GetEditionArticles(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := ec.editions.GetEdition(c.Request.Context(), id); err != nil {
		respondLookupError(c, err, "edition")
		return
	}

	list, err := ec.articles.GetArticlesForEdition(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "list edition articles")
		return
	}
	if list == nil {
		list = []entities.Article{}
	}

	c.JSON(http.StatusOK, gin.H{"articles": list, "count": len(list)})
}
