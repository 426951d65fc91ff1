package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type ArticlesController struct {
	details ArticleDetailGetter
}

func NewArticlesController(details ArticleDetailGetter) *ArticlesController {
	return &ArticlesController{details: details}
}

// GetArticle handles GET /api/articles/:id
// Returns the article with its body as ordered content blocks.
func (ac *ArticlesController) GetArticle(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := ac.details.GetArticleDetail(c.Request.Context(), id)
	if err != nil {
		respondLookupError(c, err, "article")
		return
	}

	c.JSON(http.StatusOK, detail)
}
