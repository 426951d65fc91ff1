package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/editions/internal/entities"
)

type AuthorsController struct {
	authors  AuthorReader
	articles ArticleLister
}

func NewAuthorsController(authors AuthorReader, articles ArticleLister) *AuthorsController {
	return &AuthorsController{
		authors:  authors,
		articles: articles,
	}
}

// ListAuthors handles GET /api/authors
func (ac *AuthorsController) ListAuthors(c *gin.Context) {
	list, err := ac.authors.ListAuthors(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list authors")
		return
	}
	if list == nil {
		list = []entities.Author{}
	}
	c.JSON(http.StatusOK, gin.H{"authors": list, "count": len(list)})
}

// GetAuthor handles GET /api/authors/:id
func (ac *AuthorsController) GetAuthor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	author, err := ac.authors.GetAuthorByID(c.Request.Context(), id)
	if err != nil {
		respondLookupError(c, err, "author")
		return
	}
	c.JSON(http.StatusOK, author)
}

// GetAuthorArticles handles GET /api/authors/:id/articles
func (ac *AuthorsController) GetAuthorArticles(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := ac.authors.GetAuthorByID(c.Request.Context(), id); err != nil {
		respondLookupError(c, err, "author")
		return
	}

	list, err := ac.articles.GetArticlesForAuthor(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "list author articles")
		return
	}
	if list == nil {
		list = []entities.Article{}
	}
	c.JSON(http.StatusOK, gin.H{"articles": list, "count": len(list)})
}
