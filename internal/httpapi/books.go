package httpapi

import (
	"net/http"
	"strings"

	"github.com/blackwell-systems/booklog/internal/catalog"
	"github.com/blackwell-systems/booklog/internal/cover"
	"github.com/blackwell-systems/booklog/internal/form"
	"github.com/gin-gonic/gin"
)

func (s *Server) registerBooks(rg *gin.RouterGroup) {
	rg.GET("/books", s.listBooks)
	rg.POST("/books", s.createBook)
	rg.GET("/books/:id", s.getBook)
	rg.PUT("/books/:id", s.updateBook)
	rg.DELETE("/books/:id", s.deleteBook)
}

// listBooks answers GET /api/books?q=&sort=&min_rating= with a JSON array.
func (s *Server) listBooks(c *gin.Context) {
	sortKey := s.sort
	if raw := c.Query("sort"); raw != "" {
		k, err := catalog.ParseSortKey(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		sortKey = k
	}
	minRating, err := catalog.ParseMinRating(c.Query("min_rating"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	books, err := s.books.List(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}

	view := catalog.View{Query: c.Query("q"), MinRating: minRating, Sort: sortKey, Locale: s.locale}
	c.JSON(http.StatusOK, view.Apply(books))
}

func (s *Server) getBook(c *gin.Context) {
	b, err := s.books.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func bindInput(c *gin.Context) (form.Input, bool) {
	var in form.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return form.Input{}, false
	}
	return in, true
}

func (s *Server) createBook(c *gin.Context) {
	in, ok := bindInput(c)
	if !ok {
		return
	}
	fields, err := form.Validate(in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	b, err := s.books.Create(c.Request.Context(), fields)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// updateBook replaces every editable field with the request body.
func (s *Server) updateBook(c *gin.Context) {
	in, ok := bindInput(c)
	if !ok {
		return
	}
	fields, err := form.Validate(in)
	if err != nil {
		s.writeError(c, err)
		return
	}

	b, err := s.books.Update(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// deleteBook is idempotent: a missing id is still 204.
func (s *Server) deleteBook(c *gin.Context) {
	if _, err := s.books.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// getCover answers GET /api/covers/:isbn?size= with the cover URL, or
// 404 when the catalog has no real cover.
func (s *Server) getCover(c *gin.Context) {
	isbn := strings.TrimSpace(c.Param("isbn"))
	size, err := cover.ParseSize(c.DefaultQuery("size", string(cover.DefaultSize)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	url, found := s.covers.ResolveSize(c.Request.Context(), isbn, size)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "no cover for this isbn"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"isbn": isbn, "size": size, "url": url})
}
