package httpapi

import (
	"errors"
	"net/http"

	"github.com/blackwell-systems/booklog/internal/catalog"
	"github.com/blackwell-systems/booklog/internal/form"
	"github.com/gin-gonic/gin"
)

// writeError maps a repository or validation error onto a status code.
// Storage failures get a generic body; the cause goes to the log.
func (s *Server) writeError(c *gin.Context, err error) {
	var ferr *form.Error
	switch {
	case errors.As(err, &ferr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "errors": ferr.Fields})
	case errors.Is(err, catalog.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
	case errors.Is(err, catalog.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "the collection changed, reload and try again"})
	default:
		_ = c.Error(err)
		s.log.Error("request failed", "path", c.Request.URL.Path, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save or load books"})
	}
}
