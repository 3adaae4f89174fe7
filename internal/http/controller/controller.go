package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/hifi-storefront/internal/media"
	"github.com/iyhunko/hifi-storefront/internal/model"
	"github.com/iyhunko/hifi-storefront/internal/repository"
	"github.com/iyhunko/hifi-storefront/internal/session"
)

// Controller handles general HTTP requests.
type Controller struct{}

// New creates a new Controller.
func New() *Controller {
	return &Controller{}
}

// Ping handles the HTTP GET request for health check endpoint.
func (con *Controller) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

// respondError writes the status and body matching err.
func respondError(c *gin.Context, err error) {
	var validationErr *model.ValidationError
	var authErr *session.AuthError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.Is(err, repository.ErrDuplicateName):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &authErr):
		c.JSON(http.StatusUnauthorized, gin.H{"error": authErr.Error()})
	case errors.Is(err, session.ErrNoSession):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
	case errors.Is(err, repository.ErrInvalidPaginationToken):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, media.ErrNoImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, media.ErrNotAnImage):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
	default:
		slog.Error("Request failed",
			slog.Any("err", err),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	}
}
