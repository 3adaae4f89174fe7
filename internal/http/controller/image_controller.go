package controller

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/hifi-storefront/internal/media"
)

// ImageSaver stores a picked image and returns its URI.
type ImageSaver interface {
	Save(ctx context.Context, r io.Reader) (string, error)
}

// ImageController handles image uploads.
type ImageController struct {
	images ImageSaver
}

// NewImageController creates a new ImageController.
func NewImageController(images ImageSaver) *ImageController {
	return &ImageController{
		images: images,
	}
}

// UploadImage handles the multipart HTTP POST request carrying the "image" file.
func (ic *ImageController) UploadImage(c *gin.Context) {
	header, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		respondError(c, media.ErrNoImage)
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	uri, err := ic.images.Save(c.Request.Context(), file)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"imageUri": uri})
}
