package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/docbook-api/internal/services"
	"github.com/harentsoaR/docbook-api/internal/store"
)

const (
	imageField    = "image"
	maxImageBytes = 5 << 20
	imagePath     = "/api/images/"
)

// saveUploadedImage stores the optional image file of a multipart request
// and returns the URL it is served from, or "" when no file was sent.
func (h *Handler) saveUploadedImage(c *gin.Context) (string, error) {
	fh, err := c.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", &services.Error{Kind: services.KindValidation, Message: "Invalid image upload", Cause: err}
	}
	if fh.Size > maxImageBytes {
		return "", &services.Error{Kind: services.KindValidation, Message: "Image must be 5MB or smaller"}
	}
	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", &services.Error{Kind: services.KindValidation, Message: "Only image uploads are allowed"}
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	id, err := h.Images.SaveImage(c.Request.Context(), fh.Filename, contentType, f)
	if err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	return imagePath + id, nil
}

// discardImage removes an image saved earlier in a request that then failed.
func (h *Handler) discardImage(c *gin.Context, url string) {
	id, ok := strings.CutPrefix(url, imagePath)
	if !ok || id == "" {
		return
	}
	if err := h.Images.DeleteImage(c.Request.Context(), id); err != nil {
		h.Log.WithError(err).WithField("image_id", id).Warn("Failed to delete orphaned image")
	}
}

// GetImage streams a stored profile picture.
func (h *Handler) GetImage(c *gin.Context) {
	img, err := h.Images.OpenImage(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Image not found"})
			return
		}
		h.fail(c, err)
		return
	}
	defer img.Body.Close()

	c.Header("Cache-Control", "public, max-age=86400")
	c.DataFromReader(http.StatusOK, img.Size, img.ContentType, img.Body, nil)
}
