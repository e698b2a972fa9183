package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/harentsoaR/docbook-api/internal/middleware"
	"github.com/harentsoaR/docbook-api/internal/services"
	"github.com/harentsoaR/docbook-api/internal/store"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds everything the HTTP layer needs. Handlers only translate
// between HTTP and the services; no business rule lives here.
type Handler struct {
	Services *services.Services
	Images   store.ImageStore
	DB       Pinger
	Log      logrus.FieldLogger
}

func NewHandler(svc *services.Services, images store.ImageStore, db Pinger, log logrus.FieldLogger) *Handler {
	return &Handler{
		Services: svc,
		Images:   images,
		DB:       db,
		Log:      log,
	}
}

func statusFor(kind services.ErrorKind) int {
	switch kind {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindConflict, services.KindUnavailable:
		return http.StatusConflict
	case services.KindNotConfigured:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as a {success:false} envelope. Errors the services did not
// classify are logged and hidden behind a generic message.
func (h *Handler) fail(c *gin.Context, err error) {
	if e, ok := services.AsError(err); ok {
		c.JSON(statusFor(e.Kind), gin.H{"success": false, "message": e.Message})
		return
	}

	_ = c.Error(err)
	h.Log.WithError(err).WithFields(logrus.Fields{
		"request_id": c.GetString(middleware.RequestIDKey),
		"path":       c.FullPath(),
	}).Error("Unhandled error")
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Something went wrong, please try again"})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": message})
}

// Health pings the database.
func (h *Handler) Health(c *gin.Context) {
	if err := h.DB.Ping(c.Request.Context()); err != nil {
		h.Log.WithError(err).Warn("Health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
