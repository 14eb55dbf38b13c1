package transfer

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/dates-lab/dates-manager/internal/api/v1"
	httperr "github.com/dates-lab/dates-manager/internal/core/errors"
)

// RegisterRoutes registers the transfer routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/transfer/export", s.ExportHandler)
	r.GET("/v1/transfer/export.ics", s.ExportCalendarHandler)
	r.POST("/v1/transfer/import", s.ImportHandler)
}

// ExportHandler handles GET /v1/transfer/export.
func (s *Service) ExportHandler(c *gin.Context) {
	snap, err := s.Export(c.Request.Context())
	if err != nil {
		slog.Error("[Transfer] Export failed", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpPersistenceError,
			Message:   "Failed to export snapshot",
		})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="dates-snapshot.json"`)
	c.JSON(http.StatusOK, snap)
}

// ExportCalendarHandler handles GET /v1/transfer/export.ics.
func (s *Service) ExportCalendarHandler(c *gin.Context) {
	feed, err := s.ExportCalendar(c.Request.Context())
	if err != nil {
		slog.Error("[Transfer] Calendar export failed", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpPersistenceError,
			Message:   "Failed to export calendar",
		})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="dates.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(feed))
}

// ImportHandler handles POST /v1/transfer/import. The import is
// additive: records already present are left untouched.
func (s *Service) ImportHandler(c *gin.Context) {
	var snap v1.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   "Invalid JSON body",
			Details:   err.Error(),
		})
		return
	}

	result, err := s.Import(c.Request.Context(), &snap)
	if err != nil {
		slog.Error("[Transfer] Import failed", "error", err)
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpValidationError,
			Message:   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, result)
}
