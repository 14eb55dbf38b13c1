package catalog

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	v1 "github.com/dates-lab/dates-manager/internal/api/v1"
	httperr "github.com/dates-lab/dates-manager/internal/core/errors"
	"github.com/dates-lab/dates-manager/internal/core/storage"
)

// createRetries bounds the uid-collision retry loop on create.
const createRetries = 3

// RegisterRoutes registers the catalog CRUD routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/eventbases", s.ListHandler)
	r.POST("/v1/eventbases", s.CreateHandler)
	r.PUT("/v1/eventbases/:uid", s.UpdateHandler)
	r.DELETE("/v1/eventbases/:uid", s.DeleteHandler)
}

// ListHandler handles GET /v1/eventbases.
func (s *Service) ListHandler(c *gin.Context) {
	recs, err := s.store.ListDefinitions(c.Request.Context())
	if err != nil {
		slog.Error("[Catalog] List failed", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpPersistenceError,
			Message:   "Failed to list event definitions",
		})
		return
	}
	if recs == nil {
		recs = []*v1.EventRecord{}
	}
	c.JSON(http.StatusOK, recs)
}

// CreateHandler handles POST /v1/eventbases. The server assigns the UID
// (max of the existing catalog plus one); any UID in the body is
// ignored.
func (s *Service) CreateHandler(c *gin.Context) {
	var rec v1.EventRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   "Invalid JSON body",
			Details:   err.Error(),
		})
		return
	}

	if err := rec.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpValidationError,
			Message:   err.Error(),
		})
		return
	}

	// Assigning max+1 races with concurrent creates: the loser hits
	// ErrDuplicate and re-reads the catalog for a fresh uid.
	for attempt := 0; ; attempt++ {
		existing, err := s.store.ListDefinitions(c.Request.Context())
		if err != nil {
			slog.Error("[Catalog] Create failed listing catalog", "error", err)
			c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
				ErrorType: httperr.HttpPersistenceError,
				Message:   "Failed to assign uid",
			})
			return
		}
		rec.UID = nextUID(existing)

		err = s.store.SaveDefinition(c.Request.Context(), &rec)
		if err == nil {
			break
		}
		if errors.Is(err, storage.ErrDuplicate) {
			if attempt < createRetries {
				continue
			}
			slog.Error("[Catalog] Create kept colliding on uid", "uid", rec.UID)
			c.JSON(http.StatusConflict, httperr.ErrorResponse{
				ErrorType: httperr.HttpDuplicateError,
				Message:   "Failed to assign a free uid, retry the request",
			})
			return
		}
		slog.Error("[Catalog] Create failed", "uid", rec.UID, "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpPersistenceError,
			Message:   "Failed to save event definition",
		})
		return
	}

	slog.Info("[Catalog] Created definition", "uid", rec.UID, "title", rec.Title)
	s.recompute()
	c.JSON(http.StatusCreated, &rec)
}

// UpdateHandler handles PUT /v1/eventbases/:uid.
func (s *Service) UpdateHandler(c *gin.Context) {
	uid, ok := parseUID(c)
	if !ok {
		return
	}

	var rec v1.EventRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   "Invalid JSON body",
			Details:   err.Error(),
		})
		return
	}
	rec.UID = uid

	if err := rec.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpValidationError,
			Message:   err.Error(),
		})
		return
	}

	if err := s.store.UpdateDefinition(c.Request.Context(), &rec); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, httperr.ErrorResponse{
				ErrorType: httperr.HttpNotFoundError,
				Message:   "Unknown event definition",
			})
			return
		}
		slog.Error("[Catalog] Update failed", "uid", uid, "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpPersistenceError,
			Message:   "Failed to update event definition",
		})
		return
	}

	s.recompute()
	c.JSON(http.StatusOK, &rec)
}

// DeleteHandler handles DELETE /v1/eventbases/:uid. Stored milestones
// derived from the definition are removed by cascade.
func (s *Service) DeleteHandler(c *gin.Context) {
	uid, ok := parseUID(c)
	if !ok {
		return
	}

	if err := s.store.DeleteDefinition(c.Request.Context(), uid); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, httperr.ErrorResponse{
				ErrorType: httperr.HttpNotFoundError,
				Message:   "Unknown event definition",
			})
			return
		}
		slog.Error("[Catalog] Delete failed", "uid", uid, "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpPersistenceError,
			Message:   "Failed to delete event definition",
		})
		return
	}

	slog.Info("[Catalog] Deleted definition", "uid", uid)
	s.recompute()
	c.Status(http.StatusNoContent)
}

// parseUID reads the :uid path parameter, replying 400 on garbage.
func parseUID(c *gin.Context) (int64, bool) {
	uid, err := strconv.ParseInt(c.Param("uid"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpValidationError,
			Message:   "uid must be an integer",
		})
		return 0, false
	}
	return uid, true
}

// nextUID assigns max(existing)+1, starting at zero.
func nextUID(recs []*v1.EventRecord) int64 {
	var max int64 = -1
	for _, r := range recs {
		if r.UID > max {
			max = r.UID
		}
	}
	return max + 1
}
