package agenda

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	v1 "github.com/dates-lab/dates-manager/internal/api/v1"
	"github.com/dates-lab/dates-manager/internal/core/chrono"
	httperr "github.com/dates-lab/dates-manager/internal/core/errors"
	"github.com/dates-lab/dates-manager/internal/core/milestone"
	"github.com/dates-lab/dates-manager/internal/core/storage"
)

// RegisterRoutes registers view and disposition routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/agenda/day", s.viewHandler(func(s *Service) chrono.Interval { return s.intervals.Day }))
	r.GET("/v1/agenda/timeline", s.viewHandler(func(s *Service) chrono.Interval { return s.intervals.Timeline }))
	r.GET("/v1/agenda/reminders", s.RemindersHandler)
	r.GET("/v1/agenda/due", s.DueHandler)

	r.POST("/v1/milestones/:year/:uid/done", s.actionHandler(s.MarkDone))
	r.POST("/v1/milestones/:year/:uid/ignore", s.actionHandler(s.MarkIgnored))
	r.POST("/v1/milestones/:year/:uid/snooze", s.SnoozeHandler)
	r.PUT("/v1/milestones/:year/:uid/story", s.StoryHandler)
	r.DELETE("/v1/milestones/:year/:uid", s.ForgetHandler)
}

// probeDate reads the optional ?date= query (RFC 3339), defaulting to
// the service clock.
func (s *Service) probeDate(c *gin.Context) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		return s.clock().UTC(), true
	}
	date, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpValidationError,
			Message:   "date must be RFC 3339",
			Details:   err.Error(),
		})
		return time.Time{}, false
	}
	return date.UTC(), true
}

// viewHandler serves one windowed view; day and timeline differ only in
// the interval they parameterize.
func (s *Service) viewHandler(interval func(*Service) chrono.Interval) gin.HandlerFunc {
	return func(c *gin.Context) {
		date, ok := s.probeDate(c)
		if !ok {
			return
		}

		view, err := s.WindowView(c.Request.Context(), interval(s), date)
		if err != nil {
			slog.Error("[Agenda] View failed", "error", err)
			c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
				ErrorType: httperr.HttpInternalError,
				Message:   "Failed to compute view",
			})
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// RemindersHandler handles GET /v1/agenda/reminders.
func (s *Service) RemindersHandler(c *gin.Context) {
	date, ok := s.probeDate(c)
	if !ok {
		return
	}

	recs, err := s.ReminderQueue(c.Request.Context(), date)
	if err != nil {
		slog.Error("[Agenda] Reminder queue failed", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to compute reminder queue",
		})
		return
	}
	c.JSON(http.StatusOK, recs)
}

// DueHandler handles GET /v1/agenda/due: the occurrence currently
// waiting on the user, 204 when the scheduler is idle.
func (s *Service) DueHandler(c *gin.Context) {
	due := s.sched.Due()
	if due == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, v1.OccurrenceRecord(due))
}

// actionHandler wraps the done/ignore transitions, which share the
// resolve-transition-persist shape and differ only in the transition.
func (s *Service) actionHandler(action func(ctx context.Context, year int, uid int64) (*milestone.Occurrence, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		year, uid, ok := parseMilestoneKey(c)
		if !ok {
			return
		}

		occ, err := action(c.Request.Context(), year, uid)
		if err != nil {
			writeActionError(c, err)
			return
		}
		c.JSON(http.StatusOK, v1.OccurrenceRecord(occ))
	}
}

// SnoozeHandler handles POST /v1/milestones/:year/:uid/snooze. The body
// may carry {"delay": "1h"}; the default matches a one-hour re-remind.
func (s *Service) SnoozeHandler(c *gin.Context) {
	year, uid, ok := parseMilestoneKey(c)
	if !ok {
		return
	}

	var body struct {
		Delay string `json:"delay"`
	}
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   "Invalid JSON body",
			Details:   err.Error(),
		})
		return
	}

	delay := time.Hour
	if body.Delay != "" {
		parsed, err := chrono.ParseSpan(body.Delay)
		if err != nil {
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpValidationError,
				Message:   "invalid snooze delay",
				Details:   err.Error(),
			})
			return
		}
		delay = parsed
	}

	occ, err := s.Snooze(c.Request.Context(), year, uid, delay)
	if err != nil {
		writeActionError(c, err)
		return
	}
	c.JSON(http.StatusOK, v1.OccurrenceRecord(occ))
}

// StoryHandler handles PUT /v1/milestones/:year/:uid/story.
func (s *Service) StoryHandler(c *gin.Context) {
	year, uid, ok := parseMilestoneKey(c)
	if !ok {
		return
	}

	var body struct {
		Story string `json:"story"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   "Invalid JSON body",
			Details:   err.Error(),
		})
		return
	}

	occ, err := s.SetStory(c.Request.Context(), year, uid, body.Story)
	if err != nil {
		writeActionError(c, err)
		return
	}
	c.JSON(http.StatusOK, v1.OccurrenceRecord(occ))
}

// ForgetHandler handles DELETE /v1/milestones/:year/:uid.
func (s *Service) ForgetHandler(c *gin.Context) {
	year, uid, ok := parseMilestoneKey(c)
	if !ok {
		return
	}

	if err := s.Forget(c.Request.Context(), year, uid); err != nil {
		writeActionError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// parseMilestoneKey reads the :year/:uid path pair.
func parseMilestoneKey(c *gin.Context) (int, int64, bool) {
	year, errYear := strconv.Atoi(c.Param("year"))
	uid, errUID := strconv.ParseInt(c.Param("uid"), 10, 64)
	if errYear != nil || errUID != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpValidationError,
			Message:   "year and uid must be integers",
		})
		return 0, 0, false
	}
	return year, uid, true
}

// writeActionError maps service errors onto the HTTP taxonomy: unknown
// keys are 404, transitions on settled occurrences are 409, anything
// else is a persistence failure the user retries manually.
func writeActionError(c *gin.Context, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, httperr.ErrorResponse{
			ErrorType: httperr.HttpNotFoundError,
			Message:   "Unknown milestone or event definition",
		})
		return
	}
	if errors.Is(err, milestone.ErrSettled) {
		c.JSON(http.StatusConflict, httperr.ErrorResponse{
			ErrorType: httperr.HttpConflictError,
			Message:   "Milestone is settled; delete it to re-open",
		})
		return
	}
	slog.Error("[Agenda] Disposition action failed", "error", err)
	c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
		ErrorType: httperr.HttpPersistenceError,
		Message:   "Failed to apply disposition",
	})
}
