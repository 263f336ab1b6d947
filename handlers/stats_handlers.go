package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"chatdesk/api/apperrors"
	"chatdesk/api/models"
	"chatdesk/api/store"
	"chatdesk/api/utils"
)

const statsTimeout = 10 * time.Second

// EventQuerier reads aggregates from the widget event stream.
type EventQuerier interface {
	GetEventCountsOverTime(ctx context.Context, businessID, interval string, start, end time.Time, eventType string) ([]models.TimeBucketCount, error)
	GetUniqueVisitorsOverTime(ctx context.Context, businessID, interval string, start, end time.Time) ([]models.TimeBucketCount, error)
	GetAverageResponseTime(ctx context.Context, businessID string, start, end time.Time) (float64, error)
	GetTopQuestions(ctx context.Context, businessID string, start, end time.Time, limit uint64) ([]models.TopQuestion, error)
}

// StatsHandlers serves per-business widget event statistics. A nil Events
// means event analytics is not configured and every route answers 503.
type StatsHandlers struct {
	Stores *store.Stores
	Events EventQuerier
	now    func() time.Time
}

func NewStatsHandlers(stores *store.Stores, events EventQuerier) *StatsHandlers {
	return &StatsHandlers{Stores: stores, Events: events, now: time.Now}
}

func (h *StatsHandlers) EventCounts(c *gin.Context) {
	business, start, end, ok := h.prepare(c)
	if !ok {
		return
	}
	interval, ok := intervalParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), statsTimeout)
	defer cancel()

	results, err := h.Events.GetEventCountsOverTime(ctx, business.ID, interval, start, end, c.Query("eventType"))
	if err != nil {
		respondError(c, apperrors.Persistence(err, "Failed to retrieve event statistics"))
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *StatsHandlers) UniqueVisitors(c *gin.Context) {
	business, start, end, ok := h.prepare(c)
	if !ok {
		return
	}
	interval, ok := intervalParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), statsTimeout)
	defer cancel()

	results, err := h.Events.GetUniqueVisitorsOverTime(ctx, business.ID, interval, start, end)
	if err != nil {
		respondError(c, apperrors.Persistence(err, "Failed to retrieve unique visitor statistics"))
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *StatsHandlers) ResponseTime(c *gin.Context) {
	business, start, end, ok := h.prepare(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), statsTimeout)
	defer cancel()

	avg, err := h.Events.GetAverageResponseTime(ctx, business.ID, start, end)
	if err != nil {
		respondError(c, apperrors.Persistence(err, "Failed to retrieve response time statistics"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"startDate":         start.Format(time.RFC3339),
		"endDate":           end.Format(time.RFC3339),
		"averageResponseMs": avg,
	})
}

func (h *StatsHandlers) TopQuestions(c *gin.Context) {
	business, start, end, ok := h.prepare(c)
	if !ok {
		return
	}

	var limit uint64 = 10
	if limitParam := c.Query("limit"); limitParam != "" {
		parsed, err := strconv.ParseUint(limitParam, 10, 64)
		if err != nil || parsed == 0 || parsed > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'limit' parameter. Must be an integer between 1 and 100."})
			return
		}
		limit = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), statsTimeout)
	defer cancel()

	results, err := h.Events.GetTopQuestions(ctx, business.ID, start, end, limit)
	if err != nil {
		respondError(c, apperrors.Persistence(err, "Failed to retrieve top questions"))
		return
	}
	c.JSON(http.StatusOK, results)
}

// prepare checks that analytics is enabled, the caller owns the business and
// the time range is valid.
func (h *StatsHandlers) prepare(c *gin.Context) (*models.Business, time.Time, time.Time, bool) {
	if h.Events == nil {
		respondError(c, apperrors.New(apperrors.KindUnavailable, "Event analytics is not configured"))
		return nil, time.Time{}, time.Time{}, false
	}
	business, ok := ownedBusiness(c, h.Stores)
	if !ok {
		return nil, time.Time{}, time.Time{}, false
	}
	start, end, err := utils.ParseTimeRange(c.Query("start"), c.Query("end"), h.now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, time.Time{}, time.Time{}, false
	}
	return business, start, end, true
}

func intervalParam(c *gin.Context) (string, bool) {
	interval := c.Query("interval")
	if interval == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "interval query parameter is required (e.g., 'Day', 'Hour')"})
		return "", false
	}
	if !utils.IsValidInterval(interval) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid interval. Use one of Minute, Hour, Day, Week, Month, Quarter, Year"})
		return "", false
	}
	return interval, true
}
