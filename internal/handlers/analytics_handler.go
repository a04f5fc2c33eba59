package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teacherhub/quiz-service/internal/services"
	"github.com/teacherhub/quiz-service/internal/utils"
)

type AnalyticsHandler struct {
	BaseHandler
	analyticsService services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService services.AnalyticsService, logger utils.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler:      NewBaseHandler(logger),
		analyticsService: analyticsService,
	}
}

// GetCourseAnalytics returns the cached course overview: enrollment,
// activity and the feedback rating summary
func (h *AnalyticsHandler) GetCourseAnalytics(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	response, err := h.analyticsService.GetCourseAnalytics(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetFeedbackTrends returns day-bucketed rating averages across the course
func (h *AnalyticsHandler) GetFeedbackTrends(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	points, err := h.analyticsService.GetFeedbackTrends(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trends": points})
}

// GetTopicPerformance returns per-topic correct rates across the course
func (h *AnalyticsHandler) GetTopicPerformance(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	topics, err := h.analyticsService.GetTopicPerformance(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"topics": topics})
}

// InvalidateCourseAnalytics drops every cached analytics entry for the
// course
func (h *AnalyticsHandler) InvalidateCourseAnalytics(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	if _, ok := h.requireUserID(c); !ok {
		return
	}

	if err := h.analyticsService.InvalidateCourse(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
