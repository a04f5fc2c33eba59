package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teacherhub/quiz-service/internal/services"
	"github.com/teacherhub/quiz-service/internal/stats"
	"github.com/teacherhub/quiz-service/internal/utils"
)

type ResultsHandler struct {
	BaseHandler
	resultsService services.ResultsService
	quizService    services.QuizService
	dataService    services.QuizDataService
	importService  services.AnswerImportService
}

func NewResultsHandler(
	resultsService services.ResultsService,
	quizService services.QuizService,
	dataService services.QuizDataService,
	importService services.AnswerImportService,
	logger utils.Logger,
) *ResultsHandler {
	return &ResultsHandler{
		BaseHandler:    NewBaseHandler(logger),
		resultsService: resultsService,
		quizService:    quizService,
		dataService:    dataService,
		importService:  importService,
	}
}

// SubmitAnswers is the unauthenticated student submission endpoint. The
// quiz is addressed by access code, never by internal id.
func (h *ResultsHandler) SubmitAnswers(c *gin.Context) {
	code := ParseStringIDParam(c, "code")
	if code == "" {
		return
	}

	var req struct {
		StudentID string                     `json:"student_id" binding:"required"`
		Answers   []services.SubmittedAnswer `json:"answers" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	quiz, err := h.quizService.GetByAccessCode(c.Request.Context(), code)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	result, err := h.resultsService.SaveAnswers(c.Request.Context(), &services.SaveAnswersRequest{
		QuizID:            quiz.ID,
		StudentExternalID: req.StudentID,
		Answers:           req.Answers,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetResults returns one page of the filtered, sorted results view plus
// class statistics
func (h *ResultsHandler) GetResults(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	response, err := h.resultsService.GetResults(c.Request.Context(), id, userID, parseResultsQuery(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetQuizStats returns only the class statistics and per-question breakdown
func (h *ResultsHandler) GetQuizStats(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	response, err := h.resultsService.GetResults(c.Request.Context(), id, userID, stats.NewResultsQuery())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":          response.Stats,
		"question_stats": response.QuestionStats,
		"question_count": response.QuestionCount,
	})
}

// GetInsights returns the derived class insights for a quiz
func (h *ResultsHandler) GetInsights(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	response, err := h.resultsService.GetInsights(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ExportResults streams the full results table as an XLSX workbook
func (h *ResultsHandler) ExportResults(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Exporting quiz results", "quiz_id", id)

	workbook, err := h.resultsService.ExportResults(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("quiz-%s-results.xlsx", id)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", workbook)
}

// ImportAnswers ingests a CSV or Excel file of bulk submissions. Each
// student's rows go through the same grade-once path as a live submission.
func (h *ResultsHandler) ImportAnswers(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing answers file",
			Details: err.Error(),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Failed to open uploaded file",
			Details: err.Error(),
		})
		return
	}
	defer file.Close()

	h.LogRequest(c, "Importing answers", "quiz_id", id, "filename", fileHeader.Filename)

	result, err := h.importService.ImportFromFile(c.Request.Context(), id, file, fileHeader.Filename, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RefreshSnapshot rebuilds the dashboard snapshot for a quiz. A refresh
// superseded by a newer one answers 409 so the client keeps the newer data.
func (h *ResultsHandler) RefreshSnapshot(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	snapshot, err := h.dataService.Refresh(c.Request.Context(), id, userID)
	if err != nil {
		if errors.Is(err, services.ErrSnapshotStale) {
			c.JSON(http.StatusConflict, ErrorResponse{Message: err.Error()})
			return
		}
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// GetSnapshot returns the current dashboard snapshot, or 404 before the
// first refresh
func (h *ResultsHandler) GetSnapshot(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	snapshot, ok, err := h.dataService.Get(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "No snapshot for quiz"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// InvalidateSnapshot drops the stored snapshot and discards any in-flight
// refresh
func (h *ResultsHandler) InvalidateSnapshot(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.dataService.Invalidate(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// parseResultsQuery builds the results view state from query parameters:
// ?search=, ?sort=, ?dir=, ?score=90-100, ?display=, and per-question
// answer filters as ?answer[q1]=A.
func parseResultsQuery(c *gin.Context) stats.ResultsQuery {
	query := stats.NewResultsQuery()

	if search := c.Query("search"); search != "" {
		query = query.WithSearch(search)
	}
	for questionID, answer := range c.QueryMap("answer") {
		answer := answer
		query = query.WithFilter(questionID, &answer)
	}
	if score := c.Query("score"); score != "" {
		query = query.WithFilter(stats.ScoreFilterKey, &score)
	}
	if sortKey := c.Query("sort"); sortKey != "" {
		query.SortKey = sortKey
		query.SortDir = stats.SortAsc
	}
	if dir := c.Query("dir"); dir == string(stats.SortDesc) {
		query.SortDir = stats.SortDesc
	}
	if display := parseIntQuery(c, "display", 0); display > 0 {
		query.DisplayCount = display
	}

	return query
}
