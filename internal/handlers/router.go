package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/teacherhub/quiz-service/internal/repositories"
	"github.com/teacherhub/quiz-service/internal/services"
	"github.com/teacherhub/quiz-service/internal/utils"
)

type HandlerManager struct {
	repo             repositories.Repository
	logger           utils.Logger
	courseHandler    *CourseHandler
	quizHandler      *QuizHandler
	resultsHandler   *ResultsHandler
	feedbackHandler  *FeedbackHandler
	analyticsHandler *AnalyticsHandler
}

func NewHandlerManager(
	repo repositories.Repository,
	courseService services.CourseService,
	quizService services.QuizService,
	resultsService services.ResultsService,
	feedbackService services.FeedbackService,
	analyticsService services.AnalyticsService,
	rosterService services.RosterImportService,
	dataService services.QuizDataService,
	answerImportService services.AnswerImportService,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		repo:             repo,
		logger:           logger,
		courseHandler:    NewCourseHandler(courseService, rosterService, logger),
		quizHandler:      NewQuizHandler(quizService, logger),
		resultsHandler:   NewResultsHandler(resultsService, quizService, dataService, answerImportService, logger),
		feedbackHandler:  NewFeedbackHandler(feedbackService, logger),
		analyticsHandler: NewAnalyticsHandler(analyticsService, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "quiz-service",
		})
	})

	// Student-facing routes. The access code is the only credential.
	public := router.Group("/api/v1/public")
	{
		public.GET("/quizzes/:code", hm.quizHandler.GetQuizByAccessCode)
		public.POST("/quizzes/:code/answers", hm.resultsHandler.SubmitAnswers)
	}

	// Teacher-facing routes behind authentication.
	v1 := router.Group("/api/v1")
	v1.Use(AuthMiddleware(hm.repo, hm.logger), RequireTeacher())
	{
		courses := v1.Group("/courses")
		{
			courses.POST("", hm.courseHandler.CreateCourse)
			courses.GET("", hm.courseHandler.ListCourses)
			courses.GET("/:id", hm.courseHandler.GetCourse)
			courses.PUT("/:id", hm.courseHandler.UpdateCourse)
			courses.DELETE("/:id", hm.courseHandler.DeleteCourse)
			courses.POST("/:id/archive", hm.courseHandler.ArchiveCourse)

			// Sharing
			courses.POST("/:id/share", hm.courseHandler.ShareCourse)
			courses.DELETE("/:id/share/:user_id", hm.courseHandler.UnshareCourse)
			courses.GET("/:id/shares", hm.courseHandler.ListCourseShares)

			// Roster
			courses.GET("/:id/students", hm.courseHandler.ListCourseStudents)
			courses.DELETE("/:id/students/:student_id", hm.courseHandler.RemoveCourseStudent)
			courses.POST("/:id/roster", hm.courseHandler.ImportRoster)
			courses.GET("/:id/stats", hm.courseHandler.GetCourseStats)

			// Course analytics
			courses.GET("/:id/analytics", hm.analyticsHandler.GetCourseAnalytics)
			courses.GET("/:id/analytics/trends", hm.analyticsHandler.GetFeedbackTrends)
			courses.GET("/:id/analytics/topics", hm.analyticsHandler.GetTopicPerformance)
			courses.DELETE("/:id/analytics/cache", hm.analyticsHandler.InvalidateCourseAnalytics)
		}

		quizzes := v1.Group("/quizzes")
		{
			quizzes.POST("", hm.quizHandler.CreateQuiz)
			quizzes.GET("", hm.quizHandler.ListQuizzes)
			quizzes.GET("/:id", hm.quizHandler.GetQuiz)
			quizzes.PUT("/:id", hm.quizHandler.UpdateQuiz)
			quizzes.DELETE("/:id", hm.quizHandler.DeleteQuiz)
			quizzes.POST("/:id/publish", hm.quizHandler.PublishQuiz)
			quizzes.POST("/:id/archive", hm.quizHandler.ArchiveQuiz)

			// Results view
			quizzes.GET("/:id/results", hm.resultsHandler.GetResults)
			quizzes.GET("/:id/stats", hm.resultsHandler.GetQuizStats)
			quizzes.GET("/:id/insights", hm.resultsHandler.GetInsights)
			quizzes.GET("/:id/results/export", hm.resultsHandler.ExportResults)
			quizzes.POST("/:id/answers/import", hm.resultsHandler.ImportAnswers)

			// Dashboard snapshot
			quizzes.POST("/:id/snapshot/refresh", hm.resultsHandler.RefreshSnapshot)
			quizzes.GET("/:id/snapshot", hm.resultsHandler.GetSnapshot)
			quizzes.DELETE("/:id/snapshot", hm.resultsHandler.InvalidateSnapshot)

			// Imported feedback
			quizzes.POST("/:id/feedback", hm.feedbackHandler.ImportFeedback)
			quizzes.GET("/:id/feedback", hm.feedbackHandler.GetFeedback)
			quizzes.GET("/:id/feedback/correlations", hm.feedbackHandler.GetCorrelations)
		}
	}
}
