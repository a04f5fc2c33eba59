package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/teacherhub/quiz-service/internal/cache"
	"github.com/teacherhub/quiz-service/internal/models"
	"github.com/teacherhub/quiz-service/internal/repositories"
	"github.com/teacherhub/quiz-service/internal/stats"
)

// activeWindow is how far back a quiz submission still counts a student as
// active in course analytics.
const activeWindow = 30 * 24 * time.Hour

const analyticsCacheTTL = 5 * time.Minute

// CacheInvalidator drops derived course analytics after their inputs change.
// AnalyticsService implements it; write paths hold this narrow view so a new
// submission or import never serves stale cached numbers for the TTL window.
type CacheInvalidator interface {
	InvalidateCourse(ctx context.Context, courseID string) error
}

type AnalyticsService interface {
	GetCourseAnalytics(ctx context.Context, courseID, userID string) (*CourseAnalyticsResponse, error)
	GetFeedbackTrends(ctx context.Context, courseID, userID string) ([]stats.TrendPoint, error)
	GetTopicPerformance(ctx context.Context, courseID, userID string) ([]stats.TopicStat, error)

	// InvalidateCourse drops every cached analytics entry for the course.
	InvalidateCourse(ctx context.Context, courseID string) error
}

type CourseAnalyticsResponse struct {
	CourseID          string                      `json:"course_id"`
	TotalStudents     int                         `json:"total_students"`
	ActiveStudents    int                         `json:"active_students"`
	RatingSummary     map[string]stats.RatingStat `json:"rating_summary"`
	OpenResponseCount int                         `json:"open_response_count"`
	GeneratedAt       time.Time                   `json:"generated_at"`
}

type analyticsService struct {
	repo   repositories.Repository
	logger *slog.Logger
	cache  cache.CacheService
}

func NewAnalyticsService(repo repositories.Repository, logger *slog.Logger, cacheService cache.CacheService) AnalyticsService {
	return &analyticsService{
		repo:   repo,
		logger: logger,
		cache:  cacheService,
	}
}

func (s *analyticsService) GetCourseAnalytics(ctx context.Context, courseID, userID string) (*CourseAnalyticsResponse, error) {
	if err := s.ensureAccess(ctx, courseID, userID); err != nil {
		return nil, err
	}

	key := analyticsKey(courseID, "overview")
	var cached CourseAnalyticsResponse
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	total, err := s.repo.Course().CountEnrollments(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to count enrollments: %w", err)
	}

	active, err := s.repo.Answer().CountActiveStudents(ctx, courseID, time.Now().Add(-activeWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to count active students: %w", err)
	}

	imports, err := s.repo.Feedback().ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback: %w", err)
	}
	records := feedbackRecords(imports)

	openCount := 0
	for _, rec := range records {
		openCount += len(rec.Open)
	}

	response := &CourseAnalyticsResponse{
		CourseID:          courseID,
		TotalStudents:     int(total),
		ActiveStudents:    int(active),
		RatingSummary:     stats.RatingAverages(records),
		OpenResponseCount: openCount,
		GeneratedAt:       time.Now(),
	}

	if err := s.cache.Set(ctx, key, response, analyticsCacheTTL); err != nil {
		s.logger.Warn("Failed to cache course analytics", "course_id", courseID, "error", err)
	}
	return response, nil
}

func (s *analyticsService) GetFeedbackTrends(ctx context.Context, courseID, userID string) ([]stats.TrendPoint, error) {
	if err := s.ensureAccess(ctx, courseID, userID); err != nil {
		return nil, err
	}

	key := analyticsKey(courseID, "trends")
	var cached []stats.TrendPoint
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	imports, err := s.repo.Feedback().ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback: %w", err)
	}

	points := stats.FeedbackTrends(feedbackRecords(imports))
	if err := s.cache.Set(ctx, key, points, analyticsCacheTTL); err != nil {
		s.logger.Warn("Failed to cache feedback trends", "course_id", courseID, "error", err)
	}
	return points, nil
}

func (s *analyticsService) GetTopicPerformance(ctx context.Context, courseID, userID string) ([]stats.TopicStat, error) {
	if err := s.ensureAccess(ctx, courseID, userID); err != nil {
		return nil, err
	}

	key := analyticsKey(courseID, "topics")
	var cached []stats.TopicStat
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	quizzes, err := s.repo.Quiz().ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load quizzes: %w", err)
	}
	quizQuestions, err := quizQuestionMap(quizzes)
	if err != nil {
		return nil, err
	}

	answers, err := s.repo.Answer().ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}

	topics := stats.TopicPerformance(quizQuestions, answerRows(answers))
	if err := s.cache.Set(ctx, key, topics, analyticsCacheTTL); err != nil {
		s.logger.Warn("Failed to cache topic performance", "course_id", courseID, "error", err)
	}
	return topics, nil
}

func (s *analyticsService) InvalidateCourse(ctx context.Context, courseID string) error {
	return s.cache.DeletePattern(ctx, analyticsKey(courseID, "*"))
}

func (s *analyticsService) ensureAccess(ctx context.Context, courseID, userID string) error {
	canAccess, err := s.repo.Course().CanAccess(ctx, courseID, userID)
	if err != nil {
		return fmt.Errorf("permission check failed: %w", err)
	}
	if !canAccess {
		return NewPermissionError(userID, courseID, "course", "view analytics", "not owner and course not shared")
	}
	return nil
}

func analyticsKey(courseID, section string) string {
	return fmt.Sprintf("analytics:course:%s:%s", courseID, section)
}

// quizQuestionMap decodes every quiz's question list, keyed by quiz id.
func quizQuestionMap(quizzes []*models.Quiz) (map[string][]models.Question, error) {
	result := make(map[string][]models.Question, len(quizzes))
	for _, quiz := range quizzes {
		questions, err := quiz.QuestionList()
		if err != nil {
			return nil, fmt.Errorf("failed to decode questions for quiz %s: %w", quiz.ID, err)
		}
		result[quiz.ID] = questions
	}
	return result, nil
}
