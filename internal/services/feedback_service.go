package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/teacherhub/quiz-service/internal/events"
	"github.com/teacherhub/quiz-service/internal/models"
	"github.com/teacherhub/quiz-service/internal/repositories"
	"github.com/teacherhub/quiz-service/internal/stats"
	"gorm.io/gorm"
)

type FeedbackService interface {
	// ImportFeedback replaces the quiz's imported feedback with the given
	// records. Re-importing is how teachers refresh survey data, so the
	// operation is a full swap, not an append.
	ImportFeedback(ctx context.Context, req *ImportFeedbackRequest, userID string) (*ImportFeedbackResult, error)

	GetImportedFeedback(ctx context.Context, quizID, userID string) ([]stats.FeedbackRecord, error)
	GetCorrelations(ctx context.Context, quizID, userID string) (*CorrelationResponse, error)
}

type ImportFeedbackRequest struct {
	QuizID  string                  `json:"quiz_id" validate:"required"`
	Records []FeedbackRecordRequest `json:"records" validate:"required,min=1,dive"`
}

type FeedbackRecordRequest struct {
	StudentID string             `json:"student_id"`
	Ratings   map[string]float64 `json:"rating_field"`
	Open      map[string]string  `json:"open_field"`
}

type ImportFeedbackResult struct {
	QuizID        string `json:"quiz_id"`
	ImportedCount int    `json:"imported_count"`
}

type CorrelationResponse struct {
	Matrix   stats.CorrelationMatrix     `json:"matrix"`
	Averages map[string]stats.RatingStat `json:"averages"`
	Records  int                         `json:"records"`
}

type feedbackService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	publisher events.EventPublisher
	analytics CacheInvalidator
}

func NewFeedbackService(repo repositories.Repository, logger *slog.Logger, publisher events.EventPublisher, analytics CacheInvalidator) FeedbackService {
	return &feedbackService{
		repo:      repo,
		logger:    logger,
		publisher: publisher,
		analytics: analytics,
	}
}

func (s *feedbackService) ImportFeedback(ctx context.Context, req *ImportFeedbackRequest, userID string) (*ImportFeedbackResult, error) {
	quiz, err := s.quizChecked(ctx, req.QuizID, userID, "import feedback")
	if err != nil {
		return nil, err
	}
	if len(req.Records) == 0 {
		return nil, ErrImportEmpty
	}

	now := time.Now()
	imports := make([]*models.FeedbackImport, 0, len(req.Records))
	for _, rec := range req.Records {
		ratings, err := json.Marshal(rec.Ratings)
		if err != nil {
			return nil, fmt.Errorf("failed to encode ratings: %w", err)
		}
		open, err := json.Marshal(rec.Open)
		if err != nil {
			return nil, fmt.Errorf("failed to encode open responses: %w", err)
		}
		imports = append(imports, &models.FeedbackImport{
			QuizID:      quiz.ID,
			CourseID:    quiz.CourseID,
			StudentID:   rec.StudentID,
			RatingField: ratings,
			OpenField:   open,
			ImportedAt:  now,
		})
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Feedback().DeleteByQuiz(ctx, quiz.ID); err != nil {
			return fmt.Errorf("failed to clear previous import: %w", err)
		}
		return tx.Feedback().CreateBatch(ctx, imports)
	})
	if err != nil {
		return nil, err
	}

	event := events.NewFeedbackImportedEvent(quiz.ID, quiz.CourseID, userID, len(imports))
	if err := s.publisher.PublishQuizEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish feedback imported event", "quiz_id", quiz.ID, "error", err)
	}

	if err := s.analytics.InvalidateCourse(ctx, quiz.CourseID); err != nil {
		s.logger.Warn("Failed to invalidate course analytics", "course_id", quiz.CourseID, "error", err)
	}

	s.logger.Info("Feedback imported", "quiz_id", quiz.ID, "records", len(imports))
	return &ImportFeedbackResult{QuizID: quiz.ID, ImportedCount: len(imports)}, nil
}

func (s *feedbackService) GetImportedFeedback(ctx context.Context, quizID, userID string) ([]stats.FeedbackRecord, error) {
	if _, err := s.quizChecked(ctx, quizID, userID, "read feedback"); err != nil {
		return nil, err
	}

	imports, err := s.repo.Feedback().ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback: %w", err)
	}
	return feedbackRecords(imports), nil
}

func (s *feedbackService) GetCorrelations(ctx context.Context, quizID, userID string) (*CorrelationResponse, error) {
	records, err := s.GetImportedFeedback(ctx, quizID, userID)
	if err != nil {
		return nil, err
	}

	return &CorrelationResponse{
		Matrix:   stats.Correlations(records),
		Averages: stats.RatingAverages(records),
		Records:  len(records),
	}, nil
}

func (s *feedbackService) quizChecked(ctx context.Context, quizID, userID, action string) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}

	canAccess, err := s.repo.Course().CanAccess(ctx, quiz.CourseID, userID)
	if err != nil {
		return nil, fmt.Errorf("permission check failed: %w", err)
	}
	if !canAccess {
		return nil, NewPermissionError(userID, quizID, "quiz", action, "no access to course")
	}
	return quiz, nil
}

// feedbackRecords converts stored imports into the engine's record shape,
// dropping non-numeric rating entries along the way.
func feedbackRecords(imports []*models.FeedbackImport) []stats.FeedbackRecord {
	records := make([]stats.FeedbackRecord, 0, len(imports))
	for _, imp := range imports {
		records = append(records, stats.FeedbackRecord{
			StudentID: imp.StudentID,
			Ratings:   imp.Ratings(),
			Open:      imp.OpenResponses(),
			CreatedAt: imp.ImportedAt,
		})
	}
	return records
}
