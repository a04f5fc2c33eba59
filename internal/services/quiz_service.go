package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/teacherhub/quiz-service/internal/events"
	"github.com/teacherhub/quiz-service/internal/models"
	"github.com/teacherhub/quiz-service/internal/repositories"
	"github.com/teacherhub/quiz-service/internal/validator"
	"gorm.io/gorm"
)

type QuizService interface {
	// Core CRUD operations
	Create(ctx context.Context, req *CreateQuizRequest, creatorID string) (*models.Quiz, error)
	GetByID(ctx context.Context, id string, userID string) (*models.Quiz, error)
	Update(ctx context.Context, id string, req *UpdateQuizRequest, userID string) (*models.Quiz, error)
	Delete(ctx context.Context, id string, userID string) error
	List(ctx context.Context, userID string, filters repositories.QuizFilters) ([]*models.Quiz, int64, error)

	// Status management
	Publish(ctx context.Context, id string, userID string) (*models.Quiz, error)
	Archive(ctx context.Context, id string, userID string) error

	// Student entry point: no auth, the access code is the credential.
	GetByAccessCode(ctx context.Context, code string) (*models.Quiz, error)
}

type CreateQuizRequest struct {
	CourseID    string            `json:"course_id" validate:"required"`
	Title       string            `json:"title" validate:"required,min=1,max=200"`
	Topic       string            `json:"topic" validate:"omitempty,max=100"`
	Description string            `json:"description" validate:"omitempty,max=1000"`
	Questions   []models.Question `json:"questions" validate:"omitempty,dive"`
	DueDate     *time.Time        `json:"due_date"`
}

type UpdateQuizRequest struct {
	Title       *string           `json:"title" validate:"omitempty,min=1,max=200"`
	Topic       *string           `json:"topic" validate:"omitempty,max=100"`
	Description *string           `json:"description" validate:"omitempty,max=1000"`
	Questions   []models.Question `json:"questions" validate:"omitempty,dive"`
	DueDate     *time.Time        `json:"due_date"`
}

type quizService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewQuizService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) QuizService {
	return &quizService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *quizService) Create(ctx context.Context, req *CreateQuizRequest, creatorID string) (*models.Quiz, error) {
	s.logger.Info("Creating quiz", "creator_id", creatorID, "course_id", req.CourseID, "title", req.Title)

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, validator.ToValidationErrors(err)
	}
	if len(req.Questions) > 0 {
		if err := s.validator.Question().ValidateBatch(req.Questions); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err)
		}
	}

	canAccess, err := s.repo.Course().CanAccess(ctx, req.CourseID, creatorID)
	if err != nil {
		return nil, fmt.Errorf("permission check failed: %w", err)
	}
	if !canAccess {
		return nil, NewPermissionError(creatorID, req.CourseID, "course", "create quiz", "no access to course")
	}

	quiz := &models.Quiz{
		ID:          uuid.NewString(),
		CourseID:    req.CourseID,
		Title:       req.Title,
		Topic:       req.Topic,
		Description: req.Description,
		Status:      models.QuizDraft,
		DueDate:     req.DueDate,
		CreatedBy:   creatorID,
	}
	if err := quiz.SetQuestions(req.Questions); err != nil {
		return nil, fmt.Errorf("failed to encode questions: %w", err)
	}

	if err := s.repo.Quiz().Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	s.logger.Info("Quiz created", "quiz_id", quiz.ID)
	return quiz, nil
}

func (s *quizService) GetByID(ctx context.Context, id string, userID string) (*models.Quiz, error) {
	quiz, err := s.getQuizChecked(ctx, id, userID, "read")
	if err != nil {
		return nil, err
	}

	count, err := s.repo.Answer().CountSubmissions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}
	quiz.SubmissionCount = int(count)
	return quiz, nil
}

func (s *quizService) Update(ctx context.Context, id string, req *UpdateQuizRequest, userID string) (*models.Quiz, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, validator.ToValidationErrors(err)
	}

	quiz, err := s.getQuizChecked(ctx, id, userID, "update")
	if err != nil {
		return nil, err
	}
	if quiz.Status == models.QuizArchived {
		return nil, ErrQuizNotEditable
	}

	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.Topic != nil {
		quiz.Topic = *req.Topic
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}
	if req.DueDate != nil {
		quiz.DueDate = req.DueDate
	}
	if req.Questions != nil {
		if err := s.validator.Question().ValidateBatch(req.Questions); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err)
		}
		if err := quiz.SetQuestions(req.Questions); err != nil {
			return nil, fmt.Errorf("failed to encode questions: %w", err)
		}
	}

	if err := s.repo.Quiz().Update(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to update quiz: %w", err)
	}
	return quiz, nil
}

func (s *quizService) Delete(ctx context.Context, id string, userID string) error {
	if _, err := s.getQuizChecked(ctx, id, userID, "delete"); err != nil {
		return err
	}
	s.logger.Info("Deleting quiz", "quiz_id", id, "user_id", userID)
	return s.repo.Quiz().Delete(ctx, id)
}

func (s *quizService) List(ctx context.Context, userID string, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	if filters.CourseID != "" {
		canAccess, err := s.repo.Course().CanAccess(ctx, filters.CourseID, userID)
		if err != nil {
			return nil, 0, fmt.Errorf("permission check failed: %w", err)
		}
		if !canAccess {
			return nil, 0, NewPermissionError(userID, filters.CourseID, "course", "list quizzes", "no access to course")
		}
	} else {
		filters.CreatedBy = userID
	}
	return s.repo.Quiz().List(ctx, filters)
}

// ===== STATUS MANAGEMENT =====

// Publish moves a draft quiz to active and issues its access code.
func (s *quizService) Publish(ctx context.Context, id string, userID string) (*models.Quiz, error) {
	quiz, err := s.getQuizChecked(ctx, id, userID, "publish")
	if err != nil {
		return nil, err
	}
	if quiz.Status != models.QuizDraft {
		return nil, ErrQuizInvalidStatus
	}

	questions, err := quiz.QuestionList()
	if err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: cannot publish a quiz without questions", ErrValidationFailed)
	}

	code, err := generateAccessCode(6)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access code: %w", err)
	}

	quiz.Status = models.QuizActive
	quiz.AccessCode = code
	if err := s.repo.Quiz().Update(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to publish quiz: %w", err)
	}

	event := events.NewQuizPublishedEvent(quiz.ID, quiz.Title, quiz.CourseID, quiz.AccessCode, quiz.DueDate, quiz.CreatedBy)
	if err := s.publisher.PublishQuizEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish quiz published event", "quiz_id", quiz.ID, "error", err)
	}

	s.logger.Info("Quiz published", "quiz_id", quiz.ID, "access_code", quiz.AccessCode)
	return quiz, nil
}

func (s *quizService) Archive(ctx context.Context, id string, userID string) error {
	quiz, err := s.getQuizChecked(ctx, id, userID, "archive")
	if err != nil {
		return err
	}
	if quiz.Status == models.QuizArchived {
		return nil
	}

	if err := s.repo.Quiz().UpdateStatus(ctx, id, models.QuizArchived); err != nil {
		return err
	}

	event := events.NewQuizArchivedEvent(quiz.ID, quiz.Title, quiz.CourseID)
	if err := s.publisher.PublishQuizEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish quiz archived event", "quiz_id", quiz.ID, "error", err)
	}
	return nil
}

func (s *quizService) GetByAccessCode(ctx context.Context, code string) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByAccessCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	if quiz.DueDate != nil && quiz.DueDate.Before(time.Now()) {
		return nil, ErrQuizNotActive
	}
	return quiz, nil
}

// ===== HELPERS =====

func (s *quizService) getQuizChecked(ctx context.Context, id, userID, action string) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, id)
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
		return nil, NewPermissionError(userID, id, "quiz", action, "no access to course")
	}
	return quiz, nil
}

const accessCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generateAccessCode draws n characters from an alphabet without the
// lookalikes 0/O and 1/I.
func generateAccessCode(n int) (string, error) {
	code := make([]byte, n)
	max := big.NewInt(int64(len(accessCodeAlphabet)))
	for i := range code {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = accessCodeAlphabet[idx.Int64()]
	}
	return string(code), nil
}
