package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/teacherhub/quiz-service/internal/events"
	"github.com/teacherhub/quiz-service/internal/models"
	"github.com/teacherhub/quiz-service/internal/repositories"
	"github.com/teacherhub/quiz-service/internal/validator"
	"gorm.io/gorm"
)

type CourseService interface {
	// Core CRUD operations
	Create(ctx context.Context, req *CreateCourseRequest, teacherID string) (*models.Course, error)
	GetByID(ctx context.Context, id string, userID string) (*models.Course, error)
	Update(ctx context.Context, id string, req *UpdateCourseRequest, userID string) (*models.Course, error)
	Archive(ctx context.Context, id string, userID string) error
	Delete(ctx context.Context, id string, userID string) error
	List(ctx context.Context, userID string, filters repositories.CourseFilters) ([]*models.Course, int64, error)
	GetStats(ctx context.Context, id string, userID string) (*repositories.CourseStats, error)

	// Sharing
	Share(ctx context.Context, courseID, targetUserID, userID string) error
	Unshare(ctx context.Context, courseID, targetUserID, userID string) error
	ListShares(ctx context.Context, courseID, userID string) ([]*models.CourseShare, error)

	// Roster
	ListStudents(ctx context.Context, courseID, userID string) ([]*models.CourseStudent, error)
	RemoveStudent(ctx context.Context, courseID, studentID, userID string) error

	// Permission checks
	CanAccess(ctx context.Context, courseID, userID string) (bool, error)
}

type CreateCourseRequest struct {
	Name        string     `json:"name" validate:"required,min=1,max=200"`
	Description string     `json:"description" validate:"omitempty,max=1000"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

type UpdateCourseRequest struct {
	Name        *string              `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string              `json:"description" validate:"omitempty,max=1000"`
	Status      *models.CourseStatus `json:"status" validate:"omitempty,course_status"`
	StartDate   *time.Time           `json:"start_date"`
	EndDate     *time.Time           `json:"end_date"`
}

type courseService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewCourseService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) CourseService {
	return &courseService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *courseService) Create(ctx context.Context, req *CreateCourseRequest, teacherID string) (*models.Course, error) {
	s.logger.Info("Creating course", "teacher_id", teacherID, "name", req.Name)

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, validator.ToValidationErrors(err)
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, NewValidationError("end_date", "must not be before start date", req.EndDate)
	}

	course := &models.Course{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Status:      models.CourseActive,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		TeacherID:   teacherID,
	}

	if err := s.repo.Course().Create(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.logger.Info("Course created", "course_id", course.ID)
	return course, nil
}

func (s *courseService) GetByID(ctx context.Context, id string, userID string) (*models.Course, error) {
	if err := s.ensureAccess(ctx, id, userID, "read"); err != nil {
		return nil, err
	}

	course, err := s.repo.Course().GetByIDWithDetails(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to load course: %w", err)
	}
	return course, nil
}

func (s *courseService) Update(ctx context.Context, id string, req *UpdateCourseRequest, userID string) (*models.Course, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, validator.ToValidationErrors(err)
	}
	if err := s.ensureOwner(ctx, id, userID, "update"); err != nil {
		return nil, err
	}

	course, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		course.Name = *req.Name
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Status != nil {
		course.Status = *req.Status
	}
	if req.StartDate != nil {
		course.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		course.EndDate = req.EndDate
	}

	if err := s.repo.Course().Update(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}
	return course, nil
}

func (s *courseService) Archive(ctx context.Context, id string, userID string) error {
	if err := s.ensureOwner(ctx, id, userID, "archive"); err != nil {
		return err
	}
	course, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}
	course.Status = models.CourseArchived
	return s.repo.Course().Update(ctx, course)
}

func (s *courseService) Delete(ctx context.Context, id string, userID string) error {
	if err := s.ensureOwner(ctx, id, userID, "delete"); err != nil {
		return err
	}
	s.logger.Info("Deleting course", "course_id", id, "user_id", userID)
	return s.repo.Course().Delete(ctx, id)
}

func (s *courseService) List(ctx context.Context, userID string, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	return s.repo.Course().GetByTeacher(ctx, userID, filters)
}

func (s *courseService) GetStats(ctx context.Context, id string, userID string) (*repositories.CourseStats, error) {
	if err := s.ensureAccess(ctx, id, userID, "view stats"); err != nil {
		return nil, err
	}
	return s.repo.Course().GetStats(ctx, id)
}

// ===== SHARING =====

func (s *courseService) Share(ctx context.Context, courseID, targetUserID, userID string) error {
	if err := s.ensureOwner(ctx, courseID, userID, "share"); err != nil {
		return err
	}
	if targetUserID == userID {
		return ErrCannotShareToSelf
	}

	if _, err := s.repo.User().GetByID(ctx, targetUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	share := &models.CourseShare{
		CourseID: courseID,
		UserID:   targetUserID,
		SharedBy: userID,
	}
	if err := s.repo.Course().Share(ctx, share); err != nil {
		return err
	}

	if err := s.publisher.PublishQuizEvent(ctx, events.NewCourseSharedEvent(courseID, userID, targetUserID)); err != nil {
		s.logger.Warn("Failed to publish course shared event", "course_id", courseID, "error", err)
	}

	s.logger.Info("Course shared", "course_id", courseID, "shared_by", userID, "shared_to", targetUserID)
	return nil
}

func (s *courseService) Unshare(ctx context.Context, courseID, targetUserID, userID string) error {
	if err := s.ensureOwner(ctx, courseID, userID, "unshare"); err != nil {
		return err
	}
	return s.repo.Course().Unshare(ctx, courseID, targetUserID)
}

func (s *courseService) ListShares(ctx context.Context, courseID, userID string) ([]*models.CourseShare, error) {
	if err := s.ensureOwner(ctx, courseID, userID, "list shares"); err != nil {
		return nil, err
	}
	return s.repo.Course().ListShares(ctx, courseID)
}

// ===== ROSTER =====

func (s *courseService) ListStudents(ctx context.Context, courseID, userID string) ([]*models.CourseStudent, error) {
	if err := s.ensureAccess(ctx, courseID, userID, "list students"); err != nil {
		return nil, err
	}
	return s.repo.Course().ListEnrollments(ctx, courseID)
}

func (s *courseService) RemoveStudent(ctx context.Context, courseID, studentID, userID string) error {
	if err := s.ensureOwner(ctx, courseID, userID, "remove student"); err != nil {
		return err
	}
	return s.repo.Course().Unenroll(ctx, courseID, studentID)
}

// ===== PERMISSION HELPERS =====

func (s *courseService) CanAccess(ctx context.Context, courseID, userID string) (bool, error) {
	return s.repo.Course().CanAccess(ctx, courseID, userID)
}

func (s *courseService) ensureOwner(ctx context.Context, courseID, userID, action string) error {
	owner, err := s.repo.Course().IsOwner(ctx, courseID, userID)
	if err != nil {
		return fmt.Errorf("permission check failed: %w", err)
	}
	if !owner {
		return NewPermissionError(userID, courseID, "course", action, "not the course owner")
	}
	return nil
}

func (s *courseService) ensureAccess(ctx context.Context, courseID, userID, action string) error {
	canAccess, err := s.repo.Course().CanAccess(ctx, courseID, userID)
	if err != nil {
		return fmt.Errorf("permission check failed: %w", err)
	}
	if !canAccess {
		return NewPermissionError(userID, courseID, "course", action, "not owner and course not shared")
	}
	return nil
}
