package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/teacherhub/quiz-service/internal/models"
	"github.com/teacherhub/quiz-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CoursePostgreSQL struct {
	db *gorm.DB
}

func NewCoursePostgreSQL(db *gorm.DB) repositories.CourseRepository {
	return &CoursePostgreSQL{db: db}
}

func (c *CoursePostgreSQL) Create(ctx context.Context, course *models.Course) error {
	if course.Status == "" {
		course.Status = models.CourseActive
	}
	if err := c.db.WithContext(ctx).Create(course).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

func (c *CoursePostgreSQL) GetByID(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	err := c.db.WithContext(ctx).
		Preload("Teacher").
		First(&course, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// GetByIDWithDetails retrieves a course with enrollments, quizzes and shares
// plus the computed roster counters.
func (c *CoursePostgreSQL) GetByIDWithDetails(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	err := c.db.WithContext(ctx).
		Preload("Teacher").
		Preload("Enrollments.Student").
		Preload("Quizzes").
		Preload("Shares").
		First(&course, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	course.StudentCount = len(course.Enrollments)
	course.QuizCount = len(course.Quizzes)
	return &course, nil
}

func (c *CoursePostgreSQL) Update(ctx context.Context, course *models.Course) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Course
		if err := tx.First(&current, "id = ?", course.ID).Error; err != nil {
			return fmt.Errorf("course not found: %w", err)
		}
		if err := tx.Save(course).Error; err != nil {
			return fmt.Errorf("failed to update course: %w", err)
		}
		return nil
	})
}

func (c *CoursePostgreSQL) Delete(ctx context.Context, id string) error {
	return c.db.WithContext(ctx).Delete(&models.Course{}, "id = ?", id).Error
}

func (c *CoursePostgreSQL) List(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	query := c.db.WithContext(ctx).Model(&models.Course{})
	query = c.applyFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, filters.Limit, filters.Offset, filters.SortBy, filters.SortOrder, map[string]bool{
		"created_at": true, "name": true, "start_date": true,
	})

	var courses []*models.Course
	if err := query.Preload("Teacher").Find(&courses).Error; err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

// GetByTeacher lists courses a teacher owns or was granted access to.
func (c *CoursePostgreSQL) GetByTeacher(ctx context.Context, teacherID string, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	query := c.db.WithContext(ctx).Model(&models.Course{}).
		Where("teacher_id = ? OR id IN (?)", teacherID,
			c.db.Model(&models.CourseShare{}).Select("course_id").Where("user_id = ?", teacherID))
	query = c.applyFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, filters.Limit, filters.Offset, filters.SortBy, filters.SortOrder, map[string]bool{
		"created_at": true, "name": true, "start_date": true,
	})

	var courses []*models.Course
	if err := query.Find(&courses).Error; err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

func (c *CoursePostgreSQL) applyFilters(query *gorm.DB, filters repositories.CourseFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	return query
}

// GetStats aggregates the course overview numbers in SQL. The average score
// is the correct rate over all stored answers; completion is the share of
// enrolled students with at least one submission.
func (c *CoursePostgreSQL) GetStats(ctx context.Context, courseID string) (*repositories.CourseStats, error) {
	stats := &repositories.CourseStats{}

	enrolled, err := c.CountEnrollments(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to count enrollments: %w", err)
	}
	stats.StudentCount = int(enrolled)

	var quizCount int64
	err = c.db.WithContext(ctx).Model(&models.Quiz{}).
		Where("course_id = ?", courseID).
		Count(&quizCount).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count quizzes: %w", err)
	}
	stats.QuizCount = int(quizCount)

	var avgScore *float64
	err = c.db.WithContext(ctx).Model(&models.QuizAnswer{}).
		Joins("JOIN teacher_quizzes ON teacher_quizzes.id = quiz_answers.quiz_id").
		Where("teacher_quizzes.course_id = ?", courseID).
		Select("AVG(CASE WHEN quiz_answers.is_correct THEN 100.0 ELSE 0.0 END)").
		Scan(&avgScore).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute average score: %w", err)
	}
	if avgScore != nil {
		stats.AverageScore = *avgScore
	}

	var submitters int64
	err = c.db.WithContext(ctx).Model(&models.QuizAnswer{}).
		Joins("JOIN teacher_quizzes ON teacher_quizzes.id = quiz_answers.quiz_id").
		Where("teacher_quizzes.course_id = ?", courseID).
		Distinct("quiz_answers.student_id").
		Count(&submitters).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count submitters: %w", err)
	}
	if enrolled > 0 {
		stats.CompletionRate = float64(submitters) / float64(enrolled) * 100
	}

	return stats, nil
}

func (c *CoursePostgreSQL) IsOwner(ctx context.Context, courseID, userID string) (bool, error) {
	var count int64
	err := c.db.WithContext(ctx).Model(&models.Course{}).
		Where("id = ? AND teacher_id = ?", courseID, userID).
		Count(&count).Error
	return count > 0, err
}

// CanAccess reports whether the user owns the course or holds a share.
func (c *CoursePostgreSQL) CanAccess(ctx context.Context, courseID, userID string) (bool, error) {
	owner, err := c.IsOwner(ctx, courseID, userID)
	if err != nil || owner {
		return owner, err
	}
	var count int64
	err = c.db.WithContext(ctx).Model(&models.CourseShare{}).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Count(&count).Error
	return count > 0, err
}

func (c *CoursePostgreSQL) Share(ctx context.Context, share *models.CourseShare) error {
	err := c.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(share).Error
	if err != nil {
		return fmt.Errorf("failed to share course: %w", err)
	}
	return nil
}

func (c *CoursePostgreSQL) Unshare(ctx context.Context, courseID, userID string) error {
	return c.db.WithContext(ctx).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Delete(&models.CourseShare{}).Error
}

func (c *CoursePostgreSQL) ListShares(ctx context.Context, courseID string) ([]*models.CourseShare, error) {
	var shares []*models.CourseShare
	err := c.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at ASC").
		Find(&shares).Error
	return shares, err
}

func (c *CoursePostgreSQL) Enroll(ctx context.Context, enrollment *models.CourseStudent) error {
	err := c.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(enrollment).Error
	if err != nil {
		return fmt.Errorf("failed to enroll student: %w", err)
	}
	return nil
}

// EnrollBatch inserts enrollments in one statement, skipping pairs that
// already exist.
func (c *CoursePostgreSQL) EnrollBatch(ctx context.Context, enrollments []*models.CourseStudent) error {
	if len(enrollments) == 0 {
		return nil
	}
	err := c.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&enrollments).Error
	if err != nil {
		return fmt.Errorf("failed to enroll students: %w", err)
	}
	return nil
}

func (c *CoursePostgreSQL) Unenroll(ctx context.Context, courseID, studentID string) error {
	result := c.db.WithContext(ctx).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		Delete(&models.CourseStudent{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("enrollment not found")
	}
	return nil
}

func (c *CoursePostgreSQL) ListEnrollments(ctx context.Context, courseID string) ([]*models.CourseStudent, error) {
	var enrollments []*models.CourseStudent
	err := c.db.WithContext(ctx).
		Preload("Student").
		Where("course_id = ?", courseID).
		Order("created_at ASC").
		Find(&enrollments).Error
	return enrollments, err
}

func (c *CoursePostgreSQL) CountEnrollments(ctx context.Context, courseID string) (int64, error) {
	var count int64
	err := c.db.WithContext(ctx).Model(&models.CourseStudent{}).
		Where("course_id = ? AND status = ?", courseID, models.EnrollmentActive).
		Count(&count).Error
	return count, err
}
