package postgres

import (
	"context"
	"fmt"

	"github.com/teacherhub/quiz-service/internal/models"
	"github.com/teacherhub/quiz-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StudentPostgreSQL struct {
	db *gorm.DB
}

func NewStudentPostgreSQL(db *gorm.DB) repositories.StudentRepository {
	return &StudentPostgreSQL{db: db}
}

func (s *StudentPostgreSQL) Create(ctx context.Context, student *models.Student) error {
	if err := s.db.WithContext(ctx).Create(student).Error; err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}
	return nil
}

func (s *StudentPostgreSQL) GetByID(ctx context.Context, id string) (*models.Student, error) {
	var student models.Student
	if err := s.db.WithContext(ctx).First(&student, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (s *StudentPostgreSQL) GetByExternalID(ctx context.Context, externalID string) (*models.Student, error) {
	var student models.Student
	if err := s.db.WithContext(ctx).First(&student, "external_id = ?", externalID).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

// UpsertByExternalID inserts or refreshes a roster row keyed by the external
// student id, keeping the original primary key on conflict.
func (s *StudentPostgreSQL) UpsertByExternalID(ctx context.Context, student *models.Student) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "email", "status", "updated_at"}),
		}).
		Create(student).Error
	if err != nil {
		return fmt.Errorf("failed to upsert student: %w", err)
	}

	// On conflict the insert keeps the existing row; load it back so the
	// caller sees the canonical primary key.
	var existing models.Student
	if err := s.db.WithContext(ctx).First(&existing, "external_id = ?", student.ExternalID).Error; err != nil {
		return fmt.Errorf("failed to reload student after upsert: %w", err)
	}
	*student = existing
	return nil
}

func (s *StudentPostgreSQL) ListByCourse(ctx context.Context, courseID string) ([]*models.Student, error) {
	var students []*models.Student
	err := s.db.WithContext(ctx).
		Joins("JOIN course_students ON course_students.student_id = students.id").
		Where("course_students.course_id = ?", courseID).
		Order("students.name ASC").
		Find(&students).Error
	return students, err
}
