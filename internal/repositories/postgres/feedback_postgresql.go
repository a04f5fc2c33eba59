package postgres

import (
	"context"
	"fmt"

	"github.com/teacherhub/quiz-service/internal/models"
	"github.com/teacherhub/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type FeedbackPostgreSQL struct {
	db *gorm.DB
}

func NewFeedbackPostgreSQL(db *gorm.DB) repositories.FeedbackRepository {
	return &FeedbackPostgreSQL{db: db}
}

func (f *FeedbackPostgreSQL) CreateBatch(ctx context.Context, imports []*models.FeedbackImport) error {
	if len(imports) == 0 {
		return nil
	}
	if err := f.db.WithContext(ctx).Create(&imports).Error; err != nil {
		return fmt.Errorf("failed to save feedback imports: %w", err)
	}
	return nil
}

func (f *FeedbackPostgreSQL) ListByQuiz(ctx context.Context, quizID string) ([]*models.FeedbackImport, error) {
	var imports []*models.FeedbackImport
	err := f.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("imported_at ASC, id ASC").
		Find(&imports).Error
	return imports, err
}

func (f *FeedbackPostgreSQL) ListByCourse(ctx context.Context, courseID string) ([]*models.FeedbackImport, error) {
	var imports []*models.FeedbackImport
	err := f.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("imported_at ASC, id ASC").
		Find(&imports).Error
	return imports, err
}

func (f *FeedbackPostgreSQL) DeleteByQuiz(ctx context.Context, quizID string) error {
	return f.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Delete(&models.FeedbackImport{}).Error
}
