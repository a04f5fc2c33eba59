package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/teacherhub/quiz-service/internal/models"
	"github.com/teacherhub/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type AnswerPostgreSQL struct {
	db *gorm.DB
}

func NewAnswerPostgreSQL(db *gorm.DB) repositories.AnswerRepository {
	return &AnswerPostgreSQL{db: db}
}

// SaveBatch persists one student's graded answers atomically. The unique
// index on (quiz, student, question) rejects resubmissions.
func (a *AnswerPostgreSQL) SaveBatch(ctx context.Context, answers []*models.QuizAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&answers).Error; err != nil {
			return fmt.Errorf("failed to save answers: %w", err)
		}
		return nil
	})
}

func (a *AnswerPostgreSQL) ListByQuiz(ctx context.Context, quizID string) ([]*models.QuizAnswer, error) {
	var answers []*models.QuizAnswer
	err := a.db.WithContext(ctx).
		Preload("Student").
		Where("quiz_id = ?", quizID).
		Order("created_at ASC, id ASC").
		Find(&answers).Error
	return answers, err
}

func (a *AnswerPostgreSQL) ListByCourse(ctx context.Context, courseID string) ([]*models.QuizAnswer, error) {
	var answers []*models.QuizAnswer
	err := a.db.WithContext(ctx).
		Preload("Student").
		Joins("JOIN teacher_quizzes ON teacher_quizzes.id = quiz_answers.quiz_id").
		Where("teacher_quizzes.course_id = ?", courseID).
		Order("quiz_answers.created_at ASC, quiz_answers.id ASC").
		Find(&answers).Error
	return answers, err
}

func (a *AnswerPostgreSQL) HasSubmission(ctx context.Context, quizID, studentID string) (bool, error) {
	var count int64
	err := a.db.WithContext(ctx).Model(&models.QuizAnswer{}).
		Where("quiz_id = ? AND student_id = ?", quizID, studentID).
		Count(&count).Error
	return count > 0, err
}

func (a *AnswerPostgreSQL) CountSubmissions(ctx context.Context, quizID string) (int64, error) {
	var count int64
	err := a.db.WithContext(ctx).Model(&models.QuizAnswer{}).
		Where("quiz_id = ?", quizID).
		Distinct("student_id").
		Count(&count).Error
	return count, err
}

func (a *AnswerPostgreSQL) CountActiveStudents(ctx context.Context, courseID string, since time.Time) (int64, error) {
	var count int64
	err := a.db.WithContext(ctx).Model(&models.QuizAnswer{}).
		Joins("JOIN teacher_quizzes ON teacher_quizzes.id = quiz_answers.quiz_id").
		Where("teacher_quizzes.course_id = ? AND quiz_answers.created_at >= ?", courseID, since).
		Distinct("quiz_answers.student_id").
		Count(&count).Error
	return count, err
}
