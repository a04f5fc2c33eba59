package postgres

import (
	"context"

	"github.com/teacherhub/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type postgresRepository struct {
	db *gorm.DB

	course   repositories.CourseRepository
	student  repositories.StudentRepository
	quiz     repositories.QuizRepository
	answer   repositories.AnswerRepository
	feedback repositories.FeedbackRepository
	user     repositories.UserRepository
}

// New creates the PostgreSQL-backed repository aggregate.
func New(db *gorm.DB) repositories.Repository {
	return &postgresRepository{
		db:       db,
		course:   NewCoursePostgreSQL(db),
		student:  NewStudentPostgreSQL(db),
		quiz:     NewQuizPostgreSQL(db),
		answer:   NewAnswerPostgreSQL(db),
		feedback: NewFeedbackPostgreSQL(db),
		user:     NewUserPostgreSQL(db),
	}
}

func (r *postgresRepository) Course() repositories.CourseRepository     { return r.course }
func (r *postgresRepository) Student() repositories.StudentRepository   { return r.student }
func (r *postgresRepository) Quiz() repositories.QuizRepository         { return r.quiz }
func (r *postgresRepository) Answer() repositories.AnswerRepository     { return r.answer }
func (r *postgresRepository) Feedback() repositories.FeedbackRepository { return r.feedback }
func (r *postgresRepository) User() repositories.UserRepository         { return r.user }

// WithTransaction runs fn against a Repository whose every operation is bound
// to a single database transaction.
func (r *postgresRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}
