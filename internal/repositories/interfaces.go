package repositories

import (
	"context"
	"time"

	"github.com/teacherhub/quiz-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type CourseFilters struct {
	Status    *models.CourseStatus `json:"status"`
	TeacherID string               `json:"teacher_id"`
	Search    string               `json:"search"`
	Limit     int                  `json:"limit"`
	Offset    int                  `json:"offset"`
	SortBy    string               `json:"sort_by"`    // "created_at", "name", "start_date"
	SortOrder string               `json:"sort_order"` // "asc", "desc"
}

type QuizFilters struct {
	Status    *models.QuizStatus `json:"status"`
	CourseID  string             `json:"course_id"`
	CreatedBy string             `json:"created_by"`
	Search    string             `json:"search"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
	SortBy    string             `json:"sort_by"`
	SortOrder string             `json:"sort_order"`
}

// ===== SHARED STATISTICS STRUCTS =====

type CourseStats struct {
	StudentCount   int     `json:"student_count"`
	QuizCount      int     `json:"quiz_count"`
	AverageScore   float64 `json:"average_score"`
	CompletionRate float64 `json:"completion_rate"`
}

// ===== REPOSITORY INTERFACES =====

// CourseRepository interface for course and enrollment operations
type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id string) (*models.Course, error)
	GetByIDWithDetails(ctx context.Context, id string) (*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, filters CourseFilters) ([]*models.Course, int64, error)
	GetByTeacher(ctx context.Context, teacherID string, filters CourseFilters) ([]*models.Course, int64, error)

	// GetStats computes the course overview counters: roster size, quiz
	// count, average correct rate and completion rate.
	GetStats(ctx context.Context, courseID string) (*CourseStats, error)

	// Permission checks
	IsOwner(ctx context.Context, courseID, userID string) (bool, error)
	CanAccess(ctx context.Context, courseID, userID string) (bool, error)

	// Sharing
	Share(ctx context.Context, share *models.CourseShare) error
	Unshare(ctx context.Context, courseID, userID string) error
	ListShares(ctx context.Context, courseID string) ([]*models.CourseShare, error)

	// Enrollment
	Enroll(ctx context.Context, enrollment *models.CourseStudent) error
	EnrollBatch(ctx context.Context, enrollments []*models.CourseStudent) error
	Unenroll(ctx context.Context, courseID, studentID string) error
	ListEnrollments(ctx context.Context, courseID string) ([]*models.CourseStudent, error)
	CountEnrollments(ctx context.Context, courseID string) (int64, error)
}

// StudentRepository interface for roster operations
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id string) (*models.Student, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.Student, error)
	// UpsertByExternalID inserts the student or refreshes name and email of
	// an existing row keyed by the external roster id.
	UpsertByExternalID(ctx context.Context, student *models.Student) error
	ListByCourse(ctx context.Context, courseID string) ([]*models.Student, error)
}

// QuizRepository interface for quiz operations
type QuizRepository interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	GetByID(ctx context.Context, id string) (*models.Quiz, error)
	GetByAccessCode(ctx context.Context, code string) (*models.Quiz, error)
	Update(ctx context.Context, quiz *models.Quiz) error
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, filters QuizFilters) ([]*models.Quiz, int64, error)
	ListByCourse(ctx context.Context, courseID string) ([]*models.Quiz, error)

	UpdateStatus(ctx context.Context, id string, status models.QuizStatus) error
	IsOwner(ctx context.Context, quizID, userID string) (bool, error)
}

// AnswerRepository interface for submitted quiz answers
type AnswerRepository interface {
	// SaveBatch persists one student's graded answers in a single
	// transaction. A student who already submitted gets ErrDuplicateKey
	// surfaced from the unique index.
	SaveBatch(ctx context.Context, answers []*models.QuizAnswer) error

	ListByQuiz(ctx context.Context, quizID string) ([]*models.QuizAnswer, error)
	ListByCourse(ctx context.Context, courseID string) ([]*models.QuizAnswer, error)
	HasSubmission(ctx context.Context, quizID, studentID string) (bool, error)
	CountSubmissions(ctx context.Context, quizID string) (int64, error)

	// CountActiveStudents counts distinct students with answers in a
	// course since the given time.
	CountActiveStudents(ctx context.Context, courseID string, since time.Time) (int64, error)
}

// FeedbackRepository interface for imported quiz feedback
type FeedbackRepository interface {
	CreateBatch(ctx context.Context, imports []*models.FeedbackImport) error
	ListByQuiz(ctx context.Context, quizID string) ([]*models.FeedbackImport, error)
	ListByCourse(ctx context.Context, courseID string) ([]*models.FeedbackImport, error)
	DeleteByQuiz(ctx context.Context, quizID string) error
}

// UserRepository interface for teacher accounts
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) error
}

// Repository aggregates all repositories behind one handle
type Repository interface {
	Course() CourseRepository
	Student() StudentRepository
	Quiz() QuizRepository
	Answer() AnswerRepository
	Feedback() FeedbackRepository
	User() UserRepository

	// WithTransaction runs fn with a Repository bound to one transaction.
	WithTransaction(ctx context.Context, fn func(Repository) error) error
}
