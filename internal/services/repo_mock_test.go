package services

import (
	"context"
	"sync"
	"time"

	"github.com/teacherhub/quiz-service/internal/models"
	"github.com/teacherhub/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

// mockInvalidator records which courses had their analytics caches dropped.
type mockInvalidator struct {
	mu      sync.Mutex
	courses []string
}

func (m *mockInvalidator) InvalidateCourse(ctx context.Context, courseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courses = append(m.courses, courseID)
	return nil
}

func (m *mockInvalidator) invalidated() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.courses...)
}

// mockRepository backs service tests with in-memory state. Sub-repositories
// embed their interface so calls a test did not arrange panic loudly
// instead of silently returning zero values.
type mockRepository struct {
	course   *mockCourseRepo
	student  *mockStudentRepo
	quiz     *mockQuizRepo
	answer   *mockAnswerRepo
	feedback *mockFeedbackRepo
	user     *mockUserRepo
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		course: &mockCourseRepo{
			owners:      make(map[string]string),
			enrollments: make(map[string][]*models.CourseStudent),
		},
		student:  &mockStudentRepo{byExternalID: make(map[string]*models.Student)},
		quiz:     &mockQuizRepo{quizzes: make(map[string]*models.Quiz)},
		answer:   &mockAnswerRepo{},
		feedback: &mockFeedbackRepo{byQuiz: make(map[string][]*models.FeedbackImport)},
		user:     &mockUserRepo{},
	}
}

func (m *mockRepository) Course() repositories.CourseRepository     { return m.course }
func (m *mockRepository) Student() repositories.StudentRepository   { return m.student }
func (m *mockRepository) Quiz() repositories.QuizRepository         { return m.quiz }
func (m *mockRepository) Answer() repositories.AnswerRepository     { return m.answer }
func (m *mockRepository) Feedback() repositories.FeedbackRepository { return m.feedback }
func (m *mockRepository) User() repositories.UserRepository         { return m.user }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

type mockCourseRepo struct {
	repositories.CourseRepository
	owners      map[string]string // course id -> owner user id
	enrollments map[string][]*models.CourseStudent
}

func (m *mockCourseRepo) IsOwner(ctx context.Context, courseID, userID string) (bool, error) {
	return m.owners[courseID] == userID, nil
}

func (m *mockCourseRepo) CanAccess(ctx context.Context, courseID, userID string) (bool, error) {
	return m.owners[courseID] == userID, nil
}

func (m *mockCourseRepo) EnrollBatch(ctx context.Context, enrollments []*models.CourseStudent) error {
	for _, e := range enrollments {
		m.enrollments[e.CourseID] = append(m.enrollments[e.CourseID], e)
	}
	return nil
}

func (m *mockCourseRepo) CountEnrollments(ctx context.Context, courseID string) (int64, error) {
	return int64(len(m.enrollments[courseID])), nil
}

type mockStudentRepo struct {
	repositories.StudentRepository
	byExternalID map[string]*models.Student
}

func (m *mockStudentRepo) GetByExternalID(ctx context.Context, externalID string) (*models.Student, error) {
	student, ok := m.byExternalID[externalID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return student, nil
}

func (m *mockStudentRepo) UpsertByExternalID(ctx context.Context, student *models.Student) error {
	if existing, ok := m.byExternalID[student.ExternalID]; ok {
		existing.Name = student.Name
		existing.Email = student.Email
		*student = *existing
		return nil
	}
	copied := *student
	m.byExternalID[student.ExternalID] = &copied
	return nil
}

type mockQuizRepo struct {
	repositories.QuizRepository
	quizzes map[string]*models.Quiz
}

func (m *mockQuizRepo) GetByID(ctx context.Context, id string) (*models.Quiz, error) {
	quiz, ok := m.quizzes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return quiz, nil
}

type mockAnswerRepo struct {
	repositories.AnswerRepository
	saved []*models.QuizAnswer
}

func (m *mockAnswerRepo) SaveBatch(ctx context.Context, answers []*models.QuizAnswer) error {
	m.saved = append(m.saved, answers...)
	return nil
}

func (m *mockAnswerRepo) HasSubmission(ctx context.Context, quizID, studentID string) (bool, error) {
	for _, a := range m.saved {
		if a.QuizID == quizID && a.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAnswerRepo) ListByQuiz(ctx context.Context, quizID string) ([]*models.QuizAnswer, error) {
	var out []*models.QuizAnswer
	for _, a := range m.saved {
		if a.QuizID == quizID {
			out = append(out, a)
		}
	}
	return out, nil
}

type mockFeedbackRepo struct {
	repositories.FeedbackRepository
	byQuiz map[string][]*models.FeedbackImport
}

func (m *mockFeedbackRepo) CreateBatch(ctx context.Context, imports []*models.FeedbackImport) error {
	for _, imp := range imports {
		m.byQuiz[imp.QuizID] = append(m.byQuiz[imp.QuizID], imp)
	}
	return nil
}

func (m *mockFeedbackRepo) ListByQuiz(ctx context.Context, quizID string) ([]*models.FeedbackImport, error) {
	return m.byQuiz[quizID], nil
}

func (m *mockFeedbackRepo) DeleteByQuiz(ctx context.Context, quizID string) error {
	delete(m.byQuiz, quizID)
	return nil
}

type mockUserRepo struct {
	repositories.UserRepository
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return &models.User{ID: id, Role: models.RoleTeacher, CreatedAt: time.Now()}, nil
}
