package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/teacherhub/quiz-service/internal/events"
	"github.com/teacherhub/quiz-service/internal/models"
	"github.com/teacherhub/quiz-service/internal/repositories"
	"github.com/teacherhub/quiz-service/internal/stats"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type ResultsService interface {
	// Student submission
	SaveAnswers(ctx context.Context, req *SaveAnswersRequest) (*SaveAnswersResult, error)

	// Teacher views
	GetResults(ctx context.Context, quizID, userID string, query stats.ResultsQuery) (*QuizResultsResponse, error)
	GetInsights(ctx context.Context, quizID, userID string) (*QuizInsightsResponse, error)
	ExportResults(ctx context.Context, quizID, userID string) ([]byte, error)
}

type SaveAnswersRequest struct {
	QuizID            string            `json:"quiz_id" validate:"required"`
	StudentExternalID string            `json:"student_id" validate:"required"`
	Answers           []SubmittedAnswer `json:"answers" validate:"required,min=1,dive"`
}

type SubmittedAnswer struct {
	QuestionID     string `json:"question_id" validate:"required"`
	SelectedAnswer string `json:"selected_answer" validate:"required"`
}

type SaveAnswersResult struct {
	QuizID      string    `json:"quiz_id"`
	StudentID   string    `json:"student_id"`
	Score       float64   `json:"score"`
	Correct     int       `json:"correct"`
	Total       int       `json:"total"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// QuizResultsResponse is the materialized results view: one page of grouped
// answers plus class statistics and the per-question breakdown.
type QuizResultsResponse struct {
	Page          stats.ResultsPage    `json:"page"`
	Stats         stats.QuizStats      `json:"stats"`
	QuestionStats []stats.QuestionStat `json:"question_stats"`
	QuestionCount int                  `json:"question_count"`
}

type QuizInsightsResponse struct {
	Insights      stats.Insights  `json:"insights"`
	Stats         stats.QuizStats `json:"stats"`
	TotalEnrolled int             `json:"total_enrolled"`
}

type resultsService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	publisher events.EventPublisher
	analytics CacheInvalidator
}

func NewResultsService(repo repositories.Repository, logger *slog.Logger, publisher events.EventPublisher, analytics CacheInvalidator) ResultsService {
	return &resultsService{
		repo:      repo,
		logger:    logger,
		publisher: publisher,
		analytics: analytics,
	}
}

// ===== SUBMISSION =====

// SaveAnswers grades and persists one student's submission. Each answer is
// graded exactly once against the quiz's correct answers; the stored
// IsCorrect flag is authoritative from then on. A second submission for the
// same quiz and student is rejected.
func (s *resultsService) SaveAnswers(ctx context.Context, req *SaveAnswersRequest) (*SaveAnswersResult, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, req.QuizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	if quiz.Status != models.QuizActive {
		return nil, ErrQuizNotActive
	}

	student, err := s.repo.Student().GetByExternalID(ctx, req.StudentExternalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	submitted, err := s.repo.Answer().HasSubmission(ctx, quiz.ID, student.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check prior submission: %w", err)
	}
	if submitted {
		return nil, ErrAlreadySubmitted
	}

	questions, err := quiz.QuestionList()
	if err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}
	correctByID := make(map[string]string, len(questions))
	for _, q := range questions {
		correctByID[q.ID] = q.CorrectAnswer
	}

	now := time.Now()
	answers := make([]*models.QuizAnswer, 0, len(req.Answers))
	correct := 0
	for _, a := range req.Answers {
		correctAnswer, ok := correctByID[a.QuestionID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownQuestion, a.QuestionID)
		}
		isCorrect := a.SelectedAnswer == correctAnswer
		if isCorrect {
			correct++
		}
		answers = append(answers, &models.QuizAnswer{
			QuizID:         quiz.ID,
			StudentID:      student.ID,
			QuestionID:     a.QuestionID,
			SelectedAnswer: a.SelectedAnswer,
			IsCorrect:      isCorrect,
			CreatedAt:      now,
		})
	}

	if err := s.repo.Answer().SaveBatch(ctx, answers); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadySubmitted
		}
		return nil, err
	}

	responses := make([]stats.Response, 0, len(answers))
	for _, a := range answers {
		responses = append(responses, stats.Response{QuestionID: a.QuestionID, Answer: a.SelectedAnswer, IsCorrect: a.IsCorrect})
	}
	score := stats.Score(responses, len(questions))

	event := events.NewAnswersSavedEvent(quiz.ID, student.ID, len(answers), score, now)
	if err := s.publisher.PublishQuizEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish answers saved event", "quiz_id", quiz.ID, "error", err)
	}

	if err := s.analytics.InvalidateCourse(ctx, quiz.CourseID); err != nil {
		s.logger.Warn("Failed to invalidate course analytics", "course_id", quiz.CourseID, "error", err)
	}

	s.logger.Info("Answers saved", "quiz_id", quiz.ID, "student_id", student.ID, "score", score)

	return &SaveAnswersResult{
		QuizID:      quiz.ID,
		StudentID:   student.ID,
		Score:       score,
		Correct:     correct,
		Total:       len(questions),
		SubmittedAt: now,
	}, nil
}

// ===== TEACHER VIEWS =====

func (s *resultsService) GetResults(ctx context.Context, quizID, userID string, query stats.ResultsQuery) (*QuizResultsResponse, error) {
	_, questions, answers, err := s.loadQuizAnswers(ctx, quizID, userID, "view results")
	if err != nil {
		return nil, err
	}

	grouped := stats.GroupAnswers(answerRows(answers))
	page := query.Apply(grouped, len(questions))

	return &QuizResultsResponse{
		Page:          page,
		Stats:         stats.ClassStats(grouped, len(questions)),
		QuestionStats: stats.QuestionStats(questions, grouped),
		QuestionCount: len(questions),
	}, nil
}

func (s *resultsService) GetInsights(ctx context.Context, quizID, userID string) (*QuizInsightsResponse, error) {
	quiz, questions, answers, err := s.loadQuizAnswers(ctx, quizID, userID, "view insights")
	if err != nil {
		return nil, err
	}

	enrolled, err := s.repo.Course().CountEnrollments(ctx, quiz.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to count enrollments: %w", err)
	}

	grouped := stats.GroupAnswers(answerRows(answers))
	return &QuizInsightsResponse{
		Insights:      stats.BuildInsights(questions, grouped, int(enrolled)),
		Stats:         stats.ClassStats(grouped, len(questions)),
		TotalEnrolled: int(enrolled),
	}, nil
}

// ExportResults renders the full (unfiltered) results table as an XLSX
// workbook: one row per student, one column per question, plus the score.
func (s *resultsService) ExportResults(ctx context.Context, quizID, userID string) ([]byte, error) {
	quiz, questions, answers, err := s.loadQuizAnswers(ctx, quizID, userID, "export results")
	if err != nil {
		return nil, err
	}

	grouped := stats.GroupAnswers(answerRows(answers))

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Results"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Student", "Email", "Submitted At", "Score (%)"}
	for _, q := range questions {
		headers = append(headers, q.Text)
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for rowIdx, sa := range grouped {
		answerByQuestion := make(map[string]stats.Response, len(sa.Responses))
		for _, r := range sa.Responses {
			answerByQuestion[r.QuestionID] = r
		}

		values := []interface{}{
			sa.StudentName,
			sa.StudentEmail,
			sa.SubmittedAt.Format(time.RFC3339),
			stats.Score(sa.Responses, len(questions)),
		}
		for _, q := range questions {
			if r, ok := answerByQuestion[q.ID]; ok {
				values = append(values, r.Answer)
			} else {
				values = append(values, "")
			}
		}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook for quiz %s: %w", quiz.ID, err)
	}
	return buf.Bytes(), nil
}

// ===== HELPERS =====

func (s *resultsService) loadQuizAnswers(ctx context.Context, quizID, userID, action string) (*models.Quiz, []models.Question, []*models.QuizAnswer, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrQuizNotFound
		}
		return nil, nil, nil, err
	}

	canAccess, err := s.repo.Course().CanAccess(ctx, quiz.CourseID, userID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("permission check failed: %w", err)
	}
	if !canAccess {
		return nil, nil, nil, NewPermissionError(userID, quizID, "quiz", action, "no access to course")
	}

	questions, err := quiz.QuestionList()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to decode questions: %w", err)
	}

	answers, err := s.repo.Answer().ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load answers: %w", err)
	}
	return quiz, questions, answers, nil
}

// answerRows flattens persisted answers into the engine's row shape.
func answerRows(answers []*models.QuizAnswer) []stats.AnswerRow {
	rows := make([]stats.AnswerRow, 0, len(answers))
	for _, a := range answers {
		rows = append(rows, stats.AnswerRow{
			StudentID:    a.StudentID,
			StudentName:  a.Student.Name,
			StudentEmail: a.Student.Email,
			QuestionID:   a.QuestionID,
			Answer:       a.SelectedAnswer,
			IsCorrect:    a.IsCorrect,
			CreatedAt:    a.CreatedAt,
		})
	}
	return rows
}
