package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/teacherhub/quiz-service/internal/models"
	"github.com/teacherhub/quiz-service/internal/repositories"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// AnswerImportService ingests bulk submissions from a CSV or Excel export
// with student_id, question_id and selected_answer columns. Rows are grouped
// per student and each student's group goes through the same grade-once path
// as a live submission.
type AnswerImportService interface {
	ImportFromFile(ctx context.Context, quizID string, reader io.Reader, filename, userID string) (*AnswerImportResult, error)
}

type AnswerImportResult struct {
	QuizID            string                         `json:"quiz_id"`
	TotalRows         int                            `json:"total_rows"`
	SubmittedStudents int                            `json:"submitted_students"`
	SkippedStudents   int                            `json:"skipped_students"`
	ErrorCount        int                            `json:"error_count"`
	Errors            []models.ImportValidationError `json:"errors"`
}

type answerImportService struct {
	repo    repositories.Repository
	results ResultsService
	logger  *slog.Logger
}

func NewAnswerImportService(repo repositories.Repository, results ResultsService, logger *slog.Logger) AnswerImportService {
	return &answerImportService{
		repo:    repo,
		results: results,
		logger:  logger,
	}
}

func (s *answerImportService) ImportFromFile(ctx context.Context, quizID string, reader io.Reader, filename, userID string) (*AnswerImportResult, error) {
	s.logger.Info("Starting answer import", "quiz_id", quizID, "filename", filename, "user_id", userID)

	// Unlike live submissions, imports address the quiz by internal id, so
	// the importer must hold access to the quiz's course.
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
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
		return nil, NewPermissionError(userID, quizID, "quiz", "import answers", "no access to course")
	}

	rows, err := readImportTable(reader, filename)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, ErrImportEmpty
	}

	headerMap := make(map[string]int)
	for i, header := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, col := range []string{"student_id", "question_id", "selected_answer"} {
		if _, exists := headerMap[col]; !exists {
			return nil, NewValidationError("headers", fmt.Sprintf("missing required column: %s", col), col)
		}
	}

	result := &AnswerImportResult{
		QuizID:    quizID,
		TotalRows: len(rows) - 1,
	}

	// Group answers per student, preserving row order within each group and
	// first-seen student order across groups.
	byStudent := make(map[string][]SubmittedAnswer)
	var studentOrder []string
	for rowIndex, record := range rows[1:] {
		get := func(column string) string {
			idx := headerMap[column]
			if idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}
		studentID := get("student_id")
		questionID := get("question_id")
		answer := get("selected_answer")

		if studentID == "" || questionID == "" {
			result.Errors = append(result.Errors, models.ImportValidationError{
				Row:     rowIndex + 2,
				Column:  "student_id",
				Message: "student_id and question_id are required",
			})
			result.ErrorCount++
			continue
		}

		if _, seen := byStudent[studentID]; !seen {
			studentOrder = append(studentOrder, studentID)
		}
		byStudent[studentID] = append(byStudent[studentID], SubmittedAnswer{
			QuestionID:     questionID,
			SelectedAnswer: answer,
		})
	}

	for _, studentID := range studentOrder {
		_, err := s.results.SaveAnswers(ctx, &SaveAnswersRequest{
			QuizID:            quizID,
			StudentExternalID: studentID,
			Answers:           byStudent[studentID],
		})
		switch {
		case err == nil:
			result.SubmittedStudents++
		case IsConflict(err):
			result.SkippedStudents++
		case errors.Is(err, ErrStudentNotFound), errors.Is(err, ErrUnknownQuestion):
			result.Errors = append(result.Errors, models.ImportValidationError{
				Column:  "student_id",
				Message: err.Error(),
				Value:   studentID,
			})
			result.ErrorCount++
		case IsUnauthorized(err) || IsNotFound(err) || errors.Is(err, ErrQuizNotActive):
			// Problems with the quiz itself abort the whole import.
			return nil, err
		default:
			result.Errors = append(result.Errors, models.ImportValidationError{
				Column:  "student_id",
				Message: err.Error(),
				Value:   studentID,
			})
			result.ErrorCount++
		}
	}

	s.logger.Info("Answer import completed",
		"quiz_id", quizID,
		"total_rows", result.TotalRows,
		"submitted", result.SubmittedStudents,
		"skipped", result.SkippedStudents,
		"errors", result.ErrorCount)

	return result, nil
}

// readImportTable reads a CSV or Excel upload into rows, dispatching on the
// file extension.
func readImportTable(reader io.Reader, filename string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		csvReader := csv.NewReader(reader)
		csvReader.TrimLeadingSpace = true
		rows, err := csvReader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		return rows, nil
	case ".xlsx", ".xls":
		data, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to open Excel file: %w", err)
		}
		defer f.Close()
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, NewValidationError("file", "Excel file has no sheets", nil)
		}
		rows, err := f.GetRows(sheets[0])
		if err != nil {
			return nil, fmt.Errorf("failed to read Excel rows: %w", err)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrImportInvalidFormat, filepath.Ext(filename))
	}
}
