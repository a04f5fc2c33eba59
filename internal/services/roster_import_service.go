package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/mail"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/teacherhub/quiz-service/internal/events"
	"github.com/teacherhub/quiz-service/internal/models"
	"github.com/teacherhub/quiz-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

type RosterImportService interface {
	// ImportFromFile dispatches to the CSV or Excel importer by extension.
	ImportFromFile(ctx context.Context, courseID string, reader io.Reader, filename, userID string) (*RosterImportResult, error)
	ImportFromCSV(ctx context.Context, courseID string, reader io.Reader, userID string) (*RosterImportResult, error)
	ImportFromExcel(ctx context.Context, courseID string, reader io.Reader, userID string) (*RosterImportResult, error)
}

type RosterImportResult struct {
	CourseID      string                         `json:"course_id"`
	TotalRows     int                            `json:"total_rows"`
	ProcessedRows int                            `json:"processed_rows"`
	SuccessCount  int                            `json:"success_count"`
	ErrorCount    int                            `json:"error_count"`
	Errors        []models.ImportValidationError `json:"errors"`
	Status        models.ImportJobStatus         `json:"status"`
}

type rosterRow struct {
	externalID string
	name       string
	email      string
}

type rosterImportService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	publisher events.EventPublisher
	analytics CacheInvalidator
}

func NewRosterImportService(repo repositories.Repository, logger *slog.Logger, publisher events.EventPublisher, analytics CacheInvalidator) RosterImportService {
	return &rosterImportService{
		repo:      repo,
		logger:    logger,
		publisher: publisher,
		analytics: analytics,
	}
}

func (s *rosterImportService) ImportFromFile(ctx context.Context, courseID string, reader io.Reader, filename, userID string) (*RosterImportResult, error) {
	s.logger.Info("Starting roster import", "filename", filename, "course_id", courseID, "user_id", userID)

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv":
		return s.ImportFromCSV(ctx, courseID, reader, userID)
	case ".xlsx", ".xls":
		return s.ImportFromExcel(ctx, courseID, reader, userID)
	default:
		return nil, fmt.Errorf("%w: %s", ErrImportInvalidFormat, ext)
	}
}

func (s *rosterImportService) ImportFromCSV(ctx context.Context, courseID string, reader io.Reader, userID string) (*RosterImportResult, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	return s.importRows(ctx, courseID, records, userID)
}

func (s *rosterImportService) ImportFromExcel(ctx context.Context, courseID string, reader io.Reader, userID string) (*RosterImportResult, error) {
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

	return s.importRows(ctx, courseID, rows, userID)
}

// importRows validates and enrolls a parsed roster table. The first row is
// the header. Rows with problems are reported per-row and skipped; valid
// rows still go through, so a half-good file is a partial import, not a
// failure.
func (s *rosterImportService) importRows(ctx context.Context, courseID string, rows [][]string, userID string) (*RosterImportResult, error) {
	owner, err := s.repo.Course().IsOwner(ctx, courseID, userID)
	if err != nil {
		return nil, fmt.Errorf("permission check failed: %w", err)
	}
	if !owner {
		return nil, NewPermissionError(userID, courseID, "course", "import roster", "not the course owner")
	}

	if len(rows) < 2 {
		return nil, ErrImportEmpty
	}

	headerMap := make(map[string]int)
	for i, header := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, col := range []string{"student_id", "name", "email"} {
		if _, exists := headerMap[col]; !exists {
			return nil, NewValidationError("headers", fmt.Sprintf("missing required column: %s", col), col)
		}
	}

	result := &RosterImportResult{
		CourseID:  courseID,
		TotalRows: len(rows) - 1,
		Status:    models.ImportProcessing,
	}

	var parsed []rosterRow
	seen := make(map[string]bool)
	for rowIndex, record := range rows[1:] {
		row, rowErrors := parseRosterRow(record, headerMap, rowIndex+2)
		if len(rowErrors) == 0 && seen[row.externalID] {
			rowErrors = append(rowErrors, models.ImportValidationError{
				Row:     rowIndex + 2,
				Column:  "student_id",
				Message: "duplicate student id in file",
				Value:   row.externalID,
			})
		}
		if len(rowErrors) > 0 {
			result.Errors = append(result.Errors, rowErrors...)
			result.ErrorCount++
		} else {
			seen[row.externalID] = true
			parsed = append(parsed, row)
			result.SuccessCount++
		}
		result.ProcessedRows++
	}

	if len(parsed) > 0 {
		if err := s.enroll(ctx, courseID, parsed); err != nil {
			result.Status = models.ImportFailed
			return result, err
		}
	}
	result.Status = models.ImportCompleted

	event := events.NewRosterImportedEvent(courseID, userID, result.SuccessCount, result.ErrorCount)
	if err := s.publisher.PublishQuizEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish roster imported event", "course_id", courseID, "error", err)
	}

	if err := s.analytics.InvalidateCourse(ctx, courseID); err != nil {
		s.logger.Warn("Failed to invalidate course analytics", "course_id", courseID, "error", err)
	}

	s.logger.Info("Roster import completed",
		"course_id", courseID,
		"total_rows", result.TotalRows,
		"success_count", result.SuccessCount,
		"error_count", result.ErrorCount)

	return result, nil
}

// enroll upserts students by external id and links them to the course in a
// single transaction.
func (s *rosterImportService) enroll(ctx context.Context, courseID string, rows []rosterRow) error {
	return s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		enrollments := make([]*models.CourseStudent, 0, len(rows))
		for _, row := range rows {
			student := &models.Student{
				ID:         uuid.NewString(),
				ExternalID: row.externalID,
				Name:       row.name,
				Email:      row.email,
				Status:     models.StudentActive,
			}
			if err := tx.Student().UpsertByExternalID(ctx, student); err != nil {
				return err
			}
			enrollments = append(enrollments, &models.CourseStudent{
				CourseID:  courseID,
				StudentID: student.ID,
				Status:    models.EnrollmentActive,
			})
		}
		return tx.Course().EnrollBatch(ctx, enrollments)
	})
}

func parseRosterRow(record []string, headerMap map[string]int, rowNumber int) (rosterRow, []models.ImportValidationError) {
	get := func(column string) string {
		idx, ok := headerMap[column]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	row := rosterRow{
		externalID: get("student_id"),
		name:       get("name"),
		email:      get("email"),
	}

	var errors []models.ImportValidationError
	if row.externalID == "" {
		errors = append(errors, models.ImportValidationError{Row: rowNumber, Column: "student_id", Message: "is required"})
	}
	if row.name == "" {
		errors = append(errors, models.ImportValidationError{Row: rowNumber, Column: "name", Message: "is required"})
	}
	if row.email == "" {
		errors = append(errors, models.ImportValidationError{Row: rowNumber, Column: "email", Message: "is required"})
	} else if _, err := mail.ParseAddress(row.email); err != nil {
		errors = append(errors, models.ImportValidationError{Row: rowNumber, Column: "email", Message: "is not a valid email address", Value: row.email})
	}
	return row, errors
}
