package events

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
)

// EventType represents different types of quiz service events
type EventType string

const (
	// Quiz lifecycle events
	EventQuizPublished EventType = "quiz.published"
	EventQuizArchived  EventType = "quiz.archived"

	// Submission events
	EventAnswersSaved EventType = "answers.saved"

	// Course events
	EventCourseShared   EventType = "course.shared"
	EventRosterImported EventType = "roster.imported"

	// Feedback events
	EventFeedbackImported EventType = "feedback.imported"
)

// QuizEvent is the base event structure for all quiz service events
type QuizEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Event payloads

type QuizPublishedEvent struct {
	QuizID     string     `json:"quiz_id"`
	QuizTitle  string     `json:"quiz_title"`
	CourseID   string     `json:"course_id"`
	AccessCode string     `json:"access_code"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	CreatedBy  string     `json:"created_by"`
}

type QuizArchivedEvent struct {
	QuizID     string    `json:"quiz_id"`
	QuizTitle  string    `json:"quiz_title"`
	CourseID   string    `json:"course_id"`
	ArchivedAt time.Time `json:"archived_at"`
}

type AnswersSavedEvent struct {
	QuizID      string    `json:"quiz_id"`
	StudentID   string    `json:"student_id"`
	AnswerCount int       `json:"answer_count"`
	Score       float64   `json:"score"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type CourseSharedEvent struct {
	CourseID string `json:"course_id"`
	SharedBy string `json:"shared_by"`
	SharedTo string `json:"shared_to"`
}

type RosterImportedEvent struct {
	CourseID      string `json:"course_id"`
	ImportedBy    string `json:"imported_by"`
	ImportedCount int    `json:"imported_count"`
	SkippedCount  int    `json:"skipped_count"`
}

type FeedbackImportedEvent struct {
	QuizID        string `json:"quiz_id"`
	CourseID      string `json:"course_id"`
	ImportedBy    string `json:"imported_by"`
	ImportedCount int    `json:"imported_count"`
}

// Event factory functions

func NewQuizPublishedEvent(quizID, title, courseID, accessCode string, dueDate *time.Time, createdBy string) *QuizEvent {
	return newEvent(EventQuizPublished, QuizPublishedEvent{
		QuizID:     quizID,
		QuizTitle:  title,
		CourseID:   courseID,
		AccessCode: accessCode,
		DueDate:    dueDate,
		CreatedBy:  createdBy,
	})
}

func NewQuizArchivedEvent(quizID, title, courseID string) *QuizEvent {
	return newEvent(EventQuizArchived, QuizArchivedEvent{
		QuizID:     quizID,
		QuizTitle:  title,
		CourseID:   courseID,
		ArchivedAt: time.Now(),
	})
}

func NewAnswersSavedEvent(quizID, studentID string, answerCount int, score float64, submittedAt time.Time) *QuizEvent {
	return newEvent(EventAnswersSaved, AnswersSavedEvent{
		QuizID:      quizID,
		StudentID:   studentID,
		AnswerCount: answerCount,
		Score:       score,
		SubmittedAt: submittedAt,
	})
}

func NewCourseSharedEvent(courseID, sharedBy, sharedTo string) *QuizEvent {
	return newEvent(EventCourseShared, CourseSharedEvent{
		CourseID: courseID,
		SharedBy: sharedBy,
		SharedTo: sharedTo,
	})
}

func NewRosterImportedEvent(courseID, importedBy string, imported, skipped int) *QuizEvent {
	return newEvent(EventRosterImported, RosterImportedEvent{
		CourseID:      courseID,
		ImportedBy:    importedBy,
		ImportedCount: imported,
		SkippedCount:  skipped,
	})
}

func NewFeedbackImportedEvent(quizID, courseID, importedBy string, imported int) *QuizEvent {
	return newEvent(EventFeedbackImported, FeedbackImportedEvent{
		QuizID:        quizID,
		CourseID:      courseID,
		ImportedBy:    importedBy,
		ImportedCount: imported,
	})
}

func newEvent(eventType EventType, data interface{}) *QuizEvent {
	return &QuizEvent{
		ID:        watermill.NewUUID(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    "quiz-service",
		Version:   "1.0",
		Data:      data,
	}
}
