package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuizStatus string

const (
	QuizDraft    QuizStatus = "draft"
	QuizActive   QuizStatus = "active"
	QuizArchived QuizStatus = "archived"
)

type QuestionType string

const (
	MultipleChoice     QuestionType = "multiple-choice"
	TrueFalse          QuestionType = "true-false"
	CodeInterpretation QuestionType = "code-interpretation"
)

// Question is a value record stored inside Quiz.Questions as JSON. For
// multiple-choice and code-interpretation questions CorrectAnswer must equal
// one of Options; this is enforced at authoring time, never at scoring time.
type Question struct {
	ID            string       `json:"id" validate:"required"`
	Text          string       `json:"text" validate:"required,min=1,max=1000"`
	Type          QuestionType `json:"type" validate:"required,question_type"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correctAnswer" validate:"required"`
	CodeLanguage  string       `json:"codeLanguage,omitempty"`
	CodeSnippet   string       `json:"codeSnippet,omitempty"`
	Topic         string       `json:"topic,omitempty"`
	Tags          []string     `json:"tags,omitempty"`
}

type Quiz struct {
	ID          string         `json:"id" gorm:"primaryKey;size:36"`
	CourseID    string         `json:"course_id" gorm:"not null;size:36;index"`
	Title       string         `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Topic       string         `json:"topic" gorm:"size:100"`
	Description string         `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	Status      QuizStatus     `json:"status" gorm:"default:draft;index" validate:"omitempty,quiz_status"`
	AccessCode  string         `json:"code" gorm:"size:16;index"`
	Questions   datatypes.JSON `json:"questions" gorm:"type:jsonb"`
	DueDate     *time.Time     `json:"due_date"`

	CreatedBy string         `json:"created_by" gorm:"not null;size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Course  Course       `json:"-" gorm:"foreignKey:CourseID" validate:"-"`
	Answers []QuizAnswer `json:"-" gorm:"foreignKey:QuizID" validate:"-"`

	// Computed fields (not stored)
	SubmissionCount int     `json:"submission_count" gorm:"-"`
	AverageScore    float64 `json:"average_score" gorm:"-"`
}

func (Quiz) TableName() string {
	return "teacher_quizzes"
}

// QuestionList decodes the JSON questions column. A quiz with a null or empty
// column decodes to an empty slice, never an error.
func (q *Quiz) QuestionList() ([]Question, error) {
	if len(q.Questions) == 0 {
		return []Question{}, nil
	}
	var questions []Question
	if err := json.Unmarshal(q.Questions, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// SetQuestions encodes questions into the JSON column.
func (q *Quiz) SetQuestions(questions []Question) error {
	data, err := json.Marshal(questions)
	if err != nil {
		return err
	}
	q.Questions = data
	return nil
}

// QuizAnswer is one student's recorded answer to one question. IsCorrect is
// computed exactly once when the answer is saved and treated as authoritative
// by all downstream aggregation.
type QuizAnswer struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	QuizID         string    `json:"quiz_id" gorm:"not null;size:36;uniqueIndex:idx_quiz_student_question"`
	StudentID      string    `json:"student_id" gorm:"not null;size:36;uniqueIndex:idx_quiz_student_question"`
	QuestionID     string    `json:"question_id" gorm:"not null;size:64;uniqueIndex:idx_quiz_student_question"`
	SelectedAnswer string    `json:"selected_answer" gorm:"not null;type:text"`
	IsCorrect      bool      `json:"is_correct" gorm:"not null"`
	CreatedAt      time.Time `json:"created_at"`

	Student Student `json:"student" gorm:"foreignKey:StudentID"`
}

func (QuizAnswer) TableName() string {
	return "quiz_answers"
}
