package models

import (
	"time"

	"gorm.io/gorm"
)

type CourseStatus string

const (
	CourseActive   CourseStatus = "active"
	CourseArchived CourseStatus = "archived"
)

type Course struct {
	ID          string       `json:"id" gorm:"primaryKey;size:36"`
	Name        string       `json:"name" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description string       `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	Status      CourseStatus `json:"status" gorm:"default:active;index" validate:"omitempty,course_status"`
	StartDate   *time.Time   `json:"start_date"`
	EndDate     *time.Time   `json:"end_date"`

	TeacherID string         `json:"teacher_id" gorm:"not null;size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Teacher     User            `json:"-" gorm:"foreignKey:TeacherID"`
	Enrollments []CourseStudent `json:"-" gorm:"foreignKey:CourseID"`
	Quizzes     []Quiz          `json:"-" gorm:"foreignKey:CourseID"`
	Shares      []CourseShare   `json:"-" gorm:"foreignKey:CourseID"`

	// Computed fields (not stored)
	StudentCount   int     `json:"student_count" gorm:"-"`
	QuizCount      int     `json:"quiz_count" gorm:"-"`
	AverageScore   float64 `json:"average_score" gorm:"-"`
	CompletionRate float64 `json:"completion_rate" gorm:"-"`
}

func (Course) TableName() string {
	return "courses"
}

type EnrollmentStatus string

const (
	EnrollmentActive   EnrollmentStatus = "active"
	EnrollmentInactive EnrollmentStatus = "inactive"
)

// CourseStudent links a student to a course.
type CourseStudent struct {
	ID        uint             `json:"id" gorm:"primaryKey"`
	CourseID  string           `json:"course_id" gorm:"not null;size:36;uniqueIndex:idx_course_student"`
	StudentID string           `json:"student_id" gorm:"not null;size:36;uniqueIndex:idx_course_student"`
	Status    EnrollmentStatus `json:"status" gorm:"default:active;size:20"`
	CreatedAt time.Time        `json:"created_at"`

	Student Student `json:"student" gorm:"foreignKey:StudentID"`
}

func (CourseStudent) TableName() string {
	return "course_students"
}

// CourseShare grants another teacher read access to a course.
type CourseShare struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CourseID  string    `json:"course_id" gorm:"not null;size:36;uniqueIndex:idx_course_share"`
	UserID    string    `json:"user_id" gorm:"not null;size:255;uniqueIndex:idx_course_share"`
	SharedBy  string    `json:"shared_by" gorm:"not null;size:255"`
	CreatedAt time.Time `json:"created_at"`
}

func (CourseShare) TableName() string {
	return "course_shares"
}
