package models

import (
	"time"

	"gorm.io/gorm"
)

type StudentStatus string

const (
	StudentActive   StudentStatus = "active"
	StudentInactive StudentStatus = "inactive"
)

// Student is a roster entry. ExternalID is the school-issued identifier used
// in CSV imports; students do not hold dashboard accounts.
type Student struct {
	ID         string        `json:"id" gorm:"primaryKey;size:36"`
	ExternalID string        `json:"student_id" gorm:"column:external_id;uniqueIndex;not null;size:64" validate:"required,min=1,max=64"`
	Name       string        `json:"name" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	Email      string        `json:"email" gorm:"not null;size:255" validate:"required,email"`
	Status     StudentStatus `json:"status" gorm:"default:active;size:20"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Student) TableName() string {
	return "students"
}
