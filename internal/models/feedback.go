package models

import (
	"encoding/json"
	"strconv"
	"time"

	"gorm.io/datatypes"
)

// FeedbackImport is one imported post-quiz feedback record: numeric ratings
// on a 1-5 scale keyed by dimension name, and free-text answers keyed by
// prompt name. Grading and feedback are independent.
type FeedbackImport struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	QuizID      string         `json:"quiz_id" gorm:"not null;size:36;index"`
	CourseID    string         `json:"course_id" gorm:"not null;size:36;index"`
	StudentID   string         `json:"student_id" gorm:"size:36"`
	RatingField datatypes.JSON `json:"rating_field" gorm:"type:jsonb"`
	OpenField   datatypes.JSON `json:"open_field" gorm:"type:jsonb"`
	ImportedAt  time.Time      `json:"imported_at"`
}

func (FeedbackImport) TableName() string {
	return "quiz_feedback_imports"
}

// Ratings decodes the rating column, dropping entries that are not numeric
// rather than failing the whole record.
func (f *FeedbackImport) Ratings() map[string]float64 {
	ratings := make(map[string]float64)
	if len(f.RatingField) == 0 {
		return ratings
	}
	var raw map[string]any
	if err := json.Unmarshal(f.RatingField, &raw); err != nil {
		return ratings
	}
	for field, value := range raw {
		switch v := value.(type) {
		case float64:
			ratings[field] = v
		case string:
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				ratings[field] = parsed
			}
		}
	}
	return ratings
}

// OpenResponses decodes the free-text column.
func (f *FeedbackImport) OpenResponses() map[string]string {
	responses := make(map[string]string)
	if len(f.OpenField) == 0 {
		return responses
	}
	_ = json.Unmarshal(f.OpenField, &responses)
	return responses
}
