// file: internals/features/marking/attempts/model/student_answer_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type StudentAnswerModel struct {
	StudentAnswerID         uuid.UUID `gorm:"column:student_answer_id;type:uuid;primaryKey;default:gen_random_uuid()" json:"student_answer_id"`
	StudentAnswerAttemptID  uuid.UUID `gorm:"column:student_answer_attempt_id;type:uuid;not null;index" json:"student_answer_attempt_id"`
	StudentAnswerQuestionID uuid.UUID `gorm:"column:student_answer_question_id;type:uuid;not null;index" json:"student_answer_question_id"`

	StudentAnswerText     string  `gorm:"column:student_answer_text;type:text;not null" json:"student_answer_text"`
	StudentAnswerMaxMarks float64 `gorm:"column:student_answer_max_marks;type:numeric(5,2);not null" json:"student_answer_max_marks"`

	StudentAnswerCreatedAt time.Time `gorm:"column:student_answer_created_at;autoCreateTime" json:"student_answer_created_at"`
	StudentAnswerUpdatedAt time.Time `gorm:"column:student_answer_updated_at;autoUpdateTime" json:"student_answer_updated_at"`
}

func (StudentAnswerModel) TableName() string { return "student_answers" }
