// file: internals/features/marking/attempts/model/exam_attempt_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type AttemptStatus string

const (
	AttemptStatusInProgress AttemptStatus = "in_progress"
	AttemptStatusSubmitted  AttemptStatus = "submitted"
	AttemptStatusGraded     AttemptStatus = "graded"
)

// ExamAttemptModel dimiliki modul exam (eksternal). Marking cuma baca
// + satu update skor per batch run yang sukses.
type ExamAttemptModel struct {
	ExamAttemptID        uuid.UUID     `gorm:"column:exam_attempt_id;type:uuid;primaryKey;default:gen_random_uuid()" json:"exam_attempt_id"`
	ExamAttemptExamID    uuid.UUID     `gorm:"column:exam_attempt_exam_id;type:uuid;not null;index" json:"exam_attempt_exam_id"`
	ExamAttemptStudentID uuid.UUID     `gorm:"column:exam_attempt_student_id;type:uuid;not null;index" json:"exam_attempt_student_id"`
	ExamAttemptStatus    AttemptStatus `gorm:"column:exam_attempt_status;type:varchar(16);not null;default:'in_progress'" json:"exam_attempt_status"`

	ExamAttemptTotalScore *float64 `gorm:"column:exam_attempt_total_score;type:numeric(6,2)" json:"exam_attempt_total_score,omitempty"`
	ExamAttemptPercentage *float64 `gorm:"column:exam_attempt_percentage;type:numeric(5,2)" json:"exam_attempt_percentage,omitempty"`
	ExamAttemptGrade      *string  `gorm:"column:exam_attempt_grade;type:char(1)" json:"exam_attempt_grade,omitempty"`

	ExamAttemptCreatedAt time.Time `gorm:"column:exam_attempt_created_at;autoCreateTime" json:"exam_attempt_created_at"`
	ExamAttemptUpdatedAt time.Time `gorm:"column:exam_attempt_updated_at;autoUpdateTime" json:"exam_attempt_updated_at"`
}

func (ExamAttemptModel) TableName() string { return "exam_attempts" }

func (m *ExamAttemptModel) IsSubmitted() bool { return m.ExamAttemptStatus == AttemptStatusSubmitted }
