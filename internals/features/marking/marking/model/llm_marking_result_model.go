// file: internals/features/marking/marking/model/llm_marking_result_model.go
package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// LLMMarkingResultModel satu hasil penilaian LLM untuk satu jawaban.
// Satu jawaban bisa punya banyak result (re-mark), yang dipakai selalu
// yang terbaru per answer.
type LLMMarkingResultModel struct {
	LLMMarkingResultID         uuid.UUID `gorm:"column:llm_marking_result_id;type:uuid;primaryKey;default:gen_random_uuid()" json:"llm_marking_result_id"`
	LLMMarkingResultAnswerID   uuid.UUID `gorm:"column:llm_marking_result_answer_id;type:uuid;not null;index" json:"llm_marking_result_answer_id"`
	LLMMarkingResultAttemptID  uuid.UUID `gorm:"column:llm_marking_result_attempt_id;type:uuid;not null;index" json:"llm_marking_result_attempt_id"`
	LLMMarkingResultQuestionID uuid.UUID `gorm:"column:llm_marking_result_question_id;type:uuid;not null;index" json:"llm_marking_result_question_id"`

	LLMMarkingResultGuideID      uuid.UUID `gorm:"column:llm_marking_result_guide_id;type:uuid;not null" json:"llm_marking_result_guide_id"`
	LLMMarkingResultGuideVersion int       `gorm:"column:llm_marking_result_guide_version;not null" json:"llm_marking_result_guide_version"`

	LLMMarkingResultAwardedMarks    float64 `gorm:"column:llm_marking_result_awarded_marks;type:numeric(5,2);not null" json:"llm_marking_result_awarded_marks"`
	LLMMarkingResultMaxMarks        float64 `gorm:"column:llm_marking_result_max_marks;type:numeric(5,2);not null" json:"llm_marking_result_max_marks"`
	LLMMarkingResultConfidenceScore float64 `gorm:"column:llm_marking_result_confidence_score;type:numeric(3,2);not null" json:"llm_marking_result_confidence_score"`

	LLMMarkingResultContentAccuracyScore      float64 `gorm:"column:llm_marking_result_content_accuracy_score;type:numeric(5,2);not null;default:0" json:"llm_marking_result_content_accuracy_score"`
	LLMMarkingResultCompletenessScore         float64 `gorm:"column:llm_marking_result_completeness_score;type:numeric(5,2);not null;default:0" json:"llm_marking_result_completeness_score"`
	LLMMarkingResultClarityScore              float64 `gorm:"column:llm_marking_result_clarity_score;type:numeric(5,2);not null;default:0" json:"llm_marking_result_clarity_score"`
	LLMMarkingResultTechnicalCorrectnessScore float64 `gorm:"column:llm_marking_result_technical_correctness_score;type:numeric(5,2);not null;default:0" json:"llm_marking_result_technical_correctness_score"`

	LLMMarkingResultFeedback   string         `gorm:"column:llm_marking_result_feedback;type:text;not null" json:"llm_marking_result_feedback"`
	LLMMarkingResultStrengths  datatypes.JSON `gorm:"column:llm_marking_result_strengths;type:jsonb" json:"llm_marking_result_strengths,omitempty"`
	LLMMarkingResultWeaknesses datatypes.JSON `gorm:"column:llm_marking_result_weaknesses;type:jsonb" json:"llm_marking_result_weaknesses,omitempty"`

	LLMMarkingResultKeyPointsIdentified datatypes.JSON `gorm:"column:llm_marking_result_key_points_identified;type:jsonb" json:"llm_marking_result_key_points_identified,omitempty"`
	LLMMarkingResultMissingPoints       datatypes.JSON `gorm:"column:llm_marking_result_missing_points;type:jsonb" json:"llm_marking_result_missing_points,omitempty"`

	LLMMarkingResultRequiresReview bool           `gorm:"column:llm_marking_result_requires_review;not null;default:false;index" json:"llm_marking_result_requires_review"`
	LLMMarkingResultReviewReasons  datatypes.JSON `gorm:"column:llm_marking_result_review_reasons;type:jsonb" json:"llm_marking_result_review_reasons,omitempty"`

	LLMMarkingResultModel            string         `gorm:"column:llm_marking_result_model;type:varchar(64);not null" json:"llm_marking_result_model"`
	LLMMarkingResultProvider         string         `gorm:"column:llm_marking_result_provider;type:varchar(32);not null;default:''" json:"llm_marking_result_provider"`
	LLMMarkingResultProcessingTimeMs int64          `gorm:"column:llm_marking_result_processing_time_ms;not null;default:0" json:"llm_marking_result_processing_time_ms"`
	LLMMarkingResultRequestPayload   datatypes.JSON `gorm:"column:llm_marking_result_request_payload;type:jsonb" json:"-"`
	LLMMarkingResultResponsePayload  datatypes.JSON `gorm:"column:llm_marking_result_response_payload;type:jsonb" json:"-"`

	LLMMarkingResultCreatedAt time.Time `gorm:"column:llm_marking_result_created_at;autoCreateTime" json:"llm_marking_result_created_at"`
	LLMMarkingResultUpdatedAt time.Time `gorm:"column:llm_marking_result_updated_at;autoUpdateTime" json:"llm_marking_result_updated_at"`
}

func (LLMMarkingResultModel) TableName() string { return "llm_marking_results" }

// Percentage 0 kalau max marks 0 (guard bagi nol)
func (m *LLMMarkingResultModel) Percentage() float64 {
	if m.LLMMarkingResultMaxMarks <= 0 {
		return 0
	}
	return m.LLMMarkingResultAwardedMarks / m.LLMMarkingResultMaxMarks * 100
}

func (m *LLMMarkingResultModel) ReviewReasonList() []string {
	if len(m.LLMMarkingResultReviewReasons) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(m.LLMMarkingResultReviewReasons, &out); err != nil {
		return nil
	}
	return out
}
