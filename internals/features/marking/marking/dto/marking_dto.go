// file: internals/features/marking/marking/dto/marking_dto.go
package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"ujianku_backend/internals/features/marking/llm"
	model "ujianku_backend/internals/features/marking/marking/model"
)

/* =========================================================
   REQUEST
========================================================= */

type ReviewMarkingRequest struct {
	Status         string   `json:"status" validate:"required,oneof=approved modified rejected"`
	FinalMarks     *float64 `json:"final_marks" validate:"omitempty,gte=0"`
	Comments       *string  `json:"comments" validate:"omitempty,max=2000"`
	AccuracyRating *int     `json:"accuracy_rating" validate:"omitempty,min=1,max=5"`
}

/* =========================================================
   RESPONSE
========================================================= */

type MarkingResultResponse struct {
	ID         uuid.UUID `json:"id"`
	AnswerID   uuid.UUID `json:"answer_id"`
	AttemptID  uuid.UUID `json:"attempt_id"`
	QuestionID uuid.UUID `json:"question_id"`

	GuideID      uuid.UUID `json:"guide_id"`
	GuideVersion int       `json:"guide_version"`

	AwardedMarks    float64 `json:"awarded_marks"`
	MaxMarks        float64 `json:"max_marks"`
	Percentage      float64 `json:"percentage"`
	ConfidenceScore float64 `json:"confidence_score"`

	ContentAccuracyScore      float64 `json:"content_accuracy_score"`
	CompletenessScore         float64 `json:"completeness_score"`
	ClarityScore              float64 `json:"clarity_score"`
	TechnicalCorrectnessScore float64 `json:"technical_correctness_score"`

	Feedback   string   `json:"feedback"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`

	KeyPointsIdentified []llm.KeyPointFinding `json:"key_points_identified"`
	MissingPoints       []string              `json:"missing_points"`

	RequiresReview bool     `json:"requires_review"`
	ReviewReasons  []string `json:"review_reasons,omitempty"`

	Model            string    `json:"model"`
	Provider         string    `json:"provider"`
	ProcessingTimeMs int64     `json:"processing_time_ms"`
	CreatedAt        time.Time `json:"created_at"`
}

func ResultFromModel(m *model.LLMMarkingResultModel) *MarkingResultResponse {
	resp := &MarkingResultResponse{
		ID:         m.LLMMarkingResultID,
		AnswerID:   m.LLMMarkingResultAnswerID,
		AttemptID:  m.LLMMarkingResultAttemptID,
		QuestionID: m.LLMMarkingResultQuestionID,

		GuideID:      m.LLMMarkingResultGuideID,
		GuideVersion: m.LLMMarkingResultGuideVersion,

		AwardedMarks:    m.LLMMarkingResultAwardedMarks,
		MaxMarks:        m.LLMMarkingResultMaxMarks,
		Percentage:      m.Percentage(),
		ConfidenceScore: m.LLMMarkingResultConfidenceScore,

		ContentAccuracyScore:      m.LLMMarkingResultContentAccuracyScore,
		CompletenessScore:         m.LLMMarkingResultCompletenessScore,
		ClarityScore:              m.LLMMarkingResultClarityScore,
		TechnicalCorrectnessScore: m.LLMMarkingResultTechnicalCorrectnessScore,

		Feedback:       m.LLMMarkingResultFeedback,
		Strengths:      decodeStrings(m.LLMMarkingResultStrengths),
		Weaknesses:     decodeStrings(m.LLMMarkingResultWeaknesses),
		MissingPoints:  decodeStrings(m.LLMMarkingResultMissingPoints),
		RequiresReview: m.LLMMarkingResultRequiresReview,
		ReviewReasons:  m.ReviewReasonList(),

		Model:            m.LLMMarkingResultModel,
		Provider:         m.LLMMarkingResultProvider,
		ProcessingTimeMs: m.LLMMarkingResultProcessingTimeMs,
		CreatedAt:        m.LLMMarkingResultCreatedAt,
	}
	if len(m.LLMMarkingResultKeyPointsIdentified) > 0 {
		_ = json.Unmarshal(m.LLMMarkingResultKeyPointsIdentified, &resp.KeyPointsIdentified)
	}
	if resp.KeyPointsIdentified == nil {
		resp.KeyPointsIdentified = []llm.KeyPointFinding{}
	}
	return resp
}

func ResultsFromModels(models []model.LLMMarkingResultModel) []MarkingResultResponse {
	out := make([]MarkingResultResponse, 0, len(models))
	for i := range models {
		out = append(out, *ResultFromModel(&models[i]))
	}
	return out
}

func decodeStrings(raw []byte) []string {
	out := []string{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return out
}

type MarkingReviewResponse struct {
	ID       uuid.UUID `json:"id"`
	ResultID uuid.UUID `json:"result_id"`

	ReviewerID uuid.UUID `json:"reviewer_id"`
	Status     string    `json:"status"`

	AwardedMarks float64 `json:"awarded_marks"`
	FinalMarks   float64 `json:"final_marks"`

	Comments       *string   `json:"comments,omitempty"`
	AccuracyRating *int      `json:"accuracy_rating,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func ReviewFromModel(m *model.MarkingReviewModel) *MarkingReviewResponse {
	return &MarkingReviewResponse{
		ID:             m.MarkingReviewID,
		ResultID:       m.MarkingReviewResultID,
		ReviewerID:     m.MarkingReviewReviewerID,
		Status:         string(m.MarkingReviewStatus),
		AwardedMarks:   m.MarkingReviewAwardedMarks,
		FinalMarks:     m.MarkingReviewFinalMarks,
		Comments:       m.MarkingReviewComments,
		AccuracyRating: m.MarkingReviewAccuracyRating,
		CreatedAt:      m.MarkingReviewCreatedAt,
	}
}

/* =========================================================
   BATCH SUMMARY
========================================================= */

type BatchMarkingSummary struct {
	AttemptID      uuid.UUID `json:"attempt_id"`
	TotalAnswers   int       `json:"total_answers"`
	MarkedAnswers  int       `json:"marked_answers"`
	FailedAnswers  int       `json:"failed_answers"`
	SkippedAnswers int       `json:"skipped_answers"`
	RequiresReview int       `json:"requires_review"`

	TotalScore    float64 `json:"total_score"`
	TotalPossible float64 `json:"total_possible"`
	Percentage    float64 `json:"percentage"`
	Grade         string  `json:"grade"`
}

/* =========================================================
   STATISTICS
========================================================= */

type ConfidenceDistribution struct {
	Low    int `json:"low"`    // < 0.5
	Medium int `json:"medium"` // 0.5 - 0.7
	High   int `json:"high"`   // > 0.9
}

type MarkingStatistics struct {
	TotalMarked       int     `json:"total_marked"`
	AverageConfidence float64 `json:"average_confidence"`
	AveragePercentage float64 `json:"average_percentage"`
	FlaggedForReview  int     `json:"flagged_for_review"`
	FlaggedPercentage float64 `json:"flagged_percentage"`

	ConfidenceDistribution ConfidenceDistribution `json:"confidence_distribution"`
}

type ReviewStatistics struct {
	TotalReviews  int `json:"total_reviews"`
	ApprovedCount int `json:"approved_count"`
	ModifiedCount int `json:"modified_count"`
	RejectedCount int `json:"rejected_count"`

	// Rata-rata |final - awarded| lintas semua review
	AverageMarkAdjustment float64 `json:"average_mark_adjustment"`
}
