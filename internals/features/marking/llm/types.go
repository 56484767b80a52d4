// file: internals/features/marking/llm/types.go
package llm

import (
	"encoding/json"
	"fmt"
)

/* =========================================================
   Judgment: balasan terstruktur yang wajib dikirim model
========================================================= */

type KeyPointFinding struct {
	Point        string  `json:"point"`
	Found        bool    `json:"found"`
	MarksAwarded float64 `json:"marks_awarded"`
}

type Judgment struct {
	AwardedMarks    float64 `json:"awarded_marks"`
	ConfidenceScore float64 `json:"confidence_score"`

	ContentAccuracyScore      float64 `json:"content_accuracy_score"`
	CompletenessScore         float64 `json:"completeness_score"`
	ClarityScore              float64 `json:"clarity_score"`
	TechnicalCorrectnessScore float64 `json:"technical_correctness_score"`

	Feedback   string   `json:"feedback"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`

	KeyPointsIdentified []KeyPointFinding `json:"key_points_identified"`
	MissingPoints       []string          `json:"missing_points"`

	RequiresHumanReview bool   `json:"requires_human_review"`
	ReviewReason        string `json:"review_reason"`
}

/* =========================================================
   Completion: hasil mentah satu panggilan gateway
========================================================= */

type Completion struct {
	Text           string          `json:"text"`
	Model          string          `json:"model"`
	Provider       string          `json:"provider"`
	RawResponse    json.RawMessage `json:"raw_response"`
	ProcessingTime int64           `json:"processing_time_ms"`
}

/* =========================================================
   Error taxonomy pipeline LLM
========================================================= */

// ParseError balasan model tidak bisa di-decode jadi JSON.
// Raw disimpan untuk diagnosa.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("llm response is not valid JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError JSON-nya valid tapi field wajib hilang/salah tipe
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid judgment field %q: %s", e.Field, e.Reason)
}

// ExternalServiceError panggilan provider gagal/timeout
type ExternalServiceError struct {
	Provider string
	Err      error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s call failed: %v", e.Provider, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }
