// file: internals/features/marking/guides/dto/marking_guide_dto.go
package dto

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	model "ujianku_backend/internals/features/marking/guides/model"
)

/* ==============================
   Komposit (mirror model types)
============================== */

type KeyPointInput struct {
	Point    string   `json:"point" validate:"required"`
	Marks    float64  `json:"marks" validate:"gte=0"`
	Required bool     `json:"required"`
	Keywords []string `json:"keywords,omitempty" validate:"omitempty,dive,required"`
}

type RubricBandInput struct {
	Criteria string     `json:"criteria" validate:"required"`
	Range    [2]float64 `json:"range"`
}

type MarkingRubricInput struct {
	Excellent    RubricBandInput `json:"excellent" validate:"required"`
	Good         RubricBandInput `json:"good" validate:"required"`
	Satisfactory RubricBandInput `json:"satisfactory" validate:"required"`
	Poor         RubricBandInput `json:"poor" validate:"required"`
}

type EvaluationCriteriaInput struct {
	ContentAccuracy      string `json:"content_accuracy" validate:"required"`
	Completeness         string `json:"completeness" validate:"required"`
	Clarity              string `json:"clarity" validate:"required"`
	TechnicalCorrectness string `json:"technical_correctness" validate:"required"`
}

type CommonMistakeInput struct {
	Mistake   string  `json:"mistake" validate:"required"`
	Deduction float64 `json:"deduction" validate:"gte=0"`
}

type PartialCreditRuleInput struct {
	Condition        string  `json:"condition" validate:"required"`
	CreditPercentage float64 `json:"credit_percentage" validate:"gte=0,lte=100"`
}

/* ==============================
   CREATE (POST /marking-guides)
============================== */

type CreateMarkingGuideRequest struct {
	QuestionID  uuid.UUID `json:"question_id" validate:"required"`
	ModelAnswer string    `json:"model_answer" validate:"required"`

	KeyPoints          []KeyPointInput         `json:"key_points" validate:"required,min=1,dive"`
	MarkingRubric      MarkingRubricInput      `json:"marking_rubric" validate:"required"`
	EvaluationCriteria EvaluationCriteriaInput `json:"evaluation_criteria" validate:"required"`

	// Bobot opsional; kalau kosong pakai default 0.40/0.30/0.15/0.15
	ContentAccuracyWeight      *float64 `json:"content_accuracy_weight" validate:"omitempty,gte=0,lte=1"`
	CompletenessWeight         *float64 `json:"completeness_weight" validate:"omitempty,gte=0,lte=1"`
	ClarityWeight              *float64 `json:"clarity_weight" validate:"omitempty,gte=0,lte=1"`
	TechnicalCorrectnessWeight *float64 `json:"technical_correctness_weight" validate:"omitempty,gte=0,lte=1"`

	CommonMistakes     []CommonMistakeInput     `json:"common_mistakes,omitempty" validate:"omitempty,dive"`
	PartialCreditRules []PartialCreditRuleInput `json:"partial_credit_rules,omitempty" validate:"omitempty,dive"`
	Keywords           []string                 `json:"keywords,omitempty"`
}

// Bobot default saat request tidak mengisi (mengikuti guide lama)
const (
	DefaultContentAccuracyWeight      = 0.40
	DefaultCompletenessWeight         = 0.30
	DefaultClarityWeight              = 0.15
	DefaultTechnicalCorrectnessWeight = 0.15
)

func weightOr(v *float64, def float64) float64 {
	if v != nil {
		return *v
	}
	return def
}

// Weights hasil akhir 4 bobot setelah default diterapkan
func (r *CreateMarkingGuideRequest) Weights() (ca, co, cl, tc float64) {
	return weightOr(r.ContentAccuracyWeight, DefaultContentAccuracyWeight),
		weightOr(r.CompletenessWeight, DefaultCompletenessWeight),
		weightOr(r.ClarityWeight, DefaultClarityWeight),
		weightOr(r.TechnicalCorrectnessWeight, DefaultTechnicalCorrectnessWeight)
}

// ToModel bangun model baru (version & is_active diisi service)
func (r *CreateMarkingGuideRequest) ToModel(createdBy uuid.UUID) (*model.MarkingGuideModel, error) {
	kp, err := json.Marshal(r.KeyPoints)
	if err != nil {
		return nil, err
	}
	rb, err := json.Marshal(r.MarkingRubric)
	if err != nil {
		return nil, err
	}
	ec, err := json.Marshal(r.EvaluationCriteria)
	if err != nil {
		return nil, err
	}

	m := &model.MarkingGuideModel{
		MarkingGuideQuestionID:  r.QuestionID,
		MarkingGuideModelAnswer: strings.TrimSpace(r.ModelAnswer),
		MarkingGuideKeyPoints:   datatypes.JSON(kp),
		MarkingGuideRubric:      datatypes.JSON(rb),
		MarkingGuideCriteria:    datatypes.JSON(ec),
		MarkingGuideCreatedBy:   createdBy,
		MarkingGuideKeywords:    r.Keywords,
	}
	m.MarkingGuideContentAccuracyWeight,
		m.MarkingGuideCompletenessWeight,
		m.MarkingGuideClarityWeight,
		m.MarkingGuideTechnicalCorrectnessWeight = r.Weights()

	if len(r.CommonMistakes) > 0 {
		cm, err := json.Marshal(r.CommonMistakes)
		if err != nil {
			return nil, err
		}
		m.MarkingGuideCommonMistakes = datatypes.JSON(cm)
	}
	if len(r.PartialCreditRules) > 0 {
		pc, err := json.Marshal(r.PartialCreditRules)
		if err != nil {
			return nil, err
		}
		m.MarkingGuidePartialCreditRules = datatypes.JSON(pc)
	}

	return m, nil
}

/* ==============================
   UPDATE (PATCH /marking-guides/:id)
============================== */

type UpdateMarkingGuideRequest struct {
	ModelAnswer *string `json:"model_answer" validate:"omitempty"`

	KeyPoints          []KeyPointInput          `json:"key_points,omitempty" validate:"omitempty,min=1,dive"`
	MarkingRubric      *MarkingRubricInput      `json:"marking_rubric,omitempty"`
	EvaluationCriteria *EvaluationCriteriaInput `json:"evaluation_criteria,omitempty"`

	ContentAccuracyWeight      *float64 `json:"content_accuracy_weight" validate:"omitempty,gte=0,lte=1"`
	CompletenessWeight         *float64 `json:"completeness_weight" validate:"omitempty,gte=0,lte=1"`
	ClarityWeight              *float64 `json:"clarity_weight" validate:"omitempty,gte=0,lte=1"`
	TechnicalCorrectnessWeight *float64 `json:"technical_correctness_weight" validate:"omitempty,gte=0,lte=1"`

	CommonMistakes     []CommonMistakeInput     `json:"common_mistakes,omitempty" validate:"omitempty,dive"`
	PartialCreditRules []PartialCreditRuleInput `json:"partial_credit_rules,omitempty" validate:"omitempty,dive"`
	Keywords           []string                 `json:"keywords,omitempty"`
}

// TouchesWeights true jika ada bobot yang mau diubah (perlu re-validasi total)
func (r *UpdateMarkingGuideRequest) TouchesWeights() bool {
	return r.ContentAccuracyWeight != nil ||
		r.CompletenessWeight != nil ||
		r.ClarityWeight != nil ||
		r.TechnicalCorrectnessWeight != nil
}

/* ==============================
   LIST (GET /marking-guides)
============================== */

type ListMarkingGuidesQuery struct {
	QuestionID *uuid.UUID `query:"question_id"`
	CreatedBy  *uuid.UUID `query:"created_by"`
	ActiveOnly *bool      `query:"active_only"`
}

/* ==============================
   VALIDATE (POST /marking-guides/validate)
============================== */

type GuideValidationReport struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

/* ==============================
   RESPONSE
============================== */

type MarkingGuideResponse struct {
	MarkingGuideID         uuid.UUID `json:"marking_guide_id"`
	MarkingGuideQuestionID uuid.UUID `json:"marking_guide_question_id"`
	MarkingGuideVersion    int       `json:"marking_guide_version"`

	ModelAnswer        string          `json:"model_answer"`
	KeyPoints          json.RawMessage `json:"key_points"`
	MarkingRubric      json.RawMessage `json:"marking_rubric"`
	EvaluationCriteria json.RawMessage `json:"evaluation_criteria"`

	ContentAccuracyWeight      float64 `json:"content_accuracy_weight"`
	CompletenessWeight         float64 `json:"completeness_weight"`
	ClarityWeight              float64 `json:"clarity_weight"`
	TechnicalCorrectnessWeight float64 `json:"technical_correctness_weight"`

	CommonMistakes     json.RawMessage `json:"common_mistakes,omitempty"`
	PartialCreditRules json.RawMessage `json:"partial_credit_rules,omitempty"`
	Keywords           []string        `json:"keywords,omitempty"`

	IsActive  bool      `json:"is_active"`
	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromModel(m *model.MarkingGuideModel) MarkingGuideResponse {
	return MarkingGuideResponse{
		MarkingGuideID:         m.MarkingGuideID,
		MarkingGuideQuestionID: m.MarkingGuideQuestionID,
		MarkingGuideVersion:    m.MarkingGuideVersion,

		ModelAnswer:        m.MarkingGuideModelAnswer,
		KeyPoints:          json.RawMessage(m.MarkingGuideKeyPoints),
		MarkingRubric:      json.RawMessage(m.MarkingGuideRubric),
		EvaluationCriteria: json.RawMessage(m.MarkingGuideCriteria),

		ContentAccuracyWeight:      m.MarkingGuideContentAccuracyWeight,
		CompletenessWeight:         m.MarkingGuideCompletenessWeight,
		ClarityWeight:              m.MarkingGuideClarityWeight,
		TechnicalCorrectnessWeight: m.MarkingGuideTechnicalCorrectnessWeight,

		CommonMistakes:     json.RawMessage(m.MarkingGuideCommonMistakes),
		PartialCreditRules: json.RawMessage(m.MarkingGuidePartialCreditRules),
		Keywords:           m.MarkingGuideKeywords,

		IsActive:  m.MarkingGuideIsActive,
		CreatedBy: m.MarkingGuideCreatedBy,
		CreatedAt: m.MarkingGuideCreatedAt,
		UpdatedAt: m.MarkingGuideUpdatedAt,
	}
}

func FromModels(ms []model.MarkingGuideModel) []MarkingGuideResponse {
	out := make([]MarkingGuideResponse, 0, len(ms))
	for i := range ms {
		out = append(out, FromModel(&ms[i]))
	}
	return out
}
