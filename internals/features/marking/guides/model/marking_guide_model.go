// file: internals/features/marking/guides/model/marking_guide_model.go
package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Toleransi penjumlahan bobot evaluasi (4 bobot harus total 1.0)
const WeightSumTolerance = 0.01

type MarkingGuideModel struct {
	MarkingGuideID         uuid.UUID `gorm:"column:marking_guide_id;type:uuid;primaryKey;default:gen_random_uuid()" json:"marking_guide_id"`
	MarkingGuideQuestionID uuid.UUID `gorm:"column:marking_guide_question_id;type:uuid;not null;index" json:"marking_guide_question_id"`
	MarkingGuideVersion    int       `gorm:"column:marking_guide_version;not null;default:1" json:"marking_guide_version"`

	MarkingGuideModelAnswer string         `gorm:"column:marking_guide_model_answer;type:text;not null" json:"marking_guide_model_answer"`
	MarkingGuideKeyPoints   datatypes.JSON `gorm:"column:marking_guide_key_points;type:jsonb;not null" json:"marking_guide_key_points"`
	MarkingGuideRubric      datatypes.JSON `gorm:"column:marking_guide_rubric;type:jsonb;not null" json:"marking_guide_rubric"`
	MarkingGuideCriteria    datatypes.JSON `gorm:"column:marking_guide_evaluation_criteria;type:jsonb;not null" json:"marking_guide_evaluation_criteria"`

	MarkingGuideContentAccuracyWeight      float64 `gorm:"column:marking_guide_content_accuracy_weight;type:numeric(4,2);not null;default:0.40" json:"marking_guide_content_accuracy_weight"`
	MarkingGuideCompletenessWeight         float64 `gorm:"column:marking_guide_completeness_weight;type:numeric(4,2);not null;default:0.30" json:"marking_guide_completeness_weight"`
	MarkingGuideClarityWeight              float64 `gorm:"column:marking_guide_clarity_weight;type:numeric(4,2);not null;default:0.15" json:"marking_guide_clarity_weight"`
	MarkingGuideTechnicalCorrectnessWeight float64 `gorm:"column:marking_guide_technical_correctness_weight;type:numeric(4,2);not null;default:0.15" json:"marking_guide_technical_correctness_weight"`

	MarkingGuideCommonMistakes     datatypes.JSON `gorm:"column:marking_guide_common_mistakes;type:jsonb" json:"marking_guide_common_mistakes,omitempty"`
	MarkingGuidePartialCreditRules datatypes.JSON `gorm:"column:marking_guide_partial_credit_rules;type:jsonb" json:"marking_guide_partial_credit_rules,omitempty"`
	MarkingGuideKeywords           pq.StringArray `gorm:"column:marking_guide_keywords;type:text[]" json:"marking_guide_keywords,omitempty"`

	MarkingGuideIsActive  bool      `gorm:"column:marking_guide_is_active;not null;default:true" json:"marking_guide_is_active"`
	MarkingGuideCreatedBy uuid.UUID `gorm:"column:marking_guide_created_by;type:uuid;not null" json:"marking_guide_created_by"`

	MarkingGuideCreatedAt time.Time `gorm:"column:marking_guide_created_at;autoCreateTime" json:"marking_guide_created_at"`
	MarkingGuideUpdatedAt time.Time `gorm:"column:marking_guide_updated_at;autoUpdateTime" json:"marking_guide_updated_at"`
}

func (MarkingGuideModel) TableName() string { return "marking_guides" }

/* ========================================
   Bentuk komposit (disimpan sebagai JSON)
======================================== */

// KeyPoint satu ide yang bisa diberi nilai di model answer
type KeyPoint struct {
	Point    string   `json:"point"`
	Marks    float64  `json:"marks"`
	Required bool     `json:"required"`
	Keywords []string `json:"keywords,omitempty"`
}

// RubricBand satu band rubrik (criteria + rentang nilai)
type RubricBand struct {
	Criteria string     `json:"criteria"`
	Range    [2]float64 `json:"range"`
}

// MarkingRubric empat band tetap: excellent/good/satisfactory/poor
type MarkingRubric struct {
	Excellent    RubricBand `json:"excellent"`
	Good         RubricBand `json:"good"`
	Satisfactory RubricBand `json:"satisfactory"`
	Poor         RubricBand `json:"poor"`
}

// EvaluationCriteria empat dimensi penilaian (teks bebas)
type EvaluationCriteria struct {
	ContentAccuracy      string `json:"content_accuracy"`
	Completeness         string `json:"completeness"`
	Clarity              string `json:"clarity"`
	TechnicalCorrectness string `json:"technical_correctness"`
}

type CommonMistake struct {
	Mistake   string  `json:"mistake"`
	Deduction float64 `json:"deduction"`
}

type PartialCreditRule struct {
	Condition        string  `json:"condition"`
	CreditPercentage float64 `json:"credit_percentage"`
}

/* ========================================
   Helpers decode kolom JSON
======================================== */

func (m *MarkingGuideModel) KeyPointList() ([]KeyPoint, error) {
	var out []KeyPoint
	if len(m.MarkingGuideKeyPoints) == 0 {
		return nil, fmt.Errorf("marking guide %s: key_points kosong", m.MarkingGuideID)
	}
	if err := json.Unmarshal(m.MarkingGuideKeyPoints, &out); err != nil {
		return nil, fmt.Errorf("marking guide %s: key_points rusak: %w", m.MarkingGuideID, err)
	}
	return out, nil
}

func (m *MarkingGuideModel) Rubric() (MarkingRubric, error) {
	var out MarkingRubric
	if len(m.MarkingGuideRubric) == 0 {
		return out, fmt.Errorf("marking guide %s: rubric kosong", m.MarkingGuideID)
	}
	if err := json.Unmarshal(m.MarkingGuideRubric, &out); err != nil {
		return out, fmt.Errorf("marking guide %s: rubric rusak: %w", m.MarkingGuideID, err)
	}
	return out, nil
}

func (m *MarkingGuideModel) Criteria() (EvaluationCriteria, error) {
	var out EvaluationCriteria
	if len(m.MarkingGuideCriteria) == 0 {
		return out, fmt.Errorf("marking guide %s: evaluation_criteria kosong", m.MarkingGuideID)
	}
	if err := json.Unmarshal(m.MarkingGuideCriteria, &out); err != nil {
		return out, fmt.Errorf("marking guide %s: evaluation_criteria rusak: %w", m.MarkingGuideID, err)
	}
	return out, nil
}

func (m *MarkingGuideModel) CommonMistakeList() ([]CommonMistake, error) {
	if len(m.MarkingGuideCommonMistakes) == 0 {
		return nil, nil
	}
	var out []CommonMistake
	if err := json.Unmarshal(m.MarkingGuideCommonMistakes, &out); err != nil {
		return nil, fmt.Errorf("marking guide %s: common_mistakes rusak: %w", m.MarkingGuideID, err)
	}
	return out, nil
}

func (m *MarkingGuideModel) PartialCreditRuleList() ([]PartialCreditRule, error) {
	if len(m.MarkingGuidePartialCreditRules) == 0 {
		return nil, nil
	}
	var out []PartialCreditRule
	if err := json.Unmarshal(m.MarkingGuidePartialCreditRules, &out); err != nil {
		return nil, fmt.Errorf("marking guide %s: partial_credit_rules rusak: %w", m.MarkingGuideID, err)
	}
	return out, nil
}

// WeightSum total 4 bobot evaluasi
func (m *MarkingGuideModel) WeightSum() float64 {
	return m.MarkingGuideContentAccuracyWeight +
		m.MarkingGuideCompletenessWeight +
		m.MarkingGuideClarityWeight +
		m.MarkingGuideTechnicalCorrectnessWeight
}
