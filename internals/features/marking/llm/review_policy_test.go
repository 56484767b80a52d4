// file: internals/features/marking/llm/review_policy_test.go
package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateReviewPolicy(t *testing.T) {
	tests := []struct {
		name        string
		judgment    Judgment
		awarded     float64
		max         float64
		wantReview  bool
		wantReasons []string
	}{
		{
			name:       "confident score away from every threshold passes",
			judgment:   Judgment{ConfidenceScore: 0.9},
			awarded:    3,
			max:        10,
			wantReview: false,
		},
		{
			name:       "low confidence and borderline stack up",
			judgment:   Judgment{ConfidenceScore: 0.65},
			awarded:    18,
			max:        20,
			wantReview: true,
			wantReasons: []string{
				"Low confidence (65.0%)",
				"Borderline score near 90% threshold",
			},
		},
		{
			name:       "high score needs verification",
			judgment:   Judgment{ConfidenceScore: 0.95},
			awarded:    19,
			max:        20,
			wantReview: true,
			wantReasons: []string{
				"High score (95.0%) requires verification",
				"Borderline score near 90% threshold",
			},
		},
		{
			name:       "low score needs verification",
			judgment:   Judgment{ConfidenceScore: 0.9},
			awarded:    2,
			max:        10,
			wantReview: true,
			wantReasons: []string{
				"Low score (20.0%) requires verification",
			},
		},
		{
			name: "model requested review with reason",
			judgment: Judgment{
				ConfidenceScore:     0.9,
				RequiresHumanReview: true,
				ReviewReason:        "Answer is ambiguous about caching semantics",
			},
			awarded:    3,
			max:        10,
			wantReview: true,
			wantReasons: []string{
				"Answer is ambiguous about caching semantics",
			},
		},
		{
			name: "model requested review without reason gets default",
			judgment: Judgment{
				ConfidenceScore:     0.9,
				RequiresHumanReview: true,
			},
			awarded:    3,
			max:        10,
			wantReview: true,
			wantReasons: []string{
				"Model requested human review",
			},
		},
		{
			name:       "only first borderline threshold reported",
			judgment:   Judgment{ConfidenceScore: 0.9},
			awarded:    5.5,
			max:        10,
			wantReview: true,
			wantReasons: []string{
				"Borderline score near 50% threshold",
			},
		},
		{
			name:       "zero max marks does not divide by zero",
			judgment:   Judgment{ConfidenceScore: 0.9},
			awarded:    0,
			max:        0,
			wantReview: true,
			wantReasons: []string{
				"Low score (0.0%) requires verification",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, reasons := EvaluateReviewPolicy(&tc.judgment, tc.awarded, tc.max)
			assert.Equal(t, tc.wantReview, got)
			if tc.wantReasons != nil {
				require.Equal(t, tc.wantReasons, reasons)
			} else {
				assert.Empty(t, reasons)
			}
		})
	}
}

func TestEvaluateReviewPolicy_Deterministic(t *testing.T) {
	j := Judgment{ConfidenceScore: 0.6}
	got1, reasons1 := EvaluateReviewPolicy(&j, 18, 20)
	got2, reasons2 := EvaluateReviewPolicy(&j, 18, 20)
	assert.Equal(t, got1, got2)
	assert.Equal(t, reasons1, reasons2)
}

func TestClampMarks(t *testing.T) {
	tests := []struct {
		name    string
		awarded float64
		max     float64
		want    float64
	}{
		{"within range", 7.5, 10, 7.5},
		{"negative clamps to zero", -2, 10, 0},
		{"above max clamps to max", 12, 10, 10},
		{"exact max stays", 10, 10, 10},
		{"exact zero stays", 0, 10, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClampMarks(tc.awarded, tc.max))
		})
	}
}
