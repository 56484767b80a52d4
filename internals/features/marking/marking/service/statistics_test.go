// file: internals/features/marking/marking/service/statistics_test.go
package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "ujianku_backend/internals/features/marking/marking/model"
)

func result(awarded, max, confidence float64, review bool) model.LLMMarkingResultModel {
	return model.LLMMarkingResultModel{
		LLMMarkingResultAwardedMarks:    awarded,
		LLMMarkingResultMaxMarks:        max,
		LLMMarkingResultConfidenceScore: confidence,
		LLMMarkingResultRequiresReview:  review,
	}
}

func TestBuildMarkingStatistics_Empty(t *testing.T) {
	stats := BuildMarkingStatistics(nil)
	require.NotNil(t, stats)
	assert.Zero(t, stats.TotalMarked)
	assert.Zero(t, stats.AverageConfidence)
	assert.Zero(t, stats.FlaggedPercentage)
}

func TestBuildMarkingStatistics_ConfidenceBuckets(t *testing.T) {
	results := []model.LLMMarkingResultModel{
		result(3, 10, 0.3, true),   // low
		result(6, 10, 0.6, true),   // medium
		result(9, 10, 0.95, false), // high
	}

	stats := BuildMarkingStatistics(results)

	assert.Equal(t, 3, stats.TotalMarked)
	assert.Equal(t, 1, stats.ConfidenceDistribution.Low)
	assert.Equal(t, 1, stats.ConfidenceDistribution.Medium)
	assert.Equal(t, 1, stats.ConfidenceDistribution.High)

	assert.InDelta(t, 0.6166, stats.AverageConfidence, 0.001)
	assert.InDelta(t, 60.0, stats.AveragePercentage, 0.001)
	assert.Equal(t, 2, stats.FlaggedForReview)
	assert.InDelta(t, 66.666, stats.FlaggedPercentage, 0.01)
}

func TestBuildMarkingStatistics_BucketBoundaries(t *testing.T) {
	results := []model.LLMMarkingResultModel{
		result(5, 10, 0.5, false),  // tepat 0.5 → medium
		result(5, 10, 0.7, false),  // tepat 0.7 → medium
		result(5, 10, 0.8, false),  // 0.7 < c ≤ 0.9 → tidak masuk bucket mana pun
		result(5, 10, 0.49, false), // low
	}

	stats := BuildMarkingStatistics(results)
	assert.Equal(t, 1, stats.ConfidenceDistribution.Low)
	assert.Equal(t, 2, stats.ConfidenceDistribution.Medium)
	assert.Equal(t, 0, stats.ConfidenceDistribution.High)
}

func TestBuildMarkingStatistics_ZeroMaxMarksSafe(t *testing.T) {
	stats := BuildMarkingStatistics([]model.LLMMarkingResultModel{
		result(0, 0, 0.8, false),
	})
	assert.Equal(t, 0.0, stats.AveragePercentage)
}

func TestBuildReviewStatistics(t *testing.T) {
	rev := func(status model.ReviewStatus, awarded, final float64) model.MarkingReviewModel {
		return model.MarkingReviewModel{
			MarkingReviewStatus:       status,
			MarkingReviewAwardedMarks: awarded,
			MarkingReviewFinalMarks:   final,
		}
	}

	stats := BuildReviewStatistics([]model.MarkingReviewModel{
		rev(model.ReviewStatusApproved, 7, 7),
		rev(model.ReviewStatusModified, 7, 8.5),
		rev(model.ReviewStatusModified, 6, 4),
		rev(model.ReviewStatusRejected, 9, 9),
	})

	assert.Equal(t, 4, stats.TotalReviews)
	assert.Equal(t, 1, stats.ApprovedCount)
	assert.Equal(t, 2, stats.ModifiedCount)
	assert.Equal(t, 1, stats.RejectedCount)
	// (0 + 1.5 + 2 + 0) / 4
	assert.InDelta(t, 0.875, stats.AverageMarkAdjustment, 0.0001)
}

func TestBuildReviewStatistics_Empty(t *testing.T) {
	stats := BuildReviewStatistics(nil)
	require.NotNil(t, stats)
	assert.Zero(t, stats.TotalReviews)
	assert.Zero(t, stats.AverageMarkAdjustment)
}
