// file: internals/features/marking/marking/service/statistics.go
package service

import (
	"math"

	dto "ujianku_backend/internals/features/marking/marking/dto"
	model "ujianku_backend/internals/features/marking/marking/model"
)

/* =========================================================
   AGREGASI (pure, tanpa DB)
========================================================= */

// BuildMarkingStatistics agregasi kualitas penilaian LLM.
// Bucket confidence: low < 0.5, medium 0.5–0.7, high > 0.9.
func BuildMarkingStatistics(results []model.LLMMarkingResultModel) *dto.MarkingStatistics {
	stats := &dto.MarkingStatistics{TotalMarked: len(results)}
	if len(results) == 0 {
		return stats
	}

	var sumConfidence, sumPercentage float64
	for i := range results {
		r := &results[i]
		sumConfidence += r.LLMMarkingResultConfidenceScore
		sumPercentage += r.Percentage()
		if r.LLMMarkingResultRequiresReview {
			stats.FlaggedForReview++
		}

		switch c := r.LLMMarkingResultConfidenceScore; {
		case c < 0.5:
			stats.ConfidenceDistribution.Low++
		case c <= 0.7:
			stats.ConfidenceDistribution.Medium++
		case c > 0.9:
			stats.ConfidenceDistribution.High++
		}
	}

	n := float64(len(results))
	stats.AverageConfidence = sumConfidence / n
	stats.AveragePercentage = sumPercentage / n
	stats.FlaggedPercentage = float64(stats.FlaggedForReview) / n * 100
	return stats
}

// BuildReviewStatistics agregasi keputusan reviewer. Average mark
// adjustment = rata-rata |final - awarded|, ukuran seberapa jauh
// manusia mengoreksi LLM.
func BuildReviewStatistics(reviews []model.MarkingReviewModel) *dto.ReviewStatistics {
	stats := &dto.ReviewStatistics{TotalReviews: len(reviews)}
	if len(reviews) == 0 {
		return stats
	}

	var sumAdjustment float64
	for i := range reviews {
		r := &reviews[i]
		switch r.MarkingReviewStatus {
		case model.ReviewStatusApproved:
			stats.ApprovedCount++
		case model.ReviewStatusModified:
			stats.ModifiedCount++
		case model.ReviewStatusRejected:
			stats.RejectedCount++
		}
		sumAdjustment += math.Abs(r.MarkingReviewFinalMarks - r.MarkingReviewAwardedMarks)
	}

	stats.AverageMarkAdjustment = sumAdjustment / float64(len(reviews))
	return stats
}
