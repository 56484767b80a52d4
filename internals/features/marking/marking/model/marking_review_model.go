// file: internals/features/marking/marking/model/marking_review_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type ReviewStatus string

const (
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusModified ReviewStatus = "modified"
	ReviewStatusRejected ReviewStatus = "rejected"
)

func ValidReviewStatus(s string) bool {
	switch ReviewStatus(s) {
	case ReviewStatusApproved, ReviewStatusModified, ReviewStatusRejected:
		return true
	}
	return false
}

// MarkingReviewModel keputusan reviewer (dosen) atas satu hasil LLM.
type MarkingReviewModel struct {
	MarkingReviewID       uuid.UUID `gorm:"column:marking_review_id;type:uuid;primaryKey;default:gen_random_uuid()" json:"marking_review_id"`
	MarkingReviewResultID uuid.UUID `gorm:"column:marking_review_result_id;type:uuid;not null;index" json:"marking_review_result_id"`

	MarkingReviewReviewerID uuid.UUID    `gorm:"column:marking_review_reviewer_id;type:uuid;not null;index" json:"marking_review_reviewer_id"`
	MarkingReviewStatus     ReviewStatus `gorm:"column:marking_review_status;type:varchar(16);not null" json:"marking_review_status"`

	// Awarded = nilai LLM saat direview, Final = nilai setelah keputusan.
	MarkingReviewAwardedMarks float64 `gorm:"column:marking_review_awarded_marks;type:numeric(5,2);not null" json:"marking_review_awarded_marks"`
	MarkingReviewFinalMarks   float64 `gorm:"column:marking_review_final_marks;type:numeric(5,2);not null" json:"marking_review_final_marks"`

	MarkingReviewComments       *string `gorm:"column:marking_review_comments;type:text" json:"marking_review_comments,omitempty"`
	MarkingReviewAccuracyRating *int    `gorm:"column:marking_review_accuracy_rating" json:"marking_review_accuracy_rating,omitempty"`

	MarkingReviewCreatedAt time.Time `gorm:"column:marking_review_created_at;autoCreateTime" json:"marking_review_created_at"`
}

func (MarkingReviewModel) TableName() string { return "marking_reviews" }
