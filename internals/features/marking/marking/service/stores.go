// file: internals/features/marking/marking/service/stores.go
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	attemptmodel "ujianku_backend/internals/features/marking/attempts/model"
	guidemodel "ujianku_backend/internals/features/marking/guides/model"
	model "ujianku_backend/internals/features/marking/marking/model"
)

/* =========================================================
   NARROW INTERFACES
   Orkestrator cuma butuh segini; gampang di-fake di test.
========================================================= */

type AttemptSource interface {
	AttemptByID(ctx context.Context, id uuid.UUID) (*attemptmodel.ExamAttemptModel, error)
	AnswersByAttempt(ctx context.Context, attemptID uuid.UUID) ([]attemptmodel.StudentAnswerModel, error)
	UpdateAttemptScore(ctx context.Context, attemptID uuid.UUID, total, percentage float64, grade string, graded bool) error
}

type GuideSource interface {
	ActiveGuideByQuestion(ctx context.Context, questionID uuid.UUID) (*guidemodel.MarkingGuideModel, error)
}

type ResultStore interface {
	SaveResult(ctx context.Context, m *model.LLMMarkingResultModel) error
	ResultByID(ctx context.Context, id uuid.UUID) (*model.LLMMarkingResultModel, error)
	LatestResultsByAttempt(ctx context.Context, attemptID uuid.UUID) ([]model.LLMMarkingResultModel, error)
	ReviewQueue(ctx context.Context, limit, offset int) ([]model.LLMMarkingResultModel, int64, error)
	ResultsForStats(ctx context.Context, filter StatsFilter) ([]model.LLMMarkingResultModel, error)
	ApplyReview(ctx context.Context, review *model.MarkingReviewModel, overwriteMarks *float64) error
	ReviewsForStats(ctx context.Context) ([]model.MarkingReviewModel, error)
}

/* =========================================================
   GORM-BACKED IMPLEMENTATIONS
========================================================= */

type gormAttemptStore struct{ db *gorm.DB }

func NewAttemptStore(db *gorm.DB) AttemptSource { return &gormAttemptStore{db: db} }

func (s *gormAttemptStore) AttemptByID(ctx context.Context, id uuid.UUID) (*attemptmodel.ExamAttemptModel, error) {
	var m attemptmodel.ExamAttemptModel
	if err := s.db.WithContext(ctx).
		First(&m, "exam_attempt_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (s *gormAttemptStore) AnswersByAttempt(ctx context.Context, attemptID uuid.UUID) ([]attemptmodel.StudentAnswerModel, error) {
	var rows []attemptmodel.StudentAnswerModel
	if err := s.db.WithContext(ctx).
		Where("student_answer_attempt_id = ?", attemptID).
		Order("student_answer_created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *gormAttemptStore) UpdateAttemptScore(ctx context.Context, attemptID uuid.UUID, total, percentage float64, grade string, graded bool) error {
	updates := map[string]interface{}{
		"exam_attempt_total_score": total,
		"exam_attempt_percentage":  percentage,
		"exam_attempt_grade":       grade,
	}
	if graded {
		updates["exam_attempt_status"] = attemptmodel.AttemptStatusGraded
	}
	return s.db.WithContext(ctx).
		Model(&attemptmodel.ExamAttemptModel{}).
		Where("exam_attempt_id = ?", attemptID).
		Updates(updates).Error
}

type gormGuideStore struct{ db *gorm.DB }

func NewGuideStore(db *gorm.DB) GuideSource { return &gormGuideStore{db: db} }

func (s *gormGuideStore) ActiveGuideByQuestion(ctx context.Context, questionID uuid.UUID) (*guidemodel.MarkingGuideModel, error) {
	var m guidemodel.MarkingGuideModel
	if err := s.db.WithContext(ctx).
		Where("marking_guide_question_id = ? AND marking_guide_is_active = TRUE", questionID).
		Order("marking_guide_version DESC").
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

type gormResultStore struct{ db *gorm.DB }

func NewResultStore(db *gorm.DB) ResultStore { return &gormResultStore{db: db} }

func (s *gormResultStore) SaveResult(ctx context.Context, m *model.LLMMarkingResultModel) error {
	return s.db.WithContext(ctx).Create(m).Error
}

func (s *gormResultStore) ResultByID(ctx context.Context, id uuid.UUID) (*model.LLMMarkingResultModel, error) {
	var m model.LLMMarkingResultModel
	if err := s.db.WithContext(ctx).
		First(&m, "llm_marking_result_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// LatestResultsByAttempt: satu jawaban bisa dinilai ulang, yang dipakai
// selalu hasil terbaru per answer.
func (s *gormResultStore) LatestResultsByAttempt(ctx context.Context, attemptID uuid.UUID) ([]model.LLMMarkingResultModel, error) {
	var rows []model.LLMMarkingResultModel
	if err := s.db.WithContext(ctx).
		Where("llm_marking_result_attempt_id = ?", attemptID).
		Order("llm_marking_result_created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool, len(rows))
	latest := make([]model.LLMMarkingResultModel, 0, len(rows))
	for i := range rows {
		if seen[rows[i].LLMMarkingResultAnswerID] {
			continue
		}
		seen[rows[i].LLMMarkingResultAnswerID] = true
		latest = append(latest, rows[i])
	}
	return latest, nil
}

func (s *gormResultStore) ReviewQueue(ctx context.Context, limit, offset int) ([]model.LLMMarkingResultModel, int64, error) {
	q := s.db.WithContext(ctx).
		Model(&model.LLMMarkingResultModel{}).
		Where("llm_marking_result_requires_review = TRUE")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.LLMMarkingResultModel
	if err := q.
		Order("llm_marking_result_created_at DESC").
		Limit(limit).Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// StatsFilter scope agregasi: per attempt, per exam, atau per guide.
// Semua nil = seluruh sistem.
type StatsFilter struct {
	AttemptID *uuid.UUID
	ExamID    *uuid.UUID
	GuideID   *uuid.UUID
}

func (s *gormResultStore) ResultsForStats(ctx context.Context, filter StatsFilter) ([]model.LLMMarkingResultModel, error) {
	q := s.db.WithContext(ctx).Model(&model.LLMMarkingResultModel{})
	if filter.AttemptID != nil {
		q = q.Where("llm_marking_result_attempt_id = ?", *filter.AttemptID)
	}
	if filter.ExamID != nil {
		q = q.Where("llm_marking_result_attempt_id IN (?)",
			s.db.Model(&attemptmodel.ExamAttemptModel{}).
				Select("exam_attempt_id").
				Where("exam_attempt_exam_id = ?", *filter.ExamID))
	}
	if filter.GuideID != nil {
		q = q.Where("llm_marking_result_guide_id = ?", *filter.GuideID)
	}
	var rows []model.LLMMarkingResultModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ApplyReview simpan keputusan reviewer + sinkronkan result dalam satu
// transaksi. overwriteMarks != nil hanya untuk status modified.
func (s *gormResultStore) ApplyReview(ctx context.Context, review *model.MarkingReviewModel, overwriteMarks *float64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(review).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{
			"llm_marking_result_requires_review": false,
		}
		if overwriteMarks != nil {
			updates["llm_marking_result_awarded_marks"] = *overwriteMarks
		}
		return tx.Model(&model.LLMMarkingResultModel{}).
			Where("llm_marking_result_id = ?", review.MarkingReviewResultID).
			Updates(updates).Error
	})
}

func (s *gormResultStore) ReviewsForStats(ctx context.Context) ([]model.MarkingReviewModel, error) {
	var rows []model.MarkingReviewModel
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
