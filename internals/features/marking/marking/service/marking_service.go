// file: internals/features/marking/marking/service/marking_service.go
package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"ujianku_backend/internals/constants"
	attemptmodel "ujianku_backend/internals/features/marking/attempts/model"
	guidemodel "ujianku_backend/internals/features/marking/guides/model"
	"ujianku_backend/internals/features/marking/llm"
	dto "ujianku_backend/internals/features/marking/marking/dto"
	model "ujianku_backend/internals/features/marking/marking/model"
)

/* =========================================================
   SERVICE
========================================================= */

type MarkingService struct {
	Attempts AttemptSource
	Guides   GuideSource
	Results  ResultStore
	Client   llm.Completer
}

func NewMarkingService(db *gorm.DB, client llm.Completer) *MarkingService {
	return &MarkingService{
		Attempts: NewAttemptStore(db),
		Guides:   NewGuideStore(db),
		Results:  NewResultStore(db),
		Client:   client,
	}
}

/* =========================================================
   GRADE
========================================================= */

func ComputeGrade(percentage float64) string {
	switch {
	case percentage >= 90:
		return "A"
	case percentage >= 80:
		return "B"
	case percentage >= 70:
		return "C"
	case percentage >= 60:
		return "D"
	default:
		return "F"
	}
}

/* =========================================================
   MARK ONE
========================================================= */

// MarkOne nilai satu jawaban: build prompt → panggil LLM → parse →
// clamp → kebijakan review → persist. Kalau ada step yang gagal,
// TIDAK ada row yang ditulis sama sekali.
func (s *MarkingService) MarkOne(ctx context.Context, answer *attemptmodel.StudentAnswerModel, guide *guidemodel.MarkingGuideModel) (*model.LLMMarkingResultModel, error) {
	prompt, err := llm.BuildMarkingPrompt(answer.StudentAnswerText, answer.StudentAnswerMaxMarks, guide)
	if err != nil {
		return nil, err
	}

	completion, err := s.Client.Complete(ctx, prompt, llm.DefaultSystemPrompt)
	if err != nil {
		return nil, err
	}

	judgment, err := llm.ParseJudgment(completion.Text)
	if err != nil {
		return nil, err
	}

	awarded := llm.ClampMarks(judgment.AwardedMarks, answer.StudentAnswerMaxMarks)
	if awarded != judgment.AwardedMarks {
		log.Printf("[WARN] awarded marks %g di luar rentang [0, %g], di-clamp jadi %g (answer_id=%s)",
			judgment.AwardedMarks, answer.StudentAnswerMaxMarks, awarded, answer.StudentAnswerID)
	}

	requiresReview, reasons := llm.EvaluateReviewPolicy(judgment, awarded, answer.StudentAnswerMaxMarks)

	result := &model.LLMMarkingResultModel{
		LLMMarkingResultAnswerID:   answer.StudentAnswerID,
		LLMMarkingResultAttemptID:  answer.StudentAnswerAttemptID,
		LLMMarkingResultQuestionID: answer.StudentAnswerQuestionID,

		LLMMarkingResultGuideID:      guide.MarkingGuideID,
		LLMMarkingResultGuideVersion: guide.MarkingGuideVersion,

		LLMMarkingResultAwardedMarks:    awarded,
		LLMMarkingResultMaxMarks:        answer.StudentAnswerMaxMarks,
		LLMMarkingResultConfidenceScore: judgment.ConfidenceScore,

		LLMMarkingResultContentAccuracyScore:      judgment.ContentAccuracyScore,
		LLMMarkingResultCompletenessScore:         judgment.CompletenessScore,
		LLMMarkingResultClarityScore:              judgment.ClarityScore,
		LLMMarkingResultTechnicalCorrectnessScore: judgment.TechnicalCorrectnessScore,

		LLMMarkingResultFeedback:   judgment.Feedback,
		LLMMarkingResultStrengths:  mustJSON(judgment.Strengths),
		LLMMarkingResultWeaknesses: mustJSON(judgment.Weaknesses),

		LLMMarkingResultKeyPointsIdentified: mustJSON(judgment.KeyPointsIdentified),
		LLMMarkingResultMissingPoints:       mustJSON(judgment.MissingPoints),

		LLMMarkingResultRequiresReview: requiresReview,

		LLMMarkingResultModel:            completion.Model,
		LLMMarkingResultProvider:         completion.Provider,
		LLMMarkingResultProcessingTimeMs: completion.ProcessingTime,
		LLMMarkingResultRequestPayload: mustJSON(map[string]interface{}{
			"prompt": prompt,
			"model":  s.Client.GetModel(),
		}),
		LLMMarkingResultResponsePayload: datatypes.JSON(completion.RawResponse),
	}
	if requiresReview {
		result.LLMMarkingResultReviewReasons = mustJSON(reasons)
	}

	if err := s.Results.SaveResult(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

/* =========================================================
   MARK BATCH
========================================================= */

// MarkBatch nilai seluruh jawaban satu attempt secara berurutan.
// Gagal per-jawaban di-log dan dilewati, batch jalan terus. Skor
// attempt di-update SEKALI di akhir, dihitung hanya dari jawaban
// yang sukses dinilai.
func (s *MarkingService) MarkBatch(ctx context.Context, attemptID uuid.UUID) (*dto.BatchMarkingSummary, error) {
	attempt, err := s.Attempts.AttemptByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Exam attempt not found")
	}
	if !attempt.IsSubmitted() {
		return nil, fiber.NewError(fiber.StatusPreconditionFailed,
			"Attempt must be submitted before marking")
	}

	answers, err := s.Attempts.AnswersByAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if len(answers) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "No answers found for this attempt")
	}

	summary := &dto.BatchMarkingSummary{
		AttemptID:    attemptID,
		TotalAnswers: len(answers),
	}

	for i := range answers {
		ans := &answers[i]

		guide, err := s.Guides.ActiveGuideByQuestion(ctx, ans.StudentAnswerQuestionID)
		if err != nil {
			return nil, err
		}
		if guide == nil {
			log.Printf("[WARN] tidak ada guide aktif untuk question_id=%s, jawaban dilewati",
				ans.StudentAnswerQuestionID)
			summary.SkippedAnswers++
			continue
		}

		result, err := s.MarkOne(ctx, ans, guide)
		if err != nil {
			log.Printf("[ERROR] gagal menilai answer_id=%s: %v", ans.StudentAnswerID, err)
			summary.FailedAnswers++
			continue
		}

		summary.MarkedAnswers++
		summary.TotalScore += result.LLMMarkingResultAwardedMarks
		summary.TotalPossible += result.LLMMarkingResultMaxMarks
		if result.LLMMarkingResultRequiresReview {
			summary.RequiresReview++
		}
	}

	if summary.MarkedAnswers == 0 {
		return summary, nil
	}
	if summary.TotalPossible > 0 {
		summary.Percentage = summary.TotalScore / summary.TotalPossible * 100
	}
	summary.Grade = ComputeGrade(summary.Percentage)

	graded := summary.MarkedAnswers == summary.TotalAnswers
	if err := s.Attempts.UpdateAttemptScore(ctx, attemptID,
		summary.TotalScore, summary.Percentage, summary.Grade, graded); err != nil {
		return nil, err
	}
	return summary, nil
}

/* =========================================================
   QUERIES
========================================================= */

// ResultsByAttempt: student cuma boleh lihat attempt miliknya sendiri.
func (s *MarkingService) ResultsByAttempt(ctx context.Context, attemptID, requesterID uuid.UUID, role string) ([]model.LLMMarkingResultModel, error) {
	attempt, err := s.Attempts.AttemptByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Exam attempt not found")
	}
	if role == constants.RoleStudent && attempt.ExamAttemptStudentID != requesterID {
		return nil, fiber.NewError(fiber.StatusForbidden,
			"You can only view results for your own attempts")
	}
	return s.Results.LatestResultsByAttempt(ctx, attemptID)
}

func (s *MarkingService) ReviewQueue(ctx context.Context, limit, offset int) ([]model.LLMMarkingResultModel, int64, error) {
	return s.Results.ReviewQueue(ctx, limit, offset)
}

/* =========================================================
   REVIEW
========================================================= */

// ReviewMarking terapkan keputusan reviewer atas satu hasil LLM:
//   - approved → nilai LLM dipertahankan
//   - modified → nilai ditimpa final_marks (wajib, ≤ max)
//   - rejected → nilai LLM dianggap tidak valid, flag tetap dibersihkan
func (s *MarkingService) ReviewMarking(ctx context.Context, resultID, reviewerID uuid.UUID, req *dto.ReviewMarkingRequest) (*model.MarkingReviewModel, error) {
	if !model.ValidReviewStatus(req.Status) {
		return nil, fiber.NewError(fiber.StatusBadRequest,
			"Status must be one of: approved, modified, rejected")
	}

	result, err := s.Results.ResultByID(ctx, resultID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Marking result not found")
	}

	final := result.LLMMarkingResultAwardedMarks
	var overwrite *float64
	if model.ReviewStatus(req.Status) == model.ReviewStatusModified {
		if req.FinalMarks == nil {
			return nil, fiber.NewError(fiber.StatusBadRequest,
				"final_marks is required when status is modified")
		}
		if *req.FinalMarks < 0 || *req.FinalMarks > result.LLMMarkingResultMaxMarks {
			return nil, fiber.NewError(fiber.StatusBadRequest,
				"Final marks must be between 0 and the maximum marks")
		}
		final = *req.FinalMarks
		overwrite = req.FinalMarks
	}

	review := &model.MarkingReviewModel{
		MarkingReviewResultID:       resultID,
		MarkingReviewReviewerID:     reviewerID,
		MarkingReviewStatus:         model.ReviewStatus(req.Status),
		MarkingReviewAwardedMarks:   result.LLMMarkingResultAwardedMarks,
		MarkingReviewFinalMarks:     final,
		MarkingReviewComments:       req.Comments,
		MarkingReviewAccuracyRating: req.AccuracyRating,
	}

	if err := s.Results.ApplyReview(ctx, review, overwrite); err != nil {
		return nil, err
	}
	return review, nil
}

/* =========================================================
   STATISTICS
========================================================= */

func (s *MarkingService) MarkingStats(ctx context.Context, filter StatsFilter) (*dto.MarkingStatistics, error) {
	rows, err := s.Results.ResultsForStats(ctx, filter)
	if err != nil {
		return nil, err
	}
	return BuildMarkingStatistics(rows), nil
}

func (s *MarkingService) ReviewStats(ctx context.Context) (*dto.ReviewStatistics, error) {
	rows, err := s.Results.ReviewsForStats(ctx)
	if err != nil {
		return nil, err
	}
	return BuildReviewStatistics(rows), nil
}

/* =========================================================
   UTIL
========================================================= */

func mustJSON(v interface{}) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(raw)
}
