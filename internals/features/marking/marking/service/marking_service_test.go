// file: internals/features/marking/marking/service/marking_service_test.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"ujianku_backend/internals/constants"
	attemptmodel "ujianku_backend/internals/features/marking/attempts/model"
	guidemodel "ujianku_backend/internals/features/marking/guides/model"
	"ujianku_backend/internals/features/marking/llm"
	dto "ujianku_backend/internals/features/marking/marking/dto"
	model "ujianku_backend/internals/features/marking/marking/model"
)

/* =========================================================
   FAKES
========================================================= */

type fakeAttempts struct {
	attempt *attemptmodel.ExamAttemptModel
	answers []attemptmodel.StudentAnswerModel

	scoreUpdates int
	lastTotal    float64
	lastPct      float64
	lastGrade    string
	lastGraded   bool
}

func (f *fakeAttempts) AttemptByID(_ context.Context, id uuid.UUID) (*attemptmodel.ExamAttemptModel, error) {
	if f.attempt == nil || f.attempt.ExamAttemptID != id {
		return nil, nil
	}
	return f.attempt, nil
}

func (f *fakeAttempts) AnswersByAttempt(_ context.Context, _ uuid.UUID) ([]attemptmodel.StudentAnswerModel, error) {
	return f.answers, nil
}

func (f *fakeAttempts) UpdateAttemptScore(_ context.Context, _ uuid.UUID, total, pct float64, grade string, graded bool) error {
	f.scoreUpdates++
	f.lastTotal = total
	f.lastPct = pct
	f.lastGrade = grade
	f.lastGraded = graded
	return nil
}

type fakeGuides struct {
	guides map[uuid.UUID]*guidemodel.MarkingGuideModel
}

func (f *fakeGuides) ActiveGuideByQuestion(_ context.Context, questionID uuid.UUID) (*guidemodel.MarkingGuideModel, error) {
	return f.guides[questionID], nil
}

type fakeResults struct {
	saved   []*model.LLMMarkingResultModel
	byID    map[uuid.UUID]*model.LLMMarkingResultModel
	reviews []*model.MarkingReviewModel
}

func (f *fakeResults) SaveResult(_ context.Context, m *model.LLMMarkingResultModel) error {
	f.saved = append(f.saved, m)
	return nil
}

func (f *fakeResults) ResultByID(_ context.Context, id uuid.UUID) (*model.LLMMarkingResultModel, error) {
	return f.byID[id], nil
}

func (f *fakeResults) LatestResultsByAttempt(_ context.Context, _ uuid.UUID) ([]model.LLMMarkingResultModel, error) {
	out := make([]model.LLMMarkingResultModel, 0, len(f.saved))
	for _, m := range f.saved {
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeResults) ReviewQueue(_ context.Context, _, _ int) ([]model.LLMMarkingResultModel, int64, error) {
	return nil, 0, nil
}

func (f *fakeResults) ResultsForStats(_ context.Context, _ StatsFilter) ([]model.LLMMarkingResultModel, error) {
	return nil, nil
}

func (f *fakeResults) ApplyReview(_ context.Context, review *model.MarkingReviewModel, overwriteMarks *float64) error {
	f.reviews = append(f.reviews, review)
	if res := f.byID[review.MarkingReviewResultID]; res != nil {
		res.LLMMarkingResultRequiresReview = false
		if overwriteMarks != nil {
			res.LLMMarkingResultAwardedMarks = *overwriteMarks
		}
	}
	return nil
}

func (f *fakeResults) ReviewsForStats(_ context.Context) ([]model.MarkingReviewModel, error) {
	return nil, nil
}

// fakeCompleter balasan per question_id (di-inject lewat prompt tidak
// mungkin, jadi urutan panggilan dipakai)
type fakeCompleter struct {
	replies []string
	errs    []error
	calls   int
}

func (f *fakeCompleter) Complete(_ context.Context, _, _ string) (*llm.Completion, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	return &llm.Completion{
		Text:           f.replies[i],
		Model:          "claude-sonnet-4-20250514",
		Provider:       "anthropic",
		RawResponse:    json.RawMessage(`{"id":"msg_test"}`),
		ProcessingTime: 1200,
	}, nil
}

func (f *fakeCompleter) GetModel() string { return "claude-sonnet-4-20250514" }

/* =========================================================
   FIXTURES
========================================================= */

func validGuide() *guidemodel.MarkingGuideModel {
	return &guidemodel.MarkingGuideModel{
		MarkingGuideID:          uuid.New(),
		MarkingGuideVersion:     1,
		MarkingGuideModelAnswer: "Jawaban model yang cukup panjang untuk dipakai.",
		MarkingGuideKeyPoints:   datatypes.JSON(`[{"point": "poin utama pertama", "marks": 5, "required": true}]`),
		MarkingGuideRubric: datatypes.JSON(`{
			"excellent": {"criteria": "lengkap", "range": [8, 10]},
			"good": {"criteria": "baik", "range": [6, 7.9]},
			"satisfactory": {"criteria": "cukup", "range": [4, 5.9]},
			"poor": {"criteria": "kurang", "range": [0, 3.9]}
		}`),
		MarkingGuideCriteria: datatypes.JSON(`{
			"content_accuracy": "akurat",
			"completeness": "lengkap",
			"clarity": "jelas",
			"technical_correctness": "tepat"
		}`),
		MarkingGuideContentAccuracyWeight:      0.4,
		MarkingGuideCompletenessWeight:         0.3,
		MarkingGuideClarityWeight:              0.15,
		MarkingGuideTechnicalCorrectnessWeight: 0.15,
		MarkingGuideKeywords:                   pq.StringArray{"index"},
		MarkingGuideIsActive:                   true,
	}
}

func replyWithMarks(marks, confidence float64) string {
	return fmt.Sprintf(`{
		"awarded_marks": %g,
		"confidence_score": %g,
		"feedback": "feedback singkat",
		"strengths": [], "weaknesses": [],
		"key_points_identified": [], "missing_points": [],
		"requires_human_review": false
	}`, marks, confidence)
}

func newTestService(attempts *fakeAttempts, guides *fakeGuides, results *fakeResults, client llm.Completer) *MarkingService {
	return &MarkingService{
		Attempts: attempts,
		Guides:   guides,
		Results:  results,
		Client:   client,
	}
}

/* =========================================================
   TESTS
========================================================= */

func TestComputeGrade(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{95, "A"}, {90, "A"},
		{89.9, "B"}, {80, "B"},
		{79.9, "C"}, {70, "C"},
		{69.9, "D"}, {60, "D"},
		{59.9, "F"}, {0, "F"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ComputeGrade(tc.pct), "pct=%g", tc.pct)
	}
}

func TestMarkOne_PersistsFullResult(t *testing.T) {
	guide := validGuide()
	answer := &attemptmodel.StudentAnswerModel{
		StudentAnswerID:         uuid.New(),
		StudentAnswerAttemptID:  uuid.New(),
		StudentAnswerQuestionID: uuid.New(),
		StudentAnswerText:       "jawaban student",
		StudentAnswerMaxMarks:   10,
	}
	results := &fakeResults{}
	svc := newTestService(&fakeAttempts{}, &fakeGuides{}, results,
		&fakeCompleter{replies: []string{replyWithMarks(3, 0.85)}})

	res, err := svc.MarkOne(context.Background(), answer, guide)
	require.NoError(t, err)
	require.Len(t, results.saved, 1)

	assert.Equal(t, answer.StudentAnswerID, res.LLMMarkingResultAnswerID)
	assert.Equal(t, guide.MarkingGuideID, res.LLMMarkingResultGuideID)
	assert.Equal(t, 1, res.LLMMarkingResultGuideVersion)
	assert.Equal(t, 3.0, res.LLMMarkingResultAwardedMarks)
	assert.Equal(t, 10.0, res.LLMMarkingResultMaxMarks)
	assert.Equal(t, 0.85, res.LLMMarkingResultConfidenceScore)
	assert.Equal(t, "claude-sonnet-4-20250514", res.LLMMarkingResultModel)
	assert.Equal(t, int64(1200), res.LLMMarkingResultProcessingTimeMs)
	assert.False(t, res.LLMMarkingResultRequiresReview)
	assert.Equal(t, 30.0, res.Percentage())
}

func TestMarkOne_ClampsExcessiveMarks(t *testing.T) {
	guide := validGuide()
	answer := &attemptmodel.StudentAnswerModel{
		StudentAnswerID:       uuid.New(),
		StudentAnswerText:     "jawaban",
		StudentAnswerMaxMarks: 10,
	}
	svc := newTestService(&fakeAttempts{}, &fakeGuides{}, &fakeResults{},
		&fakeCompleter{replies: []string{replyWithMarks(15, 0.95)}})

	res, err := svc.MarkOne(context.Background(), answer, guide)
	require.NoError(t, err)
	assert.Equal(t, 10.0, res.LLMMarkingResultAwardedMarks)
	// 100% → wajib diverifikasi manusia
	assert.True(t, res.LLMMarkingResultRequiresReview)
	assert.NotEmpty(t, res.ReviewReasonList())
}

func TestMarkOne_NoPersistOnParseFailure(t *testing.T) {
	guide := validGuide()
	answer := &attemptmodel.StudentAnswerModel{
		StudentAnswerID:       uuid.New(),
		StudentAnswerText:     "jawaban",
		StudentAnswerMaxMarks: 10,
	}
	results := &fakeResults{}
	svc := newTestService(&fakeAttempts{}, &fakeGuides{}, results,
		&fakeCompleter{replies: []string{"bukan JSON sama sekali"}})

	_, err := svc.MarkOne(context.Background(), answer, guide)
	require.Error(t, err)
	var perr *llm.ParseError
	assert.ErrorAs(t, err, &perr)
	assert.Empty(t, results.saved, "hasil parsial tidak boleh tersimpan")
}

func TestMarkBatch_AttemptNotFound(t *testing.T) {
	svc := newTestService(&fakeAttempts{}, &fakeGuides{}, &fakeResults{}, &fakeCompleter{})

	_, err := svc.MarkBatch(context.Background(), uuid.New())
	require.Error(t, err)
	var ferr *fiber.Error
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, fiber.StatusNotFound, ferr.Code)
}

func TestMarkBatch_RequiresSubmittedStatus(t *testing.T) {
	attemptID := uuid.New()
	attempts := &fakeAttempts{
		attempt: &attemptmodel.ExamAttemptModel{
			ExamAttemptID:     attemptID,
			ExamAttemptStatus: attemptmodel.AttemptStatusInProgress,
		},
	}
	svc := newTestService(attempts, &fakeGuides{}, &fakeResults{}, &fakeCompleter{})

	_, err := svc.MarkBatch(context.Background(), attemptID)
	require.Error(t, err)
	var ferr *fiber.Error
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, fiber.StatusPreconditionFailed, ferr.Code)
	assert.Zero(t, attempts.scoreUpdates)
}

func TestMarkBatch_PartialSuccess(t *testing.T) {
	attemptID := uuid.New()

	// 5 jawaban: 3 sukses, 1 gagal LLM, 1 tanpa guide
	answers := make([]attemptmodel.StudentAnswerModel, 5)
	guides := &fakeGuides{guides: map[uuid.UUID]*guidemodel.MarkingGuideModel{}}
	for i := range answers {
		answers[i] = attemptmodel.StudentAnswerModel{
			StudentAnswerID:         uuid.New(),
			StudentAnswerAttemptID:  attemptID,
			StudentAnswerQuestionID: uuid.New(),
			StudentAnswerText:       "jawaban",
			StudentAnswerMaxMarks:   10,
		}
		if i != 4 { // jawaban terakhir tidak punya guide aktif
			guides.guides[answers[i].StudentAnswerQuestionID] = validGuide()
		}
	}

	attempts := &fakeAttempts{
		attempt: &attemptmodel.ExamAttemptModel{
			ExamAttemptID:     attemptID,
			ExamAttemptStatus: attemptmodel.AttemptStatusSubmitted,
		},
		answers: answers,
	}
	client := &fakeCompleter{
		replies: []string{
			replyWithMarks(8, 0.9),
			replyWithMarks(6, 0.85),
			"", // slot error
			replyWithMarks(7, 0.8),
		},
		errs: []error{nil, nil, &llm.ExternalServiceError{Provider: "anthropic", Err: fmt.Errorf("timeout")}, nil},
	}
	results := &fakeResults{}
	svc := newTestService(attempts, guides, results, client)

	summary, err := svc.MarkBatch(context.Background(), attemptID)
	require.NoError(t, err)

	assert.Equal(t, 5, summary.TotalAnswers)
	assert.Equal(t, 3, summary.MarkedAnswers)
	assert.Equal(t, 1, summary.FailedAnswers)
	assert.Equal(t, 1, summary.SkippedAnswers)
	// 80%, 60%, 70% semuanya borderline → semua masuk antrian review
	assert.Equal(t, 3, summary.RequiresReview)

	// total hanya dari jawaban yang sukses dinilai
	assert.Equal(t, 21.0, summary.TotalScore)
	assert.Equal(t, 30.0, summary.TotalPossible)
	assert.Equal(t, 70.0, summary.Percentage)
	assert.Equal(t, "C", summary.Grade)

	// skor attempt di-update tepat sekali, belum graded penuh
	assert.Equal(t, 1, attempts.scoreUpdates)
	assert.Equal(t, 21.0, attempts.lastTotal)
	assert.Equal(t, "C", attempts.lastGrade)
	assert.False(t, attempts.lastGraded)

	require.Len(t, results.saved, 3)
}

func TestMarkBatch_FullSuccessMarksGraded(t *testing.T) {
	attemptID := uuid.New()
	questionID := uuid.New()
	attempts := &fakeAttempts{
		attempt: &attemptmodel.ExamAttemptModel{
			ExamAttemptID:     attemptID,
			ExamAttemptStatus: attemptmodel.AttemptStatusSubmitted,
		},
		answers: []attemptmodel.StudentAnswerModel{{
			StudentAnswerID:         uuid.New(),
			StudentAnswerAttemptID:  attemptID,
			StudentAnswerQuestionID: questionID,
			StudentAnswerText:       "jawaban",
			StudentAnswerMaxMarks:   10,
		}},
	}
	guides := &fakeGuides{guides: map[uuid.UUID]*guidemodel.MarkingGuideModel{questionID: validGuide()}}
	svc := newTestService(attempts, guides, &fakeResults{},
		&fakeCompleter{replies: []string{replyWithMarks(8, 0.9)}})

	summary, err := svc.MarkBatch(context.Background(), attemptID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.MarkedAnswers)
	assert.Equal(t, 80.0, summary.Percentage)
	assert.Equal(t, "B", summary.Grade)
	assert.True(t, attempts.lastGraded)
}

func TestMarkBatch_NothingMarkedSkipsScoreUpdate(t *testing.T) {
	attemptID := uuid.New()
	attempts := &fakeAttempts{
		attempt: &attemptmodel.ExamAttemptModel{
			ExamAttemptID:     attemptID,
			ExamAttemptStatus: attemptmodel.AttemptStatusSubmitted,
		},
		answers: []attemptmodel.StudentAnswerModel{{
			StudentAnswerID:         uuid.New(),
			StudentAnswerAttemptID:  attemptID,
			StudentAnswerQuestionID: uuid.New(),
			StudentAnswerText:       "jawaban",
			StudentAnswerMaxMarks:   10,
		}},
	}
	svc := newTestService(attempts,
		&fakeGuides{guides: map[uuid.UUID]*guidemodel.MarkingGuideModel{}},
		&fakeResults{}, &fakeCompleter{})

	summary, err := svc.MarkBatch(context.Background(), attemptID)
	require.NoError(t, err)
	assert.Zero(t, summary.MarkedAnswers)
	assert.Equal(t, 1, summary.SkippedAnswers)
	assert.Empty(t, summary.Grade)
	assert.Zero(t, attempts.scoreUpdates)
}

func TestResultsByAttempt_StudentOwnershipEnforced(t *testing.T) {
	attemptID := uuid.New()
	ownerID := uuid.New()
	attempts := &fakeAttempts{
		attempt: &attemptmodel.ExamAttemptModel{
			ExamAttemptID:        attemptID,
			ExamAttemptStudentID: ownerID,
			ExamAttemptStatus:    attemptmodel.AttemptStatusGraded,
		},
	}
	svc := newTestService(attempts, &fakeGuides{}, &fakeResults{}, &fakeCompleter{})

	// student lain → 403
	_, err := svc.ResultsByAttempt(context.Background(), attemptID, uuid.New(), constants.RoleStudent)
	require.Error(t, err)
	var ferr *fiber.Error
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, fiber.StatusForbidden, ferr.Code)

	// pemilik → boleh
	_, err = svc.ResultsByAttempt(context.Background(), attemptID, ownerID, constants.RoleStudent)
	assert.NoError(t, err)

	// lecturer → boleh lihat siapa pun
	_, err = svc.ResultsByAttempt(context.Background(), attemptID, uuid.New(), constants.RoleLecturer)
	assert.NoError(t, err)
}

func TestReviewMarking(t *testing.T) {
	resultID := uuid.New()
	reviewerID := uuid.New()

	newResults := func() *fakeResults {
		return &fakeResults{byID: map[uuid.UUID]*model.LLMMarkingResultModel{
			resultID: {
				LLMMarkingResultID:             resultID,
				LLMMarkingResultAwardedMarks:   7,
				LLMMarkingResultMaxMarks:       10,
				LLMMarkingResultRequiresReview: true,
			},
		}}
	}

	t.Run("approved keeps marks and clears flag", func(t *testing.T) {
		results := newResults()
		svc := newTestService(&fakeAttempts{}, &fakeGuides{}, results, &fakeCompleter{})

		review, err := svc.ReviewMarking(context.Background(), resultID, reviewerID,
			&dto.ReviewMarkingRequest{Status: "approved"})
		require.NoError(t, err)
		assert.Equal(t, model.ReviewStatusApproved, review.MarkingReviewStatus)
		assert.Equal(t, 7.0, review.MarkingReviewFinalMarks)
		assert.False(t, results.byID[resultID].LLMMarkingResultRequiresReview)
		assert.Equal(t, 7.0, results.byID[resultID].LLMMarkingResultAwardedMarks)
	})

	t.Run("modified overwrites marks", func(t *testing.T) {
		results := newResults()
		svc := newTestService(&fakeAttempts{}, &fakeGuides{}, results, &fakeCompleter{})

		final := 8.5
		review, err := svc.ReviewMarking(context.Background(), resultID, reviewerID,
			&dto.ReviewMarkingRequest{Status: "modified", FinalMarks: &final})
		require.NoError(t, err)
		assert.Equal(t, 7.0, review.MarkingReviewAwardedMarks)
		assert.Equal(t, 8.5, review.MarkingReviewFinalMarks)
		assert.Equal(t, 8.5, results.byID[resultID].LLMMarkingResultAwardedMarks)
		assert.False(t, results.byID[resultID].LLMMarkingResultRequiresReview)
	})

	t.Run("modified without final_marks rejected", func(t *testing.T) {
		svc := newTestService(&fakeAttempts{}, &fakeGuides{}, newResults(), &fakeCompleter{})

		_, err := svc.ReviewMarking(context.Background(), resultID, reviewerID,
			&dto.ReviewMarkingRequest{Status: "modified"})
		require.Error(t, err)
		var ferr *fiber.Error
		require.ErrorAs(t, err, &ferr)
		assert.Equal(t, fiber.StatusBadRequest, ferr.Code)
	})

	t.Run("modified beyond max rejected", func(t *testing.T) {
		svc := newTestService(&fakeAttempts{}, &fakeGuides{}, newResults(), &fakeCompleter{})

		final := 12.0
		_, err := svc.ReviewMarking(context.Background(), resultID, reviewerID,
			&dto.ReviewMarkingRequest{Status: "modified", FinalMarks: &final})
		require.Error(t, err)
		var ferr *fiber.Error
		require.ErrorAs(t, err, &ferr)
		assert.Equal(t, fiber.StatusBadRequest, ferr.Code)
	})

	t.Run("unknown result 404", func(t *testing.T) {
		svc := newTestService(&fakeAttempts{}, &fakeGuides{}, newResults(), &fakeCompleter{})

		_, err := svc.ReviewMarking(context.Background(), uuid.New(), reviewerID,
			&dto.ReviewMarkingRequest{Status: "approved"})
		require.Error(t, err)
		var ferr *fiber.Error
		require.ErrorAs(t, err, &ferr)
		assert.Equal(t, fiber.StatusNotFound, ferr.Code)
	})

	t.Run("rejected keeps original marks", func(t *testing.T) {
		results := newResults()
		svc := newTestService(&fakeAttempts{}, &fakeGuides{}, results, &fakeCompleter{})

		review, err := svc.ReviewMarking(context.Background(), resultID, reviewerID,
			&dto.ReviewMarkingRequest{Status: "rejected"})
		require.NoError(t, err)
		assert.Equal(t, model.ReviewStatusRejected, review.MarkingReviewStatus)
		assert.Equal(t, 7.0, results.byID[resultID].LLMMarkingResultAwardedMarks)
	})
}
