// file: internals/features/marking/guides/service/marking_guide_service.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ujianku_backend/internals/constants"
	dto "ujianku_backend/internals/features/marking/guides/dto"
	model "ujianku_backend/internals/features/marking/guides/model"
	helper "ujianku_backend/internals/helpers"
)

/* =========================================================
   SERVICE
========================================================= */

type MarkingGuideService struct {
	DB *gorm.DB
}

func NewMarkingGuideService(db *gorm.DB) *MarkingGuideService {
	return &MarkingGuideService{DB: db}
}

/* =========================================================
   VALIDASI BOBOT (pure)
========================================================= */

// ValidateWeightSum tolak kalau total 4 bobot di luar 1.0 ± 0.01.
// Tidak pernah "dibetulkan" diam-diam: pelanggaran selalu error.
func ValidateWeightSum(ca, co, cl, tc float64) error {
	total := ca + co + cl + tc
	if math.Abs(total-1.0) > model.WeightSumTolerance {
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("Weight values must sum to 1.0 (currently: %g)", total))
	}
	return nil
}

/* =========================================================
   CREATE
========================================================= */

// Create guide pertama untuk sebuah question. Kalau sudah ada guide
// aktif → 409, caller harus pakai CreateVersion.
func (s *MarkingGuideService) Create(ctx context.Context, req *dto.CreateMarkingGuideRequest, createdBy uuid.UUID) (*model.MarkingGuideModel, error) {
	if err := ValidateWeightSum(req.Weights()); err != nil {
		return nil, err
	}

	warnUnusualTotalMarks(req.QuestionID, req.KeyPoints)

	m, err := req.ToModel(createdBy)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Payload guide tidak valid: "+err.Error())
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		latest, err := lockLatestVersion(tx, req.QuestionID)
		if err != nil {
			return err
		}
		if latest != nil && latest.active {
			return fiber.NewError(fiber.StatusConflict,
				"Marking guide already exists for this question. Use update or create new version.")
		}

		// question yang semua versinya nonaktif tetap lanjut dari versi terakhir
		m.MarkingGuideVersion = 1
		if latest != nil {
			m.MarkingGuideVersion = latest.version + 1
		}
		m.MarkingGuideIsActive = true

		return tx.Create(m).Error
	})
	if err != nil {
		return nil, asFiberError(err, "Gagal membuat marking guide")
	}
	return m, nil
}

/* =========================================================
   READ
========================================================= */

func (s *MarkingGuideService) FindByID(ctx context.Context, id uuid.UUID) (*model.MarkingGuideModel, error) {
	var m model.MarkingGuideModel
	if err := s.DB.WithContext(ctx).
		Where("marking_guide_id = ?", id).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Marking guide not found")
		}
		return nil, err
	}
	return &m, nil
}

// FindActiveByQuestion guide aktif untuk sebuah question (atau 404)
func (s *MarkingGuideService) FindActiveByQuestion(ctx context.Context, questionID uuid.UUID) (*model.MarkingGuideModel, error) {
	var m model.MarkingGuideModel
	if err := s.DB.WithContext(ctx).
		Where("marking_guide_question_id = ? AND marking_guide_is_active = true", questionID).
		Order("marking_guide_version DESC").
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "No active marking guide found for this question")
		}
		return nil, err
	}
	return &m, nil
}

// ListVersions semua versi sebuah question, terbaru dulu
func (s *MarkingGuideService) ListVersions(ctx context.Context, questionID uuid.UUID) ([]model.MarkingGuideModel, error) {
	var out []model.MarkingGuideModel
	if err := s.DB.WithContext(ctx).
		Where("marking_guide_question_id = ?", questionID).
		Order("marking_guide_version DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// List dengan filter + pagination. Lecturer hanya lihat guide miliknya,
// admin bebas.
func (s *MarkingGuideService) List(ctx context.Context, q *dto.ListMarkingGuidesQuery, p helper.Params, callerID uuid.UUID, callerRole string) ([]model.MarkingGuideModel, int64, error) {
	db := s.DB.WithContext(ctx).Model(&model.MarkingGuideModel{})

	if callerRole != constants.RoleAdmin {
		db = db.Where("marking_guide_created_by = ?", callerID)
	} else if q != nil && q.CreatedBy != nil && *q.CreatedBy != uuid.Nil {
		db = db.Where("marking_guide_created_by = ?", *q.CreatedBy)
	}
	if q != nil {
		if q.QuestionID != nil && *q.QuestionID != uuid.Nil {
			db = db.Where("marking_guide_question_id = ?", *q.QuestionID)
		}
		if q.ActiveOnly != nil && *q.ActiveOnly {
			db = db.Where("marking_guide_is_active = true")
		}
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []model.MarkingGuideModel
	if err := db.
		Order("marking_guide_created_at DESC").
		Limit(p.Limit()).
		Offset(p.Offset()).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

/* =========================================================
   VERSIONING
========================================================= */

// CreateVersion nonaktifkan guide aktif lalu insert versi max+1 aktif.
// Dua write ini satu transaksi + row lock per question supaya pembaca
// tidak pernah lihat nol atau dua guide aktif, dan dua request paralel
// tidak menghitung next-version yang sama.
func (s *MarkingGuideService) CreateVersion(ctx context.Context, questionID uuid.UUID, req *dto.CreateMarkingGuideRequest, createdBy uuid.UUID) (*model.MarkingGuideModel, error) {
	if err := ValidateWeightSum(req.Weights()); err != nil {
		return nil, err
	}

	warnUnusualTotalMarks(questionID, req.KeyPoints)

	m, err := req.ToModel(createdBy)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Payload guide tidak valid: "+err.Error())
	}
	m.MarkingGuideQuestionID = questionID

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		latest, err := lockLatestVersion(tx, questionID)
		if err != nil {
			return err
		}

		next := 1
		if latest != nil {
			next = latest.version + 1
		}

		if err := tx.Model(&model.MarkingGuideModel{}).
			Where("marking_guide_question_id = ? AND marking_guide_is_active = true", questionID).
			Update("marking_guide_is_active", false).Error; err != nil {
			return err
		}

		m.MarkingGuideVersion = next
		m.MarkingGuideIsActive = true
		return tx.Create(m).Error
	})
	if err != nil {
		return nil, asFiberError(err, "Gagal membuat versi guide baru")
	}
	return m, nil
}

/* =========================================================
   UPDATE
========================================================= */

// Update partial. Hanya creator atau admin. Kalau ada bobot yang
// disentuh, total bobot (lama+baru) divalidasi ulang.
func (s *MarkingGuideService) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateMarkingGuideRequest, callerID uuid.UUID, callerRole string) (*model.MarkingGuideModel, error) {
	m, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if callerRole != constants.RoleAdmin && m.MarkingGuideCreatedBy != callerID {
		return nil, fiber.NewError(fiber.StatusForbidden, "You can only update your own marking guides")
	}

	updates := map[string]interface{}{}

	if req.TouchesWeights() {
		ca := m.MarkingGuideContentAccuracyWeight
		co := m.MarkingGuideCompletenessWeight
		cl := m.MarkingGuideClarityWeight
		tc := m.MarkingGuideTechnicalCorrectnessWeight
		if req.ContentAccuracyWeight != nil {
			ca = *req.ContentAccuracyWeight
		}
		if req.CompletenessWeight != nil {
			co = *req.CompletenessWeight
		}
		if req.ClarityWeight != nil {
			cl = *req.ClarityWeight
		}
		if req.TechnicalCorrectnessWeight != nil {
			tc = *req.TechnicalCorrectnessWeight
		}
		if err := ValidateWeightSum(ca, co, cl, tc); err != nil {
			return nil, err
		}
		updates["marking_guide_content_accuracy_weight"] = ca
		updates["marking_guide_completeness_weight"] = co
		updates["marking_guide_clarity_weight"] = cl
		updates["marking_guide_technical_correctness_weight"] = tc
	}

	if req.ModelAnswer != nil {
		updates["marking_guide_model_answer"] = strings.TrimSpace(*req.ModelAnswer)
	}
	if len(req.KeyPoints) > 0 {
		b, err := json.Marshal(req.KeyPoints)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "key_points tidak valid")
		}
		updates["marking_guide_key_points"] = datatypes.JSON(b)
	}
	if req.MarkingRubric != nil {
		b, err := json.Marshal(req.MarkingRubric)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "marking_rubric tidak valid")
		}
		updates["marking_guide_rubric"] = datatypes.JSON(b)
	}
	if req.EvaluationCriteria != nil {
		b, err := json.Marshal(req.EvaluationCriteria)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "evaluation_criteria tidak valid")
		}
		updates["marking_guide_evaluation_criteria"] = datatypes.JSON(b)
	}
	if len(req.CommonMistakes) > 0 {
		b, err := json.Marshal(req.CommonMistakes)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "common_mistakes tidak valid")
		}
		updates["marking_guide_common_mistakes"] = datatypes.JSON(b)
	}
	if len(req.PartialCreditRules) > 0 {
		b, err := json.Marshal(req.PartialCreditRules)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "partial_credit_rules tidak valid")
		}
		updates["marking_guide_partial_credit_rules"] = datatypes.JSON(b)
	}
	if req.Keywords != nil {
		updates["marking_guide_keywords"] = pq.StringArray(req.Keywords)
	}

	if len(updates) == 0 {
		return m, nil
	}

	if err := s.DB.WithContext(ctx).
		Model(&model.MarkingGuideModel{}).
		Where("marking_guide_id = ?", id).
		Updates(updates).Error; err != nil {
		return nil, err
	}

	return s.FindByID(ctx, id)
}

/* =========================================================
   DELETE
========================================================= */

// SoftDelete set is_active=false (versi & riwayat tetap ada)
func (s *MarkingGuideService) SoftDelete(ctx context.Context, id uuid.UUID, callerID uuid.UUID, callerRole string) error {
	m, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if callerRole != constants.RoleAdmin && m.MarkingGuideCreatedBy != callerID {
		return fiber.NewError(fiber.StatusForbidden, "You can only delete your own marking guides")
	}
	return s.DB.WithContext(ctx).
		Model(&model.MarkingGuideModel{}).
		Where("marking_guide_id = ?", id).
		Update("marking_guide_is_active", false).Error
}

// HardDelete hapus permanen (admin only, untuk bersih-bersih)
func (s *MarkingGuideService) HardDelete(ctx context.Context, id uuid.UUID, callerRole string) error {
	if callerRole != constants.RoleAdmin {
		return fiber.NewError(fiber.StatusForbidden, constants.RoleErrorAdmin("hapus permanen marking guide"))
	}
	res := s.DB.WithContext(ctx).
		Where("marking_guide_id = ?", id).
		Delete(&model.MarkingGuideModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "Marking guide not found")
	}
	return nil
}

/* =========================================================
   VALIDASI KONTEN (pure, laporan bukan error)
========================================================= */

// ValidateGuideContent cek kelengkapan isi guide, hasilnya laporan
// is_valid + daftar masalah (bukan reject otomatis).
func ValidateGuideContent(req *dto.CreateMarkingGuideRequest) dto.GuideValidationReport {
	var errs []string

	if len(strings.TrimSpace(req.ModelAnswer)) < 10 {
		errs = append(errs, "Model answer must be at least 10 characters")
	}

	if len(req.KeyPoints) == 0 {
		errs = append(errs, "At least one key point is required")
	}
	for i, kp := range req.KeyPoints {
		if kp.Marks <= 0 {
			errs = append(errs, fmt.Sprintf("Key point %d must have marks > 0", i+1))
		}
		if len(strings.TrimSpace(kp.Point)) < 5 {
			errs = append(errs, fmt.Sprintf("Key point %d must have description", i+1))
		}
	}

	bands := []struct {
		name string
		band dto.RubricBandInput
	}{
		{"excellent", req.MarkingRubric.Excellent},
		{"good", req.MarkingRubric.Good},
		{"satisfactory", req.MarkingRubric.Satisfactory},
		{"poor", req.MarkingRubric.Poor},
	}
	for _, b := range bands {
		if strings.TrimSpace(b.band.Criteria) == "" {
			errs = append(errs, fmt.Sprintf("Rubric missing '%s' level", b.name))
		}
	}

	criteria := []struct {
		name string
		text string
	}{
		{"content_accuracy", req.EvaluationCriteria.ContentAccuracy},
		{"completeness", req.EvaluationCriteria.Completeness},
		{"clarity", req.EvaluationCriteria.Clarity},
		{"technical_correctness", req.EvaluationCriteria.TechnicalCorrectness},
	}
	for _, cr := range criteria {
		if strings.TrimSpace(cr.text) == "" {
			errs = append(errs, fmt.Sprintf("Evaluation criteria missing '%s'", cr.name))
		}
	}

	if errs == nil {
		errs = []string{}
	}
	return dto.GuideValidationReport{IsValid: len(errs) == 0, Errors: errs}
}

/* =========================================================
   Internal helpers
========================================================= */

type latestVersionRow struct {
	version int
	active  bool
}

// lockLatestVersion FOR UPDATE semua versi question ini, lalu balikin
// versi tertinggi + apakah ada yang aktif. nil artinya belum ada versi.
func lockLatestVersion(tx *gorm.DB, questionID uuid.UUID) (*latestVersionRow, error) {
	var rows []model.MarkingGuideModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("marking_guide_question_id = ?", questionID).
		Order("marking_guide_version DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	out := latestVersionRow{version: rows[0].MarkingGuideVersion}
	for i := range rows {
		if rows[i].MarkingGuideIsActive {
			out.active = true
			break
		}
	}
	return &out, nil
}

// TotalKeyPointMarks jumlah marks seluruh key point
func TotalKeyPointMarks(kps []dto.KeyPointInput) float64 {
	var total float64
	for _, kp := range kps {
		total += kp.Marks
	}
	return total
}

// warn saja kalau total marks aneh, jangan blok (kebijakan lama)
func warnUnusualTotalMarks(questionID uuid.UUID, kps []dto.KeyPointInput) {
	if total := TotalKeyPointMarks(kps); total < 5 || total > 100 {
		log.Printf("[WARN] Unusual total marks (%g) for marking guide. Question: %s", total, questionID)
	}
}

func asFiberError(err error, fallback string) error {
	if fe, ok := err.(*fiber.Error); ok {
		return fe
	}
	log.Printf("[ERROR] %s: %v", fallback, err)
	return fiber.NewError(fiber.StatusInternalServerError, fallback)
}
