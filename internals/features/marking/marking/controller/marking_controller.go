// file: internals/features/marking/marking/controller/marking_controller.go
package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"ujianku_backend/internals/features/marking/llm"
	dto "ujianku_backend/internals/features/marking/marking/dto"
	"ujianku_backend/internals/features/marking/marking/service"
	helper "ujianku_backend/internals/helpers"
	"ujianku_backend/internals/middlewares/auth"
)

var validate = validator.New()

type MarkingController struct {
	Service *service.MarkingService
}

func NewMarkingController(db *gorm.DB, client llm.Completer) *MarkingController {
	return &MarkingController{Service: service.NewMarkingService(db, client)}
}

/* =========================================================
   BATCH MARKING
========================================================= */

// POST /api/a/marking/attempts/:attemptId/mark
// Endpoint paling mahal di seluruh sistem (N panggilan LLM), dilindungi
// rate limiter khusus di route.
func (ctrl *MarkingController) MarkAttempt(c *fiber.Ctx) error {
	attemptID, err := uuid.Parse(c.Params("attemptId"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "ID attempt tidak valid")
	}

	summary, err := ctrl.Service.MarkBatch(c.Context(), attemptID)
	if err != nil {
		return err
	}
	return helper.Success(c, "Penilaian batch selesai", summary)
}

/* =========================================================
   RESULTS
========================================================= */

// GET /api/u/marking/attempts/:attemptId/results
func (ctrl *MarkingController) ResultsByAttempt(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	attemptID, err := uuid.Parse(c.Params("attemptId"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "ID attempt tidak valid")
	}

	results, err := ctrl.Service.ResultsByAttempt(c.Context(), attemptID, userID, auth.Role(c))
	if err != nil {
		return err
	}
	return helper.Success(c, "OK", dto.ResultsFromModels(results))
}

// GET /api/a/marking/review-queue
func (ctrl *MarkingController) ReviewQueue(c *fiber.Ctx) error {
	p := helper.ParseFiber(c, helper.DefaultOpts)

	results, total, err := ctrl.Service.ReviewQueue(c.Context(), p.Limit(), p.Offset())
	if err != nil {
		return err
	}
	return helper.Success(c, "OK", fiber.Map{
		"results":    dto.ResultsFromModels(results),
		"pagination": helper.BuildPagination(p, total),
	})
}

/* =========================================================
   REVIEW
========================================================= */

// POST /api/a/marking/results/:resultId/review
func (ctrl *MarkingController) ReviewMarking(c *fiber.Ctx) error {
	reviewerID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	resultID, err := uuid.Parse(c.Params("resultId"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "ID result tidak valid")
	}

	var req dto.ReviewMarkingRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	review, err := ctrl.Service.ReviewMarking(c.Context(), resultID, reviewerID, &req)
	if err != nil {
		return err
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated,
		"Review tersimpan", dto.ReviewFromModel(review))
}

/* =========================================================
   STATISTICS
========================================================= */

// GET /api/a/marking/statistics?attempt_id=&exam_id=&guide_id=
func (ctrl *MarkingController) MarkingStats(c *fiber.Ctx) error {
	var filter service.StatsFilter
	for key, dst := range map[string]**uuid.UUID{
		"attempt_id": &filter.AttemptID,
		"exam_id":    &filter.ExamID,
		"guide_id":   &filter.GuideID,
	} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return helper.Error(c, fiber.StatusBadRequest, key+" tidak valid")
		}
		*dst = &id
	}

	stats, err := ctrl.Service.MarkingStats(c.Context(), filter)
	if err != nil {
		return err
	}
	return helper.Success(c, "OK", stats)
}

// GET /api/a/marking/review-statistics
func (ctrl *MarkingController) ReviewStats(c *fiber.Ctx) error {
	stats, err := ctrl.Service.ReviewStats(c.Context())
	if err != nil {
		return err
	}
	return helper.Success(c, "OK", stats)
}
