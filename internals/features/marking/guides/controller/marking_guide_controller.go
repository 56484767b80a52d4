// file: internals/features/marking/guides/controller/marking_guide_controller.go
package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	dto "ujianku_backend/internals/features/marking/guides/dto"
	"ujianku_backend/internals/features/marking/guides/service"
	helper "ujianku_backend/internals/helpers"
	"ujianku_backend/internals/middlewares/auth"
)

var validate = validator.New()

type MarkingGuideController struct {
	Service *service.MarkingGuideService
}

func NewMarkingGuideController(db *gorm.DB) *MarkingGuideController {
	return &MarkingGuideController{Service: service.NewMarkingGuideService(db)}
}

/* =========================================================
   CREATE
========================================================= */

// POST /api/a/marking-guides
func (ctrl *MarkingGuideController) Create(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	var req dto.CreateMarkingGuideRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	m, err := ctrl.Service.Create(c.Context(), &req, userID)
	if err != nil {
		return err
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated,
		"Marking guide berhasil dibuat", dto.FromModel(m))
}

// POST /api/a/marking-guides/question/:questionId/versions
func (ctrl *MarkingGuideController) CreateVersion(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	questionID, err := uuid.Parse(c.Params("questionId"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "ID question tidak valid")
	}

	var req dto.CreateMarkingGuideRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	m, err := ctrl.Service.CreateVersion(c.Context(), questionID, &req, userID)
	if err != nil {
		return err
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated,
		"Versi baru marking guide berhasil dibuat", dto.FromModel(m))
}

/* =========================================================
   READ
========================================================= */

// GET /api/a/marking-guides
func (ctrl *MarkingGuideController) List(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}

	var q dto.ListMarkingGuidesQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Query tidak valid")
	}

	p := helper.ParseFiber(c, helper.DefaultOpts)
	items, total, err := ctrl.Service.List(c.Context(), &q, p, userID, auth.Role(c))
	if err != nil {
		return err
	}

	return helper.Success(c, "OK", fiber.Map{
		"marking_guides": dto.FromModels(items),
		"pagination":     helper.BuildPagination(p, total),
	})
}

// GET /api/a/marking-guides/:id
func (ctrl *MarkingGuideController) GetByID(c *fiber.Ctx) error {
	guideID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "ID guide tidak valid")
	}
	m, err := ctrl.Service.FindByID(c.Context(), guideID)
	if err != nil {
		return err
	}
	return helper.Success(c, "OK", dto.FromModel(m))
}

// GET /api/a/marking-guides/question/:questionId/active
func (ctrl *MarkingGuideController) GetActiveByQuestion(c *fiber.Ctx) error {
	questionID, err := uuid.Parse(c.Params("questionId"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "ID question tidak valid")
	}
	m, err := ctrl.Service.FindActiveByQuestion(c.Context(), questionID)
	if err != nil {
		return err
	}
	return helper.Success(c, "OK", dto.FromModel(m))
}

// GET /api/a/marking-guides/question/:questionId/versions
func (ctrl *MarkingGuideController) ListVersions(c *fiber.Ctx) error {
	questionID, err := uuid.Parse(c.Params("questionId"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "ID question tidak valid")
	}
	items, err := ctrl.Service.ListVersions(c.Context(), questionID)
	if err != nil {
		return err
	}
	return helper.Success(c, "OK", dto.FromModels(items))
}

/* =========================================================
   UPDATE & DELETE
========================================================= */

// PUT /api/a/marking-guides/:id
func (ctrl *MarkingGuideController) Update(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	guideID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "ID guide tidak valid")
	}

	var req dto.UpdateMarkingGuideRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	m, err := ctrl.Service.Update(c.Context(), guideID, &req, userID, auth.Role(c))
	if err != nil {
		return err
	}
	return helper.Success(c, "Marking guide berhasil diperbarui", dto.FromModel(m))
}

// DELETE /api/a/marking-guides/:id (soft: nonaktifkan)
func (ctrl *MarkingGuideController) Deactivate(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	guideID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "ID guide tidak valid")
	}
	if err := ctrl.Service.SoftDelete(c.Context(), guideID, userID, auth.Role(c)); err != nil {
		return err
	}
	return helper.Success(c, "Marking guide dinonaktifkan", nil)
}

// DELETE /api/a/marking-guides/:id/hard (admin only)
func (ctrl *MarkingGuideController) HardDelete(c *fiber.Ctx) error {
	guideID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "ID guide tidak valid")
	}
	if err := ctrl.Service.HardDelete(c.Context(), guideID, auth.Role(c)); err != nil {
		return err
	}
	return helper.Success(c, "Marking guide dihapus permanen", nil)
}

/* =========================================================
   VALIDATE (dry-run, tanpa persist)
========================================================= */

// POST /api/a/marking-guides/validate
func (ctrl *MarkingGuideController) ValidateContent(c *fiber.Ctx) error {
	var req dto.CreateMarkingGuideRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	report := service.ValidateGuideContent(&req)
	return helper.Success(c, "OK", report)
}
