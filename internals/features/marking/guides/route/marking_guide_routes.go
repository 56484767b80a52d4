// file: internals/features/marking/guides/route/marking_guide_routes.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	guideCtrl "ujianku_backend/internals/features/marking/guides/controller"
)

// MarkingGuideAdminRoutes dipasang di group /api/a (lecturer & admin).
func MarkingGuideAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := guideCtrl.NewMarkingGuideController(db)

	g := r.Group("/marking-guides")
	g.Post("/", ctrl.Create)
	g.Post("/validate", ctrl.ValidateContent)
	g.Get("/", ctrl.List)
	g.Get("/:id", ctrl.GetByID)
	g.Put("/:id", ctrl.Update)
	g.Delete("/:id", ctrl.Deactivate)
	g.Delete("/:id/hard", ctrl.HardDelete)

	g.Get("/question/:questionId/active", ctrl.GetActiveByQuestion)
	g.Get("/question/:questionId/versions", ctrl.ListVersions)
	g.Post("/question/:questionId/versions", ctrl.CreateVersion)
}
