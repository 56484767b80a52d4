// file: internals/features/marking/marking/route/marking_routes.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ujianku_backend/internals/features/marking/llm"
	markCtrl "ujianku_backend/internals/features/marking/marking/controller"
	"ujianku_backend/internals/middlewares"
)

// MarkingUserRoutes dipasang di group /api/u: student lihat hasil
// attempt miliknya sendiri (ownership dicek di service).
func MarkingUserRoutes(r fiber.Router, db *gorm.DB, client llm.Completer) {
	ctrl := markCtrl.NewMarkingController(db, client)

	g := r.Group("/marking")
	g.Get("/attempts/:attemptId/results", ctrl.ResultsByAttempt)
}

// MarkingAdminRoutes dipasang di group /api/a (lecturer & admin).
func MarkingAdminRoutes(r fiber.Router, db *gorm.DB, client llm.Completer) {
	ctrl := markCtrl.NewMarkingController(db, client)

	g := r.Group("/marking")

	// batch marking = N panggilan LLM, rate limit ketat
	g.Post("/attempts/:attemptId/mark",
		middlewares.BatchMarkingRateLimiter(), ctrl.MarkAttempt)

	g.Get("/attempts/:attemptId/results", ctrl.ResultsByAttempt)
	g.Get("/review-queue", ctrl.ReviewQueue)
	g.Post("/results/:resultId/review", ctrl.ReviewMarking)

	g.Get("/statistics", ctrl.MarkingStats)
	g.Get("/review-statistics", ctrl.ReviewStats)
}
