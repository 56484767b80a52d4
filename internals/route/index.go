// file: internals/route/index.go
package routes

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ujianku_backend/internals/constants"
	guideRoute "ujianku_backend/internals/features/marking/guides/route"
	"ujianku_backend/internals/features/marking/llm"
	markingRoute "ujianku_backend/internals/features/marking/marking/route"
	"ujianku_backend/internals/middlewares/auth"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	startTime = time.Now()

	log.Println("[INFO] Setting up BaseRoutes...")
	BaseRoutes(app, db)

	// Satu client LLM dipakai bersama semua route marking
	client := llm.NewAnthropicClientFromEnv()

	// ===================== PRIVATE (USER) =====================
	log.Println("[INFO] Setting up PRIVATE group...")
	private := app.Group("/api/u",
		auth.AuthJWT(auth.AuthJWTOpts{
			Secret:              os.Getenv("JWT_SECRET"),
			AllowCookieFallback: true,
		}),
	)

	// ===================== ADMIN (lecturer & admin) =====================
	log.Println("[INFO] Setting up ADMIN group (Auth + RoleCheck)...")
	admin := app.Group("/api/a",
		auth.AuthJWT(auth.AuthJWTOpts{
			Secret:              os.Getenv("JWT_SECRET"),
			AllowCookieFallback: true,
		}),
		auth.RequireRoles(
			constants.RoleErrorLecturer("marking"),
			constants.LecturerAndAbove...,
		),
	)

	// ===================== MOUNT ROUTES =====================

	log.Println("[INFO] Mounting Marking Guide routes...")
	guideRoute.MarkingGuideAdminRoutes(admin, db)

	log.Println("[INFO] Mounting Marking routes...")
	markingRoute.MarkingUserRoutes(private, db, client)
	markingRoute.MarkingAdminRoutes(admin, db, client)
}
