package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"ujianku_backend/internals/middlewares/logger"
)

// SetupMiddlewares pasang middleware global (urutan penting:
// recovery paling luar supaya panic di middleware lain ikut ketangkap).
func SetupMiddlewares(app *fiber.App) {
	app.Use(RecoveryMiddleware())
	app.Use(CorsMiddleware())
	app.Use(logger.LoggerMiddleware())
	app.Use(GlobalRateLimiter())
}
