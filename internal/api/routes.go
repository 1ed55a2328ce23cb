package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	auth := app.Group("/api/auth")
	auth.Post("/signup", handler.Signup)
	auth.Post("/login", handler.Login)
	auth.Post("/logout", handler.AuthRequired, handler.Logout)

	goals := app.Group("/api/goals", handler.AuthRequired)
	goals.Get("", handler.ListGoals)
	goals.Post("", handler.CreateGoal)
	goals.Get("/:id", handler.GetGoal)
	goals.Patch("/:id", handler.UpdateGoal)
	goals.Delete("/:id", handler.DeleteGoal)

	app.Get("/api/catalog/icons", handler.ListIcons)

	profile := app.Group("/api/profile", handler.AuthRequired)
	profile.Get("", handler.Profile)
	profile.Get("/stream", handler.ProfileStream)
}
