package api

import (
	"errors"

	"github.com/carebright/carelog/internal/backend"
	"github.com/carebright/carelog/internal/catalog"
	"github.com/carebright/carelog/internal/store"
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) ListIcons(c *fiber.Ctx) error {
	return c.JSON(catalog.Entries())
}

// ListGoals refetches before responding, the same fetch-on-open behavior as
// the goals screen.
func (handler *Handler) ListGoals(c *fiber.Ctx) error {
	session, ok := currentSession(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	if err := handler.goals.FetchGoals(c.Context(), session); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to fetch goals")
	}

	return c.JSON(handler.goals.Goals(session))
}

func (handler *Handler) GetGoal(c *fiber.Ctx) error {
	session, ok := currentSession(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	if err := handler.goals.FetchGoals(c.Context(), session); err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to fetch goals")
	}

	goal, found := handler.goals.Goal(session, c.Params("id"))
	if !found {
		return apiError(c, fiber.StatusNotFound, "goal not found")
	}
	return c.JSON(goal)
}

func (handler *Handler) CreateGoal(c *fiber.Ctx) error {
	session, ok := currentSession(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var input goalInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	err := handler.goals.CreateGoal(c.Context(), session, store.GoalInput{
		Title:       input.Title,
		Description: input.Description,
		Icon:        input.Icon,
	})
	switch {
	case errors.Is(err, store.ErrUnknownIcon):
		return apiError(c, fiber.StatusBadRequest, "icon is not in the catalog")
	case err != nil:
		return apiError(c, fiber.StatusInternalServerError, "failed to create goal")
	}

	return c.Status(fiber.StatusCreated).JSON(handler.goals.Goals(session))
}

func (handler *Handler) UpdateGoal(c *fiber.Ctx) error {
	session, ok := currentSession(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var input goalPatchInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	err := handler.goals.UpdateGoal(c.Context(), session, c.Params("id"), store.GoalPatch{
		Title:       input.Title,
		Description: input.Description,
		Icon:        input.Icon,
	})
	switch {
	case errors.Is(err, store.ErrUnknownIcon):
		return apiError(c, fiber.StatusBadRequest, "icon is not in the catalog")
	case backend.CodeOf(err) == backend.CodeNotFound:
		return apiError(c, fiber.StatusNotFound, "goal not found")
	case err != nil:
		return apiError(c, fiber.StatusInternalServerError, "failed to update goal")
	}

	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) DeleteGoal(c *fiber.Ctx) error {
	session, ok := currentSession(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	err := handler.goals.DeleteGoal(c.Context(), session, c.Params("id"))
	switch {
	case backend.CodeOf(err) == backend.CodeNotFound:
		return apiError(c, fiber.StatusNotFound, "goal not found")
	case err != nil:
		return apiError(c, fiber.StatusInternalServerError, "failed to delete goal")
	}

	return c.JSON(fiber.Map{"ok": true})
}
