package api

import (
	"github.com/carebright/carelog/internal/backend"
	"github.com/carebright/carelog/internal/services/authflow"
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (handler *Handler) Signup(c *fiber.Ctx) error {
	var input authflow.SignupInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	if validationError := authflow.ValidateSignup(input); validationError != "" {
		return apiError(c, fiber.StatusBadRequest, validationError)
	}

	if err := handler.signup.SignUp(c.Context(), input); err != nil {
		status := fiber.StatusInternalServerError
		if backend.CodeOf(err) == backend.CodeEmailInUse {
			status = fiber.StatusConflict
		}
		if backend.CodeOf(err) == backend.CodeWeakPassword || backend.CodeOf(err) == backend.CodeInvalidCredential {
			status = fiber.StatusBadRequest
		}
		return apiError(c, status, err.Error())
	}

	// Signup never leaves the user authenticated: no cookie here, the
	// client is expected to go through login next.
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"ok":      true,
		"message": "Account created successfully! Please log in.",
	})
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	var input credentialsInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	if validationError := authflow.ValidateLogin(input.Email, input.Password); validationError != "" {
		return apiError(c, fiber.StatusBadRequest, validationError)
	}

	session, err := handler.auth.SignIn(c.Context(), input.Email, input.Password)
	if err != nil {
		status := fiber.StatusUnauthorized
		if backend.CodeOf(err) == backend.CodeTooManyRequests {
			status = fiber.StatusTooManyRequests
		}
		return apiError(c, status, authflow.LoginMessage(err))
	}

	handler.setAuthCookie(c, session)
	return c.JSON(fiber.Map{"ok": true, "user_id": session.UserID})
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	session, ok := currentSession(c)
	if ok {
		if err := handler.auth.SignOut(c.Context(), session.Token); err != nil {
			return apiError(c, fiber.StatusInternalServerError, "failed to sign out")
		}
	}
	handler.clearAuthCookie(c)
	return c.JSON(fiber.Map{"ok": true})
}
