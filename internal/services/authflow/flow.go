// Package authflow implements the login and signup flows: validation before
// any backend call, friendly-message mapping for known backend error codes,
// and the signup sequence of account creation, profile document write and
// immediate sign-out.
package authflow

import (
	"context"
	"strings"
	"time"

	"github.com/carebright/carelog/internal/backend"
	"github.com/carebright/carelog/internal/models"
)

type SignupInput struct {
	FirstName       string `json:"first_name" form:"first_name"`
	MI              string `json:"mi" form:"mi"`
	LastName        string `json:"last_name" form:"last_name"`
	Bio             string `json:"bio" form:"bio"`
	Username        string `json:"username" form:"username"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

// ValidateLogin returns the validation message for a login attempt, or ""
// when the input may be sent to the backend.
func ValidateLogin(email string, password string) string {
	if strings.TrimSpace(email) == "" || password == "" {
		return MessageMissingCredentials
	}
	return ""
}

// ValidateSignup returns the validation message for a signup attempt, or ""
// when the input may be sent to the backend. Nothing is sent on a password
// mismatch.
func ValidateSignup(input SignupInput) string {
	required := []string{input.FirstName, input.LastName, input.Username, input.Email, input.Password, input.ConfirmPassword}
	for _, value := range required {
		if strings.TrimSpace(value) == "" {
			return MessageMissingFields
		}
	}
	if input.Password != input.ConfirmPassword {
		return MessagePasswordMismatch
	}
	return ""
}

type Flow struct {
	auth      backend.AuthProvider
	documents backend.DocumentStore
}

func NewFlow(auth backend.AuthProvider, documents backend.DocumentStore) *Flow {
	return &Flow{auth: auth, documents: documents}
}

// SignUp creates the account, writes the users/{uid} profile document keyed
// by the new account's id, then signs the fresh session out: signup never
// leaves the user authenticated, and the caller redirects to login.
func (flow *Flow) SignUp(ctx context.Context, input SignupInput) error {
	session, err := flow.auth.CreateAccount(ctx, input.Email, input.Password)
	if err != nil {
		return err
	}

	profile := models.Profile{
		FirstName: strings.TrimSpace(input.FirstName),
		MI:        strings.TrimSpace(input.MI),
		LastName:  strings.TrimSpace(input.LastName),
		Bio:       strings.TrimSpace(input.Bio),
		Username:  strings.TrimSpace(input.Username),
		Email:     session.Email,
		CreatedAt: time.Now(),
	}
	writeErr := flow.documents.SetDocument(ctx, models.UsersCollection, session.UserID, profile.Fields())

	// Sign out regardless: a half-finished signup must not leave a live
	// session behind.
	if err := flow.auth.SignOut(ctx, session.Token); err != nil {
		if writeErr == nil {
			return err
		}
	}
	return writeErr
}
