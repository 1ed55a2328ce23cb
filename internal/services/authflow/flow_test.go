package authflow

import (
	"context"
	"errors"
	"testing"

	"github.com/carebright/carelog/internal/backend"
	"github.com/carebright/carelog/internal/models"
)

type stubAuthProvider struct {
	createErr      error
	createdEmail   string
	signedOutToken string
}

func (stub *stubAuthProvider) CreateAccount(_ context.Context, email string, _ string) (backend.Session, error) {
	if stub.createErr != nil {
		return backend.Session{}, stub.createErr
	}
	stub.createdEmail = email
	return backend.Session{UserID: "uid-1", Email: email, Token: "token-1"}, nil
}

func (stub *stubAuthProvider) SignOut(_ context.Context, token string) error {
	stub.signedOutToken = token
	return nil
}

func (stub *stubAuthProvider) SignIn(context.Context, string, string) (backend.Session, error) {
	return backend.Session{}, errors.New("not implemented")
}

func (stub *stubAuthProvider) VerifySession(context.Context, string) (backend.Session, error) {
	return backend.Session{}, errors.New("not implemented")
}

func (stub *stubAuthProvider) SubscribeAuthState(backend.AuthStateFunc) backend.Unsubscribe {
	return func() {}
}

type stubProfileWriter struct {
	setErr        error
	setCollection string
	setID         string
	setFields     backend.Fields
}

func (stub *stubProfileWriter) SetDocument(_ context.Context, collection string, id string, fields backend.Fields) error {
	if stub.setErr != nil {
		return stub.setErr
	}
	stub.setCollection = collection
	stub.setID = id
	stub.setFields = fields
	return nil
}

func (stub *stubProfileWriter) AddDocument(context.Context, string, backend.Fields) (string, error) {
	return "", errors.New("not implemented")
}

func (stub *stubProfileWriter) GetDocuments(context.Context, string, backend.Filter) ([]backend.Document, error) {
	return nil, errors.New("not implemented")
}

func (stub *stubProfileWriter) UpdateDocument(context.Context, string, string, backend.Filter, backend.Fields) error {
	return errors.New("not implemented")
}

func (stub *stubProfileWriter) DeleteDocument(context.Context, string, string, backend.Filter) error {
	return errors.New("not implemented")
}

func (stub *stubProfileWriter) SubscribeDocument(context.Context, string, string, backend.DocumentSnapshotFunc) (backend.Unsubscribe, error) {
	return nil, errors.New("not implemented")
}

func (stub *stubProfileWriter) SubscribeQuery(context.Context, string, backend.Filter, backend.QuerySnapshotFunc) (backend.Unsubscribe, error) {
	return nil, errors.New("not implemented")
}

func validSignupInput() SignupInput {
	return SignupInput{
		FirstName:       "Ana",
		MI:              "C",
		LastName:        "Reyes",
		Bio:             "hello",
		Username:        "ana",
		Email:           "ana@example.com",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	}
}

func TestSignUpWritesProfileKeyedByAccountAndSignsOut(t *testing.T) {
	auth := &stubAuthProvider{}
	documents := &stubProfileWriter{}
	flow := NewFlow(auth, documents)

	if err := flow.SignUp(context.Background(), validSignupInput()); err != nil {
		t.Fatalf("SignUp() error: %v", err)
	}

	if documents.setCollection != models.UsersCollection {
		t.Fatalf("expected profile in %q, got %q", models.UsersCollection, documents.setCollection)
	}
	if documents.setID != "uid-1" {
		t.Fatalf("expected profile keyed by account id, got %q", documents.setID)
	}
	if documents.setFields[models.FieldUsername] != "ana" || documents.setFields[models.FieldEmail] != "ana@example.com" {
		t.Fatalf("unexpected profile fields: %+v", documents.setFields)
	}
	if auth.signedOutToken != "token-1" {
		t.Fatal("signup must sign the fresh session out")
	}
}

func TestSignUpPropagatesAccountCreationError(t *testing.T) {
	auth := &stubAuthProvider{createErr: backend.ErrEmailInUse}
	documents := &stubProfileWriter{}
	flow := NewFlow(auth, documents)

	err := flow.SignUp(context.Background(), validSignupInput())
	if backend.CodeOf(err) != backend.CodeEmailInUse {
		t.Fatalf("expected email-in-use, got %v", err)
	}
	if documents.setID != "" {
		t.Fatal("no profile document may be written when account creation fails")
	}
}

func TestSignUpSignsOutEvenWhenProfileWriteFails(t *testing.T) {
	auth := &stubAuthProvider{}
	documents := &stubProfileWriter{setErr: errors.New("write failed")}
	flow := NewFlow(auth, documents)

	err := flow.SignUp(context.Background(), validSignupInput())
	if err == nil || err.Error() != "write failed" {
		t.Fatalf("expected profile write error, got %v", err)
	}
	if auth.signedOutToken != "token-1" {
		t.Fatal("session must be signed out even when the profile write fails")
	}
}
