// Package backend defines the contracts this app expects from its hosted
// backend: an email/password auth provider and a document database with
// per-document CRUD, equality-filtered collection queries and real-time
// change subscriptions. The app is a presentation layer over these two
// interfaces; internal/backend/localauth and internal/backend/docstore
// provide the SQLite-backed implementations wired in by default.
package backend

import (
	"context"
	"time"
)

// Fields is the schemaless payload of a stored document.
type Fields map[string]any

// Document is one stored record. CreatedAt is owned by the store and is set
// when the document is first written.
type Document struct {
	ID        string
	Fields    Fields
	CreatedAt time.Time
}

// Filter is a single-field equality constraint, the only query shape the
// app issues (goals filtered by owner).
type Filter struct {
	Field string
	Value any
}

// Session identifies an authenticated account. It is passed explicitly to
// every operation that acts on behalf of a user; there is no ambient
// "current user" state anywhere in the app.
type Session struct {
	UserID string
	Email  string
	Token  string
}

// Unsubscribe releases a subscription. Safe to call more than once.
type Unsubscribe func()

// AuthState is delivered to auth-state observers on sign-in and sign-out.
type AuthState struct {
	UserID   string
	SignedIn bool
}

type AuthStateFunc func(state AuthState)

type AuthProvider interface {
	SignIn(ctx context.Context, email string, password string) (Session, error)
	CreateAccount(ctx context.Context, email string, password string) (Session, error)
	SignOut(ctx context.Context, token string) error
	VerifySession(ctx context.Context, token string) (Session, error)
	SubscribeAuthState(fn AuthStateFunc) Unsubscribe
}

// DocumentSnapshotFunc receives the current state of one document. exists is
// false when the document has been deleted (or never existed).
type DocumentSnapshotFunc func(doc Document, exists bool)

// QuerySnapshotFunc receives the full current result set of a query, not a
// delta. Subscribers get one initial snapshot synchronously on subscribe and
// a fresh snapshot after every relevant change.
type QuerySnapshotFunc func(docs []Document)

// DocumentStore is the document database contract. UpdateDocument and
// DeleteDocument take the same equality filter as GetDocuments: a non-zero
// filter must match the stored document or the mutation fails with the
// not-found code, atomically with the write. Callers acting on behalf of a
// user scope their mutations to that user's documents this way.
type DocumentStore interface {
	AddDocument(ctx context.Context, collection string, fields Fields) (string, error)
	SetDocument(ctx context.Context, collection string, id string, fields Fields) error
	GetDocuments(ctx context.Context, collection string, filter Filter) ([]Document, error)
	UpdateDocument(ctx context.Context, collection string, id string, filter Filter, partial Fields) error
	DeleteDocument(ctx context.Context, collection string, id string, filter Filter) error
	SubscribeDocument(ctx context.Context, collection string, id string, fn DocumentSnapshotFunc) (Unsubscribe, error)
	SubscribeQuery(ctx context.Context, collection string, filter Filter, fn QuerySnapshotFunc) (Unsubscribe, error)
}
