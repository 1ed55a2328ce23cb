// Package store holds the goal store: the single in-memory source of truth
// for "this user's goals" between backend round trips. Each mutating
// operation keeps the mirror consistent with the document store — create by
// refetching after the write, update and delete by patching the mirror only
// once the remote call has succeeded. There is no locking against other
// sessions, no versioning and no conflict detection: the store assumes one
// writer per account.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/carebright/carelog/internal/backend"
	"github.com/carebright/carelog/internal/catalog"
	"github.com/carebright/carelog/internal/models"
)

var (
	ErrNotSignedIn = errors.New("no signed-in user")
	ErrUnknownIcon = errors.New("icon is not in the catalog")
)

// GoalInput is the caller-editable part of a goal.
type GoalInput struct {
	Title       string
	Description string
	Icon        string
}

// GoalPatch is a partial update; nil fields are left untouched.
type GoalPatch struct {
	Title       *string
	Description *string
	Icon        *string
}

func (patch GoalPatch) fields() backend.Fields {
	partial := backend.Fields{}
	if patch.Title != nil {
		partial[models.FieldTitle] = *patch.Title
	}
	if patch.Description != nil {
		partial[models.FieldDescription] = *patch.Description
	}
	if patch.Icon != nil {
		partial[models.FieldIcon] = *patch.Icon
	}
	return partial
}

type GoalStore struct {
	documents backend.DocumentStore

	mu      sync.RWMutex
	mirrors map[string][]models.Goal
}

func NewGoalStore(documents backend.DocumentStore) *GoalStore {
	return &GoalStore{
		documents: documents,
		mirrors:   make(map[string][]models.Goal),
	}
}

// FetchGoals replaces the session user's mirror with the backend's current
// result set — a full replace, not a merge. An empty user id is a no-op.
func (store *GoalStore) FetchGoals(ctx context.Context, session backend.Session) error {
	if session.UserID == "" {
		return nil
	}

	documents, err := store.documents.GetDocuments(ctx, models.GoalsCollection, store.ownerFilter(session))
	if err != nil {
		return err
	}

	store.mu.Lock()
	store.mirrors[session.UserID] = models.GoalsFromDocuments(documents)
	store.mu.Unlock()
	return nil
}

// CreateGoal writes a new document tagged with the session's user id (the
// creation timestamp is server-owned) and refetches, so on success the
// mirror reflects the backend as of that refetch.
func (store *GoalStore) CreateGoal(ctx context.Context, session backend.Session, input GoalInput) error {
	if session.UserID == "" {
		return ErrNotSignedIn
	}
	if !catalog.IsValidIcon(input.Icon) {
		return ErrUnknownIcon
	}

	_, err := store.documents.AddDocument(ctx, models.GoalsCollection, backend.Fields{
		models.FieldTitle:       input.Title,
		models.FieldDescription: input.Description,
		models.FieldIcon:        input.Icon,
		models.FieldUserID:      session.UserID,
	})
	if err != nil {
		return err
	}

	return store.FetchGoals(ctx, session)
}

// DeleteGoal removes the document, then drops the matching entry from the
// mirror. The remote delete is scoped to the session user's documents, so a
// goal owned by someone else reads as not-found. When the remote delete
// fails the mirror is left untouched and the error is returned.
func (store *GoalStore) DeleteGoal(ctx context.Context, session backend.Session, id string) error {
	if session.UserID == "" {
		return ErrNotSignedIn
	}

	if err := store.documents.DeleteDocument(ctx, models.GoalsCollection, id, store.ownerFilter(session)); err != nil {
		return err
	}

	store.mu.Lock()
	mirror := store.mirrors[session.UserID]
	remaining := make([]models.Goal, 0, len(mirror))
	for _, goal := range mirror {
		if goal.ID != id {
			remaining = append(remaining, goal)
		}
	}
	store.mirrors[session.UserID] = remaining
	store.mu.Unlock()
	return nil
}

// UpdateGoal patches the document's fields, then shallow-merges the same
// patch into the cached entry. The remote update is scoped to the session
// user's documents, so a goal owned by someone else reads as not-found. The
// merge happens only after the remote call has succeeded; an entry missing
// from the mirror is not reconciled.
func (store *GoalStore) UpdateGoal(ctx context.Context, session backend.Session, id string, patch GoalPatch) error {
	if session.UserID == "" {
		return ErrNotSignedIn
	}
	if patch.Icon != nil && !catalog.IsValidIcon(*patch.Icon) {
		return ErrUnknownIcon
	}

	partial := patch.fields()
	if len(partial) == 0 {
		return nil
	}

	if err := store.documents.UpdateDocument(ctx, models.GoalsCollection, id, store.ownerFilter(session), partial); err != nil {
		return err
	}

	store.mu.Lock()
	mirror := store.mirrors[session.UserID]
	for index := range mirror {
		if mirror[index].ID != id {
			continue
		}
		if patch.Title != nil {
			mirror[index].Title = *patch.Title
		}
		if patch.Description != nil {
			mirror[index].Description = *patch.Description
		}
		if patch.Icon != nil {
			mirror[index].Icon = *patch.Icon
		}
		break
	}
	store.mu.Unlock()
	return nil
}

func (store *GoalStore) ownerFilter(session backend.Session) backend.Filter {
	return backend.Filter{Field: models.FieldUserID, Value: session.UserID}
}

// Goals returns a copy of the session user's mirror.
func (store *GoalStore) Goals(session backend.Session) []models.Goal {
	store.mu.RLock()
	defer store.mu.RUnlock()

	mirror := store.mirrors[session.UserID]
	copied := make([]models.Goal, len(mirror))
	copy(copied, mirror)
	return copied
}

// Goal looks up one cached entry by id.
func (store *GoalStore) Goal(session backend.Session, id string) (models.Goal, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	for _, goal := range store.mirrors[session.UserID] {
		if goal.ID == id {
			return goal, true
		}
	}
	return models.Goal{}, false
}
