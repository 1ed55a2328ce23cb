package models

import (
	"time"

	"github.com/carebright/carelog/internal/backend"
)

const GoalsCollection = "goals"

// Field names of the goals/{id} document shape.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldIcon        = "icon"
	FieldUserID      = "userId"
)

// Goal is one health/mood log entry. Every goal has exactly one owner and
// exactly one icon drawn from the catalog; its lifetime is owned by the
// document store, and in-memory copies are best-effort mirrors.
type Goal struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func GoalFromDocument(document backend.Document) Goal {
	return Goal{
		ID:          document.ID,
		Title:       stringField(document.Fields, FieldTitle),
		Description: stringField(document.Fields, FieldDescription),
		Icon:        stringField(document.Fields, FieldIcon),
		UserID:      stringField(document.Fields, FieldUserID),
		CreatedAt:   document.CreatedAt,
	}
}

func GoalsFromDocuments(documents []backend.Document) []Goal {
	goals := make([]Goal, 0, len(documents))
	for _, document := range documents {
		goals = append(goals, GoalFromDocument(document))
	}
	return goals
}

func stringField(fields backend.Fields, key string) string {
	value, _ := fields[key].(string)
	return value
}
