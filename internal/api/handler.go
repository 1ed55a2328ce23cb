package api

import (
	"time"

	"github.com/carebright/carelog/internal/backend"
	"github.com/carebright/carelog/internal/services/authflow"
	"github.com/carebright/carelog/internal/store"
)

const (
	authCookieName    = "carelog_auth"
	contextSessionKey = "current_session"

	authCookieTTL = 7 * 24 * time.Hour
)

type Handler struct {
	auth         backend.AuthProvider
	documents    backend.DocumentStore
	goals        *store.GoalStore
	signup       *authflow.Flow
	cookieSecure bool
}

func NewHandler(auth backend.AuthProvider, documents backend.DocumentStore, cookieSecure bool) *Handler {
	return &Handler{
		auth:         auth,
		documents:    documents,
		goals:        store.NewGoalStore(documents),
		signup:       authflow.NewFlow(auth, documents),
		cookieSecure: cookieSecure,
	}
}
