package profilestats

import (
	"context"
	"sync"

	"github.com/carebright/carelog/internal/backend"
	"github.com/carebright/carelog/internal/models"
)

// Snapshot is the profile view's state at one point in time.
type Snapshot struct {
	Profile      models.Profile `json:"profile"`
	GoalCount    int            `json:"goal_count"`
	Distribution map[string]int `json:"distribution"`
}

// Watcher maintains a live profile view for one user: one subscription on
// the users/{uid} document and one on the goals query. Profile snapshots are
// shallow-merged into the view state (fields absent from a snapshot are
// never dropped); every goals snapshot recomputes the count and the icon
// distribution. The watcher tears itself down when its user signs out.
type Watcher struct {
	documents backend.DocumentStore
	auth      backend.AuthProvider

	mu           sync.Mutex
	profile      backend.Fields
	goalCount    int
	distribution map[string]int
	unsubs       []backend.Unsubscribe
	updates      chan struct{}
	closed       bool
}

func NewWatcher(documents backend.DocumentStore, auth backend.AuthProvider) *Watcher {
	return &Watcher{
		documents:    documents,
		auth:         auth,
		profile:      backend.Fields{},
		distribution: Distribution(nil),
		updates:      make(chan struct{}, 1),
	}
}

// Start acquires the two document-store subscriptions and the auth-state
// subscription. Both stores deliver an initial snapshot synchronously, so
// Snapshot is meaningful as soon as Start returns.
func (watcher *Watcher) Start(ctx context.Context, session backend.Session) error {
	userID := session.UserID

	unsubProfile, err := watcher.documents.SubscribeDocument(ctx, models.UsersCollection, userID, func(document backend.Document, exists bool) {
		if !exists {
			return
		}
		watcher.mergeProfile(document.Fields)
	})
	if err != nil {
		return err
	}
	watcher.addUnsub(unsubProfile)

	goalsFilter := backend.Filter{Field: models.FieldUserID, Value: userID}
	unsubGoals, err := watcher.documents.SubscribeQuery(ctx, models.GoalsCollection, goalsFilter, func(documents []backend.Document) {
		watcher.recompute(models.GoalsFromDocuments(documents))
	})
	if err != nil {
		watcher.Close()
		return err
	}
	watcher.addUnsub(unsubGoals)

	unsubAuth := watcher.auth.SubscribeAuthState(func(state backend.AuthState) {
		if state.UserID == userID && !state.SignedIn {
			watcher.Close()
		}
	})
	watcher.addUnsub(unsubAuth)

	return nil
}

// Close releases every subscription. Idempotent.
func (watcher *Watcher) Close() {
	watcher.mu.Lock()
	if watcher.closed {
		watcher.mu.Unlock()
		return
	}
	watcher.closed = true
	unsubs := watcher.unsubs
	watcher.unsubs = nil
	watcher.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}

// Snapshot returns a copy of the current view state. The merged field state
// is rendered as a typed profile.
func (watcher *Watcher) Snapshot() Snapshot {
	watcher.mu.Lock()
	defer watcher.mu.Unlock()

	distribution := make(map[string]int, len(watcher.distribution))
	for icon, percent := range watcher.distribution {
		distribution[icon] = percent
	}
	return Snapshot{
		Profile:      models.ProfileFromFields(watcher.profile),
		GoalCount:    watcher.goalCount,
		Distribution: distribution,
	}
}

// Updates signals after every state change; receivers re-read via Snapshot.
// The channel is never closed and drops signals when nobody is listening.
func (watcher *Watcher) Updates() <-chan struct{} {
	return watcher.updates
}

func (watcher *Watcher) mergeProfile(fields backend.Fields) {
	watcher.mu.Lock()
	for key, value := range fields {
		watcher.profile[key] = value
	}
	watcher.mu.Unlock()
	watcher.signal()
}

func (watcher *Watcher) recompute(goals []models.Goal) {
	distribution := Distribution(goals)

	watcher.mu.Lock()
	watcher.goalCount = len(goals)
	watcher.distribution = distribution
	watcher.mu.Unlock()
	watcher.signal()
}

func (watcher *Watcher) signal() {
	select {
	case watcher.updates <- struct{}{}:
	default:
	}
}

func (watcher *Watcher) addUnsub(unsub backend.Unsubscribe) {
	watcher.mu.Lock()
	alreadyClosed := watcher.closed
	if !alreadyClosed {
		watcher.unsubs = append(watcher.unsubs, unsub)
	}
	watcher.mu.Unlock()

	if alreadyClosed {
		unsub()
	}
}
