// Package localauth is the SQLite-backed implementation of the
// backend.AuthProvider contract: email/password accounts with bcrypt hashes,
// HS256 session tokens, sign-out revocation and auth-state fan-out.
package localauth

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/carebright/carelog/internal/backend"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	defaultSessionTTL = 7 * 24 * time.Hour
	minPasswordLength = 6

	failedAttemptLimit  = 5
	failedAttemptWindow = 15 * time.Minute
)

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Provider struct {
	database   *gorm.DB
	secretKey  []byte
	sessionTTL time.Duration
	limiter    *attemptLimiter

	mu           sync.Mutex
	revoked      map[string]time.Time
	observers    map[int]backend.AuthStateFunc
	nextObserver int
}

func NewProvider(database *gorm.DB, secretKey string) *Provider {
	return &Provider{
		database:   database,
		secretKey:  []byte(secretKey),
		sessionTTL: defaultSessionTTL,
		limiter:    newAttemptLimiter(),
		revoked:    make(map[string]time.Time),
		observers:  make(map[int]backend.AuthStateFunc),
	}
}

func (provider *Provider) SignIn(ctx context.Context, email string, password string) (backend.Session, error) {
	normalized := normalizeEmail(email)
	if normalized == "" || password == "" {
		return backend.Session{}, backend.ErrInvalidCredential
	}

	now := time.Now()
	if provider.limiter.tooManyRecent(normalized, now, failedAttemptLimit, failedAttemptWindow) {
		return backend.Session{}, backend.ErrTooManyRequests
	}

	var account Account
	err := provider.database.WithContext(ctx).Where("email = ?", normalized).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		provider.limiter.addFailure(normalized, now, failedAttemptWindow)
		return backend.Session{}, backend.ErrUserNotFound
	}
	if err != nil {
		return backend.Session{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		provider.limiter.addFailure(normalized, now, failedAttemptWindow)
		return backend.Session{}, backend.ErrWrongPassword
	}

	provider.limiter.reset(normalized)

	session, err := provider.issueSession(&account)
	if err != nil {
		return backend.Session{}, err
	}

	provider.notify(backend.AuthState{UserID: account.ID, SignedIn: true})
	return session, nil
}

func (provider *Provider) CreateAccount(ctx context.Context, email string, password string) (backend.Session, error) {
	normalized := normalizeEmail(email)
	if normalized == "" {
		return backend.Session{}, backend.ErrInvalidCredential
	}
	if len(password) < minPasswordLength {
		return backend.Session{}, backend.ErrWeakPassword
	}

	var matched int64
	if err := provider.database.WithContext(ctx).Model(&Account{}).
		Where("email = ?", normalized).
		Count(&matched).Error; err != nil {
		return backend.Session{}, err
	}
	if matched > 0 {
		return backend.Session{}, backend.ErrEmailInUse
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return backend.Session{}, err
	}

	account := Account{
		ID:           uuid.NewString(),
		Email:        normalized,
		PasswordHash: string(passwordHash),
		CreatedAt:    time.Now(),
	}
	if err := provider.database.WithContext(ctx).Create(&account).Error; err != nil {
		return backend.Session{}, backend.ErrEmailInUse
	}

	session, err := provider.issueSession(&account)
	if err != nil {
		return backend.Session{}, err
	}

	provider.notify(backend.AuthState{UserID: account.ID, SignedIn: true})
	return session, nil
}

func (provider *Provider) SignOut(ctx context.Context, token string) error {
	claims, err := provider.parseToken(token)
	if err != nil {
		return backend.ErrInvalidCredential
	}

	provider.mu.Lock()
	provider.revoked[claims.ID] = claims.ExpiresAt.Time
	provider.pruneRevokedLocked(time.Now())
	provider.mu.Unlock()

	provider.notify(backend.AuthState{UserID: claims.Subject, SignedIn: false})
	return nil
}

func (provider *Provider) VerifySession(ctx context.Context, token string) (backend.Session, error) {
	claims, err := provider.parseToken(token)
	if err != nil {
		return backend.Session{}, backend.ErrInvalidCredential
	}

	provider.mu.Lock()
	_, isRevoked := provider.revoked[claims.ID]
	provider.mu.Unlock()
	if isRevoked {
		return backend.Session{}, backend.ErrInvalidCredential
	}

	return backend.Session{UserID: claims.Subject, Email: claims.Email, Token: token}, nil
}

// SubscribeAuthState registers fn for sign-in/sign-out events. Observers are
// invoked synchronously on the calling goroutine.
func (provider *Provider) SubscribeAuthState(fn backend.AuthStateFunc) backend.Unsubscribe {
	provider.mu.Lock()
	key := provider.nextObserver
	provider.nextObserver++
	provider.observers[key] = fn
	provider.mu.Unlock()

	return func() {
		provider.mu.Lock()
		delete(provider.observers, key)
		provider.mu.Unlock()
	}
}

func (provider *Provider) issueSession(account *Account) (backend.Session, error) {
	now := time.Now()
	claims := sessionClaims{
		Email: account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(provider.sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(provider.secretKey)
	if err != nil {
		return backend.Session{}, err
	}

	return backend.Session{UserID: account.ID, Email: account.Email, Token: token}, nil
}

func (provider *Provider) parseToken(token string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return provider.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.Subject == "" || claims.ID == "" || claims.ExpiresAt == nil {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}

func (provider *Provider) notify(state backend.AuthState) {
	provider.mu.Lock()
	observers := make([]backend.AuthStateFunc, 0, len(provider.observers))
	for _, observer := range provider.observers {
		observers = append(observers, observer)
	}
	provider.mu.Unlock()

	for _, observer := range observers {
		observer(state)
	}
}

func (provider *Provider) pruneRevokedLocked(now time.Time) {
	for tokenID, expiry := range provider.revoked {
		if expiry.Before(now) {
			delete(provider.revoked, tokenID)
		}
	}
}

func normalizeEmail(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return ""
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ""
	}
	return email
}
