package usecase

import (
	"context"
	"fmt"
	"sync"

	natsadapter "github.com/Abdurahmanit/GroupProject/board-client/internal/adapter/messaging/nats"
	"github.com/Abdurahmanit/GroupProject/board-client/internal/domain"
	"github.com/Abdurahmanit/GroupProject/board-client/internal/platform/logger"
	"go.uber.org/zap"
)

// IdentityListener is told about every identity change (nil = logged out).
type IdentityListener func(ctx context.Context, user *domain.User)

// Session is the single owner of the credential and the authenticated identity.
// Invariant: identity != nil implies credential != "".
type Session struct {
	api       SessionAPI
	store     domain.CredentialStore
	notifier  domain.Notifier
	renderer  domain.Renderer
	publisher domain.EventPublisher
	logger    *logger.Logger

	mu         sync.RWMutex
	credential string
	identity   *domain.User
	listeners  []IdentityListener
}

func NewSession(
	sessionAPI SessionAPI,
	store domain.CredentialStore,
	notifier domain.Notifier,
	renderer domain.Renderer,
	publisher domain.EventPublisher,
	log *logger.Logger,
) *Session {
	return &Session{
		api:       sessionAPI,
		store:     store,
		notifier:  notifier,
		renderer:  renderer,
		publisher: publisher,
		logger:    log.Named("Session"),
	}
}

// Init restores the persisted credential. The identity is not restored; call SyncIdentity.
func (s *Session) Init(ctx context.Context) error {
	token, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Error("Failed to load persisted credential", zap.Error(err))
		return fmt.Errorf("session init: %w", err)
	}
	s.mu.Lock()
	s.credential = token
	s.identity = nil
	s.mu.Unlock()
	s.logger.Info("Session initialized", zap.Bool("credential_present", token != ""))
	return nil
}

// Subscribe registers fn for identity changes.
func (s *Session) Subscribe(fn IdentityListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Credential returns the current bearer token, "" when absent.
func (s *Session) Credential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential
}

// Identity returns a copy of the authenticated user, nil when logged out.
func (s *Session) Identity() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return nil
	}
	u := *s.identity
	return &u
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity != nil
}

// SetCredential stores and persists token and drops the identity until the next sync.
func (s *Session) SetCredential(ctx context.Context, token string) {
	s.mu.Lock()
	s.credential = token
	changed := s.setIdentityLocked(nil)
	s.mu.Unlock()

	if err := s.store.Save(ctx, token); err != nil {
		s.logger.Error("Failed to persist credential", zap.Error(err))
	}
	if changed {
		s.fire(ctx, nil)
	}
}

// Clear forgets the credential and the identity, persistently.
func (s *Session) Clear(ctx context.Context) {
	s.mu.Lock()
	s.credential = ""
	changed := s.setIdentityLocked(nil)
	s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		s.logger.Error("Failed to clear persisted credential", zap.Error(err))
	}
	if changed {
		s.fire(ctx, nil)
	}
}

// SyncIdentity asks the server who we are. It never fails: any error degrades
// to the logged-out view and is shown to the user.
func (s *Session) SyncIdentity(ctx context.Context) *domain.User {
	dispatched := s.Credential()

	status, err := s.api.Session(ctx)
	var next *domain.User
	if err != nil {
		s.logger.Warn("Session check failed", zap.Error(err))
		s.notifier.Show(domain.UserMessage(err), true)
	} else if status != nil && status.Authenticated && status.User != nil {
		u := *status.User
		next = &u
	}

	s.mu.Lock()
	if s.credential != dispatched {
		// за время запроса сменился токен: ответ относится к старой сессии
		s.mu.Unlock()
		s.logger.Debug("Discarding session check for a replaced credential")
		return s.Identity()
	}
	if s.credential == "" {
		next = nil
	}
	changed := s.setIdentityLocked(next)
	s.mu.Unlock()

	if changed {
		s.logger.Info("Identity changed", zap.Bool("authenticated", next != nil))
		s.fire(ctx, next)
	}
	return s.Identity()
}

// HandleUnauthorized clears the session when a request made with the current
// credential was rejected with 401. Rejections of an already replaced token are ignored.
func (s *Session) HandleUnauthorized(token string) {
	if token == "" || token != s.Credential() {
		return
	}
	s.logger.Warn("Credential rejected by server, clearing session")
	s.Clear(context.Background())
}

// Register creates an account; on success the login form is shown.
func (s *Session) Register(ctx context.Context, reg domain.Registration) error {
	if err := s.api.Register(ctx, reg); err != nil {
		s.logger.Warn("Registration failed", zap.String("email", reg.Email), zap.Error(err))
		s.notifier.Show(domain.UserMessage(err), true)
		return err
	}
	s.logger.Info("Registration succeeded", zap.String("email", reg.Email))
	s.notifier.Show(msgRegistered, false)
	s.renderer.ShowLoginForm()
	return nil
}

// Login exchanges credentials for a token, persists it and re-syncs the identity.
func (s *Session) Login(ctx context.Context, creds domain.Credentials) error {
	res, err := s.api.Login(ctx, creds)
	if err != nil {
		s.logger.Warn("Login failed", zap.String("email", creds.Email), zap.Error(err))
		s.notifier.Show(domain.UserMessage(err), true)
		return err
	}
	s.SetCredential(ctx, res.Token)

	name := msgDefaultUserName
	if res.User != nil && res.User.Name != "" {
		name = res.User.Name
	}
	s.notifier.Show(fmt.Sprintf(msgWelcomeFormat, name), false)

	user := s.SyncIdentity(ctx)
	s.publishChanged(ctx, user)
	return nil
}

// Logout is best effort remotely and unconditional locally.
func (s *Session) Logout(ctx context.Context) {
	if err := s.api.Logout(ctx); err != nil {
		s.logger.Debug("Remote logout failed, ignoring", zap.Error(err))
	}
	s.Clear(ctx)
	s.SyncIdentity(ctx)
	s.publishChanged(ctx, nil)
}

func (s *Session) setIdentityLocked(next *domain.User) bool {
	prev := s.identity
	s.identity = next
	switch {
	case prev == nil && next == nil:
		return false
	case prev == nil || next == nil:
		return true
	default:
		return *prev != *next
	}
}

func (s *Session) fire(ctx context.Context, user *domain.User) {
	s.mu.RLock()
	listeners := append([]IdentityListener(nil), s.listeners...)
	s.mu.RUnlock()

	s.renderer.SetIdentity(user)
	for _, fn := range listeners {
		fn(ctx, user)
	}
}

func (s *Session) publishChanged(ctx context.Context, user *domain.User) {
	payload := map[string]interface{}{"authenticated": user != nil}
	if user != nil {
		payload["user_id"] = user.ID
	}
	if err := s.publisher.Publish(ctx, natsadapter.SessionChangedSubject, payload); err != nil {
		s.logger.Warn("Failed to publish session.changed event", zap.Error(err))
	}
}
