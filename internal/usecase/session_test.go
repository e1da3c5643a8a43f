package usecase

import (
	"context"
	"testing"

	"github.com/Abdurahmanit/GroupProject/board-client/internal/adapter/api"
	"github.com/Abdurahmanit/GroupProject/board-client/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSession_LoginPersistsCredentialAndSyncsIdentity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "")
	ann := domain.User{ID: 1, Name: "Ann", Email: "a@x.com"}
	creds := domain.Credentials{Email: "a@x.com", Password: "secret"}

	f.api.On("Login", mock.Anything, creds).Return(&api.LoginResult{Token: "abc", User: &ann}, nil).Once()
	f.api.On("Session", mock.Anything).Return(&api.SessionStatus{Authenticated: true, User: &ann}, nil).Once()
	f.api.On("ListAds", mock.Anything).Return([]domain.Listing{}, nil).Once()
	f.api.On("MyResponses", mock.Anything).Return([]domain.Listing{}, nil).Once()

	require.NoError(t, f.board.Session().Login(ctx, creds))

	assert.Equal(t, &ann, f.board.Session().Identity())
	assert.Equal(t, "abc", f.board.Session().Credential())
	persisted, err := f.store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", persisted)
	assert.True(t, f.notifier.Has("Welcome, Ann!", false))
	assert.Equal(t, &ann, f.renderer.identity)
	f.api.AssertExpectations(t)
}

func TestSession_LoginFailureShowsServerMessage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "")
	creds := domain.Credentials{Email: "a@x.com", Password: "wrong"}
	f.api.On("Login", mock.Anything, creds).Return(nil, domain.NewHTTPFailure(401, "Invalid credentials")).Once()

	err := f.board.Session().Login(ctx, creds)

	require.Error(t, err)
	assert.Equal(t, notice{Text: "Invalid credentials", IsError: true}, f.notifier.Last())
	assert.Empty(t, f.board.Session().Credential())
	assert.Nil(t, f.board.Session().Identity())
	f.api.AssertNotCalled(t, "Session", mock.Anything)
}

func TestSession_RegisterShowsLoginForm(t *testing.T) {
	f := newFixture(t, "")
	reg := domain.Registration{Name: "Ann", Email: "a@x.com", Password: "secret"}
	f.api.On("Register", mock.Anything, reg).Return(nil).Once()

	require.NoError(t, f.board.Session().Register(context.Background(), reg))

	assert.Equal(t, notice{Text: msgRegistered}, f.notifier.Last())
	assert.Equal(t, 1, f.renderer.loginFormShown)
}

func TestSession_RegisterConflict(t *testing.T) {
	f := newFixture(t, "")
	reg := domain.Registration{Name: "Ann", Email: "a@x.com", Password: "secret"}
	f.api.On("Register", mock.Anything, reg).Return(domain.NewHTTPFailure(409, "Email already registered")).Once()

	err := f.board.Session().Register(context.Background(), reg)

	require.Error(t, err)
	assert.Equal(t, notice{Text: "Email already registered", IsError: true}, f.notifier.Last())
	assert.Zero(t, f.renderer.loginFormShown)
}

func TestSession_SyncIdentityErrorDegradesToLoggedOut(t *testing.T) {
	f := newFixture(t, "abc")
	f.signIn(t, domain.User{ID: 1, Name: "Ann"}, []domain.Listing{})

	f.api.On("Session", mock.Anything).Return(nil, domain.NewNetworkFailure(assert.AnError)).Once()
	f.api.On("ListAds", mock.Anything).Return([]domain.Listing{}, nil).Once()

	got := f.board.Session().SyncIdentity(context.Background())

	assert.Nil(t, got)
	assert.False(t, f.board.Session().Authenticated())
	assert.Equal(t, "abc", f.board.Session().Credential())
	assert.Equal(t, notice{Text: domain.GenericFailureMessage, IsError: true}, f.notifier.Last())
	assert.Nil(t, f.renderer.identity)
}

func TestSession_SyncIdentityWithoutCredentialIgnoresServerIdentity(t *testing.T) {
	f := newFixture(t, "")
	f.api.On("Session", mock.Anything).Return(&api.SessionStatus{Authenticated: true, User: &domain.User{ID: 9}}, nil).Once()

	assert.Nil(t, f.board.Session().SyncIdentity(context.Background()))
	assert.False(t, f.board.Session().Authenticated())
}

func TestSession_LogoutIgnoresRemoteFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "abc")
	f.signIn(t, domain.User{ID: 1, Name: "Ann"}, []domain.Listing{})

	f.api.On("Logout", mock.Anything).Return(domain.NewNetworkFailure(assert.AnError)).Once()
	f.api.On("ListAds", mock.Anything).Return([]domain.Listing{}, nil).Once()
	f.api.On("Session", mock.Anything).Return(&api.SessionStatus{Authenticated: false}, nil).Once()

	f.board.Session().Logout(ctx)

	assert.Empty(t, f.board.Session().Credential())
	assert.Nil(t, f.board.Session().Identity())
	persisted, err := f.store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, persisted)
	f.api.AssertExpectations(t)
}

func TestSession_HandleUnauthorizedOnlyClearsCurrentCredential(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "abc")

	f.board.Session().HandleUnauthorized("stale-token")
	assert.Equal(t, "abc", f.board.Session().Credential())

	f.board.Session().HandleUnauthorized("abc")
	assert.Empty(t, f.board.Session().Credential())
	persisted, err := f.store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestSession_SetCredentialDropsIdentity(t *testing.T) {
	f := newFixture(t, "abc")
	f.signIn(t, domain.User{ID: 1, Name: "Ann"}, []domain.Listing{})
	f.api.On("ListAds", mock.Anything).Return([]domain.Listing{}, nil).Once()

	var seen []*domain.User
	f.board.Session().Subscribe(func(_ context.Context, u *domain.User) { seen = append(seen, u) })

	f.board.Session().SetCredential(context.Background(), "next")

	assert.Nil(t, f.board.Session().Identity())
	assert.Equal(t, "next", f.board.Session().Credential())
	require.Len(t, seen, 1)
	assert.Nil(t, seen[0])
}
