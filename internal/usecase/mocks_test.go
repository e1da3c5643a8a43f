package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/Abdurahmanit/GroupProject/board-client/internal/adapter/api"
	"github.com/Abdurahmanit/GroupProject/board-client/internal/adapter/credstore"
	natsadapter "github.com/Abdurahmanit/GroupProject/board-client/internal/adapter/messaging/nats"
	"github.com/Abdurahmanit/GroupProject/board-client/internal/domain"
	"github.com/Abdurahmanit/GroupProject/board-client/internal/platform/logger"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBoardAPI struct{ mock.Mock }

func (m *MockBoardAPI) Session(ctx context.Context) (*api.SessionStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.SessionStatus), args.Error(1)
}
func (m *MockBoardAPI) Register(ctx context.Context, reg domain.Registration) error {
	args := m.Called(ctx, reg)
	return args.Error(0)
}
func (m *MockBoardAPI) Login(ctx context.Context, creds domain.Credentials) (*api.LoginResult, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.LoginResult), args.Error(1)
}
func (m *MockBoardAPI) Logout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockBoardAPI) ListAds(ctx context.Context) ([]domain.Listing, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Listing), args.Error(1)
}
func (m *MockBoardAPI) MyResponses(ctx context.Context) ([]domain.Listing, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Listing), args.Error(1)
}
func (m *MockBoardAPI) CreateAd(ctx context.Context, draft domain.ListingDraft) error {
	args := m.Called(ctx, draft)
	return args.Error(0)
}
func (m *MockBoardAPI) DeleteAd(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockBoardAPI) Respond(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockBoardAPI) Responders(ctx context.Context, id int64) ([]domain.Responder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Responder), args.Error(1)
}

type MockConfirmer struct{ mock.Mock }

func (m *MockConfirmer) Confirm(prompt string) bool {
	args := m.Called(prompt)
	return args.Bool(0)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

type notice struct {
	Text    string
	IsError bool
}

// fakeNotifier records every message shown.
type fakeNotifier struct {
	mu      sync.Mutex
	notices []notice
}

func (n *fakeNotifier) Show(text string, isError bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice{Text: text, IsError: isError})
}

func (n *fakeNotifier) Last() notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.notices) == 0 {
		return notice{}
	}
	return n.notices[len(n.notices)-1]
}

func (n *fakeNotifier) Has(text string, isError bool) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, got := range n.notices {
		if got.Text == text && got.IsError == isError {
			return true
		}
	}
	return false
}

// fakeRenderer records what the core asked to display.
type fakeRenderer struct {
	mu             sync.Mutex
	listings       map[domain.Projection][]domain.Listing
	renders        map[domain.Projection]int
	responders     map[int64][]domain.Responder
	affordances    map[int64][]domain.Affordance
	identity       *domain.User
	formResets     int
	loginPrompts   int
	loginFormShown int
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{
		listings:    make(map[domain.Projection][]domain.Listing),
		renders:     make(map[domain.Projection]int),
		responders:  make(map[int64][]domain.Responder),
		affordances: make(map[int64][]domain.Affordance),
	}
}

func (r *fakeRenderer) RenderListings(p domain.Projection, listings []domain.Listing) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listings[p] = listings
	r.renders[p]++
}

func (r *fakeRenderer) RenderResponders(id int64, responders []domain.Responder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responders[id] = responders
}

func (r *fakeRenderer) RenderAffordance(id int64, a domain.Affordance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.affordances[id] = append(r.affordances[id], a)
}

func (r *fakeRenderer) SetIdentity(user *domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.identity = user
}

func (r *fakeRenderer) ResetListingForm() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.formResets++
}

func (r *fakeRenderer) PromptLogin() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loginPrompts++
}

func (r *fakeRenderer) ShowLoginForm() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loginFormShown++
}

func (r *fakeRenderer) Rendered(p domain.Projection) []domain.Listing {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listings[p]
}

func (r *fakeRenderer) LastAffordance(id int64) domain.Affordance {
	r.mu.Lock()
	defer r.mu.Unlock()
	seq := r.affordances[id]
	if len(seq) == 0 {
		return domain.AffordanceNone
	}
	return seq[len(seq)-1]
}

type fixture struct {
	board     *Board
	api       *MockBoardAPI
	store     *credstore.MemoryStore
	notifier  *fakeNotifier
	renderer  *fakeRenderer
	confirmer *MockConfirmer
}

// newFixture builds a board whose credential store already holds token.
func newFixture(t *testing.T, token string) *fixture {
	t.Helper()
	f := &fixture{
		api:       new(MockBoardAPI),
		store:     credstore.NewMemoryStore(token),
		notifier:  &fakeNotifier{},
		renderer:  newFakeRenderer(),
		confirmer: new(MockConfirmer),
	}
	f.board = NewBoard(Deps{
		API:       f.api,
		Store:     f.store,
		Notifier:  f.notifier,
		Renderer:  f.renderer,
		Confirmer: f.confirmer,
		Publisher: natsadapter.NoopPublisher{},
		Logger:    logger.NewNop(),
	})
	require.NoError(t, f.board.Session().Init(context.Background()))
	return f
}

// signIn syncs the identity to user; the resulting identity change refreshes feed once.
func (f *fixture) signIn(t *testing.T, user domain.User, feed []domain.Listing) {
	t.Helper()
	f.api.On("Session", mock.Anything).Return(&api.SessionStatus{Authenticated: true, User: &user}, nil).Once()
	f.api.On("ListAds", mock.Anything).Return(feed, nil).Once()
	f.api.On("MyResponses", mock.Anything).Return([]domain.Listing{}, nil).Once()
	got := f.board.Session().SyncIdentity(context.Background())
	require.NotNil(t, got)
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func ad(id int64, mine bool) domain.Listing {
	l := domain.Listing{ID: id, Title: "ad", Description: "desc", Price: 10, OwnerName: "owner", Mine: mine}
	if mine {
		l.ResponsesCount = intPtr(0)
	} else {
		l.HasResponded = boolPtr(false)
	}
	return l
}

func ids(listings []domain.Listing) []int64 {
	out := make([]int64, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.ID)
	}
	return out
}
