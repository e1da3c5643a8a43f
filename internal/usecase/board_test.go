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

func TestBoard_StartAnonymous(t *testing.T) {
	f := newFixture(t, "")
	f.api.On("Session", mock.Anything).Return(&api.SessionStatus{Authenticated: false}, nil).Once()
	f.api.On("ListAds", mock.Anything).Return([]domain.Listing{ad(1, false)}, nil).Once()

	require.NoError(t, f.board.Start(context.Background()))

	assert.False(t, f.board.Session().Authenticated())
	assert.Equal(t, []int64{1}, ids(f.renderer.Rendered(domain.ProjectionPublic)))
	assert.Empty(t, f.renderer.Rendered(domain.ProjectionMine))
	f.api.AssertExpectations(t)
}

func TestBoard_StartRestoresSession(t *testing.T) {
	f := newFixture(t, "abc")
	ann := domain.User{ID: 1, Name: "Ann", Email: "a@x.com"}
	f.api.On("Session", mock.Anything).Return(&api.SessionStatus{Authenticated: true, User: &ann}, nil).Once()
	f.api.On("ListAds", mock.Anything).Return([]domain.Listing{ad(1, true), ad(2, false)}, nil).Once()
	f.api.On("MyResponses", mock.Anything).Return([]domain.Listing{}, nil).Once()

	require.NoError(t, f.board.Start(context.Background()))

	assert.Equal(t, &ann, f.board.Session().Identity())
	assert.Equal(t, &ann, f.renderer.identity)
	assert.Equal(t, []int64{1}, ids(f.renderer.Rendered(domain.ProjectionMine)))
	f.api.AssertExpectations(t)
}

func TestBoard_IdentityChangeForgetsResponseState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "abc")
	f.signIn(t, domain.User{ID: 1}, []domain.Listing{ad(42, false)})

	f.api.On("Respond", mock.Anything, int64(42)).Return(nil).Once()
	f.api.On("ListAds", mock.Anything).Return([]domain.Listing{ad(42, false)}, nil).Once()
	f.api.On("MyResponses", mock.Anything).Return([]domain.Listing{}, nil).Once()
	_, err := f.board.Responses().Respond(ctx, 42)
	require.NoError(t, err)
	require.True(t, f.board.Listings().HasResponded(42))

	// другой пользователь на том же клиенте
	f.api.On("ListAds", mock.Anything).Return([]domain.Listing{ad(42, false)}, nil).Once()
	f.board.Session().SetCredential(ctx, "other")
	f.signIn(t, domain.User{ID: 2}, []domain.Listing{ad(42, false)})

	assert.False(t, f.board.Listings().HasResponded(42))
	assert.Equal(t, domain.SubmissionIdle, f.board.Responses().State(42))
	assert.Equal(t, domain.AffordanceRespond, f.board.Responses().Affordance(ad(42, false)))
}
