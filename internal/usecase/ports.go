package usecase

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/board-client/internal/adapter/api"
	"github.com/Abdurahmanit/GroupProject/board-client/internal/domain"
)

// SessionAPI is the part of the remote gateway the session store needs.
type SessionAPI interface {
	Session(ctx context.Context) (*api.SessionStatus, error)
	Register(ctx context.Context, reg domain.Registration) error
	Login(ctx context.Context, creds domain.Credentials) (*api.LoginResult, error)
	Logout(ctx context.Context) error
}

// ListingAPI is the part of the remote gateway the listing cache needs.
type ListingAPI interface {
	ListAds(ctx context.Context) ([]domain.Listing, error)
	MyResponses(ctx context.Context) ([]domain.Listing, error)
	CreateAd(ctx context.Context, draft domain.ListingDraft) error
	DeleteAd(ctx context.Context, id int64) error
}

// ResponseAPI is the part of the remote gateway the response workflow needs.
type ResponseAPI interface {
	Respond(ctx context.Context, id int64) error
	Responders(ctx context.Context, id int64) ([]domain.Responder, error)
}

// BoardAPI is the whole gateway.
type BoardAPI interface {
	SessionAPI
	ListingAPI
	ResponseAPI
}

var _ BoardAPI = (*api.Client)(nil)
