package usecase

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/board-client/internal/domain"
	"github.com/Abdurahmanit/GroupProject/board-client/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/board-client/internal/platform/metrics"
	"go.uber.org/zap"
)

// Deps groups the collaborators the core is driven through.
type Deps struct {
	API       BoardAPI
	Store     domain.CredentialStore
	Notifier  domain.Notifier
	Renderer  domain.Renderer
	Confirmer domain.Confirmer
	Publisher domain.EventPublisher
	Logger    *logger.Logger
	Metrics   *metrics.MetricsManager
}

// Board wires the session store, the listing cache and the response workflow.
type Board struct {
	session   *Session
	listings  *ListingCache
	responses *ResponseController
	logger    *logger.Logger
}

func NewBoard(d Deps) *Board {
	if d.Logger == nil {
		d.Logger = logger.NewNop()
	}
	session := NewSession(d.API, d.Store, d.Notifier, d.Renderer, d.Publisher, d.Logger)
	listings := NewListingCache(d.API, session, d.Notifier, d.Renderer, d.Confirmer, d.Publisher, d.Logger, d.Metrics)
	responses := NewResponseController(d.API, session, listings, d.Notifier, d.Renderer, d.Publisher, d.Logger, d.Metrics)

	b := &Board{
		session:   session,
		listings:  listings,
		responses: responses,
		logger:    d.Logger.Named("Board"),
	}
	session.Subscribe(b.onIdentityChanged)
	return b
}

func (b *Board) Session() *Session              { return b.session }
func (b *Board) Listings() *ListingCache        { return b.listings }
func (b *Board) Responses() *ResponseController { return b.responses }

// Start restores the persisted credential, syncs the identity and loads the feeds.
func (b *Board) Start(ctx context.Context) error {
	if err := b.session.Init(ctx); err != nil {
		return err
	}
	if user := b.session.SyncIdentity(ctx); user == nil {
		// смены личности не было, слушатель не сработал
		b.session.renderer.SetIdentity(nil)
		_ = b.listings.RefreshFeeds(ctx)
	}
	b.logger.Info("Board started", zap.Bool("authenticated", b.session.Authenticated()))
	return nil
}

func (b *Board) onIdentityChanged(ctx context.Context, user *domain.User) {
	b.logger.Debug("Recomputing projections after identity change", zap.Bool("authenticated", user != nil))
	b.listings.Reset()
	b.responses.Reset()
	_ = b.listings.RefreshFeeds(ctx)
	if user != nil {
		_ = b.listings.RefreshMyResponses(ctx)
	}
}
