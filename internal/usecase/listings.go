package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	natsadapter "github.com/Abdurahmanit/GroupProject/board-client/internal/adapter/messaging/nats"
	"github.com/Abdurahmanit/GroupProject/board-client/internal/domain"
	"github.com/Abdurahmanit/GroupProject/board-client/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/board-client/internal/platform/metrics"
	"go.uber.org/zap"
)

// ListingCache holds the last accepted listing set per projection.
//
// Every refresh takes a sequence number at dispatch; a result is applied only
// if its number is still the latest issued for that projection, so a slow
// straggler never overwrites fresher data.
type ListingCache struct {
	api       ListingAPI
	session   *Session
	notifier  domain.Notifier
	renderer  domain.Renderer
	confirmer domain.Confirmer
	publisher domain.EventPublisher
	logger    *logger.Logger
	metrics   *metrics.MetricsManager

	issued [3]atomic.Uint64

	// applyMu serializes check-store-render so two renders of one projection never interleave.
	applyMu sync.Mutex

	mu        sync.RWMutex
	views     map[domain.Projection][]domain.Listing
	responded map[int64]struct{}
}

func NewListingCache(
	listingAPI ListingAPI,
	session *Session,
	notifier domain.Notifier,
	renderer domain.Renderer,
	confirmer domain.Confirmer,
	publisher domain.EventPublisher,
	log *logger.Logger,
	m *metrics.MetricsManager,
) *ListingCache {
	return &ListingCache{
		api:       listingAPI,
		session:   session,
		notifier:  notifier,
		renderer:  renderer,
		confirmer: confirmer,
		publisher: publisher,
		logger:    log.Named("ListingCache"),
		metrics:   m,
		views:     make(map[domain.Projection][]domain.Listing),
		responded: make(map[int64]struct{}),
	}
}

func (c *ListingCache) issue(p domain.Projection) uint64 {
	return c.issued[p].Add(1)
}

func (c *ListingCache) latest(p domain.Projection, seq uint64) bool {
	return c.issued[p].Load() == seq
}

// RefreshPublicFeed fetches every listing and replaces the public projection.
func (c *ListingCache) RefreshPublicFeed(ctx context.Context) error {
	seq := c.issue(domain.ProjectionPublic)
	ads, err := c.api.ListAds(ctx)
	if err != nil {
		return c.refreshFailed(domain.ProjectionPublic, seq, err)
	}
	return c.apply(domain.ProjectionPublic, seq, ads)
}

// RefreshMine replaces the owner's projection. Without a credential it renders
// an empty projection and makes no call.
func (c *ListingCache) RefreshMine(ctx context.Context) error {
	seq := c.issue(domain.ProjectionMine)
	if c.session.Credential() == "" {
		return c.apply(domain.ProjectionMine, seq, nil)
	}
	ads, err := c.api.ListAds(ctx)
	if err != nil {
		return c.refreshFailed(domain.ProjectionMine, seq, err)
	}
	return c.apply(domain.ProjectionMine, seq, ads)
}

// RefreshFeeds refreshes public and mine from a single fetch.
func (c *ListingCache) RefreshFeeds(ctx context.Context) error {
	publicSeq := c.issue(domain.ProjectionPublic)
	mineSeq := c.issue(domain.ProjectionMine)

	ads, err := c.api.ListAds(ctx)
	if err != nil {
		return c.refreshFailed(domain.ProjectionPublic, publicSeq, err)
	}

	errPublic := c.apply(domain.ProjectionPublic, publicSeq, ads)
	errMine := c.apply(domain.ProjectionMine, mineSeq, ads)
	return errors.Join(errPublic, errMine)
}

// RefreshMyResponses replaces the my-responses projection. It is a no-op when
// there is no credential.
func (c *ListingCache) RefreshMyResponses(ctx context.Context) error {
	if c.session.Credential() == "" {
		c.logger.Debug("Skipping my-responses refresh, not authenticated")
		return nil
	}
	seq := c.issue(domain.ProjectionMyResponses)
	ads, err := c.api.MyResponses(ctx)
	if err != nil {
		return c.refreshFailed(domain.ProjectionMyResponses, seq, err)
	}
	return c.apply(domain.ProjectionMyResponses, seq, ads)
}

func (c *ListingCache) refreshFailed(p domain.Projection, seq uint64, err error) error {
	if !c.latest(p, seq) {
		// ошибку устаревшего запроса не показываем, более новый уже в пути
		c.staleDropped(p, seq)
		return fmt.Errorf("refresh %s: %w", p, domain.ErrStaleResponse)
	}
	c.logger.Warn("Projection refresh failed",
		zap.String("projection", p.String()), zap.Uint64("seq", seq), zap.Error(err))
	c.notifier.Show(domain.UserMessage(err), true)
	return fmt.Errorf("refresh %s: %w", p, err)
}

func (c *ListingCache) staleDropped(p domain.Projection, seq uint64) {
	c.logger.Debug("Discarding stale projection response",
		zap.String("projection", p.String()), zap.Uint64("seq", seq))
	c.metrics.StaleDiscarded(p.String())
}

// apply replaces projection p with ads if seq is still the latest issued.
func (c *ListingCache) apply(p domain.Projection, seq uint64, ads []domain.Listing) error {
	c.applyMu.Lock()
	defer c.applyMu.Unlock()

	if !c.latest(p, seq) {
		c.staleDropped(p, seq)
		return fmt.Errorf("refresh %s: %w", p, domain.ErrStaleResponse)
	}

	view := c.project(p, ads)
	c.mu.Lock()
	c.views[p] = view
	c.mu.Unlock()

	c.logger.Debug("Projection replaced",
		zap.String("projection", p.String()), zap.Uint64("seq", seq), zap.Int("count", len(view)))
	c.renderer.RenderListings(p, cloneListings(view))
	return nil
}

func (c *ListingCache) project(p domain.Projection, ads []domain.Listing) []domain.Listing {
	authenticated := c.session.Credential() != ""

	c.mu.RLock()
	defer c.mu.RUnlock()

	view := make([]domain.Listing, 0, len(ads))
	for _, l := range ads {
		if p == domain.ProjectionMine && !l.Mine {
			continue
		}
		l.Normalize(authenticated)
		if !l.Mine && authenticated {
			if _, ok := c.responded[l.ID]; ok || p == domain.ProjectionMyResponses {
				yes := true
				l.HasResponded = &yes
			}
		}
		if p == domain.ProjectionPublic {
			l.ResponsesCount = nil
		}
		view = append(view, l)
	}
	return view
}

// Snapshot returns a copy of the current projection.
func (c *ListingCache) Snapshot(p domain.Projection) []domain.Listing {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneListings(c.views[p])
}

// Find looks a listing up in every projection, public first.
func (c *ListingCache) Find(id int64) (domain.Listing, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range domain.Projections {
		for _, l := range c.views[p] {
			if l.ID == id {
				return l, true
			}
		}
	}
	return domain.Listing{}, false
}

// MarkResponded records a successful response. The flag is never cleared for
// the current identity.
func (c *ListingCache) MarkResponded(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responded[id] = struct{}{}
	for _, view := range c.views {
		for i := range view {
			if view[i].ID == id && !view[i].Mine {
				yes := true
				view[i].HasResponded = &yes
			}
		}
	}
}

// HasResponded reports the overlay or the last fetched flag for id.
func (c *ListingCache) HasResponded(id int64) bool {
	c.mu.RLock()
	_, ok := c.responded[id]
	c.mu.RUnlock()
	if ok {
		return true
	}
	l, found := c.Find(id)
	return found && l.Responded()
}

// Reset drops every projection and the responded overlay. In-flight refreshes
// become stale.
func (c *ListingCache) Reset() {
	c.applyMu.Lock()
	defer c.applyMu.Unlock()
	for _, p := range domain.Projections {
		c.issue(p)
	}
	c.mu.Lock()
	c.views = make(map[domain.Projection][]domain.Listing)
	c.responded = make(map[int64]struct{})
	c.mu.Unlock()
	c.logger.Debug("Listing cache reset")
}

// DeleteListing removes an owned listing after confirmation. Projections are
// only touched by the follow-up refresh.
func (c *ListingCache) DeleteListing(ctx context.Context, id int64) error {
	if !c.confirmer.Confirm(msgDeletePrompt) {
		c.logger.Debug("Deletion declined", zap.Int64("listing_id", id))
		return domain.ErrNotConfirmed
	}
	if err := c.api.DeleteAd(ctx, id); err != nil {
		c.logger.Warn("Failed to delete listing", zap.Int64("listing_id", id), zap.Error(err))
		c.notifier.Show(domain.UserMessage(err), true)
		return fmt.Errorf("ListingCache.DeleteListing for id '%d': %w", id, err)
	}
	c.logger.Info("Listing deleted", zap.Int64("listing_id", id))
	c.notifier.Show(msgListingDeleted, false)
	_ = c.RefreshFeeds(ctx)
	c.publish(ctx, natsadapter.ListingDeletedSubject, map[string]interface{}{"listing_id": id})
	return nil
}

// PublishListing creates a listing from the authoring form.
func (c *ListingCache) PublishListing(ctx context.Context, draft domain.ListingDraft) error {
	if c.session.Credential() == "" {
		c.notifier.Show(msgLoginRequired, true)
		c.renderer.PromptLogin()
		return domain.ErrUnauthenticated
	}
	if err := draft.Validate(); err != nil {
		c.notifier.Show(err.Error(), true)
		return err
	}
	if err := c.api.CreateAd(ctx, draft); err != nil {
		c.logger.Warn("Failed to publish listing", zap.String("title", draft.Title), zap.Error(err))
		c.notifier.Show(domain.UserMessage(err), true)
		return fmt.Errorf("ListingCache.PublishListing for title '%s': %w", draft.Title, err)
	}
	c.logger.Info("Listing published", zap.String("title", draft.Title))
	c.renderer.ResetListingForm()
	c.notifier.Show(msgListingPublished, false)
	_ = c.RefreshFeeds(ctx)
	c.publish(ctx, natsadapter.ListingPublishedSubject, map[string]interface{}{"title": draft.Title})
	return nil
}

func (c *ListingCache) publish(ctx context.Context, subject string, payload interface{}) {
	if err := c.publisher.Publish(ctx, subject, payload); err != nil {
		c.logger.Warn("Failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}

func cloneListings(in []domain.Listing) []domain.Listing {
	if in == nil {
		return []domain.Listing{}
	}
	out := make([]domain.Listing, len(in))
	copy(out, in)
	return out
}
