package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	natsadapter "github.com/Abdurahmanit/GroupProject/board-client/internal/adapter/messaging/nats"
	"github.com/Abdurahmanit/GroupProject/board-client/internal/domain"
	"github.com/Abdurahmanit/GroupProject/board-client/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/board-client/internal/platform/metrics"
	"go.uber.org/zap"
)

// ResponseController runs the per-listing response state machine.
// The guard set is the only mutual exclusion: at most one submission per
// listing can be pending at a time.
type ResponseController struct {
	api       ResponseAPI
	session   *Session
	cache     *ListingCache
	notifier  domain.Notifier
	renderer  domain.Renderer
	publisher domain.EventPublisher
	logger    *logger.Logger
	metrics   *metrics.MetricsManager

	mu      sync.Mutex
	guards  map[int64]struct{}
	settled map[int64]domain.SubmissionState
	epoch   uint64
}

func NewResponseController(
	responseAPI ResponseAPI,
	session *Session,
	cache *ListingCache,
	notifier domain.Notifier,
	renderer domain.Renderer,
	publisher domain.EventPublisher,
	log *logger.Logger,
	m *metrics.MetricsManager,
) *ResponseController {
	return &ResponseController{
		api:       responseAPI,
		session:   session,
		cache:     cache,
		notifier:  notifier,
		renderer:  renderer,
		publisher: publisher,
		logger:    log.Named("ResponseController"),
		metrics:   m,
		guards:    make(map[int64]struct{}),
		settled:   make(map[int64]domain.SubmissionState),
	}
}

// State returns the submission state of listing id.
func (c *ResponseController) State(id int64) domain.SubmissionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked(id)
}

func (c *ResponseController) stateLocked(id int64) domain.SubmissionState {
	if _, ok := c.guards[id]; ok {
		return domain.SubmissionPending
	}
	if st, ok := c.settled[id]; ok {
		return st
	}
	return domain.SubmissionIdle
}

// Affordance decides which respond control the presentation should offer for l.
func (c *ResponseController) Affordance(l domain.Listing) domain.Affordance {
	c.mu.Lock()
	state := c.stateLocked(l.ID)
	c.mu.Unlock()

	switch {
	case state == domain.SubmissionPending:
		return domain.AffordanceInProgress
	case l.Mine:
		return domain.AffordanceNone
	case !c.session.Authenticated():
		return domain.AffordanceLogin
	case state == domain.SubmissionSucceeded:
		return domain.AffordanceResponded
	case l.Responded() || c.cache.HasResponded(l.ID):
		return domain.AffordanceAlreadyResponded
	default:
		return domain.AffordanceRespond
	}
}

// Respond submits a response to listing id. Blocked attempts return a sentinel
// error without any network call.
func (c *ResponseController) Respond(ctx context.Context, id int64) (domain.SubmissionState, error) {
	log := c.logger.With(zap.Int64("listing_id", id))

	c.mu.Lock()
	if c.session.Credential() == "" {
		c.mu.Unlock()
		c.metrics.Submission("blocked")
		c.notifier.Show(msgLoginToRespond, true)
		c.renderer.PromptLogin()
		return domain.SubmissionIdle, domain.ErrUnauthenticated
	}
	if _, pending := c.guards[id]; pending {
		c.mu.Unlock()
		c.metrics.Submission("blocked")
		log.Debug("Response already in flight")
		return domain.SubmissionPending, domain.ErrSubmissionInFlight
	}
	state := c.stateLocked(id)
	if state == domain.SubmissionSucceeded || c.cache.HasResponded(id) {
		c.mu.Unlock()
		c.metrics.Submission("blocked")
		c.notifier.Show(msgAlreadyResponded, true)
		return state, domain.ErrAlreadyResponded
	}
	if l, ok := c.cache.Find(id); ok && l.Mine {
		c.mu.Unlock()
		c.metrics.Submission("blocked")
		log.Debug("Refusing to respond to own listing")
		return state, domain.ErrOwnListing
	}
	c.guards[id] = struct{}{}
	epoch := c.epoch
	c.mu.Unlock()

	c.metrics.Submission("started")
	c.renderer.RenderAffordance(id, domain.AffordanceInProgress)

	err := c.api.Respond(ctx, id)

	c.mu.Lock()
	delete(c.guards, id)
	if epoch != c.epoch {
		// личность сменилась, пока запрос был в пути
		c.mu.Unlock()
		log.Debug("Dropping response result from a previous session")
		if err != nil {
			c.metrics.Submission("failure")
			c.notifier.Show(domain.UserMessage(err), true)
			return domain.SubmissionFailed, fmt.Errorf("ResponseController.Respond for id '%d': %w", id, err)
		}
		c.metrics.Submission("success")
		return domain.SubmissionSucceeded, nil
	}
	if err != nil {
		c.settled[id] = domain.SubmissionFailed
		c.mu.Unlock()
		return domain.SubmissionFailed, c.respondFailed(ctx, id, err)
	}
	c.settled[id] = domain.SubmissionSucceeded
	c.mu.Unlock()

	c.metrics.Submission("success")
	log.Info("Response submitted")
	c.cache.MarkResponded(id)
	c.renderer.RenderAffordance(id, domain.AffordanceResponded)
	c.notifier.Show(msgResponseSent, false)

	_ = c.cache.RefreshFeeds(ctx)
	_ = c.cache.RefreshMyResponses(ctx)

	if perr := c.publisher.Publish(ctx, natsadapter.ListingRespondedSubject, map[string]interface{}{"listing_id": id}); perr != nil {
		log.Warn("Failed to publish listing.responded event", zap.Error(perr))
	}
	return domain.SubmissionSucceeded, nil
}

func (c *ResponseController) respondFailed(ctx context.Context, id int64, err error) error {
	c.metrics.Submission("failure")
	c.logger.Warn("Response submission failed", zap.Int64("listing_id", id), zap.Error(err))

	var f *domain.Failure
	if errors.As(err, &f) && f.Kind == domain.FailureConflict {
		// сервер уже знает об отклике: это подтверждение, а не ошибка клиента
		c.cache.MarkResponded(id)
		c.renderer.RenderAffordance(id, domain.AffordanceAlreadyResponded)
		c.notifier.Show(domain.UserMessage(err), true)
		_ = c.cache.RefreshFeeds(ctx)
		return fmt.Errorf("ResponseController.Respond for id '%d': %w", id, err)
	}

	c.renderer.RenderAffordance(id, domain.AffordanceRespond)
	c.notifier.Show(domain.UserMessage(err), true)
	return fmt.Errorf("ResponseController.Respond for id '%d': %w", id, err)
}

// ListResponders discloses who responded to an owned listing. An empty result
// is reported as an informational message and nothing is rendered.
func (c *ResponseController) ListResponders(ctx context.Context, id int64) ([]domain.Responder, error) {
	responders, err := c.api.Responders(ctx, id)
	if err != nil {
		c.logger.Warn("Failed to list responders", zap.Int64("listing_id", id), zap.Error(err))
		c.notifier.Show(domain.UserMessage(err), true)
		return nil, fmt.Errorf("ResponseController.ListResponders for id '%d': %w", id, err)
	}
	if len(responders) == 0 {
		c.notifier.Show(msgNoResponsesYet, false)
		return []domain.Responder{}, nil
	}
	c.renderer.RenderResponders(id, responders)
	return responders, nil
}

// Reset forgets settled states. Pending submissions finish but their results are ignored.
func (c *ResponseController) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settled = make(map[int64]domain.SubmissionState)
	c.epoch++
}
