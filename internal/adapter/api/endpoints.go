package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Abdurahmanit/GroupProject/board-client/internal/domain"
)

// SessionStatus is the payload of GET /api/session.
type SessionStatus struct {
	Authenticated bool         `json:"authenticated"`
	User          *domain.User `json:"user,omitempty"`
}

// LoginResult is the payload of POST /api/login.
type LoginResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type adsPayload struct {
	Ads []domain.Listing `json:"ads"`
}

type respondersPayload struct {
	Responders []domain.Responder `json:"responders"`
}

func (c *Client) Session(ctx context.Context) (*SessionStatus, error) {
	var out SessionStatus
	if err := c.Do(ctx, Request{Op: "session", Method: http.MethodGet, Path: "/api/session"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, reg domain.Registration) error {
	return c.Do(ctx, Request{Op: "register", Method: http.MethodPost, Path: "/api/register", Form: reg.Values()}, nil)
}

func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*LoginResult, error) {
	var out LoginResult
	if err := c.Do(ctx, Request{Op: "login", Method: http.MethodPost, Path: "/api/login", Form: creds.Values()}, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, domain.NewHTTPFailure(http.StatusOK, "login response carried no token")
	}
	return &out, nil
}

// Logout sends an empty form body, as the browser client did.
func (c *Client) Logout(ctx context.Context) error {
	return c.Do(ctx, Request{Op: "logout", Method: http.MethodPost, Path: "/api/logout", Form: url.Values{}}, nil)
}

func (c *Client) ListAds(ctx context.Context) ([]domain.Listing, error) {
	var out adsPayload
	if err := c.Do(ctx, Request{Op: "ads.list", Method: http.MethodGet, Path: "/api/ads"}, &out); err != nil {
		return nil, err
	}
	return out.Ads, nil
}

func (c *Client) MyResponses(ctx context.Context) ([]domain.Listing, error) {
	var out adsPayload
	if err := c.Do(ctx, Request{Op: "ads.my_responses", Method: http.MethodGet, Path: "/api/ads/my-responses"}, &out); err != nil {
		return nil, err
	}
	return out.Ads, nil
}

func (c *Client) CreateAd(ctx context.Context, draft domain.ListingDraft) error {
	return c.Do(ctx, Request{Op: "ads.create", Method: http.MethodPost, Path: "/api/ads", Form: draft.Values()}, nil)
}

func (c *Client) DeleteAd(ctx context.Context, id int64) error {
	return c.Do(ctx, Request{Op: "ads.delete", Method: http.MethodDelete, Path: fmt.Sprintf("/api/ads/%d", id)}, nil)
}

func (c *Client) Respond(ctx context.Context, id int64) error {
	return c.Do(ctx, Request{Op: "ads.respond", Method: http.MethodPost, Path: fmt.Sprintf("/api/ads/%d/respond", id), Form: url.Values{}}, nil)
}

func (c *Client) Responders(ctx context.Context, id int64) ([]domain.Responder, error) {
	var out respondersPayload
	if err := c.Do(ctx, Request{Op: "ads.responders", Method: http.MethodGet, Path: fmt.Sprintf("/api/ads/%d/responders", id)}, &out); err != nil {
		return nil, err
	}
	return out.Responders, nil
}
