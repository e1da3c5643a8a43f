package domain

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// User is the authenticated identity as reported by the API.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Listing is a published classified ad. It is never patched in place: every
// fetch replaces it wholesale.
type Listing struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	OwnerName   string  `json:"ownerName"`
	CreatedAt   int64   `json:"createdAt"` // epoch seconds

	// Derived per fetch against the current identity.
	Mine           bool  `json:"mine"`
	ResponsesCount *int  `json:"responsesCount,omitempty"` // only when Mine
	HasResponded   *bool `json:"hasResponded,omitempty"`   // only when !Mine and authenticated
}

// Normalize drops derived fields the current viewer is not entitled to see.
func (l *Listing) Normalize(authenticated bool) {
	if l.Mine {
		l.HasResponded = nil
		if l.ResponsesCount == nil {
			zero := 0
			l.ResponsesCount = &zero
		}
		return
	}
	l.ResponsesCount = nil
	if !authenticated {
		l.HasResponded = nil
		return
	}
	if l.HasResponded == nil {
		no := false
		l.HasResponded = &no
	}
}

// Responded reports the hasResponded flag, false when absent.
func (l Listing) Responded() bool {
	return l.HasResponded != nil && *l.HasResponded
}

// Responses reports the response count, zero when absent.
func (l Listing) Responses() int {
	if l.ResponsesCount == nil {
		return 0
	}
	return *l.ResponsesCount
}

func (l Listing) CreatedTime() time.Time {
	if l.CreatedAt == 0 {
		return time.Time{}
	}
	return time.Unix(l.CreatedAt, 0)
}

// Responder is a user who responded to an owned listing.
type Responder struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Credentials struct {
	Email    string
	Password string
}

func (c Credentials) Values() url.Values {
	return url.Values{"email": {c.Email}, "password": {c.Password}}
}

type Registration struct {
	Name     string
	Email    string
	Password string
}

func (r Registration) Values() url.Values {
	return url.Values{"name": {r.Name}, "email": {r.Email}, "password": {r.Password}}
}

// ListingDraft is the content of the authoring form. Price stays textual, the
// server parses it.
type ListingDraft struct {
	Title       string
	Description string
	Price       string
}

func (d ListingDraft) Values() url.Values {
	return url.Values{"title": {d.Title}, "description": {d.Description}, "price": {d.Price}}
}

// Validate mirrors the server rules so obviously broken forms never leave the client.
func (d ListingDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" || strings.TrimSpace(d.Description) == "" {
		return fmt.Errorf("%w: title and description are required", ErrInvalidInput)
	}
	if p := strings.TrimSpace(d.Price); p != "" {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return fmt.Errorf("%w: invalid price %q", ErrInvalidInput, d.Price)
		}
		if v < 0 {
			return fmt.Errorf("%w: price must be non-negative", ErrInvalidInput)
		}
	}
	return nil
}
