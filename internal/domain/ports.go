package domain

import "context"

// CredentialStore persists the bearer token across restarts. Load returns ""
// when nothing is stored.
type CredentialStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Notifier is the transient message surface. A new message supersedes the
// current one; nothing is queued or acknowledged.
type Notifier interface {
	Show(text string, isError bool)
}

// Renderer is the presentation collaborator driven by the core.
type Renderer interface {
	RenderListings(p Projection, listings []Listing)
	RenderResponders(listingID int64, responders []Responder)
	RenderAffordance(listingID int64, a Affordance)
	// SetIdentity toggles forms that require authentication; nil means logged out.
	SetIdentity(user *User)
	ResetListingForm()
	PromptLogin()
	ShowLoginForm()
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// EventPublisher announces client activity to interested processes.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}
