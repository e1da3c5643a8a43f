package console

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/Abdurahmanit/GroupProject/board-client/internal/adapter/notify"
	"github.com/Abdurahmanit/GroupProject/board-client/internal/domain"
)

const (
	timeLayout = "2006-01-02 15:04"
	titleWidth = 40
)

// AffordanceFunc resolves the respond control shown next to a listing.
type AffordanceFunc func(l domain.Listing) domain.Affordance

// Renderer prints projections and panels as plain text tables.
type Renderer struct {
	mu         sync.Mutex
	out        io.Writer
	affordance AffordanceFunc
	identity   *domain.User
	muted      bool
}

func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// SetAffordanceFunc installs the resolver used for the ACTION column.
func (r *Renderer) SetAffordanceFunc(fn AffordanceFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.affordance = fn
}

// SetMuted suppresses projection and identity output, e.g. while a one-shot
// command restores the session.
func (r *Renderer) SetMuted(muted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.muted = muted
}

func (r *Renderer) RenderListings(p domain.Projection, listings []domain.Listing) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.muted {
		return
	}

	fmt.Fprintf(r.out, "== %s (%d) ==\n", projectionTitle(p), len(listings))
	if len(listings) == 0 {
		fmt.Fprintln(r.out, emptyText(p))
		return
	}

	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tOWNER\tCREATED\tSTATUS")
	for _, l := range listings {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%s\t%s\t%s\n",
			l.ID, Title(l.Title, titleWidth), l.Price, l.OwnerName, createdText(l.CreatedTime()), r.status(l))
	}
	tw.Flush()
}

func (r *Renderer) status(l domain.Listing) string {
	if l.Mine {
		return fmt.Sprintf("responses: %d", l.Responses())
	}
	a := domain.AffordanceLogin
	if r.affordance != nil {
		a = r.affordance(l)
	} else if r.identity != nil {
		a = domain.AffordanceRespond
		if l.Responded() {
			a = domain.AffordanceAlreadyResponded
		}
	}
	return AffordanceLabel(a)
}

func (r *Renderer) RenderResponders(listingID int64, responders []domain.Responder) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.out, "== responders for #%d ==\n", listingID)
	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tEMAIL")
	for _, resp := range responders {
		fmt.Fprintf(tw, "%s\t%s\n", resp.Name, resp.Email)
	}
	tw.Flush()
}

func (r *Renderer) RenderAffordance(listingID int64, a domain.Affordance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "#%d: %s\n", listingID, AffordanceLabel(a))
}

func (r *Renderer) SetIdentity(user *domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.identity = user
	if r.muted {
		return
	}
	if user == nil {
		fmt.Fprintln(r.out, "Not logged in")
		return
	}
	fmt.Fprintf(r.out, "Logged in as %s <%s>\n", user.Name, user.Email)
}

// Identity returns the identity last announced by the core.
func (r *Renderer) Identity() *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.identity
}

func (r *Renderer) ResetListingForm() {}

func (r *Renderer) PromptLogin() {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, "Use `login <email> <password>` to sign in")
}

func (r *Renderer) ShowLoginForm() {
	r.PromptLogin()
}

// Notice prints a banner message; nil means the banner was hidden.
func (r *Renderer) Notice(msg *notify.Message) {
	if msg == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	prefix := "*"
	if msg.IsError {
		prefix = "!"
	}
	fmt.Fprintf(r.out, "%s %s\n", prefix, msg.Text)
}

// AffordanceLabel is the text of the respond control.
func AffordanceLabel(a domain.Affordance) string {
	switch a {
	case domain.AffordanceLogin:
		return "log in to respond"
	case domain.AffordanceRespond:
		return "respond"
	case domain.AffordanceInProgress:
		return "sending..."
	case domain.AffordanceResponded:
		return "responded"
	case domain.AffordanceAlreadyResponded:
		return "already responded"
	default:
		return "-"
	}
}

func projectionTitle(p domain.Projection) string {
	switch p {
	case domain.ProjectionMine:
		return "My advertisements"
	case domain.ProjectionMyResponses:
		return "My responses"
	default:
		return "Advertisements"
	}
}

func emptyText(p domain.Projection) string {
	switch p {
	case domain.ProjectionMine:
		return "You have no advertisements yet"
	case domain.ProjectionMyResponses:
		return "You have not responded to anything yet"
	default:
		return "No advertisements yet"
	}
}

func createdText(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

// Title trims a listing title to width runes for compact output.
func Title(s string, width int) string {
	runes := []rune(strings.TrimSpace(s))
	if width <= 0 || len(runes) <= width {
		return string(runes)
	}
	return string(runes[:width-1]) + "…"
}
