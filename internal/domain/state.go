package domain

// Projection names a derived view of the listing cache.
type Projection int

const (
	ProjectionPublic Projection = iota
	ProjectionMine
	ProjectionMyResponses
)

// Projections lists every projection in a stable order.
var Projections = []Projection{ProjectionPublic, ProjectionMine, ProjectionMyResponses}

func (p Projection) String() string {
	switch p {
	case ProjectionPublic:
		return "public"
	case ProjectionMine:
		return "mine"
	case ProjectionMyResponses:
		return "my_responses"
	default:
		return "unknown"
	}
}

// SubmissionState is the per-listing response workflow state.
type SubmissionState int

const (
	SubmissionIdle SubmissionState = iota
	SubmissionPending
	SubmissionSucceeded
	SubmissionFailed
)

func (s SubmissionState) String() string {
	switch s {
	case SubmissionPending:
		return "pending"
	case SubmissionSucceeded:
		return "settled-success"
	case SubmissionFailed:
		return "settled-failure"
	default:
		return "idle"
	}
}

// Affordance is what the presentation layer should offer for a listing.
type Affordance int

const (
	AffordanceNone Affordance = iota // own listing: no respond control at all
	AffordanceLogin
	AffordanceRespond
	AffordanceInProgress
	AffordanceResponded
	AffordanceAlreadyResponded
)

func (a Affordance) String() string {
	switch a {
	case AffordanceLogin:
		return "login-to-respond"
	case AffordanceRespond:
		return "respond"
	case AffordanceInProgress:
		return "in-progress"
	case AffordanceResponded:
		return "responded"
	case AffordanceAlreadyResponded:
		return "already-responded"
	default:
		return "none"
	}
}

// Enabled reports whether the control accepts user input.
func (a Affordance) Enabled() bool {
	return a == AffordanceLogin || a == AffordanceRespond
}
