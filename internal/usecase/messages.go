package usecase

// User-facing notification texts.
const (
	msgLoginRequired    = "You need to log in"
	msgLoginToRespond   = "Log in to respond to advertisements"
	msgRegistered       = "Registration complete! Now log in."
	msgWelcomeFormat    = "Welcome, %s!"
	msgDefaultUserName  = "user"
	msgListingPublished = "Advertisement published"
	msgListingDeleted   = "Advertisement deleted"
	msgDeletePrompt     = "Delete advertisement?"
	msgResponseSent     = "Response sent"
	msgAlreadyResponded = "You have already responded to this advertisement"
	msgNoResponsesYet   = "No responses yet"
)
