package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Abdurahmanit/GroupProject/board-client/internal/domain"
	"go.uber.org/zap"
)

// ErrUsage is returned for malformed commands.
var ErrUsage = errors.New("invalid command usage")

// ErrQuit ends the interactive shell.
var ErrQuit = errors.New("quit")

const usage = `Commands:
  ads                                 show all advertisements
  mine                                show my advertisements
  responses                           show advertisements I responded to
  whoami                              show the current identity
  register <name> <email> <password>  create an account
  login <email> <password>            sign in
  logout                              sign out
  publish <title> <description> [price]
  delete <id>                         delete my advertisement
  respond <id>                        respond to an advertisement
  responders <id>                     list who responded to my advertisement
  help, quit
`

// Exec runs one command. Failures of remote operations have already been
// shown to the user when the error comes back.
func (a *App) Exec(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return nil
	}
	cmd, rest := strings.ToLower(args[0]), args[1:]
	a.log.Debug("Executing command", zap.String("command", cmd), zap.Int("args", len(rest)))

	board := a.board
	switch cmd {
	case "help", "?":
		fmt.Fprint(out, usage)
		return nil
	case "quit", "exit":
		return ErrQuit
	case "ads":
		return board.Listings().RefreshPublicFeed(ctx)
	case "mine":
		return board.Listings().RefreshMine(ctx)
	case "responses":
		if board.Session().Credential() == "" {
			a.banner.Show("You need to log in", true)
			return domain.ErrUnauthenticated
		}
		return board.Listings().RefreshMyResponses(ctx)
	case "whoami":
		if u := board.Session().Identity(); u != nil {
			fmt.Fprintf(out, "%s <%s> (id %d)\n", u.Name, u.Email, u.ID)
		} else {
			fmt.Fprintln(out, "Not logged in")
		}
		return nil
	case "register":
		if len(rest) != 3 {
			return usageError("register <name> <email> <password>")
		}
		return board.Session().Register(ctx, domain.Registration{Name: rest[0], Email: rest[1], Password: rest[2]})
	case "login":
		if len(rest) != 2 {
			return usageError("login <email> <password>")
		}
		return board.Session().Login(ctx, domain.Credentials{Email: rest[0], Password: rest[1]})
	case "logout":
		board.Session().Logout(ctx)
		return nil
	case "publish":
		if len(rest) < 2 || len(rest) > 3 {
			return usageError("publish <title> <description> [price]")
		}
		draft := domain.ListingDraft{Title: rest[0], Description: rest[1]}
		if len(rest) == 3 {
			draft.Price = rest[2]
		}
		return board.Listings().PublishListing(ctx, draft)
	case "delete", "respond", "responders":
		if len(rest) != 1 {
			return usageError(cmd + " <id>")
		}
		id, err := strconv.ParseInt(rest[0], 10, 64)
		if err != nil || id <= 0 {
			return usageError(cmd + " <id>")
		}
		switch cmd {
		case "delete":
			return board.Listings().DeleteListing(ctx, id)
		case "respond":
			_, err := board.Responses().Respond(ctx, id)
			return err
		default:
			_, err := board.Responses().ListResponders(ctx, id)
			return err
		}
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}

// Shell reads commands line by line until EOF or quit.
func (a *App) Shell(ctx context.Context, out io.Writer) error {
	fmt.Fprint(out, "Type `help` for commands.\n> ")
	for {
		line, err := a.confirmer.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read command: %w", err)
		}
		args, err := SplitArgs(line)
		if err != nil {
			fmt.Fprintln(out, err)
		} else if err := a.Exec(ctx, args, out); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			if errors.Is(err, ErrUsage) {
				fmt.Fprintln(out, err)
			}
			a.log.Debug("Command finished with error", zap.Error(err))
		}
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(out, "> ")
	}
}

func usageError(form string) error {
	return fmt.Errorf("%w: %s", ErrUsage, form)
}

// SplitArgs splits a shell line on spaces, keeping double-quoted segments together.
func SplitArgs(line string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		quoted  bool
		started bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			started = true
		case (r == ' ' || r == '\t') && !quoted:
			if started {
				args = append(args, current.String())
				current.Reset()
				started = false
			}
		default:
			current.WriteRune(r)
			started = true
		}
	}
	if quoted {
		return nil, fmt.Errorf("%w: unterminated quote", ErrUsage)
	}
	if started {
		args = append(args, current.String())
	}
	return args, nil
}
