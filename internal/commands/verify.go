package commands

import (
	"errors"

	"github.com/yourusername/ircbot/internal/database"
	"github.com/yourusername/ircbot/internal/user"
)

// VerifyCommand implements the !verify command. It only works in private
// messages; channel attempts are logged and ignored.
type VerifyCommand struct {
	users *user.Manager
	db    *database.DB
}

// NewVerifyCommand creates a new verify command
func NewVerifyCommand(users *user.Manager, db *database.DB) *VerifyCommand {
	return &VerifyCommand{users: users, db: db}
}

func (c *VerifyCommand) Name() string    { return "verify" }
func (c *VerifyCommand) OwnerOnly() bool { return false }
func (c *VerifyCommand) Help() string {
	return "!verify <password> - Authenticate as an owner for this session (PM only)"
}

// Execute runs the verify command
func (c *VerifyCommand) Execute(ctx *Context) (*Response, error) {
	if !ctx.IsPM {
		audit(c.db, ctx, database.AuditVerify, ctx.Nick, "attempted in channel", "ignored")
		return nil, nil
	}
	if len(ctx.Args) != 1 {
		return NewErrorResponse("Usage: !verify <password>"), nil
	}

	ok, err := c.users.Verify(ctx.Nick, ctx.Args[0])
	if errors.Is(err, user.ErrNoPassword) {
		return NewErrorResponse("No password is set for your nick."), nil
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		audit(c.db, ctx, database.AuditVerify, ctx.Nick, "", "failure")
		return NewErrorResponse("Verification failed."), nil
	}

	audit(c.db, ctx, database.AuditVerify, ctx.Nick, "", "success")
	return NewResponse("Verified. Owner commands are unlocked for this session."), nil
}
