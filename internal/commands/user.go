package commands

import (
	"fmt"
	"strings"

	"github.com/yourusername/ircbot/internal/database"
	"github.com/yourusername/ircbot/internal/user"
)

// OwnerAddCommand implements the !owner add command
type OwnerAddCommand struct {
	users *user.Manager
	db    *database.DB
}

// NewOwnerAddCommand creates a new owner add command
func NewOwnerAddCommand(users *user.Manager, db *database.DB) *OwnerAddCommand {
	return &OwnerAddCommand{users: users, db: db}
}

func (c *OwnerAddCommand) Name() string    { return "owner add" }
func (c *OwnerAddCommand) OwnerOnly() bool { return true }
func (c *OwnerAddCommand) Help() string    { return "!owner add <nick> - Grant owner rights to a nick" }

// Execute runs the owner add command
func (c *OwnerAddCommand) Execute(ctx *Context) (*Response, error) {
	if len(ctx.Args) != 1 {
		return NewErrorResponse("Usage: !owner add <nick>"), nil
	}

	nick := ctx.Args[0]
	added, err := c.users.AddOwner(nick)
	if err != nil {
		audit(c.db, ctx, database.AuditOwnerAdd, nick, err.Error(), "failure")
		return nil, err
	}
	if !added {
		return NewErrorResponse(fmt.Sprintf("%s is already an owner.", nick)), nil
	}

	audit(c.db, ctx, database.AuditOwnerAdd, nick, "", "success")
	return NewResponse(fmt.Sprintf("%s is now an owner.", nick)), nil
}

// OwnerRemoveCommand implements the !owner remove command
type OwnerRemoveCommand struct {
	users *user.Manager
	db    *database.DB
}

// NewOwnerRemoveCommand creates a new owner remove command
func NewOwnerRemoveCommand(users *user.Manager, db *database.DB) *OwnerRemoveCommand {
	return &OwnerRemoveCommand{users: users, db: db}
}

func (c *OwnerRemoveCommand) Name() string    { return "owner remove" }
func (c *OwnerRemoveCommand) OwnerOnly() bool { return true }
func (c *OwnerRemoveCommand) Help() string    { return "!owner remove <nick> - Revoke owner rights" }

// Execute runs the owner remove command
func (c *OwnerRemoveCommand) Execute(ctx *Context) (*Response, error) {
	if len(ctx.Args) != 1 {
		return NewErrorResponse("Usage: !owner remove <nick>"), nil
	}

	nick := ctx.Args[0]
	if strings.EqualFold(nick, ctx.Nick) {
		return NewErrorResponse("You cannot remove yourself."), nil
	}

	removed, err := c.users.RemoveOwner(nick)
	if err != nil {
		audit(c.db, ctx, database.AuditOwnerRemove, nick, err.Error(), "failure")
		return nil, err
	}
	if !removed {
		return NewErrorResponse(fmt.Sprintf("%s is not an owner.", nick)), nil
	}

	audit(c.db, ctx, database.AuditOwnerRemove, nick, "", "success")
	return NewResponse(fmt.Sprintf("%s is no longer an owner.", nick)), nil
}

// OwnerListCommand implements the !owner list command
type OwnerListCommand struct {
	users *user.Manager
}

// NewOwnerListCommand creates a new owner list command
func NewOwnerListCommand(users *user.Manager) *OwnerListCommand {
	return &OwnerListCommand{users: users}
}

func (c *OwnerListCommand) Name() string    { return "owner list" }
func (c *OwnerListCommand) OwnerOnly() bool { return true }
func (c *OwnerListCommand) Help() string    { return "!owner list - List the bot owners" }

// Execute runs the owner list command
func (c *OwnerListCommand) Execute(ctx *Context) (*Response, error) {
	owners, err := c.users.ListOwners()
	if err != nil {
		return nil, err
	}
	if len(owners) == 0 {
		return NewResponse("No owners configured."), nil
	}
	return NewResponse("Owners: " + strings.Join(owners, ", ")), nil
}

// PasswordCommand implements the !passwd command
type PasswordCommand struct {
	users *user.Manager
	db    *database.DB
}

// NewPasswordCommand creates a new passwd command
func NewPasswordCommand(users *user.Manager, db *database.DB) *PasswordCommand {
	return &PasswordCommand{users: users, db: db}
}

func (c *PasswordCommand) Name() string    { return "passwd" }
func (c *PasswordCommand) OwnerOnly() bool { return true }
func (c *PasswordCommand) Help() string {
	return "!passwd <password> - Set your owner password (PM only)"
}

// Execute runs the passwd command
func (c *PasswordCommand) Execute(ctx *Context) (*Response, error) {
	if !ctx.IsPM {
		audit(c.db, ctx, database.AuditPassword, ctx.Nick, "attempted in channel", "failure")
		return NewPMResponse("Never send your password in a channel. Use a private message."), nil
	}
	if len(ctx.Args) != 1 {
		return NewErrorResponse("Usage: !passwd <password>"), nil
	}

	if err := c.users.SetOwnerPassword(ctx.Nick, ctx.Args[0]); err != nil {
		audit(c.db, ctx, database.AuditPassword, ctx.Nick, "", "failure")
		return nil, err
	}

	audit(c.db, ctx, database.AuditPassword, ctx.Nick, "", "success")
	return NewPMResponse("Password set. Use !verify <password> to authenticate."), nil
}
