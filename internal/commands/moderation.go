package commands

import (
	"fmt"
	"strings"

	"github.com/yourusername/ircbot/internal/database"
)

// KickCommand implements the !kick command
type KickCommand struct {
	client IRCClient
	db     *database.DB
}

// NewKickCommand creates a new kick command
func NewKickCommand(client IRCClient, db *database.DB) *KickCommand {
	return &KickCommand{client: client, db: db}
}

func (c *KickCommand) Name() string    { return "kick" }
func (c *KickCommand) OwnerOnly() bool { return true }
func (c *KickCommand) Help() string    { return "!kick <nick> [reason] - Kick a user from the current channel" }

// Execute runs the kick command
// The server rejects the KICK if the bot lacks operator status.
func (c *KickCommand) Execute(ctx *Context) (*Response, error) {
	if ctx.IsPM {
		return NewErrorResponse("This command can only be used in a channel."), nil
	}
	if len(ctx.Args) < 1 {
		return NewErrorResponse("Usage: !kick <nick> [reason]"), nil
	}

	nick := ctx.Args[0]
	reason := "Kicked by " + ctx.Nick
	if len(ctx.Args) > 1 {
		reason = strings.Join(ctx.Args[1:], " ")
	}

	if err := c.client.SendRaw(fmt.Sprintf("KICK %s %s :%s", ctx.Channel, nick, reason)); err != nil {
		audit(c.db, ctx, database.AuditKick, nick, ctx.Channel, "failure")
		return nil, err
	}

	audit(c.db, ctx, database.AuditKick, nick, ctx.Channel+": "+reason, "success")
	return nil, nil
}

// ModeCommand implements the user mode commands (!op, !deop, !voice, !devoice)
type ModeCommand struct {
	client IRCClient
	db     *database.DB
	name   string
	mode   string
}

// NewModeCommand creates a mode command that applies mode (e.g. "+o") to nicks
func NewModeCommand(client IRCClient, db *database.DB, name, mode string) *ModeCommand {
	return &ModeCommand{client: client, db: db, name: name, mode: mode}
}

// ModeCommands returns the op/deop/voice/devoice set
func ModeCommands(client IRCClient, db *database.DB) []*ModeCommand {
	return []*ModeCommand{
		NewModeCommand(client, db, "op", "+o"),
		NewModeCommand(client, db, "deop", "-o"),
		NewModeCommand(client, db, "voice", "+v"),
		NewModeCommand(client, db, "devoice", "-v"),
	}
}

func (c *ModeCommand) Name() string    { return c.name }
func (c *ModeCommand) OwnerOnly() bool { return true }
func (c *ModeCommand) Help() string {
	return fmt.Sprintf("!%s [nick...] - Set %s on nicks in the current channel (defaults to you)", c.name, c.mode)
}

// Execute runs the mode command
func (c *ModeCommand) Execute(ctx *Context) (*Response, error) {
	if ctx.IsPM {
		return NewErrorResponse("This command can only be used in a channel."), nil
	}

	nicks := ctx.Args
	if len(nicks) == 0 {
		nicks = []string{ctx.Nick}
	}

	// One mode letter per target, e.g. "+oo a b"
	flags := c.mode[:1] + strings.Repeat(c.mode[1:], len(nicks))
	line := fmt.Sprintf("MODE %s %s %s", ctx.Channel, flags, strings.Join(nicks, " "))
	if err := c.client.SendRaw(line); err != nil {
		audit(c.db, ctx, database.AuditMode, strings.Join(nicks, ","), ctx.Channel+" "+c.mode, "failure")
		return nil, err
	}

	audit(c.db, ctx, database.AuditMode, strings.Join(nicks, ","), ctx.Channel+" "+c.mode, "success")
	return nil, nil
}
