package commands

import (
	"fmt"
	"strings"

	"github.com/yourusername/ircbot/internal/database"
)

// JoinCommand implements the !join command
type JoinCommand struct {
	client IRCClient
	db     *database.DB
}

// NewJoinCommand creates a new join command
func NewJoinCommand(client IRCClient, db *database.DB) *JoinCommand {
	return &JoinCommand{client: client, db: db}
}

func (c *JoinCommand) Name() string    { return "join" }
func (c *JoinCommand) OwnerOnly() bool { return true }
func (c *JoinCommand) Help() string {
	return "!join <#channel[,#channel...]> - Join one or more channels"
}

// Execute runs the join command
func (c *JoinCommand) Execute(ctx *Context) (*Response, error) {
	if len(ctx.Args) < 1 {
		return NewErrorResponse("Usage: !join <#channel[,#channel...]>"), nil
	}

	channels := strings.Join(ctx.Args, ",")
	if err := c.client.JoinChannel(channels); err != nil {
		audit(c.db, ctx, database.AuditJoin, channels, "", "failure")
		return nil, err
	}

	audit(c.db, ctx, database.AuditJoin, channels, "", "success")
	return NewResponse(fmt.Sprintf("Joining %s", channels)), nil
}

// PartCommand implements the !part command
type PartCommand struct {
	client IRCClient
	db     *database.DB
}

// NewPartCommand creates a new part command
func NewPartCommand(client IRCClient, db *database.DB) *PartCommand {
	return &PartCommand{client: client, db: db}
}

func (c *PartCommand) Name() string    { return "part" }
func (c *PartCommand) OwnerOnly() bool { return true }
func (c *PartCommand) Help() string {
	return "!part [#channel[,#channel...]] - Leave channels (defaults to the current one)"
}

// Execute runs the part command
func (c *PartCommand) Execute(ctx *Context) (*Response, error) {
	channels := strings.Join(ctx.Args, ",")
	if channels == "" {
		if ctx.IsPM {
			return NewErrorResponse("Usage: !part <#channel[,#channel...]>"), nil
		}
		channels = ctx.Channel
	}

	if err := c.client.LeaveChannel(channels); err != nil {
		audit(c.db, ctx, database.AuditPart, channels, "", "failure")
		return nil, err
	}

	audit(c.db, ctx, database.AuditPart, channels, "", "success")
	// A reply to the channel being left would race the PART
	return NewPMResponse(fmt.Sprintf("Leaving %s", channels)), nil
}

// NickCommand implements the !nick command
type NickCommand struct {
	client IRCClient
	db     *database.DB
}

// NewNickCommand creates a new nick command
func NewNickCommand(client IRCClient, db *database.DB) *NickCommand {
	return &NickCommand{client: client, db: db}
}

func (c *NickCommand) Name() string    { return "nick" }
func (c *NickCommand) OwnerOnly() bool { return true }
func (c *NickCommand) Help() string    { return "!nick <newnick> - Change the bot's nickname" }

// Execute runs the nick command
func (c *NickCommand) Execute(ctx *Context) (*Response, error) {
	if len(ctx.Args) != 1 {
		return NewErrorResponse("Usage: !nick <newnick>"), nil
	}

	newNick := ctx.Args[0]
	if err := c.client.ChangeNick(newNick); err != nil {
		audit(c.db, ctx, database.AuditNick, newNick, "", "failure")
		return nil, err
	}

	audit(c.db, ctx, database.AuditNick, newNick, "from "+c.client.Nick(), "success")
	// The nick changes once the server confirms it
	return NewResponse(fmt.Sprintf("Requested nick change to %s", newNick)), nil
}

// SayCommand implements the !say command
type SayCommand struct {
	client IRCClient
}

// NewSayCommand creates a new say command
func NewSayCommand(client IRCClient) *SayCommand {
	return &SayCommand{client: client}
}

func (c *SayCommand) Name() string    { return "say" }
func (c *SayCommand) OwnerOnly() bool { return true }
func (c *SayCommand) Help() string    { return "!say <target> <message> - Send a message to a channel or user" }

// Execute runs the say command
func (c *SayCommand) Execute(ctx *Context) (*Response, error) {
	if len(ctx.Args) < 2 {
		return NewErrorResponse("Usage: !say <target> <message>"), nil
	}
	if err := c.client.Send(ctx.Args[0], strings.Join(ctx.Args[1:], " ")); err != nil {
		return nil, err
	}
	return nil, nil
}

// ActCommand implements the !act command
type ActCommand struct {
	client IRCClient
}

// NewActCommand creates a new act command
func NewActCommand(client IRCClient) *ActCommand {
	return &ActCommand{client: client}
}

func (c *ActCommand) Name() string    { return "act" }
func (c *ActCommand) OwnerOnly() bool { return true }
func (c *ActCommand) Help() string    { return "!act <target> <action> - Send a CTCP ACTION (/me)" }

// Execute runs the act command
func (c *ActCommand) Execute(ctx *Context) (*Response, error) {
	if len(ctx.Args) < 2 {
		return NewErrorResponse("Usage: !act <target> <action>"), nil
	}
	if err := c.client.SendAction(ctx.Args[0], strings.Join(ctx.Args[1:], " ")); err != nil {
		return nil, err
	}
	return nil, nil
}

// QuitMessageCommand implements the !quitmsg command
type QuitMessageCommand struct {
	client IRCClient
	db     *database.DB
}

// NewQuitMessageCommand creates a new quitmsg command
func NewQuitMessageCommand(client IRCClient, db *database.DB) *QuitMessageCommand {
	return &QuitMessageCommand{client: client, db: db}
}

func (c *QuitMessageCommand) Name() string    { return "quitmsg" }
func (c *QuitMessageCommand) OwnerOnly() bool { return true }
func (c *QuitMessageCommand) Help() string {
	return "!quitmsg <message> - Set the message sent when the bot quits"
}

// Execute runs the quitmsg command
func (c *QuitMessageCommand) Execute(ctx *Context) (*Response, error) {
	if len(ctx.Args) == 0 {
		return NewErrorResponse("Usage: !quitmsg <message>"), nil
	}

	text := strings.Join(ctx.Args, " ")
	if err := c.db.SetSetting(database.SettingQuitMessage, text); err != nil {
		return nil, err
	}
	c.client.SetQuitMessage(text)
	return NewResponse("Quit message updated."), nil
}

// QuitCommand implements the !quit command
type QuitCommand struct {
	client IRCClient
	db     *database.DB
}

// NewQuitCommand creates a new quit command
func NewQuitCommand(client IRCClient, db *database.DB) *QuitCommand {
	return &QuitCommand{client: client, db: db}
}

func (c *QuitCommand) Name() string    { return "quit" }
func (c *QuitCommand) OwnerOnly() bool { return true }
func (c *QuitCommand) Help() string    { return "!quit [message] - Disconnect the bot and exit" }

// Execute runs the quit command
func (c *QuitCommand) Execute(ctx *Context) (*Response, error) {
	if len(ctx.Args) > 0 {
		c.client.SetQuitMessage(strings.Join(ctx.Args, " "))
	}

	audit(c.db, ctx, database.AuditQuit, "", strings.Join(ctx.Args, " "), "success")
	c.client.Shutdown()
	return nil, nil
}
