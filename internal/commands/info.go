package commands

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/yourusername/ircbot/internal/database"
)

// HelpCommand implements the !help command
type HelpCommand struct {
	registry *Registry
}

// NewHelpCommand creates a new help command
func NewHelpCommand(registry *Registry) *HelpCommand {
	return &HelpCommand{registry: registry}
}

func (c *HelpCommand) Name() string    { return "help" }
func (c *HelpCommand) OwnerOnly() bool { return false }
func (c *HelpCommand) Help() string    { return "!help [command] - List commands or show help for one" }

// Execute runs the help command
func (c *HelpCommand) Execute(ctx *Context) (*Response, error) {
	if len(ctx.Args) == 0 {
		return c.listCommands(ctx), nil
	}

	name, _, found := c.registry.Lookup(ctx.Args)
	if !found {
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", ctx.Args[0])), nil
	}
	cmd, _ := c.registry.Get(name)
	return NewResponse(describe(cmd)), nil
}

func describe(cmd Command) string {
	if cmd.OwnerOnly() {
		return cmd.Help() + " (owner only)"
	}
	return cmd.Help()
}

// listCommands lists the commands the sender may run
func (c *HelpCommand) listCommands(ctx *Context) *Response {
	public, owner := c.registry.Available(ctx.Authorized)

	message := "Available commands: " + strings.Join(public, ", ")
	if len(owner) > 0 {
		message += " | Owner: " + strings.Join(owner, ", ")
	}
	return NewResponse(message)
}

// SeenCommand implements the !seen command
type SeenCommand struct {
	db  *database.DB
	now func() time.Time
}

// NewSeenCommand creates a new seen command
func NewSeenCommand(db *database.DB) *SeenCommand {
	return &SeenCommand{db: db, now: time.Now}
}

func (c *SeenCommand) Name() string    { return "seen" }
func (c *SeenCommand) OwnerOnly() bool { return false }
func (c *SeenCommand) Help() string    { return "!seen <nick> - Show when a nick last spoke" }

// Execute runs the seen command
func (c *SeenCommand) Execute(ctx *Context) (*Response, error) {
	if len(ctx.Args) != 1 {
		return NewErrorResponse("Usage: !seen <nick>"), nil
	}

	nick := ctx.Args[0]
	msg, err := c.db.GetLastSeen(nick)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return NewResponse(fmt.Sprintf("I have not seen %s.", nick)), nil
	}

	where := msg.Channel
	if where == "" {
		where = "a private message"
	}
	when := humanize.RelTime(msg.Timestamp, c.now(), "ago", "from now")
	return NewResponse(fmt.Sprintf("%s was last seen in %s %s: %s", msg.Nick, where, when, msg.Content)), nil
}

// NamesCommand implements the !names command
type NamesCommand struct {
	db *database.DB
}

// NewNamesCommand creates a new names command
func NewNamesCommand(db *database.DB) *NamesCommand {
	return &NamesCommand{db: db}
}

func (c *NamesCommand) Name() string    { return "names" }
func (c *NamesCommand) OwnerOnly() bool { return false }
func (c *NamesCommand) Help() string    { return "!names [#channel] - Show the users tracked in a channel" }

// Execute runs the names command
func (c *NamesCommand) Execute(ctx *Context) (*Response, error) {
	channel := ctx.Channel
	if len(ctx.Args) > 0 {
		channel = ctx.Args[0]
	}
	if channel == "" {
		return NewErrorResponse("Usage: !names <#channel>"), nil
	}

	users, err := c.db.GetChannelUsers(channel)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return NewResponse(fmt.Sprintf("No users tracked in %s.", channel)), nil
	}

	nicks := make([]string, len(users))
	for i, u := range users {
		nicks[i] = u.Prefix() + u.Nick
	}
	sort.Strings(nicks)
	return NewResponse(fmt.Sprintf("%s (%s): %s", channel, humanize.Comma(int64(len(nicks))), strings.Join(nicks, " "))), nil
}

// TopicCommand implements the !topic command
type TopicCommand struct {
	db *database.DB
}

// NewTopicCommand creates a new topic command
func NewTopicCommand(db *database.DB) *TopicCommand {
	return &TopicCommand{db: db}
}

func (c *TopicCommand) Name() string    { return "topic" }
func (c *TopicCommand) OwnerOnly() bool { return false }
func (c *TopicCommand) Help() string    { return "!topic [#channel] - Show the last known topic" }

// Execute runs the topic command
func (c *TopicCommand) Execute(ctx *Context) (*Response, error) {
	channel := ctx.Channel
	if len(ctx.Args) > 0 {
		channel = ctx.Args[0]
	}
	if channel == "" {
		return NewErrorResponse("Usage: !topic <#channel>"), nil
	}

	ch, err := c.db.GetBotChannel(channel)
	if err != nil {
		return nil, err
	}
	if ch == nil || ch.Topic == "" {
		return NewResponse(fmt.Sprintf("No topic known for %s.", channel)), nil
	}
	return NewResponse(fmt.Sprintf("Topic for %s: %s", channel, ch.Topic)), nil
}
