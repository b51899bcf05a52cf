package commands

import "github.com/yourusername/ircbot/internal/database"

// Command represents a bot command that can be executed
type Command interface {
	// Name returns the command name (without prefix)
	Name() string

	// Execute runs the command with the given context
	Execute(ctx *Context) (*Response, error)

	// OwnerOnly reports whether only an authorized owner may run the command
	OwnerOnly() bool

	// Help returns help text for this command
	Help() string
}

// Context contains all information needed to execute a command
type Context struct {
	// Command name (without prefix)
	Command string

	// Arguments passed to the command
	Args []string

	// Raw message text
	RawMessage string

	// Sender information
	Nick     string
	Hostmask string

	// Channel information (empty for PMs)
	Channel string
	IsPM    bool

	// Whether the sender may run owner commands
	Authorized bool
}

// Response represents a command response
type Response struct {
	// Message to send back to the user
	Message string

	// Whether to send as a private message (overrides channel)
	SendAsPM bool

	// Target channel or user (if empty, uses the source)
	Target string

	// Whether this is an error response
	IsError bool
}

// NewContext creates a new command context
func NewContext(command string, args []string, rawMessage, nick, hostmask, channel string, isPM, authorized bool) *Context {
	return &Context{
		Command:    command,
		Args:       args,
		RawMessage: rawMessage,
		Nick:       nick,
		Hostmask:   hostmask,
		Channel:    channel,
		IsPM:       isPM,
		Authorized: authorized,
	}
}

// NewResponse creates a new command response
func NewResponse(message string) *Response {
	return &Response{Message: message}
}

// NewErrorResponse creates a new error response
func NewErrorResponse(message string) *Response {
	return &Response{Message: message, IsError: true}
}

// NewPMResponse creates a new response that will be sent as a PM
func NewPMResponse(message string) *Response {
	return &Response{Message: message, SendAsPM: true}
}

// ReplyTarget returns where a response to nick should go. An empty channel
// means the command arrived as a private message.
func (r *Response) ReplyTarget(nick, channel string) string {
	if r.Target != "" {
		return r.Target
	}
	if r.SendAsPM || channel == "" {
		return nick
	}
	return channel
}

// IRCClient is the part of the IRC client that commands drive
type IRCClient interface {
	JoinChannel(channels string) error
	LeaveChannel(channels string) error
	ChangeNick(nick string) error
	Send(destination, text string) error
	SendAction(destination, text string) error
	SendRaw(line string) error
	SetQuitMessage(text string)
	Shutdown()
	Nick() string
}

func audit(db *database.DB, ctx *Context, action, target, details, result string) {
	if db == nil {
		return
	}
	_ = db.LogAuditAction(ctx.Nick, ctx.Hostmask, action, target, details, result)
}
