package commands

import (
	"fmt"
	"strings"

	"github.com/yourusername/ircbot/internal/errors"
)

// Authorizer decides whether a nick may run owner commands
type Authorizer interface {
	Authorized(nick string) (bool, error)
}

// Dispatcher handles command detection and routing
type Dispatcher struct {
	registry      *Registry
	auth          Authorizer
	commandPrefix string
}

// NewDispatcher creates a new command dispatcher
func NewDispatcher(registry *Registry, auth Authorizer, commandPrefix string) *Dispatcher {
	return &Dispatcher{
		registry:      registry,
		auth:          auth,
		commandPrefix: commandPrefix,
	}
}

// IsCommand checks if a message is a command (starts with the command prefix)
func (d *Dispatcher) IsCommand(message string) bool {
	return d.commandPrefix != "" && strings.HasPrefix(message, d.commandPrefix)
}

// ParseCommand splits a command line into the command name and its
// arguments. Two-word commands ("owner add") win over one-word ones. The
// name is empty if message is not a command line.
func (d *Dispatcher) ParseCommand(message string) (command string, args []string) {
	if !d.IsCommand(message) {
		return "", nil
	}

	words := strings.Fields(strings.TrimPrefix(message, d.commandPrefix))
	if len(words) == 0 {
		return "", nil
	}
	command, rest, _ := d.registry.Lookup(words)
	return command, append([]string{}, rest...)
}

// Dispatch runs the command in message for nick. handled is false for
// anything that is not a registered command; such lines get no reply.
func (d *Dispatcher) Dispatch(nick, hostmask, channel, message string, isPM bool) (*Response, bool, error) {
	command, args := d.ParseCommand(message)
	if command == "" {
		return nil, false, nil
	}

	// other bots may share the prefix
	cmd, exists := d.registry.Get(command)
	if !exists {
		return nil, false, nil
	}

	authorized, err := d.auth.Authorized(nick)
	if err != nil {
		return nil, true, fmt.Errorf("failed to check owner status: %w", err)
	}
	if cmd.OwnerOnly() && !authorized {
		return nil, true, errors.NewPermissionError(command)
	}

	ctx := NewContext(command, args, message, nick, hostmask, channel, isPM, authorized)
	response, err := d.registry.Execute(ctx)
	if err != nil {
		return nil, true, err
	}
	return response, true, nil
}
