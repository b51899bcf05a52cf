package commands

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/yourusername/ircbot/internal/errors"
)

// Registry holds the commands by lowercased name. Names may be two words
// ("owner add").
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds cmd; a name can be registered once
func (r *Registry) Register(cmd Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := strings.ToLower(cmd.Name())
	if _, exists := r.commands[name]; exists {
		return fmt.Errorf("command %s already registered", name)
	}
	r.commands[name] = cmd
	return nil
}

// Get retrieves a command by name
func (r *Registry) Get(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, exists := r.commands[strings.ToLower(name)]
	return cmd, exists
}

// Lookup resolves the command named by the leading words, preferring a
// two-word name. It returns the lowercased name and the remaining words.
func (r *Registry) Lookup(words []string) (name string, rest []string, found bool) {
	if len(words) == 0 {
		return "", nil, false
	}
	if len(words) >= 2 {
		two := strings.ToLower(words[0] + " " + words[1])
		if _, ok := r.Get(two); ok {
			return two, words[2:], true
		}
	}
	one := strings.ToLower(words[0])
	_, ok := r.Get(one)
	return one, words[1:], ok
}

// List returns all registered command names, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Available returns the sorted names of public commands and, for an
// authorized sender, owner-only commands
func (r *Registry) Available(authorized bool) (public, owner []string) {
	for _, name := range r.List() {
		cmd, _ := r.Get(name)
		switch {
		case !cmd.OwnerOnly():
			public = append(public, name)
		case authorized:
			owner = append(owner, name)
		}
	}
	return public, owner
}

// Execute runs the command named in ctx after the owner check
func (r *Registry) Execute(ctx *Context) (*Response, error) {
	cmd, exists := r.Get(ctx.Command)
	if !exists {
		return nil, errors.NewNotFoundError("Command", ctx.Command)
	}
	if cmd.OwnerOnly() && !ctx.Authorized {
		return nil, errors.NewPermissionError(ctx.Command)
	}
	return cmd.Execute(ctx)
}
