package bot

import (
	"strings"
	"sync"

	"github.com/yourusername/ircbot/internal/database"
	"github.com/yourusername/ircbot/internal/irc"
	"github.com/yourusername/ircbot/internal/output"
)

// Rejoiner remembers the channels joined at runtime when a session ends and
// joins them again once the next session has registered. Configured
// channels are joined by the client itself and are skipped.
type Rejoiner struct {
	db         *database.DB
	logger     output.Logger
	join       func(channels string) error
	configured map[string]bool

	mu      sync.Mutex
	pending []string
}

// NewRejoiner creates a rejoiner. join sends one JOIN for a comma separated
// channel list.
func NewRejoiner(db *database.DB, logger output.Logger, join func(channels string) error, configured []string) *Rejoiner {
	r := &Rejoiner{
		db:         db,
		logger:     logger,
		join:       join,
		configured: make(map[string]bool, len(configured)),
	}
	for _, ch := range configured {
		r.configured[strings.ToLower(ch)] = true
	}
	return r
}

// Subscribe registers the rejoiner. It must run before the channel tracker
// forgets the joined channels on disconnect.
func (r *Rejoiner) Subscribe(events *irc.Events) {
	events.OnDisconnect(r.Remember)
	events.OnEndOfMotd(r.Rejoin)
}

// Remember stores the channels the bot is in right now
func (r *Rejoiner) Remember() {
	channels, err := r.db.ListJoinedChannels()
	if err != nil {
		r.logger.Warning("Failed to list joined channels: %v", err)
		return
	}

	pending := channels[:0]
	for _, ch := range channels {
		if !r.configured[strings.ToLower(ch)] {
			pending = append(pending, ch)
		}
	}

	r.mu.Lock()
	r.pending = pending
	r.mu.Unlock()
}

// Rejoin joins the remembered channels, once
func (r *Rejoiner) Rejoin() {
	r.mu.Lock()
	pending := r.pending
	r.pending = nil
	r.mu.Unlock()

	if len(pending) == 0 {
		return
	}
	r.logger.Info("Rejoining %s", strings.Join(pending, ", "))
	if err := r.join(strings.Join(pending, ",")); err != nil {
		r.logger.Error("Failed to rejoin channels: %v", err)
	}
}
