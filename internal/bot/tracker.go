package bot

import (
	"strings"
	"sync"
	"time"

	"github.com/yourusername/ircbot/internal/database"
	"github.com/yourusername/ircbot/internal/irc"
	"github.com/yourusername/ircbot/internal/output"
)

// namesFlushDelay is how long the tracker waits after the last NAMES reply
// of a channel before writing the batch
const namesFlushDelay = 500 * time.Millisecond

// ChannelTracker persists which channels the bot is in, who is in them and
// their topics
type ChannelTracker struct {
	db         *database.DB
	logger     output.Logger
	nick       func() string
	flushDelay time.Duration

	// IRC sends several 353 replies for large channels
	namesMu    sync.Mutex
	namesBuf   map[string][]database.ChannelUserEntry
	namesTimer map[string]*time.Timer
}

// NewChannelTracker creates a tracker. nick reports the bot's current
// nickname.
func NewChannelTracker(db *database.DB, logger output.Logger, nick func() string) *ChannelTracker {
	return &ChannelTracker{
		db:         db,
		logger:     logger,
		nick:       nick,
		flushDelay: namesFlushDelay,
		namesBuf:   make(map[string][]database.ChannelUserEntry),
		namesTimer: make(map[string]*time.Timer),
	}
}

// Subscribe registers the tracker on the client's events
func (ct *ChannelTracker) Subscribe(events *irc.Events) {
	events.OnJoinChannel(ct.OnBotJoin)
	events.OnPartChannel(ct.OnBotPart)
	events.OnNameReply(ct.OnNamesReply)
	events.OnNickChange(ct.OnNickChange)
	events.OnTopic(ct.OnTopic)
	events.OnTopicNotSet(func(channel, _ string) { ct.OnTopic(channel, "") })
	events.OnReceived(ct.Observe)
	events.OnDisconnect(ct.Reset)
}

// OnBotJoin records that the bot joined channel
func (ct *ChannelTracker) OnBotJoin(channel string) {
	if err := ct.db.SetBotChannelJoined(channel, true); err != nil {
		ct.logger.Warning("Failed to set bot channel status for %s: %v", channel, err)
	}
}

// OnBotPart records that the bot left channel and forgets its users
func (ct *ChannelTracker) OnBotPart(channel string) {
	ct.dropNames(strings.ToLower(channel))
	if err := ct.db.SetBotChannelJoined(channel, false); err != nil {
		ct.logger.Warning("Failed to mark bot left %s: %v", channel, err)
	}
}

// OnNamesReply buffers one 353 reply. The batch is written once no further
// reply for the channel arrived within the flush delay.
func (ct *ChannelTracker) OnNamesReply(channel string, names []string) {
	ct.namesMu.Lock()
	defer ct.namesMu.Unlock()

	key := strings.ToLower(channel)
	for _, name := range names {
		entry := database.ParseNamesEntry(name)
		if entry.Nick == "" {
			continue
		}
		ct.namesBuf[key] = append(ct.namesBuf[key], entry)
	}

	if timer, exists := ct.namesTimer[key]; exists {
		timer.Stop()
	}
	ct.namesTimer[key] = time.AfterFunc(ct.flushDelay, func() {
		ct.flushNames(key)
	})
}

func (ct *ChannelTracker) flushNames(channel string) {
	ct.namesMu.Lock()
	users := ct.namesBuf[channel]
	delete(ct.namesBuf, channel)
	delete(ct.namesTimer, channel)
	ct.namesMu.Unlock()

	if len(users) == 0 {
		return
	}

	if err := ct.db.BulkUpsertChannelUsers(channel, users); err != nil {
		ct.logger.Warning("Failed to store %d users for %s: %v", len(users), channel, err)
	}
}

func (ct *ChannelTracker) dropNames(channel string) {
	ct.namesMu.Lock()
	defer ct.namesMu.Unlock()
	if timer, exists := ct.namesTimer[channel]; exists {
		timer.Stop()
	}
	delete(ct.namesTimer, channel)
	delete(ct.namesBuf, channel)
}

// Flush writes every pending NAMES batch now
func (ct *ChannelTracker) Flush() {
	ct.namesMu.Lock()
	channels := make([]string, 0, len(ct.namesBuf))
	for channel := range ct.namesBuf {
		if timer, exists := ct.namesTimer[channel]; exists {
			timer.Stop()
		}
		channels = append(channels, channel)
	}
	ct.namesMu.Unlock()

	for _, channel := range channels {
		ct.flushNames(channel)
	}
}

// Observe follows users through received JOIN, PART, QUIT and KICK lines,
// and topic changes made while the bot is in the channel
func (ct *ChannelTracker) Observe(msg *irc.Message) {
	nick := msg.SenderNick()
	switch msg.Command() {
	case "JOIN":
		channel := firstNonEmpty(msg.Param(0), msg.Trailing())
		if channel == "" || nick == "" {
			return
		}
		if ct.isSelf(nick) {
			ct.OnBotJoin(channel)
			return
		}
		ct.upsert(channel, nick)

	case "PART":
		channel := firstNonEmpty(msg.Param(0), msg.Trailing())
		if channel == "" || nick == "" {
			return
		}
		if ct.isSelf(nick) {
			ct.OnBotPart(channel)
			return
		}
		if err := ct.db.RemoveChannelUser(channel, nick); err != nil {
			ct.logger.Warning("Failed to remove user %s from %s: %v", nick, channel, err)
		}

	case "QUIT":
		if nick == "" || ct.isSelf(nick) {
			return
		}
		if err := ct.db.RemoveUserFromAllChannels(nick); err != nil {
			ct.logger.Warning("Failed to remove user %s from all channels: %v", nick, err)
		}

	case "KICK":
		channel, target := msg.Param(0), msg.Param(1)
		if channel == "" || target == "" {
			return
		}
		if ct.isSelf(target) {
			ct.logger.Warning("Kicked from %s by %s", channel, nick)
			ct.OnBotPart(channel)
			return
		}
		if err := ct.db.RemoveChannelUser(channel, target); err != nil {
			ct.logger.Warning("Failed to remove kicked user %s from %s: %v", target, channel, err)
		}

	case "TOPIC":
		if channel := msg.Param(0); channel != "" {
			ct.OnTopic(channel, msg.Trailing())
		}
	}
}

func (ct *ChannelTracker) upsert(channel, nick string) {
	if err := ct.db.BulkUpsertChannelUsers(channel, []database.ChannelUserEntry{{Nick: nick}}); err != nil {
		ct.logger.Warning("Failed to add user %s to %s: %v", nick, channel, err)
	}
}

// OnNickChange carries a user across a nick change in every channel
func (ct *ChannelTracker) OnNickChange(oldNick, newNick string) {
	if err := ct.db.RenameChannelUser(oldNick, newNick); err != nil {
		ct.logger.Warning("Failed to rename user %s to %s: %v", oldNick, newNick, err)
	}
}

// OnTopic stores the topic of channel; an empty topic means none is set
func (ct *ChannelTracker) OnTopic(channel, topic string) {
	if err := ct.db.SetBotChannelTopic(channel, topic); err != nil {
		ct.logger.Warning("Failed to set topic for %s: %v", channel, err)
	}
}

// Reset forgets all channel state. A new session starts with no channels.
func (ct *ChannelTracker) Reset() {
	ct.namesMu.Lock()
	for _, timer := range ct.namesTimer {
		timer.Stop()
	}
	ct.namesBuf = make(map[string][]database.ChannelUserEntry)
	ct.namesTimer = make(map[string]*time.Timer)
	ct.namesMu.Unlock()

	if err := ct.db.ResetBotChannels(); err != nil {
		ct.logger.Warning("Failed to reset channel state: %v", err)
	}
}

func (ct *ChannelTracker) isSelf(nick string) bool {
	return strings.EqualFold(nick, ct.nick())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func isChannel(target string) bool {
	return strings.HasPrefix(target, "#") || strings.HasPrefix(target, "&")
}
