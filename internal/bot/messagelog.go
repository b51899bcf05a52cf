package bot

import (
	"strings"

	"github.com/yourusername/ircbot/internal/database"
	"github.com/yourusername/ircbot/internal/irc"
	"github.com/yourusername/ircbot/internal/ircformat"
	"github.com/yourusername/ircbot/internal/output"
)

// MessageLog stores received messages and channel events in the database
type MessageLog struct {
	db     *database.DB
	logger output.Logger
}

// NewMessageLog creates a message log writing to db
func NewMessageLog(db *database.DB, logger output.Logger) *MessageLog {
	return &MessageLog{db: db, logger: logger}
}

// Subscribe registers the log on the client's events
func (ml *MessageLog) Subscribe(events *irc.Events) {
	events.OnChannelMessage(func(msg *irc.Message) { ml.Message(msg, msg.Param(0)) })
	events.OnQueryMessage(func(msg *irc.Message) { ml.Message(msg, "") })
	events.OnAction(func(sender, text string) { ml.Event(database.EventTypeAction, "", sender, text) })
	events.OnNickChange(func(oldNick, newNick string) { ml.Event(database.EventTypeNickChange, "", oldNick, newNick) })
	events.OnNotice(ml.notice)
	events.OnReceived(ml.observe)
}

// Message stores one PRIVMSG. channel is empty for private messages.
func (ml *MessageLog) Message(msg *irc.Message, channel string) {
	entry := &database.Message{
		Channel:  channel,
		Nick:     msg.SenderNick(),
		Hostmask: msg.Prefix(),
		Content:  ircformat.Strip(msg.Trailing()),
	}
	if err := ml.db.LogMessage(entry); err != nil {
		ml.logger.Warning("Failed to log message from %s: %v", entry.Nick, err)
	}
}

// Event stores a non-message event
func (ml *MessageLog) Event(eventType, channel, nick, content string) {
	if err := ml.db.LogEvent(eventType, channel, nick, ircformat.Strip(content)); err != nil {
		ml.logger.Warning("Failed to log %s event for %s: %v", eventType, nick, err)
	}
}

// notice stores NOTICEs from users; server notices are skipped
func (ml *MessageLog) notice(msg *irc.Message) {
	nick := msg.SenderNick()
	if nick == "" || strings.Contains(nick, ".") {
		return
	}
	channel := msg.Param(0)
	if !isChannel(channel) {
		channel = ""
	}
	ml.Event(database.EventTypeNotice, channel, nick, msg.Trailing())
}

func (ml *MessageLog) observe(msg *irc.Message) {
	nick := msg.SenderNick()
	if nick == "" {
		return
	}
	switch msg.Command() {
	case "JOIN":
		ml.Event(database.EventTypeJoin, firstNonEmpty(msg.Param(0), msg.Trailing()), nick, "")
	case "PART":
		ml.Event(database.EventTypePart, msg.Param(0), nick, msg.Trailing())
	case "TOPIC":
		ml.Event(database.EventTypeTopic, msg.Param(0), nick, msg.Trailing())
	}
}
