// Package bot wires the IRC client to storage, owner commands and console
// output. Reconnecting after a lost session happens here: the client itself
// never reconnects.
package bot

import (
	"context"
	"fmt"
	"sync"

	"github.com/yourusername/ircbot/internal/commands"
	"github.com/yourusername/ircbot/internal/config"
	"github.com/yourusername/ircbot/internal/database"
	boterrors "github.com/yourusername/ircbot/internal/errors"
	"github.com/yourusername/ircbot/internal/irc"
	"github.com/yourusername/ircbot/internal/ircformat"
	"github.com/yourusername/ircbot/internal/output"
	"github.com/yourusername/ircbot/internal/splitter"
	"github.com/yourusername/ircbot/internal/user"
)

// Bot is the demo bot built on the IRC client
type Bot struct {
	cfg        *config.Config
	client     *irc.Client
	db         *database.DB
	users      *user.Manager
	registry   *commands.Registry
	dispatcher *commands.Dispatcher
	tracker    *ChannelTracker
	rejoiner   *Rejoiner
	messages   *MessageLog
	logger     output.Logger
	errors     *boterrors.ErrorHandler
	backoff    *Backoff
	splitter   *splitter.Splitter

	// in-flight command executions
	running sync.WaitGroup
}

// New creates the bot, registers its commands and subscribes its observers.
// Owners from the configuration are stored and loaded into the client.
func New(cfg *config.Config, client *irc.Client, db *database.DB, out *output.Output) (*Bot, error) {
	users := user.NewManager(db, client)
	if err := users.Sync(cfg.Bot.Owners); err != nil {
		return nil, err
	}

	if quit, err := db.GetSetting(database.SettingQuitMessage); err != nil {
		return nil, fmt.Errorf("failed to load quit message: %w", err)
	} else if quit != "" {
		client.SetQuitMessage(quit)
	}

	registry := commands.NewRegistry()
	b := &Bot{
		cfg:        cfg,
		client:     client,
		db:         db,
		users:      users,
		registry:   registry,
		dispatcher: commands.NewDispatcher(registry, users, cfg.Bot.CommandPrefix),
		tracker:    NewChannelTracker(db, out.Logger, client.Nick),
		rejoiner:   NewRejoiner(db, out.Logger, client.JoinChannel, cfg.Bot.Channels),
		messages:   NewMessageLog(db, out.Logger),
		logger:     out.Logger,
		errors:     boterrors.NewErrorHandler(out),
		backoff: NewBackoff(
			cfg.Server.GetReconnectDelayMinDuration(),
			cfg.Server.GetReconnectDelayMaxDuration(),
		),
		splitter: splitter.New(cfg.Server.MaxMessageLength),
	}

	if err := b.registerCommands(); err != nil {
		return nil, err
	}
	b.subscribe()
	return b, nil
}

// Users returns the owner manager
func (b *Bot) Users() *user.Manager {
	return b.users
}

func (b *Bot) registerCommands() error {
	cmds := []commands.Command{
		commands.NewJoinCommand(b.client, b.db),
		commands.NewPartCommand(b.client, b.db),
		commands.NewNickCommand(b.client, b.db),
		commands.NewSayCommand(b.client),
		commands.NewActCommand(b.client),
		commands.NewQuitCommand(b.client, b.db),
		commands.NewQuitMessageCommand(b.client, b.db),
		commands.NewKickCommand(b.client, b.db),
		commands.NewOwnerAddCommand(b.users, b.db),
		commands.NewOwnerRemoveCommand(b.users, b.db),
		commands.NewOwnerListCommand(b.users),
		commands.NewPasswordCommand(b.users, b.db),
		commands.NewVerifyCommand(b.users, b.db),
		commands.NewHelpCommand(b.registry),
		commands.NewSeenCommand(b.db),
		commands.NewNamesCommand(b.db),
		commands.NewTopicCommand(b.db),
	}
	for _, m := range commands.ModeCommands(b.client, b.db) {
		cmds = append(cmds, m)
	}

	for _, cmd := range cmds {
		if err := b.registry.Register(cmd); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) subscribe() {
	events := b.client.Events()

	// Storage first so commands like !seen see the current line. The
	// rejoiner reads joined channels before the tracker clears them.
	b.rejoiner.Subscribe(events)
	b.tracker.Subscribe(events)
	b.messages.Subscribe(events)

	events.OnChannelMessage(func(msg *irc.Message) {
		b.logger.ChannelMessage(msg.Param(0), msg.SenderNick(), ircformat.Strip(msg.Trailing()))
		b.handleCommand(msg, msg.Param(0))
	})
	events.OnQueryMessage(func(msg *irc.Message) {
		b.logger.PrivateMessage(msg.SenderNick(), ircformat.Strip(msg.Trailing()))
		b.handleCommand(msg, "")
	})
	events.OnNotice(func(msg *irc.Message) {
		b.logger.Info("-%s- %s", senderOrServer(msg), ircformat.Strip(msg.Trailing()))
	})
	events.OnAction(func(sender, text string) {
		b.logger.Info("* %s %s", sender, ircformat.Strip(text))
	})
	events.OnCtcpResponse(func(sender, text string) {
		b.logger.Info("CTCP reply from %s: %s", sender, text)
	})
	events.OnMotd(func(msg *irc.Message) {
		b.logger.Info("MOTD: %s", ircformat.Strip(msg.Trailing()))
	})
	events.OnEndOfMotd(func() {
		b.logger.Success("Registered as %s", b.client.Nick())
	})
	events.OnTopic(func(channel, topic string) {
		b.logger.Info("Topic for %s: %s", channel, ircformat.Strip(topic))
	})
	events.OnNameReply(func(channel string, users []string) {
		b.logger.Info("Users in %s: %d", channel, len(users))
	})
	events.OnNickChange(func(oldNick, newNick string) {
		b.users.Rename(oldNick, newNick)
	})
	events.OnError(b.errors.HandleProtocolError)
	events.OnDisconnect(b.users.Reset)
}

// handleCommand runs a command line off the read loop so PING replies are
// not delayed by password hashing or database work. channel is empty for
// private messages.
func (b *Bot) handleCommand(msg *irc.Message, channel string) {
	text := msg.Trailing()
	if !b.dispatcher.IsCommand(text) {
		return
	}

	nick := msg.SenderNick()
	b.running.Add(1)
	go func() {
		defer b.running.Done()

		resp, handled, err := b.dispatcher.Dispatch(nick, msg.Prefix(), channel, text, channel == "")
		if !handled {
			return
		}

		reply := commands.NewErrorResponse("")
		if err != nil {
			reply.Message = b.errors.HandleFrom(nick, err)
		} else if resp != nil {
			reply = resp
		}
		if reply.Message == "" {
			return
		}

		target := reply.ReplyTarget(nick, channel)
		for _, part := range b.splitter.Split(reply.Message) {
			if err := b.client.Send(target, part); err != nil {
				b.logger.Warning("Failed to send reply to %s: %v", nick, err)
				return
			}
		}
	}()
}

// Run connects and serves until ctx ends or the session is shut down. When
// server.reconnect is set, a session lost any other way is re-established
// with exponential backoff.
func (b *Bot) Run(ctx context.Context) error {
	for {
		err := b.client.Connect(ctx, b.cfg.Server.Address, b.cfg.Server.Port)
		if err == nil {
			b.backoff.Reset()
		}
		// Returns at once when no session was opened
		b.client.Wait()

		if ctx.Err() != nil || b.client.State().ShutdownRequested() {
			return nil
		}
		if !b.cfg.Server.Reconnect {
			return err
		}

		delay := b.backoff.Next()
		b.logger.Warning("Connection lost, reconnecting in %v", delay)
		if !sleep(ctx, delay) {
			return nil
		}
	}
}

// Close waits for running commands and writes pending channel state
func (b *Bot) Close() {
	b.running.Wait()
	b.tracker.Flush()
}

func senderOrServer(msg *irc.Message) string {
	if nick := msg.SenderNick(); nick != "" {
		return nick
	}
	return "server"
}
