package irc

import (
	"strings"
	"time"

	ircv4 "gopkg.in/irc.v4"

	boterrors "github.com/yourusername/ircbot/internal/errors"
)

const (
	// writeTimeout bounds every write so a peer that stops reading cannot
	// hold the write lock forever
	writeTimeout = 10 * time.Second

	// quitTimeout bounds writes once a disconnect has started
	quitTimeout = 2 * time.Second
)

var lineBreaks = strings.NewReplacer("\r", "", "\n", "")

// write runs send against the session writer under the write lock, with a
// deadline on the socket. CR and LF never reach send; callers sanitize.
func (c *Client) write(send func(w *ircv4.Writer) error) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	conn, w := c.conn, c.writer
	timeout := c.writeTimeout
	if c.closing {
		timeout = c.quitTimeout
	}
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return boterrors.NewTransportError("write", err)
	}
	if err := send(w); err != nil {
		return boterrors.NewTransportError("write", err)
	}
	return nil
}

// writeMessage frames command and params as one protocol line. CR and LF are
// stripped from every parameter so a caller can never smuggle a second
// command onto the wire.
func (c *Client) writeMessage(command string, params ...string) error {
	msg := &ircv4.Message{Command: command}
	for _, p := range params {
		msg.Params = append(msg.Params, lineBreaks.Replace(p))
	}
	return c.write(func(w *ircv4.Writer) error {
		return w.WriteMessage(msg)
	})
}

// SendRaw sends line verbatim, terminated with CRLF
func (c *Client) SendRaw(line string) error {
	line = lineBreaks.Replace(line)
	return c.write(func(w *ircv4.Writer) error {
		return w.Write(line)
	})
}

// Send sends a PRIVMSG to a channel or nick
func (c *Client) Send(destination, text string) error {
	return c.writeMessage("PRIVMSG", destination, text)
}

// SendNotice sends a NOTICE to a channel or nick
func (c *Client) SendNotice(destination, text string) error {
	return c.writeMessage("NOTICE", destination, text)
}

// SendCtcpRequest sends text to user as a CTCP request
func (c *Client) SendCtcpRequest(user, text string) error {
	return c.Send(user, ctcpDelim+text+ctcpDelim)
}

func (c *Client) sendCtcpResponse(user, text string) error {
	return c.SendNotice(user, ctcpDelim+text+ctcpDelim)
}

// SendAction sends a CTCP ACTION (/me) to a channel or nick
func (c *Client) SendAction(destination, text string) error {
	return c.Send(destination, FormatCTCPMessage("ACTION", text))
}

// Login registers the current nickname with the server and fires Login
func (c *Client) Login() error {
	nick := c.state.Nickname()
	if err := c.writeMessage("NICK", nick); err != nil {
		return err
	}
	// The realname is always sent as a trailing parameter
	nick = lineBreaks.Replace(nick)
	err := c.write(func(w *ircv4.Writer) error {
		return w.Writef("USER %s 0 * :%s", nick, nick)
	})
	if err != nil {
		return err
	}
	c.events.Emit(Event{Kind: EventLogin})
	return nil
}

// JoinChannel joins a comma-separated channel list with a single JOIN.
// Whitespace is ignored and empty entries are dropped; an empty list sends
// nothing. JoinChannel fires once per channel.
func (c *Client) JoinChannel(channels string) error {
	list := splitChannels(channels)
	if len(list) == 0 {
		return nil
	}
	if err := c.writeMessage("JOIN", strings.Join(list, ",")); err != nil {
		return err
	}

	for _, channel := range list {
		if c.requestTopic {
			if err := c.writeMessage("TOPIC", channel); err != nil {
				c.logger.Warning("Failed to request topic for %s: %v", channel, err)
			}
		}
		c.events.Emit(Event{Kind: EventJoinChannel, Channel: channel})
	}
	return nil
}

// LeaveChannel parts a comma-separated channel list with a single PART and
// fires PartChannel once per channel
func (c *Client) LeaveChannel(channels string) error {
	list := splitChannels(channels)
	if len(list) == 0 {
		return nil
	}
	if err := c.writeMessage("PART", strings.Join(list, ",")); err != nil {
		return err
	}

	for _, channel := range list {
		c.events.Emit(Event{Kind: EventPartChannel, Channel: channel})
	}
	return nil
}

// Quit sends QUIT with the configured quit message. The socket stays open;
// use Disconnect to end the session.
func (c *Client) Quit() error {
	if text := c.state.QuitMessage(); text != "" {
		return c.writeMessage("QUIT", text)
	}
	return c.writeMessage("QUIT")
}

// ChangeNick asks the server for a new nickname. The local nickname changes
// only when the server echoes the NICK back.
func (c *Client) ChangeNick(nick string) error {
	if !c.state.IsConnected() {
		return ErrNotConnected
	}
	return c.writeMessage("NICK", nick)
}

// ChangeNickOffline sets the nickname used by the next Connect. It fails
// while a session is open.
func (c *Client) ChangeNickOffline(nick string) error {
	if c.state.IsConnected() {
		return boterrors.NewValidationError("cannot change nickname offline while connected")
	}
	c.state.setNickname(nick)
	return nil
}

func (c *Client) pong(payload string) {
	line := "PONG"
	if payload != "" {
		line += " " + payload
	}
	if err := c.SendRaw(line); err != nil {
		c.logger.Warning("Failed to answer PING: %v", err)
	}
}

// splitChannels normalizes a "#a, #b,,#c" list
func splitChannels(channels string) []string {
	channels = strings.Join(strings.Fields(channels), "")
	var out []string
	for _, ch := range strings.Split(channels, ",") {
		if ch != "" {
			out = append(out, ch)
		}
	}
	return out
}
