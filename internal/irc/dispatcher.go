package irc

import (
	"strings"
)

// handleLine routes one raw line. PING and ERROR are recognised by a
// case-insensitive prefix before parsing; everything else is parsed and
// dispatched on the command. Errors surface only as Error events.
func (c *Client) handleLine(line string) {
	if line == "" {
		return
	}

	lower := strings.ToLower(line)
	switch {
	case strings.HasPrefix(lower, "ping"):
		c.pong(pingPayload(line))
		return
	case strings.HasPrefix(lower, "error"):
		c.events.Emit(Event{Kind: EventError, Text: line})
		return
	}

	msg, err := c.parse(line)
	if err != nil {
		c.events.Emit(Event{Kind: EventError, Text: err.Error()})
		return
	}
	c.events.Emit(Event{Kind: EventReceived, Message: msg})
	c.dispatch(msg)
}

func (c *Client) parse(line string) (*Message, error) {
	if c.stripColons {
		return ParseMessage(line)
	}
	return ParseMessagePreserving(line)
}

// pingPayload returns everything after "PING ", colon included
func pingPayload(line string) string {
	if len(line) <= len("PING ") {
		return ""
	}
	return line[len("PING "):]
}

func (c *Client) dispatch(msg *Message) {
	switch strings.ToUpper(msg.Command()) {
	case "PRIVMSG":
		c.handlePrivmsg(msg)
	case "NOTICE":
		c.handleNotice(msg)
	case "NICK":
		c.handleNick(msg)
	case "PING":
		// Prefixed PING, e.g. ":irc.example.net PING :token"
		token := msg.Trailing()
		if token == "" {
			token = msg.Param(0)
		}
		if token == "" {
			c.pong("")
		} else {
			c.pong(":" + token)
		}
	default:
		if msg.IsNumeric() {
			c.handleNumeric(msg)
		}
	}
}

func (c *Client) handlePrivmsg(msg *Message) {
	text := msg.Trailing()

	switch {
	case IsCTCPMessage(text):
		c.ctcp.HandleRequest(msg.SenderNick(), unwrapCTCP(text))
	case strings.EqualFold(msg.Param(0), c.state.Nickname()):
		c.events.Emit(Event{Kind: EventQueryMessage, Message: msg})
	default:
		c.events.Emit(Event{Kind: EventChannelMessage, Message: msg})
	}

	c.events.Emit(Event{Kind: EventAnyMessage, Message: msg})
}

func (c *Client) handleNotice(msg *Message) {
	text := msg.Trailing()
	if IsCTCPMessage(text) {
		c.ctcp.HandleResponse(msg, unwrapCTCP(text))
		return
	}
	c.events.Emit(Event{Kind: EventNotice, Message: msg})
}

func (c *Client) handleNick(msg *Message) {
	oldNick := msg.SenderNick()
	newNick := msg.Trailing()
	if newNick == "" {
		newNick = msg.Param(0)
	}

	if strings.EqualFold(oldNick, c.state.Nickname()) {
		c.state.setNickname(newNick)
		c.logger.Info("Nickname changed to %s", newNick)
	}
	c.events.Emit(Event{Kind: EventNickChange, OldNick: oldNick, NewNick: newNick})
}

func (c *Client) handleNumeric(msg *Message) {
	switch code := msg.Command(); code {
	case RplNoTopic:
		if msg.ParamCount() == 2 {
			c.events.Emit(Event{Kind: EventTopicNotSet, Channel: msg.Param(1), Text: msg.Trailing()})
		}

	case RplTopic:
		if msg.ParamCount() == 2 {
			c.events.Emit(Event{Kind: EventTopic, Channel: msg.Param(1), Text: msg.Trailing()})
		}

	case RplNamReply:
		// <me> <type> <channel> :nick1 nick2 ...
		if msg.ParamCount() == 3 && strings.HasPrefix(msg.Param(2), "#") {
			c.events.Emit(Event{Kind: EventNameReply, Channel: msg.Param(2), Users: strings.Fields(msg.Trailing())})
		}

	case RplMotd:
		c.events.Emit(Event{Kind: EventMotd, Message: msg})

	case RplEndOfMotd:
		c.events.Emit(Event{Kind: EventEndOfMotd})
		if err := c.JoinChannel(c.channels); err != nil {
			c.logger.Error("Failed to join channels: %v", err)
		}

	default:
		if name, ok := ErrorName(code); ok {
			c.events.Emit(Event{Kind: EventError, Text: name})
		}
	}
}
