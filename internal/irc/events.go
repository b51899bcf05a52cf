package irc

import "sync"

// EventKind names an observable event channel
type EventKind int

const (
	EventConnect EventKind = iota
	EventDisconnect
	EventLogin
	EventEndOfMotd
	EventAnyMessage
	EventChannelMessage
	EventQueryMessage
	EventNotice
	EventMotd
	EventAction
	EventCtcpResponse
	EventError
	EventJoinChannel
	EventPartChannel
	EventNickChange
	EventNameReply
	EventTopic
	EventTopicNotSet

	// EventReceived fires for every parsed inbound line before it is
	// classified. PING and ERROR lines are handled before parsing and never
	// reach it.
	EventReceived
)

var eventNames = map[EventKind]string{
	EventConnect:        "Connect",
	EventDisconnect:     "Disconnect",
	EventLogin:          "Login",
	EventEndOfMotd:      "EndOfMotd",
	EventAnyMessage:     "AnyMessage",
	EventChannelMessage: "ChannelMessage",
	EventQueryMessage:   "QueryMessage",
	EventNotice:         "Notice",
	EventMotd:           "Motd",
	EventAction:         "Action",
	EventCtcpResponse:   "CtcpResponse",
	EventError:          "Error",
	EventJoinChannel:    "JoinChannel",
	EventPartChannel:    "PartChannel",
	EventNickChange:     "NickChange",
	EventNameReply:      "NameReply",
	EventTopic:          "Topic",
	EventTopicNotSet:    "TopicNotSet",
	EventReceived:       "Received",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Event is the payload handed to observers. Which fields are set depends on
// Kind:
//
//	Connect, Disconnect, Login, EndOfMotd          none
//	AnyMessage, ChannelMessage, QueryMessage,
//	Notice, Motd, Received                         Message
//	Action                                         Sender, Text
//	CtcpResponse                                   Message, Sender, Text
//	Error                                          Text
//	JoinChannel, PartChannel                       Channel
//	NickChange                                     OldNick, NewNick
//	NameReply                                      Channel, Users
//	Topic, TopicNotSet                             Channel, Text
type Event struct {
	Kind    EventKind
	Message *Message
	Channel string
	Sender  string
	Text    string
	OldNick string
	NewNick string
	Users   []string
}

// Handler observes one event
type Handler func(Event)

// Events is the observer table: an ordered list of handlers per event kind.
// Emitting a kind nobody subscribed to is a no-op.
type Events struct {
	mu       sync.RWMutex
	handlers map[EventKind][]Handler
}

// NewEvents creates an empty observer table
func NewEvents() *Events {
	return &Events{
		handlers: make(map[EventKind][]Handler),
	}
}

// Subscribe appends h to the handlers of kind. Handlers run in
// registration order.
func (e *Events) Subscribe(kind EventKind, h Handler) {
	if h == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[kind] = append(e.handlers[kind], h)
}

// Count returns how many handlers are registered for kind
func (e *Events) Count(kind EventKind) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.handlers[kind])
}

// Emit invokes every handler registered for ev.Kind on the calling goroutine.
// Handlers may subscribe further handlers; those see the next emit.
func (e *Events) Emit(ev Event) {
	e.mu.RLock()
	hs := e.handlers[ev.Kind]
	snapshot := make([]Handler, len(hs))
	copy(snapshot, hs)
	e.mu.RUnlock()

	for _, h := range snapshot {
		h(ev)
	}
}

// Typed subscription helpers

func (e *Events) OnConnect(fn func()) {
	e.Subscribe(EventConnect, func(Event) { fn() })
}

func (e *Events) OnDisconnect(fn func()) {
	e.Subscribe(EventDisconnect, func(Event) { fn() })
}

func (e *Events) OnLogin(fn func()) {
	e.Subscribe(EventLogin, func(Event) { fn() })
}

func (e *Events) OnEndOfMotd(fn func()) {
	e.Subscribe(EventEndOfMotd, func(Event) { fn() })
}

func (e *Events) OnAnyMessage(fn func(*Message)) {
	e.Subscribe(EventAnyMessage, func(ev Event) { fn(ev.Message) })
}

func (e *Events) OnChannelMessage(fn func(*Message)) {
	e.Subscribe(EventChannelMessage, func(ev Event) { fn(ev.Message) })
}

func (e *Events) OnQueryMessage(fn func(*Message)) {
	e.Subscribe(EventQueryMessage, func(ev Event) { fn(ev.Message) })
}

func (e *Events) OnNotice(fn func(*Message)) {
	e.Subscribe(EventNotice, func(ev Event) { fn(ev.Message) })
}

func (e *Events) OnMotd(fn func(*Message)) {
	e.Subscribe(EventMotd, func(ev Event) { fn(ev.Message) })
}

// OnAction receives /me actions as (sender, text)
func (e *Events) OnAction(fn func(sender, text string)) {
	e.Subscribe(EventAction, func(ev Event) { fn(ev.Sender, ev.Text) })
}

// OnCtcpResponse receives CTCP replies as (sender, reply without delimiters)
func (e *Events) OnCtcpResponse(fn func(sender, text string)) {
	e.Subscribe(EventCtcpResponse, func(ev Event) { fn(ev.Sender, ev.Text) })
}

// OnError receives raw ERROR lines, error numeric names and parse failures
func (e *Events) OnError(fn func(text string)) {
	e.Subscribe(EventError, func(ev Event) { fn(ev.Text) })
}

func (e *Events) OnJoinChannel(fn func(channel string)) {
	e.Subscribe(EventJoinChannel, func(ev Event) { fn(ev.Channel) })
}

func (e *Events) OnPartChannel(fn func(channel string)) {
	e.Subscribe(EventPartChannel, func(ev Event) { fn(ev.Channel) })
}

// OnNickChange fires for every NICK line, ours or anyone else's
func (e *Events) OnNickChange(fn func(oldNick, newNick string)) {
	e.Subscribe(EventNickChange, func(ev Event) { fn(ev.OldNick, ev.NewNick) })
}

func (e *Events) OnNameReply(fn func(channel string, users []string)) {
	e.Subscribe(EventNameReply, func(ev Event) { fn(ev.Channel, ev.Users) })
}

func (e *Events) OnTopic(fn func(channel, topic string)) {
	e.Subscribe(EventTopic, func(ev Event) { fn(ev.Channel, ev.Text) })
}

func (e *Events) OnTopicNotSet(fn func(channel, text string)) {
	e.Subscribe(EventTopicNotSet, func(ev Event) { fn(ev.Channel, ev.Text) })
}

// OnReceived sees every parsed line, whatever its command. Observers that
// follow JOIN, PART, QUIT, KICK or TOPIC use it; AnyMessage carries PRIVMSG
// only.
func (e *Events) OnReceived(fn func(*Message)) {
	e.Subscribe(EventReceived, func(ev Event) { fn(ev.Message) })
}
