package irc

import (
	"sort"
	"strings"
	"sync"
)

// State is the per-client connection state. Exactly one exists per Client;
// nothing in it is shared between clients.
type State struct {
	mu                sync.RWMutex
	nickname          string
	owners            map[string]string // lowercased nick -> nick as added
	quitMessage       string
	versionReply      string
	connected         bool
	shouldReceive     bool
	shutdownRequested bool
}

func newState(nickname string, owners []string, quitMessage, versionReply string) *State {
	s := &State{
		nickname:     nickname,
		owners:       make(map[string]string),
		quitMessage:  quitMessage,
		versionReply: versionReply,
	}
	for _, o := range owners {
		if o != "" {
			s.owners[strings.ToLower(o)] = o
		}
	}
	return s
}

// Nickname returns the nickname the server last confirmed for this client
func (s *State) Nickname() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nickname
}

func (s *State) setNickname(nick string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nickname = nick
}

// IsConnected reports whether a session is open
func (s *State) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// ShouldReceive reports whether the read loop should keep reading
func (s *State) ShouldReceive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shouldReceive
}

// ShutdownRequested reports whether Shutdown was called for the current session
func (s *State) ShutdownRequested() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shutdownRequested
}

func (s *State) markConnected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	s.shouldReceive = true
	s.shutdownRequested = false
}

func (s *State) markDisconnected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	s.shouldReceive = false
}

func (s *State) stopReceiving() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shouldReceive = false
}

func (s *State) requestShutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shouldReceive = false
	s.shutdownRequested = true
}

// QuitMessage returns the text sent with QUIT
func (s *State) QuitMessage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quitMessage
}

func (s *State) setQuitMessage(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quitMessage = text
}

// VersionReply returns the text answered to CTCP VERSION
func (s *State) VersionReply() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.versionReply
}

func (s *State) setVersionReply(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.versionReply = text
}

// IsOwner reports whether nick is in the owner set. Nicks compare
// case-insensitively.
func (s *State) IsOwner(nick string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.owners[strings.ToLower(nick)]
	return ok
}

func (s *State) addOwner(nick string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owners[strings.ToLower(nick)] = nick
}

func (s *State) removeOwner(nick string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(nick)
	if _, ok := s.owners[key]; !ok {
		return false
	}
	delete(s.owners, key)
	return true
}

// Owners returns the owner set, sorted
func (s *State) Owners() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.owners))
	for _, o := range s.owners {
		out = append(out, o)
	}
	sort.Strings(out)
	return out
}
