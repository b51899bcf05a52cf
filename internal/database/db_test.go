package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/yourusername/ircbot/internal/output"
)

func newMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewTest()
	if err != nil {
		t.Fatalf("NewTest() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNew_AppliesMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bot.db")

	db, err := New(path, true)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	v, err := db.Version()
	if err != nil || v != 2 {
		t.Fatalf("Version() = %d, %v; want 2", v, err)
	}
	if _, err := db.AddOwner("alice"); err != nil {
		t.Fatalf("AddOwner() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Reopening keeps data and does not re-run the schema
	db, err = New(path, true)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer db.Close()

	owner, err := db.GetOwner("alice")
	if err != nil || owner == nil {
		t.Fatalf("GetOwner() after reopen = %v, %v", owner, err)
	}
}

func TestRollback(t *testing.T) {
	db := newMemDB(t)

	for want := 1; want >= 0; want-- {
		if err := db.Rollback(); err != nil {
			t.Fatalf("Rollback() error = %v", err)
		}
		if v, _ := db.Version(); v != want {
			t.Errorf("Version() after rollback = %d, want %d", v, want)
		}
	}
	if err := db.Rollback(); err == nil {
		t.Error("Rollback() with nothing applied error = nil, want error")
	}
}

func TestParseMigrationName(t *testing.T) {
	tests := []struct {
		file    string
		version int
		name    string
		down    bool
		ok      bool
	}{
		{"001_initial.sql", 1, "initial", false, true},
		{"002_message_retention.down.sql", 2, "message_retention", true, true},
		{"README.md", 0, "", false, false},
		{"initial.sql", 0, "", false, false},
		{"abc_initial.sql", 0, "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			version, name, down, ok := parseMigrationName(tt.file)
			if version != tt.version || name != tt.name || down != tt.down || ok != tt.ok {
				t.Errorf("parseMigrationName(%q) = %d, %q, %v, %v; want %d, %q, %v, %v",
					tt.file, version, name, down, ok, tt.version, tt.name, tt.down, tt.ok)
			}
		})
	}
}

func TestOwners(t *testing.T) {
	db := newMemDB(t)

	added, err := db.AddOwner("Alice")
	if err != nil || !added {
		t.Fatalf("AddOwner(Alice) = %v, %v", added, err)
	}
	added, err = db.AddOwner("alice")
	if err != nil || added {
		t.Errorf("AddOwner(alice) again = %v, %v; want false, nil", added, err)
	}
	if _, err := db.AddOwner("bob"); err != nil {
		t.Fatalf("AddOwner(bob) error = %v", err)
	}

	if err := db.SetOwnerPassword("ALICE", "hash"); err != nil {
		t.Fatalf("SetOwnerPassword() error = %v", err)
	}
	owner, err := db.GetOwner("alice")
	if err != nil || owner == nil || owner.PasswordHash != "hash" {
		t.Fatalf("GetOwner(alice) = %+v, %v", owner, err)
	}
	if err := db.SetOwnerPassword("nobody", "x"); err == nil {
		t.Error("SetOwnerPassword(nobody) error = nil, want error")
	}

	owners, err := db.ListOwners()
	if err != nil || len(owners) != 2 || owners[0].Nick != "Alice" || owners[1].Nick != "bob" {
		t.Fatalf("ListOwners() = %v, %v", owners, err)
	}

	removed, err := db.RemoveOwner("BOB")
	if err != nil || !removed {
		t.Errorf("RemoveOwner(BOB) = %v, %v", removed, err)
	}
	if owner, _ := db.GetOwner("bob"); owner != nil {
		t.Error("bob still an owner after RemoveOwner")
	}
	removed, _ = db.RemoveOwner("bob")
	if removed {
		t.Error("RemoveOwner(bob) twice reported true")
	}
}

func TestMessages(t *testing.T) {
	db := newMemDB(t)
	base := time.Now().Add(-time.Hour)

	entries := []*Message{
		{Timestamp: base, Channel: "#go", Nick: "alice", Content: "first"},
		{Timestamp: base.Add(time.Minute), Channel: "#go", Nick: "bob", Content: "hi"},
		{Timestamp: base.Add(2 * time.Minute), Channel: "#go", Nick: "Alice", Content: "waves", EventType: EventTypeAction},
		{Timestamp: base.Add(3 * time.Minute), Nick: "alice", Content: "private"},
	}
	for _, m := range entries {
		if err := db.LogMessage(m); err != nil {
			t.Fatalf("LogMessage() error = %v", err)
		}
		if m.ID == 0 {
			t.Error("LogMessage() did not set ID")
		}
	}

	seen, err := db.GetLastSeen("ALICE")
	if err != nil || seen == nil || seen.Content != "private" {
		t.Fatalf("GetLastSeen(ALICE) = %+v, %v", seen, err)
	}
	if seen, _ := db.GetLastSeen("nobody"); seen != nil {
		t.Errorf("GetLastSeen(nobody) = %+v, want nil", seen)
	}

	msgs, err := db.QueryMessages(&MessageFilter{Channel: "#go"})
	if err != nil {
		t.Fatalf("QueryMessages() error = %v", err)
	}
	if len(msgs) != 2 || msgs[0].Content != "hi" || msgs[1].Content != "first" {
		t.Errorf("QueryMessages(#go) = %d messages, want hi then first", len(msgs))
	}

	msgs, _ = db.QueryMessages(&MessageFilter{Channel: "#go", IncludeEvents: true, Limit: 1})
	if len(msgs) != 1 || msgs[0].EventType != EventTypeAction {
		t.Errorf("QueryMessages(events, limit 1) = %+v", msgs)
	}

	msgs, _ = db.QueryMessages(&MessageFilter{Nick: "alice", IncludeEvents: true})
	if len(msgs) != 3 {
		t.Errorf("QueryMessages(nick alice) = %d, want 3", len(msgs))
	}
}

func TestCleanupOldMessages(t *testing.T) {
	db := newMemDB(t)

	old := &Message{Timestamp: time.Now().AddDate(0, 0, -40), Nick: "old", Content: "x"}
	recent := &Message{Timestamp: time.Now(), Nick: "new", Content: "y"}
	for _, m := range []*Message{old, recent} {
		if err := db.LogMessage(m); err != nil {
			t.Fatalf("LogMessage() error = %v", err)
		}
	}

	n, err := db.CleanupOldMessages(30, output.NopLogger{})
	if err != nil || n != 1 {
		t.Fatalf("CleanupOldMessages(30) = %d, %v; want 1", n, err)
	}
	if seen, _ := db.GetLastSeen("old"); seen != nil {
		t.Error("old message survived cleanup")
	}
	if seen, _ := db.GetLastSeen("new"); seen == nil {
		t.Error("recent message was deleted")
	}

	if _, err := db.CleanupOldMessages(0, output.NopLogger{}); err == nil {
		t.Error("CleanupOldMessages(0) error = nil, want error")
	}
}

func TestChannelUsers(t *testing.T) {
	db := newMemDB(t)

	if err := db.SetBotChannelJoined("#Go", true); err != nil {
		t.Fatalf("SetBotChannelJoined() error = %v", err)
	}
	users := []ChannelUserEntry{
		{Nick: "alice", IsOp: true},
		{Nick: "bob", IsVoice: true},
		{Nick: "carol"},
	}
	if err := db.BulkUpsertChannelUsers("#go", users); err != nil {
		t.Fatalf("BulkUpsertChannelUsers() error = %v", err)
	}

	if err := db.RenameChannelUser("bob", "robert"); err != nil {
		t.Fatalf("RenameChannelUser() error = %v", err)
	}

	if err := db.BulkUpsertChannelUsers("#other", []ChannelUserEntry{{Nick: "dave"}, {Nick: "Carol"}}); err != nil {
		t.Fatalf("BulkUpsertChannelUsers() error = %v", err)
	}
	if err := db.RemoveUserFromAllChannels("dave"); err != nil {
		t.Fatalf("RemoveUserFromAllChannels() error = %v", err)
	}
	if err := db.RemoveChannelUser("#OTHER", "carol"); err != nil {
		t.Fatalf("RemoveChannelUser() error = %v", err)
	}
	if other, _ := db.GetChannelUsers("#other"); len(other) != 0 {
		t.Errorf("#other users = %+v, want none", other)
	}

	got, err := db.GetChannelUsers("#GO")
	if err != nil {
		t.Fatalf("GetChannelUsers() error = %v", err)
	}
	if len(got) != 3 || got[0].Nick != "alice" || !got[0].IsOp || got[2].Nick != "robert" || !got[2].IsVoice {
		t.Errorf("GetChannelUsers() = %+v", got)
	}

	if err := db.SetBotChannelTopic("#go", "all about go"); err != nil {
		t.Fatalf("SetBotChannelTopic() error = %v", err)
	}
	bc, err := db.GetBotChannel("#go")
	if err != nil || bc == nil || !bc.IsJoined || bc.Topic != "all about go" || bc.JoinedAt == nil {
		t.Fatalf("GetBotChannel() = %+v, %v", bc, err)
	}

	joined, _ := db.ListJoinedChannels()
	if len(joined) != 1 || joined[0] != "#go" {
		t.Errorf("ListJoinedChannels() = %v, want [#go]", joined)
	}

	if err := db.SetBotChannelJoined("#go", false); err != nil {
		t.Fatalf("SetBotChannelJoined(false) error = %v", err)
	}
	if got, _ := db.GetChannelUsers("#go"); len(got) != 0 {
		t.Errorf("users after part = %v, want none", got)
	}
	if bc, _ := db.GetBotChannel("#go"); bc.IsJoined || bc.Topic != "all about go" {
		t.Errorf("GetBotChannel() after part = %+v", bc)
	}
}

func TestResetBotChannels(t *testing.T) {
	db := newMemDB(t)
	_ = db.SetBotChannelJoined("#a", true)
	_ = db.SetBotChannelJoined("#b", true)
	_ = db.BulkUpsertChannelUsers("#a", []ChannelUserEntry{{Nick: "x"}})

	if err := db.ResetBotChannels(); err != nil {
		t.Fatalf("ResetBotChannels() error = %v", err)
	}
	if joined, _ := db.ListJoinedChannels(); len(joined) != 0 {
		t.Errorf("ListJoinedChannels() = %v, want none", joined)
	}
	if users, _ := db.GetChannelUsers("#a"); len(users) != 0 {
		t.Errorf("GetChannelUsers(#a) = %v, want none", users)
	}
}

func TestSettings(t *testing.T) {
	db := newMemDB(t)

	if v, err := db.GetSetting(SettingQuitMessage); err != nil || v != "" {
		t.Errorf("GetSetting(missing) = %q, %v", v, err)
	}
	if err := db.SetSetting(SettingQuitMessage, "bye"); err != nil {
		t.Fatalf("SetSetting() error = %v", err)
	}
	if err := db.SetSetting(SettingQuitMessage, "later"); err != nil {
		t.Fatalf("SetSetting() overwrite error = %v", err)
	}
	if v, _ := db.GetSetting(SettingQuitMessage); v != "later" {
		t.Errorf("GetSetting() = %q, want later", v)
	}
}

func TestAuditLog(t *testing.T) {
	db := newMemDB(t)

	if err := db.LogAuditAction("alice", "a@host", AuditOwnerAdd, "bob", "", "success"); err != nil {
		t.Fatalf("LogAuditAction() error = %v", err)
	}
	if err := db.LogAuditAction("carol", "", AuditJoin, "#go", "", "success"); err != nil {
		t.Fatalf("LogAuditAction() error = %v", err)
	}

	all, err := db.GetAuditLog(10, 0)
	if err != nil || len(all) != 2 || all[0].ActorNick != "carol" {
		t.Fatalf("GetAuditLog() = %v, %v", all, err)
	}

	byActor, err := db.GetAuditLogByActor("ALICE", 10, 0)
	if err != nil || len(byActor) != 1 || byActor[0].Target != "bob" || byActor[0].ActionType != AuditOwnerAdd {
		t.Errorf("GetAuditLogByActor(ALICE) = %v, %v", byActor, err)
	}
}

func TestNewTestDB(t *testing.T) {
	db := NewTestDB(t)
	if _, err := db.AddOwner("x"); err != nil {
		t.Errorf("AddOwner() on file DB error = %v", err)
	}
}

func TestParseNamesEntry(t *testing.T) {
	tests := []struct {
		entry  string
		want   ChannelUserEntry
		prefix string
	}{
		{"alice", ChannelUserEntry{Nick: "alice"}, ""},
		{"@bob", ChannelUserEntry{Nick: "bob", IsOp: true}, "@"},
		{"%carol", ChannelUserEntry{Nick: "carol", IsHalfop: true}, "%"},
		{"+dave", ChannelUserEntry{Nick: "dave", IsVoice: true}, "+"},
		{"@+erin", ChannelUserEntry{Nick: "erin", IsOp: true, IsVoice: true}, "@"},
		{"~frank", ChannelUserEntry{Nick: "frank", IsOp: true}, "@"},
	}

	for _, tt := range tests {
		t.Run(tt.entry, func(t *testing.T) {
			got := ParseNamesEntry(tt.entry)
			if got != tt.want {
				t.Errorf("ParseNamesEntry(%q) = %+v, want %+v", tt.entry, got, tt.want)
			}
			u := ChannelUser{Nick: got.Nick, IsOp: got.IsOp, IsHalfop: got.IsHalfop, IsVoice: got.IsVoice}
			if p := u.Prefix(); p != tt.prefix {
				t.Errorf("Prefix() = %q, want %q", p, tt.prefix)
			}
		})
	}
}
