package irc

// Numeric replies handled by the dispatcher
const (
	RplNoTopic   = "331"
	RplTopic     = "332"
	RplNamReply  = "353"
	RplMotd      = "372"
	RplEndOfMotd = "376"

	ErrNoNicknameGiven  = "431"
	ErrErroneusNickname = "432"
	ErrNicknameInUse    = "433"
	ErrNickCollision    = "436"
	ErrUnavailResource  = "437"
	ErrRestricted       = "484"
)

// errorNames maps error numerics to the names delivered through the Error event
var errorNames = map[string]string{
	ErrNoNicknameGiven:  "ERR_NONICKNAMEGIVEN",
	ErrErroneusNickname: "ERR_ERRONEUSNICKNAME",
	ErrNicknameInUse:    "ERR_NICKNAMEINUSE",
	ErrNickCollision:    "ERR_NICKCOLLISION",
	ErrUnavailResource:  "ERR_UNAVAILRESOURCE",
	ErrRestricted:       "ERR_RESTRICTED",
}

// ErrorName returns the symbolic name for an error numeric, and whether the
// numeric is one the client reports
func ErrorName(code string) (string, bool) {
	name, ok := errorNames[code]
	return name, ok
}
