package domain

import (
	"strings"
	"time"
)

// CallState tracks where a two-party negotiation stands. Ended sessions are
// removed from the table, so a session that can be looked up is live.
type CallState int

const (
	CallRinging CallState = iota
	CallActive
)

func (s CallState) String() string {
	switch s {
	case CallRinging:
		return "ringing"
	case CallActive:
		return "active"
	default:
		return "unknown"
	}
}

// CallID derives the session identifier from the two participant ids.
// It is direction-independent: CallID(a, b) == CallID(b, a), which
// guarantees at most one concurrent session per unordered user pair.
func CallID(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return strings.Join([]string{a, b}, "-")
}

// CallSession is the signaling-plane record of one in-progress call.
// It carries no media; offers, answers and ICE candidates are relayed
// opaquely between the two participants.
type CallSession struct {
	ID           string
	Participants [2]string
	State        CallState
	CreatedAt    time.Time
}

// Other returns the participant that is not userID. The second return is
// false when userID is not part of the session.
func (s CallSession) Other(userID string) (string, bool) {
	switch userID {
	case s.Participants[0]:
		return s.Participants[1], true
	case s.Participants[1]:
		return s.Participants[0], true
	default:
		return "", false
	}
}
