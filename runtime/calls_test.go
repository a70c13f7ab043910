package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"

	"chat-relay/domain"
	"chat-relay/errors"
)

func TestCallTable_Initiate_Creates_Ringing_Session(t *testing.T) {
	req := require.New(t)
	calls := NewCallTable()

	// When alice calls bob
	session, err := calls.Initiate("alice", "bob")
	req.NoError(err)

	// Then the session id is the sorted participant pair
	req.Equal(domain.CallID("bob", "alice"), session.ID)
	req.Equal(domain.CallRinging, session.State)
	other, ok := session.Other("alice")
	req.True(ok)
	req.Equal("bob", other)

	// And both participants are now in a call
	req.True(calls.InCall("alice"))
	req.True(calls.InCall("bob"))
}

func TestCallTable_Caller_Already_In_Call(t *testing.T) {
	req := require.New(t)
	calls := NewCallTable()

	// Given alice is already calling bob
	_, err := calls.Initiate("alice", "bob")
	req.NoError(err)

	// When alice tries to start a second call
	_, err = calls.Initiate("alice", "clara")

	// Then the attempt fails and no second session exists
	req.ErrorIs(err, errors.ErrAlreadyInCall)
	req.False(calls.InCall("clara"))
}

func TestCallTable_Callee_Busy(t *testing.T) {
	req := require.New(t)
	calls := NewCallTable()

	// Given bob is in a call with clara
	_, err := calls.Initiate("bob", "clara")
	req.NoError(err)

	// When alice tries to call bob
	_, err = calls.Initiate("alice", "bob")

	req.ErrorIs(err, errors.ErrUserUnavailable)
	req.False(calls.InCall("alice"))
}

func TestCallTable_Crossed_Initiate_Same_Pair(t *testing.T) {
	req := require.New(t)
	calls := NewCallTable()

	// Given alice called bob
	first, err := calls.Initiate("alice", "bob")
	req.NoError(err)

	// When bob calls alice back before answering
	_, err = calls.Initiate("bob", "alice")

	// Then the crossed attempt fails instead of duplicating the session
	req.ErrorIs(err, errors.ErrAlreadyInCall)
	session, ok := calls.Get(first.ID)
	req.True(ok)
	req.Equal(domain.CallRinging, session.State)
}

func TestCallTable_Accept_Activates_Session(t *testing.T) {
	req := require.New(t)
	calls := NewCallTable()

	session, err := calls.Initiate("alice", "bob")
	req.NoError(err)

	// When the callee accepts
	accepted, err := calls.Accept(session.ID)
	req.NoError(err)
	req.Equal(domain.CallActive, accepted.State)

	// Then accepting a vanished session fails with the expiry error
	_, err = calls.Accept("nobody-nothing")
	req.ErrorIs(err, errors.ErrCallExpired)
}

func TestCallTable_End_Frees_Both_Participants(t *testing.T) {
	req := require.New(t)
	calls := NewCallTable()

	session, err := calls.Initiate("alice", "bob")
	req.NoError(err)

	// When the call ends
	ended, ok := calls.End(session.ID)
	req.True(ok)
	req.Equal(session.ID, ended.ID)

	// Then both sides are free to call again immediately
	req.False(calls.InCall("alice"))
	req.False(calls.InCall("bob"))
	_, err = calls.Initiate("alice", "clara")
	req.NoError(err)

	// And ending twice reports the session as gone
	_, ok = calls.End(session.ID)
	req.False(ok)
}

func TestCallID_Is_Direction_Independent(t *testing.T) {
	req := require.New(t)

	req.Equal(domain.CallID("alice", "bob"), domain.CallID("bob", "alice"))
	req.Equal("alice-bob", domain.CallID("bob", "alice"))
}

func TestCallSession_Other(t *testing.T) {
	req := require.New(t)
	session := domain.CallSession{Participants: [2]string{"alice", "bob"}}

	other, ok := session.Other("alice")
	req.True(ok)
	req.Equal("bob", other)

	_, ok = session.Other("clara")
	req.False(ok)
}
