package runtime

import (
	chaterrors "chat-relay/errors"
	"sync"
	"time"

	"chat-relay/domain"
)

// CallTable is the single authoritative owner of call sessions. A user's
// in-call status is derived from the byUser index, which is mutated only
// together with the session map inside one critical section, so the two can
// never desynchronize.
type CallTable struct {
	mu       sync.Mutex
	sessions map[string]*domain.CallSession
	byUser   map[string]string // userID -> callID
}

func NewCallTable() *CallTable {
	return &CallTable{
		sessions: make(map[string]*domain.CallSession),
		byUser:   make(map[string]string),
	}
}

// Initiate creates a ringing session between caller and callee.
// Fails if the caller is already in a call or the callee is busy; the
// deterministic call id makes a crossed initiate between the same pair fail
// on the in-call check rather than create a duplicate session.
func (t *CallTable) Initiate(caller, callee string) (domain.CallSession, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, busy := t.byUser[caller]; busy {
		return domain.CallSession{}, chaterrors.ErrAlreadyInCall
	}
	if _, busy := t.byUser[callee]; busy {
		return domain.CallSession{}, chaterrors.ErrUserUnavailable
	}

	session := &domain.CallSession{
		ID:           domain.CallID(caller, callee),
		Participants: [2]string{caller, callee},
		State:        domain.CallRinging,
		CreatedAt:    time.Now().UTC(),
	}
	t.sessions[session.ID] = session
	t.byUser[caller] = session.ID
	t.byUser[callee] = session.ID
	return *session, nil
}

// Accept moves the session to the active state.
func (t *CallTable) Accept(callID string) (domain.CallSession, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	session, ok := t.sessions[callID]
	if !ok {
		return domain.CallSession{}, chaterrors.ErrCallExpired
	}
	session.State = domain.CallActive
	return *session, nil
}

// End destroys the session and clears both participants' in-call status in
// the same critical section. Returns false if no such session exists, which
// callers treat as an idempotent no-op or an error depending on the event.
func (t *CallTable) End(callID string) (domain.CallSession, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	session, ok := t.sessions[callID]
	if !ok {
		return domain.CallSession{}, false
	}
	delete(t.sessions, callID)
	for _, participant := range session.Participants {
		if t.byUser[participant] == callID {
			delete(t.byUser, participant)
		}
	}
	return *session, true
}

// Get returns a copy of the session, if it exists.
func (t *CallTable) Get(callID string) (domain.CallSession, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	session, ok := t.sessions[callID]
	if !ok {
		return domain.CallSession{}, false
	}
	return *session, true
}

// CallFor returns the id of the call userID participates in, if any.
func (t *CallTable) CallFor(userID string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	callID, ok := t.byUser[userID]
	return callID, ok
}

// InCall derives the user's in-call status from the session index.
func (t *CallTable) InCall(userID string) bool {
	_, ok := t.CallFor(userID)
	return ok
}
