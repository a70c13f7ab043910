package runtime

import "sync"

// Presence is the set of users currently viewing a chat. Mutations are
// idempotent set operations; every mutation is followed by a snapshot
// broadcast at the coordinator level (whole snapshot, not diffed — small
// sets in this domain).
type Presence struct {
	mu     sync.RWMutex
	online map[string]struct{}
}

func NewPresence() *Presence {
	return &Presence{online: make(map[string]struct{})}
}

func (p *Presence) MarkJoined(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online[userID] = struct{}{}
}

func (p *Presence) MarkLeft(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.online, userID)
}

// MarkDisconnected removes the user even if MarkLeft was never called:
// a dropped connection implies leaving whatever chat was open.
func (p *Presence) MarkDisconnected(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.online, userID)
}

// Snapshot returns the current online set, in no particular order.
func (p *Presence) Snapshot() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	users := make([]string, 0, len(p.online))
	for id := range p.online {
		users = append(users, id)
	}
	return users
}
