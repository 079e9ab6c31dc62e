package bot

import "sync"

// GuildTracker remembers which guilds had their commands synchronized since the last Ready,
// so a GuildCreate that merely follows Ready does not trigger a second pass.
type GuildTracker struct {
	mu     sync.Mutex
	synced map[string]bool
}

// NewGuildTracker creates an empty tracker.
func NewGuildTracker() *GuildTracker {
	return &GuildTracker{synced: make(map[string]bool)}
}

// Reset forgets every guild and marks the given ones as synchronized.
func (t *GuildTracker) Reset(guildIDs []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.synced = make(map[string]bool, len(guildIDs))
	for _, id := range guildIDs {
		t.synced[id] = true
	}
}

// MarkAvailable records the guild and reports whether it still needs a synchronization pass.
func (t *GuildTracker) MarkAvailable(guildID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.synced[guildID] {
		return false
	}
	t.synced[guildID] = true
	return true
}

// Forget drops the guild, so its next availability triggers a pass again.
func (t *GuildTracker) Forget(guildID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.synced, guildID)
}
