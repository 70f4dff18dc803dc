package coordinator

import (
	"github.com/iliyamo/cineclub/internal/catalog"
	"github.com/iliyamo/cineclub/internal/model"
)

// Reminders returns the movies userID watched without rating, and
// whether the reminder prompt should be shown.  A dismissed prompt
// stays hidden until the pending set changes.
func (c *Coordinator) Reminders(userID uint64) ([]model.Movie, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	pending := catalog.PendingRatings(c.movies, userID)
	out := make([]model.Movie, len(pending))
	for i, m := range pending {
		out[i] = m.Clone()
	}
	if len(out) == 0 {
		return out, false
	}
	return out, c.dismissed[userID] != catalog.Fingerprint(pending)
}

// DismissReminders hides the prompt for the current pending set.
func (c *Coordinator) DismissReminders(userID uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dismissed[userID] = catalog.Fingerprint(catalog.PendingRatings(c.movies, userID))
}
