package coordinator

import (
	"strconv"
	"time"
)

// Phase is the lifecycle of one mutation: idle, then applied to the
// cache, then either confirmed by the store or reverted.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseApplied
	PhaseConfirmed
	PhaseReverted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseApplied:
		return "applied"
	case PhaseConfirmed:
		return "confirmed"
	case PhaseReverted:
		return "reverted"
	}
	return "phase(" + strconv.Itoa(int(p)) + ")"
}

// Kind names the user action behind a mutation.
type Kind string

const (
	KindToggleView  Kind = "toggle_view"
	KindSetRating   Kind = "set_rating"
	KindAddMovie    Kind = "add_movie"
	KindEditMovie   Kind = "edit_movie"
	KindDeleteMovie Kind = "delete_movie"
	KindMarkRead    Kind = "mark_notification_read"
	KindMarkAllRead Kind = "mark_all_notifications_read"
	KindSendMessage Kind = "send_message"
)

// Recovery is what happens to the cache when the remote write fails.
type Recovery int

const (
	// RecoverRefetch reloads the whole movie cache from the store.
	RecoverRefetch Recovery = iota
	// RecoverDiscard drops the placeholder the mutation created.
	RecoverDiscard
	// RecoverSurface keeps the optimistic state and only reports the error.
	RecoverSurface
)

func (r Recovery) String() string {
	switch r {
	case RecoverRefetch:
		return "refetch"
	case RecoverDiscard:
		return "discard"
	case RecoverSurface:
		return "surface"
	}
	return "recovery(" + strconv.Itoa(int(r)) + ")"
}

// Mutation is reported to the observer on every phase transition.
type Mutation struct {
	ID     string
	Kind   Kind
	UserID uint64
	Key    string
	Phase  Phase
	Err    error
	At     time.Time
}

// tracker walks one mutation through its phases.
type tracker struct {
	c *Coordinator
	m Mutation
}

func (c *Coordinator) track(kind Kind, userID uint64, key string) *tracker {
	return &tracker{c: c, m: Mutation{
		ID:     c.tempID(),
		Kind:   kind,
		UserID: userID,
		Key:    key,
		Phase:  PhaseIdle,
		At:     c.now(),
	}}
}

func (t *tracker) move(p Phase, err error) {
	t.m.Phase = p
	t.m.Err = err
	t.m.At = t.c.now()
	if err != nil {
		t.c.logger.Warnw("mutation", "id", t.m.ID, "kind", t.m.Kind, "user_id", t.m.UserID, "key", t.m.Key, "phase", p.String(), "error", err)
	} else {
		t.c.logger.Debugw("mutation", "id", t.m.ID, "kind", t.m.Kind, "user_id", t.m.UserID, "key", t.m.Key, "phase", p.String())
	}
	if t.c.observer != nil {
		t.c.observer(t.m)
	}
}

func (t *tracker) applied() { t.move(PhaseApplied, nil) }
func (t *tracker) confirmed() { t.move(PhaseConfirmed, nil) }
func (t *tracker) reverted(err error) { t.move(PhaseReverted, err) }
