package coordinator

import (
	"context"
	"strconv"
	"strings"

	"github.com/iliyamo/cineclub/internal/model"
)

// Notifications returns the newest notifications of userID, loading
// them from the store on first use.
func (c *Coordinator) Notifications(ctx context.Context, userID uint64) ([]model.Notification, error) {
	c.mu.RLock()
	ns, ok := c.notifications[userID]
	c.mu.RUnlock()
	if ok {
		return append([]model.Notification(nil), ns...), nil
	}

	c.mu.Lock()
	if ns, ok := c.notifications[userID]; ok {
		c.mu.Unlock()
		return append([]model.Notification(nil), ns...), nil
	}
	c.notesLoading[userID]++
	c.mu.Unlock()

	fetched, err := c.remote.FetchNotifications(ctx, userID, c.notificationLimit)

	c.mu.Lock()
	defer c.mu.Unlock()
	pending := c.notesPending[userID]
	if c.notesLoading[userID]--; c.notesLoading[userID] == 0 {
		delete(c.notesLoading, userID)
		delete(c.notesPending, userID)
	}
	if err != nil {
		return nil, err
	}
	ns, ok = c.notifications[userID]
	if !ok {
		ns = append([]model.Notification(nil), fetched...)
		for _, n := range pending {
			ns, _ = c.prependNotification(ns, n)
		}
		c.notifications[userID] = ns
	}
	return append([]model.Notification(nil), ns...), nil
}

// ApplyNotification prepends an inbound notification to the cache of
// its recipient.  While the inbox is being fetched the notification is
// held and merged into the fetched rows.  Duplicates and users whose
// inbox is not loaded are ignored.
func (c *Coordinator) ApplyNotification(n model.Notification) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	ns, ok := c.notifications[n.UserID]
	if !ok {
		if c.notesLoading[n.UserID] == 0 {
			return false
		}
		for _, x := range c.notesPending[n.UserID] {
			if x.ID == n.ID {
				return false
			}
		}
		c.notesPending[n.UserID] = append(c.notesPending[n.UserID], n)
		return true
	}
	out, added := c.prependNotification(ns, n)
	if added {
		c.notifications[n.UserID] = out
	}
	return added
}

// prependNotification puts n in front of ns unless ns already holds its
// id, trimming to the notification limit.
func (c *Coordinator) prependNotification(ns []model.Notification, n model.Notification) ([]model.Notification, bool) {
	for _, x := range ns {
		if x.ID == n.ID {
			return ns, false
		}
	}
	out := make([]model.Notification, 0, len(ns)+1)
	out = append(out, n)
	out = append(out, ns...)
	if len(out) > c.notificationLimit {
		out = out[:c.notificationLimit]
	}
	return out, true
}

// dropNotificationsLocked forgets every cached notification about
// movieID.
func (c *Coordinator) dropNotificationsLocked(movieID uint64) {
	keep := func(ns []model.Notification) []model.Notification {
		out := make([]model.Notification, 0, len(ns))
		for _, n := range ns {
			if n.MovieID != movieID {
				out = append(out, n)
			}
		}
		return out
	}
	for uid, ns := range c.notifications {
		c.notifications[uid] = keep(ns)
	}
	for uid, ns := range c.notesPending {
		c.notesPending[uid] = keep(ns)
	}
}

// MarkNotificationRead flags one notification as read.  A failed write
// is reported but the cache keeps the read flag.
func (c *Coordinator) MarkNotificationRead(ctx context.Context, userID, id uint64) error {
	if userID == 0 {
		return ErrNoActingUser
	}
	t := c.track(KindMarkRead, userID, strconv.FormatUint(id, 10))
	c.setRead(userID, func(n model.Notification) bool { return n.ID == id })
	t.applied()

	if err := c.remote.MarkNotificationRead(ctx, id, userID); err != nil {
		t.reverted(err)
		return &MutationError{Kind: KindMarkRead, Recovery: RecoverSurface, Err: err}
	}
	t.confirmed()
	return nil
}

// MarkAllNotificationsRead flags every notification of userID as read.
func (c *Coordinator) MarkAllNotificationsRead(ctx context.Context, userID uint64) error {
	if userID == 0 {
		return ErrNoActingUser
	}
	t := c.track(KindMarkAllRead, userID, strconv.FormatUint(userID, 10))
	c.setRead(userID, func(model.Notification) bool { return true })
	t.applied()

	if err := c.remote.MarkAllNotificationsRead(ctx, userID); err != nil {
		t.reverted(err)
		return &MutationError{Kind: KindMarkAllRead, Recovery: RecoverSurface, Err: err}
	}
	t.confirmed()
	return nil
}

func (c *Coordinator) setRead(userID uint64, match func(model.Notification) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ns, ok := c.notifications[userID]
	if !ok {
		return
	}
	out := make([]model.Notification, len(ns))
	for i, n := range ns {
		if match(n) {
			n.Read = true
		}
		out[i] = n
	}
	c.notifications[userID] = out
}

// Messages returns the cached chat history, oldest first.
func (c *Coordinator) Messages(ctx context.Context) ([]model.ChatMessage, error) {
	c.mu.RLock()
	if c.messagesLoaded {
		out := append([]model.ChatMessage(nil), c.messages...)
		c.mu.RUnlock()
		return out, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	if c.messagesLoaded {
		out := append([]model.ChatMessage(nil), c.messages...)
		c.mu.Unlock()
		return out, nil
	}
	c.messagesLoading++
	c.mu.Unlock()

	msgs, err := c.remote.FetchMessages(ctx, c.messageLimit)

	c.mu.Lock()
	defer c.mu.Unlock()
	pending := c.messagesPending
	if c.messagesLoading--; c.messagesLoading == 0 {
		c.messagesPending = nil
	}
	if err != nil {
		return nil, err
	}
	if !c.messagesLoaded {
		c.messages = append([]model.ChatMessage(nil), msgs...)
		c.messagesLoaded = true
		for _, m := range pending {
			c.applyMessageLocked(m)
		}
	}
	return append([]model.ChatMessage(nil), c.messages...), nil
}

// ApplyMessage appends an inbound chat message unless one with the same
// id is already cached.  Messages that arrive while the history is
// being fetched are held and appended once it lands.
func (c *Coordinator) ApplyMessage(m model.ChatMessage) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.messagesLoaded {
		if c.messagesLoading == 0 || hasMessage(c.messagesPending, m.ID) {
			return false
		}
		c.messagesPending = append(c.messagesPending, m)
		return true
	}
	return c.applyMessageLocked(m)
}

func (c *Coordinator) applyMessageLocked(m model.ChatMessage) bool {
	if hasMessage(c.messages, m.ID) {
		return false
	}
	c.fillSender(&m)
	c.appendMessageLocked(m)
	return true
}

func hasMessage(msgs []model.ChatMessage, id uint64) bool {
	if id == 0 {
		return false
	}
	for _, x := range msgs {
		if x.ID == id {
			return true
		}
	}
	return false
}

func (c *Coordinator) fillSender(m *model.ChatMessage) {
	if m.SenderName != "" {
		return
	}
	if u, ok := c.userLocked(m.UserID); ok && u.Name != "" {
		m.SenderName = u.Name
		return
	}
	m.SenderName = anonymousSender
}

func (c *Coordinator) appendMessageLocked(m model.ChatMessage) {
	c.messages = append(c.messages, m)
	if over := len(c.messages) - c.messageLimit; over > 0 {
		c.messages = append([]model.ChatMessage(nil), c.messages[over:]...)
	}
}

// SendMessage posts body as userID.  The message shows up under a
// temporary id right away and is swapped for the stored row, or dropped
// when the write fails.
func (c *Coordinator) SendMessage(ctx context.Context, userID uint64, body string) (model.ChatMessage, error) {
	if userID == 0 {
		return model.ChatMessage{}, ErrNoActingUser
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return model.ChatMessage{}, ErrEmptyMessage
	}

	tmp := c.tempID()
	msg := model.ChatMessage{TempID: tmp, UserID: userID, Body: body, CreatedAt: c.now()}
	isTemp := func(x model.ChatMessage) bool { return x.TempID == tmp }

	t := c.track(KindSendMessage, userID, tmp)
	c.mu.Lock()
	c.fillSender(&msg)
	if c.messagesLoaded {
		c.appendMessageLocked(msg)
	}
	c.mu.Unlock()
	t.applied()

	stored, err := c.remote.InsertMessage(ctx, model.ChatMessage{UserID: userID, Body: body})
	if err != nil {
		c.mu.Lock()
		c.messages, _ = removeFirst(c.messages, isTemp)
		c.mu.Unlock()
		t.reverted(err)
		return model.ChatMessage{}, &MutationError{Kind: KindSendMessage, Recovery: RecoverDiscard, Err: err}
	}
	if stored.SenderName == "" {
		stored.SenderName = msg.SenderName
	}

	c.mu.Lock()
	if hasMessage(c.messages, stored.ID) {
		c.messages, _ = removeFirst(c.messages, isTemp)
	} else {
		for i := range c.messages {
			if c.messages[i].TempID == tmp {
				c.messages[i] = stored
				break
			}
		}
	}
	c.mu.Unlock()
	t.confirmed()
	return stored, nil
}
