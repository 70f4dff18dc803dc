package catalog

import (
	"time"

	"github.com/iliyamo/cineclub/internal/model"
)

// UnreadNotifications counts notifications not yet marked read.
func UnreadNotifications(ns []model.Notification) int {
	n := 0
	for _, x := range ns {
		if !x.Read {
			n++
		}
	}
	return n
}

// UnreadMessages counts chat messages from other members posted after
// since.  A zero since counts every foreign message.
func UnreadMessages(msgs []model.ChatMessage, userID uint64, since time.Time) int {
	n := 0
	for _, m := range msgs {
		if m.UserID == userID {
			continue
		}
		if since.IsZero() || m.CreatedAt.After(since) {
			n++
		}
	}
	return n
}
