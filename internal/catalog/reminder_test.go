package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/cineclub/internal/model"
)

func TestPendingRatings(t *testing.T) {
	movies := []model.Movie{
		{ID: 1, Views: []model.ViewMark{watched(alice)}},
		{ID: 2, Views: []model.ViewMark{watched(alice)}, Ratings: []model.Rating{rated(alice, 3)}},
		{ID: 3, Views: []model.ViewMark{unwatched(alice)}},
		{ID: 4, Views: []model.ViewMark{watched(alice)}, Ratings: []model.Rating{rated(bob, 5)}},
		{ID: 5},
	}

	assert.Equal(t, []uint64{1, 4}, ids(PendingRatings(movies, alice)))
	assert.Empty(t, PendingRatings(movies, bob))
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, "", Fingerprint(nil))
	assert.Equal(t, "1,4", Fingerprint([]model.Movie{{ID: 1}, {ID: 4}}))
	assert.Equal(t, "1,tmp", Fingerprint([]model.Movie{{ID: 1}, {TempID: "tmp"}}))
}

func TestUnreadCounters(t *testing.T) {
	ns := []model.Notification{{ID: 1}, {ID: 2, Read: true}, {ID: 3}}
	assert.Equal(t, 2, UnreadNotifications(ns))

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	msgs := []model.ChatMessage{
		{ID: 1, UserID: bob, CreatedAt: base},
		{ID: 2, UserID: alice, CreatedAt: base.Add(time.Minute)},
		{ID: 3, UserID: carol, CreatedAt: base.Add(2 * time.Minute)},
	}
	assert.Equal(t, 2, UnreadMessages(msgs, alice, time.Time{}))
	assert.Equal(t, 1, UnreadMessages(msgs, alice, base))
	assert.Equal(t, 0, UnreadMessages(msgs, alice, base.Add(time.Hour)))
}
