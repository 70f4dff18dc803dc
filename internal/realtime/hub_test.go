package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/cineclub/internal/dto"
	"github.com/iliyamo/cineclub/internal/model"
)

func newHub() *Hub { return NewHub(zap.NewNop().Sugar()) }

func TestNotificationGoesToRecipientOnly(t *testing.T) {
	h := newHub()
	ana := h.Connect(1, true)
	bea := h.Connect(2, true)

	h.PublishNotification(model.Notification{ID: 5, UserID: 2, Message: "hola"})

	require.Len(t, bea.Events, 1)
	ev := <-bea.Events
	assert.Equal(t, EventNotification, ev.Type)
	assert.Equal(t, uint64(5), ev.Data.(dto.Notification).ID)
	assert.False(t, ev.Timestamp.IsZero())
	assert.Empty(t, ana.Events)
}

func TestChatSkipsDisabledMembers(t *testing.T) {
	h := newHub()
	on := h.Connect(1, true)
	off := h.Connect(2, false)

	assert.Equal(t, 1, h.Publish(Event{Type: EventChatMessage, ChatOnly: true}))
	assert.Len(t, on.Events, 1)
	assert.Empty(t, off.Events)
}

func TestMovieGoesToEveryone(t *testing.T) {
	h := newHub()
	a := h.Connect(1, false)
	b := h.Connect(2, true)

	h.PublishMovie(model.Movie{ID: 9, Title: "Up", CreatedBy: 1})
	assert.Len(t, a.Events, 1)
	assert.Len(t, b.Events, 1)
}

func TestSlowClientDropsEvents(t *testing.T) {
	h := newHub()
	c := h.Connect(1, true)
	for i := 0; i < clientBuffer; i++ {
		h.Publish(Event{Type: EventHeartbeat})
	}
	assert.Equal(t, 0, h.Publish(Event{Type: EventHeartbeat}))
	assert.Len(t, c.Events, clientBuffer)
}

func TestDisconnectAndClose(t *testing.T) {
	h := newHub()
	a := h.Connect(1, true)
	b := h.Connect(2, true)
	assert.Equal(t, 2, h.Clients())

	h.Disconnect(a.ID)
	_, open := <-a.Events
	assert.False(t, open)
	h.Disconnect(a.ID)
	assert.Equal(t, 1, h.Clients())

	h.Close()
	_, open = <-b.Events
	assert.False(t, open)
	assert.Nil(t, h.Connect(3, true))
	assert.Zero(t, h.Publish(Event{Type: EventHeartbeat}))
}
