package events_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"course-classroom/internal/domain"
	"course-classroom/internal/dto"
	"course-classroom/internal/events"
)

type fakePeer struct {
	courseID uuid.UUID
	user     *domain.User
	mu       sync.Mutex
	sent     []dto.OutboundEvent
}

func (p *fakePeer) CourseID() uuid.UUID { return p.courseID }
func (p *fakePeer) User() *domain.User  { return p.user }
func (p *fakePeer) Send(ev dto.OutboundEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, ev)
}

type fakeRooms struct {
	mu     sync.Mutex
	events []dto.OutboundEvent
	rooms  []uuid.UUID
}

func (r *fakeRooms) Broadcast(_ context.Context, courseID uuid.UUID, ev dto.OutboundEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms = append(r.rooms, courseID)
	r.events = append(r.events, ev)
}

func newDispatchFixture() (*events.Dispatcher, *fakeRooms, *fakePeer, *int) {
	rooms := &fakeRooms{}
	d := events.NewDispatcher(rooms)
	calls := new(int)
	d.Register(dto.EventChat, events.HandlerFunc(func(_ context.Context, courseID uuid.UUID, sender *domain.User, data json.RawMessage) dto.OutboundEvent {
		*calls++
		var in map[string]any
		_ = json.Unmarshal(data, &in)
		if in["fail"] == true {
			return dto.ErrorEvent(dto.MsgInvalidData)
		}
		if in["panic"] == true {
			panic("boom")
		}
		return dto.OutboundEvent{Type: "chat", Data: map[string]any{"user": sender.String(), "course": courseID.String()}}
	}))
	peer := &fakePeer{courseID: uuid.New(), user: &domain.User{ID: uuid.New(), Username: "carol"}}
	return d, rooms, peer, calls
}

func TestDispatcher_MalformedInput(t *testing.T) {
	inputs := []string{
		`{"type":"bogus","data":{}}`,
		`{"type":"chat","data":"x"}`,
		`{"type":"chat"}`,
		`not json`,
		``,
	}
	for _, raw := range inputs {
		t.Run(raw, func(t *testing.T) {
			d, rooms, peer, calls := newDispatchFixture()

			d.Dispatch(context.Background(), peer, []byte(raw))

			require.Len(t, peer.sent, 1, "应只回一个错误帧")
			assert.Equal(t, dto.ErrorEvent("Error validating request"), peer.sent[0])
			assert.Zero(t, *calls)
			assert.Empty(t, rooms.events)
		})
	}
}

func TestDispatcher_UnregisteredTypeIsNoop(t *testing.T) {
	d, rooms, peer, calls := newDispatchFixture()

	d.Dispatch(context.Background(), peer, []byte(`{"type":"announcement","data":{"subject":"s"}}`))

	assert.Empty(t, peer.sent)
	assert.Empty(t, rooms.events)
	assert.Zero(t, *calls)
}

func TestDispatcher_SuccessBroadcastsToRoom(t *testing.T) {
	d, rooms, peer, calls := newDispatchFixture()

	d.Dispatch(context.Background(), peer, []byte(`{"type":"chat","data":{}}`))

	assert.Equal(t, 1, *calls)
	assert.Empty(t, peer.sent, "成功结果通过房间广播送达，不单独发给发送者")
	require.Len(t, rooms.events, 1)
	assert.Equal(t, peer.courseID, rooms.rooms[0])
	assert.Equal(t, "chat", rooms.events[0].Type)
	assert.Equal(t, map[string]any{"user": "carol", "course": peer.courseID.String()}, rooms.events[0].Data)
}

func TestDispatcher_HandlerErrorGoesToSenderOnly(t *testing.T) {
	d, rooms, peer, _ := newDispatchFixture()

	d.Dispatch(context.Background(), peer, []byte(`{"type":"chat","data":{"fail":true}}`))

	require.Len(t, peer.sent, 1)
	assert.Equal(t, dto.ErrorEvent(dto.MsgInvalidData), peer.sent[0])
	assert.Empty(t, rooms.events)
}

func TestDispatcher_HandlerPanicBecomesUnknown(t *testing.T) {
	d, rooms, peer, _ := newDispatchFixture()

	assert.NotPanics(t, func() {
		d.Dispatch(context.Background(), peer, []byte(`{"type":"chat","data":{"panic":true}}`))
	})

	require.Len(t, peer.sent, 1)
	assert.Equal(t, dto.ErrorEvent("unknown"), peer.sent[0])
	assert.Empty(t, rooms.events)
}

func TestDispatcher_RegisterUnknownTypePanics(t *testing.T) {
	d := events.NewDispatcher(&fakeRooms{})
	assert.Panics(t, func() {
		d.Register("bogus", events.HandlerFunc(func(context.Context, uuid.UUID, *domain.User, json.RawMessage) dto.OutboundEvent {
			return dto.OutboundEvent{}
		}))
	})
}
