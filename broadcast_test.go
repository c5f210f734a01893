package roomcast_test

import (
	"context"
	"errors"
	"iter"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ramory-l/roomcast"
	"github.com/ramory-l/roomcast/mocks"
)

func newMockClient(ctrl *gomock.Controller, id, namespace string, rooms ...string) *mocks.MockClient {
	ns := mocks.NewMockNamespaceView(ctrl)
	ns.EXPECT().Name().Return(namespace).AnyTimes()
	ns.EXPECT().ClientRooms(id).Return(rooms).AnyTimes()

	client := mocks.NewMockClient(ctrl)
	client.EXPECT().ID().Return(id).AnyTimes()
	client.EXPECT().Namespace().Return(ns).AnyTimes()
	return client
}

func clientsOf(clients ...*mocks.MockClient) iter.Seq[roomcast.Client] {
	return func(yield func(roomcast.Client) bool) {
		for _, c := range clients {
			if !yield(c) {
				return
			}
		}
	}
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []*roomcast.DispatchMessage
}

func (p *recordingPublisher) Publish(_ context.Context, topic roomcast.Topic, msg *roomcast.DispatchMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if topic == roomcast.TopicDispatch {
		p.msgs = append(p.msgs, msg)
	}
	return nil
}

func (p *recordingPublisher) pairs() [][2]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][2]string, 0, len(p.msgs))
	for _, m := range p.msgs {
		out = append(out, [2]string{m.Namespace, m.Room})
	}
	return out
}

type recordingAck struct {
	events []string
}

func (a *recordingAck) CreateClientCallback(client roomcast.Client) *roomcast.AckCallback {
	a.events = append(a.events, "create:"+client.ID())
	return &roomcast.AckCallback{}
}

func (a *recordingAck) LoopFinished() {
	a.events = append(a.events, "finished")
}

func TestBroadcastGroup_SendEvent_SharedRoomIsPublishedPerClient(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := &recordingPublisher{}
	payload := map[string]any{"n": 1}

	a := newMockClient(ctrl, "A", "/", "r1", "r2")
	b := newMockClient(ctrl, "B", "/", "r2")

	gomock.InOrder(
		a.EXPECT().SendEvent("ping", payload).Times(1),
		b.EXPECT().SendEvent("ping", payload).Times(1),
	)

	group := roomcast.NewBroadcastGroup(context.Background(), clientsOf(a, b), pub)
	group.SendEvent("ping", payload)

	require.Equal(t, [][2]string{{"/", "r1"}, {"/", "r2"}, {"/", "r2"}}, pub.pairs())

	for _, msg := range pub.msgs {
		require.Equal(t, roomcast.PacketTypeEvent, msg.Packet.Type)
		require.Equal(t, "ping", msg.Packet.Name)
		require.Equal(t, []any{payload}, msg.Packet.Args)
	}
}

func TestBroadcastGroup_WithRoomDedup_PublishesEachPairOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := &recordingPublisher{}

	a := newMockClient(ctrl, "A", "/", "r1", "r2")
	b := newMockClient(ctrl, "B", "/", "r2")
	a.EXPECT().SendMessage("hi")
	b.EXPECT().SendMessage("hi")

	group := roomcast.NewBroadcastGroup(context.Background(), clientsOf(a, b), pub, roomcast.WithRoomDedup(true))
	group.SendMessage("hi")

	require.Equal(t, [][2]string{{"/", "r1"}, {"/", "r2"}}, pub.pairs())
}

func TestBroadcastGroup_Send_SameRoomTwoClients(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := &recordingPublisher{}
	packet := roomcast.NewMessagePacket("hello")

	a := newMockClient(ctrl, "A", "/", "lobby")
	b := newMockClient(ctrl, "B", "/", "lobby")
	gomock.InOrder(
		a.EXPECT().Send(packet),
		b.EXPECT().Send(packet),
	)

	roomcast.NewBroadcastGroup(context.Background(), clientsOf(a, b), pub, roomcast.WithNodeID("node-1")).Send(packet)

	require.Equal(t, [][2]string{{"/", "lobby"}, {"/", "lobby"}}, pub.pairs())
	for _, msg := range pub.msgs {
		require.Same(t, packet, msg.Packet)
		require.Equal(t, "node-1", msg.NodeID)
	}
}

func TestBroadcastGroup_NamespacesKeepFirstSeenOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := &recordingPublisher{}

	a := newMockClient(ctrl, "A", "/chat", "x")
	b := newMockClient(ctrl, "B", "/", "y")
	c := newMockClient(ctrl, "C", "/chat", "z")
	for _, cl := range []*mocks.MockClient{a, b, c} {
		cl.EXPECT().SendJSON(gomock.Any())
	}

	roomcast.NewBroadcastGroup(context.Background(), clientsOf(a, b, c), pub).SendJSON(map[string]int{"v": 1})

	require.Equal(t, [][2]string{{"/chat", "x"}, {"/chat", "z"}, {"/", "y"}}, pub.pairs())
}

func TestBroadcastGroup_EmptySnapshot(t *testing.T) {
	pub := &recordingPublisher{}
	group := roomcast.NewBroadcastGroup(context.Background(), clientsOf(), pub)

	group.SendEvent("ping")
	group.SendMessage("hi")
	group.Disconnect()
	require.Empty(t, pub.pairs())

	allSuccess := 0
	ack := roomcast.NewBroadcastAck(0, roomcast.AckHandlers{OnAllSuccess: func() { allSuccess++ }})
	group.SendEventAck("ping", ack)

	require.Equal(t, 1, allSuccess)
	require.Equal(t, 0, ack.Created())
	select {
	case <-ack.Finished():
	default:
		t.Fatal("loop not finished")
	}
}

func TestBroadcastGroup_NilSequence(t *testing.T) {
	group := roomcast.NewBroadcastGroup(context.Background(), nil, nil)
	require.Empty(t, group.Clients())
	require.Equal(t, 0, group.Rooms().Len())
	group.SendMessage("nobody")
}

func TestBroadcastGroup_AckVariantsCreateOneCallbackPerClient(t *testing.T) {
	tests := []struct {
		name   string
		expect func(c *mocks.MockClient)
		send   func(g *roomcast.BroadcastGroup, ack roomcast.BroadcastAckCallback)
	}{
		{
			name:   "message",
			expect: func(c *mocks.MockClient) { c.EXPECT().SendMessageAck("hi", gomock.Not(gomock.Nil())) },
			send:   func(g *roomcast.BroadcastGroup, ack roomcast.BroadcastAckCallback) { g.SendMessageAck("hi", ack) },
		},
		{
			name:   "json",
			expect: func(c *mocks.MockClient) { c.EXPECT().SendJSONAck(gomock.Any(), gomock.Not(gomock.Nil())) },
			send:   func(g *roomcast.BroadcastGroup, ack roomcast.BroadcastAckCallback) { g.SendJSONAck([]int{1}, ack) },
		},
		{
			name:   "packet",
			expect: func(c *mocks.MockClient) { c.EXPECT().SendAck(gomock.Any(), gomock.Not(gomock.Nil())) },
			send: func(g *roomcast.BroadcastGroup, ack roomcast.BroadcastAckCallback) {
				g.SendAck(roomcast.NewMessagePacket("p"), ack)
			},
		},
		{
			name:   "event",
			expect: func(c *mocks.MockClient) { c.EXPECT().SendEventAck("q", gomock.Not(gomock.Nil()), "arg") },
			send:   func(g *roomcast.BroadcastGroup, ack roomcast.BroadcastAckCallback) { g.SendEventAck("q", ack, "arg") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			pub := &recordingPublisher{}

			a := newMockClient(ctrl, "A", "/", "r1")
			b := newMockClient(ctrl, "B", "/", "r1")
			tt.expect(a)
			tt.expect(b)

			ack := &recordingAck{}
			tt.send(roomcast.NewBroadcastGroup(context.Background(), clientsOf(a, b), pub), ack)

			require.Equal(t, []string{"create:A", "create:B", "finished"}, ack.events)
			require.Empty(t, pub.pairs(), "ack broadcasts stay local")
		})
	}
}

func TestBroadcastGroup_Disconnect_IsLocalOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := mocks.NewMockPublisher(ctrl)
	pub.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	a := newMockClient(ctrl, "A", "/", "r1")
	b := newMockClient(ctrl, "B", "/", "r2")
	gomock.InOrder(
		a.EXPECT().Disconnect().Times(1),
		b.EXPECT().Disconnect().Times(1),
	)

	roomcast.NewBroadcastGroup(context.Background(), clientsOf(a, b), pub).Disconnect()
}

func TestBroadcastGroup_PublishFailureDoesNotStopDispatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := mocks.NewMockPublisher(ctrl)

	a := newMockClient(ctrl, "A", "/", "r1", "r2")
	b := newMockClient(ctrl, "B", "/", "r3")
	a.EXPECT().SendMessage("x")
	b.EXPECT().SendMessage("x")

	var rooms []string
	pub.EXPECT().Publish(gomock.Any(), roomcast.TopicDispatch, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ roomcast.Topic, msg *roomcast.DispatchMessage) error {
			rooms = append(rooms, msg.Room)
			return errors.New("bus down")
		}).
		Times(3)

	roomcast.NewBroadcastGroup(context.Background(), clientsOf(a, b), pub).SendMessage("x")

	require.Equal(t, []string{"r1", "r2", "r3"}, rooms)
}

func TestBroadcastGroup_RoomIndexIsBuiltOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := &recordingPublisher{}

	ns := mocks.NewMockNamespaceView(ctrl)
	ns.EXPECT().Name().Return("/").AnyTimes()
	ns.EXPECT().ClientRooms("A").Return([]string{"r1"}).Times(1)

	a := mocks.NewMockClient(ctrl)
	a.EXPECT().ID().Return("A").AnyTimes()
	a.EXPECT().Namespace().Return(ns).AnyTimes()
	a.EXPECT().SendMessage(gomock.Any()).Times(2)

	traversals := 0
	seq := func(yield func(roomcast.Client) bool) {
		traversals++
		yield(a)
	}

	group := roomcast.NewBroadcastGroup(context.Background(), seq, pub)
	group.SendMessage("one")
	group.SendMessage("two")

	require.Equal(t, 1, traversals)
	require.Equal(t, [][2]string{{"/", "r1"}, {"/", "r1"}}, pub.pairs())
}

func TestBroadcastGroup_ConcurrentSends(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := &recordingPublisher{}
	const senders = 8

	a := newMockClient(ctrl, "A", "/", "r1")
	b := newMockClient(ctrl, "B", "/", "r2")
	a.EXPECT().SendMessage("m").Times(senders)
	b.EXPECT().SendMessage("m").Times(senders)

	group := roomcast.NewBroadcastGroup(context.Background(), clientsOf(a, b), pub)

	var wg sync.WaitGroup
	for range senders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			group.SendMessage("m")
		}()
	}
	wg.Wait()

	require.Len(t, pub.pairs(), 2*senders)
}

func TestBuildRoomIndex_IsIdempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	clients := []roomcast.Client{
		newMockClient(ctrl, "A", "/", "r1", "r2"),
		newMockClient(ctrl, "B", "/admin", "ops"),
		newMockClient(ctrl, "C", "/", "r2"),
	}

	first := roomcast.BuildRoomIndex(clients, false)
	second := roomcast.BuildRoomIndex(clients, false)

	require.Equal(t, first, second)
	require.Equal(t, []string{"/", "/admin"}, first.Namespaces())
	require.Equal(t, []string{"r1", "r2", "r2"}, first.Rooms("/"))
	require.Equal(t, 4, first.Len())

	deduped := roomcast.BuildRoomIndex(clients, true)
	require.Equal(t, []string{"r1", "r2"}, deduped.Rooms("/"))
	require.Equal(t, 3, deduped.Len())
}
