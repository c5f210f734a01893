// Package roomcast is the broadcast layer of a room based real-time
// messaging server that can run as several cooperating nodes.
//
// A broadcast works on a snapshot of clients, a BroadcastGroup. Sending to a
// group delivers the packet to every client of the snapshot in order and then
// publishes one DispatchMessage per (namespace, room) entry of the snapshot on
// the shared PubSub bus, so other nodes can deliver the same packet to their
// own members of those rooms.
//
// # Quick Start
//
//	bus := pubsub.NewMemory()
//	server, err := roomcast.NewServer(&roomcast.Config{PubSub: bus})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	server.OnConnect(func(socket *roomcast.Socket) {
//	    socket.On("join", func(args ...any) {
//	        if room, ok := args[0].(string); ok {
//	            socket.Join(room)
//	        }
//	    })
//	})
//
//	http.Handle("/socket.io/", server)
//	http.ListenAndServe(":3000", nil)
//
// # Broadcasting
//
//	// Every socket of every namespace
//	server.BroadcastOperations().SendEvent("news", "hello")
//
//	// Sockets of the default namespace in room1 or room2
//	server.RoomOperations("room1", "room2").SendMessage("hi")
//
//	// Plain disconnect, local to this node
//	server.Of("/admin").BroadcastOperations().Disconnect()
//
// The room index of a group is built once at construction. By default a room
// shared by several clients of the snapshot is published once per client;
// Config.DedupRooms (or WithRoomDedup) publishes it once.
//
// # Acknowledgments
//
// The Ack variants hand every client its own AckCallback taken from a
// BroadcastAckCallback and call LoopFinished once the loop is over. They do
// not publish to other nodes.
//
//	ack := roomcast.NewBroadcastAck(5*time.Second, roomcast.AckHandlers{
//	    OnClientSuccess: func(c roomcast.Client, args ...any) { ... },
//	    OnAllSuccess:    func() { ... },
//	})
//	server.RoomOperations("room1").SendEventAck("question", ack, "ready?")
//
// # Thread Safety
//
// Groups are read-only after construction and may be used from several
// goroutines. Event handlers run in their own goroutines.
package roomcast
