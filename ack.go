package roomcast

import (
	"sync"
	"time"
)

// BroadcastAckCallback hands out one AckCallback per client of a fan-out and
// is told when the fan-out loop is over.
type BroadcastAckCallback interface {
	CreateClientCallback(client Client) *AckCallback
	LoopFinished()
}

// AckHandlers are the hooks of a BroadcastAck. Any of them may be nil.
type AckHandlers struct {
	OnClientSuccess func(client Client, args ...any)
	OnClientTimeout func(client Client)
	// OnAllSuccess fires once, after the loop finished and every created
	// callback succeeded. An empty fan-out fires it from LoopFinished.
	OnAllSuccess func()
}

type ackState int

const (
	ackCreating ackState = iota
	ackFinished
)

// BroadcastAck aggregates client acknowledgments for a single fan-out.
// It moves from creating to finished exactly once and is not reusable:
// CreateClientCallback returns nil after LoopFinished.
type BroadcastAck struct {
	timeout  time.Duration
	handlers AckHandlers

	mu         sync.Mutex
	state      ackState
	created    int
	pending    int
	allSuccess bool
	done       chan struct{}
}

// NewBroadcastAck creates an aggregator whose client callbacks time out
// after timeout. A zero timeout waits forever.
func NewBroadcastAck(timeout time.Duration, handlers AckHandlers) *BroadcastAck {
	return &BroadcastAck{
		timeout:  timeout,
		handlers: handlers,
		done:     make(chan struct{}),
	}
}

// CreateClientCallback registers one more pending acknowledgment for client.
func (a *BroadcastAck) CreateClientCallback(client Client) *AckCallback {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == ackFinished {
		return nil
	}
	a.created++
	a.pending++

	var once sync.Once
	return &AckCallback{
		Timeout: a.timeout,
		OnSuccess: func(args ...any) {
			once.Do(func() { a.clientSucceeded(client, args) })
		},
		OnTimeout: func() {
			if a.handlers.OnClientTimeout != nil {
				a.handlers.OnClientTimeout(client)
			}
		},
	}
}

// LoopFinished marks the end of the fan-out. Calls after the first are no-ops.
func (a *BroadcastAck) LoopFinished() {
	a.mu.Lock()
	if a.state == ackFinished {
		a.mu.Unlock()
		return
	}
	a.state = ackFinished
	close(a.done)
	fire := a.takeAllSuccessLocked()
	a.mu.Unlock()

	if fire {
		a.handlers.OnAllSuccess()
	}
}

// Finished is closed once LoopFinished has run.
func (a *BroadcastAck) Finished() <-chan struct{} {
	return a.done
}

// Created returns how many client callbacks were handed out.
func (a *BroadcastAck) Created() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.created
}

// Pending returns how many handed out callbacks have not succeeded yet.
func (a *BroadcastAck) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending
}

func (a *BroadcastAck) clientSucceeded(client Client, args []any) {
	if a.handlers.OnClientSuccess != nil {
		a.handlers.OnClientSuccess(client, args...)
	}

	a.mu.Lock()
	a.pending--
	fire := a.takeAllSuccessLocked()
	a.mu.Unlock()

	if fire {
		a.handlers.OnAllSuccess()
	}
}

func (a *BroadcastAck) takeAllSuccessLocked() bool {
	if a.state != ackFinished || a.pending != 0 || a.allSuccess {
		return false
	}
	a.allSuccess = true
	return a.handlers.OnAllSuccess != nil
}
