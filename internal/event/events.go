package event

import "github.com/google/uuid"

// Domain events published on thread mutations. This service only publishes;
// consumers (notifications, audit) subscribe from the outside.
type Event interface {
	Name() string
}

type ThreadCreated struct {
	ThreadID uuid.UUID
	ActorID  uuid.UUID
}

func (ThreadCreated) Name() string { return "thread.created" }

type ThreadUpdated struct {
	ThreadID uuid.UUID
	ActorID  uuid.UUID
}

func (ThreadUpdated) Name() string { return "thread.updated" }

type ThreadDeleted struct {
	ThreadID uuid.UUID
	ActorID  uuid.UUID
}

func (ThreadDeleted) Name() string { return "thread.deleted" }

// Publisher dispatches domain events. Dispatch is fire-and-forget: a failing
// or slow consumer never blocks or fails the mutation that emitted the event.
type Publisher interface {
	Publish(e Event)
}
