package sim

// VTimeInSec defines the time in the simulated space in the unit of second.
type VTimeInSec float64

// An Event is something going to happen in the future.
type Event interface {
	// Time returns the virtual time at which the event should fire.
	Time() VTimeInSec

	// Handler returns the handler that owns and processes the event.
	Handler() Handler

	// Canceled reports whether the owner has withdrawn the event. The
	// engine discards a canceled event without handling it.
	Canceled() bool
}

// EventBase provides the basic fields and getters for other events.
type EventBase struct {
	ID       string
	time     VTimeInSec
	handler  Handler
	canceled bool
}

// MakeEventBase creates an EventBase to be embedded in concrete event types.
//
// An event can only be scheduled by the handler that processes it. Holding a
// pointer to the event is what allows the scheduling handler to cancel it
// later.
func MakeEventBase(t VTimeInSec, handler Handler) EventBase {
	return EventBase{
		ID:      GetIDGenerator().Generate(),
		time:    t,
		handler: handler,
	}
}

// Time returns the time that the event is going to happen.
func (e *EventBase) Time() VTimeInSec {
	return e.time
}

// Handler returns the handler to handle the event.
func (e *EventBase) Handler() Handler {
	return e.handler
}

// Cancel withdraws the event. A canceled event stays in the engine's queue
// but is discarded instead of handled when its time arrives.
func (e *EventBase) Cancel() {
	e.canceled = true
}

// Canceled reports whether Cancel has been called on the event.
func (e *EventBase) Canceled() bool {
	return e.canceled
}

// A Handler defines a domain for the events.
//
// One event is always constrained to one Handler, which means the event can
// only be scheduled by one handler and can only directly modify that handler.
type Handler interface {
	Handle(e Event) error
}
