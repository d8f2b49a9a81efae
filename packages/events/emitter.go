package events

// Subscription identifies a registered listener
type Subscription int

type subscriber struct {
	id       Subscription
	listener Listener
}

// Emitter delivers events synchronously to its listeners, in subscription
// order. It is not safe for concurrent use; the host engine is expected to
// emit from a single goroutine.
type Emitter struct {
	next        Subscription
	subscribers []subscriber
}

func NewEmitter() *Emitter {
	return &Emitter{}
}

// Subscribe registers l and returns a handle for Unsubscribe.
func (e *Emitter) Subscribe(l Listener) Subscription {
	e.next++
	e.subscribers = append(e.subscribers, subscriber{id: e.next, listener: l})
	return e.next
}

// Unsubscribe removes a listener. Unknown handles are ignored.
func (e *Emitter) Unsubscribe(id Subscription) {
	for i, s := range e.subscribers {
		if s.id == id {
			e.subscribers = append(e.subscribers[:i:i], e.subscribers[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered listeners.
func (e *Emitter) Len() int {
	return len(e.subscribers)
}

func (e *Emitter) each(fn func(Listener)) {
	for _, s := range e.subscribers {
		fn(s.listener)
	}
}

func (e *Emitter) EmitRunBegin() {
	e.each(func(l Listener) { l.OnRunBegin() })
}

func (e *Emitter) EmitSuiteBegin(s *Suite) {
	e.each(func(l Listener) { l.OnSuiteBegin(s) })
}

func (e *Emitter) EmitSuiteEnd(s *Suite) {
	e.each(func(l Listener) { l.OnSuiteEnd(s) })
}

func (e *Emitter) EmitTestPass(t *Test) {
	e.each(func(l Listener) { l.OnTestPass(t) })
}

func (e *Emitter) EmitTestFail(t *Test, f *Failure) {
	e.each(func(l Listener) { l.OnTestFail(t, f) })
}

func (e *Emitter) EmitTestPending(t *Test) {
	e.each(func(l Listener) { l.OnTestPending(t) })
}

func (e *Emitter) EmitRunEnd() {
	e.each(func(l Listener) { l.OnRunEnd() })
}
