package sim

import (
	"log"
	"reflect"
	"sync"
)

// A SerialEngine is an Engine that runs all events one after another.
type SerialEngine struct {
	HookableBase

	timeLock sync.RWMutex
	time     VTimeInSec

	queue          EventQueue
	secondaryQueue EventQueue

	pauseLock sync.Mutex

	simulationEndHandlers []SimulationEndHandler
}

// NewSerialEngine creates a SerialEngine.
func NewSerialEngine() *SerialEngine {
	e := &SerialEngine{
		queue:          NewEventQueue(),
		secondaryQueue: NewEventQueue(),
	}

	return e
}

// Schedule registers an event to happen in the future.
func (e *SerialEngine) Schedule(evt Event) {
	if evt.Time() < e.CurrentTime() {
		log.Panic("scheduling an event earlier than the current time")
	}

	if evt.IsSecondary() {
		e.secondaryQueue.Push(evt)
		return
	}

	e.queue.Push(evt)
}

// Run processes all the events scheduled in the SerialEngine.
func (e *SerialEngine) Run() error {
	for {
		if e.queue.Len() == 0 && e.secondaryQueue.Len() == 0 {
			return nil
		}

		e.pauseLock.Lock()
		e.runEvent(e.nextEvent())
		e.pauseLock.Unlock()
	}
}

// nextEvent returns the event to run next. Secondary events are only
// popped when no primary event shares their time.
func (e *SerialEngine) nextEvent() Event {
	if e.secondaryQueue.Len() == 0 {
		return e.queue.Pop()
	}

	if e.queue.Len() == 0 {
		return e.secondaryQueue.Pop()
	}

	if e.queue.Peek().Time() <= e.secondaryQueue.Peek().Time() {
		return e.queue.Pop()
	}

	return e.secondaryQueue.Pop()
}

func (e *SerialEngine) runEvent(evt Event) {
	now := e.CurrentTime()
	if evt.Time() < now {
		log.Panicf("cannot run event in the past, evt %s @ %.10f, now %.10f",
			reflect.TypeOf(evt), evt.Time(), now)
	}

	e.writeTime(evt.Time())

	hookCtx := HookCtx{
		Domain: e,
		Pos:    HookPosBeforeEvent,
		Item:   evt,
	}
	e.InvokeHook(hookCtx)

	_ = evt.Handler().Handle(evt)

	hookCtx.Pos = HookPosAfterEvent
	e.InvokeHook(hookCtx)
}

// CurrentTime returns the current simulation time.
func (e *SerialEngine) CurrentTime() VTimeInSec {
	e.timeLock.RLock()
	t := e.time
	e.timeLock.RUnlock()

	return t
}

func (e *SerialEngine) writeTime(t VTimeInSec) {
	e.timeLock.Lock()
	e.time = t
	e.timeLock.Unlock()
}

// Pause prevents the engine from handling the next event until Continue is
// called.
func (e *SerialEngine) Pause() {
	e.pauseLock.Lock()
}

// Continue resumes a paused engine.
func (e *SerialEngine) Continue() {
	e.pauseLock.Unlock()
}

// RegisterSimulationEndHandler registers a handler that runs after the
// simulation finishes.
func (e *SerialEngine) RegisterSimulationEndHandler(
	handler SimulationEndHandler,
) {
	e.simulationEndHandlers = append(e.simulationEndHandlers, handler)
}

// Finished invokes all the registered SimulationEndHandlers.
func (e *SerialEngine) Finished() {
	now := e.CurrentTime()
	for _, h := range e.simulationEndHandlers {
		h.Handle(now)
	}
}
