// Package events is the in-process bus the auth engine and the gorm hooks
// publish on. Forward bridges selected events to an AMQP exchange.
package events

import (
	"fmt"
	"sync"

	console "iam/internal/utils/logger"
)

var log = console.New("EVENTS")

type EventHandler func(interface{})

type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]EventHandler
}

var defaultBus = NewEventBus()

func NewEventBus() *EventBus {
	return &EventBus{handlers: make(map[string][]EventHandler)}
}

// Default returns the process-wide bus behind Emit.
func Default() *EventBus {
	return defaultBus
}

func (bus *EventBus) On(event string, handler EventHandler) {
	bus.mu.Lock()
	bus.handlers[event] = append(bus.handlers[event], handler)
	bus.mu.Unlock()
	log.Debug("Subscribed to %s", event)
}

// Emit runs every handler of event on its own goroutine and returns without
// waiting. A panicking handler is logged and does not affect the others.
func (bus *EventBus) Emit(event string, data interface{}) {
	bus.mu.RLock()
	subscribers := append([]EventHandler(nil), bus.handlers[event]...)
	bus.mu.RUnlock()

	for _, h := range subscribers {
		go dispatch(event, h, data)
	}
}

func dispatch(event string, h EventHandler, data interface{}) {
	defer func() {
		if r := recover(); r != nil {
			_ = log.Error("Handler for %s panicked", fmt.Errorf("panic: %v", r), event)
		}
	}()
	h(data)
}

// Emit publishes on the default bus.
func Emit(event string, data interface{}) {
	defaultBus.Emit(event, data)
}
