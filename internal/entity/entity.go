// Package entity implements the ESPHome entities exposed by the satellite.
package entity

import (
	"context"
	"sync"

	"github.com/satriahrh/arunika/satellite/internal/protocol"
)

// Entity is one ESPHome entity with a stable key.
type Entity interface {
	Key() uint32
	// Handle returns the responses to msg. Entities ignore messages that do
	// not concern them.
	Handle(msg protocol.Message) []protocol.Message
	// States emits a state message after every change, latest wins.
	States() <-chan protocol.Message
}

// Registry dispatches messages to every registered entity.
type Registry struct {
	entities []Entity
}

// NewRegistry creates a registry of entities.
func NewRegistry(entities ...Entity) *Registry {
	return &Registry{entities: entities}
}

// Entities returns the registered entities.
func (r *Registry) Entities() []Entity {
	return r.entities
}

// List returns the ListEntities responses of all entities.
func (r *Registry) List() []protocol.Message {
	return r.Handle(protocol.ListEntitiesRequest{})
}

// Handle passes msg to every entity and concatenates their responses.
func (r *Registry) Handle(msg protocol.Message) []protocol.Message {
	var out []protocol.Message
	for _, e := range r.entities {
		out = append(out, e.Handle(msg)...)
	}
	return out
}

// States fans in the state streams of all entities until ctx is done.
func (r *Registry) States(ctx context.Context) <-chan protocol.Message {
	out := make(chan protocol.Message)

	var wg sync.WaitGroup
	for _, e := range r.entities {
		wg.Add(1)
		go func(states <-chan protocol.Message) {
			defer wg.Done()
			for {
				select {
				case msg, ok := <-states:
					if !ok {
						return
					}
					select {
					case out <- msg:
					case <-ctx.Done():
						return
					}
				case <-ctx.Done():
					return
				}
			}
		}(e.States())
	}

	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}
