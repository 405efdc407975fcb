// Package entity defines the lifecycle contract shared by every spawnable game
// object and the generic factory that owns a collection of one kind.
package entity

import (
	"errors"
	"fmt"
	"sync"

	"github.com/zeusync/timepilot/internal/core/events/bus"
	"github.com/zeusync/timepilot/internal/core/observability/log"
)

// Bus event types published by factories.
const (
	EventSpawned   = "entity.spawned"
	EventDespawned = "entity.despawned"
)

// DefaultDespawnRadius matches the arena radius of the first level.
const DefaultDespawnRadius = 500.0

var (
	ErrLimitReached = errors.New("entity limit reached")
	ErrNilFrame     = errors.New("entity factory needs a reference frame")
)

// Lifecycle is the payload of spawn and despawn bus events.
type Lifecycle struct {
	Kind   Kind
	ID     ID
	Record Record
	// Reason is "spawned", "out_of_arena" or "despawned".
	Reason string
}

type member[E Entity] struct {
	id     ID
	entity E
}

// Factory owns the live entities of one kind and applies the per-tick
// operations to all of them. Methods are safe for concurrent use. Entities
// are only mutated under the factory lock, so values returned by Get must
// not be read while another goroutine repositions.
type Factory[E Entity] struct {
	kind          Kind
	frame         Frame
	limit         int
	despawnRadius float64
	logger        log.Log
	bus           bus.EventBus
	tick          func() uint64

	mu      sync.RWMutex
	members []member[E]
	nextID  ID
}

type Option func(*options)

type options struct {
	limit         int
	despawnRadius float64
	logger        log.Log
	bus           bus.EventBus
	tick          func() uint64
}

// WithLimit caps the number of live entities; 0 disables the cap.
func WithLimit(n int) Option {
	return func(o *options) { o.limit = n }
}

func WithDespawnRadius(r float64) Option {
	return func(o *options) {
		if r > 0 {
			o.despawnRadius = r
		}
	}
}

func WithLogger(l log.Log) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithBus publishes EventSpawned and EventDespawned.
func WithBus(b bus.EventBus) Option {
	return func(o *options) { o.bus = b }
}

// WithTickSource stamps published events with the current tick.
func WithTickSource(fn func() uint64) Option {
	return func(o *options) { o.tick = fn }
}

// NewFactory creates an empty factory whose entities move relative to frame.
func NewFactory[E Entity](kind Kind, frame Frame, opts ...Option) (*Factory[E], error) {
	if frame == nil {
		return nil, ErrNilFrame
	}
	o := options{
		despawnRadius: DefaultDespawnRadius,
		logger:        log.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.limit < 0 {
		return nil, fmt.Errorf("%s factory: negative limit %d", kind, o.limit)
	}

	return &Factory[E]{
		kind:          kind,
		frame:         frame,
		limit:         o.limit,
		despawnRadius: o.despawnRadius,
		logger:        o.logger.With(log.Component("factory"), log.Stringer("kind", kind)),
		bus:           o.bus,
		tick:          o.tick,
	}, nil
}

func (f *Factory[E]) Kind() Kind             { return f.kind }
func (f *Factory[E]) Limit() int             { return f.limit }
func (f *Factory[E]) DespawnRadius() float64 { return f.despawnRadius }

// Spawn adds e to the live collection and returns its id.
func (f *Factory[E]) Spawn(e E) (ID, error) {
	f.mu.Lock()
	if f.limit > 0 && len(f.members) >= f.limit {
		f.mu.Unlock()
		return 0, fmt.Errorf("%w: %s limit is %d", ErrLimitReached, f.kind, f.limit)
	}
	f.nextID++
	id := f.nextID
	m := member[E]{id: id, entity: e}
	f.members = append(f.members, m)
	rec := m.record()
	f.mu.Unlock()

	f.publish(EventSpawned, id, rec, "spawned")
	return id, nil
}

// Count is the number of live entities.
func (f *Factory[E]) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.members)
}

// Data snapshots every live entity in collection order.
func (f *Factory[E]) Data() []Record {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Record, len(f.members))
	for i, m := range f.members {
		out[i] = m.record()
	}
	return out
}

// IDs lists live ids in collection order.
func (f *Factory[E]) IDs() []ID {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]ID, len(f.members))
	for i, m := range f.members {
		out[i] = m.id
	}
	return out
}

func (f *Factory[E]) Get(id ID) (E, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if i := f.indexLocked(id); i >= 0 {
		return f.members[i].entity, true
	}
	var zero E
	return zero, false
}

// Reposition advances every live entity once and removes the ones that left
// the arena. Exit candidates are collected in a first pass and removed in a
// second compaction pass, so a removal never shifts the entity visited next.
// The write lock is held across both passes; readers such as Data never see
// an entity mid-move. Removed ids are returned in collection order.
func (f *Factory[E]) Reposition() []ID {
	f.mu.Lock()
	var gone map[ID]struct{}
	for _, m := range f.members {
		m.entity.Advance(f.frame)
		if m.entity.OutOfArena(f.frame, f.despawnRadius) {
			if gone == nil {
				gone = make(map[ID]struct{})
			}
			gone[m.id] = struct{}{}
		}
	}
	if gone == nil {
		f.mu.Unlock()
		return nil
	}

	var removed []member[E]
	kept := f.members[:0]
	for _, m := range f.members {
		if _, drop := gone[m.id]; drop {
			removed = append(removed, m)
			continue
		}
		kept = append(kept, m)
	}
	clear(f.members[len(kept):])
	f.members = kept
	records := make([]Record, len(removed))
	for i, m := range removed {
		records[i] = m.record()
	}
	live := len(f.members)
	f.mu.Unlock()

	ids := make([]ID, len(removed))
	for i, m := range removed {
		ids[i] = m.id
		f.publish(EventDespawned, m.id, records[i], "out_of_arena")
	}

	f.logger.Debug("Entities left the arena",
		log.Int("removed", len(ids)),
		log.Int("live", live))

	return ids
}

// Render asks every live entity to draw itself.
func (f *Factory[E]) Render(surface Surface) {
	f.RenderIf(surface, func(E) bool { return true })
}

// RenderIf draws only the entities keep accepts, in collection order.
// Surfaces must not call back into the factory.
func (f *Factory[E]) RenderIf(surface Surface, keep func(E) bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, m := range f.members {
		if keep(m.entity) {
			m.entity.RenderSelf(surface, f.frame)
		}
	}
}

// Despawn removes exactly one entity. Unknown ids are ignored and reported
// as false.
func (f *Factory[E]) Despawn(id ID) bool {
	f.mu.Lock()
	i := f.indexLocked(id)
	if i < 0 {
		f.mu.Unlock()
		return false
	}
	m := f.members[i]
	rec := m.record()
	last := len(f.members) - 1
	copy(f.members[i:], f.members[i+1:])
	f.members[last] = member[E]{}
	f.members = f.members[:last]
	f.mu.Unlock()

	f.publish(EventDespawned, id, rec, "despawned")
	return true
}

// Clear drops every entity without publishing events.
func (f *Factory[E]) Clear() {
	f.mu.Lock()
	f.members = nil
	f.mu.Unlock()
}

func (f *Factory[E]) indexLocked(id ID) int {
	for i, m := range f.members {
		if m.id == id {
			return i
		}
	}
	return -1
}

func (f *Factory[E]) publish(eventType string, id ID, rec Record, reason string) {
	if f.bus == nil {
		return
	}
	var tick uint64
	if f.tick != nil {
		tick = f.tick()
	}
	payload := Lifecycle{Kind: f.kind, ID: id, Record: rec, Reason: reason}
	if err := f.bus.Publish(bus.NewEvent(eventType, f.kind.String(), tick, payload)); err != nil {
		f.logger.Warn("Lifecycle subscriber failed",
			log.String("event", eventType),
			log.Uint64("id", uint64(id)),
			log.Error(err))
	}
}

func (m member[E]) record() Record {
	rec := m.entity.Describe()
	rec.ID = m.id
	return rec
}
