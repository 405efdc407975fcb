// Package render turns the game's sprite draw calls into output: an in-memory
// command list for streaming and tests, and a tcell terminal view.
package render

import (
	"sync"

	"github.com/zeusync/timepilot/internal/core/entity"
	"github.com/zeusync/timepilot/pkg/generic"
)

// Canvas is a Surface that is drawn in passes. Begin clears the previous
// pass and Present publishes the current one.
type Canvas interface {
	entity.Surface
	Begin()
	Present()
}

// Command is one recorded RenderSprite call.
type Command struct {
	Sprite entity.Sprite      `msgpack:"s" json:"sprite"`
	Frame  entity.SpriteFrame `msgpack:"f" json:"frame"`
}

const defaultCommandCapacity = 64

var commandPool = generic.NewSlicePool[Command](defaultCommandCapacity)

// Recorder keeps the commands of the current pass in memory.
type Recorder struct {
	mu       sync.Mutex
	commands []Command
}

var _ Canvas = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{commands: commandPool.Get()}
}

func (r *Recorder) RenderSprite(sprite entity.Sprite, frame entity.SpriteFrame) {
	r.mu.Lock()
	r.commands = append(r.commands, Command{Sprite: sprite, Frame: frame})
	r.mu.Unlock()
}

func (r *Recorder) Begin() { r.Reset() }

func (r *Recorder) Present() {}

// Reset drops the recorded commands.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.commands = r.commands[:0]
	r.mu.Unlock()
}

// Commands copies the recorded commands.
func (r *Recorder) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Command(nil), r.commands...)
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.commands)
}

// Flush hands the recorded commands to the caller and starts a fresh buffer.
// The returned slice belongs to the caller; Release gives it back.
func (r *Recorder) Flush() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.commands
	r.commands = commandPool.Get()
	return out
}

// Release returns a slice obtained from Flush to the buffer pool.
func Release(commands []Command) {
	if commands != nil {
		commandPool.Put(commands)
	}
}

// Fanout draws every pass on all of its canvases in order.
type Fanout []Canvas

func (f Fanout) RenderSprite(sprite entity.Sprite, frame entity.SpriteFrame) {
	for _, c := range f {
		c.RenderSprite(sprite, frame)
	}
}

func (f Fanout) Begin() {
	for _, c := range f {
		c.Begin()
	}
}

func (f Fanout) Present() {
	for _, c := range f {
		c.Present()
	}
}
