package engine

import "sync/atomic"

// Holder publishes the active Engine to request handlers. Rebuilds
// construct a complete new Engine off to the side and Swap it in; readers
// always observe a fully built (corpus, index) pair, never a partial
// rebuild.
type Holder struct {
	active atomic.Pointer[Engine]
}

// NewHolder creates a Holder with the given initial engine.
func NewHolder(e *Engine) *Holder {
	h := &Holder{}
	h.active.Store(e)
	return h
}

// Engine returns the currently active engine.
func (h *Holder) Engine() *Engine {
	return h.active.Load()
}

// Swap atomically replaces the active engine.
func (h *Holder) Swap(e *Engine) {
	h.active.Store(e)
}
