package browser

import "sync"

// OperatorGate serializes driven-browser operations per operator. One
// session is one human identity on the source site, so two searches or
// extractions for the same operator must never run two driven sessions at
// once. Different operators proceed in parallel.
type OperatorGate struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewOperatorGate returns an empty gate.
func NewOperatorGate() *OperatorGate {
	return &OperatorGate{locks: make(map[string]*sync.Mutex)}
}

// Acquire blocks until the operator's slot is free and returns the release
// func. Callers must defer the release.
func (g *OperatorGate) Acquire(operatorID string) func() {
	g.mu.Lock()
	l, ok := g.locks[operatorID]
	if !ok {
		l = &sync.Mutex{}
		g.locks[operatorID] = l
	}
	g.mu.Unlock()

	l.Lock()
	return l.Unlock
}
