package checkout

import "sync"

// LineOp is the kind of mutation in flight on a cart line.
type LineOp string

const (
	OpUpdate LineOp = "update"
	OpRemove LineOp = "remove"
)

// PendingLines tracks which cart lines have a mutation in flight so the
// client can disable their controls and refuse overlapping requests.
// At most one operation per line at a time.
type PendingLines struct {
	mu  sync.Mutex
	ops map[string]LineOp
}

// NewPendingLines returns an empty tracker.
func NewPendingLines() *PendingLines {
	return &PendingLines{ops: make(map[string]LineOp)}
}

// Begin marks lineID as having op in flight. It returns false if the line
// already has a pending operation, in which case the caller must not
// start another.
func (p *PendingLines) Begin(lineID string, op LineOp) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, busy := p.ops[lineID]; busy {
		return false
	}
	p.ops[lineID] = op
	return true
}

// End clears the pending state for lineID, regardless of outcome.
func (p *PendingLines) End(lineID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.ops, lineID)
}

// Op returns the operation in flight on lineID, if any.
func (p *PendingLines) Op(lineID string) (LineOp, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	op, ok := p.ops[lineID]
	return op, ok
}

// Busy reports whether any line has an operation in flight.
func (p *PendingLines) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.ops) > 0
}
