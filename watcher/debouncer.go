package watcher

import (
	"sort"
	"sync"
	"time"
)

// DefaultInterval is the quiet period after which a batch of changes is emitted.
const DefaultInterval = 100 * time.Millisecond

// ChangeOp is the kind of filesystem change seen for a path.
type ChangeOp int

const (
	OpCreate ChangeOp = iota
	OpWrite
	OpRemove
	OpRename
)

func (op ChangeOp) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Change is one path in a debounced batch. Path is relative to the watched root
// and uses forward slashes.
type Change struct {
	Path string
	Op   ChangeOp
}

// Batch is a set of changes with distinct paths, sorted by path.
type Batch []Change

// Paths returns the changed paths in batch order.
func (b Batch) Paths() []string {
	paths := make([]string, len(b))
	for i, change := range b {
		paths[i] = change.Path
	}
	return paths
}

// Debouncer collects changes and emits them as one Batch once no new change has
// arrived for the interval. Repeated changes to a path keep only the latest op.
type Debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	pending  map[string]ChangeOp
	timer    *time.Timer
	output   chan Batch
	done     chan struct{}
	stopOnce sync.Once
}

// NewDebouncer creates a debouncer with the given quiet interval.
func NewDebouncer(interval time.Duration) *Debouncer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Debouncer{
		interval: interval,
		pending:  make(map[string]ChangeOp),
		output:   make(chan Batch, 16),
		done:     make(chan struct{}),
	}
}

// Output returns the channel that receives batches.
func (d *Debouncer) Output() <-chan Batch {
	return d.output
}

// Add records a change and restarts the quiet period.
func (d *Debouncer) Add(path string, op ChangeOp) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[path] = op

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.flush)
}

// Stop cancels a pending flush and releases a flush waiting on a full output
// channel. Changes not yet emitted are dropped. Stop may be called more than once.
func (d *Debouncer) Stop() {
	d.stopOnce.Do(func() { close(d.done) })

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = make(map[string]ChangeOp)
}

func (d *Debouncer) flush() {
	batch := d.take()
	if len(batch) == 0 {
		return
	}

	// sent without holding mu so Add and Stop never wait on the consumer
	select {
	case d.output <- batch:
	case <-d.done:
	}
}

// take empties pending into a sorted batch.
func (d *Debouncer) take() Batch {
	d.mu.Lock()
	defer d.mu.Unlock()

	batch := make(Batch, 0, len(d.pending))
	for path, op := range d.pending {
		batch = append(batch, Change{Path: path, Op: op})
	}
	sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })

	d.pending = make(map[string]ChangeOp)
	return batch
}
