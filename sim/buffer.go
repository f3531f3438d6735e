package sim

import "fmt"

// Buffer is a bounded (or unbounded) FIFO store connecting two stations.
// Get blocks while the buffer is empty, Put blocks while it is full; waiting
// getters and putters are each served in strict join order. Wakeups travel
// through the event queue at the current instant, so they interleave with
// timeouts deterministically.
type Buffer struct {
	env      *Env
	name     string
	capacity int // 0 = unbounded
	items    []*Item
	getters  []*Process
	putters  []waitingPut
}

type waitingPut struct {
	proc *Process
	item *Item
}

// NewBuffer creates a buffer. capacity 0 means unbounded.
func NewBuffer(env *Env, name string, capacity int) *Buffer {
	return &Buffer{env: env, name: name, capacity: capacity}
}

// Name returns the buffer name (Buf_<source>_to_<target> for edge buffers).
func (b *Buffer) Name() string { return b.name }

// Len returns the number of stored items.
func (b *Buffer) Len() int { return len(b.items) }

// Capacity returns the configured capacity, 0 meaning unbounded.
func (b *Buffer) Capacity() int { return b.capacity }

// Unbounded reports whether the buffer has no capacity limit.
func (b *Buffer) Unbounded() bool { return b.capacity == 0 }

// Get removes and returns the oldest item. If the buffer is empty the
// calling process joins the getter queue and suspends until a Put hands it
// an item directly; items are reserved for their getter at hand-off time and
// are never delivered twice.
func (b *Buffer) Get(p *Process) (*Item, error) {
	if len(b.items) > 0 {
		item := b.items[0]
		b.items = b.items[1:]
		// A slot opened up: admit the oldest waiting putter, if any. Its
		// item enters the queue now; the putter itself resumes via the
		// event queue at the current instant.
		if len(b.putters) > 0 {
			w := b.putters[0]
			b.putters = b.putters[1:]
			b.items = append(b.items, w.item)
			if err := b.env.schedule(0, w.proc, nil); err != nil {
				return nil, err
			}
		}
		b.checkInvariant()
		return item, nil
	}
	b.getters = append(b.getters, p)
	v, err := p.suspend()
	if err != nil {
		return nil, err
	}
	return v.(*Item), nil
}

// Put appends an item. If a getter is waiting, the item is handed to the
// oldest one directly (bypassing storage). If the buffer is full the calling
// process joins the putter queue and suspends; by the time it resumes, its
// item has already been admitted by the Get that freed the slot.
func (b *Buffer) Put(p *Process, item *Item) error {
	if len(b.getters) > 0 {
		g := b.getters[0]
		b.getters = b.getters[1:]
		return b.env.schedule(0, g, item)
	}
	if b.capacity == 0 || len(b.items) < b.capacity {
		b.items = append(b.items, item)
		b.checkInvariant()
		return nil
	}
	b.putters = append(b.putters, waitingPut{proc: p, item: item})
	_, err := p.suspend()
	return err
}

// Seed inserts an item without a process context. Used at layout-build time
// to pre-populate the source buffer; fails on a bounded buffer that is full.
func (b *Buffer) Seed(item *Item) error {
	if b.capacity > 0 && len(b.items) >= b.capacity {
		return Configf("seed overflows buffer %s (capacity %d)", b.name, b.capacity)
	}
	b.items = append(b.items, item)
	return nil
}

// checkInvariant defends 0 <= len <= capacity. A violation is a programming
// defect and panics.
func (b *Buffer) checkInvariant() {
	if b.capacity > 0 && len(b.items) > b.capacity {
		panic(fmt.Sprintf("buffer %s: length %d exceeds capacity %d", b.name, len(b.items), b.capacity))
	}
}
