package device

import "sync"

// Barrier is a reusable rendezvous for every block of a cooperative launch.
type Barrier struct {
	mu   sync.Mutex
	cond *sync.Cond

	parties    int
	waiting    int
	generation uint64
	broken     bool
}

func newBarrier(parties int) *Barrier {
	b := &Barrier{parties: parties}
	b.cond = sync.NewCond(&b.mu)

	return b
}

// Wait blocks until every party reached the barrier. It returns false if the
// barrier was broken, in which case the caller must stop.
func (b *Barrier) Wait() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.broken {
		return false
	}

	gen := b.generation
	b.waiting++
	if b.waiting == b.parties {
		b.waiting = 0
		b.generation++
		b.cond.Broadcast()

		return true
	}

	for gen == b.generation && !b.broken {
		b.cond.Wait()
	}

	return gen != b.generation
}

// Break releases every waiter, current and future, with a false result.
func (b *Barrier) Break() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.broken = true
	b.cond.Broadcast()
}
