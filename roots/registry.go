package roots

import (
	"fmt"
	"sync"

	"github.com/jonathanmweiss/go-ntt/field"
)

type registryKey struct {
	inverse bool
	device  int
}

// Registry hands out the Parameters of one field configuration, built lazily
// once per (direction, device) and never rebuilt.
type Registry[E any] struct {
	f        field.Field[E]
	lgMax    int
	lgWindow int

	mu     sync.RWMutex
	params map[registryKey]*Parameters[E]
}

// DefaultLgWindow splits lgMax into five windows.
func DefaultLgWindow(lgMax int) int {
	if lg := (lgMax + 4) / 5; lg > 0 {
		return lg
	}

	return 1
}

func NewRegistry[E any](f field.Field[E], lgMax, lgWindow int) *Registry[E] {
	if lgMax < 0 || lgMax > f.TwoAdicity() {
		panic(fmt.Sprintf("roots: max domain 2^%d not supported by %s (two-adicity %d)", lgMax, f.Name(), f.TwoAdicity()))
	}

	if lgWindow <= 0 {
		lgWindow = DefaultLgWindow(lgMax)
	}

	return &Registry[E]{
		f:        f,
		lgMax:    lgMax,
		lgWindow: lgWindow,
		params:   make(map[registryKey]*Parameters[E]),
	}
}

func (r *Registry[E]) LgMaxDomainSize() int {
	return r.lgMax
}

// Get returns the parameters for a direction on a device.
func (r *Registry[E]) Get(inverse bool, device int) *Parameters[E] {
	key := registryKey{inverse: inverse, device: device}

	r.mu.RLock()
	if p, ok := r.params[key]; ok {
		r.mu.RUnlock()
		return p
	}
	r.mu.RUnlock()

	p := newParameters(r.f, inverse, r.lgMax, r.lgWindow)

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.params[key]; ok {
		return existing
	}

	r.params[key] = p

	return p
}

type sharedKey struct {
	field    string
	lgMax    int
	lgWindow int
}

var shared sync.Map // sharedKey -> *Registry[E]

// Shared returns the process-wide registry for a field configuration.
func Shared[E any](f field.Field[E], lgMax, lgWindow int) *Registry[E] {
	if lgWindow <= 0 {
		lgWindow = DefaultLgWindow(lgMax)
	}

	key := sharedKey{field: f.Name(), lgMax: lgMax, lgWindow: lgWindow}
	if r, ok := shared.Load(key); ok {
		return r.(*Registry[E])
	}

	r, _ := shared.LoadOrStore(key, NewRegistry(f, lgMax, lgWindow))

	return r.(*Registry[E])
}
