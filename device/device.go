// Package device models an accelerator on the host CPU: a fixed number of
// parallel units, bounded scratch memory, in-order streams and kernel
// launches over a grid of blocks.
package device

import (
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

type Config struct {
	ID int `yaml:"id"`
	// Units is the number of blocks that make progress concurrently.
	// Zero means GOMAXPROCS.
	Units int `yaml:"units"`
	// MemoryLimit bounds the bytes allocated at once. Zero means unlimited.
	MemoryLimit int64 `yaml:"memory-limit"`

	Logger     *zerolog.Logger       `yaml:"-"`
	Registerer prometheus.Registerer `yaml:"-"`
}

type Device struct {
	id    int
	units int
	limit int64

	log     *zerolog.Logger
	metrics *metrics

	mu        sync.Mutex
	allocated int64
}

func New(cfg Config) (*Device, error) {
	if cfg.ID < 0 {
		return nil, errors.Errorf("invalid device id %d", cfg.ID)
	}

	if cfg.Units < 0 {
		return nil, errors.Errorf("invalid unit count %d", cfg.Units)
	}

	if cfg.MemoryLimit < 0 {
		return nil, errors.Errorf("invalid memory limit %d", cfg.MemoryLimit)
	}

	units := cfg.Units
	if units == 0 {
		units = runtime.GOMAXPROCS(0)
	}

	log := cfg.Logger
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}

	m, err := newMetrics(cfg.ID, cfg.Registerer)
	if err != nil {
		return nil, err
	}

	return &Device{
		id:      cfg.ID,
		units:   units,
		limit:   cfg.MemoryLimit,
		log:     log,
		metrics: m,
	}, nil
}

var defaultDevice struct {
	once sync.Once
	d    *Device
}

// Default returns device 0 of the process, created on first use with every
// unit available and no memory limit.
func Default() *Device {
	defaultDevice.once.Do(func() {
		d, err := New(Config{})
		if err != nil {
			panic(err)
		}

		defaultDevice.d = d
	})

	return defaultDevice.d
}

func (d *Device) ID() int {
	return d.id
}

func (d *Device) Units() int {
	return d.units
}

// Allocated reports the bytes currently held by live buffers.
func (d *Device) Allocated() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.allocated
}

func (d *Device) reserve(bytes int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.limit > 0 && d.allocated+bytes > d.limit {
		return newError(ErrorMemoryAllocation, "alloc",
			"%d bytes requested, %d of %d in use", bytes, d.allocated, d.limit)
	}

	d.allocated += bytes
	d.metrics.allocatedBytes.Set(float64(d.allocated))

	return nil
}

func (d *Device) release(bytes int64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.allocated -= bytes
	d.metrics.allocatedBytes.Set(float64(d.allocated))
}
