package device

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDevice(t *testing.T, cfg Config) *Device {
	d, err := New(cfg)
	require.NoError(t, err)

	return d
}

func TestNew(t *testing.T) {
	a := assert.New(t)

	d := newTestDevice(t, Config{ID: 3, Units: 5})
	a.Equal(3, d.ID())
	a.Equal(5, d.Units())

	a.Positive(newTestDevice(t, Config{}).Units())
	a.Same(Default(), Default())

	_, err := New(Config{Units: -1})
	a.Error(err)
	_, err = New(Config{ID: -1})
	a.Error(err)
	_, err = New(Config{MemoryLimit: -1})
	a.Error(err)
}

func TestAllocAndViews(t *testing.T) {
	a := assert.New(t)
	d := newTestDevice(t, Config{MemoryLimit: 64})

	b, err := Alloc[uint64](d, 6)
	require.NoError(t, err)
	a.Equal(6, b.Len())
	a.Equal(int64(48), d.Allocated())

	_, err = Alloc[uint64](d, 3)
	a.Equal(ErrorMemoryAllocation, CodeOf(err))

	lo, hi := b.View(0, 4), b.View(4, 2)
	a.False(lo.Overlaps(hi))
	a.True(lo.Overlaps(b.View(3, 2)))
	a.True(b.View(1, 2).Same(b.View(1, 2)))
	a.False(b.View(1, 2).Same(b.View(1, 3)))

	hi.Data()[0] = 9
	a.Equal(uint64(9), b.Data()[4])
	a.Len(hi.Data(), 2)
	a.Equal(2, cap(hi.Data()))

	a.Panics(func() { b.View(5, 2) })

	b.Free()
	b.Free()
	a.Zero(d.Allocated())

	_, err = Alloc[uint64](d, 8)
	a.NoError(err)

	empty, err := Alloc[uint32](d, 0)
	a.NoError(err)
	a.False(empty.Overlaps(empty))
}

func TestStreamOrderAndCopies(t *testing.T) {
	a := assert.New(t)
	d := newTestDevice(t, Config{Units: 4})
	s := d.NewStream()
	defer s.Close()

	buf, err := Alloc[int](d, 1000)
	require.NoError(t, err)
	defer buf.Free()

	in := make([]int, 1000)
	for i := range in {
		in[i] = i
	}

	a.NoError(CopyIn(s, buf, in))
	for round := 0; round < 3; round++ {
		a.NoError(s.Launch("double", 10, func(block int) {
			data := buf.Data()[block*100 : (block+1)*100]
			for i := range data {
				data[i] *= 2
			}
		}))
	}

	out := make([]int, 1000)
	a.NoError(CopyOut(s, out, buf))
	a.NoError(s.Synchronize())

	for i := range out {
		a.Equal(8*i, out[i])
	}

	a.Equal(ErrorInvalidValue, CodeOf(CopyOut(s, make([]int, 3), buf)))
	a.Equal(ErrorInvalidValue, CodeOf(s.Synchronize()))
	a.NoError(s.Synchronize())
}

func TestLaunchRunsEveryBlockOnce(t *testing.T) {
	a := assert.New(t)
	d := newTestDevice(t, Config{Units: 3})
	s := d.NewStream()
	defer s.Close()

	var mu sync.Mutex
	seen := map[int]int{}
	var running, peak atomic.Int32

	a.NoError(s.Launch("count", 100, func(block int) {
		cur := running.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}

		mu.Lock()
		seen[block]++
		mu.Unlock()

		running.Add(-1)
	}))
	a.NoError(s.Launch("empty", 0, func(int) { panic("never runs") }))
	a.NoError(s.Synchronize())

	a.Len(seen, 100)
	for _, n := range seen {
		a.Equal(1, n)
	}

	a.LessOrEqual(peak.Load(), int32(3))
}

func TestStickyLaunchFailure(t *testing.T) {
	a := assert.New(t)
	reg := prometheus.NewRegistry()
	d := newTestDevice(t, Config{Units: 2, Registerer: reg})
	s := d.NewStream()
	defer s.Close()

	ran := false
	a.NoError(s.Launch("boom", 4, func(block int) {
		if block == 2 {
			panic("bad block")
		}
	}))
	a.NoError(s.Launch("after", 1, func(int) { ran = true }))

	err := s.Synchronize()
	a.Equal(ErrorLaunchFailure, CodeOf(err))
	a.Contains(err.Error(), "boom")
	a.False(ran)

	a.Equal(float64(1), testutil.ToFloat64(d.metrics.launchFailures.WithLabelValues("boom")))
	a.Equal(float64(1), testutil.ToFloat64(d.metrics.launches.WithLabelValues("boom")))
	a.Zero(testutil.ToFloat64(d.metrics.launches.WithLabelValues("after")))

	// the error is cleared by Synchronize
	a.NoError(s.Launch("after", 1, func(int) { ran = true }))
	a.NoError(s.Synchronize())
	a.True(ran)
}

func TestCooperativeLaunch(t *testing.T) {
	a := assert.New(t)
	d := newTestDevice(t, Config{Units: 4})
	s := d.NewStream()
	defer s.Close()

	// Every block reads its neighbour before any block writes.
	data := []int{1, 2, 3, 4}
	a.NoError(s.LaunchCooperative("rotate", 4, func(block int, b *Barrier) {
		v := data[(block+1)%4]
		if !b.Wait() {
			return
		}

		data[block] = v
	}))
	a.NoError(s.Synchronize())
	a.Equal([]int{2, 3, 4, 1}, data)

	err := s.LaunchCooperative("wide", 5, func(int, *Barrier) {})
	a.Equal(ErrorCooperativeLaunchTooLarge, CodeOf(err))
	a.Equal(ErrorCooperativeLaunchTooLarge, CodeOf(s.Synchronize()))

	a.NoError(s.LaunchCooperative("broken", 4, func(block int, b *Barrier) {
		if block == 0 {
			panic("first block fails")
		}

		b.Wait()
	}))
	a.Equal(ErrorLaunchFailure, CodeOf(s.Synchronize()))
}

func TestBarrierReuse(t *testing.T) {
	a := assert.New(t)
	b := newBarrier(3)

	var wg sync.WaitGroup
	var phase atomic.Int32
	results := make([]bool, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok := true
			for round := 0; round < 5; round++ {
				phase.Add(1)
				ok = ok && b.Wait()
			}

			results[i] = ok
		}(i)
	}
	wg.Wait()

	a.Equal([]bool{true, true, true}, results)
	a.Equal(int32(15), phase.Load())

	b.Break()
	a.False(b.Wait())
}

func TestClosedStream(t *testing.T) {
	a := assert.New(t)
	s := newTestDevice(t, Config{}).NewStream()

	a.NoError(s.Close())
	a.NoError(s.Close())
	a.Equal(ErrorStreamClosed, CodeOf(s.Launch("late", 1, func(int) {})))
	a.NoError(s.Close())
}

func TestMetricsRegistration(t *testing.T) {
	a := assert.New(t)
	reg := prometheus.NewRegistry()

	d := newTestDevice(t, Config{ID: 1, Registerer: reg})
	_, err := New(Config{ID: 1, Registerer: reg})
	a.Error(err)

	buf, err := Alloc[uint32](d, 16)
	require.NoError(t, err)

	s := d.NewStream()
	a.NoError(CopyIn(s, buf, make([]uint32, 16)))
	a.NoError(s.Close())

	a.Equal(float64(64), testutil.ToFloat64(d.metrics.bytesCopied.WithLabelValues("host_to_device")))
	a.Equal(float64(64), testutil.ToFloat64(d.metrics.allocatedBytes))

	families, err := reg.Gather()
	a.NoError(err)
	a.NotEmpty(families)
}

func TestCodeOf(t *testing.T) {
	a := assert.New(t)

	a.Equal(Success, CodeOf(nil))
	a.Equal(ErrorLaunchFailure, CodeOf(assert.AnError))
	a.Equal("memory allocation", ErrorMemoryAllocation.String())
	a.Equal("code(42)", Code(42).String())
}
