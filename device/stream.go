package device

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sync/errgroup"
)

const streamDepth = 64

type streamOp struct {
	fn func() error
	// fences run even on a failed stream.
	fence bool
}

// Stream executes enqueued work in order on its device. Enqueueing never
// waits for completion; Synchronize does.
//
// The first failing operation makes the stream sticky: later operations are
// skipped until Synchronize reports the failure and clears it.
type Stream struct {
	d *Device

	ops  chan streamOp
	done chan struct{}

	closeMu sync.Mutex
	closed  bool

	errMu sync.Mutex
	err   error
}

func (d *Device) NewStream() *Stream {
	s := &Stream{
		d:    d,
		ops:  make(chan streamOp, streamDepth),
		done: make(chan struct{}),
	}

	go s.serve()

	return s
}

func (s *Stream) Device() *Device {
	return s.d
}

func (s *Stream) serve() {
	defer close(s.done)

	for op := range s.ops {
		if !op.fence && s.failed() {
			continue
		}

		if err := op.fn(); err != nil {
			s.fail(err)
		}
	}
}

func (s *Stream) failed() bool {
	s.errMu.Lock()
	defer s.errMu.Unlock()

	return s.err != nil
}

func (s *Stream) fail(err error) {
	s.errMu.Lock()
	defer s.errMu.Unlock()

	if s.err == nil {
		s.err = err
	}
}

func (s *Stream) enqueue(op string, fn func() error) error {
	return s.push(op, streamOp{fn: fn})
}

func (s *Stream) push(op string, so streamOp) error {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()

	if s.closed {
		return s.reject(newError(ErrorStreamClosed, op, "stream is closed"))
	}

	s.ops <- so

	return nil
}

// reject records an error detected before enqueueing and returns it.
func (s *Stream) reject(err error) error {
	s.fail(err)
	return err
}

// Synchronize waits for all enqueued work and returns, then clears, the
// first error raised since the previous call.
func (s *Stream) Synchronize() error {
	fence := make(chan struct{})
	err := s.push("synchronize", streamOp{fence: true, fn: func() error {
		close(fence)
		return nil
	}})
	if err == nil {
		<-fence
	}

	s.errMu.Lock()
	defer s.errMu.Unlock()

	err = s.err
	s.err = nil

	return err
}

// Close synchronizes and stops the stream. Closing a closed stream is a
// no-op.
func (s *Stream) Close() error {
	s.closeMu.Lock()
	closed := s.closed
	s.closeMu.Unlock()
	if closed {
		<-s.done
		return nil
	}

	err := s.Synchronize()

	s.closeMu.Lock()
	if !s.closed {
		s.closed = true
		close(s.ops)
	}
	s.closeMu.Unlock()

	<-s.done

	return err
}

// Launch enqueues kernel over blocks [0, grid). At most Units blocks run
// concurrently and later work on the stream starts only once every block
// returned. A panicking block fails the launch with ErrorLaunchFailure.
func (s *Stream) Launch(name string, grid int, kernel func(block int)) error {
	if grid < 0 {
		return s.reject(newError(ErrorInvalidValue, name, "negative grid %d", grid))
	}

	return s.enqueue(name, func() error {
		return s.d.run(name, grid, kernel)
	})
}

// LaunchCooperative enqueues kernel with every block resident at once, so
// that blocks may rendezvous on the shared Barrier.
func (s *Stream) LaunchCooperative(name string, grid int, kernel func(block int, b *Barrier)) error {
	if grid < 0 {
		return s.reject(newError(ErrorInvalidValue, name, "negative grid %d", grid))
	}

	if grid > s.d.units {
		return s.reject(newError(ErrorCooperativeLaunchTooLarge, name,
			"grid of %d blocks exceeds the %d resident units", grid, s.d.units))
	}

	return s.enqueue(name, func() error {
		return s.d.runCooperative(name, grid, kernel)
	})
}

// CopyIn enqueues a copy of src into dst. src must stay untouched until the
// stream is synchronized.
func CopyIn[E any](s *Stream, dst *Buffer[E], src []E) error {
	if len(src) != dst.Len() {
		return s.reject(newError(ErrorInvalidValue, "copy-in",
			"host length %d does not match buffer length %d", len(src), dst.Len()))
	}

	return s.enqueue("copy-in", func() error {
		copy(dst.Data(), src)
		s.d.metrics.bytesCopied.WithLabelValues("host_to_device").Add(float64(sizeOf(src)))

		return nil
	})
}

// CopyOut enqueues a copy of src into dst.
func CopyOut[E any](s *Stream, dst []E, src *Buffer[E]) error {
	if len(dst) != src.Len() {
		return s.reject(newError(ErrorInvalidValue, "copy-out",
			"host length %d does not match buffer length %d", len(dst), src.Len()))
	}

	return s.enqueue("copy-out", func() error {
		copy(dst, src.Data())
		s.d.metrics.bytesCopied.WithLabelValues("device_to_host").Add(float64(sizeOf(dst)))

		return nil
	})
}

func sizeOf[E any](v []E) int64 {
	var zero E
	return int64(len(v)) * int64(unsafe.Sizeof(zero))
}

func (d *Device) run(name string, grid int, kernel func(block int)) error {
	d.metrics.launches.WithLabelValues(name).Inc()

	workers := d.units
	if grid < workers {
		workers = grid
	}

	g, ctx := errgroup.WithContext(context.Background())

	var next atomic.Int64
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for ctx.Err() == nil {
				block := int(next.Add(1) - 1)
				if block >= grid {
					return nil
				}

				if err := runBlock(name, block, func() { kernel(block) }); err != nil {
					return err
				}
			}

			return nil
		})
	}

	return d.launchResult(name, g.Wait())
}

func (d *Device) runCooperative(name string, grid int, kernel func(block int, b *Barrier)) error {
	d.metrics.launches.WithLabelValues(name).Inc()

	bar := newBarrier(grid)

	var g errgroup.Group
	for block := 0; block < grid; block++ {
		block := block
		g.Go(func() error {
			err := runBlock(name, block, func() { kernel(block, bar) })
			if err != nil {
				bar.Break()
			}

			return err
		})
	}

	return d.launchResult(name, g.Wait())
}

func runBlock(name string, block int, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newError(ErrorLaunchFailure, name, "block %d: %v", block, r)
		}
	}()

	fn()

	return nil
}

func (d *Device) launchResult(name string, err error) error {
	if err == nil {
		return nil
	}

	d.metrics.launchFailures.WithLabelValues(name).Inc()
	d.log.Warn().Err(err).Str("kernel", name).Int("device", d.id).Msg("kernel launch failed")

	return err
}

func (s *Stream) String() string {
	return fmt.Sprintf("stream(device %d)", s.d.id)
}
