package render

import (
	"bytes"
	"context"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

const DefaultFPS = 60

// Loop calls a frame function repeatedly on its own goroutine until stopped.
// Invocations never overlap: each frame runs to completion before the next
// tick is considered, and ticks missed during a slow frame are dropped.
type Loop struct {
	interval time.Duration
	frame    func() bool

	mu      sync.Mutex
	started bool
	stopped bool
	stop    chan struct{}
	done    chan struct{}

	// runner is the id of the loop goroutine once it runs.
	runner atomic.Uint64
}

// NewLoop returns a loop running frame fps times per second. frame returns
// false to end the loop from inside; it may also call Stop.
func NewLoop(fps int, frame func() bool) *Loop {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Loop{
		interval: time.Second / time.Duration(fps),
		frame:    frame,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the first frame immediately and schedules the rest. It returns
// false if the loop was already started or stopped, or has no frame function.
func (l *Loop) Start(ctx context.Context) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started || l.stopped || l.frame == nil {
		return false
	}
	l.started = true
	go l.run(ctx)
	return true
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.done)
	l.runner.Store(goid())

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ctx.Done():
			return
		default:
		}
		if !l.frame() {
			return
		}
		select {
		case <-l.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Stop cancels the loop. It is idempotent, safe before Start, and returns
// only once no frame is running; none runs afterwards. Called from inside a
// frame it returns at once and the loop exits when that frame returns.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.stopped {
		l.stopped = true
		close(l.stop)
	}
	started := l.started
	l.mu.Unlock()

	if !started || l.runner.Load() == goid() {
		return
	}
	<-l.done
}

// Done is closed when the loop goroutine exits. It never closes for a loop
// that was not started.
func (l *Loop) Done() <-chan struct{} { return l.done }

// goid parses the current goroutine id from its stack header,
// "goroutine 42 [running]:".
func goid() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i > 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseUint(string(b), 10, 64)
	return id
}
