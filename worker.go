package rescan

import (
	"sync"
	"time"
)

const defaultFrameInterval = time.Second / 60

type drawMessage struct {
	buf   []float32
	names []string
}

// worker owns a Canvas on its own goroutine. The goroutine starts on the
// first message, ticks while outlines are animating and exits once the
// canvas is empty and nothing is queued. The next message starts it again.
type worker struct {
	canvas   *Canvas
	interval time.Duration
	publish  func(*Frame)

	mu      sync.Mutex
	queue   []drawMessage
	running bool
	closed  bool
	wake    chan struct{}
	stop    chan struct{}
	wg      sync.WaitGroup
}

func newWorker(canvas *Canvas, interval time.Duration, publish func(*Frame)) *worker {
	if interval <= 0 {
		interval = defaultFrameInterval
	}
	return &worker{
		canvas:   canvas,
		interval: interval,
		publish:  publish,
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}
}

// send queues msg and starts the goroutine if it is not running. It never
// blocks on the goroutine.
func (w *worker) send(msg drawMessage) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.queue = append(w.queue, msg)
	if !w.running {
		w.running = true
		w.wg.Add(1)
		go w.loop()
	}
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *worker) isRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *worker) close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.stop)
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *worker) loop() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-w.stop:
			return
		case <-w.wake:
			w.drain()
		case <-ticker.C:
			w.drain()
			if w.canvas.Active() {
				w.publish(w.canvas.Step())
			}
			if w.idle() {
				return
			}
		}
	}
}

// drain applies every queued message to the canvas.
func (w *worker) drain() {
	w.mu.Lock()
	queue := w.queue
	w.queue = nil
	w.mu.Unlock()
	for _, msg := range queue {
		w.canvas.Apply(msg.buf, msg.names)
	}
}

// idle marks the goroutine stopped if there is nothing left to animate.
func (w *worker) idle() bool {
	if w.canvas.Active() {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.queue) > 0 {
		return false
	}
	w.running = false
	return true
}
