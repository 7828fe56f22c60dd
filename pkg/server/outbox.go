package server

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
)

// DefaultOutboxSize is the number of frames a connection may have queued.
const DefaultOutboxSize = 256

// Sink accepts rendered frames for one connection.
type Sink interface {
	// Send queues frame without blocking and reports whether it was accepted.
	Send(frame string) bool
	// Close flushes what is queued and closes the connection.
	Close() error
}

// Outbox is a Sink that writes queued frames to w from its own goroutine.
// A full queue drops the frame; a failed write marks the outbox dead and
// every later frame is dropped.
type Outbox struct {
	w      io.WriteCloser
	frames chan string
	quit   chan struct{}
	done   chan struct{}
	onDrop func()

	closeOnce sync.Once
	dead      atomic.Bool
}

// NewOutbox starts the writer goroutine. onDrop, if set, is called for
// every dropped frame.
func NewOutbox(w io.WriteCloser, size int, onDrop func()) *Outbox {
	if size <= 0 {
		size = DefaultOutboxSize
	}
	o := &Outbox{
		w:      w,
		frames: make(chan string, size),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
		onDrop: onDrop,
	}
	go o.run()
	return o
}

// Send queues frame.
func (o *Outbox) Send(frame string) bool {
	if o.dead.Load() {
		o.drop()
		return false
	}
	select {
	case <-o.quit:
		return false
	default:
	}

	select {
	case o.frames <- frame:
		return true
	default:
		o.drop()
		return false
	}
}

// Close stops accepting frames. Queued frames are still written before
// the underlying writer is closed.
func (o *Outbox) Close() error {
	o.closeOnce.Do(func() { close(o.quit) })
	return nil
}

// Done is closed once the writer has been closed.
func (o *Outbox) Done() <-chan struct{} {
	return o.done
}

func (o *Outbox) drop() {
	if o.onDrop != nil {
		o.onDrop()
	}
}

func (o *Outbox) run() {
	defer close(o.done)
	defer func() { _ = o.w.Close() }()

	for {
		select {
		case frame := <-o.frames:
			o.write(frame)
		case <-o.quit:
			for {
				select {
				case frame := <-o.frames:
					o.write(frame)
				default:
					return
				}
			}
		}
	}
}

func (o *Outbox) write(frame string) {
	if o.dead.Load() {
		return
	}
	if _, err := io.WriteString(o.w, frame); err != nil {
		o.dead.Store(true)
		slog.Debug("outbox write failed", "err", err)
	}
}
