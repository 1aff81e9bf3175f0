package tunnel

import (
	"context"
	"sync"
	"time"

	"github.com/l-n-s/QuickShare/tool"
	"github.com/l-n-s/QuickShare/types"
)

// EventKind tags a tunnel lifecycle event.
type EventKind int

const (
	EventReady EventKind = iota
	EventFailed
	EventStopped
)

// Event is the immutable completion record emitted by the event loop. It is
// the only thing that crosses from the loop to the control thread; handles
// never do.
type Event struct {
	Kind    EventKind
	Address string // externally reachable base address, set for EventReady
	Err     error  // set for EventFailed
}

// Options tune the tunnel exchange.
type Options struct {
	TunnelLength int           // hops per direction
	OpenTimeout  time.Duration // per-command deadline against the router
}

func (o *Options) withDefaults() {
	if o.TunnelLength <= 0 {
		o.TunnelLength = 3
	}
	if o.OpenTimeout <= 0 {
		o.OpenTimeout = 2 * time.Minute
	}
}

// Session owns the anonymous-network endpoint and drives its asynchronous
// open/close protocol on a dedicated event loop goroutine. The control
// thread submits requests with Open/Close and receives completions on
// Events(); it never blocks on the exchange itself.
//
// Requests are executed strictly in submission order and one at a time, so
// an Open always fully resolves (success or failure) before a queued Close
// is looked at. That gives the rapid-toggle guarantees for free: a Close
// submitted while Starting waits, then either tears down the now-active
// tunnel or becomes a no-op because the open already failed back to Idle.
type Session struct {
	routerAddr string
	opts       Options

	mu    sync.Mutex
	state types.ShareState

	requests chan request
	events   chan Event
	quit     chan struct{}
	quitOnce sync.Once
	done     chan struct{}

	// loop-owned, never touched outside the event loop
	ctl *Control
	id  string
}

type opKind int

const (
	opOpen opKind = iota
	opClose
)

type request struct {
	op   opKind
	port int
}

// NewSession creates the session and starts its event loop.
func NewSession(routerAddr string, opts Options) *Session {
	opts.withDefaults()
	s := &Session{
		routerAddr: routerAddr,
		opts:       opts,
		state:      types.StateIdle,
		requests:   make(chan request, 8),
		events:     make(chan Event, 16),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	go s.loop()
	return s
}

// Events returns the completion stream. The coordinator must keep draining
// it for the session's lifetime.
func (s *Session) Events() <-chan Event {
	return s.events
}

// State returns a snapshot of the lifecycle state. Purely informational for
// the control thread; decisions inside the loop use the loop's own view.
func (s *Session) State() types.ShareState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Open submits an asynchronous open of the tunnel, forwarding to the local
// port. No-op when not Idle by the time the request is executed; in
// particular, Open while Active never creates a second handle and never
// emits a duplicate ready event.
func (s *Session) Open(localPort int) {
	s.submit(request{op: opOpen, port: localPort})
}

// Close submits an asynchronous teardown. No-op when Idle. Safe to call
// while an open is still in flight: the request queues behind it.
func (s *Session) Close() {
	s.submit(request{op: opClose})
}

func (s *Session) submit(req request) {
	select {
	case s.requests <- req:
	case <-s.quit:
	}
}

// Shutdown stops the event loop, tearing down any live tunnel best-effort.
// It blocks until the loop exits or ctx is done. Used only at process exit;
// no events are emitted for the final teardown.
func (s *Session) Shutdown(ctx context.Context) error {
	s.quitOnce.Do(func() { close(s.quit) })
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) setState(st types.ShareState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Session) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
		// nobody draining; drop rather than wedge the loop
		tool.DefaultLogger.Warnf("tunnel event %d dropped, no consumer", ev.Kind)
	}
}

func (s *Session) loop() {
	defer func() {
		close(s.events) // lets the consumer goroutine finish
		close(s.done)
	}()
	for {
		select {
		case <-s.quit:
			s.teardown()
			return
		case req := <-s.requests:
			switch req.op {
			case opOpen:
				s.handleOpen(req.port)
			case opClose:
				s.handleClose()
			}
		}
	}
}

func (s *Session) handleOpen(localPort int) {
	if s.State() != types.StateIdle {
		return // already active or mid-transition
	}
	s.setState(types.StateStarting)

	ctl, err := DialControl(s.routerAddr, s.opts.OpenTimeout)
	if err != nil {
		s.setState(types.StateIdle)
		s.emit(Event{Kind: EventFailed, Err: err})
		return
	}
	if err := ctl.Handshake(); err != nil {
		_ = ctl.Close()
		s.setState(types.StateIdle)
		s.emit(Event{Kind: EventFailed, Err: err})
		return
	}
	id := "quickshare-" + tool.GenerateRandomUUID()
	dest, err := ctl.CreateSession(id, localPort, s.opts.TunnelLength)
	if err != nil {
		_ = ctl.Close()
		s.setState(types.StateIdle)
		s.emit(Event{Kind: EventFailed, Err: err})
		return
	}

	s.ctl = ctl
	s.id = id
	s.setState(types.StateActive)
	s.emit(Event{Kind: EventReady, Address: "http://" + dest})
}

func (s *Session) handleClose() {
	if s.State() != types.StateActive {
		return // nothing to close; covers a close abandoned by a failed open
	}
	s.setState(types.StateStopping)
	if err := s.ctl.RemoveSession(s.id); err != nil {
		// the connection close below kills the session regardless
		tool.DefaultLogger.Warnf("session remove: %v", err)
	}
	_ = s.ctl.Close()
	s.ctl = nil
	s.id = ""
	s.setState(types.StateIdle)
	s.emit(Event{Kind: EventStopped})
}

func (s *Session) teardown() {
	if s.ctl != nil {
		_ = s.ctl.RemoveSession(s.id)
		_ = s.ctl.Close()
		s.ctl = nil
	}
	s.setState(types.StateIdle)
}
