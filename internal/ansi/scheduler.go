package ansi

import (
	"slices"
	"sync"
	"time"

	"github.com/dshills/termcore/internal/config"
	"github.com/dshills/termcore/internal/logging"
)

// Parser is the registry of outstanding expectations the scheduler
// consults. It is the only record of which terminators are in flight.
type Parser interface {
	// IsExpecting reports whether a one-shot reply for terminator is
	// outstanding.
	IsExpecting(terminator string) bool

	// ExpectResponse registers a reply expectation.
	ExpectResponse(terminator string, onResponse func(string), onAbandoned func(), persistent bool)

	// StopExpecting removes expectations for terminator.
	StopExpecting(terminator string, persistent bool)
}

// Default pacing values.
const (
	DefaultThrottle     = 100 * time.Millisecond
	DefaultStaleTimeout = 5 * time.Second
	DefaultRunThrottle  = 100 * time.Millisecond
)

// QueuedRequest is a request waiting to be sent.
type QueuedRequest struct {
	Request  *Request
	Enqueued time.Time
}

// Scheduler paces requests so that each terminator has at most one
// outstanding request and sends sharing a terminator are throttled.
type Scheduler struct {
	parser Parser
	clock  Clock
	logger *logging.Logger

	throttle     time.Duration
	staleTimeout time.Duration
	runThrottle  time.Duration

	mu       sync.Mutex
	queue    []*QueuedRequest
	lastSend map[string]time.Time
	lastRun  time.Time
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithThrottle sets the minimum spacing between sends sharing a terminator.
func WithThrottle(d time.Duration) Option {
	return func(s *Scheduler) {
		s.throttle = d
	}
}

// WithStaleTimeout sets how long an outstanding request may go unanswered
// before a new request for its terminator evicts it.
func WithStaleTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		s.staleTimeout = d
	}
}

// WithRunThrottle sets the minimum spacing between unforced RunSchedule calls.
func WithRunThrottle(d time.Duration) Option {
	return func(s *Scheduler) {
		s.runThrottle = d
	}
}

// WithClock sets the time source.
func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		s.clock = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logging.OrNull(l).WithComponent("scheduler")
	}
}

// FromConfig applies the pacing values from cfg.
func FromConfig(cfg config.SchedulerConfig) Option {
	return func(s *Scheduler) {
		s.throttle = cfg.Throttle.Std()
		s.staleTimeout = cfg.StaleTimeout.Std()
		s.runThrottle = cfg.RunThrottle.Std()
	}
}

// NewScheduler creates a scheduler backed by parser.
func NewScheduler(parser Parser, opts ...Option) *Scheduler {
	s := &Scheduler{
		parser:       parser,
		clock:        SystemClock{},
		logger:       logging.NullLogger,
		throttle:     DefaultThrottle,
		staleTimeout: DefaultStaleTimeout,
		runThrottle:  DefaultRunThrottle,
		lastSend:     make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lastRun = s.clock.Now()
	return s
}

// SendOrSchedule sends req immediately when its terminator is free and
// not throttled, and queues it otherwise. It reports whether req was sent.
//
// An outstanding request for the same terminator that has gone unanswered
// longer than the stale timeout is evicted first. A non-nil error from
// req.Send is returned wrapped in a *SendError with sent true; the request
// stays registered as outstanding.
func (s *Scheduler) SendOrSchedule(req *Request) (bool, error) {
	if err := req.validate(); err != nil {
		return false, err
	}

	if sent, err := s.trySend(req); sent {
		return true, err
	}

	s.mu.Lock()
	s.queue = append(s.queue, &QueuedRequest{Request: req, Enqueued: s.clock.Now()})
	depth := len(s.queue)
	s.mu.Unlock()

	s.logger.Debug("queued %s (depth %d)", req, depth)
	return false, nil
}

// RunSchedule sends the first queued request whose terminator is free and
// not throttled, and reports whether one was sent. At most one request is
// sent per call.
//
// Unless force is set, a call within the run throttle of the previous run
// does nothing. Outstanding requests are never evicted here; eviction
// happens only when a new request for the same terminator is scheduled.
func (s *Scheduler) RunSchedule(force bool) (bool, error) {
	s.mu.Lock()
	now := s.clock.Now()
	if !force && now.Sub(s.lastRun) < s.runThrottle {
		s.mu.Unlock()
		return false, nil
	}
	s.lastRun = now
	candidates := make([]*QueuedRequest, len(s.queue))
	copy(candidates, s.queue)
	s.mu.Unlock()

	for _, qr := range candidates {
		if s.sendable(qr.Request.Terminator) != sendReady {
			continue
		}
		if !s.dequeue(qr) {
			continue
		}
		return s.send(qr.Request)
	}
	return false, nil
}

// QueuedRequests returns a snapshot of the queue in scan order.
func (s *Scheduler) QueuedRequests() []QueuedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]QueuedRequest, len(s.queue))
	for i, qr := range s.queue {
		out[i] = *qr
	}
	return out
}

// Len returns the number of queued requests.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// LastSend returns when a request for terminator was last sent.
func (s *Scheduler) LastSend(terminator string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.lastSend[terminator]
	return t, ok
}

type sendState int

const (
	sendReady sendState = iota
	sendOutstanding
	sendThrottled
)

// sendable classifies terminator. An outstanding request takes precedence
// over throttling so that stale eviction can be considered.
func (s *Scheduler) sendable(terminator string) sendState {
	if s.parser.IsExpecting(terminator) {
		return sendOutstanding
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if last, ok := s.lastSend[terminator]; ok && s.clock.Now().Sub(last) < s.throttle {
		return sendThrottled
	}
	return sendReady
}

func (s *Scheduler) trySend(req *Request) (bool, error) {
	state := s.sendable(req.Terminator)
	if state == sendOutstanding && s.stale(req.Terminator) {
		s.logger.Warn("evicting stale request for %q", req.Terminator)
		s.parser.StopExpecting(req.Terminator, false)
		state = s.sendable(req.Terminator)
	}
	if state != sendReady {
		return false, nil
	}
	return s.send(req)
}

func (s *Scheduler) stale(terminator string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.lastSend[terminator]
	return ok && s.clock.Now().Sub(last) > s.staleTimeout
}

// send commits the bookkeeping for req and then transmits it.
func (s *Scheduler) send(req *Request) (bool, error) {
	s.mu.Lock()
	s.lastSend[req.Terminator] = s.clock.Now()
	s.mu.Unlock()

	s.parser.ExpectResponse(req.Terminator, req.OnResponse, req.OnAbandoned, false)
	s.logger.Debug("sending %s", req)

	if err := req.Send(); err != nil {
		s.logger.Error("send failed for %s: %v", req, err)
		return true, &SendError{RequestID: req.ID, Terminator: req.Terminator, Err: err}
	}
	return true, nil
}

func (s *Scheduler) dequeue(qr *QueuedRequest) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.Index(s.queue, qr)
	if i < 0 {
		return false
	}
	s.queue = slices.Delete(s.queue, i, i+1)
	return true
}
