// Package driver connects a terminal byte stream to the request scheduler.
//
// A Driver owns a ResponseParser and a Scheduler. Outgoing queries are
// written to the stream when the scheduler releases them; incoming bytes
// are scanned for replies and everything else is forwarded on Input.
package driver

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/dshills/termcore/internal/ansi"
	"github.com/dshills/termcore/internal/config"
	"github.com/dshills/termcore/internal/logging"
)

// Defaults for the main loop.
const (
	DefaultTick          = 50 * time.Millisecond
	DefaultEscapeTimeout = 50 * time.Millisecond
	DefaultInputBuffer   = 64
	readBufferSize       = 4096
)

// Errors returned by the driver.
var (
	// ErrAbandoned is returned by QueryWait when the request was evicted
	// before a reply arrived.
	ErrAbandoned = errors.New("driver: request abandoned")

	// ErrNoTTY is returned by OpenTTY on platforms without a controlling
	// terminal device.
	ErrNoTTY = errors.New("driver: no tty available")
)

// Driver pumps terminal I/O for a scheduler.
type Driver struct {
	rw  io.ReadWriter
	wmu sync.Mutex

	parser *ansi.ResponseParser
	sched  *ansi.Scheduler

	input chan []byte

	tick          time.Duration
	escapeTimeout time.Duration
	inputBuffer   int
	clock         ansi.Clock
	logger        *logging.Logger
	schedOpts     []ansi.Option
}

// Option configures a Driver.
type Option func(*Driver)

// WithTick sets how often the scheduler is pumped.
func WithTick(d time.Duration) Option {
	return func(dr *Driver) {
		if d > 0 {
			dr.tick = d
		}
	}
}

// WithEscapeTimeout sets how long a partial escape sequence is held before
// it is released as input.
func WithEscapeTimeout(d time.Duration) Option {
	return func(dr *Driver) {
		if d > 0 {
			dr.escapeTimeout = d
		}
	}
}

// WithInputBuffer sets the capacity of the Input channel.
func WithInputBuffer(n int) Option {
	return func(dr *Driver) {
		if n >= 0 {
			dr.inputBuffer = n
		}
	}
}

// WithClock sets the scheduler's clock.
func WithClock(c ansi.Clock) Option {
	return func(dr *Driver) {
		dr.clock = c
	}
}

// WithLogger sets the logger shared by the driver, parser and scheduler.
func WithLogger(l *logging.Logger) Option {
	return func(dr *Driver) {
		dr.logger = logging.OrNull(l)
	}
}

// WithSchedulerOptions passes extra options to the scheduler.
func WithSchedulerOptions(opts ...ansi.Option) Option {
	return func(dr *Driver) {
		dr.schedOpts = append(dr.schedOpts, opts...)
	}
}

// FromConfig applies the driver and scheduler sections of cfg.
func FromConfig(cfg *config.Config) Option {
	return func(dr *Driver) {
		WithTick(cfg.Driver.Tick.Std())(dr)
		WithEscapeTimeout(cfg.Driver.EscapeTimeout.Std())(dr)
		dr.schedOpts = append(dr.schedOpts, ansi.FromConfig(cfg.Scheduler))
	}
}

// New creates a driver over rw.
func New(rw io.ReadWriter, opts ...Option) *Driver {
	d := &Driver{
		rw:            rw,
		tick:          DefaultTick,
		escapeTimeout: DefaultEscapeTimeout,
		inputBuffer:   DefaultInputBuffer,
		clock:         ansi.SystemClock{},
		logger:        logging.NullLogger,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.parser = ansi.NewResponseParser(ansi.WithParserLogger(d.logger))
	schedOpts := append([]ansi.Option{
		ansi.WithClock(d.clock),
		ansi.WithLogger(d.logger),
	}, d.schedOpts...)
	d.sched = ansi.NewScheduler(d.parser, schedOpts...)
	d.input = make(chan []byte, d.inputBuffer)
	d.logger = d.logger.WithComponent("driver")
	return d
}

// Parser returns the driver's response parser.
func (d *Driver) Parser() *ansi.ResponseParser {
	return d.parser
}

// Scheduler returns the driver's scheduler.
func (d *Driver) Scheduler() *ansi.Scheduler {
	return d.sched
}

// Input delivers bytes that are not replies to outstanding requests. Run
// blocks while the channel is full, so it must be drained.
func (d *Driver) Input() <-chan []byte {
	return d.input
}

// Write writes p to the stream, serialized with query payloads.
func (d *Driver) Write(p []byte) (int, error) {
	d.wmu.Lock()
	defer d.wmu.Unlock()
	return d.rw.Write(p)
}

// Request builds a request for spec that writes its payload to the stream.
func (d *Driver) Request(spec ansi.RequestSpec, onResponse func(string)) *ansi.Request {
	payload := spec.Payload
	return spec.NewRequest(onResponse, func() error {
		_, err := d.Write(payload)
		return err
	})
}

// Query schedules spec and reports whether it was sent immediately.
func (d *Driver) Query(spec ansi.RequestSpec, onResponse func(string)) (bool, error) {
	return d.sched.SendOrSchedule(d.Request(spec, onResponse))
}

// QueryWait schedules spec and waits for its reply. Run must be active for
// the reply to be read.
func (d *Driver) QueryWait(ctx context.Context, spec ansi.RequestSpec) (string, error) {
	replies := make(chan string, 1)
	abandoned := make(chan struct{}, 1)

	req := d.Request(spec, func(resp string) {
		select {
		case replies <- resp:
		default:
		}
	})
	req.OnAbandoned = func() {
		select {
		case abandoned <- struct{}{}:
		default:
		}
	}

	if _, err := d.sched.SendOrSchedule(req); err != nil {
		return "", err
	}
	select {
	case resp := <-replies:
		return resp, nil
	case <-abandoned:
		return "", ErrAbandoned
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

type readResult struct {
	data []byte
	err  error
}

// Run reads the stream until ctx is cancelled or a read fails. Replies
// are dispatched to their requests, other bytes are sent on Input, and the
// scheduler is pumped every tick. A partial escape sequence that sees no
// further input for the escape timeout is released as input.
//
// Run returns ctx.Err() on cancellation and the read error otherwise. The
// reader goroutine stays blocked in Read until the stream yields or is
// closed.
func (d *Driver) Run(ctx context.Context) error {
	reads := make(chan readResult)
	go d.readLoop(ctx, reads)

	ticker := time.NewTicker(d.tick)
	defer ticker.Stop()

	escTimer := time.NewTimer(d.escapeTimeout)
	escTimer.Stop()
	defer escTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case r := <-reads:
			if len(r.data) > 0 {
				if err := d.deliver(ctx, d.parser.Process(r.data)); err != nil {
					return err
				}
				if d.parser.Pending() {
					escTimer.Reset(d.escapeTimeout)
				} else {
					escTimer.Stop()
				}
			}
			if r.err != nil {
				if err := d.deliver(ctx, d.parser.ReleaseHeld()); err != nil {
					return err
				}
				if !errors.Is(r.err, io.EOF) {
					d.logger.Error("read: %v", r.err)
				}
				return r.err
			}

		case <-escTimer.C:
			if held := d.parser.ReleaseHeld(); len(held) > 0 {
				d.logger.Debug("releasing %d held bytes", len(held))
				if err := d.deliver(ctx, held); err != nil {
					return err
				}
			}

		case <-ticker.C:
			if _, err := d.sched.RunSchedule(false); err != nil {
				d.logger.Warn("schedule: %v", err)
			}
		}
	}
}

func (d *Driver) readLoop(ctx context.Context, out chan<- readResult) {
	buf := make([]byte, readBufferSize)
	for {
		n, err := d.rw.Read(buf)
		r := readResult{err: err}
		if n > 0 {
			r.data = append([]byte(nil), buf[:n]...)
		}
		if n > 0 || err != nil {
			select {
			case out <- r:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			return
		}
	}
}

func (d *Driver) deliver(ctx context.Context, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	select {
	case d.input <- data:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
