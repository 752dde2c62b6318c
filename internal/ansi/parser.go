package ansi

import (
	"strings"
	"sync"

	"github.com/dshills/termcore/internal/logging"
)

// maxSequenceLen bounds a held sequence. Longer input is released as
// plain bytes.
const maxSequenceLen = 4096

type parserState int

const (
	stateGround parserState = iota
	stateEscape
	stateEscapeInter
	stateCSI
	stateSS3
	stateString    // OSC, DCS, APC, PM, SOS bodies
	stateStringEsc // ESC seen inside a string body
)

type expectation struct {
	terminator  string
	onResponse  func(string)
	onAbandoned func()
}

// ResponseParser scans terminal input for replies to outstanding requests.
// It implements Parser.
type ResponseParser struct {
	mu sync.Mutex

	state parserState
	held  []byte

	oneShot    []expectation
	persistent []expectation
	late       map[string]int

	unexpected func(seq string) bool
	logger     *logging.Logger
}

// ParserOption configures a ResponseParser.
type ParserOption func(*ResponseParser)

// WithParserLogger sets the parser's logger.
func WithParserLogger(l *logging.Logger) ParserOption {
	return func(p *ResponseParser) {
		p.logger = logging.OrNull(l).WithComponent("parser")
	}
}

// NewResponseParser creates a parser with no expectations.
func NewResponseParser(opts ...ParserOption) *ResponseParser {
	p := &ResponseParser{
		held:   make([]byte, 0, 64),
		late:   make(map[string]int),
		logger: logging.NullLogger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IsExpecting reports whether a one-shot expectation for terminator exists.
// Persistent expectations are not reported.
func (p *ResponseParser) IsExpecting(terminator string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.oneShot {
		if e.terminator == terminator {
			return true
		}
	}
	return false
}

// ExpectResponse registers an expectation. One-shot expectations are
// removed when matched; persistent ones stay until StopExpecting.
func (p *ResponseParser) ExpectResponse(terminator string, onResponse func(string), onAbandoned func(), persistent bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e := expectation{terminator: terminator, onResponse: onResponse, onAbandoned: onAbandoned}
	if persistent {
		p.persistent = append(p.persistent, e)
	} else {
		p.oneShot = append(p.oneShot, e)
	}
}

// StopExpecting removes expectations for terminator. For one-shot
// expectations, OnAbandoned is called for each one removed and a reply
// arriving later for terminator is swallowed without dispatch.
func (p *ResponseParser) StopExpecting(terminator string, persistent bool) {
	p.mu.Lock()
	if persistent {
		p.persistent = removeTerminator(p.persistent, terminator, nil)
		p.mu.Unlock()
		return
	}
	var abandoned []expectation
	p.oneShot = removeTerminator(p.oneShot, terminator, &abandoned)
	p.late[terminator] += len(abandoned)
	p.mu.Unlock()

	for _, e := range abandoned {
		if e.onAbandoned != nil {
			e.onAbandoned()
		}
	}
}

// SetUnexpectedHandler sets a handler offered every complete escape
// sequence that no expectation claims. Returning true swallows it.
func (p *ResponseParser) SetUnexpectedHandler(fn func(seq string) bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unexpected = fn
}

// Process consumes terminal input and returns the bytes that are not
// replies to outstanding requests, in input order. A sequence split across
// calls is held until it completes.
func (p *ResponseParser) Process(data []byte) []byte {
	var o output

	p.mu.Lock()
	for i := 0; i < len(data); i++ {
		b := data[i]
		switch p.state {
		case stateGround:
			if b == 0x1B {
				p.begin(b)
			} else {
				o.plain(b)
			}
		case stateEscape:
			p.held = append(p.held, b)
			switch {
			case b == '[':
				p.state = stateCSI
			case b == 'O':
				p.state = stateSS3
			case b == ']', b == 'P', b == '_', b == '^', b == 'X':
				p.state = stateString
			case b == 0x1B:
				// ESC ESC: release the first as a lone ESC.
				o.plain(0x1B)
				p.held = p.held[:1]
			case b >= 0x20 && b <= 0x2F:
				p.state = stateEscapeInter
			case b >= 0x30 && b <= 0x7E:
				p.complete(&o)
			default:
				p.abort(&o)
			}
		case stateEscapeInter:
			p.held = append(p.held, b)
			switch {
			case b >= 0x20 && b <= 0x2F:
			case b >= 0x30 && b <= 0x7E:
				p.complete(&o)
			default:
				p.abort(&o)
			}
		case stateCSI:
			if b == 0x1B {
				o.plain(p.held...)
				p.begin(b)
				continue
			}
			p.held = append(p.held, b)
			switch {
			case b >= 0x20 && b <= 0x3F: // parameters and intermediates
			case b >= 0x40 && b <= 0x7E:
				p.complete(&o)
			default:
				p.abort(&o)
			}
		case stateSS3:
			p.held = append(p.held, b)
			p.complete(&o)
		case stateString:
			p.held = append(p.held, b)
			switch b {
			case 0x07:
				p.complete(&o)
			case 0x1B:
				p.state = stateStringEsc
			}
		case stateStringEsc:
			if b == '\\' {
				p.held = append(p.held, b)
				p.complete(&o)
				continue
			}
			// Not a string terminator: release the unterminated body and
			// reprocess this byte as following a fresh ESC.
			o.plain(p.held[:len(p.held)-1]...)
			p.begin(0x1B)
			i--
		}
		if len(p.held) > maxSequenceLen {
			p.abort(&o)
		}
	}
	unexpected := p.unexpected
	p.mu.Unlock()

	return o.flush(unexpected)
}

// Pending reports whether a partial sequence is held.
func (p *ResponseParser) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state != stateGround
}

// ReleaseHeld returns any partially received sequence as plain input and
// resets the parser to ground state. Callers use this when a lone ESC is
// not followed by more input in time.
func (p *ResponseParser) ReleaseHeld() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == stateGround {
		return nil
	}
	out := append([]byte(nil), p.held...)
	p.reset()
	return out
}

func (p *ResponseParser) begin(esc byte) {
	p.held = append(p.held[:0], esc)
	p.state = stateEscape
}

func (p *ResponseParser) reset() {
	p.held = p.held[:0]
	p.state = stateGround
}

// abort releases the held bytes as plain input.
func (p *ResponseParser) abort(o *output) {
	o.plain(p.held...)
	p.reset()
}

// complete dispatches the held sequence to the first matching
// expectation, or records it as unclaimed.
func (p *ResponseParser) complete(o *output) {
	seq := string(p.held)
	p.reset()

	for i, e := range p.oneShot {
		if !strings.HasSuffix(seq, e.terminator) {
			continue
		}
		p.oneShot = append(p.oneShot[:i:i], p.oneShot[i+1:]...)
		p.logger.Debug("response for %q", e.terminator)
		o.dispatch(e.onResponse, seq)
		return
	}

	for t, n := range p.late {
		if !strings.HasSuffix(seq, t) {
			continue
		}
		if n <= 1 {
			delete(p.late, t)
		} else {
			p.late[t] = n - 1
		}
		p.logger.Debug("discarding late response for %q", t)
		return
	}

	for _, e := range p.persistent {
		if strings.HasSuffix(seq, e.terminator) {
			o.dispatch(e.onResponse, seq)
			return
		}
	}

	o.unclaimed(seq)
}

// output collects the result of one Process call so that callbacks run
// after the parser lock is released, in input order.
type output struct {
	chunks []chunk
}

type chunk struct {
	data      []byte
	seq       string
	onReply   func(string)
	unclaimed bool
}

func (o *output) plain(b ...byte) {
	if n := len(o.chunks); n > 0 && o.chunks[n-1].data != nil {
		o.chunks[n-1].data = append(o.chunks[n-1].data, b...)
		return
	}
	if len(b) == 0 {
		return
	}
	o.chunks = append(o.chunks, chunk{data: append([]byte(nil), b...)})
}

func (o *output) dispatch(fn func(string), seq string) {
	if fn != nil {
		o.chunks = append(o.chunks, chunk{seq: seq, onReply: fn})
	}
}

func (o *output) unclaimed(seq string) {
	o.chunks = append(o.chunks, chunk{seq: seq, unclaimed: true})
}

func (o *output) flush(unexpected func(string) bool) []byte {
	var out []byte
	for _, c := range o.chunks {
		switch {
		case c.onReply != nil:
			c.onReply(c.seq)
		case c.unclaimed:
			if unexpected == nil || !unexpected(c.seq) {
				out = append(out, c.seq...)
			}
		default:
			out = append(out, c.data...)
		}
	}
	return out
}

func removeTerminator(list []expectation, terminator string, removed *[]expectation) []expectation {
	kept := list[:0]
	for _, e := range list {
		if e.terminator == terminator {
			if removed != nil {
				*removed = append(*removed, e)
			}
			continue
		}
		kept = append(kept, e)
	}
	return kept
}
