package ansi

import (
	"testing"
)

func TestParserPassthrough(t *testing.T) {
	p := NewResponseParser()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "hello", "hello"},
		{"utf8", "héllo 中", "héllo 中"},
		{"arrow key", "\x1b[A", "\x1b[A"},
		{"ss3 key", "\x1bOP", "\x1bOP"},
		{"alt key", "\x1bx", "\x1bx"},
		{"csi with params", "a\x1b[1;5Cb", "a\x1b[1;5Cb"},
		{"osc bel", "\x1b]11;rgb:0000/0000/0000\x07", "\x1b]11;rgb:0000/0000/0000\x07"},
		{"dcs st", "\x1bP1$r0m\x1b\\", "\x1bP1$r0m\x1b\\"},
		{"control in csi", "\x1b[1\x03", "\x1b[1\x03"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(p.Process([]byte(tt.input)))
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
			if p.Pending() {
				t.Error("expected parser back in ground state")
			}
		})
	}
}

func TestParserDispatchesExpectedResponse(t *testing.T) {
	p := NewResponseParser()
	var got []string
	p.ExpectResponse("c", func(resp string) { got = append(got, resp) }, nil, false)

	if !p.IsExpecting("c") {
		t.Fatal("expected IsExpecting(c)")
	}

	out := p.Process([]byte("ab\x1b[?62;22cd"))
	if string(out) != "abd" {
		t.Errorf("expected passthrough abd, got %q", out)
	}
	if len(got) != 1 || got[0] != "\x1b[?62;22c" {
		t.Errorf("expected one DA reply, got %q", got)
	}
	if p.IsExpecting("c") {
		t.Error("expected one-shot expectation removed after match")
	}

	// A second reply is no longer expected and passes through.
	out = p.Process([]byte("\x1b[?62;22c"))
	if string(out) != "\x1b[?62;22c" {
		t.Errorf("expected unexpected reply to pass through, got %q", out)
	}
}

func TestParserSplitSequence(t *testing.T) {
	p := NewResponseParser()
	var got string
	p.ExpectResponse("R", func(resp string) { got = resp }, nil, false)

	if out := p.Process([]byte("q\x1b[3")); string(out) != "q" {
		t.Errorf("expected q, got %q", out)
	}
	if !p.Pending() {
		t.Error("expected partial sequence to be held")
	}
	if out := p.Process([]byte(";7R")); len(out) != 0 {
		t.Errorf("expected no passthrough, got %q", out)
	}
	if got != "\x1b[3;7R" {
		t.Errorf("expected reassembled reply, got %q", got)
	}
}

func TestParserFirstRegisteredWins(t *testing.T) {
	p := NewResponseParser()
	var order []string
	p.ExpectResponse("c", func(string) { order = append(order, "first") }, nil, false)
	p.ExpectResponse("c", func(string) { order = append(order, "second") }, nil, false)

	p.Process([]byte("\x1b[?1c\x1b[>0;95;0c"))
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("expected first then second, got %v", order)
	}
}

func TestParserPersistent(t *testing.T) {
	p := NewResponseParser()
	var persistent, oneShot int
	p.ExpectResponse("t", func(string) { persistent++ }, nil, true)

	if p.IsExpecting("t") {
		t.Error("expected persistent expectations to be invisible to IsExpecting")
	}

	p.Process([]byte("\x1b[8;24;80t\x1b[8;25;80t"))
	if persistent != 2 {
		t.Errorf("expected persistent handler called twice, got %d", persistent)
	}

	p.ExpectResponse("t", func(string) { oneShot++ }, nil, false)
	p.Process([]byte("\x1b[8;24;80t"))
	if oneShot != 1 || persistent != 2 {
		t.Errorf("expected one-shot to match before persistent, got oneShot=%d persistent=%d", oneShot, persistent)
	}

	p.StopExpecting("t", true)
	if out := p.Process([]byte("\x1b[8;24;80t")); string(out) != "\x1b[8;24;80t" {
		t.Errorf("expected passthrough after StopExpecting, got %q", out)
	}
}

func TestParserStopExpectingSwallowsLateReply(t *testing.T) {
	p := NewResponseParser()
	called, abandoned := false, false
	p.ExpectResponse("R", func(string) { called = true }, func() { abandoned = true }, false)

	p.StopExpecting("R", false)
	if !abandoned {
		t.Error("expected OnAbandoned to be called")
	}
	if p.IsExpecting("R") {
		t.Error("expected expectation removed")
	}

	if out := p.Process([]byte("\x1b[1;1R")); len(out) != 0 {
		t.Errorf("expected late reply swallowed, got %q", out)
	}
	if called {
		t.Error("expected late reply not dispatched")
	}

	if out := p.Process([]byte("\x1b[1;1R")); string(out) != "\x1b[1;1R" {
		t.Errorf("expected only one late reply swallowed, got %q", out)
	}
}

func TestParserUnexpectedHandler(t *testing.T) {
	p := NewResponseParser()
	var seen []string
	p.SetUnexpectedHandler(func(seq string) bool {
		seen = append(seen, seq)
		return seq == "\x1b[I"
	})

	out := p.Process([]byte("\x1b[I\x1b[A"))
	if string(out) != "\x1b[A" {
		t.Errorf("expected focus event swallowed, got %q", out)
	}
	if len(seen) != 2 {
		t.Errorf("expected handler offered both sequences, got %q", seen)
	}
}

func TestParserCallbackMayReenter(t *testing.T) {
	p := NewResponseParser()
	p.ExpectResponse("c", func(string) {
		// Callbacks run without the parser lock held.
		p.ExpectResponse("R", nil, nil, false)
	}, nil, false)

	p.Process([]byte("\x1b[?1c"))
	if !p.IsExpecting("R") {
		t.Error("expected callback to register a new expectation")
	}
}

func TestParserReleaseHeld(t *testing.T) {
	p := NewResponseParser()

	if out := p.Process([]byte{0x1b}); len(out) != 0 {
		t.Errorf("expected lone ESC held, got %q", out)
	}
	if got := string(p.ReleaseHeld()); got != "\x1b" {
		t.Errorf("expected ESC released, got %q", got)
	}
	if p.Pending() {
		t.Error("expected ground state after release")
	}
	if p.ReleaseHeld() != nil {
		t.Error("expected nothing held")
	}
}

func TestParserDoubleEscape(t *testing.T) {
	p := NewResponseParser()
	out := p.Process([]byte("\x1b\x1b[B"))
	if string(out) != "\x1b\x1b[B" {
		t.Errorf("expected both sequences passed through, got %q", out)
	}
}

func TestParserUnterminatedString(t *testing.T) {
	p := NewResponseParser()
	out := p.Process([]byte("\x1b]0;title\x1b[A"))
	if string(out) != "\x1b]0;title\x1b[A" {
		t.Errorf("expected unterminated OSC released, got %q", out)
	}
}

func TestParserOverlongSequence(t *testing.T) {
	p := NewResponseParser()
	data := append([]byte("\x1b]"), make([]byte, maxSequenceLen+10)...)
	for i := 2; i < len(data); i++ {
		data[i] = 'x'
	}
	out := p.Process(data)
	if len(out) != len(data) {
		t.Errorf("expected all %d bytes released, got %d", len(data), len(out))
	}
	if p.Pending() {
		t.Error("expected ground state after overlong sequence")
	}
}
