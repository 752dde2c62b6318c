// Package ansi paces terminal escape-sequence requests and matches the
// terminal's replies.
//
// A terminal answers queries such as Device Attributes (ESC [ c) or Cursor
// Position Report (ESC [ 6 n) on the same byte stream that carries
// keystrokes, and many terminals mishandle a second query of a kind that
// arrives before the first has been answered. Scheduler serializes
// requests per terminator, the trailing text that identifies which query a
// reply answers:
//
//   - at most one request per terminator is outstanding at a time;
//   - sends sharing a terminator are spaced by a throttle window;
//   - a request left unanswered longer than the stale timeout is evicted
//     when, and only when, a new request for the same terminator arrives.
//
// ResponseParser is the concrete expectation registry. It sits on the
// input stream, swallows replies to outstanding requests and dispatches
// them to the request's callback, and returns every other byte to the
// caller as input.
//
// # Basic Usage
//
//	parser := ansi.NewResponseParser()
//	sched := ansi.NewScheduler(parser)
//
//	req := ansi.RequestCursorPosition.NewRequest(func(resp string) {
//	    row, col, err := ansi.ParseCursorPosition(resp)
//	    ...
//	}, func() error {
//	    _, err := tty.Write(ansi.RequestCursorPosition.Payload)
//	    return err
//	})
//	sent, err := sched.SendOrSchedule(req)
//
//	// Main loop:
//	input := parser.Process(buf[:n])
//	sched.RunSchedule(false)
//
// Neither type blocks. Scheduler and ResponseParser are safe for concurrent
// use; callbacks run on the goroutine that triggered them with no internal
// locks held.
package ansi
