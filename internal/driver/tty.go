//go:build !windows

package driver

import (
	"github.com/gdamore/tcell/v2"
)

// TTY is the controlling terminal in raw mode.
type TTY struct {
	tcell.Tty
}

// OpenTTY opens the controlling terminal and puts it in raw mode.
func OpenTTY() (*TTY, error) {
	tty, err := tcell.NewDevTty()
	if err != nil {
		return nil, err
	}
	if err := tty.Start(); err != nil {
		tty.Close()
		return nil, err
	}
	return &TTY{Tty: tty}, nil
}

// Size returns the terminal size in cells.
func (t *TTY) Size() (cols, rows int, err error) {
	ws, err := t.WindowSize()
	if err != nil {
		return 0, 0, err
	}
	return ws.Width, ws.Height, nil
}

// Close restores the terminal mode and closes the device.
func (t *TTY) Close() error {
	_ = t.Drain()
	if err := t.Stop(); err != nil {
		t.Tty.Close()
		return err
	}
	return t.Tty.Close()
}
