//go:build windows

package driver

import "io"

// TTY is unavailable on Windows.
type TTY struct {
	io.ReadWriteCloser
}

// OpenTTY returns ErrNoTTY.
func OpenTTY() (*TTY, error) {
	return nil, ErrNoTTY
}

// Size returns ErrNoTTY.
func (t *TTY) Size() (cols, rows int, err error) {
	return 0, 0, ErrNoTTY
}
