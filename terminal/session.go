// Package terminal abstracts the live terminal session an agent drives.
//
// A Session accepts raw keystrokes, exposes the current pane contents, and
// reports a playback timestamp for annotating the recorded timeline. The
// package ships a local shell-backed implementation; a tmux- or
// container-backed session satisfies the same interface.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Session is a live terminal handle.
type Session interface {
	// CapturePane returns the current visible terminal contents.
	CapturePane() string

	// SendKeys delivers keystrokes to the terminal. When block is true the
	// call waits for the terminal to signal completion, up to maxTimeout,
	// and returns a *TimeoutError on expiry. When block is false the call
	// returns as soon as the keystrokes are delivered.
	SendKeys(ctx context.Context, keys string, block bool, maxTimeout time.Duration) error

	// AsciinemaTimestamp returns the elapsed seconds on the session's
	// playback clock, used to position markers on the recorded timeline.
	AsciinemaTimestamp() float64
}

// TimeoutError reports that a blocking send did not complete within its
// declared timeout.
type TimeoutError struct {
	Keys    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("send of %q did not complete within %s", e.Keys, e.Timeout)
}

// IsTimeout reports whether err is a send timeout.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}
