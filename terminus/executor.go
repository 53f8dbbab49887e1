package terminus

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/camel-ai/terminus/terminal"
)

// endsWithLineTerminator reports whether the keystrokes already end a line:
// a raw newline or carriage return, or a trailing Enter token. The newline
// check runs on the untrimmed string so an existing terminator is never
// doubled.
func endsWithLineTerminator(keys string) bool {
	if strings.HasSuffix(keys, "\n") || strings.HasSuffix(keys, "\r") {
		return true
	}
	return strings.HasSuffix(strings.TrimRight(keys, " \t"), "Enter")
}

// effectiveBlocking suppresses a declared blocking flag for forms that never
// signal completion: a heredoc terminator leaves the shell waiting for input,
// and a backgrounded command returns control immediately, so blocking on
// either would hang until the timeout.
func effectiveBlocking(cmd Command) bool {
	trimmed := strings.TrimSpace(cmd.Keystrokes)
	if strings.HasSuffix(trimmed, "EOF") || strings.HasSuffix(trimmed, "&") {
		return false
	}
	return cmd.IsBlocking
}

// ExecuteBatch plays an ordered batch of commands into the session. Each
// command gets a trailing Enter unless its keystrokes already end in a
// line-terminating token. A timeout on any command aborts the rest of the
// batch and returns timedOut=true with a diagnostic naming the command and a
// snapshot of the terminal; keystrokes already sent are not undone. On full
// success the returned output is a fresh pane snapshot.
func ExecuteBatch(ctx context.Context, commands []Command, sess terminal.Session) (timedOut bool, output string, err error) {
	for _, cmd := range commands {
		keystrokes := cmd.Keystrokes
		if !endsWithLineTerminator(keystrokes) {
			keystrokes += "\nEnter"
		}

		timeout := time.Duration(cmd.TimeoutSec * float64(time.Second))
		sendErr := sess.SendKeys(ctx, keystrokes, effectiveBlocking(cmd), timeout)
		if sendErr != nil {
			if terminal.IsTimeout(sendErr) {
				diag := fmt.Sprintf("Command timed out after %gs: %s\nTerminal state: %s",
					cmd.TimeoutSec, cmd.Keystrokes, sess.CapturePane())
				return true, diag, nil
			}
			return false, "", fmt.Errorf("send keys: %w", sendErr)
		}
	}

	return false, sess.CapturePane(), nil
}
