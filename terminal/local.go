package terminal

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"
)

// sensitiveEnvPatterns are case-insensitive suffixes for environment variables
// that should be excluded by default.
var sensitiveEnvPatterns = []string{
	"_API_KEY",
	"_SECRET",
	"_TOKEN",
	"_PASSWORD",
	"_CREDENTIAL",
}

// safeEnvVars are always included regardless of filtering.
var safeEnvVars = map[string]bool{
	"PATH": true, "HOME": true, "USER": true, "SHELL": true,
	"LANG": true, "TERM": true, "TMPDIR": true,
	"GOPATH": true, "GOROOT": true, "CARGO_HOME": true,
	"NVM_DIR": true, "RUSTUP_HOME": true, "PYENV_ROOT": true,
	"XDG_CONFIG_HOME": true, "XDG_DATA_HOME": true, "XDG_CACHE_HOME": true,
}

func isSensitiveEnvVar(name string) bool {
	upper := strings.ToUpper(name)
	for _, pattern := range sensitiveEnvPatterns {
		if strings.HasSuffix(upper, pattern) {
			return true
		}
	}
	return false
}

// filterEnvironment returns a filtered set of environment variables,
// excluding sensitive ones.
func filterEnvironment() []string {
	var filtered []string
	for _, env := range os.Environ() {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			continue
		}
		name := parts[0]
		if safeEnvVars[name] || !isSensitiveEnvVar(name) {
			filtered = append(filtered, env)
		}
	}
	return filtered
}

// LocalSession emulates a terminal session by running submitted keystrokes
// through a local shell and accumulating output in a scrollback buffer.
// The pane returned by CapturePane is the tail of that buffer.
type LocalSession struct {
	mu         sync.Mutex
	workingDir string
	scrollback strings.Builder
	paneLimit  int
	start      time.Time
	env        []string
	bg         sync.WaitGroup
}

// LocalSessionOption configures a LocalSession.
type LocalSessionOption func(*LocalSession)

// WithPaneLimit caps how many trailing bytes CapturePane returns.
func WithPaneLimit(n int) LocalSessionOption {
	return func(s *LocalSession) { s.paneLimit = n }
}

// WithEnv replaces the session environment (defaults to the filtered host
// environment).
func WithEnv(env []string) LocalSessionOption {
	return func(s *LocalSession) { s.env = env }
}

// NewLocalSession creates a shell-backed session rooted at workingDir. An
// empty workingDir uses the current directory.
func NewLocalSession(workingDir string, opts ...LocalSessionOption) (*LocalSession, error) {
	if workingDir == "" {
		var err error
		workingDir, err = os.Getwd()
		if err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(workingDir, 0o755); err != nil {
		return nil, err
	}
	s := &LocalSession{
		workingDir: workingDir,
		paneLimit:  16384,
		start:      time.Now(),
		env:        filterEnvironment(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// WorkingDirectory returns the session's working directory.
func (s *LocalSession) WorkingDirectory() string {
	return s.workingDir
}

// AsciinemaTimestamp returns seconds elapsed since the session started.
func (s *LocalSession) AsciinemaTimestamp() float64 {
	return time.Since(s.start).Seconds()
}

// CapturePane returns the tail of the scrollback buffer.
func (s *LocalSession) CapturePane() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	text := s.scrollback.String()
	if s.paneLimit > 0 && len(text) > s.paneLimit {
		text = text[len(text)-s.paneLimit:]
		// Start the pane at a line boundary.
		if idx := strings.IndexByte(text, '\n'); idx >= 0 && idx < len(text)-1 {
			text = text[idx+1:]
		}
	}
	return text
}

// SendKeys runs the keystrokes as a shell script. A trailing literal "Enter"
// token or newline marks the end of input and is stripped before execution,
// matching how a multiplexer would interpret the keys. A blocking send waits
// for the script to exit, up to maxTimeout; a non-blocking send returns
// immediately and folds the output into the scrollback when the script
// finishes.
func (s *LocalSession) SendKeys(ctx context.Context, keys string, block bool, maxTimeout time.Duration) error {
	script := normalizeKeys(keys)

	s.appendScrollback("$ " + script + "\n")

	if !block {
		s.bg.Add(1)
		go func() {
			defer s.bg.Done()
			out, _ := s.run(context.WithoutCancel(ctx), script, maxTimeout)
			s.appendScrollback(out)
		}()
		return nil
	}

	out, timedOut := s.run(ctx, script, maxTimeout)
	s.appendScrollback(out)
	if timedOut {
		return &TimeoutError{Keys: keys, Timeout: maxTimeout}
	}
	return nil
}

// Wait blocks until all non-blocking sends have finished. Useful in tests
// and at session teardown.
func (s *LocalSession) Wait() {
	s.bg.Wait()
}

func (s *LocalSession) appendScrollback(text string) {
	if text == "" {
		return
	}
	s.mu.Lock()
	s.scrollback.WriteString(text)
	s.mu.Unlock()
}

func (s *LocalSession) run(ctx context.Context, script string, timeout time.Duration) (output string, timedOut bool) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shell := "/bin/bash"
	shellArg := "-c"
	if runtime.GOOS == "windows" {
		shell = "cmd.exe"
		shellArg = "/c"
	}

	cmd := exec.CommandContext(ctx, shell, shellArg, script)
	cmd.Dir = s.workingDir
	cmd.Env = s.env

	// Process group so a timeout kills the whole tree.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined

	err := cmd.Run()
	if err != nil && ctx.Err() == context.DeadlineExceeded {
		if cmd.Process != nil {
			_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		}
		return combined.String(), true
	}

	return combined.String(), false
}

// normalizeKeys strips the trailing end-of-line token from raw keystrokes,
// leaving the script text to execute.
func normalizeKeys(keys string) string {
	script := keys
	trimmed := strings.TrimRight(script, "\n\r")
	if trimmed != script {
		return trimmed
	}
	if strings.HasSuffix(script, "Enter") {
		return strings.TrimRight(strings.TrimSuffix(script, "Enter"), " \n\r")
	}
	return script
}
