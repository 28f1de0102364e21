// Package process runs external commands on behalf of variable drivers.
//
// Two modes are provided: Exec runs a command once and delivers its output
// (or error) asynchronously, and Subprocess starts a long-running command
// whose stdout is delivered line by line until the process exits or is
// killed. All callbacks are invoked from background goroutines; callers
// that need loop affinity must dispatch themselves.
package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// ErrEmptyCommand is reported when a command spec has no argv entries.
var ErrEmptyCommand = errors.New("astal: empty command")

// Exec runs argv once and calls exactly one of onOutput or onError when it
// finishes. Output has the trailing newline trimmed. A non-zero exit is an
// error; any captured stderr is folded into the error message.
func Exec(argv []string, onOutput func(string), onError func(error)) {
	if len(argv) == 0 {
		go onError(ErrEmptyCommand)
		return
	}

	go func() {
		cmd := exec.Command(argv[0], argv[1:]...)
		out, err := cmd.Output()
		if err != nil {
			onError(execError(argv[0], err))
			return
		}
		onOutput(strings.TrimRight(string(out), "\n"))
	}()
}

// Handle controls a running subprocess.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Kill terminates the subprocess. Safe to call more than once; the error
// callback is not invoked for a kill-induced exit.
func (h *Handle) Kill() {
	h.once.Do(h.cancel)
}

// Done is closed when the subprocess has exited and its output is drained.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Subprocess starts argv and calls onLine for every line the process writes
// to stdout. When the process exits with a failure that was not caused by
// Kill, onError is called once. The returned Handle is never nil; spawn
// failures are reported through onError asynchronously.
func Subprocess(argv []string, onLine func(string), onError func(error)) *Handle {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Handle{cancel: cancel, done: make(chan struct{})}

	if len(argv) == 0 {
		go func() {
			defer close(h.done)
			onError(ErrEmptyCommand)
		}()
		return h
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		go func() {
			defer close(h.done)
			onError(execError(argv[0], err))
		}()
		return h
	}

	if err := cmd.Start(); err != nil {
		go func() {
			defer close(h.done)
			onError(execError(argv[0], err))
		}()
		return h
	}

	go func() {
		defer close(h.done)

		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			onLine(scanner.Text())
		}

		err := cmd.Wait()
		if ctx.Err() != nil {
			// Killed by the caller; not an error.
			return
		}
		if err != nil {
			onError(execError(argv[0], err))
		}
	}()

	return h
}

// execError shapes a command failure, surfacing captured stderr when the
// command ran but exited non-zero.
func execError(name string, err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
		return fmt.Errorf("astal: %s: %w: %s", name, err, strings.TrimSpace(string(exitErr.Stderr)))
	}
	return fmt.Errorf("astal: %s: %w", name, err)
}
