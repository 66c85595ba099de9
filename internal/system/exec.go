package system

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

const tailLines = 20

// LineFunc receives one non-empty output line of a running command.
type LineFunc func(line string)

// Runner starts external tools. Backends take one so tests can fake the toolchain.
type Runner interface {
	Run(ctx context.Context, dir, name string, args []string, onLine LineFunc) error
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir, name string, args []string, onLine LineFunc) error {
	return RunStreaming(ctx, dir, name, args, onLine)
}

// RunStreaming runs a command and feeds its combined stdout and stderr to onLine
// line by line. Carriage returns split lines too, so progress bars stream.
// On failure the error carries the last lines of output.
func RunStreaming(ctx context.Context, dir, name string, args []string, onLine LineFunc) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pw.Close()
		return fmt.Errorf("start %s: %w", name, err)
	}

	tail := &lineTail{max: tailLines}
	done := make(chan struct{})
	go func() {
		defer close(done)
		sc := bufio.NewScanner(pr)
		sc.Buffer(make([]byte, 64*1024), 1024*1024)
		sc.Split(scanLines)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			tail.add(line)
			if onLine != nil {
				onLine(line)
			}
		}
		// keep draining so the child never blocks on a full pipe
		io.Copy(io.Discard, pr)
	}()

	err := cmd.Wait()
	pw.Close()
	<-done

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w", name, ctxErr)
		}
		return fmt.Errorf("%s: %w\n%s", name, err, tail.String())
	}
	return nil
}

// scanLines is bufio.ScanLines that also breaks on '\r'.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

type lineTail struct {
	mu    sync.Mutex
	max   int
	lines []string
}

func (t *lineTail) add(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
	if len(t.lines) > t.max {
		t.lines = t.lines[len(t.lines)-t.max:]
	}
}

func (t *lineTail) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.Join(t.lines, "\n")
}
