// Package fakerun provides a scripted tools.CommandRunner for tests.
package fakerun

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Result is one scripted command outcome.
type Result struct {
	Stdout string
	Stderr string
	Exit   int32
	Err    error
}

// OK returns a successful result printing stdout.
func OK(stdout string) Result {
	return Result{Stdout: stdout}
}

// Fail returns a result exiting with code and printing stderr.
func Fail(code int32, stderr string) Result {
	return Result{Stderr: stderr, Exit: code}
}

type script struct {
	prefix  string
	results []Result
}

// Runner records every argv it receives and replays results scripted per
// command prefix. Once a script is down to its last result, that result
// repeats. Unscripted commands succeed with empty output.
type Runner struct {
	mu       sync.Mutex
	scripts  []*script
	calls    [][]string
	streamed []bool
}

func New() *Runner {
	return &Runner{}
}

// On scripts results for commands whose space-joined argv starts with prefix.
// The longest matching prefix wins.
func (r *Runner) On(prefix string, results ...Result) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scripts = append(r.scripts, &script{prefix: prefix, results: results})
	return r
}

func (r *Runner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, int32, error) {
	res := r.next(name, args, false)
	return []byte(res.Stdout), []byte(res.Stderr), res.Exit, res.Err
}

func (r *Runner) RunStreaming(_ context.Context, name string, args []string, stdout, stderr io.Writer) (int32, error) {
	res := r.next(name, args, true)
	if stdout != nil && res.Stdout != "" {
		_, _ = io.WriteString(stdout, res.Stdout)
	}
	if stderr != nil && res.Stderr != "" {
		_, _ = io.WriteString(stderr, res.Stderr)
	}
	return res.Exit, res.Err
}

func (r *Runner) next(name string, args []string, streamed bool) Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	argv := append([]string{name}, args...)
	r.calls = append(r.calls, argv)
	r.streamed = append(r.streamed, streamed)

	line := strings.Join(argv, " ")
	var match *script
	for _, s := range r.scripts {
		if strings.HasPrefix(line, s.prefix) && (match == nil || len(s.prefix) > len(match.prefix)) {
			match = s
		}
	}
	if match == nil || len(match.results) == 0 {
		return Result{}
	}

	res := match.results[0]
	if len(match.results) > 1 {
		match.results = match.results[1:]
	}
	if res.Exit != 0 && res.Err == nil {
		res.Err = fmt.Errorf("exit status %d", res.Exit)
	}
	return res
}

// Calls returns every recorded argv in call order.
func (r *Runner) Calls() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]string, len(r.calls))
	copy(out, r.calls)
	return out
}

// Lines returns every recorded argv joined by spaces.
func (r *Runner) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.calls))
	for _, c := range r.calls {
		out = append(out, strings.Join(c, " "))
	}
	return out
}

// Count reports how many recorded calls start with prefix.
func (r *Runner) Count(prefix string) int {
	n := 0
	for _, line := range r.Lines() {
		if strings.HasPrefix(line, prefix) {
			n++
		}
	}
	return n
}

// Streamed reports whether call idx went through RunStreaming.
func (r *Runner) Streamed(idx int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.streamed[idx]
}
