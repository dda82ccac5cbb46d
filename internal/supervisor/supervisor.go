// Package supervisor drives a single Case's subprocess lifecycle:
// spawn, deadline-bound wait, stream capture, and outcome
// classification. It never raises to its caller; every condition
// becomes an Outcome.
package supervisor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	shlex "github.com/anmitsu/go-shlex"

	"github.com/timexceed/testa-go/internal/catalogue"
	"github.com/timexceed/testa-go/internal/workerpool"
)

// Clock abstracts time.Now so tests can assert on Start/Stop without
// racing a real clock.
type Clock func() time.Time

// Run executes c's subprocess and returns its classified outcome. If
// timeout is zero, no deadline is enforced; discovery jobs
// (c.SuppressTimeout) are never killed by timeout either way.
//
// Run starts the child with redirected streams, races a watchdog
// goroutine against normal completion, and translates the race's
// result into a terminal classification.
func Run(ctx context.Context, c *catalogue.Case, timeout time.Duration) workerpool.Outcome {
	return run(ctx, c, timeout, time.Now)
}

func run(ctx context.Context, c *catalogue.Case, timeout time.Duration, now Clock) workerpool.Outcome {
	if c.Broken {
		return runBroken(c)
	}

	args, err := shlex.Split(c.Execute, true)
	if err != nil || len(args) == 0 {
		writeFailure(c.Stderr, fmt.Sprintf("failed to parse command line %q: %v", c.Execute, err))
		return workerpool.OutcomeError
	}

	stdout, err := os.Create(c.Stdout)
	if err != nil {
		return workerpool.OutcomeError
	}
	defer stdout.Close()

	stderr, err := os.Create(c.Stderr)
	if err != nil {
		return workerpool.OutcomeError
	}
	defer stderr.Close()

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Dir = c.Cwd
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	c.Start = now().UTC()

	if err := cmd.Start(); err != nil {
		c.Stop = now().UTC()
		fmt.Fprintf(stderr, "%v\nfailed to start: %v\n", args, err)
		return workerpool.OutcomeError
	}

	effectiveTimeout := timeout
	if c.SuppressTimeout {
		effectiveTimeout = 0
	}

	outcome := wait(ctx, cmd, effectiveTimeout)
	c.Stop = now().UTC()

	switch outcome {
	case workerpool.OutcomeError:
		fmt.Fprintf(stderr, "%v\nenviron: %v\n", args, cmd.Env)
	case workerpool.OutcomeTimeout:
		fmt.Fprintf(stderr, "%v\ntimed out after %s\n", args, effectiveTimeout)
	}
	return outcome
}

// wait blocks for cmd to terminate, subject to an optional deadline
// and the supplied cancellation context. Modeled on SpawnClaude's
// watchdog-goroutine-races-cmd.Wait pattern.
func wait(ctx context.Context, cmd *exec.Cmd, timeout time.Duration) workerpool.Outcome {
	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	select {
	case err := <-done:
		if err == nil {
			return workerpool.OutcomeOK
		}
		return workerpool.OutcomeError
	case <-deadline:
		killProcess(cmd)
		<-done // reap the child to avoid a zombie
		return workerpool.OutcomeTimeout
	case <-ctx.Done():
		killProcess(cmd)
		<-done
		return workerpool.OutcomeCancel
	}
}

func killProcess(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = cmd.Process.Kill()
}

// runBroken handles a broken case: no subprocess is spawned, the
// reason is written verbatim to stdout, and the outcome is Skip.
func runBroken(c *catalogue.Case) workerpool.Outcome {
	if err := os.WriteFile(c.Stdout, []byte(c.BrokenReason), 0o644); err != nil {
		return workerpool.OutcomeError
	}
	c.Start = time.Now().UTC()
	c.Stop = c.Start
	return workerpool.OutcomeSkip
}

func writeFailure(path, msg string) {
	_ = os.WriteFile(path, []byte(msg), 0o644)
}
