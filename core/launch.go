package core

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LaunchSpec describes the single external invocation a submitted job
// performs: an interpreter running a launcher script with a log directory
// flag and a positional configuration path.
type LaunchSpec struct {
	Interpreter string
	Script      string
	LogDir      string
	Config      string
}

// LaunchResult reports one finished invocation. Each run gets a fresh
// submission id; the scheduler treats every submission as a distinct job.
type LaunchResult struct {
	SubmissionID string
	ExitCode     int
	Duration     time.Duration
}

// Args returns the exact argument vector. The order is fixed: interpreter,
// launcher script, --logdir value, configuration path.
func (l LaunchSpec) Args() []string {
	return []string{l.Interpreter, l.Script, "--logdir", l.LogDir, l.Config}
}

// ParseLaunchCommand recognizes a launcher invocation in a job script body.
func ParseLaunchCommand(command string) (LaunchSpec, bool) {
	fields := strings.Fields(command)
	if len(fields) != 5 || fields[2] != "--logdir" {
		return LaunchSpec{}, false
	}
	return LaunchSpec{
		Interpreter: fields[0],
		Script:      fields[1],
		LogDir:      fields[3],
		Config:      fields[4],
	}, true
}

// Run performs the blocking invocation. Combined stdout and stderr go to
// outputFile, or to the parent's streams when it is empty. The child's exit
// code is reported unchanged; failures to start (missing interpreter) report
// a non-zero code without altering the arguments.
func (l LaunchSpec) Run(ctx context.Context, outputFile string) (LaunchResult, error) {
	result := LaunchResult{SubmissionID: uuid.NewString()}

	args := l.Args()
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	var out io.Writer = os.Stdout
	var errOut io.Writer = os.Stderr
	if len(outputFile) > 0 {
		f, err := os.OpenFile(outputFile,
			os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			result.ExitCode = 1
			return result, err
		}
		defer f.Close()
		out = f
		errOut = f
	}
	cmd.Stdout = out
	cmd.Stderr = errOut

	start := time.Now()
	err := cmd.Run()
	result.Duration = time.Since(start)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = 1
		}
		return result, err
	}
	return result, nil
}
