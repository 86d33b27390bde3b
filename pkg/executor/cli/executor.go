// Package cli runs a session over standard streams, one input per line in
// and one JSON command per line out. It lets a headset app embed vanish as a
// subprocess, and lets a person drive a session by typing.
//
// Lines are either Input JSON objects or short commands:
//
//	place [x y z]          select a placement (anchor requested from the host)
//	anchor <id> [x y z]    report a created anchor
//	fail [reason]          report a failed anchor
//	tap <id> [<id>...]     tap with ranked candidates
//	next | yes | no        press a control
//	exit | quit            end the session
//
// Example usage:
//
//	executor := cli.NewExecutor(v, cli.WithSimulatedAnchors(true))
//	if err := executor.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/entrhq/vanish/pkg/experiment"
	"github.com/entrhq/vanish/pkg/host"
	"github.com/entrhq/vanish/pkg/logging"
	"github.com/entrhq/vanish/pkg/scene"
	"github.com/entrhq/vanish/pkg/types"
)

// Executor is a line-oriented host for one session.
type Executor struct {
	variant  *experiment.Variant
	reader   *bufio.Reader
	writer   io.Writer
	logger   *logging.Logger
	simulate bool
	opts     []experiment.Option
}

// ExecutorOption is a function that configures an Executor.
type ExecutorOption func(*Executor)

// WithReader sets the input stream (default is os.Stdin).
func WithReader(r io.Reader) ExecutorOption {
	return func(e *Executor) {
		e.reader = bufio.NewReader(r)
	}
}

// WithWriter sets a custom output writer (default is os.Stdout).
func WithWriter(w io.Writer) ExecutorOption {
	return func(e *Executor) {
		e.writer = w
	}
}

// WithLogger sets the file logger.
func WithLogger(l *logging.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = l
	}
}

// WithSimulatedAnchors completes placements in-process, so place needs no
// anchor reply.
func WithSimulatedAnchors(simulate bool) ExecutorOption {
	return func(e *Executor) {
		e.simulate = simulate
	}
}

// WithSessionOptions passes options through to the session.
func WithSessionOptions(opts ...experiment.Option) ExecutorOption {
	return func(e *Executor) {
		e.opts = append(e.opts, opts...)
	}
}

// NewExecutor creates a new CLI executor for the given variant.
func NewExecutor(variant *experiment.Variant, opts ...ExecutorOption) *Executor {
	e := &Executor{
		variant: variant,
		reader:  bufio.NewReader(os.Stdin),
		writer:  os.Stdout,
	}

	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.MustLogger("cli")
	}

	return e
}

// Run reads inputs until EOF, exit or ctx is done.
func (e *Executor) Run(ctx context.Context) error {
	enc := json.NewEncoder(e.writer)
	var writeErr error
	emit := func(cmd *types.Command) {
		if writeErr == nil {
			writeErr = enc.Encode(cmd)
		}
	}

	hostOpts := []host.Option{host.WithLogger(e.logger), host.WithSessionOptions(e.opts...)}
	if e.simulate {
		hostOpts = append(hostOpts, host.WithAnchorer(scene.NewAnchorer()))
	}
	d, err := host.NewDispatcher(e.variant, emit, hostOpts...)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	d.Start()
	defer d.Close()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if writeErr != nil {
			return fmt.Errorf("failed to write command: %w", writeErr)
		}

		line, err := e.reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read input: %w", err)
		}
		eof := errors.Is(err, io.EOF)

		text := strings.TrimSpace(line)
		switch {
		case text == "exit" || text == "quit":
			return writeErr
		case text != "":
			in, perr := ParseLine(text)
			if perr == nil {
				perr = d.Handle(ctx, in)
			}
			if perr != nil {
				e.logger.Warnf("session %s: %v", d.Session().ID(), perr)
				emit(types.NewErrorStatusCommand(perr.Error()))
			}
		}

		if eof {
			return writeErr
		}
	}
}

// ParseLine turns one input line into an Input. JSON objects are decoded
// as-is; anything else is read as a short command.
func ParseLine(line string) (*types.Input, error) {
	if strings.HasPrefix(line, "{") {
		var in types.Input
		if err := json.Unmarshal([]byte(line), &in); err != nil {
			return nil, fmt.Errorf("malformed input: %w", err)
		}
		return &in, nil
	}

	fields := strings.Fields(line)
	args := fields[1:]
	switch verb := strings.ToLower(fields[0]); verb {
	case "place", "select":
		pose, err := parsePose(args)
		if err != nil {
			return nil, err
		}
		return types.NewSelectInput(pose), nil

	case "anchor":
		if len(args) == 0 {
			return nil, fmt.Errorf("anchor needs an id")
		}
		pose, err := parsePose(args[1:])
		if err != nil {
			return nil, err
		}
		return types.NewAnchorCreatedInput(args[0], pose), nil

	case "fail":
		return types.NewAnchorFailedInput(strings.Join(args, " ")), nil

	case "tap":
		return types.NewTapInput(args...), nil

	case "next", "yes", "no":
		return types.NewButtonInput(types.InputType(verb)), nil

	default:
		return nil, fmt.Errorf("unknown command %q", verb)
	}
}

// parsePose reads an optional "x y z" position with identity orientation.
func parsePose(args []string) (experiment.Pose, error) {
	pose := experiment.Pose{Orientation: experiment.IdentityQuat()}
	switch len(args) {
	case 0:
		return pose, nil
	case 3:
	default:
		return pose, fmt.Errorf("position needs x y z, got %d values", len(args))
	}

	var xyz [3]float64
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return pose, fmt.Errorf("invalid coordinate %q", a)
		}
		xyz[i] = v
	}
	pose.Position = experiment.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}
	return pose, nil
}
