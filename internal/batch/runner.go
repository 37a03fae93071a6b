package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mj1618/figma-batch/internal/model"
)

// Executor performs one remote command against live canvas state and
// returns its raw reply. Implementations must not run two commands at once
// over the same channel.
type Executor interface {
	Execute(ctx context.Context, command string, params any) (json.RawMessage, error)
}

// TransportError is a failed round trip. It is never attributed to an
// individual operation.
type TransportError struct {
	Operation Operation
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s round trip failed: %v", e.Operation, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Runner validates batches, sends each as a single Executor call, and
// aggregates the reply.
type Runner struct {
	exec    Executor
	metrics *Metrics
	logger  zerolog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithMetrics records batch metrics on m.
func WithMetrics(m *Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithLogger sets the Runner's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// NewRunner returns a Runner that sends batches through exec.
func NewRunner(exec Executor, opts ...Option) *Runner {
	r := &Runner{exec: exec, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CreateElements creates every element in one round trip. A
// *model.ValidationError means nothing was sent; a *TransportError means the
// round trip itself failed.
func (r *Runner) CreateElements(ctx context.Context, elements []model.ElementDescriptor) (Result, error) {
	op := OpCreateElements
	if err := model.ValidateElements(elements); err != nil {
		r.metrics.observeBatch(op, outcomeRejected)
		return Result{Operation: op}, err
	}

	env := NewElementEnvelope(elements)
	if env.Empty() {
		r.metrics.observeBatch(op, outcomeEmpty)
		return Result{Operation: op, Termination: AllAttempted}, nil
	}

	r.logger.Debug().Str("operation", string(op)).Int("items", env.Len()).Msg("sending batch")
	start := time.Now()
	raw, err := r.exec.Execute(ctx, string(op), env.Request())
	if err != nil {
		return Result{Operation: op}, r.transportError(op, err)
	}
	reply, err := ParseElementReply(raw)
	if err != nil {
		return Result{Operation: op}, r.transportError(op, err)
	}

	res := AggregateElements(env, reply)
	r.finish(res, time.Since(start))
	return res, nil
}

// ExecuteBundle runs every command in one round trip, ordered by priority.
// With stopOnError the executor halts at the first failure and later
// commands have no outcome.
func (r *Runner) ExecuteBundle(ctx context.Context, commands []model.CommandDescriptor, stopOnError bool) (Result, error) {
	op := OpBundledCommands
	if err := model.ValidateCommands(commands); err != nil {
		r.metrics.observeBatch(op, outcomeRejected)
		return Result{Operation: op}, err
	}

	env := NewCommandEnvelope(commands, stopOnError)
	if env.Empty() {
		r.metrics.observeBatch(op, outcomeEmpty)
		return Result{Operation: op, Termination: AllAttempted}, nil
	}

	r.logger.Debug().
		Str("operation", string(op)).
		Int("items", env.Len()).
		Bool("stop_on_error", stopOnError).
		Msg("sending batch")
	start := time.Now()
	raw, err := r.exec.Execute(ctx, string(op), env.Request())
	if err != nil {
		return Result{Operation: op}, r.transportError(op, err)
	}
	reply, err := ParseCommandReply(raw)
	if err != nil {
		return Result{Operation: op}, r.transportError(op, err)
	}

	res := AggregateCommands(env, reply)
	r.finish(res, time.Since(start))
	return res, nil
}

func (r *Runner) transportError(op Operation, err error) error {
	r.metrics.observeBatch(op, outcomeTransport)
	r.logger.Warn().Err(err).Str("operation", string(op)).Msg("batch round trip failed")
	return &TransportError{Operation: op, Err: err}
}

func (r *Runner) finish(res Result, elapsed time.Duration) {
	r.metrics.observeResult(res, elapsed)
	r.logger.Info().
		Str("operation", string(res.Operation)).
		Int("total", res.Total).
		Int("succeeded", res.Succeeded).
		Int("failed", res.Failed).
		Str("termination", string(res.Termination)).
		Dur("elapsed", elapsed).
		Msg("batch complete")
}
