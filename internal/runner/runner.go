// Package runner validates a list of inputs and collects one Result each.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Neumenon/utf8scan/internal/metrics"
	"github.com/Neumenon/utf8scan/stream"
	"github.com/Neumenon/utf8scan/utf8scan"
)

// StdinName is the input name that selects standard input.
const StdinName = "-"

// Input is a named byte source opened on demand.
type Input struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// FileInput opens path, or stdin when path is "-".
func FileInput(path string, stdin io.Reader) Input {
	if path == StdinName {
		return ReaderInput(StdinName, stdin)
	}
	return Input{
		Name: path,
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// ReaderInput wraps an already open reader.
func ReaderInput(name string, r io.Reader) Input {
	return Input{
		Name: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(r), nil
		},
	}
}

// Result is the outcome for one input.
type Result struct {
	Input    string
	Tally    utf8scan.Tally
	Consumed int64          // bytes read before the scan stopped
	Digest   *stream.Digest // nil unless digests are enabled
	Err      error
	Duration time.Duration
}

// OK reports whether the input is valid UTF-8.
func (r Result) OK() bool {
	return r.Err == nil
}

// ExitCode returns the process status for this result.
func (r Result) ExitCode() int {
	return utf8scan.ExitCode(r.Err)
}

// Options configures a Runner.
type Options struct {
	Jobs     int
	MaxBytes int64
	Digest   bool

	BufferSize int // 0 uses stream.DefaultBufferSize
}

// Runner validates inputs with bounded concurrency.
type Runner struct {
	opts    Options
	logger  *zap.Logger
	metrics *metrics.Recorder
}

// New creates a Runner. logger and rec may be nil.
func New(opts Options, logger *zap.Logger, rec *metrics.Recorder) *Runner {
	if opts.Jobs < 1 {
		opts.Jobs = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{opts: opts, logger: logger, metrics: rec}
}

// Run validates every input and returns results in input order. Inputs are
// independent: a failure in one does not stop the others.
func (r *Runner) Run(ctx context.Context, inputs []Input) []Result {
	results := make([]Result, len(inputs))

	var g errgroup.Group
	g.SetLimit(r.opts.Jobs)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			results[i] = r.runOne(ctx, in)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (r *Runner) runOne(ctx context.Context, in Input) Result {
	res := Result{Input: in.Name}
	start := time.Now()
	log := r.logger.With(zap.String("input", in.Name))
	log.Debug("validating input")

	rc, err := in.Open()
	if err != nil {
		res.Err = fmt.Errorf("open: %w", err)
		res.Duration = time.Since(start)
		r.finish(log, res)
		return res
	}
	defer rc.Close()

	opts := []stream.SourceOption{
		stream.WithLimit(r.opts.MaxBytes),
		stream.WithBufferSize(r.opts.BufferSize),
	}
	if r.opts.Digest {
		opts = append(opts, stream.WithDigest())
	}
	src := stream.NewSource(rc, opts...)

	res.Tally, res.Err = utf8scan.Validate(ctx, src)
	res.Consumed = src.Offset()
	if d, ok := src.Digest(); ok {
		res.Digest = &d
	}
	res.Duration = time.Since(start)

	r.finish(log, res)
	return res
}

func (r *Runner) finish(log *zap.Logger, res Result) {
	if r.metrics != nil {
		r.metrics.Observe(res.Consumed, res.Tally, res.Err)
	}

	fields := []zap.Field{
		zap.Int64("bytes", res.Consumed),
		zap.Duration("duration", res.Duration),
	}
	if res.Err == nil {
		log.Info("input valid", append(fields,
			zap.Uint64("chars", res.Tally.Chars()),
			zap.Uint64("ascii", res.Tally.ASCII),
			zap.Uint64("multibyte", res.Tally.MultiByte))...)
		return
	}

	var de *utf8scan.DecodeError
	if errors.As(res.Err, &de) {
		log.Info("input invalid", append(fields,
			zap.String("kind", de.Kind.String()),
			zap.Int64("offset", de.Offset),
			zap.Bool("truncated", de.Truncated))...)
		return
	}
	log.Info("input failed", append(fields, zap.Error(res.Err))...)
}
