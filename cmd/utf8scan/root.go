package main

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Neumenon/utf8scan/internal/config"
	"github.com/Neumenon/utf8scan/internal/log"
	"github.com/Neumenon/utf8scan/internal/metrics"
	"github.com/Neumenon/utf8scan/internal/output"
	"github.com/Neumenon/utf8scan/internal/runner"
	"github.com/Neumenon/utf8scan/utf8scan"
)

// flags holds raw flag values; only flags the user set override the config.
type flags struct {
	configFile  string
	output      string
	jobs        int
	maxBytes    int64
	digest      bool
	quiet       bool
	metricsFile string
	logLevel    string
	logFile     string
	bufferSize  int
}

// run executes the CLI and returns the process exit status.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	code := utf8scan.ExitOK
	cmd := newRootCmd(stdin, stdout, stderr, &code)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "utf8scan: %v\n", err)
		return utf8scan.ExitFailure
	}
	return code
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer, code *int) *cobra.Command {
	var f flags

	root := &cobra.Command{
		Use:   "utf8scan [file ...]",
		Short: "Validate UTF-8 and count ASCII and multi-byte characters",
		Long: `utf8scan reads each input byte by byte and checks it against the UTF-8
encoding rules. Valid input is summarised as a count of ASCII and multi-byte
characters. The first invalid header byte, invalid tail byte, invalid code
point (surrogate, above U+10FFFF or truncated) or overlong encoding stops the
scan and sets the exit status to 1, 2, 3 or 4.

With no file, or when file is -, standard input is read.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := resolveOptions(cmd, &f)
			if err != nil {
				return err
			}
			c, err := validate(cmd.Context(), opts, args, stdin, stdout, stderr)
			if err != nil {
				return err
			}
			*code = c
			return nil
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	fs := root.Flags()
	fs.StringVar(&f.configFile, "config", "", "JSON config file (default $"+config.EnvConfigFile+")")
	fs.StringVarP(&f.output, "output", "o", "", "output format: text|json|table")
	fs.IntVarP(&f.jobs, "jobs", "j", 0, "inputs validated concurrently")
	fs.Int64Var(&f.maxBytes, "max-bytes", 0, "fail inputs longer than this many bytes (0 = unlimited)")
	fs.BoolVar(&f.digest, "digest", false, "compute CRC-32 and SHA-256 of each input")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "print nothing for valid inputs")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug|info|warn|error")
	fs.StringVar(&f.logFile, "log-file", "", "also write JSON logs to this rotating file")
	fs.IntVar(&f.bufferSize, "buffer-size", 0, "read buffer size in bytes per input")

	root.AddCommand(newVersionCmd(stdout))
	return root
}

// resolveOptions layers defaults, config file and explicitly set flags.
func resolveOptions(cmd *cobra.Command, f *flags) (*config.Options, error) {
	opts, err := config.Load(f.configFile)
	if err != nil {
		return nil, err
	}

	set := cmd.Flags().Changed
	if set("output") {
		opts.Output = f.output
	}
	if set("jobs") {
		opts.Jobs = f.jobs
	}
	if set("max-bytes") {
		opts.MaxBytes = f.maxBytes
	}
	if set("digest") {
		opts.Digest = f.digest
	}
	if set("quiet") {
		opts.Quiet = f.quiet
	}
	if set("metrics-file") {
		opts.MetricsFile = f.metricsFile
	}
	if set("buffer-size") {
		opts.BufferSize = f.bufferSize
	}
	if set("log-level") {
		opts.Log.Level = f.logLevel
	}
	if set("log-file") {
		opts.Log.FilePath = f.logFile
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// validate runs every input and renders the results. It returns the exit
// status of the first failing input in argument order.
func validate(ctx context.Context, opts *config.Options, args []string, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	logger, closeLog, err := log.New(opts.Log, stderr)
	if err != nil {
		return 0, fmt.Errorf("init logger: %w", err)
	}
	defer closeLog()
	logger = logger.With(zap.String("run_id", uuid.NewString()))

	if len(args) == 0 {
		args = []string{runner.StdinName}
	}
	inputs := make([]runner.Input, 0, len(args))
	stdinSeen := false
	for _, a := range args {
		if a == runner.StdinName {
			if stdinSeen {
				return 0, fmt.Errorf("standard input (%s) given more than once", runner.StdinName)
			}
			stdinSeen = true
		}
		inputs = append(inputs, runner.FileInput(a, stdin))
	}

	rec := metrics.New()
	r := runner.New(runner.Options{
		Jobs:       opts.Jobs,
		MaxBytes:   opts.MaxBytes,
		Digest:     opts.Digest,
		BufferSize: opts.BufferSize,
	}, logger, rec)
	results := r.Run(ctx, inputs)

	fmtr := output.NewFormatter(output.Format(opts.Output), stdout, stderr)
	fmtr.SetQuiet(opts.Quiet)
	if err := fmtr.Render(results); err != nil {
		return 0, fmt.Errorf("write output: %w", err)
	}

	if opts.MetricsFile != "" {
		if err := rec.WriteTextfile(opts.MetricsFile); err != nil {
			logger.Warn("write metrics", zap.String("path", opts.MetricsFile), zap.Error(err))
		}
	}

	for _, res := range results {
		if code := res.ExitCode(); code != utf8scan.ExitOK {
			return code, nil
		}
	}
	return utf8scan.ExitOK, nil
}
