package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/RobertP-SyndicateLabs/setcal/compiler"
	"github.com/RobertP-SyndicateLabs/setcal/config"
)

const cliToolVersion = "setcal 0.1.0"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

// cliState holds flag values and what PersistentPreRunE builds from them.
type cliState struct {
	configPath string
	verbose    bool
	seed       uint64

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	st := &cliState{}

	rootCmd := &cobra.Command{
		Use:   "setcal <inputFile>",
		Short: "setcal - batch interpreter for sets and relations over a finite universe",
		Long: `setcal reads a program made of a universe (U), sets (S), relations (R)
and commands (C), prints every declared entity and then the result of each
executed command.

Example:
  U a b c
  S a b
  S b c
  C union 2 3

An input file named like a subcommand (check, lex, version) must follow
"--", as in: setcal -- check`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return st.setup(cmd, stderr)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if st.logger != nil {
				_ = st.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgram(st, args[0], stdout)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVar(&st.configPath, "config", "setcal.yaml", "path to the YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&st.verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().Uint64Var(&st.seed, "seed", 0, "seed for select (overrides configuration)")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "check <inputFile>",
			Short: "Parse a program without executing it",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return checkProgram(st, args[0], stdout)
			},
		},
		&cobra.Command{
			Use:   "lex <inputFile>",
			Short: "Dump the token stream of a program",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return lexProgram(args[0], stdout)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the setcal version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintln(stdout, cliToolVersion)
				return nil
			},
		},
	)

	return rootCmd
}

// setup loads configuration and builds the logger.
func (st *cliState) setup(cmd *cobra.Command, stderr io.Writer) error {
	cfg, err := config.Load(st.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("seed") {
		cfg.Select.Seed = st.seed
	}
	st.cfg = cfg

	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if st.verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if cfg.Logging.Encoding == "json" {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	st.logger = zap.New(zapcore.NewCore(enc, zapcore.AddSync(stderr), level))
	return nil
}

func (st *cliState) limits() compiler.Limits {
	return compiler.Limits{
		MaxLines:       st.cfg.Limits.MaxLines,
		MaxLabelLength: st.cfg.Limits.MaxLabelLength,
		StepFactor:     st.cfg.Limits.StepFactor,
	}
}

func runProgram(st *cliState, path string, stdout io.Writer) error {
	st.logger.Debug("running program", zap.String("file", path))
	return compiler.RunFile(path, compiler.Options{
		Out:    stdout,
		Logger: st.logger,
		Limits: st.limits(),
		Seed:   st.cfg.Select.Seed,
	})
}

func checkProgram(st *cliState, path string, stdout io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read error: %w", err)
	}
	prog, err := compiler.Parse(string(data), path, st.limits(), st.logger)
	if err != nil {
		return err
	}
	st.logger.Debug("check passed",
		zap.String("file", path),
		zap.Int("lines", len(prog.Lines)),
		zap.Int("commands", len(prog.Commands)))
	fmt.Fprintln(stdout, "ok")
	return nil
}

func lexProgram(path string, stdout io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read error: %w", err)
	}

	lx := compiler.NewLexer(string(data), path)
	for {
		tok := lx.NextToken()
		fmt.Fprintf(stdout, "%-8s %-20q (%s:%d:%d)\n",
			tok.Type, tok.Lexeme, tok.File, tok.Line, tok.Column)

		if tok.Type == compiler.TOK_EOF {
			return nil
		}
		if tok.Type == compiler.TOK_ILLEGAL {
			return fmt.Errorf("%s:%d:%d: illegal character %q", tok.File, tok.Line, tok.Column, tok.Lexeme)
		}
	}
}
