// Command procctl exposes the procctl library on the command line: probing
// and terminating processes, and running external commands in the foreground,
// optionally as a single system-wide instance.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/giantswarm/procctl"
)

// Exit statuses of the CLI itself. A failed command's own status is passed
// through.
const (
	exitOK       = 0
	exitFailure  = 1
	exitBusy     = 75 // EX_TEMPFAIL: another instance holds the lock
	exitNotAlive = 1
)

// exitCodeError ends a command with a specific status and no message.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return "exit status " + strconv.Itoa(e.code)
}

type rootFlags struct {
	logLevel  string
	logFormat string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	procctl.Exit(code)
}

// execute runs the CLI with args and returns the process exit status.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	code := exitCode(err)
	var codeErr *exitCodeError
	if !errors.As(err, &codeErr) {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return code
}

// exitCode maps an error returned by a command to an exit status.
func exitCode(err error) int {
	var codeErr *exitCodeError
	if errors.As(err, &codeErr) {
		return codeErr.code
	}
	var exitErr *procctl.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Signal != 0 {
			return 128 + int(exitErr.Signal)
		}
		if exitErr.Code > 0 {
			return exitErr.Code
		}
	}
	if errors.Is(err, procctl.ErrAlreadyRunning) {
		return exitBusy
	}
	return exitFailure
}

func newRootCmd(logOutput io.Writer) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           "procctl",
		Short:         "Process lifecycle control",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(logOutput, flags.logLevel, flags.logFormat)
			if err != nil {
				return err
			}
			procctl.SetLogger(logger.With("component", "procctl"))
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "Minimum log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", formatText, "Log output format (text, json)")

	rootCmd.AddCommand(aliveCmd())
	rootCmd.AddCommand(terminateCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(runAloneCmd())

	return rootCmd
}

func parsePID(arg string) (int, error) {
	pid, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid pid %q: %w", arg, err)
	}
	return pid, nil
}

func aliveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "alive PID",
		Short: "Exit 0 if the process is running, 1 otherwise",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := parsePID(args[0])
			if err != nil {
				return err
			}
			if !procctl.IsRunning(pid) {
				return &exitCodeError{code: exitNotAlive}
			}
			return nil
		},
	}
}

func terminateCmd() *cobra.Command {
	var killTimeout int

	cmd := &cobra.Command{
		Use:   "terminate PID",
		Short: "Kill a process, escalating to SIGTERM if it survives",
		Long: `Send SIGKILL to PID and poll once per second until it is gone. If it is
still alive after --kill-timeout polls, send SIGTERM and wait a short grace
period. Prints the outcome; exits 1 if the process is still alive.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := parsePID(args[0])
			if err != nil {
				return err
			}
			if killTimeout < 0 {
				return fmt.Errorf("--kill-timeout must not be negative, got %d", killTimeout)
			}
			outcome, err := procctl.Terminate(cmd.Context(), pid, procctl.WithKillTimeout(killTimeout))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), outcome)
			if !outcome.Dead() {
				return &exitCodeError{code: exitFailure}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&killTimeout, "kill-timeout", procctl.DefaultKillTimeout, "Number of one-second polls after SIGKILL before falling back to SIGTERM")
	return cmd
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run -- COMMAND [ARG...]",
		Short: "Run a command in the foreground, logging its output",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return procctl.RunInForeground(cmd.Context(), args)
		},
	}
}

func runAloneCmd() *cobra.Command {
	var (
		lockDir        string
		acquireTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run-alone -- COMMAND [ARG...]",
		Short: "Run a command unless the same command is already running",
		Long: `Run COMMAND in the foreground while holding a system-wide lock keyed by
the resolved binary and its arguments. If another procctl run-alone holds the
lock for the same command longer than --acquire-timeout, exit 75 without
running it. SIGINT and SIGTERM release the lock and exit with 128+signal.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if acquireTimeout <= 0 {
				return fmt.Errorf("--acquire-timeout must be positive, got %v", acquireTimeout)
			}
			fp, err := procctl.CommandFingerprint(args)
			if err != nil {
				return err
			}
			opts := []procctl.GuardOption{
				procctl.WithFingerprint(fp),
				procctl.WithAcquireTimeout(acquireTimeout),
			}
			if lockDir != "" {
				opts = append(opts, procctl.WithLockDir(lockDir))
			}
			ctx := cmd.Context()
			return procctl.RunAloneFunc(ctx, func() error {
				return procctl.RunInForeground(ctx, args)
			}, opts...)
		},
	}
	cmd.Flags().StringVar(&lockDir, "lock-dir", "", "Directory for lock files (default: platform lock directory)")
	cmd.Flags().DurationVar(&acquireTimeout, "acquire-timeout", procctl.DefaultAcquireTimeout, "How long to wait for a lock held by another instance")
	return cmd
}
