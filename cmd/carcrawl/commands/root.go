// Package commands holds the carcrawl cobra commands
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"carcrawl/internal/platform/config"
	perr "carcrawl/internal/platform/errors"
	"carcrawl/internal/platform/logger"
	crawlmod "carcrawl/internal/services/crawl/module"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// debugLogFile receives a copy of every log line under --debug
const debugLogFile = "debug.log"

var (
	opts     crawlmod.Options
	debug    bool
	outDir   string
	sleepSec float64
	debugLog io.Closer
)

var rootCmd = &cobra.Command{
	Use:           "carcrawl",
	Short:         "carcrawl crawls used car listings into per brand/kind partitions.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := initLogging(debug); err != nil {
			return err
		}
		opts = crawlmod.FromConfig(config.New())
		if f := cmd.Flags(); f.Changed("out-dir") {
			opts.OutDir = outDir
		}
		if cmd.Flags().Changed("sleep") {
			if sleepSec < 0 {
				return perr.InvalidArgf("--sleep must be >= 0")
			}
			opts.Sleep = time.Duration(sleepSec * float64(time.Second))
		}

		runID := uuid.NewString()
		cmd.SetContext(logger.WithRun(cmd.Context(), runID))
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if debugLog != nil {
			_ = debugLog.Close()
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&outDir, "out-dir", "./data", "Output directory for partition files (env CRAWL_OUT_DIR)")
	pf.Float64Var(&sleepSec, "sleep", 1.0, "Seconds to wait between page requests (env CRAWL_SLEEP)")
	pf.BoolVar(&debug, "debug", false, "Debug logging, also written to "+debugLogFile)
}

// initLogging builds the root logger from LOG_* env, raised to debug and teed to a file when asked
func initLogging(debug bool) error {
	lo := logger.FromEnv()
	if debug {
		f, err := os.OpenFile(debugLogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeConfig, "open %s", debugLogFile)
		}
		debugLog = f
		lo.Level = "debug"
		lo.Tee = f
	}
	logger.Init(lo)
	return nil
}

// ExecuteContext runs the root command and returns the process exit code
func ExecuteContext(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	fmt.Fprintln(os.Stderr, "carcrawl:", err)
	return exitCode(err)
}

// exitCode maps an error to the process status: 130 for an interrupted run, 2 for bad config, 1 otherwise
func exitCode(err error) int {
	switch perr.CodeOf(err) {
	case perr.ErrorCodeCanceled:
		return 130
	case perr.ErrorCodeConfig, perr.ErrorCodeNotFound, perr.ErrorCodeValidation, perr.ErrorCodeInvalidArgument:
		return 2
	}
	return 1
}
