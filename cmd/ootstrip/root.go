package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/ootstrip/cmd/ootstrip/opts"
	"github.com/walteh/ootstrip/pkg/log"
	"github.com/walteh/ootstrip/pkg/strip"
	"gitlab.com/tozd/go/errors"
)

// newRootCmd creates the ootstrip command tree
func newRootCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ootstrip <path>",
		Short: "Strip out-of-tree build scaffolding from a kernel module source",
		Long: `ootstrip reads a C source file and prints it with the out-of-tree
compatibility scaffolding removed. It will:
1. Drop the #define OUT_OF_TREE marker
2. Drop #if LINUX_VERSION_CODE ... #endif blocks
3. Replace #ifdef ... #else ... #endif with the #else body
4. Drop remaining #ifdef ... #endif blocks
5. Collapse runs of blank lines into one`,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cmd, o)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return stripFile(cmd, o, args[0])
		},
	}

	addRootFlags(cmd, o)

	cmd.AddCommand(
		newRulesCmd(),
		newVersionCmd(),
	)

	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	cmd.PersistentFlags().BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
	cmd.Flags().StringVarP(&o.Engine, "engine", "e", string(strip.EngineRegex), "conditional engine: regex or scan")
	cmd.Flags().DurationVar(&o.MatchTimeout, "match-timeout", 0, "abort a regex rule that runs longer than this (0 disables)")
	cmd.Flags().BoolVarP(&o.Summary, "summary", "s", false, "print per-rule match counts to stderr")
}

// setupLogging configures zerolog based on flags and stores both loggers in the command context
func setupLogging(cmd *cobra.Command, o *opts.RootOpts) {
	level := zerolog.InfoLevel
	if o.Debug {
		level = zerolog.DebugLevel
	}
	o.UserLogger = log.New(cmd.ErrOrStderr(), level)

	ctx := o.UserLogger.Zerolog().WithContext(cmd.Context())
	ctx = log.NewContext(ctx, o.UserLogger)
	cmd.SetContext(ctx)
}

func stripFile(cmd *cobra.Command, o *opts.RootOpts, path string) error {
	ctx := cmd.Context()
	logger := zerolog.Ctx(ctx).With().Str("file", path).Logger()
	ctx = logger.WithContext(ctx)

	engine, err := strip.ParseEngine(o.Engine)
	if err != nil {
		return errors.Errorf("parsing --engine: %w", err)
	}

	stripper, err := strip.NewStripper(strip.Options{
		Engine:       engine,
		MatchTimeout: o.MatchTimeout,
	})
	if err != nil {
		return errors.Errorf("creating stripper: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	logger.Debug().Str("engine", string(engine)).Msg("stripping file")

	result, err := stripper.Strip(ctx, f)
	if err != nil {
		return errors.Errorf("stripping %s: %w", path, err)
	}

	if o.Summary {
		userLogger := log.FromContext(ctx)
		userLogger.LogResult(ctx, path, result)
		if result.WasModified {
			userLogger.Successf("%d matches removed", result.ReplacementCount)
		} else {
			userLogger.Warningf("no scaffolding found in %s", path)
		}
	}

	if _, err := cmd.OutOrStdout().Write(result.ModifiedContent); err != nil {
		return errors.Errorf("writing output: %w", err)
	}

	return nil
}
