package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/StinkyLord/spdx-update/internal/aliases"
	"github.com/StinkyLord/spdx-update/internal/config"
	"github.com/StinkyLord/spdx-update/internal/fetch"
	"github.com/StinkyLord/spdx-update/internal/model"
	"github.com/StinkyLord/spdx-update/internal/output"
	"github.com/StinkyLord/spdx-update/internal/pipeline"
)

const toolName = "spdx-update"

// newLogger builds the diagnostic logger. Tests replace it.
var newLogger = func(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

type options struct {
	debug   bool
	output  string
	format  string
	pkg     string
	mirror  string
	aliases string
	timeout time.Duration

	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	defaults := config.Defaults()

	cmd := &cobra.Command{
		Use:   toolName + " [v<version>]",
		Short: "Generate the SPDX license identifier tables",
		Long: `spdx-update downloads licenses.json and exceptions.json from
spdx/license-list-data and generates a sorted lookup table of license
identifiers, imprecise license names and license exceptions.

Each license is classified as:
  deprecated, OSI approved, FSF libre: as published by the registry
  copyleft, GNU family: from a fixed identifier policy

Without a tag the floating "` + config.FloatingRef + `" branch is used; pin a tag for
reproducible output.

Examples:
  spdx-update v3.24 --output identifiers.go
  spdx-update v3.24 --format json --output - --debug
  go run github.com/StinkyLord/spdx-update v3.24 -o internal/spdx/identifiers.go -p spdx`,
		Args: func(cmd *cobra.Command, args []string) error {
			_, _, err := config.ParseRef(args)
			return err
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			opts.logger, err = newLogger(opts.debug)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, args, opts)
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", config.ErrUsage, err)
	})

	f := cmd.Flags()
	f.BoolVarP(&opts.debug, "debug", "d", false, "Print diagnostic output to stderr")
	f.StringVarP(&opts.output, "output", "o", defaults.Output, "Output file path (use '-' for stdout)\nEnv: SPDX_UPDATE_OUTPUT")
	f.StringVarP(&opts.format, "format", "f", defaults.Format, "Output format: go, json")
	f.StringVarP(&opts.pkg, "package", "p", defaults.Package, "Package clause of the generated Go file")
	f.StringVar(&opts.mirror, "mirror", defaults.MirrorURL, "Base URL of the license-list-data mirror\nEnv: SPDX_MIRROR_URL")
	f.StringVar(&opts.aliases, "aliases", "", "YAML file replacing the built-in imprecise-name table")
	f.DurationVar(&opts.timeout, "timeout", defaults.Timeout, "Timeout for each document request\nEnv: SPDX_FETCH_TIMEOUT")

	return cmd
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// resolveConfig layers defaults, environment and explicitly set flags.
func resolveConfig(cmd *cobra.Command, args []string, opts *options) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	cfg.Ref, cfg.Floating, err = config.ParseRef(args)
	if err != nil {
		return config.Config{}, err
	}

	f := cmd.Flags()
	if f.Changed("output") {
		cfg.Output = opts.output
	}
	if f.Changed("mirror") {
		cfg.MirrorURL = opts.mirror
	}
	if f.Changed("timeout") {
		cfg.Timeout = opts.timeout
	}
	cfg.Format = opts.format
	cfg.Package = opts.pkg
	cfg.AliasesFile = opts.aliases
	cfg.Debug = opts.debug

	return cfg, cfg.Validate()
}

func runUpdate(cmd *cobra.Command, args []string, opts *options) error {
	log := opts.logger

	cfg, err := resolveConfig(cmd, args, opts)
	if err != nil {
		return err
	}

	if cfg.Floating {
		log.Warn("fetching data from a floating branch of spdx/license-list-data; consider specifying a tag (e.g. v3.24)",
			zap.String("ref", cfg.Ref))
	} else {
		log.Debug("using tag", zap.String("ref", cfg.Ref))
	}

	aliasTable, err := loadAliases(cfg.AliasesFile)
	if err != nil {
		return err
	}

	client := fetch.New(cfg.MirrorURL, cfg.Timeout, log)
	defer client.Close()

	artifact, err := pipeline.New(client, aliasTable, log).Run(cmd.Context(), cfg.Ref)
	if err != nil {
		return err
	}

	err = output.Write(artifact, cfg.Output, output.Options{
		Format:    cfg.Format,
		Package:   cfg.Package,
		SourceURL: cfg.MirrorURL + " @ " + cfg.Ref,
		Tool:      toolName,
	})
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	log.Info("tables written",
		zap.String("output", cfg.Output),
		zap.String("version", artifact.Licenses.Version),
		zap.Int("licenses", len(artifact.Licenses.Records)),
		zap.Int("aliases", len(artifact.Aliases.Entries)),
		zap.Int("exceptions", len(artifact.Exceptions.Records)))
	return nil
}

func loadAliases(path string) (model.AliasTable, error) {
	if path == "" {
		return aliases.Default()
	}
	return aliases.Load(path)
}
