package commands

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/conduit-lang/netdocs/internal/cli/config"
	"github.com/conduit-lang/netdocs/internal/cli/ui"
	"github.com/conduit-lang/netdocs/internal/docs"
	"github.com/conduit-lang/netdocs/internal/source"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

var (
	configFile string
	verbose    bool
	logFormat  string
	noColor    bool
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "netdocs",
		Short: ".NET API documentation scraper",
		Long: color.CyanString(`netdocs - .NET API documentation builder

netdocs reads a clone of dotnet/dotnet-api-docs, resolves every namespace,
type and member of one framework variant, and writes cross-linked HTML pages
plus a search index to a directory, a SQL database or Redis.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: ./netdocs.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "Log format: console or json")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	// Add subcommands
	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewScrapeCommand())
	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewVariantsCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the netdocs version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			// Set GoVersion to actual runtime if not set at build time
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			ui.KeyValues(cmd.OutOrStdout(), noColor,
				[2]string{"netdocs version", Version},
				[2]string{"Git commit", GitCommit},
				[2]string{"Build date", BuildDate},
				[2]string{"Go version", goVer},
			)
		},
	}
}

// newLogger builds the process logger: development config at debug level when
// verbose, production config at info level otherwise
func newLogger(verbose bool, format string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}

	switch format {
	case "", "console":
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	case "json":
		cfg.Encoding = "json"
	default:
		return nil, configError{fmt.Errorf("unknown log format %q (expected console or json)", format)}
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

// configError marks errors caused by configuration or flags
type configError struct {
	err error
}

func (e configError) Error() string { return e.err.Error() }
func (e configError) Unwrap() error { return e.err }

// loadConfig reads the configuration named by --config or found in the working directory
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, configError{err}
	}
	return cfg, nil
}

// unknownFrameworkError reports a framework id without an index file
type unknownFrameworkError struct {
	framework   string
	suggestions []string
}

func (e unknownFrameworkError) Error() string {
	return fmt.Sprintf("no framework index named %q", e.framework)
}

// formatError renders err with remediation hints where its cause is known
func formatError(err error, noColor bool) string {
	var cfgErr configError
	var fwErr unknownFrameworkError

	switch {
	case errors.Is(err, source.ErrSetup):
		return ui.SetupError(err.Error(), noColor)
	case errors.As(err, &fwErr):
		return ui.UnknownFrameworkError(fwErr.framework, fwErr.suggestions, noColor)
	case errors.As(err, &cfgErr):
		return ui.ConfigError(err.Error(), noColor)
	case docs.IsContractViolation(err):
		return ui.ScrapeError(err.Error(), noColor)
	}

	errorColor := color.New(color.FgRed, color.Bold)
	if noColor {
		errorColor.DisableColor()
	}
	return errorColor.Sprintf("Error: %v\n", err)
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprint(rootCmd.ErrOrStderr(), formatError(err, noColor))
		return err
	}
	return nil
}
