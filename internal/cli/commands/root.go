// Package commands implements the schemats command line.
package commands

import (
	"context"
	"errors"
	"runtime"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/koustreak/schemats/internal/config"
	"github.com/koustreak/schemats/internal/logger"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// ErrCheckFailed is returned by generate --check when the target is stale.
var ErrCheckFailed = errors.New("generated output differs from target")

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	configFile string
	envFiles   []string
	logLevel   string
	logFormat  string
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "schemats",
		Short: "Generate TypeScript types from a live database schema",
		Long: color.CyanString(`schemats - TypeScript interfaces from your database

schemats reads tables, columns and enum types from PostgreSQL, MySQL or
SQLite and emits a TypeScript definition file with a Row and a RowInput
interface per table.`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&g.configFile, "config", "", "config file (default ./schemats.yaml)")
	pf.StringSliceVar(&g.envFiles, "env-file", []string{".env"}, "dotenv files to load before reading the environment")
	pf.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&g.logFormat, "log-format", "", "log format: console, json")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(newGenerateCommand(g))
	rootCmd.AddCommand(newServeCommand(g))

	return rootCmd
}

// load reads configuration for cmd. bind runs after the defaults are in
// place so subcommand flags override files and the environment.
func (g *globalFlags) load(cmd *cobra.Command, bind func(v *viper.Viper, opts *config.Options) error) (*config.Config, error) {
	opts := config.Options{File: g.configFile, EnvFiles: g.envFiles}
	v := config.New()
	if g.logLevel != "" {
		v.Set("log.level", g.logLevel)
	}
	if g.logFormat != "" {
		v.Set("log.format", g.logFormat)
	}
	if bind != nil {
		if err := bind(v, &opts); err != nil {
			return nil, err
		}
	}
	return config.Load(v, opts)
}

// runContext installs the configured logger, tagged with a fresh run ID,
// into the command context.
func runContext(cmd *cobra.Command, cfg *config.Config) (context.Context, *logger.Logger) {
	lc := cfg.LoggerConfig()
	lc.Output = cmd.ErrOrStderr()
	base := logger.New(lc)
	logger.SetGlobal(base)

	log := base.With().Str("run_id", uuid.NewString()).Str("command", cmd.Name()).Logger()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return log.WithContext(ctx), log
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			titleColor := color.New(color.FgCyan, color.Bold)
			out := cmd.OutOrStdout()

			titleColor.Fprint(out, "schemats version: ")
			_, _ = out.Write([]byte(Version + "\n"))
			titleColor.Fprint(out, "Git commit: ")
			_, _ = out.Write([]byte(GitCommit + "\n"))
			titleColor.Fprint(out, "Build date: ")
			_, _ = out.Write([]byte(BuildDate + "\n"))
			titleColor.Fprint(out, "Go version: ")
			_, _ = out.Write([]byte(runtime.Version() + "\n"))
		},
	}
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return 1
	}
	return 0
}
