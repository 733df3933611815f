// Package cmd provides the command-line interface for the authr CLI.
// It contains all cobra commands and their implementations.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/authr-project/authr-cli/internal/config"
	"github.com/authr-project/authr-cli/internal/di"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Version is set at build time via ldflags
	Version = "dev"
)

// RootCommand represents the root CLI command
type RootCommand struct {
	container *di.Container
	cmd       *cobra.Command
	logger    *zap.SugaredLogger

	apiURL  string
	verbose bool

	// Subcommands
	loginCmd    *LoginCommand
	logoutCmd   *LogoutCommand
	registerCmd *RegisterCommand
	statusCmd   *StatusCommand
	contentCmd  *ContentCommands
}

// NewRootCommand creates a new root command
func NewRootCommand() *RootCommand {
	r := &RootCommand{}

	r.cmd = &cobra.Command{
		Use:   "authr",
		Short: "authr CLI - Command line client for authr servers",
		Long: `authr CLI logs in to an authr server and calls its protected endpoints.

Issued tokens are stored locally. An expired access token is refreshed
transparently and the failed call is replayed once.

To get started, run:
  authr login <username>  - Authenticate and store tokens
  authr board user        - Fetch the user board`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return r.initialize()
		},
	}

	// Global flags
	r.cmd.PersistentFlags().StringP("output", "o", "text", "Output format (text, json)")
	r.cmd.PersistentFlags().StringVar(&r.apiURL, "api-url", "", "Base URL of the authr server (env AUTHR_API_URL)")
	r.cmd.PersistentFlags().BoolVarP(&r.verbose, "verbose", "v", false, "Enable debug logging")

	// Initialize subcommands
	r.loginCmd = NewLoginCommand(r)
	r.logoutCmd = NewLogoutCommand(r)
	r.registerCmd = NewRegisterCommand(r)
	r.statusCmd = NewStatusCommand(r)
	r.contentCmd = NewContentCommands(r)

	// Add subcommands
	r.cmd.AddCommand(r.loginCmd.Command())
	r.cmd.AddCommand(r.logoutCmd.Command())
	r.cmd.AddCommand(r.registerCmd.Command())
	r.cmd.AddCommand(r.statusCmd.Command())
	for _, c := range r.contentCmd.Commands() {
		r.cmd.AddCommand(c)
	}

	return r
}

// initialize sets up the logger and the DI container
func (r *RootCommand) initialize() error {
	// Skip if container is already set (e.g., for testing)
	if r.container != nil {
		return nil
	}

	settings, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	if r.apiURL != "" {
		settings.APIURL = r.apiURL
	}

	r.logger, err = newLogger(settings.LogLevel, r.verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	r.container, err = di.NewContainer(settings, r.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	return nil
}

func newLogger(level string, verbose bool) (*zap.SugaredLogger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, err
		}
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// Execute runs the root command
func (r *RootCommand) Execute() error {
	err := r.cmd.Execute()
	if r.logger != nil {
		_ = r.logger.Sync()
	}
	return err
}

// Command returns the underlying cobra command
func (r *RootCommand) Command() *cobra.Command {
	return r.cmd
}

// Container returns the DI container
func (r *RootCommand) Container() *di.Container {
	return r.container
}

// SetContainer sets a custom container (for testing)
func (r *RootCommand) SetContainer(c *di.Container) {
	r.container = c
}

// outputFormat returns the value of the global --output flag
func outputFormat(cmd *cobra.Command) string {
	format, _ := cmd.Flags().GetString("output")
	return format
}

// outputJSON writes v as indented JSON to stdout
func outputJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// Execute is the main entry point for the CLI
func Execute() error {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		ExitWithError("command failed", err)
	}
	return nil
}

// ExitWithError prints an error message and exits with code 1
func ExitWithError(msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
	os.Exit(1)
}
