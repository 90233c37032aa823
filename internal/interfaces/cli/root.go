// Package cli is the printshop command line: catalog browsing, design
// editing, rendering and quoting against a running API server.
package cli

import (
	"cmp"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/PrintShop-Customizer/internal/config"
	"github.com/turtacn/PrintShop-Customizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PrintShop-Customizer/pkg/client"
	"github.com/turtacn/PrintShop-Customizer/pkg/errors"
)

// Set by cmd/printshop from ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var outputFormats = []string{"text", "json", "table"}

// RootOptions are the persistent flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Verbose      bool
	NoColor      bool
	Timeout      time.Duration
	ServerAddr   string
	APIKey       string
}

// CLIContext is what every subcommand runs with.  Client is nil when the
// server address could not be turned into a client; offline commands still
// work then.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	Client       *client.Client
	OutputFormat string
	Verbose      bool
	NoColor      bool
	Timeout      time.Duration
}

type cliContextKey struct{}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	cmd := &cobra.Command{
		Use:   "printshop",
		Short: "PrintShop customizer CLI",
		Long: "printshop drives the product customizer API: browse the product catalog,\n" +
			"build logo placements on a design, render it and price it.",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return openSession(cmd, opts)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./printshop.yaml)")
	f.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	f.StringVarP(&opts.OutputFormat, "output", "o", "table", "output format ("+strings.Join(outputFormats, ", ")+")")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable verbose output")
	f.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	f.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "global operation timeout")
	f.StringVar(&opts.ServerAddr, "server", "", "API server address (default: from config, else http://localhost:8080)")
	f.StringVar(&opts.APIKey, "api-key", os.Getenv("PRINTSHOP_API_KEY"), "bearer token for an authenticating gateway")

	cmd.AddCommand(NewCatalogCmd(), NewDesignCmd(), NewQuoteCmd(), newVersionCmd())
	return cmd
}

// openSession validates the global flags, then loads config, logger and
// client into the command's context.
func openSession(cmd *cobra.Command, opts *RootOptions) error {
	format := strings.ToLower(opts.OutputFormat)
	if !contains(outputFormats, format) {
		return errors.InvalidParam("output must be one of "+strings.Join(outputFormats, ", ")).
			WithDetail("output=" + opts.OutputFormat)
	}

	cfg, err := initConfig(cmd, opts)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}
	logger, err := initLogger(opts)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}
	c, err := initClient(cfg, opts, logger)
	if err != nil {
		logger.Warn("API client initialization failed, some commands may not work", logging.Err(err))
	}

	session := &CLIContext{
		Config:       cfg,
		Logger:       logger,
		Client:       c,
		OutputFormat: format,
		Verbose:      opts.Verbose,
		NoColor:      opts.NoColor,
		Timeout:      opts.Timeout,
	}
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	cmd.SetContext(context.WithValue(parent, cliContextKey{}, session))
	return nil
}

// configCandidates are tried in order when --config is not given.
func configCandidates() []string {
	paths := []string{"./printshop.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".printshop", "config.yaml"))
	}
	return append(paths, "/etc/printshop/config.yaml")
}

func initConfig(cmd *cobra.Command, opts *RootOptions) (*config.Config, error) {
	if opts.ConfigPath != "" {
		return config.LoadFromFile(opts.ConfigPath)
	}
	for _, p := range configCandidates() {
		if _, err := os.Stat(p); err == nil {
			return config.LoadFromFile(p)
		}
	}
	if opts.Verbose {
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning: no config file found, using defaults")
	}
	return config.NewDefaultConfig(), nil
}

// initLogger logs to stderr so command output on stdout stays parseable.
func initLogger(opts *RootOptions) (logging.Logger, error) {
	level := strings.ToLower(opts.LogLevel)
	if opts.Verbose {
		level = "debug"
	}
	return logging.NewLogger(logging.LogConfig{
		Level:            level,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
}

// serverURL prefers --server; otherwise the configured listen address, with
// wildcard hosts dialled as localhost.
func serverURL(cfg *config.Config, opts *RootOptions) string {
	if opts.ServerAddr != "" {
		return opts.ServerAddr
	}
	host := cfg.Server.Host
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	port := cmp.Or(cfg.Server.Port, 8080)
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port))
}

func initClient(cfg *config.Config, opts *RootOptions, logger logging.Logger) (*client.Client, error) {
	return client.NewClient(serverURL(cfg, opts),
		client.WithTimeout(opts.Timeout),
		client.WithAPIKey(opts.APIKey),
		client.WithLogger(clientLogger{logger.Named("client")}),
	)
}

// clientLogger forwards the SDK's printf-style log lines.
type clientLogger struct{ l logging.Logger }

func (c clientLogger) Debugf(format string, args ...interface{}) { c.l.Debug(fmt.Sprintf(format, args...)) }
func (c clientLogger) Infof(format string, args ...interface{})  { c.l.Info(fmt.Sprintf(format, args...)) }
func (c clientLogger) Errorf(format string, args ...interface{}) { c.l.Error(fmt.Sprintf(format, args...)) }

// GetCLIContext returns the session opened by the root command.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.InvalidState("command context is nil")
	}
	session, _ := ctx.Value(cliContextKey{}).(*CLIContext)
	if session == nil {
		return nil, errors.InvalidState("CLIContext not found in command context")
	}
	return session, nil
}

// apiClient returns the session's client and a context bounded by --timeout.
func apiClient(cmd *cobra.Command) (*client.Client, context.Context, context.CancelFunc, error) {
	session, err := GetCLIContext(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	if session.Client == nil {
		return nil, nil, nil, errors.Unavailable("API client is not configured; pass --server")
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), session.Timeout)
	return session.Client, ctx, cancel, nil
}

// Execute runs the CLI and reports any error on stderr.
func Execute() error {
	root := NewRootCommand()
	err := root.Execute()
	PrintError(root, err)
	return err
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		// No session: version must work without config or server.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "printshop %s\ncommit: %s\nbuilt:  %s\n", Version, GitCommit, BuildDate)
			return nil
		},
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

//Personal.AI order the ending
