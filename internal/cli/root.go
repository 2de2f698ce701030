// Package cli implements the parkinglot command-line interface: a cobra
// command tree over one in-process SpaceRegistry, configured with viper.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/parkinglot/internal/paths"
	"github.com/mesh-intelligence/parkinglot/pkg/parking"
	"github.com/mesh-intelligence/parkinglot/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	backend   string
	logLevel  string
	jsonMode  bool
}

// app is the state shared by the commands of one root command.
type app struct {
	flags     rootFlags
	configDir string
	config    *viper.Viper
	logger    *slog.Logger
}

// NewRootCmd creates the top-level "parkinglot" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:     "parkinglot",
		Short:   "An in-memory registry of parking spaces",
		Long:    "Parkinglot manages numbered public and private parking spaces and their\noccupancy for the lifetime of one process.",
		Version: parking.Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errUsage, err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&a.flags.backend, "backend", "", "registry backend: memory or sqlite")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newShellCmd(a))
	root.AddCommand(newRunCmd(a))

	return root
}

// usageArgs wraps a positional-argument validator so its failures count as
// usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		return nil
	}
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps registry and usage errors to exitUserError and everything
// else to exitSysError.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, types.ErrDuplicateID),
		errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrNotPublic),
		errors.Is(err, types.ErrBackendEmpty),
		errors.Is(err, types.ErrBackendUnknown),
		errors.Is(err, errUsage):
		return exitUserError
	default:
		return exitSysError
	}
}

// load resolves the config directory, reads configuration and builds the logger.
func (a *app) load(cmd *cobra.Command) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}

	v, err := loadConfig(configDir, cmd.Root().PersistentFlags())
	if err != nil {
		return err
	}
	a.configDir = configDir
	a.config = v

	logger, err := newLogger(cmd.ErrOrStderr(), v.GetString(cfgKeyLogLevel))
	if err != nil {
		return err
	}
	a.logger = logger.With("config_dir", configDir)
	return nil
}

// openRegistry opens a registry on the configured backend.
func (a *app) openRegistry() (types.SpaceRegistry, error) {
	cfg := types.Config{Backend: a.config.GetString(cfgKeyBackend)}
	reg, err := parking.Open(cfg, parking.WithLogger(a.logger))
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	a.logger.Debug("registry opened", "backend", cfg.Backend)
	return reg, nil
}

// newInterpreter opens a registry and binds it to an interpreter writing to out.
// The caller must Close the returned registry.
func (a *app) newInterpreter(out io.Writer) (*Interpreter, types.SpaceRegistry, error) {
	reg, err := a.openRegistry()
	if err != nil {
		return nil, nil, err
	}
	in := NewInterpreter(reg, out,
		WithJSON(a.flags.jsonMode),
		WithInterpreterLogger(a.logger),
	)
	return in, reg, nil
}
