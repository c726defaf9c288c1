// Package cli implements the passkeeper command line client.
package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vova4o/passkeeper/internal/client/editor"
	"github.com/vova4o/passkeeper/internal/models"
	"github.com/vova4o/passkeeper/package/logger"
)

// EnvPrefix prefixes every environment variable the client reads
const EnvPrefix = "PASS"

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Server   string
	CACert   string
	Device   string
	DB       string
	Format   string
	LogLevel string
	Timeout  time.Duration
}

// Store is everything the commands need from the pass store
type Store interface {
	editor.Store
	SetExclusiveFlag(ctx context.Context, id string, dest models.Destination, value bool) error
	Get(ctx context.Context, id string) (models.Pass, error)
	List(ctx context.Context) ([]models.Pass, error)
	Active(ctx context.Context, dest models.Destination) (models.Pass, error)
	Render(ctx context.Context, id string, size int, forceQR bool) ([]byte, error)
}

// Backend is a connected store the device can pair with
type Backend interface {
	Store
	Pair(ctx context.Context, device, passphrase string) error
	Unpair(ctx context.Context) error
	Close()
}

// Connector opens the backend for one command run
type Connector func(opts *RootOptions, log *logger.Logger) (Backend, error)

// NewRootCommand creates the root command of the client.
func NewRootCommand(connect Connector) *cobra.Command {
	opts := &RootOptions{}
	v := viper.New()

	cmd := &cobra.Command{
		Use:           "passkeeper",
		Short:         "Keep scan-code passes and pin them to watch, widget and siri",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.Server = v.GetString("server")
			opts.CACert = v.GetString("ca-cert")
			opts.Device = v.GetString("device")
			opts.DB = v.GetString("db")
			opts.Format = v.GetString("format")
			opts.LogLevel = v.GetString("log-level")
			opts.Timeout = v.GetDuration("timeout")

			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.String("server", "localhost:50051", "pass server address")
	flags.String("ca-cert", "", "CA certificate of the server, plaintext when empty")
	flags.String("device", "cli", "device name used when pairing")
	flags.String("db", "passkeeper.db", "local database holding the pairing token")
	flags.String("format", "text", "output format (text|json|yaml)")
	flags.String("log-level", "error", "log level")
	flags.Duration("timeout", 10*time.Second, "timeout of a single command")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(flags)

	run := &runner{opts: opts, connect: connect, v: v}

	// Add subcommands
	cmd.AddCommand(newPairCommand(run))
	cmd.AddCommand(newUnpairCommand(run))
	cmd.AddCommand(newListCommand(run))
	cmd.AddCommand(newShowCommand(run))
	cmd.AddCommand(newAddCommand(run))
	cmd.AddCommand(newEditCommand(run))
	cmd.AddCommand(newDeleteCommand(run))
	cmd.AddCommand(newSetCommand(run))
	cmd.AddCommand(newActiveCommand(run))
	cmd.AddCommand(newRenderCommand(run))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

type runner struct {
	opts    *RootOptions
	connect Connector
	v       *viper.Viper
}

// with connects, runs fn under the command timeout and closes the backend
func (r *runner) with(cmd *cobra.Command, fn func(ctx context.Context, b Backend, out *OutputFormatter) error) error {
	log := logger.NewLoggerWithWriter(r.opts.LogLevel, cmd.ErrOrStderr())

	b, err := r.connect(r.opts, log)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to connect", err)
	}
	defer b.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	out := &OutputFormatter{Format: r.opts.Format, Writer: cmd.OutOrStdout()}
	return fn(ctx, b, out)
}
