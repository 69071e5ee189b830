// Command sputnik serves the like button.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	serrors "github.com/sputnik-dev/sputnik/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Error output formats accepted by --error-format.
const (
	errorFormatText    = "text"
	errorFormatCompact = "compact"
	errorFormatJSON    = "json"
)

func newRootCmd() *cobra.Command {
	var (
		configPath  string
		errorFormat string
		noColor     bool
	)

	root := &cobra.Command{
		Use:   "sputnik",
		Short: "Server-driven like button",
		Long: `Sputnik renders a like button on the server and keeps it live over a
WebSocket. Clicks travel to the server, state changes come back as DOM
patches, and likes can be counted in Redis, published to RabbitMQ or stored
in MySQL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch errorFormat {
			case errorFormatText, errorFormatCompact, errorFormatJSON:
			default:
				return serrors.New("E403").
					WithDetailf("--error-format must be text, compact or json, got %q", errorFormat)
			}
			if noColor || os.Getenv("NO_COLOR") != "" {
				serrors.DisableColors()
			}
			return nil
		},
	}
	flags := root.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "config file (default: ./sputnik.yaml if present)")
	flags.StringVar(&errorFormat, "error-format", errorFormatText, "error output format: text, compact or json")
	flags.BoolVar(&noColor, "no-color", false, "disable colored error output (also set by NO_COLOR)")

	root.AddCommand(
		serveCmd(&configPath),
		renderCmd(&configPath),
		errorsCmd(),
		versionCmd(),
	)
	return root
}

// reportError writes err to w in the requested format. Errors without a
// code, such as cobra's flag and argument errors, are reported as E403.
func reportError(w io.Writer, err error, format string) {
	se := serrors.FromError(err, "E403")
	if se == nil {
		return
	}
	switch format {
	case errorFormatJSON:
		fmt.Fprintln(w, se.FormatJSON())
	case errorFormatCompact:
		fmt.Fprintln(w, se.FormatCompact())
	default:
		serrors.Print(w, se)
	}
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		format, _ := root.PersistentFlags().GetString("error-format")
		reportError(os.Stderr, err, format)
		os.Exit(1)
	}
}
