// Command statebox serves named state containers over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/statebox/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if os.Getenv("NO_COLOR") != "" {
		errors.DisableColors()
	}

	if err := rootCmd().Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "statebox",
		Short: "Observable state containers with an HTTP inspector",
		Long: `statebox hosts named, thread-safe state containers.

Containers are declared in statebox.json. Each one can be read, written
and watched over HTTP, and its value can be snapshotted to memory or S3
across restarts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		serveCmd(),
		initCmd(),
		versionCmd(),
	)
	return cmd
}

func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
