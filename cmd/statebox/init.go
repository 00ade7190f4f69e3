package main

import (
	"encoding/json"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/statebox/internal/config"
	"github.com/vango-dev/statebox/internal/errors"
)

func initCmd() *cobra.Command {
	var (
		force  bool
		asYAML bool
		name   string
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a config file",
		Long: `Create a statebox.json with default settings and one example state.

Examples:
  statebox init
  statebox init ./deploy --name=checkout
  statebox init --yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(dir, name, force, asYAML)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing statebox.json")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Write statebox.yaml instead of statebox.json")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Deployment name")
	return cmd
}

func runInit(dir, name string, force, asYAML bool) error {
	if config.Exists(dir) && !force {
		return errors.New("E104").
			WithDetail("Found a config file in " + dir).
			WithSuggestion("Pass --force to overwrite it")
	}

	cfg := config.New()
	cfg.Name = name
	cfg.States["count"] = json.RawMessage("0")

	file := config.ConfigFileName
	if asYAML {
		file = "statebox.yaml"
	}
	path := filepath.Join(dir, file)
	if err := cfg.SaveTo(path); err != nil {
		return err
	}
	success("Created %s", path)
	info("Run 'statebox serve' to start the inspector on %s", cfg.Address())
	return nil
}
