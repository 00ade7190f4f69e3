package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/statebox/internal/config"
	"github.com/vango-dev/statebox/internal/errors"
	"github.com/vango-dev/statebox/pkg/server"
)

type serveOptions struct {
	configPath string
	host       string
	port       int
}

func serveCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the state inspector",
		Long: `Load statebox.json, create its containers and serve them over HTTP.

Snapshots are restored on start and saved on SIGINT or SIGTERM when a
snapshot backend is configured.

Examples:
  statebox serve
  statebox serve --config=deploy/statebox.json --port=8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to statebox.json (default: search from the working directory)")
	cmd.Flags().StringVarP(&opts.host, "host", "H", "", "Host to bind to (default from statebox.json)")
	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "Port to listen on (default from statebox.json)")
	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root, err := config.FindRoot(wd)
	if err != nil {
		return nil, err
	}
	return config.Load(root)
}

func runServe(ctx context.Context, opts serveOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.port > 0 {
		cfg.Server.Port = opts.port
	}
	if opts.host != "" {
		cfg.Server.Host = opts.host
	}

	logger := newLogger(cfg.Log, os.Stderr)
	if cfg.Name != "" {
		logger = logger.With("deployment", cfg.Name)
	}

	snapshots, err := openSnapshots(cfg.Snapshot)
	if err != nil {
		return err
	}
	a, err := newApp(cfg, logger, snapshots)
	if err != nil {
		return err
	}
	defer a.Close()

	restored, err := a.restore(ctx)
	if err != nil {
		return err
	}
	logger.Info("containers ready",
		"count", a.store.Len(),
		"restored", restored,
		"notify_mode", cfg.Mode().String(),
		"snapshot_backend", cfg.Snapshot.Backend,
	)

	srv := server.New(a.store, &server.Config{
		Address:     cfg.Address(),
		Logger:      logger,
		Gatherer:    a.gatherer(),
		WatchBuffer: cfg.Server.WatchBuffer,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		return errors.New("E202").Wrap(err)
	}

	saveCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := a.save(saveCtx); err != nil {
		return err
	}
	logger.Info("stopped")
	return nil
}
