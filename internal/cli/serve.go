package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/forestplot/internal/server"
	"github.com/matzehuels/forestplot/pkg/cache"
	"github.com/matzehuels/forestplot/pkg/store"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr      string
	backend   string
	storeDir  string
	mongoURI  string
	cacheKind string
	redisAddr string
}

// serveCommand creates the serve command, which runs the HTTP rendering
// service.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: ":8080", backend: "memory", cacheKind: "file", redisAddr: "localhost:6379"}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP rendering service",
		Long: `Run the HTTP rendering service.

The server accepts plot specs via POST /plots and serves rendered
artifacts, layout records, and interactive operations (collapse, sort,
resize) on the stored plots. See the API reference for the full route
list.

Plots live in the selected store backend:

  memory  process-local, lost on restart (default)
  file    one JSON file per plot under ~/.config/forestplot/plots
  mongo   a MongoDB collection, for multi-instance deployments

The file and mongo backends survive restarts: interactive state is
rebuilt from the stored spec on first access.

Rendered documents are cached per view state. The file cache (default)
suits a single instance; redis lets several instances share artifacts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.backend, "store", opts.backend, "plot store backend: memory, file, mongo")
	cmd.Flags().StringVar(&opts.storeDir, "store-dir", "", "directory for the file backend (default: ~/.config/forestplot/plots)")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo-uri", "", "connection string for the mongo backend")
	cmd.Flags().StringVar(&opts.cacheKind, "cache", opts.cacheKind, "artifact cache backend: off, file, redis")
	cmd.Flags().StringVar(&opts.redisAddr, "redis-addr", opts.redisAddr, "redis address for the redis cache backend")

	return cmd
}

// runServe builds the selected store and cache backends and runs the
// server until the context is canceled.
func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	st, cleanup, err := c.newStore(ctx, opts)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	artifacts, err := c.newServeCache(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := artifacts.Close(); err != nil {
			c.Logger.Warn("Close artifact cache", "error", err)
		}
	}()

	logger := loggerFromContext(ctx)
	srv := server.New(server.Config{
		Addr:   opts.addr,
		Store:  st,
		Cache:  artifacts,
		Logger: logger,
	})

	printInfo("Serving on %s (store: %s, cache: %s)", opts.addr, opts.backend, opts.cacheKind)
	printDetail("POST a spec to /plots, then GET /plots/{id}.svg")
	printNewline()

	prog := newProgress(logger)
	if err := srv.Run(ctx); err != nil {
		return err
	}
	prog.done("Server stopped")
	return nil
}

// newStore constructs the plot store named by the --store flag. The
// returned cleanup func closes backends that hold connections.
func (c *CLI) newStore(ctx context.Context, opts *serveOpts) (store.Store, func(), error) {
	switch opts.backend {
	case "memory":
		return store.NewMemoryStore(), nil, nil
	case "file":
		st, err := store.NewFileStore(opts.storeDir)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize file store: %w", err)
		}
		return st, nil, nil
	case "mongo":
		st, err := store.NewMongoStore(ctx, store.MongoConfig{URI: opts.mongoURI})
		if err != nil {
			return nil, nil, fmt.Errorf("connect to mongo: %w", err)
		}
		cleanup := func() {
			if err := st.Close(); err != nil {
				c.Logger.Warn("Close mongo store", "error", err)
			}
		}
		return st, cleanup, nil
	default:
		return nil, nil, fmt.Errorf("invalid store backend: %q (must be one of: memory, file, mongo)", opts.backend)
	}
}

// newServeCache constructs the artifact cache named by the --cache flag.
// Unlike CLI renders, a server asked for a cache it cannot reach should
// fail loudly rather than silently recompute forever.
func (c *CLI) newServeCache(ctx context.Context, opts *serveOpts) (cache.Cache, error) {
	switch opts.cacheKind {
	case "off":
		return cache.NewNullCache(), nil
	case "file":
		dir, err := cache.DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("resolve cache dir: %w", err)
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, fmt.Errorf("initialize file cache: %w", err)
		}
		return fc, nil
	case "redis":
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: opts.redisAddr})
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		return rc, nil
	default:
		return nil, fmt.Errorf("invalid cache backend: %q (must be one of: off, file, redis)", opts.cacheKind)
	}
}
