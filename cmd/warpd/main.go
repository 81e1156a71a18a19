// Command warpd deploys hyperlane warp routes and their core messaging
// infrastructure by driving the hyperlane CLI.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	dockerclient "github.com/moby/moby/client"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/warpfleet/warpd/config"
	"github.com/warpfleet/warpd/operator"
	"github.com/warpfleet/warpd/runner"
)

type routeList []string

func (r *routeList) String() string { return strings.Join(*r, ",") }

func (r *routeList) Set(v string) error {
	*r = append(*r, v)
	return nil
}

func main() {
	var (
		configPath = flag.String("config", "", "path to warpd.toml; defaults apply when empty")
		corePath   = flag.String("core-config", "", "path to an existing core config document; empty deploys fresh infrastructure")
		advanced   = flag.Bool("advanced", false, "record the run as an advanced deployment; core init always runs --advanced")
		routes     routeList
	)
	flag.Var(&routes, "route", "path to a warp route config document (repeatable)")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(context.Background(), logger, *configPath, *corePath, *advanced, routes); err != nil {
		logger.Error("warpd failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *zap.Logger, configPath, corePath string, advanced bool, routes routeList) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}

	// the deployer signing key is required before any orchestration begins
	key := os.Getenv(cfg.KeyEnv)
	if key == "" {
		return fmt.Errorf("%s environment variable not set", cfg.KeyEnv)
	}

	if len(routes) == 0 {
		return fmt.Errorf("at least one -route document is required")
	}

	var existing []byte
	if corePath != "" {
		var err error
		if existing, err = os.ReadFile(corePath); err != nil {
			return fmt.Errorf("read existing core config: %w", err)
		}
	}

	manager, err := buildManager(cfg, key, logger)
	if err != nil {
		return err
	}

	// each route document is an independent run with its own runner and
	// orchestrator; runs share no mutable state.
	g, gctx := errgroup.WithContext(ctx)
	for _, routePath := range routes {
		g.Go(func() error {
			raw, err := os.ReadFile(routePath)
			if err != nil {
				return fmt.Errorf("read warp route config: %w", err)
			}

			orch, err := operator.New(operator.Config{
				Logger: logger.With(zap.String("route", routePath)),
				Runner: runner.New(manager, logger),
				Binary: cfg.Binary,
				Chains: cfg.Chains,
				Key:    key,
			})
			if err != nil {
				return err
			}

			res, err := orch.Run(gctx, operator.Request{
				WarpConfig:         raw,
				Advanced:           advanced,
				ExistingCoreConfig: existing,
			})
			if err != nil {
				return fmt.Errorf("%s: %w", routePath, err)
			}
			logger.Info("warp route deployed",
				zap.String("route", routePath),
				zap.Int("status", res.Status),
				zap.Int("steps", len(res.Outputs)))
			return nil
		})
	}
	return g.Wait()
}

func buildManager(cfg config.Config, key string, logger *zap.Logger) (runner.ProcessManager, error) {
	env := []string{fmt.Sprintf("%s=%s", cfg.KeyEnv, key)}

	if !cfg.Docker.Enabled {
		return runner.NewLocalProcessManager(logger, env...), nil
	}

	cli, err := dockerclient.NewClientWithOpts(
		dockerclient.FromEnv,
		dockerclient.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return runner.NewDockerProcessManager(runner.DockerConfig{
		Logger:    logger,
		Client:    cli,
		NetworkID: cfg.Docker.NetworkID,
		Image: runner.Image{
			Repository: cfg.Docker.Repository,
			Version:    cfg.Docker.Version,
		},
		VolumeName: cfg.Docker.VolumeName,
		Env:        env,
		RunLabel:   "warpd",
	})
}
