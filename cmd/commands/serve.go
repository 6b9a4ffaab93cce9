package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/bbdragon2023/aiSDR/internal/agent"
	"github.com/bbdragon2023/aiSDR/internal/events"
	"github.com/bbdragon2023/aiSDR/internal/gateway"
	"github.com/bbdragon2023/aiSDR/internal/sessions"
	"github.com/bbdragon2023/aiSDR/internal/skills"
)

// NewServeCommand returns the serve subcommand.
func NewServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the agent HTTP gateway",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to listen on",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on",
			},
		},
		Action: runServe,
	}
}

func runServe(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if cmd.IsSet("host") {
		cfg.Gateway.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Gateway.Port = cmd.Int("port")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	bus := events.NewBus(cfg.Gateway.EventLog)
	defer bus.Close()

	registry := skills.NewRegistry(cfg.Skills.Dir)
	found := registry.Discover()
	slog.Info("skills loaded", "count", len(found))

	factory := func(ctx context.Context, id string) (*agent.Agent, error) {
		return agent.NewFromConfig(ctx, cfg, id, registry, bus)
	}
	store := sessions.NewStore(cfg.Gateway.SessionTTL.Duration(), factory, bus)
	store.StartJanitor(ctx)
	defer store.Close()

	server := gateway.NewServer(cfg, store, registry, bus)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
