package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/bbdragon2023/aiSDR/internal/agent"
	"github.com/bbdragon2023/aiSDR/internal/events"
	"github.com/bbdragon2023/aiSDR/internal/sessions"
	"github.com/bbdragon2023/aiSDR/internal/skills"
)

// NewResearchCommand returns the research subcommand.
func NewResearchCommand() *cli.Command {
	return &cli.Command{
		Name:  "research",
		Usage: "Run a one-shot research brief on a company or prospect",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "company",
				Usage: "Company to research",
			},
			&cli.StringFlag{
				Name:    "prospect",
				Aliases: []string{"p"},
				Usage:   "Prospect (person) to research",
			},
			&cli.BoolFlag{
				Name:  "plain",
				Usage: "Print raw markdown instead of rendered output",
			},
		},
		Action: runResearch,
	}
}

func runResearch(ctx context.Context, cmd *cli.Command) error {
	company := cmd.String("company")
	prospect := cmd.String("prospect")
	if company == "" && prospect == "" {
		return fmt.Errorf("usage: sdr research --company <name> [--prospect <name>]")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	bus := events.NewBus(cfg.Gateway.EventLog)
	defer bus.Close()

	registry := skills.NewRegistry(cfg.Skills.Dir)
	registry.Discover()

	a, err := agent.NewFromConfig(ctx, cfg, sessions.NewSessionID(), registry, bus)
	if err != nil {
		return err
	}

	var report string
	if prospect != "" {
		report, err = a.ResearchProspect(ctx, prospect, company, printProgress)
	} else {
		report, err = a.ResearchCompany(ctx, company, printProgress)
	}
	if err != nil {
		return err
	}

	fmt.Println(renderer(cmd.Bool("plain"))(report))
	return nil
}
