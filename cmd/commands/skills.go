package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/bbdragon2023/aiSDR/internal/config"
	"github.com/bbdragon2023/aiSDR/internal/skills"
)

// NewSkillsCommand returns the skills subcommand.
func NewSkillsCommand() *cli.Command {
	return &cli.Command{
		Name:  "skills",
		Usage: "List the skills available to the agent",
		Action: func(_ context.Context, cmd *cli.Command) error {
			// no API key needed to inspect the skills directory
			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			registry := skills.NewRegistry(cfg.Skills.Dir)
			found := registry.Discover()
			if len(found) == 0 {
				fmt.Printf("No skills found in %s\n", cfg.Skills.Dir)
				return nil
			}

			fmt.Printf("%d skill(s) in %s:\n\n", len(found), cfg.Skills.Dir)
			for _, s := range found {
				fmt.Printf("  %-20s %s\n", s.Name, s.Description)
			}
			return nil
		},
	}
}
